package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

const maxBodyBytes = 1 << 20

type decodeError struct {
	field   string
	message string
}

func (e *decodeError) Error() string {
	return e.field + " " + e.message
}

// decodeJSON reads a JSON object from the request body into dst. An empty
// body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &decodeError{field: "body", message: "is too large"}
		}
		return &decodeError{field: "body", message: "could not be read"}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return &decodeError{field: "body", message: "is not valid JSON"}
	}
	return nil
}
