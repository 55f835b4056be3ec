// Package validate collects field-level validation failures for user input.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dtroode/authkeeper/internal/model"
)

// PasswordMaxBytes is the bcrypt input limit.
const PasswordMaxBytes = 72

const (
	MsgBlank      = "can't be blank"
	MsgInvalid    = "is invalid"
	MsgTaken      = "has already been taken"
	MsgMismatch   = "doesn't match Password"
	msgTooShortFm = "is too short (minimum is %s characters)"
	msgTooLongFm  = "is too long (maximum is %s bytes)"
)

const tagMaxBytes = "maxbytes"

var structValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation(tagMaxBytes, maxBytes); err != nil {
		panic(fmt.Sprintf("validate: register %s: %v", tagMaxBytes, err))
	}

	return v
}

// maxBytes limits the encoded length of a string, unlike max which counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Errors accumulates field failures in the order they are found.
type Errors struct {
	fields []model.FieldError
}

// Add records a failure for field.
func (e *Errors) Add(field, message string) {
	e.fields = append(e.fields, model.FieldError{Field: field, Message: message})
}

// Has reports whether field already has a failure.
func (e *Errors) Has(field string) bool {
	for _, f := range e.fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Err returns a *model.ValidationError, or nil when nothing failed.
func (e *Errors) Err() error {
	if len(e.fields) == 0 {
		return nil
	}
	return &model.ValidationError{Fields: e.fields}
}

// Struct checks the validate tags of s and records one failure per field,
// named after its json tag. The returned error is only set when s itself
// cannot be validated.
func Struct(errs *Errors, s any) error {
	err := structValidator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate %T: %w", s, err)
	}

	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), message(fe))
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgBlank
	case "min":
		return fmt.Sprintf(msgTooShortFm, fe.Param())
	case tagMaxBytes:
		return fmt.Sprintf(msgTooLongFm, fe.Param())
	case "eqfield":
		return MsgMismatch
	default:
		return MsgInvalid
	}
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
