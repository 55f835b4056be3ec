package model

import (
	"context"
	"io"
)

// Storage is an object store addressed by key.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
}
