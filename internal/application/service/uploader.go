package service

import (
	"context"
	"io"
)

// Uploader stores public images (employer logos) and returns their URL.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder string, publicID string) (string, error)
	Delete(ctx context.Context, publicID string) error
}
