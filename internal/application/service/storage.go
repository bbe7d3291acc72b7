package service

import (
	"context"
	"io"
	"time"
)

// ResumeStorage is private object storage for resume files. Upload
// overwrites an existing object at the same path.
type ResumeStorage interface {
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	Download(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

// TextExtractor turns a resume document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// Locker hands out short-lived exclusive locks. The returned release func
// is safe to call more than once.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}
