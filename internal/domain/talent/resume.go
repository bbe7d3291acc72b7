package talent

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrResumeRequired    = errors.New("resume file is required")
	ErrUnsupportedResume = errors.New("resume must be a pdf, doc, docx or txt file")
	ErrResumeTooLarge    = errors.New("resume exceeds 10MB")
)

const MaxResumeSize = 10 << 20

var resumeContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

// ResumeFile is an uploaded resume as received from the transport.
type ResumeFile struct {
	Name string
	Size int64
	Body io.Reader
}

// Validate returns the lowercased extension and the content type to store
// the file with.
func (f *ResumeFile) Validate() (ext, contentType string, err error) {
	if f == nil || f.Body == nil || f.Size == 0 {
		return "", "", ErrResumeRequired
	}
	if f.Size > MaxResumeSize {
		return "", "", ErrResumeTooLarge
	}
	ext = strings.ToLower(filepath.Ext(f.Name))
	contentType, ok := resumeContentTypes[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: got %q", ErrUnsupportedResume, ext)
	}
	return ext, contentType, nil
}

// ResumeObjectPath is the object key of a new resume inside the resume bucket.
func ResumeObjectPath(userID uuid.UUID, ext string) string {
	return fmt.Sprintf("%s/%s%s", userID, uuid.New(), ext)
}
