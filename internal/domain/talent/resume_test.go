package talent

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestResumeFile_Validate(t *testing.T) {
	body := strings.NewReader("x")
	tests := []struct {
		name    string
		file    *ResumeFile
		ext     string
		ctype   string
		wantErr error
	}{
		{"nil", nil, "", "", ErrResumeRequired},
		{"empty", &ResumeFile{Name: "cv.pdf", Body: body}, "", "", ErrResumeRequired},
		{"too large", &ResumeFile{Name: "cv.pdf", Size: MaxResumeSize + 1, Body: body}, "", "", ErrResumeTooLarge},
		{"exe", &ResumeFile{Name: "cv.exe", Size: 1, Body: body}, "", "", ErrUnsupportedResume},
		{"upper pdf", &ResumeFile{Name: "CV.PDF", Size: 1, Body: body}, ".pdf", "application/pdf", nil},
		{"docx", &ResumeFile{Name: "me.docx", Size: 1, Body: body}, ".docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, ctype, err := tt.file.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.ext, ext)
			assert.Equal(t, tt.ctype, ctype)
		})
	}
}

func TestResumeObjectPath(t *testing.T) {
	id := uuid.New()
	a, b := ResumeObjectPath(id, ".pdf"), ResumeObjectPath(id, ".pdf")
	assert.True(t, strings.HasPrefix(a, id.String()+"/"))
	assert.True(t, strings.HasSuffix(a, ".pdf"))
	assert.NotEqual(t, a, b)
}
