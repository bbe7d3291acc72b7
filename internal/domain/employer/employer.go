package employer

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCompanyNameRequired = errors.New("company name is required")
	ErrInvalidWebsite      = errors.New("website must be an absolute http(s) URL")
)

type Employer struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	CompanyName string    `json:"company_name"`
	Website     string    `json:"website"`
	LogoURL     *string   `json:"logo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e *Employer) Validate() error {
	if strings.TrimSpace(e.CompanyName) == "" {
		return ErrCompanyNameRequired
	}
	if e.Website != "" {
		u, err := url.Parse(e.Website)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidWebsite
		}
	}
	return nil
}

type Repository interface {
	Save(ctx context.Context, e *Employer) error
	Update(ctx context.Context, e *Employer) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Employer, error)
}

var (
	ErrUnsupportedLogo = errors.New("logo must be png, jpg or webp")
	ErrLogoTooLarge    = errors.New("logo exceeds 2 MiB")
)

const MaxLogoSize = 2 << 20

var logoExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}

func ValidateLogo(filename string, size int64) error {
	if !logoExtensions[strings.ToLower(path.Ext(filename))] {
		return ErrUnsupportedLogo
	}
	if size > MaxLogoSize {
		return ErrLogoTooLarge
	}
	return nil
}

// LogoFolder is the image-host folder holding one employer's logo.
func LogoFolder(employerID uuid.UUID) string {
	return "logos/" + employerID.String()
}
