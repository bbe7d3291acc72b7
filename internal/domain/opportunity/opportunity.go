package opportunity

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

var (
	ErrTitleRequired       = errors.New("title is required")
	ErrCompanyRequired     = errors.New("company name is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrInvalidSalaryRange  = errors.New("salary_min must not exceed salary_max")
	ErrNegativeSalary      = errors.New("salary must not be negative")
)

type Opportunity struct {
	ID              uuid.UUID `json:"id"`
	EmployerID      uuid.UUID `json:"employer_id"`
	Title           string    `json:"title"`
	CompanyName     string    `json:"company_name"`
	Location        string    `json:"location"`
	Industry        string    `json:"industry"`
	WorkStyle       string    `json:"work_style"`
	JobType         string    `json:"job_type"`
	ExperienceLevel string    `json:"experience_level"`
	CompanySize     string    `json:"company_size"`
	SalaryMin       *int      `json:"salary_min,omitempty"`
	SalaryMax       *int      `json:"salary_max,omitempty"`
	Description     string    `json:"description"`
	Skills          []string  `json:"skills"`
	CreatedAt       time.Time `json:"created_at"`

	Embedding *pgvector.Vector `json:"-"`
}

func (o *Opportunity) Validate() error {
	if strings.TrimSpace(o.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(o.CompanyName) == "" {
		return ErrCompanyRequired
	}
	if strings.TrimSpace(o.Description) == "" {
		return ErrDescriptionRequired
	}
	if (o.SalaryMin != nil && *o.SalaryMin < 0) || (o.SalaryMax != nil && *o.SalaryMax < 0) {
		return ErrNegativeSalary
	}
	if o.SalaryMin != nil && o.SalaryMax != nil && *o.SalaryMin > *o.SalaryMax {
		return ErrInvalidSalaryRange
	}
	return nil
}

// EmbeddingText is what gets embedded so the opportunity can be matched
// against talent vectors.
func (o *Opportunity) EmbeddingText() string {
	parts := []string{o.Title, o.CompanyName, o.Description}
	for _, s := range []string{o.Location, o.Industry, o.WorkStyle} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(o.Skills) > 0 {
		parts = append(parts, strings.Join(o.Skills, ", "))
	}
	return strings.Join(parts, " ")
}

// HasSalary reports whether either bound is known.
func (o *Opportunity) HasSalary() bool {
	return o.SalaryMin != nil || o.SalaryMax != nil
}

type Repository interface {
	Save(ctx context.Context, o *Opportunity) error
	Delete(ctx context.Context, id, employerID uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Opportunity, error)
	ListByEmployer(ctx context.Context, employerID uuid.UUID, limit, offset int) ([]*Opportunity, error)
	// ListRecent returns opportunities ordered by created_at descending.
	ListRecent(ctx context.Context, limit, offset int) ([]*Opportunity, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*Opportunity, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Opportunity, error)
	UpdateEmbedding(ctx context.Context, id uuid.UUID, vec pgvector.Vector) error
	ListUnembedded(ctx context.Context, limit int) ([]*Opportunity, error)
}

// Matcher runs the database-side similarity function. Records come back
// undecoded so one malformed row cannot fail the whole page.
type Matcher interface {
	Match(ctx context.Context, userID uuid.UUID, offset, limit int) ([]json.RawMessage, error)
}
