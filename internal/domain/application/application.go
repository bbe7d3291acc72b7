package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrAlreadyApplied = errors.New("already applied to this opportunity")

type Application struct {
	ID            uuid.UUID `json:"id"`
	TalentID      uuid.UUID `json:"talent_id"`
	OpportunityID uuid.UUID `json:"opportunity_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Applicant is an application joined with who applied.
type Applicant struct {
	ApplicationID uuid.UUID `json:"application_id"`
	TalentID      uuid.UUID `json:"talent_id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	AppliedAt     time.Time `json:"applied_at"`
}

type Repository interface {
	// Save returns ErrAlreadyApplied when the pair already exists.
	Save(ctx context.Context, a *Application) error
	ListByTalent(ctx context.Context, talentID uuid.UUID, limit, offset int) ([]*Application, error)
	ListApplicants(ctx context.Context, opportunityID uuid.UUID, limit, offset int) ([]Applicant, error)
}
