package saved

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/khoahotran/talent-match/internal/domain/talent"
)

type SavedOpportunity struct {
	TalentID      uuid.UUID `json:"talent_id"`
	OpportunityID uuid.UUID `json:"opportunity_id"`
	SavedAt       time.Time `json:"saved_at"`
}

type SavedCandidate struct {
	EmployerID uuid.UUID `json:"employer_id"`
	TalentID   uuid.UUID `json:"talent_id"`
	SavedAt    time.Time `json:"saved_at"`
}

// CandidateRow is a saved candidate joined with the profile, used for listing
// and export.
type CandidateRow struct {
	SavedAt time.Time       `json:"saved_at"`
	Email   string          `json:"email"`
	Profile *talent.Profile `json:"profile"`
}

// Repository writes are idempotent: saving twice or unsaving a missing row
// is not an error.
type Repository interface {
	SaveOpportunity(ctx context.Context, s SavedOpportunity) error
	UnsaveOpportunity(ctx context.Context, talentID, opportunityID uuid.UUID) error
	ListOpportunityIDs(ctx context.Context, talentID uuid.UUID) ([]uuid.UUID, error)

	SaveCandidate(ctx context.Context, s SavedCandidate) error
	UnsaveCandidate(ctx context.Context, employerID, talentID uuid.UUID) error
	ListCandidates(ctx context.Context, employerID uuid.UUID, limit, offset int) ([]CandidateRow, error)
}
