package feed

import (
	"errors"

	"github.com/google/uuid"
	"github.com/khoahotran/talent-match/internal/domain/opportunity"
)

var (
	ErrFetchInFlight     = errors.New("a page fetch is already in flight")
	ErrStaleResponse     = errors.New("response belongs to a superseded feed generation")
	ErrInvalidFilter     = errors.New("invalid filter value")
	ErrInvalidSort       = errors.New("invalid sort key")
	ErrInvalidPostWindow = errors.New("invalid posted_within value")
)

type Provenance string

const (
	ProvenanceAI      Provenance = "ai"
	ProvenanceGeneral Provenance = "general"
)

type Mode string

const (
	ModeAIRecommended Mode = "ai_recommended"
	ModeSearch        Mode = "search"
	ModeFiltered      Mode = "filtered"
)

// MatchResult is one feed item. It lives only in memory.
type MatchResult struct {
	opportunity.Opportunity
	Score      *float64   `json:"score,omitempty"`
	Provenance Provenance `json:"provenance"`
	Saved      bool       `json:"saved"`
}

func (m MatchResult) IsAI() bool { return m.Provenance == ProvenanceAI }

func (m MatchResult) scoreOrZero() float64 {
	if m.Score == nil {
		return 0
	}
	return *m.Score
}

// Page is one fetch result from either source.
type Page struct {
	Number  int
	Items   []MatchResult
	HasMore bool
}

// Seen tracks ids already emitted in a feed session.
type Seen map[uuid.UUID]struct{}

func (s Seen) Has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

func (s Seen) Add(id uuid.UUID) { s[id] = struct{}{} }
