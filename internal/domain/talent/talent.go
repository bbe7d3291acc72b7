package talent

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type Profile struct {
	ID         uuid.UUID        `json:"id"`
	UserID     uuid.UUID        `json:"user_id"`
	FullName   string           `json:"full_name"`
	Bio        string           `json:"bio"`
	Locations  []string         `json:"locations"`
	Industries []string         `json:"industries"`
	WorkStyles []string         `json:"work_styles"`
	Skills     []string         `json:"skills"`
	ResumePath *string          `json:"resume_path,omitempty"`
	Embedding  *pgvector.Vector `json:"-"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (p *Profile) HasEmbedding() bool {
	return p.Embedding != nil && len(p.Embedding.Slice()) > 0
}

func (p *Profile) HasResume() bool {
	return p.ResumePath != nil && *p.ResumePath != ""
}

// ClearEmbedding marks the profile for re-enrichment.
func (p *Profile) ClearEmbedding() {
	p.Embedding = nil
}

// Preferences is the mutable subset of a profile a talent edits directly.
type Preferences struct {
	FullName   *string  `json:"full_name"`
	Bio        *string  `json:"bio"`
	Locations  []string `json:"locations"`
	Industries []string `json:"industries"`
	WorkStyles []string `json:"work_styles"`
	Skills     []string `json:"skills"`
}

// Apply copies the set fields onto p and reports whether anything that
// feeds the embedding text changed.
func (p *Profile) Apply(prefs Preferences) (embeddingStale bool) {
	if prefs.FullName != nil {
		p.FullName = strings.TrimSpace(*prefs.FullName)
	}
	if prefs.Bio != nil && *prefs.Bio != p.Bio {
		p.Bio = *prefs.Bio
		embeddingStale = true
	}
	if prefs.Locations != nil && !equalFold(prefs.Locations, p.Locations) {
		p.Locations = clean(prefs.Locations)
		embeddingStale = true
	}
	if prefs.Industries != nil && !equalFold(prefs.Industries, p.Industries) {
		p.Industries = clean(prefs.Industries)
		embeddingStale = true
	}
	if prefs.WorkStyles != nil && !equalFold(prefs.WorkStyles, p.WorkStyles) {
		p.WorkStyles = clean(prefs.WorkStyles)
		embeddingStale = true
	}
	if prefs.Skills != nil {
		p.Skills = clean(prefs.Skills)
	}
	if embeddingStale {
		p.ClearEmbedding()
	}
	return embeddingStale
}

func clean(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func equalFold(a, b []string) bool {
	a, b = clean(a), clean(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}

// SearchParams drives employer-side candidate search.
type SearchParams struct {
	Query      string
	Locations  []string
	Industries []string
	WorkStyles []string
	Limit      int
	Offset     int
}

type Repository interface {
	Save(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	// UpdateEmbedding writes the vector on the row identified by profile id.
	UpdateEmbedding(ctx context.Context, profileID uuid.UUID, vec pgvector.Vector) error
	Search(ctx context.Context, params SearchParams) ([]*Profile, error)
	ListUnenriched(ctx context.Context, limit int) ([]*Profile, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Profile, error)
}
