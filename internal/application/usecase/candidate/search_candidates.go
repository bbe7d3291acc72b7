package candidate

import (
	"context"
	"fmt"
	"strings"

	"github.com/khoahotran/talent-match/internal/domain/talent"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/auth"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

type SearchCandidatesUseCase struct {
	talentRepo talent.Repository
}

func NewSearchCandidatesUseCase(tRepo talent.Repository) *SearchCandidatesUseCase {
	return &SearchCandidatesUseCase{talentRepo: tRepo}
}

type SearchInput struct {
	Session    auth.SessionContext
	Query      string
	Locations  []string
	Industries []string
	WorkStyles []string
	// Page is zero-based.
	Page  int
	Limit int
}

type SearchOutput struct {
	Candidates []*talent.Profile `json:"candidates"`
	Page       int               `json:"page"`
	HasMore    bool              `json:"has_more"`
}

func (uc *SearchCandidatesUseCase) Execute(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	if !input.Session.IsEmployer() {
		return nil, apperror.NewPermissionDenied("only employers can search candidates")
	}
	if input.Page < 0 {
		return nil, apperror.NewInvalidInput("page must not be negative", nil)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	// One extra row tells whether another page exists.
	found, err := uc.talentRepo.Search(ctx, talent.SearchParams{
		Query:      strings.TrimSpace(input.Query),
		Locations:  input.Locations,
		Industries: input.Industries,
		WorkStyles: input.WorkStyles,
		Limit:      limit + 1,
		Offset:     input.Page * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search candidates failed: %w", err)
	}

	out := &SearchOutput{Page: input.Page, Candidates: found}
	if len(found) > limit {
		out.Candidates = found[:limit]
		out.HasMore = true
	}
	for _, p := range out.Candidates {
		p.ResumePath = nil
	}
	return out, nil
}
