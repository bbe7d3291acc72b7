package candidate

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/talent-match/internal/domain/talent"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/auth"
)

type recordingRepo struct {
	talent.Repository
	params talent.SearchParams
	rows   int
}

func (r *recordingRepo) Search(ctx context.Context, params talent.SearchParams) ([]*talent.Profile, error) {
	r.params = params
	n := r.rows
	if n > params.Limit {
		n = params.Limit
	}
	out := make([]*talent.Profile, n)
	for i := range out {
		path := "u/r.pdf"
		out[i] = &talent.Profile{ID: uuid.New(), ResumePath: &path}
	}
	return out, nil
}

var employerSession = auth.SessionContext{UserID: uuid.New(), Role: auth.RoleEmployer}

func TestSearchCandidates_Paging(t *testing.T) {
	repo := &recordingRepo{rows: 11}
	uc := NewSearchCandidatesUseCase(repo)

	out, err := uc.Execute(context.Background(), SearchInput{
		Session:   employerSession,
		Query:     "  golang ",
		Locations: []string{"Hanoi"},
		Page:      2,
		Limit:     10,
	})
	require.NoError(t, err)
	assert.Equal(t, "golang", repo.params.Query)
	assert.Equal(t, 11, repo.params.Limit)
	assert.Equal(t, 20, repo.params.Offset)
	assert.Equal(t, []string{"Hanoi"}, repo.params.Locations)
	assert.Len(t, out.Candidates, 10)
	assert.True(t, out.HasMore)
	for _, p := range out.Candidates {
		assert.Nil(t, p.ResumePath)
	}
}

func TestSearchCandidates_LastPage(t *testing.T) {
	repo := &recordingRepo{rows: 3}
	out, err := NewSearchCandidatesUseCase(repo).Execute(context.Background(), SearchInput{Session: employerSession, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize+1, repo.params.Limit)
	assert.Len(t, out.Candidates, 3)
	assert.False(t, out.HasMore)
}

func TestSearchCandidates_Rejects(t *testing.T) {
	uc := NewSearchCandidatesUseCase(&recordingRepo{})

	_, err := uc.Execute(context.Background(), SearchInput{Session: auth.SessionContext{UserID: uuid.New(), Role: auth.RoleTalent}})
	assert.ErrorIs(t, err, apperror.ErrPermission)

	_, err = uc.Execute(context.Background(), SearchInput{Session: employerSession, Page: -1})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}
