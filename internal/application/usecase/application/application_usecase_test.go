package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/talent-match/adapters/event"
	"github.com/khoahotran/talent-match/internal/domain/application"
	"github.com/khoahotran/talent-match/internal/domain/employer"
	"github.com/khoahotran/talent-match/internal/domain/opportunity"
	"github.com/khoahotran/talent-match/internal/domain/talent"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/auth"
	"github.com/khoahotran/talent-match/pkg/logger"
)

type memAppRepo struct {
	application.Repository
	saved []*application.Application
}

func (r *memAppRepo) Save(ctx context.Context, a *application.Application) error {
	for _, s := range r.saved {
		if s.TalentID == a.TalentID && s.OpportunityID == a.OpportunityID {
			return apperror.NewAppError(apperror.ErrConflict, "application conflict", a.OpportunityID.String(), application.ErrAlreadyApplied)
		}
	}
	r.saved = append(r.saved, a)
	return nil
}

func (r *memAppRepo) ListByTalent(ctx context.Context, talentID uuid.UUID, limit, offset int) ([]*application.Application, error) {
	var out []*application.Application
	for _, s := range r.saved {
		if s.TalentID == talentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memAppRepo) ListApplicants(ctx context.Context, opportunityID uuid.UUID, limit, offset int) ([]application.Applicant, error) {
	var out []application.Applicant
	for _, s := range r.saved {
		if s.OpportunityID == opportunityID {
			out = append(out, application.Applicant{ApplicationID: s.ID, TalentID: s.TalentID})
		}
	}
	return out, nil
}

type talentByUser struct {
	talent.Repository
	p *talent.Profile
}

func (r talentByUser) GetByUserID(ctx context.Context, userID uuid.UUID) (*talent.Profile, error) {
	return r.p, nil
}

type employersByUser struct {
	employer.Repository
	byUser map[uuid.UUID]*employer.Employer
}

func (r employersByUser) GetByUserID(ctx context.Context, userID uuid.UUID) (*employer.Employer, error) {
	e, ok := r.byUser[userID]
	if !ok {
		return nil, apperror.NewNotFound("employer", userID.String())
	}
	return e, nil
}

type oneOpp struct {
	opportunity.Repository
	o *opportunity.Opportunity
}

func (r oneOpp) FindByID(ctx context.Context, id uuid.UUID) (*opportunity.Opportunity, error) {
	if id != r.o.ID {
		return nil, apperror.NewNotFound("opportunity", id.String())
	}
	return r.o, nil
}

type appEvents struct {
	ch chan event.ApplicationEventPayload
}

func (p appEvents) PublishTalentEvent(ctx context.Context, payload event.TalentEventPayload) error {
	return nil
}
func (p appEvents) PublishInvitationEvent(ctx context.Context, payload event.InvitationEventPayload) error {
	return nil
}
func (p appEvents) PublishApplicationEvent(ctx context.Context, payload event.ApplicationEventPayload) error {
	p.ch <- payload
	return nil
}

func TestApplicationFlow(t *testing.T) {
	profile := &talent.Profile{ID: uuid.New(), UserID: uuid.New()}
	owner := &employer.Employer{ID: uuid.New(), UserID: uuid.New()}
	stranger := &employer.Employer{ID: uuid.New(), UserID: uuid.New()}
	opp := &opportunity.Opportunity{ID: uuid.New(), EmployerID: owner.ID}

	repo := &memAppRepo{}
	events := appEvents{ch: make(chan event.ApplicationEventPayload, 4)}
	uc := NewApplicationUseCase(repo, talentByUser{p: profile},
		employersByUser{byUser: map[uuid.UUID]*employer.Employer{owner.UserID: owner, stranger.UserID: stranger}},
		oneOpp{o: opp}, events, logger.NewNop())

	ctx := context.Background()
	talentSession := auth.SessionContext{UserID: profile.UserID, Role: auth.RoleTalent}

	a, err := uc.ExecuteApply(ctx, ApplyInput{Session: talentSession, OpportunityID: opp.ID})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, a.TalentID)

	select {
	case ev := <-events.ch:
		assert.Equal(t, event.ApplicationEventTypeCreated, ev.EventType)
		assert.Equal(t, a.ID, ev.ApplicationID)
	case <-time.After(time.Second):
		t.Fatal("application.created not published")
	}

	_, err = uc.ExecuteApply(ctx, ApplyInput{Session: talentSession, OpportunityID: opp.ID})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.ErrorIs(t, err, application.ErrAlreadyApplied)

	mine, err := uc.ExecuteListMine(ctx, ListMineInput{Session: talentSession})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	applicants, err := uc.ExecuteListApplicants(ctx, ListApplicantsInput{
		Session:       auth.SessionContext{UserID: owner.UserID, Role: auth.RoleEmployer},
		OpportunityID: opp.ID,
	})
	require.NoError(t, err)
	require.Len(t, applicants, 1)
	assert.Equal(t, profile.ID, applicants[0].TalentID)

	_, err = uc.ExecuteListApplicants(ctx, ListApplicantsInput{
		Session:       auth.SessionContext{UserID: stranger.UserID, Role: auth.RoleEmployer},
		OpportunityID: opp.ID,
	})
	assert.ErrorIs(t, err, apperror.ErrPermission)
}

func TestApply_EmployerDenied(t *testing.T) {
	uc := NewApplicationUseCase(&memAppRepo{}, talentByUser{}, employersByUser{}, oneOpp{}, appEvents{}, logger.NewNop())
	_, err := uc.ExecuteApply(context.Background(), ApplyInput{
		Session: auth.SessionContext{UserID: uuid.New(), Role: auth.RoleEmployer}, OpportunityID: uuid.New(),
	})
	assert.ErrorIs(t, err, apperror.ErrPermission)
}
