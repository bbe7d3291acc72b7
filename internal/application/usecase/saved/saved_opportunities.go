package saved

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/internal/domain/opportunity"
	"github.com/khoahotran/talent-match/internal/domain/saved"
	"github.com/khoahotran/talent-match/internal/domain/talent"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/auth"
	"github.com/khoahotran/talent-match/pkg/logger"
)

// LiveSets exposes the saved set of an open feed session, if any.
type LiveSets interface {
	SavedSet(userID uuid.UUID) *saved.Set
}

type SavedOpportunitiesUseCase struct {
	savedRepo  saved.Repository
	talentRepo talent.Repository
	oppRepo    opportunity.Repository
	live       LiveSets
	logger     logger.Logger
}

func NewSavedOpportunitiesUseCase(sRepo saved.Repository, tRepo talent.Repository, oRepo opportunity.Repository, live LiveSets, log logger.Logger) *SavedOpportunitiesUseCase {
	return &SavedOpportunitiesUseCase{
		savedRepo:  sRepo,
		talentRepo: tRepo,
		oppRepo:    oRepo,
		live:       live,
		logger:     log,
	}
}

type ToggleInput struct {
	Session auth.SessionContext
	Kind    saved.Kind
	ID      uuid.UUID
}

type ToggleOutput struct {
	ID    uuid.UUID `json:"id"`
	Saved bool      `json:"saved"`
}

func (uc *SavedOpportunitiesUseCase) profile(ctx context.Context, session auth.SessionContext) (*talent.Profile, error) {
	if !session.IsTalent() {
		return nil, apperror.NewPermissionDenied("talent account required")
	}
	p, err := uc.talentRepo.GetByUserID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	return p, nil
}

// ExecuteToggle flips the open feed's saved flag first, then writes. A failed
// write rolls the flag back.
func (uc *SavedOpportunitiesUseCase) ExecuteToggle(ctx context.Context, input ToggleInput) (*ToggleOutput, error) {
	if input.Kind != saved.KindSave && input.Kind != saved.KindUnsave {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("unknown saved command %q", input.Kind), nil)
	}
	p, err := uc.profile(ctx, input.Session)
	if err != nil {
		return nil, err
	}

	set := uc.live.SavedSet(input.Session.UserID)
	if set == nil {
		set = saved.NewSet()
	}
	cmd := set.ApplyOptimistic(saved.Command{Kind: input.Kind, ID: input.ID})

	var writeErr error
	if input.Kind == saved.KindSave {
		writeErr = uc.savedRepo.SaveOpportunity(ctx, saved.SavedOpportunity{
			TalentID:      p.ID,
			OpportunityID: input.ID,
			SavedAt:       time.Now().UTC(),
		})
	} else {
		writeErr = uc.savedRepo.UnsaveOpportunity(ctx, p.ID, input.ID)
	}

	if err := set.Reconcile(cmd, writeErr); err != nil {
		uc.logger.Warn("Saved toggle rolled back",
			zap.String("opportunity_id", input.ID.String()), zap.String("kind", string(input.Kind)), zap.Error(err))
		return nil, fmt.Errorf("%s opportunity failed: %w", input.Kind, err)
	}
	return &ToggleOutput{ID: input.ID, Saved: input.Kind == saved.KindSave}, nil
}

type ListSavedInput struct {
	Session auth.SessionContext
}

// ExecuteList returns saved opportunities, most recently saved first.
func (uc *SavedOpportunitiesUseCase) ExecuteList(ctx context.Context, input ListSavedInput) ([]*opportunity.Opportunity, error) {
	p, err := uc.profile(ctx, input.Session)
	if err != nil {
		return nil, err
	}
	ids, err := uc.savedRepo.ListOpportunityIDs(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list saved failed: %w", err)
	}
	if len(ids) == 0 {
		return []*opportunity.Opportunity{}, nil
	}
	opps, err := uc.oppRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load saved opportunities failed: %w", err)
	}

	byID := make(map[uuid.UUID]*opportunity.Opportunity, len(opps))
	for _, o := range opps {
		byID[o.ID] = o
	}
	out := make([]*opportunity.Opportunity, 0, len(ids))
	for _, id := range ids {
		if o, ok := byID[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}
