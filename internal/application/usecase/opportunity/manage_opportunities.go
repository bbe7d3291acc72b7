package opportunity

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/khoahotran/talent-match/internal/domain/employer"
	"github.com/khoahotran/talent-match/internal/domain/opportunity"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/auth"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ManageOpportunitiesUseCase covers the employer's own listings plus the
// public single-opportunity view.
type ManageOpportunitiesUseCase struct {
	oppRepo      opportunity.Repository
	employerRepo employer.Repository
}

func NewManageOpportunitiesUseCase(oRepo opportunity.Repository, eRepo employer.Repository) *ManageOpportunitiesUseCase {
	return &ManageOpportunitiesUseCase{oppRepo: oRepo, employerRepo: eRepo}
}

func (uc *ManageOpportunitiesUseCase) ownEmployer(ctx context.Context, session auth.SessionContext) (*employer.Employer, error) {
	if !session.IsEmployer() {
		return nil, apperror.NewPermissionDenied("employer account required")
	}
	emp, err := uc.employerRepo.GetByUserID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("get employer failed: %w", err)
	}
	return emp, nil
}

type ListOwnInput struct {
	Session auth.SessionContext
	Limit   int
	Offset  int
}

func (uc *ManageOpportunitiesUseCase) ExecuteListOwn(ctx context.Context, input ListOwnInput) ([]*opportunity.Opportunity, error) {
	emp, err := uc.ownEmployer(ctx, input.Session)
	if err != nil {
		return nil, err
	}
	limit, offset := clampPage(input.Limit, input.Offset)
	items, err := uc.oppRepo.ListByEmployer(ctx, emp.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list opportunities failed: %w", err)
	}
	return items, nil
}

type DeleteInput struct {
	Session       auth.SessionContext
	OpportunityID uuid.UUID
}

// ExecuteDelete removes an opportunity owned by the caller. Someone else's
// opportunity is reported as not found.
func (uc *ManageOpportunitiesUseCase) ExecuteDelete(ctx context.Context, input DeleteInput) error {
	emp, err := uc.ownEmployer(ctx, input.Session)
	if err != nil {
		return err
	}
	if err := uc.oppRepo.Delete(ctx, input.OpportunityID, emp.ID); err != nil {
		return fmt.Errorf("delete opportunity failed: %w", err)
	}
	return nil
}

func (uc *ManageOpportunitiesUseCase) ExecuteGet(ctx context.Context, id uuid.UUID) (*opportunity.Opportunity, error) {
	o, err := uc.oppRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get opportunity failed: %w", err)
	}
	return o, nil
}
