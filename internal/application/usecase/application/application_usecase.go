package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/adapters/event"
	"github.com/khoahotran/talent-match/internal/application/service"
	"github.com/khoahotran/talent-match/internal/domain/application"
	"github.com/khoahotran/talent-match/internal/domain/employer"
	"github.com/khoahotran/talent-match/internal/domain/opportunity"
	"github.com/khoahotran/talent-match/internal/domain/talent"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/auth"
	"github.com/khoahotran/talent-match/pkg/logger"
)

type ApplicationUseCase struct {
	appRepo      application.Repository
	talentRepo   talent.Repository
	employerRepo employer.Repository
	oppRepo      opportunity.Repository
	publisher    service.EventPublisher
	logger       logger.Logger
}

func NewApplicationUseCase(aRepo application.Repository, tRepo talent.Repository, eRepo employer.Repository, oRepo opportunity.Repository, publisher service.EventPublisher, log logger.Logger) *ApplicationUseCase {
	return &ApplicationUseCase{
		appRepo:      aRepo,
		talentRepo:   tRepo,
		employerRepo: eRepo,
		oppRepo:      oRepo,
		publisher:    publisher,
		logger:       log,
	}
}

type ApplyInput struct {
	Session       auth.SessionContext
	OpportunityID uuid.UUID
}

// ExecuteApply records interest in an opportunity. Applying twice is a
// conflict.
func (uc *ApplicationUseCase) ExecuteApply(ctx context.Context, input ApplyInput) (*application.Application, error) {
	if !input.Session.IsTalent() {
		return nil, apperror.NewPermissionDenied("only talents can apply")
	}
	p, err := uc.talentRepo.GetByUserID(ctx, input.Session.UserID)
	if err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}

	a := &application.Application{
		ID:            uuid.New(),
		TalentID:      p.ID,
		OpportunityID: input.OpportunityID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := uc.appRepo.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("apply failed: %w", err)
	}

	go func() {
		err := uc.publisher.PublishApplicationEvent(context.Background(), event.ApplicationEventPayload{
			EventType:     event.ApplicationEventTypeCreated,
			ApplicationID: a.ID,
			TalentID:      a.TalentID,
			OpportunityID: a.OpportunityID,
			OccurredAt:    a.CreatedAt,
		})
		if err != nil {
			uc.logger.Error("Failed to publish Kafka 'application.created' event", err, zap.String("application_id", a.ID.String()))
		}
	}()

	return a, nil
}

type ListMineInput struct {
	Session auth.SessionContext
	Limit   int
	Offset  int
}

func (uc *ApplicationUseCase) ExecuteListMine(ctx context.Context, input ListMineInput) ([]*application.Application, error) {
	if !input.Session.IsTalent() {
		return nil, apperror.NewPermissionDenied("talent account required")
	}
	p, err := uc.talentRepo.GetByUserID(ctx, input.Session.UserID)
	if err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	limit, offset := page(input.Limit, input.Offset)
	items, err := uc.appRepo.ListByTalent(ctx, p.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list applications failed: %w", err)
	}
	return items, nil
}

type ListApplicantsInput struct {
	Session       auth.SessionContext
	OpportunityID uuid.UUID
	Limit         int
	Offset        int
}

// ExecuteListApplicants is only allowed for the employer that posted the
// opportunity.
func (uc *ApplicationUseCase) ExecuteListApplicants(ctx context.Context, input ListApplicantsInput) ([]application.Applicant, error) {
	if !input.Session.IsEmployer() {
		return nil, apperror.NewPermissionDenied("employer account required")
	}
	emp, err := uc.employerRepo.GetByUserID(ctx, input.Session.UserID)
	if err != nil {
		return nil, fmt.Errorf("get employer failed: %w", err)
	}
	o, err := uc.oppRepo.FindByID(ctx, input.OpportunityID)
	if err != nil {
		return nil, fmt.Errorf("get opportunity failed: %w", err)
	}
	if o.EmployerID != emp.ID {
		return nil, apperror.NewPermissionDenied("opportunity belongs to another employer")
	}

	limit, offset := page(input.Limit, input.Offset)
	items, err := uc.appRepo.ListApplicants(ctx, o.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list applicants failed: %w", err)
	}
	return items, nil
}

func page(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
