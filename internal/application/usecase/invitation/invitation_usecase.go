package invitation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/adapters/event"
	"github.com/khoahotran/talent-match/internal/application/service"
	"github.com/khoahotran/talent-match/internal/domain/employer"
	"github.com/khoahotran/talent-match/internal/domain/invitation"
	"github.com/khoahotran/talent-match/internal/domain/opportunity"
	"github.com/khoahotran/talent-match/internal/domain/talent"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/auth"
	"github.com/khoahotran/talent-match/pkg/logger"
)

type InvitationUseCase struct {
	invRepo      invitation.Repository
	talentRepo   talent.Repository
	employerRepo employer.Repository
	oppRepo      opportunity.Repository
	publisher    service.EventPublisher
	logger       logger.Logger
	now          func() time.Time
}

func NewInvitationUseCase(iRepo invitation.Repository, tRepo talent.Repository, eRepo employer.Repository, oRepo opportunity.Repository, publisher service.EventPublisher, log logger.Logger) *InvitationUseCase {
	return &InvitationUseCase{
		invRepo:      iRepo,
		talentRepo:   tRepo,
		employerRepo: eRepo,
		oppRepo:      oRepo,
		publisher:    publisher,
		logger:       log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type InviteInput struct {
	Session       auth.SessionContext
	TalentID      uuid.UUID
	OpportunityID *uuid.UUID
	Message       string
}

func (uc *InvitationUseCase) ExecuteInvite(ctx context.Context, input InviteInput) (*invitation.Invitation, error) {
	if !input.Session.IsEmployer() {
		return nil, apperror.NewPermissionDenied("only employers can invite talents")
	}
	inv, err := invitation.New(uuid.Nil, input.TalentID, input.OpportunityID, input.Message, uc.now())
	if err != nil {
		return nil, apperror.NewInvalidInput("invalid invitation", err)
	}

	emp, err := uc.employerRepo.GetByUserID(ctx, input.Session.UserID)
	if err != nil {
		return nil, fmt.Errorf("get employer failed: %w", err)
	}
	inv.EmployerID = emp.ID

	if _, err := uc.talentRepo.FindByID(ctx, input.TalentID); err != nil {
		return nil, fmt.Errorf("get talent failed: %w", err)
	}
	if input.OpportunityID != nil {
		o, err := uc.oppRepo.FindByID(ctx, *input.OpportunityID)
		if err != nil {
			return nil, fmt.Errorf("get opportunity failed: %w", err)
		}
		if o.EmployerID != emp.ID {
			return nil, apperror.NewPermissionDenied("opportunity belongs to another employer")
		}
	}

	if err := uc.invRepo.Save(ctx, inv); err != nil {
		return nil, fmt.Errorf("save invitation failed: %w", err)
	}
	uc.publish(inv, event.InvitationEventTypeCreated)
	return inv, nil
}

type ListInput struct {
	Session auth.SessionContext
	Limit   int
	Offset  int
}

func (uc *InvitationUseCase) ExecuteListSent(ctx context.Context, input ListInput) ([]*invitation.Invitation, error) {
	if !input.Session.IsEmployer() {
		return nil, apperror.NewPermissionDenied("employer account required")
	}
	emp, err := uc.employerRepo.GetByUserID(ctx, input.Session.UserID)
	if err != nil {
		return nil, fmt.Errorf("get employer failed: %w", err)
	}
	limit, offset := page(input.Limit, input.Offset)
	return uc.invRepo.ListByEmployer(ctx, emp.ID, limit, offset)
}

func (uc *InvitationUseCase) ExecuteListReceived(ctx context.Context, input ListInput) ([]*invitation.Invitation, error) {
	if !input.Session.IsTalent() {
		return nil, apperror.NewPermissionDenied("talent account required")
	}
	p, err := uc.talentRepo.GetByUserID(ctx, input.Session.UserID)
	if err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	limit, offset := page(input.Limit, input.Offset)
	return uc.invRepo.ListByTalent(ctx, p.ID, limit, offset)
}

type RespondInput struct {
	Session      auth.SessionContext
	InvitationID uuid.UUID
	Answer       string
}

// ExecuteRespond accepts or rejects a pending invitation. Only the invited
// talent may respond, and only once.
func (uc *InvitationUseCase) ExecuteRespond(ctx context.Context, input RespondInput) (*invitation.Invitation, error) {
	if !input.Session.IsTalent() {
		return nil, apperror.NewPermissionDenied("talent account required")
	}
	to, err := invitation.ParseResponse(input.Answer)
	if err != nil {
		return nil, apperror.NewInvalidInput("answer must be accept or reject", err)
	}

	p, err := uc.talentRepo.GetByUserID(ctx, input.Session.UserID)
	if err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	inv, err := uc.invRepo.FindByID(ctx, input.InvitationID)
	if err != nil {
		return nil, fmt.Errorf("get invitation failed: %w", err)
	}

	from := inv.Status
	if err := inv.Respond(p.ID, to, uc.now()); err != nil {
		switch {
		case errors.Is(err, invitation.ErrNotRecipient):
			return nil, apperror.NewAppError(apperror.ErrPermission, "Permission denied", "not the invited talent", err)
		case errors.Is(err, invitation.ErrInvalidTransition):
			return nil, apperror.NewAppError(apperror.ErrConflict, "invitation already answered", string(from), err)
		}
		return nil, err
	}

	if err := uc.invRepo.UpdateStatus(ctx, inv, from); err != nil {
		return nil, fmt.Errorf("update invitation failed: %w", err)
	}
	uc.publish(inv, event.InvitationEventTypeResponded)
	return inv, nil
}

func (uc *InvitationUseCase) publish(inv *invitation.Invitation, eventType string) {
	payload := event.InvitationEventPayload{
		EventType:    eventType,
		InvitationID: inv.ID,
		EmployerID:   inv.EmployerID,
		TalentID:     inv.TalentID,
		Status:       string(inv.Status),
		OccurredAt:   inv.UpdatedAt,
	}
	go func() {
		if err := uc.publisher.PublishInvitationEvent(context.Background(), payload); err != nil {
			uc.logger.Error("Failed to publish Kafka invitation event", err,
				zap.String("event_type", eventType), zap.String("invitation_id", inv.ID.String()))
		}
	}()
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
