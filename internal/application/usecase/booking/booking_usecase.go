package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/internal/domain/booking"
	"github.com/khoahotran/talent-match/internal/domain/talent"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/auth"
	"github.com/khoahotran/talent-match/pkg/logger"
)

var tracer = otel.Tracer("booking_usecase")

type BookingUseCase struct {
	bookingRepo booking.Repository
	talentRepo  talent.Repository
	gateway     booking.PaymentGateway
	logger      logger.Logger
	now         func() time.Time
}

func NewBookingUseCase(bRepo booking.Repository, tRepo talent.Repository, gateway booking.PaymentGateway, log logger.Logger) *BookingUseCase {
	return &BookingUseCase{
		bookingRepo: bRepo,
		talentRepo:  tRepo,
		gateway:     gateway,
		logger:      log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// BookingOutput carries the booking plus its slot rendered for the caller.
type BookingOutput struct {
	Booking    *booking.Booking `json:"booking"`
	PriceCents int64            `json:"price_cents"`
	SlotLocal  string           `json:"slot_local,omitempty"`
}

func (uc *BookingUseCase) output(b *booking.Booking, locale auth.LocaleContext) *BookingOutput {
	out := &BookingOutput{Booking: b, PriceCents: b.Offering().PriceCents}
	if b.SlotAt != nil {
		out.SlotLocal = locale.FormatTime(*b.SlotAt)
	}
	return out
}

func (uc *BookingUseCase) talentID(ctx context.Context, session auth.SessionContext) (uuid.UUID, error) {
	if !session.IsTalent() {
		return uuid.Nil, apperror.NewPermissionDenied("talent account required")
	}
	p, err := uc.talentRepo.GetByUserID(ctx, session.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("get profile failed: %w", err)
	}
	return p.ID, nil
}

// owned loads a booking and hides other talents' bookings as not found.
func (uc *BookingUseCase) owned(ctx context.Context, session auth.SessionContext, id uuid.UUID) (*booking.Booking, error) {
	tid, err := uc.talentID(ctx, session)
	if err != nil {
		return nil, err
	}
	b, err := uc.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	if b.CheckOwner(tid) != nil {
		return nil, apperror.NewNotFound("booking", id.String())
	}
	return b, nil
}

func transitionError(err error) error {
	switch {
	case errors.Is(err, booking.ErrInvalidTransition):
		return apperror.NewAppError(apperror.ErrConflict, "booking state conflict", err.Error(), err)
	default:
		return apperror.NewInvalidInput(err.Error(), err)
	}
}

type StartInput struct {
	Session auth.SessionContext
	Locale  auth.LocaleContext
	Service booking.Service
	Answers map[string]string
}

func (uc *BookingUseCase) ExecuteStart(ctx context.Context, input StartInput) (*BookingOutput, error) {
	tid, err := uc.talentID(ctx, input.Session)
	if err != nil {
		return nil, err
	}
	b, err := booking.Start(tid, input.Service, input.Answers, uc.now())
	if err != nil {
		return nil, apperror.NewInvalidInput("invalid questionnaire", err)
	}
	if err := uc.bookingRepo.Save(ctx, b); err != nil {
		return nil, fmt.Errorf("save booking failed: %w", err)
	}
	return uc.output(b, input.Locale), nil
}

type ScheduleInput struct {
	Session   auth.SessionContext
	Locale    auth.LocaleContext
	BookingID uuid.UUID
	Slot      time.Time
}

func (uc *BookingUseCase) ExecuteSchedule(ctx context.Context, input ScheduleInput) (*BookingOutput, error) {
	b, err := uc.owned(ctx, input.Session, input.BookingID)
	if err != nil {
		return nil, err
	}
	if err := b.Schedule(input.Slot, uc.now()); err != nil {
		return nil, transitionError(err)
	}
	if err := uc.bookingRepo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("update booking failed: %w", err)
	}
	return uc.output(b, input.Locale), nil
}

type PayInput struct {
	Session   auth.SessionContext
	Locale    auth.LocaleContext
	BookingID uuid.UUID
	Card      booking.Card
}

// ExecutePay validates the card and the booking state locally before the
// gateway is called.
func (uc *BookingUseCase) ExecutePay(ctx context.Context, input PayInput) (*BookingOutput, error) {
	ctx, span := tracer.Start(ctx, "BookingPay")
	defer span.End()

	if err := input.Card.Validate(uc.now()); err != nil {
		return nil, apperror.NewInvalidInput("invalid card", err)
	}
	b, err := uc.owned(ctx, input.Session, input.BookingID)
	if err != nil {
		return nil, err
	}
	if err := b.CanPay(); err != nil {
		return nil, transitionError(err)
	}

	ref, err := uc.gateway.Charge(ctx, b.Offering().PriceCents, input.Card)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, booking.ErrCardDeclined) {
			return nil, apperror.NewInvalidInput("payment declined", err)
		}
		return nil, apperror.NewUnavailable("payment gateway", err)
	}

	if err := b.MarkPaid(ref, uc.now()); err != nil {
		return nil, transitionError(err)
	}
	if err := uc.bookingRepo.Update(ctx, b); err != nil {
		uc.logger.Error("Charged booking could not be saved", err,
			zap.String("booking_id", b.ID.String()), zap.String("payment_ref", ref))
		return nil, fmt.Errorf("update booking failed: %w", err)
	}
	uc.logger.Info("Booking paid", zap.String("booking_id", b.ID.String()), zap.String("last4", input.Card.Last4()))
	return uc.output(b, input.Locale), nil
}

type BookingRef struct {
	Session   auth.SessionContext
	Locale    auth.LocaleContext
	BookingID uuid.UUID
}

func (uc *BookingUseCase) ExecuteConfirm(ctx context.Context, input BookingRef) (*BookingOutput, error) {
	return uc.move(ctx, input, (*booking.Booking).Confirm)
}

func (uc *BookingUseCase) ExecuteCancel(ctx context.Context, input BookingRef) (*BookingOutput, error) {
	return uc.move(ctx, input, (*booking.Booking).Cancel)
}

func (uc *BookingUseCase) move(ctx context.Context, input BookingRef, step func(*booking.Booking, time.Time) error) (*BookingOutput, error) {
	b, err := uc.owned(ctx, input.Session, input.BookingID)
	if err != nil {
		return nil, err
	}
	if err := step(b, uc.now()); err != nil {
		return nil, transitionError(err)
	}
	if err := uc.bookingRepo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("update booking failed: %w", err)
	}
	return uc.output(b, input.Locale), nil
}

func (uc *BookingUseCase) ExecuteGet(ctx context.Context, input BookingRef) (*BookingOutput, error) {
	b, err := uc.owned(ctx, input.Session, input.BookingID)
	if err != nil {
		return nil, err
	}
	return uc.output(b, input.Locale), nil
}

func (uc *BookingUseCase) ExecuteList(ctx context.Context, session auth.SessionContext, locale auth.LocaleContext) ([]*BookingOutput, error) {
	tid, err := uc.talentID(ctx, session)
	if err != nil {
		return nil, err
	}
	items, err := uc.bookingRepo.ListByTalent(ctx, tid)
	if err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	out := make([]*BookingOutput, 0, len(items))
	for _, b := range items {
		out = append(out, uc.output(b, locale))
	}
	return out, nil
}
