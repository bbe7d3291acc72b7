package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/khoahotran/talent-match/internal/domain/booking"
	"github.com/khoahotran/talent-match/internal/domain/talent"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/auth"
	"github.com/khoahotran/talent-match/pkg/logger"
)

type memBookings struct {
	items map[uuid.UUID]booking.Booking
}

func (r *memBookings) Save(ctx context.Context, b *booking.Booking) error {
	r.items[b.ID] = *b
	return nil
}

func (r *memBookings) Update(ctx context.Context, b *booking.Booking) error {
	r.items[b.ID] = *b
	return nil
}

func (r *memBookings) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, ok := r.items[id]
	if !ok {
		return nil, apperror.NewNotFound("booking", id.String())
	}
	return &b, nil
}

func (r *memBookings) ListByTalent(ctx context.Context, talentID uuid.UUID) ([]*booking.Booking, error) {
	var out []*booking.Booking
	for _, b := range r.items {
		if b.TalentID == talentID {
			b := b
			out = append(out, &b)
		}
	}
	return out, nil
}

type profiles struct {
	talent.Repository
	byUser map[uuid.UUID]*talent.Profile
}

func (r profiles) GetByUserID(ctx context.Context, userID uuid.UUID) (*talent.Profile, error) {
	p, ok := r.byUser[userID]
	if !ok {
		return nil, apperror.NewNotFound("talent profile", userID.String())
	}
	return p, nil
}

type fakeGateway struct {
	calls  int
	amount int64
	err    error
}

func (g *fakeGateway) Charge(ctx context.Context, amountCents int64, card booking.Card) (string, error) {
	g.calls++
	g.amount = amountCents
	if g.err != nil {
		return "", g.err
	}
	return "ref-123", nil
}

var now = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

var goodCard = booking.Card{Number: "4242 4242 4242 4242", ExpiryMonth: 12, ExpiryYear: 2030, CVC: "123"}

type bookingFixture struct {
	uc      *BookingUseCase
	repo    *memBookings
	gateway *fakeGateway
	owner   auth.SessionContext
	other   auth.SessionContext
}

func newBookingFixture() *bookingFixture {
	owner := &talent.Profile{ID: uuid.New(), UserID: uuid.New()}
	other := &talent.Profile{ID: uuid.New(), UserID: uuid.New()}
	repo := &memBookings{items: map[uuid.UUID]booking.Booking{}}
	gw := &fakeGateway{}
	uc := NewBookingUseCase(repo, profiles{byUser: map[uuid.UUID]*talent.Profile{owner.UserID: owner, other.UserID: other}}, gw, logger.NewNop())
	uc.now = func() time.Time { return now }
	return &bookingFixture{
		uc:      uc,
		repo:    repo,
		gateway: gw,
		owner:   auth.SessionContext{UserID: owner.UserID, Role: auth.RoleTalent},
		other:   auth.SessionContext{UserID: other.UserID, Role: auth.RoleTalent},
	}
}

func (f *bookingFixture) start(t *testing.T) uuid.UUID {
	t.Helper()
	out, err := f.uc.ExecuteStart(context.Background(), StartInput{
		Session: f.owner,
		Service: booking.ServiceResumeReview,
		Answers: map[string]string{"target_role": "Backend", "experience_years": "4"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4900), out.PriceCents)
	return out.Booking.ID
}

func TestBookingWizard(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	id := f.start(t)

	hcm, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)
	vi := auth.LocaleContext{Language: language.Vietnamese, Location: hcm}

	slot := now.Add(48 * time.Hour)
	out, err := f.uc.ExecuteSchedule(ctx, ScheduleInput{Session: f.owner, Locale: vi, BookingID: id, Slot: slot})
	require.NoError(t, err)
	assert.Equal(t, booking.StatusScheduled, out.Booking.Status)
	assert.Contains(t, out.SlotLocal, "17:00 03/05/2026")

	out, err = f.uc.ExecutePay(ctx, PayInput{Session: f.owner, BookingID: id, Card: goodCard})
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPaid, out.Booking.Status)
	assert.Equal(t, int64(4900), f.gateway.amount)
	require.NotNil(t, out.Booking.PaymentRef)
	assert.Equal(t, "ref-123", *out.Booking.PaymentRef)

	out, err = f.uc.ExecuteConfirm(ctx, BookingRef{Session: f.owner, Locale: auth.DefaultLocale(), BookingID: id})
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, out.Booking.Status)
	assert.Equal(t, "Sun, 03 May 2026 10:00 UTC", out.SlotLocal)

	_, err = f.uc.ExecuteCancel(ctx, BookingRef{Session: f.owner, BookingID: id})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.ErrorIs(t, err, booking.ErrInvalidTransition)

	list, err := f.uc.ExecuteList(ctx, f.owner, auth.DefaultLocale())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBookingPay_ValidatesBeforeGateway(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	id := f.start(t)

	tests := []struct {
		name string
		card booking.Card
		want error
	}{
		{"luhn", booking.Card{Number: "4242424242424241", ExpiryMonth: 1, ExpiryYear: 2030, CVC: "123"}, booking.ErrInvalidCardNumber},
		{"expired", booking.Card{Number: goodCard.Number, ExpiryMonth: 4, ExpiryYear: 2026, CVC: "123"}, booking.ErrCardExpired},
		{"cvc", booking.Card{Number: goodCard.Number, ExpiryMonth: 1, ExpiryYear: 2030, CVC: "12"}, booking.ErrInvalidCVC},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.ExecutePay(ctx, PayInput{Session: f.owner, BookingID: id, Card: tt.card})
			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := f.uc.ExecutePay(ctx, PayInput{Session: f.owner, BookingID: id, Card: goodCard})
	assert.ErrorIs(t, err, apperror.ErrConflict, "unscheduled booking cannot be paid")
	assert.Zero(t, f.gateway.calls)
}

func TestBookingPay_GatewayErrors(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	id := f.start(t)
	_, err := f.uc.ExecuteSchedule(ctx, ScheduleInput{Session: f.owner, BookingID: id, Slot: now.Add(time.Hour)})
	require.NoError(t, err)

	f.gateway.err = booking.ErrCardDeclined
	_, err = f.uc.ExecutePay(ctx, PayInput{Session: f.owner, BookingID: id, Card: goodCard})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	f.gateway.err = errors.New("connection refused")
	_, err = f.uc.ExecutePay(ctx, PayInput{Session: f.owner, BookingID: id, Card: goodCard})
	assert.ErrorIs(t, err, apperror.ErrUnavailable)

	stored, _ := f.repo.FindByID(ctx, id)
	assert.Equal(t, booking.StatusScheduled, stored.Status)
}

func TestBooking_Ownership(t *testing.T) {
	f := newBookingFixture()
	id := f.start(t)

	_, err := f.uc.ExecuteGet(context.Background(), BookingRef{Session: f.other, BookingID: id})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.uc.ExecuteSchedule(context.Background(), ScheduleInput{Session: f.owner, BookingID: id, Slot: now.Add(-time.Minute)})
	assert.ErrorIs(t, err, booking.ErrSlotInPast)

	_, err = f.uc.ExecuteStart(context.Background(), StartInput{Session: f.owner, Service: booking.ServiceMockInterview})
	assert.ErrorIs(t, err, booking.ErrMissingAnswer)
}
