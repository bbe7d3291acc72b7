// Package booking models the career-services booking wizard.
//
//	QUESTIONNAIRE ──► SCHEDULED ──► PAID ──► CONFIRMED
//	      │               │           │
//	      └───────────────┴───────────┴──► CANCELLED
//
// CONFIRMED and CANCELLED are terminal.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrUnknownService    = errors.New("unknown career service")
	ErrMissingAnswer     = errors.New("required questionnaire answer missing")
	ErrSlotInPast        = errors.New("slot must be in the future")
	ErrNotOwner          = errors.New("booking belongs to another talent")
)

type Status string

const (
	StatusQuestionnaire Status = "questionnaire"
	StatusScheduled     Status = "scheduled"
	StatusPaid          Status = "paid"
	StatusConfirmed     Status = "confirmed"
	StatusCancelled     Status = "cancelled"
)

var validTransitions = map[Status][]Status{
	StatusQuestionnaire: {StatusScheduled, StatusCancelled},
	StatusScheduled:     {StatusPaid, StatusCancelled},
	StatusPaid:          {StatusConfirmed, StatusCancelled},
}

func IsTransitionAllowed(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Service string

const (
	ServiceResumeReview   Service = "resume_review"
	ServiceCareerCoaching Service = "career_coaching"
	ServiceMockInterview  Service = "mock_interview"
)

// Offering describes a bookable service: its price in cents and the
// questionnaire keys that must be answered.
type Offering struct {
	PriceCents   int64
	Duration     time.Duration
	RequiredKeys []string
}

var Catalog = map[Service]Offering{
	ServiceResumeReview:   {PriceCents: 4900, Duration: 30 * time.Minute, RequiredKeys: []string{"target_role", "experience_years"}},
	ServiceCareerCoaching: {PriceCents: 9900, Duration: 60 * time.Minute, RequiredKeys: []string{"goal", "current_role"}},
	ServiceMockInterview:  {PriceCents: 7900, Duration: 45 * time.Minute, RequiredKeys: []string{"target_role", "interview_type"}},
}

type Booking struct {
	ID         uuid.UUID         `json:"id"`
	TalentID   uuid.UUID         `json:"talent_id"`
	Service    Service           `json:"service"`
	Answers    map[string]string `json:"answers"`
	SlotAt     *time.Time        `json:"slot_at,omitempty"`
	Status     Status            `json:"status"`
	PaymentRef *string           `json:"payment_ref,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Start validates the questionnaire and opens a booking.
func Start(talentID uuid.UUID, service Service, answers map[string]string, now time.Time) (*Booking, error) {
	offering, ok := Catalog[service]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownService, service)
	}
	cleaned := make(map[string]string, len(answers))
	for k, v := range answers {
		if v = strings.TrimSpace(v); v != "" {
			cleaned[k] = v
		}
	}
	for _, key := range offering.RequiredKeys {
		if _, ok := cleaned[key]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingAnswer, key)
		}
	}
	return &Booking{
		ID:        uuid.New(),
		TalentID:  talentID,
		Service:   service,
		Answers:   cleaned,
		Status:    StatusQuestionnaire,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (b *Booking) Offering() Offering { return Catalog[b.Service] }

func (b *Booking) CheckOwner(talentID uuid.UUID) error {
	if b.TalentID != talentID {
		return ErrNotOwner
	}
	return nil
}

func (b *Booking) transition(to Status, now time.Time) error {
	if !IsTransitionAllowed(b.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, to)
	}
	b.Status = to
	b.UpdatedAt = now
	return nil
}

func (b *Booking) Schedule(slot, now time.Time) error {
	if !slot.After(now) {
		return ErrSlotInPast
	}
	if err := b.transition(StatusScheduled, now); err != nil {
		return err
	}
	s := slot.UTC()
	b.SlotAt = &s
	return nil
}

// CanPay is checked before the payment gateway is contacted.
func (b *Booking) CanPay() error {
	if !IsTransitionAllowed(b.Status, StatusPaid) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, StatusPaid)
	}
	return nil
}

func (b *Booking) MarkPaid(ref string, now time.Time) error {
	if err := b.transition(StatusPaid, now); err != nil {
		return err
	}
	b.PaymentRef = &ref
	return nil
}

func (b *Booking) Confirm(now time.Time) error {
	return b.transition(StatusConfirmed, now)
}

func (b *Booking) Cancel(now time.Time) error {
	return b.transition(StatusCancelled, now)
}

type Repository interface {
	Save(ctx context.Context, b *Booking) error
	Update(ctx context.Context, b *Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListByTalent(ctx context.Context, talentID uuid.UUID) ([]*Booking, error)
}
