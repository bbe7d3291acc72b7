// Package invitation models employer-to-talent invitations.
//
//	PENDING ──► ACCEPTED
//	   │
//	   └──────► REJECTED
//
// ACCEPTED and REJECTED are terminal.
package invitation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errors.New("invalid invitation status transition")
	ErrNotRecipient      = errors.New("only the invited talent can respond")
	ErrMessageTooLong    = errors.New("message exceeds 2000 characters")
)

const maxMessageLength = 2000

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

var validTransitions = map[Status][]Status{
	StatusPending: {StatusAccepted, StatusRejected},
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusAccepted, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown invitation status %q", s)
}

// ParseResponse maps a talent's answer ("accept"/"reject") to a status.
func ParseResponse(answer string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "accept", "accepted":
		return StatusAccepted, nil
	case "reject", "rejected", "decline":
		return StatusRejected, nil
	}
	return "", fmt.Errorf("unknown response %q", answer)
}

func IsTransitionAllowed(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Invitation struct {
	ID            uuid.UUID  `json:"id"`
	EmployerID    uuid.UUID  `json:"employer_id"`
	TalentID      uuid.UUID  `json:"talent_id"`
	OpportunityID *uuid.UUID `json:"opportunity_id,omitempty"`
	Message       string     `json:"message"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func New(employerID, talentID uuid.UUID, opportunityID *uuid.UUID, message string, now time.Time) (*Invitation, error) {
	message = strings.TrimSpace(message)
	if len([]rune(message)) > maxMessageLength {
		return nil, ErrMessageTooLong
	}
	return &Invitation{
		ID:            uuid.New(),
		EmployerID:    employerID,
		TalentID:      talentID,
		OpportunityID: opportunityID,
		Message:       message,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Respond moves the invitation to a terminal status on behalf of talentID.
func (i *Invitation) Respond(talentID uuid.UUID, to Status, now time.Time) error {
	if i.TalentID != talentID {
		return ErrNotRecipient
	}
	if !IsTransitionAllowed(i.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, i.Status, to)
	}
	i.Status = to
	i.UpdatedAt = now
	return nil
}

type Repository interface {
	Save(ctx context.Context, inv *Invitation) error
	FindByID(ctx context.Context, id uuid.UUID) (*Invitation, error)
	UpdateStatus(ctx context.Context, inv *Invitation, from Status) error
	ListByEmployer(ctx context.Context, employerID uuid.UUID, limit, offset int) ([]*Invitation, error)
	ListByTalent(ctx context.Context, talentID uuid.UUID, limit, offset int) ([]*Invitation, error)
}
