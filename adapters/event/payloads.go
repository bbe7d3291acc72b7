package event

import (
	"time"

	"github.com/google/uuid"
)

const (
	TalentEventTypeResumeUploaded     = "talent.resume_uploaded"
	TalentEventTypePreferencesChanged = "talent.preferences_changed"
	TalentEventTypeEnriched           = "talent.enriched"

	InvitationEventTypeCreated   = "invitation.created"
	InvitationEventTypeResponded = "invitation.responded"

	ApplicationEventTypeCreated = "application.created"
)

type TalentEventPayload struct {
	EventType  string    `json:"event_type"`
	ProfileID  uuid.UUID `json:"profile_id"`
	UserID     uuid.UUID `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NeedsEnrichment reports whether the worker should (re)build the embedding.
func (p TalentEventPayload) NeedsEnrichment() bool {
	return p.EventType == TalentEventTypeResumeUploaded || p.EventType == TalentEventTypePreferencesChanged
}

type InvitationEventPayload struct {
	EventType    string    `json:"event_type"`
	InvitationID uuid.UUID `json:"invitation_id"`
	EmployerID   uuid.UUID `json:"employer_id"`
	TalentID     uuid.UUID `json:"talent_id"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type ApplicationEventPayload struct {
	EventType     string    `json:"event_type"`
	ApplicationID uuid.UUID `json:"application_id"`
	TalentID      uuid.UUID `json:"talent_id"`
	OpportunityID uuid.UUID `json:"opportunity_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}
