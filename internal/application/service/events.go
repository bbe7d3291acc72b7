package service

import (
	"context"

	"github.com/khoahotran/talent-match/adapters/event"
)

type EventPublisher interface {
	PublishTalentEvent(ctx context.Context, payload event.TalentEventPayload) error
	PublishInvitationEvent(ctx context.Context, payload event.InvitationEventPayload) error
	PublishApplicationEvent(ctx context.Context, payload event.ApplicationEventPayload) error
}
