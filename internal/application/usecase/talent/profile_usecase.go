package talent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/adapters/event"
	"github.com/khoahotran/talent-match/internal/application/service"
	"github.com/khoahotran/talent-match/internal/domain/talent"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/logger"
)

type ProfileUseCase struct {
	talentRepo talent.Repository
	storage    service.ResumeStorage
	publisher  service.EventPublisher
	logger     logger.Logger
}

func NewProfileUseCase(repo talent.Repository, storage service.ResumeStorage, publisher service.EventPublisher, log logger.Logger) *ProfileUseCase {
	return &ProfileUseCase{
		talentRepo: repo,
		storage:    storage,
		publisher:  publisher,
		logger:     log,
	}
}

type GetProfileInput struct {
	UserID uuid.UUID
}

type ProfileOutput struct {
	Profile *talent.Profile
	// Enriched reports whether recommendations can be served right now.
	Enriched bool
}

func (uc *ProfileUseCase) ExecuteGetProfile(ctx context.Context, input GetProfileInput) (*ProfileOutput, error) {
	p, err := uc.talentRepo.GetByUserID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	return &ProfileOutput{Profile: p, Enriched: p.HasEmbedding()}, nil
}

type UpdatePreferencesInput struct {
	UserID      uuid.UUID
	Preferences talent.Preferences
}

// ExecuteUpdatePreferences saves the edited fields. When the change affects
// the embedding text the vector is cleared and re-enrichment is requested.
func (uc *ProfileUseCase) ExecuteUpdatePreferences(ctx context.Context, input UpdatePreferencesInput) (*ProfileOutput, error) {
	if input.Preferences.FullName != nil && *input.Preferences.FullName == "" {
		return nil, apperror.NewInvalidInput("full name must not be empty", nil)
	}

	p, err := uc.talentRepo.GetByUserID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}

	stale := p.Apply(input.Preferences)
	p.UpdatedAt = time.Now().UTC()
	if err := uc.talentRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update profile failed: %w", err)
	}

	if stale {
		uc.requestEnrichment(p, event.TalentEventTypePreferencesChanged)
	}
	return &ProfileOutput{Profile: p, Enriched: p.HasEmbedding()}, nil
}

type ReplaceResumeInput struct {
	UserID uuid.UUID
	Resume *talent.ResumeFile
}

// ExecuteReplaceResume uploads the new file, points the profile at it and
// clears the embedding. The old object is removed afterwards.
func (uc *ProfileUseCase) ExecuteReplaceResume(ctx context.Context, input ReplaceResumeInput) (*ProfileOutput, error) {
	ext, contentType, err := input.Resume.Validate()
	if err != nil {
		return nil, apperror.NewInvalidInput("invalid resume", err)
	}

	p, err := uc.talentRepo.GetByUserID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}

	newPath := talent.ResumeObjectPath(input.UserID, ext)
	if err := uc.storage.Upload(ctx, newPath, input.Resume.Body, input.Resume.Size, contentType); err != nil {
		return nil, apperror.NewUnavailable("resume storage", err)
	}

	var oldPath string
	if p.HasResume() {
		oldPath = *p.ResumePath
	}
	p.ResumePath = &newPath
	p.ClearEmbedding()
	p.UpdatedAt = time.Now().UTC()

	if err := uc.talentRepo.Update(ctx, p); err != nil {
		go uc.storage.Delete(context.Background(), newPath)
		return nil, fmt.Errorf("update profile failed: %w", err)
	}

	if oldPath != "" && oldPath != newPath {
		go func() {
			if err := uc.storage.Delete(context.Background(), oldPath); err != nil {
				uc.logger.Warn("Failed to delete replaced resume", zap.String("path", oldPath), zap.Error(err))
			}
		}()
	}

	uc.requestEnrichment(p, event.TalentEventTypeResumeUploaded)
	return &ProfileOutput{Profile: p}, nil
}

func (uc *ProfileUseCase) requestEnrichment(p *talent.Profile, eventType string) {
	payload := event.TalentEventPayload{
		EventType:  eventType,
		ProfileID:  p.ID,
		UserID:     p.UserID,
		OccurredAt: time.Now().UTC(),
	}
	go func() {
		if err := uc.publisher.PublishTalentEvent(context.Background(), payload); err != nil {
			uc.logger.Error("Failed to publish Kafka talent event", err,
				zap.String("event_type", eventType), zap.String("profile_id", p.ID.String()))
		}
	}()
}
