package enrichment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/adapters/event"
	"github.com/khoahotran/talent-match/internal/domain/talent"
	"github.com/khoahotran/talent-match/pkg/logger"
)

// ProcessTalentEventUseCase is the worker side of enrichment: it reacts to
// resume uploads and preference changes.
type ProcessTalentEventUseCase struct {
	readiness *ReadinessUseCase
	logger    logger.Logger
}

func NewProcessTalentEventUseCase(readiness *ReadinessUseCase, log logger.Logger) *ProcessTalentEventUseCase {
	return &ProcessTalentEventUseCase{readiness: readiness, logger: log}
}

func (uc *ProcessTalentEventUseCase) Execute(ctx context.Context, payload event.TalentEventPayload) error {
	if !payload.NeedsEnrichment() {
		uc.logger.Debug("Talent event needs no enrichment, skip", zap.String("event_type", payload.EventType))
		return nil
	}

	out, err := uc.readiness.Execute(ctx, ReadinessInput{UserID: payload.UserID})
	if err != nil {
		return fmt.Errorf("readiness check failed: %w", err)
	}

	switch out.State {
	case StateNoProfile, StateNoResume:
		uc.logger.Warn("Talent cannot be enriched, skip",
			zap.String("user_id", payload.UserID.String()), zap.String("state", string(out.State)))
		return nil
	case StateEnrichmentFailed:
		return out.EnrichmentErr
	}

	uc.logger.Info("Talent event processed",
		zap.String("user_id", payload.UserID.String()), zap.String("state", string(out.State)))
	return nil
}

// BackfillUseCase enriches profiles that have a resume but no vector, for
// events that were lost or failed.
type BackfillUseCase struct {
	talentRepo talent.Repository
	readiness  *ReadinessUseCase
	logger     logger.Logger
}

func NewBackfillUseCase(tr talent.Repository, readiness *ReadinessUseCase, log logger.Logger) *BackfillUseCase {
	return &BackfillUseCase{talentRepo: tr, readiness: readiness, logger: log}
}

type BackfillInput struct {
	Limit int
}

type BackfillOutput struct {
	Enriched int
	Failed   int
}

func (uc *BackfillUseCase) Execute(ctx context.Context, input BackfillInput) (*BackfillOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 50
	}
	profiles, err := uc.talentRepo.ListUnenriched(ctx, input.Limit)
	if err != nil {
		return nil, err
	}

	out := &BackfillOutput{}
	for _, p := range profiles {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		res, err := uc.readiness.Execute(ctx, ReadinessInput{UserID: p.UserID})
		if err != nil || !res.Ready {
			out.Failed++
			continue
		}
		out.Enriched++
	}

	if len(profiles) > 0 {
		uc.logger.Info("Enrichment backfill finished",
			zap.Int("candidates", len(profiles)), zap.Int("enriched", out.Enriched), zap.Int("failed", out.Failed))
	}
	return out, nil
}
