package opportunity

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/internal/application/service"
	"github.com/khoahotran/talent-match/internal/domain/opportunity"
	"github.com/khoahotran/talent-match/pkg/logger"
)

// EmbedBackfillUseCase embeds opportunities that were saved while the
// embedding service was unreachable.
type EmbedBackfillUseCase struct {
	oppRepo  opportunity.Repository
	embedder service.EmbeddingService
	logger   logger.Logger
}

func NewEmbedBackfillUseCase(oRepo opportunity.Repository, embedder service.EmbeddingService, log logger.Logger) *EmbedBackfillUseCase {
	return &EmbedBackfillUseCase{oppRepo: oRepo, embedder: embedder, logger: log}
}

type EmbedBackfillInput struct {
	Limit int
}

type EmbedBackfillOutput struct {
	Embedded int
	Failed   int
}

func (uc *EmbedBackfillUseCase) Execute(ctx context.Context, input EmbedBackfillInput) (*EmbedBackfillOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}
	pending, err := uc.oppRepo.ListUnembedded(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list unembedded opportunities failed: %w", err)
	}

	out := &EmbedBackfillOutput{}
	for _, o := range pending {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		if err := embedOpportunity(ctx, uc.oppRepo, uc.embedder, o); err != nil {
			out.Failed++
			uc.logger.Warn("Opportunity backfill failed", zap.String("opportunity_id", o.ID.String()), zap.Error(err))
			continue
		}
		out.Embedded++
	}
	if len(pending) > 0 {
		uc.logger.Info("Opportunity backfill finished", zap.Int("embedded", out.Embedded), zap.Int("failed", out.Failed))
	}
	return out, nil
}
