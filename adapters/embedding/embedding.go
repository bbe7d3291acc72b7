package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/khoahotran/talent-match/internal/application/service"
	"github.com/khoahotran/talent-match/internal/config"
	"github.com/khoahotran/talent-match/pkg/logger"
)

var ErrEmptyEmbedding = errors.New("embedding service returned no vector")

// New picks the adapter named by embedding.provider.
func New(ctx context.Context, cfg config.Config, log logger.Logger) (service.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case "", "openai", "ollama":
		return NewOpenAIAdapter(cfg, log)
	case "gemini":
		return NewGeminiAdapter(ctx, cfg, log)
	}
	return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
}
