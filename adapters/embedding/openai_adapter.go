package embedding

import (
	"context"
	"fmt"

	"github.com/khoahotran/talent-match/internal/application/service"
	"github.com/khoahotran/talent-match/internal/config"
	"github.com/khoahotran/talent-match/pkg/logger"
	"github.com/pgvector/pgvector-go"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type openAIEmbedder interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// openAIAdapter talks to any OpenAI-compatible embeddings endpoint,
// including a local Ollama.
type openAIAdapter struct {
	client openAIEmbedder
	model  string
	log    logger.Logger
}

func NewOpenAIAdapter(cfg config.Config, log logger.Logger) (service.EmbeddingService, error) {
	if cfg.Embedding.BaseURL == "" && cfg.Embedding.APIKey == "" {
		return nil, fmt.Errorf("embedding base_url or api_key must be configured")
	}

	apiKey := cfg.Embedding.APIKey
	if apiKey == "" {
		apiKey = "dummy-key"
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.Embedding.BaseURL != "" {
		clientCfg.BaseURL = cfg.Embedding.BaseURL
	}

	log.Info("OpenAI-compatible Embedding Adapter initialized", zap.String("base_url", clientCfg.BaseURL), zap.String("model", cfg.Embedding.Model))
	return &openAIAdapter{client: openai.NewClientWithConfig(clientCfg), model: cfg.Embedding.Model, log: log}, nil
}

func (a *openAIAdapter) GenerateEmbeddings(ctx context.Context, text string) (pgvector.Vector, error) {
	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(a.model),
	}

	resp, err := a.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return pgvector.Vector{}, ErrEmptyEmbedding
	}
	return pgvector.NewVector(resp.Data[0].Embedding), nil
}
