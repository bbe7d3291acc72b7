package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/khoahotran/talent-match/internal/application/service"
	"github.com/khoahotran/talent-match/internal/config"
	"github.com/khoahotran/talent-match/pkg/logger"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultGeminiModel = "text-embedding-004"

type geminiEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type geminiAdapter struct {
	models geminiEmbedder
	model  string
}

func NewGeminiAdapter(ctx context.Context, cfg config.Config, log logger.Logger) (service.EmbeddingService, error) {
	apiKey := strings.TrimSpace(cfg.Embedding.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Embedding.Model)
	if model == "" {
		model = defaultGeminiModel
	}

	log.Info("Gemini Embedding Adapter initialized", zap.String("model", model))
	return &geminiAdapter{models: client.Models, model: model}, nil
}

func (a *geminiAdapter) GenerateEmbeddings(ctx context.Context, text string) (pgvector.Vector, error) {
	resp, err := a.models.EmbedContent(ctx, a.model, genai.Text(text), nil)
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("gemini embedding request failed: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return pgvector.Vector{}, ErrEmptyEmbedding
	}
	return pgvector.NewVector(resp.Embeddings[0].Values), nil
}
