package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/khoahotran/talent-match/internal/application/service"
	"github.com/khoahotran/talent-match/internal/config"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/logger"
	"go.uber.org/zap"
)

var ErrNoText = errors.New("extraction service returned no text")

const maxReplyBytes = 10 << 20

type httpExtractor struct {
	url    string
	client *http.Client
	log    logger.Logger
}

func NewHTTPExtractor(cfg config.Config, log logger.Logger) (service.TextExtractor, error) {
	if cfg.Extractor.URL == "" {
		return nil, fmt.Errorf("extractor url is not configured")
	}
	timeout := cfg.Extractor.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpExtractor{
		url:    cfg.Extractor.URL,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}, nil
}

// reply accepts the field names the extraction service has used over time.
type reply struct {
	Text    *string `json:"text"`
	Content *string `json:"content"`
	Data    *struct {
		Text *string `json:"text"`
	} `json:"data"`
}

func (r reply) text() string {
	switch {
	case r.Text != nil:
		return *r.Text
	case r.Content != nil:
		return *r.Content
	case r.Data != nil && r.Data.Text != nil:
		return *r.Data.Text
	}
	return ""
}

func (e *httpExtractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create extraction request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read extraction reply: %w", err)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return "", apperror.NewInvalidInput(fmt.Sprintf("extractor rejected %s with status %d", filename, resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("extractor returned status %d", resp.StatusCode)
	}

	var r reply
	if err := json.Unmarshal(raw, &r); err != nil {
		return "", apperror.NewInvalidInput("extractor reply is not JSON", err)
	}
	text := strings.TrimSpace(r.text())
	if text == "" {
		return "", apperror.NewInvalidInput("extractor reply has no text", ErrNoText)
	}

	e.log.Debug("Resume text extracted", zap.String("file", filename), zap.Int("chars", len(text)), zap.Duration("took", time.Since(start)))
	return text, nil
}
