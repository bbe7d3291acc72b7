package enrichment

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/adapters/event"
	"github.com/khoahotran/talent-match/internal/application/service"
	"github.com/khoahotran/talent-match/internal/domain/talent"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/logger"
)

var ErrEnrichmentFailed = errors.New("profile enrichment failed")

type Step string

const (
	StepDownload Step = "download"
	StepExtract  Step = "extract"
	StepEmbed    Step = "embed"
	StepPersist  Step = "persist"
)

// StepError tags a pipeline failure with the step that produced it.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("enrichment step %q: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() []error {
	return []error{ErrEnrichmentFailed, e.Err}
}

// FailedStep returns the step name carried by err, or "" if err did not
// come out of the pipeline.
func FailedStep(err error) Step {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}

type Options struct {
	StepTimeout   time.Duration
	MaxRetries    int
	RetryInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.StepTimeout <= 0 {
		o.StepTimeout = 30 * time.Second
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = 500 * time.Millisecond
	}
	return o
}

var tracer = otel.Tracer("enrichment_usecase")

type EnrichProfileUseCase struct {
	talentRepo talent.Repository
	storage    service.ResumeStorage
	extractor  service.TextExtractor
	embedder   service.EmbeddingService
	publisher  service.EventPublisher
	opts       Options
	logger     logger.Logger
}

func NewEnrichProfileUseCase(
	tr talent.Repository,
	storage service.ResumeStorage,
	extractor service.TextExtractor,
	embedder service.EmbeddingService,
	publisher service.EventPublisher,
	opts Options,
	log logger.Logger,
) *EnrichProfileUseCase {
	return &EnrichProfileUseCase{
		talentRepo: tr,
		storage:    storage,
		extractor:  extractor,
		embedder:   embedder,
		publisher:  publisher,
		opts:       opts.withDefaults(),
		logger:     log,
	}
}

type EnrichInput struct {
	Profile *talent.Profile
}

type EnrichOutput struct {
	Profile *talent.Profile
}

// Execute runs download, extract, embed and persist in that order. On
// success the returned profile carries the vector that was written.
func (uc *EnrichProfileUseCase) Execute(ctx context.Context, input EnrichInput) (*EnrichOutput, error) {
	p := input.Profile
	if p == nil {
		return nil, apperror.NewInvalidInput("profile is required", nil)
	}
	if !p.HasResume() {
		return nil, apperror.NewInvalidInput("profile has no resume", nil)
	}

	ctx, span := tracer.Start(ctx, "EnrichProfile")
	defer span.End()
	span.SetAttributes(attribute.String("profile_id", p.ID.String()))

	log := uc.logger.With(zap.String("profile_id", p.ID.String()))

	var data []byte
	err := uc.runStep(ctx, log, StepDownload, func(ctx context.Context) error {
		var err error
		data, err = uc.storage.Download(ctx, *p.ResumePath)
		return err
	})
	if err != nil {
		return nil, uc.fail(span, StepDownload, err)
	}

	var text string
	err = uc.runStep(ctx, log, StepExtract, func(ctx context.Context) error {
		var err error
		text, err = uc.extractor.Extract(ctx, path.Base(*p.ResumePath), data)
		return err
	})
	if err != nil {
		return nil, uc.fail(span, StepExtract, err)
	}

	combined := Concatenate(text, p)

	var vec pgvector.Vector
	err = uc.runStep(ctx, log, StepEmbed, func(ctx context.Context) error {
		var err error
		vec, err = uc.embedder.GenerateEmbeddings(ctx, combined)
		return err
	})
	if err != nil {
		return nil, uc.fail(span, StepEmbed, err)
	}

	err = uc.runStep(ctx, log, StepPersist, func(ctx context.Context) error {
		return uc.talentRepo.UpdateEmbedding(ctx, p.ID, vec)
	})
	if err != nil {
		return nil, uc.fail(span, StepPersist, err)
	}

	p.Embedding = &vec
	log.Info("Talent profile enriched", zap.Int("dimensions", len(vec.Slice())))

	if uc.publisher != nil {
		go func() {
			err := uc.publisher.PublishTalentEvent(context.Background(), event.TalentEventPayload{
				EventType:  event.TalentEventTypeEnriched,
				ProfileID:  p.ID,
				UserID:     p.UserID,
				OccurredAt: time.Now().UTC(),
			})
			if err != nil {
				uc.logger.Error("Failed to publish Kafka 'enriched' event", err, zap.String("profile_id", p.ID.String()))
			}
		}()
	}

	return &EnrichOutput{Profile: p}, nil
}

func (uc *EnrichProfileUseCase) fail(span trace.Span, step Step, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(step))
	uc.logger.Error("Enrichment pipeline aborted", err, zap.String("step", string(step)))

	stepErr := &StepError{Step: step, Err: err}
	if errors.Is(err, apperror.ErrInvalidInput) || errors.Is(err, apperror.ErrNotFound) {
		return apperror.NewAppError(apperror.ErrInvalidInput, "Resume could not be processed", string(step), stepErr)
	}
	return apperror.NewAppError(apperror.ErrUnavailable, "Profile enrichment is unavailable", string(step), stepErr)
}

// runStep gives fn its own timeout per attempt and retries transient
// failures with exponential backoff.
func (uc *EnrichProfileUseCase) runStep(ctx context.Context, log logger.Logger, step Step, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "enrich."+string(step))
	defer span.End()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = uc.opts.RetryInterval
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(uc.opts.MaxRetries)), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		stepCtx, cancel := context.WithTimeout(ctx, uc.opts.StepTimeout)
		defer cancel()

		err := fn(stepCtx)
		if err == nil {
			return nil
		}
		if isPermanent(ctx, err) {
			return backoff.Permanent(err)
		}
		log.Warn("Enrichment step failed, will retry",
			zap.String("step", string(step)), zap.Int("attempt", attempt), zap.Error(err))
		return err
	}, policy)

	span.SetAttributes(attribute.Int("attempts", attempt))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func isPermanent(parent context.Context, err error) bool {
	if parent.Err() != nil {
		return true
	}
	return errors.Is(err, apperror.ErrInvalidInput) ||
		errors.Is(err, apperror.ErrNotFound) ||
		errors.Is(err, apperror.ErrPermission)
}

// Concatenate builds the embedding text: resume text, bio, work styles,
// industries, locations. Lists are joined with ", " and empty segments
// are dropped.
func Concatenate(resumeText string, p *talent.Profile) string {
	segments := []string{
		resumeText,
		p.Bio,
		joinList(p.WorkStyles),
		joinList(p.Industries),
		joinList(p.Locations),
	}
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func joinList(items []string) string {
	kept := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			kept = append(kept, it)
		}
	}
	return strings.Join(kept, ", ")
}
