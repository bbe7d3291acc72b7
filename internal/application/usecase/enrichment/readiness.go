package enrichment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/internal/application/service"
	"github.com/khoahotran/talent-match/internal/domain/talent"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/logger"
)

var ErrEnrichmentInProgress = errors.New("enrichment is running elsewhere")

type State string

const (
	StateReady            State = "ready"
	StateEnriched         State = "enriched"
	StateNoProfile        State = "no_profile"
	StateNoResume         State = "no_resume"
	StateEnrichmentFailed State = "enrichment_failed"
)

// Enricher is the pipeline the readiness check falls back to.
type Enricher interface {
	Execute(ctx context.Context, input EnrichInput) (*EnrichOutput, error)
}

type ReadinessOptions struct {
	LockTTL time.Duration
	// WaitTimeout bounds how long a caller that lost the lock polls for the
	// winner's result.
	WaitTimeout  time.Duration
	PollInterval time.Duration
}

func (o ReadinessOptions) withDefaults() ReadinessOptions {
	if o.LockTTL <= 0 {
		o.LockTTL = 2 * time.Minute
	}
	if o.WaitTimeout <= 0 {
		o.WaitTimeout = 10 * time.Second
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 250 * time.Millisecond
	}
	return o
}

type ReadinessUseCase struct {
	talentRepo talent.Repository
	enricher   Enricher
	locker     service.Locker
	opts       ReadinessOptions
	logger     logger.Logger
}

func NewReadinessUseCase(tr talent.Repository, enricher Enricher, locker service.Locker, opts ReadinessOptions, log logger.Logger) *ReadinessUseCase {
	return &ReadinessUseCase{
		talentRepo: tr,
		enricher:   enricher,
		locker:     locker,
		opts:       opts.withDefaults(),
		logger:     log,
	}
}

type ReadinessInput struct {
	UserID uuid.UUID
}

type ReadinessOutput struct {
	Ready         bool
	State         State
	Profile       *talent.Profile
	EnrichmentErr error
}

// Execute makes sure the talent has a persisted embedding before any
// recommendation fetch. It only runs the pipeline when the vector is
// missing, so repeated calls after a success are no-ops.
func (uc *ReadinessUseCase) Execute(ctx context.Context, input ReadinessInput) (*ReadinessOutput, error) {
	if input.UserID == uuid.Nil {
		return nil, apperror.NewInvalidInput("user id is required", nil)
	}

	p, err := uc.talentRepo.GetByUserID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return &ReadinessOutput{State: StateNoProfile}, nil
		}
		return nil, err
	}

	if p.HasEmbedding() {
		return &ReadinessOutput{Ready: true, State: StateReady, Profile: p}, nil
	}
	if !p.HasResume() {
		return &ReadinessOutput{State: StateNoResume, Profile: p}, nil
	}

	log := uc.logger.With(zap.String("user_id", input.UserID.String()), zap.String("profile_id", p.ID.String()))

	release, acquired, err := uc.locker.TryLock(ctx, lockKey(p), uc.opts.LockTTL)
	if err != nil {
		// Without the lock the worst case is a duplicate overwrite of the same vector.
		log.Warn("Enrichment lock unavailable, enriching without it", zap.Error(err))
		return uc.enrich(ctx, p)
	}
	if !acquired {
		return uc.awaitOther(ctx, log, input.UserID, p)
	}
	defer release()

	// another holder may have finished between our read and the lock
	fresh, err := uc.talentRepo.GetByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if fresh.HasEmbedding() {
		return &ReadinessOutput{Ready: true, State: StateReady, Profile: fresh}, nil
	}
	return uc.enrich(ctx, fresh)
}

func (uc *ReadinessUseCase) enrich(ctx context.Context, p *talent.Profile) (*ReadinessOutput, error) {
	out, err := uc.enricher.Execute(ctx, EnrichInput{Profile: p})
	if err != nil {
		return &ReadinessOutput{State: StateEnrichmentFailed, Profile: p, EnrichmentErr: err}, nil
	}
	return &ReadinessOutput{Ready: true, State: StateEnriched, Profile: out.Profile}, nil
}

func (uc *ReadinessUseCase) awaitOther(ctx context.Context, log logger.Logger, userID uuid.UUID, p *talent.Profile) (*ReadinessOutput, error) {
	deadline := time.NewTimer(uc.opts.WaitTimeout)
	defer deadline.Stop()
	tick := time.NewTicker(uc.opts.PollInterval)
	defer tick.Stop()

	for {
		fresh, err := uc.talentRepo.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if fresh.HasEmbedding() {
			return &ReadinessOutput{Ready: true, State: StateReady, Profile: fresh}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			log.Warn("Gave up waiting for concurrent enrichment")
			return &ReadinessOutput{State: StateEnrichmentFailed, Profile: p, EnrichmentErr: ErrEnrichmentInProgress}, nil
		case <-tick.C:
		}
	}
}

func lockKey(p *talent.Profile) string {
	return "enrich:" + p.ID.String()
}
