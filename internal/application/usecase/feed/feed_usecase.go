package feed

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/internal/application/usecase/enrichment"
	"github.com/khoahotran/talent-match/internal/domain/feed"
	"github.com/khoahotran/talent-match/internal/domain/saved"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/auth"
	"github.com/khoahotran/talent-match/pkg/logger"
)

type Readiness interface {
	Execute(ctx context.Context, input enrichment.ReadinessInput) (*enrichment.ReadinessOutput, error)
}

type FeedUseCase struct {
	readiness Readiness
	sessions  *SessionStore
	general   GeneralSource
	savedRepo saved.Repository
	logger    logger.Logger
	now       func() time.Time
}

func NewFeedUseCase(r Readiness, sessions *SessionStore, general GeneralSource, savedRepo saved.Repository, log logger.Logger) *FeedUseCase {
	return &FeedUseCase{
		readiness: r,
		sessions:  sessions,
		general:   general,
		savedRepo: savedRepo,
		logger:    log,
		now:       time.Now,
	}
}

type FeedInput struct {
	Session auth.SessionContext
	Filter  feed.FilterState
}

type FeedOutput struct {
	Items      []feed.MatchResult `json:"items"`
	Mode       feed.Mode          `json:"mode"`
	HasMore    bool               `json:"has_more"`
	Notices    []Notice           `json:"notices,omitempty"`
	Generation uint64             `json:"generation"`
	State      enrichment.State   `json:"profile_state,omitempty"`
}

func checkInput(input FeedInput) error {
	if !input.Session.IsTalent() {
		return apperror.NewPermissionDenied("only talents have an opportunity feed")
	}
	if err := input.Filter.Validate(); err != nil {
		return apperror.NewInvalidInput(err.Error(), err)
	}
	return nil
}

// Initialize makes sure the profile is enriched, starts a fresh session
// generation and loads the first page. When recommendations are not
// possible the feed falls back to the general listing only.
func (uc *FeedUseCase) Initialize(ctx context.Context, input FeedInput) (*FeedOutput, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}
	log := uc.logger.With(zap.String("user_id", input.Session.UserID.String()))

	var notices []Notice
	var state enrichment.State
	aiEnabled := false

	ready, err := uc.readiness.Execute(ctx, enrichment.ReadinessInput{UserID: input.Session.UserID})
	switch {
	case err != nil && errors.Is(err, apperror.ErrInvalidInput):
		return nil, err
	case err != nil:
		log.Warn("Readiness check failed, serving general listing only", zap.Error(err))
		notices = append(notices, NoticeRecommendationsUnavailable)
	default:
		state = ready.State
		aiEnabled = ready.Ready
		if ready.State == enrichment.StateEnrichmentFailed {
			log.Warn("Enrichment failed, serving general listing only", zap.Error(ready.EnrichmentErr))
			notices = append(notices, NoticeEnrichmentFailed)
		}
	}

	c, _ := uc.sessions.Get(input.Session.UserID)
	gen := c.Reset(aiEnabled)

	if err == nil && ready.Profile != nil {
		ids, err := uc.savedRepo.ListOpportunityIDs(ctx, ready.Profile.ID)
		if err != nil {
			log.Warn("Failed to load saved opportunities", zap.Error(err))
		} else {
			c.Saved().Replace(ids)
		}
	}

	res, err := c.LoadNext(ctx)
	switch {
	case errors.Is(err, feed.ErrFetchInFlight), errors.Is(err, feed.ErrStaleResponse):
		return nil, apperror.NewAppError(apperror.ErrConflict, "Feed was reset while loading", "", err)
	case err != nil && !errors.Is(err, apperror.ErrUnavailable):
		return nil, err
	}
	if res != nil {
		notices = append(notices, res.Notices...)
	}

	out := uc.view(ctx, c, input.Filter)
	out.Notices = notices
	out.Generation = gen
	out.State = state
	return out, nil
}

// Refresh throws the session away and starts over.
func (uc *FeedUseCase) Refresh(ctx context.Context, input FeedInput) (*FeedOutput, error) {
	return uc.Initialize(ctx, input)
}

// Next appends one more page. A user without a live session gets a fresh
// one instead.
func (uc *FeedUseCase) Next(ctx context.Context, input FeedInput) (*FeedOutput, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}
	c, ok := uc.started(input.Session.UserID)
	if !ok {
		return uc.Initialize(ctx, input)
	}

	res, err := c.OnVisible(ctx)
	var notices []Notice
	switch {
	case errors.Is(err, feed.ErrFetchInFlight), errors.Is(err, feed.ErrStaleResponse):
		return nil, apperror.NewAppError(apperror.ErrConflict, "Feed page already loading", "", err)
	case err != nil && !errors.Is(err, apperror.ErrUnavailable):
		return nil, err
	}
	if res != nil {
		notices = res.Notices
	}

	out := uc.view(ctx, c, input.Filter)
	out.Notices = notices
	return out, nil
}

type ScrollInput struct {
	Session  auth.SessionContext
	Position float64
}

type ScrollOutput struct {
	Preloading bool `json:"preloading"`
}

func (uc *FeedUseCase) Scroll(ctx context.Context, input ScrollInput) (*ScrollOutput, error) {
	if !input.Session.IsTalent() {
		return nil, apperror.NewPermissionDenied("only talents have an opportunity feed")
	}
	if input.Position < 0 || input.Position > 1 {
		return nil, apperror.NewInvalidInput("position must be between 0 and 1", nil)
	}
	c, ok := uc.started(input.Session.UserID)
	if !ok {
		return &ScrollOutput{}, nil
	}
	return &ScrollOutput{Preloading: c.OnScroll(input.Position)}, nil
}

// View re-renders the loaded items under a new filter state without
// fetching more pages.
func (uc *FeedUseCase) View(ctx context.Context, input FeedInput) (*FeedOutput, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}
	c, ok := uc.started(input.Session.UserID)
	if !ok {
		return uc.Initialize(ctx, input)
	}
	return uc.view(ctx, c, input.Filter), nil
}

// started returns the user's session only once it has been reset at least
// once. A controller that never loaded a generation has nothing to render.
func (uc *FeedUseCase) started(userID uuid.UUID) (*Controller, bool) {
	c, ok := uc.sessions.Peek(userID)
	if !ok || c.Generation() == 0 {
		return nil, false
	}
	return c, true
}

// view renders the session under state. In search mode the server-side
// search hits are merged in so matches beyond the loaded pages show up.
func (uc *FeedUseCase) view(ctx context.Context, c *Controller, state feed.FilterState) *FeedOutput {
	now := uc.now()
	items, mode := c.View(state, now)

	if mode == feed.ModeSearch {
		hits, err := uc.general.Search(ctx, state.Search, 0)
		if err != nil {
			uc.logger.Warn("Server-side search failed", zap.String("query", state.Search), zap.Error(err))
		} else {
			merged := mergeByID(items, c.markSaved(hits.Items))
			items = feed.Apply(merged, state, now)
			mode = feed.DeriveMode(state, items)
		}
	}

	if items == nil {
		items = []feed.MatchResult{}
	}
	return &FeedOutput{
		Items:      items,
		Mode:       mode,
		HasMore:    c.HasMore(),
		Generation: c.Generation(),
	}
}

func mergeByID(base, extra []feed.MatchResult) []feed.MatchResult {
	seen := make(feed.Seen, len(base)+len(extra))
	out := make([]feed.MatchResult, 0, len(base)+len(extra))
	for _, list := range [][]feed.MatchResult{base, extra} {
		for _, it := range list {
			if seen.Has(it.ID) {
				continue
			}
			seen.Add(it.ID)
			out = append(out, it)
		}
	}
	return out
}
