package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/internal/domain/feed"
	"github.com/khoahotran/talent-match/internal/domain/saved"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/logger"
)

type Notice string

const (
	NoticeEnrichmentFailed           Notice = "enrichment_failed"
	NoticeRecommendationsUnavailable Notice = "recommendations_unavailable"
	NoticeGeneralUnavailable         Notice = "general_unavailable"
)

type RecommendationSource interface {
	Fetch(ctx context.Context, userID uuid.UUID, page int) (feed.Page, error)
}

type GeneralSource interface {
	Fetch(ctx context.Context, page int) (feed.Page, error)
	Search(ctx context.Context, query string, page int) (feed.Page, error)
}

// PageCache stores preloaded recommendation pages. Get returns nil, nil
// on a miss.
type PageCache interface {
	Get(ctx context.Context, userID, epoch uuid.UUID, page int) (*feed.Page, error)
	Put(ctx context.Context, userID, epoch uuid.UUID, p feed.Page) error
	Delete(ctx context.Context, userID, epoch uuid.UUID, page int) error
}

type ControllerOptions struct {
	PreloadThreshold float64
	PreloadTimeout   time.Duration
}

func (o ControllerOptions) withDefaults() ControllerOptions {
	if o.PreloadThreshold <= 0 || o.PreloadThreshold > 1 {
		o.PreloadThreshold = 0.7
	}
	if o.PreloadTimeout <= 0 {
		o.PreloadTimeout = 30 * time.Second
	}
	return o
}

// LoadResult is what one LoadNext appended.
type LoadResult struct {
	Items      []feed.MatchResult
	HasMore    bool
	Notices    []Notice
	Generation uint64
}

// Controller drives one talent's infinite-scroll feed. All state is
// guarded by mu; network calls run without holding it and their results
// are dropped if the generation moved on meanwhile.
type Controller struct {
	userID  uuid.UUID
	recs    RecommendationSource
	general GeneralSource
	cache   PageCache
	saved   *saved.Set
	opts    ControllerOptions
	logger  logger.Logger

	mu             sync.Mutex
	generation     uint64
	epoch          uuid.UUID
	aiEnabled      bool
	inFlight       bool
	nextAIPage     int
	nextGeneral    int
	aiHasMore      bool
	generalHasMore bool
	items          []feed.MatchResult
	seen           feed.Seen
	preloading     map[int]struct{}
	lastUsed       time.Time

	preloads sync.WaitGroup
}

func NewController(userID uuid.UUID, recs RecommendationSource, general GeneralSource, cache PageCache, opts ControllerOptions, log logger.Logger) *Controller {
	return &Controller{
		userID:     userID,
		recs:       recs,
		general:    general,
		cache:      cache,
		saved:      saved.NewSet(),
		opts:       opts.withDefaults(),
		logger:     log.With(zap.String("user_id", userID.String())),
		seen:       feed.Seen{},
		preloading: map[int]struct{}{},
		lastUsed:   time.Now(),
	}
}

// Saved is the optimistic saved set shown on feed items.
func (c *Controller) Saved() *saved.Set { return c.saved }

func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Reset starts a new generation. Anything fetched for an older generation,
// including running preloads, is discarded when it lands.
func (c *Controller) Reset(aiEnabled bool) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.epoch = uuid.New()
	c.aiEnabled = aiEnabled
	c.inFlight = false
	c.nextAIPage = 0
	c.nextGeneral = 0
	c.aiHasMore = aiEnabled
	c.generalHasMore = true
	c.items = nil
	c.seen = feed.Seen{}
	c.preloading = map[int]struct{}{}
	c.lastUsed = time.Now()
	return c.generation
}

func (c *Controller) hasMoreLocked() bool {
	return c.aiHasMore || c.generalHasMore
}

func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMoreLocked()
}

// LoadNext fetches the next recommendation and general pages, composes
// them and appends the result. Only one load runs at a time.
func (c *Controller) LoadNext(ctx context.Context) (*LoadResult, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, feed.ErrFetchInFlight
	}
	gen := c.generation
	if !c.hasMoreLocked() {
		c.mu.Unlock()
		return &LoadResult{Generation: gen}, nil
	}
	c.inFlight = true
	c.lastUsed = time.Now()
	epoch := c.epoch
	aiPage, generalPage := c.nextAIPage, c.nextGeneral
	wantAI, wantGeneral := c.aiEnabled && c.aiHasMore, c.generalHasMore
	c.mu.Unlock()

	var (
		wg                sync.WaitGroup
		ai, general       feed.Page
		aiErr, generalErr error
	)
	if wantAI {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ai, aiErr = c.recommendationPage(ctx, epoch, aiPage)
		}()
	}
	if wantGeneral {
		wg.Add(1)
		go func() {
			defer wg.Done()
			general, generalErr = c.general.Fetch(ctx, generalPage)
		}()
	}
	wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return nil, feed.ErrStaleResponse
	}
	c.inFlight = false

	res := &LoadResult{Generation: gen}
	if aiErr != nil {
		c.logger.Warn("Recommendation page failed", zap.Int("page", aiPage), zap.Error(aiErr))
		res.Notices = append(res.Notices, NoticeRecommendationsUnavailable)
	}
	if generalErr != nil {
		c.logger.Warn("General listing page failed", zap.Int("page", generalPage), zap.Error(generalErr))
		res.Notices = append(res.Notices, NoticeGeneralUnavailable)
	}
	if (!wantAI || aiErr != nil) && (!wantGeneral || generalErr != nil) {
		res.HasMore = c.hasMoreLocked()
		if err := errors.Join(aiErr, generalErr); err != nil {
			return res, apperror.NewUnavailable("opportunity feed", err)
		}
		return res, nil
	}

	if wantAI && aiErr == nil {
		c.aiHasMore = ai.HasMore
		c.nextAIPage++
	}
	if wantGeneral && generalErr == nil {
		c.generalHasMore = general.HasMore
		c.nextGeneral++
	}

	composed := feed.Compose(ai.Items, general.Items, c.seen)
	c.items = append(c.items, composed...)

	res.Items = c.markSaved(composed)
	res.HasMore = c.hasMoreLocked()
	return res, nil
}

// recommendationPage serves a preloaded page when one is cached.
func (c *Controller) recommendationPage(ctx context.Context, epoch uuid.UUID, page int) (feed.Page, error) {
	if c.cache != nil {
		cached, err := c.cache.Get(ctx, c.userID, epoch, page)
		if err != nil {
			c.logger.Warn("Preload cache read failed", zap.Int("page", page), zap.Error(err))
		} else if cached != nil {
			if err := c.cache.Delete(ctx, c.userID, epoch, page); err != nil {
				c.logger.Warn("Preload cache delete failed", zap.Int("page", page), zap.Error(err))
			}
			return *cached, nil
		}
	}
	return c.recs.Fetch(ctx, c.userID, page)
}

// OnScroll reports the scroll position as a 0..1 fraction. Past the
// threshold the next recommendation page is preloaded in the background.
// It returns whether a preload was started.
func (c *Controller) OnScroll(position float64) bool {
	if position < c.opts.PreloadThreshold {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastUsed = time.Now()

	if !c.aiEnabled || !c.aiHasMore || c.cache == nil {
		return false
	}
	page := c.nextAIPage
	if _, busy := c.preloading[page]; busy {
		return false
	}
	c.preloading[page] = struct{}{}

	gen, epoch := c.generation, c.epoch
	c.preloads.Add(1)
	go c.preload(gen, epoch, page)
	return true
}

func (c *Controller) preload(gen uint64, epoch uuid.UUID, page int) {
	defer c.preloads.Done()

	ctx, cancel := context.WithTimeout(context.Background(), c.opts.PreloadTimeout)
	defer cancel()

	p, err := c.recs.Fetch(ctx, c.userID, page)
	if err == nil {
		err = c.cache.Put(ctx, c.userID, epoch, p)
	}
	if err == nil {
		c.logger.Debug("Preloaded recommendation page", zap.Int("page", page), zap.Int("items", len(p.Items)))
		return
	}

	c.logger.Warn("Background preload failed", zap.Int("page", page), zap.Error(err))
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.generation {
		delete(c.preloading, page)
	}
}

// WaitPreloads blocks until running preloads finish.
func (c *Controller) WaitPreloads() {
	c.preloads.Wait()
}

// OnVisible is called when the bottom sentinel becomes visible.
func (c *Controller) OnVisible(ctx context.Context) (*LoadResult, error) {
	return c.LoadNext(ctx)
}

// View applies filters and sort to everything loaded so far.
func (c *Controller) View(state feed.FilterState, now time.Time) ([]feed.MatchResult, feed.Mode) {
	c.mu.Lock()
	items := c.markSaved(c.items)
	c.lastUsed = time.Now()
	c.mu.Unlock()

	out := feed.Apply(items, state, now)
	return out, feed.DeriveMode(state, out)
}

// markSaved copies items with the current saved flag.
func (c *Controller) markSaved(items []feed.MatchResult) []feed.MatchResult {
	out := make([]feed.MatchResult, len(items))
	for i, it := range items {
		it.Saved = c.saved.Has(it.ID)
		out[i] = it
	}
	return out
}

func (c *Controller) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}
