package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/talent-match/internal/application/usecase/enrichment"
	"github.com/khoahotran/talent-match/internal/domain/feed"
	"github.com/khoahotran/talent-match/internal/domain/opportunity"
	"github.com/khoahotran/talent-match/internal/domain/saved"
	"github.com/khoahotran/talent-match/internal/domain/talent"
)

func aiItem(title string, score float64) feed.MatchResult {
	s := score
	return feed.MatchResult{
		Opportunity: opportunity.Opportunity{ID: uuid.New(), Title: title, CreatedAt: time.Now()},
		Score:       &s,
		Provenance:  feed.ProvenanceAI,
	}
}

func generalItem(title string) feed.MatchResult {
	return feed.MatchResult{
		Opportunity: opportunity.Opportunity{ID: uuid.New(), Title: title, CreatedAt: time.Now()},
		Provenance:  feed.ProvenanceGeneral,
	}
}

func aiPage(n int, count int, hasMore bool) feed.Page {
	p := feed.Page{Number: n, HasMore: hasMore}
	for i := 0; i < count; i++ {
		p.Items = append(p.Items, aiItem(fmt.Sprintf("ai-%d-%d", n, i), float64(90-i)))
	}
	return p
}

func generalPage(n int, count int, hasMore bool) feed.Page {
	p := feed.Page{Number: n, HasMore: hasMore}
	for i := 0; i < count; i++ {
		p.Items = append(p.Items, generalItem(fmt.Sprintf("general-%d-%d", n, i)))
	}
	return p
}

type fakeRecs struct {
	mu      sync.Mutex
	pages   map[int]feed.Page
	err     error
	calls   []int
	started chan int
	release chan struct{}
	// onFetch runs before the page is returned.
	onFetch func()
}

func newFakeRecs(pages ...feed.Page) *fakeRecs {
	r := &fakeRecs{pages: map[int]feed.Page{}}
	for _, p := range pages {
		r.pages[p.Number] = p
	}
	return r
}

func (r *fakeRecs) Fetch(ctx context.Context, userID uuid.UUID, page int) (feed.Page, error) {
	r.mu.Lock()
	r.calls = append(r.calls, page)
	started, release, err, onFetch := r.started, r.release, r.err, r.onFetch
	p := r.pages[page]
	r.mu.Unlock()

	if started != nil {
		started <- page
	}
	if release != nil {
		<-release
	}
	if onFetch != nil {
		onFetch()
	}
	if err != nil {
		return feed.Page{Number: page}, err
	}
	p.Number = page
	return p, nil
}

func (r *fakeRecs) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *fakeRecs) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

type fakeGeneral struct {
	mu       sync.Mutex
	pages    map[int]feed.Page
	err      error
	calls    int
	searchFn func(query string) feed.Page
	queries  []string
}

func newFakeGeneral(pages ...feed.Page) *fakeGeneral {
	g := &fakeGeneral{pages: map[int]feed.Page{}}
	for _, p := range pages {
		g.pages[p.Number] = p
	}
	return g
}

func (g *fakeGeneral) Fetch(ctx context.Context, page int) (feed.Page, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return feed.Page{Number: page}, g.err
	}
	p := g.pages[page]
	p.Number = page
	return p, nil
}

func (g *fakeGeneral) Search(ctx context.Context, query string, page int) (feed.Page, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queries = append(g.queries, query)
	if g.searchFn == nil {
		return feed.Page{Number: page}, nil
	}
	return g.searchFn(query), nil
}

type memCache struct {
	mu     sync.Mutex
	pages  map[string]feed.Page
	putErr error
	gets   int
}

func newMemCache() *memCache { return &memCache{pages: map[string]feed.Page{}} }

func cacheKey(userID, epoch uuid.UUID, page int) string {
	return strings.Join([]string{userID.String(), epoch.String(), fmt.Sprint(page)}, ":")
}

func (c *memCache) Get(ctx context.Context, userID, epoch uuid.UUID, page int) (*feed.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	p, ok := c.pages[cacheKey(userID, epoch, page)]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *memCache) Put(ctx context.Context, userID, epoch uuid.UUID, p feed.Page) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		return c.putErr
	}
	c.pages[cacheKey(userID, epoch, p.Number)] = p
	return nil
}

func (c *memCache) Delete(ctx context.Context, userID, epoch uuid.UUID, page int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pages, cacheKey(userID, epoch, page))
	return nil
}

func (c *memCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pages)
}

type fakeMatcher struct {
	records []json.RawMessage
	err     error
	offset  int
	limit   int
}

func (m *fakeMatcher) Match(ctx context.Context, userID uuid.UUID, offset, limit int) ([]json.RawMessage, error) {
	m.offset, m.limit = offset, limit
	return m.records, m.err
}

type fakeReadiness struct {
	out   *enrichment.ReadinessOutput
	err   error
	order *[]string
}

func (r *fakeReadiness) Execute(ctx context.Context, input enrichment.ReadinessInput) (*enrichment.ReadinessOutput, error) {
	if r.order != nil {
		*r.order = append(*r.order, "readiness")
	}
	return r.out, r.err
}

func readyOutput() *enrichment.ReadinessOutput {
	return &enrichment.ReadinessOutput{Ready: true, State: enrichment.StateReady, Profile: &talent.Profile{ID: uuid.New()}}
}

type fakeSavedRepo struct {
	ids []uuid.UUID
	err error
}

func (r *fakeSavedRepo) SaveOpportunity(ctx context.Context, s saved.SavedOpportunity) error { return nil }
func (r *fakeSavedRepo) UnsaveOpportunity(ctx context.Context, talentID, opportunityID uuid.UUID) error {
	return nil
}
func (r *fakeSavedRepo) ListOpportunityIDs(ctx context.Context, talentID uuid.UUID) ([]uuid.UUID, error) {
	return r.ids, r.err
}
func (r *fakeSavedRepo) SaveCandidate(ctx context.Context, s saved.SavedCandidate) error { return nil }
func (r *fakeSavedRepo) UnsaveCandidate(ctx context.Context, employerID, talentID uuid.UUID) error {
	return nil
}
func (r *fakeSavedRepo) ListCandidates(ctx context.Context, employerID uuid.UUID, limit, offset int) ([]saved.CandidateRow, error) {
	return nil, nil
}
