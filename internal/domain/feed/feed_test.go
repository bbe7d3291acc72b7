package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/khoahotran/talent-match/internal/domain/opportunity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func score(f float64) *float64 { return &f }
func intPtr(i int) *int         { return &i }

func item(title string, prov Provenance, s *float64) MatchResult {
	return MatchResult{
		Opportunity: opportunity.Opportunity{
			ID:          uuid.New(),
			Title:       title,
			CompanyName: "Acme",
			Description: "desc",
			CreatedAt:   now,
		},
		Score:      s,
		Provenance: prov,
	}
}

func ids(items []MatchResult) []uuid.UUID {
	out := make([]uuid.UUID, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func sampleFeed() []MatchResult {
	a := item("React Developer", ProvenanceAI, score(91))
	a.Location, a.Industry, a.WorkStyle, a.JobType = "Hanoi", "Tech", "Remote", "full_time"
	a.Skills = []string{"React", "TypeScript"}
	a.SalaryMin, a.SalaryMax = intPtr(1000), intPtr(2000)
	a.CompanySize = "11-50"

	b := item("Marketing Lead", ProvenanceGeneral, nil)
	b.Location, b.Industry, b.WorkStyle, b.JobType = "Saigon", "Retail", "Hybrid", "full_time"
	b.CreatedAt = now.Add(-25 * time.Hour)
	b.CompanySize = "1000+"

	c := item("Go Engineer", ProvenanceAI, score(75))
	c.Location, c.Industry, c.WorkStyle, c.JobType = "Hanoi", "Fintech", "On-site", "contract"
	c.Skills = []string{"Go", "Postgres"}
	c.SalaryMin, c.SalaryMax = intPtr(2500), intPtr(4000)
	c.CreatedAt = now.Add(-10 * 24 * time.Hour)
	c.CompanySize = "201-500"

	d := item("Data Analyst", ProvenanceGeneral, nil)
	d.Location, d.Industry, d.WorkStyle = "Danang", "Tech", "remote-first"
	d.CreatedAt = now.Add(-40 * 24 * time.Hour)

	return []MatchResult{a, b, c, d}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	items := sampleFeed()
	before := ids(items)

	_ = Apply(items, FilterState{SortBy: SortNewest, Locations: []string{"Hanoi"}}, now)

	assert.Equal(t, before, ids(items))
}

func TestApply_RemoteFilter(t *testing.T) {
	a := item("A", ProvenanceGeneral, nil)
	a.WorkStyle = "Remote"
	b := item("B", ProvenanceGeneral, nil)
	b.WorkStyle = "Hybrid"
	c := item("C", ProvenanceGeneral, nil)
	c.WorkStyle = "On-site"

	got := Apply([]MatchResult{a, b, c}, FilterState{RemoteOnly: true}, now)

	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)
}

func TestApply_PostedWithinBoundary(t *testing.T) {
	it := item("Old-ish", ProvenanceGeneral, nil)
	it.CreatedAt = now.Add(-25 * time.Hour)

	assert.Empty(t, Apply([]MatchResult{it}, FilterState{PostedWithin: Posted24h}, now))
	assert.Len(t, Apply([]MatchResult{it}, FilterState{PostedWithin: Posted3d}, now), 1)
	assert.Len(t, Apply([]MatchResult{it}, FilterState{PostedWithin: PostedAll}, now), 1)
}

func TestApply_SearchIsCaseInsensitive(t *testing.T) {
	items := sampleFeed()

	upper := Apply(items, FilterState{Search: "REACT"}, now)
	lower := Apply(items, FilterState{Search: "react"}, now)

	assert.ElementsMatch(t, ids(upper), ids(lower))
	require.Len(t, upper, 1)
	assert.Equal(t, "React Developer", upper[0].Title)
}

func TestApply_SearchMatchesSkillsAndCompany(t *testing.T) {
	items := sampleFeed()

	assert.Len(t, Apply(items, FilterState{Search: "postgres"}, now), 1)
	assert.Len(t, Apply(items, FilterState{Search: "acme"}, now), len(items))
	assert.Empty(t, Apply(items, FilterState{Search: "kubernetes"}, now))
}

func TestApply_Monotonicity(t *testing.T) {
	items := sampleFeed()

	states := []FilterState{
		{},
		{Locations: []string{"Hanoi", "Saigon"}},
		{Locations: []string{"Hanoi", "Saigon"}, Industries: []string{"Tech", "Fintech"}},
		{Locations: []string{"Hanoi", "Saigon"}, Industries: []string{"Tech", "Fintech"}, RemoteOnly: true},
	}

	prev := ids(Apply(items, states[0], now))
	for _, st := range states[1:] {
		next := ids(Apply(items, st, now))
		assert.Subset(t, prev, next)
		prev = next
	}

	// sort order never changes membership
	byNewest := ids(Apply(items, FilterState{SortBy: SortNewest}, now))
	byScore := ids(Apply(items, FilterState{SortBy: SortRelevance}, now))
	assert.ElementsMatch(t, byNewest, byScore)
}

func TestApply_SetFiltersAreCaseInsensitive(t *testing.T) {
	got := Apply(sampleFeed(), FilterState{Locations: []string{"hanoi"}, JobTypes: []string{"CONTRACT"}}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "Go Engineer", got[0].Title)
}

func TestApply_SalaryRange(t *testing.T) {
	items := sampleFeed()

	got := Apply(items, FilterState{SalaryMin: 1800}, now)
	assert.ElementsMatch(t, []string{"React Developer", "Go Engineer"}, titles(got))

	got = Apply(items, FilterState{SalaryMin: 2100, SalaryMax: 2400}, now)
	assert.Empty(t, got)

	got = Apply(items, FilterState{SalaryMax: 1500}, now)
	assert.Equal(t, []string{"React Developer"}, titles(got))
}

func titles(items []MatchResult) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestApply_Sorts(t *testing.T) {
	items := sampleFeed()

	t.Run("ai_match puts AI first regardless of score", func(t *testing.T) {
		low := item("Low AI", ProvenanceAI, nil)
		high := item("High General", ProvenanceGeneral, score(99))
		got := Apply(append(items, low, high), FilterState{SortBy: SortAIMatch}, now)

		seenGeneral := false
		for _, it := range got {
			if !it.IsAI() {
				seenGeneral = true
				continue
			}
			assert.False(t, seenGeneral, "AI item %q after a general item", it.Title)
		}
		assert.Equal(t, "React Developer", got[0].Title)
	})

	t.Run("newest and oldest", func(t *testing.T) {
		newest := titles(Apply(items, FilterState{SortBy: SortNewest}, now))
		assert.Equal(t, []string{"React Developer", "Marketing Lead", "Go Engineer", "Data Analyst"}, newest)

		oldest := titles(Apply(items, FilterState{SortBy: SortOldest}, now))
		assert.Equal(t, []string{"Data Analyst", "Go Engineer", "Marketing Lead", "React Developer"}, oldest)
	})

	t.Run("relevance is the default", func(t *testing.T) {
		got := titles(Apply(items, FilterState{}, now))
		assert.Equal(t, []string{"React Developer", "Go Engineer", "Marketing Lead", "Data Analyst"}, got)
	})

	t.Run("salary", func(t *testing.T) {
		high := titles(Apply(items, FilterState{SortBy: SortSalaryHigh}, now))
		assert.Equal(t, []string{"Go Engineer", "React Developer"}, high[:2])

		low := titles(Apply(items, FilterState{SortBy: SortSalaryLow}, now))
		assert.Equal(t, []string{"React Developer", "Go Engineer"}, low[:2])
	})

	t.Run("company size", func(t *testing.T) {
		got := titles(Apply(items, FilterState{SortBy: SortCompanySize}, now))
		assert.Equal(t, []string{"Marketing Lead", "Go Engineer", "React Developer", "Data Analyst"}, got)
	})
}

func TestFilterState_Validate(t *testing.T) {
	assert.NoError(t, FilterState{}.Validate())
	assert.NoError(t, FilterState{SortBy: SortCompanySize, PostedWithin: Posted2w}.Validate())
	assert.ErrorIs(t, FilterState{SortBy: "random"}.Validate(), ErrInvalidSort)
	assert.ErrorIs(t, FilterState{PostedWithin: "5y"}.Validate(), ErrInvalidPostWindow)
	assert.ErrorIs(t, FilterState{SalaryMin: 10, SalaryMax: 5}.Validate(), ErrInvalidFilter)
}

func TestCompose_Pattern(t *testing.T) {
	var ai, general []MatchResult
	for i := 0; i < 7; i++ {
		ai = append(ai, item("ai", ProvenanceAI, score(float64(90-i))))
	}
	for i := 0; i < 4; i++ {
		general = append(general, item("gen", ProvenanceGeneral, nil))
	}

	got := Compose(ai, general, nil)

	want := []uuid.UUID{
		ai[0].ID, ai[1].ID, ai[2].ID, general[0].ID,
		ai[3].ID, ai[4].ID, ai[5].ID, general[1].ID,
		ai[6].ID, general[2].ID,
		general[3].ID,
	}
	assert.Equal(t, want, ids(got))
}

func TestCompose_EmptyAI(t *testing.T) {
	general := []MatchResult{item("a", ProvenanceGeneral, nil), item("b", ProvenanceGeneral, nil)}
	assert.Equal(t, ids(general), ids(Compose(nil, general, nil)))
}

func TestCompose_DeduplicatesAIWins(t *testing.T) {
	shared := item("shared", ProvenanceAI, score(80))
	dupGeneral := shared
	dupGeneral.Provenance = ProvenanceGeneral
	dupGeneral.Score = nil

	got := Compose([]MatchResult{shared}, []MatchResult{dupGeneral}, nil)

	require.Len(t, got, 1)
	assert.Equal(t, ProvenanceAI, got[0].Provenance)
}

func TestCompose_NoDuplicatesAcrossPages(t *testing.T) {
	seen := Seen{}
	repeated := item("repeated", ProvenanceGeneral, nil)

	page0 := Compose([]MatchResult{item("a", ProvenanceAI, nil)}, []MatchResult{repeated}, seen)
	page1 := Compose([]MatchResult{item("b", ProvenanceAI, nil)}, []MatchResult{repeated}, seen)

	all := append(ids(page0), ids(page1)...)
	unique := map[uuid.UUID]bool{}
	for _, id := range all {
		assert.False(t, unique[id], "duplicate id %s", id)
		unique[id] = true
	}
	assert.Len(t, page1, 1)
}

func TestDeriveMode(t *testing.T) {
	aiItem := item("Growth Marketing", ProvenanceAI, score(70))
	genItem := item("Marketing Lead", ProvenanceGeneral, nil)

	assert.Equal(t, ModeAIRecommended, DeriveMode(FilterState{}, []MatchResult{aiItem}))

	st := FilterState{Search: "marketing"}
	assert.Equal(t, ModeSearch, DeriveMode(st, []MatchResult{genItem}))
	assert.Equal(t, ModeAIRecommended, DeriveMode(st, []MatchResult{aiItem, genItem}))

	// clearing the search falls back to filtered while filters remain
	st.Search = ""
	st.RemoteOnly = true
	assert.Equal(t, ModeFiltered, DeriveMode(st, nil))

	st.RemoteOnly = false
	assert.Equal(t, ModeAIRecommended, DeriveMode(st, nil))
}

func TestSearchClearsAIMode(t *testing.T) {
	feedItems := sampleFeed()
	st := FilterState{}
	assert.Equal(t, ModeAIRecommended, DeriveMode(st, Apply(feedItems, st, now)))

	st.Search = "marketing"
	results := Apply(feedItems, st, now)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.True(t, strings.Contains(strings.ToLower(r.Title), "marketing"))
	}
	assert.Equal(t, ModeSearch, DeriveMode(st, results))

	st.Search = ""
	assert.Equal(t, ModeAIRecommended, DeriveMode(st, Apply(feedItems, st, now)))
}
