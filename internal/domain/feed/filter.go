package feed

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type PostedWithin string

const (
	Posted24h PostedWithin = "24h"
	Posted3d  PostedWithin = "3d"
	Posted1w  PostedWithin = "1w"
	Posted2w  PostedWithin = "2w"
	Posted1m  PostedWithin = "1m"
	PostedAll PostedWithin = "all"
)

var postedWithinDays = map[PostedWithin]int{
	Posted24h: 1,
	Posted3d:  3,
	Posted1w:  7,
	Posted2w:  14,
	Posted1m:  30,
}

type SortKey string

const (
	SortAIMatch     SortKey = "ai_match"
	SortNewest      SortKey = "newest"
	SortOldest      SortKey = "oldest"
	SortRelevance   SortKey = "relevance"
	SortSalaryHigh  SortKey = "salary_high"
	SortSalaryLow   SortKey = "salary_low"
	SortCompanySize SortKey = "company_size"
)

// companySizeRank orders the size buckets employers pick from.
var companySizeRank = map[string]int{
	"1-10":     1,
	"11-50":    2,
	"51-200":   3,
	"201-500":  4,
	"501-1000": 5,
	"1000+":    6,
}

type FilterState struct {
	Search           string       `json:"search"`
	Locations        []string     `json:"locations"`
	Industries       []string     `json:"industries"`
	JobTypes         []string     `json:"job_types"`
	ExperienceLevels []string     `json:"experience_levels"`
	WorkStyles       []string     `json:"work_styles"`
	CompanySizes     []string     `json:"company_sizes"`
	SalaryMin        int          `json:"salary_min"`
	SalaryMax        int          `json:"salary_max"`
	PostedWithin     PostedWithin `json:"posted_within"`
	RemoteOnly       bool         `json:"remote_only"`
	SortBy           SortKey      `json:"sort_by"`
}

func (s FilterState) Validate() error {
	switch s.SortBy {
	case "", SortAIMatch, SortNewest, SortOldest, SortRelevance, SortSalaryHigh, SortSalaryLow, SortCompanySize:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSort, s.SortBy)
	}
	if _, ok := postedWithinDays[s.PostedWithin]; !ok && s.PostedWithin != "" && s.PostedWithin != PostedAll {
		return fmt.Errorf("%w: %q", ErrInvalidPostWindow, s.PostedWithin)
	}
	if s.SalaryMin < 0 || s.SalaryMax < 0 {
		return fmt.Errorf("%w: salary bounds must not be negative", ErrInvalidFilter)
	}
	if s.SalaryMax > 0 && s.SalaryMin > s.SalaryMax {
		return fmt.Errorf("%w: salary_min exceeds salary_max", ErrInvalidFilter)
	}
	return nil
}

// HasActiveFilters ignores search and sort.
func (s FilterState) HasActiveFilters() bool {
	return len(s.Locations) > 0 || len(s.Industries) > 0 || len(s.JobTypes) > 0 ||
		len(s.ExperienceLevels) > 0 || len(s.WorkStyles) > 0 || len(s.CompanySizes) > 0 ||
		s.SalaryMin > 0 || s.SalaryMax > 0 || s.RemoteOnly ||
		(s.PostedWithin != "" && s.PostedWithin != PostedAll)
}

// Apply filters then stably sorts items. The input slice is never modified.
func Apply(items []MatchResult, state FilterState, now time.Time) []MatchResult {
	query := strings.ToLower(strings.TrimSpace(state.Search))

	var cutoff time.Time
	if days, ok := postedWithinDays[state.PostedWithin]; ok {
		cutoff = now.Add(-time.Duration(days) * 24 * time.Hour)
	}

	out := make([]MatchResult, 0, len(items))
	for _, it := range items {
		if query != "" && !matchesSearch(it, query) {
			continue
		}
		if !inSet(it.Location, state.Locations) ||
			!inSet(it.Industry, state.Industries) ||
			!inSet(it.JobType, state.JobTypes) ||
			!inSet(it.ExperienceLevel, state.ExperienceLevels) ||
			!inSet(it.WorkStyle, state.WorkStyles) ||
			!inSet(it.CompanySize, state.CompanySizes) {
			continue
		}
		if state.RemoteOnly && !strings.Contains(strings.ToLower(it.WorkStyle), "remote") {
			continue
		}
		if !cutoff.IsZero() && it.CreatedAt.Before(cutoff) {
			continue
		}
		if !salaryOverlaps(it, state.SalaryMin, state.SalaryMax) {
			continue
		}
		out = append(out, it)
	}

	sortResults(out, state.SortBy)
	return out
}

func matchesSearch(it MatchResult, query string) bool {
	if strings.Contains(strings.ToLower(it.Title), query) ||
		strings.Contains(strings.ToLower(it.CompanyName), query) ||
		strings.Contains(strings.ToLower(it.Description), query) {
		return true
	}
	for _, skill := range it.Skills {
		if strings.Contains(strings.ToLower(skill), query) {
			return true
		}
	}
	return false
}

func inSet(value string, set []string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if strings.EqualFold(strings.TrimSpace(s), value) {
			return true
		}
	}
	return false
}

func salaryOverlaps(it MatchResult, wantMin, wantMax int) bool {
	if wantMin == 0 && wantMax == 0 {
		return true
	}
	if !it.HasSalary() {
		return false
	}
	lo, hi := 0, int(^uint(0)>>1)
	if it.SalaryMin != nil {
		lo = *it.SalaryMin
	}
	if it.SalaryMax != nil {
		hi = *it.SalaryMax
	}
	if wantMax > 0 && lo > wantMax {
		return false
	}
	return hi >= wantMin
}

func sortResults(items []MatchResult, key SortKey) {
	var less func(a, b MatchResult) bool
	switch key {
	case SortAIMatch:
		less = func(a, b MatchResult) bool {
			if a.IsAI() != b.IsAI() {
				return a.IsAI()
			}
			return a.scoreOrZero() > b.scoreOrZero()
		}
	case SortNewest:
		less = func(a, b MatchResult) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortOldest:
		less = func(a, b MatchResult) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortSalaryHigh:
		less = func(a, b MatchResult) bool { return salaryTop(a) > salaryTop(b) }
	case SortSalaryLow:
		less = func(a, b MatchResult) bool { return salaryFloor(a) < salaryFloor(b) }
	case SortCompanySize:
		less = func(a, b MatchResult) bool {
			return companySizeRank[a.CompanySize] > companySizeRank[b.CompanySize]
		}
	default:
		less = func(a, b MatchResult) bool { return a.scoreOrZero() > b.scoreOrZero() }
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

// salaryTop puts unknown salaries last when sorting high to low.
func salaryTop(m MatchResult) int {
	switch {
	case m.SalaryMax != nil:
		return *m.SalaryMax
	case m.SalaryMin != nil:
		return *m.SalaryMin
	}
	return -1
}

// salaryFloor puts unknown salaries last when sorting low to high.
func salaryFloor(m MatchResult) int {
	switch {
	case m.SalaryMin != nil:
		return *m.SalaryMin
	case m.SalaryMax != nil:
		return *m.SalaryMax
	}
	return int(^uint(0) >> 1)
}
