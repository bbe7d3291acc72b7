package feed

import "strings"

// DeriveMode names the strategy governing the displayed list. A search
// that still surfaces AI matches stays in AI mode.
func DeriveMode(state FilterState, results []MatchResult) Mode {
	if strings.TrimSpace(state.Search) != "" {
		for _, r := range results {
			if r.IsAI() {
				return ModeAIRecommended
			}
		}
		return ModeSearch
	}
	if state.HasActiveFilters() {
		return ModeFiltered
	}
	return ModeAIRecommended
}
