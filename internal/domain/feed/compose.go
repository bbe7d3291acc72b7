package feed

const aiPerCycle = 3

// Compose interleaves three AI items then one general item per cycle,
// keeping relative order inside each list. An id is emitted at most once:
// AI provenance wins over general, and ids already in seen are skipped.
// seen is updated with every emitted id; pass nil for a one-off compose.
func Compose(ai, general []MatchResult, seen Seen) []MatchResult {
	if seen == nil {
		seen = Seen{}
	}

	aiIDs := make(Seen, len(ai))
	for _, it := range ai {
		aiIDs.Add(it.ID)
	}

	out := make([]MatchResult, 0, len(ai)+len(general))
	emit := func(it MatchResult) {
		if seen.Has(it.ID) {
			return
		}
		seen.Add(it.ID)
		out = append(out, it)
	}

	cycles := (len(ai) + aiPerCycle - 1) / aiPerCycle
	if len(general) > cycles {
		cycles = len(general)
	}
	for i := 0; i < cycles; i++ {
		for j := 0; j < aiPerCycle; j++ {
			if k := aiPerCycle*i + j; k < len(ai) {
				emit(ai[k])
			}
		}
		if i < len(general) && !aiIDs.Has(general[i].ID) {
			emit(general[i])
		}
	}
	return out
}
