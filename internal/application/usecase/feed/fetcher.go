package feed

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/internal/domain/feed"
	"github.com/khoahotran/talent-match/internal/domain/opportunity"
	"github.com/khoahotran/talent-match/pkg/logger"
)

var errMissingID = errors.New("match record has no usable id")

// RecommendationFetcher pages through the database-side similarity match.
type RecommendationFetcher struct {
	matcher  opportunity.Matcher
	pageSize int
	logger   logger.Logger
}

func NewRecommendationFetcher(m opportunity.Matcher, pageSize int, log logger.Logger) *RecommendationFetcher {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &RecommendationFetcher{matcher: m, pageSize: pageSize, logger: log}
}

// Fetch returns page (zero-based) of AI matches. HasMore is a heuristic: a
// full page means there may be another one.
func (f *RecommendationFetcher) Fetch(ctx context.Context, userID uuid.UUID, page int) (feed.Page, error) {
	raw, err := f.matcher.Match(ctx, userID, page*f.pageSize, f.pageSize)
	if err != nil {
		return feed.Page{Number: page}, err
	}

	items := make([]feed.MatchResult, 0, len(raw))
	for i, rec := range raw {
		item, err := decodeMatch(rec)
		if err != nil {
			f.logger.Warn("Skipping malformed match record",
				zap.String("user_id", userID.String()), zap.Int("page", page), zap.Int("index", i), zap.Error(err))
			continue
		}
		items = append(items, item)
	}

	return feed.Page{Number: page, Items: items, HasMore: len(raw) == f.pageSize}, nil
}

// decodeMatch reads one record field by field so a mistyped column falls
// back to its zero value instead of failing the record.
func decodeMatch(raw json.RawMessage) (feed.MatchResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return feed.MatchResult{}, err
	}

	id, ok := uuidField(fields, "id")
	if !ok {
		return feed.MatchResult{}, errMissingID
	}
	employerID, _ := uuidField(fields, "employer_id")

	o := opportunity.Opportunity{
		ID:              id,
		EmployerID:      employerID,
		Title:           stringField(fields, "title"),
		CompanyName:     stringField(fields, "company_name"),
		Location:        stringField(fields, "location"),
		Industry:        stringField(fields, "industry"),
		WorkStyle:       stringField(fields, "work_style"),
		JobType:         stringField(fields, "job_type"),
		ExperienceLevel: stringField(fields, "experience_level"),
		CompanySize:     stringField(fields, "company_size"),
		SalaryMin:       intField(fields, "salary_min"),
		SalaryMax:       intField(fields, "salary_max"),
		Description:     stringField(fields, "description"),
		Skills:          stringsField(fields, "skills"),
		CreatedAt:       timeField(fields, "created_at"),
	}

	return feed.MatchResult{
		Opportunity: o,
		Score:       floatField(fields, "similarity"),
		Provenance:  feed.ProvenanceAI,
	}, nil
}

func uuidField(fields map[string]json.RawMessage, key string) (uuid.UUID, bool) {
	s := stringField(fields, key)
	if s == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func stringField(fields map[string]json.RawMessage, key string) string {
	var s string
	if raw, ok := fields[key]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return strings.TrimSpace(s)
}

func stringsField(fields map[string]json.RawMessage, key string) []string {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		var s string
		if json.Unmarshal(item, &s) == nil && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func floatField(fields map[string]json.RawMessage, key string) *float64 {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var f *float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return f
}

func intField(fields map[string]json.RawMessage, key string) *int {
	f := floatField(fields, key)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

func timeField(fields map[string]json.RawMessage, key string) time.Time {
	var t time.Time
	if raw, ok := fields[key]; ok {
		_ = json.Unmarshal(raw, &t)
	}
	return t
}

// GeneralFetcher pages through recent opportunities, newest first.
type GeneralFetcher struct {
	oppRepo  opportunity.Repository
	pageSize int
}

func NewGeneralFetcher(repo opportunity.Repository, pageSize int) *GeneralFetcher {
	if pageSize <= 0 {
		pageSize = 4
	}
	return &GeneralFetcher{oppRepo: repo, pageSize: pageSize}
}

func (f *GeneralFetcher) Fetch(ctx context.Context, page int) (feed.Page, error) {
	list, err := f.oppRepo.ListRecent(ctx, f.pageSize, page*f.pageSize)
	if err != nil {
		return feed.Page{Number: page}, err
	}
	return f.toPage(page, list), nil
}

// Search runs the server-side text search over the general listing.
func (f *GeneralFetcher) Search(ctx context.Context, query string, page int) (feed.Page, error) {
	list, err := f.oppRepo.Search(ctx, query, f.pageSize, page*f.pageSize)
	if err != nil {
		return feed.Page{Number: page}, err
	}
	return f.toPage(page, list), nil
}

func (f *GeneralFetcher) toPage(page int, list []*opportunity.Opportunity) feed.Page {
	items := make([]feed.MatchResult, 0, len(list))
	for _, o := range list {
		items = append(items, feed.MatchResult{Opportunity: *o, Provenance: feed.ProvenanceGeneral})
	}
	return feed.Page{Number: page, Items: items, HasMore: len(list) == f.pageSize}
}
