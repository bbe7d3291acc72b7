package opportunity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/internal/domain/opportunity"
	"github.com/khoahotran/talent-match/pkg/logger"
)

const rssItemCount = 20

type RSSUseCase struct {
	oppRepo opportunity.Repository
	baseURL string
	logger  logger.Logger
}

// NewRSSUseCase builds item links as <baseURL>/opportunities/<id>.
func NewRSSUseCase(oRepo opportunity.Repository, baseURL string, log logger.Logger) *RSSUseCase {
	return &RSSUseCase{
		oppRepo: oRepo,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log,
	}
}

func (uc *RSSUseCase) Execute(ctx context.Context) (*feeds.Feed, error) {
	feed := &feeds.Feed{
		Title:       "Talent Match - Latest opportunities",
		Link:        &feeds.Link{Href: uc.baseURL + "/opportunities"},
		Description: "Newest roles posted by employers.",
		Created:     time.Now(),
	}

	opps, err := uc.oppRepo.ListRecent(ctx, rssItemCount, 0)
	if err != nil {
		uc.logger.Error("Failed to list recent opportunities for RSS", err)
		return nil, err
	}

	for _, o := range opps {
		title := o.Title
		if o.CompanyName != "" {
			title = fmt.Sprintf("%s at %s", o.Title, o.CompanyName)
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          o.ID.String(),
			Title:       title,
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/opportunities/%s", uc.baseURL, o.ID)},
			Description: o.Description,
			Created:     o.CreatedAt,
		})
	}

	uc.logger.Info("RSS feed generated", zap.Int("item_count", len(feed.Items)))
	return feed, nil
}
