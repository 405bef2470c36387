package pubmed

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/config"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/domain"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/ports"
)

var pmidExpr = regexp.MustCompile(`(?:pubmed:|pubmed\.ncbi\.nlm\.nih\.gov/)(\d+)`)

// FeedSource discovers candidates from a PubMed saved-search RSS feed.
// Useful when the search is curated on the PubMed side instead of being
// encoded into an esearch term.
type FeedSource struct {
	feedURL string
	parser  *gofeed.Parser
	logger  *slog.Logger
}

var _ ports.ArticleSource = (*FeedSource)(nil)

// NewFeedSource builds a source around the configured feed URL.
func NewFeedSource(cfg config.PubMedConfig, logger *slog.Logger) *FeedSource {
	return &FeedSource{
		feedURL: cfg.FeedURL,
		parser:  gofeed.NewParser(),
		logger:  logger,
	}
}

// Name identifies the strategy inside the registry.
func (s *FeedSource) Name() string {
	return config.StrategyFeed
}

// FetchCandidate walks the feed in order and returns the first item with an
// extractable PMID that is neither excluded nor older than the search
// window.
func (s *FeedSource) FetchCandidate(ctx context.Context, query domain.SearchQuery) (domain.Article, error) {
	if s.feedURL == "" {
		return domain.Article{}, fmt.Errorf("%w: feed url not configured", domain.ErrSourceUnavailable)
	}

	feed, err := s.parser.ParseURLWithContext(s.feedURL, ctx)
	if err != nil {
		return domain.Article{}, fmt.Errorf("%w: parse feed: %v", domain.ErrSourceUnavailable, err)
	}
	s.debug("feed fetched", "items", len(feed.Items))

	cutoff := query.Now.AddDate(0, 0, -max(query.DaysBack, 1))
	for _, item := range feed.Items {
		pmid := extractPMID(item.GUID, item.Link)
		if pmid == "" || query.Exclude[pmid] {
			continue
		}
		if item.PublishedParsed != nil && item.PublishedParsed.Before(cutoff) {
			continue
		}
		s.debug("candidate selected", "pmid", pmid)
		return feedArticle(pmid, feed, item), nil
	}

	return domain.Article{}, domain.ErrNoCandidate
}

func (s *FeedSource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

// extractPMID pulls the numeric PubMed ID out of a feed GUID or link.
func extractPMID(values ...string) string {
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if m := pmidExpr.FindStringSubmatch(value); m != nil {
			return m[1]
		}
		if isDigits(value) {
			return value
		}
	}
	return ""
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(value) > 0
}

func feedArticle(pmid string, feed *gofeed.Feed, item *gofeed.Item) domain.Article {
	title := stripMarkup(item.Title)
	if title == "" {
		title = titleFallback
	}

	abstract := stripMarkup(item.Description)
	if abstract == "" {
		abstract = stripMarkup(item.Content)
	}
	if abstract == "" {
		abstract = abstractFallback
	}

	journal := ""
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Source) > 0 {
		journal = strings.TrimSpace(item.DublinCoreExt.Source[0])
	}
	if journal == "" {
		journal = strings.TrimSpace(feed.Title)
	}
	if journal == "" {
		journal = journalFallback
	}

	article := domain.Article{
		PMID:     pmid,
		Title:    title,
		Abstract: abstract,
		Journal:  journal,
		Authors:  feedAuthors(item),
		RawDate:  strings.TrimSpace(item.Published),
		URL:      fmt.Sprintf("%s/%s/", articleBaseURL, pmid),
	}
	if item.PublishedParsed != nil {
		article.PubDate = item.PublishedParsed.UTC()
	}
	return article
}

// feedAuthors prefers the Dublin Core creator list because it carries every
// author; item.Authors usually holds only the first one.
func feedAuthors(item *gofeed.Item) string {
	var names []string
	if item.DublinCoreExt != nil {
		for _, name := range item.DublinCoreExt.Creator {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}
	if len(names) == 0 {
		for _, person := range item.Authors {
			if person != nil && strings.TrimSpace(person.Name) != "" {
				names = append(names, strings.TrimSpace(person.Name))
			}
		}
	}
	if len(names) == 0 {
		return authorsFallback
	}
	return strings.Join(names, ", ")
}
