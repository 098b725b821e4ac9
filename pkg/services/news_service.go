package services

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/yadnesh111/AgriSaarthi/pkg/models"
)

const newsConcurrency = 4

// ArticleSummarizer condenses one news item.
type ArticleSummarizer interface {
	SummarizeArticle(ctx context.Context, title, content string) (string, error)
}

// NewsService aggregates agriculture news from RSS feeds and summarizes it.
type NewsService struct {
	searchURL  string
	feeds      []string
	limit      int
	timeout    time.Duration
	summarizer ArticleSummarizer
}

// NewsConfig holds the NewsService settings.
type NewsConfig struct {
	SearchURL string
	Feeds     []string
	Limit     int
	Timeout   time.Duration
}

// NewNewsService creates a NewsService.
func NewNewsService(cfg NewsConfig, summarizer ArticleSummarizer) *NewsService {
	return &NewsService{
		searchURL:  cfg.SearchURL,
		feeds:      cfg.Feeds,
		limit:      cfg.Limit,
		timeout:    cfg.Timeout,
		summarizer: summarizer,
	}
}

type feedItem struct {
	title       string
	link        string
	description string
	published   string
	publishedAt time.Time
}

// FeedURLs returns the feeds read for district: a news search for
// "agriculture <district>" followed by the configured feeds.
func (s *NewsService) FeedURLs(district string) []string {
	district = strings.TrimSpace(district)
	if district == "" {
		district = "India"
	}

	urls := make([]string, 0, len(s.feeds)+1)
	if s.searchURL != "" {
		params := url.Values{}
		params.Set("q", "agriculture "+district)
		params.Set("hl", "en-IN")
		params.Set("gl", "IN")
		params.Set("ceid", "IN:en")
		urls = append(urls, s.searchURL+"?"+params.Encode())
	}
	return append(urls, s.feeds...)
}

// LatestNews returns the newest articles for district, each with a summary.
// Feeds that fail are skipped and failed summaries get a placeholder, so an
// empty list is a valid result.
func (s *NewsService) LatestNews(ctx context.Context, district string) ([]models.NewsArticle, error) {
	items := s.fetchFeeds(ctx, s.FeedURLs(district))

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].publishedAt.After(items[j].publishedAt)
	})

	seen := make(map[string]bool, len(items))
	selected := make([]feedItem, 0, s.limit)
	for _, item := range items {
		if item.link == "" || seen[item.link] {
			continue
		}
		seen[item.link] = true
		selected = append(selected, item)
		if s.limit > 0 && len(selected) >= s.limit {
			break
		}
	}

	articles := make([]models.NewsArticle, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(newsConcurrency)
	for i, item := range selected {
		i, item := i, item
		g.Go(func() error {
			articles[i] = models.NewsArticle{
				Title:     item.title,
				Summary:   s.summarize(gctx, item),
				URL:       item.link,
				Published: item.published,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return articles, nil
}

func (s *NewsService) summarize(ctx context.Context, item feedItem) string {
	if s.summarizer == nil {
		return NewsSummaryPlaceholder
	}
	summary, err := s.summarizer.SummarizeArticle(ctx, item.title, item.description)
	if err != nil {
		log.Warn().Err(err).Str("url", item.link).Msg("news summary failed")
		return NewsSummaryPlaceholder
	}
	if strings.TrimSpace(summary) == "" {
		return NewsSummaryPlaceholder
	}
	return summary
}

// fetchFeeds reads every feed concurrently. A gofeed.Parser is not safe for
// concurrent use, so each goroutine builds its own.
func (s *NewsService) fetchFeeds(ctx context.Context, feedURLs []string) []feedItem {
	results := make([][]feedItem, len(feedURLs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(newsConcurrency)
	for i, feedURL := range feedURLs {
		i, feedURL := i, feedURL
		g.Go(func() error {
			items, err := s.fetchFeed(gctx, feedURL)
			if err != nil {
				log.Warn().Err(err).Str("feed", feedURL).Msg("skipping news feed")
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var all []feedItem
	for _, items := range results {
		all = append(all, items...)
	}
	return all
}

func (s *NewsService) fetchFeed(ctx context.Context, feedURL string) ([]feedItem, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	feed, err := gofeed.NewParser().ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	items := make([]feedItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		fi := feedItem{
			title:       strings.TrimSpace(item.Title),
			link:        strings.TrimSpace(item.Link),
			description: stripHTML(item.Description),
			published:   item.Published,
		}
		if item.PublishedParsed != nil {
			fi.publishedAt = *item.PublishedParsed
		}
		items = append(items, fi)
	}
	return items, nil
}

// stripHTML returns the text content of an HTML fragment.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
