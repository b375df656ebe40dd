package external

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"

	"geosynth.app/internal/adapters/transport"
	"geosynth.app/internal/domain"
	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
)

const rssAccept = "application/rss+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.1"

// RSSNewsProviderAdapter implements NewsProvider over the Google News RSS
// feeds. It needs no key and serves as the fallback when NewsAPI fails.
type RSSNewsProviderAdapter struct {
	client   HTTPTransport
	logger   ports.Logger
	language string
}

// RSSNewsProviderParams holds parameters for creating the RSS adapter
type RSSNewsProviderParams struct {
	Client   HTTPTransport
	Logger   ports.Logger
	Language string
}

// NewRSSNewsProviderAdapter creates the RSS adapter
func NewRSSNewsProviderAdapter(params RSSNewsProviderParams) (*RSSNewsProviderAdapter, error) {
	if params.Client == nil {
		return nil, errors.NewValidationError("transport client is required")
	}
	if params.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	language := params.Language
	if language == "" {
		language = "en"
	}
	return &RSSNewsProviderAdapter{client: params.Client, logger: params.Logger, language: language}, nil
}

// Search reads the search feed for the query
func (p *RSSNewsProviderAdapter) Search(ctx context.Context, query string, limit int) (*domain.NewsDigest, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.NewValidationError("news query cannot be empty")
	}

	q := p.localeQuery("US")
	q.Set("q", query)
	return p.fetch(ctx, "/search", q, query, OpNewsSearch, limit)
}

// TopHeadlines reads the top stories feed for a country's edition
func (p *RSSNewsProviderAdapter) TopHeadlines(ctx context.Context, countryCode string, limit int) (*domain.NewsDigest, error) {
	countryCode = strings.ToUpper(strings.TrimSpace(countryCode))
	if len(countryCode) != 2 {
		return nil, errors.NewValidationError("headlines need a two-letter country code")
	}
	return p.fetch(ctx, "", p.localeQuery(countryCode), countryCode, OpNewsHeadlines, limit)
}

// GetProviderName returns the name of this news provider
func (p *RSSNewsProviderAdapter) GetProviderName() string {
	return "rss"
}

func (p *RSSNewsProviderAdapter) localeQuery(country string) url.Values {
	return url.Values{
		"hl":   {p.language + "-" + country},
		"gl":   {country},
		"ceid": {country + ":" + p.language},
	}
}

func (p *RSSNewsProviderAdapter) fetch(ctx context.Context, endpoint string, query url.Values, label, operation string, limit int) (*domain.NewsDigest, error) {
	resp, err := p.client.RequestWithRetry(ctx, transport.Request{
		Endpoint:  endpoint,
		Query:     query,
		Headers:   map[string]string{"Accept": rssAccept},
		Operation: operation,
	})
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().ParseString(string(resp.Body))
	if err != nil {
		return nil, errors.Wrap(errors.ValidationError, "unreadable news feed from "+resp.Endpoint, err)
	}

	articles := make([]domain.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.Title == "" {
			continue
		}
		articles = append(articles, rssArticle(item))
	}

	return domain.NewNewsDigest(label, p.GetProviderName(), len(articles), articles, clampPageSize(limit)), nil
}

func rssArticle(item *gofeed.Item) domain.Article {
	title, source := splitSourceSuffix(item.Title)
	if len(item.Authors) > 0 && item.Authors[0] != nil && item.Authors[0].Name != "" {
		source = item.Authors[0].Name
	}

	var published time.Time
	switch {
	case item.PublishedParsed != nil:
		published = item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		published = item.UpdatedParsed.UTC()
	}

	article := domain.Article{
		Title:       title,
		Summary:     htmlText(item.Description),
		URL:         item.Link,
		PublishedAt: published,
		Source:      source,
	}
	if item.Image != nil {
		article.ImageURL = item.Image.URL
	}
	return article
}

// splitSourceSuffix separates Google News style "Headline - Publisher" titles
func splitSourceSuffix(title string) (string, string) {
	idx := strings.LastIndex(title, " - ")
	if idx <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+3:])
}

// htmlText flattens an HTML fragment to its visible text
func htmlText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return strings.TrimSpace(fragment)
	}
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(strings.Fields(b.String()), " ")
}
