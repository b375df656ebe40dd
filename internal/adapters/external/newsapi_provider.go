package external

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"geosynth.app/internal/adapters/transport"
	"geosynth.app/internal/domain"
	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
)

const (
	OpNewsSearch    = "news.search"
	OpNewsHeadlines = "news.headlines"

	newsAPIMaxPageSize = 100
	newsAPIRemoved     = "[Removed]"
)

// NewsAPIProviderAdapter implements NewsProvider for newsapi.org. The API key
// is attached by the transport client.
type NewsAPIProviderAdapter struct {
	client HTTPTransport
	logger ports.Logger
}

// NewsAPIProviderParams holds parameters for creating the NewsAPI adapter
type NewsAPIProviderParams struct {
	Client HTTPTransport
	Logger ports.Logger
}

type newsAPIResponse struct {
	Status       string `json:"status"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// NewNewsAPIProviderAdapter creates the NewsAPI adapter
func NewNewsAPIProviderAdapter(params NewsAPIProviderParams) (*NewsAPIProviderAdapter, error) {
	if params.Client == nil {
		return nil, errors.NewValidationError("transport client is required")
	}
	if params.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	return &NewsAPIProviderAdapter{client: params.Client, logger: params.Logger}, nil
}

// Search returns the most recent articles matching the query
func (p *NewsAPIProviderAdapter) Search(ctx context.Context, query string, limit int) (*domain.NewsDigest, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.NewValidationError("news query cannot be empty")
	}
	limit = clampPageSize(limit)

	var resp newsAPIResponse
	err := p.client.GetJSON(ctx, transport.Request{
		Endpoint: "/everything",
		Query: url.Values{
			"q":        {query},
			"sortBy":   {"publishedAt"},
			"pageSize": {strconv.Itoa(limit)},
		},
		Operation: OpNewsSearch,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return p.toDigest(query, &resp, limit)
}

// TopHeadlines returns current headlines for a country
func (p *NewsAPIProviderAdapter) TopHeadlines(ctx context.Context, countryCode string, limit int) (*domain.NewsDigest, error) {
	countryCode = strings.ToLower(strings.TrimSpace(countryCode))
	if len(countryCode) != 2 {
		return nil, errors.NewValidationError("headlines need a two-letter country code")
	}
	limit = clampPageSize(limit)

	var resp newsAPIResponse
	err := p.client.GetJSON(ctx, transport.Request{
		Endpoint: "/top-headlines",
		Query: url.Values{
			"country":  {countryCode},
			"pageSize": {strconv.Itoa(limit)},
		},
		Operation: OpNewsHeadlines,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return p.toDigest(countryCode, &resp, limit)
}

// GetProviderName returns the name of this news provider
func (p *NewsAPIProviderAdapter) GetProviderName() string {
	return "newsapi"
}

func (p *NewsAPIProviderAdapter) toDigest(query string, resp *newsAPIResponse, limit int) (*domain.NewsDigest, error) {
	if resp.Status != "" && resp.Status != "ok" {
		return nil, errors.NewValidationError("news response status " + resp.Status)
	}

	articles := make([]domain.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.Title == "" || a.Title == newsAPIRemoved {
			continue
		}
		published, err := time.Parse(time.RFC3339, a.PublishedAt)
		if err != nil {
			p.logger.Debug("Skipping article with unparseable date",
				ports.F("provider", p.GetProviderName()),
				ports.F("published_at", a.PublishedAt))
			continue
		}
		articles = append(articles, domain.Article{
			Title:       a.Title,
			Summary:     a.Description,
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			PublishedAt: published.UTC(),
			Source:      a.Source.Name,
		})
	}

	return domain.NewNewsDigest(query, p.GetProviderName(), resp.TotalResults, articles, limit), nil
}

func clampPageSize(limit int) int {
	if limit < 1 {
		return 10
	}
	if limit > newsAPIMaxPageSize {
		return newsAPIMaxPageSize
	}
	return limit
}
