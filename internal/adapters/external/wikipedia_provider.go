package external

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"geosynth.app/internal/adapters/transport"
	"geosynth.app/internal/domain"
	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
)

const OpEncyclopediaSummary = "encyclopedia.summary"

// WikipediaProviderAdapter implements EncyclopediaProvider over the Wikipedia
// REST summary endpoint
type WikipediaProviderAdapter struct {
	client HTTPTransport
	logger ports.Logger
}

// WikipediaProviderParams holds parameters for creating the encyclopedia adapter
type WikipediaProviderParams struct {
	Client HTTPTransport
	Logger ports.Logger
}

type wikipediaSummary struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Extract     string `json:"extract"`
	Thumbnail   *struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
	Coordinates *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coordinates"`
}

// NewWikipediaProviderAdapter creates the encyclopedia adapter
func NewWikipediaProviderAdapter(params WikipediaProviderParams) (*WikipediaProviderAdapter, error) {
	if params.Client == nil {
		return nil, errors.NewValidationError("transport client is required")
	}
	if params.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	return &WikipediaProviderAdapter{client: params.Client, logger: params.Logger}, nil
}

// Summary returns the lead section of the article with the given title
func (p *WikipediaProviderAdapter) Summary(ctx context.Context, title string) (*domain.EncyclopediaSummary, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.NewValidationError("article title cannot be empty")
	}
	slug := strings.ReplaceAll(title, " ", "_")

	var raw wikipediaSummary
	err := p.client.GetJSON(ctx, transport.Request{
		Endpoint:  "/page/summary/" + url.PathEscape(slug),
		Operation: OpEncyclopediaSummary,
	}, &raw)
	if err != nil {
		if errors.StatusCode(err) == http.StatusNotFound {
			return nil, errors.NewNotFoundError(fmt.Sprintf("no article titled %q", title))
		}
		return nil, err
	}

	if raw.Title == "" {
		return nil, errors.NewValidationError("article summary has no title")
	}

	summary := &domain.EncyclopediaSummary{
		Title:       raw.Title,
		Description: raw.Description,
		Extract:     raw.Extract,
		PageURL:     raw.ContentURLs.Desktop.Page,
	}
	if raw.Thumbnail != nil {
		summary.ThumbnailURL = raw.Thumbnail.Source
	}
	if raw.Coordinates != nil {
		summary.Coordinates = &domain.Coordinates{Latitude: raw.Coordinates.Lat, Longitude: raw.Coordinates.Lon}
	}
	if raw.Type == "disambiguation" {
		p.logger.Debug("Article summary is a disambiguation page", ports.F("title", title))
	}
	return summary, nil
}
