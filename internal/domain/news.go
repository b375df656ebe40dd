package domain

import (
	"sort"
	"time"
)

// Article is one news item
type Article struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"imageUrl"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      string    `json:"source"`
}

// NewsDigest is an ordered, bounded list of articles
type NewsDigest struct {
	Query        string    `json:"query"`
	Provider     string    `json:"provider"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

// NewNewsDigest orders articles most recent first and keeps at most limit of them
func NewNewsDigest(query, provider string, total int, articles []Article, limit int) *NewsDigest {
	sorted := make([]Article, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	if total < len(sorted) {
		total = len(sorted)
	}
	return &NewsDigest{
		Query:        query,
		Provider:     provider,
		TotalResults: total,
		Articles:     sorted,
	}
}
