package domain

import (
	"time"

	"geosynth.app/pkg/errors"
)

// SectionStatus tells why an optional profile section does or does not carry data
type SectionStatus string

const (
	SectionAvailable     SectionStatus = "available"
	SectionUnavailable   SectionStatus = "unavailable"
	SectionNotApplicable SectionStatus = "not_applicable"
)

// SectionReason explains a missing section
type SectionReason struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Section is one optional part of a profile: either a value, a provider
// failure, or a marker that the part does not apply to this country.
type Section[T any] struct {
	Status SectionStatus  `json:"status"`
	Data   *T             `json:"data,omitempty"`
	Reason *SectionReason `json:"reason,omitempty"`
}

// Available wraps a fetched value
func Available[T any](v *T) Section[T] {
	return Section[T]{Status: SectionAvailable, Data: v}
}

// Unavailable records a failed fetch, keeping the error's kind
func Unavailable[T any](err error) Section[T] {
	return Section[T]{
		Status: SectionUnavailable,
		Reason: &SectionReason{
			Kind:    errors.KindOf(err).String(),
			Message: err.Error(),
		},
	}
}

// NotApplicable records a section that was not attempted
func NotApplicable[T any](message string) Section[T] {
	return Section[T]{
		Status: SectionNotApplicable,
		Reason: &SectionReason{Kind: "NOT_APPLICABLE", Message: message},
	}
}

// IsAvailable reports whether the section carries data
func (s Section[T]) IsAvailable() bool {
	return s.Status == SectionAvailable && s.Data != nil
}

// AggregatedProfile is the merged, best-effort view of one country. It is
// built fresh per call and never cached as a whole.
type AggregatedProfile struct {
	Basic        *Country                      `json:"basic"`
	Economics    Section[EconomicIndicatorSet] `json:"economics"`
	Weather      Section[WeatherSnapshot]      `json:"weather"`
	News         Section[NewsDigest]           `json:"news"`
	Exchange     Section[ExchangeSnapshot]     `json:"exchange"`
	Encyclopedia Section[EncyclopediaSummary]  `json:"encyclopedia"`
	Neighbours   Section[[]CountrySummary]     `json:"neighbours"`
	GeneratedAt  time.Time                     `json:"generatedAt"`
}

// SectionStatuses lists the status of every optional section by name
func (p *AggregatedProfile) SectionStatuses() map[string]SectionStatus {
	return map[string]SectionStatus{
		"economics":    p.Economics.Status,
		"weather":      p.Weather.Status,
		"news":         p.News.Status,
		"exchange":     p.Exchange.Status,
		"encyclopedia": p.Encyclopedia.Status,
		"neighbours":   p.Neighbours.Status,
	}
}
