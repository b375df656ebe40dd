package ports

import (
	"context"

	"geosynth.app/internal/domain"
)

// CountryRegistry defines the contract for the country registry provider
type CountryRegistry interface {
	ByCode(ctx context.Context, code string) (*domain.Country, error)
	ByCodes(ctx context.Context, codes []string) ([]domain.Country, error)
	ByName(ctx context.Context, name string) ([]domain.Country, error)
	ByRegion(ctx context.Context, region string) ([]domain.Country, error)
	All(ctx context.Context) ([]domain.Country, error)
}

// EconomicsProvider defines the contract for economic indicator data
type EconomicsProvider interface {
	Indicator(ctx context.Context, countryCode string, indicator domain.Indicator) (*domain.IndicatorValue, error)
	Indicators(ctx context.Context, countryCode string) (*domain.EconomicIndicatorSet, error)
}

// WeatherProvider defines the contract for geocoding and weather conditions
type WeatherProvider interface {
	Geocode(ctx context.Context, place string) (*domain.Location, error)
	Conditions(ctx context.Context, location domain.Location, forecastDays int) (*domain.WeatherSnapshot, error)
}

// NewsProvider defines the contract for news search and headlines
type NewsProvider interface {
	Search(ctx context.Context, query string, limit int) (*domain.NewsDigest, error)
	TopHeadlines(ctx context.Context, countryCode string, limit int) (*domain.NewsDigest, error)
	GetProviderName() string
}

// ExchangeProvider defines the contract for currency exchange data
type ExchangeProvider interface {
	Latest(ctx context.Context, base string) (*domain.ExchangeSnapshot, error)
	Convert(ctx context.Context, from, to string, amount float64) (*domain.Conversion, error)
	SupportedCurrencies(ctx context.Context) ([]domain.CurrencyInfo, error)
}

// EncyclopediaProvider defines the contract for article summaries
type EncyclopediaProvider interface {
	Summary(ctx context.Context, title string) (*domain.EncyclopediaSummary, error)
}
