// Package mocks provides testify mocks and fakes for the application ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"geosynth.app/internal/domain"
)

type cleanupT interface {
	mock.TestingT
	Cleanup(func())
}

// CountryRegistry is a mock of ports.CountryRegistry
type CountryRegistry struct {
	mock.Mock
}

// NewCountryRegistry creates a mock that asserts its expectations on cleanup
func NewCountryRegistry(t cleanupT) *CountryRegistry {
	m := &CountryRegistry{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *CountryRegistry) ByCode(ctx context.Context, code string) (*domain.Country, error) {
	args := m.Called(ctx, code)
	country, _ := args.Get(0).(*domain.Country)
	return country, args.Error(1)
}

func (m *CountryRegistry) ByCodes(ctx context.Context, codes []string) ([]domain.Country, error) {
	args := m.Called(ctx, codes)
	countries, _ := args.Get(0).([]domain.Country)
	return countries, args.Error(1)
}

func (m *CountryRegistry) ByName(ctx context.Context, name string) ([]domain.Country, error) {
	args := m.Called(ctx, name)
	countries, _ := args.Get(0).([]domain.Country)
	return countries, args.Error(1)
}

func (m *CountryRegistry) ByRegion(ctx context.Context, region string) ([]domain.Country, error) {
	args := m.Called(ctx, region)
	countries, _ := args.Get(0).([]domain.Country)
	return countries, args.Error(1)
}

func (m *CountryRegistry) All(ctx context.Context) ([]domain.Country, error) {
	args := m.Called(ctx)
	countries, _ := args.Get(0).([]domain.Country)
	return countries, args.Error(1)
}

// EconomicsProvider is a mock of ports.EconomicsProvider
type EconomicsProvider struct {
	mock.Mock
}

// NewEconomicsProvider creates a mock that asserts its expectations on cleanup
func NewEconomicsProvider(t cleanupT) *EconomicsProvider {
	m := &EconomicsProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *EconomicsProvider) Indicator(ctx context.Context, countryCode string, indicator domain.Indicator) (*domain.IndicatorValue, error) {
	args := m.Called(ctx, countryCode, indicator)
	v, _ := args.Get(0).(*domain.IndicatorValue)
	return v, args.Error(1)
}

func (m *EconomicsProvider) Indicators(ctx context.Context, countryCode string) (*domain.EconomicIndicatorSet, error) {
	args := m.Called(ctx, countryCode)
	set, _ := args.Get(0).(*domain.EconomicIndicatorSet)
	return set, args.Error(1)
}

// WeatherProvider is a mock of ports.WeatherProvider
type WeatherProvider struct {
	mock.Mock
}

// NewWeatherProvider creates a mock that asserts its expectations on cleanup
func NewWeatherProvider(t cleanupT) *WeatherProvider {
	m := &WeatherProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *WeatherProvider) Geocode(ctx context.Context, place string) (*domain.Location, error) {
	args := m.Called(ctx, place)
	loc, _ := args.Get(0).(*domain.Location)
	return loc, args.Error(1)
}

func (m *WeatherProvider) Conditions(ctx context.Context, location domain.Location, forecastDays int) (*domain.WeatherSnapshot, error) {
	args := m.Called(ctx, location, forecastDays)
	snapshot, _ := args.Get(0).(*domain.WeatherSnapshot)
	return snapshot, args.Error(1)
}

// NewsProvider is a mock of ports.NewsProvider
type NewsProvider struct {
	mock.Mock
	Name string
}

// NewNewsProvider creates a mock that asserts its expectations on cleanup
func NewNewsProvider(t cleanupT, name string) *NewsProvider {
	m := &NewsProvider{Name: name}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *NewsProvider) Search(ctx context.Context, query string, limit int) (*domain.NewsDigest, error) {
	args := m.Called(ctx, query, limit)
	digest, _ := args.Get(0).(*domain.NewsDigest)
	return digest, args.Error(1)
}

func (m *NewsProvider) TopHeadlines(ctx context.Context, countryCode string, limit int) (*domain.NewsDigest, error) {
	args := m.Called(ctx, countryCode, limit)
	digest, _ := args.Get(0).(*domain.NewsDigest)
	return digest, args.Error(1)
}

func (m *NewsProvider) GetProviderName() string {
	return m.Name
}

// ExchangeProvider is a mock of ports.ExchangeProvider
type ExchangeProvider struct {
	mock.Mock
}

// NewExchangeProvider creates a mock that asserts its expectations on cleanup
func NewExchangeProvider(t cleanupT) *ExchangeProvider {
	m := &ExchangeProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ExchangeProvider) Latest(ctx context.Context, base string) (*domain.ExchangeSnapshot, error) {
	args := m.Called(ctx, base)
	snapshot, _ := args.Get(0).(*domain.ExchangeSnapshot)
	return snapshot, args.Error(1)
}

func (m *ExchangeProvider) Convert(ctx context.Context, from, to string, amount float64) (*domain.Conversion, error) {
	args := m.Called(ctx, from, to, amount)
	conversion, _ := args.Get(0).(*domain.Conversion)
	return conversion, args.Error(1)
}

func (m *ExchangeProvider) SupportedCurrencies(ctx context.Context) ([]domain.CurrencyInfo, error) {
	args := m.Called(ctx)
	currencies, _ := args.Get(0).([]domain.CurrencyInfo)
	return currencies, args.Error(1)
}

// EncyclopediaProvider is a mock of ports.EncyclopediaProvider
type EncyclopediaProvider struct {
	mock.Mock
}

// NewEncyclopediaProvider creates a mock that asserts its expectations on cleanup
func NewEncyclopediaProvider(t cleanupT) *EncyclopediaProvider {
	m := &EncyclopediaProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *EncyclopediaProvider) Summary(ctx context.Context, title string) (*domain.EncyclopediaSummary, error) {
	args := m.Called(ctx, title)
	summary, _ := args.Get(0).(*domain.EncyclopediaSummary)
	return summary, args.Error(1)
}
