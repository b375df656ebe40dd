package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"geosynth.app/internal/domain"
	"geosynth.app/internal/mocks"
	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
)

type countryService struct{ mock.Mock }

func (m *countryService) GetCountry(ctx context.Context, code string) (*domain.Country, error) {
	args := m.Called(ctx, code)
	c, _ := args.Get(0).(*domain.Country)
	return c, args.Error(1)
}

func (m *countryService) SearchCountries(ctx context.Context, query string) ([]domain.Country, error) {
	args := m.Called(ctx, query)
	c, _ := args.Get(0).([]domain.Country)
	return c, args.Error(1)
}

func (m *countryService) GetCountriesByRegion(ctx context.Context, region string) ([]domain.Country, error) {
	args := m.Called(ctx, region)
	c, _ := args.Get(0).([]domain.Country)
	return c, args.Error(1)
}

func (m *countryService) GetAllCountries(ctx context.Context) ([]domain.Country, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]domain.Country)
	return c, args.Error(1)
}

func (m *countryService) GetCountryEconomics(ctx context.Context, code string) (*domain.EconomicIndicatorSet, error) {
	args := m.Called(ctx, code)
	s, _ := args.Get(0).(*domain.EconomicIndicatorSet)
	return s, args.Error(1)
}

func (m *countryService) GetNeighbours(ctx context.Context, code string) ([]domain.CountrySummary, error) {
	args := m.Called(ctx, code)
	s, _ := args.Get(0).([]domain.CountrySummary)
	return s, args.Error(1)
}

type profileService struct{ mock.Mock }

func (m *profileService) GetAggregatedProfile(ctx context.Context, code string) (*domain.AggregatedProfile, error) {
	args := m.Called(ctx, code)
	p, _ := args.Get(0).(*domain.AggregatedProfile)
	return p, args.Error(1)
}

func (m *profileService) Invalidate(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func (m *profileService) ClearAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type exchangeService struct{ mock.Mock }

func (m *exchangeService) Convert(ctx context.Context, from, to string, amount float64) (*domain.Conversion, error) {
	args := m.Called(ctx, from, to, amount)
	c, _ := args.Get(0).(*domain.Conversion)
	return c, args.Error(1)
}

func (m *exchangeService) SupportedCurrencies(ctx context.Context) ([]domain.CurrencyInfo, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]domain.CurrencyInfo)
	return c, args.Error(1)
}

type staticStats struct{ stats ports.CacheStats }

func (s staticStats) Stats(context.Context) (ports.CacheStats, error) { return s.stats, nil }

type staticHealth map[string]ports.HealthStatus

func (h staticHealth) CheckAll(context.Context) map[string]ports.HealthStatus { return h }

type staticMetrics map[string]interface{}

func (m staticMetrics) GetMetrics(context.Context) (map[string]interface{}, error) { return m, nil }

type testServer struct {
	router    *gin.Engine
	countries *countryService
	profiles  *profileService
	exchange  *exchangeService
	health    staticHealth
}

func newTestServer(t *testing.T, withExchange bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		countries: &countryService{},
		profiles:  &profileService{},
		exchange:  &exchangeService{},
		health: staticHealth{
			"cache": {Component: "cache", Status: "healthy"},
		},
	}

	opts := ServerOptions{
		Config:        ServerConfig{Port: 8080},
		Countries:     ts.countries,
		Profiles:      ts.profiles,
		CacheStats:    staticStats{stats: ports.CacheStats{Backend: "memory", Size: 2, MaxSize: 100}},
		HealthChecker: ts.health,
		Metrics:       staticMetrics{"cache": map[string]interface{}{"hits": 1}},
		Logger:        mocks.NewLogger(),
	}
	if withExchange {
		opts.Exchange = ts.exchange
	}

	server, err := NewHTTPServerAdapter(opts)
	require.NoError(t, err)
	assert.Equal(t, ":8080", server.Addr())
	ts.router = server.Handler()

	t.Cleanup(func() {
		ts.countries.AssertExpectations(t)
		ts.profiles.AssertExpectations(t)
		ts.exchange.AssertExpectations(t)
	})
	return ts
}

func (ts *testServer) do(method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestGetCountry(t *testing.T) {
	ts := newTestServer(t, false)
	ts.countries.On("GetCountry", mock.Anything, "CH").
		Return(&domain.Country{Code: "CH", Name: "Switzerland"}, nil).Once()

	w := ts.do(http.MethodGet, "/api/countries/ch")

	require.Equal(t, http.StatusOK, w.Code)
	country := decode[domain.Country](t, w)
	assert.Equal(t, "Switzerland", country.Name)
}

func TestGetCountry_InvalidCode(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do(http.MethodGet, "/api/countries/c1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[ErrorResponse](t, w).Kind)
}

func TestGetCountry_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", errors.NewNotFoundError("country XX not found"), http.StatusNotFound},
		{"upstream down", errors.NewNetworkError("connection refused", nil), http.StatusServiceUnavailable},
		{"upstream 500", errors.NewAPIError(500, "/alpha/XX", "", nil), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, false)
			ts.countries.On("GetCountry", mock.Anything, "XX").Return(nil, tt.err).Once()

			w := ts.do(http.MethodGet, "/api/countries/XX")
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestListCountries(t *testing.T) {
	t.Run("all", func(t *testing.T) {
		ts := newTestServer(t, false)
		ts.countries.On("GetAllCountries", mock.Anything).
			Return([]domain.Country{{Code: "CH"}, {Code: "FR"}}, nil).Once()

		w := ts.do(http.MethodGet, "/api/countries")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2, decode[CountryListResponse](t, w).Count)
	})

	t.Run("by region", func(t *testing.T) {
		ts := newTestServer(t, false)
		ts.countries.On("GetCountriesByRegion", mock.Anything, "europe").
			Return([]domain.Country{{Code: "CH"}}, nil).Once()

		w := ts.do(http.MethodGet, "/api/countries?region=europe")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decode[CountryListResponse](t, w).Count)
	})

	t.Run("empty region", func(t *testing.T) {
		ts := newTestServer(t, false)
		w := ts.do(http.MethodGet, "/api/countries?region=")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSearchCountries(t *testing.T) {
	t.Run("short query is an empty list", func(t *testing.T) {
		ts := newTestServer(t, false)
		ts.countries.On("SearchCountries", mock.Anything, "a").Return([]domain.Country{}, nil).Once()

		w := ts.do(http.MethodGet, "/api/countries/search?q=a")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, decode[CountryListResponse](t, w).Count)
		assert.JSONEq(t, `{"count":0,"countries":[]}`, w.Body.String())
	})

	t.Run("missing query", func(t *testing.T) {
		ts := newTestServer(t, false)
		w := ts.do(http.MethodGet, "/api/countries/search")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCountrySubresources(t *testing.T) {
	ts := newTestServer(t, false)
	ts.countries.On("GetCountryEconomics", mock.Anything, "DE").
		Return(&domain.EconomicIndicatorSet{CountryCode: "DE"}, nil).Once()
	ts.countries.On("GetNeighbours", mock.Anything, "DE").
		Return([]domain.CountrySummary{{Code: "AT"}, {Code: "CH"}, {Code: "FR"}}, nil).Once()
	ts.profiles.On("GetAggregatedProfile", mock.Anything, "DE").
		Return(&domain.AggregatedProfile{
			Basic:   &domain.Country{Code: "DE"},
			Weather: domain.NotApplicable[domain.WeatherSnapshot]("weather disabled"),
		}, nil).Once()

	w := ts.do(http.MethodGet, "/api/countries/de/economics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DE", decode[domain.EconomicIndicatorSet](t, w).CountryCode)

	w = ts.do(http.MethodGet, "/api/countries/de/neighbours")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[CountryListResponse](t, w).Count)

	w = ts.do(http.MethodGet, "/api/countries/de/profile")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]interface{}](t, w)
	weather, ok := body["weather"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "not_applicable", weather["status"])
}

func TestConvertCurrency(t *testing.T) {
	t.Run("converts", func(t *testing.T) {
		ts := newTestServer(t, true)
		ts.exchange.On("Convert", mock.Anything, "USD", "EUR", 10.0).
			Return(&domain.Conversion{From: "USD", To: "EUR", Amount: 10, Rate: 0.9, Result: 9}, nil).Once()

		w := ts.do(http.MethodGet, "/api/exchange/convert?from=usd&to=EUR&amount=10")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 9.0, decode[domain.Conversion](t, w).Result)
	})

	t.Run("amount defaults to one", func(t *testing.T) {
		ts := newTestServer(t, true)
		ts.exchange.On("Convert", mock.Anything, "USD", "EUR", 1.0).
			Return(&domain.Conversion{Result: 0.9}, nil).Once()

		w := ts.do(http.MethodGet, "/api/exchange/convert?from=USD&to=EUR")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		ts := newTestServer(t, true)
		for _, target := range []string{
			"/api/exchange/convert?from=EURO&to=USD",
			"/api/exchange/convert?from=EUR",
			"/api/exchange/convert?from=EUR&to=USD&amount=-1",
			"/api/exchange/convert?from=EUR&to=U5D",
		} {
			w := ts.do(http.MethodGet, target)
			assert.Equal(t, http.StatusBadRequest, w.Code, target)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		ts := newTestServer(t, false)
		w := ts.do(http.MethodGet, "/api/exchange/convert?from=USD&to=EUR")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		w = ts.do(http.MethodGet, "/api/exchange/currencies")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestListCurrencies(t *testing.T) {
	ts := newTestServer(t, true)
	ts.exchange.On("SupportedCurrencies", mock.Anything).
		Return([]domain.CurrencyInfo{{Code: "CHF", Name: "Swiss Franc"}, {Code: "EUR", Name: "Euro"}}, nil).Once()

	w := ts.do(http.MethodGet, "/api/exchange/currencies")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[CurrenciesResponse](t, w).Count)
}

func TestCacheRoutes(t *testing.T) {
	ts := newTestServer(t, false)
	ts.profiles.On("Invalidate", mock.Anything, "CH").Return(nil).Once()
	ts.profiles.On("ClearAll", mock.Anything).Return(7, nil).Once()

	w := ts.do(http.MethodDelete, "/api/cache/countries/ch")
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodDelete, "/api/cache")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, decode[ClearResponse](t, w).Removed)

	w = ts.do(http.MethodGet, "/api/cache/stats")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[ports.CacheStats](t, w)
	assert.Equal(t, "memory", stats.Backend)
	assert.Equal(t, 2, stats.Size)
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		ts := newTestServer(t, false)
		w := ts.do(http.MethodGet, "/api/health")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", decode[HealthResponse](t, w).Status)
	})

	t.Run("unhealthy component", func(t *testing.T) {
		ts := newTestServer(t, false)
		ts.health["providers"] = ports.HealthStatus{Component: "providers", Status: "unhealthy"}

		w := ts.do(http.MethodGet, "/api/health")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unhealthy", decode[HealthResponse](t, w).Status)
	})
}

func TestMetricsRoutes(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do(http.MethodGet, "/api/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[map[string]interface{}](t, w), "cache")

	w = ts.do(http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestNewHTTPServerAdapter_RequiresDependencies(t *testing.T) {
	_, err := NewHTTPServerAdapter(ServerOptions{Logger: mocks.NewLogger()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "country service is required")
}
