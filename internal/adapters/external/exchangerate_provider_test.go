package external

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geosynth.app/internal/adapters/transport"
	"geosynth.app/internal/domain"
	"geosynth.app/internal/mocks"
	"geosynth.app/pkg/errors"
)

func newExchange(t *testing.T, baseURL string, opts ...transport.Option) *ExchangeRateProviderAdapter {
	t.Helper()
	provider, err := NewExchangeRateProviderAdapter(ExchangeRateProviderParams{
		Client: newTestTransport(baseURL, 1, opts...),
		Logger: mocks.NewLogger(),
		APIKey: "k3y",
	})
	require.NoError(t, err)
	return provider
}

func TestExchangeRateProvider_Latest(t *testing.T) {
	t.Run("reads rates and update times", func(t *testing.T) {
		server := newRecordingServer(t, jsonHandler(http.StatusOK, `{
			"result":"success","base_code":"CHF",
			"time_last_update_utc":"Wed, 01 May 2024 00:00:01 +0000",
			"time_next_update_utc":"Thu, 02 May 2024 00:00:01 +0000",
			"conversion_rates":{"CHF":1,"EUR":1.02,"USD":1.09}}`))
		provider := newExchange(t, server.URL)

		snapshot, err := provider.Latest(context.Background(), "chf")
		require.NoError(t, err)

		assert.Equal(t, "/k3y/latest/CHF", server.last.URL.Path)
		assert.Equal(t, "CHF", snapshot.Base)
		rate, ok := snapshot.Rate("USD")
		assert.True(t, ok)
		assert.Equal(t, 1.09, rate)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 1, 0, time.UTC), snapshot.RetrievedAt)
		require.NotNil(t, snapshot.NextUpdate)
		assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 1, 0, time.UTC), *snapshot.NextUpdate)
	})

	t.Run("error result is an api error", func(t *testing.T) {
		server := newRecordingServer(t, jsonHandler(http.StatusOK, `{"result":"error","error-type":"unsupported-code"}`))
		provider := newExchange(t, server.URL)

		_, err := provider.Latest(context.Background(), "XYZ")
		require.Error(t, err)
		assert.True(t, errors.IsAPIError(err))
		assert.Contains(t, err.Error(), "unsupported-code")
	})

	t.Run("invalid base fails before any call", func(t *testing.T) {
		server := newRecordingServer(t, jsonHandler(http.StatusOK, `{}`))
		provider := newExchange(t, server.URL)

		_, err := provider.Latest(context.Background(), "dollars")
		assert.True(t, errors.IsValidationError(err))
		assert.Equal(t, 0, server.Calls())
	})
}

func TestExchangeRateProvider_Convert(t *testing.T) {
	server := newRecordingServer(t, jsonHandler(http.StatusOK, `{
		"result":"success","base_code":"EUR","target_code":"GBP",
		"time_last_update_utc":"Wed, 01 May 2024 00:00:01 +0000",
		"conversion_rate":0.8412,"conversion_result":21.03}`))
	provider := newExchange(t, server.URL)

	conversion, err := provider.Convert(context.Background(), "eur", "gbp", 25)
	require.NoError(t, err)

	assert.Equal(t, "/k3y/pair/EUR/GBP/25", server.last.URL.Path)
	assert.Equal(t, &domain.Conversion{
		From:        "EUR",
		To:          "GBP",
		Amount:      25,
		Rate:        0.8412,
		Result:      21.03,
		RetrievedAt: time.Date(2024, 5, 1, 0, 0, 1, 0, time.UTC),
	}, conversion)

	_, err = provider.Convert(context.Background(), "EUR", "GBP", -1)
	assert.True(t, errors.IsValidationError(err))
}

func TestExchangeRateProvider_SupportedCurrencies(t *testing.T) {
	server := newRecordingServer(t, jsonHandler(http.StatusOK,
		`{"result":"success","supported_codes":[["USD","United States Dollar"],["AED","UAE Dirham"]]}`))
	provider := newExchange(t, server.URL)

	currencies, err := provider.SupportedCurrencies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.CurrencyInfo{
		{Code: "AED", Name: "UAE Dirham"},
		{Code: "USD", Name: "United States Dollar"},
	}, currencies)
	assert.Equal(t, "/k3y/codes", server.last.URL.Path)
}

func TestExchangeRateResultInterceptor(t *testing.T) {
	tests := []struct {
		name      string
		errorType string
		status    int
	}{
		{name: "invalid key", errorType: "invalid-key", status: http.StatusUnauthorized},
		{name: "quota", errorType: "quota-reached", status: http.StatusTooManyRequests},
		{name: "unsupported code", errorType: "unsupported-code", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newRecordingServer(t, jsonHandler(http.StatusOK, `{"result":"error","error-type":"`+tt.errorType+`"}`))
			provider := newExchange(t, server.URL, transport.WithResponseInterceptor(ExchangeRateResultInterceptor()))

			_, err := provider.Latest(context.Background(), "USD")
			require.Error(t, err)
			assert.Equal(t, tt.status, errors.StatusCode(err))
			assert.Equal(t, 1, server.Calls())
		})
	}
}

func TestNewExchangeRateProviderAdapter_RequiresKey(t *testing.T) {
	_, err := NewExchangeRateProviderAdapter(ExchangeRateProviderParams{
		Client: newTestTransport("http://localhost", 1),
		Logger: mocks.NewLogger(),
	})
	assert.True(t, errors.IsConfigurationError(err))
}
