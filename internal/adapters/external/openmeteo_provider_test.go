package external

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geosynth.app/internal/domain"
	"geosynth.app/internal/mocks"
	"geosynth.app/pkg/errors"
)

const bernForecast = `{
	"timezone": "Europe/Zurich",
	"current": {"time":"2024-05-01T12:00","temperature_2m":14.2,"relative_humidity_2m":61,"apparent_temperature":12.9,
		"is_day":1,"precipitation":0,"weather_code":3,"cloud_cover":90,"pressure_msl":1014.1,"wind_speed_10m":9.4,"wind_direction_10m":250},
	"daily": {"time":["2024-05-01","2024-05-02"],"weather_code":[3,61],"temperature_2m_max":[16.1,13.0],
		"temperature_2m_min":[7.2,8.4],"precipitation_sum":[0,4.2]}
}`

func newWeather(t *testing.T, geocodingURL, forecastURL string) *OpenMeteoProviderAdapter {
	t.Helper()
	provider, err := NewOpenMeteoProviderAdapter(OpenMeteoProviderParams{
		Geocoding: newTestTransport(geocodingURL, 1),
		Forecast:  newTestTransport(forecastURL, 1),
		Logger:    mocks.NewLogger(),
	})
	require.NoError(t, err)
	provider.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return provider
}

func TestOpenMeteoProvider_Geocode(t *testing.T) {
	t.Run("returns the best match", func(t *testing.T) {
		server := newRecordingServer(t, jsonHandler(http.StatusOK,
			`{"results":[{"name":"Bern","country":"Switzerland","country_code":"CH","latitude":46.948,"longitude":7.447,"timezone":"Europe/Zurich"}]}`))
		provider := newWeather(t, server.URL, server.URL)

		location, err := provider.Geocode(context.Background(), " Bern ")
		require.NoError(t, err)
		assert.Equal(t, &domain.Location{Name: "Bern", Country: "Switzerland", Latitude: 46.948, Longitude: 7.447, Timezone: "Europe/Zurich"}, location)
		assert.Equal(t, "Bern", server.last.URL.Query().Get("name"))
		assert.Equal(t, "1", server.last.URL.Query().Get("count"))
	})

	t.Run("no results is not found", func(t *testing.T) {
		server := newRecordingServer(t, jsonHandler(http.StatusOK, `{"generationtime_ms":0.2}`))
		provider := newWeather(t, server.URL, server.URL)

		_, err := provider.Geocode(context.Background(), "Atlantis")
		assert.True(t, errors.IsNotFoundError(err))
	})

	t.Run("unknown marker is rejected", func(t *testing.T) {
		server := newRecordingServer(t, jsonHandler(http.StatusOK, `{}`))
		provider := newWeather(t, server.URL, server.URL)

		_, err := provider.Geocode(context.Background(), domain.Unknown)
		assert.True(t, errors.IsValidationError(err))
		assert.Equal(t, 0, server.Calls())
	})
}

func TestOpenMeteoProvider_Conditions(t *testing.T) {
	t.Run("maps current conditions and forecast", func(t *testing.T) {
		server := newRecordingServer(t, jsonHandler(http.StatusOK, bernForecast))
		provider := newWeather(t, server.URL, server.URL)

		snapshot, err := provider.Conditions(context.Background(), domain.Location{Name: "Bern", Latitude: 46.948, Longitude: 7.447}, 2)
		require.NoError(t, err)

		query := server.last.URL.Query()
		assert.Equal(t, "46.9480", query.Get("latitude"))
		assert.Equal(t, "auto", query.Get("timezone"))
		assert.Equal(t, "2", query.Get("forecast_days"))

		assert.Equal(t, 14.2, snapshot.Current.Temperature)
		assert.Equal(t, "Overcast", snapshot.Current.Description)
		assert.True(t, snapshot.Current.IsDay)
		assert.Equal(t, "Europe/Zurich", snapshot.Location.Timezone)
		require.Len(t, snapshot.Forecast, 2)
		assert.Equal(t, "Slight rain", snapshot.Forecast[1].Description)
		assert.Equal(t, 4.2, snapshot.Forecast[1].PrecipitationSum)
		assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), snapshot.RetrievedAt)
	})

	t.Run("forecast days are clamped", func(t *testing.T) {
		server := newRecordingServer(t, jsonHandler(http.StatusOK, bernForecast))
		provider := newWeather(t, server.URL, server.URL)

		_, err := provider.Conditions(context.Background(), domain.Location{}, 40)
		require.NoError(t, err)
		assert.Equal(t, "16", server.last.URL.Query().Get("forecast_days"))
	})

	t.Run("missing current block is a validation error", func(t *testing.T) {
		server := newRecordingServer(t, jsonHandler(http.StatusOK, `{"timezone":"UTC"}`))
		provider := newWeather(t, server.URL, server.URL)

		_, err := provider.Conditions(context.Background(), domain.Location{}, 1)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("mismatched daily series is a validation error", func(t *testing.T) {
		server := newRecordingServer(t, jsonHandler(http.StatusOK,
			`{"current":{"time":"t","weather_code":0},"daily":{"time":["a","b"],"weather_code":[0],"temperature_2m_max":[1,2],"temperature_2m_min":[1,2],"precipitation_sum":[0,0]}}`))
		provider := newWeather(t, server.URL, server.URL)

		_, err := provider.Conditions(context.Background(), domain.Location{}, 2)
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestWeatherDescription(t *testing.T) {
	assert.Equal(t, "Clear sky", WeatherDescription(0))
	assert.Equal(t, "Thunderstorm", WeatherDescription(95))
	assert.Equal(t, "Unknown", WeatherDescription(42))
}
