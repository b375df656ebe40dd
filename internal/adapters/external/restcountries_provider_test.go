package external

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geosynth.app/internal/domain"
	"geosynth.app/internal/mocks"
	"geosynth.app/pkg/errors"
)

const switzerlandJSON = `[{
	"name": {"common": "Switzerland", "official": "Swiss Confederation",
		"nativeName": {"deu": {"official": "Schweizerische Eidgenossenschaft", "common": "Schweiz"}}},
	"cca2": "CH", "cca3": "CHE",
	"capital": ["Bern"],
	"region": "Europe", "subregion": "Western Europe",
	"area": 41284, "landlocked": true,
	"borders": ["AUT", "FRA", "ITA", "LIE", "DEU"],
	"latlng": [47, 8],
	"population": 8654622,
	"languages": {"fra": "French", "gsw": "Swiss German", "ita": "Italian", "roh": "Romansh"},
	"currencies": {"CHF": {"name": "Swiss franc", "symbol": "Fr."}},
	"flag": "🇨🇭",
	"flags": {"png": "https://flagcdn.com/w320/ch.png", "svg": "https://flagcdn.com/ch.svg"},
	"timezones": ["UTC+01:00"],
	"continents": ["Europe"],
	"tld": [".ch"],
	"independent": true, "unMember": true,
	"idd": {"root": "+4", "suffixes": ["1"]},
	"maps": {"googleMaps": "https://goo.gl/maps/uVuZcXaxSx5jLyEC9", "openStreetMaps": "https://www.openstreetmap.org/relation/51701"},
	"capitalInfo": {"latlng": [46.92, 7.47]}
}]`

func newRegistry(t *testing.T, baseURL string, attempts int) *RestCountriesProviderAdapter {
	t.Helper()
	registry, err := NewRestCountriesProviderAdapter(RestCountriesProviderParams{
		Client: newTestTransport(baseURL, attempts),
		Logger: mocks.NewLogger(),
	})
	require.NoError(t, err)
	return registry
}

func TestRestCountriesProvider_ByCode(t *testing.T) {
	server := newRecordingServer(t, jsonHandler(http.StatusOK, switzerlandJSON))
	registry := newRegistry(t, server.URL, 3)

	country, err := registry.ByCode(context.Background(), "ch")
	require.NoError(t, err)

	assert.Equal(t, "/alpha/CH", server.last.URL.Path)
	assert.Equal(t, "CH", country.Code)
	assert.Equal(t, "CHE", country.Code3)
	assert.Equal(t, "Switzerland", country.Name)
	assert.Equal(t, "Swiss Confederation", country.OfficialName)
	assert.Equal(t, "Schweiz", country.NativeNames["deu"].Common)
	assert.Equal(t, "Bern", country.Capital)
	assert.Equal(t, []string{"French", "Swiss German", "Italian", "Romansh"}, country.Languages)
	assert.Equal(t, []domain.Currency{{Code: "CHF", Name: "Swiss franc", Symbol: "Fr."}}, country.Currencies)
	assert.Equal(t, "https://flagcdn.com/ch.svg", country.FlagURL)
	assert.Equal(t, []string{"+41"}, country.CallingCodes)
	assert.Equal(t, &domain.Coordinates{Latitude: 47, Longitude: 8}, country.Coordinates)
	assert.Equal(t, &domain.Coordinates{Latitude: 46.92, Longitude: 7.47}, country.CapitalCoordinates)
	require.NotNil(t, country.Population)
	assert.Equal(t, int64(8654622), *country.Population)
	require.NotNil(t, country.Landlocked)
	assert.True(t, *country.Landlocked)
	assert.Nil(t, country.Economics)
}

func TestRestCountriesProvider_Normalization(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		assert func(t *testing.T, c *domain.Country)
	}{
		{
			name: "single currency becomes one ordered record",
			body: `[{"name":{"common":"United States"},"cca2":"US","currencies":{"USD":{"name":"US Dollar","symbol":"$"}}}]`,
			assert: func(t *testing.T, c *domain.Country) {
				assert.Equal(t, []domain.Currency{{Code: "USD", Name: "US Dollar", Symbol: "$"}}, c.Currencies)
			},
		},
		{
			name: "currency order follows the upstream object",
			body: `[{"name":{"common":"Zimbabwe"},"cca2":"ZW","currencies":{"ZWL":{"name":"Zimbabwean dollar","symbol":"$"},"BWP":{"name":"Botswana pula","symbol":"P"},"AUD":{"name":"Australian dollar","symbol":"$"}}}]`,
			assert: func(t *testing.T, c *domain.Country) {
				codes := make([]string, len(c.Currencies))
				for i, cur := range c.Currencies {
					codes[i] = cur.Code
				}
				assert.Equal(t, []string{"ZWL", "BWP", "AUD"}, codes)
			},
		},
		{
			name: "absent capital, text and link fields use the unknown marker",
			body: `[{"name":{"common":"Antarctica"},"cca2":"AQ"}]`,
			assert: func(t *testing.T, c *domain.Country) {
				assert.Equal(t, domain.Unknown, c.Capital)
				assert.Equal(t, domain.Unknown, c.Region)
				assert.Equal(t, domain.Unknown, c.Code3)
				assert.False(t, c.HasCapital())
				assert.Empty(t, c.Currencies)
				assert.NotNil(t, c.Currencies)
				assert.NotNil(t, c.Borders)
				assert.Nil(t, c.Population)
				assert.Nil(t, c.Area)
				assert.Equal(t, domain.Unknown, c.FlagURL)
				assert.Equal(t, domain.Unknown, c.CoatOfArmsURL)
				assert.Equal(t, domain.Unknown, c.Maps.GoogleMaps)
				assert.Equal(t, domain.Unknown, c.Maps.OpenStreetMap)
			},
		},
		{
			name: "flag falls back to png",
			body: `[{"name":{"common":"Chad"},"cca2":"TD","flags":{"png":"https://flagcdn.com/w320/td.png"}}]`,
			assert: func(t *testing.T, c *domain.Country) {
				assert.Equal(t, "https://flagcdn.com/w320/td.png", c.FlagURL)
			},
		},
		{
			name: "calling codes join root with every suffix",
			body: `[{"name":{"common":"United States"},"cca2":"US","idd":{"root":"+1","suffixes":["201","202"]}}]`,
			assert: func(t *testing.T, c *domain.Country) {
				assert.Equal(t, []string{"+1201", "+1202"}, c.CallingCodes)
			},
		},
		{
			name: "single object payload is accepted",
			body: `{"name":{"common":"Japan"},"cca2":"JP","capital":["Tokyo"]}`,
			assert: func(t *testing.T, c *domain.Country) {
				assert.Equal(t, "Tokyo", c.Capital)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newRecordingServer(t, jsonHandler(http.StatusOK, tt.body))
			registry := newRegistry(t, server.URL, 1)

			country, err := registry.ByCode(context.Background(), "XX")
			require.NoError(t, err)
			tt.assert(t, country)
		})
	}
}

func TestRestCountriesProvider_Errors(t *testing.T) {
	t.Run("invalid code fails before any call", func(t *testing.T) {
		server := newRecordingServer(t, jsonHandler(http.StatusOK, switzerlandJSON))
		registry := newRegistry(t, server.URL, 3)

		_, err := registry.ByCode(context.Background(), "C1")
		assert.True(t, errors.IsValidationError(err))
		assert.Equal(t, 0, server.Calls())
	})

	t.Run("unknown code is not found", func(t *testing.T) {
		server := newRecordingServer(t, jsonHandler(http.StatusNotFound, `{"status":404,"message":"Not Found"}`))
		registry := newRegistry(t, server.URL, 3)

		_, err := registry.ByCode(context.Background(), "ZZ")
		assert.True(t, errors.IsNotFoundError(err))
		assert.Equal(t, 1, server.Calls())
	})

	t.Run("record without code is a validation error", func(t *testing.T) {
		server := newRecordingServer(t, jsonHandler(http.StatusOK, `[{"name":{"common":"Nowhere"}}]`))
		registry := newRegistry(t, server.URL, 3)

		_, err := registry.ByCode(context.Background(), "NW")
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("server errors are retried then surfaced", func(t *testing.T) {
		server := newRecordingServer(t, jsonHandler(http.StatusInternalServerError, `{"message":"boom"}`))
		registry := newRegistry(t, server.URL, 3)

		_, err := registry.ByCode(context.Background(), "CH")
		require.Error(t, err)
		assert.True(t, errors.IsAPIError(err))
		assert.Equal(t, http.StatusInternalServerError, errors.StatusCode(err))
		assert.Equal(t, 3, server.Calls())
	})
}

func TestRestCountriesProvider_Lists(t *testing.T) {
	t.Run("name search with no match is empty", func(t *testing.T) {
		server := newRecordingServer(t, jsonHandler(http.StatusNotFound, `{"status":404,"message":"Not Found"}`))
		registry := newRegistry(t, server.URL, 1)

		countries, err := registry.ByName(context.Background(), "atlantis")
		require.NoError(t, err)
		assert.Empty(t, countries)
		assert.Equal(t, "/name/atlantis", server.last.URL.Path)
	})

	t.Run("codes are sent in one request", func(t *testing.T) {
		server := newRecordingServer(t, jsonHandler(http.StatusOK, switzerlandJSON))
		registry := newRegistry(t, server.URL, 1)

		countries, err := registry.ByCodes(context.Background(), []string{"che", "bad!", "fra"})
		require.NoError(t, err)
		assert.Len(t, countries, 1)
		assert.Equal(t, "CHE,FRA", server.last.URL.Query().Get("codes"))
	})

	t.Run("no valid codes skips the call", func(t *testing.T) {
		server := newRecordingServer(t, jsonHandler(http.StatusOK, switzerlandJSON))
		registry := newRegistry(t, server.URL, 1)

		countries, err := registry.ByCodes(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, countries)
		assert.Equal(t, 0, server.Calls())
	})

	t.Run("region is lower-cased", func(t *testing.T) {
		server := newRecordingServer(t, jsonHandler(http.StatusOK, switzerlandJSON))
		registry := newRegistry(t, server.URL, 1)

		_, err := registry.ByRegion(context.Background(), "Europe")
		require.NoError(t, err)
		assert.Equal(t, "/region/europe", server.last.URL.Path)
	})

	t.Run("all requests a field list", func(t *testing.T) {
		server := newRecordingServer(t, jsonHandler(http.StatusOK, switzerlandJSON))
		registry := newRegistry(t, server.URL, 1)

		countries, err := registry.All(context.Background())
		require.NoError(t, err)
		assert.Len(t, countries, 1)
		assert.Contains(t, server.last.URL.Query().Get("fields"), "cca2")
	})
}

func TestNewRestCountriesProviderAdapter_RequiresDependencies(t *testing.T) {
	_, err := NewRestCountriesProviderAdapter(RestCountriesProviderParams{Logger: mocks.NewLogger()})
	assert.True(t, errors.IsValidationError(err))

	_, err = NewRestCountriesProviderAdapter(RestCountriesProviderParams{Client: newTestTransport("http://localhost", 1)})
	assert.True(t, errors.IsValidationError(err))
}
