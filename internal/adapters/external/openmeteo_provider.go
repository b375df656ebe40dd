package external

import (
	"context"
	"fmt"
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
	OpWeatherGeocode    = "weather.geocode"
	OpWeatherConditions = "weather.conditions"

	openMeteoCurrentFields = "temperature_2m,relative_humidity_2m,apparent_temperature,is_day,precipitation,weather_code,cloud_cover,pressure_msl,wind_speed_10m,wind_direction_10m"
	openMeteoDailyFields   = "weather_code,temperature_2m_max,temperature_2m_min,precipitation_sum"
	maxForecastDays        = 16
)

// OpenMeteoProviderAdapter implements WeatherProvider using the Open-Meteo
// geocoding and forecast APIs, which need no key
type OpenMeteoProviderAdapter struct {
	geocoding HTTPTransport
	forecast  HTTPTransport
	logger    ports.Logger
	now       func() time.Time
}

// OpenMeteoProviderParams holds parameters for creating the weather adapter
type OpenMeteoProviderParams struct {
	Geocoding HTTPTransport
	Forecast  HTTPTransport
	Logger    ports.Logger
}

type openMeteoGeocodingResponse struct {
	Results []struct {
		Name        string  `json:"name"`
		Country     string  `json:"country"`
		CountryCode string  `json:"country_code"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		Timezone    string  `json:"timezone"`
	} `json:"results"`
}

type openMeteoForecastResponse struct {
	Timezone string `json:"timezone"`
	Current  *struct {
		Time                string  `json:"time"`
		Temperature         float64 `json:"temperature_2m"`
		Humidity            float64 `json:"relative_humidity_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		IsDay               int     `json:"is_day"`
		Precipitation       float64 `json:"precipitation"`
		WeatherCode         int     `json:"weather_code"`
		CloudCover          float64 `json:"cloud_cover"`
		Pressure            float64 `json:"pressure_msl"`
		WindSpeed           float64 `json:"wind_speed_10m"`
		WindDirection       float64 `json:"wind_direction_10m"`
	} `json:"current"`
	Daily *struct {
		Time             []string  `json:"time"`
		WeatherCode      []int     `json:"weather_code"`
		TemperatureMax   []float64 `json:"temperature_2m_max"`
		TemperatureMin   []float64 `json:"temperature_2m_min"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

// NewOpenMeteoProviderAdapter creates the weather adapter
func NewOpenMeteoProviderAdapter(params OpenMeteoProviderParams) (*OpenMeteoProviderAdapter, error) {
	if params.Geocoding == nil || params.Forecast == nil {
		return nil, errors.NewValidationError("geocoding and forecast clients are required")
	}
	if params.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	return &OpenMeteoProviderAdapter{
		geocoding: params.Geocoding,
		forecast:  params.Forecast,
		logger:    params.Logger,
		now:       time.Now,
	}, nil
}

// Geocode resolves a place name to its best match
func (p *OpenMeteoProviderAdapter) Geocode(ctx context.Context, place string) (*domain.Location, error) {
	place = strings.TrimSpace(place)
	if place == "" || place == domain.Unknown {
		return nil, errors.NewValidationError("place cannot be empty")
	}

	var resp openMeteoGeocodingResponse
	err := p.geocoding.GetJSON(ctx, transport.Request{
		Endpoint: "/search",
		Query: url.Values{
			"name":     {place},
			"count":    {"1"},
			"language": {"en"},
			"format":   {"json"},
		},
		Operation: OpWeatherGeocode,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.Results) == 0 {
		return nil, errors.NewNotFoundError(fmt.Sprintf("location %q not found", place))
	}

	r := resp.Results[0]
	return &domain.Location{
		Name:      r.Name,
		Country:   r.Country,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Timezone:  r.Timezone,
	}, nil
}

// Conditions reads current conditions and a daily forecast in one call
func (p *OpenMeteoProviderAdapter) Conditions(ctx context.Context, location domain.Location, forecastDays int) (*domain.WeatherSnapshot, error) {
	if forecastDays < 1 {
		forecastDays = 1
	}
	if forecastDays > maxForecastDays {
		forecastDays = maxForecastDays
	}
	timezone := location.Timezone
	if timezone == "" {
		timezone = "auto"
	}

	var resp openMeteoForecastResponse
	err := p.forecast.GetJSON(ctx, transport.Request{
		Endpoint: "/forecast",
		Query: url.Values{
			"latitude":      {strconv.FormatFloat(location.Latitude, 'f', 4, 64)},
			"longitude":     {strconv.FormatFloat(location.Longitude, 'f', 4, 64)},
			"current":       {openMeteoCurrentFields},
			"daily":         {openMeteoDailyFields},
			"timezone":      {timezone},
			"forecast_days": {strconv.Itoa(forecastDays)},
		},
		Operation: OpWeatherConditions,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Current == nil {
		return nil, errors.NewValidationError("forecast response has no current conditions")
	}

	c := resp.Current
	snapshot := &domain.WeatherSnapshot{
		Location: location,
		Current: domain.CurrentConditions{
			Time:                c.Time,
			Temperature:         c.Temperature,
			ApparentTemperature: c.ApparentTemperature,
			Humidity:            c.Humidity,
			WindSpeed:           c.WindSpeed,
			WindDirection:       c.WindDirection,
			Precipitation:       c.Precipitation,
			CloudCover:          c.CloudCover,
			Pressure:            c.Pressure,
			IsDay:               c.IsDay == 1,
			WeatherCode:         c.WeatherCode,
			Description:         WeatherDescription(c.WeatherCode),
		},
		Forecast:    []domain.DailyForecast{},
		RetrievedAt: p.now().UTC(),
	}
	if snapshot.Location.Timezone == "" {
		snapshot.Location.Timezone = resp.Timezone
	}

	if d := resp.Daily; d != nil {
		n := len(d.Time)
		if len(d.WeatherCode) != n || len(d.TemperatureMax) != n || len(d.TemperatureMin) != n || len(d.PrecipitationSum) != n {
			return nil, errors.NewValidationError("forecast daily series have mismatched lengths")
		}
		for i := 0; i < n; i++ {
			snapshot.Forecast = append(snapshot.Forecast, domain.DailyForecast{
				Date:             d.Time[i],
				TemperatureMax:   d.TemperatureMax[i],
				TemperatureMin:   d.TemperatureMin[i],
				PrecipitationSum: d.PrecipitationSum[i],
				WeatherCode:      d.WeatherCode[i],
				Description:      WeatherDescription(d.WeatherCode[i]),
			})
		}
	}

	return snapshot, nil
}
