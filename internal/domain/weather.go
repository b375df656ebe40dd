package domain

import "time"

// Location is a geocoded place
type Location struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

// CurrentConditions are the latest observed conditions at a location
type CurrentConditions struct {
	Time                string  `json:"time"`
	Temperature         float64 `json:"temperature"`
	ApparentTemperature float64 `json:"apparentTemperature"`
	Humidity            float64 `json:"humidity"`
	WindSpeed           float64 `json:"windSpeed"`
	WindDirection       float64 `json:"windDirection"`
	Precipitation       float64 `json:"precipitation"`
	CloudCover          float64 `json:"cloudCover"`
	Pressure            float64 `json:"pressure"`
	IsDay               bool    `json:"isDay"`
	WeatherCode         int     `json:"weatherCode"`
	Description         string  `json:"description"`
}

// DailyForecast is one day of forecast
type DailyForecast struct {
	Date             string  `json:"date"`
	TemperatureMax   float64 `json:"temperatureMax"`
	TemperatureMin   float64 `json:"temperatureMin"`
	PrecipitationSum float64 `json:"precipitationSum"`
	WeatherCode      int     `json:"weatherCode"`
	Description      string  `json:"description"`
}

// WeatherSnapshot is a time-boxed reading for one place
type WeatherSnapshot struct {
	Location    Location          `json:"location"`
	Current     CurrentConditions `json:"current"`
	Forecast    []DailyForecast   `json:"forecast"`
	RetrievedAt time.Time         `json:"retrievedAt"`
}
