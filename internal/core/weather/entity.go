package weather

import (
	"fmt"
	"strings"

	"geosynth.app/internal/domain"
)

// Request identifies the place to read weather for
type Request struct {
	City        string
	CountryCode string
}

// IsValid validates the weather request
func (r *Request) IsValid() error {
	city := strings.TrimSpace(r.City)
	if city == "" || city == domain.Unknown {
		return fmt.Errorf("city cannot be empty")
	}
	return nil
}

// Normalize trims the city and upper-cases the country code for consistent keys
func (r *Request) Normalize() {
	r.City = strings.Join(strings.Fields(r.City), " ")
	r.CountryCode = strings.ToUpper(strings.TrimSpace(r.CountryCode))
}

// cacheArgument is the key argument shared by equal requests
func (r *Request) cacheArgument() string {
	return strings.ToLower(r.City) + "|" + r.CountryCode
}

// validateSnapshot rejects readings no real station produces
func validateSnapshot(s *domain.WeatherSnapshot) error {
	if s.Current.Temperature < -273.15 {
		return fmt.Errorf("temperature cannot be below absolute zero")
	}
	if s.Current.Humidity < 0 || s.Current.Humidity > 100 {
		return fmt.Errorf("humidity must be between 0 and 100")
	}
	return nil
}
