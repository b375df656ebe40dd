package validation

import (
	"regexp"
	"strings"
)

var (
	countryCodeRegex  = regexp.MustCompile(`^[A-Za-z]{2,3}$`)
	currencyCodeRegex = regexp.MustCompile(`^[A-Za-z]{3}$`)
)

// IsValidCountryCode accepts ISO 3166 alpha-2 and alpha-3 codes in any case
func IsValidCountryCode(code string) bool {
	return countryCodeRegex.MatchString(strings.TrimSpace(code))
}

// NormalizeCountryCode trims and upper-cases a country code
func NormalizeCountryCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidCurrencyCode accepts ISO 4217 style three letter codes
func IsValidCurrencyCode(code string) bool {
	return currencyCodeRegex.MatchString(strings.TrimSpace(code))
}

// NormalizeQuery trims and lower-cases free text so equal searches share a cache key
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// IsNotEmpty checks if string is not empty after trimming
func IsNotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

// TrimAndValidate trims string and validates it's not empty
func TrimAndValidate(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	return trimmed, trimmed != ""
}
