package external

// DefaultRetryAttempts returns the built-in attempt counts per operation.
// Registry lookups keep the client default; secondary providers get one
// attempt so a slow section never stalls a profile.
func DefaultRetryAttempts() map[string]int {
	return map[string]int{
		OpEconomicsIndicator:  1,
		OpWeatherGeocode:      1,
		OpWeatherConditions:   1,
		OpNewsSearch:          1,
		OpNewsHeadlines:       1,
		OpExchangeLatest:      1,
		OpExchangePair:        1,
		OpExchangeCodes:       1,
		OpEncyclopediaSummary: 1,
	}
}
