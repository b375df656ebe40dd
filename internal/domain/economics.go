package domain

// Indicator names one economic series
type Indicator string

const (
	IndicatorGDP            Indicator = "gdp"
	IndicatorGDPGrowth      Indicator = "gdpGrowth"
	IndicatorGDPPerCapita   Indicator = "gdpPerCapita"
	IndicatorInflation      Indicator = "inflation"
	IndicatorUnemployment   Indicator = "unemployment"
	IndicatorLifeExpectancy Indicator = "lifeExpectancy"
	IndicatorLiteracy       Indicator = "literacyRate"
)

// Indicators lists every series fetched for an economics set, in display order
var Indicators = []Indicator{
	IndicatorGDP,
	IndicatorGDPGrowth,
	IndicatorGDPPerCapita,
	IndicatorInflation,
	IndicatorUnemployment,
	IndicatorLifeExpectancy,
	IndicatorLiteracy,
}

// IndicatorValue is the latest reported observation of one series.
// Value is nil when the provider has no observation in range.
type IndicatorValue struct {
	Value *float64 `json:"value"`
	Year  string   `json:"year"`
	Label string   `json:"label"`
	Code  string   `json:"code"`
}

// EconomicIndicatorSet maps each indicator to its value. A nil entry means
// the indicator could not be fetched; it never invalidates the others.
type EconomicIndicatorSet struct {
	CountryCode string                        `json:"countryCode"`
	Indicators  map[Indicator]*IndicatorValue `json:"indicators"`
}

// Get returns the value for an indicator, if any
func (s *EconomicIndicatorSet) Get(indicator Indicator) (*IndicatorValue, bool) {
	if s == nil || s.Indicators == nil {
		return nil, false
	}
	v, ok := s.Indicators[indicator]
	return v, ok && v != nil
}

// Available counts indicators that carry a value
func (s *EconomicIndicatorSet) Available() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, v := range s.Indicators {
		if v != nil && v.Value != nil {
			n++
		}
	}
	return n
}
