// Package domain holds the canonical, provider-agnostic entities every
// upstream response is normalized into.
package domain

// Unknown marks a textual field the provider did not supply.
const Unknown = "N/A"

// Currency is one legal tender of a country
type Currency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Coordinates is a latitude/longitude pair in decimal degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NativeName is a country name in one of its own languages
type NativeName struct {
	Common   string `json:"common"`
	Official string `json:"official"`
}

// Maps links to the country on public map services
type Maps struct {
	GoogleMaps    string `json:"googleMaps,omitempty"`
	OpenStreetMap string `json:"openStreetMaps,omitempty"`
}

// Country is the canonical country record. Nil pointers mean the value is
// unknown; empty slices mean the provider reported none.
type Country struct {
	Code         string                `json:"code"`
	Code3        string                `json:"code3"`
	Name         string                `json:"name"`
	OfficialName string                `json:"officialName"`
	NativeNames  map[string]NativeName `json:"nativeNames"`

	Capital            string       `json:"capital"`
	Region             string       `json:"region"`
	Subregion          string       `json:"subregion"`
	Area               *float64     `json:"area"`
	Landlocked         *bool        `json:"landlocked"`
	Borders            []string     `json:"borders"`
	Coordinates        *Coordinates `json:"coordinates"`
	CapitalCoordinates *Coordinates `json:"capitalCoordinates"`

	Population *int64     `json:"population"`
	Languages  []string   `json:"languages"`
	Currencies []Currency `json:"currencies"`

	FlagURL       string `json:"flagUrl"`
	FlagEmoji     string `json:"flagEmoji"`
	CoatOfArmsURL string `json:"coatOfArmsUrl"`

	Timezones       []string `json:"timezones"`
	Continents      []string `json:"continents"`
	Independent     *bool    `json:"independent"`
	UNMember        *bool    `json:"unMember"`
	CallingCodes    []string `json:"callingCodes"`
	TopLevelDomains []string `json:"topLevelDomains"`
	Maps            Maps     `json:"maps"`

	Economics *EconomicIndicatorSet `json:"economics,omitempty"`
}

// HasCapital reports whether the provider named a capital city
func (c *Country) HasCapital() bool {
	return c.Capital != "" && c.Capital != Unknown
}

// PrimaryCurrency returns the first listed currency
func (c *Country) PrimaryCurrency() (Currency, bool) {
	if len(c.Currencies) == 0 {
		return Currency{}, false
	}
	return c.Currencies[0], true
}

// WithEconomics returns a copy of the country carrying the given indicators
func (c Country) WithEconomics(set *EconomicIndicatorSet) *Country {
	c.Economics = set
	return &c
}

// CountrySummary is the short form used for neighbour and search listings
type CountrySummary struct {
	Code    string `json:"code"`
	Code3   string `json:"code3"`
	Name    string `json:"name"`
	Capital string `json:"capital"`
	Region  string `json:"region"`
	FlagURL string `json:"flagUrl"`
}

// Summary reduces the country to its listing fields
func (c *Country) Summary() CountrySummary {
	return CountrySummary{
		Code:    c.Code,
		Code3:   c.Code3,
		Name:    c.Name,
		Capital: c.Capital,
		Region:  c.Region,
		FlagURL: c.FlagURL,
	}
}
