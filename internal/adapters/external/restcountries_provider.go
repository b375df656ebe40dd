package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"geosynth.app/internal/adapters/transport"
	"geosynth.app/internal/domain"
	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
	"geosynth.app/pkg/validation"
)

// Registry operation names, used for retry policies and metrics
const (
	OpRegistryByCode   = "registry.byCode"
	OpRegistryByCodes  = "registry.byCodes"
	OpRegistryByName   = "registry.byName"
	OpRegistryByRegion = "registry.byRegion"
	OpRegistryAll      = "registry.all"
)

// restCountriesAllFields keeps the /all payload small; the endpoint rejects
// requests without a field list
const restCountriesAllFields = "name,cca2,cca3,capital,region,subregion,population,flags,latlng,area,currencies,languages"

// RestCountriesProviderAdapter implements CountryRegistry for restcountries.com v3.1
type RestCountriesProviderAdapter struct {
	client HTTPTransport
	logger ports.Logger
}

// RestCountriesProviderParams holds parameters for creating the registry adapter
type RestCountriesProviderParams struct {
	Client HTTPTransport
	Logger ports.Logger
}

type restCountry struct {
	Name struct {
		Common     string                     `json:"common"`
		Official   string                     `json:"official"`
		NativeName map[string]json.RawMessage `json:"nativeName"`
	} `json:"name"`
	CCA2       string        `json:"cca2"`
	CCA3       string        `json:"cca3"`
	Capital    []string      `json:"capital"`
	Region     string        `json:"region"`
	Subregion  string        `json:"subregion"`
	Area       *float64      `json:"area"`
	Landlocked *bool         `json:"landlocked"`
	Borders    []string      `json:"borders"`
	LatLng     []float64     `json:"latlng"`
	Population *int64        `json:"population"`
	Languages  orderedObject `json:"languages"`
	Currencies orderedObject `json:"currencies"`
	Flag       string        `json:"flag"`
	Flags      struct {
		SVG string `json:"svg"`
		PNG string `json:"png"`
	} `json:"flags"`
	CoatOfArms struct {
		SVG string `json:"svg"`
		PNG string `json:"png"`
	} `json:"coatOfArms"`
	Timezones   []string `json:"timezones"`
	Continents  []string `json:"continents"`
	TLD         []string `json:"tld"`
	Independent *bool    `json:"independent"`
	UNMember    *bool    `json:"unMember"`
	IDD         *struct {
		Root     string   `json:"root"`
		Suffixes []string `json:"suffixes"`
	} `json:"idd"`
	Maps struct {
		GoogleMaps     string `json:"googleMaps"`
		OpenStreetMaps string `json:"openStreetMaps"`
	} `json:"maps"`
	CapitalInfo struct {
		LatLng []float64 `json:"latlng"`
	} `json:"capitalInfo"`
}

type restCurrency struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// NewRestCountriesProviderAdapter creates the registry adapter
func NewRestCountriesProviderAdapter(params RestCountriesProviderParams) (*RestCountriesProviderAdapter, error) {
	if params.Client == nil {
		return nil, errors.NewValidationError("transport client is required")
	}
	if params.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	return &RestCountriesProviderAdapter{client: params.Client, logger: params.Logger}, nil
}

// ByCode looks up a single country by ISO alpha-2 or alpha-3 code
func (p *RestCountriesProviderAdapter) ByCode(ctx context.Context, code string) (*domain.Country, error) {
	if !validation.IsValidCountryCode(code) {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid country code %q", code))
	}
	code = validation.NormalizeCountryCode(code)

	resp, err := p.client.RequestWithRetry(ctx, transport.Request{
		Endpoint:  "/alpha/" + url.PathEscape(code),
		Operation: OpRegistryByCode,
	})
	if err != nil {
		if errors.StatusCode(err) == http.StatusNotFound {
			return nil, errors.NewNotFoundError(fmt.Sprintf("country %s not found", code))
		}
		return nil, err
	}

	countries, err := decodeRestCountries(resp)
	if err != nil {
		return nil, err
	}
	if len(countries) == 0 {
		return nil, errors.NewNotFoundError(fmt.Sprintf("country %s not found", code))
	}
	return &countries[0], nil
}

// ByCodes looks up several countries in one call; unknown codes are skipped
func (p *RestCountriesProviderAdapter) ByCodes(ctx context.Context, codes []string) ([]domain.Country, error) {
	valid := make([]string, 0, len(codes))
	for _, c := range codes {
		if validation.IsValidCountryCode(c) {
			valid = append(valid, validation.NormalizeCountryCode(c))
		}
	}
	if len(valid) == 0 {
		return []domain.Country{}, nil
	}

	resp, err := p.client.RequestWithRetry(ctx, transport.Request{
		Endpoint:  "/alpha",
		Query:     url.Values{"codes": {strings.Join(valid, ",")}},
		Operation: OpRegistryByCodes,
	})
	if err != nil {
		if errors.StatusCode(err) == http.StatusNotFound {
			return []domain.Country{}, nil
		}
		return nil, err
	}
	return decodeRestCountries(resp)
}

// ByName searches by common or official name. No match is an empty result.
func (p *RestCountriesProviderAdapter) ByName(ctx context.Context, name string) ([]domain.Country, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("search name cannot be empty")
	}

	resp, err := p.client.RequestWithRetry(ctx, transport.Request{
		Endpoint:  "/name/" + url.PathEscape(name),
		Operation: OpRegistryByName,
	})
	if err != nil {
		if errors.StatusCode(err) == http.StatusNotFound {
			return []domain.Country{}, nil
		}
		return nil, err
	}
	return decodeRestCountries(resp)
}

// ByRegion lists the countries of a region such as "europe"
func (p *RestCountriesProviderAdapter) ByRegion(ctx context.Context, region string) ([]domain.Country, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return nil, errors.NewValidationError("region cannot be empty")
	}

	resp, err := p.client.RequestWithRetry(ctx, transport.Request{
		Endpoint:  "/region/" + url.PathEscape(strings.ToLower(region)),
		Operation: OpRegistryByRegion,
	})
	if err != nil {
		if errors.StatusCode(err) == http.StatusNotFound {
			return []domain.Country{}, nil
		}
		return nil, err
	}
	return decodeRestCountries(resp)
}

// All lists every country with a reduced field set
func (p *RestCountriesProviderAdapter) All(ctx context.Context) ([]domain.Country, error) {
	resp, err := p.client.RequestWithRetry(ctx, transport.Request{
		Endpoint:  "/all",
		Query:     url.Values{"fields": {restCountriesAllFields}},
		Operation: OpRegistryAll,
	})
	if err != nil {
		return nil, err
	}
	return decodeRestCountries(resp)
}

// decodeRestCountries accepts either a list or a single object
func decodeRestCountries(resp *transport.Response) ([]domain.Country, error) {
	body := strings.TrimSpace(string(resp.Body))

	var raw []restCountry
	if strings.HasPrefix(body, "{") {
		var single restCountry
		if err := resp.DecodeJSON(&single); err != nil {
			return nil, err
		}
		raw = []restCountry{single}
	} else if err := resp.DecodeJSON(&raw); err != nil {
		return nil, err
	}

	countries := make([]domain.Country, 0, len(raw))
	for i := range raw {
		country, err := normalizeRestCountry(&raw[i])
		if err != nil {
			return nil, errors.Wrap(errors.ValidationError,
				fmt.Sprintf("unexpected country record from %s", resp.Endpoint), err)
		}
		countries = append(countries, *country)
	}
	return countries, nil
}

func normalizeRestCountry(rc *restCountry) (*domain.Country, error) {
	if rc.CCA2 == "" || rc.Name.Common == "" {
		return nil, errors.NewValidationError("country record lacks code or name")
	}

	country := &domain.Country{
		Code:            rc.CCA2,
		Code3:           orUnknown(rc.CCA3),
		Name:            rc.Name.Common,
		OfficialName:    orUnknown(rc.Name.Official),
		NativeNames:     map[string]domain.NativeName{},
		Capital:         domain.Unknown,
		Region:          orUnknown(rc.Region),
		Subregion:       orUnknown(rc.Subregion),
		Area:            rc.Area,
		Landlocked:      rc.Landlocked,
		Borders:         nonNil(rc.Borders),
		Population:      rc.Population,
		Languages:       []string{},
		Currencies:      []domain.Currency{},
		FlagURL:         orUnknown(firstNonEmpty(rc.Flags.SVG, rc.Flags.PNG)),
		FlagEmoji:       rc.Flag,
		CoatOfArmsURL:   orUnknown(firstNonEmpty(rc.CoatOfArms.SVG, rc.CoatOfArms.PNG)),
		Timezones:       nonNil(rc.Timezones),
		Continents:      nonNil(rc.Continents),
		Independent:     rc.Independent,
		UNMember:        rc.UNMember,
		CallingCodes:    []string{},
		TopLevelDomains: nonNil(rc.TLD),
		Maps: domain.Maps{
			GoogleMaps:    orUnknown(rc.Maps.GoogleMaps),
			OpenStreetMap: orUnknown(rc.Maps.OpenStreetMaps),
		},
	}

	if len(rc.Capital) > 0 && rc.Capital[0] != "" {
		country.Capital = rc.Capital[0]
	}
	if len(rc.LatLng) == 2 {
		country.Coordinates = &domain.Coordinates{Latitude: rc.LatLng[0], Longitude: rc.LatLng[1]}
	}
	if len(rc.CapitalInfo.LatLng) == 2 {
		country.CapitalCoordinates = &domain.Coordinates{Latitude: rc.CapitalInfo.LatLng[0], Longitude: rc.CapitalInfo.LatLng[1]}
	}

	for lang, raw := range rc.Name.NativeName {
		var n domain.NativeName
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		country.NativeNames[lang] = n
	}

	for _, member := range rc.Languages {
		var name string
		if err := json.Unmarshal(member.Value, &name); err != nil {
			return nil, err
		}
		country.Languages = append(country.Languages, name)
	}

	for _, member := range rc.Currencies {
		var cur restCurrency
		if err := json.Unmarshal(member.Value, &cur); err != nil {
			return nil, err
		}
		country.Currencies = append(country.Currencies, domain.Currency{
			Code:   member.Key,
			Name:   cur.Name,
			Symbol: cur.Symbol,
		})
	}

	if rc.IDD != nil && rc.IDD.Root != "" {
		if len(rc.IDD.Suffixes) == 0 {
			country.CallingCodes = append(country.CallingCodes, rc.IDD.Root)
		}
		for _, suffix := range rc.IDD.Suffixes {
			country.CallingCodes = append(country.CallingCodes, rc.IDD.Root+suffix)
		}
	}

	return country, nil
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return domain.Unknown
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
