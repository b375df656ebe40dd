package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"

	"geosynth.app/internal/adapters/transport"
	"geosynth.app/internal/domain"
	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
	"geosynth.app/pkg/validation"
)

// OpEconomicsIndicator names one indicator fetch
const OpEconomicsIndicator = "economics.indicator"

// worldBankSeries maps each indicator onto its World Bank series id
var worldBankSeries = map[domain.Indicator]string{
	domain.IndicatorGDP:            "NY.GDP.MKTP.CD",
	domain.IndicatorGDPGrowth:      "NY.GDP.MKTP.KD.ZG",
	domain.IndicatorGDPPerCapita:   "NY.GDP.PCAP.CD",
	domain.IndicatorInflation:      "FP.CPI.TOTL.ZG",
	domain.IndicatorUnemployment:   "SL.UEM.TOTL.ZS",
	domain.IndicatorLifeExpectancy: "SP.DYN.LE00.IN",
	domain.IndicatorLiteracy:       "SE.ADT.LITR.ZS",
}

// WorldBankProviderAdapter implements EconomicsProvider for the World Bank
// indicators API
type WorldBankProviderAdapter struct {
	client    HTTPTransport
	logger    ports.Logger
	dateRange string
}

// WorldBankProviderParams holds parameters for creating the economics adapter
type WorldBankProviderParams struct {
	Client    HTTPTransport
	Logger    ports.Logger
	DateRange string
}

type worldBankObservation struct {
	Indicator struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"indicator"`
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// NewWorldBankProviderAdapter creates the economics adapter
func NewWorldBankProviderAdapter(params WorldBankProviderParams) (*WorldBankProviderAdapter, error) {
	if params.Client == nil {
		return nil, errors.NewValidationError("transport client is required")
	}
	if params.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	dateRange := params.DateRange
	if dateRange == "" {
		dateRange = "2020:2023"
	}
	return &WorldBankProviderAdapter{client: params.Client, logger: params.Logger, dateRange: dateRange}, nil
}

// Indicator fetches the most recent non-null observation of one series. A
// series with no observation in range yields a nil Value and an unknown year.
func (p *WorldBankProviderAdapter) Indicator(ctx context.Context, countryCode string, indicator domain.Indicator) (*domain.IndicatorValue, error) {
	if !validation.IsValidCountryCode(countryCode) {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid country code %q", countryCode))
	}
	series, ok := worldBankSeries[indicator]
	if !ok {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown indicator %q", indicator))
	}

	resp, err := p.client.RequestWithRetry(ctx, transport.Request{
		Endpoint: fmt.Sprintf("/country/%s/indicator/%s",
			url.PathEscape(validation.NormalizeCountryCode(countryCode)), series),
		Query: url.Values{
			"format":   {"json"},
			"date":     {p.dateRange},
			"per_page": {"5"},
		},
		Operation: OpEconomicsIndicator,
	})
	if err != nil {
		return nil, err
	}

	// The payload is [paging, observations]; an error payload is [{"message": ...}].
	var envelope []json.RawMessage
	if err := resp.DecodeJSON(&envelope); err != nil {
		return nil, err
	}

	value := &domain.IndicatorValue{Code: series}
	if len(envelope) < 2 {
		return nil, errors.NewValidationError(fmt.Sprintf("unexpected indicator payload for %s", series))
	}

	var observations []worldBankObservation
	if err := json.Unmarshal(envelope[1], &observations); err != nil {
		return nil, errors.Wrap(errors.ValidationError, fmt.Sprintf("unexpected observations for %s", series), err)
	}

	for _, obs := range observations {
		if value.Label == "" {
			value.Label = obs.Indicator.Value
		}
		if obs.Value != nil {
			v := *obs.Value
			value.Value = &v
			value.Year = obs.Date
			value.Label = obs.Indicator.Value
			break
		}
	}
	value.Year = orUnknown(value.Year)
	value.Label = orUnknown(value.Label)

	return value, nil
}

// Indicators fetches every series concurrently. A failed series becomes a
// nil entry and never fails the set.
func (p *WorldBankProviderAdapter) Indicators(ctx context.Context, countryCode string) (*domain.EconomicIndicatorSet, error) {
	if !validation.IsValidCountryCode(countryCode) {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid country code %q", countryCode))
	}
	code := validation.NormalizeCountryCode(countryCode)

	set := &domain.EconomicIndicatorSet{
		CountryCode: code,
		Indicators:  make(map[domain.Indicator]*domain.IndicatorValue, len(domain.Indicators)),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, indicator := range domain.Indicators {
		indicator := indicator
		g.Go(func() error {
			value, err := p.Indicator(gctx, code, indicator)
			if err != nil {
				p.logger.Warn("Economic indicator unavailable",
					ports.F("country", code),
					ports.F("indicator", string(indicator)),
					ports.F("error_kind", errors.KindOf(err).String()),
					ports.F("error", err.Error()))
				value = nil
			}
			mu.Lock()
			set.Indicators[indicator] = value
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return set, nil
}
