package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"geosynth.app/internal/adapters/transport"
	"geosynth.app/internal/domain"
	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
	"geosynth.app/pkg/validation"
)

const (
	OpExchangeLatest = "exchange.latest"
	OpExchangePair   = "exchange.pair"
	OpExchangeCodes  = "exchange.codes"

	exchangeRateTimeLayout = time.RFC1123Z
)

// ExchangeRateProviderAdapter implements ExchangeProvider for ExchangeRate-API v6.
// The key is part of every path.
type ExchangeRateProviderAdapter struct {
	client HTTPTransport
	logger ports.Logger
	apiKey string
}

// ExchangeRateProviderParams holds parameters for creating the exchange adapter
type ExchangeRateProviderParams struct {
	Client HTTPTransport
	Logger ports.Logger
	APIKey string
}

type exchangeRateEnvelope struct {
	Result            string             `json:"result"`
	ErrorType         string             `json:"error-type"`
	BaseCode          string             `json:"base_code"`
	TargetCode        string             `json:"target_code"`
	TimeLastUpdateUTC string             `json:"time_last_update_utc"`
	TimeNextUpdateUTC string             `json:"time_next_update_utc"`
	ConversionRates   map[string]float64 `json:"conversion_rates"`
	ConversionRate    *float64           `json:"conversion_rate"`
	ConversionResult  *float64           `json:"conversion_result"`
	SupportedCodes    [][]string         `json:"supported_codes"`
}

// NewExchangeRateProviderAdapter creates the exchange adapter
func NewExchangeRateProviderAdapter(params ExchangeRateProviderParams) (*ExchangeRateProviderAdapter, error) {
	if params.Client == nil {
		return nil, errors.NewValidationError("transport client is required")
	}
	if params.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if strings.TrimSpace(params.APIKey) == "" {
		return nil, errors.NewConfigurationError("exchange rate API key is required", nil)
	}
	return &ExchangeRateProviderAdapter{client: params.Client, logger: params.Logger, apiKey: params.APIKey}, nil
}

// Latest returns every rate quoted from the base currency
func (p *ExchangeRateProviderAdapter) Latest(ctx context.Context, base string) (*domain.ExchangeSnapshot, error) {
	if !validation.IsValidCurrencyCode(base) {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid currency code %q", base))
	}
	base = strings.ToUpper(base)

	var env exchangeRateEnvelope
	if err := p.client.GetJSON(ctx, transport.Request{
		Endpoint:  p.path("latest", base),
		Operation: OpExchangeLatest,
	}, &env); err != nil {
		return nil, err
	}
	if err := env.check(p.path("latest", base)); err != nil {
		return nil, err
	}
	if len(env.ConversionRates) == 0 {
		return nil, errors.NewValidationError("exchange response has no conversion rates")
	}

	snapshot := &domain.ExchangeSnapshot{
		Base:        firstNonEmpty(env.BaseCode, base),
		Rates:       env.ConversionRates,
		RetrievedAt: parseExchangeTime(env.TimeLastUpdateUTC),
	}
	if next := parseExchangeTime(env.TimeNextUpdateUTC); !next.IsZero() {
		snapshot.NextUpdate = &next
	}
	return snapshot, nil
}

// Convert converts an amount using the pair endpoint
func (p *ExchangeRateProviderAdapter) Convert(ctx context.Context, from, to string, amount float64) (*domain.Conversion, error) {
	if !validation.IsValidCurrencyCode(from) || !validation.IsValidCurrencyCode(to) {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid currency pair %q/%q", from, to))
	}
	if amount < 0 {
		return nil, errors.NewValidationError("amount cannot be negative")
	}
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	amt := strconv.FormatFloat(amount, 'f', -1, 64)

	var env exchangeRateEnvelope
	endpoint := p.path("pair", from, to, amt)
	if err := p.client.GetJSON(ctx, transport.Request{
		Endpoint:  endpoint,
		Operation: OpExchangePair,
	}, &env); err != nil {
		return nil, err
	}
	if err := env.check(endpoint); err != nil {
		return nil, err
	}
	if env.ConversionRate == nil {
		return nil, errors.NewValidationError("exchange response has no conversion rate")
	}

	result := amount * *env.ConversionRate
	if env.ConversionResult != nil {
		result = *env.ConversionResult
	}
	return &domain.Conversion{
		From:        from,
		To:          to,
		Amount:      amount,
		Rate:        *env.ConversionRate,
		Result:      result,
		RetrievedAt: parseExchangeTime(env.TimeLastUpdateUTC),
	}, nil
}

// SupportedCurrencies lists the currency codes the provider quotes, sorted by code
func (p *ExchangeRateProviderAdapter) SupportedCurrencies(ctx context.Context) ([]domain.CurrencyInfo, error) {
	var env exchangeRateEnvelope
	endpoint := p.path("codes")
	if err := p.client.GetJSON(ctx, transport.Request{
		Endpoint:  endpoint,
		Operation: OpExchangeCodes,
	}, &env); err != nil {
		return nil, err
	}
	if err := env.check(endpoint); err != nil {
		return nil, err
	}

	currencies := make([]domain.CurrencyInfo, 0, len(env.SupportedCodes))
	for _, pair := range env.SupportedCodes {
		if len(pair) != 2 {
			return nil, errors.NewValidationError("malformed supported currency entry")
		}
		currencies = append(currencies, domain.CurrencyInfo{Code: pair[0], Name: pair[1]})
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i].Code < currencies[j].Code })
	return currencies, nil
}

func (p *ExchangeRateProviderAdapter) path(parts ...string) string {
	escaped := make([]string, 0, len(parts)+1)
	escaped = append(escaped, url.PathEscape(p.apiKey))
	for _, part := range parts {
		escaped = append(escaped, url.PathEscape(part))
	}
	return "/" + strings.Join(escaped, "/")
}

func (e *exchangeRateEnvelope) check(endpoint string) error {
	if e.Result == "success" {
		return nil
	}
	message := e.ErrorType
	if message == "" {
		message = fmt.Sprintf("unexpected result %q", e.Result)
	}
	return errors.NewAPIError(http.StatusOK, endpoint, message, nil)
}

// ExchangeRateResultInterceptor turns a 2xx body reporting result "error"
// into an API error before it reaches the adapter
func ExchangeRateResultInterceptor() transport.ResponseInterceptor {
	return func(resp *transport.Response) error {
		var probe struct {
			Result    string `json:"result"`
			ErrorType string `json:"error-type"`
		}
		if err := json.Unmarshal(resp.Body, &probe); err != nil {
			return nil
		}
		if probe.Result != "error" {
			return nil
		}
		status := http.StatusBadRequest
		switch probe.ErrorType {
		case "invalid-key", "inactive-account":
			status = http.StatusUnauthorized
		case "quota-reached":
			status = http.StatusTooManyRequests
		}
		return errors.NewAPIError(status, resp.Endpoint, probe.ErrorType, nil)
	}
}

func parseExchangeTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(exchangeRateTimeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
