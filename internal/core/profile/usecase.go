// Package profile assembles the aggregated country profile. The registry
// record is mandatory; every other section is fetched concurrently and
// degrades on its own.
package profile

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"geosynth.app/internal/domain"
	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
)

// Section names used in logs and metrics
const (
	SectionEconomics    = "economics"
	SectionWeather      = "weather"
	SectionNews         = "news"
	SectionExchange     = "exchange"
	SectionEncyclopedia = "encyclopedia"
	SectionNeighbours   = "neighbours"
)

type CountryRepository interface {
	GetCountry(ctx context.Context, code string) (*domain.Country, error)
	GetCountryEconomics(ctx context.Context, code string) (*domain.EconomicIndicatorSet, error)
	GetNeighbours(ctx context.Context, code string) ([]domain.CountrySummary, error)
	Invalidate(ctx context.Context, code string) error
	ClearAll(ctx context.Context) (int, error)
}

type WeatherRepository interface {
	GetForCity(ctx context.Context, city, countryCode string) (*domain.WeatherSnapshot, error)
	ClearAll(ctx context.Context) (int, error)
}

type NewsRepository interface {
	Search(ctx context.Context, query string, limit int) (*domain.NewsDigest, error)
	ClearAll(ctx context.Context) (int, error)
}

type ExchangeRepository interface {
	Latest(ctx context.Context, base string) (*domain.ExchangeSnapshot, error)
	ClearAll(ctx context.Context) (int, error)
}

type EncyclopediaRepository interface {
	Summary(ctx context.Context, title string) (*domain.EncyclopediaSummary, error)
	ClearAll(ctx context.Context) (int, error)
}

type UseCase struct {
	countries    CountryRepository
	weather      WeatherRepository
	news         NewsRepository
	exchange     ExchangeRepository
	encyclopedia EncyclopediaRepository
	config       ports.ConfigProvider
	logger       ports.Logger
	metrics      ports.MetricsCollector
	tracer       trace.Tracer
	now          func() time.Time
}

// UseCaseDependencies holds the repositories behind each section. Optional
// repositories may be nil; their sections are then not applicable.
type UseCaseDependencies struct {
	Countries    CountryRepository
	Weather      WeatherRepository
	News         NewsRepository
	Exchange     ExchangeRepository
	Encyclopedia EncyclopediaRepository
	Config       ports.ConfigProvider
	Logger       ports.Logger
	Metrics      ports.MetricsCollector
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.Countries == nil {
		return nil, errors.NewValidationError("country repository is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if deps.Metrics == nil {
		return nil, errors.NewValidationError("metrics is required")
	}

	return &UseCase{
		countries:    deps.Countries,
		weather:      deps.Weather,
		news:         deps.News,
		exchange:     deps.Exchange,
		encyclopedia: deps.Encyclopedia,
		config:       deps.Config,
		logger:       deps.Logger,
		metrics:      deps.Metrics,
		tracer:       otel.Tracer("geosynth.app/profile"),
		now:          time.Now,
	}, nil
}

// GetAggregatedProfile builds the profile of one country. A registry failure
// is returned unchanged and no partial profile is produced.
func (uc *UseCase) GetAggregatedProfile(ctx context.Context, code string) (*domain.AggregatedProfile, error) {
	ctx, span := uc.tracer.Start(ctx, "profile.GetAggregatedProfile", trace.WithAttributes(attribute.String("country.code", code)))
	defer span.End()

	start := time.Now()
	basic, err := uc.countries.GetCountry(ctx, code)
	if err != nil {
		uc.logger.Error("Profile aborted, country lookup failed",
			ports.F("code", code),
			ports.F("error_kind", errors.KindOf(err).String()),
			ports.F("error", err.Error()))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	profile := &domain.AggregatedProfile{Basic: basic}
	features := uc.config.GetProfileConfig()

	// Sibling fetches outlive the caller's cancellation; each is bounded by
	// its own transport timeout.
	fetchCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.Go(func() error {
		profile.Economics = uc.economicsSection(fetchCtx, basic, features.Features.Economics)
		return nil
	})
	g.Go(func() error {
		profile.Weather = uc.weatherSection(fetchCtx, basic, features.Features.Weather)
		return nil
	})
	g.Go(func() error {
		profile.News = uc.newsSection(fetchCtx, basic, features.Features.News, features.NewsPageSize)
		return nil
	})
	g.Go(func() error {
		profile.Exchange = uc.exchangeSection(fetchCtx, basic, features.Features.Exchange)
		return nil
	})
	g.Go(func() error {
		profile.Encyclopedia = uc.encyclopediaSection(fetchCtx, basic, features.Features.Encyclopedia)
		return nil
	})
	g.Go(func() error {
		profile.Neighbours = uc.neighboursSection(fetchCtx, basic)
		return nil
	})
	_ = g.Wait()

	profile.GeneratedAt = uc.now().UTC()

	statuses := profile.SectionStatuses()
	for section, status := range statuses {
		uc.metrics.RecordSection(ctx, section, string(status))
		span.SetAttributes(attribute.String("section."+section, string(status)))
	}
	uc.logger.Info("Profile assembled",
		ports.F("code", basic.Code),
		ports.F("sections", statuses),
		ports.F("duration_ms", time.Since(start).Milliseconds()))

	return profile, nil
}

// Invalidate drops the cached entries of one country
func (uc *UseCase) Invalidate(ctx context.Context, code string) error {
	return uc.countries.Invalidate(ctx, code)
}

// ClearAll empties every repository's entries and reports the removed count
func (uc *UseCase) ClearAll(ctx context.Context) (int, error) {
	clearers := []interface {
		ClearAll(ctx context.Context) (int, error)
	}{uc.countries}
	if uc.weather != nil {
		clearers = append(clearers, uc.weather)
	}
	if uc.news != nil {
		clearers = append(clearers, uc.news)
	}
	if uc.exchange != nil {
		clearers = append(clearers, uc.exchange)
	}
	if uc.encyclopedia != nil {
		clearers = append(clearers, uc.encyclopedia)
	}

	total := 0
	var firstErr error
	for _, c := range clearers {
		n, err := c.ClearAll(ctx)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		total += n
	}

	uc.logger.Info("Cache cleared", ports.F("removed", total))
	return total, firstErr
}

func (uc *UseCase) economicsSection(ctx context.Context, basic *domain.Country, enabled bool) domain.Section[domain.EconomicIndicatorSet] {
	if !enabled {
		return domain.NotApplicable[domain.EconomicIndicatorSet]("economics disabled")
	}
	if basic.Economics != nil {
		return domain.Available(basic.Economics)
	}
	return fetchSection(ctx, uc, SectionEconomics, func(ctx context.Context) (*domain.EconomicIndicatorSet, error) {
		return uc.countries.GetCountryEconomics(ctx, basic.Code)
	})
}

func (uc *UseCase) weatherSection(ctx context.Context, basic *domain.Country, enabled bool) domain.Section[domain.WeatherSnapshot] {
	switch {
	case !enabled || uc.weather == nil:
		return domain.NotApplicable[domain.WeatherSnapshot]("weather disabled")
	case !basic.HasCapital():
		return domain.NotApplicable[domain.WeatherSnapshot]("country has no capital")
	}
	return fetchSection(ctx, uc, SectionWeather, func(ctx context.Context) (*domain.WeatherSnapshot, error) {
		return uc.weather.GetForCity(ctx, basic.Capital, basic.Code)
	})
}

func (uc *UseCase) newsSection(ctx context.Context, basic *domain.Country, enabled bool, pageSize int) domain.Section[domain.NewsDigest] {
	if !enabled || uc.news == nil {
		return domain.NotApplicable[domain.NewsDigest]("news disabled")
	}
	return fetchSection(ctx, uc, SectionNews, func(ctx context.Context) (*domain.NewsDigest, error) {
		return uc.news.Search(ctx, basic.Name, pageSize)
	})
}

func (uc *UseCase) exchangeSection(ctx context.Context, basic *domain.Country, enabled bool) domain.Section[domain.ExchangeSnapshot] {
	if !enabled || uc.exchange == nil {
		return domain.NotApplicable[domain.ExchangeSnapshot]("exchange disabled")
	}
	currency, ok := basic.PrimaryCurrency()
	if !ok {
		return domain.NotApplicable[domain.ExchangeSnapshot]("country has no currency")
	}
	return fetchSection(ctx, uc, SectionExchange, func(ctx context.Context) (*domain.ExchangeSnapshot, error) {
		return uc.exchange.Latest(ctx, currency.Code)
	})
}

func (uc *UseCase) encyclopediaSection(ctx context.Context, basic *domain.Country, enabled bool) domain.Section[domain.EncyclopediaSummary] {
	if !enabled || uc.encyclopedia == nil {
		return domain.NotApplicable[domain.EncyclopediaSummary]("encyclopedia disabled")
	}
	return fetchSection(ctx, uc, SectionEncyclopedia, func(ctx context.Context) (*domain.EncyclopediaSummary, error) {
		return uc.encyclopedia.Summary(ctx, basic.Name)
	})
}

func (uc *UseCase) neighboursSection(ctx context.Context, basic *domain.Country) domain.Section[[]domain.CountrySummary] {
	if len(basic.Borders) == 0 {
		return domain.NotApplicable[[]domain.CountrySummary]("country has no land borders")
	}
	return fetchSection(ctx, uc, SectionNeighbours, func(ctx context.Context) (*[]domain.CountrySummary, error) {
		neighbours, err := uc.countries.GetNeighbours(ctx, basic.Code)
		if err != nil {
			return nil, err
		}
		return &neighbours, nil
	})
}

// fetchSection runs one optional fetch and turns its failure into an
// unavailable section
func fetchSection[T any](ctx context.Context, uc *UseCase, name string, fetch func(context.Context) (*T, error)) domain.Section[T] {
	ctx, span := uc.tracer.Start(ctx, "profile.section."+name)
	defer span.End()

	v, err := fetch(ctx)
	if err != nil {
		uc.logger.Warn("Profile section unavailable",
			ports.F("section", name),
			ports.F("error_kind", errors.KindOf(err).String()),
			ports.F("error", err.Error()))
		span.RecordError(err)
		return domain.Unavailable[T](err)
	}
	if v == nil {
		return domain.Unavailable[T](errors.NewValidationError(name + " provider returned no data"))
	}
	return domain.Available(v)
}
