package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"geosynth.app/pkg/errors"
)

const (
	maxRedisDB       = 15
	maxPortNumber    = 65535
	maxRetryAttempts = 10
	maxCacheEntries  = 100000
	maxNewsPageSize  = 100
	maxForecastDays  = 16
)

// Config represents the application configuration structure
type Config struct {
	Server    ServerConfig    `split_words:"true"`
	Log       LogConfig       `split_words:"true"`
	Transport TransportConfig `split_words:"true"`
	Cache     CacheConfig     `split_words:"true"`
	Providers ProvidersConfig `split_words:"true"`
	Features  FeaturesConfig  `split_words:"true"`
}

type ServerConfig struct {
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

type LogConfig struct {
	Environment   string `envconfig:"APP_ENV" default:"development"`
	Level         string `envconfig:"LOG_LEVEL" default:"info"`
	Format        string `envconfig:"LOG_FORMAT" default:"json"`
	FilePath      string `envconfig:"LOG_FILE_PATH"`
	ProviderCalls bool   `envconfig:"LOG_PROVIDER_CALLS" default:"true"`
}

// IsDevelopment reports whether debug detail should be emitted
func (l LogConfig) IsDevelopment() bool {
	return strings.EqualFold(l.Environment, "development")
}

type TransportConfig struct {
	Timeout        time.Duration  `envconfig:"HTTP_TIMEOUT" default:"30s"`
	UserAgent      string         `envconfig:"HTTP_USER_AGENT" default:"geosynth/1.0"`
	RetryAttempts  int            `envconfig:"HTTP_RETRY_ATTEMPTS" default:"3"`
	RetryBaseDelay time.Duration  `envconfig:"HTTP_RETRY_BASE_DELAY" default:"1s"`
	RetryMaxDelay  time.Duration  `envconfig:"HTTP_RETRY_MAX_DELAY" default:"10s"`
	RetryPolicies  map[string]int `envconfig:"HTTP_RETRY_POLICIES"`
	RateLimitRPS   float64        `envconfig:"HTTP_RATE_LIMIT_RPS" default:"0"`
	RateLimitBurst int            `envconfig:"HTTP_RATE_LIMIT_BURST" default:"5"`
}

// CacheType represents the type of cache to use
type CacheType int

const (
	CacheTypeUnknown CacheType = iota
	CacheTypeMemory
	CacheTypeRedis
)

// String returns the string representation of cache type
func (c CacheType) String() string {
	switch c {
	case CacheTypeMemory:
		return "memory"
	case CacheTypeRedis:
		return "redis"
	default:
		return "unknown"
	}
}

// IsValid checks if the cache type is valid
func (c CacheType) IsValid() bool {
	return c == CacheTypeMemory || c == CacheTypeRedis
}

// CacheTypeFromString converts string to CacheType enum
func CacheTypeFromString(s string) CacheType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "memory":
		return CacheTypeMemory
	case "redis":
		return CacheTypeRedis
	default:
		return CacheTypeUnknown
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for envconfig
func (c *CacheType) UnmarshalText(text []byte) error {
	*c = CacheTypeFromString(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler for envconfig
func (c CacheType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type CacheConfig struct {
	Type         CacheType     `envconfig:"CACHE_TYPE" default:"memory"`
	DefaultTTL   time.Duration `envconfig:"CACHE_DEFAULT_TTL" default:"1h"`
	MaxSize      int           `envconfig:"CACHE_MAX_SIZE" default:"100"`
	SingleFlight bool          `envconfig:"CACHE_SINGLE_FLIGHT" default:"false"`
	TTL          TTLConfig     `split_words:"true"`
	Redis        RedisConfig   `split_words:"true"`
}

// TTLConfig holds the per-repository entry lifetimes
type TTLConfig struct {
	Country      time.Duration `envconfig:"CACHE_COUNTRY_TTL" default:"1h"`
	Search       time.Duration `envconfig:"CACHE_SEARCH_TTL" default:"5m"`
	Economics    time.Duration `envconfig:"CACHE_ECONOMICS_TTL" default:"1h"`
	Weather      time.Duration `envconfig:"CACHE_WEATHER_TTL" default:"10m"`
	News         time.Duration `envconfig:"CACHE_NEWS_TTL" default:"15m"`
	Exchange     time.Duration `envconfig:"CACHE_EXCHANGE_TTL" default:"1h"`
	Encyclopedia time.Duration `envconfig:"CACHE_ENCYCLOPEDIA_TTL" default:"24h"`
}

type RedisConfig struct {
	Addr         string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string `envconfig:"REDIS_PASSWORD" default:""`
	DB           int    `envconfig:"REDIS_DB" default:"0"`
	DialTimeout  int    `envconfig:"REDIS_DIAL_TIMEOUT" default:"5"`
	ReadTimeout  int    `envconfig:"REDIS_READ_TIMEOUT" default:"3"`
	WriteTimeout int    `envconfig:"REDIS_WRITE_TIMEOUT" default:"3"`
	Namespace    string `envconfig:"REDIS_NAMESPACE" default:"geosynth:"`
}

type ProvidersConfig struct {
	RestCountriesBaseURL string   `envconfig:"RESTCOUNTRIES_BASE_URL" default:"https://restcountries.com/v3.1"`
	WorldBankBaseURL     string   `envconfig:"WORLDBANK_BASE_URL" default:"https://api.worldbank.org/v2"`
	EconomicsDateRange   string   `envconfig:"ECONOMICS_DATE_RANGE" default:"2020:2023"`
	GeocodingBaseURL     string   `envconfig:"OPENMETEO_GEOCODING_URL" default:"https://geocoding-api.open-meteo.com/v1"`
	ForecastBaseURL      string   `envconfig:"OPENMETEO_FORECAST_URL" default:"https://api.open-meteo.com/v1"`
	ForecastDays         int      `envconfig:"WEATHER_FORECAST_DAYS" default:"3"`
	NewsAPIBaseURL       string   `envconfig:"NEWSAPI_BASE_URL" default:"https://newsapi.org/v2"`
	NewsAPIKey           string   `envconfig:"NEWSAPI_KEY"`
	NewsRSSBaseURL       string   `envconfig:"NEWS_RSS_BASE_URL" default:"https://news.google.com/rss"`
	NewsProviderOrder    []string `envconfig:"NEWS_PROVIDER_ORDER" default:"newsapi,rss"`
	NewsPageSize         int      `envconfig:"NEWS_PAGE_SIZE" default:"10"`
	ExchangeBaseURL      string   `envconfig:"EXCHANGERATE_BASE_URL" default:"https://v6.exchangerate-api.com/v6"`
	ExchangeAPIKey       string   `envconfig:"EXCHANGERATE_API_KEY"`
	WikipediaBaseURL     string   `envconfig:"WIKIPEDIA_BASE_URL" default:"https://en.wikipedia.org/api/rest_v1"`
}

// FeaturesConfig switches optional profile sections on and off
type FeaturesConfig struct {
	Economics    bool `envconfig:"FEATURE_ECONOMICS" default:"true"`
	Weather      bool `envconfig:"FEATURE_WEATHER" default:"true"`
	News         bool `envconfig:"FEATURE_NEWS" default:"true"`
	Exchange     bool `envconfig:"FEATURE_EXCHANGE" default:"true"`
	Encyclopedia bool `envconfig:"FEATURE_ENCYCLOPEDIA" default:"true"`
}

func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Transport.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Providers.Validate(); err != nil {
		return err
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > maxPortNumber {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	if s.ShutdownTimeout <= 0 {
		return errors.NewConfigurationError("SERVER_SHUTDOWN_TIMEOUT must be positive", nil)
	}
	return nil
}

func (l *LogConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.NewConfigurationError("LOG_LEVEL must be one of: debug, info, warn, error", nil)
	}
	switch strings.ToLower(l.Format) {
	case "json", "text":
	default:
		return errors.NewConfigurationError("LOG_FORMAT must be one of: json, text", nil)
	}
	return nil
}

func (t *TransportConfig) Validate() error {
	if t.Timeout <= 0 {
		return errors.NewConfigurationError("HTTP_TIMEOUT must be positive", nil)
	}
	if t.RetryAttempts < 1 || t.RetryAttempts > maxRetryAttempts {
		return errors.NewConfigurationError("HTTP_RETRY_ATTEMPTS must be between 1 and 10", nil)
	}
	if t.RetryBaseDelay < 0 {
		return errors.NewConfigurationError("HTTP_RETRY_BASE_DELAY cannot be negative", nil)
	}
	if t.RetryMaxDelay < t.RetryBaseDelay {
		return errors.NewConfigurationError("HTTP_RETRY_MAX_DELAY cannot be lower than HTTP_RETRY_BASE_DELAY", nil)
	}
	for operation, attempts := range t.RetryPolicies {
		if attempts < 1 || attempts > maxRetryAttempts {
			return errors.NewConfigurationError(
				fmt.Sprintf("HTTP_RETRY_POLICIES: attempts for %s must be between 1 and 10", operation), nil)
		}
	}
	if t.RateLimitRPS < 0 {
		return errors.NewConfigurationError("HTTP_RATE_LIMIT_RPS cannot be negative", nil)
	}
	if t.RateLimitRPS > 0 && t.RateLimitBurst < 1 {
		return errors.NewConfigurationError("HTTP_RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled", nil)
	}
	return nil
}

func (c *CacheConfig) Validate() error {
	if !c.Type.IsValid() {
		return errors.NewConfigurationError("CACHE_TYPE must be one of: memory, redis", nil)
	}
	if c.MaxSize < 1 || c.MaxSize > maxCacheEntries {
		return errors.NewConfigurationError("CACHE_MAX_SIZE must be between 1 and 100000", nil)
	}
	if c.DefaultTTL < 0 {
		return errors.NewConfigurationError("CACHE_DEFAULT_TTL cannot be negative", nil)
	}
	if err := c.TTL.Validate(); err != nil {
		return err
	}

	if c.Type == CacheTypeRedis {
		return c.Redis.Validate()
	}

	return nil
}

func (t *TTLConfig) Validate() error {
	ttls := map[string]time.Duration{
		"CACHE_COUNTRY_TTL":      t.Country,
		"CACHE_SEARCH_TTL":       t.Search,
		"CACHE_ECONOMICS_TTL":    t.Economics,
		"CACHE_WEATHER_TTL":      t.Weather,
		"CACHE_NEWS_TTL":         t.News,
		"CACHE_EXCHANGE_TTL":     t.Exchange,
		"CACHE_ENCYCLOPEDIA_TTL": t.Encyclopedia,
	}
	for name, ttl := range ttls {
		if ttl < 0 {
			return errors.NewConfigurationError(name+" cannot be negative", nil)
		}
	}
	return nil
}

func (r *RedisConfig) Validate() error {
	if r.Addr == "" {
		return errors.NewConfigurationError("REDIS_ADDR cannot be empty when using Redis cache", nil)
	}
	if r.DB < 0 || r.DB > maxRedisDB {
		return errors.NewConfigurationError("REDIS_DB must be between 0 and 15", nil)
	}
	if r.DialTimeout < 1 {
		return errors.NewConfigurationError("REDIS_DIAL_TIMEOUT must be at least 1 second", nil)
	}
	if r.ReadTimeout < 1 {
		return errors.NewConfigurationError("REDIS_READ_TIMEOUT must be at least 1 second", nil)
	}
	if r.WriteTimeout < 1 {
		return errors.NewConfigurationError("REDIS_WRITE_TIMEOUT must be at least 1 second", nil)
	}
	return nil
}

func (p *ProvidersConfig) Validate() error {
	urls := []struct {
		name  string
		value string
	}{
		{"RESTCOUNTRIES_BASE_URL", p.RestCountriesBaseURL},
		{"WORLDBANK_BASE_URL", p.WorldBankBaseURL},
		{"OPENMETEO_GEOCODING_URL", p.GeocodingBaseURL},
		{"OPENMETEO_FORECAST_URL", p.ForecastBaseURL},
		{"NEWSAPI_BASE_URL", p.NewsAPIBaseURL},
		{"NEWS_RSS_BASE_URL", p.NewsRSSBaseURL},
		{"EXCHANGERATE_BASE_URL", p.ExchangeBaseURL},
		{"WIKIPEDIA_BASE_URL", p.WikipediaBaseURL},
	}
	for _, u := range urls {
		if err := validateBaseURL(u.name, u.value); err != nil {
			return err
		}
	}

	if p.ForecastDays < 1 || p.ForecastDays > maxForecastDays {
		return errors.NewConfigurationError("WEATHER_FORECAST_DAYS must be between 1 and 16", nil)
	}
	if p.NewsPageSize < 1 || p.NewsPageSize > maxNewsPageSize {
		return errors.NewConfigurationError("NEWS_PAGE_SIZE must be between 1 and 100", nil)
	}
	if !strings.Contains(p.EconomicsDateRange, ":") {
		return errors.NewConfigurationError("ECONOMICS_DATE_RANGE must look like 2020:2023", nil)
	}

	validProviders := map[string]bool{
		"newsapi": true,
		"rss":     true,
	}
	for _, provider := range p.NewsProviderOrder {
		if !validProviders[provider] {
			return errors.NewConfigurationError(fmt.Sprintf("invalid news provider in order: %s", provider), nil)
		}
	}

	return nil
}

func validateBaseURL(name, value string) error {
	if value == "" {
		return errors.NewConfigurationError(name+" cannot be empty", nil)
	}
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return errors.NewConfigurationError(name+" must start with http:// or https://", nil)
	}
	return nil
}
