package config

import (
	"sort"
	"strings"
)

var sensitiveKeys = []string{"API_KEY", "PASSWORD", "SECRET", "TOKEN", "KEY", "PASS", "PWD"}

// Display returns a flat, log-friendly view of the configuration with
// credentials masked
func (c *Config) Display() map[string]interface{} {
	return map[string]interface{}{
		"server.port":             c.Server.Port,
		"server.shutdown_timeout": c.Server.ShutdownTimeout.String(),
		"log.environment":         c.Log.Environment,
		"log.level":               c.Log.Level,
		"log.file":                c.Log.FilePath,
		"transport.timeout":       c.Transport.Timeout.String(),
		"transport.retry":         c.Transport.RetryAttempts,
		"transport.rate_limit":    c.Transport.RateLimitRPS,
		"cache.type":              c.Cache.Type.String(),
		"cache.max_size":          c.Cache.MaxSize,
		"cache.single_flight":     c.Cache.SingleFlight,
		"cache.redis_addr":        c.Cache.Redis.Addr,
		"cache.redis_password":    MaskString(c.Cache.Redis.Password),
		"providers.news_order":    strings.Join(c.Providers.NewsProviderOrder, ","),
		"providers.newsapi_key":   MaskString(c.Providers.NewsAPIKey),
		"providers.exchange_key":  MaskString(c.Providers.ExchangeAPIKey),
	}
}

// DisplayArgs flattens Display into sorted slog key/value pairs
func (c *Config) DisplayArgs() []interface{} {
	view := c.Display()
	keys := make([]string, 0, len(view))
	for k := range view {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, len(keys)*2)
	for _, k := range keys {
		args = append(args, k, view[k])
	}
	return args
}

// MaskString keeps the first quarter of a secret. Empty stays empty so an
// unset key is visible as such.
func MaskString(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	visible := len(s) / 4
	return s[:visible] + strings.Repeat("*", len(s)-visible)
}

// IsSensitive reports whether an environment variable name looks like a credential
func IsSensitive(key string) bool {
	key = strings.ToUpper(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(key, sensitive) {
			return true
		}
	}
	return false
}
