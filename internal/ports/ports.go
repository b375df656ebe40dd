package ports

// ApplicationPorts aggregates all ports for dependency injection
type ApplicationPorts struct {
	// Providers
	CountryRegistry      CountryRegistry
	EconomicsProvider    EconomicsProvider
	WeatherProvider      WeatherProvider
	NewsProvider         NewsProvider
	ExchangeProvider     ExchangeProvider
	EncyclopediaProvider EncyclopediaProvider

	// Cache
	CacheProvider CacheProvider

	// Infrastructure
	ConfigProvider ConfigProvider
	Logger         Logger
	Metrics        MetricsCollector
}
