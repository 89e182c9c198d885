package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/galaksio/quote-engine/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Providers ProvidersConfig `mapstructure:"providers"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig governs the HTTP API.
type ServerConfig struct {
	Listen          string        `mapstructure:"listen"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig encapsulates optional PostgreSQL connectivity for the
// comparison history log.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// CacheConfig selects the optional comparison-result cache. An empty
// backend disables caching entirely.
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig covers the redis cache backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// EngineConfig tunes comparison fan-out.
type EngineConfig struct {
	AdapterTimeout time.Duration `mapstructure:"adapter_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ProviderConfig is the shared per-upstream connectivity shape.
type ProviderConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ProvidersConfig carries one entry per upstream pricing source.
type ProvidersConfig struct {
	Akash           ProviderConfig `mapstructure:"akash"`
	Arweave         ArweaveConfig  `mapstructure:"arweave"`
	Pinata          ProviderConfig `mapstructure:"pinata"`
	OpenX402        ProviderConfig `mapstructure:"openx402"`
	GalaksioStorage ProviderConfig `mapstructure:"galaksio_storage"`
	MeritSystems    ProviderConfig `mapstructure:"merit_systems"`
	XCache          XCacheConfig   `mapstructure:"xcache"`
}

// ArweaveConfig extends the shared shape with the AR/USD price feed.
type ArweaveConfig struct {
	PriceURL string        `mapstructure:"price_url"`
	FeedURL  string        `mapstructure:"feed_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// XCacheConfig extends the shared shape with a default region.
type XCacheConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Region  string        `mapstructure:"region"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GALAKSIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "galaksio-quote-engine")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("server.listen", ":8081")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("cache.backend", "")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.db", 0)

	v.SetDefault("engine.adapter_timeout", "15s")
	v.SetDefault("engine.request_timeout", "30s")

	v.SetDefault("providers.akash.base_url", "https://console-api.akash.network/v1/pricing")
	v.SetDefault("providers.akash.timeout", "10s")
	v.SetDefault("providers.arweave.price_url", "https://arweave.net/price")
	v.SetDefault("providers.arweave.feed_url", "https://api.coingecko.com/api/v3/simple/price?ids=arweave&vs_currencies=usd")
	v.SetDefault("providers.arweave.timeout", "10s")
	v.SetDefault("providers.pinata.base_url", "https://402.pinata.cloud/v1")
	v.SetDefault("providers.pinata.timeout", "15s")
	v.SetDefault("providers.openx402.base_url", "https://ipfs.openx402.ai")
	v.SetDefault("providers.openx402.timeout", "15s")
	v.SetDefault("providers.galaksio_storage.base_url", "https://storage.galaksio.cloud")
	v.SetDefault("providers.galaksio_storage.timeout", "15s")
	v.SetDefault("providers.merit_systems.base_url", "https://api.merit.systems/v1/execute")
	v.SetDefault("providers.merit_systems.timeout", "15s")
	v.SetDefault("providers.xcache.base_url", "https://api.xcache.io")
	v.SetDefault("providers.xcache.region", "us-east-1")
	v.SetDefault("providers.xcache.timeout", "15s")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Engine.AdapterTimeout <= 0 {
		return fmt.Errorf("engine.adapter_timeout must be greater than zero")
	}
	if c.Engine.RequestTimeout < c.Engine.AdapterTimeout {
		return fmt.Errorf("engine.request_timeout cannot be shorter than engine.adapter_timeout")
	}
	switch c.Cache.Backend {
	case "", "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be empty, \"memory\", or \"redis\"")
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr must be configured for the redis backend")
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen must be configured")
	}
	return nil
}
