// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Exchanges ExchangesConfig `mapstructure:"exchanges"`
	Arbitrage ArbitrageConfig `mapstructure:"arbitrage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// ExchangeConfig holds one exchange's endpoint and fee settings.
type ExchangeConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	MakerFeePct       float64 `mapstructure:"maker_fee_pct"`
	TakerFeePct       float64 `mapstructure:"taker_fee_pct"`
	RequestsPerMinute int     `mapstructure:"requests_per_minute"`
}

// MakerFeeDecimal returns the maker fee percentage as decimal.Decimal.
func (c *ExchangeConfig) MakerFeeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MakerFeePct)
}

// TakerFeeDecimal returns the taker fee percentage as decimal.Decimal.
func (c *ExchangeConfig) TakerFeeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.TakerFeePct)
}

// ExchangesConfig holds per-exchange settings plus shared fetch behavior.
type ExchangesConfig struct {
	Coincheck    ExchangeConfig `mapstructure:"coincheck"`
	Bitflyer     ExchangeConfig `mapstructure:"bitflyer"`
	Bitbank      ExchangeConfig `mapstructure:"bitbank"`
	FetchTimeout time.Duration  `mapstructure:"fetch_timeout"`
}

// PairConfig maps one currency symbol to its exchange-specific identifiers.
type PairConfig struct {
	Symbol    string `mapstructure:"symbol"`
	Coincheck string `mapstructure:"coincheck"`
	Bitflyer  string `mapstructure:"bitflyer"`
	Bitbank   string `mapstructure:"bitbank"`
}

// ArbitrageConfig holds detection loop configuration.
type ArbitrageConfig struct {
	Pairs          []PairConfig  `mapstructure:"pairs"`
	TransferFeePct float64       `mapstructure:"transfer_fee_pct"`
	TickInterval   time.Duration `mapstructure:"tick_interval"`
	ErrorBackoff   time.Duration `mapstructure:"error_backoff"`
	FlushInterval  time.Duration `mapstructure:"flush_interval"`
	LogDir         string        `mapstructure:"log_dir"`
	TUIMode        bool          `mapstructure:"-"` // Set at runtime, not from config file
}

// TransferFeeDecimal returns the transfer fee percentage as decimal.Decimal.
func (c *ArbitrageConfig) TransferFeeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.TransferFeePct)
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
	HealthPort     int    `mapstructure:"health_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ARB")
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Arbitrage.Pairs == nil {
		cfg.Arbitrage.Pairs = defaultPairs()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")

	// Exchanges
	v.BindEnv("exchanges.coincheck.base_url", "ARB_COINCHECK_URL")
	v.BindEnv("exchanges.bitflyer.base_url", "ARB_BITFLYER_URL")
	v.BindEnv("exchanges.bitbank.base_url", "ARB_BITBANK_URL")
	v.BindEnv("exchanges.fetch_timeout", "ARB_FETCH_TIMEOUT")

	// Arbitrage
	v.BindEnv("arbitrage.transfer_fee_pct", "ARB_TRANSFER_FEE_PCT")
	v.BindEnv("arbitrage.tick_interval", "ARB_TICK_INTERVAL")
	v.BindEnv("arbitrage.error_backoff", "ARB_ERROR_BACKOFF")
	v.BindEnv("arbitrage.flush_interval", "ARB_FLUSH_INTERVAL")
	v.BindEnv("arbitrage.log_dir", "ARB_LOG_DIR")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "arbwatch")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Exchange defaults. Fee percentages reflect each exchange's published
	// spot schedule; override per environment.
	v.SetDefault("exchanges.coincheck.base_url", "https://coincheck.com")
	v.SetDefault("exchanges.coincheck.maker_fee_pct", 0.0)
	v.SetDefault("exchanges.coincheck.taker_fee_pct", 0.0)
	v.SetDefault("exchanges.coincheck.requests_per_minute", 60)
	v.SetDefault("exchanges.bitflyer.base_url", "https://api.bitflyer.com")
	v.SetDefault("exchanges.bitflyer.maker_fee_pct", 0.1)
	v.SetDefault("exchanges.bitflyer.taker_fee_pct", 0.15)
	v.SetDefault("exchanges.bitflyer.requests_per_minute", 60)
	v.SetDefault("exchanges.bitbank.base_url", "https://public.bitbank.cc")
	v.SetDefault("exchanges.bitbank.maker_fee_pct", -0.02)
	v.SetDefault("exchanges.bitbank.taker_fee_pct", 0.12)
	v.SetDefault("exchanges.bitbank.requests_per_minute", 60)
	v.SetDefault("exchanges.fetch_timeout", "5s")

	// Arbitrage defaults
	v.SetDefault("arbitrage.transfer_fee_pct", 0.1)
	v.SetDefault("arbitrage.tick_interval", "3s")
	v.SetDefault("arbitrage.error_backoff", "60s")
	v.SetDefault("arbitrage.flush_interval", "5m")
	v.SetDefault("arbitrage.log_dir", "logs")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arbwatch")
	v.SetDefault("telemetry.prometheus_port", 9090)
	v.SetDefault("telemetry.health_port", 8081)
}

// defaultPairs is the built-in currency pair set with per-exchange identifiers.
func defaultPairs() []PairConfig {
	return []PairConfig{
		{Symbol: "BTC", Coincheck: "btc_jpy", Bitflyer: "BTC_JPY", Bitbank: "btc_jpy"},
		{Symbol: "ETH", Coincheck: "eth_jpy", Bitflyer: "ETH_JPY", Bitbank: "eth_jpy"},
		{Symbol: "XRP", Coincheck: "xrp_jpy", Bitflyer: "XRP_JPY", Bitbank: "xrp_jpy"},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Exchanges.Coincheck.BaseURL == "" {
		return fmt.Errorf("exchanges.coincheck.base_url is required")
	}
	if c.Exchanges.Bitflyer.BaseURL == "" {
		return fmt.Errorf("exchanges.bitflyer.base_url is required")
	}
	if c.Exchanges.Bitbank.BaseURL == "" {
		return fmt.Errorf("exchanges.bitbank.base_url is required")
	}
	if len(c.Arbitrage.Pairs) == 0 {
		return fmt.Errorf("arbitrage.pairs cannot be empty")
	}
	for _, p := range c.Arbitrage.Pairs {
		if p.Symbol == "" || p.Coincheck == "" || p.Bitflyer == "" || p.Bitbank == "" {
			return fmt.Errorf("pair %q must set identifiers for all exchanges", p.Symbol)
		}
	}
	if c.Arbitrage.TickInterval <= 0 {
		return fmt.Errorf("arbitrage.tick_interval must be positive")
	}
	if c.Arbitrage.FlushInterval <= 0 {
		return fmt.Errorf("arbitrage.flush_interval must be positive")
	}
	return nil
}
