package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Exchanges.Coincheck.BaseURL == "" {
		t.Error("coincheck base URL default is empty")
	}
	if cfg.Exchanges.Bitflyer.BaseURL == "" {
		t.Error("bitflyer base URL default is empty")
	}
	if cfg.Exchanges.Bitbank.BaseURL == "" {
		t.Error("bitbank base URL default is empty")
	}

	if cfg.Arbitrage.TickInterval != 3*time.Second {
		t.Errorf("TickInterval = %s, want 3s", cfg.Arbitrage.TickInterval)
	}
	if cfg.Arbitrage.FlushInterval != 5*time.Minute {
		t.Errorf("FlushInterval = %s, want 5m", cfg.Arbitrage.FlushInterval)
	}
	if cfg.Arbitrage.ErrorBackoff != time.Minute {
		t.Errorf("ErrorBackoff = %s, want 1m", cfg.Arbitrage.ErrorBackoff)
	}

	if len(cfg.Arbitrage.Pairs) != 3 {
		t.Fatalf("got %d default pairs, want 3", len(cfg.Arbitrage.Pairs))
	}
	for _, pair := range cfg.Arbitrage.Pairs {
		if pair.Coincheck == "" || pair.Bitflyer == "" || pair.Bitbank == "" {
			t.Errorf("pair %s is missing an exchange identifier", pair.Symbol)
		}
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ARB_TICK_INTERVAL", "10s")
	t.Setenv("ARB_LOG_DIR", "/tmp/arbwatch-logs")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Arbitrage.TickInterval != 10*time.Second {
		t.Errorf("TickInterval = %s, want 10s", cfg.Arbitrage.TickInterval)
	}
	if cfg.Arbitrage.LogDir != "/tmp/arbwatch-logs" {
		t.Errorf("LogDir = %s, want /tmp/arbwatch-logs", cfg.Arbitrage.LogDir)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Exchanges: ExchangesConfig{
				Coincheck: ExchangeConfig{BaseURL: "https://coincheck.example"},
				Bitflyer:  ExchangeConfig{BaseURL: "https://bitflyer.example"},
				Bitbank:   ExchangeConfig{BaseURL: "https://bitbank.example"},
			},
			Arbitrage: ArbitrageConfig{
				Pairs:         defaultPairs(),
				TickInterval:  3 * time.Second,
				FlushInterval: 5 * time.Minute,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing_base_url", mutate: func(c *Config) { c.Exchanges.Bitbank.BaseURL = "" }, wantErr: true},
		{name: "no_pairs", mutate: func(c *Config) { c.Arbitrage.Pairs = nil }, wantErr: true},
		{name: "pair_missing_identifier", mutate: func(c *Config) { c.Arbitrage.Pairs[0].Bitflyer = "" }, wantErr: true},
		{name: "zero_tick_interval", mutate: func(c *Config) { c.Arbitrage.TickInterval = 0 }, wantErr: true},
		{name: "zero_flush_interval", mutate: func(c *Config) { c.Arbitrage.FlushInterval = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("Validate returned nil error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}
