// Package main is the entry point for the cross-exchange arbitrage watcher.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	arbapp "github.com/mmaeda/arbwatch/business/arbitrage/app"
	arbinfra "github.com/mmaeda/arbwatch/business/arbitrage/infra"
	marketapp "github.com/mmaeda/arbwatch/business/marketdata/app"
	marketdata "github.com/mmaeda/arbwatch/business/marketdata/domain"
	"github.com/mmaeda/arbwatch/business/marketdata/infra/bitbank"
	"github.com/mmaeda/arbwatch/business/marketdata/infra/bitflyer"
	"github.com/mmaeda/arbwatch/business/marketdata/infra/coincheck"
	"github.com/mmaeda/arbwatch/internal/apm"
	"github.com/mmaeda/arbwatch/internal/config"
	"github.com/mmaeda/arbwatch/internal/health"
	"github.com/mmaeda/arbwatch/internal/logger"
	"github.com/mmaeda/arbwatch/internal/metrics"
	"github.com/mmaeda/arbwatch/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("arbwatch %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for debugging
	tuiMode := !*cliMode

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, *configPath, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Arbitrage.TUIMode = tuiMode

	logLevel := logger.ParseLevel(cfg.App.LogLevel)

	// In TUI mode the terminal belongs to the dashboard, so logs are
	// discarded instead of fighting it for stderr.
	var log *logger.Logger
	if tuiMode {
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting arbitrage watcher",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		metricOpts := []metrics.OptionFn{
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			metricOpts = append(metricOpts, metrics.WithProviderConfig(
				metrics.NewOtelCollectorConfig(cfg.Telemetry.OTLPEndpoint, nil, true),
			))
		}
		metrics.NewMetricProvider(metricOpts...)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	poller, reporter, err := buildPoller(cfg, log, tuiMode)
	if err != nil {
		return err
	}

	healthPort := cfg.Telemetry.HealthPort
	if healthPort == 0 {
		healthPort = 8081
	}
	healthServer := health.NewServer(healthPort, version)
	healthServer.RegisterCheck("poller", func(ctx context.Context) (bool, string) {
		if poller.State() == arbapp.StateTerminating {
			return false, "shutting down"
		}
		return true, "running"
	})
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", healthPort)
	}
	defer healthServer.Stop(ctx)

	if tuiMode {
		return runTUI(ctx, poller)
	}
	return runCLI(ctx, poller, reporter, log)
}

// buildPoller wires providers, evaluator, writer, and reporter from config.
func buildPoller(cfg *config.Config, log *logger.Logger, tuiMode bool) (*arbapp.Poller, arbapp.Reporter, error) {
	fetchTimeout := cfg.Exchanges.FetchTimeout

	coincheckClient, err := coincheck.NewClient(coincheck.Config{
		BaseURL:           cfg.Exchanges.Coincheck.BaseURL,
		Timeout:           fetchTimeout,
		RequestsPerMinute: cfg.Exchanges.Coincheck.RequestsPerMinute,
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create coincheck client: %w", err)
	}

	bitflyerClient, err := bitflyer.NewClient(bitflyer.Config{
		BaseURL:           cfg.Exchanges.Bitflyer.BaseURL,
		Timeout:           fetchTimeout,
		RequestsPerMinute: cfg.Exchanges.Bitflyer.RequestsPerMinute,
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create bitflyer client: %w", err)
	}

	bitbankClient, err := bitbank.NewClient(bitbank.Config{
		BaseURL:           cfg.Exchanges.Bitbank.BaseURL,
		Timeout:           fetchTimeout,
		RequestsPerMinute: cfg.Exchanges.Bitbank.RequestsPerMinute,
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create bitbank client: %w", err)
	}

	fees := marketdata.FeeSchedule{
		Maker: map[marketdata.Exchange]decimal.Decimal{
			marketdata.Coincheck: cfg.Exchanges.Coincheck.MakerFeeDecimal(),
			marketdata.Bitflyer:  cfg.Exchanges.Bitflyer.MakerFeeDecimal(),
			marketdata.Bitbank:   cfg.Exchanges.Bitbank.MakerFeeDecimal(),
		},
		Taker: map[marketdata.Exchange]decimal.Decimal{
			marketdata.Coincheck: cfg.Exchanges.Coincheck.TakerFeeDecimal(),
			marketdata.Bitflyer:  cfg.Exchanges.Bitflyer.TakerFeeDecimal(),
			marketdata.Bitbank:   cfg.Exchanges.Bitbank.TakerFeeDecimal(),
		},
		Transfer: cfg.Arbitrage.TransferFeeDecimal(),
	}

	evaluator, err := arbapp.NewEvaluator([]marketapp.BookProvider{
		coincheckClient, bitflyerClient, bitbankClient,
	}, fees, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create evaluator: %w", err)
	}

	pairs := make([]marketdata.CurrencyPair, 0, len(cfg.Arbitrage.Pairs))
	for _, pc := range cfg.Arbitrage.Pairs {
		pair, err := marketdata.NewCurrencyPair(pc.Symbol, map[marketdata.Exchange]string{
			marketdata.Coincheck: pc.Coincheck,
			marketdata.Bitflyer:  pc.Bitflyer,
			marketdata.Bitbank:   pc.Bitbank,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("invalid pair %q: %w", pc.Symbol, err)
		}
		pairs = append(pairs, pair)
	}

	writer, err := arbinfra.NewCSVWriter(cfg.Arbitrage.LogDir, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create opportunity log: %w", err)
	}

	var reporter arbapp.Reporter
	if tuiMode {
		reporter = arbinfra.NewTUIReporter()
	} else {
		reporter = arbinfra.NewConsoleReporter(os.Stdout)
	}

	poller := arbapp.NewPoller(arbapp.PollerConfig{
		Pairs:         pairs,
		TickInterval:  cfg.Arbitrage.TickInterval,
		ErrorBackoff:  cfg.Arbitrage.ErrorBackoff,
		FlushInterval: cfg.Arbitrage.FlushInterval,
	}, evaluator, writer, reporter, log)

	return poller, reporter, nil
}

func runCLI(ctx context.Context, poller *arbapp.Poller, reporter arbapp.Reporter, log *logger.Logger) error {
	if err := reporter.Start(ctx); err != nil {
		return fmt.Errorf("failed to start reporter: %w", err)
	}
	defer reporter.Stop()

	return poller.Run(ctx)
}

func runTUI(ctx context.Context, poller *arbapp.Poller) error {
	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- poller.Run(pollCtx)
		// The poll loop returning means shutdown; close the dashboard too.
		if ui.Program != nil {
			ui.Program.Quit()
		}
	}()

	if err := ui.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Quitting the dashboard stops the loop; wait for the final drain.
	cancel()
	return <-errCh
}
