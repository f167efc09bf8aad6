package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	httpapi "github.com/i474232898/weatherapp/internal/api/http"
	"github.com/i474232898/weatherapp/internal/cli"
	"github.com/i474232898/weatherapp/internal/config"
	"github.com/i474232898/weatherapp/internal/logger"
	"github.com/i474232898/weatherapp/internal/metrics"
	"github.com/i474232898/weatherapp/internal/scheduler"
	"github.com/i474232898/weatherapp/internal/store"
	"github.com/i474232898/weatherapp/internal/weather"
	"github.com/i474232898/weatherapp/internal/weather/providers"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds everything a run needs once configuration is settled.
type app struct {
	cfg      *config.AppConfig
	log      *logrus.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	cache    *store.Store
	service  *weather.Service
}

// run is the whole program minus process exit. The report goes to stdout,
// logs and help text to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, shouldExit, err := cli.Parse(args, providers.BuiltinNames(), stderr)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return &cli.ExitError{Code: 1, Message: err.Error()}
	}
	applyFlags(cfg, opts)

	a, err := newApp(cfg, stderr)
	if err != nil {
		return &cli.ExitError{Code: 1, Message: err.Error()}
	}

	if opts.ClearCache {
		if err := a.cache.Clear(); err != nil {
			return &cli.ExitError{Code: 1, Message: err.Error()}
		}
		a.log.WithField("dir", a.cache.Dir()).Info("cache cleared")
	}

	if opts.ServeAddr != "" {
		return a.serve(ctx, opts.ServeAddr)
	}
	return a.report(ctx, opts, stdout)
}

func applyFlags(cfg *config.AppConfig, opts *cli.Options) {
	if opts.City != "" {
		cfg.City = opts.City
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.LogFormat = opts.LogFormat
	}
}

func newApp(cfg *config.AppConfig, logOut io.Writer) (*app, error) {
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, logOut)
	if err != nil {
		return nil, err
	}

	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)

	cache, err := store.New(cfg.CacheDir, store.Policies{
		store.KindCurrent:   cfg.CacheTime,
		store.KindLocations: cfg.LocationsCacheTime,
	},
		store.WithLogger(log),
		store.WithMetrics(m),
		store.WithMemoryEntries(cfg.CacheMemoryEntries),
	)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	// Shared HTTP client for outbound provider calls.
	fetcher := providers.NewFetcher(&http.Client{Timeout: cfg.HTTPTimeout}, providers.WithFetchLogger(log))

	reg := weather.NewRegistry()
	providers.RegisterBuiltins(reg, fetcher, weather.WithTiming(log), weather.WithMetrics(m))
	reg.Seal()

	overrides := config.LoadOverrides(cfg.ConfigFile, log)
	service := weather.NewService(reg, cache, overrides,
		weather.WithWorkers(cfg.Workers),
		weather.WithLogger(log),
	)

	return &app{
		cfg:      cfg,
		log:      log,
		registry: promReg,
		metrics:  m,
		cache:    cache,
		service:  service,
	}, nil
}

// report performs one aggregation and prints it. Provider failures are part
// of the report, not of the exit status.
func (a *app) report(ctx context.Context, opts *cli.Options, stdout io.Writer) error {
	req := weather.Request{City: a.cfg.City, Bypass: opts.Refresh}
	if opts.Provider != "" {
		req.Providers = []weather.ProviderName{opts.Provider}
	}

	res, err := a.service.Run(ctx, req)
	if err != nil {
		return &cli.ExitError{Code: 1, Message: err.Error()}
	}
	return weather.WriteReport(stdout, a.cfg.City, res)
}

// serve runs the HTTP API and the cache warmer until ctx is cancelled.
func (a *app) serve(ctx context.Context, addr string) error {
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sched := scheduler.New(a.service, a.cfg.City, a.cfg.WarmInterval, a.log)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	server := httpapi.NewApp(a.service, httpapi.Options{
		DefaultCity: a.cfg.City,
		Gatherer:    a.registry,
		Metrics:     a.metrics,
		Logger:      a.log,
	})

	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("addr", addr).Info("serving weather reports")
		errCh <- server.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
