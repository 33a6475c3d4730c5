package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/okian/podium/internal/adapters/http/api"
	"github.com/okian/podium/internal/adapters/http/site"
	"github.com/okian/podium/internal/adapters/http/swagger"
	"github.com/okian/podium/internal/adapters/repository"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/internal/domain/session"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// flags holds command line overrides.
type flags struct {
	configFile string
	addr       string
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := pflag.NewFlagSet("podium", pflag.ContinueOnError)
	fs.StringVarP(&f.configFile, "config", "c", "", "path to a YAML config file")
	fs.StringVar(&f.addr, "addr", "", "HTTP listen address, overrides config")
	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	return f, nil
}

func (f flags) loadOptions() []config.LoadOption {
	var opts []config.LoadOption
	if f.configFile != "" {
		opts = append(opts, config.WithConfigFile(f.configFile))
	}
	if f.addr != "" {
		opts = append(opts, config.WithOverrides(map[string]any{"addr": f.addr}))
	}
	return opts
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		os.Stderr.WriteString("podium: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, f.loadOptions()...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := newService(ctx, cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	metrics.SetRefreshInterval(cfg.MetricsInterval)
	go startSystemMetricsUpdater(ctx, metrics.RefreshInterval())
	go startServiceMetricsUpdater(ctx, metrics.RefreshInterval(), svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// openGateway opens the configured snapshot backend.
func openGateway(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Gateway, error) {
	opt := repository.WithLogger(log.Named("repository"))
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		gw, err := repository.OpenSQLite(ctx, cfg.SQLitePath, opt)
		if err != nil {
			return nil, err
		}
		return repository.Instrument(gw), nil
	default:
		gw, err := repository.NewFileGateway(cfg.DataFile, opt)
		if err != nil {
			return nil, err
		}
		return repository.Instrument(gw), nil
	}
}

func newService(ctx context.Context, cfg *config.Config, log logger.Logger) (*service.Service, error) {
	gw, err := openGateway(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.StorageBackend, err)
	}
	auth, err := session.New(cfg.AccessCode, cfg.TokenSecret, session.WithTTL(cfg.TokenTTL))
	if err != nil {
		_ = gw.Close()
		return nil, fmt.Errorf("session authority: %w", err)
	}
	return service.New(
		service.WithLogger(log.Named("service")),
		service.WithGateway(gw),
		service.WithAuthority(auth),
		service.WithQueueSize(cfg.MutationQueueSize),
		service.WithShutdownTimeout(cfg.ShutdownTimeout),
	), nil
}

// newHandler builds the full route table. The site owns "/" and only
// receives requests no other pattern matches.
func newHandler(ctx context.Context, cfg *config.Config, svc *service.Service) http.Handler {
	mux := http.NewServeMux()

	apiServer := api.NewServer(svc, svc,
		api.WithCORSOrigin(cfg.CORSOrigin),
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)
	apiServer.Register(ctx, mux)
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)

	return apiServer.Handler(mux)
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes queue and ledger gauges.
func startServiceMetricsUpdater(ctx context.Context, interval time.Duration, svc *service.Service) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// GetStats refreshes the gauges as a side effect.
			_ = svc.GetStats()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
