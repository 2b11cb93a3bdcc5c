package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/angeloszaimis/circuit-breaker/config"
	"github.com/angeloszaimis/circuit-breaker/internal/circuitbreaker"
	"github.com/angeloszaimis/circuit-breaker/internal/httpserver"
	"github.com/angeloszaimis/circuit-breaker/internal/metrics"
	"github.com/angeloszaimis/circuit-breaker/internal/transport"
	"github.com/angeloszaimis/circuit-breaker/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	coolDown, err := cfg.Breaker.CoolDownDuration()
	if err != nil {
		log.Error("Failed to parse breaker cool-down", slog.Any("err", err))
		os.Exit(1)
	}

	collector := metrics.NewCollector(cfg.Metrics.BufferSize, log)
	collector.Start(ctx)

	registry := circuitbreaker.NewRegistry(
		cfg.Breaker.FailureThreshold,
		coolDown,
		circuitbreaker.SystemClock(),
		circuitbreaker.WithTransitionSink(transitionSink(collector)),
	)

	proxies, err := initializeProxies(cfg, registry, collector, log)
	if err != nil {
		log.Error("Failed to initialize upstream proxies", slog.Any("err", err))
		os.Exit(1)
	}

	if len(proxies) == 0 {
		log.Warn("No upstreams configured, serving breaker admin endpoints only")
	}

	mux := setupRouter(log, collector, registry, proxies)

	srv, err := httpserver.New(cfg.Server.Address, mux)
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("Circuit breaker guard started",
		slog.String("address", cfg.Server.Address),
		slog.Int("failure_threshold", cfg.Breaker.FailureThreshold),
		slog.String("cool_down", coolDown.String()),
		slog.Int("upstreams", len(proxies)))

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting server", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

// transitionSink bridges breaker transitions onto the collector's
// buffered channel. The send never blocks, so the sink is safe to run
// under a breaker lock.
func transitionSink(collector *metrics.Collector) circuitbreaker.TransitionSink {
	return func(name string, t circuitbreaker.Transition) {
		collector.Emit(metrics.BreakerEvent{
			Type:      metrics.EventStateChanged,
			Timestamp: t.At,
			Breaker:   name,
			From:      t.From.String(),
			To:        t.To.String(),
		})
	}
}

// initializeProxies builds one breaker-guarded reverse proxy per
// configured upstream. Upstreams with unparseable URLs are skipped; if
// every configured upstream is skipped the configuration is unusable.
func initializeProxies(cfg *config.Config, registry *circuitbreaker.Registry, collector *metrics.Collector, log *slog.Logger) (map[string]http.Handler, error) {
	guarded := transport.New(registry, nil, collector, log)

	proxies := make(map[string]http.Handler, len(cfg.Upstreams))

	for _, upstream := range cfg.Upstreams {
		u, err := url.Parse(upstream.URL)
		if err != nil {
			log.Error("Failed to parse upstream URL",
				slog.String("upstream", upstream.Name),
				slog.String("url", upstream.URL),
				slog.String("error", err.Error()))
			continue
		}

		name := upstream.Name

		proxy := httputil.NewSingleHostReverseProxy(u)
		proxy.Transport = guarded
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			if circuitbreaker.IsCircuitOpen(err) {
				log.Warn("Upstream circuit open, failing fast",
					slog.String("upstream", name),
					slog.String("path", r.URL.Path))
				http.Error(w, "upstream circuit open", http.StatusServiceUnavailable)
				return
			}

			log.Warn("Upstream request failed",
				slog.String("upstream", name),
				slog.Any("err", err))
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
		}

		proxies[upstream.Name] = proxy
	}

	if len(cfg.Upstreams) > 0 && len(proxies) == 0 {
		return nil, os.ErrInvalid
	}

	return proxies, nil
}
