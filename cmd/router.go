package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/angeloszaimis/circuit-breaker/internal/circuitbreaker"
	"github.com/angeloszaimis/circuit-breaker/internal/metrics"
)

func setupRouter(log *slog.Logger, collector *metrics.Collector, registry *circuitbreaker.Registry, proxies map[string]http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /metrics", collector.Handler())
	mux.HandleFunc("GET /breakers", breakersHandler(registry))
	mux.HandleFunc("POST /breakers/reset", resetHandler(log, registry))

	for name, proxy := range proxies {
		mux.Handle("/proxy/"+name+"/", http.StripPrefix("/proxy/"+name, proxy))
	}

	return mux
}

func breakersHandler(registry *circuitbreaker.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(registry.Stats()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func resetHandler(log *slog.Logger, registry *circuitbreaker.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registry.Reset()
		log.Info("All circuit breakers reset by operator request")
		w.WriteHeader(http.StatusNoContent)
	}
}
