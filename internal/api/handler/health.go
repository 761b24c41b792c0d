package handler

import (
	"context"
	"net/http"
	"sort"

	"github.com/Rrens/shop-assistant/internal/api/response"
	"github.com/Rrens/shop-assistant/internal/llm"
	"github.com/rs/zerolog/log"
)

// Pinger is a backend the service needs before taking traffic
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheFlusher empties a cache
type CacheFlusher interface {
	Flush(ctx context.Context) (int64, error)
}

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck pings every named backend and reports the ones that failed
func ReadyCheck(backends map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names := make([]string, 0, len(backends))
		for name := range backends {
			names = append(names, name)
		}
		sort.Strings(names)

		checks := make(map[string]string, len(backends))
		ready := true
		for _, name := range names {
			if err := backends[name].Ping(r.Context()); err != nil {
				log.Warn().Err(err).Str("backend", name).Msg("Readiness check failed")
				checks[name] = "unavailable"
				ready = false
				continue
			}
			checks[name] = "ok"
		}

		if !ready {
			response.ServiceUnavailable(w, checks)
			return
		}

		response.OK(w, map[string]any{
			"status": "ready",
			"checks": checks,
		})
	}
}

// ListLLMProviders returns the registered language model providers
func ListLLMProviders(router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"providers":        router.GetProvidersInfo(),
			"default_provider": router.DefaultProvider(),
			"routes":           router.Routes(),
		})
	}
}

// FlushCache clears the catalog cache
func FlushCache(cache CacheFlusher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := cache.Flush(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("Cache flush failed")
			response.InternalError(w, "failed to flush cache")
			return
		}

		response.OK(w, map[string]any{
			"message":      "cache flushed successfully",
			"keys_deleted": deleted,
		})
	}
}
