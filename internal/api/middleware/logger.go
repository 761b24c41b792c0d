package middleware

import (
	"net/http"
	"time"

	"github.com/Rrens/shop-assistant/internal/observability"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger logs every request and records it in metrics.
// 5xx log at error, 4xx at warn, the rest at info.
func Logger(metrics *observability.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				elapsed := time.Since(start)

				route := r.URL.Path
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					if pattern := rctx.RoutePattern(); pattern != "" {
						route = pattern
					}
				}
				metrics.RecordHTTPRequest(r.Method, route, status, elapsed)

				var event *zerolog.Event
				switch {
				case status >= 500:
					event = log.Error()
				case status >= 400:
					event = log.Warn()
				default:
					event = log.Info()
				}

				event.
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("route", route).
					Int("status", status).
					Int("bytes", ww.BytesWritten()).
					Dur("latency", elapsed).
					Str("request_id", chimw.GetReqID(r.Context())).
					Str("remote_addr", r.RemoteAddr).
					Msg("http request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
