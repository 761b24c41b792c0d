package api

import (
	"net/http"

	"github.com/Rrens/shop-assistant/internal/api/handler"
	customMiddleware "github.com/Rrens/shop-assistant/internal/api/middleware"
	"github.com/Rrens/shop-assistant/internal/config"
	"github.com/Rrens/shop-assistant/internal/llm"
	"github.com/Rrens/shop-assistant/internal/observability"
	"github.com/Rrens/shop-assistant/internal/security"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps are the collaborators the HTTP layer serves
type Deps struct {
	Auth     handler.Authenticator
	Chatbot  handler.Chatbot
	Payments handler.Payments
	JWT      *security.JWTManager
	Limiter  customMiddleware.Limiter
	LLM      *llm.Router
	Cache    handler.CacheFlusher
	Backends map[string]handler.Pinger
	Metrics  *observability.Metrics
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	if cfg.Server.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(customMiddleware.Logger(deps.Metrics))
	r.Use(middleware.Recoverer)
	if cfg.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	}

	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: origins[0] != "*",
		MaxAge:           300,
	}))

	if cfg.Metrics.Enabled && deps.Metrics != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, deps.Metrics.Handler())
	}

	authHandler := handler.NewAuthHandler(deps.Auth)
	chatbotHandler := handler.NewChatbotHandler(deps.Chatbot)
	paymentHandler := handler.NewPaymentHandler(deps.Payments)

	authMiddleware := customMiddleware.NewAuthMiddleware(deps.JWT)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(deps.Backends))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		// VNPay redirects the shopper's browser here without a bearer token;
		// the signature authenticates it.
		r.Get("/payment/vnpay-return", paymentHandler.VNPayReturn)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			if deps.Limiter != nil {
				r.Use(customMiddleware.NewRateLimitMiddleware(deps.Limiter).Limit)
			}

			r.Get("/auth/me", authHandler.Me)

			r.Route("/chatbot", func(r chi.Router) {
				r.Post("/message", chatbotHandler.SendMessage)
				r.Get("/suggestions", chatbotHandler.GetSuggestions)
				r.Get("/sessions", chatbotHandler.ListSessions)

				r.Route("/session/{sessionID}", func(r chi.Router) {
					r.Get("/", chatbotHandler.GetSession)
					r.Delete("/", chatbotHandler.ClearSession)
					r.Post("/end", chatbotHandler.EndSession)
				})
			})

			r.Route("/orders/{orderID}/payment", func(r chi.Router) {
				r.Get("/", paymentHandler.GetPayment)
				r.Post("/", paymentHandler.CreateURL)
			})

			r.Group(func(r chi.Router) {
				r.Use(customMiddleware.RequireAdmin)

				if deps.LLM != nil {
					r.Get("/llm-providers", handler.ListLLMProviders(deps.LLM))
				}
				if deps.Cache != nil {
					r.Post("/cache/flush", handler.FlushCache(deps.Cache))
				}
			})
		})
	})

	return r
}
