package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Rrens/shop-assistant/internal/api"
	"github.com/Rrens/shop-assistant/internal/api/handler"
	"github.com/Rrens/shop-assistant/internal/config"
	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/Rrens/shop-assistant/internal/intent"
	"github.com/Rrens/shop-assistant/internal/llm"
	"github.com/Rrens/shop-assistant/internal/llm/gemini"
	"github.com/Rrens/shop-assistant/internal/llm/openai"
	"github.com/Rrens/shop-assistant/internal/observability"
	"github.com/Rrens/shop-assistant/internal/payment"
	"github.com/Rrens/shop-assistant/internal/repository/memory"
	"github.com/Rrens/shop-assistant/internal/repository/mongo"
	"github.com/Rrens/shop-assistant/internal/repository/postgres"
	"github.com/Rrens/shop-assistant/internal/repository/redis"
	"github.com/Rrens/shop-assistant/internal/security"
	"github.com/Rrens/shop-assistant/internal/service"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logCloser, err := observability.SetupLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting shop assistant API server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()

	// Mongo holds the commerce data and, by default, chat sessions
	mdb, err := mongo.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer mdb.Close(context.Background())
	if err := mdb.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB indexes")
	}

	// Postgres holds behavior analytics
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	migrationsDir, err := filepath.Abs(cfg.Database.MigrationsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve migrations directory")
	}
	if err := postgres.RunMigrations(cfg.Database.DSN(), postgres.MigrationSource(migrationsDir)); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	redisClient, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Commerce services
	catalogRepo := mongo.NewCatalogRepository(mdb)
	productCache := redis.NewProductCache(catalogRepo, redisClient, cfg.Chatbot.CatalogCacheTTL, metrics)
	cartRepo := mongo.NewCartRepository(mdb, catalogRepo)
	discountRepo := mongo.NewDiscountRepository(mdb)
	orderRepo := mongo.NewOrderRepository(mdb, cartRepo, catalogRepo, discountRepo)
	orderRepo.OnStockChange(productCache.Invalidate)
	reviewRepo := mongo.NewReviewRepository(mdb)
	userRepo := mongo.NewUserRepository(mdb)
	paymentRepo := mongo.NewPaymentRepository(mdb)
	paymentService := service.NewPaymentService(orderRepo, paymentRepo, payment.NewGateway(cfg.Payment.VNPay))

	var sessions domain.SessionRepository
	switch cfg.Chatbot.SessionStore {
	case "memory":
		log.Warn().Msg("Using in-memory session store; sessions are lost on restart")
		sessions = memory.NewSessionRepository()
	default:
		sessions = mongo.NewSessionRepository(mdb)
	}
	contexts := service.NewContextManager(sessions, cfg.Chatbot.SessionTTL)
	go contexts.RunCleanup(ctx, cfg.Chatbot.CleanupInterval)

	// Language models
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)
	llmRouter.RegisterFactory("openai", openai.Factory)
	if cfg.LLM.Gemini.APIKey != "" {
		geminiProvider := gemini.NewProvider(cfg.LLM.Gemini, metrics)
		defer geminiProvider.Close()
		llmRouter.RegisterProvider(geminiProvider)
	} else {
		log.Warn().Msg("Gemini API key is empty, skipping registration")
	}
	if cfg.LLM.OpenAI.APIKey != "" || cfg.LLM.OpenAI.BaseURL != "" {
		p, err := llmRouter.GetProviderWithConfig("openai", map[string]any{
			"api_key":  cfg.LLM.OpenAI.APIKey,
			"model":    cfg.LLM.OpenAI.Model,
			"base_url": cfg.LLM.OpenAI.BaseURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build OpenAI-compatible provider")
		}
		llmRouter.RegisterProvider(p)
	}
	llmRouter.SetRoute(llm.StageClassify, llm.Route{Provider: cfg.LLM.Classify.Provider, Model: cfg.LLM.Classify.Model})
	llmRouter.SetRoute(llm.StageRespond, llm.Route{Provider: cfg.LLM.Respond.Provider, Model: cfg.LLM.Respond.Model})
	log.Info().
		Strs("providers", llmRouter.ListProviders()).
		Str("default", llmRouter.DefaultProvider()).
		Interface("routes", llmRouter.Routes()).
		Msg("Language model providers registered")

	handlers := intent.NewHandlers(intent.Deps{
		Catalog:   productCache,
		Carts:     cartRepo,
		Orders:    orderRepo,
		Payments:  paymentService,
		Discounts: discountRepo,
		Reviews:   reviewRepo,
		Users:     userRepo,
		Behavior:  postgres.NewBehaviorRepository(db.Pool),
		Notifier:  redis.NewNotifier(redisClient, cfg.Notification.ChannelPrefix),
		Sessions:  contexts,
	})
	if err := intent.CheckCoverage(handlers); err != nil {
		log.Fatal().Err(err).Msg("Function catalog is not fully covered")
	}

	classifier := service.NewIntentClassifier(llmRouter, handlers, metrics)
	chatbot := service.NewChatbotService(contexts, classifier, metrics, service.ChatbotOptions{
		HistoryLimit:    cfg.Chatbot.HistoryLimit,
		SessionListSize: cfg.Chatbot.SessionListSize,
		TurnTimeout:     cfg.Chatbot.TurnTimeout,
	})

	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	router := api.NewRouter(cfg, api.Deps{
		Auth:     service.NewAuthService(userRepo, jwtManager),
		Chatbot:  chatbot,
		Payments: paymentService,
		JWT:      jwtManager,
		Limiter: redis.NewRateLimiter(
			redisClient,
			cfg.Security.RateLimit.RequestsPerMinute,
			cfg.Security.RateLimit.Burst,
		),
		LLM:   llmRouter,
		Cache: productCache,
		Backends: map[string]handler.Pinger{
			"mongo":    mdb,
			"postgres": db,
			"redis":    redisClient,
		},
		Metrics: metrics,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
