package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Mongo        MongoConfig        `mapstructure:"mongo"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Auth         AuthConfig         `mapstructure:"auth"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Chatbot      ChatbotConfig      `mapstructure:"chatbot"`
	Payment      PaymentConfig      `mapstructure:"payment"`
	Notification NotificationConfig `mapstructure:"notification"`
	Security     SecurityConfig     `mapstructure:"security"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
	TrustProxyHeaders bool          `mapstructure:"trust_proxy_headers"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	SSLMode       string `mapstructure:"ssl_mode"`
	MaxConns      int32  `mapstructure:"max_conns"`
	MinConns      int32  `mapstructure:"min_conns"`
	MigrationsDir string `mapstructure:"migrations_dir"`
	// MaxConnIdle closes pooled connections idle for longer
	MaxConnIdle time.Duration `mapstructure:"max_conn_idle"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

type LLMConfig struct {
	DefaultProvider string       `mapstructure:"default_provider"`
	Classify        StageRoute   `mapstructure:"classify"`
	Respond         StageRoute   `mapstructure:"respond"`
	Gemini          GeminiConfig `mapstructure:"gemini"`
	OpenAI          OpenAIConfig `mapstructure:"openai"`
}

// StageRoute overrides the provider or model used for one step of a turn
type StageRoute struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey              string        `mapstructure:"api_key"`
	Model               string        `mapstructure:"model"`
	ClassifyTemperature float32       `mapstructure:"classify_temperature"`
	ClassifyMaxTokens   int32         `mapstructure:"classify_max_tokens"`
	RespondTemperature  float32       `mapstructure:"respond_temperature"`
	RespondMaxTokens    int32         `mapstructure:"respond_max_tokens"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// OpenAIConfig also covers compatible endpoints such as DeepSeek or a local Ollama
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type ChatbotConfig struct {
	HistoryLimit    int           `mapstructure:"history_limit"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	SessionListSize int           `mapstructure:"session_list_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	TurnTimeout     time.Duration `mapstructure:"turn_timeout"`
	CatalogCacheTTL time.Duration `mapstructure:"catalog_cache_ttl"`
	SessionStore    string        `mapstructure:"session_store"`
}

type PaymentConfig struct {
	VNPay VNPayConfig `mapstructure:"vnpay"`
}

type VNPayConfig struct {
	TmnCode    string        `mapstructure:"tmn_code"`
	HashSecret string        `mapstructure:"hash_secret"`
	PayURL     string        `mapstructure:"pay_url"`
	ReturnURL  string        `mapstructure:"return_url"`
	ExpireIn   time.Duration `mapstructure:"expire_in"`
}

type NotificationConfig struct {
	ChannelPrefix string `mapstructure:"channel_prefix"`
}

type SecurityConfig struct {
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level       string        `mapstructure:"level"`
	Format      string        `mapstructure:"format"`
	File        string        `mapstructure:"file"`
	MaxAge      time.Duration `mapstructure:"max_age"`
	RotateEvery time.Duration `mapstructure:"rotate_every"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// no file: defaults and env vars only
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Mongo
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "shop")
	v.SetDefault("mongo.connect_timeout", "10s")

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "shop")
	v.SetDefault("database.database", "shop_analytics")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.migrations_dir", "migrations")
	v.SetDefault("database.max_conn_idle", "5m")

	// Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Auth
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.refresh_token_ttl", "168h") // 7 days

	// LLM
	v.SetDefault("llm.default_provider", "gemini")
	v.SetDefault("llm.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.gemini.classify_temperature", 0.7)
	v.SetDefault("llm.gemini.classify_max_tokens", 1000)
	v.SetDefault("llm.gemini.respond_temperature", 0.8)
	v.SetDefault("llm.gemini.respond_max_tokens", 500)
	v.SetDefault("llm.gemini.timeout", "30s")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")

	// Chatbot
	v.SetDefault("chatbot.history_limit", 10)
	v.SetDefault("chatbot.session_ttl", "24h")
	v.SetDefault("chatbot.session_list_size", 5)
	v.SetDefault("chatbot.cleanup_interval", "1h")
	v.SetDefault("chatbot.turn_timeout", "45s")
	v.SetDefault("chatbot.catalog_cache_ttl", "5m")
	v.SetDefault("chatbot.session_store", "mongo")

	// Payment
	v.SetDefault("payment.vnpay.pay_url", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html")
	v.SetDefault("payment.vnpay.return_url", "http://localhost:3000/payment/return")
	v.SetDefault("payment.vnpay.expire_in", "15m")

	// Notification
	v.SetDefault("notification.channel_prefix", "notifications")

	// Security
	v.SetDefault("security.rate_limit.requests_per_minute", 30)
	v.SetDefault("security.rate_limit.burst", 10)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.max_age", "168h")
	v.SetDefault("logging.rotate_every", "24h")

	// Metrics
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("database.password", "POSTGRES_PASSWORD")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")

	// LLM API Keys
	v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("llm.openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.openai.base_url", "OPENAI_BASE_URL")

	// Payment
	v.BindEnv("payment.vnpay.tmn_code", "VNPAY_TMN_CODE")
	v.BindEnv("payment.vnpay.hash_secret", "VNPAY_HASH_SECRET")
}
