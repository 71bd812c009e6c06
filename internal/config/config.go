package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG
}

type Config struct {
	Port     string
	DBDSN    string // local UI-state sqlite (sessions, cart, token vault)
	MediaDir string
	LogLevel string

	// External collaborators
	BackendBaseURL string // commerce backend REST root, e.g. https://api.example.com
	BackendWSURL   string // optional ws(s):// order feed for the admin board
	AdminFeedToken string // bearer token the order feed subscribes with

	StorageURL    string // object storage root (Supabase-style REST)
	StorageKey    string
	StorageBucket string

	GatewayMerchantID string // PayHere merchant id rendered into card handoff
	GatewaySandbox    bool

	SessionSecret string // derives the token-vault key; must be set outside dev

	// Client behavior
	RequestTimeout time.Duration
	OutboundRPS    float64 // backend call budget, tokens/sec
	OutboundBurst  int

	ChatPollInterval   time.Duration
	NotifyPollInterval time.Duration
	OrderPollInterval  time.Duration
	ChatIdleTimeout    time.Duration

	DeliveryFee float64

	OTEL OTELConfig
}

func Load() Config {
	// Missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	cfg := Config{
		Port:     getenv("PORT", "8080"),
		DBDSN:    getenv("DB_DSN", "velora.db"),
		MediaDir: getenv("MEDIA_DIR", "./web/media"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		BackendBaseURL: getenv("BACKEND_BASE_URL", "http://localhost:4000"),
		BackendWSURL:   os.Getenv("BACKEND_WS_URL"),
		AdminFeedToken: os.Getenv("ADMIN_FEED_TOKEN"),

		StorageURL:    os.Getenv("STORAGE_URL"),
		StorageKey:    os.Getenv("STORAGE_KEY"),
		StorageBucket: getenv("STORAGE_BUCKET", "images"),

		GatewayMerchantID: os.Getenv("PAYHERE_MERCHANT_ID"),
		GatewaySandbox:    getbool("PAYHERE_SANDBOX", true),

		SessionSecret: getenv("SESSION_SECRET", "dev-only-secret"),

		RequestTimeout: getdur("REQUEST_TIMEOUT", 30*time.Second),
		OutboundRPS:    getfloat("OUTBOUND_RPS", 25),
		OutboundBurst:  getint("OUTBOUND_BURST", 50),

		ChatPollInterval:   getdur("CHAT_POLL_INTERVAL", 3*time.Second),
		NotifyPollInterval: getdur("NOTIFY_POLL_INTERVAL", 15*time.Second),
		OrderPollInterval:  getdur("ORDER_POLL_INTERVAL", 10*time.Second),
		ChatIdleTimeout:    getdur("CHAT_IDLE_TIMEOUT", 2*time.Minute),

		DeliveryFee: getfloat("DELIVERY_FEE", 350),

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "velora-storefront"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	log.Printf("[config] PORT=%s DB_DSN=%s BACKEND=%s STORAGE=%s", cfg.Port, cfg.DBDSN, cfg.BackendBaseURL, cfg.StorageURL)
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getfloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
