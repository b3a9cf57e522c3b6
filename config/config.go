package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host string
	Port string

	WebhookURL     string
	WebhookTimeout time.Duration

	SessionDialect string
	SessionDir     string
	DatabaseURL    string
	DeviceName     string

	QRSize     int
	QRTerminal bool

	LogLevel  string
	LogFormat string

	CORSOrigins []string
	RateLimit   float64
	JWTSecret   string

	ShutdownTimeout time.Duration
}

// Load reads .env (when present) and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Host:            getEnv("HOST", "127.0.0.1"),
		Port:            getEnv("PORT", "3000"),
		WebhookURL:      getEnv("WEBHOOK_URL", "http://localhost:5000/webhook"),
		WebhookTimeout:  getEnvDuration("WEBHOOK_TIMEOUT", 10*time.Second),
		SessionDialect:  getEnv("SESSION_DIALECT", "sqlite3"),
		SessionDir:      getEnv("SESSION_DIR", ".wa_session"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		DeviceName:      getEnv("DEVICE_NAME", "Gowa Bridge"),
		QRSize:          getEnvInt("QR_SIZE", 256),
		QRTerminal:      getEnvBool("QR_TERMINAL", false),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
		CORSOrigins:     getEnvList("CORS_ORIGINS", []string{"*"}),
		RateLimit:       getEnvFloat("RATE_LIMIT", 10),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

// Addr is the listen address for the HTTP gateway.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
