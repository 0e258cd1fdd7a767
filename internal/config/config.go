package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port         string
	DBDSN        string
	APIBaseURL   string
	APITimeout   time.Duration
	EmailTimeout time.Duration
	TemplatesDir string
	StaticDir    string
	LogFile      string
	MaxUploadMB  int
	CookieSecure bool
	// RatePerMinute caps requests per client IP; login has its own tighter cap.
	RatePerMinute int
}

func Load() (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		DBDSN:        getEnv("DB_DSN", "steeze.db"), // sqlite file in project root
		APIBaseURL:   getEnv("API_BASE_URL", "http://localhost:8000/api"),
		APITimeout:   time.Duration(getEnvAsInt("API_TIMEOUT_SECONDS", 15)) * time.Second,
		EmailTimeout: time.Duration(getEnvAsInt("EMAIL_TIMEOUT_SECONDS", 20)) * time.Second,
		TemplatesDir: getEnv("TEMPLATES_DIR", "./web/templates"),
		StaticDir:    getEnv("STATIC_DIR", "./web/static"),
		LogFile:      getEnv("LOG_FILE", ""),
		MaxUploadMB:  getEnvAsInt("MAX_UPLOAD_MB", 5),
		CookieSecure: getEnvAsBool("COOKIE_SECURE", false),

		RatePerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"port":      cfg.Port,
		"db_dsn":    cfg.DBDSN,
		"api":       cfg.APIBaseURL,
		"templates": cfg.TemplatesDir,
		"log_file":  cfg.LogFile,
	}).Info("config loaded")
	return cfg, nil
}

func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	if c.RatePerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

// MaxUploadBytes is the request body ceiling; receipts are the largest payload.
func (c Config) MaxUploadBytes() int {
	return c.MaxUploadMB << 20
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return b
	}
	return defaultValue
}
