package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App     AppConfig
	Tracker TrackerConfig
	Logger  LoggerConfig
	SLA     SLAConfig
	Team    TeamConfig
	Sampler SamplerConfig
	Cache   CacheConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	BackgroundWorkers     int
}

// TrackerConfig holds upstream issue-tracker connection values.
type TrackerConfig struct {
	BaseURL        string
	APIToken       string
	TimeoutSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// SLAConfig carries the raw SLA policy override. Parsing and fallback live
// in the service layer so a malformed value degrades to defaults instead of
// failing startup.
type SLAConfig struct {
	PolicyJSON string
}

// TeamConfig defines team-analytics parameters.
type TeamConfig struct {
	InternalDomain         string
	NeedsAttentionPending  int
	NeedsAttentionAssigned int
	BehindPending          int
	BehindAssigned         int
}

// SamplerConfig bounds the response-time sampler's fan-out.
type SamplerConfig struct {
	BatchSize    int
	LookbackDays int
	MaxTickets   int
}

// CacheConfig controls the response-time cache.
type CacheConfig struct {
	TTLMinutes int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	baseURL := os.Getenv("TRACKER_BASE_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("TRACKER_BASE_URL is required")
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "sla-dashboard"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			BackgroundWorkers:     getEnvAsInt("BACKGROUND_WORKERS", 2),
		},
		Tracker: TrackerConfig{
			BaseURL:        baseURL,
			APIToken:       os.Getenv("TRACKER_API_TOKEN"),
			TimeoutSeconds: getEnvAsInt("TRACKER_TIMEOUT_SECONDS", 30),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		SLA: SLAConfig{
			PolicyJSON: os.Getenv("SLA_POLICY_JSON"),
		},
		Team: TeamConfig{
			InternalDomain:         getEnv("INTERNAL_EMAIL_DOMAIN", ""),
			NeedsAttentionPending:  getEnvAsInt("TEAM_NEEDS_ATTENTION_PENDING", 5),
			NeedsAttentionAssigned: getEnvAsInt("TEAM_NEEDS_ATTENTION_ASSIGNED", 15),
			BehindPending:          getEnvAsInt("TEAM_BEHIND_PENDING", 2),
			BehindAssigned:         getEnvAsInt("TEAM_BEHIND_ASSIGNED", 10),
		},
		Sampler: SamplerConfig{
			BatchSize:    getEnvAsInt("SAMPLER_BATCH_SIZE", 10),
			LookbackDays: getEnvAsInt("SAMPLER_LOOKBACK_DAYS", 30),
			MaxTickets:   getEnvAsInt("SAMPLER_MAX_TICKETS", 100),
		},
		Cache: CacheConfig{
			TTLMinutes: getEnvAsInt("RESPONSE_CACHE_TTL_MINUTES", 5),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the upstream HTTP client timeout.
func (t TrackerConfig) Timeout() time.Duration {
	if t.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// TTL returns the cache time-to-live duration.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.TTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
