package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/cmlabs-hris/attendance-insight-go/internal/pkg/validator"

	"os"
)

type Config struct {
	App    AppConfig
	Source SourceConfig
	Auth   AuthConfig
	Engine EngineConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

// SourceConfig points at the upstream punch CSV export.
type SourceConfig struct {
	URL             string
	FetchTimeout    time.Duration
	RefreshInterval time.Duration
	// WarnCooldown rate-limits "serving stale snapshot" warnings when the
	// upstream keeps failing.
	WarnCooldown time.Duration
}

// AuthConfig guards the read API with service tokens.
type AuthConfig struct {
	Secret           string
	APIKey           string
	AccessExpiration string
}

// EngineConfig carries every classification threshold the engine uses. All
// fields have defaults so the engine runs with zero configuration; Validate
// rejects anything that would silently corrupt classification.
type EngineConfig struct {
	WorkStartTime            string // "HH:MM", local to the source
	GraceMinutes             int
	CompliantDistanceM       float64
	WarningDistanceM         float64
	CriticalDistanceM        float64
	OpenSessionWarningHours  float64
	OpenSessionCriticalHours float64

	// Optional designated-site coordinates. When set, rows that carry
	// coordinates but no distance column get a derived distance.
	SiteLatitude  *float64
	SiteLongitude *float64

	// Badge-scanner OCR corrections applied to employee IDs before
	// uppercasing, as "FROM=TO" pairs.
	IDCorrections map[string]string
}

func Load() (*Config, error) {
	// A missing .env file is fine in production; env vars win either way.
	_ = godotenv.Load()

	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	fetchTimeout, err := time.ParseDuration(getEnv("SOURCE_FETCH_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SOURCE_FETCH_TIMEOUT: %w", err)
	}
	refreshInterval, err := time.ParseDuration(getEnv("SOURCE_REFRESH_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SOURCE_REFRESH_INTERVAL: %w", err)
	}
	warnCooldown, err := time.ParseDuration(getEnv("SOURCE_WARN_COOLDOWN", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SOURCE_WARN_COOLDOWN: %w", err)
	}

	config.Source = SourceConfig{
		URL:             getEnv("SOURCE_URL", ""),
		FetchTimeout:    fetchTimeout,
		RefreshInterval: refreshInterval,
		WarnCooldown:    warnCooldown,
	}

	config.Auth = AuthConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		APIKey:           getEnv("API_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "12h"),
	}

	engine, err := loadEngine()
	if err != nil {
		return nil, err
	}
	config.Engine = engine

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadEngine loads and validates only the engine thresholds. The offline
// CLI uses this; it has no server, source, or auth concerns.
func LoadEngine() (EngineConfig, error) {
	_ = godotenv.Load()
	engine, err := loadEngine()
	if err != nil {
		return EngineConfig{}, err
	}
	if err := engine.Validate(); err != nil {
		return EngineConfig{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return engine, nil
}

func loadEngine() (EngineConfig, error) {
	graceMinutes, err := strconv.Atoi(getEnv("ENGINE_GRACE_MINUTES", "15"))
	if err != nil {
		return EngineConfig{}, fmt.Errorf("invalid ENGINE_GRACE_MINUTES: %w", err)
	}

	compliant, err := getEnvFloat("ENGINE_COMPLIANT_DISTANCE_M", 50)
	if err != nil {
		return EngineConfig{}, err
	}
	warning, err := getEnvFloat("ENGINE_WARNING_DISTANCE_M", 100)
	if err != nil {
		return EngineConfig{}, err
	}
	critical, err := getEnvFloat("ENGINE_CRITICAL_DISTANCE_M", 200)
	if err != nil {
		return EngineConfig{}, err
	}
	warnHours, err := getEnvFloat("ENGINE_OPEN_SESSION_WARNING_HOURS", 8)
	if err != nil {
		return EngineConfig{}, err
	}
	critHours, err := getEnvFloat("ENGINE_OPEN_SESSION_CRITICAL_HOURS", 12)
	if err != nil {
		return EngineConfig{}, err
	}

	engine := EngineConfig{
		WorkStartTime:            getEnv("ENGINE_WORK_START_TIME", "09:00"),
		GraceMinutes:             graceMinutes,
		CompliantDistanceM:       compliant,
		WarningDistanceM:         warning,
		CriticalDistanceM:        critical,
		OpenSessionWarningHours:  warnHours,
		OpenSessionCriticalHours: critHours,
		IDCorrections:            parseCorrections(getEnv("ENGINE_ID_CORRECTIONS", "EMQ=EMP")),
	}

	if lat := getEnv("ENGINE_SITE_LATITUDE", ""); lat != "" {
		v, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			return EngineConfig{}, fmt.Errorf("invalid ENGINE_SITE_LATITUDE: %w", err)
		}
		engine.SiteLatitude = &v
	}
	if lon := getEnv("ENGINE_SITE_LONGITUDE", ""); lon != "" {
		v, err := strconv.ParseFloat(lon, 64)
		if err != nil {
			return EngineConfig{}, fmt.Errorf("invalid ENGINE_SITE_LONGITUDE: %w", err)
		}
		engine.SiteLongitude = &v
	}

	return engine, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("API_KEY is required")
	}
	if _, err := time.ParseDuration(c.Auth.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	return c.Engine.Validate()
}

// Validate rejects threshold combinations that would silently corrupt every
// classification, before any row is processed.
func (e *EngineConfig) Validate() error {
	if _, ok := validator.IsValidTimeOfDay(e.WorkStartTime); !ok {
		return fmt.Errorf("ENGINE_WORK_START_TIME must be HH:MM, got %q", e.WorkStartTime)
	}
	if e.GraceMinutes < 0 {
		return fmt.Errorf("ENGINE_GRACE_MINUTES must not be negative")
	}
	if e.CompliantDistanceM < 0 || e.WarningDistanceM < 0 || e.CriticalDistanceM < 0 {
		return fmt.Errorf("distance thresholds must not be negative")
	}
	if e.CompliantDistanceM > e.WarningDistanceM || e.WarningDistanceM > e.CriticalDistanceM {
		return fmt.Errorf("distance thresholds must be ordered: compliant <= warning <= critical")
	}
	if e.OpenSessionWarningHours < 0 || e.OpenSessionCriticalHours < 0 {
		return fmt.Errorf("open session thresholds must not be negative")
	}
	if e.OpenSessionWarningHours > e.OpenSessionCriticalHours {
		return fmt.Errorf("open session thresholds must be ordered: warning <= critical")
	}
	if (e.SiteLatitude == nil) != (e.SiteLongitude == nil) {
		return fmt.Errorf("ENGINE_SITE_LATITUDE and ENGINE_SITE_LONGITUDE must be set together")
	}
	return nil
}

// WorkStart returns the configured work-start time as minutes past midnight.
func (e *EngineConfig) WorkStart() int {
	t, _ := validator.IsValidTimeOfDay(e.WorkStartTime)
	return t.Hour()*60 + t.Minute()
}

func parseCorrections(raw string) map[string]string {
	corrections := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) == 2 && kv[0] != "" {
			corrections[strings.ToUpper(kv[0])] = strings.ToUpper(kv[1])
		}
	}
	return corrections
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
