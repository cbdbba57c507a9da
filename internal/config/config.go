package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	LogLevel string
	Database DatabaseConfig
	Storage  StorageConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	Session  SessionConfig
	Seed     SeedConfig
	AI       AIConfig
	Cron     CronConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// StorageConfig selects the backend of the browser-scoped key-value area
type StorageConfig struct {
	Driver     string // mysql, sqlite or memory
	SQLitePath string
	QuotaBytes int64
}

// JWTConfig holds the signing config for browser profile tokens
type JWTConfig struct {
	Secret           string
	ProfileTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// SessionConfig holds session store timings
type SessionConfig struct {
	LoginTTL        time.Duration
	RegisterTTL     time.Duration
	SimulateLatency bool
	AutoLoginDemo   bool
}

// SeedConfig sizes the generated mock collections
type SeedConfig struct {
	Shipments  int
	Companies  int
	RandomSeed uint64 // 0 means a fresh random draw on every generation
}

// AIConfig holds generative-AI configuration
type AIConfig struct {
	Enabled    bool
	APIKey     string
	TextModel  string
	ImageModel string
	Timeout    time.Duration
}

// CronConfig holds schedules for background jobs (robfig/cron spec strings)
type CronConfig struct {
	SessionSweep string
	DataReset    string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	storage, err := loadStorageConfig(appMode)
	if err != nil {
		return nil, err
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		LogLevel: getEnv("LOG_LEVEL", ""),
		Database: loadDatabaseConfig(appMode),
		Storage:  storage,
		JWT:      loadJWTConfig(appMode),
		Cookie:   loadCookieConfig(appMode),
		Session:  loadSessionConfig(appMode),
		Seed:     loadSeedConfig(),
		AI:       loadAIConfig(),
		Cron:     loadCronConfig(),
	}

	if config.IsProd() && config.JWT.Secret == "default_secret" {
		return nil, fmt.Errorf("PROD_JWT_SECRET must be set in prod mode")
	}

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "tradenexus"),
	}
}

// loadStorageConfig loads the key-value area config
func loadStorageConfig(mode string) (StorageConfig, error) {
	defaultDriver := "sqlite"
	if mode == "prod" {
		defaultDriver = "mysql"
	}
	driver := strings.ToLower(getEnv("STORAGE_DRIVER", defaultDriver))
	switch driver {
	case "mysql", "sqlite", "memory":
	default:
		return StorageConfig{}, fmt.Errorf("invalid STORAGE_DRIVER: '%s' (must be 'mysql', 'sqlite' or 'memory')", driver)
	}

	quota, err := strconv.ParseInt(getEnv("STORAGE_QUOTA_BYTES", "5242880"), 10, 64)
	if err != nil {
		return StorageConfig{}, fmt.Errorf("invalid STORAGE_QUOTA_BYTES: %w", err)
	}

	return StorageConfig{
		Driver:     driver,
		SQLitePath: getEnv("SQLITE_PATH", "./data/tradenexus.db"),
		QuotaBytes: quota,
	}, nil
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", "default_secret"),
		ProfileTokenDays: getEnvInt("PROFILE_TOKEN_DAYS", 365),
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := modePrefix(mode)

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

// loadSessionConfig loads session store config.
// Login and register lifetimes differ on purpose (24h vs 1h).
func loadSessionConfig(mode string) SessionConfig {
	autoLoginDefault := "false"
	if mode == "dev" {
		autoLoginDefault = "true"
	}
	latency, _ := strconv.ParseBool(getEnv("SESSION_SIMULATE_LATENCY", "true"))
	autoLogin, _ := strconv.ParseBool(getEnv("SESSION_AUTO_LOGIN_DEMO", autoLoginDefault))

	return SessionConfig{
		LoginTTL:        time.Duration(getEnvInt("SESSION_LOGIN_TTL_HOURS", 24)) * time.Hour,
		RegisterTTL:     time.Duration(getEnvInt("SESSION_REGISTER_TTL_MINUTES", 60)) * time.Minute,
		SimulateLatency: latency,
		AutoLoginDemo:   autoLogin,
	}
}

// loadSeedConfig loads mock data sizes
func loadSeedConfig() SeedConfig {
	seed, _ := strconv.ParseUint(getEnv("SEED_RANDOM_SEED", "0"), 10, 64)

	return SeedConfig{
		Shipments:  getEnvInt("SEED_SHIPMENTS", 50),
		Companies:  getEnvInt("SEED_COMPANIES", 100),
		RandomSeed: seed,
	}
}

// loadAIConfig loads generative-AI config
func loadAIConfig() AIConfig {
	apiKey := getEnv("GEMINI_API_KEY", getEnv("API_KEY", ""))
	enabled, _ := strconv.ParseBool(getEnv("AI_ENABLED", "false"))

	return AIConfig{
		Enabled:    enabled && apiKey != "",
		APIKey:     apiKey,
		TextModel:  getEnv("AI_TEXT_MODEL", "gemini-2.5-flash"),
		ImageModel: getEnv("AI_IMAGE_MODEL", "imagen-4.0-generate-001"),
		Timeout:    time.Duration(getEnvInt("AI_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

// loadCronConfig loads background job schedules
func loadCronConfig() CronConfig {
	return CronConfig{
		SessionSweep: getEnv("SESSION_SWEEP_SPEC", "@every 15m"),
		DataReset:    getEnv("DATA_RESET_SPEC", ""),
	}
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets a positive integer environment variable with default value
func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://app.tradenexus.com"
	}
	return origins
}
