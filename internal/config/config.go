package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultPort is used when neither PORT nor the port argument is usable
const DefaultPort = 3000

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port      int    `validate:"min=0,max=65535"`
	StaticDir string `validate:"required"`

	// Logging
	LogLevel  string `validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogPretty bool
	LogFile   string // optional file output

	// Geolocation
	GeoProvider       string        `validate:"oneof=ipapi csv mysql redis maxmind none"`
	GeoAPIURL         string        `validate:"required_if=GeoProvider ipapi"`
	GeoTimeout        time.Duration `validate:"min=0"` // 0 = HTTP client default (no timeout)
	GeoBreakerEnabled bool
	GeoReloadSchedule string // cron spec; empty disables reloading

	// CSV dataset
	DatastorePath string `validate:"required_if=GeoProvider csv"`

	// MySQL dataset
	MySQLDSN string `validate:"required_if=GeoProvider mysql"` // Data Source Name

	// Redis dataset
	RedisAddr     string `validate:"required_if=GeoProvider redis"`
	RedisPassword string
	RedisDB       int `validate:"min=0"`

	// MaxMind datasets
	MaxMindCityDB string `validate:"required_if=GeoProvider maxmind"`
	MaxMindASNDB  string

	// EnvFileLoaded reports whether a .env file was found
	EnvFileLoaded bool
}

// Load reads configuration from environment variables
// with sensible defaults
func Load() *Config {
	// Load .env file if it exists (for local development)
	// In production/Docker, environment variables are set directly
	envFileLoaded := godotenv.Load() == nil

	return &Config{
		// Server config with defaults
		Port:      ParsePort(os.Getenv("PORT"), DefaultPort),
		StaticDir: getEnv("STATIC_DIR", "static"),

		// Logging
		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),
		LogFile:   getEnv("LOG_FILE", ""),

		// Geolocation
		GeoProvider:       strings.ToLower(getEnv("GEO_PROVIDER", "ipapi")),
		GeoAPIURL:         getEnv("GEO_API_URL", "http://ip-api.com/json/%s"),
		GeoTimeout:        getEnvAsDuration("GEO_TIMEOUT", 0),
		GeoBreakerEnabled: getEnvAsBool("GEO_BREAKER_ENABLED", true),
		GeoReloadSchedule: getEnv("GEO_RELOAD_SCHEDULE", ""),

		// Dataset config
		DatastorePath: getEnv("DATASTORE_PATH", "./data/geo.csv"),
		MySQLDSN:      getEnv("MYSQL_DSN", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		MaxMindCityDB: getEnv("MAXMIND_CITY_DB", "./data/GeoLite2-City.mmdb"),
		MaxMindASNDB:  getEnv("MAXMIND_ASN_DB", ""),

		EnvFileLoaded: envFileLoaded,
	}
}

// Validate checks the configuration using struct tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ParsePort parses a listen port
// Anything that is not a number in 0-65535 yields defaultPort
func ParsePort(value string, defaultPort int) int {
	port, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		return defaultPort
	}
	return int(port)
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an environment variable as an integer
// Returns default if not set or invalid
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsBool reads an environment variable as a boolean (true/false/1/0)
// Returns default if not set or invalid
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsDuration reads an environment variable as a duration ("5s", "1m")
// A bare number is taken as seconds. Returns default if not set or invalid
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
