package geo

import (
	"fmt"
	"strings"
	"time"

	"github.com/evyataryagoni/ipcheck/internal/logger"
	"github.com/evyataryagoni/ipcheck/internal/metrics"
)

// Provider types accepted by NewProvider
const (
	TypeIPAPI   = "ipapi"
	TypeCSV     = "csv"
	TypeMySQL   = "mysql"
	TypeRedis   = "redis"
	TypeMaxMind = "maxmind"
	TypeNone    = "none"
)

// ProviderConfig holds configuration for creating a geolocation provider
type ProviderConfig struct {
	Type string // see Type* constants

	// ip-api
	APIURL         string
	Timeout        time.Duration
	BreakerEnabled bool

	// CSV dataset
	DatasetPath string

	// MySQL dataset
	MySQLDSN string

	// Redis dataset
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// MaxMind datasets
	MaxMindCityDB string
	MaxMindASNDB  string
}

// NewProvider creates a provider based on the configuration (factory pattern)
// m and log may be nil
func NewProvider(cfg ProviderConfig, m *metrics.Metrics, log *logger.Logger) (Provider, error) {
	providerType := strings.ToLower(strings.TrimSpace(cfg.Type))

	switch providerType {
	case TypeIPAPI, "":
		var p Provider = NewIPAPIProvider(cfg.APIURL, cfg.Timeout)
		if cfg.BreakerEnabled {
			p = NewBreakerProvider(p, DefaultBreakerSettings(), m, log)
		}
		return p, nil

	case TypeCSV:
		p, err := NewCSVProvider(cfg.DatasetPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create CSV provider: %w", err)
		}
		return p, nil

	case TypeMySQL:
		p, err := NewMySQLProvider(cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create MySQL provider: %w", err)
		}
		return p, nil

	case TypeRedis:
		p, err := NewRedisProvider(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis provider: %w", err)
		}
		return p, nil

	case TypeMaxMind:
		p, err := NewMaxMindProvider(cfg.MaxMindCityDB, cfg.MaxMindASNDB)
		if err != nil {
			return nil, fmt.Errorf("failed to create MaxMind provider: %w", err)
		}
		return p, nil

	case TypeNone:
		return NoopProvider{}, nil

	default:
		return nil, fmt.Errorf("unknown geo provider type: %s (supported: 'ipapi', 'csv', 'mysql', 'redis', 'maxmind', 'none')", cfg.Type)
	}
}
