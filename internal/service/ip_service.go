package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/evyataryagoni/ipcheck/internal/classifier"
	"github.com/evyataryagoni/ipcheck/internal/geo"
	"github.com/evyataryagoni/ipcheck/internal/logger"
	"github.com/evyataryagoni/ipcheck/internal/metrics"
	"github.com/evyataryagoni/ipcheck/internal/models"
)

// localPrefixes are address prefixes that never reach a geo provider
var localPrefixes = []string{"127.", "192.168.", "10."}

// IPService handles business logic for request inspection
// This is the service layer - it sits between handlers and geo providers
//
// Responsibilities:
//   - Resolve the client IP
//   - Classify the request (connection type, mobile, Tor, VPN)
//   - Look up optional geolocation, degrading to nil on any failure
type IPService struct {
	provider geo.Provider     // Geolocation source (ip-api, CSV, MySQL, ...)
	metrics  *metrics.Metrics // Metrics collector
	logger   *logger.Logger   // Structured logger
}

// NewIPService creates a new IP service
//
// Parameters:
//   - provider: any implementation of geo.Provider (nil disables geolocation)
//   - m: metrics collector (optional, can be nil)
//   - log: logger (optional, can be nil)
func NewIPService(provider geo.Provider, m *metrics.Metrics, log *logger.Logger) *IPService {
	if provider == nil {
		provider = geo.NoopProvider{}
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &IPService{
		provider: provider,
		metrics:  m,
		logger:   log.WithComponent("IPService"),
	}
}

// ClientIP resolves the address attributed to the caller of r
func (s *IPService) ClientIP(r *http.Request) string {
	return classifier.ClientIP(r.Header, r.RemoteAddr)
}

// Inspect builds the full RequestInfo for r
//
// Flow:
//  1. Resolve client IP
//  2. Classify headers and user agent
//  3. Geolocate (may be nil)
func (s *IPService) Inspect(ctx context.Context, r *http.Request) *models.RequestInfo {
	ip := s.ClientIP(r)
	userAgent := classifier.UserAgent(r.Header)
	connectionType := classifier.ConnectionType(r.Header)

	if s.metrics != nil {
		s.metrics.ConnectionTypesTotal.WithLabelValues(connectionType).Inc()
	}

	return &models.RequestInfo{
		IP:             ip,
		UserAgent:      userAgent,
		Headers:        classifier.Headers(r.Host, r.Header),
		Geo:            s.Geolocate(ctx, ip),
		ConnectionType: connectionType,
		IsMobile:       classifier.IsMobile(userAgent),
		IsTor:          classifier.IsTor(r.Header),
		IsVPN:          classifier.IsVPN(r.Header, ip),
	}
}

// Geolocate looks up location data for ip
// Never fails: provider errors are logged and counted, and yield nil
func (s *IPService) Geolocate(ctx context.Context, ip string) *models.GeoLocation {
	name := s.provider.Name()
	lookupLog := s.logger.WithLookup(name, ip)

	if skipLookup(ip) {
		lookupLog.Debug().Msg("Skipping geolocation for local address")
		s.recordLookup(name, metrics.ResultSkipped)
		return nil
	}

	start := time.Now()
	location, err := s.provider.Lookup(ctx, ip)
	if s.metrics != nil {
		s.metrics.GeoLookupDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		if errors.Is(err, geo.ErrNotFound) {
			lookupLog.Debug().Msg("No geolocation data")
			s.recordLookup(name, metrics.ResultNotFound)
		} else {
			lookupLog.Debug().Err(err).Msg("Geolocation lookup failed")
			s.recordLookup(name, metrics.ResultError)
		}
		return nil
	}

	s.recordLookup(name, metrics.ResultSuccess)
	return location
}

func (s *IPService) recordLookup(provider, result string) {
	if s.metrics != nil {
		s.metrics.GeoLookupsTotal.WithLabelValues(provider, result).Inc()
	}
}

// skipLookup reports loopback and common private addresses, which are never
// sent to a provider
func skipLookup(ip string) bool {
	for _, prefix := range localPrefixes {
		if strings.HasPrefix(ip, prefix) {
			return true
		}
	}
	return false
}

// Close cleans up resources
// This will close the underlying provider (database connections, etc.)
func (s *IPService) Close() error {
	return s.provider.Close()
}
