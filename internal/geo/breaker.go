package geo

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/evyataryagoni/ipcheck/internal/logger"
	"github.com/evyataryagoni/ipcheck/internal/metrics"
	"github.com/evyataryagoni/ipcheck/internal/models"
)

// BreakerSettings configures the circuit breaker around a provider
type BreakerSettings struct {
	MaxRequests  uint32        // requests allowed while half-open
	Interval     time.Duration // reset window for counts while closed
	Timeout      time.Duration // open -> half-open delay
	MinRequests  uint32        // requests needed before the breaker may trip
	FailureRatio float64       // trip when failures/requests >= this
}

// DefaultBreakerSettings opens after 60% failures over at least 10 requests
// and probes again after 2 minutes
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      2 * time.Minute,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// BreakerProvider wraps a Provider with a circuit breaker
// While the circuit is open lookups fail fast without reaching the provider,
// which the service reports as "no geolocation"
type BreakerProvider struct {
	next Provider
	cb   *gobreaker.CircuitBreaker[*models.GeoLocation]
}

// NewBreakerProvider wraps next; m and log may be nil
func NewBreakerProvider(next Provider, settings BreakerSettings, m *metrics.Metrics, log *logger.Logger) *BreakerProvider {
	if log == nil {
		log = logger.Nop()
	}
	name := next.Name()
	log = log.WithComponent("GeoBreaker")

	if m != nil {
		m.CircuitBreakerState.WithLabelValues(name).Set(stateValue(gobreaker.StateClosed))
	}

	cb := gobreaker.NewCircuitBreaker[*models.GeoLocation](gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= settings.FailureRatio
		},

		// A miss or a client that went away says nothing about provider health
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrNotFound) ||
				errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("provider", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state change")

			if m != nil {
				m.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
				m.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			}
		},
	})

	return &BreakerProvider{next: next, cb: cb}
}

// Lookup runs the wrapped lookup through the breaker
func (b *BreakerProvider) Lookup(ctx context.Context, ip string) (*models.GeoLocation, error) {
	return b.cb.Execute(func() (*models.GeoLocation, error) {
		return b.next.Lookup(ctx, ip)
	})
}

// Name returns the wrapped provider's name
func (b *BreakerProvider) Name() string {
	return b.next.Name()
}

// State exposes the current breaker state
func (b *BreakerProvider) State() gobreaker.State {
	return b.cb.State()
}

// Close closes the wrapped provider
func (b *BreakerProvider) Close() error {
	return b.next.Close()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
