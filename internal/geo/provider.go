// Package geo looks up optional location data for an IP address.
//
// A Provider answers one lookup at a time and is safe for concurrent use.
// The default provider queries the ip-api.com JSON endpoint; dataset
// providers (CSV, MySQL, Redis, MaxMind) answer from operator supplied data.
package geo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/evyataryagoni/ipcheck/internal/models"
)

// ErrNotFound is returned when a provider has no data for an address
var ErrNotFound = errors.New("geolocation not found")

// Provider defines the interface for geolocation lookups
// Allows multiple implementations (ip-api, CSV, MySQL, Redis, MaxMind) and
// easy testing with mocks
type Provider interface {
	// Lookup returns location data for ip
	// Returns ErrNotFound (possibly wrapped) when nothing is known
	Lookup(ctx context.Context, ip string) (*models.GeoLocation, error)

	// Name returns the provider name for logging and metrics
	Name() string

	// Close cleans up resources (connections, file handles, etc.)
	Close() error
}

// Reloader is implemented by providers backed by a file that can be re-read
// while the server is running
type Reloader interface {
	Reload() error
}

// ipValidator is shared by the dataset providers; validator.Validate is
// safe for concurrent use
var ipValidator = validator.New()

// validateIP rejects anything that is not an IPv4/IPv6 address
// Dataset keys are always real addresses, so an invalid input is a miss
func validateIP(ip string) error {
	if err := ipValidator.Var(ip, "required,ip"); err != nil {
		return fmt.Errorf("%w: invalid IP address %q", ErrNotFound, ip)
	}
	return nil
}

// NoopProvider never returns data; used when geolocation is disabled
type NoopProvider struct{}

// Lookup always reports ErrNotFound
func (NoopProvider) Lookup(context.Context, string) (*models.GeoLocation, error) {
	return nil, ErrNotFound
}

// Name returns the provider name
func (NoopProvider) Name() string { return "none" }

// Close is a no-op
func (NoopProvider) Close() error { return nil }
