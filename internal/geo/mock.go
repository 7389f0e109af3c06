package geo

import (
	"context"
	"sync"

	"github.com/evyataryagoni/ipcheck/internal/models"
)

// MockProvider is a test double for the Provider interface
// It allows tests to control behavior and verify interactions
type MockProvider struct {
	mu sync.Mutex

	// Data holds the mock data (IP address -> location mapping)
	Data map[string]*models.GeoLocation

	// Track method calls for verification in tests
	LookupCalls []string
	CloseCalled bool

	// Control behavior for error scenarios
	LookupError error
	CloseError  error
}

// NewMockProvider creates a mock provider with sample test data
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Data: map[string]*models.GeoLocation{
			"8.8.8.8": {
				Country:  models.StringPtr("United States"),
				Region:   models.StringPtr("California"),
				City:     models.StringPtr("Mountain View"),
				Org:      models.StringPtr("Google LLC"),
				Timezone: models.StringPtr("America/Los_Angeles"),
				Postal:   models.StringPtr("94043"),
			},
			"1.1.1.1": {
				Country: models.StringPtr("Australia"),
				City:    models.StringPtr("Sydney"),
			},
		},
		LookupCalls: []string{},
	}
}

// Name returns the provider name
func (m *MockProvider) Name() string {
	return "mock"
}

// Lookup implements the Provider interface
// Tracks calls and returns configured data or errors
func (m *MockProvider) Lookup(_ context.Context, ip string) (*models.GeoLocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LookupCalls = append(m.LookupCalls, ip)

	if m.LookupError != nil {
		return nil, m.LookupError
	}

	location, exists := m.Data[ip]
	if !exists {
		return nil, ErrNotFound
	}
	return location, nil
}

// Calls returns a copy of the recorded lookup addresses
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.LookupCalls...)
}

// Close implements the Provider interface
func (m *MockProvider) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return m.CloseError
}
