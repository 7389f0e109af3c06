package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/evyataryagoni/ipcheck/internal/models"
)

// DefaultIPAPIURL is the ip-api.com endpoint; %s is replaced by the address
const DefaultIPAPIURL = "http://ip-api.com/json/%s"

// IPAPIProvider implements Provider using the free ip-api.com service
// One GET per lookup, no retry
type IPAPIProvider struct {
	client      *http.Client
	urlTemplate string
}

// NewIPAPIProvider creates an ip-api.com provider
//
// Parameters:
//   - urlTemplate: endpoint with a single %s for the IP (empty = DefaultIPAPIURL)
//   - timeout: per request timeout, 0 keeps the http.Client default (none)
func NewIPAPIProvider(urlTemplate string, timeout time.Duration) *IPAPIProvider {
	if urlTemplate == "" {
		urlTemplate = DefaultIPAPIURL
	}
	return &IPAPIProvider{
		client:      &http.Client{Timeout: timeout},
		urlTemplate: urlTemplate,
	}
}

// Name returns the provider name
func (p *IPAPIProvider) Name() string {
	return "ipapi"
}

// Lookup queries ip-api.com and maps the JSON fields it understands
//
// Field mapping:
//   - country    -> Country
//   - regionName -> Region
//   - city       -> City
//   - org        -> Org
//   - timezone   -> Timezone
//   - zip        -> Postal
//
// A field that is missing or not a string is left nil. The service's
// "status":"fail" answers still decode, giving a location with no fields.
func (p *IPAPIProvider) Lookup(ctx context.Context, ip string) (*models.GeoLocation, error) {
	endpoint := fmt.Sprintf(p.urlTemplate, url.PathEscape(ip))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query ip-api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("ip-api returned status %d", resp.StatusCode)
	}

	var body any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode ip-api response: %w", err)
	}

	// Non-object bodies map to an empty location
	fields, _ := body.(map[string]any)

	return &models.GeoLocation{
		Country:  stringField(fields, "country"),
		Region:   stringField(fields, "regionName"),
		City:     stringField(fields, "city"),
		Org:      stringField(fields, "org"),
		Timezone: stringField(fields, "timezone"),
		Postal:   stringField(fields, "zip"),
	}, nil
}

// Close releases idle connections
func (p *IPAPIProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// stringField returns fields[key] if it is a string, nil otherwise
func stringField(fields map[string]any, key string) *string {
	s, ok := fields[key].(string)
	if !ok {
		return nil
	}
	return &s
}
