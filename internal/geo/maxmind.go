package geo

import (
	"context"
	"fmt"
	"net"
	"sync"

	geoip2 "github.com/oschwald/geoip2-golang"

	"github.com/evyataryagoni/ipcheck/internal/models"
)

// MaxMindProvider implements Provider using local MaxMind GeoLite2 databases
// The City database is required; the ASN database is optional and fills Org
type MaxMindProvider struct {
	cityPath string
	asnPath  string

	mu     sync.RWMutex // Protects database readers
	cityDB *geoip2.Reader
	asnDB  *geoip2.Reader
}

// NewMaxMindProvider opens the City database and, if asnPath is set, the
// ASN database
func NewMaxMindProvider(cityPath, asnPath string) (*MaxMindProvider, error) {
	p := &MaxMindProvider{cityPath: cityPath, asnPath: asnPath}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the provider name
func (p *MaxMindProvider) Name() string {
	return "maxmind"
}

// Lookup reads the City (and ASN) record for ip
func (p *MaxMindProvider) Lookup(_ context.Context, ip string) (*models.GeoLocation, error) {
	if err := validateIP(ip); err != nil {
		return nil, err
	}
	addr := net.ParseIP(ip)

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.cityDB == nil {
		return nil, fmt.Errorf("maxmind provider is closed")
	}

	city, err := p.cityDB.City(addr)
	if err != nil {
		return nil, fmt.Errorf("city lookup failed: %w", err)
	}

	location := cityToLocation(city)

	if p.asnDB != nil {
		if asn, err := p.asnDB.ASN(addr); err == nil {
			location.Org = models.StringPtr(asn.AutonomousSystemOrganization)
		}
	}

	if location.IsEmpty() {
		return nil, ErrNotFound
	}
	return location, nil
}

// cityToLocation maps a GeoIP2 City record using English names
func cityToLocation(city *geoip2.City) *models.GeoLocation {
	location := &models.GeoLocation{
		Country:  models.StringPtr(city.Country.Names["en"]),
		City:     models.StringPtr(city.City.Names["en"]),
		Timezone: models.StringPtr(city.Location.TimeZone),
		Postal:   models.StringPtr(city.Postal.Code),
	}
	if len(city.Subdivisions) > 0 {
		location.Region = models.StringPtr(city.Subdivisions[0].Names["en"])
	}
	return location
}

// Reload (re)opens the database files and swaps them in
// On error the currently open readers stay in use
func (p *MaxMindProvider) Reload() error {
	cityDB, err := geoip2.Open(p.cityPath)
	if err != nil {
		return fmt.Errorf("failed to open city database: %w", err)
	}

	var asnDB *geoip2.Reader
	if p.asnPath != "" {
		asnDB, err = geoip2.Open(p.asnPath)
		if err != nil {
			cityDB.Close()
			return fmt.Errorf("failed to open ASN database: %w", err)
		}
	}

	p.mu.Lock()
	oldCity, oldASN := p.cityDB, p.asnDB
	p.cityDB, p.asnDB = cityDB, asnDB
	p.mu.Unlock()

	closeReaders(oldCity, oldASN)
	return nil
}

// Close closes all database readers
func (p *MaxMindProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := closeReaders(p.cityDB, p.asnDB)
	p.cityDB, p.asnDB = nil, nil
	return err
}

func closeReaders(readers ...*geoip2.Reader) error {
	var firstErr error
	for _, r := range readers {
		if r == nil {
			continue
		}
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
