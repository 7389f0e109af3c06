package geo

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/evyataryagoni/ipcheck/internal/models"
)

// csvColumns is the expected header of a dataset file
// ip,country,region,city,org,timezone,postal
const csvColumns = 7

// CSVProvider implements Provider using a CSV file
// It loads all data into memory for fast lookups and can be reloaded
type CSVProvider struct {
	path string

	mu   sync.RWMutex
	data map[string]*models.GeoLocation
}

// NewCSVProvider creates a new CSV provider by reading a CSV file
//
// CSV Format: ip,country,region,city,org,timezone,postal
// Example: 8.8.8.8,United States,California,Mountain View,Google LLC,America/Los_Angeles,94043
//
// Empty columns become absent fields.
func NewCSVProvider(path string) (*CSVProvider, error) {
	data, err := readCSVDataset(path)
	if err != nil {
		return nil, err
	}
	return &CSVProvider{path: path, data: data}, nil
}

// readCSVDataset parses the dataset file into an IP keyed map
func readCSVDataset(path string) (map[string]*models.GeoLocation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // short rows are skipped below, not fatal

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	data := make(map[string]*models.GeoLocation, len(records)-1)

	// Skip the header row
	for _, record := range records[1:] {
		if len(record) != csvColumns {
			continue
		}
		data[record[0]] = &models.GeoLocation{
			Country:  models.StringPtr(record[1]),
			Region:   models.StringPtr(record[2]),
			City:     models.StringPtr(record[3]),
			Org:      models.StringPtr(record[4]),
			Timezone: models.StringPtr(record[5]),
			Postal:   models.StringPtr(record[6]),
		}
	}

	return data, nil
}

// Name returns the provider name
func (p *CSVProvider) Name() string {
	return "csv"
}

// Lookup looks up an IP address in the loaded dataset
func (p *CSVProvider) Lookup(_ context.Context, ip string) (*models.GeoLocation, error) {
	if err := validateIP(ip); err != nil {
		return nil, err
	}

	p.mu.RLock()
	location, exists := p.data[ip]
	p.mu.RUnlock()

	if !exists {
		return nil, ErrNotFound
	}

	// Hand out a copy so callers can't mutate the dataset
	result := *location
	return &result, nil
}

// Len returns the number of records currently loaded
func (p *CSVProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.data)
}

// Each calls fn for every record; used to seed other datasets
func (p *CSVProvider) Each(fn func(ip string, location *models.GeoLocation) error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for ip, location := range p.data {
		if err := fn(ip, location); err != nil {
			return err
		}
	}
	return nil
}

// Reload re-reads the file; on error the previous data is kept
func (p *CSVProvider) Reload() error {
	data, err := readCSVDataset(p.path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.data = data
	p.mu.Unlock()
	return nil
}

// Close cleans up resources
// For the CSV provider there's nothing to clean up (all data is in memory)
func (p *CSVProvider) Close() error {
	return nil
}
