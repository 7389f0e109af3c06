package geo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/evyataryagoni/ipcheck/internal/models"
)

const sampleCSV = `ip,country,region,city,org,timezone,postal
8.8.8.8,United States,California,Mountain View,Google LLC,America/Los_Angeles,94043
1.1.1.1,Australia,,Sydney,,,
2001:4860:4860::8888,United States,,,Google LLC,,
bad,row
`

// writeCSV creates a temporary CSV file with the given content
func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geo.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write CSV: %v", err)
	}
	return path
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

// TestCSVProvider_Lookup tests successful lookups and empty columns
func TestCSVProvider_Lookup(t *testing.T) {
	provider, err := NewCSVProvider(writeCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer provider.Close()

	if provider.Len() != 3 {
		t.Errorf("expected 3 records (invalid row skipped), got %d", provider.Len())
	}

	geo, err := provider.Lookup(context.Background(), "8.8.8.8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deref(geo.City) != "Mountain View" || deref(geo.Postal) != "94043" {
		t.Errorf("unexpected location: city=%s postal=%s", deref(geo.City), deref(geo.Postal))
	}

	geo, err = provider.Lookup(context.Background(), "1.1.1.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if geo.Region != nil || geo.Org != nil {
		t.Errorf("expected empty columns to be nil, got region=%s org=%s", deref(geo.Region), deref(geo.Org))
	}

	if _, err := provider.Lookup(context.Background(), "2001:4860:4860::8888"); err != nil {
		t.Errorf("expected IPv6 lookup to succeed, got %v", err)
	}
}

// TestCSVProvider_Lookup_NotFound tests misses and invalid input
func TestCSVProvider_Lookup_NotFound(t *testing.T) {
	provider, err := NewCSVProvider(writeCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, ip := range []string{"9.9.9.9", "", "not-an-ip", "bad"} {
		t.Run(ip, func(t *testing.T) {
			geo, err := provider.Lookup(context.Background(), ip)
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
			if geo != nil {
				t.Error("expected nil location")
			}
		})
	}
}

// TestCSVProvider_Lookup_ReturnsCopy tests that callers can't mutate the dataset
func TestCSVProvider_Lookup_ReturnsCopy(t *testing.T) {
	provider, _ := NewCSVProvider(writeCSV(t, sampleCSV))

	geo, _ := provider.Lookup(context.Background(), "8.8.8.8")
	geo.City = models.StringPtr("Changed")

	again, _ := provider.Lookup(context.Background(), "8.8.8.8")
	if deref(again.City) != "Mountain View" {
		t.Errorf("dataset was mutated: %s", deref(again.City))
	}
}

// TestNewCSVProvider_Errors tests file errors
func TestNewCSVProvider_Errors(t *testing.T) {
	if _, err := NewCSVProvider(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := NewCSVProvider(writeCSV(t, "")); err == nil {
		t.Error("expected error for empty file")
	}
	if _, err := NewCSVProvider(writeCSV(t, "ip,country\n\"unterminated")); err == nil {
		t.Error("expected error for malformed CSV")
	}
}

// TestCSVProvider_Reload tests reloading keeps old data on failure
func TestCSVProvider_Reload(t *testing.T) {
	path := writeCSV(t, sampleCSV)
	provider, err := NewCSVProvider(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated := "ip,country,region,city,org,timezone,postal\n9.9.9.9,Switzerland,,Zurich,Quad9,,\n"
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatalf("failed to rewrite CSV: %v", err)
	}

	if err := provider.Reload(); err != nil {
		t.Fatalf("unexpected reload error: %v", err)
	}
	if provider.Len() != 1 {
		t.Errorf("expected 1 record after reload, got %d", provider.Len())
	}
	if _, err := provider.Lookup(context.Background(), "9.9.9.9"); err != nil {
		t.Errorf("expected new record, got %v", err)
	}

	os.Remove(path)
	if err := provider.Reload(); err == nil {
		t.Error("expected reload error for missing file")
	}
	if provider.Len() != 1 {
		t.Errorf("expected previous data kept, got %d records", provider.Len())
	}
}
