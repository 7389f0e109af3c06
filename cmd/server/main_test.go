package main

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/evyataryagoni/ipcheck/internal/config"
	"github.com/evyataryagoni/ipcheck/internal/geo"
	"github.com/evyataryagoni/ipcheck/internal/logger"
	"github.com/evyataryagoni/ipcheck/internal/service"
)

// TestApplyArgs tests the positional port argument
func TestApplyArgs(t *testing.T) {
	tests := []struct {
		name     string
		envPort  int
		args     []string
		expected int
	}{
		{"no argument keeps configured port", 8080, nil, 8080},
		{"numeric argument", 8080, []string{"9090"}, 9090},
		{"non-numeric falls back to default", 8080, []string{"abc"}, config.DefaultPort},
		{"out of range falls back to default", 8080, []string{"99999"}, config.DefaultPort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Port: tt.envPort}
			applyArgs(cfg, tt.args)
			if cfg.Port != tt.expected {
				t.Errorf("expected port %d, got %d", tt.expected, cfg.Port)
			}
		})
	}
}

// TestRootCmd_Flags tests that flags override the environment values
func TestRootCmd_Flags(t *testing.T) {
	cfg := &config.Config{Port: 3000, GeoProvider: "ipapi", GeoBreakerEnabled: true}
	cmd := newRootCmd(cfg, nil)

	err := cmd.ParseFlags([]string{
		"--port", "4000",
		"--geo-provider", "csv",
		"--geo-timeout", "3s",
		"--geo-breaker=false",
		"--datastore-path", "/tmp/geo.csv",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 4000 {
		t.Errorf("expected port 4000, got %d", cfg.Port)
	}
	if cfg.GeoProvider != "csv" {
		t.Errorf("expected provider csv, got %s", cfg.GeoProvider)
	}
	if cfg.GeoTimeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", cfg.GeoTimeout)
	}
	if cfg.GeoBreakerEnabled {
		t.Error("expected breaker disabled")
	}
	if cfg.DatastorePath != "/tmp/geo.csv" {
		t.Errorf("unexpected datastore path %s", cfg.DatastorePath)
	}
}

// TestRootCmd_PortArgument tests that odd arguments never stop the server from starting
func TestRootCmd_PortArgument(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected int
	}{
		{"no arguments", []string{}, config.DefaultPort},
		{"port argument", []string{"8080"}, 8080},
		{"extra arguments ignored", []string{"8080", "extra"}, 8080},
		{"negative number", []string{"-1"}, config.DefaultPort},
		{"unknown long flag", []string{"--x"}, config.DefaultPort},
		{"unknown flag before port", []string{"--x=1", "9090"}, 9090},
		{"known flag with port", []string{"--log-level", "debug", "7000"}, 7000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Port: config.DefaultPort}
			var started *config.Config
			cmd := newRootCmd(cfg, func(c *config.Config) error {
				started = c
				return nil
			})
			cmd.SetArgs(tt.args)

			if err := cmd.Execute(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if started == nil {
				t.Fatal("expected server to start")
			}
			if started.Port != tt.expected {
				t.Errorf("expected port %d, got %d", tt.expected, started.Port)
			}
		})
	}
}

// TestEndpoints tests banner URLs
func TestEndpoints(t *testing.T) {
	urls := endpoints("192.168.1.20", 3000)

	expected := map[string]string{
		"web_ui": "http://192.168.1.20:3000",
		"api":    "http://192.168.1.20:3000/api",
		"plain":  "http://192.168.1.20:3000/plain",
	}
	for name, url := range expected {
		if urls[name] != url {
			t.Errorf("%s: expected %s, got %s", name, url, urls[name])
		}
	}
}

// TestSetupScheduler tests when a reload schedule applies
func TestSetupScheduler(t *testing.T) {
	log := logger.Nop()

	if s := setupScheduler(&config.Config{}, geo.NewMockProvider(), log); s != nil {
		t.Error("expected no scheduler without a schedule")
	}

	cfg := &config.Config{GeoReloadSchedule: "@daily"}
	if s := setupScheduler(cfg, geo.NewMockProvider(), log); s != nil {
		t.Error("expected no scheduler for a provider without a dataset file")
	}
}

// TestGracefulShutdown tests resource cleanup
func TestGracefulShutdown(t *testing.T) {
	log := logger.Nop()

	t.Run("closes provider", func(t *testing.T) {
		mockProvider := geo.NewMockProvider()
		svc := service.NewIPService(mockProvider, nil, log)
		server := &http.Server{Addr: ":0"}

		if err := gracefulShutdown(server, nil, svc, log); err != nil {
			t.Errorf("gracefulShutdown returned error: %v", err)
		}
		if !mockProvider.CloseCalled {
			t.Error("expected provider to be closed")
		}
	})

	t.Run("stops scheduler", func(t *testing.T) {
		csvProvider, err := geo.NewCSVProvider(writeDataset(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		scheduler, err := geo.NewScheduler("@every 1h", "csv", csvProvider, log)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		scheduler.Start()

		svc := service.NewIPService(csvProvider, nil, log)
		if err := gracefulShutdown(&http.Server{Addr: ":0"}, scheduler, svc, log); err != nil {
			t.Errorf("gracefulShutdown returned error: %v", err)
		}
	})

	t.Run("reports close error", func(t *testing.T) {
		mockProvider := geo.NewMockProvider()
		mockProvider.CloseError = errors.New("close failed")
		svc := service.NewIPService(mockProvider, nil, log)

		if err := gracefulShutdown(&http.Server{Addr: ":0"}, nil, svc, log); err == nil {
			t.Error("expected close error")
		}
	})
}

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geo.csv")
	content := "ip,country,region,city,org,timezone,postal\n8.8.8.8,United States,California,Mountain View,Google LLC,America/Los_Angeles,94043\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write dataset: %v", err)
	}
	return path
}
