package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/evyataryagoni/ipcheck/internal/geo"
	"github.com/evyataryagoni/ipcheck/internal/handler"
	"github.com/evyataryagoni/ipcheck/internal/logger"
	"github.com/evyataryagoni/ipcheck/internal/metrics"
	"github.com/evyataryagoni/ipcheck/internal/service"
)

func newTestServer(t *testing.T) (http.Handler, *geo.MockProvider) {
	t.Helper()

	staticDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(staticDir, "style.css"), []byte("body{}"), 0644); err != nil {
		t.Fatalf("failed to write static file: %v", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	mockProvider := geo.NewMockProvider()
	svc := service.NewIPService(mockProvider, m, logger.Nop())
	h := handler.NewIPHandler(svc, logger.Nop())

	return SetupRouter(h, staticDir, m, reg, logger.Nop()), mockProvider
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "203.0.113.9:54321"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// TestRouter_Routes tests every route end to end
func TestRouter_Routes(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		path        string
		status      int
		contentType string
		contains    string
	}{
		{"/", http.StatusOK, "text/html", "203.0.113.9"},
		{"/api", http.StatusOK, "application/json", `"ip":"203.0.113.9"`},
		{"/plain", http.StatusOK, "text/plain", "203.0.113.9"},
		{"/health", http.StatusOK, "", "OK"},
		{"/static/style.css", http.StatusOK, "text/css", "body{}"},
		{"/no/such/page", http.StatusOK, "text/html", "203.0.113.9"},
		{"/swagger/doc.json", http.StatusOK, "application/json", `"/plain"`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, srv, tt.path)

			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
			if tt.contentType != "" && !strings.HasPrefix(rec.Header().Get("Content-Type"), tt.contentType) {
				t.Errorf("expected Content-Type %s, got %s", tt.contentType, rec.Header().Get("Content-Type"))
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("expected body to contain %q, got %q", tt.contains, rec.Body.String())
			}
		})
	}
}

// TestRouter_PlainExactBody tests that /plain is only the address
func TestRouter_PlainExactBody(t *testing.T) {
	srv, _ := newTestServer(t)

	if body := get(t, srv, "/plain").Body.String(); body != "203.0.113.9" {
		t.Errorf("expected exactly 203.0.113.9, got %q", body)
	}
}

// TestRouter_PeerAddressNotRewritten tests that forwarding headers don't replace the peer
func TestRouter_PeerAddressNotRewritten(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.RemoteAddr = "192.0.2.1:1000"
	req.Header.Set("X-Forwarded-For", "")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), `"ip":""`) {
		t.Errorf("expected empty ip from empty X-Forwarded-For, got %s", rec.Body.String())
	}
}

// TestRouter_StaticMissing tests that missing static files are the file server's 404
func TestRouter_StaticMissing(t *testing.T) {
	srv, _ := newTestServer(t)

	if rec := get(t, srv, "/static/missing.js"); rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

// TestRouter_CORS tests permissive CORS headers
func TestRouter_CORS(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected Access-Control-Allow-Origin *, got %q", got)
	}
}

// TestRouter_Metrics tests the metrics endpoint after some traffic
func TestRouter_Metrics(t *testing.T) {
	srv, _ := newTestServer(t)

	get(t, srv, "/api")
	rec := get(t, srv, "/metrics")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`http_requests_total{endpoint="/api",method="GET",status="200"} 1`,
		`connection_types_total{type="Direct"} 1`,
		`geo_lookups_total{provider="mock",result="not_found"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected metrics to contain %s", want)
		}
	}
}

// TestRouter_API_EchoesHost tests the Host header over a real connection
func TestRouter_API_EchoesHost(t *testing.T) {
	h, _ := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Host = "example.test"

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(body), `["host","example.test"]`) {
		t.Errorf("expected host pair in headers, got %s", body)
	}
}
