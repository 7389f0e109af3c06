package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/evyataryagoni/ipcheck/docs" // Swagger docs
	"github.com/evyataryagoni/ipcheck/internal/handler"
	"github.com/evyataryagoni/ipcheck/internal/logger"
	custommiddleware "github.com/evyataryagoni/ipcheck/internal/middleware"
	"github.com/evyataryagoni/ipcheck/internal/metrics"
)

// SetupRouter creates and configures the Chi router with all middleware and routes
//
// Parameters:
//   - ipHandler: the IP check handler
//   - staticDir: directory served under /static/
//   - m: metrics collector
//   - gatherer: registry exposed on /metrics (nil means the default registry)
//   - log: structured logger
//
// Returns:
//   - chi.Router: configured router ready to use
func SetupRouter(ipHandler *handler.IPHandler, staticDir string, m *metrics.Metrics, gatherer prometheus.Gatherer, log *logger.Logger) chi.Router {
	r := chi.NewRouter()

	// Order matters! RequestID first so every log line carries it.
	// middleware.RealIP is deliberately absent: it rewrites RemoteAddr,
	// which is the last step of the client IP precedence chain.
	r.Use(middleware.RequestID)
	r.Use(custommiddleware.LoggingMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(custommiddleware.MetricsMiddleware(m))
	r.Use(permissiveCORS())

	// IP check views
	r.Get("/", ipHandler.Index)
	r.Get("/api", ipHandler.API)
	r.Get("/plain", ipHandler.Plain)

	// Static assets for the HTML page
	r.Get("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))).ServeHTTP)

	// Health check endpoint - used by load balancers and monitoring
	r.Get("/health", healthCheckHandler)

	// Prometheus metrics endpoint
	if gatherer == nil {
		r.Handle("/metrics", promhttp.Handler())
	} else {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Swagger UI endpoint - API documentation
	// Access at: http://localhost:3000/swagger/index.html
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Anything else gets the HTML page
	r.NotFound(ipHandler.Index)

	return r
}

// permissiveCORS allows any origin, method and header
func permissiveCORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"*"},
	})
}

// healthCheckHandler is a simple health check endpoint
// Returns 200 OK if the service is running
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
