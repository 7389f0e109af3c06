package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/evyataryagoni/ipcheck/internal/config"
	"github.com/evyataryagoni/ipcheck/internal/geo"
	"github.com/evyataryagoni/ipcheck/internal/handler"
	"github.com/evyataryagoni/ipcheck/internal/logger"
	"github.com/evyataryagoni/ipcheck/internal/metrics"
	"github.com/evyataryagoni/ipcheck/internal/router"
	"github.com/evyataryagoni/ipcheck/internal/service"
)

// shutdownTimeout bounds the drain of in-flight requests
const shutdownTimeout = 30 * time.Second

// @title           IP Check API
// @version         1.0
// @description     Reports the caller's public IP address with request metadata and optional geolocation.

// @BasePath  /
func main() {
	appConfig := config.Load()

	if err := newRootCmd(appConfig, runServer).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the CLI; flags default to the environment values in cfg
// Only the first positional argument is read and unknown flags are ignored,
// so a bad port never stops the server from starting
func newRootCmd(cfg *config.Config, run func(*config.Config) error) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ipcheck [port]",
		Short: "Show the caller's public IP address",
		Long: `An HTTP service that reports the caller's public IP address as an HTML page,
a JSON document with request details and geolocation, or plain text.`,
		Args:               cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyArgs(cfg, args)
			return run(cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.IntVarP(&cfg.Port, "port", "p", cfg.Port, "HTTP port to listen on (the positional argument wins)")
	flags.StringVar(&cfg.StaticDir, "static-dir", cfg.StaticDir, "Directory served under /static/")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.BoolVar(&cfg.LogPretty, "log-pretty", cfg.LogPretty, "Human readable console logs")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Also write logs to this file")
	flags.StringVar(&cfg.GeoProvider, "geo-provider", cfg.GeoProvider, "Geolocation provider (ipapi, csv, mysql, redis, maxmind, none)")
	flags.StringVar(&cfg.GeoAPIURL, "geo-api-url", cfg.GeoAPIURL, "ip-api URL template, %s is replaced by the IP")
	flags.DurationVar(&cfg.GeoTimeout, "geo-timeout", cfg.GeoTimeout, "Geolocation request timeout (0 = none)")
	flags.BoolVar(&cfg.GeoBreakerEnabled, "geo-breaker", cfg.GeoBreakerEnabled, "Circuit breaker around remote lookups")
	flags.StringVar(&cfg.GeoReloadSchedule, "geo-reload-schedule", cfg.GeoReloadSchedule, "Cron spec for reloading file datasets")
	flags.StringVar(&cfg.DatastorePath, "datastore-path", cfg.DatastorePath, "CSV dataset path")
	flags.StringVar(&cfg.MySQLDSN, "mysql-dsn", cfg.MySQLDSN, "MySQL DSN")
	flags.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address")
	flags.StringVar(&cfg.RedisPassword, "redis-password", cfg.RedisPassword, "Redis password")
	flags.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "Redis database number")
	flags.StringVar(&cfg.MaxMindCityDB, "maxmind-city-db", cfg.MaxMindCityDB, "MaxMind GeoLite2 City database")
	flags.StringVar(&cfg.MaxMindASNDB, "maxmind-asn-db", cfg.MaxMindASNDB, "MaxMind GeoLite2 ASN database (optional)")

	return rootCmd
}

// applyArgs applies the optional positional port
// A value that is not a valid port falls back to the default, not to PORT
func applyArgs(cfg *config.Config, args []string) {
	if len(args) > 0 {
		cfg.Port = config.ParsePort(args[0], config.DefaultPort)
	}
}

func runServer(appConfig *config.Config) error {
	appLogger := setupLogger(appConfig)
	defer appLogger.Close()

	if err := appConfig.Validate(); err != nil {
		appLogger.Error().Err(err).Msg("Configuration rejected")
		return err
	}

	metricsCollector := setupMetrics(appLogger)
	provider := setupProvider(appConfig, metricsCollector, appLogger)
	scheduler := setupScheduler(appConfig, provider, appLogger)

	// Build application layers
	ipService := service.NewIPService(provider, metricsCollector, appLogger)
	ipHandler := handler.NewIPHandler(ipService, appLogger)
	appRouter := router.SetupRouter(ipHandler, appConfig.StaticDir, metricsCollector, nil, appLogger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", appConfig.Port),
		Handler:           appRouter,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		appLogger.Fatal().Err(err).Str("addr", server.Addr).Msg("Failed to bind listener")
	}

	port := listener.Addr().(*net.TCPAddr).Port
	logBanner(appLogger, port, localIP())

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		appLogger.Info().Msg("Shutting down server...")
	case err := <-serverErr:
		appLogger.Fatal().Err(err).Msg("Server failed")
	}

	return gracefulShutdown(server, scheduler, ipService, appLogger)
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:      appConfig.LogLevel,
		Pretty:     appConfig.LogPretty,
		OutputFile: appConfig.LogFile,
	})

	appLogger.Info().Msg("Starting IP Check Server...")
	if !appConfig.EnvFileLoaded {
		appLogger.Debug().Msg("No .env file found, using environment variables or defaults")
	}
	appLogger.Info().
		Int("port", appConfig.Port).
		Str("static_dir", appConfig.StaticDir).
		Str("geo_provider", appConfig.GeoProvider).
		Dur("geo_timeout", appConfig.GeoTimeout).
		Bool("geo_breaker", appConfig.GeoBreakerEnabled).
		Str("geo_reload_schedule", appConfig.GeoReloadSchedule).
		Msg("Configuration loaded")

	return appLogger
}

// setupMetrics initializes the Prometheus metrics collector
func setupMetrics(log *logger.Logger) *metrics.Metrics {
	metricsCollector := metrics.New(prometheus.DefaultRegisterer)
	log.Info().Msg("Metrics initialized")
	return metricsCollector
}

// setupProvider initializes the geolocation provider based on configuration
func setupProvider(appConfig *config.Config, m *metrics.Metrics, log *logger.Logger) geo.Provider {
	provider, err := geo.NewProvider(geo.ProviderConfig{
		Type:           appConfig.GeoProvider,
		APIURL:         appConfig.GeoAPIURL,
		Timeout:        appConfig.GeoTimeout,
		BreakerEnabled: appConfig.GeoBreakerEnabled,
		DatasetPath:    appConfig.DatastorePath,
		MySQLDSN:       appConfig.MySQLDSN,
		RedisAddr:      appConfig.RedisAddr,
		RedisPassword:  appConfig.RedisPassword,
		RedisDB:        appConfig.RedisDB,
		MaxMindCityDB:  appConfig.MaxMindCityDB,
		MaxMindASNDB:   appConfig.MaxMindASNDB,
	}, m, log)
	if err != nil {
		log.Fatal().Err(err).Str("type", appConfig.GeoProvider).Msg("Failed to initialize geolocation provider")
	}

	// Auto-load data if Redis is empty
	if redisProvider, ok := provider.(*geo.RedisProvider); ok {
		loadRedisDataIfEmpty(redisProvider, appConfig.DatastorePath, log)
	}

	log.Info().Str("provider", provider.Name()).Msg("Geolocation provider initialized")
	return provider
}

// loadRedisDataIfEmpty checks if Redis is empty and loads the CSV dataset
func loadRedisDataIfEmpty(redisProvider *geo.RedisProvider, csvPath string, log *logger.Logger) {
	ctx := context.Background()

	isEmpty, err := redisProvider.IsEmpty(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to check if Redis is empty")
		return
	}

	if isEmpty {
		log.Info().Str("path", csvPath).Msg("Redis is empty, loading dataset from CSV")
		count, err := redisProvider.LoadFromCSV(ctx, csvPath)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load dataset")
			return
		}
		log.Info().Int("records", count).Msg("Dataset loaded into Redis")
	}
}

// setupScheduler starts periodic reloads for file-backed providers
// Returns nil when no schedule applies
func setupScheduler(appConfig *config.Config, provider geo.Provider, log *logger.Logger) *geo.Scheduler {
	if appConfig.GeoReloadSchedule == "" {
		return nil
	}

	reloader, ok := provider.(geo.Reloader)
	if !ok {
		log.Warn().
			Str("provider", provider.Name()).
			Msg("Reload schedule ignored, provider has no dataset file")
		return nil
	}

	scheduler, err := geo.NewScheduler(appConfig.GeoReloadSchedule, provider.Name(), reloader, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to setup reload scheduler")
	}
	scheduler.Start()

	log.Info().Str("schedule", appConfig.GeoReloadSchedule).Msg("Scheduled dataset reloads")
	return scheduler
}

// gracefulShutdown drains in-flight requests, then releases resources
func gracefulShutdown(server *http.Server, scheduler *geo.Scheduler, ipService *service.IPService, log *logger.Logger) error {
	if scheduler != nil {
		log.Info().Msg("Stopping reload scheduler...")
		<-scheduler.Stop().Done()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
		server.Close() // Force close if graceful shutdown fails
	} else {
		log.Info().Msg("HTTP server shut down gracefully")
	}

	if err := ipService.Close(); err != nil {
		log.Error().Err(err).Msg("Geolocation provider close error")
		return err
	}

	log.Info().Msg("Graceful shutdown completed")
	return nil
}
