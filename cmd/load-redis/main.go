package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/evyataryagoni/ipcheck/internal/config"
	"github.com/evyataryagoni/ipcheck/internal/geo"
	"github.com/evyataryagoni/ipcheck/internal/logger"
)

// This tool loads the CSV geolocation dataset into Redis
// Usage: go run ./cmd/load-redis [--file data/geo.csv]
func main() {
	appConfig := config.Load()

	cmd := &cobra.Command{
		Use:          "load-redis",
		Short:        "Load the CSV geolocation dataset into Redis",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return load(cmd.Context(), appConfig)
		},
	}
	cmd.Flags().StringVarP(&appConfig.DatastorePath, "file", "f", appConfig.DatastorePath, "CSV dataset to load")
	cmd.Flags().StringVar(&appConfig.RedisAddr, "redis-addr", appConfig.RedisAddr, "Redis address")
	cmd.Flags().StringVar(&appConfig.RedisPassword, "redis-password", appConfig.RedisPassword, "Redis password")
	cmd.Flags().IntVar(&appConfig.RedisDB, "redis-db", appConfig.RedisDB, "Redis database number")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func load(ctx context.Context, appConfig *config.Config) error {
	log := logger.New(logger.Config{
		Level:  appConfig.LogLevel,
		Pretty: true,
	}).WithComponent("LoadRedis")

	log.Info().Str("addr", appConfig.RedisAddr).Msg("Connecting to Redis")
	redisProvider, err := geo.NewRedisProvider(appConfig.RedisAddr, appConfig.RedisPassword, appConfig.RedisDB)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to Redis")
		return err
	}
	defer redisProvider.Close()

	log.Info().Str("path", appConfig.DatastorePath).Msg("Loading dataset")
	count, err := redisProvider.LoadFromCSV(ctx, appConfig.DatastorePath)
	if err != nil {
		log.Error().Err(err).Int("records", count).Msg("Failed to load CSV data")
		return err
	}

	log.Info().Int("records", count).Msg("Data loaded successfully, start the server with GEO_PROVIDER=redis")
	return nil
}
