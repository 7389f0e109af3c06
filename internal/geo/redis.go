package geo

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/evyataryagoni/ipcheck/internal/models"
)

// redisKeyPrefix namespaces dataset keys: geo:<ip_address>
const redisKeyPrefix = "geo:"

// RedisProvider implements Provider using Redis
// Values are JSON-encoded models.GeoLocation written by the loader
type RedisProvider struct {
	client *redis.Client
}

// NewRedisProvider creates a new Redis provider
//
// Parameters:
//   - addr: Redis server address (e.g., "localhost:6379")
//   - password: Redis password (empty string if no password)
//   - db: Redis database number (0-15, default is 0)
func NewRedisProvider(addr, password string, db int) (*RedisProvider, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisProvider{client: client}, nil
}

func redisKey(ip string) string {
	return redisKeyPrefix + ip
}

// Name returns the provider name
func (p *RedisProvider) Name() string {
	return "redis"
}

// Lookup reads geo:<ip> and decodes it
func (p *RedisProvider) Lookup(ctx context.Context, ip string) (*models.GeoLocation, error) {
	if err := validateIP(ip); err != nil {
		return nil, err
	}

	val, err := p.client.Get(ctx, redisKey(ip)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("Redis query failed: %w", err)
	}

	var location models.GeoLocation
	if err := json.Unmarshal([]byte(val), &location); err != nil {
		return nil, fmt.Errorf("failed to decode geolocation: %w", err)
	}

	return &location, nil
}

// Set adds or updates the record for an IP (no expiration)
func (p *RedisProvider) Set(ctx context.Context, ip string, location *models.GeoLocation) error {
	data, err := json.Marshal(location)
	if err != nil {
		return fmt.Errorf("failed to encode geolocation: %w", err)
	}

	if err := p.client.Set(ctx, redisKey(ip), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store in Redis: %w", err)
	}

	return nil
}

// LoadFromCSV copies every record of a CSV dataset into Redis
// Returns the number of records written
func (p *RedisProvider) LoadFromCSV(ctx context.Context, csvPath string) (int, error) {
	csvProvider, err := NewCSVProvider(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to load CSV: %w", err)
	}
	defer csvProvider.Close()

	count := 0
	err = csvProvider.Each(func(ip string, location *models.GeoLocation) error {
		if err := p.Set(ctx, ip, location); err != nil {
			return fmt.Errorf("failed to store IP %s: %w", ip, err)
		}
		count++
		return nil
	})
	return count, err
}

// IsEmpty reports whether no geo:* keys exist
func (p *RedisProvider) IsEmpty(ctx context.Context) (bool, error) {
	keys, err := p.client.Keys(ctx, redisKeyPrefix+"*").Result()
	if err != nil {
		return false, fmt.Errorf("failed to check Redis keys: %w", err)
	}
	return len(keys) == 0, nil
}

// Close closes the Redis connection
func (p *RedisProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
