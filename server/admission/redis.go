package admission

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"github.com/vidgrab/vidgrab/server/config"
	"go.uber.org/zap"
)

// RedisCounterStore keeps counters in Redis so several replicas share the same limits
type RedisCounterStore struct {
	limiter.Store
	client *redis.Client
	logger *zap.Logger
}

var _ CounterStore = (*RedisCounterStore)(nil)

// NewRedisCounterStore connects to the Redis instance described by cfg
func NewRedisCounterStore(ctx context.Context, cfg config.AdmissionConfig, logger *zap.Logger) (*RedisCounterStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("URL is required for the redis admission provider")
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	if username, exists := cfg.Credentials["username"]; exists {
		opt.Username = username
	}
	if password, exists := cfg.Credentials["password"]; exists {
		opt.Password = password
	}
	if dbStr, exists := cfg.Credentials["db"]; exists {
		if db, err := strconv.Atoi(dbStr); err == nil {
			opt.DB = db
		}
	}

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	store, err := redisstore.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: keyPrefix,
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create Redis counter store: %w", err)
	}

	logger.Info("connected to Redis",
		zap.String("addr", opt.Addr),
		zap.Int("db", opt.DB))

	return &RedisCounterStore{
		Store:  store,
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (s *RedisCounterStore) Close() error {
	return s.client.Close()
}
