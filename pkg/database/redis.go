package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yourusername/eduplay-api/internal/config"
	"github.com/yourusername/eduplay-api/pkg/logger"
)

const (
	redisModeSingle   = "single"
	redisModeSentinel = "sentinel"
	redisModeCluster  = "cluster"
)

// NewUniversalRedisClient подключается к Redis, в котором живут снимки прохождений
// и счётчики rate limiter. Режимы: single, sentinel, cluster.
func NewUniversalRedisClient(cfg config.RedisConfig) (redis.UniversalClient, error) {
	options, mode, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewUniversalClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (mode: %s, addrs: %v): %w", mode, options.Addrs, err)
	}

	logger.Log.Info("Подключение к Redis установлено", zap.String("mode", mode), zap.Strings("addrs", options.Addrs))
	return client, nil
}

// redisOptions собирает опции клиента и возвращает итоговый режим
func redisOptions(cfg config.RedisConfig) (*redis.UniversalOptions, string, error) {
	addrs := cfg.Addrs
	if len(addrs) == 0 {
		if cfg.Addr == "" {
			return nil, "", fmt.Errorf("redis configuration error: addrs or addr must be provided")
		}
		addrs = []string{cfg.Addr}
	}

	options := &redis.UniversalOptions{
		Addrs:      addrs,
		Password:   cfg.Password,
		DB:         cfg.DB,
		MaxRetries: cfg.MaxRetries,
	}
	if cfg.MinRetryBackoff > 0 {
		options.MinRetryBackoff = time.Duration(cfg.MinRetryBackoff) * time.Millisecond
	}
	if cfg.MaxRetryBackoff > 0 {
		options.MaxRetryBackoff = time.Duration(cfg.MaxRetryBackoff) * time.Millisecond
	}

	mode := cfg.Mode
	if mode == "" {
		mode = redisModeSingle
	}

	switch mode {
	case redisModeSingle:
		options.Addrs = addrs[:1]
	case redisModeSentinel:
		if cfg.MasterName == "" {
			return nil, "", fmt.Errorf("redis sentinel mode requires master_name")
		}
		options.MasterName = cfg.MasterName
	case redisModeCluster:
		// NewUniversalClient выбирает кластерный клиент по числу адресов
		if len(addrs) < 2 {
			return nil, "", fmt.Errorf("redis cluster mode requires at least two addrs")
		}
	default:
		return nil, "", fmt.Errorf("unsupported redis mode: %s", mode)
	}
	return options, mode, nil
}

// HealthStatus - состояние зависимостей для /health
type HealthStatus struct {
	Status   string `json:"status"`
	Postgres string `json:"postgres"`
	Redis    string `json:"redis"`
}

// Healthy сообщает, доступны ли все зависимости
func (h HealthStatus) Healthy() bool {
	return h.Status == "ok"
}

// CheckHealth пингует Postgres и Redis. Любая недоступность - статус degraded.
func CheckHealth(ctx context.Context, db *gorm.DB, redisClient redis.UniversalClient) HealthStatus {
	status := HealthStatus{Status: "ok", Postgres: "ok", Redis: "ok"}

	if sqlDB, err := db.DB(); err != nil {
		status.Postgres = err.Error()
	} else if err := sqlDB.PingContext(ctx); err != nil {
		status.Postgres = err.Error()
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		status.Redis = err.Error()
	}

	if status.Postgres != "ok" || status.Redis != "ok" {
		status.Status = "degraded"
		logger.Log.Warn("Проверка здоровья не пройдена",
			zap.String("postgres", status.Postgres), zap.String("redis", status.Redis))
	}
	return status
}
