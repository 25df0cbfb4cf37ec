package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ats-score-go/internal/config"
	"ats-score-go/internal/constants"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a key is not found in Redis.
var ErrNotFound = redis.Nil

// Redis wraps the Redis client
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter creates a new Redis client connection
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		// 缓存操作不重试, 失败即降级为未命中
		MaxRetries: -1,
	})

	// 添加OpenTelemetry钩子, 记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{
		Client: client,
		config: cfg,
	}, nil
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping checks the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// EmbeddingVectorKey 返回文本向量缓存键
func EmbeddingVectorKey(model, textMD5 string) string {
	return fmt.Sprintf(constants.KeyEmbeddingVector, model, textMD5)
}

// SetEmbeddingVector 将文本向量和模型版本存入 Redis HASH
func (r *Redis) SetEmbeddingVector(ctx context.Context, model, textMD5 string, vector []float64, modelVersion string, ttl time.Duration) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}

	cacheKey := EmbeddingVectorKey(model, textMD5)
	vectorJSON, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("序列化向量失败: %w", err)
	}

	pipe := r.Client.TxPipeline()
	pipe.HSet(ctx, cacheKey, "vector", vectorJSON, "model_version", modelVersion)
	if ttl > 0 {
		pipe.Expire(ctx, cacheKey, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("设置向量缓存失败: %w", err)
	}
	return nil
}

// GetEmbeddingVector 从 Redis HASH 中获取文本向量和模型版本
// 键不存在时返回的错误满足 errors.Is(err, ErrNotFound)
func (r *Redis) GetEmbeddingVector(ctx context.Context, model, textMD5 string) ([]float64, string, error) {
	if r.Client == nil {
		return nil, "", fmt.Errorf("redis client is not initialized")
	}

	cacheKey := EmbeddingVectorKey(model, textMD5)
	vals, err := r.Client.HMGet(ctx, cacheKey, "vector", "model_version").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	if len(vals) < 2 || vals[0] == nil {
		return nil, "", fmt.Errorf("未找到向量缓存 %s: %w", cacheKey, ErrNotFound)
	}

	vectorJSON, ok := vals[0].(string)
	if !ok || vectorJSON == "" {
		return nil, "", fmt.Errorf("向量缓存格式错误")
	}
	var vector []float64
	if err := json.Unmarshal([]byte(vectorJSON), &vector); err != nil {
		return nil, "", fmt.Errorf("反序列化向量失败: %w", err)
	}

	modelVersion, _ := vals[1].(string)
	return vector, modelVersion, nil
}
