package storage

import (
	"context"
	"fmt"

	"ats-score-go/internal/config"
	"ats-score-go/internal/logger"
)

// Storage 存储管理器, 聚合可选的外部存储依赖
// 所有组件均为可选, 未配置或初始化失败时对应字段为 nil
type Storage struct {
	// 键值存储, 用于向量缓存
	Redis *Redis
}

// NewStorage 创建存储管理器
// 外部存储只用于缓存, 初始化失败只记录警告, 不阻止服务启动
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	storage := &Storage{}

	if cfg.Redis.Address == "" {
		logger.Info().Msg("Redis未配置, 向量缓存关闭")
		return storage, nil
	}

	logger.Info().Str("address", cfg.Redis.Address).Msg("初始化Redis")
	redisAdapter, err := NewRedisAdapter(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("初始化Redis失败, 向量缓存关闭")
		return storage, nil
	}
	storage.Redis = redisAdapter
	return storage, nil
}

// Close 关闭所有已初始化的存储连接
func (s *Storage) Close() error {
	if s == nil {
		return nil
	}
	var firstErr error
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭Redis连接失败")
			firstErr = err
		}
	}
	return firstErr
}
