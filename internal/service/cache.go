package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("cache miss")

// CacheService 基于Redis的缓存服务
type CacheService struct {
	client *redis.Client
	logger *Logger
}

// NewCacheService 创建缓存服务实例
func NewCacheService(addr, password string, db int, logger *Logger) *CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &CacheService{
		client: client,
		logger: logger,
	}
}

// Ping 检查Redis连通性
func (s *CacheService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Set 设置缓存，值以JSON序列化存储
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %v", err)
	}
	return s.client.Set(ctx, key, data, expiration).Err()
}

// Get 获取缓存并反序列化到value，未命中返回ErrCacheMiss
func (s *CacheService) Get(ctx context.Context, key string, value interface{}) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get value: %v", err)
	}
	return json.Unmarshal(data, value)
}

// Delete 删除缓存
func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// MemberKey 成员缓存键
func MemberKey(id uint) string {
	return fmt.Sprintf("member:%d", id)
}

// Close 关闭连接
func (s *CacheService) Close() error {
	return s.client.Close()
}
