package service

import (
	"context"
	"math"
	"time"
)

// RetryConfig 重试配置
type RetryConfig struct {
	MaxAttempts     int           // 最大尝试次数
	InitialInterval time.Duration // 初始间隔
	MaxInterval     time.Duration // 间隔上限
	Multiplier      float64       // 指数退避乘数
}

// DefaultRetryConfig 外部依赖连接的默认重试参数
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2,
	}
}

// Retry 按指数退避重试fn，直到成功、用尽次数或上下文取消
func Retry(ctx context.Context, config *RetryConfig, logger *Logger, name string, fn func() error) error {
	interval := config.InitialInterval
	var err error
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == config.MaxAttempts {
			break
		}
		logger.Warn("%s failed (attempt %d/%d), retrying in %v: %v",
			name, attempt, config.MaxAttempts, interval, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		interval = time.Duration(math.Min(float64(interval)*config.Multiplier, float64(config.MaxInterval)))
	}
	logger.Error("%s failed after %d attempts: %v", name, config.MaxAttempts, err)
	return err
}
