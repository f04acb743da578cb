package service

import (
	"math"
	"sync"
	"time"
)

// RateLimiterConfig 限流配置
type RateLimiterConfig struct {
	Rate            float64       // 每秒补充令牌数
	Burst           float64       // 桶容量
	CleanupInterval time.Duration // 空闲桶清理间隔
	IdleTimeout     time.Duration // 桶空闲多久后回收
}

// DefaultRateLimiterConfig 登录类接口的默认限流参数
func DefaultRateLimiterConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		Rate:            1,
		Burst:           5,
		CleanupInterval: time.Minute,
		IdleTimeout:     10 * time.Minute,
	}
}

// tokenBucket 单个键的令牌桶状态
type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
	lastSeen   time.Time
}

// RateLimiter 令牌桶限流器，按键（通常是客户端IP）独立计数
type RateLimiter struct {
	config  *RateLimiterConfig
	logger  *Logger
	buckets map[string]*tokenBucket
	mu      sync.Mutex
	stopCh  chan struct{}
}

// NewRateLimiter 创建限流器实例并启动后台清理
func NewRateLimiter(config *RateLimiterConfig, logger *Logger) *RateLimiter {
	l := &RateLimiter{
		config:  config,
		logger:  logger,
		buckets: make(map[string]*tokenBucket),
		stopCh:  make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Allow 判断该键的一次请求是否放行
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: l.config.Burst, lastRefill: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = math.Min(b.tokens+elapsed*l.config.Rate, l.config.Burst)
	b.lastRefill = now
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// cleanup 周期性回收空闲的桶
func (l *RateLimiter) cleanup() {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := time.Now()
			for key, b := range l.buckets {
				if now.Sub(b.lastSeen) > l.config.IdleTimeout {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop 停止限流器
func (l *RateLimiter) Stop() {
	close(l.stopCh)
}
