package service

import (
	"sync"
	"time"
)

// RouteStats 单个路由的请求统计
type RouteStats struct {
	Count     int64   `json:"count"`
	Errors    int64   `json:"errors"`
	TotalMs   float64 `json:"total_ms"`
	MaxMs     float64 `json:"max_ms"`
	AverageMs float64 `json:"average_ms"`
}

// MetricsSnapshot 指标快照
type MetricsSnapshot struct {
	UptimeSeconds float64               `json:"uptime_seconds"`
	TotalRequests int64                 `json:"total_requests"`
	Routes        map[string]RouteStats `json:"routes"`
}

// MetricsService 进程内请求指标，按"METHOD path"聚合
type MetricsService struct {
	mu      sync.RWMutex
	started time.Time
	total   int64
	routes  map[string]*RouteStats
}

// NewMetricsService 创建指标服务实例
func NewMetricsService() *MetricsService {
	return &MetricsService{
		started: time.Now(),
		routes:  make(map[string]*RouteStats),
	}
}

// Record 记录一次请求。状态码≥500计为错误。
func (s *MetricsService) Record(route string, status int, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, ok := s.routes[route]
	if !ok {
		stats = &RouteStats{}
		s.routes[route] = stats
	}

	ms := float64(elapsed.Microseconds()) / 1000
	s.total++
	stats.Count++
	stats.TotalMs += ms
	if ms > stats.MaxMs {
		stats.MaxMs = ms
	}
	stats.AverageMs = stats.TotalMs / float64(stats.Count)
	if status >= 500 {
		stats.Errors++
	}
}

// Snapshot 返回当前指标的拷贝
func (s *MetricsService) Snapshot() MetricsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := MetricsSnapshot{
		UptimeSeconds: time.Since(s.started).Seconds(),
		TotalRequests: s.total,
		Routes:        make(map[string]RouteStats, len(s.routes)),
	}
	for route, stats := range s.routes {
		snap.Routes[route] = *stats
	}
	return snap
}
