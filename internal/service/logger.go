package service

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// LogLevel 日志级别
type LogLevel int

const (
	LogLevelDebug LogLevel = iota // 调试
	LogLevelInfo                  // 信息
	LogLevelWarn                  // 警告
	LogLevelError                 // 错误
)

var levelNames = map[LogLevel]string{
	LogLevelDebug: "debug",
	LogLevelInfo:  "info",
	LogLevelWarn:  "warn",
	LogLevelError: "error",
}

// ParseLogLevel 解析日志级别名称，未知名称回落到info
func ParseLogLevel(name string) LogLevel {
	for level, n := range levelNames {
		if n == name {
			return level
		}
	}
	return LogLevelInfo
}

// LogFormat 日志格式
type LogFormat string

const (
	LogFormatText LogFormat = "text" // 文本格式
	LogFormatJSON LogFormat = "json" // JSON格式
)

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        LogLevel  // 日志级别
	Format       LogFormat // 日志格式
	FilePath     string    // 文件路径，为空时只输出到标准输出
	EnableCaller bool      // 启用调用者信息
	TimeFormat   string    // 时间格式
}

// logEntry 日志条目
type logEntry struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Time    string `json:"time"`
	Caller  string `json:"caller,omitempty"`
}

// Logger 日志器
type Logger struct {
	config  *LoggerConfig
	outputs []io.Writer
	mu      sync.Mutex
}

// NewLogger 创建日志器实例
func NewLogger(config *LoggerConfig) (*Logger, error) {
	if config.TimeFormat == "" {
		config.TimeFormat = time.RFC3339
	}

	logger := &Logger{
		config:  config,
		outputs: []io.Writer{os.Stdout},
	}

	if config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %v", err)
		}
		file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %v", err)
		}
		logger.outputs = append(logger.outputs, file)
	}

	return logger, nil
}

// NewDefaultLogger 创建输出到标准输出的文本日志器
func NewDefaultLogger() *Logger {
	logger, _ := NewLogger(&LoggerConfig{
		Level:  LogLevelInfo,
		Format: LogFormatText,
	})
	return logger
}

// Debug 记录调试日志
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LogLevelDebug, format, args...)
}

// Info 记录信息日志
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LogLevelInfo, format, args...)
}

// Warn 记录警告日志
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LogLevelWarn, format, args...)
}

// Error 记录错误日志
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LogLevelError, format, args...)
}

// log 写入一条日志
func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.config.Level {
		return
	}

	entry := &logEntry{
		Level:   levelNames[level],
		Message: fmt.Sprintf(format, args...),
		Time:    time.Now().Format(l.config.TimeFormat),
	}

	if l.config.EnableCaller {
		if _, file, line, ok := runtime.Caller(2); ok {
			entry.Caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
		}
	}

	var line string
	if l.config.Format == LogFormatJSON {
		data, err := json.Marshal(entry)
		if err != nil {
			return
		}
		line = string(data) + "\n"
	} else {
		if entry.Caller != "" {
			line = fmt.Sprintf("%s [%s] %s %s\n", entry.Time, entry.Level, entry.Caller, entry.Message)
		} else {
			line = fmt.Sprintf("%s [%s] %s\n", entry.Time, entry.Level, entry.Message)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, output := range l.outputs {
		fmt.Fprint(output, line)
	}
}
