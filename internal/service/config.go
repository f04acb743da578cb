package service

import (
	"fmt"
	"os"
	"strconv"
)

// AppConfig 应用配置，从环境变量加载
type AppConfig struct {
	Port      string // HTTP监听端口
	JWTSecret string // JWT密钥

	DBDriver   string // 数据库驱动：postgres/mysql/sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string // sqlite数据库文件路径

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	UploadDir string // 上传目录
	LogLevel  string // 日志级别
	LogFile   string // 日志文件路径，为空时只输出到标准输出
}

// LoadConfig 从环境变量加载配置并校验必填项
func LoadConfig() (*AppConfig, error) {
	config := &AppConfig{
		Port:          getEnv("PORT", "8080"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		DBDriver:      getEnv("DB_DRIVER", "postgres"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBPath:        getEnv("DB_PATH", "familytree.db"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       os.Getenv("LOG_FILE"),
	}

	if config.JWTSecret == "" {
		return nil, NewError(ErrConfig, "JWT_SECRET is required", nil)
	}
	if config.DBDriver != "sqlite" && config.DBName == "" {
		return nil, NewError(ErrConfig, "DB_NAME is required", nil)
	}

	return config, nil
}

// DSN 按驱动拼接数据库连接串
func (c *AppConfig) DSN() string {
	switch c.DBDriver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	case "sqlite":
		return c.DBPath
	default:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
	}
}

// getEnv 读取环境变量，缺省时返回默认值
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvInt 读取整型环境变量，缺省或非法时返回默认值
func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
