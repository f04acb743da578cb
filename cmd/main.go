package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"familytree_go/internal/graph"
	"familytree_go/internal/handler"
	"familytree_go/internal/repository"
	"familytree_go/internal/service"
)

func main() {
	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// 加载配置
	config, err := service.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志器
	logger, err := service.NewLogger(&service.LoggerConfig{
		Level:        service.ParseLogLevel(config.LogLevel),
		Format:       service.LogFormatText,
		FilePath:     config.LogFile,
		EnableCaller: true,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// 初始化数据库连接
	db, err := repository.InitDB(config.DBDriver, config.DSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	logger.Info("database connected (%s)", config.DBDriver)

	// 初始化缓存服务，带退避重试探测连接
	cache := service.NewCacheService(config.RedisAddr, config.RedisPassword, config.RedisDB, logger)
	defer cache.Close()
	pingErr := service.Retry(context.Background(), service.DefaultRetryConfig(), logger, "redis ping", func() error {
		return cache.Ping(context.Background())
	})
	if pingErr != nil {
		logger.Warn("redis unreachable at %s, member cache disabled: %v", config.RedisAddr, pingErr)
	}

	// 初始化文件上传服务
	uploadService, err := service.NewUploadService(config.UploadDir, logger)
	if err != nil {
		log.Fatalf("Failed to initialize upload service: %v", err)
	}

	// 初始化认证与搜索服务
	authService := service.NewAuth(&service.AuthConfig{SecretKey: config.JWTSecret}, db, logger)
	searchService := service.NewMemberSearch(db, logger)

	// 关系解析器
	resolver := graph.NewResolver(db, logger)

	// 请求指标与登录限流
	metrics := service.NewMetricsService()
	limiter := service.NewRateLimiter(service.DefaultRateLimiterConfig(), logger)
	defer limiter.Stop()

	// 设置gin模式
	gin.SetMode(gin.ReleaseMode)

	// 创建gin引擎
	r := gin.Default()

	// 设置静态文件服务
	r.Static("/uploads", config.UploadDir)

	// 注册REST路由
	h := handler.New(db, resolver, cache, uploadService, authService, searchService, metrics, limiter, logger)
	h.RegisterRoutes(r)

	// 启动服务器
	logger.Info("server is running on port %s", config.Port)
	if err := r.Run(":" + config.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
