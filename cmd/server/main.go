package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/X-spec7/circle-integration-backend-sub000/internal/chain"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/config"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/database"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/logger"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/logic"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/router"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/sync"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	setupLogger(cfg.Log)
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化链客户端
	chainClient, err := chain.Init(cfg.Chain)
	if err != nil {
		logger.Fatal("Failed to initialize chain client: %v", err)
	}
	defer chainClient.Close()

	// 组装对账引擎
	reader := sync.NewChainReader(chainClient)
	engine := sync.NewEngine(
		reader,
		logic.NewWalletLogic(db),
		logic.NewInvestmentLogic(db),
		logic.NewProjectLogic(db),
		logic.NewSkippedEventLogic(db),
		sync.EngineConfig{
			Scanner: sync.ScannerConfig{
				MaxRange:    int64(cfg.Sync.MaxRange),
				MinRange:    int64(cfg.Sync.MinRange),
				MaxRetries:  cfg.Sync.MaxRetries,
				BaseBackoff: cfg.Sync.BaseBackoffDuration(),
			},
			WatchInterval: cfg.Sync.WatchInterval,
		},
	)

	if err := engine.Start(context.Background()); err != nil {
		logger.Fatal("Failed to start reconciliation engine: %v", err)
	}

	// 启动定时任务
	taskManager := task.NewManager(db, engine, reader, cfg)
	taskManager.Start()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 启动HTTP服务
	r := router.Setup(db, engine, cfg)
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
	}

	taskManager.Stop()
	engine.Stop()
	logger.Info("Server exited")
}

// setupLogger 根据配置初始化默认日志器
func setupLogger(cfg config.LogConfig) {
	level := logger.ParseLogLevel(cfg.Level)

	if cfg.Output == "file" && cfg.File != "" {
		l, err := logger.NewWithRotation(level, logger.RotationConfig{
			Filename: cfg.File,
			Compress: true,
		})
		if err != nil {
			logger.Fatal("Failed to create file logger: %v", err)
		}
		logger.SetDefaultLogger(l)
		return
	}

	l, err := logger.New(level)
	if err != nil {
		logger.Fatal("Failed to create logger: %v", err)
	}
	logger.SetDefaultLogger(l)
}
