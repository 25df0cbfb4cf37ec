package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ats-score-go/internal/api/handler"
	"ats-score-go/internal/api/router"
	"ats-score-go/internal/config"
	"ats-score-go/internal/logger"
	"ats-score-go/internal/metrics"
	"ats-score-go/internal/processor"
	"ats-score-go/internal/storage"
	"ats-score-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app/server"
	hertzconfig "github.com/cloudwego/hertz/pkg/common/config"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
)

func main() {
	// 配置加载前先用默认日志, 保证启动错误可见
	logger.Init(logger.Config{Level: "info", Format: "pretty"})
	logger.SetupHertz()

	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file (empty: built-in defaults)")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		glog.Fatalf("加载配置失败: %v", err)
	}
	logger.Init(logger.Config(cfg.Logger))
	logger.SetupHertz()
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitProvider(ctx, cfg.Tracing)
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()

	// 模型只在这里加载一次; 加载或预热失败直接退出
	scoringService, err := processor.NewScoringService(ctx, cfg, processor.WithStorage(storageManager))
	if err != nil {
		glog.Fatalf("初始化评分服务失败: %v", err)
	}
	glog.Infof("评分服务初始化成功, 技能策略: %s", scoringService.Strategy())

	scoreHandler, err := handler.NewScoreHandler(scoringService, cfg.MaxUploadBytes(),
		handler.WithMetrics(metrics.New()))
	if err != nil {
		glog.Fatalf("初始化ScoreHandler失败: %v", err)
	}

	opts := []hertzconfig.Option{
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		// multipart 表单在文件之外还有 JD 文本, 留出 1MB 余量
		server.WithMaxRequestBodySize(cfg.MaxUploadBytes() + 1<<20),
	}
	var serverTracing *hertztracing.Config
	if cfg.Tracing.Enabled {
		tracer, tracingCfg := hertztracing.NewServerTracer()
		opts = append(opts, tracer)
		serverTracing = tracingCfg
	}

	h := server.New(opts...)
	if serverTracing != nil {
		h.Use(hertztracing.ServerMiddleware(serverTracing))
	}
	router.RegisterRoutes(h, scoreHandler)
	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)

	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		glog.Errorf("关闭链路追踪失败: %v", err)
	}
	glog.Info("优雅退出完成")
}
