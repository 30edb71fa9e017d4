package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-match-go/internal/api/handler"
	"resume-match-go/internal/api/router"
	"resume-match-go/internal/config"
	"resume-match-go/internal/constants"
	"resume-match-go/internal/history"
	applogger "resume-match-go/internal/logger"
	"resume-match-go/internal/outbox"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/scoring"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
)

var version = "1.0.0" //nolint:gochecknoglobals

func main() {
	var configPath string
	var initConfigPath string
	pflag.StringVarP(&configPath, "config", "c", "internal/config/config.yaml", "配置文件路径")
	pflag.StringVar(&initConfigPath, "init-config", "", "在指定路径生成示例配置文件后退出")
	pflag.Parse()

	if initConfigPath != "" {
		if err := config.CreateSampleConfig(initConfigPath); err != nil {
			log.Fatalf("生成示例配置失败: %v", err)
		}
		return
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	applogger.Init(applogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	// Hertz自身的日志走同一个zerolog实例
	glog.SetLogger(hertzadapter.From(applogger.Logger))
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitTracerProvider(ctx, tracing.ProviderConfig{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
		ServiceName: cfg.Tracing.ServiceName,
	})
	if err != nil {
		glog.Fatalf("初始化追踪失败: %v", err)
	}

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	if err := storageManager.RabbitMQ.SetupResumeTopology(); err != nil {
		glog.Fatalf("初始化消息拓扑失败: %v", err)
	}

	// 事务性发件箱的后台投递
	relayLogger := log.New(applogger.Logger, "[MessageRelay] ", log.LstdFlags|log.Lshortfile)
	messageRelay := outbox.NewMessageRelay(storageManager.MySQL.DB(), storageManager.RabbitMQ, relayLogger)
	messageRelay.Start()
	glog.Info("消息中继服务已启动")

	timeline, err := history.NewRedisTimeline(storageManager.Redis.Client, constants.KeyTimelinePrefix, constants.TimelineTTL)
	if err != nil {
		glog.Fatalf("初始化处理时间线失败: %v", err)
	}

	resumeService, err := processor.NewResumeService(cfg, storageManager, &applogger.Logger, processor.WithTimeline(timeline))
	if err != nil {
		glog.Fatalf("初始化简历处理服务失败: %v", err)
	}
	if err := startConsumers(ctx, cfg, storageManager, resumeService); err != nil {
		glog.Fatalf("启动消费者失败: %v", err)
	}

	// API侧与消费侧共用同一套分析流水线组件
	pipeline, err := processor.NewDefaultPipeline(cfg, storageManager, &applogger.Logger)
	if err != nil {
		glog.Fatalf("初始化分析流水线失败: %v", err)
	}

	ranker := scoring.NewRanker(pipeline,
		scoring.WithRankerConfig(scoring.RankerConfig{
			CategoryWeights: cfg.Analysis.RankCategoryWeights,
			Parallelism:     cfg.Analysis.RankParallelism,
		}),
		scoring.WithRankerLogger(applogger.Logger),
	)

	jdLogger := log.New(applogger.Logger, "[JDProcessor] ", log.LstdFlags|log.Lshortfile)
	jdProcessor, err := processor.NewJDProcessor(parser.NewJobAnalyzer(), storageManager, cfg.ActiveParserVersion,
		processor.WithJDProcessorLogger(jdLogger))
	if err != nil {
		glog.Fatalf("初始化JD处理器失败: %v", err)
	}

	resumeHandler := handler.NewResumeHandler(cfg, storageManager, pipeline, timeline)
	jobHandler := handler.NewJobHandler(cfg, storageManager, jdProcessor, ranker)

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		tracer,
		server.WithHostPorts(cfg.Server.Address),
		// 预留1MB给multipart边界等开销
		server.WithMaxRequestBodySize((cfg.Server.MaxUploadSizeMB+1)*1024*1024),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	router.RegisterRoutes(h, cfg, resumeHandler, jobHandler)
	glog.Infof("HTTP服务器启动中 版本:%s 监听地址:%s", version, cfg.Server.Address)

	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	// 先停消费者与中继，再关HTTP服务器
	cancel()
	messageRelay.Stop()
	glog.Info("消息中继服务已停止")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		glog.Warnf("追踪导出器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// startConsumers 拉起上传与分析两组消费者。
// 每个worker持有独立的channel消费同一队列；内容级重复视为正常结束，
// 直接确认避免消息反复重投。
func startConsumers(ctx context.Context, cfg *config.Config, storageManager *storage.Storage, svc processor.ResumeService) error {
	prefetch := cfg.RabbitMQ.PrefetchCount
	if prefetch <= 0 {
		prefetch = 10
	}

	uploadWorkers := 1
	if workers, ok := cfg.RabbitMQ.ConsumerWorkers["upload_consumer_workers"]; ok && workers > 0 {
		uploadWorkers = workers
	}
	analysisWorkers := 1
	if workers, ok := cfg.RabbitMQ.ConsumerWorkers["analysis_consumer_workers"]; ok && workers > 0 {
		analysisWorkers = workers
	}

	handleUpload := func(ctx context.Context, body []byte) bool {
		var message storage.ResumeUploadMessage
		if err := json.Unmarshal(body, &message); err != nil {
			glog.Errorf("解析上传消息失败，丢弃: %v", err)
			return true
		}
		err := svc.ProcessUploadedResume(ctx, message)
		if err != nil && !errors.Is(err, processor.ErrDuplicateContent) {
			glog.Errorf("处理上传消息失败 submission=%s: %v", message.SubmissionUUID, err)
			return false
		}
		return true
	}

	handleAnalysis := func(ctx context.Context, body []byte) bool {
		var message storage.AnalysisTaskMessage
		if err := json.Unmarshal(body, &message); err != nil {
			glog.Errorf("解析分析任务消息失败，丢弃: %v", err)
			return true
		}
		if err := svc.ProcessAnalysisTask(ctx, message); err != nil {
			glog.Errorf("处理分析任务失败 submission=%s: %v", message.SubmissionUUID, err)
			return false
		}
		return true
	}

	for i := 0; i < uploadWorkers; i++ {
		if err := storageManager.RabbitMQ.StartConsumer(ctx, cfg.RabbitMQ.RawResumeQueue, prefetch, handleUpload); err != nil {
			return fmt.Errorf("启动上传消费者失败: %w", err)
		}
	}
	for i := 0; i < analysisWorkers; i++ {
		if err := storageManager.RabbitMQ.StartConsumer(ctx, cfg.RabbitMQ.AnalysisQueue, prefetch, handleAnalysis); err != nil {
			return fmt.Errorf("启动分析消费者失败: %w", err)
		}
	}

	glog.Infof("消费者已启动 上传worker:%d 分析worker:%d 预取:%d", uploadWorkers, analysisWorkers, prefetch)
	return nil
}
