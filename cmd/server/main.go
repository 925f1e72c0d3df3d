package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/user/moodpick/internal/app"
	"github.com/user/moodpick/internal/config"
	"github.com/user/moodpick/internal/handler"
	"github.com/user/moodpick/internal/logging"
	"github.com/user/moodpick/internal/middleware"
	"github.com/user/moodpick/internal/repository"
	"github.com/user/moodpick/internal/router"
	"github.com/user/moodpick/internal/service"
)

func main() {
	// 加载环境变量
	envErr := godotenv.Load()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New(logging.Config{})
		bootLogger.Fatal().Err(err).Msg("配置加载失败")
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if envErr != nil {
		logger.Info().Msg("未找到 .env 文件，使用系统环境变量")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("配置校验失败")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 初始化数据库
	db, err := repository.InitDB(cfg.Database.DSN(), logging.Component(logger, "db"))
	if err != nil {
		logger.Fatal().Err(err).Msg("数据库连接失败")
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	// 初始化仓库
	repos := repository.NewRepositories(db)

	// 向量索引以只读方式打开，重建由 indexer 完成
	index, err := app.NewIndex(ctx, cfg, true, logging.Component(logger, "index"))
	if err != nil {
		logger.Fatal().Err(err).Msg("向量索引打开失败")
	}
	defer index.Close()

	gen, err := app.NewGenerator(cfg.LLM, logging.Component(logger, "llm"))
	if err != nil {
		logger.Fatal().Err(err).Msg("文本生成服务初始化失败")
	}

	lookupCache, closeCache, err := app.NewLookupCache(ctx, cfg.Cache)
	if err != nil {
		logger.Fatal().Err(err).Msg("缓存初始化失败")
	}
	defer closeCache()

	svcLogger := logging.Component(logger, "service")
	queryTagger := service.NewTagExtractor(gen, service.PurposeQuery, cfg.LLM.Timeout, svcLogger)
	catalogTagger := service.NewTagExtractor(gen, service.PurposeCatalog, cfg.LLM.Timeout, svcLogger)
	recommender := service.NewRecommender(
		queryTagger,
		index,
		service.NewNarrator(gen, cfg.LLM.Timeout, svcLogger),
		svcLogger,
	)
	tmdb := service.NewTMDBClient(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language, cfg.TMDB.Timeout)
	lookup := service.NewLookupService(tmdb, catalogTagger, lookupCache, svcLogger)

	// 启动定时清理任务
	service.NewCleanupService(repos.RecommendationLogs, cfg.Retention.LogDays, svcLogger).Start(ctx)

	// 初始化 Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 中间件
	httpLogger := logging.Component(logger, "http")
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(httpLogger))
	r.Use(middleware.Metrics())
	r.Use(middleware.Security())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	// 初始化 Handler
	h := handler.NewHandler(handler.Services{
		Recommender: recommender,
		Lookup:      lookup,
		Logs:        repos.RecommendationLogs,
		Watched:     repos.WatchedMovies,
	}, cfg.Server.LogsLimit, cfg.Cache.ListTTL, httpLogger)

	// 注册路由
	router.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:           ":" + cfg.Server.Port,
		Handler:        r,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("index", index.Backend().Name()).Msg("服务器启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("服务器启动失败")
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	<-ctx.Done()
	logger.Info().Msg("正在关闭服务器...")

	// 5 秒超时上下文用于关闭过程
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("服务器强制关闭")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已退出")
}
