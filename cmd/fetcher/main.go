// fetcher 从 TMDB 抓取电影、打情绪标签并写出目录文件
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/user/moodpick/internal/app"
	"github.com/user/moodpick/internal/config"
	"github.com/user/moodpick/internal/logging"
	"github.com/user/moodpick/internal/service"
)

func main() {
	var (
		out   = flag.String("out", "", "输出文件，默认使用 ingest.output")
		pages = flag.Int("pages", 0, "每个来源抓取的页数，默认使用 ingest.pages")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New(logging.Config{})
		bootLogger.Fatal().Err(err).Msg("配置加载失败")
	}
	logger := logging.Component(logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}), "fetcher")

	if cfg.TMDB.APIKey == "" {
		logger.Fatal().Msg("TMDB_API_KEY 未设置")
	}
	if *out == "" {
		*out = cfg.Ingest.Output
	}
	if *pages <= 0 {
		*pages = cfg.Ingest.Pages
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen, err := app.NewGenerator(cfg.LLM, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("文本生成服务初始化失败")
	}

	tmdb := service.NewTMDBClient(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language, cfg.TMDB.Timeout)
	tagger := service.NewTagExtractor(gen, service.PurposeCatalog, cfg.LLM.Timeout, logger)
	ingest := service.NewIngestService(tmdb, tagger, cfg.Ingest.Throttle, logger)

	records, _, err := ingest.Run(ctx, service.IngestPlan{Pages: *pages, GenreIDs: cfg.Ingest.GenreIDs})
	if err != nil {
		// 中断时仍写出已抓取的部分
		logger.Warn().Err(err).Int("records", len(records)).Msg("抓取中断")
	}
	if err := service.WriteCatalog(*out, records); err != nil {
		logger.Error().Err(err).Msg("写入目录文件失败")
		os.Exit(1)
	}
	logger.Info().Str("path", *out).Int("records", len(records)).Msg("目录文件已写出")
}
