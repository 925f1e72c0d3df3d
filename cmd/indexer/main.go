// indexer 从目录文件构建向量索引，也可检查或试查询已有索引
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/user/moodpick/internal/app"
	"github.com/user/moodpick/internal/config"
	"github.com/user/moodpick/internal/logging"
	"github.com/user/moodpick/internal/service"
	"github.com/user/moodpick/internal/vectorstore"
)

func main() {
	var (
		catalog = flag.String("catalog", "", "目录文件路径，默认使用 ingest.output")
		inspect = flag.Bool("inspect", false, "只检查已有索引")
		probe   = flag.String("probe", "", "对已有索引做一次相似度查询")
		k       = flag.Int("k", 5, "probe 返回条数")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New(logging.Config{})
		bootLogger.Fatal().Err(err).Msg("配置加载失败")
	}
	logger := logging.Component(logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}), "indexer")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	readOnly := *inspect || *probe != ""
	if err := run(ctx, cfg, readOnly, func(index *vectorstore.Index) error {
		switch {
		case *inspect:
			return runInspect(ctx, index)
		case *probe != "":
			return runProbe(ctx, index, *probe, *k)
		default:
			path := *catalog
			if path == "" {
				path = cfg.Ingest.Output
			}
			return runBuild(ctx, index, path, logger)
		}
	}, logger); err != nil {
		logger.Error().Err(err).Msg("执行失败")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, readOnly bool, fn func(*vectorstore.Index) error, logger zerolog.Logger) error {
	index, err := app.NewIndex(ctx, cfg, readOnly, logger)
	if err != nil {
		return fmt.Errorf("向量索引打开失败: %w", err)
	}
	defer index.Close()
	return fn(index)
}

func runBuild(ctx context.Context, index *vectorstore.Index, path string, logger zerolog.Logger) error {
	records, err := service.LoadCatalog(path)
	if err != nil {
		return err
	}

	docs, stats := service.BuildDocuments(records)
	logger.Info().
		Int("input", stats.Input).
		Int("documents", stats.Documents).
		Int("duplicates", stats.Duplicates).
		Int("skipped_no_overview", stats.SkippedNoOverview).
		Msg("文档整理完成")

	if err := index.Build(ctx, docs); err != nil {
		return fmt.Errorf("构建索引失败: %w", err)
	}
	logger.Info().Str("backend", index.Backend().Name()).Int("documents", len(docs)).Msg("索引构建完成")
	return nil
}

func runInspect(ctx context.Context, index *vectorstore.Index) error {
	_, metas, err := index.GetAll(ctx)
	if err != nil {
		return err
	}

	report := service.InspectDocuments(metas)
	fmt.Printf("documents:   %d\n", report.Documents)
	fmt.Printf("unique keys: %d\n", report.UniqueKeys)

	keys := make([]string, 0, len(report.Duplicates))
	for key := range report.Duplicates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fmt.Printf("duplicates:  %d\n", len(keys))
	for _, key := range keys {
		fmt.Printf("  %s x%d\n", key, report.Duplicates[key])
	}

	fmt.Println("samples:")
	for _, m := range report.Samples {
		fmt.Printf("  %s (%s) [%s]\n", m.Title, m.Year, m.MoodLabels)
	}
	return nil
}

func runProbe(ctx context.Context, index *vectorstore.Index, query string, k int) error {
	results, err := index.SimilaritySearch(ctx, query, k)
	if err != nil {
		return err
	}
	for i, r := range results {
		fmt.Printf("%d. %s (%s) score=%.4f [%s]\n", i+1, r.Metadata.Title, r.Metadata.Year, r.Score, r.Metadata.MoodLabels)
	}
	return nil
}
