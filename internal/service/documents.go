package service

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/user/moodpick/internal/model"
)

// BuildStats 文档构建统计
type BuildStats struct {
	Input             int
	Documents         int
	Duplicates        int
	SkippedNoOverview int
}

// LoadCatalog 读取抓取脚本输出的 JSON 数组
func LoadCatalog(path string) ([]model.MovieRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取目录文件失败: %w", err)
	}

	var records []model.MovieRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("解析目录文件 %s 失败: %w", path, err)
	}
	return records, nil
}

// DocumentKey 去重键 (title, year)
func DocumentKey(title, year string) string {
	return fmt.Sprintf("%s (%s)", title, year)
}

// DocumentBody 被向量化的正文，三行固定格式
func DocumentBody(title, year, overview string, tags model.Tags) string {
	return fmt.Sprintf("[제목] %s (%s)\n[줄거리] %s\n[분위기 태그] %s", title, year, overview, tags.Join())
}

// BuildDocuments 过滤无简介记录，按 (title, year) 去重（保留首次出现），生成索引文档
func BuildDocuments(records []model.MovieRecord) ([]model.IndexedDocument, BuildStats) {
	stats := BuildStats{Input: len(records)}
	docs := make([]model.IndexedDocument, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for _, r := range records {
		if strings.TrimSpace(r.Overview) == "" {
			stats.SkippedNoOverview++
			continue
		}

		title := r.Title
		if title == "" {
			title = model.UntitledMovie
		}
		year := r.ReleaseYear
		if year == "" {
			year = model.UnknownYear
		}

		key := DocumentKey(title, year)
		if _, dup := seen[key]; dup {
			stats.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		docs = append(docs, model.IndexedDocument{
			Body: DocumentBody(title, year, r.Overview, r.MoodLabels),
			Metadata: model.DocumentMetadata{
				Title:      title,
				Year:       year,
				MoodLabels: r.MoodLabels.Join(),
			},
		})
	}

	stats.Documents = len(docs)
	return docs, stats
}

// InspectReport 索引内容检查结果
type InspectReport struct {
	Documents  int
	UniqueKeys int
	Duplicates map[string]int
	Samples    []model.DocumentMetadata
}

// InspectDocuments 统计文档数、唯一 (title, year) 数、重复项，并取前 5 条样本
func InspectDocuments(metadatas []model.DocumentMetadata) InspectReport {
	counts := make(map[string]int, len(metadatas))
	for _, m := range metadatas {
		counts[DocumentKey(m.Title, m.Year)]++
	}

	report := InspectReport{
		Documents:  len(metadatas),
		UniqueKeys: len(counts),
		Duplicates: map[string]int{},
	}
	for k, n := range counts {
		if n > 1 {
			report.Duplicates[k] = n
		}
	}
	for i, m := range metadatas {
		if i >= 5 {
			break
		}
		report.Samples = append(report.Samples, m)
	}
	return report
}
