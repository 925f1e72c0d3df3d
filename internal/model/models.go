package model

import "strings"

// TagSeparator 标签在元数据中拼接/拆分时使用的分隔符
const TagSeparator = ", "

// Tags 情绪标签序列，词表不固定，只按字符串完全相等比较
type Tags []string

// Join 用 ", " 拼接标签
func (t Tags) Join() string {
	return strings.Join(t, TagSeparator)
}

// Intersects 判断两组标签是否至少有一个相同元素（任一为空时返回 false）
func (t Tags) Intersects(other Tags) bool {
	if len(t) == 0 || len(other) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(t))
	for _, tag := range t {
		set[tag] = struct{}{}
	}
	for _, tag := range other {
		if _, ok := set[tag]; ok {
			return true
		}
	}
	return false
}

// SplitTags 按 ", " 拆分元数据中的标签字符串，空串得到空集合
func SplitTags(joined string) Tags {
	if joined == "" {
		return Tags{}
	}
	return Tags(strings.Split(joined, TagSeparator))
}

// DocumentMetadata 索引文档的结构化元数据
type DocumentMetadata struct {
	Title      string `json:"title"`
	Year       string `json:"year"`
	MoodLabels string `json:"mood_labels"`
}

// Tags 还原元数据中的标签集合
func (m DocumentMetadata) Tags() Tags {
	return SplitTags(m.MoodLabels)
}

// IndexedDocument 可写入向量索引的文档，Body 即被向量化的文本
type IndexedDocument struct {
	Body     string           `json:"body"`
	Metadata DocumentMetadata `json:"metadata"`
}

// ScoredDocument 带相似度分数的文档
type ScoredDocument struct {
	Body     string           `json:"body"`
	Metadata DocumentMetadata `json:"metadata"`
	Score    float64          `json:"score"`
}
