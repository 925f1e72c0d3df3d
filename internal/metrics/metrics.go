// Package metrics 服务的 Prometheus 指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TagExtractionsTotal 标签提取结果，outcome: ok / empty / malformed / call_failed
	TagExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodpick_tag_extractions_total",
			Help: "Tag extraction calls by purpose and outcome",
		},
		[]string{"purpose", "outcome"},
	)

	// RecommendationsTotal 推荐请求结果，result: ok / no_match / error
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodpick_recommendations_total",
			Help: "Recommendation requests by result",
		},
		[]string{"result"},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moodpick_recommend_duration_seconds",
			Help:    "End-to-end recommendation latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
	)

	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodpick_llm_requests_total",
			Help: "Text generation calls by provider and status",
		},
		[]string{"provider", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodpick_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
)

// RecordTagExtraction 记录一次标签提取
func RecordTagExtraction(purpose, outcome string) {
	TagExtractionsTotal.WithLabelValues(purpose, outcome).Inc()
}

// RecordRecommendation 记录一次推荐请求及耗时
func RecordRecommendation(result string, elapsed time.Duration) {
	RecommendationsTotal.WithLabelValues(result).Inc()
	RecommendDuration.Observe(elapsed.Seconds())
}

// RecordLLMRequest 记录一次文本生成调用
func RecordLLMRequest(provider string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	LLMRequestsTotal.WithLabelValues(provider, status).Inc()
}
