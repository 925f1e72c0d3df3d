package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTagExtraction(t *testing.T) {
	before := testutil.ToFloat64(TagExtractionsTotal.WithLabelValues("query", "malformed"))
	RecordTagExtraction("query", "malformed")
	assert.Equal(t, before+1, testutil.ToFloat64(TagExtractionsTotal.WithLabelValues("query", "malformed")))
}

func TestRecordLLMRequest(t *testing.T) {
	okBefore := testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("openai", "ok"))
	errBefore := testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("openai", "error"))

	RecordLLMRequest("openai", nil)
	RecordLLMRequest("openai", errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("openai", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("openai", "error")))
}

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(RecommendationsTotal.WithLabelValues("no_match"))
	RecordRecommendation("no_match", 20*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(RecommendationsTotal.WithLabelValues("no_match")))
}
