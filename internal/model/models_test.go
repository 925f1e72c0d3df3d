package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTags_JoinSplitRoundTrip(t *testing.T) {
	tags := Tags{"힐링", "감동"}

	joined := tags.Join()
	assert.Equal(t, "힐링, 감동", joined)
	assert.Equal(t, tags, SplitTags(joined))
}

func TestSplitTags_Empty(t *testing.T) {
	assert.Empty(t, SplitTags(""))
	assert.Equal(t, "", Tags(nil).Join())
}

func TestTags_Intersects(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Tags
		match bool
	}{
		{"共同标签", Tags{"감동", "가족"}, Tags{"공포", "가족"}, true},
		{"无共同标签", Tags{"감동"}, Tags{"공포"}, false},
		{"词形不同不算相同", Tags{"감동"}, Tags{"감동적인"}, false},
		{"空查询不匹配", Tags{}, Tags{"감동"}, false},
		{"空文档不匹配", Tags{"감동"}, SplitTags(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.match, tt.a.Intersects(tt.b))
		})
	}
}

func TestReleaseYearFromDate(t *testing.T) {
	assert.Equal(t, "2019", ReleaseYearFromDate("2019-05-30"))
	assert.Equal(t, UnknownYear, ReleaseYearFromDate(""))
}
