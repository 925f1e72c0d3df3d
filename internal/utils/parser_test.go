package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/moodpick/internal/model"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json 代码块", "```json\n[\"a\",\"b\"]\n```", `["a","b"]`},
		{"无语言名", "```\n[\"a\"]\n```", `["a"]`},
		{"大写语言名", "```JSON\n[\"a\"]\n```", `["a"]`},
		{"语言名后直接是数组", "```json[\"a\"]```", `["a"]`},
		{"没有代码块", `  ["a"]  `, `["a"]`},
		{"只有结尾标记", "[\"a\"]\n```", `["a"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}

func TestParseTagArray(t *testing.T) {
	tags, err := ParseTagArray("```json\n[\"a\",\"b\"]\n```")
	require.NoError(t, err)
	assert.Equal(t, model.Tags{"a", "b"}, tags)

	tags, err = ParseTagArray("```\n[\"a\"]\n```")
	require.NoError(t, err)
	assert.Equal(t, model.Tags{"a"}, tags)

	tags, err = ParseTagArray(`["잔잔한", "감동"]`)
	require.NoError(t, err)
	assert.Equal(t, model.Tags{"잔잔한", "감동"}, tags)
}

func TestParseTagArray_Invalid(t *testing.T) {
	for _, in := range []string{"not json", `{"tags":["a"]}`, `[1, 2]`, ""} {
		tags, err := ParseTagArray(in)
		assert.Error(t, err, in)
		assert.Empty(t, tags, in)
	}
}

func TestParseTagArray_Null(t *testing.T) {
	tags, err := ParseTagArray("null")
	require.NoError(t, err)
	assert.NotNil(t, tags)
	assert.Empty(t, tags)
}
