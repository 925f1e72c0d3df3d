// Package llm 文本生成服务客户端
package llm

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Generator 文本生成：system 为角色设定，user 为具体请求
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// ErrEmptyResponse 上游返回了空内容
var ErrEmptyResponse = errors.New("llm: empty response")

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
