package llm

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerConfig 熔断参数
type BreakerConfig struct {
	MaxFailures uint32        // 连续失败多少次后熔断
	Timeout     time.Duration // 熔断后多久进入半开
}

// breakerGenerator 带熔断的 Generator，熔断打开时直接返回 gobreaker.ErrOpenState
type breakerGenerator struct {
	next Generator
	cb   *gobreaker.CircuitBreaker[string]
}

// WithBreaker 用熔断器包装 Generator
func WithBreaker(next Generator, name string, cfg BreakerConfig, logger zerolog.Logger) Generator {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		// 调用方取消不算上游故障
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("[LLM] 熔断器状态变化")
		},
	}

	return &breakerGenerator{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[string](settings),
	}
}

func (b *breakerGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	return b.cb.Execute(func() (string, error) {
		return b.next.Generate(ctx, system, user)
	})
}
