package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/LugiaKB/cinemind-backend/pkg/config"
	"github.com/LugiaKB/cinemind-backend/pkg/metrics"
)

// NewOracle builds the configured provider wrapped with a per-call timeout,
// a circuit breaker and request metrics.
func NewOracle(ctx context.Context, cfg config.OracleConfig, logger *zap.Logger) (Oracle, error) {
	providerCfg := &Config{
		Endpoint:  cfg.BaseURL,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		MaxTokens: cfg.MaxTokens,
	}

	var (
		inner Oracle
		err   error
	)
	switch cfg.Provider {
	case ProviderGemini:
		inner, err = NewGeminiOracle(ctx, providerCfg, logger)
	case ProviderOpenAI:
		inner, err = NewOpenAIOracle(providerCfg, logger)
	case ProviderAnthropic:
		inner, err = NewAnthropicOracle(providerCfg, logger)
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s oracle: %w", cfg.Provider, err)
	}

	return NewGuardedOracle(inner,
		NewCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerResetAfter),
		cfg.Timeout, logger), nil
}

// GuardedOracle decorates an Oracle with a deadline, a breaker and metrics.
type GuardedOracle struct {
	inner   Oracle
	breaker *CircuitBreaker
	timeout time.Duration
	logger  *zap.Logger
}

var _ Oracle = (*GuardedOracle)(nil)

// NewGuardedOracle wraps inner. A zero timeout leaves the caller's deadline alone.
func NewGuardedOracle(inner Oracle, breaker *CircuitBreaker, timeout time.Duration, logger *zap.Logger) *GuardedOracle {
	return &GuardedOracle{
		inner:   inner,
		breaker: breaker,
		timeout: timeout,
		logger:  logger.Named("oracle"),
	}
}

func (g *GuardedOracle) GenerateJSON(ctx context.Context, req *JSONRequest) (string, error) {
	if err := g.breaker.Allow(); err != nil {
		metrics.RecordOracleRequest(g.inner.Provider(), err)
		g.logger.Warn("Oracle circuit open, skipping call",
			zap.String("provider", g.inner.Provider()))
		return "", err
	}

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	out, err := g.inner.GenerateJSON(callCtx, req)
	switch {
	case err == nil:
		g.breaker.Record(nil)
	case countsAsFailure(ctx, err):
		g.breaker.Record(err)
		if g.breaker.State() == CircuitOpen {
			g.logger.Error("Oracle circuit opened",
				zap.String("provider", g.inner.Provider()),
				zap.Int("consecutive_failures", g.breaker.ConsecutiveFailures()))
		}
	default:
		// Cancelled or rejected calls must not leave a probe in flight.
		g.breaker.Release()
	}
	metrics.RecordOracleRequest(g.inner.Provider(), err)
	return out, err
}

func (g *GuardedOracle) Provider() string { return g.inner.Provider() }

func (g *GuardedOracle) Model() string { return g.inner.Model() }
