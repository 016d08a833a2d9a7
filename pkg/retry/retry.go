// Package retry waits out dependencies that are still starting, such as a
// database container that accepts connections a few seconds after the
// service boots.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config defines retry behavior with exponential backoff
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64 // 0.0-1.0, spreads restarts of several replicas
}

// StartupConfig allows roughly half a minute for a dependency to come up:
// 6 retries from 500ms doubling to an 8s cap, with 10% jitter.
func StartupConfig() *Config {
	return &Config{
		MaxRetries:   6,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     8 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// applyJitter returns delay +/- (delay * jitterFactor * random(-1 to +1)).
func applyJitter(delay time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return delay
	}
	jitter := float64(delay) * jitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}

// Do runs fn until it succeeds, fails permanently, or retries run out.
// Only errors accepted by IsRetryable are retried. The last error is
// returned; a cancelled ctx during a wait returns ctx.Err().
func Do[T any](ctx context.Context, cfg *Config, logger *zap.Logger, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	if cfg == nil {
		cfg = StartupConfig()
	}

	var zero T
	delay := cfg.InitialDelay

	for attempt := 0; ; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				logger.Info("Dependency ready", zap.String("operation", operation), zap.Int("attempts", attempt+1))
			}
			return result, nil
		}
		if attempt >= cfg.MaxRetries || !IsRetryable(err) {
			return zero, err
		}

		wait := applyJitter(delay, cfg.JitterFactor)
		logger.Warn("Dependency not ready, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
}

// IsRetryable reports whether err looks transient: network failures and
// servers that are still starting. Configuration mistakes such as a wrong
// password or an unknown database are permanent.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

var retryablePatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"i/o timeout",
	"timed out",
	"network is unreachable",
	"too many connections",
	"the database system is starting up",
	"the database system is shutting down",
	"loading the dataset in memory", // redis
	"service unavailable",
	"503",
}
