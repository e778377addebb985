package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// WaitConfig bounds one readiness gate.
type WaitConfig struct {
	Timeout  time.Duration
	Interval time.Duration
}

// AwaitReady polls probe until it succeeds or the window closes. A first-try
// success returns without sleeping. After a failure the elapsed time is
// checked against the window; inside it the probe retries every Interval,
// past it the last probe failure is returned wrapped with the window.
// Cancelling ctx between attempts stops the wait.
func AwaitReady(ctx context.Context, name string, probe func(context.Context) error, cfg WaitConfig, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	start := time.Now()
	for attempt := 1; ; attempt++ {
		err := probe(ctx)
		if err == nil {
			log.Debug("store ready",
				zap.String("store", name),
				zap.Int("attempts", attempt),
			)
			return nil
		}

		if time.Since(start) > cfg.Timeout {
			return fmt.Errorf("%s not ready after %s: %w", name, cfg.Timeout, err)
		}
		log.Debug("store not ready, retrying",
			zap.String("store", name),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", name, ctx.Err())
		case <-time.After(cfg.Interval):
		}
	}
}
