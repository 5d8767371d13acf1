package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-storefront-checkout/internal/handlers"
)

// minSweepEvery bounds how often the registry is scanned for short idle
// windows.
const minSweepEvery = time.Second

// sweepSessions evicts sessions idle for longer than idle, together with
// their checkout flows, until ctx is done.
func sweepSessions(ctx context.Context, deps handlers.HandlerConfig, idle time.Duration, log *zap.Logger) {
	every := idle / 4
	if every < minSweepEvery {
		every = minSweepEvery
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted := deps.Sessions.Sweep(idle)
			if len(evicted) == 0 {
				continue
			}
			deps.Checkout.Forget(evicted...)
			log.Info("evicted idle sessions",
				zap.Int("evicted", len(evicted)),
				zap.Int("live", deps.Sessions.Len()))
		}
	}
}
