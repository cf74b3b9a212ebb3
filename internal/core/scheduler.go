package core

// scheduler.go runs periodic integrity checks over every kind. A failed
// check is logged and retried on the next tick; it never stops the server.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultVerifyInterval is used when VerifyConfig.Interval is zero.
const DefaultVerifyInterval = time.Hour

// VerifyConfig holds configuration for the verify scheduler.
type VerifyConfig struct {
	Interval time.Duration // How often to run (default: 1h)
}

// StartVerifyScheduler checks every forest immediately, then on each
// Interval until ctx is cancelled.
func (s *Service) StartVerifyScheduler(ctx context.Context, cfg VerifyConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultVerifyInterval
	}
	slog.Info("verify scheduler started", "interval", cfg.Interval.String(), "kinds", len(s.order))

	s.runVerifyJob(ctx)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("verify scheduler stopped")
			return
		case <-ticker.C:
			s.runVerifyJob(ctx)
		}
	}
}

// runVerifyJob performs one pass and returns the number of invalid kinds.
func (s *Service) runVerifyJob(ctx context.Context) int {
	start := time.Now()
	reports, err := s.VerifyAll(ctx)
	if err != nil {
		slog.Error("verify failed", "error", err)
		return 0
	}

	invalid := 0
	for _, r := range reports {
		if r.Valid {
			continue
		}
		invalid++
		slog.Warn("nested set invariants violated",
			"kind", r.Kind,
			"violations", len(r.Violations),
			"first", r.Violations[0].String(),
		)
	}

	slog.Info("verify job completed",
		"kinds", len(reports),
		"invalid", invalid,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return invalid
}
