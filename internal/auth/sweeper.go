// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/tenantry/tenantry/pkg/errutil"
)

// ExpiredSessionSweeper deletes expired sessions.
type ExpiredSessionSweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// Sweeper periodically reclaims expired session rows.
type Sweeper struct {
	target   ExpiredSessionSweeper
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper creates a Sweeper running target every interval.
func NewSweeper(target ExpiredSessionSweeper, interval time.Duration, logger *slog.Logger) (*Sweeper, error) {
	if target == nil {
		return nil, oops.Code("SWEEPER_INVALID_TARGET").Errorf("sweep target is required")
	}
	if interval <= 0 {
		return nil, oops.Code("SWEEPER_INVALID_INTERVAL").With("interval", interval).Errorf("interval must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{target: target, interval: interval, logger: logger}, nil
}

// RunOnce executes a single sweep.
func (w *Sweeper) RunOnce(ctx context.Context) {
	n, err := w.target.Sweep(ctx)
	if err != nil {
		errutil.LogErrorContext(ctx, w.logger, "session sweep failed", err)
		return
	}
	if n > 0 {
		w.logger.InfoContext(ctx, "swept expired sessions", "count", n)
	}
}

// Start begins periodic sweeping. The first sweep runs immediately.
func (w *Sweeper) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop stops the sweeper and waits for the running sweep to finish.
func (w *Sweeper) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Sweeper) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}
