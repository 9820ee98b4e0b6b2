// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package payment

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// Poller re-checks the status of a payment awaiting confirmation at a fixed
// interval.
type Poller struct {
	ctrl     *Controller
	interval time.Duration
	limiter  *rate.Limiter
}

// NewPoller creates a poller. A non-positive interval disables polling.
func NewPoller(ctrl *Controller, interval time.Duration) *Poller {
	p := &Poller{ctrl: ctrl, interval: interval}
	if interval > 0 {
		p.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return p
}

// Interval returns the polling interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Run polls until ctx is cancelled. It returns immediately when polling is
// disabled.
func (p *Poller) Run(ctx context.Context) {
	if p.interval <= 0 {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick performs one quiet status check if the controller is awaiting
// confirmation and the limiter allows it. It reports whether a check ran.
func (p *Poller) Tick(ctx context.Context) bool {
	if p.limiter == nil || !p.ctrl.NeedsPolling() {
		return false
	}
	if !p.limiter.Allow() {
		return false
	}

	err := p.ctrl.checkStatus(ctx, true)
	if err != nil && !errors.Is(err, ErrStatusCheckInFlight) && !errors.Is(err, context.Canceled) {
		p.ctrl.logger.Debug("periodic status check failed", "error", err)
	}
	return !errors.Is(err, ErrStatusCheckInFlight)
}
