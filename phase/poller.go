// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package phase

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultPollInterval matches the countdown refresh of the web client.
const DefaultPollInterval = time.Second

// Poller periodically feeds the clock into a Latch and reports transitions.
type Poller struct {
	clock    clockwork.Clock
	latch    *Latch
	interval time.Duration
	onChange func(Phase)
}

func NewPoller(clock clockwork.Clock, latch *Latch, interval time.Duration, onChange func(Phase)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{clock: clock, latch: latch, interval: interval, onChange: onChange}
}

// Run blocks until ctx is cancelled. onChange runs on the poller's
// goroutine, once per forward transition.
func (p *Poller) Run(ctx context.Context) {
	last := p.latch.Observe(p.clock.Now())

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.Chan():
			current := p.latch.Observe(now)
			if current == last {
				continue
			}
			slog.Info("event phase changed", "from", last, "to", current)
			last = current
			if p.onChange != nil {
				p.onChange(current)
			}
		}
	}
}
