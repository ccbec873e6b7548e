// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package phase derives the event lifecycle from the wall clock.

# Phases

	Upcoming      now <  start
	Started       start <= now < start+3h
	FeedbackOpen  now >= start+3h

Current and IsFrozen are pure functions of two instants.

# Latch

A Latch holds the furthest phase a session has seen. Gating always goes
through the latch, so once the bring-list is frozen it stays frozen even if
the clock moves backwards.

# Polling

Poller ticks on a clockwork.Clock and reports forward transitions until its
context is cancelled:

	go phase.NewPoller(clock, latch, time.Second, notify).Run(ctx)
*/
package phase
