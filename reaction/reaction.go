// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reaction

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/danielhkuo/partyplanner/apperr"
	"github.com/danielhkuo/partyplanner/content"
	"github.com/danielhkuo/partyplanner/docstore"
)

// Allowed is the set of reaction emoji offered under each feedback message.
var Allowed = []string{"👍", "❤️", "🎉"}

// Aggregator applies reaction clicks. Anyone may react to anything,
// including their own messages; each click is exactly one increment.
type Aggregator struct {
	docs     docstore.Store
	feedback *content.Store[content.Feedback]
	timeout  time.Duration
}

func NewAggregator(docs docstore.Store, feedback *content.Store[content.Feedback], timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = content.DefaultTimeout
	}
	return &Aggregator{docs: docs, feedback: feedback, timeout: timeout}
}

// React increments the emoji tally of a feedback record on the backend and
// returns the locally displayed count. A backend failure other than a
// missing record is a silent no-op: the prior count is returned and the
// discrepancy lasts until the next List.
func (a *Aggregator) React(ctx context.Context, recordID, emoji string) (int64, error) {
	if !slices.Contains(Allowed, emoji) {
		return 0, apperr.Validation("unsupported reaction: " + emoji)
	}

	prior := a.count(recordID, emoji)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	err := a.docs.Increment(ctx, content.FeedbackCollection, recordID, content.ReactionsField+"."+emoji, 1)
	if errors.Is(err, docstore.ErrNotFound) {
		return prior, apperr.NotFound("feedback not found")
	}
	if err != nil {
		slog.Warn("reaction failed", "feedback_id", recordID, "emoji", emoji, "error", err)
		return prior, nil
	}

	rec, ok := a.feedback.Bump(recordID, func(f content.Feedback) content.Feedback {
		// Copy so snapshots handed out earlier never change underneath
		f.Reactions = maps.Clone(f.Reactions)
		if f.Reactions == nil {
			f.Reactions = map[string]int64{}
		}
		f.Reactions[emoji]++
		return f
	})
	if !ok {
		return prior + 1, nil
	}
	return rec.Payload.Reactions[emoji], nil
}

func (a *Aggregator) count(recordID, emoji string) int64 {
	rec, ok := a.feedback.Find(recordID)
	if !ok {
		return 0
	}
	return rec.Payload.Reactions[emoji]
}
