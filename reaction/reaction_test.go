// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reaction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/partyplanner/apperr"
	"github.com/danielhkuo/partyplanner/content"
	"github.com/danielhkuo/partyplanner/db"
	"github.com/danielhkuo/partyplanner/docstore"
)

type client struct {
	feedback   *content.Store[content.Feedback]
	aggregator *Aggregator
}

func newClient(docs docstore.Store) client {
	fb := content.NewStore(content.FeedbackKind(), docs, clockwork.NewRealClock(), time.Second)
	return client{feedback: fb, aggregator: NewAggregator(docs, fb, time.Second)}
}

func seedFeedback(t *testing.T, docs docstore.Store) (client, string) {
	t.Helper()
	c := newClient(docs)
	rec, err := c.feedback.Create(context.Background(), content.Feedback{Name: "Al", Message: "great"}, content.Actor{UserID: "user_1_al0000000"})
	require.NoError(t, err)
	return c, rec.ID
}

func TestReact_BumpsLocalTally(t *testing.T) {
	docs := docstore.NewMemoryStore()
	c, id := seedFeedback(t, docs)
	ctx := context.Background()

	before := c.feedback.Cached()[0]

	n, err := c.aggregator.React(ctx, id, "🎉")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = c.aggregator.React(ctx, id, "🎉")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n, "clicks are not toggles")

	assert.Zero(t, before.Payload.Reactions["🎉"], "earlier snapshots are not mutated")

	listed, err := c.feedback.List(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, listed[0].Payload.Reactions["🎉"])
}

func TestReact_UnsupportedEmoji(t *testing.T) {
	c, id := seedFeedback(t, docstore.NewMemoryStore())

	_, err := c.aggregator.React(context.Background(), id, "💩")
	assert.True(t, apperr.Has(err, apperr.CodeValidation))
}

func TestReact_MissingRecord(t *testing.T) {
	c, _ := seedFeedback(t, docstore.NewMemoryStore())

	_, err := c.aggregator.React(context.Background(), "ghost", "👍")
	assert.True(t, apperr.Has(err, apperr.CodeNotFound))
}

type brokenIncrement struct{ docstore.Store }

func (brokenIncrement) Increment(context.Context, string, string, string, int64) error {
	return errors.New("connection reset")
}

func TestReact_BackendFailureIsSilentNoOp(t *testing.T) {
	docs := docstore.NewMemoryStore()
	c, id := seedFeedback(t, docs)
	ctx := context.Background()

	_, err := c.aggregator.React(ctx, id, "👍")
	require.NoError(t, err)

	broken := NewAggregator(brokenIncrement{docs}, c.feedback, time.Second)
	n, err := broken.React(ctx, id, "👍")
	assert.NoError(t, err)
	assert.EqualValues(t, 1, n, "prior count is kept")
}

func TestReact_ConcurrentClientsLoseNothing(t *testing.T) {
	conn, err := db.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, db.CreateSchema(conn))

	backends := map[string]docstore.Store{
		"memory": docstore.NewMemoryStore(),
		"sqlite": docstore.NewSQLStore(conn, docstore.DialectSQLite),
	}

	for name, docs := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			a, id := seedFeedback(t, docs)

			// Pre-existing count
			for i := 0; i < 3; i++ {
				_, err := a.aggregator.React(ctx, id, "❤️")
				require.NoError(t, err)
			}

			b := newClient(docs)
			_, err := b.feedback.List(ctx)
			require.NoError(t, err)

			const perClient = 25
			var wg sync.WaitGroup
			for _, c := range []client{a, b} {
				wg.Add(1)
				go func(c client) {
					defer wg.Done()
					for i := 0; i < perClient; i++ {
						_, err := c.aggregator.React(ctx, id, "❤️")
						assert.NoError(t, err)
					}
				}(c)
			}
			wg.Wait()

			listed, err := newClient(docs).feedback.List(ctx)
			require.NoError(t, err)
			require.Len(t, listed, 1)
			assert.EqualValues(t, 3+2*perClient, listed[0].Payload.Reactions["❤️"])
		})
	}
}
