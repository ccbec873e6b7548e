// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/partyplanner/apperr"
	"github.com/danielhkuo/partyplanner/blobstore"
	"github.com/danielhkuo/partyplanner/content"
	"github.com/danielhkuo/partyplanner/docstore"
	"github.com/danielhkuo/partyplanner/phase"
	"github.com/danielhkuo/partyplanner/privilege"
	"github.com/danielhkuo/partyplanner/reaction"
	"github.com/danielhkuo/partyplanner/upload"
)

var ErrClosed = errors.New("session closed")

// Config is shared by every session of a process.
type Config struct {
	EventStart   time.Time
	Docs         docstore.Store
	Blobs        blobstore.Store
	Clock        clockwork.Clock
	Timeout      time.Duration
	PollInterval time.Duration
}

// View is everything the rendering surface needs after a full reload.
// Sections the phase does not expose yet are nil. Stale names sections
// whose reload failed; their last known list is shown instead.
type View struct {
	UserID             string
	Phase              phase.Phase
	Privileged         bool
	PrivilegeExpiresAt time.Time
	Items              []content.Record[content.Item]
	Photos             []content.Record[content.Photo]
	Feedback           []content.Record[content.Feedback]
	Stale              []string
}

// Status is the cheap part of View that needs no backend call.
type Status struct {
	UserID             string
	Phase              phase.Phase
	EventStart         time.Time
	Privileged         bool
	PrivilegeExpiresAt time.Time
}

type reply struct {
	value any
	err   error
}

type request struct {
	ctx    context.Context
	intent Intent
	ack    chan reply
}

func (r *request) reply(v any, err error) {
	r.ack <- reply{value: v, err: err}
}

// Session is the explicit context of one client: its identity, privilege
// window, phase latch and content caches. Intents are handled one at a
// time by the session loop; uploads and reactions finish on their own
// goroutines so the loop can reject a duplicate upload meanwhile.
type Session struct {
	userID string
	cfg    Config

	window    *privilege.Window
	latch     *phase.Latch
	items     *content.Store[content.Item]
	photos    *content.Store[content.Photo]
	feedback  *content.Store[content.Feedback]
	uploads   *upload.Coordinator
	reactions *reaction.Aggregator
	notifier  *Notifier

	requests chan *request
	quit     chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
	wg        sync.WaitGroup

	lastSeen atomic.Int64
}

// New starts a session for userID. Close must be called to stop its timers.
func New(userID string, cfg Config) *Session {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = content.DefaultTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		userID:   userID,
		cfg:      cfg,
		latch:    phase.NewLatch(cfg.EventStart),
		notifier: NewNotifier(),
		requests: make(chan *request, 64),
		quit:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.items = content.NewStore(content.ItemKind(), cfg.Docs, cfg.Clock, cfg.Timeout)
	s.photos = content.NewStore(content.PhotoKind(cfg.Blobs), cfg.Docs, cfg.Clock, cfg.Timeout)
	s.feedback = content.NewStore(content.FeedbackKind(), cfg.Docs, cfg.Clock, cfg.Timeout)
	s.uploads = upload.NewCoordinator(cfg.Blobs, s.photos, cfg.Timeout)
	s.reactions = reaction.NewAggregator(cfg.Docs, s.feedback, cfg.Timeout)
	s.window = privilege.NewWindow(cfg.Clock, privilege.Options{
		OnChange: s.privilegeChanged,
		OnExpire: s.privilegeExpired,
	})
	s.touch()

	s.spawn(s.loop)
	poller := phase.NewPoller(cfg.Clock, s.latch, cfg.PollInterval, func(p phase.Phase) {
		s.notifier.Publish(Event{Type: EventPhaseChanged, Phase: p, Privileged: s.window.IsActive()})
	})
	s.spawn(func() { poller.Run(ctx) })

	slog.Info("session started", "user_id", userID)
	return s
}

func (s *Session) UserID() string { return s.userID }

func (s *Session) Notifier() *Notifier { return s.notifier }

// Status observes the clock and reports phase and privilege.
func (s *Session) Status() Status {
	return Status{
		UserID:             s.userID,
		Phase:              s.latch.Observe(s.cfg.Clock.Now()),
		EventStart:         s.cfg.EventStart,
		Privileged:         s.window.IsActive(),
		PrivilegeExpiresAt: s.window.ExpiresAt(),
	}
}

func (s *Session) touch() {
	s.lastSeen.Store(s.cfg.Clock.Now().UnixNano())
}

// IdleFor reports how long ago the session last handled an intent.
func (s *Session) IdleFor() time.Duration {
	return s.cfg.Clock.Since(time.Unix(0, s.lastSeen.Load()))
}

// spawn runs fn on a goroutine that Close waits for. It refuses once the
// session is closed.
func (s *Session) spawn(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
	return true
}

// Dispatch queues an intent and waits for its outcome.
func (s *Session) Dispatch(ctx context.Context, in Intent) (any, error) {
	s.touch()
	req := &request{ctx: ctx, intent: in, ack: make(chan reply, 1)}

	select {
	case s.requests <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.quit:
		return nil, ErrClosed
	}

	select {
	case r := <-req.ack:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.quit:
		return nil, ErrClosed
	}
}

func (s *Session) loop() {
	for {
		select {
		case <-s.quit:
			return
		case req := <-s.requests:
			s.handle(req)
		}
	}
}

// actor is built at the moment of each mutation so a lapsed window no
// longer counts.
func (s *Session) actor() content.Actor {
	return content.Actor{UserID: s.userID, Privileged: s.window.IsActive()}
}

func gate(current, needed phase.Phase, section string) error {
	if current < needed {
		return apperr.PhaseGated(section + " is not open yet")
	}
	return nil
}

func (s *Session) handle(req *request) {
	current := s.latch.Observe(s.cfg.Clock.Now())
	ctx := req.ctx

	switch in := req.intent.(type) {
	case ListAll:
		req.reply(s.listAll(ctx, current), nil)

	case reloadAll:
		req.reply(s.listAll(ctx, current), nil)

	case Tap:
		req.reply(s.window.Tap(), nil)

	case CreateItem:
		if current != phase.Upcoming {
			req.reply(nil, apperr.PhaseGated("the bring-list is closed"))
			return
		}
		rec, err := s.items.Create(ctx, in.Item, s.actor())
		req.reply(rec, err)

	case DeleteItem:
		actor := s.actor()
		if current != phase.Upcoming && !actor.Privileged {
			req.reply(nil, apperr.PhaseGated("the bring-list is closed"))
			return
		}
		err := s.items.Delete(ctx, in.ID, actor)
		s.refreshOnNotFound(ctx, err, s.items.Reload)
		req.reply(nil, err)

	case UploadPhotos:
		if err := gate(current, phase.Started, "photos"); err != nil {
			req.reply(nil, err)
			return
		}
		actor := s.actor()
		if !s.spawn(func() {
			req.reply(s.uploads.SubmitBatch(ctx, in.Files, actor, in.UploaderName), nil)
		}) {
			req.reply(nil, ErrClosed)
		}

	case DeletePhoto:
		if err := gate(current, phase.Started, "photos"); err != nil {
			req.reply(nil, err)
			return
		}
		err := s.photos.Delete(ctx, in.ID, s.actor())
		s.refreshOnNotFound(ctx, err, s.photos.Reload)
		req.reply(nil, err)

	case CreateFeedback:
		if err := gate(current, phase.FeedbackOpen, "feedback"); err != nil {
			req.reply(nil, err)
			return
		}
		rec, err := s.feedback.Create(ctx, in.Feedback, s.actor())
		req.reply(rec, err)

	case UpdateFeedback:
		if err := gate(current, phase.FeedbackOpen, "feedback"); err != nil {
			req.reply(nil, err)
			return
		}
		rec, err := s.feedback.Update(ctx, in.ID, content.Feedback{Message: in.Message}, s.actor())
		s.refreshOnNotFound(ctx, err, s.feedback.Reload)
		req.reply(rec, err)

	case DeleteFeedback:
		if err := gate(current, phase.FeedbackOpen, "feedback"); err != nil {
			req.reply(nil, err)
			return
		}
		err := s.feedback.Delete(ctx, in.ID, s.actor())
		s.refreshOnNotFound(ctx, err, s.feedback.Reload)
		req.reply(nil, err)

	case React:
		if err := gate(current, phase.FeedbackOpen, "feedback"); err != nil {
			req.reply(nil, err)
			return
		}
		if !s.spawn(func() {
			n, err := s.reactions.React(ctx, in.FeedbackID, in.Emoji)
			req.reply(n, err)
		}) {
			req.reply(nil, ErrClosed)
		}

	default:
		req.reply(nil, fmt.Errorf("unknown intent %T", req.intent))
	}
}

// refreshOnNotFound reloads a section whose cache referenced a record that
// no longer exists.
func (s *Session) refreshOnNotFound(ctx context.Context, err error, reload func(context.Context) error) {
	if !apperr.Has(err, apperr.CodeNotFound) {
		return
	}
	if rerr := reload(ctx); rerr != nil {
		slog.Warn("refresh after stale cache failed", "user_id", s.userID, "error", rerr)
	}
}

func (s *Session) listAll(ctx context.Context, current phase.Phase) View {
	v := View{
		UserID:             s.userID,
		Phase:              current,
		Privileged:         s.window.IsActive(),
		PrivilegeExpiresAt: s.window.ExpiresAt(),
	}

	var err error
	if v.Items, err = s.items.List(ctx); err != nil {
		v.Stale = append(v.Stale, "items")
	}
	if current >= phase.Started {
		if v.Photos, err = s.photos.List(ctx); err != nil {
			v.Stale = append(v.Stale, "photos")
		}
	}
	if current >= phase.FeedbackOpen {
		if v.Feedback, err = s.feedback.List(ctx); err != nil {
			v.Stale = append(v.Stale, "feedback")
		}
	}
	return v
}

func (s *Session) privilegeChanged(active bool) {
	s.notifier.Publish(Event{Type: EventPrivilegeChanged, Privileged: active, Phase: s.latch.Phase()})
}

// privilegeExpired reloads every section before telling subscribers to
// reload, so nothing rendered under privilege survives.
func (s *Session) privilegeExpired() {
	s.spawn(func() {
		ctx, cancel := context.WithTimeout(s.ctx, s.cfg.Timeout)
		defer cancel()
		if _, err := s.Dispatch(ctx, reloadAll{}); err != nil {
			slog.Warn("reload after privilege expiry failed", "user_id", s.userID, "error", err)
		}
		s.notifier.Publish(Event{Type: EventReload, Phase: s.latch.Phase()})
	})
}

// Close stops the privilege timer, the phase poller and the loop, and ends
// every subscription.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.window.Close()
		s.cancel()
		close(s.quit)
		s.wg.Wait()
		s.notifier.closeAll()
		slog.Info("session closed", "user_id", s.userID)
	})
}
