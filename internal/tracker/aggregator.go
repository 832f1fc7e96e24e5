// Package tracker turns window manager notifications into activity intervals.
//
// The Aggregator is the only goroutine that touches tracking state. Window
// events and heartbeat ticks reach it through one inbox channel, so the open
// interval, the id counter and the pending new-window marker need no locks.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/actionsum/focuslog/internal/models"
	"github.com/actionsum/focuslog/pkg/window"
)

const inboxSize = 64

// Sink receives every closed interval exactly once, in id order.
type Sink interface {
	Append(iv models.Interval) error
}

// ErrorRecorder stores non-fatal failures for later inspection.
type ErrorRecorder interface {
	RecordError(component string, err error)
}

type Option func(*Aggregator)

// WithHeartbeat sets how long an interval may stay open without being flushed.
func WithHeartbeat(delay time.Duration) Option {
	return func(a *Aggregator) { a.delay = delay }
}

// WithClock replaces time.Now as the source of interval timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithMirror adds a best-effort secondary sink. Its failures are logged and
// recorded but never stop tracking.
func WithMirror(s Sink) Option {
	return func(a *Aggregator) { a.mirrors = append(a.mirrors, s) }
}

func WithErrorRecorder(r ErrorRecorder) Option {
	return func(a *Aggregator) { a.errs = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// WithScheduler overrides the timer based heartbeat.
func WithScheduler(s Scheduler) Option {
	return func(a *Aggregator) { a.scheduler = s }
}

type messageKind int

const (
	msgEvent messageKind = iota + 1
	msgTick
	msgFailed
)

type message struct {
	kind  messageKind
	event window.RawEvent
	tick  Tick
	err   error
}

type Aggregator struct {
	sink      Sink
	mirrors   []Sink
	resolver  window.ClassResolver
	errs      ErrorRecorder
	scheduler Scheduler
	delay     time.Duration
	now       func() time.Time
	logger    *slog.Logger
	source    string

	// nextID is the id the open interval carries and the id the next closed
	// interval is written with.
	nextID     uint32
	open       *models.OpenInterval
	pendingNew int64
	hasPending bool
}

// NewAggregator creates an aggregator that writes to sink, starting at
// nextID as recovered from the activity log.
func NewAggregator(sink Sink, resolver window.ClassResolver, nextID uint32, opts ...Option) *Aggregator {
	if nextID == 0 {
		nextID = 1
	}
	a := &Aggregator{
		sink:     sink,
		resolver: resolver,
		delay:    10 * time.Second,
		now:      time.Now,
		logger:   slog.Default().With("component", "tracker"),
		nextID:   nextID,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run consumes source until ctx is cancelled, the source fails or an
// interval cannot be persisted. On cancellation the open interval is
// flushed and ctx.Err() is returned.
func (a *Aggregator) Run(ctx context.Context, source window.Source) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.source = source.Name()
	inbox := make(chan message, inboxSize)
	if a.scheduler == nil {
		a.scheduler = NewHeartbeat(a.delay, func(t Tick) {
			select {
			case inbox <- message{kind: msgTick, tick: t}:
			case <-ctx.Done():
			}
		})
	}

	go a.listen(ctx, source, inbox)

	a.logger.Info("tracking started",
		"source", a.source,
		"next_id", a.nextID,
		"heartbeat", a.delay,
	)

	for {
		select {
		case <-ctx.Done():
			if err := a.flush(); err != nil {
				return err
			}
			a.logger.Info("tracking stopped", "next_id", a.nextID)
			return ctx.Err()

		case msg := <-inbox:
			if err := a.handle(msg); err != nil {
				return err
			}
		}
	}
}

func (a *Aggregator) listen(ctx context.Context, source window.Source, inbox chan<- message) {
	err := source.Listen(ctx, func(ev window.RawEvent) {
		select {
		case inbox <- message{kind: msgEvent, event: ev}:
		case <-ctx.Done():
		}
	})
	if ctx.Err() != nil {
		return
	}
	if err == nil {
		err = errors.New("event stream ended")
	}
	select {
	case inbox <- message{kind: msgFailed, err: err}:
	case <-ctx.Done():
	}
}

func (a *Aggregator) handle(msg message) error {
	switch msg.kind {
	case msgEvent:
		return a.handleEvent(msg.event)
	case msgTick:
		return a.handleTick(msg.tick)
	case msgFailed:
		return &TransportError{Source: a.source, Err: msg.err}
	}
	return nil
}

func (a *Aggregator) handleEvent(ev window.RawEvent) error {
	if ev.WindowID < 1 {
		a.logger.Debug("ignoring event without a client window", "kind", ev.Kind)
		return nil
	}

	switch ev.Kind {
	case window.KindNewWindow:
		a.pendingNew, a.hasPending = ev.WindowID, true
		return nil

	case window.KindFocusChanged:
		if a.hasPending && a.pendingNew == ev.WindowID {
			a.hasPending = false
			a.logger.Debug("suppressed focus following new window", "window_id", ev.WindowID)
			return nil
		}
		a.hasPending = false
		return a.transition(ev)

	case window.KindTitleChanged:
		a.hasPending = false
		return a.transition(ev)

	default:
		a.logger.Warn("ignoring event of unknown kind", "kind", ev.Kind, "window_id", ev.WindowID)
		return nil
	}
}

func (a *Aggregator) handleTick(t Tick) error {
	if a.open == nil || t.Sequence != a.nextID {
		a.logger.Debug("dropping stale heartbeat", "sequence", t.Sequence, "next_id", a.nextID)
		return nil
	}

	now := a.now()
	prev := *a.open
	if err := a.closeOpen(now); err != nil {
		return err
	}
	reopened := prev.Reopen(a.nextID, now)
	a.open = &reopened
	a.scheduler.Schedule(a.nextID)
	return nil
}

// transition closes whatever is open and opens an interval for ev's window.
// Both sides share one timestamp so consecutive rows abut exactly.
func (a *Aggregator) transition(ev window.RawEvent) error {
	now := a.now()
	if a.open != nil {
		if err := a.closeOpen(now); err != nil {
			return err
		}
	}

	title := ev.Title
	if title == "" {
		title = models.UntitledWindow
	}
	a.open = &models.OpenInterval{
		ID:          a.nextID,
		WindowID:    ev.WindowID,
		WindowClass: a.resolve(ev.WindowID),
		WindowTitle: title,
		OpenedAt:    now,
	}
	a.scheduler.Schedule(a.nextID)
	return nil
}

func (a *Aggregator) closeOpen(now time.Time) error {
	iv := models.Close(*a.open, now)
	if err := a.sink.Append(iv); err != nil {
		return &PersistenceError{ID: iv.ID, Err: err}
	}
	for _, m := range a.mirrors {
		if err := m.Append(iv); err != nil {
			a.logger.Warn("mirror append failed", "id", iv.ID, "error", err)
			a.record("mirror", err)
		}
	}

	a.logger.Debug("interval closed",
		"id", iv.ID,
		"window_class", iv.WindowClass,
		"duration", iv.Duration,
	)
	a.nextID++
	a.open = nil
	return nil
}

// flush persists the open interval on shutdown.
func (a *Aggregator) flush() error {
	if a.open == nil {
		return nil
	}
	return a.closeOpen(a.now())
}

func (a *Aggregator) resolve(windowID int64) string {
	if a.resolver == nil {
		return ""
	}
	class, err := a.resolver.ResolveClass(windowID)
	if err != nil {
		a.logger.Warn("window class lookup failed", "window_id", windowID, "error", err)
		a.record("resolver", err)
		return ""
	}
	return class
}

func (a *Aggregator) record(component string, err error) {
	if a.errs != nil {
		a.errs.RecordError(component, err)
	}
}
