// Package dispatcher implements the EventDispatcher (spec §4.2, §5): a
// single-threaded cooperative loop that owns AppState and all calls into
// the Store, plus the ScanRouter mode-dispatch logic that decides what a
// scan means given the kiosk's current UI mode.
//
// The loop is the idiomatic Go rendition of a "single-threaded cooperative
// loop": a channel-driven goroutine rather than a borrowed GUI idle
// callback. post() sends a closure on a buffered channel drained by one
// dedicated goroutine; scheduleAfter() uses time.AfterFunc wired back to
// post() so delayed callbacks still run on the loop thread.
package dispatcher

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// task is a zero-argument unit of work run on the loop goroutine.
type task func()

// EventDispatcher owns AppState and serializes all business logic onto a
// single goroutine (spec §5: "handlers run to completion before the next
// task starts").
type EventDispatcher struct {
	log   zerolog.Logger
	tasks chan task

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs an EventDispatcher. The loop does not start running
// until Start is called.
func New(log zerolog.Logger) *EventDispatcher {
	return &EventDispatcher{
		log:   log.With().Str("component", "event_dispatcher").Logger(),
		tasks: make(chan task, 256),
		done:  make(chan struct{}),
	}
}

// Start runs the loop on a new goroutine until Stop is called.
func (d *EventDispatcher) Start(ctx context.Context) {
	d.ctx, d.cancel = context.WithCancel(ctx)
	go d.run()
}

func (d *EventDispatcher) run() {
	defer close(d.done)
	for {
		select {
		case <-d.ctx.Done():
			return
		case t := <-d.tasks:
			t()
		}
	}
}

// Post enqueues fn for execution on the loop thread. Safe to call from any
// goroutine, including a TagSource's worker thread.
func (d *EventDispatcher) Post(fn func()) {
	select {
	case d.tasks <- fn:
	case <-d.ctx.Done():
	}
}

// ScheduleAfter arms a one-shot timer that posts fn back onto the loop
// after delay elapses.
func (d *EventDispatcher) ScheduleAfter(delay time.Duration, fn func()) *time.Timer {
	return time.AfterFunc(delay, func() { d.Post(fn) })
}

// Stop signals the loop to exit and waits for the current task (if any)
// to finish.
func (d *EventDispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	<-d.done
}
