// Package tagsource abstracts RFID hardware (spec §4.1): a TagSource emits
// normalized tag-ids via an on-tag callback invoked from a background
// worker thread, and accepts best-effort LED feedback commands. Variants:
// HardwareTagSource (github.com/karalabe/hid) and MockTagSource (scripted
// input via Emit, for development without a reader attached).
package tagsource

import "context"

// Feedback is a best-effort LED command.
type Feedback int

const (
	FeedbackSuccess Feedback = iota
	FeedbackError
)

// TagSource is the capability set {start, stop, indicate_success,
// indicate_error} every variant implements.
type TagSource interface {
	// Start begins the background worker. OnTag is invoked from the
	// worker thread, not the caller's goroutine; callers must forward to
	// the EventDispatcher via its own thread-safe post mechanism.
	Start(ctx context.Context, onTag func(tagID string)) error
	// Stop signals the worker to exit and waits for it to finish.
	Stop()
	// IndicateSuccess enqueues a green-flash LED command. Never blocks.
	IndicateSuccess()
	// IndicateError enqueues a red-blink LED command. Never blocks.
	IndicateError()
}
