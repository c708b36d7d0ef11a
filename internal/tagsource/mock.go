package tagsource

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/randhum/timeclock/internal/domain"
)

// MockTagSource is the fallback variant used in development or when no
// hardware reader is present (spec §4.1: "on failure, the factory returns
// a MockTagSource instead"). Scans are injected via Emit rather than read
// from a device.
type MockTagSource struct {
	log zerolog.Logger

	mu      sync.Mutex
	onTag   func(string)
	running bool

	successCount int
	errorCount   int
}

// NewMock constructs a MockTagSource.
func NewMock(log zerolog.Logger) *MockTagSource {
	return &MockTagSource{log: log.With().Str("component", "mock_tag_source").Logger()}
}

func (m *MockTagSource) Start(_ context.Context, onTag func(tagID string)) error {
	m.mu.Lock()
	m.onTag = onTag
	m.running = true
	m.mu.Unlock()
	return nil
}

func (m *MockTagSource) Stop() {
	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
}

// Emit simulates a tag read, normalizing it the same way the hardware
// worker would before invoking the on-tag callback.
func (m *MockTagSource) Emit(tagID string) {
	m.mu.Lock()
	onTag := m.onTag
	running := m.running
	m.mu.Unlock()

	if !running || onTag == nil {
		return
	}
	onTag(domain.NormalizeTag(tagID))
}

func (m *MockTagSource) IndicateSuccess() {
	m.mu.Lock()
	m.successCount++
	m.mu.Unlock()
	m.log.Debug().Msg("led: success (green flash ~500ms)")
}

func (m *MockTagSource) IndicateError() {
	m.mu.Lock()
	m.errorCount++
	m.mu.Unlock()
	m.log.Debug().Msg("led: error (red blink x3)")
}

// Counts returns the number of success/error feedback calls received, for
// test assertions.
func (m *MockTagSource) Counts() (success, errorCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.successCount, m.errorCount
}
