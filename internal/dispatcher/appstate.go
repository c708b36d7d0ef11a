package dispatcher

import (
	"time"

	"github.com/randhum/timeclock/internal/domain"
)

// AppState is the EventDispatcher's in-memory, process-wide state (spec
// §2, §9 "Global state"): last-clocked employee, pending-identification
// handle, and the recent-scan debounce table. Owned exclusively by the
// EventDispatcher — no other component may mutate it — and only ever
// touched from the loop goroutine, so it needs no internal locking.
type AppState struct {
	lastClocked        *lastClockedEntry
	lastClockedTTL     time.Duration
	pendingIdentity    *pendingIdentity
	pendingIdentityTTL time.Duration
	recentScans        map[string]time.Time
	debounceWindow     time.Duration
}

type lastClockedEntry struct {
	Employee domain.Employee
	At       time.Time
}

// pendingIdentity is the handle created when the kiosk is waiting for a
// follow-up scan to confirm identity before proceeding to entry editing
// (mode entry_edit_pending, spec §4.2).
type pendingIdentity struct {
	ExpectedTag string
	At          time.Time
}

// NewAppState constructs AppState with the configured TTLs/debounce
// window (SPEC_FULL §6 env vars, defaulting per spec §5: 120s / 30s).
func NewAppState(lastClockedTTL, pendingIdentityTTL, debounceWindow time.Duration) *AppState {
	return &AppState{
		lastClockedTTL:     lastClockedTTL,
		pendingIdentityTTL: pendingIdentityTTL,
		debounceWindow:     debounceWindow,
		recentScans:        make(map[string]time.Time),
	}
}

// ShouldDebounce reports whether tag was accepted within the debounce
// window and, if not, records it as accepted now (spec §4.2 step 1).
func (s *AppState) ShouldDebounce(tag string, now time.Time) bool {
	if last, ok := s.recentScans[tag]; ok && now.Sub(last) < s.debounceWindow {
		return true
	}
	s.recentScans[tag] = now
	return false
}

// GCRecentScans drops debounce entries older than the window, bounding the
// table's size. Called by the daily maintenance sweep (SPEC_FULL §6) as a
// belt-and-suspenders cleanup; the debounce window is short enough that
// this rarely finds anything.
func (s *AppState) GCRecentScans(now time.Time) {
	for tag, at := range s.recentScans {
		if now.Sub(at) >= s.debounceWindow {
			delete(s.recentScans, tag)
		}
	}
}

// SetLastClocked records the employee who just clocked, for the UI to
// display; expires after lastClockedTTL.
func (s *AppState) SetLastClocked(employee domain.Employee, now time.Time) {
	s.lastClocked = &lastClockedEntry{Employee: employee, At: now}
}

// LastClocked returns the last-clocked employee if the TTL hasn't expired.
func (s *AppState) LastClocked(now time.Time) (domain.Employee, bool) {
	if s.lastClocked == nil || now.Sub(s.lastClocked.At) >= s.lastClockedTTL {
		return domain.Employee{}, false
	}
	return s.lastClocked.Employee, true
}

// ClearLastClocked drops the last-clocked state (e.g. on explicit mode
// change), belt-and-suspenders alongside TTL expiry.
func (s *AppState) ClearLastClocked() {
	s.lastClocked = nil
}

// SetPendingIdentity arms the pending-identification handle for
// entry_edit_pending mode: the next scan must match expectedTag.
func (s *AppState) SetPendingIdentity(expectedTag string, now time.Time) {
	s.pendingIdentity = &pendingIdentity{ExpectedTag: expectedTag, At: now}
}

// CheckPendingIdentity reports whether tag matches the still-live pending
// identification handle, consuming it either way (a pending identity is
// single-use: matched or rejected, never reused).
func (s *AppState) CheckPendingIdentity(tag string, now time.Time) bool {
	p := s.pendingIdentity
	s.pendingIdentity = nil
	if p == nil || now.Sub(p.At) >= s.pendingIdentityTTL {
		return false
	}
	return p.ExpectedTag == tag
}

// HasPendingIdentity reports whether a pending-identification handle is
// still live, without consuming it.
func (s *AppState) HasPendingIdentity(now time.Time) bool {
	return s.pendingIdentity != nil && now.Sub(s.pendingIdentity.At) < s.pendingIdentityTTL
}

// GCExpired drops expired last-clocked/pending-identity state. No timer
// is armed for either handle: readers treat them as gone once their TTL
// has passed, and this sweep, run by the daily maintenance job
// (SPEC_FULL §6), is what clears the stored values.
func (s *AppState) GCExpired(now time.Time) {
	if s.lastClocked != nil && now.Sub(s.lastClocked.At) >= s.lastClockedTTL {
		s.lastClocked = nil
	}
	if s.pendingIdentity != nil && now.Sub(s.pendingIdentity.At) >= s.pendingIdentityTTL {
		s.pendingIdentity = nil
	}
	s.GCRecentScans(now)
}
