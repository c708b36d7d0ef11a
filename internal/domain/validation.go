package domain

import (
	"strings"
	"time"
	"unicode"
)

const (
	// MinTagLen and MaxTagLen bound a normalized rfid_tag.
	MinTagLen = 4
	MaxTagLen = 50

	// MaxNameLen bounds an Employee.Name.
	MaxNameLen = 100

	// timestampPastWindow and timestampFutureWindow bound an acceptable
	// TimeEntry.Timestamp relative to now, guarding against obvious clock
	// errors (spec invariant 4).
	timestampPastWindow   = 365 * 24 * time.Hour
	timestampFutureWindow = 24 * time.Hour
)

// NormalizeTag uppercases and trims a raw tag read, the single place tag
// normalization happens so ingestion and registration can't disagree.
func NormalizeTag(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidateTag reports whether a normalized tag is an uppercase hex string
// within the length bounds (spec §3).
func ValidateTag(tag string) bool {
	n := len(tag)
	if n < MinTagLen || n > MaxTagLen {
		return false
	}
	for _, r := range tag {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') {
			return false
		}
	}
	return true
}

// NormalizeName trims a raw employee name.
func NormalizeName(raw string) string {
	return strings.TrimSpace(raw)
}

// ValidateName reports whether a normalized name is 1-100 printable
// characters.
func ValidateName(name string) bool {
	n := len([]rune(name))
	if n < 1 || n > MaxNameLen {
		return false
	}
	for _, r := range name {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// ValidateTimestamp reports whether ts lies within [now-365d, now+1d].
func ValidateTimestamp(ts, now time.Time) bool {
	earliest := now.Add(-timestampPastWindow)
	latest := now.Add(timestampFutureWindow)
	return !ts.Before(earliest) && !ts.After(latest)
}
