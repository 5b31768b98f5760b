// Package timeutil parses and formats wall-clock times ("HH:MM") and the
// free-text duration labels found on catalog entries.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// MinutesPerDay is the length of a 24h clock in minutes.
	MinutesPerDay = 24 * 60

	// DefaultDurationMinutes is used when a duration label cannot be parsed.
	DefaultDurationMinutes = 60
)

// ─── Clock ──────────────────────────────────────────────────

// ParseClock parses "H:MM" or "HH:MM" (24h) into minutes after midnight.
func ParseClock(s string) (int, bool) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(h) == 0 || len(h) > 2 || len(m) != 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	mins, err := strconv.Atoi(m)
	if err != nil || mins < 0 || mins > 59 {
		return 0, false
	}
	return hours*60 + mins, true
}

// FormatClock renders minutes after midnight as "HH:MM", wrapping past 24h.
func FormatClock(minutes int) string {
	minutes %= MinutesPerDay
	if minutes < 0 {
		minutes += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NormalizeClock rewrites a valid clock in canonical zero-padded form, so
// that start times compare correctly as strings.
func NormalizeClock(s string) (string, bool) {
	m, ok := ParseClock(s)
	if !ok {
		return "", false
	}
	return FormatClock(m), true
}

// AddMinutes returns clock shifted by n minutes.
func AddMinutes(clock string, n int) (string, bool) {
	m, ok := ParseClock(clock)
	if !ok {
		return "", false
	}
	return FormatClock(m + n), true
}

// ─── Duration labels ────────────────────────────────────────

var (
	hourPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(hours|hour|hrs|hr|h|小時|小时)`)
	minutePattern = regexp.MustCompile(`(\d+)\s*(minutes|minute|mins|min|m|分鐘|分钟|分)`)
)

// ParseDurationMinutes extracts hour and minute components embedded in a
// free-text label such as "2 hours 30 minutes", "1hr", "90min" or "1.5小時".
// Labels with no recognisable component, or that add up to zero, yield
// DefaultDurationMinutes.
func ParseDurationMinutes(label string) int {
	lower := strings.ToLower(label)
	total := 0.0

	// Hour tokens are consumed first so "2h30m" does not read "h30m" as minutes.
	rest := lower
	if loc := hourPattern.FindStringSubmatchIndex(lower); loc != nil {
		if v, err := strconv.ParseFloat(lower[loc[2]:loc[3]], 64); err == nil {
			total += v * 60
		}
		rest = lower[:loc[0]] + " " + lower[loc[1]:]
	}
	if match := minutePattern.FindStringSubmatch(rest); match != nil {
		if v, err := strconv.Atoi(match[1]); err == nil {
			total += float64(v)
		}
	}

	if total <= 0 {
		return DefaultDurationMinutes
	}
	return int(total + 0.5)
}
