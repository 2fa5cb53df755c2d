package utils

import (
	"math"
	"time"
)

// DayKey truncates t to the calendar day it falls on in loc and returns that
// date at 00:00 UTC. All attendance rows and "today" lookups are keyed by it.
func DayKey(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Percentage returns part/total*100 rounded to two decimals, clamped to
// [0, 100]. A non-positive total yields 0.
func Percentage(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(part) / float64(total) * 100
	p = math.Round(p*100) / 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
