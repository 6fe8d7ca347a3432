package services

import "time"

// dateOnly truncates a time to midnight in its own location.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MondayOf returns the Monday of the week containing t, at midnight. This is
// the canonical period key for weekly scores: callers must compute scores
// against this normalized date so "this week's score" is well-defined
// regardless of which day triggers the calculation. Idempotent.
func MondayOf(t time.Time) time.Time {
	d := dateOnly(t)
	// time.Weekday numbers Sunday as 0; shift so Monday has offset 0.
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// FirstOfMonth returns the first day of the month containing t, at midnight.
// This is the canonical period key for monthly snapshots.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// PreviousMonthStart returns the first day of the month before the one
// containing t. January wraps to December of the prior year.
func PreviousMonthStart(t time.Time) time.Time {
	return FirstOfMonth(FirstOfMonth(t).AddDate(0, 0, -1))
}
