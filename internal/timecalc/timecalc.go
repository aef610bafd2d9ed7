package timecalc

import (
	"fmt"
	"math"
	"time"

	"github.com/Tiliavir/clicktime-assistant/internal/model"
)

// RoundToNearestTenth rounds hours to ClickTime's minimum time increment of
// 0.1, with halves rounded away from zero (3.15 -> 3.2).
func RoundToNearestTenth(hours float64) float64 {
	return math.Round(hours*10) / 10
}

// TotalHours sums the hours of all guesses without rounding.
func TotalHours(guesses []model.TimeEntryGuess) float64 {
	var total float64
	for _, g := range guesses {
		total += g.Hours
	}
	return total
}

// FormatHours formats hours at entry granularity, e.g. "1.5h".
func FormatHours(hours float64) string {
	return fmt.Sprintf("%.1fh", hours)
}

// ParseEventTime parses an event start or end. ClickTime reports local
// times like "2026-02-27T09:00:00" alongside an IANA zone; fully qualified
// RFC3339 values are accepted as well.
func ParseEventTime(et *model.EventTime) (time.Time, error) {
	if et == nil || et.DateTime == "" {
		return time.Time{}, fmt.Errorf("event time is empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, et.DateTime); err == nil {
		return t, nil
	}

	loc := time.UTC
	if et.TimeZone != "" {
		if l, err := time.LoadLocation(et.TimeZone); err == nil {
			loc = l
		}
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
	} {
		if t, err := time.ParseInLocation(layout, et.DateTime, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse event time %q", et.DateTime)
}

// EventHours returns the duration of rec in hours. Events without a usable
// start or end report an error.
func EventHours(rec model.EventRecord) (float64, error) {
	start, err := ParseEventTime(rec.Start)
	if err != nil {
		return 0, fmt.Errorf("parsing start: %w", err)
	}
	end, err := ParseEventTime(rec.End)
	if err != nil {
		return 0, fmt.Errorf("parsing end: %w", err)
	}
	return end.Sub(start).Hours(), nil
}

// ScheduledHours sums EventHours over recs, skipping events it cannot parse.
func ScheduledHours(recs []model.EventRecord) float64 {
	var total float64
	for _, r := range recs {
		if h, err := EventHours(r); err == nil && h > 0 {
			total += h
		}
	}
	return total
}
