// Package pipeline implements the incremental price sync engine, the YTD
// metrics calculator and the ranking reporter. Scheduling stays outside: each
// stage is a plain function over an analysis window, invoked by whatever runs
// the batch (CLI, cron, queue consumer).
package pipeline

import (
	"fmt"
	"time"
)

// Window is the analysis date range, inclusive on both ends.
type Window struct {
	Start time.Time
	End   time.Time
}

// YTDWindow returns the window from January 1 of now's year through today.
func YTDWindow(now time.Time) Window {
	return Window{
		Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
}

// ResolveWindow builds the analysis window, honoring an optional
// YYYY-MM-DD start override.
func ResolveWindow(startOverride string, now time.Time) (Window, error) {
	w := YTDWindow(now)
	if startOverride == "" {
		return w, nil
	}
	start, err := time.Parse("2006-01-02", startOverride)
	if err != nil {
		return Window{}, fmt.Errorf("invalid start date %q: %w", startOverride, err)
	}
	w.Start = start
	if w.End.Before(w.Start) {
		return Window{}, fmt.Errorf("window start %s is after end %s",
			w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
	}
	return w, nil
}
