package slotgen

import (
	"time"

	"github.com/jdavenport/fairroster/pkg/core/model"
)

// Window matching is done in wall-clock terms rather than duration
// arithmetic. An overnight window wraps midnight, so "inside" means
// clock >= start || clock < end, and the window end a slot must be
// clipped to depends on which half of the window the slot started in.

// snapToWindow returns the earliest instant at or after t whose clock time
// lies inside the window. A nil window accepts any time of day.
func snapToWindow(t time.Time, w *model.WorkWindow) time.Time {
	if w == nil || w.Contains(model.ClockOf(t)) {
		return t
	}

	start := w.Start.OnDay(t)
	if w.IsOvernight {
		// Outside an overnight window means the clock sits in the daytime
		// gap [end, start), so the same-day window start is still ahead.
		return start
	}

	if t.Before(start) {
		return start
	}
	// The window has already closed today; resume at tomorrow's start.
	return start.AddDate(0, 0, 1)
}

// nextWindowStart returns the first window start strictly after t.
// Used to advance past degenerate (zero-width) slots without stalling.
func nextWindowStart(t time.Time, w *model.WorkWindow) time.Time {
	if w == nil {
		return t.AddDate(0, 0, 1)
	}

	start := w.Start.OnDay(t)
	if start.After(t) {
		return start
	}
	return start.AddDate(0, 0, 1)
}

// windowEndFor returns the end of the working window a slot starting at
// start belongs to. For overnight windows a slot starting in the late half
// (at or after the window start) runs until tomorrow's window end, while a
// slot starting in the early half (before the window end) ends today.
func windowEndFor(start time.Time, w *model.WorkWindow) time.Time {
	end := w.End.OnDay(start)
	if !w.IsOvernight {
		return end
	}

	if model.ClockOf(start).Minutes() >= w.Start.Minutes() {
		return end.AddDate(0, 0, 1)
	}
	return end
}
