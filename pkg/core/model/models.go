package model

import (
	"fmt"
	"time"
)

// Severity classifies a diagnostic message
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is a structured message produced by slot generation or assignment.
// Diagnostics are returned to the caller for surfacing; they never abort a run.
type Diagnostic struct {
	Severity Severity
	Message  string
}

func Infof(format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityInfo, Message: fmt.Sprintf(format, args...)}
}

func Warningf(format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

func Errorf(format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityError, Message: fmt.Sprintf(format, args...)}
}

// TimeOfDay is a wall-clock time, independent of date and timezone
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a "HH:MM" string
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var tod TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &tod.Hour, &tod.Minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if tod.Hour < 0 || tod.Hour > 23 || tod.Minute < 0 || tod.Minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return tod, nil
}

// Minutes returns the number of minutes since midnight
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// OnDay returns the instant at this clock time on the same calendar day as ref
func (t TimeOfDay) OnDay(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour, t.Minute, 0, 0, ref.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ClockOf extracts the wall-clock time of an instant
func ClockOf(ts time.Time) TimeOfDay {
	return TimeOfDay{Hour: ts.Hour(), Minute: ts.Minute()}
}

// Period is the rostering period slots are generated for
type Period struct {
	ID    string
	Name  string
	Start time.Time
	End   time.Time
}

// WorkWindow restricts a role to a clock-time range. An overnight window
// wraps midnight, so Start > End in clock terms (e.g. 22:00-06:00).
type WorkWindow struct {
	Start       TimeOfDay
	End         TimeOfDay
	IsOvernight bool
}

// Contains reports whether the given clock time falls inside the window
func (w WorkWindow) Contains(clock TimeOfDay) bool {
	m := clock.Minutes()
	if w.IsOvernight {
		return m >= w.Start.Minutes() || m < w.End.Minutes()
	}
	return m >= w.Start.Minutes() && m < w.End.Minutes()
}

// RoleDefinition is a template for a recurring coverage need
type RoleDefinition struct {
	ID              string
	Name            string
	HeadcountNeeded int
	ShiftDuration   time.Duration
	WorkWindow      *WorkWindow // nil means any time of day
	BaseDifficulty  float64
}

// Slot is a concrete time-boxed unit of required coverage
type Slot struct {
	ID            string
	RoleID        string
	Start         time.Time
	End           time.Time
	InstanceIndex int
}

// Duration returns the real length of the slot
func (s Slot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Hours returns the slot duration in fractional hours
func (s Slot) Hours() float64 {
	return s.Duration().Hours()
}

// Overlaps reports whether two half-open slot intervals intersect
func (s Slot) Overlaps(other Slot) bool {
	return s.Start.Before(other.End) && s.End.After(other.Start)
}

// Worker is a fully-resolved worker with qualifications pre-loaded.
// The core never looks workers up against external storage.
type Worker struct {
	ID                string
	Name              string
	MaxHoursPerPeriod *float64 // nil means unlimited
	QualifiedRoleIDs  map[string]bool
}

// IsQualified reports whether the worker may take slots of the given role
func (w Worker) IsQualified(roleID string) bool {
	return w.QualifiedRoleIDs[roleID]
}

// Constraint is an unavailability interval for a worker
type Constraint struct {
	WorkerID string
	Start    time.Time
	End      time.Time
}

// Blocks reports whether the constraint interval overlaps [start, end)
func (c Constraint) Blocks(start, end time.Time) bool {
	return start.Before(c.End) && end.After(c.Start)
}

// DifficultyRating is a worker's subjective difficulty rating for a role
type DifficultyRating struct {
	WorkerID string
	RoleID   string
	Value    float64
}

// Assignment binds a slot to a worker. An empty WorkerID means unassigned.
type Assignment struct {
	SlotID   string
	WorkerID string
}

// IsAssigned reports whether a worker has been bound to the slot
func (a Assignment) IsAssigned() bool {
	return a.WorkerID != ""
}
