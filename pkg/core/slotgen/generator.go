package slotgen

import (
	"github.com/google/uuid"

	"github.com/jdavenport/fairroster/pkg/core/model"
)

const (
	// DefaultMaxIterationsPerRole bounds slot generation for a single role.
	// Hitting the cap stops generation for that role with a warning but does
	// not fail the run.
	DefaultMaxIterationsPerRole = 5000

	// DefaultMaxDegenerateRuns is the number of consecutive zero-width slot
	// iterations tolerated before force-advancing the cursor by a full day.
	DefaultMaxDegenerateRuns = 10
)

// Config contains the inputs for a slot generation pass
type Config struct {
	Period model.Period

	// Roles to materialize into slots, each handled independently
	Roles []model.RoleDefinition

	// MaxIterationsPerRole overrides DefaultMaxIterationsPerRole when positive
	MaxIterationsPerRole int

	// MaxDegenerateRuns overrides DefaultMaxDegenerateRuns when positive
	MaxDegenerateRuns int
}

// Generate materializes every role definition into concrete coverage slots
// across the period. Slots are created fresh on every pass; callers decide
// whether to persist them.
func Generate(cfg Config) ([]model.Slot, []model.Diagnostic) {
	maxIter := cfg.MaxIterationsPerRole
	if maxIter <= 0 {
		maxIter = DefaultMaxIterationsPerRole
	}
	maxDegenerate := cfg.MaxDegenerateRuns
	if maxDegenerate <= 0 {
		maxDegenerate = DefaultMaxDegenerateRuns
	}

	slots := make([]model.Slot, 0)
	diagnostics := make([]model.Diagnostic, 0)

	for _, role := range cfg.Roles {
		roleSlots, roleDiags := generateForRole(cfg.Period, role, maxIter, maxDegenerate)
		slots = append(slots, roleSlots...)
		diagnostics = append(diagnostics, roleDiags...)
	}

	return slots, diagnostics
}

// generateForRole walks the period's time axis for a single role, emitting
// headcount parallel slot instances at each cursor position.
func generateForRole(period model.Period, role model.RoleDefinition, maxIter, maxDegenerate int) ([]model.Slot, []model.Diagnostic) {
	var diagnostics []model.Diagnostic

	if role.ShiftDuration <= 0 {
		diagnostics = append(diagnostics,
			model.Warningf("role %q has a non-positive shift duration and was skipped", role.Name))
		return nil, diagnostics
	}
	if role.HeadcountNeeded < 1 {
		diagnostics = append(diagnostics,
			model.Warningf("role %q needs a headcount of at least 1 and was skipped", role.Name))
		return nil, diagnostics
	}

	var slots []model.Slot

	cursor := snapToWindow(period.Start, role.WorkWindow)
	degenerateRuns := 0
	iterations := 0

	for cursor.Before(period.End) {
		iterations++
		if iterations > maxIter {
			diagnostics = append(diagnostics,
				model.Warningf("role %q hit the generation cap of %d iterations; slot generation stopped early", role.Name, maxIter))
			break
		}

		slotEnd := cursor.Add(role.ShiftDuration)
		if role.WorkWindow != nil {
			if windowEnd := windowEndFor(cursor, role.WorkWindow); slotEnd.After(windowEnd) {
				slotEnd = windowEnd
			}
		}
		if slotEnd.After(period.End) {
			slotEnd = period.End
		}

		if cursor.Before(slotEnd) {
			for instance := 1; instance <= role.HeadcountNeeded; instance++ {
				slots = append(slots, model.Slot{
					ID:            uuid.New().String(),
					RoleID:        role.ID,
					Start:         cursor,
					End:           slotEnd,
					InstanceIndex: instance,
				})
			}

			// Advance by the unclipped duration, not the clipped slot end,
			// then re-snap into the window.
			cursor = snapToWindow(cursor.Add(role.ShiftDuration), role.WorkWindow)
			degenerateRuns = 0
			continue
		}

		// Zero-width slot. Advance via window snapping; after too many
		// consecutive degenerate iterations force a full day forward.
		degenerateRuns++
		if degenerateRuns >= maxDegenerate {
			cursor = cursor.AddDate(0, 0, 1)
			degenerateRuns = 0
		} else {
			cursor = nextWindowStart(cursor, role.WorkWindow)
		}
	}

	return slots, diagnostics
}
