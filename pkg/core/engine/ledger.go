package engine

import (
	"time"

	"github.com/jdavenport/fairroster/pkg/core/model"
)

const dateLayout = "2006-01-02"

// rotationLookbackDays is how far back the rotation penalty scans
const rotationLookbackDays = 3

// Ledger holds per-worker running totals for a single assignment run.
// Weighted hours are the primary fairness currency: real hours multiplied
// by the perceived difficulty of the role, so workers stuck with hard
// roles are not under-rewarded relative to raw hours.
type Ledger struct {
	RealHours     map[string]float64
	WeightedHours map[string]float64
	AssignedCount map[string]int

	// recentRoles maps worker -> date -> set of role ids assigned that day
	recentRoles map[string]map[string]map[string]bool
}

// NewLedger creates a ledger with zeroed rows for every worker. Ledger
// state is scoped to one run and never carried across runs.
func NewLedger(workers []model.Worker) *Ledger {
	ledger := &Ledger{
		RealHours:     make(map[string]float64, len(workers)),
		WeightedHours: make(map[string]float64, len(workers)),
		AssignedCount: make(map[string]int, len(workers)),
		recentRoles:   make(map[string]map[string]map[string]bool),
	}
	for _, worker := range workers {
		ledger.RealHours[worker.ID] = 0
		ledger.WeightedHours[worker.ID] = 0
		ledger.AssignedCount[worker.ID] = 0
	}
	return ledger
}

// Record books a slot against a worker. The effective difficulty here is
// the unpenalized per-slot value; the rotation penalty only affects
// selection scoring, never the accumulated ledger.
func (l *Ledger) Record(workerID, roleID string, slot model.Slot, effectiveDifficulty float64) {
	hours := slot.Hours()
	l.RealHours[workerID] += hours
	l.WeightedHours[workerID] += hours * effectiveDifficulty
	l.AssignedCount[workerID]++

	date := slot.Start.Format(dateLayout)
	if l.recentRoles[workerID] == nil {
		l.recentRoles[workerID] = make(map[string]map[string]bool)
	}
	if l.recentRoles[workerID][date] == nil {
		l.recentRoles[workerID][date] = make(map[string]bool)
	}
	l.recentRoles[workerID][date][roleID] = true
}

// rotationPenalties maps days-back to the scoring multiplier applied when
// the worker held the same role that recently
var rotationPenalties = map[int]float64{
	1: 2.0,
	2: 1.5,
	3: 1.2,
}

// RotationPenalty returns the scoring multiplier discouraging the same role
// on consecutive days: yesterday 2.0x, two days ago 1.5x, three days ago
// 1.2x. Only the nearest matching day counts; the scan stops at the first
// match.
func (l *Ledger) RotationPenalty(workerID, roleID string, slotDate time.Time) float64 {
	for daysBack := 1; daysBack <= rotationLookbackDays; daysBack++ {
		date := slotDate.AddDate(0, 0, -daysBack).Format(dateLayout)
		if l.recentRoles[workerID][date][roleID] {
			return rotationPenalties[daysBack]
		}
	}
	return 1.0
}
