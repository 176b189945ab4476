package engine

import (
	"math"
	"math/rand"
	"sort"

	"github.com/jdavenport/fairroster/pkg/core/difficulty"
	"github.com/jdavenport/fairroster/pkg/core/model"
)

// scoreEpsilon is the tolerance within which two selection scores are
// considered tied
const scoreEpsilon = 1e-9

// Request contains everything a single assignment run needs. The engine
// performs no I/O: workers arrive with qualifications pre-loaded and
// constraints fully resolved.
type Request struct {
	Slots       []model.Slot
	Roles       []model.RoleDefinition
	Workers     []model.Worker
	Constraints []model.Constraint

	// Difficulty computes the per-worker perceived difficulty used to
	// accumulate weighted hours
	Difficulty *difficulty.Model

	// Seed drives tie-breaking so a run is reproducible on demand
	Seed int64

	// BestEffort treats a completed run as successful even when some slots
	// could not be filled; by default success requires full coverage
	BestEffort bool
}

// Outcome is the result of an assignment run
type Outcome struct {
	// Assignments holds exactly one entry per requested slot, in slot order
	Assignments []model.Assignment

	// Success reflects the completeness policy; shortfalls are reported via
	// diagnostics, never as errors
	Success bool

	// Unassigned is the number of slots left without a worker
	Unassigned int

	Diagnostics []model.Diagnostic

	// Ledger exposes the final per-worker totals for fairness reporting
	Ledger *Ledger
}

// Assign greedily matches workers to slots in chronological order, always
// routing the next slot to the eligible worker with the lowest
// difficulty-weighted burden. It is a deterministic-given-seed heuristic,
// not a proof-optimal scheduler.
func Assign(req Request) *Outcome {
	outcome := &Outcome{
		Assignments: make([]model.Assignment, 0, len(req.Slots)),
		Diagnostics: make([]model.Diagnostic, 0),
		Ledger:      NewLedger(req.Workers),
	}

	if len(req.Slots) == 0 {
		outcome.Success = true
		outcome.Diagnostics = append(outcome.Diagnostics, model.Infof("no slots were pending assignment"))
		return outcome
	}

	// Resource exhaustion is the only fatal short-circuit
	if len(req.Workers) == 0 {
		for _, slot := range req.Slots {
			outcome.Assignments = append(outcome.Assignments, model.Assignment{SlotID: slot.ID})
		}
		outcome.Unassigned = len(req.Slots)
		outcome.Diagnostics = append(outcome.Diagnostics, model.Errorf("no workers available to assign slots"))
		return outcome
	}

	rolesByID := make(map[string]model.RoleDefinition, len(req.Roles))
	for _, role := range req.Roles {
		rolesByID[role.ID] = role
	}

	constraintsByWorker := make(map[string][]model.Constraint)
	for _, constraint := range req.Constraints {
		constraintsByWorker[constraint.WorkerID] = append(constraintsByWorker[constraint.WorkerID], constraint)
	}

	// Stable chronological order with deterministic tie-breaking so the
	// seeded draw is the only source of randomness
	slots := make([]model.Slot, len(req.Slots))
	copy(slots, req.Slots)
	sort.SliceStable(slots, func(i, j int) bool {
		if !slots[i].Start.Equal(slots[j].Start) {
			return slots[i].Start.Before(slots[j].Start)
		}
		if slots[i].RoleID != slots[j].RoleID {
			return slots[i].RoleID < slots[j].RoleID
		}
		return slots[i].InstanceIndex < slots[j].InstanceIndex
	})

	workers := make([]model.Worker, len(req.Workers))
	copy(workers, req.Workers)
	sort.Slice(workers, func(i, j int) bool { return workers[i].ID < workers[j].ID })

	rng := rand.New(rand.NewSource(req.Seed))
	assignedSlots := make(map[string][]model.Slot)

	for _, slot := range slots {
		role, roleKnown := rolesByID[slot.RoleID]
		if !roleKnown {
			outcome.Assignments = append(outcome.Assignments, model.Assignment{SlotID: slot.ID})
			outcome.Unassigned++
			outcome.Diagnostics = append(outcome.Diagnostics,
				model.Errorf("slot %s references unknown role %s", slot.ID, slot.RoleID))
			continue
		}

		eligible := eligibleWorkers(slot, workers, constraintsByWorker, assignedSlots, outcome.Ledger)
		if len(eligible) == 0 {
			outcome.Assignments = append(outcome.Assignments, model.Assignment{SlotID: slot.ID})
			outcome.Unassigned++
			outcome.Diagnostics = append(outcome.Diagnostics,
				model.Warningf("no eligible worker for %s slot starting %s", role.Name, slot.Start.Format("2006-01-02 15:04")))
			continue
		}

		chosen := pickWorker(eligible, slot, outcome.Ledger, rng)

		outcome.Assignments = append(outcome.Assignments, model.Assignment{SlotID: slot.ID, WorkerID: chosen.ID})
		assignedSlots[chosen.ID] = append(assignedSlots[chosen.ID], slot)
		outcome.Ledger.Record(chosen.ID, slot.RoleID, slot, req.Difficulty.EffectiveDifficulty(chosen.ID, slot.RoleID))
	}

	if outcome.Unassigned > 0 {
		outcome.Diagnostics = append(outcome.Diagnostics,
			model.Warningf("%d of %d slots remain unassigned", outcome.Unassigned, len(slots)))
	} else {
		outcome.Diagnostics = append(outcome.Diagnostics,
			model.Infof("all %d slots assigned", len(slots)))
	}

	outcome.Success = outcome.Unassigned == 0 || req.BestEffort
	return outcome
}

// eligibleWorkers applies the hard constraints: qualification, no
// unavailability overlap, no double-booking within this run, and max-hours
// headroom. Workers arrive sorted by ID, keeping candidate order stable.
func eligibleWorkers(
	slot model.Slot,
	workers []model.Worker,
	constraintsByWorker map[string][]model.Constraint,
	assignedSlots map[string][]model.Slot,
	ledger *Ledger,
) []model.Worker {
	eligible := make([]model.Worker, 0, len(workers))

	for _, worker := range workers {
		if !worker.IsQualified(slot.RoleID) {
			continue
		}

		blocked := false
		for _, constraint := range constraintsByWorker[worker.ID] {
			if constraint.Blocks(slot.Start, slot.End) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}

		// Pairwise scan is fine at hundreds of slots; an interval tree per
		// worker is the upgrade path if counts grow to the thousands.
		overlapping := false
		for _, held := range assignedSlots[worker.ID] {
			if slot.Overlaps(held) {
				overlapping = true
				break
			}
		}
		if overlapping {
			continue
		}

		if worker.MaxHoursPerPeriod != nil &&
			ledger.RealHours[worker.ID]+slot.Hours() > *worker.MaxHoursPerPeriod {
			continue
		}

		eligible = append(eligible, worker)
	}

	return eligible
}

// pickWorker selects the eligible worker with the minimum rotation-penalized
// weighted-hours score, breaking ties with a seeded random draw so the run
// is reproducible but not biased toward insertion order.
func pickWorker(eligible []model.Worker, slot model.Slot, ledger *Ledger, rng *rand.Rand) model.Worker {
	bestScore := math.Inf(1)
	var tied []model.Worker

	for _, worker := range eligible {
		score := ledger.WeightedHours[worker.ID] * ledger.RotationPenalty(worker.ID, slot.RoleID, slot.Start)

		switch {
		case score < bestScore-scoreEpsilon:
			bestScore = score
			tied = tied[:0]
			tied = append(tied, worker)
		case math.Abs(score-bestScore) <= scoreEpsilon:
			tied = append(tied, worker)
		}
	}

	if len(tied) == 1 {
		return tied[0]
	}
	return tied[rng.Intn(len(tied))]
}
