package difficulty

import (
	"sort"

	"github.com/jdavenport/fairroster/pkg/core/model"
)

// RatingPolicy selects how flagged rating sets are handled
type RatingPolicy string

const (
	// PolicyDiscard drops a flagged worker's entire rating set so they fall
	// back to base difficulty for every role
	PolicyDiscard RatingPolicy = "discard"

	// PolicyNormalize replaces every worker's ratings with rank-normalized
	// values, neutralizing uniform rating sets instead of discarding them
	PolicyNormalize RatingPolicy = "normalize"
)

// flatVarianceThreshold is the variance below which a set of values is
// considered effectively identical
const flatVarianceThreshold = 1e-4

// Rank-normalized ratings are spread across this range, centered on the
// neutral difficulty multiplier of 1.0
const (
	normalizedMin = 0.5
	normalizedMax = 1.5
)

// ScreenRatings applies the anti-gaming screen over a batch of imported
// subjective ratings, once, before assignment. A worker who rated every
// role identically is flagged: under PolicyDiscard their whole rating set
// is dropped, under PolicyNormalize all rating sets are replaced by their
// within-worker ranks. Roles are also checked for negligible spread in
// their average ratings, which makes difficulty weighting ineffective.
func ScreenRatings(ratings []model.DifficultyRating, policy RatingPolicy) ([]model.DifficultyRating, []model.Diagnostic) {
	diagnostics := make([]model.Diagnostic, 0)

	byWorker := make(map[string][]model.DifficultyRating)
	workerOrder := make([]string, 0)
	for _, rating := range ratings {
		if _, seen := byWorker[rating.WorkerID]; !seen {
			workerOrder = append(workerOrder, rating.WorkerID)
		}
		byWorker[rating.WorkerID] = append(byWorker[rating.WorkerID], rating)
	}
	sort.Strings(workerOrder)

	flagged := make(map[string]bool)
	for _, workerID := range workerOrder {
		values := make([]float64, 0, len(byWorker[workerID]))
		for _, rating := range byWorker[workerID] {
			values = append(values, rating.Value)
		}
		// A single rating carries no variance signal either way
		if len(values) >= 2 && variance(values) < flatVarianceThreshold {
			flagged[workerID] = true
			diagnostics = append(diagnostics,
				model.Warningf("worker %s rated every role identically; ratings carry no signal", workerID))
		}
	}

	kept := make([]model.DifficultyRating, 0, len(ratings))
	switch policy {
	case PolicyNormalize:
		for _, workerID := range workerOrder {
			kept = append(kept, rankNormalize(byWorker[workerID])...)
		}
	default:
		for _, workerID := range workerOrder {
			if flagged[workerID] {
				continue
			}
			kept = append(kept, byWorker[workerID]...)
		}
	}

	if diag, flat := roleSpreadCheck(kept, flagged); flat {
		diagnostics = append(diagnostics, diag)
	}

	return kept, diagnostics
}

// rankNormalize maps a worker's ratings onto [normalizedMin, normalizedMax]
// by their average rank, so only the ordering of roles survives. Ties share
// a rank; a worker with one rating gets the neutral midpoint.
func rankNormalize(workerRatings []model.DifficultyRating) []model.DifficultyRating {
	n := len(workerRatings)
	if n == 0 {
		return nil
	}

	mid := (normalizedMin + normalizedMax) / 2
	if n == 1 {
		normalized := workerRatings[0]
		normalized.Value = mid
		return []model.DifficultyRating{normalized}
	}

	sorted := make([]model.DifficultyRating, n)
	copy(sorted, workerRatings)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Value < sorted[j].Value })

	// Average rank per distinct value, scaled onto the normalized range
	rankByValue := make(map[float64]float64)
	i := 0
	for i < n {
		j := i
		for j < n && sorted[j].Value == sorted[i].Value {
			j++
		}
		avgRank := float64(i+j-1) / 2
		rankByValue[sorted[i].Value] = normalizedMin + (normalizedMax-normalizedMin)*avgRank/float64(n-1)
		i = j
	}

	normalized := make([]model.DifficultyRating, 0, n)
	for _, rating := range workerRatings {
		rating.Value = rankByValue[rating.Value]
		normalized = append(normalized, rating)
	}
	return normalized
}

// roleSpreadCheck reports whether the per-role average ratings are so close
// together that difficulty weighting cannot differentiate the roles.
// Flagged workers' ratings carry no signal and are excluded from the
// averages even when a policy keeps them.
func roleSpreadCheck(ratings []model.DifficultyRating, flagged map[string]bool) (model.Diagnostic, bool) {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, rating := range ratings {
		if flagged[rating.WorkerID] {
			continue
		}
		sums[rating.RoleID] += rating.Value
		counts[rating.RoleID]++
	}

	if len(sums) < 2 {
		return model.Diagnostic{}, false
	}

	averages := make([]float64, 0, len(sums))
	for roleID, sum := range sums {
		averages = append(averages, sum/float64(counts[roleID]))
	}

	if variance(averages) >= flatVarianceThreshold {
		return model.Diagnostic{}, false
	}
	return model.Infof("average ratings are nearly identical across %d roles; difficulty weighting will have little effect", len(sums)), true
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return sq / float64(len(values))
}
