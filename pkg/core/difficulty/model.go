package difficulty

import (
	"github.com/jdavenport/fairroster/pkg/core/model"
)

// DefaultAlpha balances objective base difficulty against subjective
// ratings. Pure objective (1.0) ignores personalization; pure subjective
// (0.0) is gameable.
const DefaultAlpha = 0.5

// fallbackBaseDifficulty is used for roles with no known base difficulty
const fallbackBaseDifficulty = 1.0

// Model computes the perceived difficulty of a role for a worker by
// blending the role's objective base difficulty with the worker's optional
// subjective rating:
//
//	hybrid = alpha*base + (1-alpha)*subjective
//
// falling back to the base difficulty alone when no rating exists.
type Model struct {
	alpha   float64
	base    map[string]float64
	ratings map[string]map[string]float64
}

// NewModel builds a difficulty model from role definitions and an already
// screened batch of subjective ratings. Callers should run ScreenRatings
// over imported ratings first.
func NewModel(alpha float64, roles []model.RoleDefinition, ratings []model.DifficultyRating) *Model {
	base := make(map[string]float64, len(roles))
	for _, role := range roles {
		base[role.ID] = role.BaseDifficulty
	}

	byWorker := make(map[string]map[string]float64)
	for _, rating := range ratings {
		if byWorker[rating.WorkerID] == nil {
			byWorker[rating.WorkerID] = make(map[string]float64)
		}
		byWorker[rating.WorkerID][rating.RoleID] = rating.Value
	}

	return &Model{
		alpha:   alpha,
		base:    base,
		ratings: byWorker,
	}
}

// Alpha returns the run-wide blend factor
func (m *Model) Alpha() float64 {
	return m.alpha
}

// EffectiveDifficulty returns the hybrid difficulty of a role for a worker
func (m *Model) EffectiveDifficulty(workerID, roleID string) float64 {
	base, ok := m.base[roleID]
	if !ok {
		base = fallbackBaseDifficulty
	}

	if subjective, ok := m.ratings[workerID][roleID]; ok {
		return m.alpha*base + (1-m.alpha)*subjective
	}
	return base
}
