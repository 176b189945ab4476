package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jdavenport/fairroster/internal/config"
	"github.com/jdavenport/fairroster/pkg/core/difficulty"
	"github.com/jdavenport/fairroster/pkg/core/engine"
	"github.com/jdavenport/fairroster/pkg/core/model"
)

// FairnessReportStore defines the database operations needed to build the
// fairness report for a period
type FairnessReportStore interface {
	GetPeriod(ctx context.Context, periodID string) (*model.Period, error)
	GetRoleDefinitions(ctx context.Context, periodID string) ([]model.RoleDefinition, error)
	GetSlots(ctx context.Context, periodID string) ([]model.Slot, error)
	GetWorkers(ctx context.Context) ([]model.Worker, error)
	GetDifficultyRatings(ctx context.Context) ([]model.DifficultyRating, error)
	GetAssignments(ctx context.Context, periodID string) ([]model.Assignment, error)
}

// FairnessReportResult contains per-worker totals for the period's
// persisted assignments
type FairnessReportResult struct {
	Period     *model.Period
	Rows       []WorkerStats
	Unassigned int
}

// FairnessReport rebuilds the fairness ledger from the period's persisted
// assignments so operators can review real hours, weighted hours and shift
// counts per worker.
func FairnessReport(
	ctx context.Context,
	store FairnessReportStore,
	cfg *config.Config,
	logger *zap.Logger,
	periodID string,
) (*FairnessReportResult, error) {
	logger.Debug("Building fairness report", zap.String("period_id", periodID))

	period, err := store.GetPeriod(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch period: %w", err)
	}

	roles, err := store.GetRoleDefinitions(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch role definitions: %w", err)
	}

	slots, err := store.GetSlots(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slots: %w", err)
	}

	workers, err := store.GetWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workers: %w", err)
	}

	assignments, err := store.GetAssignments(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}
	logger.Debug("Loaded assignments", zap.Int("count", len(assignments)))

	ratings, err := store.GetDifficultyRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch difficulty ratings: %w", err)
	}
	screened, _ := difficulty.ScreenRatings(ratings, cfg.Policy())
	diffModel := difficulty.NewModel(cfg.AlphaValue(), roles, screened)

	slotsByID := make(map[string]model.Slot, len(slots))
	for _, slot := range slots {
		slotsByID[slot.ID] = slot
	}

	ledger := engine.NewLedger(workers)
	unassigned := 0
	for _, assignment := range assignments {
		if !assignment.IsAssigned() {
			unassigned++
			continue
		}
		slot, ok := slotsByID[assignment.SlotID]
		if !ok {
			logger.Warn("Assignment references unknown slot", zap.String("slot_id", assignment.SlotID))
			continue
		}
		ledger.Record(assignment.WorkerID, slot.RoleID, slot,
			diffModel.EffectiveDifficulty(assignment.WorkerID, slot.RoleID))
	}

	logger.Info("Fairness report built",
		zap.Int("workers", len(workers)),
		zap.Int("unassigned", unassigned))

	return &FairnessReportResult{
		Period:     period,
		Rows:       buildWorkerStats(workers, ledger),
		Unassigned: unassigned,
	}, nil
}
