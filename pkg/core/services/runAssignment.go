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

// RunAssignmentStore defines the database operations needed to assign
// workers to a period's slots
type RunAssignmentStore interface {
	GetPeriod(ctx context.Context, periodID string) (*model.Period, error)
	GetRoleDefinitions(ctx context.Context, periodID string) ([]model.RoleDefinition, error)
	GetSlots(ctx context.Context, periodID string) ([]model.Slot, error)
	GetWorkers(ctx context.Context) ([]model.Worker, error)
	GetConstraints(ctx context.Context) ([]model.Constraint, error)
	GetDifficultyRatings(ctx context.Context) ([]model.DifficultyRating, error)
	SaveAssignments(ctx context.Context, assignments []model.Assignment) error
}

// RunAssignmentResult contains the assignment run results
type RunAssignmentResult struct {
	Period      *model.Period
	Assignments []model.Assignment
	Success     bool
	Unassigned  int
	Diagnostics []model.Diagnostic
	Stats       []WorkerStats
	Saved       bool
}

// RunAssignment loads everything a run needs, screens the subjective
// ratings, runs the assignment engine, and persists the resulting
// assignments in one transaction. With dryRun nothing is saved; with
// forceCommit assignments are saved even when the run was not successful.
func RunAssignment(
	ctx context.Context,
	store RunAssignmentStore,
	cfg *config.Config,
	logger *zap.Logger,
	periodID string,
	seed int64,
	dryRun bool,
	forceCommit bool,
) (*RunAssignmentResult, error) {
	logger.Debug("Starting assignment run",
		zap.String("period_id", periodID),
		zap.Int64("seed", seed),
		zap.Bool("dry_run", dryRun),
		zap.Bool("force_commit", forceCommit))

	period, err := store.GetPeriod(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch period: %w", err)
	}

	roles, err := store.GetRoleDefinitions(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch role definitions: %w", err)
	}
	logger.Debug("Loaded role definitions", zap.Int("count", len(roles)))

	slots, err := store.GetSlots(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slots: %w", err)
	}
	logger.Debug("Loaded slots", zap.Int("count", len(slots)))

	if len(slots) == 0 {
		return nil, fmt.Errorf("no slots found for period %q - please run generateSlots first", period.Name)
	}

	workers, err := store.GetWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workers: %w", err)
	}
	logger.Debug("Loaded workers", zap.Int("count", len(workers)))

	constraints, err := store.GetConstraints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch constraints: %w", err)
	}

	recurring, err := expandRecurringConstraints(cfg.RecurringConstraints, *period)
	if err != nil {
		return nil, fmt.Errorf("failed to expand recurring constraints: %w", err)
	}
	constraints = append(constraints, recurring...)
	logger.Debug("Resolved constraints",
		zap.Int("stored", len(constraints)-len(recurring)),
		zap.Int("recurring", len(recurring)))

	ratings, err := store.GetDifficultyRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch difficulty ratings: %w", err)
	}

	screened, screenDiags := difficulty.ScreenRatings(ratings, cfg.Policy())
	logger.Debug("Screened difficulty ratings",
		zap.Int("submitted", len(ratings)),
		zap.Int("kept", len(screened)),
		zap.String("policy", string(cfg.Policy())))

	diffModel := difficulty.NewModel(cfg.AlphaValue(), roles, screened)

	logger.Info("Running assignment engine",
		zap.Int("slots", len(slots)),
		zap.Int("workers", len(workers)),
		zap.Float64("alpha", cfg.AlphaValue()))

	outcome := engine.Assign(engine.Request{
		Slots:       slots,
		Roles:       roles,
		Workers:     workers,
		Constraints: constraints,
		Difficulty:  diffModel,
		Seed:        seed,
		BestEffort:  !cfg.Strict(),
	})

	diagnostics := append(screenDiags, outcome.Diagnostics...)
	logDiagnostics(logger, diagnostics)

	logger.Info("Assignment completed",
		zap.Bool("success", outcome.Success),
		zap.Int("unassigned", outcome.Unassigned))

	result := &RunAssignmentResult{
		Period:      period,
		Assignments: outcome.Assignments,
		Success:     outcome.Success,
		Unassigned:  outcome.Unassigned,
		Diagnostics: diagnostics,
		Stats:       buildWorkerStats(workers, outcome.Ledger),
	}

	shouldSave := !dryRun && (outcome.Success || forceCommit)
	if shouldSave {
		logger.Info("Saving assignments",
			zap.Bool("forced", forceCommit && !outcome.Success))
		if err := store.SaveAssignments(ctx, outcome.Assignments); err != nil {
			return nil, fmt.Errorf("failed to save assignments: %w", err)
		}
		result.Saved = true
		logger.Info("Assignments saved", zap.Int("count", len(outcome.Assignments)))
	} else if dryRun {
		logger.Info("Dry run mode - assignments not saved")
	} else {
		logger.Warn("Run unsuccessful - assignments not saved (use forceCommit to save anyway)")
	}

	return result, nil
}
