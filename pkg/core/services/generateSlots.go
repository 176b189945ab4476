package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jdavenport/fairroster/internal/config"
	"github.com/jdavenport/fairroster/pkg/core/model"
	"github.com/jdavenport/fairroster/pkg/core/slotgen"
)

// GenerateSlotsStore defines the database operations needed to generate
// and persist slots for a period
type GenerateSlotsStore interface {
	GetPeriod(ctx context.Context, periodID string) (*model.Period, error)
	GetRoleDefinitions(ctx context.Context, periodID string) ([]model.RoleDefinition, error)
	ReplaceSlots(ctx context.Context, periodID string, slots []model.Slot) error
}

// GenerateSlotsResult contains the slot generation results
type GenerateSlotsResult struct {
	Period      *model.Period
	Slots       []model.Slot
	Diagnostics []model.Diagnostic
	Saved       bool
}

// GenerateSlots materializes the period's role definitions into concrete
// coverage slots and atomically replaces any previously generated slots
// (and their assignments) for the period. With dryRun nothing is saved.
func GenerateSlots(
	ctx context.Context,
	store GenerateSlotsStore,
	logger *zap.Logger,
	periodID string,
	genCfg config.GeneratorConfig,
	dryRun bool,
) (*GenerateSlotsResult, error) {
	logger.Debug("Starting generateSlots",
		zap.String("period_id", periodID),
		zap.Bool("dry_run", dryRun))

	period, err := store.GetPeriod(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch period: %w", err)
	}
	logger.Debug("Loaded period",
		zap.String("name", period.Name),
		zap.Time("start", period.Start),
		zap.Time("end", period.End))

	if !period.Start.Before(period.End) {
		return nil, fmt.Errorf("period %q has start %s not before end %s", period.Name, period.Start, period.End)
	}

	roles, err := store.GetRoleDefinitions(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch role definitions: %w", err)
	}
	logger.Debug("Loaded role definitions", zap.Int("count", len(roles)))

	if len(roles) == 0 {
		return nil, fmt.Errorf("no role definitions for period %q - nothing to generate", period.Name)
	}

	slots, diagnostics := slotgen.Generate(slotgen.Config{
		Period:               *period,
		Roles:                roles,
		MaxIterationsPerRole: genCfg.MaxIterationsPerRole,
		MaxDegenerateRuns:    genCfg.MaxDegenerateRuns,
	})

	logger.Info("Slot generation completed",
		zap.Int("slots", len(slots)),
		zap.Int("diagnostics", len(diagnostics)))
	logDiagnostics(logger, diagnostics)

	result := &GenerateSlotsResult{
		Period:      period,
		Slots:       slots,
		Diagnostics: diagnostics,
	}

	if dryRun {
		logger.Info("Dry run mode - slots not saved")
		return result, nil
	}

	if err := store.ReplaceSlots(ctx, periodID, slots); err != nil {
		return nil, fmt.Errorf("failed to save slots: %w", err)
	}
	result.Saved = true
	logger.Info("Slots saved", zap.Int("count", len(slots)))

	return result, nil
}
