package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jdavenport/fairroster/internal/config"
	"github.com/jdavenport/fairroster/pkg/core/engine"
	"github.com/jdavenport/fairroster/pkg/core/model"
)

// WorkerStats is one row of the per-worker fairness summary
type WorkerStats struct {
	WorkerID       string
	Name           string
	AssignedShifts int
	RealHours      float64
	WeightedHours  float64
}

// expandRecurringConstraints turns configured rrule-based unavailability
// rules into concrete constraint intervals overlapping the period
func expandRecurringConstraints(rules []config.RecurringConstraint, period model.Period) ([]model.Constraint, error) {
	constraints := make([]model.Constraint, 0)

	for i, rule := range rules {
		parsed, err := rrule.StrToRRule(rule.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for recurring constraint %d: %w", i, err)
		}

		startClock := model.TimeOfDay{}
		if rule.StartTime != "" {
			startClock, err = model.ParseTimeOfDay(rule.StartTime)
			if err != nil {
				return nil, fmt.Errorf("invalid startTime for recurring constraint %d: %w", i, err)
			}
		}
		duration := time.Duration(rule.DurationHours * float64(time.Hour))

		// Search a day either side so intervals straddling the period
		// boundary are still caught
		searchStart := period.Start.AddDate(0, 0, -1)
		searchEnd := period.End.AddDate(0, 0, 1)
		parsed.DTStart(searchStart)

		for _, occurrence := range parsed.Between(searchStart, searchEnd, true) {
			start := startClock.OnDay(occurrence)
			end := start.Add(duration)
			if start.Before(period.End) && end.After(period.Start) {
				constraints = append(constraints, model.Constraint{
					WorkerID: rule.WorkerID,
					Start:    start,
					End:      end,
				})
			}
		}
	}

	return constraints, nil
}

// buildWorkerStats reads the final ledger state into report rows sorted by
// worker name
func buildWorkerStats(workers []model.Worker, ledger *engine.Ledger) []WorkerStats {
	stats := make([]WorkerStats, 0, len(workers))
	for _, worker := range workers {
		stats = append(stats, WorkerStats{
			WorkerID:       worker.ID,
			Name:           worker.Name,
			AssignedShifts: ledger.AssignedCount[worker.ID],
			RealHours:      ledger.RealHours[worker.ID],
			WeightedHours:  ledger.WeightedHours[worker.ID],
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

// logDiagnostics mirrors run diagnostics into the structured log at the
// matching level
func logDiagnostics(logger *zap.Logger, diagnostics []model.Diagnostic) {
	for _, diag := range diagnostics {
		switch diag.Severity {
		case model.SeverityError:
			logger.Error(diag.Message)
		case model.SeverityWarning:
			logger.Warn(diag.Message)
		default:
			logger.Info(diag.Message)
		}
	}
}
