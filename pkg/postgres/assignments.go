package postgres

import (
	"context"
	"fmt"

	"github.com/jdavenport/fairroster/pkg/core/model"
)

// GetAssignments retrieves a period's assignments
func (s *Store) GetAssignments(ctx context.Context, periodID string) ([]model.Assignment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.slot_id, a.worker_id
		FROM assignment a
		JOIN slot s ON s.id = a.slot_id
		WHERE s.period_id = $1
		ORDER BY s.start_datetime, s.role_id, s.instance_index
	`, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var assignment model.Assignment
		var workerID *string
		if err := rows.Scan(&assignment.SlotID, &workerID); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		if workerID != nil {
			assignment.WorkerID = *workerID
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}
	return assignments, nil
}

// SaveAssignments writes a run's assignments in one transaction so a run
// commits entirely or not at all
func (s *Store) SaveAssignments(ctx context.Context, assignments []model.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, assignment := range assignments {
		var workerID *string
		if assignment.WorkerID != "" {
			workerID = &assignment.WorkerID
		}

		_, err := tx.Exec(ctx, `
			UPDATE assignment SET worker_id = $2 WHERE slot_id = $1
		`, assignment.SlotID, workerID)
		if err != nil {
			return fmt.Errorf("failed to update assignment for slot %s: %w", assignment.SlotID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
