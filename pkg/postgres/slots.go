package postgres

import (
	"context"
	"fmt"

	"github.com/jdavenport/fairroster/pkg/core/model"
)

// GetSlots retrieves all slots of a period in chronological order
func (s *Store) GetSlots(ctx context.Context, periodID string) ([]model.Slot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, role_id, start_datetime, end_datetime, instance_index
		FROM slot
		WHERE period_id = $1
		ORDER BY start_datetime, role_id, instance_index
	`, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()

	var slots []model.Slot
	for rows.Next() {
		var slot model.Slot
		if err := rows.Scan(&slot.ID, &slot.RoleID, &slot.Start, &slot.End, &slot.InstanceIndex); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slots: %w", err)
	}
	return slots, nil
}

// ReplaceSlots atomically replaces a period's slots. Old slots and their
// assignments are deleted, new slots are inserted, and an empty assignment
// placeholder is created per slot. One transaction: commit all or nothing.
func (s *Store) ReplaceSlots(ctx context.Context, periodID string, slots []model.Slot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Assignments cascade from slots
	if _, err := tx.Exec(ctx, `DELETE FROM slot WHERE period_id = $1`, periodID); err != nil {
		return fmt.Errorf("failed to delete existing slots: %w", err)
	}

	for _, slot := range slots {
		_, err := tx.Exec(ctx, `
			INSERT INTO slot (id, period_id, role_id, start_datetime, end_datetime, instance_index)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, slot.ID, periodID, slot.RoleID, slot.Start, slot.End, slot.InstanceIndex)
		if err != nil {
			return fmt.Errorf("failed to insert slot: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO assignment (slot_id, worker_id) VALUES ($1, NULL)
		`, slot.ID)
		if err != nil {
			return fmt.Errorf("failed to insert assignment placeholder: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
