package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jdavenport/fairroster/pkg/core/model"
)

// GetPeriod retrieves a scheduling period by id
func (s *Store) GetPeriod(ctx context.Context, periodID string) (*model.Period, error) {
	var period model.Period
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, start_datetime, end_datetime
		FROM scheduling_period
		WHERE id = $1
	`, periodID).Scan(&period.ID, &period.Name, &period.Start, &period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query period %s: %w", periodID, err)
	}
	return &period, nil
}

// GetPeriods retrieves all scheduling periods ordered by start
func (s *Store) GetPeriods(ctx context.Context) ([]model.Period, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, start_datetime, end_datetime
		FROM scheduling_period
		ORDER BY start_datetime
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query periods: %w", err)
	}
	defer rows.Close()

	var periods []model.Period
	for rows.Next() {
		var period model.Period
		if err := rows.Scan(&period.ID, &period.Name, &period.Start, &period.End); err != nil {
			return nil, fmt.Errorf("failed to scan period: %w", err)
		}
		periods = append(periods, period)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating periods: %w", err)
	}
	return periods, nil
}

// InsertPeriod inserts a new scheduling period
func (s *Store) InsertPeriod(ctx context.Context, period model.Period) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scheduling_period (id, name, start_datetime, end_datetime)
		VALUES ($1, $2, $3, $4)
	`, period.ID, period.Name, period.Start, period.End)
	if err != nil {
		return fmt.Errorf("failed to insert period: %w", err)
	}
	return nil
}

// GetRoleDefinitions retrieves the role definitions of a period
func (s *Store) GetRoleDefinitions(ctx context.Context, periodID string) ([]model.RoleDefinition, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, headcount_needed, shift_duration_minutes,
		       work_start_time, work_end_time, is_overnight, base_difficulty
		FROM role_definition
		WHERE period_id = $1
		ORDER BY name
	`, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query role definitions: %w", err)
	}
	defer rows.Close()

	var roles []model.RoleDefinition
	for rows.Next() {
		var role model.RoleDefinition
		var durationMinutes int
		var workStart, workEnd *string
		var overnight bool
		if err := rows.Scan(&role.ID, &role.Name, &role.HeadcountNeeded, &durationMinutes,
			&workStart, &workEnd, &overnight, &role.BaseDifficulty); err != nil {
			return nil, fmt.Errorf("failed to scan role definition: %w", err)
		}
		role.ShiftDuration = time.Duration(durationMinutes) * time.Minute

		if workStart != nil && workEnd != nil {
			start, err := model.ParseTimeOfDay(*workStart)
			if err != nil {
				return nil, fmt.Errorf("role %s has invalid work_start_time: %w", role.ID, err)
			}
			end, err := model.ParseTimeOfDay(*workEnd)
			if err != nil {
				return nil, fmt.Errorf("role %s has invalid work_end_time: %w", role.ID, err)
			}
			role.WorkWindow = &model.WorkWindow{Start: start, End: end, IsOvernight: overnight}
		}

		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role definitions: %w", err)
	}
	return roles, nil
}

// InsertRoleDefinitions inserts role definitions for a period
func (s *Store) InsertRoleDefinitions(ctx context.Context, periodID string, roles []model.RoleDefinition) error {
	if len(roles) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, role := range roles {
		var workStart, workEnd *string
		var overnight bool
		if role.WorkWindow != nil {
			start := role.WorkWindow.Start.String()
			end := role.WorkWindow.End.String()
			workStart, workEnd = &start, &end
			overnight = role.WorkWindow.IsOvernight
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO role_definition
				(id, period_id, name, headcount_needed, shift_duration_minutes,
				 work_start_time, work_end_time, is_overnight, base_difficulty)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, role.ID, periodID, role.Name, role.HeadcountNeeded,
			int(role.ShiftDuration.Minutes()), workStart, workEnd, overnight, role.BaseDifficulty)
		if err != nil {
			return fmt.Errorf("failed to insert role definition %s: %w", role.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
