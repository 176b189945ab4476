package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jdavenport/fairroster/pkg/core/model"
)

// GetWorkers retrieves all workers with their qualified role ids pre-loaded
func (s *Store) GetWorkers(ctx context.Context) ([]model.Worker, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, max_hours_per_period
		FROM worker
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query workers: %w", err)
	}
	defer rows.Close()

	var workers []model.Worker
	index := make(map[string]int)
	for rows.Next() {
		var worker model.Worker
		if err := rows.Scan(&worker.ID, &worker.Name, &worker.MaxHoursPerPeriod); err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		worker.QualifiedRoleIDs = make(map[string]bool)
		index[worker.ID] = len(workers)
		workers = append(workers, worker)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workers: %w", err)
	}

	qualRows, err := s.pool.Query(ctx, `SELECT worker_id, role_id FROM worker_qualification`)
	if err != nil {
		return nil, fmt.Errorf("failed to query qualifications: %w", err)
	}
	defer qualRows.Close()

	for qualRows.Next() {
		var workerID, roleID string
		if err := qualRows.Scan(&workerID, &roleID); err != nil {
			return nil, fmt.Errorf("failed to scan qualification: %w", err)
		}
		if i, ok := index[workerID]; ok {
			workers[i].QualifiedRoleIDs[roleID] = true
		}
	}
	if err := qualRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating qualifications: %w", err)
	}

	return workers, nil
}

// InsertWorkers inserts workers and their qualifications
func (s *Store) InsertWorkers(ctx context.Context, workers []model.Worker) error {
	if len(workers) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, worker := range workers {
		_, err := tx.Exec(ctx, `
			INSERT INTO worker (id, name, max_hours_per_period)
			VALUES ($1, $2, $3)
		`, worker.ID, worker.Name, worker.MaxHoursPerPeriod)
		if err != nil {
			return fmt.Errorf("failed to insert worker %s: %w", worker.Name, err)
		}

		for roleID := range worker.QualifiedRoleIDs {
			_, err := tx.Exec(ctx, `
				INSERT INTO worker_qualification (worker_id, role_id)
				VALUES ($1, $2)
			`, worker.ID, roleID)
			if err != nil {
				return fmt.Errorf("failed to insert qualification for worker %s: %w", worker.Name, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetConstraints retrieves all unavailability constraints
func (s *Store) GetConstraints(ctx context.Context) ([]model.Constraint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT worker_id, start_datetime, end_datetime
		FROM worker_constraint
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query constraints: %w", err)
	}
	defer rows.Close()

	var constraints []model.Constraint
	for rows.Next() {
		var constraint model.Constraint
		if err := rows.Scan(&constraint.WorkerID, &constraint.Start, &constraint.End); err != nil {
			return nil, fmt.Errorf("failed to scan constraint: %w", err)
		}
		constraints = append(constraints, constraint)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating constraints: %w", err)
	}
	return constraints, nil
}

// InsertConstraints inserts unavailability constraints
func (s *Store) InsertConstraints(ctx context.Context, constraints []model.Constraint) error {
	if len(constraints) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, constraint := range constraints {
		_, err := tx.Exec(ctx, `
			INSERT INTO worker_constraint (id, worker_id, start_datetime, end_datetime)
			VALUES ($1, $2, $3, $4)
		`, uuid.New().String(), constraint.WorkerID, constraint.Start, constraint.End)
		if err != nil {
			return fmt.Errorf("failed to insert constraint: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetDifficultyRatings retrieves all subjective difficulty ratings
func (s *Store) GetDifficultyRatings(ctx context.Context) ([]model.DifficultyRating, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT worker_id, role_id, value
		FROM difficulty_rating
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query difficulty ratings: %w", err)
	}
	defer rows.Close()

	var ratings []model.DifficultyRating
	for rows.Next() {
		var rating model.DifficultyRating
		if err := rows.Scan(&rating.WorkerID, &rating.RoleID, &rating.Value); err != nil {
			return nil, fmt.Errorf("failed to scan difficulty rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating difficulty ratings: %w", err)
	}
	return ratings, nil
}

// InsertDifficultyRatings inserts subjective difficulty ratings
func (s *Store) InsertDifficultyRatings(ctx context.Context, ratings []model.DifficultyRating) error {
	if len(ratings) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rating := range ratings {
		_, err := tx.Exec(ctx, `
			INSERT INTO difficulty_rating (worker_id, role_id, value)
			VALUES ($1, $2, $3)
		`, rating.WorkerID, rating.RoleID, rating.Value)
		if err != nil {
			return fmt.Errorf("failed to insert difficulty rating: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
