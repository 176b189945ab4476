package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jdavenport/fairroster/pkg/core/model"
)

// ImportStore defines the database operations needed to load a dataset
type ImportStore interface {
	InsertPeriod(ctx context.Context, period model.Period) error
	InsertRoleDefinitions(ctx context.Context, periodID string, roles []model.RoleDefinition) error
	InsertWorkers(ctx context.Context, workers []model.Worker) error
	InsertConstraints(ctx context.Context, constraints []model.Constraint) error
	InsertDifficultyRatings(ctx context.Context, ratings []model.DifficultyRating) error
}

// DatasetRole describes a role definition in a dataset file
type DatasetRole struct {
	Name           string  `yaml:"name" validate:"required"`
	Headcount      int     `yaml:"headcount" validate:"required,min=1"`
	DurationHours  float64 `yaml:"durationHours" validate:"required,gt=0"`
	WorkStart      string  `yaml:"workStart,omitempty"`
	WorkEnd        string  `yaml:"workEnd,omitempty"`
	Overnight      bool    `yaml:"overnight,omitempty"`
	BaseDifficulty float64 `yaml:"baseDifficulty,omitempty"`
}

// DatasetInterval is an unavailability interval in a dataset file
type DatasetInterval struct {
	Start time.Time `yaml:"start" validate:"required"`
	End   time.Time `yaml:"end" validate:"required"`
}

// DatasetWorker describes a worker in a dataset file. Roles and rating
// keys refer to role names within the same file.
type DatasetWorker struct {
	Name              string             `yaml:"name" validate:"required"`
	MaxHoursPerPeriod *float64           `yaml:"maxHoursPerPeriod,omitempty" validate:"omitempty,gt=0"`
	Roles             []string           `yaml:"roles" validate:"required,min=1"`
	Unavailable       []DatasetInterval  `yaml:"unavailable,omitempty" validate:"dive"`
	Ratings           map[string]float64 `yaml:"ratings,omitempty"`
}

// Dataset is the yaml bulk-load format: one period with its roles,
// workers, constraints and subjective ratings
type Dataset struct {
	Period struct {
		Name  string    `yaml:"name" validate:"required"`
		Start time.Time `yaml:"start" validate:"required"`
		End   time.Time `yaml:"end" validate:"required"`
	} `yaml:"period"`
	Roles   []DatasetRole   `yaml:"roles" validate:"required,min=1,dive"`
	Workers []DatasetWorker `yaml:"workers,omitempty" validate:"dive"`
}

// ImportResult summarizes what was loaded
type ImportResult struct {
	PeriodID    string
	Roles       int
	Workers     int
	Constraints int
	Ratings     int
}

var datasetValidate = validator.New()

// ImportDataset loads a yaml dataset file and inserts the period, its
// roles, workers, qualifications, constraints and ratings.
func ImportDataset(ctx context.Context, store ImportStore, logger *zap.Logger, path string) (*ImportResult, error) {
	logger.Debug("Importing dataset", zap.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}

	var dataset Dataset
	if err := yaml.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("failed to parse dataset file: %w", err)
	}
	if err := datasetValidate.Struct(&dataset); err != nil {
		return nil, fmt.Errorf("dataset validation failed: %w", err)
	}
	if !dataset.Period.Start.Before(dataset.Period.End) {
		return nil, fmt.Errorf("period start must be before end")
	}

	period := model.Period{
		ID:    uuid.New().String(),
		Name:  dataset.Period.Name,
		Start: dataset.Period.Start,
		End:   dataset.Period.End,
	}

	roles, roleIDsByName, err := buildRoles(dataset.Roles)
	if err != nil {
		return nil, err
	}

	workers := make([]model.Worker, 0, len(dataset.Workers))
	constraints := make([]model.Constraint, 0)
	ratings := make([]model.DifficultyRating, 0)

	for _, dw := range dataset.Workers {
		worker := model.Worker{
			ID:                uuid.New().String(),
			Name:              dw.Name,
			MaxHoursPerPeriod: dw.MaxHoursPerPeriod,
			QualifiedRoleIDs:  make(map[string]bool, len(dw.Roles)),
		}
		for _, roleName := range dw.Roles {
			roleID, ok := roleIDsByName[roleName]
			if !ok {
				return nil, fmt.Errorf("worker %q is qualified for unknown role %q", dw.Name, roleName)
			}
			worker.QualifiedRoleIDs[roleID] = true
		}
		workers = append(workers, worker)

		for _, interval := range dw.Unavailable {
			if !interval.Start.Before(interval.End) {
				return nil, fmt.Errorf("worker %q has an unavailability interval with start not before end", dw.Name)
			}
			constraints = append(constraints, model.Constraint{
				WorkerID: worker.ID,
				Start:    interval.Start,
				End:      interval.End,
			})
		}

		for roleName, value := range dw.Ratings {
			roleID, ok := roleIDsByName[roleName]
			if !ok {
				return nil, fmt.Errorf("worker %q rated unknown role %q", dw.Name, roleName)
			}
			ratings = append(ratings, model.DifficultyRating{
				WorkerID: worker.ID,
				RoleID:   roleID,
				Value:    value,
			})
		}
	}

	if err := store.InsertPeriod(ctx, period); err != nil {
		return nil, fmt.Errorf("failed to insert period: %w", err)
	}
	if err := store.InsertRoleDefinitions(ctx, period.ID, roles); err != nil {
		return nil, fmt.Errorf("failed to insert role definitions: %w", err)
	}
	if len(workers) > 0 {
		if err := store.InsertWorkers(ctx, workers); err != nil {
			return nil, fmt.Errorf("failed to insert workers: %w", err)
		}
	}
	if len(constraints) > 0 {
		if err := store.InsertConstraints(ctx, constraints); err != nil {
			return nil, fmt.Errorf("failed to insert constraints: %w", err)
		}
	}
	if len(ratings) > 0 {
		if err := store.InsertDifficultyRatings(ctx, ratings); err != nil {
			return nil, fmt.Errorf("failed to insert difficulty ratings: %w", err)
		}
	}

	logger.Info("Dataset imported",
		zap.String("period", period.Name),
		zap.Int("roles", len(roles)),
		zap.Int("workers", len(workers)),
		zap.Int("constraints", len(constraints)),
		zap.Int("ratings", len(ratings)))

	return &ImportResult{
		PeriodID:    period.ID,
		Roles:       len(roles),
		Workers:     len(workers),
		Constraints: len(constraints),
		Ratings:     len(ratings),
	}, nil
}

func buildRoles(datasetRoles []DatasetRole) ([]model.RoleDefinition, map[string]string, error) {
	roles := make([]model.RoleDefinition, 0, len(datasetRoles))
	idsByName := make(map[string]string, len(datasetRoles))

	for _, dr := range datasetRoles {
		if _, dup := idsByName[dr.Name]; dup {
			return nil, nil, fmt.Errorf("duplicate role name %q", dr.Name)
		}

		role := model.RoleDefinition{
			ID:              uuid.New().String(),
			Name:            dr.Name,
			HeadcountNeeded: dr.Headcount,
			ShiftDuration:   time.Duration(dr.DurationHours * float64(time.Hour)),
			BaseDifficulty:  dr.BaseDifficulty,
		}
		if role.BaseDifficulty == 0 {
			role.BaseDifficulty = 1.0
		}

		if (dr.WorkStart == "") != (dr.WorkEnd == "") {
			return nil, nil, fmt.Errorf("role %q must set both workStart and workEnd or neither", dr.Name)
		}
		if dr.WorkStart != "" {
			start, err := model.ParseTimeOfDay(dr.WorkStart)
			if err != nil {
				return nil, nil, fmt.Errorf("role %q: %w", dr.Name, err)
			}
			end, err := model.ParseTimeOfDay(dr.WorkEnd)
			if err != nil {
				return nil, nil, fmt.Errorf("role %q: %w", dr.Name, err)
			}
			role.WorkWindow = &model.WorkWindow{Start: start, End: end, IsOvernight: dr.Overnight}
		}

		idsByName[dr.Name] = role.ID
		roles = append(roles, role)
	}

	return roles, idsByName, nil
}
