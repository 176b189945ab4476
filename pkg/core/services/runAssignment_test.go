package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jdavenport/fairroster/internal/config"
	"github.com/jdavenport/fairroster/pkg/core/model"
)

type mockAssignStore struct {
	period      *model.Period
	roles       []model.RoleDefinition
	slots       []model.Slot
	workers     []model.Worker
	constraints []model.Constraint
	ratings     []model.DifficultyRating

	saved     []model.Assignment
	saveCalls int
}

func (m *mockAssignStore) GetPeriod(ctx context.Context, periodID string) (*model.Period, error) {
	return m.period, nil
}

func (m *mockAssignStore) GetRoleDefinitions(ctx context.Context, periodID string) ([]model.RoleDefinition, error) {
	return m.roles, nil
}

func (m *mockAssignStore) GetSlots(ctx context.Context, periodID string) ([]model.Slot, error) {
	return m.slots, nil
}

func (m *mockAssignStore) GetWorkers(ctx context.Context) ([]model.Worker, error) {
	return m.workers, nil
}

func (m *mockAssignStore) GetConstraints(ctx context.Context) ([]model.Constraint, error) {
	return m.constraints, nil
}

func (m *mockAssignStore) GetDifficultyRatings(ctx context.Context) ([]model.DifficultyRating, error) {
	return m.ratings, nil
}

func (m *mockAssignStore) SaveAssignments(ctx context.Context, assignments []model.Assignment) error {
	m.saved = assignments
	m.saveCalls++
	return nil
}

func assignWorker(id string, roleIDs ...string) model.Worker {
	qualified := make(map[string]bool, len(roleIDs))
	for _, roleID := range roleIDs {
		qualified[roleID] = true
	}
	return model.Worker{ID: id, Name: id, QualifiedRoleIDs: qualified}
}

func sequentialSlots(roleID string, count int, hours int) []model.Slot {
	slots := make([]model.Slot, 0, count)
	for i := 0; i < count; i++ {
		start := monday.Add(time.Duration(i*hours) * time.Hour)
		slots = append(slots, model.Slot{
			ID:            fmt.Sprintf("s%d", i+1),
			RoleID:        roleID,
			Start:         start,
			End:           start.Add(time.Duration(hours) * time.Hour),
			InstanceIndex: 1,
		})
	}
	return slots
}

func coveredStore() *mockAssignStore {
	return &mockAssignStore{
		period: &model.Period{ID: "p1", Name: "January", Start: monday, End: monday.AddDate(0, 0, 2)},
		roles: []model.RoleDefinition{
			{ID: "cook", Name: "Cook", HeadcountNeeded: 1, ShiftDuration: 8 * time.Hour, BaseDifficulty: 1.0},
		},
		slots:   sequentialSlots("cook", 4, 8),
		workers: []model.Worker{assignWorker("alice", "cook"), assignWorker("bob", "cook")},
	}
}

func TestRunAssignment_AssignsAndSaves(t *testing.T) {
	store := coveredStore()

	result, err := RunAssignment(context.Background(), store, &config.Config{}, zap.NewNop(), "p1", 1, false, false)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Zero(t, result.Unassigned)
	assert.True(t, result.Saved)
	assert.Equal(t, 1, store.saveCalls)
	assert.Len(t, store.saved, 4)

	require.Len(t, result.Stats, 2)
	assert.Equal(t, "alice", result.Stats[0].Name)
	assert.Equal(t, "bob", result.Stats[1].Name)
	assert.InDelta(t, 16.0, result.Stats[0].RealHours, 1e-9)
	assert.InDelta(t, 16.0, result.Stats[1].RealHours, 1e-9)
}

func TestRunAssignment_DryRunDoesNotSave(t *testing.T) {
	store := coveredStore()

	result, err := RunAssignment(context.Background(), store, &config.Config{}, zap.NewNop(), "p1", 1, true, false)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.Saved)
	assert.Zero(t, store.saveCalls)
}

func TestRunAssignment_StrictFailureIsNotSaved(t *testing.T) {
	store := coveredStore()
	// Only one worker for two simultaneous instances
	store.workers = []model.Worker{assignWorker("alice", "cook")}
	store.slots = []model.Slot{
		{ID: "s1", RoleID: "cook", Start: monday, End: monday.Add(8 * time.Hour), InstanceIndex: 1},
		{ID: "s2", RoleID: "cook", Start: monday, End: monday.Add(8 * time.Hour), InstanceIndex: 2},
	}

	result, err := RunAssignment(context.Background(), store, &config.Config{}, zap.NewNop(), "p1", 1, false, false)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Unassigned)
	assert.False(t, result.Saved)
	assert.Zero(t, store.saveCalls)
}

func TestRunAssignment_ForceCommitSavesFailedRun(t *testing.T) {
	store := coveredStore()
	store.workers = []model.Worker{assignWorker("alice", "cook")}
	store.slots = []model.Slot{
		{ID: "s1", RoleID: "cook", Start: monday, End: monday.Add(8 * time.Hour), InstanceIndex: 1},
		{ID: "s2", RoleID: "cook", Start: monday, End: monday.Add(8 * time.Hour), InstanceIndex: 2},
	}

	result, err := RunAssignment(context.Background(), store, &config.Config{}, zap.NewNop(), "p1", 1, false, true)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.True(t, result.Saved)
	assert.Len(t, store.saved, 2)
}

func TestRunAssignment_BestEffortConfigSucceedsWithShortfall(t *testing.T) {
	strict := false
	store := coveredStore()
	store.workers = []model.Worker{assignWorker("alice", "cook")}
	store.slots = []model.Slot{
		{ID: "s1", RoleID: "cook", Start: monday, End: monday.Add(8 * time.Hour), InstanceIndex: 1},
		{ID: "s2", RoleID: "cook", Start: monday, End: monday.Add(8 * time.Hour), InstanceIndex: 2},
	}

	result, err := RunAssignment(context.Background(), store, &config.Config{StrictCompleteness: &strict}, zap.NewNop(), "p1", 1, false, false)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Unassigned)
	assert.True(t, result.Saved)
}

func TestRunAssignment_NoSlotsFails(t *testing.T) {
	store := coveredStore()
	store.slots = nil

	_, err := RunAssignment(context.Background(), store, &config.Config{}, zap.NewNop(), "p1", 1, false, false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "generateSlots")
}

func TestRunAssignment_RecurringConstraintExcludesWorker(t *testing.T) {
	store := coveredStore()
	cfg := &config.Config{
		RecurringConstraints: []config.RecurringConstraint{
			{WorkerID: "bob", RRule: "FREQ=DAILY", StartTime: "00:00", DurationHours: 24},
		},
	}

	result, err := RunAssignment(context.Background(), store, cfg, zap.NewNop(), "p1", 1, false, false)

	require.NoError(t, err)
	assert.True(t, result.Success)
	for _, assignment := range result.Assignments {
		assert.Equal(t, "alice", assignment.WorkerID)
	}
}

func TestRunAssignment_ScreeningDiagnosticsSurface(t *testing.T) {
	store := coveredStore()
	store.ratings = []model.DifficultyRating{
		{WorkerID: "bob", RoleID: "cook", Value: 5.0},
		{WorkerID: "bob", RoleID: "other", Value: 5.0},
	}

	result, err := RunAssignment(context.Background(), store, &config.Config{}, zap.NewNop(), "p1", 1, false, false)

	require.NoError(t, err)
	foundWarning := false
	for _, diag := range result.Diagnostics {
		if diag.Severity == model.SeverityWarning {
			foundWarning = true
		}
	}
	assert.True(t, foundWarning, "flat rating set should surface a warning")
}
