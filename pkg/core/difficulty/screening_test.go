package difficulty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdavenport/fairroster/pkg/core/model"
)

func TestScreenRatings_DiscardDropsFlatRaters(t *testing.T) {
	ratings := []model.DifficultyRating{
		{WorkerID: "gamer", RoleID: "cook", Value: 3.0},
		{WorkerID: "gamer", RoleID: "reception", Value: 3.0},
		{WorkerID: "gamer", RoleID: "cleanup", Value: 3.0},
		{WorkerID: "honest", RoleID: "cook", Value: 3.0},
		{WorkerID: "honest", RoleID: "reception", Value: 1.0},
	}

	kept, diags := ScreenRatings(ratings, PolicyDiscard)

	require.Len(t, kept, 2)
	for _, rating := range kept {
		assert.Equal(t, "honest", rating.WorkerID)
	}

	require.Len(t, diags, 1)
	assert.Equal(t, model.SeverityWarning, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "gamer")
}

func TestScreenRatings_SingleRatingIsNotFlagged(t *testing.T) {
	ratings := []model.DifficultyRating{
		{WorkerID: "alice", RoleID: "cook", Value: 2.0},
	}

	kept, diags := ScreenRatings(ratings, PolicyDiscard)

	assert.Len(t, kept, 1)
	assert.Empty(t, diags)
}

func TestScreenRatings_NormalizeMapsRanksOntoRange(t *testing.T) {
	ratings := []model.DifficultyRating{
		{WorkerID: "alice", RoleID: "cook", Value: 5.0},
		{WorkerID: "alice", RoleID: "reception", Value: 1.0},
		{WorkerID: "alice", RoleID: "cleanup", Value: 3.0},
	}

	kept, diags := ScreenRatings(ratings, PolicyNormalize)

	require.Len(t, kept, 3)
	assert.Empty(t, diags)

	byRole := make(map[string]float64)
	for _, rating := range kept {
		byRole[rating.RoleID] = rating.Value
	}
	assert.InDelta(t, 1.5, byRole["cook"], 1e-9)
	assert.InDelta(t, 1.0, byRole["cleanup"], 1e-9)
	assert.InDelta(t, 0.5, byRole["reception"], 1e-9)
}

func TestScreenRatings_NormalizeNeutralizesFlatRaters(t *testing.T) {
	ratings := []model.DifficultyRating{
		{WorkerID: "gamer", RoleID: "cook", Value: 5.0},
		{WorkerID: "gamer", RoleID: "reception", Value: 5.0},
	}

	kept, diags := ScreenRatings(ratings, PolicyNormalize)

	require.Len(t, kept, 2)
	for _, rating := range kept {
		assert.InDelta(t, 1.0, rating.Value, 1e-9)
	}

	// Still flagged so the import surfaces it
	require.Len(t, diags, 1)
	assert.Equal(t, model.SeverityWarning, diags[0].Severity)
}

func TestScreenRatings_SpreadCheckIgnoresFlaggedRaters(t *testing.T) {
	// The flat rater is kept under normalize (as all 1.0), but their
	// ratings must not drag the per-role averages together
	ratings := []model.DifficultyRating{
		{WorkerID: "gamer", RoleID: "cook", Value: 5.0},
		{WorkerID: "gamer", RoleID: "reception", Value: 5.0},
		{WorkerID: "honest", RoleID: "cook", Value: 4.0},
		{WorkerID: "honest", RoleID: "reception", Value: 1.0},
	}

	_, diags := ScreenRatings(ratings, PolicyNormalize)

	require.Len(t, diags, 1)
	assert.Equal(t, model.SeverityWarning, diags[0].Severity)
}

func TestScreenRatings_NormalizeSingleRatingGetsMidpoint(t *testing.T) {
	ratings := []model.DifficultyRating{
		{WorkerID: "alice", RoleID: "cook", Value: 4.7},
	}

	kept, _ := ScreenRatings(ratings, PolicyNormalize)

	require.Len(t, kept, 1)
	assert.InDelta(t, 1.0, kept[0].Value, 1e-9)
}

func TestScreenRatings_FlatRoleAveragesEmitInfo(t *testing.T) {
	// Distinct within-worker spreads, but both roles average to 2.0
	ratings := []model.DifficultyRating{
		{WorkerID: "alice", RoleID: "cook", Value: 1.0},
		{WorkerID: "alice", RoleID: "reception", Value: 3.0},
		{WorkerID: "bob", RoleID: "cook", Value: 3.0},
		{WorkerID: "bob", RoleID: "reception", Value: 1.0},
	}

	kept, diags := ScreenRatings(ratings, PolicyDiscard)

	assert.Len(t, kept, 4)
	require.Len(t, diags, 1)
	assert.Equal(t, model.SeverityInfo, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "nearly identical")
}

func TestScreenRatings_EmptyInput(t *testing.T) {
	kept, diags := ScreenRatings(nil, PolicyDiscard)

	assert.Empty(t, kept)
	assert.Empty(t, diags)
}
