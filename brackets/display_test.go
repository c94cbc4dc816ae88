package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberarena/tournament-bot/models"
)

func intPtr(v int) *int { return &v }

func match(round, number int, bracket models.BracketType) *models.Match {
	return &models.Match{
		RoundNumber: round,
		MatchNumber: number,
		BracketType: bracket,
		Team1ID:     intPtr(1),
		Team2ID:     intPtr(2),
	}
}

func TestGroupMatches_SingleEliminationLabels(t *testing.T) {
	// A 16-team bracket: rounds 1..4.
	var matches []*models.Match
	n := 1
	for round := 1; round <= 4; round++ {
		for i := 0; i < 1<<(4-round); i++ {
			matches = append(matches, match(round, n, models.BracketWinner))
			n++
		}
	}

	groups := GroupMatches(matches, models.FormatSingleElimination)
	require.Len(t, groups, 4)
	assert.Equal(t, "Round 1", groups[0].Label)
	assert.Equal(t, "Quarter-final", groups[1].Label)
	assert.Equal(t, "Semi-final", groups[2].Label)
	assert.Equal(t, "Grand Final", groups[3].Label)
	assert.Len(t, groups[0].Matches, 8)
	assert.Len(t, groups[3].Matches, 1)
}

func TestGroupMatches_SmallSingleElimination(t *testing.T) {
	// A 4-team bracket has only a semi-final and a final.
	matches := []*models.Match{
		match(1, 1, models.BracketWinner),
		match(1, 2, models.BracketWinner),
		match(2, 3, models.BracketWinner),
	}

	groups := GroupMatches(matches, models.FormatSingleElimination)
	require.Len(t, groups, 2)
	assert.Equal(t, "Semi-final", groups[0].Label)
	assert.Equal(t, "Grand Final", groups[1].Label)
}

func TestGroupMatches_DoubleEliminationOrdering(t *testing.T) {
	matches := []*models.Match{
		match(models.GrandFinalRound, 99, models.BracketWinner),
		match(2, 5, models.BracketLoser),
		match(1, 3, models.BracketLoser),
		match(3, 6, models.BracketWinner),
		match(1, 1, models.BracketWinner),
		match(2, 4, models.BracketWinner),
	}

	groups := GroupMatches(matches, models.FormatDoubleElimination)
	require.Len(t, groups, 6)

	labels := make([]string, 0, len(groups))
	for _, g := range groups {
		labels = append(labels, g.Label)
	}
	assert.Equal(t, []string{"WB R1", "WB R2", "WB R3", "LB R1", "LB R2", "Grand Final"}, labels)
	assert.Equal(t, models.BracketWinner, groups[5].BracketType)
	assert.Equal(t, models.GrandFinalRound, groups[5].RoundNumber)
}

func TestGroupMatches_RoundRobinTours(t *testing.T) {
	matches := []*models.Match{
		match(1, 1, models.BracketWinner),
		match(2, 2, models.BracketWinner),
		match(3, 3, models.BracketWinner),
	}

	groups := GroupMatches(matches, models.FormatRoundRobin)
	require.Len(t, groups, 3)
	assert.Equal(t, "Tour 1", groups[0].Label)
	assert.Equal(t, "Tour 3", groups[2].Label, "round robin has no special final label")
}

func TestGroupMatches_SwissFinalTour(t *testing.T) {
	matches := []*models.Match{
		match(1, 1, models.BracketWinner),
		match(2, 2, models.BracketWinner),
		match(3, 3, models.BracketWinner),
	}

	groups := GroupMatches(matches, models.FormatSwiss)
	require.Len(t, groups, 3)
	assert.Equal(t, "Tour 1", groups[0].Label)
	assert.Equal(t, "Tour 2", groups[1].Label)
	assert.Equal(t, "Final Tour", groups[2].Label)
}

func TestGroupMatches_ReadyFlag(t *testing.T) {
	pending := match(1, 1, models.BracketWinner)
	pending.Team2ID = nil

	groups := GroupMatches([]*models.Match{pending, match(1, 2, models.BracketWinner)}, models.FormatSingleElimination)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Matches, 2)
	assert.False(t, groups[0].Matches[0].Ready)
	assert.True(t, groups[0].Matches[1].Ready)
}

func TestGroupMatches_Empty(t *testing.T) {
	assert.Empty(t, GroupMatches(nil, models.FormatSingleElimination))
	assert.Empty(t, GroupMatches(nil, models.FormatDoubleElimination))
}
