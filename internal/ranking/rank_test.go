package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankIt_Order(t *testing.T) {
	standings := []Standing{
		{Solved: 2, Penalty: 100}, // A
		{Solved: 2, Penalty: 80},  // B
		{Solved: 1, Penalty: 10},  // C
	}
	order := []int{0, 1, 2}

	rankIt(standings, order)

	assert.Equal(t, []int{1, 0, 2}, order)
	assert.Equal(t, 1, standings[1].Rank)
	assert.Equal(t, 2, standings[0].Rank)
	assert.Equal(t, 3, standings[2].Rank)
}

func TestRankIt_LastSolveBreaksPenaltyTie(t *testing.T) {
	standings := []Standing{
		{Solved: 2, Penalty: 80, LastSolution: 70},
		{Solved: 2, Penalty: 80, LastSolution: 50},
	}
	order := []int{0, 1}

	rankIt(standings, order)

	assert.Equal(t, []int{1, 0}, order)
	assert.Equal(t, 2, standings[0].Rank)
}

func TestRankIt_ExactTiesShareRank(t *testing.T) {
	standings := []Standing{
		{Solved: 3, Penalty: 50, LastSolution: 40},
		{Solved: 1, Penalty: 10, LastSolution: 10},
		{Solved: 3, Penalty: 50, LastSolution: 40},
		{Solved: 0},
	}
	order := []int{3, 2, 1, 0}

	rankIt(standings, order)

	// ties fall back to team position
	assert.Equal(t, []int{0, 2, 1, 3}, order)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 1, standings[2].Rank)
	assert.Equal(t, 3, standings[1].Rank)
	assert.Equal(t, 4, standings[3].Rank)
}
