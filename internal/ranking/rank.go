package ranking

import "slices"

// compareStandings orders better standings first. It does not break ties.
func compareStandings(a, b Standing) int {
	if a.Solved != b.Solved {
		if a.Solved > b.Solved {
			return -1
		}
		return 1
	}
	if a.Penalty != b.Penalty {
		if a.Penalty < b.Penalty {
			return -1
		}
		return 1
	}
	if a.LastSolution != b.LastSolution {
		if a.LastSolution < b.LastSolution {
			return -1
		}
		return 1
	}
	return 0
}

// rankIt sorts order (team indices) and assigns ranks. Equal standings share
// a rank and the next distinct standing skips ahead (1, 2, 2, 4). Teams
// with equal standings keep their relative input position.
func rankIt(standings []Standing, order []int) {
	slices.SortFunc(order, func(a, b int) int {
		if c := compareStandings(standings[a], standings[b]); c != 0 {
			return c
		}
		return a - b
	})

	for pos, ti := range order {
		if pos > 0 && compareStandings(standings[order[pos-1]], standings[ti]) == 0 {
			standings[ti].Rank = standings[order[pos-1]].Rank
			continue
		}
		standings[ti].Rank = pos + 1
	}
}
