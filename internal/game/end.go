package game

// CompletedAll reports whether p has closed numbers 10-20 and all four categories.
func CompletedAll(m Matrix, p Player) bool {
	for row := FirstScoringRow; row < Rows; row++ {
		if clampedHits(m, row, p) < ClosedHits {
			return false
		}
	}
	return true
}

// CanStillScore reports whether p has a tracked row that p closed and the
// opponent has not.
func CanStillScore(m Matrix, p Player) bool {
	for row := FirstScoringRow; row < Rows; row++ {
		if clampedHits(m, row, p) >= ClosedHits && clampedHits(m, row, p.Opponent()) < ClosedHits {
			return true
		}
	}
	return false
}

// HasWon reports whether p has completed every row, leads on points, and the
// opponent either has nothing left to score on or has completed too.
func HasWon(s State, p Player) bool {
	if !CompletedAll(s.Matrix, p) {
		return false
	}
	opponent := p.Opponent()
	if s.Score(p) <= s.Score(opponent) {
		return false
	}
	return !CanStillScore(s.Matrix, opponent) || CompletedAll(s.Matrix, opponent)
}

// CheckGameEnd reports whether the game is over: one player has won, or both
// have completed every row. Breaking a tie on points is left to the caller.
func CheckGameEnd(s State) bool {
	if HasWon(s, Player1) || HasWon(s, Player2) {
		return true
	}
	return CompletedAll(s.Matrix, Player1) && CompletedAll(s.Matrix, Player2)
}

// Leader returns the player with the higher score, or 0 on a tie.
func Leader(s State) Player {
	switch {
	case s.Player1Score > s.Player2Score:
		return Player1
	case s.Player2Score > s.Player1Score:
		return Player2
	default:
		return 0
	}
}

func clampedHits(m Matrix, row int, p Player) int {
	hits := m.Hits(row, p)
	if hits > ClosedHits {
		return ClosedHits
	}
	return hits
}
