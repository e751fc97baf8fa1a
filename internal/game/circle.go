package game

// CircleEligible reports whether the finished turn can be scored as a circle:
// three valid darts on the same number, or three bullseyes of the same value.
func CircleEligible(s State) bool {
	if s.CurrentDart != DartsPerTurn {
		return false
	}
	first := s.Darts[0]
	for _, d := range s.Darts {
		if d == nil || !d.Valid {
			return false
		}
		if (d.Kind == Bullseye) != (first.Kind == Bullseye) {
			return false
		}
		if d.Value != first.Value {
			return false
		}
	}
	return true
}

// AutoCircle reports whether an eligible circle needs no decision: all three
// darts are plain singles below 10, which could never score as numbers.
func AutoCircle(s State) bool {
	if !CircleEligible(s) {
		return false
	}
	for _, d := range s.Darts {
		if d.Kind != Single || d.Value >= MinScoringNumber {
			return false
		}
	}
	return true
}

// CirclePoints returns what a circle of these darts is worth: 25 or 50 per
// bull for a bullseye circle, otherwise the base number times each dart's
// multiplier.
func CirclePoints(darts [DartsPerTurn]*Dart) int {
	first := darts[0]
	if first == nil {
		return 0
	}
	total := 0
	if first.Kind == Bullseye {
		for _, d := range darts {
			if d != nil && d.Value == 2 {
				total += 2 * BullPoints
			} else {
				total += BullPoints
			}
		}
		return total
	}
	base := first.Value
	for _, d := range darts {
		if d != nil {
			total += base * d.Kind.Multiplier()
		}
	}
	return total
}

// ScoreCircle folds the turn into one CIRCLE hit for player. The darts' own
// contributions are taken back first; the turn is then worth points if the
// circle row was already closed for player and is open for the opponent,
// and nothing otherwise.
func ScoreCircle(s State, points int, player Player) State {
	reverseTurn(&s.Matrix, player, s.Darts)
	s.PointsThisTurn = addCategoryHit(&s.Matrix, player, RowCircle, points)
	for i, d := range s.Darts {
		if d == nil {
			continue
		}
		circled := *d
		circled.ScoredAsCategory = true
		circled.ScoredAsCircle = true
		s.Darts[i] = &circled
	}
	return s
}

// ReprocessAsNumbers declines the circle. The turn's contributions are taken
// back and the darts replayed in throw order, so the thresholds are crossed
// exactly as they were when the darts were first thrown. PointsThisTurn is
// rebuilt from zero.
func ReprocessAsNumbers(s State) State {
	p := s.CurrentPlayer
	reverseTurn(&s.Matrix, p, s.Darts)
	s.PointsThisTurn = replayTurn(&s.Matrix, p, s.Darts)
	return s
}
