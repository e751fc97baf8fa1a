package game

// A dart's contribution is the set of matrix hits it adds for the thrower.
// Resolving, reversing and replaying darts all go through the helpers below
// so that undoing a turn and throwing it again always lands on the same matrix.

// applyDart adds the contribution of d for player p and returns the points it scores.
func applyDart(m *Matrix, p Player, d Dart) int {
	switch d.Kind {
	case Single:
		return addNumberHits(m, p, d.Value, 1)
	case Double, Triple:
		if d.ScoredAsCategory {
			return addCategoryHit(m, p, categoryRow(d.Kind), d.Value*d.Kind.Multiplier())
		}
		return addNumberHits(m, p, d.Value, d.Kind.Multiplier())
	case Bullseye:
		points := 0
		for i := 0; i < d.Value; i++ {
			points += addCategoryHit(m, p, RowBullseye, BullPoints)
		}
		return points
	default:
		return 0
	}
}

// addNumberHits adds n hits on a number row. Each hit is checked against the
// running count: it scores when it is the 4th or later hit, the number is at
// least 10 and the opponent has not closed the row.
func addNumberHits(m *Matrix, p Player, number, n int) int {
	row := numberRow(number)
	opponentClosed := m.Closed(row, p.Opponent())
	points := 0
	for i := 0; i < n; i++ {
		m.add(row, p, 1)
		if number >= MinScoringNumber && m.Hits(row, p) > ClosedHits && !opponentClosed {
			points += number
		}
	}
	return points
}

// addCategoryHit adds one hit on a category row, worth value when the row was
// already closed for p and is still open for the opponent.
func addCategoryHit(m *Matrix, p Player, row, value int) int {
	scores := m.Closed(row, p) && !m.Closed(row, p.Opponent())
	m.add(row, p, 1)
	if scores {
		return value
	}
	return 0
}

// reverseDart removes the contribution of d, flooring counters at zero.
func reverseDart(m *Matrix, p Player, d Dart) {
	if !d.Valid {
		return
	}
	switch d.Kind {
	case Single:
		m.remove(numberRow(d.Value), p, 1)
	case Double, Triple:
		if d.ScoredAsCategory {
			m.remove(categoryRow(d.Kind), p, 1)
			return
		}
		m.remove(numberRow(d.Value), p, d.Kind.Multiplier())
	case Bullseye:
		m.remove(RowBullseye, p, d.Value)
	}
}

// reverseTurn removes everything the turn's darts added. A turn scored as a
// circle only ever added the single circle hit.
func reverseTurn(m *Matrix, p Player, darts [DartsPerTurn]*Dart) {
	if circleScored(darts) {
		m.remove(RowCircle, p, 1)
		return
	}
	for _, d := range darts {
		if d != nil {
			reverseDart(m, p, *d)
		}
	}
}

// replayTurn applies the turn's darts in throw order and returns the points scored.
func replayTurn(m *Matrix, p Player, darts [DartsPerTurn]*Dart) int {
	points := 0
	for _, d := range darts {
		if d != nil && d.Valid {
			points += applyDart(m, p, *d)
		}
	}
	return points
}

func circleScored(darts [DartsPerTurn]*Dart) bool {
	for _, d := range darts {
		if d == nil || !d.ScoredAsCircle {
			return false
		}
	}
	return true
}

func categoryRow(k Kind) int {
	if k == Triple {
		return RowTriple
	}
	return RowDouble
}

// Marks returns the number of matrix hits a dart adds.
func Marks(d Dart) int {
	if !d.Valid {
		return 0
	}
	switch d.Kind {
	case Single:
		return 1
	case Double, Triple:
		if d.ScoredAsCategory {
			return 1
		}
		return d.Kind.Multiplier()
	case Bullseye:
		return d.Value
	default:
		return 0
	}
}

// TurnMarks returns the number of matrix hits the current turn added.
func TurnMarks(s State) int {
	if circleScored(s.Darts) {
		return 1
	}
	total := 0
	for _, d := range s.Darts {
		if d != nil {
			total += Marks(*d)
		}
	}
	return total
}
