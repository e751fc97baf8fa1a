package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/boomero/internal/game"
)

const (
	markWidth  = 7
	labelWidth = 6
)

var (
	markStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	closedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	labelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	eliminatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A")).Strikethrough(true)
	activeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	idleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	boardStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Padding(0, 1)
)

// BoardOptions control board rendering.
type BoardOptions struct {
	Names          [2]string
	ShowLowNumbers bool
}

// BoardRows returns the matrix rows to draw, top to bottom: numbers from 20
// down, then the categories.
func BoardRows(showLow bool) []int {
	first := game.FirstScoringRow
	if showLow {
		first = 0
	}
	rows := make([]int, 0, game.Rows)
	for row := game.RowDouble - 1; row >= first; row-- {
		rows = append(rows, row)
	}
	for row := game.RowDouble; row < game.Rows; row++ {
		rows = append(rows, row)
	}
	return rows
}

// Marks renders a hit count as up to three X marks.
func Marks(hits int) string {
	n := min(hits, game.ClosedHits)
	if n <= 0 {
		return "·"
	}
	return strings.TrimSpace(strings.Repeat("X ", n))
}

// RenderScores renders the names and committed scores, highlighting the
// player to throw.
func RenderScores(s game.State, names [2]string) string {
	parts := make([]string, 0, 2)
	for i, p := range []game.Player{game.Player1, game.Player2} {
		label := fmt.Sprintf("%s %d", fitWidth(displayName(names, i), 16), s.Score(p))
		style := idleStyle
		if p == s.CurrentPlayer && !s.GameOver {
			style = activeStyle
			label = "▶ " + label
		} else {
			label = "  " + label
		}
		parts = append(parts, style.Render(label))
	}
	return strings.Join(parts, "    ")
}

// RenderBoard renders the hit grid, player 1 on the left and player 2 on the right.
func RenderBoard(s game.State, opts BoardOptions) string {
	header := padCenter(fitWidth(displayName(opts.Names, 0), markWidth), markWidth) +
		padCenter("", labelWidth) +
		padCenter(fitWidth(displayName(opts.Names, 1), markWidth), markWidth)
	lines := []string{idleStyle.Render(header)}
	for _, row := range BoardRows(opts.ShowLowNumbers) {
		lines = append(lines, renderRow(&s.Matrix, row))
	}
	return boardStyle.Render(strings.Join(lines, "\n"))
}

func renderRow(m *game.Matrix, row int) string {
	label := padCenter(game.CategoryLabel(row), labelWidth)
	left := padCenter(Marks(m.Hits(row, game.Player1)), markWidth)
	right := padCenter(Marks(m.Hits(row, game.Player2)), markWidth)
	if m.Eliminated(row) {
		return eliminatedStyle.Render(left + label + right)
	}
	return markCell(m, row, game.Player1, left) + labelStyle.Render(label) + markCell(m, row, game.Player2, right)
}

func markCell(m *game.Matrix, row int, p game.Player, text string) string {
	if m.Closed(row, p) {
		return closedStyle.Render(text)
	}
	return markStyle.Render(text)
}

// RenderTurn lists the darts of the current turn and the points so far.
func RenderTurn(s game.State) string {
	slots := make([]string, 0, game.DartsPerTurn)
	for _, d := range s.Darts {
		if d == nil {
			slots = append(slots, "-")
			continue
		}
		slots = append(slots, game.FormatDart(*d))
	}
	return fmt.Sprintf("Darts: %s   Turn: %d   Left: %d", strings.Join(slots, " | "), s.PointsThisTurn, s.DartsLeft())
}

func displayName(names [2]string, idx int) string {
	if name := strings.TrimSpace(names[idx]); name != "" {
		return name
	}
	return fmt.Sprintf("Player %d", idx+1)
}
