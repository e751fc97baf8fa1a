// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/boomero/internal/model"
)

const sparkChars = " .:-=+*#%@"

// PlayerSummary aggregates one player's recorded turns.
type PlayerSummary struct {
	Player   int
	Games    int
	Wins     int
	Turns    int
	Points   int
	Marks    int
	BestTurn int
	// Form holds points per turn for each game the player threw in, oldest first.
	Form []float64
}

// PPT returns points per turn.
func (p PlayerSummary) PPT() float64 {
	if p.Turns == 0 {
		return 0
	}
	return float64(p.Points) / float64(p.Turns)
}

// MPR returns marks per round, a round being one turn of three darts.
func (p PlayerSummary) MPR() float64 {
	if p.Turns == 0 {
		return 0
	}
	return float64(p.Marks) / float64(p.Turns)
}

// SummarizePlayers aggregates turns per player. Games are counted for a
// player when the player threw at least one turn in them.
func SummarizePlayers(games []model.GameRecord, turns []model.TurnRecord) [2]PlayerSummary {
	out := [2]PlayerSummary{{Player: 1}, {Player: 2}}

	type perGame struct {
		turns, points int
	}
	byGame := [2]map[int64]*perGame{{}, {}}
	for _, t := range turns {
		idx, ok := playerIndex(t.Player)
		if !ok {
			continue
		}
		p := &out[idx]
		p.Turns++
		p.Points += t.Points
		p.Marks += t.Marks
		if t.Points > p.BestTurn {
			p.BestTurn = t.Points
		}
		g, ok := byGame[idx][t.GameID]
		if !ok {
			g = &perGame{}
			byGame[idx][t.GameID] = g
		}
		g.turns++
		g.points += t.Points
	}

	for _, g := range games {
		for idx := range out {
			if pg, ok := byGame[idx][g.ID]; ok {
				out[idx].Games++
				out[idx].Form = append(out[idx].Form, float64(pg.points)/float64(pg.turns))
			}
		}
		if idx, ok := playerIndex(g.Winner); ok && g.Status == model.GameCompleted {
			out[idx].Wins++
		}
	}
	return out
}

func playerIndex(player int) (int, bool) {
	switch player {
	case 1:
		return 0, true
	case 2:
		return 1, true
	default:
		return 0, false
	}
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderOptions tune plain-text output.
type RenderOptions struct {
	// Names are the display names of player 1 and player 2.
	Names [2]string
	// Width limits the form sparkline; zero means no limit.
	Width int
	Color bool
	// FormWindow smooths the form sparkline over this many games.
	FormWindow int
}

// RenderReport prints the player and game tables.
func RenderReport(w io.Writer, r Report, opts RenderOptions) error {
	if len(r.Games) == 0 {
		_, err := fmt.Fprintln(w, "No games found.")
		return err
	}
	if err := RenderPlayers(w, r.Players, opts); err != nil {
		return err
	}
	return RenderGames(w, r.Games, opts)
}

// PlayerRows returns the players table as cells, shared by the text report
// and the stats viewer.
func PlayerRows(players [2]PlayerSummary, opts RenderOptions) ([]string, [][]string) {
	headers := []string{"Player", "Games", "Wins", "Turns", "Points", "PPT", "MPR", "Best", "Form"}
	formWidth := 0
	if opts.Width > 0 {
		formWidth = max(opts.Width/4, 1)
	}
	rows := make([][]string, 0, len(players))
	for i, p := range players {
		form := MovingAverage(p.Form, opts.FormWindow)
		if formWidth > 0 && len(form) > formWidth {
			form = form[len(form)-formWidth:]
		}
		rows = append(rows, []string{
			playerName(opts.Names, i+1),
			fmt.Sprintf("%d", p.Games),
			fmt.Sprintf("%d", p.Wins),
			fmt.Sprintf("%d", p.Turns),
			fmt.Sprintf("%d", p.Points),
			fmt.Sprintf("%.2f", p.PPT()),
			fmt.Sprintf("%.2f", p.MPR()),
			fmt.Sprintf("%d", p.BestTurn),
			Sparkline(form),
		})
	}
	return headers, rows
}

// RenderPlayers prints per-player aggregates.
func RenderPlayers(w io.Writer, players [2]PlayerSummary, opts RenderOptions) error {
	if _, err := fmt.Fprintln(w, "Players"); err != nil {
		return err
	}
	headers, rows := PlayerRows(players, opts)
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// GameRows returns the games table as cells, newest game first.
func GameRows(games []model.GameRecord, opts RenderOptions) ([]string, [][]string) {
	headers := []string{"#", "Started", "Status", "Turns", "Score", "Winner"}
	rows := make([][]string, 0, len(games))
	for i := len(games) - 1; i >= 0; i-- {
		g := games[i]
		winner := "-"
		if g.Status == model.GameCompleted {
			winner = "tie"
			if g.Winner != 0 {
				winner = playerName(opts.Names, g.Winner)
			}
		}
		score := fmt.Sprintf("%d-%d", g.Player1Score, g.Player2Score)
		if g.Status == model.GameOpen {
			score = "-"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", g.ID),
			g.StartedAt.Local().Format("2006-01-02 15:04"),
			string(g.Status),
			fmt.Sprintf("%d", g.Turns),
			score,
			winner,
		})
	}
	return headers, rows
}

// RenderGames prints recorded games, newest first.
func RenderGames(w io.Writer, games []model.GameRecord, opts RenderOptions) error {
	if _, err := fmt.Fprintln(w, "Games"); err != nil {
		return err
	}
	headers, rows := GameRows(games, opts)
	lines := formatTable(headers, rows, map[int]bool{0: true, 3: true, 4: true})
	for i, line := range lines {
		if opts.Color && i > 0 && rows[i-1][2] == string(model.GameCompleted) {
			line = colorGreen + line + colorReset
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func playerName(names [2]string, player int) string {
	idx, ok := playerIndex(player)
	if !ok {
		return "?"
	}
	if name := strings.TrimSpace(names[idx]); name != "" {
		return name
	}
	return fmt.Sprintf("Player %d", player)
}
