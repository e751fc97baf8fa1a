package statsui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/boomero/internal/model"
	"github.com/verte-zerg/boomero/internal/stats"
)

func TestParseFilter(t *testing.T) {
	cfg, err := parseFilter(" 2026-02-03 ", "5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Since == nil || cfg.Since.Format("2006-01-02") != "2026-02-03" || cfg.Last != 5 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg, err = parseFilter("", ""); err != nil || cfg.Since != nil || cfg.Last != 0 {
		t.Fatalf("expected empty config, got %+v %v", cfg, err)
	}
	if _, err := parseFilter("03/02/2026", ""); err == nil {
		t.Fatalf("expected date error")
	}
	if _, err := parseFilter("", "-1"); err == nil {
		t.Fatalf("expected last error")
	}
}

func TestRenderPlayers(t *testing.T) {
	if got := renderPlayers(stats.Report{}, stats.RenderOptions{}); got != "No games found." {
		t.Fatalf("unexpected empty view %q", got)
	}
	r := stats.Report{Games: []model.GameRecord{{ID: 1, Status: model.GameCompleted, Winner: 1}}}
	r.Players[0] = stats.PlayerSummary{Player: 1, Games: 1, Wins: 1, Turns: 2, Points: 45, Marks: 7, BestTurn: 40}
	r.Players[1] = stats.PlayerSummary{Player: 2, Games: 1, Turns: 2}
	out := renderPlayers(r, stats.RenderOptions{Names: [2]string{"Ana", ""}, Width: 100})
	for _, want := range []string{"Ana", "Player 2", "1/1", "22.5", "3.50", "40"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("Settings: since=any", 10); got != "Setting..." {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncateLine("short", 10); got != "short" {
		t.Fatalf("unexpected %q", got)
	}
}
