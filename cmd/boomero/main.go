// Package main provides the CLI entrypoint for boomero.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/boomero/internal/config"
	"github.com/verte-zerg/boomero/internal/logging"
	"github.com/verte-zerg/boomero/internal/model"
	"github.com/verte-zerg/boomero/internal/session"
	"github.com/verte-zerg/boomero/internal/stats"
	"github.com/verte-zerg/boomero/internal/statsui"
	"github.com/verte-zerg/boomero/internal/store"
	"github.com/verte-zerg/boomero/internal/tui"
)

const (
	defaultPlayer1    = "Player 1"
	defaultPlayer2    = "Player 2"
	defaultFormWindow = 5
	maxNameLength     = 24
)

var (
	playPlayer1  string
	playPlayer2  string
	playShowLow  bool
	playLogLevel string

	statsSince string
	statsLast  int
	statsPlain bool
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "boomero",
		Short:         "Two-player dart scoreboard",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.PersistentFlags().StringVar(&playPlayer1, "player1", defaultPlayer1, "display name of player 1")
	rootCmd.PersistentFlags().StringVar(&playPlayer2, "player2", defaultPlayer2, "display name of player 2")
	rootCmd.PersistentFlags().StringVar(&playLogLevel, "log-level", logging.DefaultLevel, "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&playShowLow, "show-low-numbers", false, "render rows 1-9 too")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newNewCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "player1", &playPlayer1, fileCfg.Players.Player1)
	applyStringConfig(cmd, "player2", &playPlayer2, fileCfg.Players.Player2)
	applyBoolConfig(cmd, "show-low-numbers", &playShowLow, fileCfg.Board.ShowLowNumbers)
	applyStringConfig(cmd, "log-level", &playLogLevel, fileCfg.Log.Level)

	cfg := model.Config{
		Player1:        strings.TrimSpace(playPlayer1),
		Player2:        strings.TrimSpace(playPlayer2),
		ShowLowNumbers: playShowLow,
		LogLevel:       playLogLevel,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg model.Config) error {
	if cfg.Player1 == "" {
		return fmt.Errorf("--player1 must not be empty")
	}
	if cfg.Player2 == "" {
		return fmt.Errorf("--player2 must not be empty")
	}
	if len([]rune(cfg.Player1)) > maxNameLength || len([]rune(cfg.Player2)) > maxNameLength {
		return fmt.Errorf("player names must be at most %d characters", maxNameLength)
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	return nil
}

func openLogger(cfg model.Config) (zerolog.Logger, io.Closer, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	return logging.OpenFile(config.DefaultLogPath(), level)
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func closeLog(c io.Closer) {
	if cerr := c.Close(); cerr != nil {
		// Best-effort close of the log file.
		_ = cerr
	}
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, logFile, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog(logFile)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	sess := session.New(ctx, st, session.Options{History: st, Logger: logger})
	logger.Info().Str("player1", cfg.Player1).Str("player2", cfg.Player2).Msg("start play")

	m := tui.NewModel(ctx, sess, cfg)
	defer m.Close()
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved board",
		Args:  cobra.NoArgs,
		RunE:  runShowCmd,
	}
}

func runShowCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	state, ok, err := st.LoadSnapshot(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load saved game: %w", err)
	}
	out := cmd.OutOrStdout()
	if !ok {
		_, err := fmt.Fprintln(out, "No saved game. Run boomero to start one.")
		return err
	}
	names := [2]string{cfg.Player1, cfg.Player2}
	lines := []string{
		tui.RenderScores(state, names),
		tui.RenderBoard(state, tui.BoardOptions{Names: names, ShowLowNumbers: cfg.ShowLowNumbers}),
		tui.RenderTurn(state),
	}
	if state.GameOver {
		lines = append(lines, "Game over.")
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Abandon the saved game and start a new one",
		Args:  cobra.NoArgs,
		RunE:  runNewCmd,
	}
}

func runNewCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, logFile, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog(logFile)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	sess := session.New(cmd.Context(), st, session.Options{History: st, Logger: logger})
	if err := sess.NewGame(cmd.Context()); err != nil {
		return fmt.Errorf("failed to start new game: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "New game started.")
	return err
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show game history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N games")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print tables instead of opening the viewer")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	statsCfg := model.StatsConfig{Since: sinceTime, Last: statsLast}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	names := [2]string{cfg.Player1, cfg.Player2}
	if statsPlain {
		report, err := stats.BuildReport(cmd.Context(), st, statsCfg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		return stats.RenderReport(out, report, stats.RenderOptions{
			Names:      names,
			Width:      stats.TerminalWidth(),
			Color:      stats.ShouldUseColor(out),
			FormWindow: defaultFormWindow,
		})
	}

	m := statsui.NewModel(st, statsCfg, names)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
