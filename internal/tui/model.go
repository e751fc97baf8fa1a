package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/boomero/internal/game"
	"github.com/verte-zerg/boomero/internal/model"
	"github.com/verte-zerg/boomero/internal/session"
	"github.com/verte-zerg/boomero/internal/turn"
)

type (
	stateMsg  game.State
	dialogMsg struct{ dialog turn.Dialog }
	noticeMsg string
)

// Session is the part of session.Store the screen drives.
type Session interface {
	SubmitNotation(ctx context.Context, input string) error
	ResolveDoubleChoice(ctx context.Context, number, dartIndex int, useCategory bool) error
	ResolveTripleChoice(ctx context.Context, number, dartIndex int, useCategory bool) error
	ResolveCircleChoice(ctx context.Context, useCircle bool) error
	ConfirmTurn(ctx context.Context) error
	ResetTurn(ctx context.Context) error
	DismissDialog(ctx context.Context) error
	NewGame(ctx context.Context) error
	SubscribeState() (<-chan game.State, func())
	SubscribeDialog() (<-chan turn.Dialog, func())
	SubscribeMessages() (<-chan string, func())
}

var _ Session = (*session.Store)(nil)

var (
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	dialogStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(0, 2)
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

// Model implements the Bubble Tea scoreboard.
type Model struct {
	ctx     context.Context
	session Session
	config  model.Config

	states   <-chan game.State
	dialogs  <-chan turn.Dialog
	messages <-chan string
	cancels  []func()

	state      game.State
	dialog     turn.Dialog
	message    string
	input      textinput.Model
	confirmNew bool

	width  int
	height int
}

// NewModel constructs the scoreboard bound to s.
func NewModel(ctx context.Context, s Session, cfg model.Config) *Model {
	input := textinput.New()
	input.Prompt = "Dart: "
	input.Placeholder = "20, D16, T19, SB, DB, M"
	input.CharLimit = 8
	input.Focus()

	m := &Model{
		ctx:     ctx,
		session: s,
		config:  cfg,
		dialog:  turn.None{},
		input:   input,
		state:   game.New(),
	}
	var cancel func()
	m.states, cancel = s.SubscribeState()
	m.cancels = append(m.cancels, cancel)
	m.dialogs, cancel = s.SubscribeDialog()
	m.cancels = append(m.cancels, cancel)
	m.messages, cancel = s.SubscribeMessages()
	m.cancels = append(m.cancels, cancel)
	return m
}

// Close releases the stream subscriptions.
func (m *Model) Close() {
	for _, cancel := range m.cancels {
		cancel()
	}
	m.cancels = nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitState(m.states), waitDialog(m.dialogs), waitNotice(m.messages))
}

func waitState(ch <-chan game.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}

func waitDialog(ch <-chan turn.Dialog) tea.Cmd {
	return func() tea.Msg {
		d, ok := <-ch
		if !ok {
			return nil
		}
		return dialogMsg{dialog: d}
	}
}

func waitNotice(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg(msg)
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case stateMsg:
		m.state = game.State(msg)
		return m, waitState(m.states)
	case dialogMsg:
		m.dialog = msg.dialog
		if m.dialog == nil {
			m.dialog = turn.None{}
		}
		return m, waitDialog(m.dialogs)
	case noticeMsg:
		m.message = string(msg)
		return m, waitNotice(m.messages)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.Close()
		return m, tea.Quit
	}
	if m.confirmNew {
		switch key {
		case "y", "Y":
			m.confirmNew = false
			m.run(m.session.NewGame)
		case "n", "N", "esc":
			m.confirmNew = false
		}
		return m, nil
	}
	if key == "ctrl+n" {
		m.confirmNew = true
		return m, nil
	}

	switch d := m.dialog.(type) {
	case turn.DoubleChoice:
		return m, m.handleChoice(key, func(useCategory bool) error {
			return m.session.ResolveDoubleChoice(m.ctx, d.Number, d.DartIndex, useCategory)
		})
	case turn.TripleChoice:
		return m, m.handleChoice(key, func(useCategory bool) error {
			return m.session.ResolveTripleChoice(m.ctx, d.Number, d.DartIndex, useCategory)
		})
	case turn.CircleChoice:
		switch key {
		case "y":
			m.runErr(m.session.ResolveCircleChoice(m.ctx, true))
		case "n":
			m.runErr(m.session.ResolveCircleChoice(m.ctx, false))
		case "r":
			m.run(m.session.ResetTurn)
		case "esc":
			m.run(m.session.DismissDialog)
		}
		return m, nil
	case turn.TurnSummary:
		switch key {
		case "enter":
			m.run(m.session.ConfirmTurn)
		case "r":
			m.run(m.session.ResetTurn)
		}
		return m, nil
	}

	switch key {
	case "enter":
		value := m.input.Value()
		m.input.Reset()
		if strings.TrimSpace(value) != "" {
			m.runErr(m.session.SubmitNotation(m.ctx, value))
		}
		return m, nil
	case "ctrl+r":
		m.run(m.session.ResetTurn)
		return m, nil
	case "esc":
		m.input.Reset()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleChoice(key string, choose func(useCategory bool) error) tea.Cmd {
	switch key {
	case "c":
		m.runErr(choose(true))
	case "n":
		m.runErr(choose(false))
	case "esc":
		m.run(m.session.DismissDialog)
	}
	return nil
}

func (m *Model) run(fn func(context.Context) error) {
	m.runErr(fn(m.ctx))
}

// runErr surfaces errors that carry no player notice. Rule violations are
// already reported on the message stream.
func (m *Model) runErr(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, game.ErrInvalidTarget) || errors.Is(err, game.ErrInvalidNotation) || errors.Is(err, turn.ErrGameOver) {
		return
	}
	m.message = err.Error()
}

// View implements tea.Model.
func (m *Model) View() string {
	opts := BoardOptions{Names: [2]string{m.config.Player1, m.config.Player2}, ShowLowNumbers: m.config.ShowLowNumbers}
	sections := []string{
		RenderScores(m.state, opts.Names),
		RenderBoard(m.state, opts),
		RenderTurn(m.state),
	}
	if box := m.renderDialog(opts.Names); box != "" {
		sections = append(sections, box)
	} else if !m.state.GameOver {
		sections = append(sections, m.input.View())
	}
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	bodyHeight := max(m.height-lipgloss.Height(footer), 1)
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + footer
}

func (m *Model) renderDialog(names [2]string) string {
	if m.confirmNew {
		return dialogStyle.Render(titleStyle.Render("New game?") + "\nThe current game is abandoned.\n\ny: start over   n: keep playing")
	}
	var title, body, keys string
	switch d := m.dialog.(type) {
	case turn.DoubleChoice:
		title = fmt.Sprintf("Double %d", d.Number)
		body = fmt.Sprintf("%s: score on the DOUBLE row or as two hits on %d?", displayName(names, int(d.ScoringPlayer)-1), d.Number)
		keys = "c: DOUBLE row   n: numbers   esc: discard dart"
	case turn.TripleChoice:
		title = fmt.Sprintf("Triple %d", d.Number)
		body = fmt.Sprintf("%s: score on the TRIPLE row or as three hits on %d?", displayName(names, int(d.ScoringPlayer)-1), d.Number)
		keys = "c: TRIPLE row   n: numbers   esc: discard dart"
	case turn.CircleChoice:
		title = "Circle"
		body = fmt.Sprintf("Three darts on one target, worth %d. Score it as a CIRCLE hit?", d.Points)
		keys = "y: circle   n: keep numbers   r: reset turn"
	case turn.TurnSummary:
		title = fmt.Sprintf("%s scored %d", displayName(names, int(d.CurrentPlayer)-1), d.PointsScored)
		darts := make([]string, 0, len(d.Darts))
		for i, dart := range d.Darts {
			if dart != nil {
				darts = append(darts, fmt.Sprintf("%d. %s", i+1, game.FormatDart(*dart)))
			}
		}
		body = strings.Join(darts, "\n")
		keys = "enter: confirm   r: reset turn"
	default:
		return ""
	}
	return dialogStyle.Render(titleStyle.Render(title) + "\n" + body + "\n\n" + footerStyle.Render(keys))
}

func (m *Model) renderFooter() string {
	help := "enter: throw   ctrl+r: reset turn   ctrl+n: new game   ctrl+c: quit"
	if m.state.GameOver {
		help = "ctrl+n: new game   ctrl+c: quit"
	}
	lines := []string{footerStyle.Render(help)}
	if m.message != "" {
		width := m.width
		if width <= 0 {
			width = 80
		}
		for _, line := range wrapWords(m.message, width) {
			lines = append(lines, messageStyle.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}
