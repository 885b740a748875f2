package ui

import (
	"fmt"
	"strings"

	"github.com/BioHazard786/diceroom/cli/internal/feed"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxFeedLines = 500

// GameOptions wires the game view to a server session.
type GameOptions struct {
	Name   string
	Server string

	// First is the line received while joining, shown before anything else.
	First string

	// Incoming delivers server lines and is closed when the session ends.
	Incoming <-chan string

	// Send queues a text frame for the server.
	Send func(text string) error
}

type serverLineMsg string

type disconnectedMsg struct{}

type sendErrMsg struct{ err error }

// gameModel is the interactive feed plus input line.
type gameModel struct {
	opts         GameOptions
	tally        *feed.Tally
	lines        []string
	input        textinput.Model
	viewport     viewport.Model
	spinner      spinner.Model
	occupancy    int
	disconnected bool
	quitting     bool
}

func newGameModel(opts GameOptions) *gameModel {
	in := textinput.New()
	in.Placeholder = "type a message, or roll"
	in.Prompt = "> "
	in.CharLimit = 1024
	in.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	m := &gameModel{
		opts:     opts,
		tally:    feed.NewTally(opts.Name),
		input:    in,
		viewport: viewport.New(80, 15),
		spinner:  s,
	}
	if opts.First != "" {
		m.appendLine(opts.First)
	}
	return m
}

// RunGame runs the game view until the player leaves or the server ends the
// session, and returns the session tally.
func RunGame(opts GameOptions) (*feed.Tally, error) {
	m := newGameModel(opts)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return m.tally, fmt.Errorf("game view: %w", err)
	}
	return m.tally, nil
}

// Model methods
func (m *gameModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.listen(),
	)
}

func (m *gameModel) listen() tea.Cmd {
	incoming := m.opts.Incoming
	return func() tea.Msg {
		line, ok := <-incoming
		if !ok {
			return disconnectedMsg{}
		}
		return serverLineMsg(line)
	}
}

func (m *gameModel) send(text string) tea.Cmd {
	send := m.opts.Send
	return func() tea.Msg {
		if err := send(text); err != nil {
			return sendErrMsg{err: err}
		}
		return nil
	}
}

func (m *gameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEnter:
			text := m.input.Value()
			if strings.TrimSpace(text) == "" || m.disconnected {
				return m, nil
			}
			m.input.Reset()
			return m, m.send(text)

		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(3, msg.Height-lipgloss.Height(m.header())-lipgloss.Height(m.footer())-1)
		m.input.Width = max(10, msg.Width-4)
		m.refresh()

	case serverLineMsg:
		m.appendLine(string(msg))
		cmds = append(cmds, m.listen())

	case disconnectedMsg:
		m.disconnected = true
		return m, tea.Quit

	case sendErrMsg:
		m.pushLine(ErrorStyle.Render(fmt.Sprintf("%s %v", IconError, msg.err)))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *gameModel) appendLine(line string) {
	ev := feed.Parse(line)
	m.tally.Observe(ev)
	if ev.Kind == feed.KindOccupancy {
		m.occupancy = ev.Count
	}
	m.pushLine(FormatEvent(ev, m.opts.Name))
}

func (m *gameModel) pushLine(rendered string) {
	m.lines = append(m.lines, rendered)
	if len(m.lines) > maxFeedLines {
		m.lines = m.lines[len(m.lines)-maxFeedLines:]
	}
	m.refresh()
}

func (m *gameModel) refresh() {
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m *gameModel) header() string {
	title := HeaderStyle.Render(IconDice + " diceroom")
	who := BoldStyle.Render(m.opts.Name) + MutedStyle.Render(" @ "+m.opts.Server)

	status := m.spinner.View() + " Waiting for an opponent"
	if m.occupancy >= 2 {
		status = StatusStyle.Render("2 players")
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, title, " ", who, "  ", status)
}

func (m *gameModel) footer() string {
	return FooterStyle.Render("Enter to send · roll to roll · PgUp/PgDn to scroll · Ctrl+C to leave")
}

func (m *gameModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}
