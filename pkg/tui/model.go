// Package tui renders a generation live in the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/papercomputeco/scribe/pkg/generation"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// header, blank line, status line
	chromeLines = 3
)

// TextMsg carries the full accumulated text.
type TextMsg string

// ProgressMsg carries image generation progress.
type ProgressMsg generation.Progress

// DoneMsg ends the program. Path is where the artifact was saved.
type DoneMsg struct {
	Path string
	Err  error
}

// Model is the bubbletea model of a running generation.
type Model struct {
	title    string
	text     string
	progress generation.Progress
	bar      progress.Model
	spinner  spinner.Model

	width  int
	height int

	done      bool
	path      string
	err       error
	cancelled bool
}

// New returns a model titled title.
func New(title string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = dimStyle

	return Model{
		title:   title,
		bar:     progress.New(progress.WithDefaultGradient()),
		spinner: s,
		width:   defaultWidth,
		height:  defaultHeight,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.cancelled = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(msg.Width-20, 10)

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TextMsg:
		m.text = string(msg)

	case ProgressMsg:
		m.progress = generation.Progress(msg)

	case DoneMsg:
		m.done = true
		m.path = msg.Path
		m.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	header := titleStyle.Render(m.title)
	if !m.done {
		header = m.spinner.View() + " " + header
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	if m.progress.Total > 0 && !m.done {
		b.WriteString(m.bar.ViewAs(m.progress.Fraction()))
		b.WriteString(dimStyle.Render(fmt.Sprintf("  step %d/%d", m.progress.Completed, m.progress.Total)))
		b.WriteString("\n")
	}

	if m.text != "" && !m.done {
		for _, line := range m.tail() {
			b.WriteString(ansi.Truncate(line, m.width, "…"))
			b.WriteString("\n")
		}
	}

	switch {
	case m.cancelled:
		b.WriteString(errStyle.Render("cancelled"))
	case m.done && m.err != nil:
		b.WriteString(errStyle.Render("error: " + m.err.Error()))
	case m.done:
		b.WriteString(okStyle.Render("done"))
		if m.path != "" {
			b.WriteString(dimStyle.Render(" · saved to " + m.path))
		}
	default:
		b.WriteString(dimStyle.Render("generating… (q to cancel)"))
	}
	b.WriteString("\n")

	return b.String()
}

// tail returns the last lines of the text that fit the terminal.
func (m Model) tail() []string {
	lines := strings.Split(m.text, "\n")
	room := max(m.height-chromeLines, 1)
	if m.progress.Total > 0 {
		room = max(room-1, 1)
	}
	if len(lines) > room {
		lines = lines[len(lines)-room:]
	}
	return lines
}

// Cancelled reports whether the user quit before the generation finished.
func (m Model) Cancelled() bool {
	return m.cancelled
}
