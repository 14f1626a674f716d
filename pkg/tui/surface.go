package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/papercomputeco/scribe/pkg/generation"
)

// ProgramSurface forwards session updates to a running tea.Program.
type ProgramSurface struct {
	Program *tea.Program
}

func (s ProgramSurface) RenderText(text string) {
	s.Program.Send(TextMsg(text))
}

func (s ProgramSurface) RenderProgress(p generation.Progress) {
	s.Program.Send(ProgressMsg(p))
}

// OfferDownload is a no-op; the caller saves the artifact and reports the
// path with DoneMsg.
func (s ProgramSurface) OfferDownload(generation.Artifact) {}

// PlainSurface writes to non-terminal outputs. Text goes to Out; since the
// surface is handed the full text each time, only the unseen suffix is
// written. Progress goes to Status.
type PlainSurface struct {
	Out    io.Writer
	Status io.Writer

	written int
}

func (s *PlainSurface) RenderText(text string) {
	if len(text) <= s.written {
		return
	}
	fmt.Fprint(s.Out, text[s.written:])
	s.written = len(text)
}

func (s *PlainSurface) RenderProgress(p generation.Progress) {
	if s.Status == nil {
		return
	}
	fmt.Fprintf(s.Status, "step %d/%d\n", p.Completed, p.Total)
}

func (s *PlainSurface) OfferDownload(generation.Artifact) {
	if s.written > 0 {
		fmt.Fprintln(s.Out)
	}
}

// RenderMarkdown renders md for a terminal of the given width. Style is a
// glamour style name; "auto" detects the terminal background.
func RenderMarkdown(md string, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("could not create markdown renderer: %w", err)
	}
	return r.Render(md)
}
