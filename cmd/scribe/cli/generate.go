package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/scribe/pkg/generation"
	"github.com/papercomputeco/scribe/pkg/tui"
)

const fallbackWidth = 80

// Output are the flags controlling where a generation is shown and saved.
type Output struct {
	Dir   string
	Plain bool
	Style string
}

// Register adds the output flags to cmd.
func (o *Output) Register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Dir, "out", "o", ".", "Directory the result is saved to")
	cmd.Flags().BoolVar(&o.Plain, "plain", false, "Stream plain output even on a terminal")
	cmd.Flags().StringVar(&o.Style, "style", "auto", "Markdown style of the finished text (auto, dark, light, notty)")
}

// LogOutput is where logs go while the command runs. The live view owns
// the terminal, so logs are dropped there unless debugging.
func (o Output) LogOutput(cmd *cobra.Command, debug bool) io.Writer {
	if _, live := terminalWidth(cmd.OutOrStdout()); live && !o.Plain && !debug {
		return io.Discard
	}
	return cmd.ErrOrStderr()
}

// GenerateFunc runs one generation against surface.
type GenerateFunc func(ctx context.Context, surface generation.Surface) (*generation.Session, generation.Artifact, error)

// Generate runs gen and saves its artifact. On a terminal the generation is
// shown live and finished text is rendered as markdown; otherwise text is
// streamed as is.
func (o Output) Generate(ctx context.Context, cmd *cobra.Command, title string, gen GenerateFunc) error {
	out := cmd.OutOrStdout()

	width, interactive := terminalWidth(out)
	if o.Plain {
		interactive = false
	}

	if !interactive {
		return o.generatePlain(ctx, cmd, gen)
	}

	session, artifact, path, err := o.generateLive(ctx, out, title, gen)
	if err != nil {
		if session != nil && session.Text() != "" {
			fmt.Fprintln(out, session.Text())
		}
		return err
	}

	if artifact.MIMEType == generation.MIMETypeText {
		rendered, err := tui.RenderMarkdown(string(artifact.Data), o.Style, width)
		if err != nil {
			rendered = string(artifact.Data)
		}
		fmt.Fprint(out, rendered)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", path)

	return nil
}

func (o Output) generatePlain(ctx context.Context, cmd *cobra.Command, gen GenerateFunc) error {
	surface := &tui.PlainSurface{Out: cmd.OutOrStdout(), Status: cmd.ErrOrStderr()}

	_, artifact, err := gen(ctx, surface)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	path, err := Save(o.Dir, artifact)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", path)

	return nil
}

// generateLive runs gen in its own goroutine while a bubbletea program
// owns the terminal. Quitting the program cancels the generation.
func (o Output) generateLive(ctx context.Context, out io.Writer, title string, gen GenerateFunc) (*generation.Session, generation.Artifact, string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(tui.New(title), tea.WithOutput(out), tea.WithContext(ctx))

	type result struct {
		session  *generation.Session
		artifact generation.Artifact
		path     string
		err      error
	}
	done := make(chan result, 1)

	go func() {
		var r result
		r.session, r.artifact, r.err = gen(ctx, tui.ProgramSurface{Program: program})
		if r.err == nil {
			r.path, r.err = Save(o.Dir, r.artifact)
		}
		program.Send(tui.DoneMsg{Path: r.path, Err: r.err})
		done <- r
	}()

	final, runErr := program.Run()
	if m, ok := final.(tui.Model); runErr != nil || (ok && m.Cancelled()) {
		cancel()
	}

	r := <-done
	if r.err != nil {
		return r.session, generation.Artifact{}, "", fmt.Errorf("generation failed: %w", r.err)
	}
	return r.session, r.artifact, r.path, nil
}

// Save writes a to dir under its suggested filename and returns the path.
func Save(dir string, a generation.Artifact) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create output directory: %w", err)
	}

	path := filepath.Join(dir, a.Filename)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("could not save %s: %w", path, err)
	}
	return path, nil
}

// terminalWidth reports whether w is a terminal, and its width.
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth, true
	}
	return width, true
}
