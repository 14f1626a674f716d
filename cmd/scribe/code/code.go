package codecmder

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/scribe/cmd/scribe/cli"
	"github.com/papercomputeco/scribe/pkg/generation"
	"github.com/papercomputeco/scribe/pkg/prompt"
	"github.com/papercomputeco/scribe/pkg/studio"
)

const codeLongDesc string = `Ask the coding agent to write, fix, refactor, explain or review code.

The agent answers as a senior software engineer. Existing code is read
from --file ("-" reads stdin) and sent along verbatim. The answer is
saved as kode_<timestamp>.txt in the output directory.

Modes: generate, debug, refactor, explain, review

Examples:
  scribe code "HTTP server in Go with graceful shutdown"
  scribe code --mode debug -f main.go "panics on empty input"
  cat handler.go | scribe code --mode review -f - "check error handling"`

const codeShortDesc string = "Run the coding agent"

var modeAliases = map[string]prompt.CodingMode{
	"generate": prompt.Generate,
	"debug":    prompt.Debug,
	"refactor": prompt.Refactor,
	"explain":  prompt.Explain,
	"review":   prompt.Review,
}

type codeCommander struct {
	flags *cli.Flags
	out   cli.Output

	mode  string
	file  string
	model string
}

func NewCodeCmd(flags *cli.Flags) *cobra.Command {
	cmder := &codeCommander{flags: flags}

	cmd := &cobra.Command{
		Use:   "code <instruction>",
		Short: codeShortDesc,
		Long:  codeLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&cmder.mode, "mode", "generate", "What to do with the instruction")
	cmd.Flags().StringVarP(&cmder.file, "file", "f", "", "File with existing code, or - for stdin")
	cmd.Flags().StringVarP(&cmder.model, "model", "m", "", "Model to use (default: first configured coding model)")
	cmder.out.Register(cmd)

	return cmd
}

func (c *codeCommander) run(ctx context.Context, cmd *cobra.Command, instruction string) error {
	mode, err := parseMode(c.mode)
	if err != nil {
		return err
	}

	existing, err := c.readExisting(cmd)
	if err != nil {
		return err
	}

	env, err := c.flags.Load(c.out.LogOutput(cmd, c.flags.Debug))
	if err != nil {
		return err
	}
	defer env.Logger.Sync()

	in := studio.CodingInput{
		Model: c.model,
		CodingForm: prompt.CodingForm{
			Mode:         mode,
			Instruction:  instruction,
			ExistingCode: existing,
		},
	}

	return c.out.Generate(ctx, cmd, string(mode), func(ctx context.Context, surface generation.Surface) (*generation.Session, generation.Artifact, error) {
		return env.Studio.Coding(ctx, in, surface)
	})
}

func (c *codeCommander) readExisting(cmd *cobra.Command) (string, error) {
	var (
		data []byte
		err  error
	)

	switch c.file {
	case "":
		return "", nil
	case "-":
		data, err = io.ReadAll(cmd.InOrStdin())
	default:
		data, err = os.ReadFile(c.file)
	}
	if err != nil {
		return "", fmt.Errorf("could not read existing code: %w", err)
	}
	return string(data), nil
}

// parseMode accepts a short alias or the full mode name.
func parseMode(s string) (prompt.CodingMode, error) {
	if mode, ok := modeAliases[strings.ToLower(s)]; ok {
		return mode, nil
	}
	for _, mode := range prompt.CodingModes() {
		if strings.EqualFold(s, string(mode)) {
			return mode, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q", s)
}
