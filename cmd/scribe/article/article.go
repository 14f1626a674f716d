package articlecmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/scribe/cmd/scribe/cli"
	"github.com/papercomputeco/scribe/pkg/generation"
	"github.com/papercomputeco/scribe/pkg/prompt"
	"github.com/papercomputeco/scribe/pkg/studio"
)

const articleLongDesc string = `Write an SEO friendly article for a title.

The article streams in as it is written and is saved as
artikel_<timestamp>.txt in the output directory once complete.

Examples:
  scribe article "Belajar Go untuk pemula"
  scribe article "Kopi Nusantara" -k "kopi, arabika, gayo" -l long --tone Storytelling
  scribe article "Home office tips" --plain -o articles/ > article.md`

const articleShortDesc string = "Generate an article"

type articleCommander struct {
	flags *cli.Flags
	out   cli.Output

	keywords string
	length   string
	tone     string
	model    string
}

func NewArticleCmd(flags *cli.Flags) *cobra.Command {
	cmder := &articleCommander{flags: flags}

	cmd := &cobra.Command{
		Use:   "article <title>",
		Short: articleShortDesc,
		Long:  articleLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.keywords, "keywords", "k", "", "Comma separated main keywords")
	cmd.Flags().StringVarP(&cmder.length, "length", "l", string(prompt.Medium), "Article length: "+lengthChoices())
	cmd.Flags().StringVar(&cmder.tone, "tone", string(prompt.Formal), "Writing style, e.g. "+toneChoices())
	cmd.Flags().StringVarP(&cmder.model, "model", "m", "", "Model to use (default: first configured article model)")
	cmder.out.Register(cmd)

	return cmd
}

func (c *articleCommander) run(ctx context.Context, cmd *cobra.Command, title string) error {
	length, err := prompt.ParseLengthClass(c.length)
	if err != nil {
		return err
	}

	env, err := c.flags.Load(c.out.LogOutput(cmd, c.flags.Debug))
	if err != nil {
		return err
	}
	defer env.Logger.Sync()

	in := studio.ArticleInput{
		Model: c.model,
		ArticleForm: prompt.ArticleForm{
			Title:    title,
			Keywords: c.keywords,
			Length:   length,
			Tone:     prompt.Tone(c.tone),
		},
	}

	return c.out.Generate(ctx, cmd, title, func(ctx context.Context, surface generation.Surface) (*generation.Session, generation.Artifact, error) {
		return env.Studio.Article(ctx, in, surface)
	})
}

func lengthChoices() string {
	names := make([]string, 0, len(prompt.LengthClasses()))
	for _, l := range prompt.LengthClasses() {
		instruction, _ := l.Instruction()
		names = append(names, fmt.Sprintf("%s (%s)", l, instruction))
	}
	return strings.Join(names, ", ")
}

func toneChoices() string {
	names := make([]string, 0, len(prompt.Tones()))
	for _, t := range prompt.Tones() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
