package imagecmder

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/scribe/cmd/scribe/cli"
	"github.com/papercomputeco/scribe/pkg/generation"
	"github.com/papercomputeco/scribe/pkg/studio"
)

const imageLongDesc string = `Generate a PNG image from a prompt.

Progress is shown while the model works; the image is saved as
generated_image.png in the output directory.

Examples:
  scribe image "a lighthouse at dusk, watercolor"
  scribe image --model x/flux2-klein -o renders/ "isometric city block"`

const imageShortDesc string = "Generate an image"

type imageCommander struct {
	flags *cli.Flags
	out   cli.Output

	model string
}

func NewImageCmd(flags *cli.Flags) *cobra.Command {
	cmder := &imageCommander{flags: flags}

	cmd := &cobra.Command{
		Use:   "image <prompt>",
		Short: imageShortDesc,
		Long:  imageLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.model, "model", "m", "", "Model to use (default: first configured image model)")
	cmder.out.Register(cmd)

	return cmd
}

func (c *imageCommander) run(ctx context.Context, cmd *cobra.Command, text string) error {
	env, err := c.flags.Load(c.out.LogOutput(cmd, c.flags.Debug))
	if err != nil {
		return err
	}
	defer env.Logger.Sync()

	in := studio.ImageInput{Model: c.model, Prompt: text}

	return c.out.Generate(ctx, cmd, "Image", func(ctx context.Context, surface generation.Surface) (*generation.Session, generation.Artifact, error) {
		return env.Studio.Image(ctx, in, surface)
	})
}
