package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	articlecmder "github.com/papercomputeco/scribe/cmd/scribe/article"
	"github.com/papercomputeco/scribe/cmd/scribe/cli"
	codecmder "github.com/papercomputeco/scribe/cmd/scribe/code"
	imagecmder "github.com/papercomputeco/scribe/cmd/scribe/image"
	mcpcmder "github.com/papercomputeco/scribe/cmd/scribe/mcp"
	servecmder "github.com/papercomputeco/scribe/cmd/scribe/serve"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const rootLongDesc string = `scribe writes articles, code and images with Ollama Cloud models.

The OLLAMA_API_KEY environment variable must hold an Ollama API key.
OLLAMA_HOST overrides the endpoint (default https://ollama.com).
Models, timeout and sampling options are read from the config file.`

func newRootCmd() *cobra.Command {
	flags := &cli.Flags{Version: version}

	cmd := &cobra.Command{
		Use:          "scribe",
		Short:        "Streaming article, code and image generation",
		Long:         rootLongDesc,
		Version:      version,
		SilenceUsage: true,
	}
	flags.Register(cmd)

	cmd.AddCommand(
		articlecmder.NewArticleCmd(flags),
		codecmder.NewCodeCmd(flags),
		imagecmder.NewImageCmd(flags),
		servecmder.NewServeCmd(flags),
		mcpcmder.NewMCPCmd(flags),
	)

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
