package mcpcmder

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/scribe/cmd/scribe/cli"
	"github.com/papercomputeco/scribe/pkg/mcpserver"
)

const mcpLongDesc string = `Serve the generators as Model Context Protocol tools over stdio.

Tools: generate_article, generate_code, generate_image, list_models.
Logs go to stderr; stdout carries the protocol.

Example client configuration:
  {"command": "scribe", "args": ["mcp"], "env": {"OLLAMA_API_KEY": "..."}}`

const mcpShortDesc string = "Run as an MCP server over stdio"

type mcpCommander struct {
	flags *cli.Flags
}

func NewMCPCmd(flags *cli.Flags) *cobra.Command {
	cmder := &mcpCommander{flags: flags}

	return &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}
}

func (c *mcpCommander) run(ctx context.Context, cmd *cobra.Command) error {
	env, err := c.flags.Load(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer env.Logger.Sync()

	env.Logger.Info("serving mcp over stdio")

	server := mcpserver.New(env.Studio, c.flags.Version, env.Logger)
	return server.Run(ctx, &mcp.StdioTransport{})
}
