package servecmder

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/scribe/cmd/scribe/cli"
	"github.com/papercomputeco/scribe/pkg/mcpserver"
	"github.com/papercomputeco/scribe/server"
)

const serveLongDesc string = `Serve the generators over HTTP.

Endpoints:
  POST /api/article   {"title","keywords","length","tone","model"}
  POST /api/code      {"instruction","mode","existing_code","model"}
  POST /api/image     {"prompt","model"}
  GET  /api/models    configured models per generator
  GET  /health        liveness
  GET  /metrics       Prometheus metrics
  POST /mcp           Model Context Protocol (streamable HTTP)

Generations stream back as newline delimited JSON events.

Examples:
  scribe serve
  scribe serve --listen 127.0.0.1:9090`

const serveShortDesc string = "Run the HTTP server"

type serveCommander struct {
	flags  *cli.Flags
	listen string
}

func NewServeCmd(flags *cli.Flags) *cobra.Command {
	cmder := &serveCommander{flags: flags}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (default: config listen, then :8080)")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command) error {
	env, err := c.flags.Load(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer env.Logger.Sync()

	addr := env.Config.Listen
	if c.listen != "" {
		addr = c.listen
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", addr, err)
	}

	srv := server.New(server.Config{ListenAddr: addr, Version: c.flags.Version}, env.Studio, env.Logger,
		server.WithMetrics(env.Registry),
		server.WithMCP(mcpserver.New(env.Studio, c.flags.Version, env.Logger)),
	)

	return serve(ctx, srv, ln, env.Logger)
}

// serve runs srv on ln until ctx is done, then shuts it down.
func serve(ctx context.Context, srv *server.Server, ln net.Listener, logger *zap.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	stopped := make(chan struct{})

	g.Go(func() error {
		defer close(stopped)
		return srv.RunWithListener(ln)
	})

	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-stopped:
			return nil
		}
		logger.Info("shutting down http server")
		if err := srv.Shutdown(); err != nil {
			return fmt.Errorf("could not shut down: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
