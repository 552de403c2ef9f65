package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"photosite/internal/preview"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Preview the built site on a local web server",
		Args:  cobra.NoArgs,
		RunE:  a.runServe,
	}
	cmd.Flags().String("dir", "", "site folder (default: build output)")
	cmd.Flags().String("addr", "", "listen address (default :8000)")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	dir, addr := a.cfg.ServeDir(), a.cfg.Serve.Addr
	overrideString(cmd, "dir", &dir)
	overrideString(cmd, "addr", &addr)

	srv, err := preview.New(dir, a.logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx, addr)
}
