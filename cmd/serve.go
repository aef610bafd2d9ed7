package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Tiliavir/clicktime-assistant/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local relay server the browser extension talks to",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	addr := env.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	hub := server.NewHub(env.logger)
	runner, err := env.runner(ctx, hub)
	if err != nil {
		return err
	}
	rq, err := env.requester()
	if err != nil {
		return err
	}

	srv := server.New(server.Deps{
		Dispatcher:   env.dispatcher(ctx),
		Status:       rq,
		Enabled:      env.settings(),
		Runner:       runner,
		Hub:          hub,
		ClickTimeURL: env.cfg.ClickTime.BaseURL,
		Logger:       env.logger,
	})
	return srv.ListenAndServe(ctx, addr)
}
