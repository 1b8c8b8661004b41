package main

import (
	"github.com/spf13/cobra"

	"github.com/cjeanneret/photobridge/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the camera over HTTP (capture, preview, config, SSE status)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cam := a.openCamera()
			defer closeCamera(cam)

			handlers := web.NewHandlers(cam, web.NewStatusBroadcaster(), a.cfg.Defaults.DownloadDir, a.log)
			return web.NewServer(addr, handlers).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
