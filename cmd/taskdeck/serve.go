package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dori/taskdeck/internal/app"
	"github.com/dori/taskdeck/internal/server"
)

func newServeCmd(e *env) *cobra.Command {
	var addr, dataDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the task API server on a local SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = e.cfg.Server.Addr
			}
			if dataDir == "" {
				dataDir = e.cfg.Server.DataDir
			}

			logger := log.New(os.Stderr, "taskdeck ", log.LstdFlags|log.Lmicroseconds)

			backend, err := app.OpenBackend(dataDir)
			if err != nil {
				return err
			}
			defer backend.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Printf("serving %s from %s", addr, backend.DataDir)
			handler := server.NewHandler(backend.DB, logger).Routes()
			return server.Serve(ctx, addr, handler, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :5000)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory holding tasks.db (default XDG data dir)")
	return cmd
}
