package cli

import (
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the identification HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			errCh := make(chan error, 1)
			go func() {
				errCh <- app.Server.Start()
			}()
			slog.Info("Server started. Press Ctrl+C to shut down.", "port", app.Config.Get().Server.Port)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt)

			select {
			case err := <-errCh:
				return err
			case <-quit:
			}
			slog.Info("Shutting down server...")
			if err := app.Server.Shutdown(); err != nil {
				return err
			}
			slog.Info("Server gracefully shut down.")
			return nil
		},
	}
}
