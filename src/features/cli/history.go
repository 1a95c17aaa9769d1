package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recent identifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.History == nil {
				return fmt.Errorf("history is disabled in the configuration")
			}
			entries, err := app.History.Recent(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No identifications recorded yet.")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s  %s - %s (%.1f%%) [%s]\n",
					e.CreatedAt.Local().Format("2006-01-02 15:04"),
					e.Artist, e.Title, e.Score*100, e.Source)
			}
			return nil
		},
	}
}
