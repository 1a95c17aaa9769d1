package cli

import (
	"github.com/contre95/soundprint/src/features/recording"
	"github.com/spf13/cobra"
)

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List available audio input devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := recording.InputDevices()
			if err != nil {
				return err
			}
			recording.RenderDevices(cmd.OutOrStdout(), devices)
			return nil
		},
	}
}
