package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/rnws/internal/app"
)

func (c *CLI) newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the development server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hot, _ := cmd.Flags().GetBool("hot")
			watch, _ := cmd.Flags().GetBool("watch")

			return c.app.Start(cmd.Context(), app.StartOptions{
				CommonOptions: c.common,
				Hot:           hot,
				Watch:         watch,
			})
		},
	}
	cmd.Flags().Bool("hot", false, "Enable hot module replacement in the web bundler")
	cmd.Flags().Bool("watch", true, "Clear compiled bundles when source files change")
	return cmd
}
