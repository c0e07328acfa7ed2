package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/rnws/internal/app"
	"go.trai.ch/rnws/internal/core/domain"
)

func (c *CLI) newBundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Compile the application bundle and write it to disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bundlePath, _ := cmd.Flags().GetString("bundlePath")
			noOptimize, _ := cmd.Flags().GetBool("no-optimize")
			platform, _ := cmd.Flags().GetString("platform")
			sourceMap, _ := cmd.Flags().GetBool("sourceMap")

			return c.app.Bundle(cmd.Context(), app.BundleOptions{
				CommonOptions: c.common,
				BundleOptions: domain.BundleOptions{
					BundlePath: bundlePath,
					Optimize:   !noOptimize,
					Platform:   platform,
					SourceMap:  sourceMap,
				},
			})
		},
	}
	cmd.Flags().StringP("bundlePath", "b", domain.DefaultBundlePath, "Path where the bundle should be written")
	cmd.Flags().Bool("no-optimize", false, "Build a development bundle instead of a minified one")
	cmd.Flags().String("platform", domain.DefaultPlatform, "Platform the bundle is compiled for")
	cmd.Flags().BoolP("sourceMap", "s", false, "Also write the source map next to the bundle")
	return cmd
}
