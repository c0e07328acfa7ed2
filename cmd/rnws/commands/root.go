// Package commands implements the CLI commands for rnws.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/rnws/internal/app"
	"go.trai.ch/rnws/internal/build"
	"go.trai.ch/rnws/internal/core/domain"
)

// CLI represents the command line interface for rnws.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	common  app.CommonOptions
	json    bool
}

// Application represents the application logic interface.
type Application interface {
	Start(ctx context.Context, opts app.StartOptions) error
	Bundle(ctx context.Context, opts app.BundleOptions) error
	SetJSONLogs(enable bool)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "rnws",
		Short:         "Development and bundle server for React Native apps",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.common.Hostname, "hostname", "H", domain.DefaultHostname, "Hostname on which the server will listen")
	flags.IntVarP(&c.common.Port, "port", "P", domain.DefaultPort, "Port on which the server will listen")
	flags.IntVarP(&c.common.PackagerPort, "packagerPort", "p", domain.DefaultPackagerPort,
		"Port on which the native packager backend will listen")
	flags.IntVarP(&c.common.WebpackPort, "webpackPort", "w", domain.DefaultWebpackPort,
		"Port on which the web bundler backend will listen")
	flags.StringVarP(&c.common.WebpackConfigPath, "webpackConfigPath", "c", domain.DefaultConfigFileName,
		"Path to the bundler configuration file")
	flags.StringVarP(&c.common.Entry, "entry", "e", domain.DefaultEntry, "Entry module of the application")
	flags.BoolVarP(&c.common.ResetCache, "resetCache", "r", false, "Clear the bundle and packager caches before starting")
	flags.BoolVar(&c.json, "json", false, "Write logs as JSON")

	rootCmd.PersistentPreRun = func(*cobra.Command, []string) {
		c.app.SetJSONLogs(c.json)
	}

	rootCmd.AddCommand(c.newStartCmd())
	rootCmd.AddCommand(c.newBundleCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
