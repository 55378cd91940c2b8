package commands

import (
	"github.com/spf13/cobra"
	"github.com/spoton-app/spoton/config"
)

// options holds the persistent flags shared by every command.
type options struct {
	envFile string
}

func (o *options) source() config.Source {
	return config.Source{EnvFile: o.envFile}
}

// NewRootCmd creates the root command. Without a subcommand it serves.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	serve := newServeCommand(opts)

	rootCmd := &cobra.Command{
		Use:           "spoton",
		Short:         "Spot On amateur football API",
		Args:          cobra.NoArgs,
		RunE:          serve.RunE,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "dotenv file read after the process environment")

	// Add subcommands
	rootCmd.AddCommand(
		serve,
		newMigrateCommand(opts),
		newVersionCommand(),
	)

	return rootCmd
}
