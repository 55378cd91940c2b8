package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spoton-app/spoton/cmd/spoton/provider"
	"github.com/spoton-app/spoton/config"
	"github.com/spoton-app/spoton/data"
	"github.com/spoton-app/spoton/data/schema"
)

func newMigrateCommand(opts *options) *cobra.Command {
	var (
		printOnly bool
		status    bool
	)

	cmd := &cobra.Command{
		Use:     "migrate",
		Args:    cobra.NoArgs,
		Aliases: []string{"m"},
		Short:   "Apply pending database migrations",
		Long:    `Apply pending schema migrations to the database named by DATABASE_URL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if printOnly {
				return printSQL(out, opts.source())
			}

			eng, cleanup, err := provider.InitializeEngine(opts.source())
			if err != nil {
				return err
			}
			defer cleanup()

			if status {
				pending, err := schema.Pending(cmd.Context(), eng)
				if err != nil {
					return err
				}
				if len(pending) == 0 {
					fmt.Fprintln(out, "schema is up to date")
					return nil
				}
				for _, m := range pending {
					fmt.Fprintf(out, "pending %d %s\n", m.Version, m.Name)
				}
				return nil
			}

			applied, err := schema.Migrate(cmd.Context(), eng)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "applied %d migration(s)\n", applied)
			return nil
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "print the schema SQL for the configured database without connecting")
	cmd.Flags().BoolVar(&status, "status", false, "list pending migrations without applying them")
	cmd.MarkFlagsMutuallyExclusive("print", "status")

	return cmd
}

func printSQL(w io.Writer, src config.Source) error {
	cfg, err := config.LoadSource(src)
	if err != nil {
		return err
	}
	u, err := data.ParseURL(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	driver, err := data.GetDatabaseDriver(u.Driver)
	if err != nil {
		return err
	}
	stmts, err := schema.SQL(driver.Dialect())
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		fmt.Fprintf(w, "%s;\n\n", stmt)
	}
	return nil
}
