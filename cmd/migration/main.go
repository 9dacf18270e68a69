package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gitlab.com/dirk.krummacker/contactbook/internal/config"
	"gitlab.com/dirk.krummacker/contactbook/internal/logger"
	"gitlab.com/dirk.krummacker/contactbook/internal/service"
	"gitlab.com/dirk.krummacker/contactbook/internal/store"
	"go.uber.org/zap"
)

var (
	cfg config.Config
	log *zap.Logger
)

// Usage example on the command line:
// > DB_DRIVER=mysql DBHOST=localhost DBUSER=dirk DBPWD=bullo92 go run . up
// > SQLITE_PATH=contacts.db go run . seed
func main() {
	cobra.CheckErr(createRootCmd().Execute())
}

func createRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "migration",
		Short:        "Manage the database schema of the contacts service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return err
			}
			if cfg.DBDriver == config.DriverMemory {
				return fmt.Errorf("the %s driver has no schema to migrate", config.DriverMemory)
			}
			log, err = logger.New(cfg.LogLevel, cfg.LogFormat)
			return err
		},
	}
	cmd.AddCommand(
		schemaCmd("up", "Apply all pending migrations", store.Migrate),
		schemaCmd("down", "Roll back the most recent migration", store.MigrateDown),
		schemaCmd("status", "Show the state of every migration", store.MigrationStatus),
		seedCmd(),
	)
	return cmd
}

// schemaCmd creates a subcommand that runs one goose operation.
func schemaCmd(use string, short string, run func(context.Context, *sqlx.DB, *zap.Logger) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			return run(cmd.Context(), db, log)
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate the schema and insert the demo contacts",
		Long: `Migrate the schema and insert the demo contacts. A contact is not inserted again if a
contact with the same first and last name already exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, err := store.Setup(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer stores.Close()
			created, err := seed(cmd.Context(), service.New(stores.Contacts, stores.Images, log))
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%d contacts inserted\n", created)
			return nil
		},
	}
}
