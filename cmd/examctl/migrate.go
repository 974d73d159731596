package main

import (
	"database/sql"
	"fmt"
	"strconv"

	migrateV4 "github.com/golang-migrate/migrate/v4"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/yourusername/examprep-api/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, database.ApplyUp)
	},
}

var migrateForceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Set the schema version and clear the dirty flag",
	Long:  "force marks the schema as being at <version> without running migrations. Use it after a failed migration has been fixed by hand.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("version must be an integer: %w", err)
		}
		return withMigrator(cmd, func(m *migrateV4.Migrate) error {
			if err := m.Force(version); err != nil {
				return fmt.Errorf("force version %d: %w", version, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema version forced to %d\n", version)
			return nil
		})
	},
}

func init() {
	migrateCmd.PersistentFlags().String("source", database.DefaultMigrationsPath, "Migrations source URL")
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateForceCmd)
}

func withMigrator(cmd *cobra.Command, fn func(m *migrateV4.Migrate) error) error {
	dsn, err := resolveDSN(cmd)
	if err != nil {
		return err
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	source, _ := cmd.Flags().GetString("source")
	m, err := database.NewMigrator(db, source)
	if err != nil {
		return err
	}
	return fn(m)
}
