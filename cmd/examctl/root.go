package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yourusername/examprep-api/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "examctl",
	Short: "Maintenance tool for the exam prep API",
	Long:  "examctl applies database migrations and validates or imports question documents.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
}

// Execute запускает корневую команду
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("dsn", "", "Postgres URL (overrides DATABASE_URL and the config file)")
	rootCmd.PersistentFlags().String("config", "config/config.yaml", "Path to the service config file")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(questionsCmd)
}

// resolveDSN возвращает строку подключения: флаг --dsn, затем DATABASE_URL, затем config-файл
func resolveDSN(cmd *cobra.Command) (string, error) {
	if dsn, _ := cmd.Flags().GetString("dsn"); dsn != "" {
		return dsn, nil
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn, nil
	}
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return "", fmt.Errorf("no --dsn or DATABASE_URL given and config could not be loaded: %w", err)
	}
	if !cfg.Database.Enabled {
		return "", errors.New("database is disabled in config")
	}
	return cfg.Database.PostgresURL(), nil
}
