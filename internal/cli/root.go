// Package cli provides the tagctl maintenance commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"tagmaker/internal/config"
	"tagmaker/internal/db"
)

var (
	// Global flags
	databaseURL string
	rulesFile   string
	verbose     bool
)

// NewRootCmd creates the tagctl root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tagctl",
		Short: "Maintain the tagmaker database and keyword rules",
		Long: `tagctl installs or removes the tagmaker schema, manages the blocked
keyword and substitution lists, and previews or runs tagging from the
command line.

Configuration is read from the same environment variables as the server
(DATABASE_URL, RULES_FILE, TAG_MODE, ...).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "Rules YAML file (overrides RULES_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newUninstallCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newBlockCmd())
	rootCmd.AddCommand(newUnblockCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newProcessCmd())

	return rootCmd
}

// loadConfig reads the environment and the rules file, applying flag overrides.
func loadConfig() (*config.Config, *config.RulesConfig, error) {
	cfg := config.Load()
	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}
	if rulesFile != "" {
		cfg.RulesFile = rulesFile
	}

	rules, err := config.LoadRulesConfig(cfg.RulesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load rules file %s: %w", cfg.RulesFile, err)
	}
	cfg.Settings = rules.Apply(cfg.Settings)
	return cfg, rules, nil
}

// openDB connects to the configured database.
func openDB(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}
