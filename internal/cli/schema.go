package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newInstallCmd creates the 'install' command.
func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Create the schema and seed the default blocked keywords",
		Long: `Run every pending migration, then seed the default blocked keyword list
and any substitutions from the rules file. Seeding happens only once per
database, so a list that was cleared stays cleared.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, rules, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			database, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")

			seeded, err := database.SeedDefaultRules(ctx, rules.Blocked(), rules.Substitutions())
			if err != nil {
				return fmt.Errorf("failed to seed default rules: %w", err)
			}
			if seeded {
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d blocked keywords and %d substitutions\n",
					len(rules.Blocked()), len(rules.Substitutions()))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Default rules were already seeded")
			}
			return nil
		},
	}
}

// newUninstallCmd creates the 'uninstall' command.
func newUninstallCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Drop every tagmaker table",
		Long: `Run every down migration. This deletes the keyword rules together with the
articles, attachments and tags tables.

Example:
  tagctl uninstall --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to drop the schema without --yes")
			}

			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			database, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.DropSchema(cfg.DatabaseURL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All tagmaker tables removed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm that all data should be deleted")
	return cmd
}
