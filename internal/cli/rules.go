package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tagmaker/internal/db"
	"tagmaker/internal/keywords"
	"tagmaker/internal/validation"
)

// newBlockCmd creates the 'block' command.
func newBlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "block <keyword>...",
		Short: "Add keywords to the blocked list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			database, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			out := cmd.OutOrStdout()
			for _, arg := range args {
				keyword := keywords.CleanKeyword(arg)
				if ok, msg := validation.ValidateKeyword(keyword); !ok {
					fmt.Fprintf(out, "skipped %q: %s\n", arg, msg)
					continue
				}
				if _, err := database.AddBlockedKeyword(cmd.Context(), keyword); err != nil {
					if errors.Is(err, db.ErrDuplicateBlocked) {
						fmt.Fprintf(out, "%q is already blocked\n", keyword)
						continue
					}
					return err
				}
				fmt.Fprintf(out, "blocked %q\n", keyword)
			}
			return nil
		},
	}
}

// newUnblockCmd creates the 'unblock' command.
func newUnblockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unblock <keyword>",
		Short: "Remove a keyword from the blocked list (exact text)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			database, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			keyword := keywords.CleanKeyword(args[0])
			if err := database.DeleteBlockedKeywordByName(cmd.Context(), keyword); err != nil {
				if errors.Is(err, db.ErrBlockedKeywordNotFound) {
					return fmt.Errorf("%q is not blocked", keyword)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unblocked %q\n", keyword)
			return nil
		},
	}
}

// newImportCmd creates the 'import' command group.
func newImportCmd() *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk import blocked keywords or substitutions from a file",
	}
	importCmd.AddCommand(newImportBlockedCmd())
	importCmd.AddCommand(newImportSubstitutionsCmd())
	return importCmd
}

func newImportBlockedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blocked <file>",
		Short: "Import blocked keywords, one per line or comma separated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := readBlockedFile(args[0])
			if err != nil {
				return err
			}
			if len(list) == 0 {
				return fmt.Errorf("no keywords found in %s", args[0])
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

			result, err := database.ImportBlockedKeywords(cmd.Context(), list)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d keywords, %d duplicates skipped\n", result.Imported, result.Duplicates)
			return nil
		},
	}
}

func newImportSubstitutionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "substitutions <file>",
		Short: `Import substitutions, one "original => replacement" per line`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subs, err := readSubstitutionFile(args[0])
			if err != nil {
				return err
			}
			if len(subs) == 0 {
				return fmt.Errorf("no substitutions found in %s", args[0])
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

			result, err := database.ImportKeywordSubstitutions(cmd.Context(), subs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d substitutions, %d updated\n", result.Imported, result.Updated)
			return nil
		},
	}
}

// readBlockedFile parses a blocked keyword list and drops invalid entries.
func readBlockedFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var list []string
	for _, k := range keywords.ParseBlockedList(string(data)) {
		if ok, _ := validation.ValidateKeyword(k); ok {
			list = append(list, k)
		}
	}
	return list, nil
}

// readSubstitutionFile parses a substitution list and drops invalid pairs.
func readSubstitutionFile(path string) ([]keywords.Substitution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var subs []keywords.Substitution
	for _, s := range keywords.ParseSubstitutionList(string(data)) {
		if ok, _ := validation.ValidateSubstitution(s.Original, s.Replacement); ok {
			subs = append(subs, s)
		}
	}
	return subs, nil
}
