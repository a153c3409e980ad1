package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tagmaker/internal/iptc"
	"tagmaker/internal/keywords"
	"tagmaker/internal/tagging"
)

// newPreviewCmd creates the 'preview' command.
func newPreviewCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "preview <image>",
		Short: "Show how the keywords of an image would be filtered",
		Long: `Read the IPTC keywords of an image file and run them through the current
rules, printing what happens to each keyword.

Example:
  tagctl preview ./uploads/2024/beach.jpg
  tagctl preview --offline beach.jpg   # excluded substrings only, no database`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, ok := iptc.ReadKeywords(args[0])
			if !ok || len(raw) == 0 {
				return fmt.Errorf("%s has no IPTC keywords", args[0])
			}

			cfg, rulesCfg, err := loadConfig()
			if err != nil {
				return err
			}

			var rules keywords.Rules
			if !offline {
				database, err := openDB(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer database.Close()

				if rules, err = database.LoadRules(cmd.Context()); err != nil {
					return err
				}
			}
			rules.ExcludedSubstrings = rulesCfg.Excluded()

			return printDecisions(cmd.OutOrStdout(), keywords.New(rules).Evaluate(raw))
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the database and apply only the excluded substrings")
	return cmd
}

// newProcessCmd creates the 'process' command.
func newProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process <article-id>",
		Short: "Tag an article from its first image now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid article id %q", args[0])
			}

			cfg, rulesCfg, err := loadConfig()
			if err != nil {
				return err
			}
			database, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			processor := tagging.NewProcessor(database, database, iptc.Reader{}, cfg.Settings, rulesCfg.Excluded())
			result, err := processor.Process(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tagged %s with %d tags (%s mode)\n", id, len(result.Tags), cfg.Settings.TagMode)
			if len(result.Tags) > 0 {
				fmt.Fprintf(out, "  %s\n", strings.Join(result.Tags, ", "))
			}
			if result.FullKeywordsSaved {
				fmt.Fprintln(out, "saved the full keyword list")
			}
			return nil
		},
	}
}

// printDecisions writes one row per keyword and a summary line.
func printDecisions(w io.Writer, decisions []keywords.Decision) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEYWORD\tRESULT\tRULE")

	kept := 0
	for _, d := range decisions {
		result := string(d.Disposition)
		if !d.Dropped() {
			kept++
			result = d.Keyword
			if d.Disposition == keywords.Substituted {
				result = "→ " + d.Keyword
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Raw, result, d.Rule)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d of %d keywords become tags\n", kept, len(decisions))
	return err
}
