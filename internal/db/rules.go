package db

import (
	"context"
	"fmt"

	"tagmaker/internal/keywords"
)

// LoadRules reads the blocked list and the substitutions for one filtering
// run. Excluded substrings are configuration, not stored, and are left empty.
func (d *DB) LoadRules(ctx context.Context) (keywords.Rules, error) {
	var rules keywords.Rules

	blocked, err := d.ListBlockedKeywords(ctx)
	if err != nil {
		return rules, fmt.Errorf("failed to load blocked keywords: %w", err)
	}
	for _, b := range blocked {
		rules.Blocked = append(rules.Blocked, b.Keyword)
	}

	subs, err := d.ListKeywordSubstitutions(ctx)
	if err != nil {
		return rules, fmt.Errorf("failed to load keyword substitutions: %w", err)
	}
	for _, s := range subs {
		rules.Substitutions = append(rules.Substitutions, keywords.Substitution{
			Original:    s.OriginalKeyword,
			Replacement: s.ReplacementKeyword,
		})
	}

	return rules, nil
}

// CountRules returns the number of blocked keywords and substitutions.
func (d *DB) CountRules(ctx context.Context) (blocked, substitutions int64, err error) {
	err = d.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM blocked_keywords),
			(SELECT COUNT(*) FROM keyword_substitutions)
	`).Scan(&blocked, &substitutions)
	return blocked, substitutions, err
}
