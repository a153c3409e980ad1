// Package keywords filters raw image keywords into article tags.
//
// A keyword goes through three rule sets, in this order: the blocked list,
// the excluded substrings, then the substitutions. Matching is
// case-insensitive; output keeps the casing of the input (or of the
// replacement). Order and duplicates of the input are preserved.
package keywords

import (
	"strings"
	"unicode"
)

// Disposition describes what the pipeline did with a single keyword.
type Disposition string

const (
	Kept        Disposition = "kept"
	Blocked     Disposition = "blocked"
	Excluded    Disposition = "excluded"
	Substituted Disposition = "substituted"
)

// Substitution maps one keyword (matched case-insensitively) to a replacement.
type Substitution struct {
	Original    string `json:"original" yaml:"original"`
	Replacement string `json:"replacement" yaml:"replacement"`
}

// Rules holds the three reference inputs of the pipeline.
type Rules struct {
	Blocked            []string       `json:"blocked"`
	Substitutions      []Substitution `json:"substitutions"`
	ExcludedSubstrings []string       `json:"excluded_substrings"`
}

// Decision records the outcome for one raw keyword.
type Decision struct {
	Raw         string      `json:"raw"`
	Keyword     string      `json:"keyword"`
	Disposition Disposition `json:"disposition"`
	// Rule is the blocked entry, excluded token or substitution original
	// that matched. Empty when the keyword was kept as is.
	Rule string `json:"rule,omitempty"`
}

// Dropped reports whether the keyword produced no tag.
func (d Decision) Dropped() bool {
	return d.Disposition == Blocked || d.Disposition == Excluded
}

// Filter is a compiled, read-only form of Rules. It is safe for concurrent use.
type Filter struct {
	blocked     map[string]string
	excluded    []string
	substitutes map[string]Substitution
}

// New compiles rules into a Filter. For duplicate substitution originals the
// first one wins.
func New(rules Rules) *Filter {
	f := &Filter{
		blocked:     make(map[string]string, len(rules.Blocked)),
		substitutes: make(map[string]Substitution, len(rules.Substitutions)),
	}
	for _, b := range rules.Blocked {
		lower := strings.ToLower(b)
		if _, ok := f.blocked[lower]; !ok {
			f.blocked[lower] = b
		}
	}
	for _, token := range rules.ExcludedSubstrings {
		// An empty token would match every keyword.
		if token == "" {
			continue
		}
		f.excluded = append(f.excluded, strings.ToLower(token))
	}
	for _, s := range rules.Substitutions {
		lower := strings.ToLower(s.Original)
		if _, ok := f.substitutes[lower]; !ok {
			f.substitutes[lower] = s
		}
	}
	return f
}

// Evaluate runs every raw keyword through the pipeline and returns one
// Decision per input element, in input order.
func (f *Filter) Evaluate(raw []string) []Decision {
	decisions := make([]Decision, 0, len(raw))
	for _, r := range raw {
		decisions = append(decisions, f.decide(r))
	}
	return decisions
}

// Apply returns the keywords that should become tags.
func (f *Filter) Apply(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		d := f.decide(r)
		if d.Dropped() {
			continue
		}
		out = append(out, d.Keyword)
	}
	return out
}

func (f *Filter) decide(raw string) Decision {
	trimmed := Trim(raw)
	lower := strings.ToLower(trimmed)

	if b, ok := f.blocked[lower]; ok {
		return Decision{Raw: raw, Disposition: Blocked, Rule: b}
	}

	for _, token := range f.excluded {
		if strings.Contains(lower, token) {
			return Decision{Raw: raw, Disposition: Excluded, Rule: token}
		}
	}

	if s, ok := f.substitutes[lower]; ok {
		return Decision{Raw: raw, Keyword: s.Replacement, Disposition: Substituted, Rule: s.Original}
	}

	return Decision{Raw: raw, Keyword: trimmed, Disposition: Kept}
}

// Apply filters raw keywords with rules. It is a shorthand for New(rules).Apply(raw).
func Apply(raw []string, rules Rules) []string {
	return New(rules).Apply(raw)
}

// FilterKeywords is the four-argument form of the pipeline.
func FilterKeywords(raw, blocked []string, substitutions []Substitution, excluded []string) []string {
	return Apply(raw, Rules{
		Blocked:            blocked,
		Substitutions:      substitutions,
		ExcludedSubstrings: excluded,
	})
}

// Trim strips surrounding whitespace and NUL padding, which IPTC writers
// sometimes leave at the end of a dataset. Whitespace is any Unicode space,
// so non-breaking spaces pasted from word processors are removed as well.
func Trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == 0
	})
}
