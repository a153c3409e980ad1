package keywords

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var substitutionLineSplit = regexp.MustCompile(`[\r\n,]+`)

// CleanKeyword normalizes a keyword typed or pasted by an admin: backslash
// escapes are removed, surrounding quotes and whitespace are stripped until
// none are left, and the result is NFC-normalized.
func CleanKeyword(s string) string {
	s = stripSlashes(s)
	s = strings.TrimSpace(s)
	for s != "" {
		before := s
		s = strings.Trim(s, `"'`)
		s = strings.TrimSpace(s)
		if s == before {
			break
		}
	}
	return norm.NFC.String(s)
}

// stripSlashes removes one level of backslash escaping ("\\" becomes "\").
func stripSlashes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

// ParseBlockedList parses a bulk import of blocked keywords separated by
// commas or newlines. Empty entries are dropped.
func ParseBlockedList(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if k := CleanKeyword(f); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// ParseSubstitutionList parses a bulk import of substitutions. Entries are
// separated by newlines or commas and use either "original => replacement"
// or a tab (spreadsheet paste) between the two sides. Entries without a
// separator are skipped. When an original appears twice, the later
// replacement wins but the entry keeps its first position.
func ParseSubstitutionList(text string) []Substitution {
	var out []Substitution
	index := make(map[string]int)

	for _, line := range substitutionLineSplit.Split(text, -1) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var original, replacement string
		var ok bool
		if strings.Contains(line, "=>") {
			original, replacement, ok = strings.Cut(line, "=>")
		} else if strings.Contains(line, "\t") {
			original, replacement, ok = strings.Cut(line, "\t")
		}
		if !ok {
			continue
		}

		original = CleanKeyword(original)
		replacement = CleanKeyword(replacement)
		if original == "" || replacement == "" {
			continue
		}

		if i, seen := index[original]; seen {
			out[i].Replacement = replacement
			continue
		}
		index[original] = len(out)
		out = append(out, Substitution{Original: original, Replacement: replacement})
	}
	return out
}
