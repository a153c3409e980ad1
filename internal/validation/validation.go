package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxKeywordLength matches the width of the keyword columns.
const MaxKeywordLength = 255

// ValidateKeyword checks that a cleaned keyword can be stored as a rule.
// Returns false and a user-facing message when it cannot.
func ValidateKeyword(keyword string) (bool, string) {
	if keyword == "" {
		return false, "Keyword is required"
	}
	if utf8.RuneCountInString(keyword) > MaxKeywordLength {
		return false, "Keyword must be at most 255 characters"
	}
	if !utf8.ValidString(keyword) {
		return false, "Keyword must be valid UTF-8"
	}
	for _, r := range keyword {
		if unicode.IsControl(r) {
			return false, "Keyword must not contain control characters"
		}
	}
	return true, ""
}

// ValidateSubstitution checks both sides of a substitution.
func ValidateSubstitution(original, replacement string) (bool, string) {
	if original == "" || replacement == "" {
		return false, "Both original and replacement keywords are required"
	}
	if ok, msg := ValidateKeyword(original); !ok {
		return false, "Original: " + msg
	}
	if ok, msg := ValidateKeyword(replacement); !ok {
		return false, "Replacement: " + msg
	}
	return true, ""
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives the URL slug of a tag name: accents are removed, letters
// and digits are lowercased, and every other run of characters becomes a
// single hyphen. Returns "" when nothing usable is left.
func Slugify(name string) string {
	stripped, _, err := transform.String(stripMarks, name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			hyphen = false
			continue
		}
		if !hyphen && b.Len() > 0 {
			b.WriteByte('-')
			hyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
