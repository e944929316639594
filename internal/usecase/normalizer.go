package usecase

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Package-level compiled regex patterns for the normalization pipeline
var (
	leadingQuantityRegex = regexp.MustCompile(`^\d+(?:\.\d+)?\s*(?:(?:oz|lb|g|kg|cup|tsp|tbsp|dash|pinch|slice|piece|clove)s?\.?)?\s+`)
	parentheticalRegex   = regexp.MustCompile(`\([^()]*\)`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// NormalizeStep is one named transformation of the normalization pipeline
type NormalizeStep struct {
	Name  string
	Apply func(string) string
}

var normalizeSteps = []NormalizeStep{
	{Name: "compose_unicode", Apply: composeUnicode},
	{Name: "lowercase", Apply: strings.ToLower},
	{Name: "strip_leading_slash", Apply: stripLeadingSlash},
	{Name: "strip_leading_quantity", Apply: stripLeadingQuantity},
	{Name: "strip_parentheticals", Apply: stripParentheticals},
	{Name: "collapse_whitespace", Apply: collapseWhitespace},
	{Name: "trim", Apply: strings.TrimSpace},
}

// NormalizeSteps returns the ordered normalization pipeline
func NormalizeSteps() []NormalizeStep {
	steps := make([]NormalizeStep, len(normalizeSteps))
	copy(steps, normalizeSteps)
	return steps
}

// Normalize converts a raw ingredient or product name into its comparable form.
// The result may be empty; callers decide what an empty name means.
func Normalize(raw string) string {
	s := raw
	for _, step := range normalizeSteps {
		s = step.Apply(s)
	}
	return s
}

func composeUnicode(s string) string {
	return norm.NFC.String(s)
}

// stripLeadingSlash removes a single leading "/" left over from the ingredient dataset
func stripLeadingSlash(s string) string {
	return strings.TrimPrefix(s, "/")
}

// stripLeadingQuantity removes "2 cups ", "1.5 tbsp. ", "3 " and similar prefixes
func stripLeadingQuantity(s string) string {
	return leadingQuantityRegex.ReplaceAllString(s, "")
}

// stripParentheticals removes every "(...)" run, nested groups innermost first
func stripParentheticals(s string) string {
	for parentheticalRegex.MatchString(s) {
		s = parentheticalRegex.ReplaceAllString(s, " ")
	}
	return s
}

func collapseWhitespace(s string) string {
	return multipleSpacesRegex.ReplaceAllString(s, " ")
}
