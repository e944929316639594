package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/nani/backend/internal/domain"
	"go.uber.org/zap"
)

// Result caps for the local product search passes
const (
	MaxLocalMatches = 10
	MaxFuzzyMatches = 5
)

// minFuzzyQueryLength is the query length a fuzzy pass requires (exclusive)
const minFuzzyQueryLength = 3

// minIngredientNameLength skips ingredient names too short to match meaningfully
const minIngredientNameLength = 3

// FindMatch returns the first catalog product whose normalized name contains the
// normalized ingredient or is contained by it. Empty names never match.
func FindMatch(ingredient string, catalog []domain.Product) (domain.Product, bool) {
	target := Normalize(ingredient)
	if target == "" {
		return domain.Product{}, false
	}
	for _, p := range catalog {
		if overlaps(target, Normalize(p.Name)) {
			return p, true
		}
	}
	return domain.Product{}, false
}

// overlaps is the bidirectional substring test on already-normalized names
func overlaps(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// PluralEquivalent reports whether two names are equal or differ only by a
// trailing plural "s" or "es", in either direction. Comparison is case-insensitive.
func PluralEquivalent(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == "" || b == "" {
		return false
	}
	return a == b || isPluralOf(a, b) || isPluralOf(b, a)
}

func isPluralOf(plural, singular string) bool {
	return plural == singular+"s" || plural == singular+"es"
}

// withinTolerance reports whether name, or one of its words, is within the edit
// distance allowed for query. The allowance is floor(len/4)+1 edits.
func withinTolerance(query, name string) bool {
	tolerance := utf8.RuneCountInString(query)/4 + 1
	if levenshtein.ComputeDistance(query, name) <= tolerance {
		return true
	}
	for _, word := range strings.Fields(name) {
		if levenshtein.ComputeDistance(query, word) <= tolerance {
			return true
		}
	}
	return false
}

// FuzzyMatch returns up to maxResults names containing query (case-insensitive).
// When none do and the query is longer than three characters, names within
// edit-distance tolerance of the query are returned instead.
func FuzzyMatch(query string, names []string, maxResults int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || maxResults <= 0 {
		return nil
	}

	var results []string
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), q) {
			results = append(results, name)
			if len(results) == maxResults {
				return results
			}
		}
	}
	if len(results) > 0 || utf8.RuneCountInString(q) <= minFuzzyQueryLength {
		return results
	}

	for _, name := range names {
		if withinTolerance(q, strings.ToLower(name)) {
			results = append(results, name)
			if len(results) == maxResults {
				break
			}
		}
	}
	return results
}

// CatalogMatcher matches free text against a read-only catalog.
// Normalized product names are computed once at construction.
type CatalogMatcher struct {
	catalog    []domain.Product
	normalized []string
	logger     *zap.Logger
}

// NewCatalogMatcher creates a matcher over catalog. The slice must not be modified afterwards.
func NewCatalogMatcher(catalog []domain.Product, logger *zap.Logger) *CatalogMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	normalized := make([]string, len(catalog))
	for i, p := range catalog {
		normalized[i] = Normalize(p.Name)
	}
	return &CatalogMatcher{
		catalog:    catalog,
		normalized: normalized,
		logger:     logger,
	}
}

// Catalog returns the products the matcher was built with
func (m *CatalogMatcher) Catalog() []domain.Product {
	return m.catalog
}

// FindMatch is FindMatch over the matcher's catalog
func (m *CatalogMatcher) FindMatch(ingredient string) (domain.Product, bool) {
	target := Normalize(ingredient)
	if target == "" {
		return domain.Product{}, false
	}
	for i, name := range m.normalized {
		if overlaps(target, name) {
			m.logger.Debug("[MATCH] ingredient resolved",
				zap.String("ingredient", ingredient),
				zap.String("product", m.catalog[i].Name))
			return m.catalog[i], true
		}
	}
	m.logger.Debug("[MATCH] ingredient unavailable", zap.String("ingredient", ingredient))
	return domain.Product{}, false
}

// MatchIngredients resolves every ingredient line to a MatchResult, preserving order
func (m *CatalogMatcher) MatchIngredients(ingredients []string) []domain.MatchResult {
	results := make([]domain.MatchResult, 0, len(ingredients))
	for _, ing := range ingredients {
		result := domain.MatchResult{IngredientText: ing}
		if p, ok := m.FindMatch(ing); ok {
			product := p
			result.IsAvailable = true
			result.MatchedProduct = &product
		}
		results = append(results, result)
	}
	return results
}

// ProductsForIngredients resolves recipe ingredients to distinct catalog products.
// Names shorter than three characters after normalization are skipped.
func (m *CatalogMatcher) ProductsForIngredients(ingredients []string) []domain.Product {
	seen := make(map[string]bool)
	var products []domain.Product
	for _, ing := range ingredients {
		if utf8.RuneCountInString(Normalize(ing)) < minIngredientNameLength {
			continue
		}
		p, ok := m.FindMatch(ing)
		if !ok || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		products = append(products, p)
	}
	return products
}

// SearchProducts is the local product search: name or category containment
// capped at MaxLocalMatches, else the fuzzy pass capped at MaxFuzzyMatches.
func (m *CatalogMatcher) SearchProducts(query string) []domain.Product {
	if results := m.SubstringSearch(query, MaxLocalMatches); len(results) > 0 {
		return results
	}
	return m.FuzzySearch(query, MaxFuzzyMatches)
}

// SubstringSearch returns products whose name or category contains query
func (m *CatalogMatcher) SubstringSearch(query string, limit int) []domain.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var results []domain.Product
	for _, p := range m.catalog {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(string(p.Category)), q) {
			results = append(results, p)
			if len(results) == limit {
				break
			}
		}
	}
	return results
}

// FuzzySearch returns products whose name is within edit-distance tolerance of query
func (m *CatalogMatcher) FuzzySearch(query string, limit int) []domain.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(q) <= minFuzzyQueryLength {
		return nil
	}
	var results []domain.Product
	for _, p := range m.catalog {
		if withinTolerance(q, strings.ToLower(p.Name)) {
			results = append(results, p)
			if len(results) == limit {
				break
			}
		}
	}
	return results
}
