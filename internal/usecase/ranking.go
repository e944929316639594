package usecase

import (
	"sort"
	"strings"

	"github.com/nani/backend/internal/domain"
)

// MaxCartSuggestions bounds the cart-anchored recipe list
const MaxCartSuggestions = 10

// RankForProduct orders recipes for a product page: recipes whose title mentions
// the product first, then by how many ingredients overlap the product name.
// Ties keep their input order. The input slice is not modified.
func RankForProduct(product domain.Product, recipes []domain.Recipe) []domain.Recipe {
	name := Normalize(product.Name)

	type ranked struct {
		recipe     domain.Recipe
		titleMatch bool
		count      int
	}
	rows := make([]ranked, len(recipes))
	for i, r := range recipes {
		rows[i] = ranked{
			recipe:     r,
			titleMatch: name != "" && strings.Contains(Normalize(r.Title), name),
			count:      countOverlapping(r.Ingredients, []string{name}),
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].titleMatch != rows[j].titleMatch {
			return rows[i].titleMatch
		}
		return rows[i].count > rows[j].count
	})

	out := make([]domain.Recipe, len(rows))
	for i, row := range rows {
		out[i] = row.recipe
	}
	return out
}

// RankForCart scores recipes by how many of their ingredients overlap any cart
// item, drops recipes with no overlap and returns at most MaxCartSuggestions.
func RankForCart(items []domain.CartItem, recipes []domain.Recipe) []domain.ScoredRecipe {
	names := make([]string, 0, len(items))
	for _, item := range items {
		if n := Normalize(item.Name); n != "" {
			names = append(names, n)
		}
	}

	var scored []domain.ScoredRecipe
	for _, r := range recipes {
		if count := countOverlapping(r.Ingredients, names); count > 0 {
			scored = append(scored, domain.ScoredRecipe{Recipe: r, MatchCount: count})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchCount > scored[j].MatchCount
	})

	if len(scored) > MaxCartSuggestions {
		scored = scored[:MaxCartSuggestions]
	}
	return scored
}

// countOverlapping counts ingredients whose normalized form overlaps at least one of names
func countOverlapping(ingredients, names []string) int {
	count := 0
	for _, ing := range ingredients {
		n := Normalize(ing)
		for _, name := range names {
			if overlaps(n, name) {
				count++
				break
			}
		}
	}
	return count
}

// DedupeRecipes merges recipe batches keeping the first occurrence of each ObjectID
func DedupeRecipes(batches ...[]domain.Recipe) []domain.Recipe {
	seen := make(map[string]bool)
	var merged []domain.Recipe
	for _, batch := range batches {
		for _, r := range batch {
			if seen[r.ObjectID] {
				continue
			}
			seen[r.ObjectID] = true
			merged = append(merged, r)
		}
	}
	return merged
}
