package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Compiled regex patterns for query preprocessing
var (
	// Matches descriptive words that narrow a recipe search too much ("fresh", "diced", "powder")
	fillerWordPattern = regexp.MustCompile(`\b(?:other|fresh|organic|raw|whole|sliced|chopped|diced|fillet|breast|thigh|wing|rinse|garnish|dash|splash|pinch|style|flavored|extract|essence|powder|dried|ground)\b`)

	nonLetterPattern = regexp.MustCompile(`[^a-z]`)
)

// ingredientKeywords signal that the shopper is asking about products
var ingredientKeywords = []string{
	"ingredient", "have", "stock", "find", "looking for", "need",
	"buy", "purchase", "get", "available", "search", "add",
}

// recipeKeywords signal that the shopper is asking about dishes
var recipeKeywords = []string{
	"recipe", "cook", "make", "prepare", "dish", "meal", "dinner", "lunch", "breakfast",
	"pasta", "chicken", "beef", "salad",
	"japanese", "chinese", "italian", "mexican", "indian",
}

// addToCartKeywords signal that the shopper wants recipe ingredients added to the cart
var addToCartKeywords = []string{
	"add to cart", "add all", "add ingredients", "buy ingredients", "get ingredients",
	"add items", "add everything", "buy", "purchase",
}

// cuisineExpansions widens a cuisine name into dishes the recipe index knows. Order matters.
var cuisineExpansions = []struct {
	cuisine string
	dishes  string
}{
	{"japanese", "sushi ramen tempura teriyaki udon miso"},
	{"chinese", "stir fry dim sum fried rice noodles dumplings"},
	{"italian", "pasta pizza risotto lasagna carbonara"},
	{"mexican", "tacos burrito enchilada guacamole salsa fajitas"},
	{"indian", "curry tikka masala biryani naan"},
	{"american", "burger steak sandwich bbq wings"},
	{"thai", "pad thai curry soup satay"},
	{"french", "croissant baguette ratatouille steak frites"},
	{"mediterranean", "hummus falafel kebab salad greek"},
}

// foodKeywords are dish and ingredient words worth searching for verbatim
var foodKeywords = []string{
	"pasta", "spaghetti", "carbonara", "chicken", "beef", "salad", "soup", "pizza",
	"burger", "steak", "fish", "salmon", "shrimp", "rice", "noodle", "curry", "taco",
	"sandwich", "cake", "cookie", "bread", "tomato", "vegetable", "fruit",
	"sushi", "ramen", "tempura", "teriyaki",
}

// actionWords never make useful search terms on their own
var actionWords = map[string]bool{
	"add": true, "all": true, "ingredients": true, "make": true, "cart": true,
	"buy": true, "get": true, "find": true, "search": true, "want": true,
	"need": true, "looking": true, "for": true, "the": true, "and": true,
	"with": true, "some": true, "dish": true, "food": true, "cuisine": true,
	"recipe": true,
}

// maxFallbackTerms bounds the words kept when no known food word is present
const maxFallbackTerms = 3

// QueryAnalysis describes which retrievals a chat message needs
type QueryAnalysis struct {
	NeedsIngredientSearch bool
	NeedsRecipeSearch     bool
	WantsAddToCart        bool
	SearchTerms           string
}

// StripFillerWords removes descriptive filler words from a normalized name.
// It is used when building search queries and is never part of Normalize.
func StripFillerWords(name string) string {
	cleaned := fillerWordPattern.ReplaceAllString(strings.ToLower(name), " ")
	cleaned = multipleSpacesRegex.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// ProductSearchQuery builds the recipe search query anchored on a product name.
// The filler-stripped name is used when it keeps more than two characters.
func ProductSearchQuery(productName string) string {
	query := StripFillerWords(Normalize(productName))
	if utf8.RuneCountInString(query) > 2 {
		return query
	}
	return productName
}

// RetryQuery returns the last word of a multi-word query for a second search attempt
func RetryQuery(query string) (string, bool) {
	words := strings.Fields(query)
	if len(words) < 2 {
		return "", false
	}
	last := words[len(words)-1]
	if utf8.RuneCountInString(last) <= 2 {
		return "", false
	}
	return last, true
}

// AnalyzeQuery classifies a chat message and extracts search terms from it.
// A cuisine mention expands into its signature dishes and always triggers a recipe search.
func AnalyzeQuery(text string) QueryAnalysis {
	lower := strings.ToLower(text)
	analysis := QueryAnalysis{
		NeedsIngredientSearch: containsAny(lower, ingredientKeywords),
		NeedsRecipeSearch:     containsAny(lower, recipeKeywords),
		WantsAddToCart:        containsAny(lower, addToCartKeywords),
	}

	for _, c := range cuisineExpansions {
		if strings.Contains(lower, c.cuisine) {
			analysis.NeedsRecipeSearch = true
			analysis.SearchTerms = c.cuisine + " " + c.dishes
			return analysis
		}
	}

	var found []string
	for _, food := range foodKeywords {
		if strings.Contains(lower, food) {
			found = append(found, food)
		}
	}
	if len(found) > 0 {
		analysis.SearchTerms = strings.Join(found, " ")
		return analysis
	}

	var words []string
	for _, word := range strings.Fields(lower) {
		word = nonLetterPattern.ReplaceAllString(word, "")
		if len(word) <= 3 || actionWords[word] {
			continue
		}
		words = append(words, word)
		if len(words) == maxFallbackTerms {
			break
		}
	}
	analysis.SearchTerms = strings.Join(words, " ")
	return analysis
}

// NeedsRetrieval reports whether any catalog or recipe lookup should run
func (a QueryAnalysis) NeedsRetrieval() bool {
	return a.NeedsIngredientSearch || a.NeedsRecipeSearch || a.WantsAddToCart
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
