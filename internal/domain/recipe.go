package domain

// Recipe is a record from the recipe search index or the static fallback list
type Recipe struct {
	ObjectID        string   `json:"objectID"`
	Title           string   `json:"title"`
	Ingredients     []string `json:"ingredients"`
	IngredientsText string   `json:"ingredientsText,omitempty"`
	Instructions    string   `json:"instructions,omitempty"`
	Image           string   `json:"image,omitempty"`
	CookTime        string   `json:"cookTime,omitempty"`
}

// MatchResult is the outcome of matching one ingredient line against the catalog.
// MatchedProduct is nil when IsAvailable is false.
type MatchResult struct {
	IngredientText string   `json:"ingredientText"`
	IsAvailable    bool     `json:"isAvailable"`
	MatchedProduct *Product `json:"matchedProduct,omitempty"`
}

// ScoredRecipe is a recipe annotated with how many of its ingredients overlap the cart
type ScoredRecipe struct {
	Recipe
	MatchCount int `json:"matchCount"`
}

// IngredientStatus describes one ingredient of a recipe for display
type IngredientStatus struct {
	MatchResult
	InCart bool `json:"inCart"`
}
