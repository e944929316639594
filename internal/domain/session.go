package domain

import "time"

// Session is the per-shopper state: cart, wishlist and saved recipes
type Session struct {
	ID           string    `json:"id"`
	Cart         Cart      `json:"cart"`
	Wishlist     []string  `json:"wishlist"`
	SavedRecipes []Recipe  `json:"savedRecipes"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewSession creates an empty session
func NewSession(id string) *Session {
	return &Session{ID: id, Wishlist: []string{}, SavedRecipes: []Recipe{}}
}

// ToggleWishlist adds or removes productID. Returns true when the product is now listed.
func (s *Session) ToggleWishlist(productID string) bool {
	for i, id := range s.Wishlist {
		if id == productID {
			s.Wishlist = append(s.Wishlist[:i], s.Wishlist[i+1:]...)
			return false
		}
	}
	s.Wishlist = append(s.Wishlist, productID)
	return true
}

// ToggleSavedRecipe adds or removes a recipe. Returns true when the recipe is now saved.
func (s *Session) ToggleSavedRecipe(recipe Recipe) bool {
	for i, r := range s.SavedRecipes {
		if r.ObjectID == recipe.ObjectID {
			s.SavedRecipes = append(s.SavedRecipes[:i], s.SavedRecipes[i+1:]...)
			return false
		}
	}
	s.SavedRecipes = append(s.SavedRecipes, recipe)
	return true
}

// SavedRecipe returns the saved recipe with the given id
func (s *Session) SavedRecipe(id string) (Recipe, bool) {
	for _, r := range s.SavedRecipes {
		if r.ObjectID == id {
			return r, true
		}
	}
	return Recipe{}, false
}
