package catalog

import "github.com/nani/backend/internal/domain"

// FallbackRecipes returns the static recipes served when the recipe index has nothing
func FallbackRecipes() []domain.Recipe {
	return []domain.Recipe{
		{
			ObjectID:     "fallback-1",
			Title:        "Spaghetti Carbonara",
			Ingredients:  []string{"Spaghetti", "Eggs", "Pecorino Romano", "Guanciale", "Black Pepper"},
			Instructions: "Cook pasta. Mix eggs and cheese. Fry guanciale. Combine.",
			CookTime:     "20 mins",
			Image:        "https://images.unsplash.com/photo-1612874742237-6526221588e3?auto=format&fit=crop&q=80&w=800",
		},
		{
			ObjectID:     "fallback-2",
			Title:        "Simple Chicken Salad",
			Ingredients:  []string{"Chicken Breast", "Lettuce", "Tomato", "Cucumber", "Olive Oil", "Lemon"},
			Instructions: "Grill chicken. Chop vegetables. Toss with dressing.",
			CookTime:     "15 mins",
			Image:        "https://images.unsplash.com/photo-1546069901-ba9599a7e63c?auto=format&fit=crop&q=80&w=800",
		},
		{
			ObjectID:     "fallback-3",
			Title:        "Classic Pancakes",
			Ingredients:  []string{"Flour", "Milk", "Egg", "Sugar", "Butter", "Baking Powder"},
			Instructions: "Mix dry ingredients. Add wet ingredients. Cook on griddle.",
			CookTime:     "20 mins",
			Image:        "https://images.unsplash.com/photo-1567620905732-2d1ec7ab7445?auto=format&fit=crop&q=80&w=800",
		},
		{
			ObjectID:     "fallback-4",
			Title:        "Vegetable Stir Fry",
			Ingredients:  []string{"Broccoli", "Carrot", "Bell Pepper", "Soy Sauce", "Ginger", "Garlic"},
			Instructions: "Stir fry vegetables in hot wok with sauce.",
			CookTime:     "15 mins",
			Image:        "https://images.unsplash.com/photo-1512621776951-a57141f2eefd?auto=format&fit=crop&q=80&w=800",
		},
		{
			ObjectID:     "fallback-5",
			Title:        "Beef Tacos",
			Ingredients:  []string{"Ground Beef", "Taco Shells", "Lettuce", "Cheese", "Salsa", "Onion"},
			Instructions: "Cook beef with spices. Fill tacos.",
			CookTime:     "25 mins",
			Image:        "https://images.unsplash.com/photo-1551504734-5ee1c4a1479b?auto=format&fit=crop&q=80&w=800",
		},
	}
}
