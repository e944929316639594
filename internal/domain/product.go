package domain

import "time"

// Category is the storefront aisle a product is shelved under
type Category string

const (
	CategoryVegetables Category = "Vegetables"
	CategoryFruits     Category = "Fruits"
	CategoryPantry     Category = "Pantry"
	CategoryDairy      Category = "Dairy"
	CategorySnacks     Category = "Snacks"
	CategoryOther      Category = "Other"
)

// DietaryTag labels a product with a dietary property
type DietaryTag string

const (
	DietaryOrganic    DietaryTag = "Organic"
	DietaryVegan      DietaryTag = "Vegan"
	DietaryGlutenFree DietaryTag = "Gluten-Free"
	DietaryKeto       DietaryTag = "Keto"
	DietaryNonGMO     DietaryTag = "Non-GMO"
)

// Product represents a single catalog entry. Identity is the ID.
type Product struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Price       float64      `json:"price"`
	Category    Category     `json:"category"`
	Dietary     []DietaryTag `json:"dietary"`
	Image       string       `json:"image"`
	Description string       `json:"description"`
	Rating      float64      `json:"rating"`
	Reviews     int          `json:"reviews"`
	IsNew       bool         `json:"isNew"`
	Popularity  int          `json:"popularity"`
	DateAdded   time.Time    `json:"dateAdded"`
}

// HasDietary reports whether the product carries the given tag
func (p Product) HasDietary(tag DietaryTag) bool {
	for _, d := range p.Dietary {
		if d == tag {
			return true
		}
	}
	return false
}

// SearchHit is a raw record returned by the text-search service.
// Product indexes fill Name/Category/Price, recipe indexes fill Title/Ingredients.
type SearchHit struct {
	ObjectID        string   `json:"objectID"`
	Title           string   `json:"title,omitempty"`
	Name            string   `json:"name,omitempty"`
	Category        string   `json:"category,omitempty"`
	Price           float64  `json:"price,omitempty"`
	Ingredients     []string `json:"ingredients,omitempty"`
	IngredientsText string   `json:"ingredients_text,omitempty"`
	Instructions    string   `json:"instructions,omitempty"`
	Image           string   `json:"image,omitempty"`
	Description     string   `json:"description,omitempty"`
	CookTime        string   `json:"cook_time,omitempty"`
}
