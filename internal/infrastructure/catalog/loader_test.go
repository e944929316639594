package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nani/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapCategory(t *testing.T) {
	tests := []struct {
		name     string
		category string
		want     domain.Category
	}{
		{"Strawberry", "Produce", domain.CategoryFruits},
		// the plural spells "berri", so only the produce rule applies
		{"Blueberries", "Produce", domain.CategoryVegetables},
		{"Kale", "Produce", domain.CategoryVegetables},
		{"Cheddar", "Cheese", domain.CategoryDairy},
		{"Gummy Bears", "Candy", domain.CategorySnacks},
		{"Paprika", "Spices", domain.CategoryPantry},
		{"Taco Shells", "Pantry", domain.CategoryPantry},
		{"Dish Soap", "Household", domain.CategoryOther},
		// fruit keywords are checked before vegetables
		{"Apple", "Produce", domain.CategoryFruits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapCategory(tt.name, tt.category))
		})
	}
}

func TestSeededValues(t *testing.T) {
	assert.Equal(t, int64(2987023), hashString("abc1"))

	p := toProduct(RawIngredient{ObjectID: "abc", Name: "Thing", Category: "Spices"})
	assert.InDelta(t, 11.99, p.Price, 0.0001)
	assert.InDelta(t, 4.7024, p.Rating, 0.0001)
	assert.Equal(t, 140, p.Reviews)
	assert.False(t, p.IsNew)
	assert.Equal(t, 70, p.Popularity)

	p = toProduct(RawIngredient{ObjectID: "ing-0003", Name: "Tomato", Category: "Produce"})
	assert.InDelta(t, 9.99, p.Price, 0.0001)
	assert.Equal(t, 107, p.Reviews)
	assert.Equal(t, 53, p.Popularity)
}

func TestToProduct(t *testing.T) {
	p := toProduct(RawIngredient{ObjectID: "x1", Name: "Taco Shells"})

	assert.Equal(t, "x1", p.ID)
	assert.Equal(t, domain.CategoryPantry, p.Category)
	assert.Equal(t, []domain.DietaryTag{domain.DietaryOrganic}, p.Dietary)
	assert.Equal(t, "Taco Shells - Fresh and high quality ingredient sourced for your kitchen.", p.Description)
	assert.Equal(t, "https://tse2.mm.bing.net/th?q=Taco%20Shells%20food&w=800&h=800&c=7&rs=1&p=0", p.Image)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), p.DateAdded)
	assert.GreaterOrEqual(t, p.Rating, 4.0)
	assert.Less(t, p.Rating, 5.0)
}

func TestBuildProducts(t *testing.T) {
	raw := []RawIngredient{
		{ObjectID: "1", Name: "Saffron"},
		{ObjectID: "2", Name: "Tomato Paste"},
		{ObjectID: "3", Name: "Cumin"},
		{ObjectID: "4", Name: "Tomato"},
		{ObjectID: "5", Name: "Milk"},
	}

	t.Run("popular items first, shorter names first among them", func(t *testing.T) {
		got := BuildProducts(raw, 0)
		ids := make([]string, len(got))
		for i, p := range got {
			ids[i] = p.ID
		}
		assert.Equal(t, []string{"5", "4", "2", "1", "3"}, ids)
	})

	t.Run("truncates to limit", func(t *testing.T) {
		assert.Len(t, BuildProducts(raw, 2), 2)
	})

	t.Run("does not reorder the input", func(t *testing.T) {
		BuildProducts(raw, 0)
		assert.Equal(t, "1", raw[0].ObjectID)
	})
}

func TestLoad(t *testing.T) {
	t.Run("decodes a list", func(t *testing.T) {
		got, err := Load(strings.NewReader(`[{"objectID":"a","name":"Lemon","category":"Fruit"}]`), 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, domain.CategoryFruits, got[0].Category)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := Load(strings.NewReader(`{"not": "a list"`), 10)
		assert.Error(t, err)
	})

	t.Run("reads a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ingredients.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"objectID":"a","name":"Lemon"}]`), 0o600))

		got, err := LoadFile(path, 10)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"), 10)
		assert.Error(t, err)
	})
}

func TestFallbackRecipes(t *testing.T) {
	recipes := FallbackRecipes()
	require.Len(t, recipes, 5)
	assert.Equal(t, "Spaghetti Carbonara", recipes[0].Title)

	recipes[0].Title = "changed"
	assert.Equal(t, "Spaghetti Carbonara", FallbackRecipes()[0].Title)
}
