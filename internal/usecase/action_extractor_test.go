package usecase

import (
	"testing"

	"github.com/nani/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func productIDs(products []domain.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func TestParseCartBlock(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "stops at the next bracketed tag",
			text: "[ITEMS ADDED TO CART]: - Organic Basil\n[RECIPES FOUND]: \n- Tomato Soup",
			want: []string{"Organic Basil"},
		},
		{
			name: "bullets on following lines",
			text: "Sure!\n[ITEMS ADDED TO CART]\n- Spaghetti ($1.99)\n* Eggs - $3.99\n- **Pecorino Romano**\n\nEnjoy!",
			want: []string{"Spaghetti", "Eggs", "Pecorino Romano"},
		},
		{
			name: "tag is case-insensitive and may be bold",
			text: "**[items added to cart]**:\n- Tomato",
			want: []string{"Tomato"},
		},
		{
			name: "non-bullet lines are ignored",
			text: "[ITEMS ADDED TO CART]:\nI added these:\n- Tomato\nTotal: 1 items",
			want: []string{"Tomato"},
		},
		{
			name: "content before a closing tag on the same line counts",
			text: "[ITEMS ADDED TO CART]:\n- Tomato [END SEARCH RESULTS]\n- Eggs",
			want: []string{"Tomato"},
		},
		{
			name: "all trailing parentheticals removed",
			text: "[ITEMS ADDED TO CART]\n- Basil (fresh) ($2.99/bunch)",
			want: []string{"Basil"},
		},
		{
			name: "indented bullets",
			text: "[ITEMS ADDED TO CART]\n   -   Tomato  ",
			want: []string{"Tomato"},
		},
		{
			name: "bold without bullet space",
			text: "[ITEMS ADDED TO CART]\n**Organic Basil** ($2.99)",
			want: []string{"Organic Basil"},
		},
		{
			name: "only the first block is read",
			text: "[ITEMS ADDED TO CART]\n- Tomato\n[ITEMS ADDED TO CART]\n- Eggs",
			want: []string{"Tomato"},
		},
		{name: "no tag", text: "- Tomato\n- Eggs", want: nil},
		{name: "empty block", text: "[ITEMS ADDED TO CART]:\n", want: nil},
		{name: "bullet that cleans to nothing", text: "[ITEMS ADDED TO CART]\n- ($2.00)\n- ****", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCartBlock(tt.text))
		})
	}
}

func TestExtractCartActions(t *testing.T) {
	catalog := testCatalog()

	t.Run("resolves exact and plural names", func(t *testing.T) {
		text := "[ITEMS ADDED TO CART]:\n- Tomatoes\n- Egg\n- organic basil"
		got := ExtractCartActions(text, nil, catalog)
		assert.Equal(t, []string{"p2", "p3", "p1"}, productIDs(got))
	})

	t.Run("prefers searched products over the catalog", func(t *testing.T) {
		searched := []domain.Product{{ID: "s1", Name: "Tomato"}}
		got := ExtractCartActions("[ITEMS ADDED TO CART]\n- Tomato", searched, catalog)
		assert.Equal(t, []string{"s1"}, productIDs(got))
	})

	t.Run("exact match beats an earlier plural match", func(t *testing.T) {
		products := []domain.Product{{ID: "a", Name: "Limes"}, {ID: "b", Name: "Lime"}}
		got := ExtractCartActions("[ITEMS ADDED TO CART]\n- Lime", nil, products)
		assert.Equal(t, []string{"b"}, productIDs(got))
	})

	t.Run("does not use substring containment", func(t *testing.T) {
		got := ExtractCartActions("[ITEMS ADDED TO CART]\n- Basil\n- Saffron", nil, catalog)
		assert.Empty(t, got)
	})

	t.Run("is idempotent", func(t *testing.T) {
		text := "[ITEMS ADDED TO CART]:\n- Tomatoes ($1.49)\n- Spaghetti - $1.99"
		first := ExtractCartActions(text, nil, catalog)
		second := ExtractCartActions(text, nil, catalog)
		assert.Equal(t, first, second)
		assert.Equal(t, []string{"p2", "p4"}, productIDs(first))
	})

	t.Run("malformed reply adds nothing", func(t *testing.T) {
		assert.Empty(t, ExtractCartActions("I could not add anything.", nil, catalog))
	})
}

func TestFallbackCartAdditions(t *testing.T) {
	catalog := testCatalog()
	text := "[ITEMS ADDED TO CART]\n- Tomato"

	t.Run("skipped when the primary path added products", func(t *testing.T) {
		primary := []domain.Product{catalog[0]}
		assert.Nil(t, FallbackCartAdditions(primary, text, nil, catalog))
	})

	t.Run("runs when the primary path added nothing", func(t *testing.T) {
		got := FallbackCartAdditions(nil, text, nil, catalog)
		assert.Equal(t, []string{"p2"}, productIDs(got))
	})
}
