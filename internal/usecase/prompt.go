package usecase

import (
	"fmt"
	"strings"

	"github.com/nani/backend/internal/domain"
)

// Bracketed tags that structure the retrieval context sent with a chat turn
const (
	tagSearchResults = "[SEARCH RESULTS]"
	tagProductsFound = "[PRODUCTS FOUND]"
	tagRecipesFound  = "[RECIPES FOUND]"
	tagEndResults    = "[END SEARCH RESULTS]"
	tagCartStatus    = "[CURRENT USER CART STATUS]"

	noProductsText = "No ingredients found matching your query."
	noRecipesText  = "No recipes found matching your query."

	recipePreviewIngredients = 5
)

// AssistantSystemPrompt tells the model who it is and how the bracketed blocks work
const AssistantSystemPrompt = `You are Nani Assist, the culinary concierge of Nani, a premium grocery store. You can see the live catalog, search the recipe database and change the shopper's cart.

Every turn may carry retrieved context in bracketed blocks:

- [PRODUCTS FOUND]: products the store sells right now, with category, price and id. Recommend them by their exact names and prices.
- [RECIPES FOUND]: real recipes from the database. Pick the best fit and mention its title and key ingredients.
- [ITEMS ADDED TO CART]: a cart update that has already happened. Confirm it and list the items.
- [CURRENT USER CART STATUS]: what the shopper has in the cart.

Rules:
- Never claim the store sells something that is not in [PRODUCTS FOUND]. Offer to look for a substitute instead.
- Be concise and propose a next step, for example "Shall I add these ingredients to your cart?"
- Use bold for product names and italics for recipe titles.

Cart protocol:
When the shopper asks you to add or buy items, you MUST output a "[ITEMS ADDED TO CART]" block listing one product per line as "- <exact product name>", using the names exactly as they appeared in [PRODUCTS FOUND]. The cart is only updated from that block.`

// PromptContext is everything retrieved for one chat turn
type PromptContext struct {
	Message        string
	Analysis       QueryAnalysis
	Cart           *domain.Cart
	Products       []domain.Product
	Recipes        []domain.Recipe
	Added          []domain.Product
	AddedFromTitle string
}

// mentionsCart reports whether the message talks about the cart
func mentionsCart(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "cart") || strings.Contains(lower, "bag")
}

// CartStatus renders the cart summary line
func CartStatus(cart domain.Cart) string {
	if len(cart.Items) == 0 {
		return tagCartStatus + ": The user's cart is currently EMPTY."
	}
	parts := make([]string, len(cart.Items))
	for i, item := range cart.Items {
		parts[i] = fmt.Sprintf("%s (Qty: %d)", item.Name, item.Quantity)
	}
	return fmt.Sprintf("%s: The user currently has %d items in their cart: %s.",
		tagCartStatus, len(cart.Items), strings.Join(parts, ", "))
}

// FormatProducts renders one line per product: "- name (category) - $price [ID: id]"
func FormatProducts(products []domain.Product) string {
	if len(products) == 0 {
		return noProductsText
	}
	lines := make([]string, len(products))
	for i, p := range products {
		lines[i] = fmt.Sprintf("- %s (%s) - $%.2f [ID: %s]", p.Name, p.Category, p.Price, p.ID)
	}
	return strings.Join(lines, "\n")
}

// FormatRecipes renders one line per recipe with its first five ingredients
func FormatRecipes(recipes []domain.Recipe) string {
	if len(recipes) == 0 {
		return noRecipesText
	}
	lines := make([]string, len(recipes))
	for i, r := range recipes {
		ingredients := r.Ingredients
		more := ""
		if len(ingredients) > recipePreviewIngredients {
			ingredients = ingredients[:recipePreviewIngredients]
			more = "..."
		}
		lines[i] = fmt.Sprintf("- \"%s\" - Ingredients: %s%s", r.Title, strings.Join(ingredients, ", "), more)
	}
	return strings.Join(lines, "\n")
}

// FormatAddedItems renders the cart block announcing items already added
func FormatAddedItems(products []domain.Product, recipeTitle string) string {
	var b strings.Builder
	b.WriteString(CartBlockTag)
	b.WriteString(":\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s ($%.2f)\n", p.Name, p.Price)
	}
	fmt.Fprintf(&b, "Total: %d items added from recipe \"%s\"\n", len(products), recipeTitle)
	return b.String()
}

// BuildPrompt assembles the user turn sent to the model.
// Without retrieval the message is sent as is, prefixed by the cart status when the cart is mentioned.
func BuildPrompt(pc PromptContext) string {
	var b strings.Builder
	if pc.Cart != nil && mentionsCart(pc.Message) {
		b.WriteString(CartStatus(*pc.Cart))
		b.WriteString("\n\n")
	}
	if !pc.Analysis.NeedsRetrieval() {
		b.WriteString(pc.Message)
		return b.String()
	}

	b.WriteString(tagSearchResults)
	b.WriteString(":\n")
	if pc.Analysis.NeedsIngredientSearch {
		fmt.Fprintf(&b, "\n%s:\n%s\n", tagProductsFound, FormatProducts(pc.Products))
	}
	if pc.Analysis.NeedsRecipeSearch || pc.Analysis.WantsAddToCart {
		fmt.Fprintf(&b, "\n%s:\n%s\n", tagRecipesFound, FormatRecipes(pc.Recipes))
		if len(pc.Added) > 0 {
			b.WriteString("\n")
			b.WriteString(FormatAddedItems(pc.Added, pc.AddedFromTitle))
		}
	}
	b.WriteString("\n")
	b.WriteString(tagEndResults)
	b.WriteString("\n\nTell the user you searched the store catalog, then use the data above to answer.\n\nUser Question: ")
	b.WriteString(pc.Message)
	return b.String()
}
