package usecase

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nani/backend/internal/domain"
)

// Defaults applied to product hits that lack storefront fields
const (
	defaultHitPrice      = 4.99
	defaultHitRating     = 4.5
	defaultHitReviews    = 100
	defaultHitPopularity = 80
)

// HitToProduct converts a product index hit into a Product
func HitToProduct(hit domain.SearchHit) domain.Product {
	name := hit.Name
	if name == "" {
		name = hit.Title
	}
	price := hit.Price
	if price <= 0 {
		price = defaultHitPrice
	}
	category := domain.Category(hit.Category)
	if category == "" {
		category = domain.CategoryPantry
	}
	image := hit.Image
	if image == "" {
		image = "https://tse2.mm.bing.net/th?q=" + url.PathEscape(name+" food") + "&w=800&h=800&c=7&rs=1&p=0"
	}
	description := hit.Description
	if description == "" {
		description = fmt.Sprintf("Premium %s sourced for you.", name)
	}

	return domain.Product{
		ID:          hit.ObjectID,
		Name:        name,
		Price:       price,
		Category:    category,
		Dietary:     []domain.DietaryTag{},
		Image:       image,
		Description: description,
		Rating:      defaultHitRating,
		Reviews:     defaultHitReviews,
		Popularity:  defaultHitPopularity,
	}
}

// HitToRecipe converts a recipe index hit into a Recipe
func HitToRecipe(hit domain.SearchHit) domain.Recipe {
	title := hit.Title
	if title == "" {
		title = hit.Name
	}
	ingredients := hit.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	return domain.Recipe{
		ObjectID:        hit.ObjectID,
		Title:           title,
		Ingredients:     ingredients,
		IngredientsText: hit.IngredientsText,
		Instructions:    hit.Instructions,
		Image:           hit.Image,
		CookTime:        hit.CookTime,
	}
}

// HitsToProducts converts hits, skipping records without an id or a name
func HitsToProducts(hits []domain.SearchHit) []domain.Product {
	products := make([]domain.Product, 0, len(hits))
	for _, hit := range hits {
		if hit.ObjectID == "" || strings.TrimSpace(hit.Name+hit.Title) == "" {
			continue
		}
		products = append(products, HitToProduct(hit))
	}
	return products
}

// HitsToRecipes converts hits, skipping records without an id
func HitsToRecipes(hits []domain.SearchHit) []domain.Recipe {
	recipes := make([]domain.Recipe, 0, len(hits))
	for _, hit := range hits {
		if hit.ObjectID == "" {
			continue
		}
		recipes = append(recipes, HitToRecipe(hit))
	}
	return recipes
}
