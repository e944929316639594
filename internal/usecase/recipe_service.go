package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nani/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Search sizes for recipe lookups
const (
	productRecipeHits = 50
	cartRecipeHits    = 15
	cartSearchItems   = 3
)

// RecipeServiceConfig holds configuration for the recipe service
type RecipeServiceConfig struct {
	RecipeIndex     string
	CacheTTL        time.Duration
	FallbackRecipes []domain.Recipe
	// OnCacheLookup observes every cache read; hit is false on a miss
	OnCacheLookup func(hit bool)
}

// RecipeService finds, ranks and resolves recipes for products and carts
type RecipeService struct {
	index   domain.SearchIndex
	cache   domain.CacheRepository
	matcher *CatalogMatcher
	catalog *CatalogService
	config  RecipeServiceConfig
	logger  *zap.Logger
}

// NewRecipeService creates a new recipe service with dependencies
func NewRecipeService(
	index domain.SearchIndex,
	cache domain.CacheRepository,
	matcher *CatalogMatcher,
	catalog *CatalogService,
	config RecipeServiceConfig,
	logger *zap.Logger,
) *RecipeService {
	if config.RecipeIndex == "" {
		config.RecipeIndex = "food"
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = 24 * time.Hour
	}
	if config.OnCacheLookup == nil {
		config.OnCacheLookup = func(bool) {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecipeService{
		index:   index,
		cache:   cache,
		matcher: matcher,
		catalog: catalog,
		config:  config,
		logger:  logger,
	}
}

// ForProduct returns recipes related to a catalog product, best matches first.
// Flow: check cache -> search index -> retry with last word -> rank -> cache -> return
func (s *RecipeService) ForProduct(ctx context.Context, productID string) ([]domain.Recipe, error) {
	product, err := s.catalog.Get(productID)
	if err != nil {
		return nil, err
	}

	cacheKey := "recipes:product:" + productID
	if cached, ok := s.getFromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	query := ProductSearchQuery(product.Name)
	recipes, err := s.search(ctx, query, productRecipeHits)
	if err != nil {
		s.logger.Warn("[RECIPES] product search failed", zap.String("product", productID), zap.Error(err))
		return []domain.Recipe{}, nil
	}
	if len(recipes) == 0 {
		if retry, ok := RetryQuery(query); ok {
			s.logger.Debug("[RECIPES] retrying with last word", zap.String("query", query), zap.String("retry", retry))
			recipes, err = s.search(ctx, retry, productRecipeHits)
			if err != nil {
				s.logger.Warn("[RECIPES] retry search failed", zap.String("product", productID), zap.Error(err))
				return []domain.Recipe{}, nil
			}
		}
	}

	ranked := RankForProduct(product, recipes)
	if len(ranked) > 0 {
		s.setInCache(ctx, cacheKey, ranked)
	}
	return ranked, nil
}

// ForCart suggests recipes for the cart. The first three item names are searched
// concurrently; a failed search only loses its own hits. When no hit shares an
// ingredient with the cart the static fallback recipes are ranked instead.
func (s *RecipeService) ForCart(ctx context.Context, items []domain.CartItem) []domain.ScoredRecipe {
	if len(items) == 0 {
		return []domain.ScoredRecipe{}
	}

	n := len(items)
	if n > cartSearchItems {
		n = cartSearchItems
	}
	batches := make([][]domain.Recipe, n)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		name := items[i].Name
		g.Go(func() error {
			recipes, err := s.search(ctx, name, cartRecipeHits)
			if err != nil {
				s.logger.Warn("[RECIPES] cart search failed", zap.String("item", name), zap.Error(err))
				return nil
			}
			batches[i] = recipes
			return nil
		})
	}
	_ = g.Wait()

	ranked := RankForCart(items, DedupeRecipes(batches...))
	if len(ranked) == 0 {
		s.logger.Debug("[RECIPES] no ranked cart hits, using fallback recipes")
		ranked = RankForCart(items, s.config.FallbackRecipes)
	}
	if ranked == nil {
		return []domain.ScoredRecipe{}
	}
	return ranked
}

// Recipe resolves a recipe id from the index, then the session's saved recipes,
// then the fallback list. A nil session skips the saved-recipe step.
func (s *RecipeService) Recipe(ctx context.Context, id string, session *domain.Session) (domain.Recipe, error) {
	hit, err := s.index.Lookup(ctx, s.config.RecipeIndex, id)
	if err != nil {
		s.logger.Warn("[RECIPES] lookup failed", zap.String("recipe", id), zap.Error(err))
	} else if hit != nil {
		return HitToRecipe(*hit), nil
	}

	if session != nil {
		if r, ok := session.SavedRecipe(id); ok {
			return r, nil
		}
	}
	for _, r := range s.config.FallbackRecipes {
		if r.ObjectID == id {
			return r, nil
		}
	}
	return domain.Recipe{}, fmt.Errorf("%w: %s", domain.ErrRecipeNotFound, id)
}

// IngredientAvailability reports, for each recipe ingredient, the catalog match
// and whether the matched product is already in the cart
func (s *RecipeService) IngredientAvailability(recipe domain.Recipe, cart domain.Cart) []domain.IngredientStatus {
	statuses := make([]domain.IngredientStatus, 0, len(recipe.Ingredients))
	for _, result := range s.matcher.MatchIngredients(recipe.Ingredients) {
		result.IngredientText = strings.TrimPrefix(strings.TrimSpace(result.IngredientText), "/")
		status := domain.IngredientStatus{MatchResult: result}
		if result.MatchedProduct != nil {
			status.InCart = cart.Contains(result.MatchedProduct.ID)
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// SearchFallback filters the static recipes by title or ingredient substring
func (s *RecipeService) SearchFallback(query string, limit int) []domain.Recipe {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []domain.Recipe
	for _, r := range s.config.FallbackRecipes {
		if recipeMentions(r, q) {
			out = append(out, r)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// SearchIndex queries the recipe index and converts the hits
func (s *RecipeService) SearchIndex(ctx context.Context, query string, limit int) ([]domain.Recipe, error) {
	return s.search(ctx, query, limit)
}

func recipeMentions(r domain.Recipe, q string) bool {
	if strings.Contains(strings.ToLower(r.Title), q) {
		return true
	}
	for _, ing := range r.Ingredients {
		if strings.Contains(strings.ToLower(ing), q) {
			return true
		}
	}
	return false
}

func (s *RecipeService) search(ctx context.Context, query string, limit int) ([]domain.Recipe, error) {
	hits, err := s.index.Search(ctx, s.config.RecipeIndex, query, limit)
	if err != nil {
		return nil, err
	}
	return HitsToRecipes(hits), nil
}

func (s *RecipeService) getFromCache(ctx context.Context, key string) ([]domain.Recipe, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.config.OnCacheLookup(false)
		return nil, false
	}
	var recipes []domain.Recipe
	if err := json.Unmarshal(raw, &recipes); err != nil {
		s.config.OnCacheLookup(false)
		return nil, false
	}
	s.config.OnCacheLookup(true)
	return recipes, true
}

// setInCache stores recipes; failures are logged and otherwise ignored
func (s *RecipeService) setInCache(ctx context.Context, key string, recipes []domain.Recipe) {
	raw, err := json.Marshal(recipes)
	if err == nil {
		err = s.cache.Set(ctx, key, raw, s.config.CacheTTL)
	}
	if err != nil {
		s.logger.Warn("[RECIPES] cache write failed", zap.String("key", key), zap.Error(err))
	}
}
