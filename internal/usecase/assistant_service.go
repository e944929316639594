package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/nani/backend/internal/domain"
	"go.uber.org/zap"
)

// Where the products added during a chat turn came from
const (
	AdditionSourcePrimary  = "primary"
	AdditionSourceFallback = "fallback"
)

// Result caps for the assistant's retrieval chains
const (
	assistantProductHits  = 10
	assistantRecipeHits   = 5
	assistantFallbackHits = 3
)

// AssistantServiceConfig holds configuration for the assistant service
type AssistantServiceConfig struct {
	ProductIndex string
	// OnFallback observes every strategy attempt of the retrieval chains
	OnFallback OutcomeRecorder
	// OnCartAdditions observes products added to the cart, by source
	OnCartAdditions func(source string, n int)
}

// ChatOutcome is the result of one assistant turn
type ChatOutcome struct {
	Reply  string           `json:"reply"`
	Added  []domain.Product `json:"added"`
	Source string           `json:"source,omitempty"`
}

// AssistantService runs a chat turn: retrieval, generation and cart updates
type AssistantService struct {
	generator    domain.TextGenerator
	matcher      *CatalogMatcher
	sessions     *SessionService
	productChain *FallbackChain[domain.Product]
	recipeChain  *FallbackChain[domain.Recipe]
	onAdditions  func(source string, n int)
	logger       *zap.Logger
}

// NewAssistantService creates a new assistant service with dependencies
func NewAssistantService(
	generator domain.TextGenerator,
	index domain.SearchIndex,
	matcher *CatalogMatcher,
	recipes *RecipeService,
	sessions *SessionService,
	config AssistantServiceConfig,
	logger *zap.Logger,
) *AssistantService {
	if config.ProductIndex == "" {
		config.ProductIndex = "ingredients"
	}
	if config.OnCartAdditions == nil {
		config.OnCartAdditions = func(string, int) {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	productChain := NewFallbackChain[domain.Product]("products", logger, config.OnFallback,
		StrategyFunc[domain.Product]{Label: "index", Fn: func(ctx context.Context, q string) ([]domain.Product, error) {
			hits, err := index.Search(ctx, config.ProductIndex, q, assistantProductHits)
			if err != nil {
				return nil, err
			}
			return HitsToProducts(hits), nil
		}},
		StrategyFunc[domain.Product]{Label: "substring", Fn: func(_ context.Context, q string) ([]domain.Product, error) {
			return matcher.SubstringSearch(q, MaxLocalMatches), nil
		}},
		StrategyFunc[domain.Product]{Label: "fuzzy", Fn: func(_ context.Context, q string) ([]domain.Product, error) {
			return matcher.FuzzySearch(q, MaxFuzzyMatches), nil
		}},
	)

	recipeChain := NewFallbackChain[domain.Recipe]("recipes", logger, config.OnFallback,
		StrategyFunc[domain.Recipe]{Label: "index", Fn: func(ctx context.Context, q string) ([]domain.Recipe, error) {
			return recipes.SearchIndex(ctx, q, assistantRecipeHits)
		}},
		StrategyFunc[domain.Recipe]{Label: "fallback", Fn: func(_ context.Context, q string) ([]domain.Recipe, error) {
			return recipes.SearchFallback(q, assistantFallbackHits), nil
		}},
	)

	return &AssistantService{
		generator:    generator,
		matcher:      matcher,
		sessions:     sessions,
		productChain: productChain,
		recipeChain:  recipeChain,
		onAdditions:  config.OnCartAdditions,
		logger:       logger,
	}
}

// Chat answers one shopper message. Retrieved context is folded into the prompt,
// the reply is streamed through onChunk and cart additions are applied to the session.
//
// Additions come from one of two paths. The primary path adds the catalog matches
// of the first recipe found when the shopper asked to add ingredients; the model is
// told about them before it replies. Only when that path added nothing is the reply's
// own cart block parsed.
func (s *AssistantService) Chat(
	ctx context.Context,
	sessionID string,
	message string,
	history []domain.ChatMessage,
	onChunk func(string) error,
) (*ChatOutcome, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidRequest)
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	analysis := AnalyzeQuery(message)
	query := analysis.SearchTerms
	if query == "" {
		query = message
	}
	pc := PromptContext{Message: message, Analysis: analysis, Cart: &session.Cart}

	if analysis.NeedsIngredientSearch {
		pc.Products, _ = s.productChain.Run(ctx, query)
	}
	if analysis.NeedsRecipeSearch || analysis.WantsAddToCart {
		pc.Recipes, _ = s.recipeChain.Run(ctx, query)
	}

	outcome := &ChatOutcome{Added: []domain.Product{}}
	if analysis.WantsAddToCart && len(pc.Recipes) > 0 {
		first := pc.Recipes[0]
		if primary := s.matcher.ProductsForIngredients(first.Ingredients); len(primary) > 0 {
			if _, err := s.sessions.AddProducts(ctx, sessionID, primary); err != nil {
				return nil, err
			}
			s.logger.Info("[ASSISTANT] added recipe ingredients",
				zap.String("session", sessionID),
				zap.String("recipe", first.Title),
				zap.Int("items", len(primary)))
			s.onAdditions(AdditionSourcePrimary, len(primary))
			pc.Added = primary
			pc.AddedFromTitle = first.Title
			outcome.Added = primary
			outcome.Source = AdditionSourcePrimary
		}
	}

	reply, err := s.generator.StreamChat(ctx, domain.ChatRequest{
		SystemPrompt: AssistantSystemPrompt,
		History:      history,
		Message:      BuildPrompt(pc),
	}, onChunk)
	outcome.Reply = reply
	if err != nil {
		return outcome, err
	}

	if extra := FallbackCartAdditions(pc.Added, reply, pc.Products, s.matcher.Catalog()); len(extra) > 0 {
		if _, err := s.sessions.AddProducts(ctx, sessionID, extra); err != nil {
			return outcome, err
		}
		s.logger.Info("[ASSISTANT] added items from reply",
			zap.String("session", sessionID),
			zap.Int("items", len(extra)))
		s.onAdditions(AdditionSourceFallback, len(extra))
		outcome.Added = extra
		outcome.Source = AdditionSourceFallback
	}
	return outcome, nil
}
