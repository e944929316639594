package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/nani/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type assistantFixture struct {
	svc       *AssistantService
	index     *fakeIndex
	generator *fakeGenerator
	sessions  *SessionService

	mu        sync.Mutex
	outcomes  []string
	additions map[string]int
}

func newAssistantFixture(reply ...string) *assistantFixture {
	f := &assistantFixture{
		index:     newFakeIndex(),
		generator: &fakeGenerator{chunks: reply},
		additions: make(map[string]int),
	}
	matcher := NewCatalogMatcher(testCatalog(), nil)
	catalog := NewCatalogService(matcher)
	cache := newFakeCache()
	recipes := NewRecipeService(f.index, cache, matcher, catalog, RecipeServiceConfig{FallbackRecipes: testFallbackRecipes()}, nil)
	f.sessions = NewSessionService(cache, catalog, SessionServiceConfig{}, nil)
	f.svc = NewAssistantService(f.generator, f.index, matcher, recipes, f.sessions, AssistantServiceConfig{
		OnFallback: func(chain, strategy, outcome string) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.outcomes = append(f.outcomes, fmt.Sprintf("%s/%s/%s", chain, strategy, outcome))
		},
		OnCartAdditions: func(source string, n int) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.additions[source] += n
		},
	}, nil)
	return f
}

func TestAssistantService_PlainMessage(t *testing.T) {
	f := newAssistantFixture("Hi", "! How can I help?")
	history := []domain.ChatMessage{{Role: "user", Content: "earlier"}, {Role: "model", Content: "reply"}}

	var streamed []string
	out, err := f.svc.Chat(context.Background(), "s1", "  hello there ", history, func(c string) error {
		streamed = append(streamed, c)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "Hi! How can I help?", out.Reply)
	assert.Equal(t, []string{"Hi", "! How can I help?"}, streamed)
	assert.Empty(t, out.Added)
	assert.Empty(t, out.Source)
	assert.Equal(t, "hello there", f.generator.last.Message)
	assert.Equal(t, AssistantSystemPrompt, f.generator.last.SystemPrompt)
	assert.Equal(t, history, f.generator.last.History)
	assert.Empty(t, f.index.searched())
}

func TestAssistantService_PrimaryAdditionsFromRecipe(t *testing.T) {
	f := newAssistantFixture("Done! ", "[ITEMS ADDED TO CART]\n- Tomato")
	f.index.on("food", "carbonara", recipeHit("r5", "Carbonara", "spaghetti", "2 eggs", "pecorino romano", "guanciale"))
	ctx := context.Background()

	out, err := f.svc.Chat(ctx, "s1", "add ingredients for carbonara to my cart", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, AdditionSourcePrimary, out.Source)
	assert.Equal(t, []string{"p4", "p3", "p5"}, productIDs(out.Added))

	prompt := f.generator.last.Message
	assert.True(t, strings.HasPrefix(prompt, "[CURRENT USER CART STATUS]: The user's cart is currently EMPTY."))
	assert.Contains(t, prompt, "[PRODUCTS FOUND]:\nNo ingredients found matching your query.")
	assert.Contains(t, prompt, "[RECIPES FOUND]:\n- \"Carbonara\" - Ingredients: spaghetti, 2 eggs, pecorino romano, guanciale")
	assert.Contains(t, prompt, "[ITEMS ADDED TO CART]:\n- Spaghetti ($1.99)\n- Eggs ($3.99)\n- Pecorino Romano ($7.99)\n")
	assert.Contains(t, prompt, "Total: 3 items added from recipe \"Carbonara\"")

	session, err := f.sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, session.Cart.Count())
	assert.False(t, session.Cart.Contains("p2"), "reply block is ignored when the primary path added items")

	assert.Equal(t, map[string]int{AdditionSourcePrimary: 3}, f.additions)
	assert.Equal(t, []string{
		"products/index/empty",
		"products/substring/empty",
		"products/fuzzy/empty",
		"recipes/index/hit",
	}, f.outcomes)
}

func TestAssistantService_FallbackAdditionsFromReply(t *testing.T) {
	f := newAssistantFixture("Sure. **[ITEMS ADDED TO CART]**:\n", "- **Organic Basil** - $3.49\n- Unicorn Meat\n[END]")
	f.index.on("ingredients", "have fresh basil", domain.SearchHit{ObjectID: "idx-9", Name: "Organic Basil", Price: 3.49})
	ctx := context.Background()

	out, err := f.svc.Chat(ctx, "s2", "do you have fresh basil?", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, AdditionSourceFallback, out.Source)
	require.Len(t, out.Added, 1)
	assert.Equal(t, "idx-9", out.Added[0].ID, "searched products take precedence over the catalog")

	assert.Contains(t, f.generator.last.Message, "- Organic Basil (Pantry) - $3.49 [ID: idx-9]")
	assert.NotContains(t, f.generator.last.Message, "[RECIPES FOUND]")

	session, err := f.sessions.Get(ctx, "s2")
	require.NoError(t, err)
	assert.True(t, session.Cart.Contains("idx-9"))
	assert.Equal(t, map[string]int{AdditionSourceFallback: 1}, f.additions)
}

func TestAssistantService_LocalSearchWhenIndexIsDown(t *testing.T) {
	f := newAssistantFixture("We have tomatoes.")
	f.index.down = true

	out, err := f.svc.Chat(context.Background(), "s3", "I need tomato", nil, nil)
	require.NoError(t, err)

	assert.Empty(t, out.Added)
	assert.Contains(t, f.generator.last.Message, "- Tomato (Vegetables) - $1.49 [ID: p2]\n- Cherry Tomato (Vegetables) - $3.49 [ID: p8]")
	assert.Equal(t, []string{"products/index/error", "products/substring/hit"}, f.outcomes)
}

func TestAssistantService_CartStatusWithoutRetrieval(t *testing.T) {
	f := newAssistantFixture("You have tomatoes.")
	ctx := context.Background()
	_, err := f.sessions.AddToCart(ctx, "s4", "p2", 2)
	require.NoError(t, err)

	_, err = f.svc.Chat(ctx, "s4", "what is in my cart", nil, nil)
	require.NoError(t, err)

	assert.Equal(t,
		"[CURRENT USER CART STATUS]: The user currently has 1 items in their cart: Tomato (Qty: 2).\n\nwhat is in my cart",
		f.generator.last.Message)
}

func TestAssistantService_Errors(t *testing.T) {
	t.Run("empty message", func(t *testing.T) {
		f := newAssistantFixture()
		_, err := f.svc.Chat(context.Background(), "s1", "   ", nil, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("missing session id", func(t *testing.T) {
		f := newAssistantFixture()
		_, err := f.svc.Chat(context.Background(), "", "hello there", nil, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("generator failure adds nothing from the reply", func(t *testing.T) {
		f := newAssistantFixture()
		f.generator.err = fmt.Errorf("%w: upstream down", domain.ErrGeneratorFailure)

		_, err := f.svc.Chat(context.Background(), "s1", "hello there", nil, nil)
		assert.ErrorIs(t, err, domain.ErrGeneratorFailure)
		assert.Empty(t, f.additions)
	})

	t.Run("stream callback error is returned", func(t *testing.T) {
		f := newAssistantFixture("a", "b")
		stop := errors.New("client gone")

		out, err := f.svc.Chat(context.Background(), "s1", "hello there", nil, func(string) error { return stop })
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, "a", out.Reply)
	})
}
