package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nani/backend/internal/domain"
	"github.com/nani/backend/internal/usecase"
	"go.uber.org/zap"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog   *usecase.CatalogService
	recipes   *usecase.RecipeService
	sessions  *usecase.SessionService
	assistant *usecase.AssistantService
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog *usecase.CatalogService,
	recipes *usecase.RecipeService,
	sessions *usecase.SessionService,
	assistant *usecase.AssistantService,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		catalog:   catalog,
		recipes:   recipes,
		sessions:  sessions,
		assistant: assistant,
		logger:    logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "nani-backend",
		"version": "1.0.0",
	})
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrRecipeNotFound), errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, domain.ErrSearchUnavailable), errors.Is(err, domain.ErrGeneratorFailure):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

type listProductsQuery struct {
	Q        string   `form:"q"`
	Category string   `form:"category"`
	Dietary  []string `form:"dietary"`
	MinPrice float64  `form:"min_price"`
	MaxPrice float64  `form:"max_price"`
	Sort     string   `form:"sort"`
	Offset   int      `form:"offset"`
	Limit    int      `form:"limit"`
}

// ListProducts handles catalog browsing with filters, sorting and paging
func (h *Handler) ListProducts(c *gin.Context) {
	var q listProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	// dietary=Vegan,Organic and dietary=Vegan&dietary=Organic are equivalent
	var dietary []domain.DietaryTag
	for _, raw := range q.Dietary {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				dietary = append(dietary, domain.DietaryTag(tag))
			}
		}
	}

	page, err := h.catalog.List(usecase.ProductFilter{
		Query:    q.Q,
		Category: domain.Category(q.Category),
		Dietary:  dietary,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Sort:     q.Sort,
		Offset:   q.Offset,
		Limit:    q.Limit,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetProduct returns one product
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.catalog.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// RelatedProducts returns products from the same category
func (h *Handler) RelatedProducts(c *gin.Context) {
	related, err := h.catalog.Related(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": related})
}

// ProductRecipes returns recipes that use a product
func (h *Handler) ProductRecipes(c *gin.Context) {
	recipes, err := h.recipes.ForProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// GetRecipe returns a recipe with per-ingredient availability
func (h *Handler) GetRecipe(c *gin.Context) {
	ctx := c.Request.Context()
	session, err := h.sessions.Get(ctx, sessionID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	recipe, err := h.recipes.Recipe(ctx, c.Param("id"), session)
	if err != nil {
		h.respondError(c, err)
		return
	}
	_, saved := session.SavedRecipe(recipe.ObjectID)

	c.JSON(http.StatusOK, gin.H{
		"recipe":      recipe,
		"ingredients": h.recipes.IngredientAvailability(recipe, session.Cart),
		"saved":       saved,
	})
}

// cartResponse is the cart as the storefront renders it
type cartResponse struct {
	Items []domain.CartItem `json:"items"`
	Count int               `json:"count"`
	Total float64           `json:"total"`
}

func newCartResponse(cart domain.Cart) cartResponse {
	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return cartResponse{Items: items, Count: cart.Count(), Total: cart.Total()}
}

// GetCart returns the session cart
func (h *Handler) GetCart(c *gin.Context) {
	session, err := h.sessions.Get(c.Request.Context(), sessionID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(session.Cart))
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// AddCartItem adds a product to the cart
func (h *Handler) AddCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	session, err := h.sessions.AddToCart(c.Request.Context(), sessionID(c), req.ProductID, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(session.Cart))
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// UpdateCartItem sets the quantity of a cart entry; zero removes it
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	session, err := h.sessions.UpdateQuantity(c.Request.Context(), sessionID(c), c.Param("id"), *req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(session.Cart))
}

// RemoveCartItem drops a product from the cart
func (h *Handler) RemoveCartItem(c *gin.Context) {
	session, err := h.sessions.RemoveFromCart(c.Request.Context(), sessionID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(session.Cart))
}

// ClearCart empties the cart
func (h *Handler) ClearCart(c *gin.Context) {
	session, err := h.sessions.ClearCart(c.Request.Context(), sessionID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(session.Cart))
}

// CartRecipes suggests recipes ranked by overlap with the cart
func (h *Handler) CartRecipes(c *gin.Context) {
	ctx := c.Request.Context()
	session, err := h.sessions.Get(ctx, sessionID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": h.recipes.ForCart(ctx, session.Cart.Items)})
}

// ToggleWishlist adds or removes a product from the wishlist
func (h *Handler) ToggleWishlist(c *gin.Context) {
	session, listed, err := h.sessions.ToggleWishlist(c.Request.Context(), sessionID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlisted": listed, "wishlist": session.Wishlist})
}

// ToggleSaveRecipe adds or removes a recipe from the saved list
func (h *Handler) ToggleSaveRecipe(c *gin.Context) {
	ctx := c.Request.Context()
	id := sessionID(c)
	session, err := h.sessions.Get(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	recipe, err := h.recipes.Recipe(ctx, c.Param("id"), session)
	if err != nil {
		h.respondError(c, err)
		return
	}
	session, saved, err := h.sessions.ToggleSaveRecipe(ctx, id, recipe)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved, "savedRecipes": session.SavedRecipes})
}

type chatRequest struct {
	Message string               `json:"message" binding:"required"`
	History []domain.ChatMessage `json:"history"`
}

// Chat streams the assistant reply as server-sent events.
// Frames are {"text": ...} fragments, one {"added": [...]} summary and a final [DONE].
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	streaming := false
	startStream := func() {
		if streaming {
			return
		}
		streaming = true
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Status(http.StatusOK)
	}
	onChunk := func(text string) error {
		startStream()
		return writeEvent(c, gin.H{"text": text})
	}

	outcome, err := h.assistant.Chat(c.Request.Context(), sessionID(c), req.Message, req.History, onChunk)
	if err != nil {
		if !streaming {
			h.respondError(c, err)
			return
		}
		h.logger.Warn("chat stream interrupted", zap.Error(err))
		_ = writeEvent(c, gin.H{"error": "the assistant stopped responding"})
		writeDone(c)
		return
	}

	startStream()
	_ = writeEvent(c, gin.H{"added": outcome.Added, "source": outcome.Source})
	writeDone(c)
}

// writeEvent sends one SSE data frame and flushes it
func writeEvent(c *gin.Context, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}

func writeDone(c *gin.Context) {
	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	c.Writer.Flush()
}
