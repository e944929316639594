package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/nani/backend/internal/domain"
	"go.uber.org/zap"
)

// sessionLockStripes bounds the number of mutexes guarding session writes
const sessionLockStripes = 64

// SessionServiceConfig holds configuration for the session service
type SessionServiceConfig struct {
	TTL time.Duration
}

// SessionService loads and mutates shopper sessions stored in the cache.
// Mutations of one session are serialized; different sessions may proceed in parallel.
type SessionService struct {
	cache   domain.CacheRepository
	catalog *CatalogService
	ttl     time.Duration
	locks   [sessionLockStripes]sync.Mutex
	logger  *zap.Logger
}

// NewSessionService creates a new session service with dependencies
func NewSessionService(cache domain.CacheRepository, catalog *CatalogService, config SessionServiceConfig, logger *zap.Logger) *SessionService {
	ttl := config.TTL
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		cache:   cache,
		catalog: catalog,
		ttl:     ttl,
		logger:  logger,
	}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (s *SessionService) lock(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.locks[h.Sum32()%sessionLockStripes]
}

// Get returns the session for id, or a new empty session if none is stored
func (s *SessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: missing session id", domain.ErrInvalidRequest)
	}
	return s.load(ctx, id)
}

func (s *SessionService) load(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.cache.Get(ctx, sessionKey(id))
	if errors.Is(err, domain.ErrCacheMiss) {
		return domain.NewSession(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		s.logger.Warn("[SESSION] discarding unreadable session", zap.String("session", id), zap.Error(err))
		return domain.NewSession(id), nil
	}
	return &session, nil
}

func (s *SessionService) save(ctx context.Context, session *domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.cache.Set(ctx, sessionKey(session.ID), raw, s.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// mutate applies fn to the stored session under the session lock and persists the result.
// Nothing is written when fn fails.
func (s *SessionService) mutate(ctx context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: missing session id", domain.ErrInvalidRequest)
	}
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	session.UpdatedAt = time.Now().UTC()
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// AddToCart adds quantity units of a catalog product to the cart
func (s *SessionService) AddToCart(ctx context.Context, id, productID string, quantity int) (*domain.Session, error) {
	product, err := s.catalog.Get(productID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(session *domain.Session) error {
		session.Cart.Add(product, quantity)
		return nil
	})
}

// AddProducts adds one unit of each product to the cart
func (s *SessionService) AddProducts(ctx context.Context, id string, products []domain.Product) (*domain.Session, error) {
	return s.mutate(ctx, id, func(session *domain.Session) error {
		for _, p := range products {
			session.Cart.Add(p, 1)
		}
		return nil
	})
}

// RemoveFromCart drops a product from the cart
func (s *SessionService) RemoveFromCart(ctx context.Context, id, productID string) (*domain.Session, error) {
	return s.mutate(ctx, id, func(session *domain.Session) error {
		if !session.Cart.Remove(productID) {
			return fmt.Errorf("%w: %s not in cart", domain.ErrProductNotFound, productID)
		}
		return nil
	})
}

// UpdateQuantity sets the quantity of a cart entry; zero or less removes it
func (s *SessionService) UpdateQuantity(ctx context.Context, id, productID string, quantity int) (*domain.Session, error) {
	return s.mutate(ctx, id, func(session *domain.Session) error {
		if !session.Cart.UpdateQuantity(productID, quantity) {
			return fmt.Errorf("%w: %s not in cart", domain.ErrProductNotFound, productID)
		}
		return nil
	})
}

// ClearCart empties the cart
func (s *SessionService) ClearCart(ctx context.Context, id string) (*domain.Session, error) {
	return s.mutate(ctx, id, func(session *domain.Session) error {
		session.Cart.Clear()
		return nil
	})
}

// ToggleWishlist adds or removes a catalog product from the wishlist.
// The bool reports whether the product is listed afterwards.
func (s *SessionService) ToggleWishlist(ctx context.Context, id, productID string) (*domain.Session, bool, error) {
	if _, err := s.catalog.Get(productID); err != nil {
		return nil, false, err
	}
	var listed bool
	session, err := s.mutate(ctx, id, func(session *domain.Session) error {
		listed = session.ToggleWishlist(productID)
		return nil
	})
	return session, listed, err
}

// ToggleSaveRecipe adds or removes a recipe from the saved list.
// The bool reports whether the recipe is saved afterwards.
func (s *SessionService) ToggleSaveRecipe(ctx context.Context, id string, recipe domain.Recipe) (*domain.Session, bool, error) {
	if recipe.ObjectID == "" {
		return nil, false, fmt.Errorf("%w: recipe without id", domain.ErrInvalidRequest)
	}
	var saved bool
	session, err := s.mutate(ctx, id, func(session *domain.Session) error {
		saved = session.ToggleSavedRecipe(recipe)
		return nil
	})
	return session, saved, err
}
