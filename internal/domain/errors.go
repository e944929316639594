package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product id is not in the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrRecipeNotFound is returned when a recipe cannot be resolved from any source
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrSearchUnavailable is returned when the search index request fails
	ErrSearchUnavailable = errors.New("search index unavailable")

	// ErrGeneratorFailure is returned when the language model request fails
	ErrGeneratorFailure = errors.New("text generation failed")

	// ErrSessionNotFound is returned when no state exists for a session id
	ErrSessionNotFound = errors.New("session not found")
)
