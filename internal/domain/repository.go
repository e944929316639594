package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque bytes; callers own serialization.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// SearchIndex defines the interface for the external text-search service
type SearchIndex interface {
	Search(ctx context.Context, index, query string, limit int) ([]SearchHit, error)
	Lookup(ctx context.Context, index, id string) (*SearchHit, error)
}

// ChatMessage is one turn of an assistant conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the input to a TextGenerator
type ChatRequest struct {
	SystemPrompt string
	History      []ChatMessage
	Message      string
}

// TextGenerator defines the interface for the language model.
// onChunk receives every text fragment as it arrives; the full reply is returned.
type TextGenerator interface {
	StreamChat(ctx context.Context, req ChatRequest, onChunk func(string) error) (string, error)
}
