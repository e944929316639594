package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/nani/backend/internal/domain"
)

type fakeCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	setErr error
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *fakeCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

// fakeIndex answers searches from a fixed table keyed by "index|query"
type fakeIndex struct {
	mu      sync.Mutex
	results map[string][]domain.SearchHit
	failing map[string]bool
	records map[string]domain.SearchHit
	queries []string
	down    bool
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		results: make(map[string][]domain.SearchHit),
		failing: make(map[string]bool),
		records: make(map[string]domain.SearchHit),
	}
}

func (f *fakeIndex) on(index, query string, hits ...domain.SearchHit) {
	f.results[index+"|"+strings.ToLower(query)] = hits
}

func (f *fakeIndex) Search(ctx context.Context, index, query string, limit int) ([]domain.SearchHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := index + "|" + strings.ToLower(query)
	f.queries = append(f.queries, key)
	if f.down || f.failing[key] {
		return nil, errors.New("index unreachable")
	}
	hits := f.results[key]
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (f *fakeIndex) Lookup(ctx context.Context, index, id string) (*domain.SearchHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, domain.ErrSearchUnavailable
	}
	hit, ok := f.records[index+"|"+id]
	if !ok {
		return nil, nil
	}
	return &hit, nil
}

func (f *fakeIndex) searched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.queries))
	copy(out, f.queries)
	return out
}

// fakeGenerator replies with a canned text split into chunks and records the request
type fakeGenerator struct {
	chunks []string
	err    error
	last   domain.ChatRequest
}

func (g *fakeGenerator) StreamChat(ctx context.Context, req domain.ChatRequest, onChunk func(string) error) (string, error) {
	g.last = req
	if g.err != nil {
		return "", g.err
	}
	var full strings.Builder
	for _, c := range g.chunks {
		full.WriteString(c)
		if onChunk != nil {
			if err := onChunk(c); err != nil {
				return full.String(), err
			}
		}
	}
	return full.String(), nil
}
