package searchindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nani/backend/internal/domain"
	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"go.uber.org/zap"
)

// Config holds the connection settings for the search cluster
type Config struct {
	Addresses  []string
	Username   string
	Password   string
	MaxRetries int
	Timeout    time.Duration
	// OnError observes every request that fails to reach the index or returns an error status
	OnError func(index string)
}

// searchFields are the document fields a free-text query is matched against
var searchFields = []string{"title^3", "name^3", "ingredients", "ingredients_text", "category"}

// Client queries product and recipe indexes in OpenSearch
type Client struct {
	client  *opensearch.Client
	timeout time.Duration
	onError func(index string)
	logger  *zap.Logger
}

// NewClient creates a new search index client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("%w: no search addresses configured", domain.ErrInvalidRequest)
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.OnError == nil {
		cfg.OnError = func(string) {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := opensearch.NewClient(opensearch.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.Username,
		Password:      cfg.Password,
		MaxRetries:    cfg.MaxRetries,
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff:  func(attempt int) time.Duration { return time.Duration(attempt) * 100 * time.Millisecond },
		Transport:     &http.Transport{MaxIdleConnsPerHost: 10},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}

	return &Client{client: client, timeout: cfg.Timeout, onError: cfg.OnError, logger: logger}, nil
}

// searchResponse is the subset of the OpenSearch search response we read
type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// getResponse is the subset of the OpenSearch get response we read
type getResponse struct {
	ID     string          `json:"_id"`
	Found  bool            `json:"found"`
	Source json.RawMessage `json:"_source"`
}

// buildQuery builds a multi_match query body
func buildQuery(query string, limit int) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    searchFields,
				"fuzziness": "AUTO",
			},
		},
	})
}

// Search runs a free-text query against index and returns at most limit hits
func (c *Client) Search(ctx context.Context, index, query string, limit int) ([]domain.SearchHit, error) {
	body, err := buildQuery(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := opensearchapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, c.client)
	if err != nil {
		c.onError(index)
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		c.onError(index)
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrSearchUnavailable, resp.StatusCode, msg)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]domain.SearchHit, 0, len(result.Hits.Hits))
	for _, h := range result.Hits.Hits {
		hit, err := DecodeHit(h.ID, h.Source)
		if err != nil {
			c.logger.Warn("skipping undecodable hit", zap.String("index", index), zap.String("id", h.ID), zap.Error(err))
			continue
		}
		hits = append(hits, hit)
	}

	c.logger.Debug("[SEARCH] query complete",
		zap.String("index", index),
		zap.String("query", query),
		zap.Int("hits", len(hits)))
	return hits, nil
}

// Lookup fetches one document by id. A missing document returns nil without error.
func (c *Client) Lookup(ctx context.Context, index, id string) (*domain.SearchHit, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := opensearchapi.GetRequest{Index: index, DocumentID: id}
	resp, err := req.Do(ctx, c.client)
	if err != nil {
		c.onError(index)
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		c.onError(index)
		return nil, fmt.Errorf("%w: status %d", domain.ErrSearchUnavailable, resp.StatusCode)
	}

	var result getResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode get response: %w", err)
	}
	if !result.Found {
		return nil, nil
	}

	hit, err := DecodeHit(result.ID, result.Source)
	if err != nil {
		return nil, err
	}
	return &hit, nil
}

// Disabled is a SearchIndex used when no search cluster is configured.
// Every call fails so callers fall through to local data.
type Disabled struct{}

// Search always fails with ErrSearchUnavailable
func (Disabled) Search(ctx context.Context, index, query string, limit int) ([]domain.SearchHit, error) {
	return nil, fmt.Errorf("%w: search backend disabled", domain.ErrSearchUnavailable)
}

// Lookup always fails with ErrSearchUnavailable
func (Disabled) Lookup(ctx context.Context, index, id string) (*domain.SearchHit, error) {
	return nil, fmt.Errorf("%w: search backend disabled", domain.ErrSearchUnavailable)
}
