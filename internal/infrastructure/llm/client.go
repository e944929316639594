package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nani/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	maxAttempts  = 3
	streamPrefix = "data:"
	streamDone   = "[DONE]"
)

// Config holds the language model endpoint settings
type Config struct {
	BaseURL           string
	APIKey            string
	Model             string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client streams chat completions from an OpenAI-compatible endpoint
type Client struct {
	http        *resty.Client
	model       string
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	logger      *zap.Logger
}

// NewClient creates a new language model client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "text/event-stream").
		SetHeader("User-Agent", "Nani/1.0")
	if cfg.APIKey != "" {
		httpClient.SetAuthToken(cfg.APIKey)
	}

	return &Client{
		http:        httpClient,
		model:       cfg.Model,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute),
		backoff:     exponentialBackoff,
		logger:      logger,
	}
}

// exponentialBackoff returns 500ms, 1s, 2s... for attempts 1, 2, 3...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// buildRequest flattens a domain request into the wire format.
// Model turns recorded as "model" are sent with the "assistant" role.
func (c *Client) buildRequest(req domain.ChatRequest) chatRequest {
	messages := make([]chatMessage, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, m := range req.History {
		role := m.Role
		if role == "model" {
			role = "assistant"
		}
		messages = append(messages, chatMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Message})
	return chatRequest{Model: c.model, Messages: messages, Stream: true}
}

// StreamChat sends the conversation and delivers each text fragment to onChunk.
// Connection failures, 429 and 5xx responses are retried before any text is streamed.
func (c *Client) StreamChat(ctx context.Context, req domain.ChatRequest, onChunk func(string) error) (string, error) {
	body := c.buildRequest(req)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
		}

		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(body).
			SetDoNotParseResponse(true).
			Post("/chat/completions")
		if err != nil {
			c.logger.Warn("[LLM] request error", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = fmt.Errorf("%w: %v", domain.ErrGeneratorFailure, err)
			if !c.sleep(ctx, attempt) {
				return "", ctx.Err()
			}
			continue
		}

		raw := resp.RawBody()
		status := resp.StatusCode()
		if status != http.StatusOK {
			msg, _ := io.ReadAll(io.LimitReader(raw, 1024))
			raw.Close()
			c.logger.Warn("[LLM] api error", zap.Int("attempt", attempt), zap.Int("status", status), zap.ByteString("body", msg))

			switch {
			case status == http.StatusTooManyRequests:
				lastErr = fmt.Errorf("%w: status %d", domain.ErrRateLimited, status)
			case status >= 500:
				lastErr = fmt.Errorf("%w: status %d", domain.ErrGeneratorFailure, status)
			default:
				return "", fmt.Errorf("%w: status %d: %s", domain.ErrGeneratorFailure, status, msg)
			}
			if !c.sleep(ctx, attempt) {
				return "", ctx.Err()
			}
			continue
		}

		text, err := readStream(raw, onChunk)
		raw.Close()
		return text, err
	}

	c.logger.Error("[LLM] all attempts failed", zap.Error(lastErr))
	return "", lastErr
}

// sleep waits before the next attempt. Returns false when ctx is done.
func (c *Client) sleep(ctx context.Context, attempt int) bool {
	if attempt == maxAttempts {
		return true
	}
	timer := time.NewTimer(c.backoff(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// readStream parses server-sent events until [DONE] or end of body
func readStream(r io.Reader, onChunk func(string) error) (string, error) {
	var full strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, streamPrefix) {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, streamPrefix))
		if data == streamDone {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}

		text := chunk.Choices[0].Delta.Content
		full.WriteString(text)
		if onChunk != nil {
			if err := onChunk(text); err != nil {
				return full.String(), err
			}
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return full.String(), fmt.Errorf("%w: stream interrupted: %v", domain.ErrGeneratorFailure, err)
	}
	return full.String(), nil
}
