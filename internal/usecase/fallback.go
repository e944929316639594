package usecase

import (
	"context"

	"go.uber.org/zap"
)

// Strategy is one way of answering a search query
type Strategy[T any] interface {
	Name() string
	Attempt(ctx context.Context, query string) ([]T, error)
}

// StrategyFunc adapts a function to the Strategy interface
type StrategyFunc[T any] struct {
	Label string
	Fn    func(ctx context.Context, query string) ([]T, error)
}

// Name returns the strategy label
func (s StrategyFunc[T]) Name() string { return s.Label }

// Attempt runs the wrapped function
func (s StrategyFunc[T]) Attempt(ctx context.Context, query string) ([]T, error) {
	return s.Fn(ctx, query)
}

// OutcomeRecorder observes every strategy attempt. Outcome is "hit", "empty" or "error".
type OutcomeRecorder func(chain, strategy, outcome string)

// FallbackChain tries strategies in order until one yields results
type FallbackChain[T any] struct {
	name       string
	strategies []Strategy[T]
	logger     *zap.Logger
	record     OutcomeRecorder
}

// NewFallbackChain creates a chain. A nil logger or recorder is allowed.
func NewFallbackChain[T any](name string, logger *zap.Logger, record OutcomeRecorder, strategies ...Strategy[T]) *FallbackChain[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if record == nil {
		record = func(string, string, string) {}
	}
	return &FallbackChain[T]{
		name:       name,
		strategies: strategies,
		logger:     logger,
		record:     record,
	}
}

// Run returns the first non-empty result and the name of the strategy that produced it.
// Strategy errors are logged and skipped; an empty result with an empty name means every strategy came up dry.
func (c *FallbackChain[T]) Run(ctx context.Context, query string) ([]T, string) {
	for _, s := range c.strategies {
		results, err := s.Attempt(ctx, query)
		switch {
		case err != nil:
			c.logger.Warn("search strategy failed",
				zap.String("chain", c.name),
				zap.String("strategy", s.Name()),
				zap.String("query", query),
				zap.Error(err))
			c.record(c.name, s.Name(), "error")
		case len(results) == 0:
			c.record(c.name, s.Name(), "empty")
		default:
			c.logger.Debug("search strategy hit",
				zap.String("chain", c.name),
				zap.String("strategy", s.Name()),
				zap.Int("results", len(results)))
			c.record(c.name, s.Name(), "hit")
			return results, s.Name()
		}
	}
	return nil, ""
}
