package source

import (
	"context"
	"fmt"
)

// Request carries everything a strategy needs to list titles.
type Request struct {
	SourceName string
	Titles     []string
	Category   string
	URL        string
	Prefix     string
	Limit      int
}

// Strategy lists candidate drafts in one particular way (fixed list, category, ...).
type Strategy interface {
	Name() string
	List(ctx context.Context, req Request) ([]string, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[string]Strategy{}}
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[strategy.Name()] = strategy
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if strategy, ok := r.strategies[name]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("title source %s is not registered", name)
}
