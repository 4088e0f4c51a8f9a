package source

import (
	"context"
	"fmt"
	"log/slog"

	"DraftReviewer/internal/config"
	"DraftReviewer/internal/ports"
)

// StrategySource implements TitleSource via registered strategies.
type StrategySource struct {
	registry *Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.TitleSource = (*StrategySource)(nil)

// NewStrategySource wires the strategy registry with config-defined sources.
func NewStrategySource(reg *Registry, sources []config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sources:  sources,
		logger:   log,
	}
}

// Titles iterates over configured sources and merges their titles, dropping duplicates.
func (s *StrategySource) Titles(ctx context.Context) ([]string, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("title source registry is not configured")
	}

	s.debug("collect titles", "sources", len(s.sources))

	seen := map[string]struct{}{}
	var aggregated []string
	for _, src := range s.sources {
		s.debug("process source", "source", src.Name, "kind", src.Kind)
		strategy, err := s.registry.Resolve(src.Kind)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}

		titles, err := strategy.List(ctx, Request{
			SourceName: src.Name,
			Titles:     src.Titles,
			Category:   src.Category,
			Limit:      src.Limit,
		})
		if err != nil {
			return nil, fmt.Errorf("list source %s: %w", src.Name, err)
		}

		for _, title := range titles {
			if _, ok := seen[title]; ok {
				continue
			}
			seen[title] = struct{}{}
			aggregated = append(aggregated, title)
		}
		s.debug("source produced titles", "source", src.Name, "count", len(titles))
	}

	s.debug("strategy source done", "total_titles", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
