package connector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"NewsBrief/internal/config"
	"NewsBrief/internal/domain"
	"NewsBrief/internal/ports"
	"NewsBrief/internal/source"
)

// StrategySource implements ports.TargetSource via registered connectors.
type StrategySource struct {
	registry *source.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.TargetSource = (*StrategySource)(nil)

// NewStrategySource wires the connector registry with config-defined sources.
func NewStrategySource(reg *source.Registry, sources []config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sources:  sources,
		logger:   log,
		now:      time.Now,
	}
}

// Collect asks every enabled source (or only the one named by the query) for targets.
// A failing connector never stops the others; its outcome is tagged instead.
func (s *StrategySource) Collect(ctx context.Context, query domain.Query) []domain.Collection {
	now := s.now()
	var collections []domain.Collection

	s.debug("collect", "sources", len(s.sources), "topic", query.Topic, "filter", query.Source)
	for _, src := range s.sources {
		if !s.selected(src, query) {
			continue
		}

		connector, err := s.registry.Resolve(src.Name)
		if err != nil {
			collections = append(collections, domain.NewCollection(src.Name, nil, err))
			s.warn("source unavailable", "source", src.Name, "error", err)
			continue
		}

		limit := src.Limit
		if query.Limit > 0 {
			limit = query.Limit
		}
		targets, err := connector.Search(ctx, source.Request{
			Query:   query,
			Limit:   limit,
			Options: src.Options,
			Now:     now,
		})
		if errors.Is(err, source.ErrLocaleRequired) && query.Source == "" {
			s.debug("source skipped without locale", "source", src.Name)
			continue
		}

		for i := range targets {
			if targets[i].Meta == nil {
				targets[i].Meta = map[string]string{}
			}
			if targets[i].Meta["source"] == "" {
				targets[i].Meta["source"] = src.Name
			}
		}

		collection := domain.NewCollection(src.Name, targets, err)
		switch collection.Status {
		case domain.CollectionFetchFailed:
			s.warn("source fetch failed", "source", src.Name, "error", err)
		case domain.CollectionEmpty:
			s.info("source returned no results", "source", src.Name)
		default:
			s.debug("source produced targets", "source", src.Name, "count", len(targets))
		}
		collections = append(collections, collection)
	}

	if query.Source != "" && len(collections) == 0 {
		err := fmt.Errorf("source %s is not configured", query.Source)
		collections = append(collections, domain.NewCollection(query.Source, nil, err))
	}
	return collections
}

func (s *StrategySource) selected(src config.SourceConfig, query domain.Query) bool {
	if query.Source == "" {
		return src.Enabled
	}
	return query.Source == src.Name || query.Source == src.Connector
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) info(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
