// Package recommend produces "similar documents" results for a target
// document, anchored to its stored embedding and optionally blended with
// the caller's interest vector.
package recommend

import (
	"context"
	"fmt"

	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/logger"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/query"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/usecase/search"
)

const defaultResultSize = 10

// Config tunes recommendation retrieval.
type Config struct {
	// NumLabels is how many expansion labels to request from the
	// embedding service per recommendation.
	NumLabels int
	// DefaultSize is the result count when the caller does not ask
	// for one.
	DefaultSize int
}

// Service builds and executes similar-document queries.
type Service struct {
	engine Engine
	embed  Embedder
	docs   DocumentVectors
	users  UserVectors
	cfg    Config
	index  string
}

// New creates a recommendation service over the given content index.
func New(engine Engine, embed Embedder, docs DocumentVectors, users UserVectors, cfg Config, index string) *Service {
	if cfg.NumLabels <= 0 {
		cfg.NumLabels = 10
	}
	if cfg.DefaultSize <= 0 {
		cfg.DefaultSize = defaultResultSize
	}
	return &Service{
		engine: engine,
		embed:  embed,
		docs:   docs,
		users:  users,
		cfg:    cfg,
		index:  index,
	}
}

// Similar returns documents similar to the one at uri, excluding the
// document itself. When userID is non-empty the caller's durable interest
// vector is averaged into the score, so recommendations stay anchored to
// document similarity even for users with weak interest signal.
func (s *Service) Similar(ctx context.Context, uri string, size int, userID string) (*search.Result, error) {
	if size <= 0 {
		size = s.cfg.DefaultSize
	}

	docVec, err := s.docs.Embedding(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("similar to %q: %w", uri, err)
	}

	labels, err := s.embed.SimilarByVector(ctx, docVec, s.cfg.NumLabels)
	if err != nil {
		return nil, fmt.Errorf("similar to %q: expand labels: %w", uri, err)
	}

	var userVec domain.Vector
	if userID != "" {
		userVec, err = s.users.UserVector(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("similar to %q: user vector: %w", uri, err)
		}
	}

	body := query.SimilarBody(query.Similar(uri, labels, docVec, userVec), size)
	resp, err := s.engine.Search(ctx, s.index, body)
	if err != nil {
		return nil, fmt.Errorf("similar to %q: %w", uri, err)
	}
	return search.MapContent(resp, 1, size, 1, "", logger.FromContext(ctx)), nil
}
