// Package search builds, executes and interprets content search queries.
package search

import (
	"context"
	"fmt"

	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain/content"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain/sortby"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/logger"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/normalize"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/query"
)

// maxResultWindow caps from+size; deeper windows are rejected before any
// network call rather than truncated.
const maxResultWindow = 10000

// departmentsResultSize is the fixed result count for departments queries.
const departmentsResultSize = 10

// Config holds the tunable search parameters.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
	MaxVisibleLinks int
	SemanticEnabled bool
	NumLabels       int
	LabelThreshold  float64
	Highlight       bool
}

// Service handles content, type-count, featured-result and departments
// queries. Query documents are built fresh per request; the service itself
// holds no mutable state.
type Service struct {
	engine           Engine
	embed            Embedder
	cfg              Config
	contentIndex     string
	departmentsIndex string
}

// New creates a search service over the given indices.
func New(engine Engine, embed Embedder, cfg Config, contentIndex, departmentsIndex string) *Service {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 10
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.MaxVisibleLinks <= 0 {
		cfg.MaxVisibleLinks = 5
	}
	if cfg.NumLabels <= 0 {
		cfg.NumLabels = 10
	}
	return &Service{
		engine:           engine,
		embed:            embed,
		cfg:              cfg,
		contentIndex:     contentIndex,
		departmentsIndex: departmentsIndex,
	}
}

// Params are the caller-supplied search parameters.
type Params struct {
	Term   string
	Filter string
	SortBy string
	Page   int
	Size   int
}

// Content runs the main content search: lexical baseline, semantic blend
// when enabled and sorting by relevance, type filtering and weighting,
// pagination and highlighting.
func (s *Service) Content(ctx context.Context, p Params) (*Result, error) {
	group, err := content.ResolveGroup(p.Filter)
	if err != nil {
		return nil, err
	}
	sort, err := sortby.Resolve(p.SortBy)
	if err != nil {
		return nil, err
	}
	pageNum, size, from, err := s.window(p)
	if err != nil {
		return nil, err
	}

	q := query.Lexical(p.Term)
	// Semantic blending only makes sense under relevance ordering: an
	// embedding-similarity score has no effect on any other total order.
	if s.cfg.SemanticEnabled && sort.Name == sortby.Relevance {
		q, err = s.blend(ctx, p.Term, q)
		if err != nil {
			return nil, err
		}
	}

	resp, err := s.engine.Search(ctx, s.contentIndex, query.ContentBody(q, group, sort, from, size, s.cfg.Highlight))
	if err != nil {
		return nil, fmt.Errorf("content query: %w", err)
	}
	return MapContent(resp, pageNum, size, s.cfg.MaxVisibleLinks, sort.Name, logger.FromContext(ctx)), nil
}

// TypeCounts runs the per-type doc-count aggregation for a term.
func (s *Service) TypeCounts(ctx context.Context, term string) (*Result, error) {
	resp, err := s.engine.Search(ctx, s.contentIndex, query.TypeCountsBody(query.Lexical(term)))
	if err != nil {
		return nil, fmt.Errorf("type counts query: %w", err)
	}
	return MapTypeCounts(resp), nil
}

// Featured returns the single best product-page hit for a term.
func (s *Service) Featured(ctx context.Context, term string) (*Result, error) {
	resp, err := s.engine.Search(ctx, s.contentIndex, query.FeaturedBody(query.Lexical(term)))
	if err != nil {
		return nil, fmt.Errorf("featured query: %w", err)
	}
	return MapFeatured(resp, logger.FromContext(ctx)), nil
}

// Departments searches the departments index with term highlighting.
func (s *Service) Departments(ctx context.Context, term string) (*Result, error) {
	resp, err := s.engine.Search(ctx, s.departmentsIndex, query.DepartmentsBody(term, departmentsResultSize))
	if err != nil {
		return nil, fmt.Errorf("departments query: %w", err)
	}
	return MapContent(resp, 1, departmentsResultSize, s.cfg.MaxVisibleLinks, "", logger.FromContext(ctx)), nil
}

// window resolves the requested page window, rejecting windows beyond the
// configured maximum before any network call.
func (s *Service) window(p Params) (pageNum, size, from int, err error) {
	pageNum = p.Page
	if pageNum < 1 {
		pageNum = 1
	}
	size = p.Size
	if size <= 0 {
		size = s.cfg.DefaultPageSize
	}
	if size > s.cfg.MaxPageSize {
		return 0, 0, 0, fmt.Errorf("%w: page size %d exceeds maximum %d",
			domain.ErrRequestSizeExceeded, size, s.cfg.MaxPageSize)
	}
	from = (pageNum - 1) * size
	if from+size > maxResultWindow {
		return 0, 0, 0, fmt.Errorf("%w: page %d of %d exceeds result window",
			domain.ErrRequestSizeExceeded, pageNum, size)
	}
	return pageNum, size, from, nil
}

// blend augments the lexical query with the semantic branch: predicted
// keyword labels recalled by text match but ranked purely by cosine
// similarity to the term's embedding, combined with the lexical query
// under dis_max, all modulated by recency decay.
func (s *Service) blend(ctx context.Context, term string, lexical query.M) (query.M, error) {
	cleaned := normalize.Clean(term)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrMalformedSearchTerm, term)
	}

	vec, err := s.embed.SentenceVector(ctx, cleaned)
	if err != nil {
		return nil, fmt.Errorf("blend %q: %w", cleaned, err)
	}
	preds, err := s.embed.Predict(ctx, cleaned, s.cfg.NumLabels, s.cfg.LabelThreshold)
	if err != nil {
		return nil, fmt.Errorf("blend %q: %w", cleaned, err)
	}

	semantic := query.FunctionScore(
		query.KeywordExpansion(domain.Labels(preds)),
		[]query.M{query.VectorScore(query.EmbeddingField, vec, true, 1.0)},
		query.BoostModeReplace,
	)
	boosted := query.FunctionScore(lexical, []query.M{query.Weight(100)}, query.BoostModeReplace)

	return query.DateDecay(query.DisMax(boosted, semantic)), nil
}
