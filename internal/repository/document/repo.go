// Package document reads stored document embeddings from the search index.
package document

import (
	"context"
	"fmt"

	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/query"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/transport/elastic"
)

// Engine executes raw queries. Implemented by the elastic client.
type Engine interface {
	Search(ctx context.Context, index string, body map[string]any) (*elastic.Response, error)
}

// Repository resolves document embeddings by URI.
type Repository struct {
	engine Engine
	index  string
}

// New creates a document repository over the given content index.
func New(engine Engine, index string) *Repository {
	return &Repository{engine: engine, index: index}
}

// Embedding fetches the stored embedding of the document with the given
// URI. The lookup must resolve to exactly one document.
func (r *Repository) Embedding(ctx context.Context, uri string) (domain.Vector, error) {
	resp, err := r.engine.Search(ctx, r.index, query.EmbeddingLookupBody(uri))
	if err != nil {
		return nil, fmt.Errorf("embedding lookup: %w", err)
	}

	switch n := len(resp.Hits.Hits); {
	case n == 0:
		return nil, fmt.Errorf("%w: %q", domain.ErrDocumentNotFound, uri)
	case n > 1:
		return nil, fmt.Errorf("%w: %q matched %d documents", domain.ErrAmbiguousDocument, uri, resp.Hits.Total)
	}

	encoded, ok := resp.Hits.Hits[0].Source[query.EmbeddingField].(string)
	if !ok || encoded == "" {
		return nil, fmt.Errorf("%w: %q has no stored embedding", domain.ErrDocumentNotFound, uri)
	}
	vec, err := domain.DecodeVectorBase64(encoded)
	if err != nil {
		return nil, fmt.Errorf("embedding lookup %q: %w", uri, err)
	}
	return vec, nil
}
