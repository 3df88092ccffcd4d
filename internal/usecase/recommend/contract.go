package recommend

import (
	"context"

	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/transport/elastic"
)

// Engine executes composed query documents against the search backend.
type Engine interface {
	Search(ctx context.Context, index string, body map[string]any) (*elastic.Response, error)
}

// Embedder expands a document embedding into nearby keyword labels.
type Embedder interface {
	SimilarByVector(ctx context.Context, vec domain.Vector, k int) ([]string, error)
}

// DocumentVectors resolves stored document embeddings by URI.
type DocumentVectors interface {
	Embedding(ctx context.Context, uri string) (domain.Vector, error)
}

// UserVectors derives a caller's durable interest vector.
type UserVectors interface {
	UserVector(ctx context.Context, userID string) (domain.Vector, error)
}
