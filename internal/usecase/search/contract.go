package search

import (
	"context"

	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/transport/elastic"
)

// Engine executes query documents against the search engine.
type Engine interface {
	Search(ctx context.Context, index string, body map[string]any) (*elastic.Response, error)
}

// Embedder provides sentence embeddings and keyword-label predictions from
// the embedding microservice.
type Embedder interface {
	SentenceVector(ctx context.Context, text string) (domain.Vector, error)
	Predict(ctx context.Context, text string, k int, threshold float64) ([]domain.Prediction, error)
}
