package query

import "github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain"

// VectorScore builds the engine-side similarity scoring function: the
// engine's vector-scoring script computes cosine similarity (or raw dot
// product) between a stored per-document embedding field and the supplied
// query vector, scaled by weight. Every semantic feature composes through
// this one primitive.
func VectorScore(field string, vec domain.Vector, cosine bool, weight float64) M {
	return M{
		"script_score": M{
			"script": M{
				"lang":   "knn",
				"source": "binary_vector_score",
				"params": M{
					"cosine":         cosine,
					"field":          field,
					"encoded_vector": vec.EncodeBase64(),
				},
			},
		},
		"weight": weight,
	}
}
