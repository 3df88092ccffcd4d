package query

import "github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain"

// uriField is the unique document identifier on indexed documents.
const uriField = "uri"

// Similar builds the "documents like this one" query. The target document
// is excluded from its own recommendations via must_not, regardless of how
// many expansion labels were found. Candidate recall comes from the label
// expansion; ranking comes from cosine similarity against the target
// embedding (boost mode replace). When a caller interest vector is
// supplied it is scored alongside the document vector and the two are
// averaged, so neither signal dominates.
func Similar(targetURI string, labels []string, docVec domain.Vector, userVec domain.Vector) M {
	base := M{"bool": M{
		"must_not": []any{M{"term": M{uriField: targetURI}}},
		"should":   []any{KeywordExpansion(labels)},
	}}

	fns := []M{VectorScore(EmbeddingField, docVec, true, 1.0)}
	boostMode := BoostModeReplace
	if !userVec.IsZero() {
		fns = append(fns, VectorScore(EmbeddingField, userVec, true, 1.0))
		boostMode = BoostModeAvg
	}
	return FunctionScore(base, fns, boostMode)
}

// SimilarBody wraps the recommendation query into a complete request
// document.
func SimilarBody(q M, size int) M {
	return M{
		"query":   q,
		"from":    0,
		"size":    size,
		"_source": M{"exclude": []any{EmbeddingField}},
	}
}

// EmbeddingLookupBody builds the exact-match URI lookup used to read a
// document's stored embedding. Size 2: one hit is expected, a second hit
// proves the lookup ambiguous.
func EmbeddingLookupBody(uri string) M {
	return M{
		"query": M{"bool": M{
			"filter": []any{M{"term": M{uriField: uri}}},
		}},
		"size":    2,
		"_source": M{"include": []any{EmbeddingField}},
	}
}
