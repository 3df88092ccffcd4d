// Package query builds the JSON query documents sent to the search engine.
//
// Every constructor returns a freshly built map tree, so composed queries
// never alias request-scoped state. Marshalled documents are byte-stable:
// encoding/json writes map keys in sorted order.
package query

// M is a JSON object under construction.
type M map[string]any

// Boost modes for function-score wrappers.
const (
	BoostModeReplace  = "replace"
	BoostModeMultiply = "multiply"
	BoostModeAvg      = "avg"
)

// Raw keyword field used for label-expansion matching. The field is
// unanalyzed so predicted labels match curated keywords verbatim.
const keywordsRawField = "description.keywords.keywords_raw"

// releaseDateField is the recency signal for date decay.
const releaseDateField = "description.releaseDate"

// EmbeddingField is the stored per-document embedding. It is excluded from
// returned payloads and scored engine-side only.
const EmbeddingField = "embedding_vector"

// DisMax combines sub-queries by taking the maximum clause score. The
// maximum, not the sum: a term matching many weak fields must not outscore
// an exact strong-field match.
func DisMax(queries ...M) M {
	qs := make([]any, len(queries))
	for i, q := range queries {
		qs[i] = q
	}
	return M{"dis_max": M{"queries": qs}}
}

// FunctionScore wraps a query with scoring functions combined under the
// given boost mode.
func FunctionScore(q M, fns []M, boostMode string) M {
	functions := make([]any, len(fns))
	for i, fn := range fns {
		functions[i] = fn
	}
	return M{"function_score": M{
		"query":      q,
		"functions":  functions,
		"boost_mode": boostMode,
	}}
}

// Weight is a flat score-multiplier function.
func Weight(w float64) M {
	return M{"weight": w}
}

// KeywordExpansion builds a boolean OR of match clauses, one per predicted
// label, against the raw keyword field.
func KeywordExpansion(labels []string) M {
	should := make([]any, len(labels))
	for i, label := range labels {
		should[i] = M{"match": M{keywordsRawField: M{"query": label}}}
	}
	return M{"bool": M{"should": should}}
}

// DateDecay wraps a query in an exponential recency decay anchored at now.
// Boost mode multiply: recency modulates the base relevance, it never
// replaces it.
func DateDecay(q M) M {
	decay := M{"exp": M{releaseDateField: M{
		"origin": "now",
		"scale":  "356d",
		"offset": "30d",
		"decay":  0.95,
	}}}
	return FunctionScore(q, []M{decay}, BoostModeMultiply)
}
