package search

import (
	"strings"

	"go.uber.org/zap"

	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain/page"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/transport/elastic"
)

// docCountsAggregation matches the aggregation name requested by the query
// builder.
const docCountsAggregation = "docCounts"

// Result is the structured, paginated search result returned to callers.
// Built once per query execution; not mutated afterwards.
type Result struct {
	NumberOfResults int              `json:"numberOfResults"`
	Took            int              `json:"took"`
	Results         []map[string]any `json:"results"`
	DocCounts       map[string]int   `json:"docCounts,omitempty"`
	Paginator       *page.Paginator  `json:"paginator,omitempty"`
	SortBy          string           `json:"sortBy,omitempty"`
}

// MapContent converts a raw hits payload into a Result. Engine-side order
// is authoritative and is preserved. Highlighted fragments replace the
// matching field value; when the engine returns more than one fragment for
// a field the substitution would be ambiguous, so the original value is
// kept and the extra fragments are dropped with a diagnostic.
func MapContent(resp *elastic.Response, currentPage, pageSize, maxVisible int, sortBy string, log *zap.Logger) *Result {
	results := make([]map[string]any, len(resp.Hits.Hits))
	for i, hit := range resp.Hits.Hits {
		doc := hit.Source
		if doc == nil {
			doc = map[string]any{}
		}
		for field, fragments := range hit.Highlight {
			if len(fragments) != 1 {
				log.Debug("dropping ambiguous highlight fragments",
					zap.String("field", field),
					zap.Int("fragments", len(fragments)),
				)
				continue
			}
			substituteField(doc, field, fragments[0], log)
		}
		results[i] = doc
	}

	paginator := page.New(resp.Hits.Total, currentPage, pageSize, maxVisible)

	return &Result{
		NumberOfResults: resp.Hits.Total,
		Took:            resp.Took,
		Results:         results,
		DocCounts:       bucketCounts(resp),
		Paginator:       &paginator,
		SortBy:          sortBy,
	}
}

// MapTypeCounts converts a terms-aggregation payload into a name-to-count
// map. The grand total is the sum of bucket counts, not the raw hit total,
// which may include zero-scored matches.
func MapTypeCounts(resp *elastic.Response) *Result {
	counts := bucketCounts(resp)
	total := 0
	for _, n := range counts {
		total += n
	}
	return &Result{
		NumberOfResults: total,
		Took:            resp.Took,
		Results:         []map[string]any{},
		DocCounts:       counts,
	}
}

// MapFeatured converts a featured-result payload: same mapping as content
// with an implicit single-result first page.
func MapFeatured(resp *elastic.Response, log *zap.Logger) *Result {
	return MapContent(resp, 1, 1, 1, "", log)
}

func bucketCounts(resp *elastic.Response) map[string]int {
	agg, ok := resp.Aggregations[docCountsAggregation]
	if !ok {
		return nil
	}
	counts := make(map[string]int, len(agg.Buckets))
	for _, b := range agg.Buckets {
		counts[b.Key] = b.DocCount
	}
	return counts
}

// substituteField replaces the value at a dotted field path with the
// highlighted fragment. A path that does not resolve to an existing value
// is left untouched.
func substituteField(doc map[string]any, path, fragment string, log *zap.Logger) {
	parts := strings.Split(path, ".")
	current := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			log.Debug("highlight path not present in document", zap.String("field", path))
			return
		}
		current = next
	}
	leaf := parts[len(parts)-1]
	if _, ok := current[leaf]; !ok {
		log.Debug("highlight path not present in document", zap.String("field", path))
		return
	}
	current[leaf] = fragment
}
