package query

import (
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain/content"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain/sortby"
)

// Fields rendered with highlighted fragments in content results.
var highlightFields = []string{
	fieldTitle,
	fieldEdition,
	fieldSummary,
	fieldMetaDescription,
	fieldKeywords,
	fieldCDID,
	fieldDatasetID,
}

// typeField is the content-type discriminator on indexed documents.
const typeField = "type"

// docCountsAggregation names the per-type doc-count terms aggregation.
const docCountsAggregation = "docCounts"

// ContentBody assembles the full content-query document: the scored query
// wrapped with per-type relevance weights, a hard type filter, the page
// window, sort order, highlighting and the embedding-field source
// exclusion.
func ContentBody(q M, group content.Group, sort sortby.Spec, from, size int, highlight bool) M {
	body := M{
		"query":   filteredQuery(typeWeighted(q, group), group),
		"from":    from,
		"size":    size,
		"sort":    sortClauses(sort),
		"_source": M{"exclude": []any{EmbeddingField}},
	}
	if highlight {
		body["highlight"] = highlightBlock()
	}
	return body
}

// TypeCountsBody assembles the per-type doc-count aggregation query. No
// hits are returned, only the aggregation buckets.
func TypeCountsBody(q M) M {
	return M{
		"query": q,
		"size":  0,
		"aggs": M{
			docCountsAggregation: M{
				"terms": M{"field": typeField},
			},
		},
	}
}

// FeaturedBody assembles the featured-result query: the single best hit
// among product pages for the term.
func FeaturedBody(q M) M {
	group, _ := content.ResolveGroup(content.GroupProductPages)
	return M{
		"query":   filteredQuery(q, group),
		"from":    0,
		"size":    1,
		"_source": M{"exclude": []any{EmbeddingField}},
	}
}

// DepartmentsBody assembles the departments-index query with term
// highlighting.
func DepartmentsBody(term string, size int) M {
	return M{
		"query": M{"match": M{"terms": M{"query": term}}},
		"size":  size,
		"highlight": M{
			"pre_tags":  []any{"<strong>"},
			"post_tags": []any{"</strong>"},
			"fields": M{
				"terms": M{"number_of_fragments": 0},
			},
		},
	}
}

// typeWeighted applies the group's tuned per-type relevance weights as
// filtered weight functions, multiplying the base score.
func typeWeighted(q M, group content.Group) M {
	weighted := group.Weighted()
	if len(weighted) == 0 {
		return q
	}
	fns := make([]M, len(weighted))
	for i, t := range weighted {
		fns[i] = M{
			"filter": M{"term": M{typeField: t.Name}},
			"weight": t.Weight,
		}
	}
	return FunctionScore(q, fns, BoostModeMultiply)
}

// filteredQuery wraps the scored query with a hard terms filter on the
// group's content types. Filtering is non-scoring.
func filteredQuery(q M, group content.Group) M {
	names := group.Names()
	types := make([]any, len(names))
	for i, n := range names {
		types[i] = n
	}
	return M{"bool": M{
		"must":   []any{q},
		"filter": []any{M{"terms": M{typeField: types}}},
	}}
}

func sortClauses(sort sortby.Spec) []any {
	clauses := make([]any, len(sort.Fields))
	for i, f := range sort.Fields {
		order := "desc"
		if f.Ascending {
			order = "asc"
		}
		clauses[i] = M{f.Name: M{"order": order}}
	}
	return clauses
}

func highlightBlock() M {
	fields := M{}
	for _, f := range highlightFields {
		fields[f] = M{"number_of_fragments": 0}
	}
	return M{
		"pre_tags":  []any{"<strong>"},
		"post_tags": []any{"</strong>"},
		"fields":    fields,
	}
}
