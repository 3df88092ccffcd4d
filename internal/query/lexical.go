package query

// Content index fields matched by the lexical query.
const (
	fieldTitleNoStem     = "description.title.title_no_stem_no_synonyms"
	fieldTitleNoDates    = "description.title.title_no_dates"
	fieldTitle           = "description.title"
	fieldEdition         = "description.edition"
	fieldSummary         = "description.summary"
	fieldMetaDescription = "description.metaDescription"
	fieldKeywords        = "description.keywords"
	fieldCDID            = "description.cdid"
	fieldDatasetID       = "description.datasetId"
	fieldSearchBoost     = "searchBoost"
)

// titleMSM requires all terms for short queries and relaxes gradually:
// every term up to 2, 80% of 3-4 terms, 60% from 5 terms.
const titleMSM = "1<-2 3<80% 5<60%"

// Lexical builds the baseline best-of-strategies query for a raw search
// term: a disjunction-max over six match strategies, from exact boosted
// title matches down to the curated search-boost field.
func Lexical(term string) M {
	return DisMax(
		// Exact-ish title match on the unstemmed and date-free variants.
		M{"multi_match": M{
			"query":                term,
			"fields":               []any{fieldTitleNoStem, fieldTitleNoDates},
			"type":                 "best_fields",
			"boost":                10.0,
			"minimum_should_match": titleMSM,
		}},
		// Title and edition treated as one field.
		M{"multi_match": M{
			"query":  term,
			"fields": []any{fieldTitle, fieldEdition},
			"type":   "cross_fields",
		}},
		// Descriptive prose, requiring most terms to appear.
		M{"multi_match": M{
			"query":                term,
			"fields":               []any{fieldSummary, fieldMetaDescription},
			"type":                 "best_fields",
			"minimum_should_match": "75%",
		}},
		// Curated keywords, all terms required.
		M{"match": M{fieldKeywords: M{
			"query":    term,
			"operator": "AND",
		}}},
		// Identifier lookup, unboosted.
		M{"multi_match": M{
			"query":  term,
			"fields": []any{fieldCDID, fieldDatasetID},
		}},
		// Manually curated boost terms dominate everything else.
		M{"match": M{fieldSearchBoost: M{
			"query":    term,
			"operator": "AND",
			"boost":    100.0,
		}}},
	)
}
