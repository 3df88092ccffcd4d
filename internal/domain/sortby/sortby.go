// Package sortby maps named sort options to fixed field/direction sequences.
package sortby

import (
	"fmt"

	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain"
)

// Named sort options. These are part of the external API.
const (
	Relevance      = "relevance"
	Title          = "title"
	ReleaseDate    = "release_date"
	ReleaseDateAsc = "release_date_asc"
	FirstLetter    = "first_letter"
)

// Field is one sort criterion.
type Field struct {
	Name      string
	Ascending bool
}

// Spec is an ordered sort sequence. Every spec ends with the document URI,
// a unique field, so the total order is deterministic.
type Spec struct {
	Name   string
	Fields []Field
}

// Index field names used for sorting.
const (
	fieldScore       = "_score"
	fieldReleaseDate = "description.releaseDate"
	fieldTitleRaw    = "description.title.title_raw"
	fieldFirstLetter = "description.title.title_first_letter"
	fieldURI         = "uri"
)

var specs = map[string]Spec{
	Relevance: {Name: Relevance, Fields: []Field{
		{Name: fieldScore},
		{Name: fieldReleaseDate},
		{Name: fieldURI, Ascending: true},
	}},
	Title: {Name: Title, Fields: []Field{
		{Name: fieldTitleRaw, Ascending: true},
		{Name: fieldReleaseDate},
		{Name: fieldURI, Ascending: true},
	}},
	ReleaseDate: {Name: ReleaseDate, Fields: []Field{
		{Name: fieldReleaseDate},
		{Name: fieldScore},
		{Name: fieldURI, Ascending: true},
	}},
	ReleaseDateAsc: {Name: ReleaseDateAsc, Fields: []Field{
		{Name: fieldReleaseDate, Ascending: true},
		{Name: fieldScore},
		{Name: fieldURI, Ascending: true},
	}},
	FirstLetter: {Name: FirstLetter, Fields: []Field{
		{Name: fieldFirstLetter, Ascending: true},
		{Name: fieldTitleRaw, Ascending: true},
		{Name: fieldReleaseDate},
		{Name: fieldURI, Ascending: true},
	}},
}

// Resolve maps a named sort option to its Spec. An empty name resolves to
// relevance; an unknown name is an error carrying the offending value.
func Resolve(name string) (Spec, error) {
	if name == "" {
		name = Relevance
	}
	s, ok := specs[name]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", domain.ErrUnknownSortOption, name)
	}
	return s, nil
}
