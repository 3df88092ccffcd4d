// Package content defines the searchable content types and the named
// filter groups exposed to callers.
package content

import (
	"fmt"

	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain"
)

// Type is a searchable document type with a relevance weight. Weights are
// empirically tuned per type; 1.0 means no adjustment.
type Type struct {
	Name   string
	Weight float64
}

// Content types known to the search index.
var (
	Bulletin                = Type{Name: "bulletin", Weight: 1.55}
	Article                 = Type{Name: "article", Weight: 1.30}
	ArticleDownload         = Type{Name: "article_download", Weight: 1.30}
	CompendiumLandingPage   = Type{Name: "compendium_landing_page", Weight: 1.30}
	StaticAdhoc             = Type{Name: "static_adhoc", Weight: 1.25}
	DatasetLandingPage      = Type{Name: "dataset_landing_page", Weight: 1.35}
	Timeseries              = Type{Name: "timeseries", Weight: 1.10}
	TimeseriesDataset       = Type{Name: "timeseries_dataset", Weight: 1.0}
	ReferenceTables         = Type{Name: "reference_tables", Weight: 1.0}
	StaticMethodology       = Type{Name: "static_methodology", Weight: 1.0}
	StaticMethodologyDl     = Type{Name: "static_methodology_download", Weight: 1.0}
	StaticQMI               = Type{Name: "static_qmi", Weight: 1.0}
	ProductPage             = Type{Name: "product_page", Weight: 1.0}
)

// Named filter group identifiers. These are part of the external API.
const (
	GroupAll               = "all"
	GroupPublications      = "publications"
	GroupDatasets          = "datasets"
	GroupBulletins         = "bulletins"
	GroupArticles          = "articles"
	GroupTimeSeries        = "time_series"
	GroupUserRequestedData = "user_requested_data"
	GroupMethodology       = "methodology"
	GroupProductPages      = "product_pages"
)

// Group is an ordered set of content types used both as a hard filter and
// as relevance-weighting input.
type Group []Type

var groups = map[string]Group{
	GroupAll: {
		Bulletin, Article, ArticleDownload, CompendiumLandingPage,
		StaticAdhoc, DatasetLandingPage, Timeseries, TimeseriesDataset,
		ReferenceTables, StaticMethodology, StaticMethodologyDl, StaticQMI,
		ProductPage,
	},
	GroupPublications:      {Bulletin, Article, ArticleDownload, CompendiumLandingPage},
	GroupDatasets:          {DatasetLandingPage, TimeseriesDataset, ReferenceTables},
	GroupBulletins:         {Bulletin},
	GroupArticles:          {Article, ArticleDownload},
	GroupTimeSeries:        {Timeseries},
	GroupUserRequestedData: {StaticAdhoc},
	GroupMethodology:       {StaticMethodology, StaticMethodologyDl, StaticQMI},
	GroupProductPages:      {ProductPage},
}

// ResolveGroup maps a named filter to its content types. An empty name
// resolves to the default "all" group; an unknown name is an error carrying
// the offending value.
func ResolveGroup(name string) (Group, error) {
	if name == "" {
		name = GroupAll
	}
	g, ok := groups[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTypeFilter, name)
	}
	return g, nil
}

// Names returns the type discriminator values, in group order.
func (g Group) Names() []string {
	names := make([]string, len(g))
	for i, t := range g {
		names[i] = t.Name
	}
	return names
}

// Weighted returns the types whose relevance weight differs from 1.0,
// in group order.
func (g Group) Weighted() []Type {
	var out []Type
	for _, t := range g {
		if t.Weight != 0 && t.Weight != 1.0 {
			out = append(out, t)
		}
	}
	return out
}
