package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/transport/elastic"
)

type mockEngine struct {
	index string
	body  map[string]any
	resp  *elastic.Response
	err   error
	calls int
}

func (m *mockEngine) Search(_ context.Context, index string, body map[string]any) (*elastic.Response, error) {
	m.calls++
	m.index = index
	m.body = body
	if m.err != nil {
		return nil, m.err
	}
	if m.resp != nil {
		return m.resp, nil
	}
	return &elastic.Response{}, nil
}

type mockEmbedder struct {
	vec      domain.Vector
	preds    []domain.Prediction
	vecErr   error
	predErr  error
	vecCalls int
}

func (m *mockEmbedder) SentenceVector(_ context.Context, _ string) (domain.Vector, error) {
	m.vecCalls++
	return m.vec, m.vecErr
}

func (m *mockEmbedder) Predict(_ context.Context, _ string, _ int, _ float64) ([]domain.Prediction, error) {
	return m.preds, m.predErr
}

func newTestService(engine *mockEngine, embed *mockEmbedder, cfg Config) *Service {
	return New(engine, embed, cfg, "ons", "departments")
}

func TestContent_LexicalOnly(t *testing.T) {
	engine := &mockEngine{}
	embed := &mockEmbedder{}
	svc := newTestService(engine, embed, Config{})

	res, err := svc.Content(context.Background(), Params{Term: "inflation"})
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if engine.index != "ons" {
		t.Errorf("index = %q, want ons", engine.index)
	}
	if embed.vecCalls != 0 {
		t.Error("embedder should not be consulted when semantic search is disabled")
	}
	if res.SortBy != "relevance" {
		t.Errorf("sortBy = %q, want relevance", res.SortBy)
	}

	raw, _ := json.Marshal(engine.body)
	if !strings.Contains(string(raw), `"dis_max"`) {
		t.Errorf("expected lexical dis_max query: %s", raw)
	}
}

func TestContent_SemanticBlend(t *testing.T) {
	engine := &mockEngine{}
	embed := &mockEmbedder{
		vec:   domain.Vector{0.1, 0.2},
		preds: []domain.Prediction{{Label: "cpi", Probability: 0.9}},
	}
	svc := newTestService(engine, embed, Config{SemanticEnabled: true})

	if _, err := svc.Content(context.Background(), Params{Term: "inflation"}); err != nil {
		t.Fatalf("Content: %v", err)
	}
	if embed.vecCalls != 1 {
		t.Fatalf("embedder called %d times, want 1", embed.vecCalls)
	}

	raw, _ := json.Marshal(engine.body)
	for _, want := range []string{
		`"binary_vector_score"`,
		`"exp"`,
		`"weight":100`,
		`"description.keywords.keywords_raw":{"query":"cpi"}`,
	} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("blended query missing %s: %s", want, raw)
		}
	}
}

func TestContent_NonRelevanceSortBypassesSemantic(t *testing.T) {
	engine := &mockEngine{}
	embed := &mockEmbedder{vec: domain.Vector{1}}
	svc := newTestService(engine, embed, Config{SemanticEnabled: true})

	if _, err := svc.Content(context.Background(), Params{Term: "inflation", SortBy: "release_date"}); err != nil {
		t.Fatalf("Content: %v", err)
	}
	if embed.vecCalls != 0 {
		t.Error("semantic blend should be bypassed when not sorting by relevance")
	}
}

func TestContent_MalformedTerm(t *testing.T) {
	svc := newTestService(&mockEngine{}, &mockEmbedder{}, Config{SemanticEnabled: true})

	_, err := svc.Content(context.Background(), Params{Term: "1234 !!"})
	if !errors.Is(err, domain.ErrMalformedSearchTerm) {
		t.Fatalf("expected ErrMalformedSearchTerm, got %v", err)
	}
}

func TestContent_UnknownFilterAndSort(t *testing.T) {
	svc := newTestService(&mockEngine{}, &mockEmbedder{}, Config{})

	_, err := svc.Content(context.Background(), Params{Term: "gdp", Filter: "podcasts"})
	if !errors.Is(err, domain.ErrUnknownTypeFilter) {
		t.Fatalf("expected ErrUnknownTypeFilter, got %v", err)
	}

	_, err = svc.Content(context.Background(), Params{Term: "gdp", SortBy: "popularity"})
	if !errors.Is(err, domain.ErrUnknownSortOption) {
		t.Fatalf("expected ErrUnknownSortOption, got %v", err)
	}
}

func TestContent_WindowLimits(t *testing.T) {
	engine := &mockEngine{}
	svc := newTestService(engine, &mockEmbedder{}, Config{MaxPageSize: 50})

	_, err := svc.Content(context.Background(), Params{Term: "gdp", Size: 51})
	if !errors.Is(err, domain.ErrRequestSizeExceeded) {
		t.Fatalf("expected ErrRequestSizeExceeded for oversized page, got %v", err)
	}

	// from+size beyond the result window is rejected before any query runs.
	_, err = svc.Content(context.Background(), Params{Term: "gdp", Page: 500, Size: 50})
	if !errors.Is(err, domain.ErrRequestSizeExceeded) {
		t.Fatalf("expected ErrRequestSizeExceeded for deep window, got %v", err)
	}
	if engine.calls != 0 {
		t.Errorf("engine called %d times for rejected windows", engine.calls)
	}
}

func TestContent_Pagination(t *testing.T) {
	engine := &mockEngine{resp: &elastic.Response{Hits: elastic.Hits{Total: 95}}}
	svc := newTestService(engine, &mockEmbedder{}, Config{})

	res, err := svc.Content(context.Background(), Params{Term: "gdp", Page: 3, Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	if engine.body["from"] != 20 {
		t.Errorf("from = %v, want 20", engine.body["from"])
	}
	if engine.body["size"] != 10 {
		t.Errorf("size = %v, want 10", engine.body["size"])
	}
	if res.Paginator == nil || res.Paginator.NumberOfPages != 10 {
		t.Errorf("paginator = %+v, want 10 pages", res.Paginator)
	}
	if res.Paginator.CurrentPage != 3 {
		t.Errorf("currentPage = %d, want 3", res.Paginator.CurrentPage)
	}
}

func TestContent_EngineFailure(t *testing.T) {
	engine := &mockEngine{err: fmt.Errorf("%w: refused", domain.ErrSearchEngineUnavailable)}
	svc := newTestService(engine, &mockEmbedder{}, Config{})

	_, err := svc.Content(context.Background(), Params{Term: "gdp"})
	if !errors.Is(err, domain.ErrSearchEngineUnavailable) {
		t.Fatalf("expected ErrSearchEngineUnavailable, got %v", err)
	}
}

func TestTypeCounts(t *testing.T) {
	engine := &mockEngine{resp: &elastic.Response{
		Took: 7,
		Hits: elastic.Hits{Total: 120},
		Aggregations: map[string]elastic.Aggregation{
			"docCounts": {Buckets: []elastic.Bucket{
				{Key: "bulletin", DocCount: 40},
				{Key: "article", DocCount: 25},
			}},
		},
	}}
	svc := newTestService(engine, &mockEmbedder{}, Config{})

	res, err := svc.TypeCounts(context.Background(), "gdp")
	if err != nil {
		t.Fatal(err)
	}
	if engine.body["size"] != 0 {
		t.Errorf("counts query size = %v, want 0", engine.body["size"])
	}
	// Grand total is the bucket sum, not the raw hit total.
	if res.NumberOfResults != 65 {
		t.Errorf("numberOfResults = %d, want 65", res.NumberOfResults)
	}
	if res.DocCounts["bulletin"] != 40 || res.DocCounts["article"] != 25 {
		t.Errorf("docCounts = %v", res.DocCounts)
	}
}

func TestFeatured(t *testing.T) {
	engine := &mockEngine{resp: &elastic.Response{Hits: elastic.Hits{
		Total: 3,
		Hits:  []elastic.Hit{{Source: map[string]any{"uri": "/economy"}}},
	}}}
	svc := newTestService(engine, &mockEmbedder{}, Config{})

	res, err := svc.Featured(context.Background(), "gdp")
	if err != nil {
		t.Fatal(err)
	}
	if engine.body["size"] != 1 {
		t.Errorf("featured query size = %v, want 1", engine.body["size"])
	}
	if len(res.Results) != 1 || res.Results[0]["uri"] != "/economy" {
		t.Errorf("results = %v", res.Results)
	}
}

func TestDepartments(t *testing.T) {
	engine := &mockEngine{}
	svc := newTestService(engine, &mockEmbedder{}, Config{})

	if _, err := svc.Departments(context.Background(), "health"); err != nil {
		t.Fatal(err)
	}
	if engine.index != "departments" {
		t.Errorf("index = %q, want departments", engine.index)
	}
}
