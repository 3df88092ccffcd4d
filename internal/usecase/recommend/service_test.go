package recommend

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
}

func (m *mockEngine) Search(_ context.Context, index string, body map[string]any) (*elastic.Response, error) {
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
	labels []string
	err    error
	gotVec domain.Vector
	gotK   int
}

func (m *mockEmbedder) SimilarByVector(_ context.Context, vec domain.Vector, k int) ([]string, error) {
	m.gotVec = vec
	m.gotK = k
	return m.labels, m.err
}

type mockDocs struct {
	vec domain.Vector
	err error
}

func (m *mockDocs) Embedding(_ context.Context, _ string) (domain.Vector, error) {
	return m.vec, m.err
}

type mockUsers struct {
	vec    domain.Vector
	err    error
	called int
}

func (m *mockUsers) UserVector(_ context.Context, _ string) (domain.Vector, error) {
	m.called++
	return m.vec, m.err
}

func TestSimilar_ExcludesTargetURI(t *testing.T) {
	engine := &mockEngine{}
	embed := &mockEmbedder{labels: []string{"gdp", "trade"}}
	docs := &mockDocs{vec: domain.Vector{0.1, 0.2}}
	svc := New(engine, embed, docs, &mockUsers{}, Config{}, "ons")

	if _, err := svc.Similar(context.Background(), "/economy/gdp", 5, ""); err != nil {
		t.Fatalf("Similar: %v", err)
	}

	raw, err := json.Marshal(engine.body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"must_not":[{"term":{"uri":"/economy/gdp"}}]`) {
		t.Errorf("query does not exclude the target document: %s", raw)
	}
	if engine.index != "ons" {
		t.Errorf("index = %q, want ons", engine.index)
	}
	if engine.body["size"] != 5 {
		t.Errorf("size = %v, want 5", engine.body["size"])
	}
}

func TestSimilar_DefaultsSizeAndLabels(t *testing.T) {
	engine := &mockEngine{}
	embed := &mockEmbedder{labels: []string{"gdp"}}
	svc := New(engine, embed, &mockDocs{vec: domain.Vector{1}}, &mockUsers{}, Config{}, "ons")

	if _, err := svc.Similar(context.Background(), "/a", 0, ""); err != nil {
		t.Fatal(err)
	}
	if embed.gotK != 10 {
		t.Errorf("expansion labels requested = %d, want 10", embed.gotK)
	}
	if engine.body["size"] != defaultResultSize {
		t.Errorf("size = %v, want %d", engine.body["size"], defaultResultSize)
	}
}

func TestSimilar_BlendsUserVector(t *testing.T) {
	engine := &mockEngine{}
	embed := &mockEmbedder{labels: []string{"gdp"}}
	users := &mockUsers{vec: domain.Vector{0.3, 0.7}}
	svc := New(engine, embed, &mockDocs{vec: domain.Vector{0.1, 0.2}}, users, Config{}, "ons")

	if _, err := svc.Similar(context.Background(), "/a", 3, "user-1"); err != nil {
		t.Fatal(err)
	}
	if users.called != 1 {
		t.Fatalf("UserVector called %d times, want 1", users.called)
	}

	raw, _ := json.Marshal(engine.body)
	if !strings.Contains(string(raw), `"boost_mode":"avg"`) {
		t.Errorf("user-blended query should average function scores: %s", raw)
	}
}

func TestSimilar_AnonymousCallerSkipsUserVector(t *testing.T) {
	engine := &mockEngine{}
	users := &mockUsers{vec: domain.Vector{0.3, 0.7}}
	svc := New(engine, &mockEmbedder{}, &mockDocs{vec: domain.Vector{1, 2}}, users, Config{}, "ons")

	if _, err := svc.Similar(context.Background(), "/a", 3, ""); err != nil {
		t.Fatal(err)
	}
	if users.called != 0 {
		t.Errorf("UserVector called %d times for anonymous caller", users.called)
	}

	raw, _ := json.Marshal(engine.body)
	if !strings.Contains(string(raw), `"boost_mode":"replace"`) {
		t.Errorf("anonymous query should keep boost mode replace: %s", raw)
	}
}

func TestSimilar_UnknownDocument(t *testing.T) {
	docs := &mockDocs{err: fmt.Errorf("%w: /nope", domain.ErrDocumentNotFound)}
	svc := New(&mockEngine{}, &mockEmbedder{}, docs, &mockUsers{}, Config{}, "ons")

	_, err := svc.Similar(context.Background(), "/nope", 3, "")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestSimilar_EngineFailure(t *testing.T) {
	engine := &mockEngine{err: fmt.Errorf("%w: refused", domain.ErrSearchEngineUnavailable)}
	svc := New(engine, &mockEmbedder{}, &mockDocs{vec: domain.Vector{1}}, &mockUsers{}, Config{}, "ons")

	_, err := svc.Similar(context.Background(), "/a", 3, "")
	if !errors.Is(err, domain.ErrSearchEngineUnavailable) {
		t.Fatalf("expected ErrSearchEngineUnavailable, got %v", err)
	}
}
