package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/repository/session"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/transport/elastic"
	healthuc "github.com/flaxandteal/dp-conceptual-search-sub000/internal/usecase/health"
	personalizeuc "github.com/flaxandteal/dp-conceptual-search-sub000/internal/usecase/personalize"
	recommenduc "github.com/flaxandteal/dp-conceptual-search-sub000/internal/usecase/recommend"
	searchuc "github.com/flaxandteal/dp-conceptual-search-sub000/internal/usecase/search"
)

type stubEngine struct {
	resp *elastic.Response
	err  error
}

func (s *stubEngine) Search(_ context.Context, _ string, _ map[string]any) (*elastic.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.resp != nil {
		return s.resp, nil
	}
	return &elastic.Response{}, nil
}

type stubEmbedder struct {
	vec domain.Vector
}

func (s *stubEmbedder) SentenceVector(context.Context, string) (domain.Vector, error) {
	return s.vec, nil
}

func (s *stubEmbedder) Predict(context.Context, string, int, float64) ([]domain.Prediction, error) {
	return nil, nil
}

func (s *stubEmbedder) SimilarByVector(context.Context, domain.Vector, int) ([]string, error) {
	return []string{"gdp"}, nil
}

type stubSessions struct {
	records map[string]session.Record
}

func (s *stubSessions) Session(_ context.Context, id string) (session.Record, error) {
	rec, ok := s.records[id]
	if !ok {
		return session.Record{}, fmt.Errorf("%w: %q", domain.ErrSessionNotFound, id)
	}
	return rec, nil
}

func (s *stubSessions) SaveSession(_ context.Context, rec session.Record) error {
	if s.records == nil {
		s.records = map[string]session.Record{}
	}
	s.records[rec.ID] = rec
	return nil
}

func (s *stubSessions) UserSessions(context.Context, string) ([]session.Record, error) {
	return nil, nil
}

type stubDocs struct {
	vec domain.Vector
	err error
}

func (s *stubDocs) Embedding(context.Context, string) (domain.Vector, error) {
	return s.vec, s.err
}

type stubPinger struct{ err error }

func (s *stubPinger) Ping(context.Context) error { return s.err }

func newTestRouter(engine *stubEngine, docs *stubDocs, healthy bool) *chi.Mux {
	embed := &stubEmbedder{vec: domain.Vector{0.1, 0.2}}
	searchSvc := searchuc.New(engine, embed, searchuc.Config{}, "ons", "departments")
	personalizeSvc := personalizeuc.New(&stubSessions{}, embed, docs, 0.25)
	recommendSvc := recommenduc.New(engine, embed, docs, personalizeSvc, recommenduc.Config{}, "ons")

	var pingErr error
	if !healthy {
		pingErr = fmt.Errorf("connection refused")
	}
	healthSvc := healthuc.New(healthuc.Check{Name: "elasticsearch", Pinger: &stubPinger{err: pingErr}})

	server := NewServer(searchSvc, recommendSvc, personalizeSvc, healthSvc, zap.NewNop())
	r := chi.NewRouter()
	server.Register(r)
	return r
}

func doRequest(t *testing.T, r *chi.Mux, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSearch_OK(t *testing.T) {
	engine := &stubEngine{resp: &elastic.Response{
		Took: 5,
		Hits: elastic.Hits{Total: 1, Hits: []elastic.Hit{{Source: map[string]any{"uri": "/economy"}}}},
	}}
	r := newTestRouter(engine, &stubDocs{}, true)

	rec := doRequest(t, r, http.MethodGet, "/search?q=inflation", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var res searchuc.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.NumberOfResults != 1 || res.Took != 5 {
		t.Errorf("result = %+v", res)
	}
}

func TestSearch_MissingTerm(t *testing.T) {
	r := newTestRouter(&stubEngine{}, &stubDocs{}, true)

	rec := doRequest(t, r, http.MethodGet, "/search", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSearch_UnknownFilter(t *testing.T) {
	r := newTestRouter(&stubEngine{}, &stubDocs{}, true)

	rec := doRequest(t, r, http.MethodGet, "/search?q=gdp&filter=podcasts", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Code != codeUnknownFilter {
		t.Errorf("code = %q", body.Code)
	}
	if !strings.Contains(body.Message, "podcasts") {
		t.Errorf("message should name the offending filter: %q", body.Message)
	}
}

func TestSearch_EngineDown(t *testing.T) {
	engine := &stubEngine{err: fmt.Errorf("%w: refused", domain.ErrSearchEngineUnavailable)}
	r := newTestRouter(engine, &stubDocs{}, true)

	rec := doRequest(t, r, http.MethodGet, "/search?q=gdp", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "refused") {
		t.Error("upstream detail must not leak to clients")
	}
}

func TestRecommend_OK(t *testing.T) {
	r := newTestRouter(&stubEngine{}, &stubDocs{vec: domain.Vector{0.1, 0.2}}, true)

	rec := doRequest(t, r, http.MethodGet, "/recommend/economy/gdp?count=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestRecommend_UnknownDocument(t *testing.T) {
	docs := &stubDocs{err: fmt.Errorf("%w: /nope", domain.ErrDocumentNotFound)}
	r := newTestRouter(&stubEngine{}, docs, true)

	rec := doRequest(t, r, http.MethodGet, "/recommend/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRecordInterest_Term(t *testing.T) {
	r := newTestRouter(&stubEngine{}, &stubDocs{}, true)

	rec := doRequest(t, r, http.MethodPost, "/interests",
		`{"sessionId":"s1","userId":"u1","term":"inflation"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestRecordInterest_Validation(t *testing.T) {
	r := newTestRouter(&stubEngine{}, &stubDocs{}, true)

	cases := []struct {
		name string
		body string
	}{
		{"missing session", `{"term":"inflation"}`},
		{"both term and uri", `{"sessionId":"s1","term":"a","uri":"/b"}`},
		{"neither term nor uri", `{"sessionId":"s1"}`},
		{"bad sentiment", `{"sessionId":"s1","term":"a","sentiment":"meh"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, r, http.MethodPost, "/interests", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d", rec.Code)
			}
		})
	}
}

func TestUserVector_Empty(t *testing.T) {
	r := newTestRouter(&stubEngine{}, &stubDocs{}, true)

	rec := doRequest(t, r, http.MethodGet, "/users/u1/vector", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var res userVectorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.UserID != "u1" || res.Dimensions != 0 || res.Vector != "" {
		t.Errorf("response = %+v", res)
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&stubEngine{}, &stubDocs{}, true)
	rec := doRequest(t, r, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	r = newTestRouter(&stubEngine{}, &stubDocs{}, false)
	rec = doRequest(t, r, http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}
