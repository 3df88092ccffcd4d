// Package chi exposes the search API over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain"
	healthuc "github.com/flaxandteal/dp-conceptual-search-sub000/internal/usecase/health"
	personalizeuc "github.com/flaxandteal/dp-conceptual-search-sub000/internal/usecase/personalize"
	recommenduc "github.com/flaxandteal/dp-conceptual-search-sub000/internal/usecase/recommend"
	searchuc "github.com/flaxandteal/dp-conceptual-search-sub000/internal/usecase/search"
)

// Error codes returned to API clients.
const (
	codeBadRequest          = "bad_request"
	codeMalformedTerm       = "malformed_search_term"
	codeUnknownFilter       = "unknown_type_filter"
	codeUnknownSort         = "unknown_sort_option"
	codeSizeExceeded        = "request_size_exceeded"
	codeNotFound            = "not_found"
	codeAmbiguousDocument   = "ambiguous_document"
	codeUpstreamUnavailable = "upstream_unavailable"
	codeInternalError       = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server routes API requests to the search, recommendation and
// personalization services.
type Server struct {
	search        *searchuc.Service
	recommend     *recommenduc.Service
	personalize   *personalizeuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	recommend *recommenduc.Service,
	personalize *personalizeuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:      search,
		recommend:   recommend,
		personalize: personalize,
		health:      health,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		// Client errors carry the offending value; the sentinels are built
		// by this service, never from upstream payloads.
		detailedHandler(domain.ErrMalformedSearchTerm, http.StatusBadRequest, codeMalformedTerm),
		detailedHandler(domain.ErrUnknownTypeFilter, http.StatusBadRequest, codeUnknownFilter),
		detailedHandler(domain.ErrUnknownSortOption, http.StatusBadRequest, codeUnknownSort),
		detailedHandler(domain.ErrRequestSizeExceeded, http.StatusBadRequest, codeSizeExceeded),
		detailedHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeBadRequest),
		detailedHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeNotFound),
		detailedHandler(domain.ErrSessionNotFound, http.StatusNotFound, codeNotFound),
		detailedHandler(domain.ErrAmbiguousDocument, http.StatusConflict, codeAmbiguousDocument),
		// Upstream failures expose no detail.
		genericHandler(domain.ErrUnknownSearchVector, http.StatusBadGateway, codeUpstreamUnavailable),
		genericHandler(domain.ErrEmbeddingUnavailable, http.StatusBadGateway, codeUpstreamUnavailable),
		genericHandler(domain.ErrSearchEngineUnavailable, http.StatusBadGateway, codeUpstreamUnavailable),
	}
	return s
}

// Register mounts all API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/search", s.Search)
	r.Get("/search/counts", s.TypeCounts)
	r.Get("/search/featured", s.Featured)
	r.Get("/search/departments", s.Departments)
	r.Get("/recommend/*", s.Recommend)
	r.Post("/interests", s.RecordInterest)
	r.Get("/users/{userID}/vector", s.UserVector)
	r.Get("/health", s.Health)
	r.Get("/metrics", s.Metrics)
}

// Search handles GET /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	term, ok := requireTerm(w, r)
	if !ok {
		return
	}

	res, err := s.search.Content(r.Context(), searchuc.Params{
		Term:   term,
		Filter: r.URL.Query().Get("filter"),
		SortBy: r.URL.Query().Get("sort"),
		Page:   queryInt(r, "page"),
		Size:   queryInt(r, "size"),
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// TypeCounts handles GET /search/counts.
func (s *Server) TypeCounts(w http.ResponseWriter, r *http.Request) {
	term, ok := requireTerm(w, r)
	if !ok {
		return
	}

	res, err := s.search.TypeCounts(r.Context(), term)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Featured handles GET /search/featured.
func (s *Server) Featured(w http.ResponseWriter, r *http.Request) {
	term, ok := requireTerm(w, r)
	if !ok {
		return
	}

	res, err := s.search.Featured(r.Context(), term)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Departments handles GET /search/departments.
func (s *Server) Departments(w http.ResponseWriter, r *http.Request) {
	term, ok := requireTerm(w, r)
	if !ok {
		return
	}

	res, err := s.search.Departments(r.Context(), term)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Recommend handles GET /recommend/{uri}. The target uri is the wildcard
// remainder of the path, so document uris containing slashes work
// unescaped.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	uri := "/" + chi.URLParam(r, "*")
	if uri == "/" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "target document uri is required")
		return
	}

	res, err := s.recommend.Similar(r.Context(), uri, queryInt(r, "count"), r.URL.Query().Get("user_id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// interestRequest is the POST /interests body. Exactly one of term or uri
// must be set.
type interestRequest struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Term      string `json:"term,omitempty"`
	URI       string `json:"uri,omitempty"`
	Sentiment string `json:"sentiment,omitempty"`
}

// RecordInterest handles POST /interests.
func (s *Server) RecordInterest(w http.ResponseWriter, r *http.Request) {
	var req interestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "sessionId is required")
		return
	}
	if (req.Term == "") == (req.URI == "") {
		writeError(w, http.StatusBadRequest, codeBadRequest, "exactly one of term or uri is required")
		return
	}

	positive := true
	switch strings.ToLower(req.Sentiment) {
	case "", "positive":
	case "negative":
		positive = false
	default:
		writeError(w, http.StatusBadRequest, codeBadRequest, "sentiment must be positive or negative")
		return
	}

	var err error
	if req.Term != "" {
		err = s.personalize.RecordTerm(r.Context(), req.UserID, req.SessionID, req.Term, positive)
	} else {
		err = s.personalize.RecordDocument(r.Context(), req.UserID, req.SessionID, req.URI, positive)
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// userVectorResponse is the GET /users/{userID}/vector body.
type userVectorResponse struct {
	UserID     string `json:"userId"`
	Vector     string `json:"vector,omitempty"`
	Dimensions int    `json:"dimensions"`
}

// UserVector handles GET /users/{userID}/vector.
func (s *Server) UserVector(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	vec, err := s.personalize.UserVector(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := userVectorResponse{UserID: userID, Dimensions: len(vec)}
	if !vec.IsZero() {
		resp.Vector = vec.EncodeBase64()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	status := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if !status.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, status)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func requireTerm(w http.ResponseWriter, r *http.Request) (string, bool) {
	term := r.URL.Query().Get("q")
	if term == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "query parameter q is required")
		return "", false
	}
	return term, true
}

func queryInt(r *http.Request, name string) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// detailedHandler returns an errorHandler that exposes the sentinel's full
// message, including the offending value.
func detailedHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

// genericHandler returns an errorHandler that hides upstream detail from
// the client.
func genericHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
