// Package fasttext is the HTTP client for the embedding microservice. The
// service predicts keyword labels, produces sentence embeddings and finds
// terms near a vector; vectors cross the wire as base64 big-endian
// float64 buffers.
package fasttext

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/metrics"
)

// labelPrefix is prepended to every label by the supervised model.
const labelPrefix = "__label__"

// Client calls the embedding microservice. Safe for concurrent use;
// created once at start-up.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// Config holds embedding service connection settings.
type Config struct {
	Addr       string
	TimeoutSec int
	Logger     *zap.Logger
}

// NewClient creates an embedding service client. Every call gets a bounded
// deadline on top of the caller's context, so a hung upstream cannot stall
// a request indefinitely.
func NewClient(cfg Config) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if cfg.TimeoutSec <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.Addr,
		http:    &http.Client{},
		timeout: timeout,
		logger:  cfg.Logger,
	}
}

// SentenceVector embeds the given text. An empty vector from the service
// means the model cannot represent the text and maps to
// ErrUnknownSearchVector.
func (c *Client) SentenceVector(ctx context.Context, text string) (domain.Vector, error) {
	var out struct {
		Vector string `json:"vector"`
	}
	err := c.post(ctx, "/supervised/sentence_vector", map[string]any{
		"query": text,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Vector == "" {
		return nil, fmt.Errorf("%w: no vector for %q", domain.ErrUnknownSearchVector, text)
	}
	vec, err := domain.DecodeVectorBase64(out.Vector)
	if err != nil {
		return nil, fmt.Errorf("sentence vector: %w", err)
	}
	if vec.IsZero() {
		return nil, fmt.Errorf("%w: zero vector for %q", domain.ErrUnknownSearchVector, text)
	}
	return vec, nil
}

// Predict returns up to k keyword labels for the text with probability at
// or above the threshold.
func (c *Client) Predict(ctx context.Context, text string, k int, threshold float64) ([]domain.Prediction, error) {
	var out struct {
		Labels        []string  `json:"labels"`
		Probabilities []float64 `json:"probabilities"`
	}
	err := c.post(ctx, "/supervised/predict", map[string]any{
		"query":      text,
		"num_labels": k,
		"threshold":  threshold,
	}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Labels) != len(out.Probabilities) {
		return nil, fmt.Errorf("predict: %d labels but %d probabilities",
			len(out.Labels), len(out.Probabilities))
	}

	preds := make([]domain.Prediction, len(out.Labels))
	for i, label := range out.Labels {
		preds[i] = domain.Prediction{
			Label:       strings.TrimPrefix(label, labelPrefix),
			Probability: out.Probabilities[i],
		}
	}
	return preds, nil
}

// SimilarByVector returns up to k terms semantically close to the vector.
func (c *Client) SimilarByVector(ctx context.Context, vec domain.Vector, k int) ([]string, error) {
	var out struct {
		Words []string `json:"words"`
	}
	err := c.post(ctx, "/unsupervised/similar_vector", map[string]any{
		"encoded_vector": vec.EncodeBase64(),
		"num_labels":     k,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Words, nil
}

// Ping checks service reachability.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthcheck", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping embedding service: %w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping embedding service: status %d: %w",
			resp.StatusCode, domain.ErrEmbeddingUnavailable)
	}
	return nil
}

// post sends one JSON request with the per-call deadline and correlation
// header, decoding the response into out.
func (c *Client) post(ctx context.Context, path string, body map[string]any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID(ctx))

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(path, "error").Inc()
		return fmt.Errorf("embedding service %s: %w: %w", path, domain.ErrEmbeddingUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.EmbeddingRequestsTotal.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(path).Observe(duration.Seconds())

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("embedding service error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("embedding service %s: status %d: %w",
			path, resp.StatusCode, domain.ErrEmbeddingUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode embedding response: %w", err)
	}
	return nil
}

// requestID reuses the inbound request's correlation ID when present so the
// embedding service echo can be traced end to end.
func requestID(ctx context.Context) string {
	if id := chiMiddleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
