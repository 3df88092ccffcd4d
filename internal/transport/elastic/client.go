// Package elastic is a thin JSON-over-HTTP client for the document search
// engine. It ships query documents and decodes raw responses; query
// construction and result interpretation live elsewhere.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/metrics"
)

// Client executes search requests against one engine cluster. It is safe
// for concurrent use and is created once at start-up.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// Config holds the search engine connection settings.
type Config struct {
	Addr       string
	TimeoutSec int
	Logger     *zap.Logger
}

// NewClient creates a search engine client.
func NewClient(cfg Config) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if cfg.TimeoutSec <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.Addr,
		http:    &http.Client{Timeout: timeout},
		logger:  cfg.Logger,
	}
}

// Search executes a query document against an index.
func (c *Client) Search(ctx context.Context, index string, body map[string]any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	url := fmt.Sprintf("%s/%s/_search", c.baseURL, index)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)

	if err != nil {
		metrics.EngineRequestsTotal.WithLabelValues(index, "error").Inc()
		return nil, fmt.Errorf("search %s: %w: %w", index, domain.ErrSearchEngineUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.EngineRequestsTotal.WithLabelValues(index, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.EngineRequestDuration.WithLabelValues(index).Observe(duration.Seconds())

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Error("search engine error",
			zap.String("index", index),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", detail),
		)
		return nil, fmt.Errorf("search %s: engine returned status %d: %w",
			index, resp.StatusCode, domain.ErrSearchEngineUnavailable)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &out, nil
}

// Ping checks engine reachability.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping search engine: %w: %w", domain.ErrSearchEngineUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping search engine: status %d: %w",
			resp.StatusCode, domain.ErrSearchEngineUnavailable)
	}
	return nil
}
