// Package sdk is a typed HTTP client for the search API.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client is the search API SDK entry point. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures the Client.
type Option interface {
	apply(*Client)
}

type optionFunc func(*Client)

func (f optionFunc) apply(c *Client) { f(c) }

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return optionFunc(func(c *Client) {
		c.http = h
	})
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *Client) {
		c.http.Timeout = d
	})
}

// New creates a search API client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o.apply(c)
	}
	return c
}

// SearchOption refines a search request.
type SearchOption interface {
	apply(url.Values)
}

type searchOptionFunc func(url.Values)

func (f searchOptionFunc) apply(v url.Values) { f(v) }

// WithFilter restricts results to a named content-type group.
func WithFilter(group string) SearchOption {
	return searchOptionFunc(func(v url.Values) {
		v.Set("filter", group)
	})
}

// WithSort orders results by a named sort option.
func WithSort(sort string) SearchOption {
	return searchOptionFunc(func(v url.Values) {
		v.Set("sort", sort)
	})
}

// WithPage requests a specific result page.
func WithPage(page int) SearchOption {
	return searchOptionFunc(func(v url.Values) {
		v.Set("page", strconv.Itoa(page))
	})
}

// WithPageSize sets the result page size.
func WithPageSize(size int) SearchOption {
	return searchOptionFunc(func(v url.Values) {
		v.Set("size", strconv.Itoa(size))
	})
}

// Search runs a content search for the given term.
func (c *Client) Search(ctx context.Context, term string, opts ...SearchOption) (*Result, error) {
	params := url.Values{"q": []string{term}}
	for _, o := range opts {
		o.apply(params)
	}
	var res Result
	if err := c.get(ctx, "/search", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// TypeCounts returns per-content-type document counts for the term.
func (c *Client) TypeCounts(ctx context.Context, term string) (*Result, error) {
	var res Result
	if err := c.get(ctx, "/search/counts", url.Values{"q": []string{term}}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Featured returns the single best product-page result for the term.
func (c *Client) Featured(ctx context.Context, term string) (*Result, error) {
	var res Result
	if err := c.get(ctx, "/search/featured", url.Values{"q": []string{term}}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Departments searches the departments index for the term.
func (c *Client) Departments(ctx context.Context, term string) (*Result, error) {
	var res Result
	if err := c.get(ctx, "/search/departments", url.Values{"q": []string{term}}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Recommend returns documents similar to the one at uri. userID is
// optional; when set the user's interest vector influences ranking.
func (c *Client) Recommend(ctx context.Context, uri string, count int, userID string) (*Result, error) {
	params := url.Values{}
	if count > 0 {
		params.Set("count", strconv.Itoa(count))
	}
	if userID != "" {
		params.Set("user_id", userID)
	}
	var res Result
	if err := c.get(ctx, "/recommend"+uri, params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// RecordInterest reports an interest event for a session.
func (c *Client) RecordInterest(ctx context.Context, interest Interest) error {
	body, err := json.Marshal(interest)
	if err != nil {
		return fmt.Errorf("sdk: marshal interest: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/interests", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sdk: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sdk: record interest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return apiError(resp)
	}
	return nil
}

// UserVector returns the user's durable interest vector.
func (c *Client) UserVector(ctx context.Context, userID string) (*UserVector, error) {
	var res UserVector
	if err := c.get(ctx, "/users/"+url.PathEscape(userID)+"/vector", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Health reports the service's dependency health.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("sdk: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sdk: health: %w", err)
	}
	defer resp.Body.Close()

	// 503 still carries the per-check body.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return nil, apiError(resp)
	}

	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, fmt.Errorf("sdk: decode health: %w", err)
	}
	return &h, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("sdk: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sdk: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("sdk: decode %s response: %w", path, err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
		apiErr.Message = resp.Status
	}
	return apiErr
}
