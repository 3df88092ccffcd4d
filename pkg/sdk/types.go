package sdk

import "fmt"

// Result is a search or recommendation response.
type Result struct {
	NumberOfResults int              `json:"numberOfResults"`
	Took            int              `json:"took"`
	Results         []map[string]any `json:"results"`
	DocCounts       map[string]int   `json:"docCounts,omitempty"`
	Paginator       *Paginator       `json:"paginator,omitempty"`
	SortBy          string           `json:"sortBy,omitempty"`
}

// Paginator is the visible page window for a result set.
type Paginator struct {
	NumberOfPages int   `json:"numberOfPages"`
	CurrentPage   int   `json:"currentPage"`
	Start         int   `json:"start"`
	End           int   `json:"end"`
	Pages         []int `json:"pages"`
}

// Interest is one recorded interest event. Exactly one of Term or URI must
// be set. Sentiment is "positive" (default) or "negative".
type Interest struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId,omitempty"`
	Term      string `json:"term,omitempty"`
	URI       string `json:"uri,omitempty"`
	Sentiment string `json:"sentiment,omitempty"`
}

// UserVector is a user's durable interest vector, base64-encoded.
type UserVector struct {
	UserID     string `json:"userId"`
	Vector     string `json:"vector,omitempty"`
	Dimensions int    `json:"dimensions"`
}

// Health is the aggregate dependency health report.
type Health struct {
	Healthy bool              `json:"healthy"`
	Checks  map[string]string `json:"checks"`
}

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("search api: %d %s: %s", e.StatusCode, e.Code, e.Message)
}
