package elastic

// Response is the raw search engine reply.
type Response struct {
	Took         int                    `json:"took"`
	TimedOut     bool                   `json:"timed_out"`
	Hits         Hits                   `json:"hits"`
	Aggregations map[string]Aggregation `json:"aggregations"`
}

// Hits holds the matched documents and the total hit count.
type Hits struct {
	Total int   `json:"total"`
	Hits  []Hit `json:"hits"`
}

// Hit is one matched document with optional highlighted fragments keyed by
// field name.
type Hit struct {
	ID        string              `json:"_id"`
	Score     float64             `json:"_score"`
	Source    map[string]any      `json:"_source"`
	Highlight map[string][]string `json:"highlight,omitempty"`
}

// Aggregation is a terms-aggregation bucket list.
type Aggregation struct {
	Buckets []Bucket `json:"buckets"`
}

// Bucket is one terms-aggregation bucket.
type Bucket struct {
	Key      string `json:"key"`
	DocCount int    `json:"doc_count"`
}
