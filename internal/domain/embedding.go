package domain

// Prediction is one predicted keyword label with its confidence, as
// returned by the embedding service's supervised model.
type Prediction struct {
	Label       string
	Probability float64
}

// Labels extracts the label names from predictions, preserving order.
func Labels(preds []Prediction) []string {
	labels := make([]string, len(preds))
	for i, p := range preds {
		labels[i] = p.Label
	}
	return labels
}
