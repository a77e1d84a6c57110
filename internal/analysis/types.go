package analysis

import (
	"github.com/google/uuid"

	"github.com/ergolab/human-factors-backend/internal/ergo"
	"github.com/ergolab/human-factors-backend/internal/insight"
)

// Capture is one uploaded image together with its client-side filename. The
// name travels through batch results so callers can correlate outcomes with
// their inputs.
type Capture struct {
	Name  string
	Image []byte
}

// Result is the outcome of one single-capture analysis.
type Result struct {
	ID        uuid.UUID       `json:"analysis_id"`
	Metrics   *ergo.Report    `json:"metrics"`
	Insights  *insight.Bundle `json:"llm_insights,omitempty"`
	NumPeople int             `json:"num_people"`
}

// ItemResult is one entry of a batch outcome. Exactly one of Metrics or Err
// is set: a failed item carries its error description in place of metrics and
// never disturbs its neighbors.
type ItemResult struct {
	Filename  string       `json:"filename"`
	Metrics   *ergo.Report `json:"metrics,omitempty"`
	NumPeople int          `json:"num_people,omitempty"`
	Err       string       `json:"error,omitempty"`
}

// BatchResult is the aggregate outcome of a batch analysis. Results holds one
// entry per submitted capture, in submission order.
type BatchResult struct {
	ID                 uuid.UUID    `json:"batch_id"`
	TotalImages        int          `json:"total_images"`
	SuccessfulAnalyses int          `json:"successful_analyses"`
	Results            []ItemResult `json:"results"`
	ResearchSummary    string       `json:"research_summary,omitempty"`
}

// ComparisonResult is the outcome of a longitudinal comparison.
type ComparisonResult struct {
	ID             uuid.UUID          `json:"comparison_id"`
	CurrentMetrics *ergo.Report       `json:"current_metrics"`
	PreviousCount  int                `json:"previous_count"`
	Comparison     insight.Comparison `json:"comparison"`
}
