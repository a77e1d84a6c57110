// Package analysis is the orchestration layer: it chains pose estimation,
// metric computation, and narrative insight generation into the operations
// the HTTP handlers expose. The package owns the partial-failure policy for
// multi-capture work: one bad capture degrades its own slot, never the run.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ergolab/human-factors-backend/internal/ergo"
	"github.com/ergolab/human-factors-backend/internal/insight"
	"github.com/ergolab/human-factors-backend/internal/pose"
)

// defaultConcurrency bounds parallel pose-estimation calls per batch.
const defaultConcurrency = 4

// Insights is the slice of the narrative layer this package consumes.
// *insight.Orchestrator satisfies it.
type Insights interface {
	Generate(ctx context.Context, report *ergo.Report, contextText string) *insight.Bundle
	ResearchSummary(ctx context.Context, reports []*ergo.Report, studyContext string) (string, error)
	Compare(ctx context.Context, current *ergo.Report, previous []*ergo.Report, timePeriod string) insight.Comparison
}

// Config tunes the service.
type Config struct {
	// Concurrency caps how many captures a batch processes at once.
	// Zero or negative selects the default.
	Concurrency int
}

// Service wires the pipeline stages together.
type Service struct {
	estimator   pose.Estimator
	analyzer    *ergo.Analyzer
	insights    Insights
	concurrency int
	logger      *slog.Logger
}

// NewService constructs the pipeline service.
func NewService(estimator pose.Estimator, analyzer *ergo.Analyzer, insights Insights, cfg Config, logger *slog.Logger) *Service {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Service{
		estimator:   estimator,
		analyzer:    analyzer,
		insights:    insights,
		concurrency: concurrency,
		logger:      logger,
	}
}

// AnalyzeFrame scores an already-estimated pose frame. wantInsights controls
// whether the narrative layer runs; a degraded narrative still yields a
// complete result.
func (s *Service) AnalyzeFrame(ctx context.Context, frame *pose.Frame, contextText string, wantInsights bool) (*Result, error) {
	report, err := s.analyzer.AnalyzePosture(frame)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ID:        uuid.New(),
		Metrics:   report,
		NumPeople: 1,
	}
	if wantInsights {
		result.Insights = s.insights.Generate(ctx, report, contextText)
	}
	return result, nil
}

// AnalyzeImage runs the full chain for one capture: estimation, metrics, and
// optional insights. When the estimator finds several people, the first
// detection is scored; NumPeople records how many were seen.
func (s *Service) AnalyzeImage(ctx context.Context, image []byte, contextText string, wantInsights bool) (*Result, error) {
	report, numPeople, err := s.estimateAndScore(ctx, image)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ID:        uuid.New(),
		Metrics:   report,
		NumPeople: numPeople,
	}
	if wantInsights {
		result.Insights = s.insights.Generate(ctx, report, contextText)
	}

	s.logger.Info("analysis: capture scored",
		"analysis_id", result.ID,
		"num_people", numPeople,
		"overall_risk", report.RiskAssessment.OverallRisk,
	)
	return result, nil
}

// estimateAndScore is the shared estimation-then-metrics chain.
func (s *Service) estimateAndScore(ctx context.Context, image []byte) (*ergo.Report, int, error) {
	frames, err := s.estimator.Estimate(ctx, image)
	if err != nil {
		return nil, 0, err
	}
	if len(frames) == 0 {
		return nil, 0, pose.ErrNoDetection
	}

	report, err := s.analyzer.AnalyzePosture(&frames[0])
	if err != nil {
		return nil, 0, err
	}
	return report, len(frames), nil
}

// BatchOptions tunes a batch run.
type BatchOptions struct {
	// StudyContext is embedded in the research summary prompt.
	StudyContext string

	// WantSummary requests an aggregate research summary over the
	// successful items.
	WantSummary bool
}

// AnalyzeBatch scores every capture, at most s.concurrency at a time. Items
// fail independently: each capture's slot in the result carries either its
// metrics or its error, in submission order. When requested, a research
// summary is generated over the successes; with zero successes the summary is
// skipped, and a summary failure is reported in place of the summary text so
// the per-item results always survive.
func (s *Service) AnalyzeBatch(ctx context.Context, captures []Capture, opts BatchOptions) *BatchResult {
	batch := &BatchResult{
		ID:          uuid.New(),
		TotalImages: len(captures),
		Results:     make([]ItemResult, len(captures)),
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.concurrency)

	for i, capture := range captures {
		if ctx.Err() != nil {
			for j := i; j < len(captures); j++ {
				batch.Results[j] = ItemResult{Filename: captures[j].Name, Err: ctx.Err().Error()}
			}
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, c Capture) {
			defer wg.Done()
			defer func() { <-sem }()

			report, numPeople, err := s.estimateAndScore(ctx, c.Image)
			if err != nil {
				batch.Results[idx] = ItemResult{Filename: c.Name, Err: itemError(err)}
				return
			}
			batch.Results[idx] = ItemResult{Filename: c.Name, Metrics: report, NumPeople: numPeople}
		}(i, capture)
	}
	wg.Wait()

	var succeeded []*ergo.Report
	for _, item := range batch.Results {
		if item.Err == "" {
			succeeded = append(succeeded, item.Metrics)
			batch.SuccessfulAnalyses++
		}
	}

	s.logger.Info("analysis: batch complete",
		"batch_id", batch.ID,
		"total", batch.TotalImages,
		"succeeded", batch.SuccessfulAnalyses,
	)

	if opts.WantSummary && batch.SuccessfulAnalyses > 0 {
		summary, err := s.insights.ResearchSummary(ctx, succeeded, opts.StudyContext)
		if err != nil {
			s.logger.Warn("analysis: research summary failed", "batch_id", batch.ID, "error", err)
			batch.ResearchSummary = "Summary generation failed: " + err.Error()
		} else {
			batch.ResearchSummary = summary
		}
	}

	return batch
}

// Compare scores the current capture and a series of previous ones, then
// generates the longitudinal narrative. A failure on the current capture is
// terminal; previous captures are best-effort, with failed ones dropped and
// the survivors kept in submission order.
func (s *Service) Compare(ctx context.Context, current Capture, previous []Capture, timePeriod string) (*ComparisonResult, error) {
	currentReport, _, err := s.estimateAndScore(ctx, current.Image)
	if err != nil {
		return nil, fmt.Errorf("current image: %w", err)
	}

	slots := make([]*ergo.Report, len(previous))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.concurrency)

	for i, capture := range previous {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, c Capture) {
			defer wg.Done()
			defer func() { <-sem }()

			report, _, err := s.estimateAndScore(ctx, c.Image)
			if err != nil {
				s.logger.Warn("analysis: previous capture skipped", "filename", c.Name, "error", err)
				return
			}
			slots[idx] = report
		}(i, capture)
	}
	wg.Wait()

	previousReports := make([]*ergo.Report, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			previousReports = append(previousReports, r)
		}
	}

	return &ComparisonResult{
		ID:             uuid.New(),
		CurrentMetrics: currentReport,
		PreviousCount:  len(previousReports),
		Comparison:     s.insights.Compare(ctx, currentReport, previousReports, timePeriod),
	}, nil
}

// itemError renders a per-item failure for the batch result.
func itemError(err error) string {
	if errors.Is(err, pose.ErrNoDetection) {
		return "No people detected"
	}
	return err.Error()
}
