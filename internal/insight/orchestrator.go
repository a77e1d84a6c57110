package insight

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ergolab/human-factors-backend/internal/ergo"
)

// Orchestrator drives the text-generation provider: it builds prompts from
// metrics reports, dispatches them with the configured sampling parameters,
// and parses replies into structured results.
type Orchestrator struct {
	completer Completer
	sampling  SamplingConfig
	logger    *slog.Logger
}

// NewOrchestrator constructs an Orchestrator. sampling carries the selected
// provider's parameters; it is fixed at startup, never per call site.
func NewOrchestrator(completer Completer, sampling SamplingConfig, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		completer: completer,
		sampling:  sampling,
		logger:    logger,
	}
}

// Generate produces the full insight bundle for one report. Provider failures
// are absorbed here: the returned bundle carries only the error description,
// so a failed narrative can never abort the caller's pipeline.
func (o *Orchestrator) Generate(ctx context.Context, report *ergo.Report, contextText string) *Bundle {
	raw, err := o.complete(ctx, BuildAnalysisPrompt(report, contextText))
	if err != nil {
		o.logger.Warn("insight: generation failed", "error", err)
		return &Bundle{Err: err.Error()}
	}
	return ParseBundle(raw, report)
}

// ResearchSummary produces the aggregate narrative for a batch of reports.
// Unlike Generate it returns the error: the batch pipeline renders it as an
// error string in place of the summary, keeping the batch itself intact.
func (o *Orchestrator) ResearchSummary(ctx context.Context, reports []*ergo.Report, studyContext string) (string, error) {
	return o.complete(ctx, BuildResearchSummaryPrompt(reports, studyContext))
}

// Comparison is the longitudinal result: the narrative plus a denormalized
// copy of the inputs it was derived from.
type Comparison struct {
	ComparativeAnalysis string         `json:"comparative_analysis"`
	CurrentMetrics      *ergo.Report   `json:"current_metrics"`
	PreviousMetrics     []*ergo.Report `json:"previous_metrics"`
	TimePeriod          string         `json:"time_period"`
	Err                 string         `json:"error,omitempty"`
}

// Compare produces the longitudinal narrative for a current report against a
// chronological series of previous ones. A blank period label defaults to
// "over time". Provider failures degrade the narrative, never the call.
func (o *Orchestrator) Compare(ctx context.Context, current *ergo.Report, previous []*ergo.Report, timePeriod string) Comparison {
	if strings.TrimSpace(timePeriod) == "" {
		timePeriod = "over time"
	}

	result := Comparison{
		CurrentMetrics:  current,
		PreviousMetrics: previous,
		TimePeriod:      timePeriod,
	}

	raw, err := o.complete(ctx, BuildComparisonPrompt(current, previous, timePeriod))
	if err != nil {
		o.logger.Warn("insight: comparison failed", "error", err)
		result.Err = err.Error()
		return result
	}

	result.ComparativeAnalysis = raw
	return result
}

// complete dispatches one prompt with the fixed system role and sampling
// configuration, normalizing any failure into a *ServiceError.
func (o *Orchestrator) complete(ctx context.Context, prompt string) (string, error) {
	raw, err := o.completer.Complete(ctx, Request{
		System:   systemRole,
		Prompt:   prompt,
		Sampling: o.sampling,
	})
	if err != nil {
		var se *ServiceError
		if !errors.As(err, &se) {
			err = &ServiceError{Provider: "completer", Err: err}
		}
		return "", err
	}
	return raw, nil
}
