package insight_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ergolab/human-factors-backend/internal/ergo"
	"github.com/ergolab/human-factors-backend/internal/insight"
)

func TestOrchestrator_Generate(t *testing.T) {
	stub := &stubCompleter{reply: "Executive Summary\nModerate strain overall.\n"}
	o := insight.NewOrchestrator(stub, insight.SamplingConfig{Temperature: 0.3, MaxTokens: 2000}, discardLogger())

	b := o.Generate(context.Background(), fullReport(), "Desk assessment")
	if b.Err != "" {
		t.Fatalf("unexpected degraded bundle: %s", b.Err)
	}
	if b.ExecutiveSummary != "Moderate strain overall.\n" {
		t.Errorf("executive_summary = %q", b.ExecutiveSummary)
	}
	if b.RawMetrics == nil || b.SummaryStats.OverallRisk != ergo.RiskMedium {
		t.Error("bundle missing source metrics or stats")
	}

	if stub.last.System == "" {
		t.Error("system role not set on request")
	}
	if stub.last.Sampling.Temperature != 0.3 || stub.last.Sampling.MaxTokens != 2000 {
		t.Errorf("sampling not forwarded: %+v", stub.last.Sampling)
	}
	if !strings.Contains(stub.last.Prompt, "## Context\nDesk assessment") {
		t.Error("context text not embedded in prompt")
	}
}

func TestOrchestrator_GenerateDegradesOnFailure(t *testing.T) {
	stub := &stubCompleter{err: errors.New("connection refused")}
	o := insight.NewOrchestrator(stub, insight.SamplingConfig{}, discardLogger())

	b := o.Generate(context.Background(), fullReport(), "")
	if b.Err == "" {
		t.Fatal("expected degraded bundle")
	}
	if !strings.Contains(b.Err, "connection refused") {
		t.Errorf("error not carried: %s", b.Err)
	}
	if b.ExecutiveSummary != "" || b.FullAnalysis != "" {
		t.Error("degraded bundle should carry no narrative content")
	}
}

func TestOrchestrator_ResearchSummary(t *testing.T) {
	stub := &stubCompleter{reply: "Population shows elevated neck flexion."}
	o := insight.NewOrchestrator(stub, insight.SamplingConfig{}, discardLogger())

	text, err := o.ResearchSummary(context.Background(), []*ergo.Report{fullReport()}, "Pilot study")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Population shows elevated neck flexion." {
		t.Errorf("summary = %q", text)
	}
	if !strings.Contains(stub.last.Prompt, "Total subjects analyzed: 1") {
		t.Error("aggregate statistics not embedded in prompt")
	}
}

func TestOrchestrator_ResearchSummaryError(t *testing.T) {
	stub := &stubCompleter{err: errors.New("timeout")}
	o := insight.NewOrchestrator(stub, insight.SamplingConfig{}, discardLogger())

	_, err := o.ResearchSummary(context.Background(), nil, "")
	var se *insight.ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("want *ServiceError, got %T", err)
	}
}

func TestOrchestrator_Compare(t *testing.T) {
	stub := &stubCompleter{reply: "Neck flexion improved by 4 degrees."}
	o := insight.NewOrchestrator(stub, insight.SamplingConfig{}, discardLogger())

	current := fullReport()
	previous := []*ergo.Report{fullReport(), fullReport()}

	c := o.Compare(context.Background(), current, previous, "over the past month")
	if c.Err != "" {
		t.Fatalf("unexpected degraded comparison: %s", c.Err)
	}
	if c.ComparativeAnalysis != "Neck flexion improved by 4 degrees." {
		t.Errorf("comparative_analysis = %q", c.ComparativeAnalysis)
	}
	if c.CurrentMetrics != current || len(c.PreviousMetrics) != 2 {
		t.Error("input metrics not carried on result")
	}
	if c.TimePeriod != "over the past month" {
		t.Errorf("time_period = %q", c.TimePeriod)
	}
}

func TestOrchestrator_CompareDefaultPeriod(t *testing.T) {
	stub := &stubCompleter{reply: "Stable."}
	o := insight.NewOrchestrator(stub, insight.SamplingConfig{}, discardLogger())

	c := o.Compare(context.Background(), fullReport(), nil, "   ")
	if c.TimePeriod != "over time" {
		t.Errorf("time_period = %q, want default", c.TimePeriod)
	}
	if !strings.Contains(stub.last.Prompt, "posture changes over time") {
		t.Error("default period not embedded in prompt")
	}
}

func TestOrchestrator_CompareDegradesOnFailure(t *testing.T) {
	stub := &stubCompleter{err: errors.New("unavailable")}
	o := insight.NewOrchestrator(stub, insight.SamplingConfig{}, discardLogger())

	c := o.Compare(context.Background(), fullReport(), nil, "")
	if c.Err == "" {
		t.Fatal("expected degraded comparison")
	}
	if c.ComparativeAnalysis != "" {
		t.Error("degraded comparison should carry no narrative")
	}
	if c.CurrentMetrics == nil {
		t.Error("metrics should survive a degraded comparison")
	}
}
