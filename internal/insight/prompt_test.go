package insight_test

import (
	"strings"
	"testing"

	"github.com/ergolab/human-factors-backend/internal/ergo"
	"github.com/ergolab/human-factors-backend/internal/insight"
)

func fullReport() *ergo.Report {
	return &ergo.Report{
		NeckFlexion:       ergo.NeckFlexion{AngleDegrees: 28.34, RiskLevel: ergo.RiskMedium},
		ShoulderElevation: ergo.ShoulderElevation{AsymmetryPercent: 6.25, LeftHeight: 1.512, RightHeight: 1.488, RiskLevel: ergo.RiskMedium},
		ElbowAngles:       ergo.ElbowAngles{LeftAngle: 95.0, RightAngle: 120.0, LeftOptimal: true, RightOptimal: false},
		WristExtension:    ergo.WristExtension{LeftDeviation: 12.0, RightDeviation: 20.0, AverageDeviation: 16.0, RiskLevel: ergo.RiskMedium},
		BackPosture:       ergo.BackPosture{ForwardLeanDegrees: 14.5, RiskLevel: ergo.RiskLow},
		BodySymmetry:      ergo.BodySymmetry{SymmetryScore: 88.8, ShoulderSymmetry: 90.0, HipSymmetry: 87.6},
		Measurements:      ergo.Measurements{ShoulderBreadthCM: 40.0, TorsoHeightCM: 50.0, ArmLengthCM: 60.0, LegLengthCM: 90.0},
		RiskAssessment: ergo.RiskAssessment{
			OverallRisk: ergo.RiskMedium,
			RiskScore:   2.0,
			RiskFactors: []string{"Neck flexion: 28.3°", "Wrist deviation: 16.0°"},
		},
	}
}

func TestBuildAnalysisPrompt_FormatsMeasurements(t *testing.T) {
	p := insight.BuildAnalysisPrompt(fullReport(), "Standing desk pilot study")

	wantFragments := []string{
		"## Context\nStanding desk pilot study",
		"Forward flexion angle: 28.3°",
		"Asymmetry: 6.2%",
		"Left shoulder height: 1.512m",
		"Right shoulder height: 1.488m",
		"Right optimal: false",
		"Average deviation: 16.0°",
		"Overall symmetry score: 88.8/100",
		"Shoulder breadth: 40.0 cm",
		"Risk score: 2.00/3.0",
		"Identified risk factors: Neck flexion: 28.3°, Wrist deviation: 16.0°",
		"**Executive Summary**",
		"**Quantitative Metrics Summary**",
	}
	for _, frag := range wantFragments {
		if !strings.Contains(p, frag) {
			t.Errorf("prompt missing fragment %q", frag)
		}
	}
}

func TestBuildAnalysisPrompt_DefaultContext(t *testing.T) {
	p := insight.BuildAnalysisPrompt(fullReport(), "  ")
	if !strings.Contains(p, "## Context\nWorkplace posture analysis") {
		t.Error("blank context not replaced with default label")
	}
}

func TestBuildAnalysisPrompt_NoFactors(t *testing.T) {
	r := fullReport()
	r.RiskAssessment.RiskFactors = nil

	p := insight.BuildAnalysisPrompt(r, "")
	if !strings.Contains(p, "Identified risk factors: None") {
		t.Error("empty factor list not rendered as None")
	}
}

func TestBuildComparisonPrompt_EmbedsPeriodAndMetrics(t *testing.T) {
	current := fullReport()
	previous := []*ergo.Report{fullReport()}

	p := insight.BuildComparisonPrompt(current, previous, "over the past month")

	if !strings.Contains(p, "posture changes over the past month") {
		t.Error("time period not embedded")
	}
	if !strings.Contains(p, "## Current Measurement") || !strings.Contains(p, "## Previous Measurements") {
		t.Error("measurement sections missing")
	}
	// Metrics travel as JSON so the model can cite exact fields.
	if !strings.Contains(p, `"angle_degrees": 28.34`) {
		t.Error("current metrics not embedded as JSON")
	}
}

func TestAggregateReports(t *testing.T) {
	high := fullReport()
	high.RiskAssessment.OverallRisk = ergo.RiskHigh
	high.NeckFlexion.AngleDegrees = 50.0
	high.BodySymmetry.SymmetryScore = 70.0

	low := fullReport()
	low.RiskAssessment.OverallRisk = ergo.RiskLow
	low.NeckFlexion.AngleDegrees = 10.0
	low.BodySymmetry.SymmetryScore = 96.0

	medium := fullReport()
	medium.NeckFlexion.AngleDegrees = 30.0
	medium.BodySymmetry.SymmetryScore = 86.0

	stats := insight.AggregateReports([]*ergo.Report{high, low, medium})

	if stats.TotalSubjects != 3 || stats.HighRiskCount != 1 || stats.MediumRiskCount != 1 {
		t.Errorf("counts = %+v", stats)
	}
	if !near(stats.MeanNeckFlexion, 30.0) {
		t.Errorf("mean neck flexion = %v, want 30.0", stats.MeanNeckFlexion)
	}
	if !near(stats.MeanSymmetry, 84.0) {
		t.Errorf("mean symmetry = %v, want 84.0", stats.MeanSymmetry)
	}
	if !near(stats.HighRiskPercent(), 100.0/3.0) {
		t.Errorf("high risk percent = %v", stats.HighRiskPercent())
	}
}

func TestAggregateReports_Empty(t *testing.T) {
	stats := insight.AggregateReports(nil)
	if stats.TotalSubjects != 0 || stats.MeanNeckFlexion != 0 || stats.HighRiskPercent() != 0 {
		t.Errorf("empty aggregate = %+v", stats)
	}
}

func TestBuildResearchSummaryPrompt(t *testing.T) {
	reports := []*ergo.Report{fullReport(), fullReport()}

	p := insight.BuildResearchSummaryPrompt(reports, "Open-plan office study, week 2")

	wantFragments := []string{
		"## Study Context\nOpen-plan office study, week 2",
		"Total subjects analyzed: 2",
		"Medium risk postures: 2 (100.0%)",
		"Average neck flexion: 28.3°",
		"## Individual Measurements",
	}
	for _, frag := range wantFragments {
		if !strings.Contains(p, frag) {
			t.Errorf("prompt missing fragment %q", frag)
		}
	}
}

func near(got, want float64) bool {
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
