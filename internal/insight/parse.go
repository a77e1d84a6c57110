package insight

import (
	"strings"

	"github.com/ergolab/human-factors-backend/internal/ergo"
)

// Bundle is the structured insight output for one report: the six narrative
// sections carved out of the provider's reply, the full raw text, the source
// metrics, and a small stats projection. A section whose heading never
// appeared in the reply remains an empty string.
//
// Err is set — and every narrative field left empty — when the provider call
// failed; the bundle is then a degraded result, not an error value.
type Bundle struct {
	ExecutiveSummary     string `json:"executive_summary"`
	DetailedFindings     string `json:"detailed_findings"`
	RiskAnalysis         string `json:"risk_analysis"`
	Recommendations      string `json:"recommendations"`
	ComplianceAssessment string `json:"compliance_assessment"`
	MetricsSummary       string `json:"metrics_summary"`

	FullAnalysis string       `json:"full_analysis"`
	RawMetrics   *ergo.Report `json:"raw_metrics,omitempty"`
	SummaryStats SummaryStats `json:"summary_stats"`

	Err string `json:"error,omitempty"`
}

// SummaryStats is the compact projection attached to every bundle.
type SummaryStats struct {
	OverallRisk     ergo.RiskLevel `json:"overall_risk"`
	RiskScore       float64        `json:"risk_score"`
	NumRiskFactors  int            `json:"num_risk_factors"`
	SymmetryScore   float64        `json:"symmetry_score"`
	PrimaryConcerns []string       `json:"primary_concerns"`
}

// ParseBundle splits a provider reply into the six named sections. Heading
// detection is a plain substring test against each lowercased line, checked
// in a fixed priority order; body lines accumulate under the most recently
// recognized heading, and lines before the first heading are discarded.
//
// The substring test means body text that happens to contain a heading
// keyword steals the accumulator. That mis-attribution is a known fragility
// of the format contract — isolated here so a structured (delimiter-tagged)
// reply format can replace it without touching callers.
func ParseBundle(raw string, report *ergo.Report) *Bundle {
	b := &Bundle{
		FullAnalysis: raw,
		RawMetrics:   report,
		SummaryStats: summaryStatsFor(report),
	}

	var current *string
	for _, line := range strings.Split(raw, "\n") {
		low := strings.ToLower(line)
		switch {
		case strings.Contains(low, "executive summary"):
			current = &b.ExecutiveSummary
		case strings.Contains(low, "detailed findings"):
			current = &b.DetailedFindings
		case strings.Contains(low, "risk analysis"):
			current = &b.RiskAnalysis
		case strings.Contains(low, "recommendations"): // also matches "prioritized recommendations"
			current = &b.Recommendations
		case strings.Contains(low, "compliance"):
			current = &b.ComplianceAssessment
		case strings.Contains(low, "metrics summary"), strings.Contains(low, "quantitative"):
			current = &b.MetricsSummary
		case current != nil && strings.TrimSpace(line) != "":
			*current += line + "\n"
		}
	}

	return b
}

// summaryStatsFor projects a report into the bundle's stats block: overall
// risk, score, factor count, symmetry, and the top three risk factors.
func summaryStatsFor(r *ergo.Report) SummaryStats {
	if r == nil {
		return SummaryStats{}
	}

	concerns := r.RiskAssessment.RiskFactors
	if len(concerns) > 3 {
		concerns = concerns[:3]
	}

	return SummaryStats{
		OverallRisk:     r.RiskAssessment.OverallRisk,
		RiskScore:       r.RiskAssessment.RiskScore,
		NumRiskFactors:  len(r.RiskAssessment.RiskFactors),
		SymmetryScore:   r.BodySymmetry.SymmetryScore,
		PrimaryConcerns: concerns,
	}
}
