package insight

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ergolab/human-factors-backend/internal/ergo"
)

// systemRole is the fixed role description sent with every completion.
const systemRole = "You are an expert Human Factors researcher and ergonomist."

// Formatting contract for every prompt builder: degrees and percentages at
// one decimal, meter-scale heights at three, the risk score at two. The
// narratives cite these numbers back, so the precision is part of the
// observable behavior.

// BuildAnalysisPrompt formats one report into the structured analysis brief.
// contextText is embedded verbatim; when blank it falls back to a generic
// workplace label.
func BuildAnalysisPrompt(r *ergo.Report, contextText string) string {
	if strings.TrimSpace(contextText) == "" {
		contextText = "Workplace posture analysis"
	}

	var sb strings.Builder

	sb.WriteString("You are an expert Human Factors researcher and ergonomist analyzing workplace posture data.\n\n")
	sb.WriteString("You have been provided with precise 3D body measurements from a computer vision analysis. ")
	sb.WriteString("Your task is to provide a comprehensive ergonomic assessment based on these ACTUAL MEASUREMENTS.\n\n")

	fmt.Fprintf(&sb, "## Context\n%s\n\n", contextText)

	sb.WriteString("## Measured Ergonomic Metrics\n\n")

	fmt.Fprintf(&sb, "### Neck Posture\n")
	fmt.Fprintf(&sb, "- Forward flexion angle: %.1f°\n", r.NeckFlexion.AngleDegrees)
	fmt.Fprintf(&sb, "- Risk level: %s\n", r.NeckFlexion.RiskLevel)
	fmt.Fprintf(&sb, "- Reference: Optimal is <20°, concerning at >45°\n\n")

	fmt.Fprintf(&sb, "### Shoulder Position\n")
	fmt.Fprintf(&sb, "- Asymmetry: %.1f%%\n", r.ShoulderElevation.AsymmetryPercent)
	fmt.Fprintf(&sb, "- Left shoulder height: %.3fm\n", r.ShoulderElevation.LeftHeight)
	fmt.Fprintf(&sb, "- Right shoulder height: %.3fm\n", r.ShoulderElevation.RightHeight)
	fmt.Fprintf(&sb, "- Risk level: %s\n\n", r.ShoulderElevation.RiskLevel)

	fmt.Fprintf(&sb, "### Elbow Angles\n")
	fmt.Fprintf(&sb, "- Left elbow: %.1f°\n", r.ElbowAngles.LeftAngle)
	fmt.Fprintf(&sb, "- Right elbow: %.1f°\n", r.ElbowAngles.RightAngle)
	fmt.Fprintf(&sb, "- Left optimal: %t\n", r.ElbowAngles.LeftOptimal)
	fmt.Fprintf(&sb, "- Right optimal: %t\n", r.ElbowAngles.RightOptimal)
	fmt.Fprintf(&sb, "- Reference: Optimal range is 70-110°\n\n")

	fmt.Fprintf(&sb, "### Wrist Position\n")
	fmt.Fprintf(&sb, "- Left deviation: %.1f°\n", r.WristExtension.LeftDeviation)
	fmt.Fprintf(&sb, "- Right deviation: %.1f°\n", r.WristExtension.RightDeviation)
	fmt.Fprintf(&sb, "- Average deviation: %.1f°\n", r.WristExtension.AverageDeviation)
	fmt.Fprintf(&sb, "- Risk level: %s\n\n", r.WristExtension.RiskLevel)

	fmt.Fprintf(&sb, "### Back/Spine Posture\n")
	fmt.Fprintf(&sb, "- Forward lean: %.1f°\n", r.BackPosture.ForwardLeanDegrees)
	fmt.Fprintf(&sb, "- Risk level: %s\n", r.BackPosture.RiskLevel)
	fmt.Fprintf(&sb, "- Reference: Optimal is <20°, high risk at >45°\n\n")

	fmt.Fprintf(&sb, "### Body Symmetry\n")
	fmt.Fprintf(&sb, "- Overall symmetry score: %.1f/100\n", r.BodySymmetry.SymmetryScore)
	fmt.Fprintf(&sb, "- Shoulder symmetry: %.1f/100\n", r.BodySymmetry.ShoulderSymmetry)
	fmt.Fprintf(&sb, "- Hip symmetry: %.1f/100\n\n", r.BodySymmetry.HipSymmetry)

	fmt.Fprintf(&sb, "### Anthropometric Measurements\n")
	fmt.Fprintf(&sb, "- Shoulder breadth: %.1f cm\n", r.Measurements.ShoulderBreadthCM)
	fmt.Fprintf(&sb, "- Torso height: %.1f cm\n", r.Measurements.TorsoHeightCM)
	fmt.Fprintf(&sb, "- Arm length: %.1f cm\n", r.Measurements.ArmLengthCM)
	fmt.Fprintf(&sb, "- Leg length: %.1f cm\n\n", r.Measurements.LegLengthCM)

	fmt.Fprintf(&sb, "### Overall Risk Assessment\n")
	fmt.Fprintf(&sb, "- Risk level: %s\n", r.RiskAssessment.OverallRisk)
	fmt.Fprintf(&sb, "- Risk score: %.2f/3.0\n", r.RiskAssessment.RiskScore)
	fmt.Fprintf(&sb, "- Identified risk factors: %s\n\n", factorList(r.RiskAssessment.RiskFactors))

	sb.WriteString(`## Required Analysis

Please provide a comprehensive ergonomic assessment in the following structured format:

1. **Executive Summary** (2-3 sentences)
   - Overall posture quality
   - Primary concerns
   - Urgency level

2. **Detailed Findings** (organized by body region)
   - Head/Neck analysis with specific angle references
   - Shoulder/Upper back analysis
   - Arms/Elbows analysis
   - Wrists/Hands analysis
   - Lower back/Spine analysis
   - Body symmetry assessment

3. **Risk Analysis**
   - Immediate risks (if any)
   - Long-term health implications
   - Specific injury risks (e.g., RSI, neck strain, lower back pain)

4. **Prioritized Recommendations** (in order of importance)
   - Immediate adjustments needed
   - Equipment modifications
   - Behavioral changes
   - Long-term considerations

5. **Compliance Assessment**
   - OSHA ergonomic guidelines compliance
   - ISO 11226 (static working postures) compliance
   - Any relevant standards violations

6. **Quantitative Metrics Summary**
   - Key measurements that need attention
   - Target values for improvement
   - Measurable goals

Base your analysis STRICTLY on the provided measurements. Be specific, cite the actual numbers, and provide actionable insights suitable for Human Factors research documentation.
`)

	return sb.String()
}

func factorList(factors []string) string {
	if len(factors) == 0 {
		return "None"
	}
	return strings.Join(factors, ", ")
}

// ─── COMPARISON ───────────────────────────────────────────────────────────────

// BuildComparisonPrompt formats the current report and the prior measurement
// series into a longitudinal-analysis brief.
func BuildComparisonPrompt(current *ergo.Report, previous []*ergo.Report, timePeriod string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are analyzing ergonomic posture changes %s.\n\n", timePeriod)

	fmt.Fprintf(&sb, "## Current Measurement\n%s\n\n", indentJSON(current))
	fmt.Fprintf(&sb, "## Previous Measurements\n%s\n\n", indentJSON(previous))

	sb.WriteString(`Provide a comparative analysis focusing on:
1. Trends in posture quality (improving/declining)
2. Specific metrics that have changed significantly
3. Effectiveness of previous recommendations
4. Updated recommendations based on trends
5. Long-term health trajectory

Be specific with numbers and cite actual measurements.
`)

	return sb.String()
}

// ─── RESEARCH SUMMARY ─────────────────────────────────────────────────────────

// PopulationStats are the aggregate figures computed over a batch of reports.
type PopulationStats struct {
	TotalSubjects   int
	HighRiskCount   int
	MediumRiskCount int
	MeanNeckFlexion float64
	MeanSymmetry    float64
}

// HighRiskPercent returns the high-risk share of the population, 0–100.
func (s PopulationStats) HighRiskPercent() float64 {
	if s.TotalSubjects == 0 {
		return 0
	}
	return float64(s.HighRiskCount) / float64(s.TotalSubjects) * 100
}

// MediumRiskPercent returns the medium-risk share of the population, 0–100.
func (s PopulationStats) MediumRiskPercent() float64 {
	if s.TotalSubjects == 0 {
		return 0
	}
	return float64(s.MediumRiskCount) / float64(s.TotalSubjects) * 100
}

// AggregateReports computes population statistics over a batch of reports.
// Means over an empty slice are 0, not a division error.
func AggregateReports(reports []*ergo.Report) PopulationStats {
	stats := PopulationStats{TotalSubjects: len(reports)}
	if len(reports) == 0 {
		return stats
	}

	var neckSum, symSum float64
	for _, r := range reports {
		switch r.RiskAssessment.OverallRisk {
		case ergo.RiskHigh:
			stats.HighRiskCount++
		case ergo.RiskMedium:
			stats.MediumRiskCount++
		}
		neckSum += r.NeckFlexion.AngleDegrees
		symSum += r.BodySymmetry.SymmetryScore
	}

	stats.MeanNeckFlexion = neckSum / float64(len(reports))
	stats.MeanSymmetry = symSum / float64(len(reports))
	return stats
}

// BuildResearchSummaryPrompt formats a full metrics collection plus study
// context into a research-summary brief.
func BuildResearchSummaryPrompt(reports []*ergo.Report, studyContext string) string {
	stats := AggregateReports(reports)

	var sb strings.Builder

	sb.WriteString("You are writing a research summary for a Human Factors study.\n\n")
	fmt.Fprintf(&sb, "## Study Context\n%s\n\n", studyContext)

	sb.WriteString("## Aggregate Statistics\n")
	fmt.Fprintf(&sb, "- Total subjects analyzed: %d\n", stats.TotalSubjects)
	fmt.Fprintf(&sb, "- High risk postures: %d (%.1f%%)\n", stats.HighRiskCount, stats.HighRiskPercent())
	fmt.Fprintf(&sb, "- Medium risk postures: %d (%.1f%%)\n", stats.MediumRiskCount, stats.MediumRiskPercent())
	fmt.Fprintf(&sb, "- Average neck flexion: %.1f°\n", stats.MeanNeckFlexion)
	fmt.Fprintf(&sb, "- Average body symmetry: %.1f/100\n\n", stats.MeanSymmetry)

	fmt.Fprintf(&sb, "## Individual Measurements\n%s\n\n", indentJSON(reports))

	sb.WriteString(`Generate a research-grade summary including:
1. Population overview
2. Key findings and patterns
3. Statistical significance of findings
4. Implications for workplace design
5. Recommendations for intervention
6. Suggestions for future research

Use appropriate academic language and cite specific measurements.
`)

	return sb.String()
}

// indentJSON renders v as indented JSON for prompt embedding. Reports are
// plain structs so marshalling cannot realistically fail; the fallback keeps
// the prompt builder total.
func indentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("(unrenderable: %v)", err)
	}
	return string(b)
}
