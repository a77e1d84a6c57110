// Package ergo computes quantitative ergonomic risk metrics from a single 3D
// joint frame. The metrics are approximations intended for workplace
// ergonomics screening, not clinical biomechanics. The package is
// intentionally light on dependencies: it imports only geom and pose, so it
// can be tested without any external collaborator.
package ergo

import (
	"fmt"
	"math"
	"strings"

	"github.com/ergolab/human-factors-backend/internal/geom"
	"github.com/ergolab/human-factors-backend/internal/pose"
)

// ─── THRESHOLDS ───────────────────────────────────────────────────────────────

// Band holds the cut points for a three-tier risk lookup on one metric.
// RiskLevelFor reads only Low and Medium: values below Low are low risk,
// values below Medium are medium, everything else is high. High is carried
// from the original threshold table but never consulted by the lookup.
type Band struct {
	Low    float64
	Medium float64
	High   float64
}

// Thresholds is the full per-metric threshold table.
//
// ShoulderElevation is listed for completeness but the shoulder metric does
// not use it: shoulder risk runs on its own 5%/10% percentage cut points
// (see shoulderElevation). Downstream reports depend on those values, so the
// divergence is preserved.
type Thresholds struct {
	NeckFlexion       Band
	ShoulderElevation Band
	WristExtension    Band
	BackAngle         Band

	ElbowOptimalMin float64
	ElbowOptimalMax float64
}

// DefaultThresholds returns the standard screening thresholds, in degrees.
func DefaultThresholds() Thresholds {
	return Thresholds{
		NeckFlexion:       Band{Low: 20, Medium: 45, High: 60},
		ShoulderElevation: Band{Low: 20, Medium: 45, High: 60},
		WristExtension:    Band{Low: 15, Medium: 30, High: 45},
		BackAngle:         Band{Low: 20, Medium: 45, High: 60},
		ElbowOptimalMin:   70,
		ElbowOptimalMax:   110,
	}
}

// RiskLevelFor classifies a metric value against a threshold band. The
// boundaries are inclusive-low: a value exactly at Low is not strictly below
// it and therefore falls into the medium tier.
func RiskLevelFor(value float64, b Band) RiskLevel {
	switch {
	case value < b.Low:
		return RiskLow
	case value < b.Medium:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// ─── ANALYZER ─────────────────────────────────────────────────────────────────

// requiredJoints is the minimum frame length that makes every landmark the
// engine reads addressable. RightWrist is the highest consumed index.
const requiredJoints = pose.RightWrist + 1

// Analyzer scores joint frames into ergonomic reports. It holds only the
// immutable threshold table and is safe for concurrent use.
type Analyzer struct {
	t Thresholds
}

// NewAnalyzer returns an Analyzer with the default thresholds.
func NewAnalyzer() *Analyzer {
	return &Analyzer{t: DefaultThresholds()}
}

// AnalyzePosture computes the full seven-metric report plus the aggregate
// risk assessment for one joint frame. It returns *InvalidDataError if the
// frame is absent or too short to address a required landmark.
func (a *Analyzer) AnalyzePosture(frame *pose.Frame) (*Report, error) {
	if frame == nil {
		return nil, &InvalidDataError{Reason: "no joint frame"}
	}
	if len(frame.Joints) < requiredJoints {
		return nil, &InvalidDataError{
			Reason: fmt.Sprintf("frame has %d joints, need at least %d", len(frame.Joints), requiredJoints),
		}
	}

	j := frame.Joints

	r := &Report{
		NeckFlexion:       a.neckFlexion(j),
		ShoulderElevation: a.shoulderElevation(j),
		ElbowAngles:       a.elbowAngles(j),
		WristExtension:    a.wristExtension(j),
		BackPosture:       a.backPosture(j),
		BodySymmetry:      a.bodySymmetry(j),
		Measurements:      a.measurements(j),
	}
	r.RiskAssessment = a.assessRisk(r)

	return r, nil
}

// ─── INDIVIDUAL METRICS ───────────────────────────────────────────────────────

// neckFlexion measures forward head posture: the angle of the
// shoulder-midpoint→nose vector against vertical, re-expressed as deviation
// from horizontal.
func (a *Analyzer) neckFlexion(j []geom.Vec3) NeckFlexion {
	shoulderMid := geom.Midpoint(j[pose.LeftShoulder], j[pose.RightShoulder])
	neck := j[pose.Nose].Sub(shoulderMid)

	angle := geom.AngleBetween(neck, geom.Up)
	flexion := math.Abs(90 - angle)

	return NeckFlexion{
		AngleDegrees: flexion,
		RiskLevel:    RiskLevelFor(flexion, a.t.NeckFlexion),
		Description:  "Forward head posture angle",
	}
}

// shoulderElevation measures left/right shoulder height difference as a
// percentage of torso height. A zero torso height yields 0% rather than a
// division error.
func (a *Analyzer) shoulderElevation(j []geom.Vec3) ShoulderElevation {
	left := j[pose.LeftShoulder]
	right := j[pose.RightShoulder]

	shoulderMid := geom.Midpoint(left, right)
	hipMid := geom.Midpoint(j[pose.LeftHip], j[pose.RightHip])

	heightDiff := math.Abs(left.Y - right.Y)
	torsoHeight := math.Abs(shoulderMid.Y - hipMid.Y)

	var asymmetry float64
	if torsoHeight > 0 {
		asymmetry = heightDiff / torsoHeight * 100
	}

	// Percentage cut points, not the shared degree table. The table's
	// ShoulderElevation band is degree-scaled and was never applied to this
	// percentage metric; the 5%/10% values here are what the reports have
	// always used.
	level := RiskLow
	switch {
	case asymmetry > 10:
		level = RiskHigh
	case asymmetry > 5:
		level = RiskMedium
	}

	return ShoulderElevation{
		AsymmetryPercent: asymmetry,
		LeftHeight:       left.Y,
		RightHeight:      right.Y,
		RiskLevel:        level,
		Description:      "Shoulder elevation asymmetry",
	}
}

// elbowAngles computes the flexion angle at each elbow from the
// shoulder–elbow–wrist triple and checks it against the optimal range.
func (a *Analyzer) elbowAngles(j []geom.Vec3) ElbowAngles {
	left := geom.JointAngle(j[pose.LeftShoulder], j[pose.LeftElbow], j[pose.LeftWrist])
	right := geom.JointAngle(j[pose.RightShoulder], j[pose.RightElbow], j[pose.RightWrist])

	return ElbowAngles{
		LeftAngle:    left,
		RightAngle:   right,
		LeftOptimal:  left >= a.t.ElbowOptimalMin && left <= a.t.ElbowOptimalMax,
		RightOptimal: right >= a.t.ElbowOptimalMin && right <= a.t.ElbowOptimalMax,
		Description:  "Elbow flexion angles (optimal: 70-110°)",
	}
}

// wristExtension estimates wrist deviation from the horizontal-plane
// orientation of each forearm vector. Hand landmarks would be needed for a
// true wrist flexion angle; this proxy is documented in the report itself.
func (a *Analyzer) wristExtension(j []geom.Vec3) WristExtension {
	leftForearm := j[pose.LeftWrist].Sub(j[pose.LeftElbow])
	rightForearm := j[pose.RightWrist].Sub(j[pose.RightElbow])

	left := math.Abs(math.Atan2(leftForearm.Z, leftForearm.X)) * 180 / math.Pi
	right := math.Abs(math.Atan2(rightForearm.Z, rightForearm.X)) * 180 / math.Pi
	avg := (left + right) / 2

	return WristExtension{
		LeftDeviation:    left,
		RightDeviation:   right,
		AverageDeviation: avg,
		RiskLevel:        RiskLevelFor(avg, a.t.WristExtension),
		Description:      "Wrist extension/deviation angle",
	}
}

// backPosture measures forward lean: the angle of the hip-midpoint→
// shoulder-midpoint spine vector from vertical.
func (a *Analyzer) backPosture(j []geom.Vec3) BackPosture {
	shoulderMid := geom.Midpoint(j[pose.LeftShoulder], j[pose.RightShoulder])
	hipMid := geom.Midpoint(j[pose.LeftHip], j[pose.RightHip])

	spine := shoulderMid.Sub(hipMid)
	lean := math.Abs(geom.AngleBetween(spine, geom.Up))

	return BackPosture{
		ForwardLeanDegrees: lean,
		RiskLevel:          RiskLevelFor(lean, a.t.BackAngle),
		Description:        "Spine forward lean angle",
	}
}

// bodySymmetry scores left/right balance across the shoulder and hip pairs.
// Each pair scores 100 − min(100, |yL − yR| × 100); the result is the mean of
// the two pairs and is always within [0, 100].
func (a *Analyzer) bodySymmetry(j []geom.Vec3) BodySymmetry {
	shoulderSym := 100 - math.Min(100, math.Abs(j[pose.LeftShoulder].Y-j[pose.RightShoulder].Y)*100)
	hipSym := 100 - math.Min(100, math.Abs(j[pose.LeftHip].Y-j[pose.RightHip].Y)*100)

	return BodySymmetry{
		SymmetryScore:    (shoulderSym + hipSym) / 2,
		ShoulderSymmetry: shoulderSym,
		HipSymmetry:      hipSym,
		Description:      "Overall body symmetry (0-100)",
	}
}

// measurements computes the anthropometric distances. Joint positions are in
// meters; the report is in centimeters. Limb lengths use the left side.
func (a *Analyzer) measurements(j []geom.Vec3) Measurements {
	shoulderMid := geom.Midpoint(j[pose.LeftShoulder], j[pose.RightShoulder])
	hipMid := geom.Midpoint(j[pose.LeftHip], j[pose.RightHip])

	armLength := geom.Dist(j[pose.LeftElbow], j[pose.LeftShoulder]) +
		geom.Dist(j[pose.LeftWrist], j[pose.LeftElbow])
	legLength := geom.Dist(j[pose.LeftKnee], j[pose.LeftHip]) +
		geom.Dist(j[pose.LeftAnkle], j[pose.LeftKnee])

	return Measurements{
		ShoulderBreadthCM: geom.Dist(j[pose.RightShoulder], j[pose.LeftShoulder]) * 100,
		TorsoHeightCM:     geom.Dist(shoulderMid, hipMid) * 100,
		ArmLengthCM:       armLength * 100,
		LegLengthCM:       legLength * 100,
	}
}

// ─── RISK AGGREGATION ─────────────────────────────────────────────────────────

// assessRisk folds the per-metric results into the overall assessment. Each
// metric at medium or high risk contributes a factor string and a weight
// (medium=2, high=3); elbow non-optimality on either side contributes 2 once.
// The overall score is the mean of the collected weights, or 0 if none.
func (a *Analyzer) assessRisk(r *Report) RiskAssessment {
	var factors []string
	var weights []int

	flag := func(level RiskLevel, factor string) {
		if level == RiskMedium || level == RiskHigh {
			factors = append(factors, factor)
			w := 2
			if level == RiskHigh {
				w = 3
			}
			weights = append(weights, w)
		}
	}

	flag(r.NeckFlexion.RiskLevel, fmt.Sprintf("Neck flexion: %.1f°", r.NeckFlexion.AngleDegrees))
	flag(r.ShoulderElevation.RiskLevel, fmt.Sprintf("Shoulder asymmetry: %.1f%%", r.ShoulderElevation.AsymmetryPercent))

	if !r.ElbowAngles.LeftOptimal || !r.ElbowAngles.RightOptimal {
		factors = append(factors, "Elbow angles outside optimal range")
		weights = append(weights, 2)
	}

	flag(r.WristExtension.RiskLevel, fmt.Sprintf("Wrist deviation: %.1f°", r.WristExtension.AverageDeviation))
	flag(r.BackPosture.RiskLevel, fmt.Sprintf("Forward lean: %.1f°", r.BackPosture.ForwardLeanDegrees))

	var score float64
	if len(weights) > 0 {
		sum := 0
		for _, w := range weights {
			sum += w
		}
		score = float64(sum) / float64(len(weights))
	}

	overall := RiskLow
	switch {
	case score >= 2.5:
		overall = RiskHigh
	case score >= 1.5:
		overall = RiskMedium
	}

	return RiskAssessment{
		OverallRisk:     overall,
		RiskScore:       score,
		RiskFactors:     factors,
		Recommendations: recommendationsFor(factors),
	}
}

// recommendationsFor maps each flagged category to its fixed recommendation
// sentence, in the order the factors were discovered. Each category appears
// at most once among the factors, so the output is deduplicated by
// construction.
func recommendationsFor(factors []string) []string {
	var recs []string

	for _, factor := range factors {
		if strings.Contains(factor, "Neck") {
			recs = append(recs, "Adjust monitor height to eye level to reduce neck strain")
		}
		if strings.Contains(factor, "Shoulder") {
			recs = append(recs, "Ensure shoulders are relaxed and level; adjust chair armrests")
		}
		if strings.Contains(factor, "Elbow") {
			recs = append(recs, "Position keyboard/mouse to maintain 90° elbow angle")
		}
		if strings.Contains(factor, "Wrist") {
			recs = append(recs, "Use wrist rest and maintain neutral wrist position")
		}
		if strings.Contains(factor, "lean") {
			recs = append(recs, "Adjust chair back support; sit upright with lumbar support")
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "Posture appears ergonomically sound; maintain current setup")
	}

	return recs
}
