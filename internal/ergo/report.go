package ergo

// ─── RISK LEVELS ──────────────────────────────────────────────────────────────

// RiskLevel is the three-bucket classification applied per metric and to the
// overall assessment. String values match the JSON wire shape directly.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ─── REPORT ───────────────────────────────────────────────────────────────────

// Report is the full ergonomic assessment of one joint frame. It is created
// once by Analyzer.AnalyzePosture and read-only afterward: the insight
// orchestrator formats it into prompts and the batch pipeline aggregates it.
type Report struct {
	NeckFlexion       NeckFlexion       `json:"neck_flexion"`
	ShoulderElevation ShoulderElevation `json:"shoulder_elevation"`
	ElbowAngles       ElbowAngles       `json:"elbow_angles"`
	WristExtension    WristExtension    `json:"wrist_extension"`
	BackPosture       BackPosture       `json:"back_posture"`
	BodySymmetry      BodySymmetry      `json:"body_symmetry"`
	Measurements      Measurements      `json:"measurements"`
	RiskAssessment    RiskAssessment    `json:"risk_assessment"`
}

// NeckFlexion is the forward head posture measurement: the deviation of the
// shoulder-midpoint→nose vector from horizontal, in degrees.
type NeckFlexion struct {
	AngleDegrees float64   `json:"angle_degrees"`
	RiskLevel    RiskLevel `json:"risk_level"`
	Description  string    `json:"description"`
}

// ShoulderElevation is left/right shoulder height asymmetry expressed as a
// percentage of torso height.
type ShoulderElevation struct {
	AsymmetryPercent float64   `json:"asymmetry_percent"`
	LeftHeight       float64   `json:"left_height"`
	RightHeight      float64   `json:"right_height"`
	RiskLevel        RiskLevel `json:"risk_level"`
	Description      string    `json:"description"`
}

// ElbowAngles carries per-arm elbow flexion angles and a pass/fail against
// the optimal working range. There is no graded risk level for elbows.
type ElbowAngles struct {
	LeftAngle    float64 `json:"left_angle"`
	RightAngle   float64 `json:"right_angle"`
	LeftOptimal  bool    `json:"left_optimal"`
	RightOptimal bool    `json:"right_optimal"`
	Description  string  `json:"description"`
}

// WristExtension approximates wrist deviation from the horizontal-plane
// orientation of each forearm. This is a simplified proxy: true wrist flexion
// needs hand landmarks that are not part of the consumed MHR70 subset.
type WristExtension struct {
	LeftDeviation    float64   `json:"left_deviation"`
	RightDeviation   float64   `json:"right_deviation"`
	AverageDeviation float64   `json:"average_deviation"`
	RiskLevel        RiskLevel `json:"risk_level"`
	Description      string    `json:"description"`
}

// BackPosture is the forward lean of the spine vector from vertical.
type BackPosture struct {
	ForwardLeanDegrees float64   `json:"forward_lean_degrees"`
	RiskLevel          RiskLevel `json:"risk_level"`
	Description        string    `json:"description"`
}

// BodySymmetry is the 0–100 left/right balance score across the shoulder and
// hip pairs. Higher is more symmetric.
type BodySymmetry struct {
	SymmetryScore    float64 `json:"symmetry_score"`
	ShoulderSymmetry float64 `json:"shoulder_symmetry"`
	HipSymmetry      float64 `json:"hip_symmetry"`
	Description      string  `json:"description"`
}

// Measurements are the anthropometric distances, in centimeters.
type Measurements struct {
	ShoulderBreadthCM float64 `json:"shoulder_breadth_cm"`
	TorsoHeightCM     float64 `json:"torso_height_cm"`
	ArmLengthCM       float64 `json:"arm_length_cm"`
	LegLengthCM       float64 `json:"leg_length_cm"`
}

// RiskAssessment is the aggregate derived from the per-metric results.
// RiskFactors preserves discovery order: neck, shoulder, elbow, wrist, back.
// Recommendations carry one fixed sentence per flagged category, in the same
// order.
type RiskAssessment struct {
	OverallRisk     RiskLevel `json:"overall_risk"`
	RiskScore       float64   `json:"risk_score"`
	RiskFactors     []string  `json:"risk_factors"`
	Recommendations []string  `json:"recommendations"`
}

// ─── ERRORS ───────────────────────────────────────────────────────────────────

// InvalidDataError reports a joint frame that cannot be scored: absent, or
// too short to address a landmark the engine reads.
type InvalidDataError struct {
	Reason string
}

func (e *InvalidDataError) Error() string {
	return "ergo: invalid joint data: " + e.Reason
}
