// Package pose defines the 3D joint-frame data model produced by the external
// pose-estimation service, and the client used to reach that service.
package pose

import (
	"context"
	"errors"

	"github.com/ergolab/human-factors-backend/internal/geom"
)

// MHR70 landmark indices. The full scheme carries 70 body landmarks; the
// metrics engine reads only the subset named here. Wrist indices sit inside
// the hand landmark blocks, which is why they are not contiguous with the
// arm joints.
const (
	Nose          = 0
	LeftEye       = 1
	RightEye      = 2
	LeftEar       = 3
	RightEar      = 4
	LeftShoulder  = 5
	RightShoulder = 6
	LeftElbow     = 7
	RightElbow    = 8
	LeftHip       = 9
	RightHip      = 10
	LeftKnee      = 11
	RightKnee     = 12
	LeftAnkle     = 13
	RightAnkle    = 14
	LeftWrist     = 41
	RightWrist    = 62
)

// NumJoints is the size of a complete MHR70 joint array.
const NumJoints = 70

// Frame is one detected person's 3D joint positions in meters, indexed by the
// MHR70 scheme. A Frame is immutable once produced and scoped to a single
// analysis call.
type Frame struct {
	Joints []geom.Vec3 `json:"joints_3d"`
}

// Joint returns the landmark at idx. The caller is responsible for bounds —
// the metrics engine validates frame length before reading any landmark.
func (f *Frame) Joint(idx int) geom.Vec3 {
	return f.Joints[idx]
}

// ErrNoDetection is returned when an image contains no detectable person.
var ErrNoDetection = errors.New("pose: no person detected")

// Estimator produces zero or more joint frames from an encoded image, one per
// detected person, with the primary subject first. Implementations must be
// safe for concurrent use; estimation is a long-latency call and must honor
// ctx cancellation.
type Estimator interface {
	Estimate(ctx context.Context, image []byte) ([]Frame, error)
}
