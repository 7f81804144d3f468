// Package pose defines the contract with external pose estimators. The
// module never runs inference itself; it consumes keypoint results and
// forwards them to the overlay.
package pose

import "context"

// KeypointNames lists the COCO skeleton keypoints in model output order.
var KeypointNames = []string{
	"nose",
	"left_eye", "right_eye",
	"left_ear", "right_ear",
	"left_shoulder", "right_shoulder",
	"left_elbow", "right_elbow",
	"left_wrist", "right_wrist",
	"left_hip", "right_hip",
	"left_knee", "right_knee",
	"left_ankle", "right_ankle",
}

// Keypoint is one estimated joint position in normalized frame coordinates,
// with a per-joint confidence score in [0, 1].
type Keypoint struct {
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score float64 `json:"score"`
}

// Result is one frame's worth of keypoints.
type Result struct {
	Time      float64    `json:"time"`
	Keypoints []Keypoint `json:"keypoints"`
}

// MeanScore averages the per-joint confidence, the number shown next to the
// overlay toggle. Returns 0 for a frame with no keypoints.
func (r Result) MeanScore() float64 {
	if len(r.Keypoints) == 0 {
		return 0
	}
	var sum float64
	for _, kp := range r.Keypoints {
		sum += kp.Score
	}
	return sum / float64(len(r.Keypoints))
}

// Estimator produces keypoints for a video frame at the given playhead
// time. Implementations live outside this module (browser model, NPU
// sidecar); the server treats them as a black box.
type Estimator interface {
	EstimateFrame(ctx context.Context, videoTime float64) (Result, error)
}
