// Package pose provides pose keypoint types, the keypoint-distance signal
// and the detector bridge that produces poses from camera frames.
package pose

import "math"

// Keypoint part names following the PoseNet convention.
const (
	Nose          = "nose"
	LeftEye       = "leftEye"
	RightEye      = "rightEye"
	LeftEar       = "leftEar"
	RightEar      = "rightEar"
	LeftShoulder  = "leftShoulder"
	RightShoulder = "rightShoulder"
	LeftElbow     = "leftElbow"
	RightElbow    = "rightElbow"
	LeftWrist     = "leftWrist"
	RightWrist    = "rightWrist"
	LeftHip       = "leftHip"
	RightHip      = "rightHip"
	LeftKnee      = "leftKnee"
	RightKnee     = "rightKnee"
	LeftAnkle     = "leftAnkle"
	RightAnkle    = "rightAnkle"
)

// Parts lists every keypoint part in PoseNet index order.
var Parts = []string{
	Nose, LeftEye, RightEye, LeftEar, RightEar,
	LeftShoulder, RightShoulder, LeftElbow, RightElbow,
	LeftWrist, RightWrist, LeftHip, RightHip,
	LeftKnee, RightKnee, LeftAnkle, RightAnkle,
}

// Point is a 2D position in frame pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Keypoint is a named body point detected in a frame.
type Keypoint struct {
	Part     string  `json:"part"`
	Position Point   `json:"position"`
	Score    float64 `json:"score"`
}

// Pose is one detected subject.
type Pose struct {
	Keypoints []Keypoint `json:"keypoints"`
	Score     float64    `json:"score"`
}

// Keypoint returns the keypoint with the given part name.
func (p *Pose) Keypoint(part string) (Keypoint, bool) {
	if p == nil {
		return Keypoint{}, false
	}
	for _, kp := range p.Keypoints {
		if kp.Part == part {
			return kp, true
		}
	}
	return Keypoint{}, false
}

// Distance calculates the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Extractor derives the scalar signal from the primary pose: the raw pixel
// distance between two named keypoints.
type Extractor struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// DefaultExtractor measures nose to right eye.
func DefaultExtractor() Extractor {
	return Extractor{From: Nose, To: RightEye}
}

// Extract reads only poses[0]. It reports false when there is no pose or
// either keypoint is missing, in which case the caller keeps its last value.
func (e Extractor) Extract(poses []Pose) (float64, bool) {
	if len(poses) == 0 {
		return 0, false
	}

	primary := &poses[0]
	a, ok := primary.Keypoint(e.From)
	if !ok {
		return 0, false
	}
	b, ok := primary.Keypoint(e.To)
	if !ok {
		return 0, false
	}

	return Distance(a.Position, b.Position), true
}
