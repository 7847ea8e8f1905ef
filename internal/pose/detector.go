package pose

import (
	"errors"
	"image"
)

// ErrServiceNotFound is returned when the pose estimation service script cannot be located.
var ErrServiceNotFound = errors.New("pose service not found")

// Detector defines the interface for pose estimation implementations.
type Detector interface {
	// Detect analyzes a frame and returns the detected poses, best first.
	// Returns an empty slice if nobody is in view.
	Detect(frame image.Image) ([]Pose, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds the options handed to the upstream pose estimator.
// They are passed through unchanged; the core never interprets them.
type Config struct {
	Architecture      string  `yaml:"architecture" json:"architecture"`
	ImageScaleFactor  float64 `yaml:"image_scale_factor" json:"imageScaleFactor"`
	OutputStride      int     `yaml:"output_stride" json:"outputStride"` // 8 or 16, larger is faster
	FlipHorizontal    bool    `yaml:"flip_horizontal" json:"flipHorizontal"`
	MinConfidence     float64 `yaml:"min_confidence" json:"minConfidence"`
	MaxPoseDetections int     `yaml:"max_pose_detections" json:"maxPoseDetections"`
	ScoreThreshold    float64 `yaml:"score_threshold" json:"scoreThreshold"`
	NMSRadius         int     `yaml:"nms_radius" json:"nmsRadius"`
	DetectionType     string  `yaml:"detection_type" json:"detectionType"`
	InputResolution   int     `yaml:"input_resolution" json:"inputResolution"`
	Multiplier        float64 `yaml:"multiplier" json:"multiplier"`
	QuantBytes        int     `yaml:"quant_bytes" json:"quantBytes"`
}

// DefaultConfig returns the options used by the reference deployment:
// a fast MobileNet at reduced resolution, mirrored keypoints, up to two people.
func DefaultConfig() Config {
	return Config{
		Architecture:      "MobileNetV1",
		ImageScaleFactor:  0.3,
		OutputStride:      16,
		FlipHorizontal:    true,
		MinConfidence:     0.5,
		MaxPoseDetections: 2,
		ScoreThreshold:    0.5,
		NMSRadius:         20,
		DetectionType:     "multiple",
		InputResolution:   257,
		Multiplier:        0.5,
		QuantBytes:        2,
	}
}
