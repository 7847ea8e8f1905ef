package pose

import (
	"image"
	"sync"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	poses []Pose
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetPoses sets the poses that will be returned by Detect.
func (m *MockDetector) SetPoses(poses []Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.poses = poses
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured poses or error.
func (m *MockDetector) Detect(frame image.Image) ([]Pose, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.poses, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// FacePose returns a pose with the nose at the given point and the right eye
// placed dist pixels up and to the side of it, so that the default
// Extractor yields exactly dist.
func FacePose(nose Point, dist float64) Pose {
	// 3-4-5 triangle keeps the offset exact in floating point
	dx := dist * 0.6
	dy := dist * 0.8

	return Pose{
		Score: 0.9,
		Keypoints: []Keypoint{
			{Part: Nose, Position: nose, Score: 0.99},
			{Part: LeftEye, Position: Point{X: nose.X + dx, Y: nose.Y - dy}, Score: 0.97},
			{Part: RightEye, Position: Point{X: nose.X - dx, Y: nose.Y - dy}, Score: 0.97},
		},
	}
}
