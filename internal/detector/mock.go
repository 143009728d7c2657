package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu       sync.Mutex
	sequence [][]HandLandmarks
	err      error
	calls    int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands makes every Detect call return hands.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = [][]HandLandmarks{hands}
}

// SetSequence makes successive Detect calls return successive entries. The
// last entry repeats once the sequence is exhausted.
func (m *MockDetector) SetSequence(seq [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = seq
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.calls
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) == 0 {
		return nil, nil
	}
	if i >= len(m.sequence) {
		i = len(m.sequence) - 1
	}
	return m.sequence[i], nil
}

// Calls returns how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockDetector) Close() error {
	return nil
}

// MockFaceDetector returns preset faces.
type MockFaceDetector struct {
	mu    sync.Mutex
	faces []FaceDetection
	err   error
	calls int
}

func NewMockFaceDetector(faces ...FaceDetection) *MockFaceDetector {
	return &MockFaceDetector{faces: faces}
}

func (m *MockFaceDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockFaceDetector) DetectFaces(frame *gocv.Mat) ([]FaceDetection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]FaceDetection(nil), m.faces...), nil
}

func (m *MockFaceDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockFaceDetector) Close() error {
	return nil
}
