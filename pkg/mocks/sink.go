package mocks

import (
	"image"

	"github.com/user/slidecap/pkg/ports"
)

// DiagnosticSink is a mock implementation of ports.DiagnosticSink.
type DiagnosticSink struct {
	EnabledValue bool

	SaveSignalFunc func(samples []ports.SignalSample, priming, capture float64) error

	// Recorded calls for verification
	ObservedFrames    int
	SavedSamples      []ports.SignalSample
	SavedPriming      float64
	SavedCapture      float64
	SavedCorners      []byte
	SavePreviewCalled bool
}

func (m *DiagnosticSink) Enabled() bool {
	return m.EnabledValue
}

func (m *DiagnosticSink) ObserveFrame(img image.Image) {
	m.ObservedFrames++
}

func (m *DiagnosticSink) SaveSignal(samples []ports.SignalSample, priming, capture float64) error {
	m.SavedSamples = append([]ports.SignalSample(nil), samples...)
	m.SavedPriming = priming
	m.SavedCapture = capture
	if m.SaveSignalFunc != nil {
		return m.SaveSignalFunc(samples, priming, capture)
	}
	return nil
}

func (m *DiagnosticSink) SaveCorners(data []byte) error {
	m.SavedCorners = append([]byte(nil), data...)
	return nil
}

func (m *DiagnosticSink) SavePreview(corners ports.CornerSet) error {
	m.SavePreviewCalled = true
	return nil
}

var _ ports.DiagnosticSink = (*DiagnosticSink)(nil)
