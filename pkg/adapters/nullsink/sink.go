// Package nullsink provides a disabled diagnostic sink.
package nullsink

import (
	"image"

	"github.com/user/slidecap/pkg/ports"
)

// Sink discards all diagnostic output.
type Sink struct{}

// New creates a new null sink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false; callers can skip collection entirely.
func (s *Sink) Enabled() bool {
	return false
}

// ObserveFrame does nothing.
func (s *Sink) ObserveFrame(img image.Image) {}

// SaveSignal does nothing.
func (s *Sink) SaveSignal(samples []ports.SignalSample, priming, capture float64) error {
	return nil
}

// SaveCorners does nothing.
func (s *Sink) SaveCorners(data []byte) error {
	return nil
}

// SavePreview does nothing.
func (s *Sink) SavePreview(corners ports.CornerSet) error {
	return nil
}

var _ ports.DiagnosticSink = (*Sink)(nil)
