package ports

import "image"

// SignalSample is one per-frame metric reading.
type SignalSample struct {
	Index int
	Value float64
}

// DiagnosticSink collects offline tuning output: the per-frame signal, a
// plot of it against the configured thresholds, and a preview of the
// marked corner quadrilateral. None of it is required for capture
// correctness.
type DiagnosticSink interface {
	// Enabled returns true if diagnostic output is collected.
	Enabled() bool

	// ObserveFrame accumulates a frame into the running preview average.
	ObserveFrame(img image.Image)

	// SaveSignal writes the per-frame signal as CSV and as a plot with
	// the priming and capture thresholds drawn in.
	SaveSignal(samples []SignalSample, priming, capture float64) error

	// SaveCorners writes the corner set used for the run as JSON.
	SaveCorners(data []byte) error

	// SavePreview writes the averaged reference image with the corner
	// quadrilateral drawn on top.
	SavePreview(corners CornerSet) error
}
