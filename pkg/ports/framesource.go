package ports

import (
	"errors"
	"image"
)

// ErrFrameAccess is returned when a frame source cannot deliver the
// requested index: before the retained window, or past the end of the
// stream.
var ErrFrameAccess = errors.New("frame source: frame not available")

// FrameSource yields ordered video frames addressed by a zero-based,
// monotonically increasing index. Sources are sequential decoders; random
// access is only guaranteed within a recent rolling window.
type FrameSource interface {
	// FrameCount returns the total number of frames, or 0 if unknown.
	FrameCount() int

	// FrameRate returns the frame rate in frames per second.
	FrameRate() float64

	// Frame returns the frame at the given index. Requesting an index
	// that has fallen out of the rolling window, or one past the end of
	// the stream, returns an error wrapping ErrFrameAccess.
	Frame(index int) (image.Image, error)

	// Close releases decoder resources.
	Close() error
}
