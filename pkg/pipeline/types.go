package pipeline

import (
	"fmt"
	"image"
	"math"

	"github.com/user/slidecap/pkg/ports"
)

// =============================================================================
// Geometry
// =============================================================================

// AspectRatio is a width:height ratio of two positive integers.
type AspectRatio struct {
	W int
	H int
}

// Value returns the ratio as width divided by height.
func (r AspectRatio) Value() float64 {
	return float64(r.W) / float64(r.H)
}

// String formats the ratio as "W:H".
func (r AspectRatio) String() string {
	return fmt.Sprintf("%d:%d", r.W, r.H)
}

// TargetRect is the pixel size of the rectified output image.
type TargetRect struct {
	Width  int
	Height int
}

// TargetRectFor derives the output size from the corner quadrilateral and
// the requested aspect ratio. The width is the horizontal extent of the
// quad (or outputWidth when positive), the height follows from the ratio.
func TargetRectFor(corners ports.CornerSet, ratio AspectRatio, outputWidth int) TargetRect {
	width := outputWidth
	if width <= 0 {
		left := math.Min(corners.TopLeft.X, corners.BottomLeft.X)
		right := math.Max(corners.TopRight.X, corners.BottomRight.X)
		width = int(math.Round(right - left))
	}
	height := int(math.Round(float64(width) * float64(ratio.H) / float64(ratio.W)))
	return TargetRect{Width: width, Height: height}
}

// CenteredCorners returns the default quadrilateral at the quarter
// positions of a width x height frame.
func CenteredCorners(width, height int) ports.CornerSet {
	w := float64(width)
	h := float64(height)
	return ports.CornerSet{
		TopLeft:     ports.Point{X: w / 4, Y: h / 4},
		TopRight:    ports.Point{X: w * 3 / 4, Y: h / 4},
		BottomRight: ports.Point{X: w * 3 / 4, Y: h * 3 / 4},
		BottomLeft:  ports.Point{X: w / 4, Y: h * 3 / 4},
	}
}

// =============================================================================
// Capture
// =============================================================================

// Metric selects how a frame is reduced to a scalar signal.
type Metric string

const (
	// MetricDifference measures the mean absolute grayscale difference
	// between a frame and its predecessor.
	MetricDifference Metric = "difference"
	// MetricBrightness measures the mean grayscale level of a frame.
	MetricBrightness Metric = "brightness"
)

// RePrimePolicy decides what a priming-level spike does while PRIMED.
type RePrimePolicy string

const (
	// RePrimeReset keeps the state PRIMED and zeroes the stable-run
	// counter; the spike is treated as settling noise.
	RePrimeReset RePrimePolicy = "reset"
	// RePrimeRearm drops back to IDLE; a fresh priming spike is required
	// before a capture can happen.
	RePrimeRearm RePrimePolicy = "rearm"
)

// CaptureState is the detector state for the current slide cycle.
type CaptureState int

const (
	// StateIdle waits for a slide transition to begin.
	StateIdle CaptureState = iota
	// StatePrimed waits for the signal to settle and stay low.
	StatePrimed
	// StateCapturing is terminal for the current slide; the next
	// transition spike returns the detector to IDLE.
	StateCapturing
)

// String returns the state name.
func (s CaptureState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePrimed:
		return "primed"
	case StateCapturing:
		return "capturing"
	default:
		return "unknown"
	}
}

// CaptureEvent says "save the frame at FrameIndex as the next slide". At
// most one is emitted per detected stable slide.
type CaptureEvent struct {
	// FrameIndex is the backtracked frame to rectify and save.
	FrameIndex int
	// DetectedAt is the frame index where the stable run completed.
	DetectedAt int
	// Signal is the metric value at the detection point.
	Signal float64
}

// =============================================================================
// Stage inputs/outputs
// =============================================================================

// RectifyInput is one frame to map onto the target rectangle.
type RectifyInput struct {
	Frame image.Image
}

// RectifyResult is the perspective-corrected output image.
type RectifyResult struct {
	Image *image.NRGBA
}

// RotateInput is one saved slide to rotate by quarter turns.
type RotateInput struct {
	Image image.Image
	// Turns is the number of counter-clockwise quarter turns, 0-3.
	Turns int
}

// RotateResult is the rotated slide.
type RotateResult struct {
	Image image.Image
}
