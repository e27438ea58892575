// Package signal implements the per-frame capture metrics.
//
// Both meters reduce a frame to a single scalar on the 0-255 grayscale
// range. Values are comparable across a whole run: there is no per-frame
// renormalization, so fixed thresholds keep their meaning from the first
// frame to the last.
package signal

import (
	"image"

	"github.com/anthonynsimon/bild/effect"

	"github.com/user/slidecap/pkg/pipeline"
)

// Meter reduces one frame to a comparable scalar.
type Meter interface {
	// Measure returns the signal value for the next frame in order.
	Measure(frame image.Image) float64

	// Reset clears any retained predecessor state.
	Reset()
}

// ForMetric returns the meter for the configured metric variant.
func ForMetric(metric pipeline.Metric) Meter {
	if metric == pipeline.MetricBrightness {
		return NewBrightness()
	}
	return NewDifference()
}

// grayPlane converts a frame to a single-channel grayscale plane.
func grayPlane(frame image.Image) ([]uint8, int, int) {
	gray := effect.Grayscale(frame)
	bounds := gray.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	plane := make([]uint8, w*h)
	i := 0
	for p := 0; p < len(gray.Pix); p += 4 {
		plane[i] = gray.Pix[p]
		i++
	}
	return plane, w, h
}

// Brightness measures the mean grayscale level of a frame. It is a pure
// function of one frame.
type Brightness struct{}

// NewBrightness creates a brightness meter.
func NewBrightness() *Brightness {
	return &Brightness{}
}

// Measure returns the mean gray level, 0-255.
func (b *Brightness) Measure(frame image.Image) float64 {
	plane, w, h := grayPlane(frame)
	if w == 0 || h == 0 {
		return 0
	}
	var sum uint64
	for _, v := range plane {
		sum += uint64(v)
	}
	return float64(sum) / float64(len(plane))
}

// Reset is a no-op; brightness keeps no state.
func (b *Brightness) Reset() {}

// Difference measures the mean absolute grayscale difference between a
// frame and its predecessor. The first frame of a stream measures 0.
type Difference struct {
	prev  []uint8
	prevW int
	prevH int
}

// NewDifference creates a frame-difference meter.
func NewDifference() *Difference {
	return &Difference{}
}

// Measure returns the mean absolute per-pixel difference, 0-255.
func (d *Difference) Measure(frame image.Image) float64 {
	plane, w, h := grayPlane(frame)
	defer func() {
		d.prev = plane
		d.prevW = w
		d.prevH = h
	}()

	if d.prev == nil || d.prevW != w || d.prevH != h || len(plane) == 0 {
		return 0
	}

	var sum uint64
	for i, v := range plane {
		p := d.prev[i]
		if v >= p {
			sum += uint64(v - p)
		} else {
			sum += uint64(p - v)
		}
	}
	return float64(sum) / float64(len(plane))
}

// Reset forgets the retained predecessor frame.
func (d *Difference) Reset() {
	d.prev = nil
	d.prevW = 0
	d.prevH = 0
}
