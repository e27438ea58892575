package ports

import "image"

// SlideWriter persists rectified slides in capture order.
type SlideWriter interface {
	// Save writes the image under the given 1-based sequence number and
	// returns the path it was written to. Files must sort in capture
	// order, and a partially written file must never be left behind.
	Save(img image.Image, sequence int) (string, error)
}
