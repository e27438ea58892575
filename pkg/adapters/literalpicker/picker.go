// Package literalpicker provides a non-interactive corner picker. A
// pre-supplied literal corner set makes runs reproducible; without one,
// the quad defaults to the quarter positions of the reference frame, a
// neutral placement to refine from with the diagnostics preview.
package literalpicker

import (
	"errors"
	"image"

	"github.com/user/slidecap/pkg/pipeline"
	"github.com/user/slidecap/pkg/ports"
)

// Picker returns a fixed or derived corner set.
type Picker struct {
	corners *ports.CornerSet
}

// New creates a picker. corners may be nil to fall back to the centered
// default quad.
func New(corners *ports.CornerSet) *Picker {
	return &Picker{corners: corners}
}

// PickCorners returns the literal corner set, or the centered default
// for the reference frame's size.
func (p *Picker) PickCorners(reference image.Image) (ports.CornerSet, error) {
	if p.corners != nil {
		return *p.corners, nil
	}
	if reference == nil {
		return ports.CornerSet{}, errors.New("literalpicker: no reference frame for default corners")
	}
	bounds := reference.Bounds()
	return pipeline.CenteredCorners(bounds.Dx(), bounds.Dy()), nil
}

var _ ports.CornerPicker = (*Picker)(nil)
