package mocks

import (
	"image"

	"github.com/user/slidecap/pkg/ports"
)

// CornerPicker is a mock implementation of ports.CornerPicker.
type CornerPicker struct {
	Corners ports.CornerSet

	PickCornersFunc func(reference image.Image) (ports.CornerSet, error)

	// Recorded calls for verification
	PickCalled bool
}

func (m *CornerPicker) PickCorners(reference image.Image) (ports.CornerSet, error) {
	m.PickCalled = true
	if m.PickCornersFunc != nil {
		return m.PickCornersFunc(reference)
	}
	return m.Corners, nil
}

var _ ports.CornerPicker = (*CornerPicker)(nil)
