package mocks

import (
	"fmt"
	"image"

	"github.com/user/slidecap/pkg/ports"
)

// SlideWriter is a mock implementation of ports.SlideWriter.
type SlideWriter struct {
	SaveFunc func(img image.Image, sequence int) (string, error)

	// Recorded calls for verification
	SaveCalls []SaveCall
}

// SaveCall records a call to Save.
type SaveCall struct {
	Image    image.Image
	Sequence int
}

func (m *SlideWriter) Save(img image.Image, sequence int) (string, error) {
	m.SaveCalls = append(m.SaveCalls, SaveCall{Image: img, Sequence: sequence})
	if m.SaveFunc != nil {
		return m.SaveFunc(img, sequence)
	}
	return fmt.Sprintf("slide_%04d.jpg", sequence), nil
}

var _ ports.SlideWriter = (*SlideWriter)(nil)
