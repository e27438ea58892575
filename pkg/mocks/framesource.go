// Package mocks provides hand-rolled test doubles for the ports.
package mocks

import (
	"fmt"
	"image"

	"github.com/user/slidecap/pkg/ports"
)

// FrameSource is a mock implementation of ports.FrameSource serving
// frames from a slice.
type FrameSource struct {
	Frames []image.Image
	Rate   float64

	FrameFunc func(index int) (image.Image, error)

	// Recorded calls for verification
	FrameCalls  []int
	CloseCalled bool
}

func (m *FrameSource) FrameCount() int {
	return len(m.Frames)
}

func (m *FrameSource) FrameRate() float64 {
	if m.Rate == 0 {
		return 30
	}
	return m.Rate
}

func (m *FrameSource) Frame(index int) (image.Image, error) {
	m.FrameCalls = append(m.FrameCalls, index)
	if m.FrameFunc != nil {
		return m.FrameFunc(index)
	}
	if index < 0 || index >= len(m.Frames) {
		return nil, fmt.Errorf("%w: index %d of %d", ports.ErrFrameAccess, index, len(m.Frames))
	}
	return m.Frames[index], nil
}

func (m *FrameSource) Close() error {
	m.CloseCalled = true
	return nil
}

var _ ports.FrameSource = (*FrameSource)(nil)
