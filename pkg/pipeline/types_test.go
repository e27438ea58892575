package pipeline

import (
	"testing"

	"github.com/user/slidecap/pkg/ports"
)

func TestAspectRatio(t *testing.T) {
	r := AspectRatio{W: 3, H: 2}
	if r.Value() != 1.5 {
		t.Errorf("Value: expected 1.5, got %v", r.Value())
	}
	if r.String() != "3:2" {
		t.Errorf("String: expected 3:2, got %s", r.String())
	}
}

func TestTargetRectFor_FromCornerExtent(t *testing.T) {
	corners := ports.CornerSet{
		TopLeft:     ports.Point{X: 100, Y: 50},
		TopRight:    ports.Point{X: 700, Y: 60},
		BottomRight: ports.Point{X: 690, Y: 450},
		BottomLeft:  ports.Point{X: 110, Y: 440},
	}

	// Extent: leftmost 100, rightmost 700 -> width 600; 3:2 -> height 400.
	got := TargetRectFor(corners, AspectRatio{W: 3, H: 2}, 0)
	if got.Width != 600 {
		t.Errorf("Width: expected 600, got %d", got.Width)
	}
	if got.Height != 400 {
		t.Errorf("Height: expected 400, got %d", got.Height)
	}
}

func TestTargetRectFor_ExplicitWidth(t *testing.T) {
	corners := ports.CornerSet{
		TopLeft:     ports.Point{X: 0, Y: 0},
		TopRight:    ports.Point{X: 100, Y: 0},
		BottomRight: ports.Point{X: 100, Y: 100},
		BottomLeft:  ports.Point{X: 0, Y: 100},
	}

	got := TargetRectFor(corners, AspectRatio{W: 4, H: 3}, 1200)
	if got.Width != 1200 {
		t.Errorf("Width: expected 1200, got %d", got.Width)
	}
	if got.Height != 900 {
		t.Errorf("Height: expected 900, got %d", got.Height)
	}
}

func TestCenteredCorners(t *testing.T) {
	got := CenteredCorners(800, 600)

	want := ports.CornerSet{
		TopLeft:     ports.Point{X: 200, Y: 150},
		TopRight:    ports.Point{X: 600, Y: 150},
		BottomRight: ports.Point{X: 600, Y: 450},
		BottomLeft:  ports.Point{X: 200, Y: 450},
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestCaptureStateString(t *testing.T) {
	tests := []struct {
		state CaptureState
		want  string
	}{
		{StateIdle, "idle"},
		{StatePrimed, "primed"},
		{StateCapturing, "capturing"},
		{CaptureState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String(): expected %s, got %s", tt.state, tt.want, got)
		}
	}
}
