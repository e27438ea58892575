package literalpicker

import (
	"image"
	"testing"

	"github.com/user/slidecap/pkg/ports"
)

func TestPickCorners_Literal(t *testing.T) {
	want := ports.CornerSet{
		TopLeft:     ports.Point{X: 10, Y: 20},
		TopRight:    ports.Point{X: 300, Y: 22},
		BottomRight: ports.Point{X: 295, Y: 210},
		BottomLeft:  ports.Point{X: 12, Y: 205},
	}
	p := New(&want)

	got, err := p.PickCorners(image.NewNRGBA(image.Rect(0, 0, 320, 240)))
	if err != nil {
		t.Fatalf("PickCorners: %v", err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestPickCorners_DefaultQuad(t *testing.T) {
	p := New(nil)

	got, err := p.PickCorners(image.NewNRGBA(image.Rect(0, 0, 800, 600)))
	if err != nil {
		t.Fatalf("PickCorners: %v", err)
	}

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

func TestPickCorners_NilReference(t *testing.T) {
	if _, err := New(nil).PickCorners(nil); err == nil {
		t.Error("expected an error without a reference frame")
	}
}
