package rectify

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/user/slidecap/pkg/pipeline"
	"github.com/user/slidecap/pkg/ports"
)

// gradientFrame returns a w x h frame whose red channel follows x and
// green channel follows y, so misplaced samples are visible.
func gradientFrame(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / (w - 1)),
				G: uint8(y * 255 / (h - 1)),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func rectCorners(x0, y0, x1, y1 float64) ports.CornerSet {
	return ports.CornerSet{
		TopLeft:     ports.Point{X: x0, Y: y0},
		TopRight:    ports.Point{X: x1, Y: y0},
		BottomRight: ports.Point{X: x1, Y: y1},
		BottomLeft:  ports.Point{X: x0, Y: y1},
	}
}

// TestMapping_IdentityTransform maps the full frame onto a target of the
// same size; every pixel must survive almost unchanged.
func TestMapping_IdentityTransform(t *testing.T) {
	const w, h = 32, 24
	frame := gradientFrame(w, h)

	m, err := NewMapping(rectCorners(0, 0, w, h), pipeline.TargetRect{Width: w, Height: h})
	if err != nil {
		t.Fatalf("NewMapping: %v", err)
	}

	out := m.Apply(frame)
	if out.Bounds().Dx() != w || out.Bounds().Dy() != h {
		t.Fatalf("output size: expected %dx%d, got %dx%d", w, h, out.Bounds().Dx(), out.Bounds().Dy())
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			want := frame.NRGBAAt(x, y)
			got := out.NRGBAAt(x, y)
			if absDiff(want.R, got.R) > 2 || absDiff(want.G, got.G) > 2 || absDiff(want.B, got.B) > 2 {
				t.Fatalf("pixel (%d,%d): expected %v, got %v", x, y, want, got)
			}
		}
	}
}

// TestMapping_AxisAlignedCrop extracts a sub-rectangle and checks its
// corners land on the right source pixels.
func TestMapping_AxisAlignedCrop(t *testing.T) {
	frame := gradientFrame(64, 64)

	m, err := NewMapping(rectCorners(16, 16, 48, 48), pipeline.TargetRect{Width: 32, Height: 32})
	if err != nil {
		t.Fatalf("NewMapping: %v", err)
	}
	out := m.Apply(frame)

	// Target (0,0) samples source (16,16); target (31,31) samples (47,47).
	checks := []struct {
		tx, ty int
		sx, sy int
	}{
		{tx: 0, ty: 0, sx: 16, sy: 16},
		{tx: 31, ty: 0, sx: 47, sy: 16},
		{tx: 31, ty: 31, sx: 47, sy: 47},
		{tx: 0, ty: 31, sx: 16, sy: 47},
		{tx: 16, ty: 16, sx: 32, sy: 32},
	}
	for _, c := range checks {
		want := frame.NRGBAAt(c.sx, c.sy)
		got := out.NRGBAAt(c.tx, c.ty)
		if absDiff(want.R, got.R) > 2 || absDiff(want.G, got.G) > 2 {
			t.Errorf("target (%d,%d): expected source (%d,%d) = %v, got %v", c.tx, c.ty, c.sx, c.sy, want, got)
		}
	}
}

// TestMapping_OutsideSamplesAreBlack maps corners partly outside the
// frame; pixels projecting outside must come out black.
func TestMapping_OutsideSamplesAreBlack(t *testing.T) {
	frame := gradientFrame(16, 16)

	m, err := NewMapping(rectCorners(-16, -16, 0, 0), pipeline.TargetRect{Width: 8, Height: 8})
	if err != nil {
		t.Fatalf("NewMapping: %v", err)
	}
	out := m.Apply(frame)

	got := out.NRGBAAt(2, 2)
	if got.R != 0 || got.G != 0 || got.B != 0 || got.A != 255 {
		t.Errorf("outside sample: expected opaque black, got %v", got)
	}
}

func TestNewMapping_DegenerateCorners(t *testing.T) {
	tests := []struct {
		name    string
		corners ports.CornerSet
	}{
		{
			name: "all corners collinear",
			corners: ports.CornerSet{
				TopLeft:     ports.Point{X: 0, Y: 0},
				TopRight:    ports.Point{X: 10, Y: 10},
				BottomRight: ports.Point{X: 20, Y: 20},
				BottomLeft:  ports.Point{X: 30, Y: 30},
			},
		},
		{
			name: "coincident corners",
			corners: ports.CornerSet{
				TopLeft:     ports.Point{X: 5, Y: 5},
				TopRight:    ports.Point{X: 5, Y: 5},
				BottomRight: ports.Point{X: 50, Y: 50},
				BottomLeft:  ports.Point{X: 5, Y: 50},
			},
		},
		{
			name: "crossed edges",
			corners: ports.CornerSet{
				TopLeft:     ports.Point{X: 0, Y: 0},
				TopRight:    ports.Point{X: 50, Y: 0},
				BottomRight: ports.Point{X: 0, Y: 50},
				BottomLeft:  ports.Point{X: 50, Y: 50},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMapping(tt.corners, pipeline.TargetRect{Width: 10, Height: 10})
			if !errors.Is(err, ErrDegenerateGeometry) {
				t.Errorf("expected ErrDegenerateGeometry, got %v", err)
			}
		})
	}
}

func TestNewMapping_EmptyTarget(t *testing.T) {
	_, err := NewMapping(rectCorners(0, 0, 10, 10), pipeline.TargetRect{})
	if err == nil {
		t.Error("expected an error for an empty target rectangle")
	}
}

// TestMapping_DeterministicAcrossFrames applies the same mapping twice
// and expects identical output.
func TestMapping_DeterministicAcrossFrames(t *testing.T) {
	frame := gradientFrame(40, 30)
	corners := ports.CornerSet{
		TopLeft:     ports.Point{X: 5, Y: 3},
		TopRight:    ports.Point{X: 35, Y: 6},
		BottomRight: ports.Point{X: 33, Y: 27},
		BottomLeft:  ports.Point{X: 4, Y: 25},
	}

	m, err := NewMapping(corners, pipeline.TargetRect{Width: 30, Height: 20})
	if err != nil {
		t.Fatalf("NewMapping: %v", err)
	}

	first := m.Apply(frame)
	second := m.Apply(frame)
	for i := range first.Pix {
		if first.Pix[i] != second.Pix[i] {
			t.Fatalf("outputs differ at byte %d", i)
		}
	}
}

func TestStage_Execute(t *testing.T) {
	stage, err := NewStage(rectCorners(0, 0, 16, 16), pipeline.TargetRect{Width: 16, Height: 16})
	if err != nil {
		t.Fatalf("NewStage: %v", err)
	}

	result, err := stage.Execute(context.Background(), pipeline.RectifyInput{Frame: gradientFrame(16, 16)})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Image == nil {
		t.Fatal("expected an output image")
	}

	if _, err := stage.Execute(context.Background(), pipeline.RectifyInput{}); err == nil {
		t.Error("expected an error for a nil frame")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := stage.Execute(ctx, pipeline.RectifyInput{Frame: gradientFrame(16, 16)}); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
