// Package rectify implements the perspective rectification stage.
//
// A corner set and a target rectangle define a unique projective
// transform (8 degrees of freedom, solved from the 4 point
// correspondences). The mapping is computed once and reused for every
// frame of a run; applying it resamples the source frame bilinearly into
// an image of the target rectangle's size.
package rectify

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"

	"github.com/user/slidecap/pkg/pipeline"
	"github.com/user/slidecap/pkg/ports"
)

// ErrDegenerateGeometry is returned when the corner set is collinear or
// otherwise yields a singular transform.
var ErrDegenerateGeometry = errors.New("rectify: corner set is degenerate")

// minTriangleArea rejects corner triples that are collinear for
// practical purposes (less than a thousandth of a square pixel).
const minTriangleArea = 1e-3

// Mapping is the projective transform from target space to source space,
// fixed for a run.
type Mapping struct {
	// h is the row-major 3x3 homography taking target pixel coordinates
	// to source pixel coordinates.
	h      [9]float64
	target pipeline.TargetRect
}

// NewMapping solves the transform for the given corners and target
// rectangle. Degenerate corner sets fail here, before any frame is
// processed.
func NewMapping(corners ports.CornerSet, target pipeline.TargetRect) (*Mapping, error) {
	if target.Width <= 0 || target.Height <= 0 {
		return nil, fmt.Errorf("rectify: target rectangle %dx%d is empty", target.Width, target.Height)
	}
	if err := checkSimple(corners); err != nil {
		return nil, err
	}

	w := float64(target.Width)
	h := float64(target.Height)

	// Target rectangle corners in the same fixed order as the source
	// corner set.
	dst := [4]ports.Point{
		{X: 0, Y: 0},
		{X: w, Y: 0},
		{X: w, Y: h},
		{X: 0, Y: h},
	}
	src := corners.Points()

	// Each correspondence (u,v) -> (x,y) contributes two rows of the
	// 8x8 system for h = [a b c d e f g k], with
	// x = (a*u + b*v + c) / (g*u + k*v + 1)
	// y = (d*u + e*v + f) / (g*u + k*v + 1).
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		u, v := dst[i].X, dst[i].Y
		x, y := src[i].X, src[i].Y
		a.SetRow(2*i, []float64{u, v, 1, 0, 0, 0, -u * x, -v * x})
		a.SetRow(2*i+1, []float64{0, 0, 0, u, v, 1, -u * y, -v * y})
		b.SetVec(2*i, x)
		b.SetVec(2*i+1, y)
	}

	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateGeometry, err)
	}

	var m Mapping
	for i := 0; i < 8; i++ {
		m.h[i] = sol.AtVec(i)
	}
	m.h[8] = 1
	m.target = target
	return &m, nil
}

// checkSimple rejects corner sets with a collinear triple or crossed
// edges.
func checkSimple(corners ports.CornerSet) error {
	p := corners.Points()
	for i := 0; i < 4; i++ {
		a, b, c := p[i], p[(i+1)%4], p[(i+2)%4]
		area := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
		if math.Abs(area)/2 < minTriangleArea {
			return fmt.Errorf("%w: corners %d, %d, %d are collinear", ErrDegenerateGeometry, i, (i+1)%4, (i+2)%4)
		}
	}
	// A projected rectangle is always convex: consecutive edge cross
	// products keep one sign. A flipped sign means the quadrilateral is
	// crossed or folded and the mapping would fold over itself.
	sign := 0.0
	for i := 0; i < 4; i++ {
		a, b, c := p[i], p[(i+1)%4], p[(i+2)%4]
		cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
		if sign == 0 {
			sign = cross
		} else if sign*cross < 0 {
			return fmt.Errorf("%w: quadrilateral is not convex", ErrDegenerateGeometry)
		}
	}
	return nil
}

// Target returns the output rectangle the mapping was built for.
func (m *Mapping) Target() pipeline.TargetRect {
	return m.target
}

// project maps target pixel-center coordinates to source coordinates.
func (m *Mapping) project(u, v float64) (float64, float64) {
	w := m.h[6]*u + m.h[7]*v + m.h[8]
	x := (m.h[0]*u + m.h[1]*v + m.h[2]) / w
	y := (m.h[3]*u + m.h[4]*v + m.h[5]) / w
	return x, y
}

// Apply resamples the frame through the mapping into a target-sized
// image. Pixels that project outside the frame are black.
func (m *Mapping) Apply(frame image.Image) *image.NRGBA {
	src := imaging.Clone(frame)
	srcW := src.Bounds().Dx()
	srcH := src.Bounds().Dy()
	out := image.NewNRGBA(image.Rect(0, 0, m.target.Width, m.target.Height))

	for v := 0; v < m.target.Height; v++ {
		for u := 0; u < m.target.Width; u++ {
			sx, sy := m.project(float64(u)+0.5, float64(v)+0.5)
			out.SetNRGBA(u, v, sampleBilinear(src, srcW, srcH, sx-0.5, sy-0.5))
		}
	}
	return out
}

// sampleBilinear interpolates the four neighbors of (x, y) in pixel-index
// space, clamping at the borders.
func sampleBilinear(src *image.NRGBA, w, h int, x, y float64) color.NRGBA {
	if x < -0.5 || y < -0.5 || x > float64(w)-0.5 || y > float64(h)-0.5 {
		return color.NRGBA{A: 255}
	}

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	c00 := src.NRGBAAt(clamp(x0, w), clamp(y0, h))
	c10 := src.NRGBAAt(clamp(x0+1, w), clamp(y0, h))
	c01 := src.NRGBAAt(clamp(x0, w), clamp(y0+1, h))
	c11 := src.NRGBAAt(clamp(x0+1, w), clamp(y0+1, h))

	lerp := func(a, b, c, d uint8) uint8 {
		top := float64(a)*(1-fx) + float64(b)*fx
		bot := float64(c)*(1-fx) + float64(d)*fx
		return uint8(top*(1-fy) + bot*fy + 0.5)
	}

	return color.NRGBA{
		R: lerp(c00.R, c10.R, c01.R, c11.R),
		G: lerp(c00.G, c10.G, c01.G, c11.G),
		B: lerp(c00.B, c10.B, c01.B, c11.B),
		A: 255,
	}
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Stage rectifies frames through a fixed mapping. It holds no mutable
// state, so frames can be rectified in any order with identical results.
type Stage struct {
	mapping *Mapping
}

// NewStage solves the mapping once for the run.
func NewStage(corners ports.CornerSet, target pipeline.TargetRect) (*Stage, error) {
	mapping, err := NewMapping(corners, target)
	if err != nil {
		return nil, err
	}
	return &Stage{mapping: mapping}, nil
}

// Execute rectifies one frame.
func (s *Stage) Execute(ctx context.Context, input pipeline.RectifyInput) (pipeline.RectifyResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.RectifyResult{}, err
	}
	if input.Frame == nil {
		return pipeline.RectifyResult{}, errors.New("rectify: nil frame")
	}
	return pipeline.RectifyResult{Image: s.mapping.Apply(input.Frame)}, nil
}

var _ pipeline.Stage[pipeline.RectifyInput, pipeline.RectifyResult] = (*Stage)(nil)
