package ports

import "image"

// Point is a pixel coordinate in source-frame space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CornerSet is the marked quadrilateral of a slide in source-frame space,
// in fixed order. The four points must form a simple quadrilateral;
// collinear configurations are rejected when the rectification mapping is
// built.
type CornerSet struct {
	TopLeft     Point `json:"top_left"`
	TopRight    Point `json:"top_right"`
	BottomRight Point `json:"bottom_right"`
	BottomLeft  Point `json:"bottom_left"`
}

// Points returns the corners in order: top-left, top-right, bottom-right,
// bottom-left.
func (c CornerSet) Points() [4]Point {
	return [4]Point{c.TopLeft, c.TopRight, c.BottomRight, c.BottomLeft}
}

// CornerPicker obtains the corner set for a run. Implementations may be
// interactive; the pipeline itself only ever sees the returned value, so
// a literal, non-interactive picker keeps runs reproducible.
type CornerPicker interface {
	// PickCorners returns the corner set, given a reference image of the
	// source video (typically the first frame).
	PickCorners(reference image.Image) (CornerSet, error)
}
