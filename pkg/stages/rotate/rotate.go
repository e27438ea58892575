// Package rotate implements the post-hoc rotation pass over saved slides.
//
// Slides shot sideways in the projector tray come out of the extraction
// pass rotated by a quarter turn. This pass fixes them without another
// resampling of the source video: quarter turns are lossless.
package rotate

import (
	"context"
	"errors"
	"regexp"

	"github.com/disintegration/imaging"

	"github.com/user/slidecap/pkg/pipeline"
)

// rotationName matches slide files carrying rotation metadata in their
// name, e.g. slide_0012_rotation_3.jpg.
var rotationName = regexp.MustCompile(`slide_[0-9]{4}_rotation_([0-3])\.(?:jpe?g|png)$`)

// TurnsFromName extracts the quarter-turn count encoded in a slide file
// name, if any.
func TurnsFromName(name string) (int, bool) {
	m := rotationName.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	// The capture group is a single digit 0-3.
	return int(m[1][0] - '0'), true
}

// BaseName strips the rotation metadata from a slide file name, giving
// the name the rotated slide should be saved under.
func BaseName(name string) string {
	if !rotationName.MatchString(name) {
		return name
	}
	return rotationSuffix.ReplaceAllString(name, ".")
}

var rotationSuffix = regexp.MustCompile(`_rotation_[0-3]\.`)

// Stage rotates slides by counter-clockwise quarter turns.
type Stage struct{}

// NewStage creates a rotation stage.
func NewStage() *Stage {
	return &Stage{}
}

// Execute rotates one slide.
func (s *Stage) Execute(ctx context.Context, input pipeline.RotateInput) (pipeline.RotateResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.RotateResult{}, err
	}
	if input.Image == nil {
		return pipeline.RotateResult{}, errors.New("rotate: nil image")
	}

	img := input.Image
	switch ((input.Turns % 4) + 4) % 4 {
	case 1:
		img = imaging.Rotate90(img)
	case 2:
		img = imaging.Rotate180(img)
	case 3:
		img = imaging.Rotate270(img)
	}
	return pipeline.RotateResult{Image: img}, nil
}

var _ pipeline.Stage[pipeline.RotateInput, pipeline.RotateResult] = (*Stage)(nil)
