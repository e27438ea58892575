package rotate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/user/slidecap/pkg/pipeline"
)

// Pass rewrites the slides in a directory in place: each file is rotated
// by its quarter-turn count and renamed to its base name.
type Pass struct {
	stage   *Stage
	forced  *int
	quality int
}

// NewPass creates a directory pass. When forced is non-nil every slide
// image gets that turn count; otherwise the count comes from the
// rotation metadata in each file name.
func NewPass(forced *int, quality int) *Pass {
	return &Pass{stage: NewStage(), forced: forced, quality: quality}
}

// Run processes one directory and returns how many slides were rotated.
// Zero-turn files still lose their rotation suffix, so the pass leaves
// no metadata behind.
func (p *Pass) Run(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	rotated := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		turns, ok := TurnsFromName(name)
		if p.forced != nil {
			if !isSlideImage(name) {
				continue
			}
			turns = *p.forced
		} else if !ok {
			continue
		}

		src := filepath.Join(dir, name)
		dst := filepath.Join(dir, BaseName(name))

		if turns%4 == 0 {
			if dst != src {
				if err := os.Rename(src, dst); err != nil {
					return rotated, fmt.Errorf("rename %s: %w", src, err)
				}
			}
			continue
		}

		img, err := imaging.Open(src)
		if err != nil {
			return rotated, fmt.Errorf("open %s: %w", src, err)
		}

		result, err := p.stage.Execute(ctx, pipeline.RotateInput{Image: img, Turns: turns})
		if err != nil {
			return rotated, fmt.Errorf("rotate %s: %w", src, err)
		}

		if err := imaging.Save(result.Image, dst, imaging.JPEGQuality(p.quality)); err != nil {
			return rotated, fmt.Errorf("save %s: %w", dst, err)
		}
		if dst != src {
			if err := os.Remove(src); err != nil {
				return rotated, fmt.Errorf("remove %s: %w", src, err)
			}
		}
		rotated++
	}
	return rotated, nil
}

func isSlideImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
