// Package dirsource provides a frame source over a directory of still
// images sorted by file name. It backs the rotation pass and batch
// re-transforms of already extracted slides.
package dirsource

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/user/slidecap/pkg/ports"
)

// Source reads frames from image files in one directory.
type Source struct {
	dir   string
	names []string
	rate  float64
}

// Option configures a Source.
type Option func(*Source)

// WithFrameRate sets the nominal frame rate reported for the directory.
func WithFrameRate(rate float64) Option {
	return func(s *Source) {
		s.rate = rate
	}
}

// New lists the image files in dir in name order.
func New(dir string, opts ...Option) (*Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	s := &Source{dir: dir, rate: 30}
	for _, opt := range opts {
		opt(s)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			s.names = append(s.names, entry.Name())
		}
	}
	sort.Strings(s.names)
	return s, nil
}

// FrameCount returns the number of image files.
func (s *Source) FrameCount() int {
	return len(s.names)
}

// FrameRate returns the configured nominal rate.
func (s *Source) FrameRate() float64 {
	return s.rate
}

// Name returns the file name of the frame at the given index.
func (s *Source) Name(index int) (string, error) {
	if index < 0 || index >= len(s.names) {
		return "", fmt.Errorf("%w: index %d of %d files", ports.ErrFrameAccess, index, len(s.names))
	}
	return s.names[index], nil
}

// Frame loads the image at the given index.
func (s *Source) Frame(index int) (image.Image, error) {
	name, err := s.Name(index)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return img, nil
}

// Close is a no-op; files are opened per frame.
func (s *Source) Close() error {
	return nil
}

var _ ports.FrameSource = (*Source)(nil)
