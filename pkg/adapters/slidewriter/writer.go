// Package slidewriter persists rectified slides as sequentially numbered
// image files.
package slidewriter

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/user/slidecap/pkg/ports"
)

// Writer saves slides under dir as slide_0001.jpg, slide_0002.jpg, ...
// Files are written to a temporary name and renamed into place, so an
// aborted run never leaves a half-written slide.
type Writer struct {
	dir     string
	format  imaging.Format
	ext     string
	quality int
	fs      ports.FileSystem
}

// New creates a writer, creating the output directory if absent.
// Format is "jpg", "jpeg" or "png".
func New(dir, format string, quality int, fs ports.FileSystem) (*Writer, error) {
	w := &Writer{dir: dir, quality: quality, fs: fs}
	switch format {
	case "jpg", "jpeg":
		w.format = imaging.JPEG
		w.ext = "jpg"
	case "png":
		w.format = imaging.PNG
		w.ext = "png"
	default:
		return nil, fmt.Errorf("slidewriter: unknown format %q", format)
	}

	if err := fs.MkdirAll(dir); err != nil {
		return nil, fmt.Errorf("slidewriter: create %s: %w", dir, err)
	}
	return w, nil
}

// Save encodes and writes one slide, returning the final path.
func (w *Writer) Save(img image.Image, sequence int) (string, error) {
	var buf bytes.Buffer
	err := imaging.Encode(&buf, img, w.format, imaging.JPEGQuality(w.quality))
	if err != nil {
		return "", fmt.Errorf("encode slide %d: %w", sequence, err)
	}

	name := fmt.Sprintf("slide_%04d.%s", sequence, w.ext)
	final := filepath.Join(w.dir, name)
	tmp := filepath.Join(w.dir, "."+name+".tmp")

	if err := w.fs.WriteFile(tmp, buf.Bytes()); err != nil {
		return "", fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := w.fs.Rename(tmp, final); err != nil {
		w.fs.Remove(tmp)
		return "", fmt.Errorf("rename %s: %w", final, err)
	}
	return final, nil
}

var _ ports.SlideWriter = (*Writer)(nil)
