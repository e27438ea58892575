// Package diagsink provides a file-based diagnostic sink: the per-frame
// signal as CSV and as a plot against the configured thresholds, plus a
// corner-set preview rendered over the averaged reference image. All of
// it is tuning aid only; the pipeline runs identically without it.
package diagsink

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/user/slidecap/pkg/ports"
)

// previewScale halves the preview so it fits a terminal image viewer.
const previewScale = 2

// Sink writes diagnostics into a base directory.
type Sink struct {
	baseDir string
	fs      ports.FileSystem

	// Running average of observed frames, used for the corner preview.
	sum    []float64
	width  int
	height int
	frames int
}

// New creates a sink writing under baseDir.
func New(baseDir string, fs ports.FileSystem) *Sink {
	return &Sink{baseDir: baseDir, fs: fs}
}

// Enabled returns true as this sink collects output.
func (s *Sink) Enabled() bool {
	return true
}

// ObserveFrame accumulates a frame into the running average. Frames with
// mismatched dimensions are ignored.
func (s *Sink) ObserveFrame(img image.Image) {
	src := imaging.Clone(img)
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()

	if s.sum == nil {
		s.sum = make([]float64, w*h*3)
		s.width = w
		s.height = h
	}
	if w != s.width || h != s.height {
		return
	}

	di := 0
	for si := 0; si < len(src.Pix); si += 4 {
		s.sum[di+0] += float64(src.Pix[si+0])
		s.sum[di+1] += float64(src.Pix[si+1])
		s.sum[di+2] += float64(src.Pix[si+2])
		di += 3
	}
	s.frames++
}

// SaveSignal writes signal.csv and signal.png.
func (s *Sink) SaveSignal(samples []ports.SignalSample, priming, capture float64) error {
	if err := s.saveCSV(samples); err != nil {
		return err
	}
	return s.savePlot(samples, priming, capture)
}

func (s *Sink) saveCSV(samples []ports.SignalSample) error {
	var b strings.Builder
	b.WriteString("frame,signal\n")
	for _, sample := range samples {
		b.WriteString(strconv.Itoa(sample.Index))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(sample.Value, 'f', 4, 64))
		b.WriteByte('\n')
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, "signal.csv"), []byte(b.String()))
}

func (s *Sink) savePlot(samples []ports.SignalSample, priming, capture float64) error {
	p := plot.New()
	p.Title.Text = "Capture signal"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Signal"
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(samples))
	for i, sample := range samples {
		xys[i].X = float64(sample.Index)
		xys[i].Y = sample.Value
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("signal line: %w", err)
	}
	line.Color = plotutil.Color(0)
	p.Add(line)
	p.Legend.Add("signal", line)

	if len(samples) > 0 {
		first := float64(samples[0].Index)
		last := float64(samples[len(samples)-1].Index)
		for i, threshold := range []struct {
			name  string
			value float64
		}{
			{"priming threshold", priming},
			{"capture threshold", capture},
		} {
			rule, err := plotter.NewLine(plotter.XYs{
				{X: first, Y: threshold.value},
				{X: last, Y: threshold.value},
			})
			if err != nil {
				return fmt.Errorf("threshold line: %w", err)
			}
			rule.Color = plotutil.Color(i + 1)
			rule.Dashes = plotutil.Dashes(1)
			p.Add(rule)
			p.Legend.Add(threshold.name, rule)
		}
	}

	wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return fmt.Errorf("render plot: %w", err)
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, "signal.png"), buf.Bytes())
}

// SaveCorners writes the corner set used for the run.
func (s *Sink) SaveCorners(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "corners.json"), data)
}

// SavePreview draws the corner quadrilateral over the averaged reference
// image and writes it half-size.
func (s *Sink) SavePreview(corners ports.CornerSet) error {
	if s.frames == 0 {
		return nil
	}

	dc := gg.NewContextForImage(s.average())
	dc.SetRGB255(255, 0, 0)
	dc.SetLineWidth(2)

	pts := corners.Points()
	for i, pt := range pts {
		next := pts[(i+1)%len(pts)]
		dc.DrawLine(pt.X, pt.Y, next.X, next.Y)
		dc.Stroke()
	}
	for _, pt := range pts {
		dc.DrawCircle(pt.X, pt.Y, 5)
		dc.Fill()
	}

	full := dc.Image()
	half := image.NewNRGBA(image.Rect(0, 0, s.width/previewScale, s.height/previewScale))
	xdraw.ApproxBiLinear.Scale(half, half.Bounds(), full, full.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, half); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, "preview.png"), buf.Bytes())
}

// average builds the mean image of all observed frames.
func (s *Sink) average() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.width, s.height))
	n := float64(s.frames)
	si := 0
	for di := 0; di < len(img.Pix); di += 4 {
		img.Pix[di+0] = uint8(s.sum[si+0]/n + 0.5)
		img.Pix[di+1] = uint8(s.sum[si+1]/n + 0.5)
		img.Pix[di+2] = uint8(s.sum[si+2]/n + 0.5)
		img.Pix[di+3] = 255
		si += 3
	}
	return img
}

var _ ports.DiagnosticSink = (*Sink)(nil)
