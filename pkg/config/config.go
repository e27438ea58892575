// Package config provides configuration loading and validation.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/slidecap/pkg/pipeline"
	"github.com/user/slidecap/pkg/ports"
)

// Config represents the full configuration for an extraction run.
type Config struct {
	// Input/Output
	Input  string `yaml:"input"`
	Output string `yaml:"output"`

	// Geometry
	AspectRatio string `yaml:"aspect_ratio"` // "W:H"
	Corners     string `yaml:"corners"`      // JSON array of 4 [x,y] pairs; empty = centered default
	OutputWidth int    `yaml:"output_width"` // 0 = derive from corner extent

	// Capture
	Metric           string  `yaml:"metric"` // difference | brightness
	PrimingThreshold float64 `yaml:"priming_threshold"`
	CaptureThreshold float64 `yaml:"capture_threshold"`
	FramesRequired   int     `yaml:"frames_required"`
	BacktrackMs      int     `yaml:"backtrack_ms"`
	RePrimePolicy    string  `yaml:"reprime_policy"` // reset | rearm

	// Frame range. EndFrame is exclusive; 0 means the end of the stream.
	StartFrame int `yaml:"start_frame"`
	EndFrame   int `yaml:"end_frame"`

	// Output encoding
	Format      string `yaml:"format"` // jpg | png
	JPEGQuality int    `yaml:"jpeg_quality"`

	// Diagnostics
	Diagnostics    bool   `yaml:"diagnostics"`
	DiagnosticsDir string `yaml:"diagnostics_dir"`

	// Decoder
	FFmpegPath string `yaml:"ffmpeg_path"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Output:           "./output",
		AspectRatio:      "3:2",
		Metric:           string(pipeline.MetricDifference),
		PrimingThreshold: 50,
		CaptureThreshold: 3,
		FramesRequired:   5,
		BacktrackMs:      50,
		RePrimePolicy:    string(pipeline.RePrimeReset),
		Format:           "jpg",
		JPEGQuality:      95,
		DiagnosticsDir:   "./diagnostics",
	}
}

// LoadFromFile loads configuration from a YAML file over the defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ValidationError reports a configuration problem. All validation runs
// before any frame is processed.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Validate checks the configuration and returns the first problem found.
func (c Config) Validate() error {
	if c.Input == "" {
		return &ValidationError{Field: "input", Reason: "no input video given"}
	}
	if _, err := ParseAspectRatio(c.AspectRatio); err != nil {
		return &ValidationError{Field: "aspect_ratio", Reason: err.Error()}
	}
	switch pipeline.Metric(c.Metric) {
	case pipeline.MetricDifference, pipeline.MetricBrightness:
	default:
		return &ValidationError{Field: "metric", Reason: fmt.Sprintf("unknown metric %q", c.Metric)}
	}
	if c.PrimingThreshold <= 0 || c.PrimingThreshold > 255 {
		return &ValidationError{Field: "priming_threshold", Reason: "must be in (0, 255]"}
	}
	if c.CaptureThreshold <= 0 || c.CaptureThreshold > 255 {
		return &ValidationError{Field: "capture_threshold", Reason: "must be in (0, 255]"}
	}
	if c.CaptureThreshold >= c.PrimingThreshold {
		return &ValidationError{Field: "capture_threshold", Reason: "must be below priming_threshold"}
	}
	if c.FramesRequired < 1 {
		return &ValidationError{Field: "frames_required", Reason: "must be at least 1"}
	}
	if c.BacktrackMs < 0 {
		return &ValidationError{Field: "backtrack_ms", Reason: "must not be negative"}
	}
	switch pipeline.RePrimePolicy(c.RePrimePolicy) {
	case pipeline.RePrimeReset, pipeline.RePrimeRearm:
	default:
		return &ValidationError{Field: "reprime_policy", Reason: fmt.Sprintf("unknown policy %q", c.RePrimePolicy)}
	}
	if c.StartFrame < 0 {
		return &ValidationError{Field: "start_frame", Reason: "must not be negative"}
	}
	if c.EndFrame != 0 && c.EndFrame < c.StartFrame {
		return &ValidationError{Field: "end_frame", Reason: "must not be below start_frame"}
	}
	if c.OutputWidth < 0 {
		return &ValidationError{Field: "output_width", Reason: "must not be negative"}
	}
	switch c.Format {
	case "jpg", "jpeg", "png":
	default:
		return &ValidationError{Field: "format", Reason: fmt.Sprintf("unknown format %q", c.Format)}
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return &ValidationError{Field: "jpeg_quality", Reason: "must be in [1, 100]"}
	}
	if c.Corners != "" {
		if _, err := ParseCorners(c.Corners); err != nil {
			return &ValidationError{Field: "corners", Reason: err.Error()}
		}
	}
	return nil
}

// ParseAspectRatio parses a "W:H" ratio of two positive integers.
func ParseAspectRatio(s string) (pipeline.AspectRatio, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return pipeline.AspectRatio{}, fmt.Errorf("aspect ratio %q: want the format \"W:H\"", s)
	}
	w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil {
		return pipeline.AspectRatio{}, fmt.Errorf("aspect ratio %q: both sides must be integers", s)
	}
	if w <= 0 || h <= 0 {
		return pipeline.AspectRatio{}, fmt.Errorf("aspect ratio %q: both sides must be positive", s)
	}
	return pipeline.AspectRatio{W: w, H: h}, nil
}

// ParseCorners parses a literal corner set: a JSON array of exactly four
// [x, y] pairs in top-left, top-right, bottom-right, bottom-left order.
// This matches the corners.json written to the diagnostics directory, so
// a previous run's geometry can be fed back in.
func ParseCorners(s string) (ports.CornerSet, error) {
	var pairs [][]float64
	if err := json.Unmarshal([]byte(s), &pairs); err != nil {
		return ports.CornerSet{}, fmt.Errorf("corners: %v", err)
	}
	if len(pairs) != 4 {
		return ports.CornerSet{}, fmt.Errorf("corners: want 4 points, got %d", len(pairs))
	}
	var pts [4]ports.Point
	for i, p := range pairs {
		if len(p) != 2 {
			return ports.CornerSet{}, fmt.Errorf("corners: point %d: want [x, y], got %d values", i, len(p))
		}
		pts[i] = ports.Point{X: p[0], Y: p[1]}
	}
	return ports.CornerSet{
		TopLeft:     pts[0],
		TopRight:    pts[1],
		BottomRight: pts[2],
		BottomLeft:  pts[3],
	}, nil
}
