// Package orchestrator drives the extraction pipeline: frames flow from
// the source through the metric and the capture state machine, and each
// capture event is rectified and saved.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/ideamans/go-l10n"
	"github.com/schollz/progressbar/v3"

	"github.com/user/slidecap/pkg/pipeline"
	"github.com/user/slidecap/pkg/ports"
	"github.com/user/slidecap/pkg/stages/detect"
	"github.com/user/slidecap/pkg/stages/rectify"
	"github.com/user/slidecap/pkg/stages/signal"
)

// Config contains the resolved, validated settings for one run.
type Config struct {
	// Geometry
	AspectRatio pipeline.AspectRatio
	Corners     *ports.CornerSet // nil = obtain from the corner picker
	OutputWidth int              // 0 = derive from corner extent

	// Capture
	Metric           pipeline.Metric
	PrimingThreshold float64
	CaptureThreshold float64
	FramesRequired   int
	BacktrackMs      int
	RePrime          pipeline.RePrimePolicy

	// Frame range. EndFrame is exclusive; 0 means the end of the stream.
	StartFrame int
	EndFrame   int

	// ShowProgress draws a terminal progress bar during the scan.
	ShowProgress bool
}

// RunResult summarizes a completed run.
type RunResult struct {
	FramesScanned   int
	SlidesCaptured  int
	BacktrackFrames int
	Corners         ports.CornerSet
	Target          pipeline.TargetRect
}

// Orchestrator coordinates the extraction pipeline. The capture state is
// owned here and never shared; frames are consumed in one strictly
// increasing pass.
type Orchestrator struct {
	source ports.FrameSource
	picker ports.CornerPicker
	writer ports.SlideWriter
	sink   ports.DiagnosticSink
	logger ports.Logger
}

// New creates a new Orchestrator.
func New(
	source ports.FrameSource,
	picker ports.CornerPicker,
	writer ports.SlideWriter,
	sink ports.DiagnosticSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		source: source,
		picker: picker,
		writer: writer,
		sink:   sink,
		logger: logger,
	}
}

// Run executes the complete pipeline.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	result := RunResult{}

	rate := o.source.FrameRate()
	if rate <= 0 {
		return result, errors.New("orchestrator: frame source reports no frame rate")
	}
	result.BacktrackFrames = backtrackFrames(rate, config.BacktrackMs)

	end := o.source.FrameCount()
	if config.EndFrame > 0 && (end == 0 || config.EndFrame < end) {
		end = config.EndFrame
	}
	if end > 0 && config.StartFrame >= end {
		// An empty range scans nothing and captures nothing.
		return result, nil
	}

	corners, ok, err := o.resolveCorners(config)
	if err != nil {
		return result, err
	}
	if !ok {
		// No frames at all; nothing to do.
		return result, nil
	}
	result.Corners = corners
	result.Target = pipeline.TargetRectFor(corners, config.AspectRatio, config.OutputWidth)
	o.logger.Info(l10n.F("Rectifying to %dx%d (aspect %s)", result.Target.Width, result.Target.Height, config.AspectRatio))

	// The mapping is solved once here; degenerate corners abort the run
	// before any frame is rectified.
	rectifier, err := rectify.NewStage(corners, result.Target)
	if err != nil {
		o.logger.Error(l10n.F("Failed to build rectification mapping: %s", err))
		return result, err
	}

	meter := signal.ForMetric(config.Metric)
	detector := detect.New(detect.Config{
		PrimingThreshold: config.PrimingThreshold,
		CaptureThreshold: config.CaptureThreshold,
		FramesRequired:   config.FramesRequired,
		BacktrackFrames:  result.BacktrackFrames,
		StartFrame:       config.StartFrame,
		RePrime:          config.RePrime,
	})

	// The ring must cover the backtrack distance plus the stable run
	// that confirms it.
	ring := newFrameRing(result.BacktrackFrames + config.FramesRequired + 1)

	var samples []ports.SignalSample
	bar := o.newProgressBar(config, end)

	i := config.StartFrame
	for ; end == 0 || i < end; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		frame, err := o.source.Frame(i)
		if err != nil {
			if errors.Is(err, ports.ErrFrameAccess) {
				o.logger.Debug(l10n.F("Stream ended at frame %d", i))
				break
			}
			return result, fmt.Errorf("read frame %d: %w", i, err)
		}

		if o.sink.Enabled() {
			o.sink.ObserveFrame(frame)
		}
		ring.put(i, frame)

		value := meter.Measure(frame)
		samples = append(samples, ports.SignalSample{Index: i, Value: value})

		if event, fired := detector.Feed(i, value); fired {
			path, err := o.capture(ctx, event, ring, rectifier, result.SlidesCaptured+1)
			if err != nil {
				if errors.Is(err, ports.ErrFrameAccess) {
					// Fatal for this slide only: keep scanning.
					o.logger.Warn(l10n.F("Skipping slide at frame %d: %s", event.FrameIndex, err))
				} else {
					return result, err
				}
			} else {
				result.SlidesCaptured++
				o.logger.Info(l10n.F("Captured slide %d (frame %d) to %s", result.SlidesCaptured, event.FrameIndex, path))
			}
		}

		if bar != nil {
			bar.Add(1)
		}
	}
	result.FramesScanned = i - config.StartFrame
	if bar != nil {
		bar.Finish()
	}

	o.saveDiagnostics(config, corners, samples)

	o.logger.Info(l10n.F("Done: %d slides captured from %d frames", result.SlidesCaptured, result.FramesScanned))
	return result, nil
}

// Transform re-maps already saved photos through the corner mapping:
// every frame in the range is rectified and saved in order, with no
// capture detection. It backs batch re-crops of an extracted directory.
func (o *Orchestrator) Transform(ctx context.Context, config Config) (RunResult, error) {
	result := RunResult{}

	end := o.source.FrameCount()
	if config.EndFrame > 0 && (end == 0 || config.EndFrame < end) {
		end = config.EndFrame
	}
	if end > 0 && config.StartFrame >= end {
		return result, nil
	}

	corners, ok, err := o.resolveCorners(config)
	if err != nil {
		return result, err
	}
	if !ok {
		return result, nil
	}
	result.Corners = corners
	result.Target = pipeline.TargetRectFor(corners, config.AspectRatio, config.OutputWidth)

	rectifier, err := rectify.NewStage(corners, result.Target)
	if err != nil {
		o.logger.Error(l10n.F("Failed to build rectification mapping: %s", err))
		return result, err
	}

	i := config.StartFrame
	for ; end == 0 || i < end; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		frame, err := o.source.Frame(i)
		if err != nil {
			if errors.Is(err, ports.ErrFrameAccess) {
				o.logger.Debug(l10n.F("Stream ended at frame %d", i))
				break
			}
			return result, fmt.Errorf("read frame %d: %w", i, err)
		}

		rectified, err := rectifier.Execute(ctx, pipeline.RectifyInput{Frame: frame})
		if err != nil {
			return result, fmt.Errorf("rectify frame %d: %w", i, err)
		}

		path, err := o.writer.Save(rectified.Image, result.SlidesCaptured+1)
		if err != nil {
			o.logger.Error(l10n.F("Failed to write slide %d: %s", result.SlidesCaptured+1, err))
			return result, fmt.Errorf("save photo %d: %w", result.SlidesCaptured+1, err)
		}
		result.SlidesCaptured++
		o.logger.Debug(l10n.F("Transformed frame %d to %s", i, path))
	}
	result.FramesScanned = i - config.StartFrame

	o.logger.Info(l10n.F("Done: %d photos transformed from %d frames", result.SlidesCaptured, result.FramesScanned))
	return result, nil
}

// capture rectifies the backtracked frame of an event and saves it.
func (o *Orchestrator) capture(
	ctx context.Context,
	event pipeline.CaptureEvent,
	ring *frameRing,
	rectifier *rectify.Stage,
	sequence int,
) (string, error) {
	frame, ok := ring.get(event.FrameIndex)
	if !ok {
		return "", fmt.Errorf("%w: frame %d not in the rolling window", ports.ErrFrameAccess, event.FrameIndex)
	}

	rectified, err := rectifier.Execute(ctx, pipeline.RectifyInput{Frame: frame})
	if err != nil {
		return "", fmt.Errorf("rectify frame %d: %w", event.FrameIndex, err)
	}

	path, err := o.writer.Save(rectified.Image, sequence)
	if err != nil {
		o.logger.Error(l10n.F("Failed to write slide %d: %s", sequence, err))
		return "", fmt.Errorf("save slide %d: %w", sequence, err)
	}
	return path, nil
}

// resolveCorners returns the literal corner set, or asks the picker with
// the first frame as reference. ok is false when the stream is empty.
func (o *Orchestrator) resolveCorners(config Config) (ports.CornerSet, bool, error) {
	if config.Corners != nil {
		return *config.Corners, true, nil
	}

	reference, err := o.source.Frame(config.StartFrame)
	if err != nil {
		if errors.Is(err, ports.ErrFrameAccess) {
			return ports.CornerSet{}, false, nil
		}
		return ports.CornerSet{}, false, fmt.Errorf("read reference frame: %w", err)
	}

	corners, err := o.picker.PickCorners(reference)
	if err != nil {
		return ports.CornerSet{}, false, fmt.Errorf("pick corners: %w", err)
	}
	return corners, true, nil
}

func (o *Orchestrator) newProgressBar(config Config, end int) *progressbar.ProgressBar {
	if !config.ShowProgress {
		return nil
	}
	total := -1
	if end > 0 {
		total = end - config.StartFrame
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(l10n.T("Scanning frames")),
		progressbar.OptionSetWidth(15),
		progressbar.OptionShowCount(),
	)
}

// saveDiagnostics writes the optional tuning output. Failures are logged
// and do not fail the run.
func (o *Orchestrator) saveDiagnostics(config Config, corners ports.CornerSet, samples []ports.SignalSample) {
	if !o.sink.Enabled() {
		return
	}
	if err := o.sink.SaveSignal(samples, config.PrimingThreshold, config.CaptureThreshold); err != nil {
		o.logger.Warn(l10n.F("Failed to save signal diagnostics: %s", err))
	}
	if data, err := json.MarshalIndent(corners, "", "  "); err == nil {
		if err := o.sink.SaveCorners(data); err != nil {
			o.logger.Warn(l10n.F("Failed to save corner set: %s", err))
		}
	}
	if err := o.sink.SavePreview(corners); err != nil {
		o.logger.Warn(l10n.F("Failed to save corner preview: %s", err))
	}
}

// backtrackFrames converts the backtrack duration to frames. Rounding
// up keeps a 1ms backtrack from collapsing to zero frames.
func backtrackFrames(rate float64, ms int) int {
	return int(math.Ceil(rate / 1000 * float64(ms)))
}

// frameRing retains the most recent frames by index so capture events
// can reach back to the start of the stable run.
type frameRing struct {
	slots []ringSlot
}

type ringSlot struct {
	index int
	frame image.Image
	valid bool
}

func newFrameRing(size int) *frameRing {
	if size < 1 {
		size = 1
	}
	return &frameRing{slots: make([]ringSlot, size)}
}

func (r *frameRing) put(index int, frame image.Image) {
	r.slots[index%len(r.slots)] = ringSlot{index: index, frame: frame, valid: true}
}

func (r *frameRing) get(index int) (image.Image, bool) {
	s := r.slots[index%len(r.slots)]
	if !s.valid || s.index != index {
		return nil, false
	}
	return s.frame, true
}
