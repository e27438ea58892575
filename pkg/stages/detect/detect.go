// Package detect implements the capture state machine.
//
// The detector consumes the per-frame signal strictly in frame order and
// decides which frame of each slide cycle is worth saving. A transition
// spike primes it, a sustained quiet run confirms the slide is stable,
// and the emitted frame index is backtracked toward the start of the run
// to avoid settling blur.
package detect

import (
	"github.com/user/slidecap/pkg/pipeline"
)

// Config holds the detector thresholds and timings, all in frames.
type Config struct {
	// PrimingThreshold is the signal level that marks a slide transition.
	PrimingThreshold float64
	// CaptureThreshold is the level the signal must stay at or below for
	// the stable run.
	CaptureThreshold float64
	// FramesRequired is the consecutive quiet frames needed to confirm a
	// stable slide.
	FramesRequired int
	// BacktrackFrames is how far before the detection point the saved
	// frame is taken.
	BacktrackFrames int
	// StartFrame is the stream origin; backtracking never goes below it.
	StartFrame int
	// RePrime picks the policy for a priming-level spike while PRIMED.
	RePrime pipeline.RePrimePolicy
}

// Detector is the capture state machine. One instance per run; it is not
// safe for concurrent use and expects Feed calls in increasing index
// order.
type Detector struct {
	cfg   Config
	state pipeline.CaptureState
	run   int
}

// New creates a detector in the IDLE state.
func New(cfg Config) *Detector {
	return &Detector{cfg: cfg, state: pipeline.StateIdle}
}

// State returns the current capture state.
func (d *Detector) State() pipeline.CaptureState {
	return d.state
}

// Feed consumes the signal value for one frame and reports whether a
// capture event was emitted for it.
func (d *Detector) Feed(index int, value float64) (pipeline.CaptureEvent, bool) {
	switch d.state {
	case pipeline.StateIdle:
		if value >= d.cfg.PrimingThreshold {
			d.state = pipeline.StatePrimed
			d.run = 0
		}

	case pipeline.StatePrimed:
		switch {
		case value >= d.cfg.PrimingThreshold:
			// A secondary spike before the run completed.
			d.run = 0
			if d.cfg.RePrime == pipeline.RePrimeRearm {
				d.state = pipeline.StateIdle
			}
		case value <= d.cfg.CaptureThreshold:
			d.run++
			if d.run >= d.cfg.FramesRequired {
				d.state = pipeline.StateCapturing
				return pipeline.CaptureEvent{
					FrameIndex: d.backtrack(index),
					DetectedAt: index,
					Signal:     value,
				}, true
			}
		default:
			// Mid-band value: the run of quiet frames is broken.
			d.run = 0
		}

	case pipeline.StateCapturing:
		if value >= d.cfg.PrimingThreshold {
			d.state = pipeline.StateIdle
		}
	}

	return pipeline.CaptureEvent{}, false
}

// backtrack clamps the saved index to the configured start frame.
func (d *Detector) backtrack(index int) int {
	target := index - d.cfg.BacktrackFrames
	if target < d.cfg.StartFrame {
		return d.cfg.StartFrame
	}
	return target
}
