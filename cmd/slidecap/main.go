// Package main provides the CLI entry point for slidecap.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"

	"github.com/user/slidecap/pkg/adapters/diagsink"
	"github.com/user/slidecap/pkg/adapters/dirsource"
	"github.com/user/slidecap/pkg/adapters/ffmpegsource"
	"github.com/user/slidecap/pkg/adapters/literalpicker"
	"github.com/user/slidecap/pkg/adapters/logger"
	"github.com/user/slidecap/pkg/adapters/nullsink"
	"github.com/user/slidecap/pkg/adapters/osfilesystem"
	"github.com/user/slidecap/pkg/adapters/slidewriter"
	"github.com/user/slidecap/pkg/config"
	"github.com/user/slidecap/pkg/orchestrator"
	"github.com/user/slidecap/pkg/pipeline"
	"github.com/user/slidecap/pkg/ports"
	"github.com/user/slidecap/pkg/stages/rotate"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Extract   ExtractCmd   `cmd:"" help:"Extract slide images from a projector video."`
	Rotate    RotateCmd    `cmd:"" help:"Rotate extracted slides by quarter turns."`
	Transform TransformCmd `cmd:"" help:"Re-crop saved photos through a corner mapping."`
	Version   VersionCmd   `cmd:"" help:"Show version information."`
}

// ExtractCmd defines the extract subcommand.
type ExtractCmd struct {
	// Required arguments
	Input  string `arg:"" help:"Input video file, or a directory of frame images."`
	Output string `short:"o" help:"Output directory for slide images (default: ./output)."`

	// Config file; CLI flags override its values
	Config string `short:"C" help:"YAML configuration file."`

	// Geometry options
	AspectRatio *string `short:"a" help:"Slide aspect ratio as W:H (default: 3:2)."`
	Corners     *string `help:"Screen corners as JSON [[x,y],...] in TL,TR,BR,BL order."`
	OutputWidth *int    `short:"W" help:"Output slide width in pixels (default: from corner extent)."`

	// Capture options
	Metric           *string  `short:"m" help:"Change signal metric (difference or brightness)."`
	PrimingThreshold *float64 `help:"Signal level that arms the detector (default: 50)."`
	CaptureThreshold *float64 `help:"Signal level counted as stable (default: 3)."`
	FramesRequired   *int     `help:"Consecutive stable frames before a capture (default: 5)."`
	BacktrackMs      *int     `help:"How far before the stable run to capture, in milliseconds (default: 50)."`
	RePrimePolicy    *string  `help:"Spike handling while armed (reset or rearm)."`

	// Frame range
	StartFrame *int `help:"First frame to scan."`
	EndFrame   *int `help:"Frame to stop before (0 = end of stream)."`

	// Output encoding
	Format      *string `short:"f" help:"Output image format (jpg or png)."`
	JPEGQuality *int    `short:"q" help:"JPEG quality 1-100 (default: 95)."`

	// Diagnostics options
	Diagnostics    bool    `short:"d" help:"Write tuning diagnostics (signal plot, corner preview)."`
	DiagnosticsDir *string `help:"Directory for diagnostics output (default: ./diagnostics)."`

	// Decoder options
	FFmpegPath string   `help:"Path to ffmpeg executable (falls back to PATH)."`
	FrameRate  *float64 `help:"Frame rate to assume for directory input (default: 30)."`

	// Logging options
	LogLevel string `short:"l" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)."`
	Quiet    bool   `short:"Q" help:"Suppress all log output."`
}

// RotateCmd defines the rotate subcommand.
type RotateCmd struct {
	Dir string `arg:"" help:"Directory of extracted slides."`

	Turns       *int `short:"t" help:"Quarter turns counter-clockwise for every slide (default: from file names)."`
	JPEGQuality int  `short:"q" default:"95" help:"JPEG quality 1-100 for re-encoded slides."`

	LogLevel string `short:"l" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)."`
	Quiet    bool   `short:"Q" help:"Suppress all log output."`
}

// TransformCmd defines the transform subcommand.
type TransformCmd struct {
	Dir    string `arg:"" help:"Directory of photos to re-transform."`
	Output string `short:"o" default:"./output" help:"Output directory for transformed photos."`

	AspectRatio string `short:"a" default:"3:2" help:"Photo aspect ratio as W:H."`
	Corners     string `help:"Corners as JSON [[x,y],...] in TL,TR,BR,BL order (default: centered quad)."`
	OutputWidth int    `short:"W" help:"Output width in pixels (default: from corner extent)."`

	Format      string `short:"f" default:"jpg" help:"Output image format (jpg or png)."`
	JPEGQuality int    `short:"q" default:"95" help:"JPEG quality 1-100."`

	LogLevel string `short:"l" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)."`
	Quiet    bool   `short:"Q" help:"Suppress all log output."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("slidecap"),
		kong.Description("Extract still slide images from videos of slide projections."),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the extract command.
func (cmd *ExtractCmd) Run() error {
	cfg, err := cmd.buildConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := newLogger(cmd.Quiet, cmd.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn(l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	source, err := openSource(cfg, cmd.FrameRate)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.Input, err)
	}
	defer source.Close()

	fs := osfilesystem.New()

	var literal *ports.CornerSet
	if cfg.Corners != "" {
		corners, err := config.ParseCorners(cfg.Corners)
		if err != nil {
			return err
		}
		literal = &corners
	}
	picker := literalpicker.New(literal)

	writer, err := slidewriter.New(cfg.Output, cfg.Format, cfg.JPEGQuality, fs)
	if err != nil {
		return fmt.Errorf("prepare output directory: %w", err)
	}

	var sink ports.DiagnosticSink
	if cfg.Diagnostics {
		if err := fs.MkdirAll(cfg.DiagnosticsDir); err != nil {
			return fmt.Errorf("create diagnostics directory: %w", err)
		}
		sink = diagsink.New(cfg.DiagnosticsDir, fs)
	} else {
		sink = nullsink.New()
	}

	orch := orchestrator.New(source, picker, writer, sink, log)

	orchConfig, err := toOrchestratorConfig(cfg, literal)
	if err != nil {
		return err
	}
	orchConfig.ShowProgress = !cmd.Quiet && isatty.IsTerminal(os.Stderr.Fd())

	log.Info(l10n.F("Extracting slides from %s...", cfg.Input))

	if _, err := orch.Run(ctx, orchConfig); err != nil {
		return err
	}
	return nil
}

// buildConfig loads the config file (if any) and applies CLI overrides.
func (cmd *ExtractCmd) buildConfig() (config.Config, error) {
	cfg := config.Defaults()
	if cmd.Config != "" {
		var err error
		cfg, err = config.LoadFromFile(cmd.Config)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", cmd.Config, err)
		}
	}

	cfg.Input = cmd.Input
	if cmd.Output != "" {
		cfg.Output = cmd.Output
	}
	if cmd.AspectRatio != nil {
		cfg.AspectRatio = *cmd.AspectRatio
	}
	if cmd.Corners != nil {
		cfg.Corners = *cmd.Corners
	}
	if cmd.OutputWidth != nil {
		cfg.OutputWidth = *cmd.OutputWidth
	}
	if cmd.Metric != nil {
		cfg.Metric = *cmd.Metric
	}
	if cmd.PrimingThreshold != nil {
		cfg.PrimingThreshold = *cmd.PrimingThreshold
	}
	if cmd.CaptureThreshold != nil {
		cfg.CaptureThreshold = *cmd.CaptureThreshold
	}
	if cmd.FramesRequired != nil {
		cfg.FramesRequired = *cmd.FramesRequired
	}
	if cmd.BacktrackMs != nil {
		cfg.BacktrackMs = *cmd.BacktrackMs
	}
	if cmd.RePrimePolicy != nil {
		cfg.RePrimePolicy = *cmd.RePrimePolicy
	}
	if cmd.StartFrame != nil {
		cfg.StartFrame = *cmd.StartFrame
	}
	if cmd.EndFrame != nil {
		cfg.EndFrame = *cmd.EndFrame
	}
	if cmd.Format != nil {
		cfg.Format = *cmd.Format
	}
	if cmd.JPEGQuality != nil {
		cfg.JPEGQuality = *cmd.JPEGQuality
	}
	if cmd.Diagnostics {
		cfg.Diagnostics = true
	}
	if cmd.DiagnosticsDir != nil {
		cfg.DiagnosticsDir = *cmd.DiagnosticsDir
	}
	if cmd.FFmpegPath != "" {
		cfg.FFmpegPath = cmd.FFmpegPath
	}
	return cfg, nil
}

// openSource opens the input as a video file or a frame directory.
func openSource(cfg config.Config, frameRate *float64) (ports.FrameSource, error) {
	info, err := os.Stat(cfg.Input)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		var opts []dirsource.Option
		if frameRate != nil {
			opts = append(opts, dirsource.WithFrameRate(*frameRate))
		}
		return dirsource.New(cfg.Input, opts...)
	}

	var opts []ffmpegsource.Option
	if cfg.FFmpegPath != "" {
		opts = append(opts, ffmpegsource.WithFFmpegPath(cfg.FFmpegPath))
	}
	return ffmpegsource.New(cfg.Input, opts...)
}

// toOrchestratorConfig translates the validated file config into the
// typed run config.
func toOrchestratorConfig(cfg config.Config, literal *ports.CornerSet) (orchestrator.Config, error) {
	ratio, err := config.ParseAspectRatio(cfg.AspectRatio)
	if err != nil {
		return orchestrator.Config{}, err
	}
	return orchestrator.Config{
		AspectRatio:      ratio,
		Corners:          literal,
		OutputWidth:      cfg.OutputWidth,
		Metric:           pipeline.Metric(cfg.Metric),
		PrimingThreshold: cfg.PrimingThreshold,
		CaptureThreshold: cfg.CaptureThreshold,
		FramesRequired:   cfg.FramesRequired,
		BacktrackMs:      cfg.BacktrackMs,
		RePrime:          pipeline.RePrimePolicy(cfg.RePrimePolicy),
		StartFrame:       cfg.StartFrame,
		EndFrame:         cfg.EndFrame,
	}, nil
}

// Run executes the rotate command.
func (cmd *RotateCmd) Run() error {
	log := newLogger(cmd.Quiet, cmd.LogLevel)

	pass := rotate.NewPass(cmd.Turns, cmd.JPEGQuality)
	rotated, err := pass.Run(context.Background(), cmd.Dir)
	if err != nil {
		return err
	}

	log.Info(l10n.F("Rotated %d slides in %s", rotated, cmd.Dir))
	return nil
}

// Run executes the transform command.
func (cmd *TransformCmd) Run() error {
	log := newLogger(cmd.Quiet, cmd.LogLevel)

	ratio, err := config.ParseAspectRatio(cmd.AspectRatio)
	if err != nil {
		return err
	}
	var literal *ports.CornerSet
	if cmd.Corners != "" {
		corners, err := config.ParseCorners(cmd.Corners)
		if err != nil {
			return err
		}
		literal = &corners
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn(l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	source, err := dirsource.New(cmd.Dir)
	if err != nil {
		return fmt.Errorf("open %s: %w", cmd.Dir, err)
	}
	defer source.Close()

	fs := osfilesystem.New()
	writer, err := slidewriter.New(cmd.Output, cmd.Format, cmd.JPEGQuality, fs)
	if err != nil {
		return fmt.Errorf("prepare output directory: %w", err)
	}

	orch := orchestrator.New(source, literalpicker.New(literal), writer, nullsink.New(), log)

	log.Info(l10n.F("Transforming photos from %s...", cmd.Dir))

	_, err = orch.Transform(ctx, orchestrator.Config{
		AspectRatio: ratio,
		Corners:     literal,
		OutputWidth: cmd.OutputWidth,
	})
	return err
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("slidecap version %s", version))
	return nil
}

func newLogger(quiet bool, level string) ports.Logger {
	if quiet {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(level))
}

