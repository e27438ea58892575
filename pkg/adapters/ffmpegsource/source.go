// Package ffmpegsource provides a frame source backed by an external
// ffmpeg process. The MP4 container is probed with mp4ff for the frame
// count, frame rate and picture size; decoding itself is delegated to
// ffmpeg, which streams raw RGB frames over a pipe in presentation
// order.
package ffmpegsource

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os/exec"

	"github.com/user/slidecap/pkg/ports"
)

// defaultWindow is how many decoded frames are retained for random
// access. Callers that backtrack further configure a larger window.
const defaultWindow = 64

// Source decodes a video file sequentially and retains a rolling window
// of recent frames.
type Source struct {
	path       string
	ffmpegPath string

	width      int
	height     int
	frameCount int
	frameRate  float64

	cmd    *exec.Cmd
	stdout io.ReadCloser
	reader *bufio.Reader
	buf    []byte

	next  int // index the pipe will yield next
	ring  []image.Image
	base  int // oldest retained index
	eofAt int // index where the stream ended, -1 while open
}

// Option configures a Source.
type Option func(*Source)

// WithWindow sets how many recent frames stay addressable.
func WithWindow(frames int) Option {
	return func(s *Source) {
		if frames > 0 {
			s.ring = make([]image.Image, frames)
		}
	}
}

// WithFFmpegPath overrides ffmpeg discovery with an explicit path.
func WithFFmpegPath(path string) Option {
	return func(s *Source) {
		s.ffmpegPath = path
	}
}

// New probes the video file and prepares a source. The decoder process
// is started lazily on the first Frame call.
func New(path string, opts ...Option) (*Source, error) {
	s := &Source{
		path:  path,
		ring:  make([]image.Image, defaultWindow),
		eofAt: -1,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.ffmpegPath == "" {
		ffmpeg, err := findFFmpeg()
		if err != nil {
			return nil, err
		}
		s.ffmpegPath = ffmpeg
	}

	info, err := probe(path)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}
	s.width = info.width
	s.height = info.height
	s.frameCount = info.frameCount
	s.frameRate = info.frameRate
	s.buf = make([]byte, s.width*s.height*3)
	return s, nil
}

// FrameCount returns the number of video samples in the container.
func (s *Source) FrameCount() int {
	return s.frameCount
}

// FrameRate returns the frame rate in frames per second.
func (s *Source) FrameRate() float64 {
	return s.frameRate
}

// Frame returns the frame at the given index. Indexes are served from
// the rolling window; requesting ahead decodes forward, requesting
// behind the window fails.
func (s *Source) Frame(index int) (image.Image, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: negative index %d", ports.ErrFrameAccess, index)
	}
	if s.cmd == nil && s.eofAt < 0 {
		if err := s.start(); err != nil {
			return nil, err
		}
	}
	if index < s.base {
		return nil, fmt.Errorf("%w: frame %d fell out of the %d-frame window", ports.ErrFrameAccess, index, len(s.ring))
	}

	for s.next <= index {
		if s.eofAt >= 0 {
			return nil, fmt.Errorf("%w: frame %d is past the end of the stream", ports.ErrFrameAccess, index)
		}
		if err := s.decodeNext(); err != nil {
			return nil, err
		}
	}

	frame := s.ring[index%len(s.ring)]
	if frame == nil {
		return nil, fmt.Errorf("%w: frame %d not retained", ports.ErrFrameAccess, index)
	}
	return frame, nil
}

// start launches the ffmpeg decode process.
func (s *Source) start() error {
	cmd := exec.Command(s.ffmpegPath,
		"-v", "error",
		"-i", s.path,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}
	s.cmd = cmd
	s.stdout = stdout
	s.reader = bufio.NewReaderSize(stdout, 1<<20)
	return nil
}

// decodeNext reads one raw frame off the pipe into the ring.
func (s *Source) decodeNext() error {
	if _, err := io.ReadFull(s.reader, s.buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			s.eofAt = s.next
			s.stop()
			return nil
		}
		return fmt.Errorf("read frame %d: %w", s.next, err)
	}

	img := image.NewNRGBA(image.Rect(0, 0, s.width, s.height))
	si := 0
	for di := 0; di < len(img.Pix); di += 4 {
		img.Pix[di+0] = s.buf[si+0]
		img.Pix[di+1] = s.buf[si+1]
		img.Pix[di+2] = s.buf[si+2]
		img.Pix[di+3] = 255
		si += 3
	}

	s.ring[s.next%len(s.ring)] = img
	s.next++
	if s.next > len(s.ring) {
		s.base = s.next - len(s.ring)
	}
	return nil
}

// stop terminates the decoder process if it is still running.
func (s *Source) stop() {
	if s.cmd == nil {
		return
	}
	s.stdout.Close()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.cmd.Wait()
	s.cmd = nil
	s.stdout = nil
	s.reader = nil
}

// Close releases the decoder process and the retained frames.
func (s *Source) Close() error {
	s.stop()
	s.ring = nil
	return nil
}

var _ ports.FrameSource = (*Source)(nil)
