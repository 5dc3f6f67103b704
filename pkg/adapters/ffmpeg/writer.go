package ffmpeg

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/user/zonecam/pkg/ports"
)

// codecArgs maps a FourCC tag to ffmpeg encoder arguments.
func codecArgs(fourcc string) ([]string, error) {
	switch strings.ToUpper(strings.TrimSpace(fourcc)) {
	case "I420", "IYUV", "":
		return []string{"-c:v", "rawvideo", "-pix_fmt", "yuv420p", "-vtag", "I420"}, nil
	case "MJPG":
		return []string{"-c:v", "mjpeg", "-pix_fmt", "yuvj420p", "-q:v", "3"}, nil
	case "XVID":
		return []string{"-c:v", "mpeg4", "-vtag", "XVID", "-q:v", "5", "-pix_fmt", "yuv420p"}, nil
	case "DIVX", "DX50":
		return []string{"-c:v", "mpeg4", "-vtag", "DIVX", "-q:v", "5", "-pix_fmt", "yuv420p"}, nil
	case "MP4V", "FMP4":
		return []string{"-c:v", "mpeg4", "-q:v", "5", "-pix_fmt", "yuv420p"}, nil
	case "H264", "AVC1", "X264":
		return []string{"-c:v", "libx264", "-preset", "fast", "-crf", "23", "-pix_fmt", "yuv420p"}, nil
	case "VP80":
		return []string{"-c:v", "libvpx", "-b:v", "1M", "-pix_fmt", "yuv420p"}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCodec, fourcc)
	}
}

// writerArgs builds the ffmpeg command line for opts.
func writerArgs(opts ports.VideoWriterOptions) ([]string, error) {
	codec, err := codecArgs(opts.FourCC)
	if err != nil {
		return nil, err
	}
	args := []string{
		"-y",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", strconv.FormatFloat(opts.FPS, 'f', 2, 64),
		"-i", "pipe:0",
	}
	args = append(args, codec...)
	return append(args, opts.Path), nil
}

// Writer encodes frames by piping raw RGBA into an ffmpeg process.
type Writer struct {
	opts ports.VideoWriterOptions

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	frames int
	closed bool
}

// NewWriter starts ffmpeg writing to opts.Path.
func NewWriter(opts ports.VideoWriterOptions) (*Writer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrFrameSize, opts.Width, opts.Height)
	}
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("ffmpeg: invalid frame rate %.2f", opts.FPS)
	}
	args, err := writerArgs(opts)
	if err != nil {
		return nil, err
	}
	path, err := FindFFmpeg()
	if err != nil {
		return nil, err
	}

	w := &Writer{opts: opts}
	w.cmd = exec.Command(path, args...)
	w.cmd.Stderr = &w.stderr

	stdin, err := w.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	w.stdin = stdin

	if err := w.cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	return w, nil
}

// Write appends one frame. The frame must match the writer size.
func (w *Writer) Write(img *image.RGBA) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	b := img.Bounds()
	if b.Dx() != w.opts.Width || b.Dy() != w.opts.Height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrFrameSize, b.Dx(), b.Dy(), w.opts.Width, w.opts.Height)
	}

	rowLen := b.Dx() * 4
	if img.Stride == rowLen {
		_, err := w.stdin.Write(img.Pix[:rowLen*b.Dy()])
		if err != nil {
			return fmt.Errorf("failed to write frame: %w: %s", err, w.stderr.String())
		}
	} else {
		for y := 0; y < b.Dy(); y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+rowLen]
			if _, err := w.stdin.Write(row); err != nil {
				return fmt.Errorf("failed to write frame: %w: %s", err, w.stderr.String())
			}
		}
	}
	w.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

// Close ends the input stream and waits for ffmpeg to finalize the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.stdin.Close()

	if err := w.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg encoding failed: %w\nstderr: %s", err, w.stderr.String())
	}
	return nil
}

// WriterFactory creates ffmpeg writers.
type WriterFactory struct{}

// Create implements ports.VideoWriterFactory.
func (WriterFactory) Create(opts ports.VideoWriterOptions) (ports.VideoWriter, error) {
	return NewWriter(opts)
}

var (
	_ ports.VideoWriter        = (*Writer)(nil)
	_ ports.VideoWriterFactory = WriterFactory{}
)
