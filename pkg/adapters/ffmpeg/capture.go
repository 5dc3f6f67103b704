package ffmpeg

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"io"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"sync"

	"github.com/user/zonecam/pkg/adapters/mp4probe"
	"github.com/user/zonecam/pkg/ports"
)

var (
	sizePattern = regexp.MustCompile(`Video: .*?[\s,](\d{2,5})x(\d{2,5})[\s,\[]`)
	fpsPattern  = regexp.MustCompile(`(\d+(?:\.\d+)?) (?:fps|tbr)`)
)

// StreamInfo is what ffmpeg reports about the first video stream of an input.
type StreamInfo struct {
	Width  int
	Height int
	FPS    float64
}

// parseStreamInfo extracts the video size and rate from ffmpeg's banner.
func parseStreamInfo(banner string) (StreamInfo, error) {
	var info StreamInfo
	m := sizePattern.FindStringSubmatch(banner)
	if m == nil {
		return info, ErrProbe
	}
	info.Width, _ = strconv.Atoi(m[1])
	info.Height, _ = strconv.Atoi(m[2])
	if f := fpsPattern.FindStringSubmatch(banner); f != nil {
		info.FPS, _ = strconv.ParseFloat(f[1], 64)
	}
	return info, nil
}

// inputArgs returns the ffmpeg input arguments for src on the given OS.
func inputArgs(goos string, src ports.Source, opts ports.CaptureOptions) ([]string, error) {
	switch src.Kind {
	case ports.SourceFile, ports.SourceURL:
		return []string{"-i", src.Path}, nil
	case ports.SourceDevice:
	default:
		return nil, fmt.Errorf("ffmpeg: unknown source kind %v", src.Kind)
	}

	var args []string
	switch goos {
	case "linux":
		args = []string{"-f", "v4l2"}
	case "darwin":
		args = []string{"-f", "avfoundation"}
	case "windows":
		args = []string{"-f", "dshow"}
	default:
		return nil, fmt.Errorf("ffmpeg: camera capture not supported on %s", goos)
	}
	if opts.FPS > 0 {
		args = append(args, "-framerate", strconv.FormatFloat(opts.FPS, 'f', -1, 64))
	}
	if opts.Width > 0 && opts.Height > 0 {
		args = append(args, "-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height))
	}

	switch goos {
	case "linux":
		args = append(args, "-i", "/dev/video"+strconv.Itoa(src.Device))
	case "darwin":
		args = append(args, "-i", strconv.Itoa(src.Device)+":none")
	case "windows":
		if src.Path == "" {
			return nil, fmt.Errorf("ffmpeg: dshow needs a device name, not index %d", src.Device)
		}
		args = append(args, "-video_device_number", "0", "-i", "video="+src.Path)
	}
	return args, nil
}

// Capture reads raw RGBA frames from an ffmpeg process. Grab reads the raw
// bytes of the next frame and Retrieve converts them into an image.
type Capture struct {
	path  string
	src   ports.Source
	opts  ports.CaptureOptions
	input []string

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdout  io.ReadCloser
	reader  *bufio.Reader
	stderr  bytes.Buffer
	width   int
	height  int
	fps     float64
	raw     []byte
	grabbed bool
	started bool
	opened  bool
}

// Open probes src and starts streaming frames.
func Open(src ports.Source, opts ports.CaptureOptions) (*Capture, error) {
	path, err := FindFFmpeg()
	if err != nil {
		return nil, err
	}
	input, err := inputArgs(runtime.GOOS, src, opts)
	if err != nil {
		return nil, err
	}

	c := &Capture{path: path, src: src, opts: opts, input: input}
	info, err := c.probe()
	if err != nil {
		return nil, err
	}
	c.width, c.height, c.fps = info.Width, info.Height, info.FPS
	if src.Kind == ports.SourceDevice && opts.FPS > 0 {
		c.fps = opts.FPS
	}
	if src.Kind != ports.SourceDevice && opts.Width > 0 && opts.Height > 0 {
		c.width, c.height = opts.Width, opts.Height
	}

	if err := c.start(); err != nil {
		return nil, err
	}
	return c, nil
}

// probe learns the native frame size. MP4 files are read directly; other
// inputs are probed by letting ffmpeg print its stream banner.
func (c *Capture) probe() (StreamInfo, error) {
	if c.src.Kind == ports.SourceFile && mp4probe.IsMP4(c.src.Path) {
		if info, err := mp4probe.ProbeFile(c.src.Path); err == nil && info.Width > 0 {
			return StreamInfo{Width: info.Width, Height: info.Height, FPS: info.FPS}, nil
		}
	}

	args := append([]string{"-hide_banner"}, c.input...)
	args = append(args, "-frames:v", "1", "-f", "null", "-")
	var banner bytes.Buffer
	cmd := exec.Command(c.path, args...)
	cmd.Stderr = &banner
	if err := cmd.Run(); err != nil {
		return StreamInfo{}, fmt.Errorf("probe %s: %w: %s", c.src, err, banner.String())
	}
	info, err := parseStreamInfo(banner.String())
	if err != nil {
		return info, fmt.Errorf("probe %s: %w", c.src, err)
	}
	return info, nil
}

func (c *Capture) start() error {
	args := append([]string{"-loglevel", "error"}, c.input...)
	args = append(args, "-an", "-f", "rawvideo", "-pix_fmt", "rgba")
	args = append(args, "-vf", fmt.Sprintf("scale=%d:%d", c.width, c.height))
	args = append(args, "pipe:1")

	c.stderr.Reset()
	c.cmd = exec.Command(c.path, args...)
	c.cmd.Stderr = &c.stderr
	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	c.stdout = stdout
	c.reader = bufio.NewReaderSize(stdout, c.width*c.height*4)
	c.raw = make([]byte, c.width*c.height*4)
	c.grabbed = false
	c.opened = true
	return nil
}

func (c *Capture) stop() {
	if c.cmd != nil && c.cmd.Process != nil {
		c.cmd.Process.Kill()
		c.cmd.Wait()
	}
	c.cmd = nil
	c.opened = false
	c.grabbed = false
}

// Grab reads the next raw frame. Returns false at end of stream.
func (c *Capture) Grab() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.opened {
		return false
	}
	if _, err := io.ReadFull(c.reader, c.raw); err != nil {
		c.grabbed = false
		return false
	}
	c.grabbed = true
	c.started = true
	return true
}

// Retrieve converts the grabbed frame into a new image.
func (c *Capture) Retrieve() (*image.RGBA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.grabbed {
		return nil, false
	}
	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	copy(img.Pix, c.raw)
	return img, true
}

func (c *Capture) Width() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width
}

func (c *Capture) Height() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

// SetWidth restarts the stream at the new width. File sources reject a
// resize once frames have been read, because restarting would rewind them.
func (c *Capture) SetWidth(width int) error {
	return c.resize(width, 0)
}

// SetHeight restarts the stream at the new height.
func (c *Capture) SetHeight(height int) error {
	return c.resize(0, height)
}

func (c *Capture) resize(width, height int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if width < 0 || height < 0 {
		return fmt.Errorf("%w: negative size", ErrPropertyRejected)
	}
	if width == 0 {
		width = c.width
	}
	if height == 0 {
		height = c.height
	}
	if width == c.width && height == c.height {
		return nil
	}
	if c.src.Kind != ports.SourceDevice && c.started {
		return fmt.Errorf("%w: cannot resize %s after reading frames", ErrPropertyRejected, c.src)
	}

	c.stop()
	c.width, c.height = width, height
	return c.start()
}

func (c *Capture) FPS() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// OpenSettings is not supported by the ffmpeg backend.
func (c *Capture) OpenSettings() error {
	return ErrNoSettingsDialog
}

func (c *Capture) IsOpened() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened
}

// Close stops the ffmpeg process.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stop()
	return nil
}

// Opener opens ffmpeg capture devices.
type Opener struct{}

// Open implements ports.CaptureOpener.
func (Opener) Open(src ports.Source, opts ports.CaptureOptions) (ports.CaptureDevice, error) {
	return Open(src, opts)
}

var (
	_ ports.CaptureDevice = (*Capture)(nil)
	_ ports.CaptureOpener = Opener{}
)
