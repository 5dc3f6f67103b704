// Package capture runs the grab, retrieve, display, record and release cycle
// of a single capture device.
package capture

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/user/zonecam/pkg/adapters/logger"
	"github.com/user/zonecam/pkg/fps"
	"github.com/user/zonecam/pkg/pipeline"
	"github.com/user/zonecam/pkg/ports"
)

// DefaultWarmupFrames is how many frames must elapse before the running FPS
// estimate is trusted for creating a video writer.
const DefaultWarmupFrames = 20

// DefaultFourCC is the codec used when StartWritingVideo gets an empty tag.
const DefaultFourCC = "I420"

var (
	// ErrDoubleEnter is the panic value for EnterFrame without a matching ExitFrame.
	ErrDoubleEnter = errors.New("capture: previous EnterFrame had no matching ExitFrame")

	// ErrNoDevice is returned by property accessors when no device is attached.
	ErrNoDevice = errors.New("capture: no device")
)

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock used for frame-rate accounting.
func WithClock(c ports.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithWarmupFrames changes the warm-up used before recording at an estimated rate.
func WithWarmupFrames(n int) Option {
	return func(m *Manager) {
		if n >= 0 {
			m.warmup = n
		}
	}
}

// WithMirror sets the initial preview mirroring.
func WithMirror(on bool) Option {
	return func(m *Manager) { m.mirror = on }
}

// Manager coordinates one frame cycle per EnterFrame/ExitFrame pair.
// It is meant to be driven by a single goroutine; the accessors used by
// key handlers (mirror, recording toggles) are safe to call from others.
type Manager struct {
	device    ports.CaptureDevice
	preview   ports.Preview
	snapshots ports.SnapshotSink
	writers   ports.VideoWriterFactory
	clock     ports.Clock
	log       ports.Logger
	estimator *fps.Estimator
	warmup    int

	entered   bool
	retrieved bool
	frame     *image.RGBA

	mu        sync.Mutex
	mirror    bool
	channel   int
	imagePath string
	videoPath string
	fourcc    string
	video     ports.VideoWriter
	lastErr   error
	written   int
	videos    []string
}

// New creates a manager for device. preview, snapshots and writers may be nil.
func New(
	device ports.CaptureDevice,
	preview ports.Preview,
	snapshots ports.SnapshotSink,
	writers ports.VideoWriterFactory,
	log ports.Logger,
	opts ...Option,
) *Manager {
	m := &Manager{
		device:    device,
		preview:   preview,
		snapshots: snapshots,
		writers:   writers,
		clock:     ports.SystemClock,
		log:       logger.Or(log).WithComponent("capture"),
		warmup:    DefaultWarmupFrames,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.estimator = fps.New(m.clock.Now())
	return m
}

// Device returns the underlying capture device.
func (m *Manager) Device() ports.CaptureDevice {
	return m.device
}

// EnterFrame grabs the next frame without decoding it. It panics with
// ErrDoubleEnter when the previous frame was not exited.
func (m *Manager) EnterFrame() {
	if m.entered {
		panic(ErrDoubleEnter)
	}
	if m.device == nil {
		return
	}
	m.entered = m.device.Grab()
}

// Frame returns the current frame, decoding it on first access within the
// cycle. Returns nil outside a cycle or when no frame could be retrieved.
func (m *Manager) Frame() *image.RGBA {
	if m.entered && !m.retrieved {
		m.retrieved = true
		if img, ok := m.device.Retrieve(); ok {
			m.frame = img
		}
	}
	return m.frame
}

// ReplaceFrame substitutes the frame that ExitFrame will display and record.
// Processors that return a new image use it to pass their output on.
func (m *Manager) ReplaceFrame(img *image.RGBA) {
	if m.entered {
		m.retrieved = true
		m.frame = img
	}
}

// ExitFrame accounts the frame, shows it, writes pending snapshot and video
// output, then releases it. A frame nobody read is only decoded when the
// preview or an output needs its pixels. Without a frame it only ends the
// cycle.
func (m *Manager) ExitFrame() {
	if !m.entered {
		m.release()
		return
	}

	m.mu.Lock()
	mirror := m.mirror
	imagePath := m.imagePath
	recording := m.videoPath != ""
	m.mu.Unlock()

	frame := m.frame
	if !m.retrieved && (m.preview != nil || imagePath != "" || recording) {
		frame = m.Frame()
	}
	if m.retrieved && frame == nil {
		m.release()
		return
	}

	m.estimator.Tick(m.clock.Now())
	if frame == nil {
		m.release()
		return
	}

	if m.preview != nil {
		if mirror {
			m.preview.Show(pipeline.MirrorHorizontal(frame))
		} else {
			m.preview.Show(frame)
		}
	}

	if imagePath != "" {
		m.mu.Lock()
		m.imagePath = ""
		m.mu.Unlock()
		m.writeImage(imagePath, frame)
	}

	m.writeVideoFrame(frame)
	m.release()
}

func (m *Manager) writeImage(path string, frame *image.RGBA) {
	if m.snapshots == nil || !m.snapshots.Enabled() {
		m.log.Debug("Snapshot %s skipped, snapshots are disabled", path)
		return
	}
	if err := m.snapshots.SaveSnapshot(path, frame); err != nil {
		m.fail(fmt.Errorf("write image %s: %w", path, err))
		return
	}
	m.log.Info("Snapshot saved to %s", path)
}

func (m *Manager) release() {
	m.frame = nil
	m.retrieved = false
	m.entered = false
}

func (m *Manager) fail(err error) {
	m.log.Warn("Capture output failed: %v", err)
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) writeVideoFrame(frame *image.RGBA) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.videoPath == "" || m.writers == nil {
		return
	}

	if m.video == nil {
		rate := m.device.FPS()
		if rate <= 0 {
			// No rate until warm-up has passed and a full second was measured.
			if m.estimator.FramesElapsed() < m.warmup || m.estimator.Estimate() <= 0 {
				return
			}
			rate = m.estimator.Estimate()
		}
		b := frame.Bounds()
		w, err := m.writers.Create(ports.VideoWriterOptions{
			Path:   m.videoPath,
			FourCC: m.fourcc,
			FPS:    rate,
			Width:  b.Dx(),
			Height: b.Dy(),
		})
		if err != nil {
			m.lastErr = fmt.Errorf("create video %s: %w", m.videoPath, err)
			m.videoPath = ""
			m.log.Warn("Capture output failed: %v", m.lastErr)
			return
		}
		m.log.Info("Recording %s at %.1f fps", m.videoPath, rate)
		m.video = w
		m.videos = append(m.videos, m.videoPath)
	}

	if err := m.video.Write(frame); err != nil {
		m.lastErr = fmt.Errorf("write video frame: %w", err)
		m.log.Warn("Capture output failed: %v", m.lastErr)
		return
	}
	m.written++
}

// WriteImage requests that the next exited frame be saved to path.
func (m *Manager) WriteImage(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imagePath = path
}

// IsWritingImage reports whether a snapshot is pending.
func (m *Manager) IsWritingImage() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.imagePath != ""
}

// StartWritingVideo starts appending exited frames to path. The writer is
// created on the first frame for which a frame rate is known.
func (m *Manager) StartWritingVideo(path, fourcc string) {
	if fourcc == "" {
		fourcc = DefaultFourCC
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videoPath = path
	m.fourcc = fourcc
}

// StopWritingVideo closes the current writer, if one was created.
func (m *Manager) StopWritingVideo() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.videoPath = ""
	m.fourcc = ""
	w := m.video
	m.video = nil
	if w == nil {
		return nil
	}
	m.log.Info("Recording stopped after %d frames", m.written)
	m.written = 0
	return w.Close()
}

// Recordings returns the paths of every video writer created so far.
func (m *Manager) Recordings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.videos...)
}

// IsWritingVideo reports whether exited frames are being recorded.
func (m *Manager) IsWritingVideo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.videoPath != ""
}

// SetMirror turns preview mirroring on or off.
func (m *Manager) SetMirror(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mirror = on
}

// Mirror reports whether the preview is mirrored.
func (m *Manager) Mirror() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mirror
}

// Channel returns the selected channel of multi-head devices.
func (m *Manager) Channel() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.channel
}

// SetChannel selects a channel. Changing it drops the cached frame.
func (m *Manager) SetChannel(ch int) {
	m.mu.Lock()
	changed := m.channel != ch
	m.channel = ch
	m.mu.Unlock()
	if changed {
		m.frame = nil
		m.retrieved = false
	}
}

// Width returns the device frame width, 0 without a device.
func (m *Manager) Width() int {
	if m.device == nil {
		return 0
	}
	return m.device.Width()
}

// Height returns the device frame height, 0 without a device.
func (m *Manager) Height() int {
	if m.device == nil {
		return 0
	}
	return m.device.Height()
}

// SetWidth requests a new frame width from the device.
func (m *Manager) SetWidth(w int) error {
	if m.device == nil {
		return ErrNoDevice
	}
	if err := m.device.SetWidth(w); err != nil {
		return fmt.Errorf("set width %d: %w", w, err)
	}
	return nil
}

// SetHeight requests a new frame height from the device.
func (m *Manager) SetHeight(h int) error {
	if m.device == nil {
		return ErrNoDevice
	}
	if err := m.device.SetHeight(h); err != nil {
		return fmt.Errorf("set height %d: %w", h, err)
	}
	return nil
}

// OpenSettings opens the device settings dialog.
func (m *Manager) OpenSettings() error {
	if m.device == nil {
		return ErrNoDevice
	}
	if err := m.device.OpenSettings(); err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	return nil
}

// FPSEstimate returns the frames counted during the last full second.
func (m *Manager) FPSEstimate() float64 {
	return m.estimator.Estimate()
}

// FramesElapsed returns the number of frames exited since the manager was created.
func (m *Manager) FramesElapsed() int {
	return m.estimator.FramesElapsed()
}

// FPSStats summarizes the per-second estimates.
func (m *Manager) FPSStats() fps.Stats {
	return m.estimator.Stats()
}

// LastError returns the most recent snapshot or video error.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Close stops recording and releases the device.
func (m *Manager) Close() error {
	var errs []error
	if err := m.StopWritingVideo(); err != nil {
		errs = append(errs, err)
	}
	if m.device != nil {
		if err := m.device.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
