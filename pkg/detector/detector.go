// Package detector runs the capture and zone tracking loop on its own
// goroutine and publishes zone positions for other goroutines to read.
package detector

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/zonecam/pkg/adapters/logger"
	"github.com/user/zonecam/pkg/capture"
	"github.com/user/zonecam/pkg/overlay"
	"github.com/user/zonecam/pkg/pipeline"
	"github.com/user/zonecam/pkg/ports"
	"github.com/user/zonecam/pkg/zones"
)

// DefaultReadyAfter is the number of processed frames after which tracking
// is considered stable.
const DefaultReadyAfter = 20

// KeyEscape is the ASCII code of the escape key.
const KeyEscape = 27

var (
	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("detector: already running")

	// ErrStopped is returned by WaitReady when the loop ended before tracking was ready.
	ErrStopped = errors.New("detector: stopped")
)

// Config controls the loop.
type Config struct {
	// ReadyAfter is the frame count that opens the ready latch.
	ReadyAfter int

	// DelayMs is the pause between iterations, also used as the key poll timeout.
	DelayMs int

	// DelayStep is how much the + and - keys change DelayMs.
	DelayStep int

	// OutputDir receives snapshots and recordings started from the keyboard.
	OutputDir string

	// VideoPath overrides the generated recording name.
	VideoPath string

	// FourCC is the codec tag for recordings.
	FourCC string
}

// DefaultConfig returns the loop defaults.
func DefaultConfig() Config {
	return Config{
		ReadyAfter: DefaultReadyAfter,
		DelayMs:    1,
		DelayStep:  5,
		OutputDir:  ".",
		FourCC:     capture.DefaultFourCC,
	}
}

// Option configures a Detector.
type Option func(*Detector)

// WithClock replaces the clock used for snapshot names.
func WithClock(c ports.Clock) Option {
	return func(d *Detector) { d.clock = c }
}

// WithOverlay draws zone boxes and status lines on every frame.
func WithOverlay(renderer ports.Renderer, theme overlay.Theme) Option {
	return func(d *Detector) {
		d.overlay = overlay.NewStage(renderer, theme, d.status)
	}
}

// WithProcessors appends processors that run after zone tracking and before
// the overlay.
func WithProcessors(ps ...pipeline.Processor) Option {
	return func(d *Detector) { d.extra = append(d.extra, ps...) }
}

// Detector owns a capture manager and an optional zone orchestrator. Run
// drives them from one goroutine; every other method may be called from any
// goroutine.
type Detector struct {
	manager *capture.Manager
	zones   *zones.Orchestrator
	keys    ports.KeySource
	clock   ports.Clock
	log     ports.Logger
	cfg     Config
	overlay *overlay.Stage
	extra   []pipeline.Processor

	snap      atomic.Pointer[zones.Snapshot]
	terminate atomic.Bool
	running   atomic.Bool
	delayMs   atomic.Int64
	processed atomic.Int64

	mu      sync.Mutex
	ready   *latch
	restart bool
	frameno int

	done chan struct{}
}

// New creates a detector. orch and keys may be nil: without zones only the
// capture loop runs, without keys the loop sleeps DelayMs between frames.
func New(
	manager *capture.Manager,
	orch *zones.Orchestrator,
	keys ports.KeySource,
	log ports.Logger,
	cfg Config,
	opts ...Option,
) *Detector {
	if cfg.ReadyAfter <= 0 {
		cfg.ReadyAfter = DefaultReadyAfter
	}
	if cfg.DelayStep <= 0 {
		cfg.DelayStep = DefaultConfig().DelayStep
	}
	d := &Detector{
		manager: manager,
		zones:   orch,
		keys:    keys,
		clock:   ports.SystemClock,
		log:     logger.Or(log).WithComponent("detector"),
		cfg:     cfg,
		ready:   newLatch(),
		done:    make(chan struct{}),
	}
	d.delayMs.Store(int64(max(cfg.DelayMs, 0)))
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run processes frames until the stream ends, Terminate is called or ctx is
// cancelled, then releases the device. The end of the stream is not an error.
func (d *Detector) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(d.done)

	err := d.loop(ctx)
	if cerr := d.release(); cerr != nil {
		d.log.Warn("Release failed: %v", cerr)
	}
	return err
}

func (d *Detector) loop(ctx context.Context) error {
	if d.zones != nil {
		if w := d.manager.Width(); w > 0 {
			if err := d.zones.InitZones(w); err != nil && !errors.Is(err, zones.ErrAlreadyInitialised) {
				return fmt.Errorf("init zones: %w", err)
			}
		}
	}
	chain := d.chain()

	for {
		if ctx.Err() != nil || d.terminate.Load() {
			d.log.Info("Detector stopping")
			return nil
		}
		if d.takeRestart() {
			if d.zones != nil {
				if err := d.zones.Reset(); err != nil {
					return fmt.Errorf("restart tracking: %w", err)
				}
			}
			d.log.Info("Tracking restarted")
		}

		d.manager.EnterFrame()
		frame := d.manager.Frame()
		if frame == nil {
			d.manager.ExitFrame()
			d.log.Info("Stream ended after %d frames", d.processed.Load())
			return nil
		}

		out, err := chain.Execute(ctx, frame)
		if err != nil {
			d.log.Warn("Frame processing failed: %v", err)
		}
		if out != nil && out != frame {
			d.manager.ReplaceFrame(out)
		}
		d.publish()
		d.manager.ExitFrame()

		d.handleKey(d.pollKey(ctx))
	}
}

func (d *Detector) chain() pipeline.Chain {
	var c pipeline.Chain
	if d.zones != nil {
		c = append(c, d.zones)
	}
	c = append(c, d.extra...)
	if d.overlay != nil {
		c = append(c, d.overlay)
	}
	return c
}

// publish stores the latest positions and opens the ready latch once enough
// frames went through since the last (re)start.
func (d *Detector) publish() {
	d.processed.Add(1)
	if d.zones != nil {
		d.snap.Store(d.zones.Snapshot())
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.frameno++
	if !d.restart && d.frameno >= d.cfg.ReadyAfter && !d.ready.isOpen() {
		d.ready.open()
		d.log.Info("Tracking ready after %d frames", d.frameno)
	}
}

func (d *Detector) takeRestart() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.restart {
		return false
	}
	d.restart = false
	d.frameno = 0
	return true
}

func (d *Detector) release() error {
	var errs []error
	if d.zones != nil {
		if err := d.zones.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := d.manager.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (d *Detector) pollKey(ctx context.Context) int {
	delay := int(d.delayMs.Load())
	if d.keys != nil {
		return d.keys.PollKey(max(delay, 1))
	}
	if delay > 0 {
		t := time.NewTimer(time.Duration(delay) * time.Millisecond)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
		}
	}
	return ports.KeyNone
}

func (d *Detector) handleKey(key int) {
	if key == ports.KeyNone {
		return
	}
	if key >= 'A' && key <= 'Z' {
		key += 'a' - 'A'
	}

	switch key {
	case 'q', KeyEscape:
		d.Terminate()
	case 'r':
		d.requestRestart()
	case 'i':
		if err := d.manager.OpenSettings(); err != nil {
			d.log.Warn("Settings dialog unavailable: %v", err)
		}
	case 'm':
		on := !d.manager.Mirror()
		d.manager.SetMirror(on)
		d.log.Info("Mirror %v", on)
	case 's':
		path := filepath.Join(d.cfg.OutputDir, d.clock.Now().Format("snapshot_20060102_150405.jpg"))
		d.manager.WriteImage(path)
	case 'v':
		d.toggleRecording()
	case '+', '=':
		d.SetDelay(int(d.delayMs.Load()) + d.cfg.DelayStep)
	case '-':
		d.SetDelay(int(d.delayMs.Load()) - d.cfg.DelayStep)
	}
}

func (d *Detector) toggleRecording() {
	if d.manager.IsWritingVideo() {
		if err := d.manager.StopWritingVideo(); err != nil {
			d.log.Warn("Capture output failed: %v", err)
		}
		return
	}
	path := d.cfg.VideoPath
	if path == "" {
		path = filepath.Join(d.cfg.OutputDir, d.clock.Now().Format("video_20060102_150405.avi"))
	}
	d.manager.StartWritingVideo(path, d.cfg.FourCC)
	d.log.Info("Recording requested to %s", path)
}

func (d *Detector) status() overlay.Status {
	st := overlay.Status{
		Width:  d.manager.Width(),
		Height: d.manager.Height(),
		FPS:    d.manager.FPSEstimate(),
	}
	if d.zones != nil {
		st.Algorithm = d.zones.Config().Algorithm
		st.Zones = d.zones.Snapshot()
		st.Frame = st.Zones.Frame
	} else {
		st.Frame = int(d.processed.Load())
	}
	if d.manager.IsWritingVideo() {
		st.Notice = "REC"
	}
	return st
}

func (d *Detector) requestRestart() *latch {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.restart = true
	d.ready = newLatch()
	return d.ready
}

// Restart re-initialises tracking at the next loop iteration and waits
// until tracking is ready again, the loop stops or ctx is done.
func (d *Detector) Restart(ctx context.Context) error {
	return d.wait(ctx, d.requestRestart())
}

// Ready returns a channel closed once tracking is ready. A restart replaces
// the channel.
func (d *Detector) Ready() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ready.ch
}

// WaitReady blocks until tracking is ready.
func (d *Detector) WaitReady(ctx context.Context) error {
	d.mu.Lock()
	l := d.ready
	d.mu.Unlock()
	return d.wait(ctx, l)
}

func (d *Detector) wait(ctx context.Context, l *latch) error {
	select {
	case <-l.ch:
		return nil
	default:
	}
	select {
	case <-l.ch:
		return nil
	case <-d.done:
		if l.isOpen() {
			return nil
		}
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Terminate asks the loop to stop at the next iteration.
func (d *Detector) Terminate() {
	d.terminate.Store(true)
}

// Done is closed when Run has returned.
func (d *Detector) Done() <-chan struct{} {
	return d.done
}

// Snapshot returns the latest published zone positions, nil before the first frame.
func (d *Detector) Snapshot() *zones.Snapshot {
	return d.snap.Load()
}

// lookup returns the latest snapshot and logs indexes it does not hold.
// Before the first frame every lookup returns 0 silently.
func (d *Detector) lookup(i int) *zones.Snapshot {
	s := d.Snapshot()
	if s != nil && !s.Has(i) {
		d.log.Debug("Zone %d requested, %d available", i, s.Len())
	}
	return s
}

// CenterX returns the horizontal center of zone i from the latest snapshot.
func (d *Detector) CenterX(i int) int { return d.lookup(i).CenterX(i) }

// CenterY returns the vertical center of zone i from the latest snapshot.
func (d *Detector) CenterY(i int) int { return d.lookup(i).CenterY(i) }

// DeltaX returns the horizontal displacement of zone i from the latest snapshot.
func (d *Detector) DeltaX(i int) int { return d.lookup(i).DeltaX(i) }

// DeltaY returns the vertical displacement of zone i from the latest snapshot.
func (d *Detector) DeltaY(i int) int { return d.lookup(i).DeltaY(i) }

// Delay returns the current pause between iterations in milliseconds.
func (d *Detector) Delay() int {
	return int(d.delayMs.Load())
}

// SetDelay changes the pause between iterations. Negative values become 0.
func (d *Detector) SetDelay(ms int) {
	ms = max(ms, 0)
	d.delayMs.Store(int64(ms))
	d.log.Debug("Frame delay %d ms", ms)
}

// Processed returns the number of frames processed since Run started.
func (d *Detector) Processed() int {
	return int(d.processed.Load())
}

// Manager returns the capture manager.
func (d *Detector) Manager() *capture.Manager {
	return d.manager
}

// Zones returns the zone orchestrator, nil for a plain capture loop.
func (d *Detector) Zones() *zones.Orchestrator {
	return d.zones
}
