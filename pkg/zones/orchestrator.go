package zones

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/user/zonecam/pkg/adapters/logger"
	"github.com/user/zonecam/pkg/pipeline"
	"github.com/user/zonecam/pkg/ports"
)

// MaxZones is the largest supported zone count.
const MaxZones = 3

var (
	// ErrInvalidConfig is returned for zone counts or sizes that cannot be placed.
	ErrInvalidConfig = errors.New("zones: invalid configuration")

	// ErrAlreadyInitialised is returned when InitZones is called a second time.
	ErrAlreadyInitialised = errors.New("zones: already initialised")
)

// Config describes the zone row. All zones share Y, Width and Height.
type Config struct {
	Count     int
	Y         int
	Width     int
	Height    int
	Algorithm string
}

// DefaultConfig returns one 130x400 zone starting 58 pixels from the top.
func DefaultConfig() Config {
	return Config{
		Count:     1,
		Y:         58,
		Width:     130,
		Height:    400,
		Algorithm: "TEMPLATE",
	}
}

// Validate checks the geometry. The algorithm is checked against a registry by New.
func (c Config) Validate() error {
	if c.Count < 1 || c.Count > MaxZones {
		return fmt.Errorf("%w: zone count %d not in 1..%d", ErrInvalidConfig, c.Count, MaxZones)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: zone size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Y < 0 {
		return fmt.Errorf("%w: negative y %d", ErrInvalidConfig, c.Y)
	}
	return nil
}

// Trackers creates tracker instances by algorithm name.
type Trackers interface {
	New(name string) (ports.Tracker, error)
	Has(name string) bool
}

// Orchestrator owns the zones and drives their trackers once per frame.
// It is a pipeline.Processor.
type Orchestrator struct {
	cfg      Config
	trackers Trackers
	log      ports.Logger

	mu     sync.RWMutex
	zones  []*Zone
	frames int
}

// New validates cfg and checks that its algorithm is known to trackers.
// Zones are placed later by InitZones, once the frame width is known.
func New(cfg Config, trackers Trackers, log ports.Logger) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !trackers.Has(cfg.Algorithm) {
		return nil, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidConfig, cfg.Algorithm)
	}
	return &Orchestrator{
		cfg:      cfg,
		trackers: trackers,
		log:      logger.Or(log).WithComponent("zones"),
	}, nil
}

// Config returns the configuration the orchestrator was built with.
func (o *Orchestrator) Config() Config {
	return o.cfg
}

// Placement returns the zone boxes for a frame of the given width. Each zone
// is centered in one of Count equal slices of the width.
func Placement(cfg Config, frameWidth int) []pipeline.BBox {
	boxes := make([]pipeline.BBox, cfg.Count)
	n := cfg.Count
	for i := range boxes {
		x := i*frameWidth/n + frameWidth/(2*n) - cfg.Width/2
		boxes[i] = pipeline.BBox{X: x, Y: cfg.Y, W: cfg.Width, H: cfg.Height}
	}
	return boxes
}

// InitZones places the zones for frameWidth and creates their trackers.
// It may only succeed once.
func (o *Orchestrator) InitZones(frameWidth int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.zones != nil {
		return ErrAlreadyInitialised
	}
	if frameWidth <= 0 {
		return fmt.Errorf("%w: frame width %d", ErrInvalidConfig, frameWidth)
	}

	boxes := Placement(o.cfg, frameWidth)
	zones := make([]*Zone, 0, len(boxes))
	for i, box := range boxes {
		// Zones wider than their slice overhang the frame edges.
		box = box.Clip(image.Rect(0, box.Y, frameWidth, box.Y+box.H))
		tr, err := o.trackers.New(o.cfg.Algorithm)
		if err != nil {
			for _, z := range zones {
				z.tracker.Close()
			}
			return fmt.Errorf("zone %d: %w", i, err)
		}
		zones = append(zones, newZone(box, o.cfg.Algorithm, tr))
		o.log.Debug("Zone %d placed at %s", i, box)
	}
	o.zones = zones
	o.frames = 0
	return nil
}

// Initialised reports whether InitZones has succeeded.
func (o *Orchestrator) Initialised() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.zones != nil
}

// Update runs every zone's tracker on frame and returns frame unmodified.
// Zones are placed from the frame width on the first call if InitZones was
// not called.
func (o *Orchestrator) Update(frame *image.RGBA) *image.RGBA {
	if frame == nil {
		return nil
	}
	if !o.Initialised() {
		if err := o.InitZones(frame.Bounds().Dx()); err != nil && !errors.Is(err, ErrAlreadyInitialised) {
			o.log.Error("Zone initialisation failed: %v", err)
			return frame
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.frames++
	for i, z := range o.zones {
		wasTracked, wasLost := z.Tracked, z.Lost
		z.step(frame)
		switch {
		case !wasTracked && z.Tracked:
			o.log.Info("Zone %d locked on %s", i, z.Initial)
		case z.Lost && !wasLost:
			o.log.Debug("Zone %d lost, holding %s", i, z.Current)
		}
	}
	return frame
}

// Execute implements pipeline.Processor.
func (o *Orchestrator) Execute(ctx context.Context, frame *image.RGBA) (*image.RGBA, error) {
	return o.Update(frame), nil
}

// Reset puts every zone back to untracked with a fresh tracker and restarts
// the frame count.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	fresh := make([]ports.Tracker, 0, len(o.zones))
	for i, z := range o.zones {
		tr, err := o.trackers.New(z.Algorithm)
		if err != nil {
			for _, t := range fresh {
				t.Close()
			}
			return fmt.Errorf("zone %d: %w", i, err)
		}
		fresh = append(fresh, tr)
	}
	var errs []error
	for i, z := range o.zones {
		if err := z.reset(fresh[i]); err != nil {
			errs = append(errs, fmt.Errorf("zone %d: close tracker: %w", i, err))
		}
	}
	o.frames = 0
	return errors.Join(errs...)
}

// Frames returns the number of frames processed since the zones were placed
// or last reset.
func (o *Orchestrator) Frames() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.frames
}

// Len returns the number of placed zones.
func (o *Orchestrator) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.zones)
}

func (o *Orchestrator) zone(index int) (ZoneState, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if index < 0 || index >= len(o.zones) {
		o.log.Debug("Zone %d requested, %d available", index, len(o.zones))
		return ZoneState{}, false
	}
	return o.zones[index].state(index), true
}

// CenterX returns the horizontal center of zone index, 0 when there is no such zone.
func (o *Orchestrator) CenterX(index int) int {
	z, _ := o.zone(index)
	return z.CenterX()
}

// CenterY returns the vertical center of zone index, 0 when there is no such zone.
func (o *Orchestrator) CenterY(index int) int {
	z, _ := o.zone(index)
	return z.CenterY()
}

// DeltaX returns how far zone index moved right of its initial center.
func (o *Orchestrator) DeltaX(index int) int {
	z, _ := o.zone(index)
	return z.DeltaX()
}

// DeltaY returns how far zone index moved down from its initial center.
func (o *Orchestrator) DeltaY(index int) int {
	z, _ := o.zone(index)
	return z.DeltaY()
}

// Zones returns a copy of every zone's state.
func (o *Orchestrator) Zones() []ZoneState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.states()
}

func (o *Orchestrator) states() []ZoneState {
	out := make([]ZoneState, len(o.zones))
	for i, z := range o.zones {
		out[i] = z.state(i)
	}
	return out
}

// Snapshot returns the current positions as an immutable value.
func (o *Orchestrator) Snapshot() *Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return &Snapshot{Frame: o.frames, Zones: o.states()}
}

// Close releases every tracker.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	var errs []error
	for _, z := range o.zones {
		if err := z.tracker.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ pipeline.Processor = (*Orchestrator)(nil)
