// Package zones tracks a row of rectangular regions across frames and turns
// their movement into per-zone control signals.
package zones

import (
	"image"

	"github.com/user/zonecam/pkg/pipeline"
	"github.com/user/zonecam/pkg/ports"
)

// Zone is one tracked region. Initial is fixed to the part of the placement
// that lies inside the first frame the tracker locks on, and never changes
// after that. Current only changes on a successful tracker update that
// yields a valid box.
type Zone struct {
	Initial   pipeline.BBox
	Current   pipeline.BBox
	Tracked   bool
	Algorithm string

	// Lost is set when the last update failed. Current then holds the last
	// good position.
	Lost bool

	tracker ports.Tracker
}

func newZone(box pipeline.BBox, algorithm string, tracker ports.Tracker) *Zone {
	return &Zone{
		Initial:   box,
		Current:   box,
		Algorithm: algorithm,
		tracker:   tracker,
	}
}

// step runs one frame through the zone: init while untracked, update after.
func (z *Zone) step(frame *image.RGBA) {
	if !z.Tracked {
		box := z.Initial.Clip(frame.Bounds())
		z.Tracked = z.tracker.Init(frame, box)
		z.Lost = !z.Tracked
		if z.Tracked && box != z.Initial {
			z.Initial, z.Current = box, box
		}
		return
	}
	box, ok := z.tracker.Update(frame)
	if !ok || !box.Valid() {
		z.Lost = true
		return
	}
	z.Current = box
	z.Lost = false
}

// reset puts the zone back in its initial untracked state with a new tracker.
// The error is from closing the previous tracker; the zone is reset anyway.
func (z *Zone) reset(tracker ports.Tracker) error {
	var err error
	if z.tracker != nil {
		err = z.tracker.Close()
	}
	z.tracker = tracker
	z.Current = z.Initial
	z.Tracked = false
	z.Lost = false
	return err
}

func (z *Zone) state(index int) ZoneState {
	return ZoneState{
		Index:     index,
		Initial:   z.Initial,
		Current:   z.Current,
		Tracked:   z.Tracked,
		Lost:      z.Lost,
		Algorithm: z.Algorithm,
	}
}

// ZoneState is an immutable copy of a zone at one point in time.
type ZoneState struct {
	Index     int
	Initial   pipeline.BBox
	Current   pipeline.BBox
	Tracked   bool
	Lost      bool
	Algorithm string
}

// CenterX returns the horizontal center of the current box.
func (s ZoneState) CenterX() int { return s.Current.CenterX() }

// CenterY returns the vertical center of the current box.
func (s ZoneState) CenterY() int { return s.Current.CenterY() }

// DeltaX returns the horizontal displacement from the initial center.
func (s ZoneState) DeltaX() int { return s.Current.CenterX() - s.Initial.CenterX() }

// DeltaY returns the vertical displacement from the initial center.
func (s ZoneState) DeltaY() int { return s.Current.CenterY() - s.Initial.CenterY() }

// Snapshot is the position of every zone after one processed frame.
// Index lookups outside the zone list return 0.
type Snapshot struct {
	Frame int
	Zones []ZoneState
}

// Has reports whether i is a valid zone index.
func (s *Snapshot) Has(i int) bool {
	_, ok := s.zone(i)
	return ok
}

// Len returns the number of zones, 0 for a nil snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Zones)
}

func (s *Snapshot) zone(i int) (ZoneState, bool) {
	if s == nil || i < 0 || i >= len(s.Zones) {
		return ZoneState{}, false
	}
	return s.Zones[i], true
}

// CenterX returns the horizontal center of zone i, 0 when there is no such zone.
func (s *Snapshot) CenterX(i int) int {
	z, _ := s.zone(i)
	return z.CenterX()
}

// CenterY returns the vertical center of zone i, 0 when there is no such zone.
func (s *Snapshot) CenterY(i int) int {
	z, _ := s.zone(i)
	return z.CenterY()
}

// DeltaX returns how far zone i moved right of its initial center.
func (s *Snapshot) DeltaX(i int) int {
	z, _ := s.zone(i)
	return z.DeltaX()
}

// DeltaY returns how far zone i moved down from its initial center.
func (s *Snapshot) DeltaY(i int) int {
	z, _ := s.zone(i)
	return z.DeltaY()
}

// Ready reports whether every zone has locked on at least once.
func (s *Snapshot) Ready() bool {
	if s == nil || len(s.Zones) == 0 {
		return false
	}
	for _, z := range s.Zones {
		if !z.Tracked {
			return false
		}
	}
	return true
}
