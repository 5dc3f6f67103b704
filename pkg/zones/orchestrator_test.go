package zones

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/user/zonecam/pkg/mocks"
	"github.com/user/zonecam/pkg/pipeline"
	"github.com/user/zonecam/pkg/ports"
	"github.com/user/zonecam/pkg/trackers"
)

// scriptedRegistry hands out the given trackers in order under the name "SCRIPT".
func scriptedRegistry(t *testing.T, trs ...*mocks.Tracker) *trackers.Registry {
	t.Helper()
	r := trackers.NewRegistry()
	next := 0
	err := r.Register("SCRIPT", func() (ports.Tracker, error) {
		if next >= len(trs) {
			return &mocks.Tracker{}, nil
		}
		tr := trs[next]
		next++
		return tr, nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return r
}

func frame(w, h int) *image.RGBA {
	return mocks.SolidFrame(w, h, color.RGBA{A: 255})
}

func threeZones() Config {
	return Config{Count: 3, Y: 50, Width: 100, Height: 200, Algorithm: "SCRIPT"}
}

func TestPlacement_EvenlySpaced(t *testing.T) {
	boxes := Placement(threeZones(), 640)

	want := []int{106, 319, 532}
	for i, b := range boxes {
		if got := b.CenterX(); got != want[i] {
			t.Errorf("zone %d: expected center %d, got %d", i, want[i], got)
		}
		if b.W != 100 || b.H != 200 || b.Y != 50 {
			t.Errorf("zone %d: unexpected geometry %v", i, b)
		}
	}
	if boxes[1].X-boxes[0].X != boxes[2].X-boxes[1].X {
		t.Errorf("expected even spacing, got %v", boxes)
	}
}

func TestPlacement_MatchesSegmentCenters(t *testing.T) {
	for n := 1; n <= MaxZones; n++ {
		cfg := Config{Count: n, Width: 40, Height: 40}
		for i, b := range Placement(cfg, 960) {
			want := i*960/n + 960/(2*n)
			if got := b.CenterX(); got != want {
				t.Errorf("n=%d zone %d: expected center %d, got %d", n, i, want, got)
			}
		}
	}
}

func TestOrchestrator_EndToEnd(t *testing.T) {
	moving := mocks.ScriptedTracker(&image.Point{X: 10}, &image.Point{X: 20})
	o, err := New(threeZones(), scriptedRegistry(t, &mocks.Tracker{}, moving, &mocks.Tracker{}), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := o.InitZones(640); err != nil {
		t.Fatalf("InitZones: %v", err)
	}

	f := frame(640, 480)
	for i := 0; i < 3; i++ {
		if out := o.Update(f); out != f {
			t.Fatal("expected the frame to be returned unmodified")
		}
	}

	if got := o.DeltaX(1); got != 20 {
		t.Errorf("expected DeltaX(1) = 20, got %d", got)
	}
	if o.DeltaX(0) != 0 || o.DeltaX(2) != 0 {
		t.Errorf("expected other zones still, got %d and %d", o.DeltaX(0), o.DeltaX(2))
	}
	if got := o.CenterX(1); got != 339 {
		t.Errorf("expected CenterX(1) = 339, got %d", got)
	}
	if got := o.CenterY(1); got != 150 {
		t.Errorf("expected CenterY(1) = 150, got %d", got)
	}
	if o.Frames() != 3 {
		t.Errorf("expected 3 frames, got %d", o.Frames())
	}
}

func TestOrchestrator_FailedUpdateKeepsBox(t *testing.T) {
	tr := mocks.ScriptedTracker(&image.Point{X: 5, Y: -3}, nil)
	o, _ := New(Config{Count: 1, Y: 10, Width: 50, Height: 50, Algorithm: "SCRIPT"}, scriptedRegistry(t, tr), nil)
	o.InitZones(320)

	f := frame(320, 240)
	o.Update(f) // init
	o.Update(f) // moved
	before := o.Zones()[0].Current

	o.Update(f) // lost
	after := o.Zones()[0]
	if after.Current != before {
		t.Errorf("expected %v after failed update, got %v", before, after.Current)
	}
	if !after.Lost || !after.Tracked {
		t.Errorf("expected tracked and lost, got %+v", after)
	}
	if o.DeltaX(0) != 5 || o.DeltaY(0) != -3 {
		t.Errorf("expected delta (5,-3), got (%d,%d)", o.DeltaX(0), o.DeltaY(0))
	}
}

func TestOrchestrator_DegenerateBoxIgnored(t *testing.T) {
	tr := &mocks.Tracker{
		UpdateFunc: func(*image.RGBA) (pipeline.BBox, bool) {
			return pipeline.BBox{X: 3, Y: 3, W: 0, H: -1}, true
		},
	}
	o, _ := New(Config{Count: 1, Width: 50, Height: 50, Algorithm: "SCRIPT"}, scriptedRegistry(t, tr), nil)
	o.InitZones(320)
	initial := o.Zones()[0].Initial

	f := frame(320, 240)
	o.Update(f)
	o.Update(f)

	if got := o.Zones()[0].Current; got != initial {
		t.Errorf("expected %v, got %v", initial, got)
	}
}

func TestOrchestrator_InitRetriedUntilLocked(t *testing.T) {
	attempts := 0
	tr := &mocks.Tracker{
		InitFunc: func(*image.RGBA, pipeline.BBox) bool {
			attempts++
			return attempts > 1
		},
	}
	o, _ := New(Config{Count: 1, Width: 50, Height: 50, Algorithm: "SCRIPT"}, scriptedRegistry(t, tr), nil)
	o.InitZones(320)

	f := frame(320, 240)
	o.Update(f)
	if o.Zones()[0].Tracked {
		t.Fatal("expected the zone to stay untracked after a failed init")
	}
	o.Update(f)
	if !o.Zones()[0].Tracked {
		t.Error("expected the zone to lock on the second attempt")
	}
	if tr.UpdateCalls != 0 {
		t.Errorf("expected no updates while initialising, got %d", tr.UpdateCalls)
	}
}

func TestOrchestrator_BadIndex(t *testing.T) {
	log := mocks.NewLogger()
	o, _ := New(threeZones(), scriptedRegistry(t), log)
	o.InitZones(640)

	for _, i := range []int{-1, 3, 99} {
		if o.CenterX(i) != 0 || o.CenterY(i) != 0 || o.DeltaX(i) != 0 || o.DeltaY(i) != 0 {
			t.Errorf("expected neutral values for index %d", i)
		}
	}

	entries := log.Entries(ports.LevelDebug)
	found := false
	for _, e := range entries {
		if e.Component == "zones" && strings.Contains(e.Message, "Zone 99 requested") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a debug entry for the bad index, got %+v", entries)
	}
}

func TestOrchestrator_InitZonesOnce(t *testing.T) {
	o, _ := New(threeZones(), scriptedRegistry(t), nil)
	if err := o.InitZones(0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for zero width, got %v", err)
	}
	if err := o.InitZones(640); err != nil {
		t.Fatalf("InitZones: %v", err)
	}
	if err := o.InitZones(800); !errors.Is(err, ErrAlreadyInitialised) {
		t.Errorf("expected ErrAlreadyInitialised, got %v", err)
	}
	if got := o.Zones()[0].Initial.X; got != 56 {
		t.Errorf("expected placement for 640 to stay, got x=%d", got)
	}
}

func TestOrchestrator_LazyInitFromFrame(t *testing.T) {
	o, _ := New(threeZones(), scriptedRegistry(t), nil)
	o.Update(frame(640, 480))

	if o.Len() != 3 {
		t.Fatalf("expected 3 zones, got %d", o.Len())
	}
	if got := o.CenterX(2); got != 532 {
		t.Errorf("expected CenterX(2) = 532, got %d", got)
	}
}

func TestOrchestrator_Reset(t *testing.T) {
	first := mocks.ScriptedTracker(&image.Point{X: 8})
	second := &mocks.Tracker{}
	o, _ := New(Config{Count: 1, Width: 50, Height: 50, Algorithm: "SCRIPT"}, scriptedRegistry(t, first, second), nil)
	o.InitZones(320)

	f := frame(320, 240)
	o.Update(f)
	o.Update(f)
	if o.DeltaX(0) != 8 {
		t.Fatalf("expected DeltaX 8 before reset, got %d", o.DeltaX(0))
	}

	if err := o.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	z := o.Zones()[0]
	if z.Tracked || z.Current != z.Initial || o.Frames() != 0 {
		t.Errorf("expected a fresh untracked zone, got %+v (frames %d)", z, o.Frames())
	}
	if !first.Closed {
		t.Error("expected the previous tracker to be closed")
	}

	o.Update(f)
	if len(second.InitCalls) != 1 {
		t.Errorf("expected the new tracker to be initialised, got %d calls", len(second.InitCalls))
	}
}

func TestOrchestrator_ResetIsAllOrNothing(t *testing.T) {
	reg := trackers.NewRegistry()
	var made []*mocks.Tracker
	err := reg.Register("SCRIPT", func() (ports.Tracker, error) {
		if len(made) == 4 {
			return nil, errors.New("out of trackers")
		}
		tr := &mocks.Tracker{}
		made = append(made, tr)
		return tr, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	o, _ := New(Config{Count: 3, Width: 40, Height: 40, Algorithm: "SCRIPT"}, reg, nil)
	o.InitZones(320)
	o.Update(frame(320, 240))

	// The third zone's replacement cannot be created.
	if err := o.Reset(); err == nil {
		t.Fatal("expected Reset to fail")
	}
	for i, z := range o.Zones() {
		if !z.Tracked {
			t.Errorf("zone %d: expected to keep tracking after a failed reset", i)
		}
	}
	for i, tr := range made[:3] {
		if tr.Closed {
			t.Errorf("tracker %d: expected the live tracker to stay open", i)
		}
	}
	if !made[3].Closed {
		t.Error("expected the unused replacement to be closed")
	}
}

func TestOrchestrator_ResetReportsCloseError(t *testing.T) {
	boom := errors.New("close failed")
	first := &mocks.Tracker{CloseErr: boom}
	second := &mocks.Tracker{}
	o, _ := New(Config{Count: 1, Width: 50, Height: 50, Algorithm: "SCRIPT"}, scriptedRegistry(t, first, second), nil)
	o.InitZones(320)
	o.Update(frame(320, 240))

	if err := o.Reset(); !errors.Is(err, boom) {
		t.Errorf("expected the close error, got %v", err)
	}
	if z := o.Zones()[0]; z.Tracked {
		t.Errorf("expected the zone to be reset anyway, got %+v", z)
	}
	o.Update(frame(320, 240))
	if len(second.InitCalls) != 1 {
		t.Errorf("expected the new tracker to be used, got %d init calls", len(second.InitCalls))
	}
}

func TestOrchestrator_OverhangingZonesStayStill(t *testing.T) {
	// 130 wide zones do not fit in 320/3 wide slices.
	o, err := New(Config{Count: 3, Y: 10, Width: 130, Height: 100, Algorithm: "TEMPLATE"}, trackers.Default(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.InitZones(320); err != nil {
		t.Fatal(err)
	}
	if got, want := o.Zones()[0].Initial, (pipeline.BBox{X: 0, Y: 10, W: 118, H: 100}); got != want {
		t.Errorf("expected the first zone clipped to %v, got %v", want, got)
	}

	still := mocks.SolidFrame(320, 240, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	for i := 0; i < 4; i++ {
		o.Update(still)
	}
	for i, z := range o.Zones() {
		if !z.Tracked {
			t.Errorf("zone %d: expected to be tracked", i)
		}
		if z.Initial.X < 0 || z.Initial.X+z.Initial.W > 320 {
			t.Errorf("zone %d: initial box %v leaves the frame", i, z.Initial)
		}
		if z.DeltaX() != 0 || z.DeltaY() != 0 {
			t.Errorf("zone %d: expected no movement on a still frame, got (%d,%d)", i, z.DeltaX(), z.DeltaY())
		}
	}
}

func TestOrchestrator_ZoneBelowFrameIsClipped(t *testing.T) {
	tr := &mocks.Tracker{}
	o, _ := New(Config{Count: 1, Y: 200, Width: 50, Height: 100, Algorithm: "SCRIPT"}, scriptedRegistry(t, tr), nil)
	o.InitZones(320)

	o.Update(frame(320, 240))
	o.Update(frame(320, 240))

	want := pipeline.BBox{X: 135, Y: 200, W: 50, H: 40}
	if got := tr.InitCalls[0]; got != want {
		t.Errorf("expected the tracker to start on %v, got %v", want, got)
	}
	z := o.Zones()[0]
	if z.Initial != want || z.Current != want {
		t.Errorf("expected initial and current %v, got %+v", want, z)
	}
	if o.DeltaY(0) != 0 {
		t.Errorf("expected no vertical delta, got %d", o.DeltaY(0))
	}
}

func TestOrchestrator_Snapshot(t *testing.T) {
	tr := mocks.ScriptedTracker(&image.Point{X: -4, Y: 6})
	o, _ := New(Config{Count: 1, Y: 10, Width: 50, Height: 50, Algorithm: "SCRIPT"}, scriptedRegistry(t, tr), nil)
	o.InitZones(200)

	f := frame(200, 100)
	o.Update(f)
	o.Update(f)

	initial := pipeline.BBox{X: 75, Y: 10, W: 50, H: 50}
	want := &Snapshot{
		Frame: 2,
		Zones: []ZoneState{{
			Index:     0,
			Initial:   initial,
			Current:   initial.Translate(-4, 6),
			Tracked:   true,
			Algorithm: "SCRIPT",
		}},
	}
	got := o.Snapshot()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}
	if !got.Ready() {
		t.Error("expected snapshot to be ready")
	}
	if got.DeltaX(0) != -4 || got.DeltaY(0) != 6 || got.DeltaX(1) != 0 {
		t.Errorf("unexpected snapshot deltas %d,%d,%d", got.DeltaX(0), got.DeltaY(0), got.DeltaX(1))
	}

	var empty *Snapshot
	if empty.CenterX(0) != 0 || empty.Ready() {
		t.Error("expected a nil snapshot to be neutral")
	}
}

func TestOrchestrator_Execute(t *testing.T) {
	o, _ := New(threeZones(), scriptedRegistry(t), nil)
	chain := pipeline.Chain{o}
	f := frame(640, 480)

	out, err := chain.Execute(context.Background(), f)
	if err != nil || out != f {
		t.Fatalf("unexpected result %v, %v", out, err)
	}
	if o.Frames() != 1 {
		t.Errorf("expected 1 frame, got %d", o.Frames())
	}
}

func TestNew_Validation(t *testing.T) {
	reg := trackers.Default()
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no zones", Config{Count: 0, Width: 10, Height: 10, Algorithm: "TEMPLATE"}},
		{"too many zones", Config{Count: 4, Width: 10, Height: 10, Algorithm: "TEMPLATE"}},
		{"empty size", Config{Count: 1, Width: 0, Height: 10, Algorithm: "TEMPLATE"}},
		{"negative y", Config{Count: 1, Y: -1, Width: 10, Height: 10, Algorithm: "TEMPLATE"}},
		{"unknown algorithm", Config{Count: 1, Width: 10, Height: 10, Algorithm: "BOOSTING"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg, reg, nil); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if _, err := New(DefaultConfig(), reg, nil); err != nil {
		t.Errorf("expected defaults to be valid, got %v", err)
	}
}
