package fps

import (
	"math"
	"testing"
	"time"
)

func TestEstimator_FullSecondBatches(t *testing.T) {
	begin := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	e := New(begin)

	const batch = 24
	now := begin
	for i := 0; i < batch; i++ {
		e.Tick(now)
	}
	if e.Estimate() != 0 {
		t.Errorf("expected no estimate before the first boundary, got %v", e.Estimate())
	}

	now = now.Add(time.Second)
	for i := 0; i < batch; i++ {
		e.Tick(now)
	}
	if e.Estimate() != batch {
		t.Errorf("expected estimate %d after first boundary, got %v", batch, e.Estimate())
	}

	now = now.Add(time.Second)
	if !e.Tick(now) {
		t.Error("expected boundary to be reported")
	}
	if e.Estimate() != batch {
		t.Errorf("expected estimate %d after second boundary, got %v", batch, e.Estimate())
	}
	if e.FramesElapsed() != 2*batch+1 {
		t.Errorf("expected %d frames elapsed, got %d", 2*batch+1, e.FramesElapsed())
	}
}

func TestEstimator_NoBoundaryWithinSecond(t *testing.T) {
	begin := time.Unix(100, 0)
	e := New(begin)

	for i := 0; i < 10; i++ {
		if e.Tick(begin.Add(time.Duration(i) * 90 * time.Millisecond)) {
			t.Fatalf("unexpected boundary at frame %d", i)
		}
	}
}

func TestEstimator_Samples(t *testing.T) {
	begin := time.Unix(0, 0)
	e := New(begin)

	for sec := 0; sec < 4; sec++ {
		for i := 0; i < 10+sec; i++ {
			e.Tick(begin.Add(time.Duration(sec) * time.Second))
		}
	}

	got := e.Samples()
	want := []float64{10, 11, 12}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestCalculate(t *testing.T) {
	s := Calculate([]float64{30, 30, 30, 30})
	if s.Mean != 30 || s.StdDev != 0 {
		t.Errorf("expected mean 30 stddev 0, got %v %v", s.Mean, s.StdDev)
	}
	if !s.Stable {
		t.Error("expected constant rate to be stable")
	}

	s = Calculate([]float64{5, 30, 60})
	if s.Stable {
		t.Error("expected erratic rate to be unstable")
	}
	if s.Min != 5 || s.Max != 60 {
		t.Errorf("expected min 5 max 60, got %v %v", s.Min, s.Max)
	}
	if math.Abs(s.Mean-95.0/3) > 1e-9 {
		t.Errorf("unexpected mean %v", s.Mean)
	}
}

func TestCalculate_Empty(t *testing.T) {
	if s := Calculate(nil); s != (Stats{}) {
		t.Errorf("expected zero stats, got %+v", s)
	}
}
