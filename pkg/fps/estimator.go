// Package fps measures the real frame rate of a capture loop.
package fps

import (
	"time"
)

// maxSamples bounds the per-second history kept for statistics.
const maxSamples = 600

// Estimator counts completed frames and derives frames-per-second from
// wall-clock time bucketed by whole seconds since the session began.
// It is never reset.
type Estimator struct {
	begin    time.Time
	tick     int64 // whole seconds already accounted for
	counter  int   // frames in the current bucket
	elapsed  int   // frames since begin
	estimate float64
	samples  []float64
}

// New creates an estimator whose first bucket starts at begin.
func New(begin time.Time) *Estimator {
	return &Estimator{begin: begin}
}

// Tick records one completed frame at time now. It returns true when the
// frame crossed a second boundary and the estimate was refreshed.
// The boundary-crossing frame is counted in the new bucket.
func (e *Estimator) Tick(now time.Time) bool {
	e.elapsed++

	crossed := false
	if sec := int64(now.Sub(e.begin) / time.Second); sec > e.tick {
		e.tick = sec
		e.estimate = float64(e.counter)
		e.record(e.estimate)
		e.counter = 0
		crossed = true
	}
	e.counter++
	return crossed
}

func (e *Estimator) record(v float64) {
	if len(e.samples) == maxSamples {
		copy(e.samples, e.samples[1:])
		e.samples = e.samples[:maxSamples-1]
	}
	e.samples = append(e.samples, v)
}

// Estimate returns the frame count of the last full second, 0 before the
// first boundary.
func (e *Estimator) Estimate() float64 {
	return e.estimate
}

// FramesElapsed returns the number of frames recorded since begin.
func (e *Estimator) FramesElapsed() int {
	return e.elapsed
}

// Samples returns a copy of the per-second estimates, oldest first.
func (e *Estimator) Samples() []float64 {
	out := make([]float64, len(e.samples))
	copy(out, e.samples)
	return out
}

// Stats summarizes the per-second estimates recorded so far.
func (e *Estimator) Stats() Stats {
	return Calculate(e.samples)
}
