package fps

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// stabilityThreshold is the largest standard deviation, as a fraction of the
// mean, for which a frame rate is reported as stable.
const stabilityThreshold = 0.15

// Stats describes a series of per-second frame rate estimates.
type Stats struct {
	Samples int
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
	Stable  bool
}

// Calculate computes statistics over per-second estimates.
func Calculate(samples []float64) Stats {
	if len(samples) == 0 {
		return Stats{}
	}

	s := Stats{
		Samples: len(samples),
		Min:     floats.Min(samples),
		Max:     floats.Max(samples),
	}
	if len(samples) == 1 {
		s.Mean = samples[0]
		return s
	}

	s.Mean, s.StdDev = stat.MeanStdDev(samples, nil)
	s.Stable = s.Mean > 0 && s.StdDev < s.Mean*stabilityThreshold
	return s
}
