package core

import "math"

// -----------------------------------------------------------------------------

// Summary holds the derived statistics of a calibrated waveform. Count only
// includes non-NaN samples.
type Summary struct {
	Count        int
	Mean         float64
	Minimum      float64
	MinimumIndex int
	Maximum      float64
	MaximumIndex int
	Sum          float64
	SumSquared   float64
	StdDev       float64
	PeakToPeak   float64
}

// -----------------------------------------------------------------------------

// Accumulator computes a Summary in a single pass (Welford's update).
type Accumulator struct {
	count  int
	mean   float64
	m2     float64
	sum    float64
	sumSq  float64
	min    float64
	minIdx int
	max    float64
	maxIdx int
}

// -----------------------------------------------------------------------------

// Add folds in the sample at index i. NaN samples are skipped.
func (a *Accumulator) Add(i int, v float64) {
	if math.IsNaN(v) {
		return
	}
	if a.count == 0 || v < a.min {
		a.min, a.minIdx = v, i
	}
	if a.count == 0 || v > a.max {
		a.max, a.maxIdx = v, i
	}
	a.count++
	a.sum += v
	a.sumSq += v * v

	delta := v - a.mean
	a.mean += delta / float64(a.count)
	a.m2 += delta * (v - a.mean)
}

// -----------------------------------------------------------------------------

// Summary returns the statistics accumulated so far. With no samples the
// location statistics are NaN; with one sample the deviation is 0.
func (a *Accumulator) Summary() Summary {
	if a.count == 0 {
		nan := math.NaN()
		return Summary{
			Mean: nan, Minimum: nan, Maximum: nan, StdDev: nan, PeakToPeak: nan,
			MinimumIndex: -1, MaximumIndex: -1,
		}
	}

	std := 0.0
	if a.count > 1 {
		std = math.Sqrt(a.m2 / float64(a.count-1))
	}

	return Summary{
		Count:        a.count,
		Mean:         a.mean,
		Minimum:      a.min,
		MinimumIndex: a.minIdx,
		Maximum:      a.max,
		MaximumIndex: a.maxIdx,
		Sum:          a.sum,
		SumSquared:   a.sumSq,
		StdDev:       std,
		PeakToPeak:   a.max - a.min,
	}
}

// -----------------------------------------------------------------------------

// Summarize computes the Summary of data.
func Summarize(data []float64) Summary {
	var acc Accumulator
	for i, v := range data {
		acc.Add(i, v)
	}
	return acc.Summary()
}

// -----------------------------------------------------------------------------

// Finite maps NaN and infinities to 0 for consumers that cannot encode them.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
