package core

import (
	"math"
	"testing"
)

func TestSummarizeExample(t *testing.T) {
	s := Summarize([]float64{1, 2, 3, 4})
	if s.Mean != 2.5 || s.Minimum != 1 || s.Maximum != 4 || s.PeakToPeak != 3 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if math.Abs(s.StdDev-math.Sqrt(5.0/3.0)) > 1e-12 {
		t.Fatalf("std dev %v, want %v", s.StdDev, math.Sqrt(5.0/3.0))
	}
	if s.Sum != 10 || s.SumSquared != 30 || s.Count != 4 {
		t.Fatalf("unexpected sums %+v", s)
	}
	if s.MinimumIndex != 0 || s.MaximumIndex != 3 {
		t.Fatalf("unexpected locations %+v", s)
	}
}

func TestSummarizeSkipsNaN(t *testing.T) {
	s := Summarize([]float64{math.NaN(), 5, math.NaN(), -1})
	if s.Count != 2 || s.Sum != 4 || s.Mean != 2 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.MinimumIndex != 3 || s.MaximumIndex != 1 {
		t.Fatalf("unexpected locations %+v", s)
	}
}

func TestSummarizeDegenerate(t *testing.T) {
	one := Summarize([]float64{7})
	if one.StdDev != 0 || one.Mean != 7 || one.PeakToPeak != 0 {
		t.Fatalf("single sample summary %+v", one)
	}

	none := Summarize(nil)
	if !math.IsNaN(none.Mean) || !math.IsNaN(none.StdDev) || none.Count != 0 || none.Sum != 0 {
		t.Fatalf("empty summary %+v", none)
	}
}

func TestFinite(t *testing.T) {
	if Finite(math.NaN()) != 0 || Finite(math.Inf(-1)) != 0 || Finite(1.5) != 1.5 {
		t.Fatal("Finite mismatch")
	}
}
