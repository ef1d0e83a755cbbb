package bench

import (
	"math"
	"testing"
)

func TestComputeStats(t *testing.T) {
	got := computeStats([]float64{10, 20, 30, 40, 50})

	if got.Count != 5 {
		t.Errorf("Count = %d, want 5", got.Count)
	}
	if got.Mean != 30 {
		t.Errorf("Mean = %.2f, want 30", got.Mean)
	}
	if got.Median != 30 {
		t.Errorf("Median = %.2f, want 30", got.Median)
	}
	if got.Min != 10 || got.Max != 50 {
		t.Errorf("Min/Max = %.0f/%.0f, want 10/50", got.Min, got.Max)
	}
	if math.Abs(got.StdDev-math.Sqrt(200)) > 1e-9 {
		t.Errorf("StdDev = %.4f, want %.4f", got.StdDev, math.Sqrt(200))
	}
}

func TestComputeStatsEvenSampleMedian(t *testing.T) {
	got := computeStats([]float64{1, 2, 3, 4})
	if got.Median != 2.5 {
		t.Errorf("Median = %.2f, want 2.5", got.Median)
	}
}

func TestComputeStatsEmptySample(t *testing.T) {
	got := computeStats(nil)
	if got.Count != 0 || got.Mean != 0 || got.StdDev != 0 {
		t.Errorf("empty sample stats = %+v, want zeros", got)
	}
}

func TestComputeStatsDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	computeStats(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input mutated: %v", values)
	}
}
