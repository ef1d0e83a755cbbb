package bench

import (
	"math"
	"sort"
)

// Stats is the aggregate of one metric over a run's successful queries.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// computeStats aggregates a sample. An empty sample yields zero stats with
// Count 0 rather than NaNs.
func computeStats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	var sqDiff float64
	for _, v := range sorted {
		d := v - mean
		sqDiff += d * d
	}

	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	return Stats{
		Count:  len(sorted),
		Mean:   mean,
		Median: median,
		StdDev: math.Sqrt(sqDiff / float64(len(sorted))),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}
