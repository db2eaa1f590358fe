package detector

import (
	"math"
	"sort"
)

// mean returns the arithmetic mean of values, or 0 for an empty slice
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev returns the sample standard deviation of values
func stdDev(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	m := mean(values)
	sumSqDiff := 0.0
	for _, v := range values {
		diff := v - m
		sumSqDiff += diff * diff
	}
	return math.Sqrt(sumSqDiff / float64(len(values)-1))
}

// median returns the median of values, or 0 for an empty slice
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// medianAbsDeviation returns the median absolute deviation from the median
func medianAbsDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := median(values)
	deviations := make([]float64, len(values))
	for i, v := range values {
		deviations[i] = math.Abs(v - m)
	}
	return median(deviations)
}

// clamp01 clamps v into [0,1]
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

const eulerMascheroni = 0.5772156649

// expectedPathLength returns c(m), the expected path length of an
// unsuccessful binary search over m points. Zero for m <= 1.
func expectedPathLength(m int) float64 {
	if m <= 1 {
		return 0
	}
	fm := float64(m)
	return 2*(math.Log(fm-1)+eulerMascheroni) - 2*(fm-1)/fm
}
