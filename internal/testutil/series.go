package testutil

import (
	"time"

	"github.com/pratik-mahalle/costlens/internal/domain/costseries"
)

// SeriesStart is the default first day of generated test series
var SeriesStart = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

// Series builds a daily observation series from a cost sequence, one
// observation per day starting at SeriesStart, with a fixed three-service
// breakdown per day.
func Series(costs []float64) []costseries.Observation {
	observations := make([]costseries.Observation, len(costs))
	for i, cost := range costs {
		observations[i] = costseries.Observation{
			Date:      SeriesStart.AddDate(0, 0, i),
			DailyCost: cost,
			ServiceCosts: map[string]float64{
				"Compute": cost * 0.5,
				"Storage": cost * 0.3,
				"Network": cost * 0.2,
			},
		}
	}
	return observations
}

// FlatCosts returns days values all equal to cost
func FlatCosts(days int, cost float64) []float64 {
	costs := make([]float64, days)
	for i := range costs {
		costs[i] = cost
	}
	return costs
}

// SpikedCosts returns a flat base series with specific days overridden
func SpikedCosts(days int, base float64, spikes map[int]float64) []float64 {
	costs := FlatCosts(days, base)
	for day, cost := range spikes {
		costs[day] = cost
	}
	return costs
}

// WeeklyCosts returns a repeating 7-day pattern where every day at position 0
// mod 7 costs peak and all other days cost base
func WeeklyCosts(days int, base, peak float64) []float64 {
	costs := make([]float64, days)
	for i := range costs {
		if i%7 == 0 {
			costs[i] = peak
		} else {
			costs[i] = base
		}
	}
	return costs
}

// AlternatingCosts returns a series oscillating around base by amplitude
func AlternatingCosts(days int, base, amplitude float64) []float64 {
	costs := make([]float64, days)
	for i := range costs {
		if i%2 == 0 {
			costs[i] = base - amplitude
		} else {
			costs[i] = base + amplitude
		}
	}
	return costs
}

// Day returns the date of the i-th observation in a generated series
func Day(i int) time.Time {
	return SeriesStart.AddDate(0, 0, i)
}
