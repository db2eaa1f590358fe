package detector

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pratik-mahalle/costlens/internal/domain/anomaly"
	"github.com/pratik-mahalle/costlens/internal/domain/costseries"
)

const (
	seasonalMinObservations = 28
	seasonalPeriod          = 7
	seasonalConfidence      = 0.88
	seasonalMADMultiplier   = 3.0
	seasonalHighFactor      = 1.5
	seasonalTopServices     = 3
)

// SeasonalDetector decomposes the series into trend, weekly-seasonal and
// residual components and flags residuals exceeding a robust threshold.
// Seasonal slots are positional (index mod 7), not tied to weekday names.
type SeasonalDetector struct{}

// NewSeasonalDetector creates a seasonal decomposition detector
func NewSeasonalDetector() *SeasonalDetector {
	return &SeasonalDetector{}
}

// Name implements Detector
func (d *SeasonalDetector) Name() string { return "Seasonal Decomposition" }

// MinObservations implements Detector
func (d *SeasonalDetector) MinObservations() int { return seasonalMinObservations }

// Detect implements Detector
func (d *SeasonalDetector) Detect(observations []costseries.Observation, detectedAt time.Time) []anomaly.CostAnomaly {
	if len(observations) < seasonalMinObservations {
		return nil
	}

	costs := costseries.Costs(observations)
	trend := centeredTrend(costs, seasonalPeriod)
	seasonal := seasonalProfile(costs, trend, seasonalPeriod)

	residuals := make([]float64, len(costs))
	absResiduals := make([]float64, len(costs))
	for i := range costs {
		residuals[i] = costs[i] - trend[i] - seasonal[i%seasonalPeriod]
		absResiduals[i] = math.Abs(residuals[i])
	}

	threshold := median(absResiduals) + seasonalMADMultiplier*medianAbsDeviation(residuals)
	if threshold == 0 {
		// Series fully explained by trend and seasonality
		return nil
	}

	var anomalies []anomaly.CostAnomaly
	for i, obs := range observations {
		residual := residuals[i]
		if math.Abs(residual) <= threshold {
			continue
		}

		severity := anomaly.SeverityMedium
		if math.Abs(residual) > seasonalHighFactor*threshold {
			severity = anomaly.SeverityHigh
		}

		anomalyType := anomaly.TypeUnexpectedDecrease
		if residual > 0 {
			anomalyType = anomaly.TypeSeasonalDeviation
		}

		expected := obs.DailyCost - residual
		anomalies = append(anomalies, anomaly.CostAnomaly{
			ID:          uuid.New().String(),
			AnomalyDate: obs.Date,
			DetectedAt:  detectedAt,
			AnomalyType: anomalyType,
			Severity:    severity,
			Title:       "Cost deviation from weekly pattern",
			Description: fmt.Sprintf(
				"Daily cost of $%.2f on %s cannot be explained by trend and weekly seasonality (expected around $%.2f).",
				obs.DailyCost, obs.Date.Format("2006-01-02"), expected),
			ExpectedCost:        expected,
			ActualCost:          obs.DailyCost,
			CostDifference:      residual,
			PercentageDeviation: percentDeviation(obs.DailyCost, expected),
			AnomalyScore:        clamp01(math.Abs(residual) / threshold),
			DetectionMethod:     d.Name(),
			Confidence:          seasonalConfidence,
			AffectedServices:    serviceNames(obs.TopServices(seasonalTopServices)),
			PossibleCauses:      possibleCauses(anomalyType),
			SeasonalComponent:   seasonal[i%seasonalPeriod],
			TrendComponent:      trend[i],
		})
	}

	return anomalies
}

// centeredTrend computes a centered moving average over a period-sized
// window. Boundary positions without a full window reuse the nearest full
// window's value, which keeps weekly peaks at the series edges from leaking
// into the residual.
func centeredTrend(costs []float64, period int) []float64 {
	n := len(costs)
	half := period / 2
	trend := make([]float64, n)

	for i := half; i < n-half; i++ {
		trend[i] = mean(costs[i-half : i+half+1])
	}
	for i := 0; i < half; i++ {
		trend[i] = trend[half]
	}
	for i := n - half; i < n; i++ {
		trend[i] = trend[n-half-1]
	}
	return trend
}

// seasonalProfile averages the detrended values per positional slot
func seasonalProfile(costs, trend []float64, period int) []float64 {
	sums := make([]float64, period)
	counts := make([]int, period)
	for i := range costs {
		slot := i % period
		sums[slot] += costs[i] - trend[i]
		counts[slot]++
	}

	profile := make([]float64, period)
	for slot := range profile {
		if counts[slot] > 0 {
			profile[slot] = sums[slot] / float64(counts[slot])
		}
	}
	return profile
}
