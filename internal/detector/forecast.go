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
	forecastMinObservations = 30
	forecastWindowSize      = 30
	forecastConfidence      = 0.92
	forecastZValue          = 1.96
	forecastBandMultiplier  = 2.0
	forecastHighMultiplier  = 3.0
	forecastTopServices     = 3
)

// ForecastDetector fits a rolling level-plus-trend forecast per point and
// flags points whose actual cost falls well outside the 95% confidence band.
type ForecastDetector struct{}

// NewForecastDetector creates a forecast deviation detector
func NewForecastDetector() *ForecastDetector {
	return &ForecastDetector{}
}

// Name implements Detector
func (d *ForecastDetector) Name() string { return "ARIMA Forecast" }

// MinObservations implements Detector
func (d *ForecastDetector) MinObservations() int { return forecastMinObservations }

// Detect implements Detector
func (d *ForecastDetector) Detect(observations []costseries.Observation, detectedAt time.Time) []anomaly.CostAnomaly {
	if len(observations) < forecastMinObservations {
		return nil
	}

	costs := costseries.Costs(observations)
	window := forecastWindowSize
	if len(costs) < window {
		window = len(costs)
	}

	var anomalies []anomaly.CostAnomaly
	for i := window; i < len(costs); i++ {
		trailing := costs[i-window : i]

		ma := mean(trailing)
		trend := (trailing[len(trailing)-1] - trailing[0]) / float64(window)
		sd := stdDev(trailing)

		forecast := ma + trend
		halfWidth := forecastZValue * sd
		if halfWidth == 0 {
			// Flat window gives a degenerate interval; treat as no deviation
			continue
		}

		residual := costs[i] - forecast
		if math.Abs(residual) <= forecastBandMultiplier*halfWidth {
			continue
		}

		severity := anomaly.SeverityMedium
		if math.Abs(residual) > forecastHighMultiplier*halfWidth {
			severity = anomaly.SeverityHigh
		}

		anomalyType := anomaly.TypeUnexpectedDecrease
		if costs[i] > forecast {
			anomalyType = anomaly.TypeSpikeCost
		}

		obs := observations[i]
		anomalies = append(anomalies, anomaly.CostAnomaly{
			ID:          uuid.New().String(),
			AnomalyDate: obs.Date,
			DetectedAt:  detectedAt,
			AnomalyType: anomalyType,
			Severity:    severity,
			Title:       "Cost deviation from rolling forecast",
			Description: fmt.Sprintf(
				"Daily cost of $%.2f on %s falls outside the forecast confidence band around $%.2f.",
				obs.DailyCost, obs.Date.Format("2006-01-02"), forecast),
			ExpectedCost:        forecast,
			ActualCost:          obs.DailyCost,
			CostDifference:      obs.DailyCost - forecast,
			PercentageDeviation: percentDeviation(obs.DailyCost, forecast),
			AnomalyScore:        clamp01(math.Abs(residual) / (forecastBandMultiplier * halfWidth)),
			DetectionMethod:     d.Name(),
			Confidence:          forecastConfidence,
			AffectedServices:    serviceNames(obs.TopServices(forecastTopServices)),
			PossibleCauses:      possibleCauses(anomalyType),
			ForecastedRange:     fmt.Sprintf("$%.2f - $%.2f", forecast-halfWidth, forecast+halfWidth),
		})
	}

	return anomalies
}
