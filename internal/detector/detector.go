// Package detector implements the multi-algorithm cost anomaly detection
// engine. Four independent detectors analyze the same daily cost series and a
// consolidation stage merges their findings into one ranked, deduplicated list.
package detector

import (
	"time"

	"github.com/pratik-mahalle/costlens/internal/domain/anomaly"
	"github.com/pratik-mahalle/costlens/internal/domain/costseries"
)

// Detector analyzes an ordered daily cost series and reports candidate
// anomalies. Implementations are stateless and safe for concurrent use over a
// shared read-only series.
type Detector interface {
	// Name identifies the detection method in anomaly output and metrics
	Name() string

	// MinObservations is the minimum series length the detector needs.
	// Shorter series produce an empty result, not an error.
	MinObservations() int

	// Detect returns candidate anomalies for the series. detectedAt stamps
	// each finding with the evaluation time.
	Detect(observations []costseries.Observation, detectedAt time.Time) []anomaly.CostAnomaly
}

// serviceNames flattens an ordered service cost list to names only
func serviceNames(services []costseries.ServiceCost) []string {
	if len(services) == 0 {
		return nil
	}
	names := make([]string, len(services))
	for i, s := range services {
		names[i] = s.ServiceName
	}
	return names
}

// possibleCauses returns plausible hypotheses for an anomaly type
func possibleCauses(anomalyType string) []string {
	switch anomalyType {
	case anomaly.TypeSpikeCost:
		return []string{
			"New resource deployment or scale-up event",
			"Misconfigured autoscaling policy",
			"One-time data transfer or batch workload",
		}
	case anomaly.TypeUnexpectedIncrease:
		return []string{
			"Gradual workload growth outpacing the baseline",
			"Pricing tier change or expired discount",
			"Resources left running after testing",
		}
	case anomaly.TypeUnexpectedDecrease:
		return []string{
			"Resource termination or downscaling",
			"Service outage reducing usage",
			"Workload migrated to another account",
		}
	case anomaly.TypeSeasonalDeviation:
		return []string{
			"Workload deviating from its weekly usage pattern",
			"Scheduled job running off its usual cadence",
			"Holiday or business calendar shift",
		}
	default:
		return []string{"Cost deviation from historical baseline"}
	}
}

// percentDeviation returns the deviation of actual from expected as a
// percentage, guarding division by a zero expected cost
func percentDeviation(actual, expected float64) float64 {
	if expected == 0 {
		return 0
	}
	return (actual - expected) / expected * 100
}
