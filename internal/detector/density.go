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
	densityMinObservations = 20
	densityMinPoints       = 5
	densityEpsilonFactor   = 0.5
	densityHighDeviation   = 0.5
	densityConfidence      = 0.90
	densityTopServices     = 3
)

// DensityClusterDetector flags cost values that fail to join any sufficiently
// dense cluster of similar values (DBSCAN over the one-dimensional cost axis).
// The neighbor-graph formulation is kept generic so future multi-dimensional
// cost features can reuse it.
type DensityClusterDetector struct{}

// NewDensityClusterDetector creates a density clustering detector
func NewDensityClusterDetector() *DensityClusterDetector {
	return &DensityClusterDetector{}
}

// Name implements Detector
func (d *DensityClusterDetector) Name() string { return "DBSCAN Clustering" }

// MinObservations implements Detector
func (d *DensityClusterDetector) MinObservations() int { return densityMinObservations }

// Detect implements Detector
func (d *DensityClusterDetector) Detect(observations []costseries.Observation, detectedAt time.Time) []anomaly.CostAnomaly {
	if len(observations) < densityMinObservations {
		return nil
	}

	costs := costseries.Costs(observations)
	sd := stdDev(costs)
	if sd == 0 {
		// No spread means a single dense cluster and no noise points
		return nil
	}

	epsilon := densityEpsilonFactor * sd
	labels, clusterCount := dbscan(costs, epsilon, densityMinPoints)

	expected := expectedFromClusters(costs, labels, clusterCount)

	var anomalies []anomaly.CostAnomaly
	for i, obs := range observations {
		if labels[i] != noiseLabel {
			continue
		}
		if expected == 0 {
			continue
		}

		relDeviation := math.Abs(obs.DailyCost-expected) / expected

		severity := anomaly.SeverityMedium
		if relDeviation > densityHighDeviation {
			severity = anomaly.SeverityHigh
		}

		anomalyType := anomaly.TypeUnexpectedDecrease
		if obs.DailyCost > expected {
			anomalyType = anomaly.TypeSpikeCost
		}

		anomalies = append(anomalies, anomaly.CostAnomaly{
			ID:          uuid.New().String(),
			AnomalyDate: obs.Date,
			DetectedAt:  detectedAt,
			AnomalyType: anomalyType,
			Severity:    severity,
			Title:       "Cost outlier detected by density clustering",
			Description: fmt.Sprintf(
				"Daily cost of $%.2f on %s does not belong to any dense cluster of similar costs (expected around $%.2f).",
				obs.DailyCost, obs.Date.Format("2006-01-02"), expected),
			ExpectedCost:        expected,
			ActualCost:          obs.DailyCost,
			CostDifference:      obs.DailyCost - expected,
			PercentageDeviation: percentDeviation(obs.DailyCost, expected),
			AnomalyScore:        clamp01(relDeviation),
			DetectionMethod:     d.Name(),
			Confidence:          densityConfidence,
			AffectedServices:    serviceNames(obs.TopServices(densityTopServices)),
			PossibleCauses:      possibleCauses(anomalyType),
		})
	}

	return anomalies
}

const noiseLabel = -1

// dbscan labels each point with a cluster id, or noiseLabel for points that
// never join a cluster. A point seeds a cluster only if it has at least
// minPts neighbors (itself excluded); membership then grows breadth-first
// through each member's own qualifying neighborhood.
func dbscan(values []float64, epsilon float64, minPts int) ([]int, int) {
	n := len(values)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = noiseLabel
	}
	visited := make([]bool, n)

	clusterID := 0
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := regionQuery(values, i, epsilon)
		if len(neighbors) < minPts {
			continue
		}

		labels[i] = clusterID
		queue := neighbors
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]

			if !visited[j] {
				visited[j] = true
				expansion := regionQuery(values, j, epsilon)
				if len(expansion) >= minPts {
					queue = append(queue, expansion...)
				}
			}
			if labels[j] == noiseLabel {
				labels[j] = clusterID
			}
		}
		clusterID++
	}

	return labels, clusterID
}

// regionQuery returns the indices of all other points within epsilon of point i
func regionQuery(values []float64, i int, epsilon float64) []int {
	var neighbors []int
	for j, v := range values {
		if j == i {
			continue
		}
		if math.Abs(values[i]-v) <= epsilon {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// expectedFromClusters returns the mean cost of the largest cluster, or the
// mean of the whole series when no cluster was found
func expectedFromClusters(costs []float64, labels []int, clusterCount int) float64 {
	if clusterCount == 0 {
		return mean(costs)
	}

	counts := make([]int, clusterCount)
	for _, label := range labels {
		if label != noiseLabel {
			counts[label]++
		}
	}

	largest := 0
	for id, count := range counts {
		if count > counts[largest] {
			largest = id
		}
	}

	var members []float64
	for i, label := range labels {
		if label == largest {
			members = append(members, costs[i])
		}
	}
	return mean(members)
}
