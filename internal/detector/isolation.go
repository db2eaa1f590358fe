package detector

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/pratik-mahalle/costlens/internal/domain/anomaly"
	"github.com/pratik-mahalle/costlens/internal/domain/costseries"
)

const (
	isolationMinObservations = 14
	isolationScoreThreshold  = 0.6
	isolationHighScore       = 0.8
	isolationTrailingWindow  = 7
	isolationServiceShare    = 0.10
)

// IsolationForestDetector flags cost values that are easy to isolate through
// randomized binary partitioning. Shorter average isolation paths mean more
// anomalous points.
type IsolationForestDetector struct {
	trees     int
	subsample int
	maxDepth  int
	seed      int64
}

// NewIsolationForestDetector creates an isolation forest detector from config
func NewIsolationForestDetector(cfg Config) *IsolationForestDetector {
	return &IsolationForestDetector{
		trees:     cfg.IsolationTrees,
		subsample: cfg.IsolationSubsample,
		maxDepth:  cfg.IsolationMaxDepth,
		seed:      cfg.Seed,
	}
}

// Name implements Detector
func (d *IsolationForestDetector) Name() string { return "Isolation Forest" }

// MinObservations implements Detector
func (d *IsolationForestDetector) MinObservations() int { return isolationMinObservations }

// Detect implements Detector
func (d *IsolationForestDetector) Detect(observations []costseries.Observation, detectedAt time.Time) []anomaly.CostAnomaly {
	if len(observations) < isolationMinObservations {
		return nil
	}

	costs := costseries.Costs(observations)
	sampleSize := d.subsample
	if len(costs) < sampleSize {
		sampleSize = len(costs)
	}

	norm := expectedPathLength(sampleSize)
	if norm == 0 {
		return nil
	}

	// Each tree draws its own subsample without replacement with a
	// deterministic per-tree seed, so a run is reproducible for a fixed
	// base seed.
	forest := make([]*isolationTree, d.trees)
	for t := range forest {
		rng := rand.New(rand.NewSource(d.seed + int64(t)))
		sample := sampleWithoutReplacement(rng, costs, sampleSize)
		forest[t] = buildIsolationTree(sample, 0, d.maxDepth, rng)
	}

	var anomalies []anomaly.CostAnomaly
	for i, obs := range observations {
		total := 0.0
		for _, tree := range forest {
			total += tree.pathLength(obs.DailyCost, 0)
		}
		avgPath := total / float64(len(forest))
		score := math.Pow(2, -avgPath/norm)

		if score <= isolationScoreThreshold {
			continue
		}

		expected := trailingMean(costs, i, isolationTrailingWindow)

		severity := anomaly.SeverityMedium
		confidence := 0.85
		if score > isolationHighScore {
			severity = anomaly.SeverityHigh
			confidence = 0.95
		}

		anomalyType := anomaly.TypeUnexpectedIncrease
		if obs.DailyCost > expected {
			anomalyType = anomaly.TypeSpikeCost
		}

		anomalies = append(anomalies, anomaly.CostAnomaly{
			ID:          uuid.New().String(),
			AnomalyDate: obs.Date,
			DetectedAt:  detectedAt,
			AnomalyType: anomalyType,
			Severity:    severity,
			Title:       "Cost outlier detected by isolation forest",
			Description: fmt.Sprintf(
				"Daily cost of $%.2f on %s is easily isolated from the rest of the series (isolation score %.2f, expected around $%.2f).",
				obs.DailyCost, obs.Date.Format("2006-01-02"), score, expected),
			ExpectedCost:        expected,
			ActualCost:          obs.DailyCost,
			CostDifference:      obs.DailyCost - expected,
			PercentageDeviation: percentDeviation(obs.DailyCost, expected),
			AnomalyScore:        clamp01(score),
			DetectionMethod:     d.Name(),
			Confidence:          confidence,
			AffectedServices:    serviceNames(obs.ServicesAbove(isolationServiceShare)),
			PossibleCauses:      possibleCauses(anomalyType),
		})
	}

	return anomalies
}

// trailingMean averages up to window observations strictly before index i.
// With no prior observations the point's own value is used, which yields a
// zero deviation.
func trailingMean(costs []float64, i, window int) float64 {
	start := i - window
	if start < 0 {
		start = 0
	}
	if start == i {
		return costs[i]
	}
	return mean(costs[start:i])
}

// sampleWithoutReplacement draws n values from costs without replacement
func sampleWithoutReplacement(rng *rand.Rand, costs []float64, n int) []float64 {
	perm := rng.Perm(len(costs))
	sample := make([]float64, n)
	for i := 0; i < n; i++ {
		sample[i] = costs[perm[i]]
	}
	return sample
}

// isolationTree is a binary partition tree over a subsample of cost values.
// Internal nodes hold a split value; leaves hold the count of values that
// could not be separated further.
type isolationTree struct {
	split float64
	left  *isolationTree
	right *isolationTree
	size  int
}

// buildIsolationTree recursively partitions values on uniformly random split
// points between the current subsample's min and max
func buildIsolationTree(values []float64, depth, maxDepth int, rng *rand.Rand) *isolationTree {
	if len(values) <= 1 || depth >= maxDepth {
		return &isolationTree{size: len(values)}
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return &isolationTree{size: len(values)}
	}

	split := lo + rng.Float64()*(hi-lo)
	var left, right []float64
	for _, v := range values {
		if v < split {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}

	return &isolationTree{
		split: split,
		left:  buildIsolationTree(left, depth+1, maxDepth, rng),
		right: buildIsolationTree(right, depth+1, maxDepth, rng),
	}
}

// pathLength returns the isolation path length for a value. Leaves holding
// multiple unseparated values contribute their expected remaining path.
func (t *isolationTree) pathLength(v float64, depth int) float64 {
	if t.left == nil && t.right == nil {
		return float64(depth) + expectedPathLength(t.size)
	}
	if v < t.split {
		return t.left.pathLength(v, depth+1)
	}
	return t.right.pathLength(v, depth+1)
}
