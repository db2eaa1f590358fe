package detector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pratik-mahalle/costlens/internal/domain/anomaly"
)

const (
	consolidationConfidenceStep = 0.05
	consolidationConfidenceCap  = 0.99
	multiAlgorithmMethod        = "Multi-algorithm"
)

// Consolidator merges per-detector findings into one ranked list with at most
// one anomaly per calendar date. Nothing is filtered; same-date findings are
// merged into the highest-confidence representative with boosted confidence.
type Consolidator struct{}

// NewConsolidator creates a consolidator
func NewConsolidator() *Consolidator {
	return &Consolidator{}
}

// Consolidate merges same-date findings and sorts the result by descending
// confidence
func (c *Consolidator) Consolidate(anomalies []anomaly.CostAnomaly) []anomaly.CostAnomaly {
	if len(anomalies) == 0 {
		return nil
	}

	byDate := make(map[string][]anomaly.CostAnomaly)
	var order []string
	for _, a := range anomalies {
		key := a.AnomalyDate.Format("2006-01-02")
		if _, seen := byDate[key]; !seen {
			order = append(order, key)
		}
		byDate[key] = append(byDate[key], a)
	}

	consolidated := make([]anomaly.CostAnomaly, 0, len(order))
	for _, key := range order {
		consolidated = append(consolidated, mergeFindings(byDate[key]))
	}

	sort.SliceStable(consolidated, func(i, j int) bool {
		if consolidated[i].Confidence != consolidated[j].Confidence {
			return consolidated[i].Confidence > consolidated[j].Confidence
		}
		return consolidated[i].AnomalyDate.Before(consolidated[j].AnomalyDate)
	})

	return consolidated
}

// mergeFindings reduces same-date findings to a single representative. A lone
// finding passes through unchanged.
func mergeFindings(findings []anomaly.CostAnomaly) anomaly.CostAnomaly {
	if len(findings) == 1 {
		return findings[0]
	}

	best := findings[0]
	for _, f := range findings[1:] {
		if f.Confidence > best.Confidence {
			best = f
		}
	}

	methods := make([]string, len(findings))
	scoreSum := 0.0
	for i, f := range findings {
		methods[i] = f.DetectionMethod
		scoreSum += f.AnomalyScore
	}

	agreement := len(findings)
	confidence := best.Confidence + consolidationConfidenceStep*float64(agreement-1)
	if confidence > consolidationConfidenceCap {
		confidence = consolidationConfidenceCap
	}

	best.Title = fmt.Sprintf("Cost anomaly confirmed by %d detection methods", agreement)
	best.Description = fmt.Sprintf(
		"Multiple independent algorithms (%s) flagged %s: actual cost $%.2f against an expected $%.2f.",
		strings.Join(methods, ", "), best.AnomalyDate.Format("2006-01-02"), best.ActualCost, best.ExpectedCost)
	best.DetectionMethod = multiAlgorithmMethod
	best.Confidence = confidence
	best.AnomalyScore = clamp01(scoreSum / float64(agreement))

	return best
}
