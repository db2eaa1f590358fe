package detector

import (
	"context"
	"sync"
	"time"

	"github.com/pratik-mahalle/costlens/internal/domain/anomaly"
	"github.com/pratik-mahalle/costlens/internal/domain/costseries"
	"github.com/pratik-mahalle/costlens/internal/pkg/logger"
	"github.com/pratik-mahalle/costlens/internal/pkg/metrics"
)

// Config contains engine tuning. The seed makes isolation tree construction
// reproducible across runs.
type Config struct {
	Seed               int64
	IsolationTrees     int
	IsolationSubsample int
	IsolationMaxDepth  int
}

// DefaultConfig returns the standard engine tuning
func DefaultConfig() Config {
	return Config{
		Seed:               42,
		IsolationTrees:     100,
		IsolationSubsample: 256,
		IsolationMaxDepth:  10,
	}
}

// Engine runs the four detectors concurrently over a shared read-only series
// and consolidates their findings. It owns no persistent state; for a fixed
// seed and evaluation time the output is a pure function of the input series.
type Engine struct {
	detectors    []Detector
	consolidator *Consolidator
	logger       *logger.Logger
	now          func() time.Time
}

// NewEngine creates a detection engine with the standard four detectors
func NewEngine(cfg Config, log *logger.Logger) *Engine {
	return &Engine{
		detectors: []Detector{
			NewIsolationForestDetector(cfg),
			NewDensityClusterDetector(),
			NewForecastDetector(),
			NewSeasonalDetector(),
		},
		consolidator: NewConsolidator(),
		logger:       log,
		now:          time.Now,
	}
}

// WithClock overrides the evaluation timestamp source, for deterministic tests
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Detect analyzes the observation series and returns the consolidated anomaly
// list for the evaluation window. Detectors without enough data contribute an
// empty result. The context is honored between detector stages; on
// cancellation no partial results are returned.
func (e *Engine) Detect(ctx context.Context, observations []costseries.Observation, windowStart, windowEnd time.Time) ([]anomaly.CostAnomaly, error) {
	if len(observations) == 0 {
		return nil, nil
	}

	if err := costseries.Validate(observations); err != nil {
		metrics.RecordDetectionRun("invalid_input", len(observations))
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		metrics.RecordDetectionRun("canceled", len(observations))
		return nil, err
	}

	detectedAt := e.now()
	start := time.Now()

	// Fan out: each detector reads the shared series and writes only its own
	// result slot, so no synchronization beyond the join is needed.
	results := make([][]anomaly.CostAnomaly, len(e.detectors))
	var wg sync.WaitGroup
	for i, d := range e.detectors {
		wg.Add(1)
		go func(slot int, d Detector) {
			defer wg.Done()
			detectorStart := time.Now()
			results[slot] = d.Detect(observations, detectedAt)
			metrics.RecordDetectorDuration(d.Name(), time.Since(detectorStart))

			e.logger.WithFields(map[string]interface{}{
				"detector":     d.Name(),
				"observations": len(observations),
				"anomalies":    len(results[slot]),
				"duration_ms":  time.Since(detectorStart).Milliseconds(),
			}).Debug("Detector pass completed")
		}(i, d)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		metrics.RecordDetectionRun("canceled", len(observations))
		return nil, err
	}

	var combined []anomaly.CostAnomaly
	for _, r := range results {
		combined = append(combined, r...)
	}

	consolidated := e.consolidator.Consolidate(combined)
	consolidated = filterWindow(consolidated, windowStart, windowEnd)

	for _, a := range consolidated {
		metrics.RecordAnomaly(a.DetectionMethod, a.Severity)
	}
	metrics.RecordDetectionRun("ok", len(observations))

	e.logger.WithFields(map[string]interface{}{
		"observations": len(observations),
		"candidates":   len(combined),
		"anomalies":    len(consolidated),
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Info("Anomaly detection completed")

	return consolidated, nil
}

// filterWindow keeps anomalies whose date falls inside the evaluation window.
// Zero bounds leave that side open; detection always uses the full series for
// statistical context.
func filterWindow(anomalies []anomaly.CostAnomaly, windowStart, windowEnd time.Time) []anomaly.CostAnomaly {
	if windowStart.IsZero() && windowEnd.IsZero() {
		return anomalies
	}

	filtered := make([]anomaly.CostAnomaly, 0, len(anomalies))
	for _, a := range anomalies {
		if !windowStart.IsZero() && a.AnomalyDate.Before(windowStart) {
			continue
		}
		if !windowEnd.IsZero() && a.AnomalyDate.After(windowEnd) {
			continue
		}
		filtered = append(filtered, a)
	}
	return filtered
}
