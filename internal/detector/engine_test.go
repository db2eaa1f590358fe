package detector

import (
	"context"
	"testing"
	"time"

	"github.com/pratik-mahalle/costlens/internal/domain/anomaly"
	"github.com/pratik-mahalle/costlens/internal/domain/costseries"
	"github.com/pratik-mahalle/costlens/internal/pkg/logger"
	"github.com/pratik-mahalle/costlens/internal/testutil"
)

func newTestEngine() *Engine {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	return NewEngine(DefaultConfig(), log).WithClock(func() time.Time { return testDetectedAt })
}

func TestEngine_SpikeConfirmedByMultipleDetectors(t *testing.T) {
	e := newTestEngine()
	series := testutil.Series(testutil.SpikedCosts(40, 100, map[int]float64{25: 500}))

	got, err := e.Detect(context.Background(), series, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(got) == 0 {
		t.Fatal("Detect() returned no anomalies, want the spike day flagged")
	}

	top := got[0]
	if !top.AnomalyDate.Equal(testutil.Day(25)) {
		t.Errorf("top anomaly date = %v, want %v", top.AnomalyDate, testutil.Day(25))
	}
	if top.DetectionMethod != "Multi-algorithm" {
		t.Errorf("top DetectionMethod = %s, want Multi-algorithm", top.DetectionMethod)
	}
	if top.Confidence != 0.99 {
		t.Errorf("top Confidence = %v, want 0.99", top.Confidence)
	}
	if top.AnomalyType != anomaly.TypeSpikeCost {
		t.Errorf("top AnomalyType = %s, want %s", top.AnomalyType, anomaly.TypeSpikeCost)
	}
	if top.Severity != anomaly.SeverityHigh {
		t.Errorf("top Severity = %s, want %s", top.Severity, anomaly.SeverityHigh)
	}
	if !top.DetectedAt.Equal(testDetectedAt) {
		t.Errorf("DetectedAt = %v, want injected clock %v", top.DetectedAt, testDetectedAt)
	}

	seen := make(map[string]bool)
	for i, a := range got {
		key := a.AnomalyDate.Format("2006-01-02")
		if seen[key] {
			t.Errorf("duplicate anomaly date %s in consolidated output", key)
		}
		seen[key] = true

		if a.AnomalyScore < 0 || a.AnomalyScore > 1 {
			t.Errorf("AnomalyScore %v out of [0,1] for %s", a.AnomalyScore, key)
		}
		if a.Confidence < 0 || a.Confidence > 1 {
			t.Errorf("Confidence %v out of [0,1] for %s", a.Confidence, key)
		}
		if i > 0 && a.Confidence > got[i-1].Confidence {
			t.Errorf("output not sorted by descending confidence at index %d", i)
		}
		if a.ID == "" {
			t.Errorf("anomaly %s has empty ID", key)
		}
	}
}

func TestEngine_ShortSeriesIsQuiet(t *testing.T) {
	e := newTestEngine()
	series := testutil.Series(testutil.FlatCosts(10, 100))

	got, err := e.Detect(context.Background(), series, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Detect() on short series returned %d anomalies, want 0", len(got))
	}
}

func TestEngine_EmptyInput(t *testing.T) {
	e := newTestEngine()

	got, err := e.Detect(context.Background(), nil, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if got != nil {
		t.Errorf("Detect() on empty input = %v, want nil", got)
	}
}

func TestEngine_CanceledContext(t *testing.T) {
	e := newTestEngine()
	series := testutil.Series(testutil.SpikedCosts(40, 100, map[int]float64{25: 500}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := e.Detect(ctx, series, time.Time{}, time.Time{})
	if err == nil {
		t.Fatal("Detect() with canceled context returned nil error")
	}
	if got != nil {
		t.Errorf("Detect() with canceled context returned partial results: %v", got)
	}
}

func TestEngine_RejectsInvalidSeries(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name   string
		mutate func([]costseries.Observation)
	}{
		{
			"negative cost",
			func(obs []costseries.Observation) { obs[3].DailyCost = -5 },
		},
		{
			"non-increasing dates",
			func(obs []costseries.Observation) { obs[8].Date = obs[7].Date },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := testutil.Series(testutil.FlatCosts(20, 100))
			tt.mutate(series)

			got, err := e.Detect(context.Background(), series, time.Time{}, time.Time{})
			if err == nil {
				t.Fatal("Detect() returned nil error for invalid series")
			}
			if got != nil {
				t.Errorf("Detect() returned results for invalid series: %v", got)
			}
		})
	}
}

func TestEngine_WindowFiltersOutputNotContext(t *testing.T) {
	e := newTestEngine()
	series := testutil.Series(testutil.SpikedCosts(40, 100, map[int]float64{25: 500}))

	got, err := e.Detect(context.Background(), series, testutil.Day(25), testutil.Day(25))
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Detect() with one-day window returned %d anomalies, want 1", len(got))
	}

	a := got[0]
	if !a.AnomalyDate.Equal(testutil.Day(25)) {
		t.Errorf("AnomalyDate = %v, want %v", a.AnomalyDate, testutil.Day(25))
	}
	// Detectors still saw the full series, so the finding keeps its
	// multi-detector confidence
	if a.DetectionMethod != "Multi-algorithm" {
		t.Errorf("DetectionMethod = %s, want Multi-algorithm", a.DetectionMethod)
	}
	if a.Confidence != 0.99 {
		t.Errorf("Confidence = %v, want 0.99", a.Confidence)
	}
}

func TestEngine_OpenWindowReturnsEverything(t *testing.T) {
	e := newTestEngine()
	series := testutil.Series(testutil.SpikedCosts(40, 100, map[int]float64{25: 500}))

	full, err := e.Detect(context.Background(), series, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	bounded, err := e.Detect(context.Background(), series, testutil.Day(0), testutil.Day(39))
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(full) != len(bounded) {
		t.Errorf("open window returned %d anomalies, full-range window %d; want equal",
			len(full), len(bounded))
	}
}

func TestEngine_Deterministic(t *testing.T) {
	series := testutil.Series(testutil.SpikedCosts(60, 100, map[int]float64{20: 450, 41: 30}))

	first, err := newTestEngine().Detect(context.Background(), series, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	second, err := newTestEngine().Detect(context.Background(), series, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("runs disagree on anomaly count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].AnomalyDate.Equal(second[i].AnomalyDate) {
			t.Errorf("anomaly %d: dates differ between runs", i)
		}
		if first[i].AnomalyScore != second[i].AnomalyScore {
			t.Errorf("anomaly %d: scores differ between runs: %v vs %v",
				i, first[i].AnomalyScore, second[i].AnomalyScore)
		}
		if first[i].Confidence != second[i].Confidence {
			t.Errorf("anomaly %d: confidences differ between runs", i)
		}
	}
}
