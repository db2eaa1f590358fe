package detector

import (
	"strings"
	"testing"

	"github.com/pratik-mahalle/costlens/internal/domain/anomaly"
	"github.com/pratik-mahalle/costlens/internal/testutil"
)

func TestForecastDetector_MinObservations(t *testing.T) {
	d := NewForecastDetector()
	series := testutil.Series(testutil.SpikedCosts(29, 100, map[int]float64{28: 900}))

	got := d.Detect(series, testDetectedAt)
	if len(got) != 0 {
		t.Errorf("Detect() below minimum returned %d anomalies, want 0", len(got))
	}
}

func TestForecastDetector_FlatSeries(t *testing.T) {
	d := NewForecastDetector()
	series := testutil.Series(testutil.FlatCosts(45, 100))

	got := d.Detect(series, testDetectedAt)
	if len(got) != 0 {
		t.Errorf("Detect() on flat series returned %d anomalies, want 0", len(got))
	}
}

func TestForecastDetector_SpikeOutsideBand(t *testing.T) {
	d := NewForecastDetector()
	costs := testutil.AlternatingCosts(40, 100, 5)
	costs[39] = 300
	series := testutil.Series(costs)

	got := d.Detect(series, testDetectedAt)
	if len(got) != 1 {
		t.Fatalf("Detect() returned %d anomalies, want 1", len(got))
	}

	a := got[0]
	if !a.AnomalyDate.Equal(testutil.Day(39)) {
		t.Errorf("AnomalyDate = %v, want %v", a.AnomalyDate, testutil.Day(39))
	}
	if a.AnomalyType != anomaly.TypeSpikeCost {
		t.Errorf("AnomalyType = %s, want %s", a.AnomalyType, anomaly.TypeSpikeCost)
	}
	if a.Severity != anomaly.SeverityHigh {
		t.Errorf("Severity = %s, want %s", a.Severity, anomaly.SeverityHigh)
	}
	if a.Confidence != 0.92 {
		t.Errorf("Confidence = %v, want 0.92", a.Confidence)
	}
	if a.AnomalyScore != 1 {
		t.Errorf("AnomalyScore = %v, want 1", a.AnomalyScore)
	}
	if a.ExpectedCost <= 95 || a.ExpectedCost >= 105 {
		t.Errorf("ExpectedCost = %v, want near the 100 baseline", a.ExpectedCost)
	}
	if !strings.HasPrefix(a.ForecastedRange, "$") || !strings.Contains(a.ForecastedRange, " - $") {
		t.Errorf("ForecastedRange = %q, want \"$low - $high\" format", a.ForecastedRange)
	}
}

func TestForecastDetector_WeeklyPatternInsideBand(t *testing.T) {
	// A strong weekly pattern inflates the rolling stddev enough that the
	// recurring peaks stay inside the confidence band
	d := NewForecastDetector()
	series := testutil.Series(testutil.WeeklyCosts(35, 100, 200))

	got := d.Detect(series, testDetectedAt)
	if len(got) != 0 {
		t.Errorf("Detect() on weekly pattern returned %d anomalies, want 0", len(got))
	}
}

func TestForecastDetector_DropBelowBand(t *testing.T) {
	d := NewForecastDetector()
	costs := testutil.AlternatingCosts(40, 100, 5)
	costs[35] = 5
	series := testutil.Series(costs)

	got := d.Detect(series, testDetectedAt)
	if len(got) == 0 {
		t.Fatal("Detect() returned no anomalies, want the collapsed day flagged")
	}

	var found bool
	for _, a := range got {
		if a.AnomalyDate.Equal(testutil.Day(35)) {
			found = true
			if a.AnomalyType != anomaly.TypeUnexpectedDecrease {
				t.Errorf("AnomalyType = %s, want %s", a.AnomalyType, anomaly.TypeUnexpectedDecrease)
			}
			if a.CostDifference >= 0 {
				t.Errorf("CostDifference = %v, want negative", a.CostDifference)
			}
		}
	}
	if !found {
		t.Error("day 35 not flagged")
	}
}
