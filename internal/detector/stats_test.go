package detector

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{5}, 5},
		{"uniform", []float64{2, 2, 2, 2}, 2},
		{"mixed", []float64{1, 2, 3, 4}, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mean(tt.values); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("mean() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStdDev(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{5}, 0},
		{"no variance", []float64{3, 3, 3}, 0},
		{"sample", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 2.13808993},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stdDev(tt.values); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("stdDev() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"unsorted input untouched", []float64{9, 1, 5}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := median(tt.values); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("median() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMedianAbsDeviation(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"no spread", []float64{2, 2, 2}, 0},
		// median 2, deviations {1,1,0,0,0,1,6} -> median 1
		{"robust to outlier", []float64{1, 1, 2, 2, 2, 3, 8}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := medianAbsDeviation(tt.values); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("medianAbsDeviation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{3.7, 1},
	}

	for _, tt := range tests {
		if got := clamp01(tt.in); got != tt.want {
			t.Errorf("clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExpectedPathLength(t *testing.T) {
	if got := expectedPathLength(0); got != 0 {
		t.Errorf("expectedPathLength(0) = %v, want 0", got)
	}
	if got := expectedPathLength(1); got != 0 {
		t.Errorf("expectedPathLength(1) = %v, want 0", got)
	}

	// c(m) = 2(ln(m-1) + gamma) - 2(m-1)/m
	want := 2*(math.Log(255)+eulerMascheroni) - 2*255.0/256.0
	if got := expectedPathLength(256); math.Abs(got-want) > 1e-9 {
		t.Errorf("expectedPathLength(256) = %v, want %v", got, want)
	}

	// c(m) grows with m
	if expectedPathLength(16) >= expectedPathLength(256) {
		t.Error("expectedPathLength should grow with sample size")
	}
}
