package anomaly

import "time"

// CostAnomaly represents a detected cost anomaly for a single day
type CostAnomaly struct {
	ID                  string    `json:"id"`
	AnomalyDate         time.Time `json:"anomaly_date"`
	DetectedAt          time.Time `json:"detected_at"`
	AnomalyType         string    `json:"anomaly_type"`
	Severity            string    `json:"severity"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	ExpectedCost        float64   `json:"expected_cost"`
	ActualCost          float64   `json:"actual_cost"`
	CostDifference      float64   `json:"cost_difference"`
	PercentageDeviation float64   `json:"percentage_deviation"`
	AnomalyScore        float64   `json:"anomaly_score"`
	DetectionMethod     string    `json:"detection_method"`
	Confidence          float64   `json:"confidence"`
	AffectedServices    []string  `json:"affected_services,omitempty"`
	PossibleCauses      []string  `json:"possible_causes,omitempty"`
	ForecastedRange     string    `json:"forecasted_range,omitempty"`
	SeasonalComponent   float64   `json:"seasonal_component,omitempty"`
	TrendComponent      float64   `json:"trend_component,omitempty"`
}

// Anomaly types
const (
	TypeSpikeCost          = "SpikeCost"
	TypeUnexpectedIncrease = "UnexpectedIncrease"
	TypeUnexpectedDecrease = "UnexpectedDecrease"
	TypeSeasonalDeviation  = "SeasonalDeviation"
)

// Severity levels
const (
	SeverityMedium = "Medium"
	SeverityHigh   = "High"
)
