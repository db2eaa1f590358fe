package dto

import (
	"time"

	"github.com/pratik-mahalle/costlens/internal/domain/anomaly"
	"github.com/pratik-mahalle/costlens/internal/domain/costseries"
)

// DateFormat is the wire format for calendar dates
const DateFormat = "2006-01-02"

// ObservationDTO represents one day of spend in a detection request
type ObservationDTO struct {
	Date         string             `json:"date" validate:"required,datetime=2006-01-02"`
	DailyCost    float64            `json:"daily_cost" validate:"gte=0"`
	ServiceCosts map[string]float64 `json:"service_costs,omitempty"`
}

// DetectRequest represents an anomaly detection request
type DetectRequest struct {
	Observations []ObservationDTO `json:"observations" validate:"required,min=1,dive"`
	WindowStart  string           `json:"window_start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	WindowEnd    string           `json:"window_end,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Series converts the request observations to the domain representation.
// Dates are interpreted as UTC midnights.
func (r DetectRequest) Series() ([]costseries.Observation, error) {
	observations := make([]costseries.Observation, len(r.Observations))
	for i, o := range r.Observations {
		date, err := time.ParseInLocation(DateFormat, o.Date, time.UTC)
		if err != nil {
			return nil, err
		}
		observations[i] = costseries.Observation{
			Date:         date,
			DailyCost:    o.DailyCost,
			ServiceCosts: o.ServiceCosts,
		}
	}
	return observations, nil
}

// Window returns the evaluation window bounds, zero when unset
func (r DetectRequest) Window() (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if r.WindowStart != "" {
		if start, err = time.ParseInLocation(DateFormat, r.WindowStart, time.UTC); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if r.WindowEnd != "" {
		if end, err = time.ParseInLocation(DateFormat, r.WindowEnd, time.UTC); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

// AnomalyDTO represents a detected cost anomaly in API responses
type AnomalyDTO struct {
	ID                  string    `json:"id"`
	AnomalyDate         string    `json:"anomaly_date"`
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

// DetectResponse represents an anomaly detection result
type DetectResponse struct {
	Anomalies []AnomalyDTO `json:"anomalies"`
	Count     int          `json:"count"`
}

// FromAnomaly maps a domain anomaly to its API representation
func FromAnomaly(a anomaly.CostAnomaly) AnomalyDTO {
	return AnomalyDTO{
		ID:                  a.ID,
		AnomalyDate:         a.AnomalyDate.Format(DateFormat),
		DetectedAt:          a.DetectedAt,
		AnomalyType:         a.AnomalyType,
		Severity:            a.Severity,
		Title:               a.Title,
		Description:         a.Description,
		ExpectedCost:        a.ExpectedCost,
		ActualCost:          a.ActualCost,
		CostDifference:      a.CostDifference,
		PercentageDeviation: a.PercentageDeviation,
		AnomalyScore:        a.AnomalyScore,
		DetectionMethod:     a.DetectionMethod,
		Confidence:          a.Confidence,
		AffectedServices:    a.AffectedServices,
		PossibleCauses:      a.PossibleCauses,
		ForecastedRange:     a.ForecastedRange,
		SeasonalComponent:   a.SeasonalComponent,
		TrendComponent:      a.TrendComponent,
	}
}

// NewDetectResponse maps a consolidated anomaly list to the response shape
func NewDetectResponse(anomalies []anomaly.CostAnomaly) DetectResponse {
	dtos := make([]AnomalyDTO, len(anomalies))
	for i, a := range anomalies {
		dtos[i] = FromAnomaly(a)
	}
	return DetectResponse{Anomalies: dtos, Count: len(dtos)}
}
