package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pratik-mahalle/costlens/internal/api/dto"
	"github.com/pratik-mahalle/costlens/internal/detector"
	"github.com/pratik-mahalle/costlens/internal/pkg/logger"
	"github.com/pratik-mahalle/costlens/internal/pkg/validator"
)

func newTestAnomalyHandler(maxObservations int) *AnomalyHandler {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	engine := detector.NewEngine(detector.DefaultConfig(), log)
	return NewAnomalyHandler(engine, maxObservations, log, validator.New())
}

func detectBody(days int, spikes map[int]float64) dto.DetectRequest {
	observations := make([]dto.ObservationDTO, days)
	for i := range observations {
		cost := 100.0
		if s, ok := spikes[i]; ok {
			cost = s
		}
		observations[i] = dto.ObservationDTO{
			Date:      fmt.Sprintf("2025-03-%02d", i+1),
			DailyCost: cost,
			ServiceCosts: map[string]float64{
				"Compute": cost * 0.7,
				"Storage": cost * 0.3,
			},
		}
	}
	return dto.DetectRequest{Observations: observations}
}

func TestAnomalyHandler_Detect(t *testing.T) {
	handler := newTestAnomalyHandler(1096)

	body, _ := json.Marshal(detectBody(30, map[int]float64{20: 600}))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/anomalies/detect", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.Detect(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v, body: %s",
			rr.Code, http.StatusOK, rr.Body.String())
	}

	var response struct {
		Success bool               `json:"success"`
		Data    dto.DetectResponse `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.Success {
		t.Error("response success = false, want true")
	}
	if response.Data.Count != len(response.Data.Anomalies) {
		t.Errorf("count = %d, want %d", response.Data.Count, len(response.Data.Anomalies))
	}
	if len(response.Data.Anomalies) == 0 {
		t.Fatal("no anomalies returned for a series with a clear spike")
	}
	if response.Data.Anomalies[0].AnomalyDate != "2025-03-21" {
		t.Errorf("top anomaly date = %s, want 2025-03-21", response.Data.Anomalies[0].AnomalyDate)
	}
}

func TestAnomalyHandler_Detect_BadInput(t *testing.T) {
	handler := newTestAnomalyHandler(1096)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "malformed json",
			body:           `{"observations": [`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty observations",
			body:           `{"observations": []}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative cost",
			body:           `{"observations": [{"date": "2025-03-01", "daily_cost": -5}]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad date format",
			body:           `{"observations": [{"date": "03/01/2025", "daily_cost": 100}]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad window bound",
			body:           `{"observations": [{"date": "2025-03-01", "daily_cost": 100}], "window_start": "not-a-date"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/anomalies/detect", bytes.NewReader([]byte(tt.body)))
			rr := httptest.NewRecorder()

			handler.Detect(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v, body: %s",
					rr.Code, tt.expectedStatus, rr.Body.String())
			}
		})
	}
}

func TestAnomalyHandler_Detect_SeriesTooLong(t *testing.T) {
	handler := newTestAnomalyHandler(20)

	body, _ := json.Marshal(detectBody(25, nil))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/anomalies/detect", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.Detect(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusBadRequest)
	}
}

func TestAnomalyHandler_Detect_NonIncreasingDates(t *testing.T) {
	handler := newTestAnomalyHandler(1096)

	reqBody := detectBody(20, nil)
	reqBody.Observations[5].Date = reqBody.Observations[4].Date

	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/anomalies/detect", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.Detect(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v, body: %s",
			rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}
