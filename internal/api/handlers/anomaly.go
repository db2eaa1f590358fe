package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/pratik-mahalle/costlens/internal/api/dto"
	"github.com/pratik-mahalle/costlens/internal/api/middleware"
	"github.com/pratik-mahalle/costlens/internal/detector"
	"github.com/pratik-mahalle/costlens/internal/pkg/errors"
	"github.com/pratik-mahalle/costlens/internal/pkg/logger"
	"github.com/pratik-mahalle/costlens/internal/pkg/utils"
	"github.com/pratik-mahalle/costlens/internal/pkg/validator"
)

// AnomalyHandler serves anomaly detection requests
type AnomalyHandler struct {
	engine          *detector.Engine
	maxObservations int
	logger          *logger.Logger
	validator       *validator.Validator
}

// NewAnomalyHandler creates an anomaly handler
func NewAnomalyHandler(engine *detector.Engine, maxObservations int, log *logger.Logger, val *validator.Validator) *AnomalyHandler {
	return &AnomalyHandler{
		engine:          engine,
		maxObservations: maxObservations,
		logger:          log,
		validator:       val,
	}
}

// Detect runs anomaly detection over a submitted cost series
// @Summary Detect cost anomalies
// @Description Analyze a daily cost series with multiple detection algorithms and return a consolidated anomaly list
// @Tags Anomalies
// @Accept json
// @Produce json
// @Param request body dto.DetectRequest true "Cost series and optional evaluation window"
// @Success 200 {object} utils.SuccessResponse{data=dto.DetectResponse} "Consolidated anomalies"
// @Failure 400 {object} utils.ErrorResponse "Invalid request or validation error"
// @Failure 500 {object} utils.ErrorResponse "Internal server error"
// @Router /anomalies/detect [post]
func (h *AnomalyHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var req dto.DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if errs := h.validator.Validate(req); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return
	}

	if h.maxObservations > 0 && len(req.Observations) > h.maxObservations {
		utils.WriteError(w, errors.BadRequest(
			fmt.Sprintf("Series too long: %d observations, maximum is %d", len(req.Observations), h.maxObservations)))
		return
	}

	series, err := req.Series()
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid observation date"))
		return
	}

	windowStart, windowEnd, err := req.Window()
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid window bounds"))
		return
	}

	anomalies, err := h.engine.Detect(r.Context(), series, windowStart, windowEnd)
	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			utils.WriteError(w, errors.Canceled(err))
			return
		}
		utils.WriteError(w, errors.BadRequest(err.Error()))
		return
	}

	middleware.AddLogField(r, "anomalies", len(anomalies))

	utils.WriteSuccess(w, http.StatusOK, dto.NewDetectResponse(anomalies))
}
