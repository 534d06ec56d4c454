package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/fabpulse/fabpulse-engine/pkg/services"
	"github.com/fabpulse/fabpulse-engine/pkg/warehouse"
)

// OverviewHandler serves the cross-table dashboard overview.
type OverviewHandler struct {
	overviewService services.OverviewService
	logger          *zap.Logger
}

// NewOverviewHandler creates a new overview handler.
func NewOverviewHandler(overviewService services.OverviewService, logger *zap.Logger) *OverviewHandler {
	return &OverviewHandler{
		overviewService: overviewService,
		logger:          logger,
	}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *OverviewHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dashboard/overview", h.Overview)
}

// Overview handles GET /api/dashboard/overview
func (h *OverviewHandler) Overview(w http.ResponseWriter, r *http.Request) {
	period, err := warehouse.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_period", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	overviews, err := h.overviewService.GetOverview(r.Context(), period)
	if err != nil {
		h.logger.Error("Failed to build overview", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "overview_failed", "internal error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: map[string]any{
		"tables": overviews,
		"total":  len(overviews),
	}}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
