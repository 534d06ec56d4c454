package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fabpulse/fabpulse-engine/pkg/llm"
	"github.com/fabpulse/fabpulse-engine/pkg/models"
	"github.com/fabpulse/fabpulse-engine/pkg/services"
)

// GenerateReportRequest is the body for POST /api/dashboard/lot-defect-report
type GenerateReportRequest struct {
	LotID    string              `json:"lot_id"`
	LotData  models.LotAggregate `json:"lot_data"`
	Language string              `json:"language,omitempty"`
}

// DefectReportResponse for both GET and POST report endpoints
type DefectReportResponse struct {
	LotID         string    `json:"lot_id"`
	ReportContent string    `json:"report_content"`
	FromCache     bool      `json:"from_cache"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DefectReportHandler serves cached defect reports and triggers generation.
type DefectReportHandler struct {
	reportService services.DefectReportService
	env           string
	logger        *zap.Logger
}

// NewDefectReportHandler creates a new defect report handler.
func NewDefectReportHandler(reportService services.DefectReportService, env string, logger *zap.Logger) *DefectReportHandler {
	return &DefectReportHandler{
		reportService: reportService,
		env:           env,
		logger:        logger,
	}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *DefectReportHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dashboard/lot-defect-report", h.GetReport)
	mux.HandleFunc("POST /api/dashboard/lot-defect-report", h.GenerateReport)
}

// GetReport handles GET /api/dashboard/lot-defect-report?lotId=...
// It only reads the cache. A missing report is a 404, never a trigger
// to generate one.
func (h *DefectReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	lotID := r.URL.Query().Get("lotId")
	if lotID == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_lot_id", "lotId query parameter is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	report, err := h.reportService.GetReport(r.Context(), lotID)
	if err != nil {
		h.logger.Error("Failed to load defect report",
			zap.String("lot_id", lotID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "report_lookup_failed", "internal error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if report == nil {
		if err := ErrorResponse(w, http.StatusNotFound, "report_not_found", "No report exists for this lot"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: DefectReportResponse{
		LotID:         report.LotID,
		ReportContent: report.ReportContent,
		FromCache:     true,
		CreatedAt:     report.CreatedAt,
		UpdatedAt:     report.UpdatedAt,
	}}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GenerateReport handles POST /api/dashboard/lot-defect-report
func (h *DefectReportHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_body", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.LotID == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_lot_id", "lot_id is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.Language != "" &&
		req.Language != models.ReportLanguageKorean &&
		req.Language != models.ReportLanguageEnglish {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_language", "language must be ko or en"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.reportService.GetOrCreate(r.Context(), req.LotID, req.LotData, req.Language)
	if err != nil {
		h.writeGenerationError(w, req.LotID, err)
		return
	}

	status := http.StatusOK
	if !result.FromCache {
		status = http.StatusCreated
	}
	if err := WriteJSON(w, status, ApiResponse{Success: true, Data: DefectReportResponse{
		LotID:         result.Report.LotID,
		ReportContent: result.Report.ReportContent,
		FromCache:     result.FromCache,
		CreatedAt:     result.Report.CreatedAt,
		UpdatedAt:     result.Report.UpdatedAt,
	}}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// writeGenerationError maps LLM error classes to HTTP statuses.
func (h *DefectReportHandler) writeGenerationError(w http.ResponseWriter, lotID string, err error) {
	h.logger.Error("Failed to generate defect report",
		zap.String("lot_id", lotID),
		zap.String("error_type", string(llm.GetErrorType(err))),
		zap.Error(err))

	status := http.StatusInternalServerError
	code := "generation_failed"

	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		switch llmErr.Type {
		case llm.ErrorTypeConfig:
			code = "generation_config_error"
		case llm.ErrorTypeQuota:
			status = http.StatusTooManyRequests
			code = "generation_rate_limited"
		case llm.ErrorTypeNetwork:
			status = http.StatusBadGateway
			code = "generation_unavailable"
		}
	}

	message := "Report generation failed"
	if h.env == "local" || h.env == "dev" {
		message = err.Error()
	}
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
