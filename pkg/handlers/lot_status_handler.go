package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/fabpulse/fabpulse-engine/pkg/models"
	"github.com/fabpulse/fabpulse-engine/pkg/services"
	enginesql "github.com/fabpulse/fabpulse-engine/pkg/sql"
	"github.com/fabpulse/fabpulse-engine/pkg/warehouse"
)

// LotStatusResponse for GET /api/dashboard/lot-status
type LotStatusResponse struct {
	Lots      []models.LotAggregate `json:"lots"`
	TotalLots int                   `json:"total_lots"`
	Status    string                `json:"status,omitempty"`
	ColumnMap *models.ColumnMap     `json:"column_map,omitempty"` // debug=1 only
}

// LotStatusHandler handles lot status and table listing requests.
type LotStatusHandler struct {
	lotStatusService services.LotStatusService
	defaultTable     string
	env              string
	logger           *zap.Logger
}

// NewLotStatusHandler creates a new lot status handler.
func NewLotStatusHandler(
	lotStatusService services.LotStatusService,
	defaultTable string,
	env string,
	logger *zap.Logger,
) *LotStatusHandler {
	return &LotStatusHandler{
		lotStatusService: lotStatusService,
		defaultTable:     defaultTable,
		env:              env,
		logger:           logger,
	}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *LotStatusHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dashboard/lot-status", h.LotStatus)
	mux.HandleFunc("GET /api/dashboard/tables", h.Tables)
}

// LotStatus handles GET /api/dashboard/lot-status
func (h *LotStatusHandler) LotStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	table := q.Get("table")
	if table == "" {
		table = h.defaultTable
	}
	if result := enginesql.CheckParameterForInjection("table", table); result != nil {
		h.logger.Warn("Injection pattern in table parameter",
			zap.String("fingerprint", result.Fingerprint))
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_table", "Invalid table name"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if !enginesql.IsSafeIdentifier(table) {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_table", "Invalid table name"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	period, err := warehouse.ParsePeriod(q.Get("period"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_period", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	includeAll := q.Get("all") == "1"
	debug := q.Get("debug") == "1"

	result, err := h.lotStatusService.GetLotStatus(r.Context(), table, period, includeAll)
	if err != nil {
		h.logger.Error("Failed to get lot status",
			zap.String("table", table),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "lot_status_failed", h.errorMessage(err)); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := LotStatusResponse{
		Lots:      result.Lots,
		TotalLots: result.TotalLots,
		Status:    result.Status,
	}
	if response.Lots == nil {
		response.Lots = []models.LotAggregate{}
	}
	if debug {
		response.ColumnMap = &result.ColumnMap
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Tables handles GET /api/dashboard/tables
func (h *LotStatusHandler) Tables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.lotStatusService.ListTables(r.Context())
	if err != nil {
		h.logger.Error("Failed to list tables", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_tables_failed", h.errorMessage(err)); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if tables == nil {
		tables = []string{}
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: map[string]any{
		"tables": tables,
		"total":  len(tables),
	}}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// errorMessage hides database internals outside local environments.
func (h *LotStatusHandler) errorMessage(err error) string {
	if h.env == "local" || h.env == "dev" {
		return err.Error()
	}
	return "internal error"
}
