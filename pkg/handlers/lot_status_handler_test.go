package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fabpulse/fabpulse-engine/pkg/models"
	"github.com/fabpulse/fabpulse-engine/pkg/services"
	"github.com/fabpulse/fabpulse-engine/pkg/warehouse"
)

func newLotStatusMux(svc *mockLotStatusService) *http.ServeMux {
	mux := http.NewServeMux()
	NewLotStatusHandler(svc, "simulation_results", "test", zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (ApiResponse, map[string]any) {
	t.Helper()
	var envelope ApiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	data, _ := envelope.Data.(map[string]any)
	return envelope, data
}

func TestLotStatus_DefaultsAndSuccess(t *testing.T) {
	svc := &mockLotStatusService{
		GetLotStatusFunc: func(ctx context.Context, table string, period warehouse.Period, includeAll bool) (*services.LotStatusResult, error) {
			return &services.LotStatusResult{
				Lots: []models.LotAggregate{
					{LotID: "1001", PassFailResult: "1", RecordCount: 2},
				},
				TotalLots: 1,
				ColumnMap: models.ColumnMap{Table: table, LotCol: "lot_id"},
			}, nil
		},
	}
	mux := newLotStatusMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/lot-status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "simulation_results", svc.LastTable)
	assert.Equal(t, warehouse.PeriodDefault, svc.LastPeriod)
	assert.False(t, svc.LastIncludeAll)

	envelope, data := decodeEnvelope(t, rec)
	assert.True(t, envelope.Success)
	assert.EqualValues(t, 1, data["total_lots"])
	// Column map only ships when debug is requested.
	assert.NotContains(t, data, "column_map")
}

func TestLotStatus_QueryParameters(t *testing.T) {
	svc := &mockLotStatusService{
		GetLotStatusFunc: func(ctx context.Context, table string, period warehouse.Period, includeAll bool) (*services.LotStatusResult, error) {
			return &services.LotStatusResult{
				ColumnMap: models.ColumnMap{Table: table, LotCol: "lot_no"},
			}, nil
		},
	}
	mux := newLotStatusMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/dashboard/lot-status?table=coating_line&period=week&all=1&debug=1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "coating_line", svc.LastTable)
	assert.Equal(t, warehouse.PeriodWeek, svc.LastPeriod)
	assert.True(t, svc.LastIncludeAll)

	_, data := decodeEnvelope(t, rec)
	assert.Contains(t, data, "column_map")
	// Empty result still serializes lots as an array, not null.
	assert.Equal(t, []any{}, data["lots"])
}

func TestLotStatus_Validation(t *testing.T) {
	svc := &mockLotStatusService{
		GetLotStatusFunc: func(ctx context.Context, table string, period warehouse.Period, includeAll bool) (*services.LotStatusResult, error) {
			t.Fatal("service must not be called on invalid input")
			return nil, nil
		},
	}
	mux := newLotStatusMux(svc)

	tests := []struct {
		name      string
		url       string
		wantError string
	}{
		{"unsafe table name", "/api/dashboard/lot-status?table=lots%3Bdrop", "invalid_table"},
		{"injection in table", "/api/dashboard/lot-status?table=x%27%20OR%20%271%27%3D%271", "invalid_table"},
		{"bad period", "/api/dashboard/lot-status?period=year", "invalid_period"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			envelope, _ := decodeEnvelope(t, rec)
			assert.False(t, envelope.Success)
			assert.Equal(t, tt.wantError, envelope.Error)
		})
	}
}

func TestLotStatus_DegradedStatus(t *testing.T) {
	svc := &mockLotStatusService{
		GetLotStatusFunc: func(ctx context.Context, table string, period warehouse.Period, includeAll bool) (*services.LotStatusResult, error) {
			return &services.LotStatusResult{
				Status:    services.StatusNoLotColumn,
				ColumnMap: models.ColumnMap{Table: table},
			}, nil
		},
	}
	mux := newLotStatusMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/lot-status", nil))

	// Degraded outcomes are successful responses with a status badge.
	assert.Equal(t, http.StatusOK, rec.Code)
	envelope, data := decodeEnvelope(t, rec)
	assert.True(t, envelope.Success)
	assert.Equal(t, services.StatusNoLotColumn, data["status"])
}

func TestLotStatus_ServiceError(t *testing.T) {
	svc := &mockLotStatusService{
		GetLotStatusFunc: func(ctx context.Context, table string, period warehouse.Period, includeAll bool) (*services.LotStatusResult, error) {
			return nil, errors.New("warehouse down")
		},
	}
	mux := newLotStatusMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/lot-status", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	envelope, _ := decodeEnvelope(t, rec)
	assert.False(t, envelope.Success)
	assert.Equal(t, "lot_status_failed", envelope.Error)
	// Non-local environments never echo database errors.
	assert.Equal(t, "internal error", envelope.Message)
}

func TestTables(t *testing.T) {
	svc := &mockLotStatusService{
		GetLotStatusFunc: func(ctx context.Context, table string, period warehouse.Period, includeAll bool) (*services.LotStatusResult, error) {
			return nil, nil
		},
		ListTablesFunc: func(ctx context.Context) ([]string, error) {
			return []string{"simulation_results", "coating_line"}, nil
		},
	}
	mux := newLotStatusMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/tables", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope, data := decodeEnvelope(t, rec)
	assert.True(t, envelope.Success)
	assert.EqualValues(t, 2, data["total"])
	assert.Equal(t, []any{"simulation_results", "coating_line"}, data["tables"])
}
