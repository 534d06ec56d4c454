package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fabpulse/fabpulse-engine/pkg/models"
	"github.com/fabpulse/fabpulse-engine/pkg/warehouse"
)

func simulationColumns() []models.ColumnDescriptor {
	return []models.ColumnDescriptor{
		{Name: "lot_id", PrimitiveType: models.TypeString},
		{Name: "timestamp", PrimitiveType: models.TypeDate},
		{Name: "prediction", PrimitiveType: models.TypeNumeric},
		{Name: "humidity", PrimitiveType: models.TypeNumeric},
	}
}

func TestGetLotStatus_NoColumns(t *testing.T) {
	store := &mockStore{
		ListColumnsFunc: func(ctx context.Context, table string) ([]models.ColumnDescriptor, error) {
			return nil, nil
		},
	}
	svc := NewLotStatusService(store, zap.NewNop())

	result, err := svc.GetLotStatus(context.Background(), "missing_table", warehouse.PeriodDefault, false)
	require.NoError(t, err)
	assert.Equal(t, StatusNoColumns, result.Status)
	assert.Zero(t, result.TotalLots)
	assert.Empty(t, result.Lots)
	assert.Equal(t, "missing_table", result.ColumnMap.Table)
	assert.Zero(t, store.AggregateCalls)
}

func TestGetLotStatus_NoLotColumn(t *testing.T) {
	store := &mockStore{
		ListColumnsFunc: func(ctx context.Context, table string) ([]models.ColumnDescriptor, error) {
			return []models.ColumnDescriptor{
				{Name: "memo", PrimitiveType: models.TypeString},
				{Name: "humidity", PrimitiveType: models.TypeNumeric},
			}, nil
		},
	}
	svc := NewLotStatusService(store, zap.NewNop())

	result, err := svc.GetLotStatus(context.Background(), "notes", warehouse.PeriodDefault, false)
	require.NoError(t, err)
	assert.Equal(t, StatusNoLotColumn, result.Status)
	assert.Zero(t, store.AggregateCalls)
	// The inferred map is still returned for the debug view.
	assert.Equal(t, []string{"humidity"}, result.ColumnMap.NumericCols)
}

func TestGetLotStatus_Aggregates(t *testing.T) {
	lots := []models.LotAggregate{
		{LotID: "1001", PassFailResult: "1", RecordCount: 2},
		{LotID: "1002", PassFailResult: "불합격", RecordCount: 5},
	}
	store := &mockStore{
		ListColumnsFunc: func(ctx context.Context, table string) ([]models.ColumnDescriptor, error) {
			return simulationColumns(), nil
		},
		AggregateByLotFunc: func(ctx context.Context, colMap models.ColumnMap, period warehouse.Period, opts warehouse.AggregateOptions) ([]models.LotAggregate, error) {
			return lots, nil
		},
	}
	svc := NewLotStatusService(store, zap.NewNop())

	result, err := svc.GetLotStatus(context.Background(), "simulation_results", warehouse.PeriodWeek, true)
	require.NoError(t, err)
	assert.Empty(t, result.Status)
	assert.Equal(t, 2, result.TotalLots)
	assert.Equal(t, lots, result.Lots)
	assert.Equal(t, "lot_id", result.ColumnMap.LotCol)
	assert.Equal(t, "prediction", result.ColumnMap.ResultCol)
	assert.True(t, store.LastOptions.IncludeAll)
}

func TestGetLotStatus_PropagatesErrors(t *testing.T) {
	dbErr := errors.New("connection reset")

	store := &mockStore{
		ListColumnsFunc: func(ctx context.Context, table string) ([]models.ColumnDescriptor, error) {
			return nil, dbErr
		},
	}
	svc := NewLotStatusService(store, zap.NewNop())
	_, err := svc.GetLotStatus(context.Background(), "t", warehouse.PeriodDefault, false)
	assert.ErrorIs(t, err, dbErr)

	store = &mockStore{
		ListColumnsFunc: func(ctx context.Context, table string) ([]models.ColumnDescriptor, error) {
			return simulationColumns(), nil
		},
		AggregateByLotFunc: func(ctx context.Context, colMap models.ColumnMap, period warehouse.Period, opts warehouse.AggregateOptions) ([]models.LotAggregate, error) {
			return nil, dbErr
		},
	}
	svc = NewLotStatusService(store, zap.NewNop())
	_, err = svc.GetLotStatus(context.Background(), "t", warehouse.PeriodDefault, false)
	assert.ErrorIs(t, err, dbErr)
}

func TestListTables(t *testing.T) {
	store := &mockStore{
		ListTablesFunc: func(ctx context.Context) ([]string, error) {
			return []string{"simulation_results", "coating_line"}, nil
		},
	}
	svc := NewLotStatusService(store, zap.NewNop())

	tables, err := svc.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"simulation_results", "coating_line"}, tables)
}
