// Package services implements the dashboard's business logic on top of the
// warehouse, the report repository and the generation boundary.
package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/fabpulse/fabpulse-engine/pkg/models"
	"github.com/fabpulse/fabpulse-engine/pkg/roles"
	"github.com/fabpulse/fabpulse-engine/pkg/warehouse"
)

// Status strings for degraded-but-successful lot status responses. These are
// normal outcomes, not errors: the dashboard renders an empty view with an
// explanatory badge.
const (
	StatusNoColumns   = "NO_COLUMNS"
	StatusNoLotColumn = "NO_LOT_COLUMN"
)

// LotStatusResult is the outcome of one lot-status aggregation.
type LotStatusResult struct {
	Lots      []models.LotAggregate
	TotalLots int
	Status    string // empty on a normal result
	ColumnMap models.ColumnMap
}

// LotStatusService aggregates per-LOT quality data for a process table.
type LotStatusService interface {
	GetLotStatus(ctx context.Context, table string, period warehouse.Period, includeAll bool) (*LotStatusResult, error)

	// ListTables returns the process tables available in the warehouse.
	ListTables(ctx context.Context) ([]string, error)
}

type lotStatusService struct {
	store  warehouse.Store
	logger *zap.Logger
}

// NewLotStatusService creates a new LotStatusService.
func NewLotStatusService(store warehouse.Store, logger *zap.Logger) LotStatusService {
	return &lotStatusService{
		store:  store,
		logger: logger.Named("lot_status"),
	}
}

var _ LotStatusService = (*lotStatusService)(nil)

// GetLotStatus introspects the table, infers column roles and aggregates per
// LOT. A table without columns or without a recognizable LOT column yields an
// empty result with a status string; only database failures return an error.
func (s *lotStatusService) GetLotStatus(ctx context.Context, table string, period warehouse.Period, includeAll bool) (*LotStatusResult, error) {
	columns, err := s.store.ListColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		s.logger.Warn("Table has no columns", zap.String("table", table))
		return &LotStatusResult{
			Status:    StatusNoColumns,
			ColumnMap: models.ColumnMap{Table: table},
		}, nil
	}

	colMap := roles.Infer(table, columns)
	if !colMap.HasLot() {
		s.logger.Info("No lot column identified", zap.String("table", table))
		return &LotStatusResult{
			Status:    StatusNoLotColumn,
			ColumnMap: colMap,
		}, nil
	}

	lots, err := s.store.AggregateByLot(ctx, colMap, period, warehouse.AggregateOptions{
		IncludeAll: includeAll,
	})
	if err != nil {
		return nil, err
	}

	return &LotStatusResult{
		Lots:      lots,
		TotalLots: len(lots),
		ColumnMap: colMap,
	}, nil
}

func (s *lotStatusService) ListTables(ctx context.Context) ([]string, error) {
	return s.store.ListTables(ctx)
}
