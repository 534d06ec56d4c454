package services

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fabpulse/fabpulse-engine/pkg/models"
	"github.com/fabpulse/fabpulse-engine/pkg/warehouse"
)

// TableOverview summarizes one process table for the overview page.
type TableOverview struct {
	Table       string `json:"table"`
	TotalLots   int    `json:"total_lots"`
	FailingLots int    `json:"failing_lots"`
	Status      string `json:"status,omitempty"`
	Error       string `json:"error,omitempty"`
}

// OverviewService fans out lot-status aggregations over the configured
// process tables. Each table is independent; one table failing does not take
// down the overview.
type OverviewService interface {
	GetOverview(ctx context.Context, period warehouse.Period) ([]TableOverview, error)
}

type overviewService struct {
	lotStatus LotStatusService
	tables    []string
	logger    *zap.Logger
}

// NewOverviewService creates a new OverviewService over the given tables.
func NewOverviewService(lotStatus LotStatusService, tables []string, logger *zap.Logger) OverviewService {
	return &overviewService{
		lotStatus: lotStatus,
		tables:    tables,
		logger:    logger.Named("overview"),
	}
}

var _ OverviewService = (*overviewService)(nil)

// GetOverview aggregates every configured table concurrently. Goroutines
// write only their own result slot; partial failures surface per table.
func (s *overviewService) GetOverview(ctx context.Context, period warehouse.Period) ([]TableOverview, error) {
	results := make([]TableOverview, len(s.tables))

	g, gctx := errgroup.WithContext(ctx)
	for i, table := range s.tables {
		g.Go(func() error {
			results[i] = s.overviewFor(gctx, table, period)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (s *overviewService) overviewFor(ctx context.Context, table string, period warehouse.Period) TableOverview {
	overview := TableOverview{Table: table}

	result, err := s.lotStatus.GetLotStatus(ctx, table, period, true)
	if err != nil {
		s.logger.Error("Overview aggregation failed",
			zap.String("table", table),
			zap.Error(err))
		overview.Error = "aggregation failed"
		return overview
	}

	overview.Status = result.Status
	overview.TotalLots = result.TotalLots
	for _, lot := range result.Lots {
		if models.IsFailure(lot.PassFailResult) {
			overview.FailingLots++
		}
	}

	return overview
}
