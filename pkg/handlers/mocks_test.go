package handlers

import (
	"context"

	"github.com/fabpulse/fabpulse-engine/pkg/models"
	"github.com/fabpulse/fabpulse-engine/pkg/services"
	"github.com/fabpulse/fabpulse-engine/pkg/warehouse"
)

// mockLotStatusService fakes the lot status service behind the handlers.
type mockLotStatusService struct {
	GetLotStatusFunc func(ctx context.Context, table string, period warehouse.Period, includeAll bool) (*services.LotStatusResult, error)
	ListTablesFunc   func(ctx context.Context) ([]string, error)

	LastTable      string
	LastPeriod     warehouse.Period
	LastIncludeAll bool
}

func (m *mockLotStatusService) GetLotStatus(ctx context.Context, table string, period warehouse.Period, includeAll bool) (*services.LotStatusResult, error) {
	m.LastTable = table
	m.LastPeriod = period
	m.LastIncludeAll = includeAll
	return m.GetLotStatusFunc(ctx, table, period, includeAll)
}

func (m *mockLotStatusService) ListTables(ctx context.Context) ([]string, error) {
	if m.ListTablesFunc != nil {
		return m.ListTablesFunc(ctx)
	}
	return nil, nil
}

var _ services.LotStatusService = (*mockLotStatusService)(nil)

// mockDefectReportService fakes the report service behind the handlers.
type mockDefectReportService struct {
	GetReportFunc   func(ctx context.Context, lotID string) (*models.LotDefectReport, error)
	GetOrCreateFunc func(ctx context.Context, lotID string, lot models.LotAggregate, language string) (*services.DefectReportResult, error)

	LastLotID    string
	LastLanguage string
}

func (m *mockDefectReportService) GetReport(ctx context.Context, lotID string) (*models.LotDefectReport, error) {
	m.LastLotID = lotID
	return m.GetReportFunc(ctx, lotID)
}

func (m *mockDefectReportService) GetOrCreate(ctx context.Context, lotID string, lot models.LotAggregate, language string) (*services.DefectReportResult, error) {
	m.LastLotID = lotID
	m.LastLanguage = language
	return m.GetOrCreateFunc(ctx, lotID, lot, language)
}

var _ services.DefectReportService = (*mockDefectReportService)(nil)

// mockOverviewService fakes the overview fan-out.
type mockOverviewService struct {
	GetOverviewFunc func(ctx context.Context, period warehouse.Period) ([]services.TableOverview, error)
}

func (m *mockOverviewService) GetOverview(ctx context.Context, period warehouse.Period) ([]services.TableOverview, error) {
	return m.GetOverviewFunc(ctx, period)
}

var _ services.OverviewService = (*mockOverviewService)(nil)
