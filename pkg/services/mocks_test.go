package services

import (
	"context"
	"sync"

	"github.com/fabpulse/fabpulse-engine/pkg/models"
	"github.com/fabpulse/fabpulse-engine/pkg/warehouse"
)

// mockStore is a configurable fake of the warehouse read surface.
type mockStore struct {
	ListTablesFunc     func(ctx context.Context) ([]string, error)
	ListColumnsFunc    func(ctx context.Context, table string) ([]models.ColumnDescriptor, error)
	AggregateByLotFunc func(ctx context.Context, colMap models.ColumnMap, period warehouse.Period, opts warehouse.AggregateOptions) ([]models.LotAggregate, error)

	AggregateCalls int
	LastColumnMap  models.ColumnMap
	LastOptions    warehouse.AggregateOptions
}

func (m *mockStore) ListTables(ctx context.Context) ([]string, error) {
	if m.ListTablesFunc != nil {
		return m.ListTablesFunc(ctx)
	}
	return nil, nil
}

func (m *mockStore) ListColumns(ctx context.Context, table string) ([]models.ColumnDescriptor, error) {
	if m.ListColumnsFunc != nil {
		return m.ListColumnsFunc(ctx, table)
	}
	return nil, nil
}

func (m *mockStore) AggregateByLot(ctx context.Context, colMap models.ColumnMap, period warehouse.Period, opts warehouse.AggregateOptions) ([]models.LotAggregate, error) {
	m.AggregateCalls++
	m.LastColumnMap = colMap
	m.LastOptions = opts
	if m.AggregateByLotFunc != nil {
		return m.AggregateByLotFunc(ctx, colMap, period, opts)
	}
	return nil, nil
}

var _ warehouse.Store = (*mockStore)(nil)

// mockReportRepository is an in-memory fake of the report cache. Safe for
// concurrent use so cache-stampede tests can hammer it.
type mockReportRepository struct {
	mu      sync.Mutex
	reports map[string]*models.LotDefectReport

	GetErr    error
	UpsertErr error

	UpsertCalls int
}

func newMockReportRepository() *mockReportRepository {
	return &mockReportRepository{reports: make(map[string]*models.LotDefectReport)}
}

func (m *mockReportRepository) Upsert(ctx context.Context, report *models.LotDefectReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls++
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	stored := *report
	m.reports[report.LotID] = &stored
	return nil
}

func (m *mockReportRepository) GetByLotID(ctx context.Context, lotID string) (*models.LotDefectReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if r, ok := m.reports[lotID]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, nil
}

func (m *mockReportRepository) Delete(ctx context.Context, lotID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reports, lotID)
	return nil
}
