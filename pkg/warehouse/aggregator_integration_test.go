//go:build integration

package warehouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabpulse/fabpulse-engine/pkg/models"
	"github.com/fabpulse/fabpulse-engine/pkg/roles"
	"github.com/fabpulse/fabpulse-engine/pkg/testhelpers"
)

func setupAggregatorTest(t *testing.T) (*Postgres, models.ColumnMap) {
	t.Helper()

	testDB := testhelpers.GetTestDB(t)
	testhelpers.SeedWarehouseTable(t, testDB.Pool, "it_simulation_results")

	store := NewPostgres(testDB.Pool, "public", nil)

	columns, err := store.ListColumns(context.Background(), "it_simulation_results")
	require.NoError(t, err)
	require.NotEmpty(t, columns)

	colMap := roles.Infer("it_simulation_results", columns)
	require.Equal(t, "lot_id", colMap.LotCol)
	require.Equal(t, "timestamp", colMap.DateCol)
	require.Equal(t, "prediction", colMap.ResultCol)

	return store, colMap
}

func TestAggregateByLot_FailingOnly(t *testing.T) {
	store, colMap := setupAggregatorTest(t)

	// Seed data: lot 1001 ends failing, 1002 ends passing, 2001 failed but
	// is over a year old. The default view shows recent failing lots only.
	lots, err := store.AggregateByLot(context.Background(), colMap, PeriodDefault, AggregateOptions{})
	require.NoError(t, err)
	require.Len(t, lots, 1)

	lot := lots[0]
	assert.Equal(t, "1001", lot.LotID)
	assert.EqualValues(t, 2, lot.RecordCount)
	assert.Equal(t, "1", lot.PassFailResult)
	require.NotNil(t, lot.LatestDate)
	assert.InDelta(t, 43.0, lot.Params["humidity"], 0.5)
}

func TestAggregateByLot_IncludeAll(t *testing.T) {
	store, colMap := setupAggregatorTest(t)

	lots, err := store.AggregateByLot(context.Background(), colMap, PeriodDefault, AggregateOptions{IncludeAll: true})
	require.NoError(t, err)
	require.Len(t, lots, 2)

	// Numeric lot ids come back in numeric order.
	assert.Equal(t, "1001", lots[0].LotID)
	assert.Equal(t, "1002", lots[1].LotID)
	assert.Equal(t, "0", lots[1].PassFailResult)
}

func TestAggregateByLot_ExplicitWindowExcludesStaleLots(t *testing.T) {
	store, colMap := setupAggregatorTest(t)

	// Lot 2001 failed over a year ago. No window, explicit or default,
	// reaches it while recent failing lots exist.
	lots, err := store.AggregateByLot(context.Background(), colMap, PeriodDay, AggregateOptions{})
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "1001", lots[0].LotID)
}

func TestAggregateByLot_DefaultWindowFallsBackWhenEmpty(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	testhelpers.SeedStaleWarehouseTable(t, testDB.Pool, "it_stale_results")

	ctx := context.Background()
	store := NewPostgres(testDB.Pool, "public", nil)

	columns, err := store.ListColumns(ctx, "it_stale_results")
	require.NoError(t, err)
	colMap := roles.Infer("it_stale_results", columns)
	require.Equal(t, "lot_id", colMap.LotCol)
	require.Equal(t, "timestamp", colMap.DateCol)

	// Every row is over a year old. The default window comes back empty, so
	// the aggregation retries once without the date condition and surfaces
	// the stale failing lot.
	lots, err := store.AggregateByLot(ctx, colMap, PeriodDefault, AggregateOptions{})
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "3001", lots[0].LotID)
	assert.Equal(t, "1", lots[0].PassFailResult)

	// Explicit windows never widen, even when empty.
	for _, period := range []Period{PeriodDay, PeriodWeek, PeriodMonth} {
		lots, err := store.AggregateByLot(ctx, colMap, period, AggregateOptions{})
		require.NoError(t, err)
		assert.Empty(t, lots, "period %q must stay empty", period)
	}

	// The all view keeps the default window too; only the failing-only
	// default view falls back.
	lots, err = store.AggregateByLot(ctx, colMap, PeriodDefault, AggregateOptions{IncludeAll: true})
	require.NoError(t, err)
	assert.Empty(t, lots)
}

func TestListTables_ContainsSeededTable(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	testhelpers.SeedWarehouseTable(t, testDB.Pool, "it_simulation_results")

	store := NewPostgres(testDB.Pool, "public", nil)
	tables, err := store.ListTables(context.Background())
	require.NoError(t, err)
	assert.Contains(t, tables, "it_simulation_results")
}

func TestListColumns_MissingTableIsEmpty(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)

	store := NewPostgres(testDB.Pool, "public", nil)
	columns, err := store.ListColumns(context.Background(), "no_such_table")
	require.NoError(t, err)
	assert.Empty(t, columns)
}
