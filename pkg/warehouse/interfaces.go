// Package warehouse reads the manufacturing data warehouse: schema
// introspection and per-LOT aggregation over arbitrary process tables.
package warehouse

import (
	"context"

	"github.com/fabpulse/fabpulse-engine/pkg/models"
)

// Store is the read surface the dashboard services depend on. The concrete
// implementation is Postgres; tests substitute lightweight fakes.
type Store interface {
	// ListTables returns the base table names in the warehouse schema.
	ListTables(ctx context.Context) ([]string, error)

	// ListColumns returns the columns of a table in physical order, with
	// declared types reduced to primitive kinds. A missing table yields an
	// empty list, not an error.
	ListColumns(ctx context.Context, table string) ([]models.ColumnDescriptor, error)

	// AggregateByLot groups the table's rows by the inferred LOT column and
	// returns one aggregate per LOT. The column map must carry a lot column.
	AggregateByLot(ctx context.Context, colMap models.ColumnMap, period Period, opts AggregateOptions) ([]models.LotAggregate, error)
}

// AggregateOptions tune a LOT aggregation request.
type AggregateOptions struct {
	// IncludeAll bypasses the default failing-LOTs-only filter and returns
	// passing LOTs as well.
	IncludeAll bool
}
