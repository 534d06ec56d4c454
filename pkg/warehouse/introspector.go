package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fabpulse/fabpulse-engine/pkg/models"
)

// Postgres reads production data from a PostgreSQL warehouse.
type Postgres struct {
	pool   *pgxpool.Pool
	schema string
	logger *zap.Logger
}

// NewPostgres creates a warehouse store over the given pool. If schema is
// empty, "public" is assumed. If logger is nil, a no-op logger is used.
func NewPostgres(pool *pgxpool.Pool, schema string, logger *zap.Logger) *Postgres {
	if schema == "" {
		schema = "public"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{
		pool:   pool,
		schema: schema,
		logger: logger.Named("warehouse"),
	}
}

// ListTables returns all base tables in the warehouse schema.
func (p *Postgres) ListTables(ctx context.Context) ([]string, error) {
	const query = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := p.pool.Query(ctx, query, p.schema)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}

	return tables, nil
}

// ListColumns returns the columns of a table in physical order. A table the
// catalog does not know yields an empty list; callers treat that as "no
// columns" downstream.
func (p *Postgres) ListColumns(ctx context.Context, table string) ([]models.ColumnDescriptor, error) {
	const query = `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := p.pool.Query(ctx, query, p.schema, table)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []models.ColumnDescriptor
	for rows.Next() {
		var c models.ColumnDescriptor
		if err := rows.Scan(&c.Name, &c.DataType); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		c.PrimitiveType = primitiveTypeOf(c.DataType)
		columns = append(columns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}

	return columns, nil
}

// primitiveTypeOf reduces a declared information_schema data type to the
// kinds the role matcher distinguishes.
func primitiveTypeOf(dataType string) models.PrimitiveType {
	switch strings.ToLower(dataType) {
	case "smallint", "integer", "bigint", "decimal", "numeric",
		"real", "double precision", "money", "float", "tinyint":
		return models.TypeNumeric
	}

	lower := strings.ToLower(dataType)
	if lower == "date" || strings.HasPrefix(lower, "timestamp") || strings.HasPrefix(lower, "time") || lower == "datetime" {
		return models.TypeDate
	}

	return models.TypeString
}
