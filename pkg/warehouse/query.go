package warehouse

import (
	"fmt"
	"strings"

	"github.com/fabpulse/fabpulse-engine/pkg/apperrors"
	"github.com/fabpulse/fabpulse-engine/pkg/models"
	enginesql "github.com/fabpulse/fabpulse-engine/pkg/sql"
)

// failureMarkers are the latest-result values (after text coercion) that
// count as a failing LOT. Numeric prediction columns yield "1" or "1.0";
// legacy tables store the Korean marker directly.
var failureMarkers = []string{"1", "1.0", models.ResultFail}

// lotStatusPlan is a built aggregation query plus the metadata needed to
// scan its rows: which optional select columns are present and the averaged
// parameter columns in select order.
type lotStatusPlan struct {
	SQL       string
	Args      []any
	HasDate   bool
	HasResult bool
	ParamCols []string
}

// buildLotStatusPlan builds the per-LOT aggregation query. Every identifier
// passes the allowlist/quote chokepoint; columns failing the check are
// skipped (parameter columns) or abort the build (structural columns).
//
// withDateFilter applies the period window; the caller drops it for the
// default-period fallback pass.
func buildLotStatusPlan(schema string, m models.ColumnMap, period Period, includeAll, withDateFilter bool) (*lotStatusPlan, error) {
	if m.LotCol == "" {
		return nil, fmt.Errorf("column map for %q: %w", m.Table, apperrors.ErrNoLotColumn)
	}

	tableRef, err := enginesql.QualifiedTable(schema, m.Table)
	if err != nil {
		return nil, err
	}
	lotCol, err := enginesql.QuoteIdentifier(m.LotCol)
	if err != nil {
		return nil, err
	}

	plan := &lotStatusPlan{}
	selects := []string{
		fmt.Sprintf("%s::text AS lot_id", lotCol),
		"COUNT(*) AS record_count",
	}

	var dateCol string
	if m.DateCol != "" {
		dateCol, err = enginesql.QuoteIdentifier(m.DateCol)
		if err != nil {
			return nil, err
		}
		selects = append(selects, fmt.Sprintf("MAX(%s) AS latest_date", dateCol))
		plan.HasDate = true
	}

	var latestResultExpr string
	if m.ResultCol != "" {
		resultCol, err := enginesql.QuoteIdentifier(m.ResultCol)
		if err != nil {
			return nil, err
		}
		latestResultExpr = latestValueExpr(resultCol, dateCol)
		selects = append(selects, latestResultExpr+" AS latest_result")
		plan.HasResult = true
	}

	for _, name := range m.NumericCols {
		if name == m.LotCol || name == m.ResultCol {
			continue
		}
		quoted, err := enginesql.QuoteIdentifier(name)
		if err != nil {
			// Malformed catalog entry; leave the parameter out rather than
			// fail the whole dashboard.
			continue
		}
		selects = append(selects, fmt.Sprintf("AVG(%s)::float8 AS %s", quoted, quoted))
		plan.ParamCols = append(plan.ParamCols, name)
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(selects, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(tableRef)
	sb.WriteString(fmt.Sprintf(" WHERE %s IS NOT NULL", lotCol))

	if plan.HasDate && withDateFilter {
		plan.Args = append(plan.Args, period.WindowDays())
		sb.WriteString(fmt.Sprintf(" AND %s >= now() - ($%d::int * INTERVAL '1 day')", dateCol, len(plan.Args)))
	}

	sb.WriteString(fmt.Sprintf(" GROUP BY %s", lotCol))

	// Default view shows failing LOTs only. The filter repeats the
	// latest-result expression because HAVING cannot reference the alias.
	if !includeAll && plan.HasResult {
		sb.WriteString(fmt.Sprintf(" HAVING %s IN (%s)", latestResultExpr, quotedMarkers()))
	}

	// Numeric lot ids sort numerically, everything else lexicographically.
	// Stable across runs for pagination and tests.
	sb.WriteString(fmt.Sprintf(
		" ORDER BY (CASE WHEN %s::text ~ '^[0-9]+$' THEN (%s::text)::numeric END) NULLS LAST, %s::text",
		lotCol, lotCol, lotCol))

	plan.SQL = sb.String()
	return plan, nil
}

// latestValueExpr selects the most recent non-null value of col. With a date
// column the order is explicit (rows ordered by date descending, first
// non-null wins; equal timestamps are left to the database's row order).
// Without one there is nothing to order by and the pick is arbitrary but
// consistent within a scan.
func latestValueExpr(col, dateCol string) string {
	if dateCol != "" {
		return fmt.Sprintf(
			"(ARRAY_AGG(%s::text ORDER BY %s DESC) FILTER (WHERE %s IS NOT NULL))[1]",
			col, dateCol, col)
	}
	return fmt.Sprintf("(ARRAY_AGG(%s::text) FILTER (WHERE %s IS NOT NULL))[1]", col, col)
}

func quotedMarkers() string {
	quoted := make([]string, len(failureMarkers))
	for i, m := range failureMarkers {
		quoted[i] = "'" + m + "'"
	}
	return strings.Join(quoted, ", ")
}
