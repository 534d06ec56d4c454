package warehouse

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fabpulse/fabpulse-engine/pkg/logging"
	"github.com/fabpulse/fabpulse-engine/pkg/models"
)

// AggregateByLot groups the table's rows by the LOT column and computes one
// aggregate per LOT: record count, latest timestamp, latest pass/fail result
// and the average of every numeric parameter column.
//
// With the default period and the failing-only filter active, an empty window
// retries once without the date condition. Explicit day/week/month windows
// return empty rather than silently widening scope.
func (p *Postgres) AggregateByLot(ctx context.Context, colMap models.ColumnMap, period Period, opts AggregateOptions) ([]models.LotAggregate, error) {
	plan, err := buildLotStatusPlan(p.schema, colMap, period, opts.IncludeAll, true)
	if err != nil {
		return nil, err
	}

	lots, err := p.runLotStatus(ctx, plan)
	if err != nil {
		return nil, err
	}

	if len(lots) == 0 && plan.HasDate && period == PeriodDefault && !opts.IncludeAll {
		p.logger.Debug("Empty default window, retrying without date condition",
			zap.String("table", colMap.Table))

		plan, err = buildLotStatusPlan(p.schema, colMap, period, opts.IncludeAll, false)
		if err != nil {
			return nil, err
		}
		return p.runLotStatus(ctx, plan)
	}

	return lots, nil
}

func (p *Postgres) runLotStatus(ctx context.Context, plan *lotStatusPlan) ([]models.LotAggregate, error) {
	p.logger.Debug("LOT aggregation query", zap.String("sql", logging.SanitizeQuery(plan.SQL)))

	rows, err := p.pool.Query(ctx, plan.SQL, plan.Args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate by lot: %w", err)
	}
	defer rows.Close()

	lots := make([]models.LotAggregate, 0)
	for rows.Next() {
		var (
			lot          models.LotAggregate
			latestDate   *time.Time
			latestResult *string
			paramVals    = make([]*float64, len(plan.ParamCols))
		)

		dest := []any{&lot.LotID, &lot.RecordCount}
		if plan.HasDate {
			dest = append(dest, &latestDate)
		}
		if plan.HasResult {
			dest = append(dest, &latestResult)
		}
		for i := range paramVals {
			dest = append(dest, &paramVals[i])
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan lot aggregate: %w", err)
		}

		lot.LatestDate = latestDate
		if latestResult != nil {
			lot.PassFailResult = *latestResult
		}
		for i, v := range paramVals {
			if v == nil {
				continue
			}
			if lot.Params == nil {
				lot.Params = make(map[string]float64, len(paramVals))
			}
			lot.Params[plan.ParamCols[i]] = *v
		}

		lots = append(lots, lot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lot aggregates: %w", err)
	}

	return lots, nil
}

// Ensure Postgres implements Store at compile time.
var _ Store = (*Postgres)(nil)
