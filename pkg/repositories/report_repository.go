// Package repositories provides data access for the engine database.
package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fabpulse/fabpulse-engine/pkg/apperrors"
	"github.com/fabpulse/fabpulse-engine/pkg/models"
)

// ReportRepository provides data access for generated LOT defect reports.
type ReportRepository interface {
	// Upsert inserts the report or, when a report for the same lot_id
	// already exists, replaces its content and snapshot. Last writer wins.
	Upsert(ctx context.Context, report *models.LotDefectReport) error

	// GetByLotID returns the cached report for a LOT, or nil if none exists.
	GetByLotID(ctx context.Context, lotID string) (*models.LotDefectReport, error)

	// Delete removes a cached report. Used by operators to force regeneration.
	Delete(ctx context.Context, lotID string) error
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

var _ ReportRepository = (*reportRepository)(nil)

func (r *reportRepository) Upsert(ctx context.Context, report *models.LotDefectReport) error {
	now := time.Now()
	report.UpdatedAt = now
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
		report.CreatedAt = now
	}

	query := `
		INSERT INTO engine_lot_defect_reports (
			id, lot_id, report_content, lot_data, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (lot_id)
		DO UPDATE SET
			report_content = EXCLUDED.report_content,
			lot_data = EXCLUDED.lot_data,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		report.ID, report.LotID, report.ReportContent, report.LotData,
		report.CreatedAt, report.UpdatedAt,
	).Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert defect report: %w", err)
	}

	return nil
}

func (r *reportRepository) GetByLotID(ctx context.Context, lotID string) (*models.LotDefectReport, error) {
	query := `
		SELECT id, lot_id, report_content, lot_data, created_at, updated_at
		FROM engine_lot_defect_reports
		WHERE lot_id = $1`

	row := r.pool.QueryRow(ctx, query, lotID)

	var report models.LotDefectReport
	var lotData *[]byte
	err := row.Scan(
		&report.ID, &report.LotID, &report.ReportContent, &lotData,
		&report.CreatedAt, &report.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to scan defect report: %w", err)
	}

	if lotData != nil {
		report.LotData = *lotData
	}

	return &report, nil
}

func (r *reportRepository) Delete(ctx context.Context, lotID string) error {
	query := `DELETE FROM engine_lot_defect_reports WHERE lot_id = $1`

	result, err := r.pool.Exec(ctx, query, lotID)
	if err != nil {
		return fmt.Errorf("failed to delete defect report: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("defect report for lot %q: %w", lotID, apperrors.ErrNotFound)
	}

	return nil
}
