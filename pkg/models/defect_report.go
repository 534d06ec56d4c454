package models

import (
	"time"

	"github.com/google/uuid"
)

// Report languages supported by the defect report generator.
const (
	ReportLanguageKorean  = "ko"
	ReportLanguageEnglish = "en"
)

// LotDefectReport is a generated defect analysis for one LOT, persisted as a
// write-once cache keyed by the unique lot_id. LotData snapshots the
// aggregate the report was generated from.
// Stored in engine_lot_defect_reports table.
type LotDefectReport struct {
	ID            uuid.UUID `json:"id"`
	LotID         string    `json:"lot_id"`
	ReportContent string    `json:"report_content"`
	LotData       []byte    `json:"lot_data,omitempty"` // JSON snapshot of the LotAggregate
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
