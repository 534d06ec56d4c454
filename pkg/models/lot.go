package models

import "time"

// Pass/fail markers as stored by the quality pipelines. Prediction-style
// result columns use numeric 1 for a detected defect.
const (
	ResultPass = "합격"
	ResultFail = "불합격"
)

// LotAggregate is the per-LOT rollup of one process table: the most recent
// pass/fail outcome, row count, latest record timestamp and the average of
// every numeric parameter column.
type LotAggregate struct {
	LotID          string             `json:"lot_id"`
	PassFailResult string             `json:"pass_fail_result,omitempty"`
	RecordCount    int64              `json:"record_count"`
	LatestDate     *time.Time         `json:"latest_date,omitempty"`
	Params         map[string]float64 `json:"params,omitempty"`
}

// IsFailure reports whether a raw latest-result value normalizes to the
// failure marker. Prediction columns yield "1" (or "1.0" after a float
// cast); Korean dashboards store the marker directly.
func IsFailure(result string) bool {
	switch result {
	case "1", "1.0", ResultFail:
		return true
	}
	return false
}
