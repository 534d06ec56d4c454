// Package roles assigns semantic roles to the physical columns of a process
// table using ordered name-matching heuristics. Inference is a pure function
// over the column list so priority behavior is testable without a database.
package roles

import (
	"regexp"
	"strings"

	"github.com/fabpulse/fabpulse-engine/pkg/models"
)

// Candidate name fragments per role, in priority order. Order is load-bearing:
// an earlier candidate's substring match beats a later candidate's exact
// match, which decides tables carrying both pass_rate and defect_rate.
var (
	dateCandidates = []string{
		"production_date", "prod_date", "work_date", "timestamp", "datetime",
		"reg_date", "created_at", "date", "time", "일자", "날짜",
	}
	quantityCandidates = []string{
		"production_qty", "prod_qty", "quantity", "qty", "amount", "output", "수량",
	}
	passRateCandidates = []string{
		"pass_rate", "yield", "good_rate", "ok_rate", "합격률",
	}
	defectCandidates = []string{
		"prediction", "quality_defect", "defect", "defect_rate", "fail", "ng", "불량",
	}
	consumptionCandidates = []string{
		"power_consumption", "energy_consumption", "consumption", "kwh", "power", "전력",
	}
	efficiencyCandidates = []string{
		"efficiency", "oee", "eff", "효율",
	}
	lineCandidates = []string{
		"line_no", "line", "machine", "equipment", "process_no", "라인",
	}
	lotCandidates = []string{
		"lot_id", "lot_no", "lotno", "lot", "batch_id", "batch", "로트",
	}
	resultCandidates = []string{
		"prediction", "pass_fail", "result", "judgment", "quality_defect",
		"defect", "fail", "ng", "불량",
	}
)

// ratePattern identifies already-aggregated rate columns. Those never hold a
// per-record outcome, so the result role skips them.
var ratePattern = regexp.MustCompile(`(?i)rate|percent|ratio|pct`)

// quantityExcludeFragments are quality/efficiency terms a fallback quantity
// column must not match.
var quantityExcludeFragments = []string{
	"rate", "yield", "defect", "fail", "ng", "prediction", "result",
	"efficiency", "eff", "oee", "ratio", "percent",
}

// Infer assigns semantic roles to the given columns. Unmatched roles stay
// empty; a table with no recognizable columns yields a map with only the
// table name and numeric column list populated.
func Infer(table string, columns []models.ColumnDescriptor) models.ColumnMap {
	m := models.ColumnMap{Table: table}

	m.DateCol = matchTyped(columns, dateCandidates, models.TypeDate)
	m.QuantityCol = matchTyped(columns, quantityCandidates, models.TypeNumeric)
	m.PassRateCol = match(columns, passRateCandidates)
	m.DefectCol = match(columns, defectCandidates)
	m.ConsumptionCol = match(columns, consumptionCandidates)
	m.EfficiencyCol = match(columns, efficiencyCandidates)
	m.LineCol = match(columns, lineCandidates)
	m.LotCol = match(columns, lotCandidates)
	m.ResultCol = matchResult(columns)

	for _, c := range columns {
		if c.IsNumeric() {
			m.NumericCols = append(m.NumericCols, c.Name)
		}
	}

	if m.QuantityCol == "" {
		m.QuantityCol = fallbackQuantity(columns)
	}

	return m
}

// match finds the first column matching the candidate list. Per candidate it
// tries an exact case-insensitive match over all columns first, then a
// substring match in either direction. The first candidate with any match
// wins regardless of match type.
func match(columns []models.ColumnDescriptor, candidates []string) string {
	return matchTyped(columns, candidates, "")
}

// matchTyped is match restricted to columns of the given primitive type.
// An empty type considers every column.
func matchTyped(columns []models.ColumnDescriptor, candidates []string, t models.PrimitiveType) string {
	for _, cand := range candidates {
		lowerCand := strings.ToLower(cand)

		for _, c := range columns {
			if t != "" && c.PrimitiveType != t {
				continue
			}
			if strings.ToLower(c.Name) == lowerCand {
				return c.Name
			}
		}

		for _, c := range columns {
			if t != "" && c.PrimitiveType != t {
				continue
			}
			lowerName := strings.ToLower(c.Name)
			if strings.Contains(lowerName, lowerCand) || strings.Contains(lowerCand, lowerName) {
				return c.Name
			}
		}
	}
	return ""
}

// matchResult finds the per-record outcome column: defect-like names that are
// not rate/percent columns, since rates are already aggregated values.
func matchResult(columns []models.ColumnDescriptor) string {
	eligible := make([]models.ColumnDescriptor, 0, len(columns))
	for _, c := range columns {
		if !ratePattern.MatchString(c.Name) {
			eligible = append(eligible, c)
		}
	}
	return match(eligible, resultCandidates)
}

// fallbackQuantity picks a numeric column that does not look like a
// quality/efficiency metric, else the first numeric column, else nothing.
func fallbackQuantity(columns []models.ColumnDescriptor) string {
	first := ""
	for _, c := range columns {
		if !c.IsNumeric() {
			continue
		}
		if first == "" {
			first = c.Name
		}
		if !matchesAny(c.Name, quantityExcludeFragments) {
			return c.Name
		}
	}
	return first
}

func matchesAny(name string, fragments []string) bool {
	lower := strings.ToLower(name)
	for _, f := range fragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}
