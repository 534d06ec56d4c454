package models

// PrimitiveType reduces a warehouse column's declared SQL type to the three
// kinds the role matcher cares about.
type PrimitiveType string

const (
	TypeNumeric PrimitiveType = "numeric"
	TypeDate    PrimitiveType = "date"
	TypeString  PrimitiveType = "string"
)

// ColumnDescriptor describes one column of a warehouse table as reported by
// the information schema, in physical order.
type ColumnDescriptor struct {
	Name          string        `json:"name"`
	DataType      string        `json:"data_type"`
	PrimitiveType PrimitiveType `json:"primitive_type"`
}

// IsNumeric reports whether the column holds numeric values.
func (c ColumnDescriptor) IsNumeric() bool {
	return c.PrimitiveType == TypeNumeric
}

// ColumnMap assigns semantic roles to the physical columns of one process
// table. An empty field means the role could not be identified; downstream
// code treats that as a normal "no data" outcome, never an error.
type ColumnMap struct {
	Table          string   `json:"table"`
	DateCol        string   `json:"date_col,omitempty"`
	QuantityCol    string   `json:"quantity_col,omitempty"`
	PassRateCol    string   `json:"pass_rate_col,omitempty"`
	DefectCol      string   `json:"defect_col,omitempty"`
	ConsumptionCol string   `json:"consumption_col,omitempty"`
	EfficiencyCol  string   `json:"efficiency_col,omitempty"`
	LineCol        string   `json:"line_col,omitempty"`
	LotCol         string   `json:"lot_col,omitempty"`
	ResultCol      string   `json:"result_col,omitempty"`
	NumericCols    []string `json:"numeric_cols,omitempty"`
}

// HasLot reports whether LOT-level aggregation can proceed for this table.
func (m ColumnMap) HasLot() bool {
	return m.LotCol != ""
}
