package domain

// ColumnType is one axis of the (type, range, year) triple defining a column.
type ColumnType string

const (
	ColActual             ColumnType = "ACTUAL"
	ColPercentage         ColumnType = "PERCENTAGE"
	ColVariance           ColumnType = "VARIANCE"
	ColGrossActual        ColumnType = "GROSS_ACTUAL"
	ColGrossPercentage    ColumnType = "GROSS_PERCENTAGE"
	ColVariancePercentage ColumnType = "VARIANCE_PERCENTAGE"
	ColBudgetActual       ColumnType = "BUDGET_ACTUAL"
	ColBudgetPercentage   ColumnType = "BUDGET_PERCENTAGE"
	ColBudgetVariance     ColumnType = "BUDGET_VARIANCE"
)

// IsBudget reports whether the column type belongs to the budget family.
func (ct ColumnType) IsBudget() bool {
	return ct == ColBudgetActual || ct == ColBudgetPercentage || ct == ColBudgetVariance
}

// IsActualFamily reports whether the column type routes to the actuals family.
func (ct ColumnType) IsActualFamily() bool {
	return ct == ColActual || ct == ColGrossActual
}

// IsPercentageFamily reports whether the column type routes to the
// binary-expression evaluator.
func (ct ColumnType) IsPercentageFamily() bool {
	return ct == ColPercentage || ct == ColGrossPercentage || ct == ColVariancePercentage
}

// ValueClass collapses the nine column types onto the three classes an
// ItemValue records as its derived columnType.
func (ct ColumnType) ValueClass() ColumnType {
	switch ct {
	case ColPercentage, ColGrossPercentage, ColVariancePercentage, ColBudgetPercentage:
		return ColPercentage
	case ColVariance, ColBudgetVariance:
		return ColVariance
	default:
		return ColActual
	}
}

// ColumnRange is the period slice a column covers.
type ColumnRange string

const (
	RangeCurrentPeriod ColumnRange = "CURRENT_PERIOD"
	RangeMTD           ColumnRange = "MTD"
	RangeYTD           ColumnRange = "YTD"
)

// ColumnYear designates which snapshot's year a column reads from.
type ColumnYear string

const (
	YearCurrent        ColumnYear = "CURRENT"
	YearPrior          ColumnYear = "PRIOR"
	YearPreviousPeriod ColumnYear = "PREVIOUS_PERIOD"
	YearNone           ColumnYear = ""
)

// Column is one (type, range, year) axis of a report.
type Column struct {
	ColumnID string      `json:"columnID"`
	Type     ColumnType  `json:"type"`
	Range    ColumnRange `json:"range"`
	Year     ColumnYear  `json:"year"`
	Order    int         `json:"order"`
}
