package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodType is the granularity of one computed snapshot.
type PeriodType string

const (
	PeriodDaily   PeriodType = "DAILY"
	PeriodMonthly PeriodType = "MONTHLY"
	PeriodAnnual  PeriodType = "ANNUAL"
)

// ReportData is one computed snapshot of every (item, column) cell for a
// report over one date range. Mutated in place on each recompute; ItemValue
// rows are never shared across snapshots.
type ReportData struct {
	ReportDataID      string            `json:"reportDataID"`
	ReportID          string            `json:"reportID"`
	StartDate         time.Time         `json:"startDate"`
	EndDate           time.Time         `json:"endDate"`
	PeriodType        PeriodType        `json:"periodType"`
	Values            []ItemValue       `json:"values"`
	DependencyDigests map[string]string `json:"dependencyDigests"`
	LastModifiedAt    time.Time         `json:"lastModifiedAt"`
}

// ValueFor returns the cell for (itemID, columnID), or nil.
func (d *ReportData) ValueFor(itemID, columnID string) *ItemValue {
	for i := range d.Values {
		if d.Values[i].ItemID == itemID && d.Values[i].ColumnID == columnID {
			return &d.Values[i]
		}
	}
	return nil
}

// ItemAccountValue is the per-mapping breakdown of one cell. Vendor-scoped
// reports key the breakdown by vendor identity instead of account mapping.
type ItemAccountValue struct {
	AccountID string          `json:"accountID,omitempty"`
	ClassID   string          `json:"classID,omitempty"`
	Vendor    string          `json:"vendor,omitempty"`
	Value     decimal.Decimal `json:"value"`
}

// BudgetValue is one per-budget entry of a budget-column cell.
type BudgetValue struct {
	BudgetID string          `json:"budgetID"`
	Value    decimal.Decimal `json:"value"`
}

// ItemValue is one computed cell, keyed by (itemID, columnID) within its
// snapshot. Value is nullable: a nil Value means the cell could not be
// resolved (missing neighbouring snapshot, nil variance operand, blank
// metric), which is distinct from zero.
type ItemValue struct {
	ItemID                     string             `json:"itemID"`
	ColumnID                   string             `json:"columnID"`
	Value                      *decimal.Decimal   `json:"value"`
	ColumnType                 ColumnType         `json:"columnType"` // derived ACTUAL/PERCENTAGE/VARIANCE class
	AccumulatedValue           decimal.Decimal    `json:"accumulatedValue"`
	DependencyAccumulatedValue *decimal.Decimal   `json:"dependencyAccumulatedValue,omitempty"`
	ItemAccountValues          []ItemAccountValue `json:"itemAccountValues,omitempty"`
	BudgetValues               []BudgetValue      `json:"budgetValues,omitempty"`
}

// BudgetValueFor returns the entry for a budget id, or nil.
func (v *ItemValue) BudgetValueFor(budgetID string) *BudgetValue {
	for i := range v.BudgetValues {
		if v.BudgetValues[i].BudgetID == budgetID {
			return &v.BudgetValues[i]
		}
	}
	return nil
}
