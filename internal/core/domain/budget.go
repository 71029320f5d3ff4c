package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is one yearly plan for a company. Budget columns of a report produce
// one value entry per budget whose Year matches the snapshot's year.
type Budget struct {
	BudgetID       string       `json:"budgetID"`
	CompanyID      string       `json:"companyID"`
	Name           string       `json:"name"`
	Year           int          `json:"year"`
	Items          []BudgetItem `json:"items"`
	LastModifiedAt time.Time    `json:"lastModifiedAt"`
}

// ItemFor returns the budget item keyed by an account/class pair, or nil.
func (b *Budget) ItemFor(accountID, classID string) *BudgetItem {
	for i := range b.Items {
		if b.Items[i].AccountID == accountID && b.Items[i].ClassID == classID {
			return &b.Items[i]
		}
	}
	return nil
}

// ItemForMetric returns the budget item keyed by a standard metric id, or nil.
func (b *Budget) ItemForMetric(metricID string) *BudgetItem {
	for i := range b.Items {
		if b.Items[i].StandardMetricID == metricID {
			return &b.Items[i]
		}
	}
	return nil
}

// BudgetItem keys either an (account, class) pair or a standard metric, and
// owns twelve month/value pairs.
type BudgetItem struct {
	BudgetItemID     string            `json:"budgetItemID"`
	AccountID        string            `json:"accountID,omitempty"`
	ClassID          string            `json:"classID,omitempty"`
	StandardMetricID string            `json:"standardMetricID,omitempty"`
	Values           []BudgetItemValue `json:"values"`
}

// ValueFor returns the planned value for a month (1..12); zero when unset.
func (bi *BudgetItem) ValueFor(month time.Month) decimal.Decimal {
	for i := range bi.Values {
		if bi.Values[i].Month == int(month) {
			return bi.Values[i].Value
		}
	}
	return decimal.Zero
}

// BudgetItemValue is one month/value pair of a budget item.
type BudgetItemValue struct {
	Month int             `json:"month"` // 1..12
	Value decimal.Decimal `json:"value"`
}
