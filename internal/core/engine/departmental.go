package engine

import (
	"github.com/shopspring/decimal"

	"github.com/finboard/report_engine/internal/core/domain"
)

// departmental routes a departmental report's cells purely by column type:
// totals items use the totals algorithm, non-totals actual cells use the
// class-difference algorithm keyed by the item's single accounting class, and
// budget columns use the departmental budget variant.
func (e *Engine) departmental(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]

	if col.Type.IsBudget() {
		if item.Totals {
			return e.budgetTotals(c, itemIdx, col)
		}
		return e.departmentalBudget(c, itemIdx, col)
	}
	if item.Totals {
		return e.totals(c, itemIdx, col)
	}

	switch {
	case col.Type.IsActualFamily():
		return e.classDifference(c, itemIdx, col)
	case col.Type.IsPercentageFamily():
		return e.expressionValue(c, itemIdx, col)
	case col.Type == domain.ColVariance:
		return e.variance(c, itemIdx, col)
	}
	return nil
}

// classDifference computes a department item's revenue, expense or profit from
// the general ledger rows of its accounting class: credits (negative amounts)
// are revenue, debits expense, and profit their difference.
func (e *Engine) classDifference(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]
	if len(item.Accounts) == 0 {
		return nil
	}
	classID := item.Accounts[0].ClassID
	start, end := c.Window(col.Range)

	revenue := decimal.Zero
	expense := decimal.Zero
	for _, row := range c.Ledger[domain.LedgerGeneral] {
		if row.ClassExternalID != classID {
			continue
		}
		if row.TxnDate.Before(start) || row.TxnDate.After(end) {
			continue
		}
		if row.Amount.Sign() < 0 {
			revenue = revenue.Add(row.Amount.Neg())
		} else {
			expense = expense.Add(row.Amount)
		}
	}
	revenue = revenue.Round(2)
	expense = expense.Round(2)

	var v decimal.Decimal
	measure := domain.DeptProfit
	if item.Type != nil && item.Type.DeptMeasure != "" {
		measure = item.Type.DeptMeasure
	}
	switch measure {
	case domain.DeptRevenue:
		v = revenue
	case domain.DeptExpense:
		v = expense
	default:
		v = revenue.Sub(expense).Round(2)
	}
	if item.Negative {
		v = v.Neg()
	}

	accumulated := prevAccumulated(c, item.ItemID, col.ColumnID).Add(v).Round(2)
	return &domain.ItemValue{
		Value:            &v,
		AccumulatedValue: accumulated,
		ItemAccountValues: []domain.ItemAccountValue{
			{ClassID: classID, Value: v},
		},
	}
}
