package engine

import (
	"github.com/shopspring/decimal"

	"github.com/finboard/report_engine/internal/core/domain"
)

// budget mirrors the actuals dispatch for budget columns: the cell's value is
// a list of {budgetId, value} pairs, one entry per budget applicable to the
// snapshot's year, each computed independently.
func (e *Engine) budget(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]
	if item.Totals {
		return e.budgetTotals(c, itemIdx, col)
	}

	switch col.Type {
	case domain.ColBudgetActual:
		if col.Range == domain.RangeYTD {
			return e.budgetYTD(c, itemIdx, col)
		}
		return &domain.ItemValue{BudgetValues: e.budgetActualEntries(c, itemIdx)}
	case domain.ColBudgetPercentage, domain.ColBudgetVariance:
		return e.budgetExpression(c, itemIdx, col)
	}
	return nil
}

// budgetActualEntries sums the snapshot month's planned values across the
// item's account mappings, per budget, plus a standard-metric-keyed budget
// item when the item is metric-typed.
func (e *Engine) budgetActualEntries(c *Context, itemIdx int) []domain.BudgetValue {
	item := &c.Def.Items[itemIdx]
	mappings := itemMappings(c, itemIdx)
	month := c.Data.StartDate.Month()

	entries := make([]domain.BudgetValue, 0, len(c.Budgets))
	for bi := range c.Budgets {
		b := &c.Budgets[bi]
		total := decimal.Zero
		for _, m := range mappings {
			if pl := b.ItemFor(m.AccountID, m.ClassID); pl != nil {
				total = total.Add(pl.ValueFor(month))
			}
		}
		if item.Type != nil && item.Type.Kind == domain.ItemMetric {
			if mi := b.ItemForMetric(item.Type.MetricCode); mi != nil {
				total = total.Add(mi.ValueFor(month))
			}
		}
		total = total.Round(2)
		if item.Negative {
			total = total.Neg()
		}
		entries = append(entries, domain.BudgetValue{BudgetID: b.BudgetID, Value: total})
	}
	return entries
}

// budgetYTD mirrors the actual YTD carry-forward independently per budget:
// the previous month's YTD budget value (0 if none) plus this month's
// current-period budget value.
func (e *Engine) budgetYTD(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]
	previous := snapshotValue(c.Previous, item.ItemID, col.ColumnID)
	current := e.budgetActualEntries(c, itemIdx)

	entries := make([]domain.BudgetValue, 0, len(current))
	for _, cur := range current {
		total := cur.Value
		if previous != nil {
			if pv := previous.BudgetValueFor(cur.BudgetID); pv != nil {
				total = total.Add(pv.Value).Round(2)
			}
		}
		entries = append(entries, domain.BudgetValue{BudgetID: cur.BudgetID, Value: total})
	}
	return &domain.ItemValue{BudgetValues: entries}
}

// budgetExpression reuses the binary evaluator per budget entry, pairing
// operand values by budget id. budget_percentage falls back to the item's
// percentage expression; budget_variance without an expression defaults to
// actual minus budget.
func (e *Engine) budgetExpression(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]

	vc := item.ValueConfigFor(col.Type)
	if vc == nil && col.Type == domain.ColBudgetPercentage {
		vc = item.ValueConfigFor(domain.ColPercentage)
	}
	if vc == nil {
		if col.Type == domain.ColBudgetVariance {
			return e.budgetVarianceDefault(c, itemIdx, col)
		}
		return nil
	}
	if vc.Operator == domain.OpSum {
		return e.budgetSum(c, itemIdx, vc, col)
	}

	entries := make([]domain.BudgetValue, 0, len(c.Budgets))
	for bi := range c.Budgets {
		budgetID := c.Budgets[bi].BudgetID
		a := e.resolveBudgetOperand(c, vc.Operands[0], col, budgetID)
		b := e.resolveBudgetOperand(c, vc.Operands[1], col, budgetID)
		entries = append(entries, domain.BudgetValue{
			BudgetID: budgetID,
			Value:    binaryOp(a, b, vc.Operator),
		})
	}
	return &domain.ItemValue{BudgetValues: entries}
}

func (e *Engine) budgetSum(c *Context, itemIdx int, vc *domain.ValueConfig, col *domain.Column) *domain.ItemValue {
	entries := make([]domain.BudgetValue, 0, len(c.Budgets))
	for bi := range c.Budgets {
		budgetID := c.Budgets[bi].BudgetID
		total := decimal.Zero
		for _, op := range vc.Operands {
			x := e.resolveBudgetOperand(c, op, col, budgetID)
			if op.Negative {
				x = x.Neg()
			}
			total = total.Add(x).Round(2)
		}
		entries = append(entries, domain.BudgetValue{BudgetID: budgetID, Value: total})
	}
	return &domain.ItemValue{BudgetValues: entries}
}

// budgetVarianceDefault is the built-in actual-minus-budget subtraction used
// when the template declares no budget_variance expression.
func (e *Engine) budgetVarianceDefault(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	var actual decimal.Decimal
	if ac := c.Def.ColumnBy(domain.ColActual, col.Range, domain.YearCurrent); ac != nil {
		actual = operandValue(e.Compute(c, itemIdx, ac))
	}

	var budgetCell *domain.ItemValue
	if bc := c.Def.ColumnBy(domain.ColBudgetActual, col.Range, col.Year); bc != nil {
		budgetCell = e.Compute(c, itemIdx, bc)
	} else {
		budgetCell = &domain.ItemValue{BudgetValues: e.budgetActualEntries(c, itemIdx)}
	}

	entries := make([]domain.BudgetValue, 0, len(c.Budgets))
	for bi := range c.Budgets {
		budgetID := c.Budgets[bi].BudgetID
		planned := decimal.Zero
		if budgetCell != nil {
			if bv := budgetCell.BudgetValueFor(budgetID); bv != nil {
				planned = bv.Value
			}
		}
		entries = append(entries, domain.BudgetValue{
			BudgetID: budgetID,
			Value:    actual.Sub(planned).Round(2),
		})
	}
	return &domain.ItemValue{BudgetValues: entries}
}

// resolveBudgetOperand resolves one operand for one budget: budget-family
// operands contribute their matching budget entry, scalar operands contribute
// the same value to every budget. Absent operands are 0.
func (e *Engine) resolveBudgetOperand(c *Context, op domain.OperandRef, col *domain.Column, budgetID string) decimal.Decimal {
	ct := op.ColumnType
	if ct == "" {
		ct = domain.ColBudgetActual
	}
	resolved := op
	resolved.ColumnType = ct
	v, _ := e.resolveOperand(c, resolved, col)
	if v == nil {
		return decimal.Zero
	}
	if ct.IsBudget() {
		if bv := v.BudgetValueFor(budgetID); bv != nil {
			return bv.Value
		}
		return decimal.Zero
	}
	return operandValue(v)
}

// budgetTotals mirrors the totals algorithm independently per budget entry.
func (e *Engine) budgetTotals(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]
	totals := make(map[string]decimal.Decimal, len(c.Budgets))
	for bi := range c.Budgets {
		totals[c.Budgets[bi].BudgetID] = decimal.Zero
	}

	for _, si := range c.Def.Siblings(itemIdx) {
		if si == itemIdx {
			continue
		}
		sib := &c.Def.Items[si]
		contribIdx := si
		if len(sib.ChildIdx) > 0 {
			if tc := c.Def.TotalsChild(si); tc >= 0 {
				contribIdx = tc
			}
		}
		v := e.Compute(c, contribIdx, col)
		if v == nil {
			continue
		}
		for _, bv := range v.BudgetValues {
			x := bv.Value
			if sib.NegativeForTotal {
				x = x.Neg()
			}
			if cur, ok := totals[bv.BudgetID]; ok {
				totals[bv.BudgetID] = cur.Add(x).Round(2)
			}
		}
	}

	if item.ParentIdx >= 0 {
		parent := &c.Def.Items[item.ParentIdx]
		if vc := parent.ValueConfigFor(col.Type); vc != nil && vc.Operator != domain.OpSum {
			for bi := range c.Budgets {
				budgetID := c.Budgets[bi].BudgetID
				a := e.resolveBudgetOperand(c, vc.Operands[0], col, budgetID)
				b := e.resolveBudgetOperand(c, vc.Operands[1], col, budgetID)
				x := binaryOp(a, b, vc.Operator)
				if parent.Negative {
					x = x.Neg()
				}
				totals[budgetID] = totals[budgetID].Add(x).Round(2)
			}
		}
	}

	entries := make([]domain.BudgetValue, 0, len(c.Budgets))
	for bi := range c.Budgets {
		budgetID := c.Budgets[bi].BudgetID
		entries = append(entries, domain.BudgetValue{BudgetID: budgetID, Value: totals[budgetID]})
	}
	return &domain.ItemValue{BudgetValues: entries}
}

// departmentalBudget is the departmental mirror: per budget, the month's
// planned values of the budget items carrying the item's accounting class,
// read through the same revenue/expense sign convention as the actuals.
func (e *Engine) departmentalBudget(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]
	if len(item.Accounts) == 0 {
		return nil
	}
	classID := item.Accounts[0].ClassID
	month := c.Data.StartDate.Month()

	measure := domain.DeptProfit
	if item.Type != nil && item.Type.DeptMeasure != "" {
		measure = item.Type.DeptMeasure
	}

	entries := make([]domain.BudgetValue, 0, len(c.Budgets))
	for bi := range c.Budgets {
		b := &c.Budgets[bi]
		revenue := decimal.Zero
		expense := decimal.Zero
		for ii := range b.Items {
			bitem := &b.Items[ii]
			if bitem.ClassID != classID {
				continue
			}
			v := bitem.ValueFor(month)
			if v.Sign() < 0 {
				revenue = revenue.Add(v.Neg())
			} else {
				expense = expense.Add(v)
			}
		}
		var v decimal.Decimal
		switch measure {
		case domain.DeptRevenue:
			v = revenue.Round(2)
		case domain.DeptExpense:
			v = expense.Round(2)
		default:
			v = revenue.Sub(expense).Round(2)
		}
		if item.Negative {
			v = v.Neg()
		}
		entries = append(entries, domain.BudgetValue{BudgetID: b.BudgetID, Value: v})
	}
	return &domain.ItemValue{BudgetValues: entries}
}
