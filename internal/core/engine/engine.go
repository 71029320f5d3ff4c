package engine

import (
	"github.com/finboard/report_engine/internal/core/domain"
)

// Engine produces every (item, column) cell value of a report snapshot. The
// multi-axis dispatch (report kind x column kind x item kind) is a closed
// decision table: each branch resolves to exactly one strategy and a cell that
// no strategy claims is nil, never a silent zero.
type Engine struct{}

// New creates a computation engine. The engine itself is stateless; all pass
// state lives in the Context.
func New() *Engine {
	return &Engine{}
}

// ComputeAll evaluates every (item, column) pair of the context's definition
// and returns the non-nil cells in item-then-column order.
func (e *Engine) ComputeAll(c *Context) []domain.ItemValue {
	var out []domain.ItemValue
	for idx := range c.Def.Items {
		for ci := range c.Def.Columns {
			if v := e.Compute(c, idx, &c.Def.Columns[ci]); v != nil {
				out = append(out, *v)
			}
		}
	}
	return out
}

// Compute resolves one cell. It returns nil when required inputs are absent
// (a prior/previous-period column with no such snapshot yet) or when the item
// carries neither a type config nor the totals flag. Results are memoized per
// (item, column) within the context; a cyclic expression resolves its
// in-flight operand as absent rather than recursing forever.
func (e *Engine) Compute(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]
	key := cellKey{itemID: item.ItemID, columnID: col.ColumnID}
	if v, ok := c.memo[key]; ok {
		return v
	}
	if c.inFlight[key] {
		return nil
	}
	c.inFlight[key] = true
	v := e.dispatch(c, itemIdx, col)
	delete(c.inFlight, key)

	if v != nil {
		v.ItemID = item.ItemID
		v.ColumnID = col.ColumnID
		if v.ColumnType == "" {
			v.ColumnType = col.Type.ValueClass()
		}
	}
	c.memo[key] = v
	return v
}

func (e *Engine) dispatch(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]
	if item.Type == nil && !item.Totals {
		return nil
	}

	// Departmental reports route purely by column type.
	if c.Def.Kind == domain.ReportDepartmental {
		return e.departmental(c, itemIdx, col)
	}

	// Prior-year and previous-period columns copy from the designated other
	// snapshot; variance columns keep their own subtraction semantics.
	if (col.Year == domain.YearPrior || col.Year == domain.YearPreviousPeriod) && col.Type != domain.ColVariance {
		return e.carryForward(c, itemIdx, col)
	}

	switch {
	case col.Type.IsActualFamily():
		return e.actuals(c, itemIdx, col)
	case col.Type.IsPercentageFamily():
		return e.expressionValue(c, itemIdx, col)
	case col.Type == domain.ColVariance:
		return e.variance(c, itemIdx, col)
	case col.Type.IsBudget():
		return e.budget(c, itemIdx, col)
	}
	return nil
}

// actuals is the sub-dispatch for actual and gross_actual cells, checked in
// precedence order.
func (e *Engine) actuals(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]
	t := item.Type

	switch {
	case t != nil && t.Kind == domain.ItemReference:
		return e.reference(c, itemIdx, col)

	case item.ValueConfigFor(col.Type) != nil:
		return e.expressionValue(c, itemIdx, col)

	case item.Totals:
		return e.totals(c, itemIdx, col)

	case t != nil && t.Kind == domain.ItemMetric && col.Range != domain.RangeYTD:
		return e.metricValue(c, itemIdx, col)

	case t != nil && t.Kind == domain.ItemLedgerAccount:
		// Prior-day balance items accumulate nothing across the year; their
		// YTD cells copy January instead of re-aggregating.
		if t.LedgerView == domain.ViewPriorDay && col.Range == domain.RangeYTD {
			return e.yearToDate(c, itemIdx, col)
		}
		if c.Def.Kind == domain.ReportVendor {
			return e.vendorAggregation(c, itemIdx, col)
		}
		return e.ledgerAggregation(c, itemIdx, col)

	default:
		if col.Range == domain.RangeCurrentPeriod || col.Range == domain.RangeMTD {
			return nil
		}
		return e.yearToDate(c, itemIdx, col)
	}
}
