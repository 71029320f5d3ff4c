package engine

import (
	"github.com/shopspring/decimal"

	"github.com/finboard/report_engine/internal/core/domain"
)

// variance subtracts the prior (or previous-period) actual value from the
// current actual value of the same item, with a matching per-account breakdown
// difference. A missing operand propagates nil, never zero.
func (e *Engine) variance(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]

	actualCol := c.Def.ColumnBy(domain.ColActual, col.Range, domain.YearCurrent)
	if actualCol == nil {
		return nil
	}
	current := e.Compute(c, itemIdx, actualCol)

	other := c.Previous
	if col.Year == domain.YearPrior {
		other = c.PriorYear
	}
	previous := snapshotValue(other, item.ItemID, actualCol.ColumnID)

	if current == nil || current.Value == nil || previous == nil || previous.Value == nil {
		return nil
	}

	v := current.Value.Sub(*previous.Value).Round(2)
	out := &domain.ItemValue{Value: &v}

	for _, cur := range current.ItemAccountValues {
		diff := cur.Value
		for _, prev := range previous.ItemAccountValues {
			if prev.AccountID == cur.AccountID && prev.ClassID == cur.ClassID && prev.Vendor == cur.Vendor {
				diff = cur.Value.Sub(prev.Value).Round(2)
				break
			}
		}
		out.ItemAccountValues = append(out.ItemAccountValues, domain.ItemAccountValue{
			AccountID: cur.AccountID,
			ClassID:   cur.ClassID,
			Vendor:    cur.Vendor,
			Value:     diff,
		})
	}
	return out
}

// carryForward copies the same item's cell from the designated other snapshot:
// one year back for prior columns, the immediately preceding snapshot for
// previous-period columns. The source cell is the matching current-year
// column. Returns nil when no such snapshot has been computed yet.
func (e *Engine) carryForward(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]

	src := c.Previous
	if col.Year == domain.YearPrior {
		src = c.PriorYear
	}
	if src == nil {
		return nil
	}

	srcCol := c.Def.ColumnBy(col.Type, col.Range, domain.YearCurrent)
	if srcCol == nil {
		return nil
	}
	v := snapshotValue(src, item.ItemID, srcCol.ColumnID)
	if v == nil {
		return nil
	}

	out := &domain.ItemValue{
		ColumnType:       v.ColumnType,
		AccumulatedValue: v.AccumulatedValue,
	}
	if v.Value != nil {
		val := *v.Value
		out.Value = &val
	}
	out.ItemAccountValues = append(out.ItemAccountValues, v.ItemAccountValues...)
	return out
}

// reference copies value, accumulated values and columnType from the item
// named by the reference configuration, optionally under a different column
// range than requested. The source's derived columnType is reproduced exactly.
func (e *Engine) reference(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]
	t := item.Type

	refIdx := c.Def.ItemByIdentifier(t.ReferenceID)
	if refIdx < 0 {
		return nil
	}
	rng := col.Range
	if t.ReferenceRange != "" {
		rng = t.ReferenceRange
	}
	srcCol := c.Def.ColumnBy(col.Type, rng, col.Year)
	if srcCol == nil {
		srcCol = c.Def.ColumnBy(col.Type, rng, domain.YearCurrent)
	}
	if srcCol == nil {
		return nil
	}
	src := e.Compute(c, refIdx, srcCol)
	if src == nil {
		return nil
	}

	out := &domain.ItemValue{
		ColumnType:       src.ColumnType,
		AccumulatedValue: src.AccumulatedValue,
	}
	if src.Value != nil {
		v := *src.Value
		out.Value = &v
	}
	if src.DependencyAccumulatedValue != nil {
		d := *src.DependencyAccumulatedValue
		out.DependencyAccumulatedValue = &d
	}
	return out
}

// metricValue reads the pre-fetched external metric for the column's window.
// A missing reading is blank (nil) for allow-blank metrics and zero otherwise.
func (e *Engine) metricValue(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]
	start, end := c.Window(col.Range)

	v, _ := c.Metric(item.Type.MetricCode, start, end)
	if v == nil {
		if item.Type.AllowBlank {
			return &domain.ItemValue{Value: nil}
		}
		zero := decimal.Zero
		v = &zero
	}

	val := v.Round(2)
	if item.Negative {
		val = val.Neg()
	}
	accumulated := prevAccumulated(c, item.ItemID, col.ColumnID).Add(val).Round(2)
	return &domain.ItemValue{Value: &val, AccumulatedValue: accumulated}
}
