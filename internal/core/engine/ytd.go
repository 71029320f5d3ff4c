package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finboard/report_engine/internal/core/domain"
)

// yearToDate accumulates one item across the year: the previous month's YTD
// value plus this month's current-period value. Metric items with the
// allow-blank setting propagate a missing operand as nil instead of a partial
// sum. Prior-day balance items use a copy strategy instead: every month after
// January repeats January's current-period value, and January repeats its own.
func (e *Engine) yearToDate(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]

	if t := item.Type; t != nil && t.Kind == domain.ItemLedgerAccount && t.LedgerView == domain.ViewPriorDay {
		return e.priorDayYTD(c, itemIdx, col)
	}

	currentCol := c.Def.ColumnBy(currentTypeFor(col.Type), domain.RangeCurrentPeriod, domain.YearCurrent)
	var current *domain.ItemValue
	if currentCol != nil {
		current = e.Compute(c, itemIdx, currentCol)
	}
	previous := snapshotValue(c.Previous, item.ItemID, col.ColumnID)

	allowBlank := item.Type != nil && item.Type.Kind == domain.ItemMetric && item.Type.AllowBlank
	if allowBlank {
		// January has no previous snapshot by construction; only a genuinely
		// blank operand nils the result.
		missingPrev := c.Previous != nil && (previous == nil || previous.Value == nil)
		missingCur := current == nil || current.Value == nil
		if missingPrev || missingCur {
			return &domain.ItemValue{Value: nil}
		}
	}

	total := decimal.Zero
	if previous != nil && previous.Value != nil {
		total = total.Add(*previous.Value).Round(2)
	}
	if current != nil && current.Value != nil {
		total = total.Add(*current.Value).Round(2)
	}
	return &domain.ItemValue{Value: &total, AccumulatedValue: total}
}

// priorDayYTD copies January's current-period value unchanged for any month
// after January; in January it copies the month's own current-period value.
func (e *Engine) priorDayYTD(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]
	currentCol := c.Def.ColumnBy(currentTypeFor(col.Type), domain.RangeCurrentPeriod, domain.YearCurrent)
	if currentCol == nil {
		return nil
	}

	if c.Data.StartDate.Month() == time.January {
		own := e.Compute(c, itemIdx, currentCol)
		if own == nil || own.Value == nil {
			return nil
		}
		v := *own.Value
		return &domain.ItemValue{Value: &v, AccumulatedValue: v}
	}

	jan := snapshotValue(c.January, item.ItemID, currentCol.ColumnID)
	if jan == nil || jan.Value == nil {
		return nil
	}
	v := *jan.Value
	return &domain.ItemValue{Value: &v, AccumulatedValue: v}
}

// currentTypeFor maps a YTD column's type onto the current-period column type
// its accumulation reads from.
func currentTypeFor(ct domain.ColumnType) domain.ColumnType {
	if ct == domain.ColGrossActual {
		return domain.ColGrossActual
	}
	return domain.ColActual
}
