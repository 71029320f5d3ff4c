package engine

import (
	"github.com/shopspring/decimal"

	"github.com/finboard/report_engine/internal/core/domain"
)

// totals sums the item's siblings, excluding itself. A sibling with children
// contributes its own totals child's value; a leaf sibling contributes its own
// value. Each contribution is negated when the sibling's negative-for-total
// flag is set. When the parent itself carries a value expression for this
// column type, its (sign-adjusted) expression value joins the sum.
func (e *Engine) totals(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]

	total := decimal.Zero
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
		if v == nil || v.Value == nil {
			continue
		}
		x := *v.Value
		if sib.NegativeForTotal {
			x = x.Neg()
		}
		total = total.Add(x).Round(2)
	}

	if item.ParentIdx >= 0 {
		parent := &c.Def.Items[item.ParentIdx]
		if vc := parent.ValueConfigFor(col.Type); vc != nil {
			pv := e.evalOwnExpression(c, parent, vc, col)
			if pv != nil {
				x := *pv
				if parent.Negative {
					x = x.Neg()
				}
				total = total.Add(x).Round(2)
			}
		}
	}

	accumulated := prevAccumulated(c, item.ItemID, col.ColumnID).Add(total).Round(2)
	return &domain.ItemValue{
		Value:            &total,
		AccumulatedValue: accumulated,
	}
}

// evalOwnExpression evaluates an expression standalone, without going through
// the owning item's dispatch (the totals algorithm reads the parent's
// expression directly).
func (e *Engine) evalOwnExpression(c *Context, item *domain.Item, vc *domain.ValueConfig, col *domain.Column) *decimal.Decimal {
	if vc.Operator == domain.OpSum {
		v := e.evalSum(c, vc, col)
		return &v
	}
	a, _ := e.resolveOperand(c, vc.Operands[0], col)
	b, _ := e.resolveOperand(c, vc.Operands[1], col)
	v := binaryOp(operandValue(a), operandValue(b), vc.Operator)
	return &v
}
