package engine

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finboard/report_engine/internal/core/domain"
)

// denominatorGuard is the magnitude below which a denominator is treated as
// zero: ratio operators return 0 instead of exploding on near-zero input.
var denominatorGuard = decimal.NewFromFloat(0.001)

var oneHundred = decimal.NewFromInt(100)

// binaryOp applies one guarded arithmetic operator, rounding to 2 decimals at
// the boundary. Division and percentage return 0 when |b| <= 0.001.
func binaryOp(a, b decimal.Decimal, op domain.Operator) decimal.Decimal {
	switch op {
	case domain.OpAdd:
		return a.Add(b).Round(2)
	case domain.OpSub:
		return a.Sub(b).Round(2)
	case domain.OpDiv:
		if b.Abs().Cmp(denominatorGuard) <= 0 {
			return decimal.Zero
		}
		return a.Div(b).Round(2)
	case domain.OpPercent:
		if b.Abs().Cmp(denominatorGuard) <= 0 {
			return decimal.Zero
		}
		return a.Div(b).Mul(oneHundred).Round(2)
	}
	return decimal.Zero
}

// expressionValue evaluates the item's value expression for the requested
// column type. Percentage-family cells without an expression resolve to nil.
func (e *Engine) expressionValue(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]
	vc := item.ValueConfigFor(col.Type)
	if vc == nil {
		return nil
	}

	if vc.Operator == domain.OpSum {
		v := e.evalSum(c, vc, col)
		return &domain.ItemValue{Value: &v}
	}

	a, aCross := e.resolveOperand(c, vc.Operands[0], col)
	b, bCross := e.resolveOperand(c, vc.Operands[1], col)
	v := binaryOp(operandValue(a), operandValue(b), vc.Operator)
	out := &domain.ItemValue{Value: &v}

	// Ratio results are percentage-class even when the destination column is
	// nominally actual; references copying the cell keep that class.
	if vc.Operator == domain.OpDiv || vc.Operator == domain.OpPercent {
		out.ColumnType = domain.ColPercentage
	}

	// A cross-report operand carries its accumulated value onto the produced
	// cell so downstream percentage consumers can reference it.
	if col.Type.IsPercentageFamily() {
		if aCross && a != nil {
			acc := a.AccumulatedValue
			out.DependencyAccumulatedValue = &acc
		} else if bCross && b != nil {
			acc := b.AccumulatedValue
			out.DependencyAccumulatedValue = &acc
		}
	}
	return out
}

// evalSum evaluates the n-ary sum operator: each operand contributes its value
// with its sign flag applied; absent operands contribute nothing.
func (e *Engine) evalSum(c *Context, vc *domain.ValueConfig, col *domain.Column) decimal.Decimal {
	total := decimal.Zero
	for _, op := range vc.Operands {
		v, _ := e.resolveOperand(c, op, col)
		if v == nil || v.Value == nil {
			continue
		}
		x := *v.Value
		if op.Negative {
			x = x.Neg()
		}
		total = total.Add(x).Round(2)
	}
	return total
}

// resolveOperand resolves one operand reference to a cell. Unqualified
// operands resolve recursively within the current snapshot; operands qualified
// as "<dependentReportKind>/<identifier>" read the dependent report's
// matching-period snapshot. The second result reports the cross-report case.
// Absent operands (unknown identifier, undeclared column, missing dependent
// snapshot) resolve to nil; arithmetic callers coerce that to 0.
func (e *Engine) resolveOperand(c *Context, op domain.OperandRef, col *domain.Column) (*domain.ItemValue, bool) {
	ct := op.ColumnType
	if ct == "" {
		ct = domain.ColActual
	}
	rng := op.Range
	if rng == "" {
		rng = col.Range
	}
	yr := op.Year
	if yr == "" {
		yr = domain.YearCurrent
	}

	if kind, ident, qualified := strings.Cut(op.Identifier, "/"); qualified {
		dep := c.Dependents[kind]
		if dep == nil || dep.Data == nil {
			return nil, true
		}
		di := dep.Def.ItemByIdentifier(ident)
		if di < 0 {
			return nil, true
		}
		dc := dep.Def.ColumnBy(ct, rng, yr)
		if dc == nil {
			return nil, true
		}
		return snapshotValue(dep.Data, dep.Def.Items[di].ItemID, dc.ColumnID), true
	}

	ii := c.Def.ItemByIdentifier(op.Identifier)
	if ii < 0 {
		return nil, false
	}
	cc := c.Def.ColumnBy(ct, rng, yr)
	if cc == nil {
		return nil, false
	}
	return e.Compute(c, ii, cc), false
}

// operandValue coerces an absent operand to zero for arithmetic use.
func operandValue(v *domain.ItemValue) decimal.Decimal {
	if v == nil || v.Value == nil {
		return decimal.Zero
	}
	return *v.Value
}
