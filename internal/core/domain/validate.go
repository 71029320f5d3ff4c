package domain

import (
	"fmt"

	"github.com/finboard/report_engine/internal/apperrors"
)

// Validate checks a loaded report definition against the closed configuration
// variants. Unknown shapes fail here, at load time, instead of silently
// computing zero later.
func (r *ReportDefinition) Validate() error {
	seen := make(map[string]bool, len(r.Items))
	for i := range r.Items {
		it := &r.Items[i]
		if it.Identifier == "" {
			return fmt.Errorf("%w: item %s has no identifier", apperrors.ErrConfiguration, it.ItemID)
		}
		if seen[it.Identifier] {
			return fmt.Errorf("%w: duplicate item identifier %q", apperrors.ErrConfiguration, it.Identifier)
		}
		seen[it.Identifier] = true
		if it.ParentIdx >= len(r.Items) {
			return fmt.Errorf("%w: item %q parent index out of range", apperrors.ErrConfiguration, it.Identifier)
		}
		if it.Type != nil {
			if err := it.Type.validate(it.Identifier); err != nil {
				return err
			}
		}
		for vi := range it.Values {
			if err := it.Values[vi].validate(r, it.Identifier); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *TypeConfig) validate(identifier string) error {
	switch t.Kind {
	case ItemMetric:
		if t.MetricCode == "" {
			return fmt.Errorf("%w: metric item %q has no metric code", apperrors.ErrConfiguration, identifier)
		}
	case ItemLedgerAccount:
		switch t.LedgerView {
		case ViewWindow, ViewBalance, ViewPriorDay, ViewNetChange, ViewBank,
			ViewAccountsPayable, ViewTaxCollected, ViewDebitsOnly, ViewCreditsOnly:
		default:
			return fmt.Errorf("%w: item %q has unknown ledger view %q", apperrors.ErrConfiguration, identifier, t.LedgerView)
		}
	case ItemStatsExpression:
	case ItemReference:
		if t.ReferenceID == "" {
			return fmt.Errorf("%w: reference item %q has no reference identifier", apperrors.ErrConfiguration, identifier)
		}
	default:
		return fmt.Errorf("%w: item %q has unknown type kind %q", apperrors.ErrConfiguration, identifier, t.Kind)
	}
	return nil
}

func (v *ValueConfig) validate(r *ReportDefinition, identifier string) error {
	switch v.Operator {
	case OpAdd, OpSub, OpDiv, OpPercent:
		if len(v.Operands) != 2 {
			return fmt.Errorf("%w: item %q operator %q needs exactly two operands", apperrors.ErrConfiguration, identifier, v.Operator)
		}
	case OpSum:
		if len(v.Operands) == 0 {
			return fmt.Errorf("%w: item %q sum expression has no operands", apperrors.ErrConfiguration, identifier)
		}
	default:
		return fmt.Errorf("%w: item %q has unknown operator %q", apperrors.ErrConfiguration, identifier, v.Operator)
	}
	for _, op := range v.Operands {
		if op.Identifier == "" {
			return fmt.Errorf("%w: item %q expression has an unnamed operand", apperrors.ErrConfiguration, identifier)
		}
	}
	return nil
}
