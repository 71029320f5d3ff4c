package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finboard/report_engine/internal/core/domain"
)

// vendorThreshold is the magnitude a vendor's summed amount must exceed for a
// breakdown row to be emitted.
var vendorThreshold = decimal.NewFromFloat(0.001)

type signFilter int

const (
	signAny signFilter = iota
	signDebits
	signCredits
)

// ledgerAggregation sums ledger rows per chart-of-account/class mapping,
// selecting the ledger view by the item's sub-kind. Each mapping yields one
// breakdown row; the cell value is the rounded, sign-adjusted sum over all
// mappings, and the accumulated value carries the previous period's running
// total forward.
func (e *Engine) ledgerAggregation(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]
	mappings := itemMappings(c, itemIdx)
	start, end := c.Window(col.Range)

	total := decimal.Zero
	accountValues := make([]domain.ItemAccountValue, 0, len(mappings))
	for _, m := range mappings {
		sum := e.viewSum(c, item.Type.LedgerView, m, start, end).Round(2)
		if item.Negative {
			sum = sum.Neg()
		}
		accountValues = append(accountValues, domain.ItemAccountValue{
			AccountID: m.AccountID,
			ClassID:   m.ClassID,
			Value:     sum,
		})
		total = total.Add(sum).Round(2)
	}

	accumulated := prevAccumulated(c, item.ItemID, col.ColumnID).Add(total).Round(2)
	return &domain.ItemValue{
		Value:             &total,
		AccumulatedValue:  accumulated,
		ItemAccountValues: accountValues,
	}
}

// itemMappings returns the item's account mappings, falling back to the
// parent's set when the item carries none of its own (totals items inherit
// their parent's mapping set).
func itemMappings(c *Context, itemIdx int) []domain.ItemAccount {
	item := &c.Def.Items[itemIdx]
	if len(item.Accounts) == 0 && item.ParentIdx >= 0 {
		return c.Def.Items[item.ParentIdx].Accounts
	}
	return item.Accounts
}

// viewSum selects the ledger view for one mapping and sums its matching rows.
func (e *Engine) viewSum(c *Context, view domain.LedgerView, m domain.ItemAccount, start, end time.Time) decimal.Decimal {
	skipClass := c.Def.SkipClassFilter
	switch view {
	case domain.ViewWindow:
		return matchSum(c.Ledger[domain.LedgerGeneral], m, &start, &end, skipClass, signAny)
	case domain.ViewBank:
		return matchSum(c.Ledger[domain.LedgerBank], m, &start, &end, skipClass, signAny)
	case domain.ViewAccountsPayable:
		return matchSum(c.Ledger[domain.LedgerAccountsPayable], m, &start, &end, skipClass, signAny)
	case domain.ViewBalance:
		return matchSum(c.Ledger[domain.LedgerBalance], m, nil, nil, true, signAny)
	case domain.ViewPriorDay:
		return matchSum(c.Ledger[domain.LedgerPriorDayBalance], m, nil, nil, true, signAny)
	case domain.ViewNetChange:
		closing := matchSum(c.Ledger[domain.LedgerBalance], m, nil, nil, true, signAny)
		opening := matchSum(c.Ledger[domain.LedgerOpeningBalance], m, nil, nil, true, signAny)
		return closing.Sub(opening)
	case domain.ViewTaxCollected:
		return e.taxCollectedSum(c, m, start, end)
	case domain.ViewDebitsOnly:
		return matchSum(c.Ledger[domain.LedgerGeneral], m, &start, &end, skipClass, signDebits)
	case domain.ViewCreditsOnly:
		return matchSum(c.Ledger[domain.LedgerGeneral], m, &start, &end, skipClass, signCredits)
	}
	return decimal.Zero
}

// taxCollectedSum is the window sum minus rows already represented in the bank
// or accounts-payable snapshots, matched by their external transaction id.
func (e *Engine) taxCollectedSum(c *Context, m domain.ItemAccount, start, end time.Time) decimal.Decimal {
	matched := make(map[string]bool)
	for _, row := range c.Ledger[domain.LedgerBank] {
		if row.QboID != "" {
			matched[row.QboID] = true
		}
	}
	for _, row := range c.Ledger[domain.LedgerAccountsPayable] {
		if row.QboID != "" {
			matched[row.QboID] = true
		}
	}

	sum := decimal.Zero
	for _, row := range c.Ledger[domain.LedgerGeneral] {
		if !rowMatches(row, m, &start, &end, c.Def.SkipClassFilter, signAny) {
			continue
		}
		if matched[row.QboID] {
			continue
		}
		sum = sum.Add(row.Amount)
	}
	return sum
}

// vendorAggregation is the vendor-scoped variant: rows matching the item's
// mappings are grouped by vendor identity, and a breakdown row is emitted only
// when the vendor's summed magnitude exceeds 0.001.
func (e *Engine) vendorAggregation(c *Context, itemIdx int, col *domain.Column) *domain.ItemValue {
	item := &c.Def.Items[itemIdx]
	mappings := itemMappings(c, itemIdx)
	start, end := c.Window(col.Range)

	byVendor := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, row := range c.Ledger[domain.LedgerGeneral] {
		for _, m := range mappings {
			if !rowMatches(row, m, &start, &end, c.Def.SkipClassFilter, signAny) {
				continue
			}
			byVendor[row.Vendor] = byVendor[row.Vendor].Add(row.Amount)
			total = total.Add(row.Amount)
			break
		}
	}

	vendors := make([]string, 0, len(byVendor))
	for v := range byVendor {
		vendors = append(vendors, v)
	}
	sort.Strings(vendors)

	var accountValues []domain.ItemAccountValue
	for _, v := range vendors {
		sum := byVendor[v]
		if sum.Abs().Cmp(vendorThreshold) <= 0 {
			continue
		}
		sum = sum.Round(2)
		if item.Negative {
			sum = sum.Neg()
		}
		accountValues = append(accountValues, domain.ItemAccountValue{Vendor: v, Value: sum})
	}

	total = total.Round(2)
	if item.Negative {
		total = total.Neg()
	}
	accumulated := prevAccumulated(c, item.ItemID, col.ColumnID).Add(total).Round(2)
	return &domain.ItemValue{
		Value:             &total,
		AccumulatedValue:  accumulated,
		ItemAccountValues: accountValues,
	}
}

// rowMatches applies the account, class, window and sign filters for one row.
// A nil window accepts any date (balance views); an empty mapping class or the
// report's skip-class setting disables the class filter.
func rowMatches(row domain.LineItemDetail, m domain.ItemAccount, start, end *time.Time, skipClass bool, sf signFilter) bool {
	if row.AccountExternalID != m.AccountID {
		return false
	}
	if !skipClass && m.ClassID != "" && row.ClassExternalID != m.ClassID {
		return false
	}
	if start != nil && end != nil {
		if row.TxnDate.Before(*start) || row.TxnDate.After(*end) {
			return false
		}
	}
	switch sf {
	case signDebits:
		return row.Amount.Sign() > 0
	case signCredits:
		return row.Amount.Sign() < 0
	}
	return true
}

func matchSum(rows []domain.LineItemDetail, m domain.ItemAccount, start, end *time.Time, skipClass bool, sf signFilter) decimal.Decimal {
	sum := decimal.Zero
	for _, row := range rows {
		if rowMatches(row, m, start, end, skipClass, sf) {
			sum = sum.Add(row.Amount)
		}
	}
	return sum
}
