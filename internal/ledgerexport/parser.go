package ledgerexport

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finboard/report_engine/internal/apperrors"
	"github.com/finboard/report_engine/internal/core/domain"
)

// Column titles used by the transaction-detail export layout.
const (
	titleDate        = "Date"
	titleTxnType     = "Transaction Type"
	titleNum         = "Num"
	titleMemo        = "Memo/Description"
	titleName        = "Name"
	titleSplit       = "Split"
	titleAmount      = "Amount"
	titleClass       = "Class"
	titleAccount     = "Account"
	titleBalanceAcct = "Account"
	titleBalanceAmt  = "Money"
)

const exportDateLayout = "2006-01-02"

// Parse flattens a transaction-detail export document into line rows. The
// column index map is built once from the column titles; the row forest is
// walked recursively, Section rows recursed into and Data rows extracted by
// position. Rows whose transaction-type discriminator is empty are skipped.
// A document missing the discriminator or amount column is malformed and
// aborts the import before any snapshot replacement.
func Parse(doc *Document) ([]domain.LineItemDetail, error) {
	idx, err := buildIndex(doc, titleTxnType, titleAmount)
	if err != nil {
		return nil, err
	}
	var lines []domain.LineItemDetail
	walkRows(doc.Rows, func(cells []ColData) {
		txnType := at(cells, idx[titleTxnType]).Value
		if txnType == "" {
			return
		}
		lines = append(lines, domain.LineItemDetail{
			TxnDate:           parseDate(at(cells, idx[titleDate]).Value),
			TxnType:           txnType,
			DocNumber:         at(cells, idx[titleNum]).Value,
			Memo:              at(cells, idx[titleMemo]).Value,
			Vendor:            at(cells, idx[titleName]).Value,
			SplitAccount:      at(cells, idx[titleSplit]).Value,
			Amount:            parseAmount(at(cells, idx[titleAmount]).Value),
			AccountExternalID: externalID(at(cells, idx[titleAccount])),
			ClassExternalID:   externalID(at(cells, idx[titleClass])),
			QboID:             at(cells, idx[titleTxnType]).ID,
		})
	})
	return lines, nil
}

// ParseBalanceSheet flattens the balance-sheet export layout, which carries
// only an account column and a money column. A Header row whose own ColData
// names an account id represents that parent account's own balance: it emits
// one extra line before its children are parsed.
func ParseBalanceSheet(doc *Document) ([]domain.LineItemDetail, error) {
	idx, err := buildIndex(doc, titleBalanceAcct, titleBalanceAmt)
	if err != nil {
		return nil, err
	}
	var lines []domain.LineItemDetail
	var walk func(rl RowList)
	walk = func(rl RowList) {
		for _, row := range rl.Row {
			switch row.Type {
			case RowSection:
				if row.Header != nil {
					if acct := at(row.Header.ColData, idx[titleBalanceAcct]); acct.ID != "" {
						lines = append(lines, balanceLine(acct, at(row.Header.ColData, idx[titleBalanceAmt])))
					}
				}
				if row.Rows != nil {
					walk(*row.Rows)
				}
			case RowData:
				acct := at(row.ColData, idx[titleBalanceAcct])
				if acct.ID == "" && acct.Value == "" {
					continue
				}
				lines = append(lines, balanceLine(acct, at(row.ColData, idx[titleBalanceAmt])))
			}
		}
	}
	walk(doc.Rows)
	return lines, nil
}

func balanceLine(acct, money ColData) domain.LineItemDetail {
	return domain.LineItemDetail{
		AccountExternalID: externalID(acct),
		Amount:            parseAmount(money.Value),
	}
}

// buildIndex maps column titles to positions. The required titles must be
// present for the document to be parseable at all.
func buildIndex(doc *Document, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(doc.Columns.Column))
	for i := range doc.Columns.Column {
		title := doc.Columns.Column[i].ColTitle
		if _, dup := idx[title]; !dup {
			idx[title] = i
		}
	}
	for _, title := range required {
		if _, ok := idx[title]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", apperrors.ErrMalformedExport, title)
		}
	}
	// Absent optional columns resolve to -1 so positional reads yield a zero cell.
	for _, title := range []string{titleDate, titleNum, titleMemo, titleName, titleSplit, titleClass, titleAccount} {
		if _, ok := idx[title]; !ok {
			idx[title] = -1
		}
	}
	return idx, nil
}

func walkRows(rl RowList, visit func(cells []ColData)) {
	for _, row := range rl.Row {
		if row.Type == RowSection {
			if row.Rows != nil {
				walkRows(*row.Rows, visit)
			}
			continue
		}
		if len(row.ColData) > 0 {
			visit(row.ColData)
		}
	}
}

func externalID(cell ColData) string {
	if cell.ID != "" {
		return cell.ID
	}
	return cell.Value
}

// parseAmount reads a decimal amount from export text; absent or unparsable
// text yields zero.
func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(exportDateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
