package ledgerexport_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/report_engine/internal/apperrors"
	"github.com/finboard/report_engine/internal/ledgerexport"
)

func txnDoc(rows ledgerexport.RowList) *ledgerexport.Document {
	return &ledgerexport.Document{
		Columns: ledgerexport.ColumnList{Column: []ledgerexport.ColumnDef{
			{ColTitle: "Date"},
			{ColTitle: "Transaction Type"},
			{ColTitle: "Num"},
			{ColTitle: "Name"},
			{ColTitle: "Memo/Description"},
			{ColTitle: "Split"},
			{ColTitle: "Amount"},
			{ColTitle: "Account"},
			{ColTitle: "Class"},
		}},
		Rows: rows,
	}
}

func dataRow(cells ...ledgerexport.ColData) ledgerexport.Row {
	return ledgerexport.Row{Type: ledgerexport.RowData, ColData: cells}
}

func TestParseFlattensNestedSections(t *testing.T) {
	inner := ledgerexport.RowList{Row: []ledgerexport.Row{
		dataRow(
			ledgerexport.ColData{Value: "2025-03-15"},
			ledgerexport.ColData{Value: "Invoice", ID: "txn-9"},
			ledgerexport.ColData{Value: "1042"},
			ledgerexport.ColData{Value: "Acme Co"},
			ledgerexport.ColData{Value: "monthly services"},
			ledgerexport.ColData{Value: "Accounts Receivable"},
			ledgerexport.ColData{Value: "150.25"},
			ledgerexport.ColData{Value: "Sales", ID: "acc-4000"},
			ledgerexport.ColData{Value: "East", ID: "cls-1"},
		),
		// Summary row with no transaction type is skipped.
		dataRow(
			ledgerexport.ColData{Value: ""},
			ledgerexport.ColData{Value: ""},
			ledgerexport.ColData{},
			ledgerexport.ColData{},
			ledgerexport.ColData{},
			ledgerexport.ColData{},
			ledgerexport.ColData{Value: "150.25"},
			ledgerexport.ColData{},
			ledgerexport.ColData{},
		),
	}}
	doc := txnDoc(ledgerexport.RowList{Row: []ledgerexport.Row{
		{Type: ledgerexport.RowSection, Rows: &inner},
	}})

	lines, err := ledgerexport.Parse(doc)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	l := lines[0]
	assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), l.TxnDate)
	assert.Equal(t, "Invoice", l.TxnType)
	assert.Equal(t, "1042", l.DocNumber)
	assert.Equal(t, "Acme Co", l.Vendor)
	assert.Equal(t, "monthly services", l.Memo)
	assert.Equal(t, "Accounts Receivable", l.SplitAccount)
	assert.True(t, l.Amount.Equal(decimal.RequireFromString("150.25")))
	assert.Equal(t, "acc-4000", l.AccountExternalID)
	assert.Equal(t, "cls-1", l.ClassExternalID)
	assert.Equal(t, "txn-9", l.QboID)
}

func TestParseFallsBackToDisplayValueForIDs(t *testing.T) {
	doc := txnDoc(ledgerexport.RowList{Row: []ledgerexport.Row{
		dataRow(
			ledgerexport.ColData{Value: "2025-03-01"},
			ledgerexport.ColData{Value: "Bill"},
			ledgerexport.ColData{},
			ledgerexport.ColData{},
			ledgerexport.ColData{},
			ledgerexport.ColData{},
			ledgerexport.ColData{Value: "9.99"},
			ledgerexport.ColData{Value: "Utilities"}, // no external id on the cell
			ledgerexport.ColData{},
		),
	}})

	lines, err := ledgerexport.Parse(doc)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Utilities", lines[0].AccountExternalID)
	assert.Equal(t, "", lines[0].ClassExternalID)
}

func TestParseUnparsableAmountIsZero(t *testing.T) {
	doc := txnDoc(ledgerexport.RowList{Row: []ledgerexport.Row{
		dataRow(
			ledgerexport.ColData{Value: "2025-03-01"},
			ledgerexport.ColData{Value: "Bill"},
			ledgerexport.ColData{},
			ledgerexport.ColData{},
			ledgerexport.ColData{},
			ledgerexport.ColData{},
			ledgerexport.ColData{Value: "n/a"},
			ledgerexport.ColData{},
			ledgerexport.ColData{},
		),
	}})

	lines, err := ledgerexport.Parse(doc)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Amount.IsZero())
}

func TestParseMissingRequiredColumn(t *testing.T) {
	doc := &ledgerexport.Document{
		Columns: ledgerexport.ColumnList{Column: []ledgerexport.ColumnDef{
			{ColTitle: "Date"},
			{ColTitle: "Amount"},
		}},
	}
	_, err := ledgerexport.Parse(doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMalformedExport)
}

func TestParseBalanceSheetEmitsHeaderBalances(t *testing.T) {
	children := ledgerexport.RowList{Row: []ledgerexport.Row{
		dataRow(ledgerexport.ColData{Value: "Checking", ID: "acc-1001"}, ledgerexport.ColData{Value: "800"}),
		dataRow(ledgerexport.ColData{}, ledgerexport.ColData{Value: "1300"}), // summary row, no account
	}}
	doc := &ledgerexport.Document{
		Columns: ledgerexport.ColumnList{Column: []ledgerexport.ColumnDef{
			{ColTitle: "Account"},
			{ColTitle: "Money"},
		}},
		Rows: ledgerexport.RowList{Row: []ledgerexport.Row{
			{
				Type: ledgerexport.RowSection,
				Header: &ledgerexport.Header{ColData: []ledgerexport.ColData{
					{Value: "Cash", ID: "acc-1000"},
					{Value: "500"},
				}},
				Rows: &children,
			},
		}},
	}

	lines, err := ledgerexport.ParseBalanceSheet(doc)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	// The parent's own balance comes first, then its children.
	assert.Equal(t, "acc-1000", lines[0].AccountExternalID)
	assert.True(t, lines[0].Amount.Equal(decimal.RequireFromString("500")))
	assert.Equal(t, "acc-1001", lines[1].AccountExternalID)
	assert.True(t, lines[1].Amount.Equal(decimal.RequireFromString("800")))
}
