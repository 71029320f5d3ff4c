package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerKind identifies one imported ledger snapshot family. Flow kinds hold
// dated transaction rows for the snapshot's window; balance kinds hold one
// balance row per account as of a reference day.
type LedgerKind string

const (
	LedgerGeneral         LedgerKind = "GENERAL"
	LedgerBank            LedgerKind = "BANK"
	LedgerAccountsPayable LedgerKind = "ACCOUNTS_PAYABLE"
	LedgerBalance         LedgerKind = "BALANCE"          // balances as of the period end
	LedgerOpeningBalance  LedgerKind = "OPENING_BALANCE"  // balances as of the day before the period start
	LedgerPriorDayBalance LedgerKind = "PRIOR_DAY_BALANCE" // balances as of the day before the period end
)

// FlowKind reports whether the kind's rows are dated transactions that must be
// filtered by the column's date window.
func (k LedgerKind) FlowKind() bool {
	switch k {
	case LedgerBalance, LedgerOpeningBalance, LedgerPriorDayBalance:
		return false
	}
	return true
}

// LineItemDetail is one flat transaction (or balance) row produced by the
// ledger importer.
type LineItemDetail struct {
	LineID            string          `json:"lineID"`
	TxnDate           time.Time       `json:"txnDate"`
	TxnType           string          `json:"txnType"`
	DocNumber         string          `json:"docNumber"`
	Memo              string          `json:"memo"`
	Vendor            string          `json:"vendor"`
	SplitAccount      string          `json:"splitAccount"`
	Amount            decimal.Decimal `json:"amount"`
	AccountExternalID string          `json:"accountExternalID"`
	ClassExternalID   string          `json:"classExternalID"`
	QboID             string          `json:"qboID"`
}

// LedgerSnapshot is the replaceable row collection for one (kind, date range).
// Imports swap the whole Lines slice in a single bulk operation.
type LedgerSnapshot struct {
	SnapshotID string           `json:"snapshotID"`
	CompanyID  string           `json:"companyID"`
	Kind       LedgerKind       `json:"kind"`
	StartDate  time.Time        `json:"startDate"`
	EndDate    time.Time        `json:"endDate"`
	Lines      []LineItemDetail `json:"lines"`
	ImportedAt time.Time        `json:"importedAt"`
}
