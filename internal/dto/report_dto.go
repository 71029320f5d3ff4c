package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finboard/report_engine/internal/core/domain"
)

// ItemAccountValueResponse is one per-mapping (or per-vendor) breakdown entry.
type ItemAccountValueResponse struct {
	AccountID string          `json:"accountID,omitempty"`
	ClassID   string          `json:"classID,omitempty"`
	Vendor    string          `json:"vendor,omitempty"`
	Value     decimal.Decimal `json:"value"`
}

// BudgetValueResponse is one per-budget entry of a budget-column cell.
type BudgetValueResponse struct {
	BudgetID string          `json:"budgetID"`
	Value    decimal.Decimal `json:"value"`
}

// ItemValueResponse is one computed cell of a snapshot.
type ItemValueResponse struct {
	ItemID                     string                     `json:"itemID"`
	ColumnID                   string                     `json:"columnID"`
	Value                      *decimal.Decimal           `json:"value"`
	ColumnType                 string                     `json:"columnType"`
	AccumulatedValue           decimal.Decimal            `json:"accumulatedValue"`
	DependencyAccumulatedValue *decimal.Decimal           `json:"dependencyAccumulatedValue,omitempty"`
	ItemAccountValues          []ItemAccountValueResponse `json:"itemAccountValues,omitempty"`
	BudgetValues               []BudgetValueResponse      `json:"budgetValues,omitempty"`
}

// ItemValuesResponse is the full cell set of one snapshot.
type ItemValuesResponse struct {
	ReportID   string              `json:"reportID"`
	StartDate  string              `json:"startDate"`
	EndDate    string              `json:"endDate"`
	PeriodType string              `json:"periodType"`
	Values     []ItemValueResponse `json:"values"`
}

// ToItemValuesResponse converts domain cells to the response shape.
func ToItemValuesResponse(reportID string, start, end time.Time, periodType domain.PeriodType, values []domain.ItemValue) ItemValuesResponse {
	out := ItemValuesResponse{
		ReportID:   reportID,
		StartDate:  start.Format("2006-01-02"),
		EndDate:    end.Format("2006-01-02"),
		PeriodType: string(periodType),
		Values:     make([]ItemValueResponse, 0, len(values)),
	}
	for i := range values {
		v := &values[i]
		resp := ItemValueResponse{
			ItemID:                     v.ItemID,
			ColumnID:                   v.ColumnID,
			Value:                      v.Value,
			ColumnType:                 string(v.ColumnType),
			AccumulatedValue:           v.AccumulatedValue,
			DependencyAccumulatedValue: v.DependencyAccumulatedValue,
		}
		for _, av := range v.ItemAccountValues {
			resp.ItemAccountValues = append(resp.ItemAccountValues, ItemAccountValueResponse{
				AccountID: av.AccountID,
				ClassID:   av.ClassID,
				Vendor:    av.Vendor,
				Value:     av.Value,
			})
		}
		for _, bv := range v.BudgetValues {
			resp.BudgetValues = append(resp.BudgetValues, BudgetValueResponse{
				BudgetID: bv.BudgetID,
				Value:    bv.Value,
			})
		}
		out.Values = append(out.Values, resp)
	}
	return out
}

// DigestsResponse is the stored dependency-digest map of one snapshot.
type DigestsResponse struct {
	ReportID string            `json:"reportID"`
	Digests  map[string]string `json:"digests"`
}

// RefreshRequest asks for one report period to be recomputed.
type RefreshRequest struct {
	StartDate  string `json:"startDate" binding:"required"`
	EndDate    string `json:"endDate" binding:"required"`
	PeriodType string `json:"periodType" binding:"required,oneof=DAILY MONTHLY ANNUAL"`
}

// LedgerLineResponse is one imported ledger row.
type LedgerLineResponse struct {
	LineID            string          `json:"lineID"`
	TxnDate           string          `json:"txnDate"`
	TxnType           string          `json:"txnType"`
	DocNumber         string          `json:"docNumber,omitempty"`
	Memo              string          `json:"memo,omitempty"`
	Vendor            string          `json:"vendor,omitempty"`
	SplitAccount      string          `json:"splitAccount,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	AccountExternalID string          `json:"accountExternalID"`
	ClassExternalID   string          `json:"classExternalID,omitempty"`
	QboID             string          `json:"qboID,omitempty"`
}

// ToLedgerLinesResponse converts domain ledger rows to the response shape.
func ToLedgerLinesResponse(lines []domain.LineItemDetail) []LedgerLineResponse {
	out := make([]LedgerLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, LedgerLineResponse{
			LineID:            l.LineID,
			TxnDate:           l.TxnDate.Format("2006-01-02"),
			TxnType:           l.TxnType,
			DocNumber:         l.DocNumber,
			Memo:              l.Memo,
			Vendor:            l.Vendor,
			SplitAccount:      l.SplitAccount,
			Amount:            l.Amount,
			AccountExternalID: l.AccountExternalID,
			ClassExternalID:   l.ClassExternalID,
			QboID:             l.QboID,
		})
	}
	return out
}
