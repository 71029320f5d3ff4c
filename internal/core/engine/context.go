package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finboard/report_engine/internal/core/domain"
)

// DependentReport bundles another report's definition with its matching-period
// snapshot, used to resolve dependency-qualified operand references.
type DependentReport struct {
	Def  *domain.ReportDefinition
	Data *domain.ReportData
}

// MetricKey addresses one pre-fetched metric reading.
type MetricKey struct {
	Code  string
	Start time.Time
	End   time.Time
}

// Context carries every shared read input for one refresh pass, pre-fetched
// once before the per-cell loop so no strategy performs network or database
// round-trips. It also memoizes computed cells: operand resolution recurses
// through Engine.Compute and each (item, column) pair is evaluated at most
// once per pass.
type Context struct {
	Def  *domain.ReportDefinition
	Data *domain.ReportData

	// Neighbouring snapshots; nil when the period has never been computed.
	Previous  *domain.ReportData // immediately preceding same-period-type snapshot
	PriorYear *domain.ReportData // same window one year back
	January   *domain.ReportData // January of the snapshot's year, for the prior-day strategy

	Dependents map[string]*DependentReport
	Ledger     map[domain.LedgerKind][]domain.LineItemDetail
	Budgets    []domain.Budget
	Metrics    map[MetricKey]*decimal.Decimal

	memo     map[cellKey]*domain.ItemValue
	inFlight map[cellKey]bool
}

type cellKey struct {
	itemID   string
	columnID string
}

// NewContext prepares a compute context for one snapshot.
func NewContext(def *domain.ReportDefinition, data *domain.ReportData) *Context {
	return &Context{
		Def:        def,
		Data:       data,
		Dependents: make(map[string]*DependentReport),
		Ledger:     make(map[domain.LedgerKind][]domain.LineItemDetail),
		Metrics:    make(map[MetricKey]*decimal.Decimal),
		memo:       make(map[cellKey]*domain.ItemValue),
		inFlight:   make(map[cellKey]bool),
	}
}

// Window resolves a column range to the concrete date window of this snapshot.
func (c *Context) Window(r domain.ColumnRange) (time.Time, time.Time) {
	end := c.Data.EndDate
	switch r {
	case domain.RangeMTD:
		return time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location()), end
	case domain.RangeYTD:
		return time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, end.Location()), end
	default:
		return c.Data.StartDate, end
	}
}

// Metric returns the pre-fetched reading for (code, window); the second result
// is false when no lookup was fetched for that key.
func (c *Context) Metric(code string, start, end time.Time) (*decimal.Decimal, bool) {
	v, ok := c.Metrics[MetricKey{Code: code, Start: start, End: end}]
	return v, ok
}

// snapshotValue reads a stored cell from a previously computed snapshot.
func snapshotValue(data *domain.ReportData, itemID, columnID string) *domain.ItemValue {
	if data == nil {
		return nil
	}
	return data.ValueFor(itemID, columnID)
}

// prevAccumulated returns the previous period's running total for a cell, or
// zero when there is no previous snapshot.
func prevAccumulated(c *Context, itemID, columnID string) decimal.Decimal {
	if v := snapshotValue(c.Previous, itemID, columnID); v != nil {
		return v.AccumulatedValue
	}
	return decimal.Zero
}
