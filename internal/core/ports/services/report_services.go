package services

import (
	"context"
	"time"

	"github.com/finboard/report_engine/internal/core/domain"
)

// LedgerImportSvc re-imports ledger snapshots from the export source.
type LedgerImportSvc interface {
	// ImportKind fetches, parses and transactionally replaces one snapshot.
	ImportKind(ctx context.Context, companyID string, kind domain.LedgerKind, start, end time.Time) error

	// ImportPeriod refreshes every ledger kind relevant to a report period.
	ImportPeriod(ctx context.Context, companyID string, start, end time.Time) error
}

// RefreshSvc recomputes one period snapshot when its dependencies changed.
type RefreshSvc interface {
	// RefreshSnapshot runs the digest check and, when stale, recomputes every
	// (item, column) cell of the period and persists values then digests.
	RefreshSnapshot(ctx context.Context, reportID string, start, end time.Time, periodType domain.PeriodType) error
}

// ReportQuerySvc is the read surface consumed by presentation and drill-down
// layers.
type ReportQuerySvc interface {
	GetItemValues(ctx context.Context, reportID string, start, end time.Time, periodType domain.PeriodType) ([]domain.ItemValue, error)
	GetDigests(ctx context.Context, reportID string, start, end time.Time, periodType domain.PeriodType) (map[string]string, error)
	ListLedgerLines(ctx context.Context, companyID string, kind domain.LedgerKind, start, end time.Time) ([]domain.LineItemDetail, error)
}
