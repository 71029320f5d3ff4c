package repositories

import (
	"context"
	"time"

	"github.com/finboard/report_engine/internal/core/domain"
)

// ReportDataReader defines read operations for computed period snapshots.
type ReportDataReader interface {
	// FindReportData retrieves the snapshot for an exact period, with its
	// item values and digest map. Returns apperrors.ErrNotFound when the
	// period has never been computed.
	FindReportData(ctx context.Context, reportID string, start, end time.Time, periodType domain.PeriodType) (*domain.ReportData, error)

	// ListReportDataBefore retrieves earlier same-period-type snapshots of a
	// report (values not loaded), ordered by start date ascending. The digest
	// tracker fingerprints their last-modified times.
	ListReportDataBefore(ctx context.Context, reportID string, before time.Time, periodType domain.PeriodType) ([]domain.ReportData, error)
}

// ReportDataWriter defines write operations for computed period snapshots.
type ReportDataWriter interface {
	// EnsureReportData returns the snapshot for the period, creating an empty
	// one when the period is first requested.
	EnsureReportData(ctx context.Context, reportID string, start, end time.Time, periodType domain.PeriodType) (*domain.ReportData, error)

	// ReplaceItemValues swaps the snapshot's full cell set and digest map in
	// one transaction and bumps its last-modified time. A failed refresh never
	// reaches this call, so a half-done pass cannot look fresh.
	ReplaceItemValues(ctx context.Context, reportDataID string, values []domain.ItemValue, digests map[string]string) error
}

// ReportDataRepositoryFacade combines all snapshot repository interfaces.
type ReportDataRepositoryFacade interface {
	ReportDataReader
	ReportDataWriter
}
