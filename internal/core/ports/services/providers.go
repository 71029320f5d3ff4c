package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finboard/report_engine/internal/core/domain"
	"github.com/finboard/report_engine/internal/ledgerexport"
)

// MetricsProvider is the external metrics lookup service. Injected so the
// calculation strategies stay pure and unit-testable.
type MetricsProvider interface {
	// GetMetricValue returns a metric reading for a business and period; nil
	// when the metric has no value for the period.
	GetMetricValue(ctx context.Context, businessID, code string, start, end time.Time) (*decimal.Decimal, error)

	// GetDigest returns the remote fingerprint over the business's metrics
	// for the period.
	GetDigest(ctx context.Context, businessID string, start, end time.Time) (string, error)
}

// LedgerExportProvider fetches raw hierarchical export documents.
type LedgerExportProvider interface {
	FetchExport(ctx context.Context, companyID string, kind domain.LedgerKind, start, end time.Time, accountTypeFilter string) (*ledgerexport.Document, error)
}

// TemplateSource reads on-disk report template definitions; the digest
// tracker fingerprints their contents.
type TemplateSource interface {
	ReadTemplate(name string) ([]byte, error)
}
