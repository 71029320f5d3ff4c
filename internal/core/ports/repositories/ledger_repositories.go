package repositories

import (
	"context"
	"time"

	"github.com/finboard/report_engine/internal/core/domain"
)

// LedgerReader defines read operations for imported ledger rows.
type LedgerReader interface {
	// ListLines retrieves the rows of a company's snapshot for one ledger
	// kind and date range, ordered by external id for digest stability.
	ListLines(ctx context.Context, companyID string, kind domain.LedgerKind, start, end time.Time) ([]domain.LineItemDetail, error)
}

// LedgerWriter defines write operations for imported ledger rows.
type LedgerWriter interface {
	// ReplaceSnapshot swaps the full row set of a (kind, date range) snapshot
	// in one transaction: the prior rows are deleted and the new ones
	// inserted together, so a failed import leaves the old rows in place.
	ReplaceSnapshot(ctx context.Context, snapshot domain.LedgerSnapshot) error
}

// LedgerRepositoryFacade combines all ledger repository interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
