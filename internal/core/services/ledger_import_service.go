package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finboard/report_engine/internal/core/domain"
	portsrepo "github.com/finboard/report_engine/internal/core/ports/repositories"
	portssvc "github.com/finboard/report_engine/internal/core/ports/services"
	"github.com/finboard/report_engine/internal/ledgerexport"
)

// importedKinds are the snapshot kinds refreshed for one report period.
var importedKinds = []domain.LedgerKind{
	domain.LedgerGeneral,
	domain.LedgerBank,
	domain.LedgerAccountsPayable,
	domain.LedgerBalance,
	domain.LedgerOpeningBalance,
	domain.LedgerPriorDayBalance,
}

// LedgerKindWindow maps a report period onto the snapshot window of one
// ledger kind. Flow kinds cover the whole period; balance kinds collapse to
// their single as-of day.
func LedgerKindWindow(kind domain.LedgerKind, start, end time.Time) (time.Time, time.Time) {
	switch kind {
	case domain.LedgerBalance:
		return end, end
	case domain.LedgerOpeningBalance:
		asOf := start.AddDate(0, 0, -1)
		return asOf, asOf
	case domain.LedgerPriorDayBalance:
		asOf := end.AddDate(0, 0, -1)
		return asOf, asOf
	default:
		return start, end
	}
}

type ledgerImportService struct {
	BaseService
	ledgerRepo portsrepo.LedgerWriter
	exports    portssvc.LedgerExportProvider
}

// NewLedgerImportService creates the import service over an export source and
// a ledger writer.
func NewLedgerImportService(ledgerRepo portsrepo.LedgerWriter, exports portssvc.LedgerExportProvider) portssvc.LedgerImportSvc {
	return &ledgerImportService{
		ledgerRepo: ledgerRepo,
		exports:    exports,
	}
}

var _ portssvc.LedgerImportSvc = (*ledgerImportService)(nil)

// ImportKind fetches and parses one export, then replaces the targeted
// snapshot's rows in a single bulk operation. Fetch and parse complete fully
// before any replacement, so a failure leaves the previous rows untouched.
func (s *ledgerImportService) ImportKind(ctx context.Context, companyID string, kind domain.LedgerKind, start, end time.Time) error {
	ws, we := LedgerKindWindow(kind, start, end)

	doc, err := s.exports.FetchExport(ctx, companyID, kind, ws, we, accountTypeFilter(kind))
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch ledger export",
			slog.String("company_id", companyID),
			slog.String("kind", string(kind)))
		return err
	}

	var lines []domain.LineItemDetail
	if kind.FlowKind() {
		lines, err = ledgerexport.Parse(doc)
	} else {
		lines, err = ledgerexport.ParseBalanceSheet(doc)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to parse ledger export",
			slog.String("company_id", companyID),
			slog.String("kind", string(kind)))
		return err
	}
	for i := range lines {
		lines[i].LineID = uuid.NewString()
	}

	snapshot := domain.LedgerSnapshot{
		SnapshotID: uuid.NewString(),
		CompanyID:  companyID,
		Kind:       kind,
		StartDate:  ws,
		EndDate:    we,
		Lines:      lines,
		ImportedAt: time.Now().UTC(),
	}
	if err := s.ledgerRepo.ReplaceSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("replace %s snapshot: %w", kind, err)
	}

	s.LogInfo(ctx, "Ledger snapshot imported",
		slog.String("company_id", companyID),
		slog.String("kind", string(kind)),
		slog.Int("line_count", len(lines)))
	return nil
}

// ImportPeriod refreshes every ledger kind relevant to a report period.
func (s *ledgerImportService) ImportPeriod(ctx context.Context, companyID string, start, end time.Time) error {
	for _, kind := range importedKinds {
		if err := s.ImportKind(ctx, companyID, kind, start, end); err != nil {
			return err
		}
	}
	return nil
}

// accountTypeFilter narrows the export request for the subset kinds.
func accountTypeFilter(kind domain.LedgerKind) string {
	switch kind {
	case domain.LedgerBank:
		return "Bank"
	case domain.LedgerAccountsPayable:
		return "Accounts Payable"
	}
	return ""
}
