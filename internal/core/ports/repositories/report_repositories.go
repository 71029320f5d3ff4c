package repositories

import (
	"context"

	"github.com/finboard/report_engine/internal/core/domain"
)

// ReportReader defines read operations for report definitions. Definitions are
// authored elsewhere (template loading, mapping UI); this core only reads them.
type ReportReader interface {
	// FindReportByID retrieves a full definition: items, accounts and columns.
	FindReportByID(ctx context.Context, reportID string) (*domain.ReportDefinition, error)

	// FindReportByKind retrieves a company's report of the given template kind.
	// Used to resolve dependent-report references.
	FindReportByKind(ctx context.Context, companyID, kind string) (*domain.ReportDefinition, error)
}

// ReportRepositoryFacade combines all report-definition repository interfaces.
type ReportRepositoryFacade interface {
	ReportReader
}
