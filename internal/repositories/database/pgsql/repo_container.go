package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/finboard/report_engine/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ReportRepo:     newPgxReportRepository(dbPool),
		ReportDataRepo: newPgxReportDataRepository(dbPool),
		LedgerRepo:     newPgxLedgerRepository(dbPool),
		BudgetRepo:     newPgxBudgetRepository(dbPool),
	}
}
