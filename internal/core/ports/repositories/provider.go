package repositories

// RepositoryProvider bundles the concrete repositories wired at startup.
type RepositoryProvider struct {
	ReportRepo     ReportRepositoryFacade
	ReportDataRepo ReportDataRepositoryFacade
	LedgerRepo     LedgerRepositoryFacade
	BudgetRepo     BudgetRepositoryFacade
}
