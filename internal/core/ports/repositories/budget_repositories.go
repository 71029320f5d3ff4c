package repositories

import (
	"context"

	"github.com/finboard/report_engine/internal/core/domain"
)

// BudgetReader defines read operations for budgets. Budget CRUD lives outside
// this core; the engine only consumes them.
type BudgetReader interface {
	// ListBudgetsByYear retrieves a company's budgets for one year, items and
	// month values included, ordered by budget id.
	ListBudgetsByYear(ctx context.Context, companyID string, year int) ([]domain.Budget, error)
}

// BudgetRepositoryFacade combines all budget repository interfaces.
type BudgetRepositoryFacade interface {
	BudgetReader
}
