package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finboard/report_engine/internal/core/domain"
	portsrepo "github.com/finboard/report_engine/internal/core/ports/repositories"
)

type PgxBudgetRepository struct {
	BaseRepository
}

// newPgxBudgetRepository creates a new repository for budget reads.
func newPgxBudgetRepository(pool *pgxpool.Pool) portsrepo.BudgetRepositoryFacade {
	return &PgxBudgetRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxBudgetRepository implements portsrepo.BudgetRepositoryFacade
var _ portsrepo.BudgetRepositoryFacade = (*PgxBudgetRepository)(nil)

// ListBudgetsByYear retrieves a company's budgets for one year with their
// items and month values, ordered by budget id. Items and month values come
// back in one denormalised query and are regrouped in memory; a company
// carries a handful of budgets so three round trips would gain nothing.
func (r *PgxBudgetRepository) ListBudgetsByYear(ctx context.Context, companyID string, year int) ([]domain.Budget, error) {
	budgets, err := r.listBudgetHeaders(ctx, companyID, year)
	if err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return nil, nil
	}

	byID := make(map[string]*domain.Budget, len(budgets))
	for i := range budgets {
		byID[budgets[i].BudgetID] = &budgets[i]
	}

	query := `
		SELECT i.budget_id, i.budget_item_id, i.account_id, i.class_id, i.standard_metric_id, v.month, v.value
		FROM budget_items i
		JOIN budgets b ON b.budget_id = i.budget_id
		LEFT JOIN budget_item_values v ON v.budget_item_id = i.budget_item_id
		WHERE b.company_id = $1 AND b.year = $2
		ORDER BY i.budget_id, i.budget_item_id, v.month;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget items for company %s: %w", companyID, err)
	}
	defer rows.Close()

	items := make(map[string]*domain.BudgetItem)
	itemOrder := make(map[string][]*domain.BudgetItem)
	for rows.Next() {
		var budgetID, itemID, accountID, classID, metricID string
		var month *int
		var value *decimal.Decimal
		if err := rows.Scan(&budgetID, &itemID, &accountID, &classID, &metricID, &month, &value); err != nil {
			return nil, fmt.Errorf("failed to scan budget item row: %w", err)
		}

		item, ok := items[itemID]
		if !ok {
			item = &domain.BudgetItem{
				BudgetItemID:     itemID,
				AccountID:        accountID,
				ClassID:          classID,
				StandardMetricID: metricID,
			}
			items[itemID] = item
			itemOrder[budgetID] = append(itemOrder[budgetID], item)
		}
		// The LEFT JOIN yields NULL month/value for items with no entries yet.
		if month != nil && value != nil {
			item.Values = append(item.Values, domain.BudgetItemValue{Month: *month, Value: *value})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for budgetID, ordered := range itemOrder {
		budget := byID[budgetID]
		for _, item := range ordered {
			budget.Items = append(budget.Items, *item)
		}
	}
	return budgets, nil
}

func (r *PgxBudgetRepository) listBudgetHeaders(ctx context.Context, companyID string, year int) ([]domain.Budget, error) {
	query := `
		SELECT budget_id, company_id, name, year, last_modified_at
		FROM budgets
		WHERE company_id = $1 AND year = $2
		ORDER BY budget_id;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets for company %s: %w", companyID, err)
	}
	defer rows.Close()

	var budgets []domain.Budget
	for rows.Next() {
		var b domain.Budget
		if err := rows.Scan(&b.BudgetID, &b.CompanyID, &b.Name, &b.Year, &b.LastModifiedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget row: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}
