package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finboard/report_engine/internal/apperrors"
	"github.com/finboard/report_engine/internal/core/domain"
	portsrepo "github.com/finboard/report_engine/internal/core/ports/repositories"
)

type PgxReportRepository struct {
	BaseRepository
}

// newPgxReportRepository creates a new repository for report definitions.
func newPgxReportRepository(pool *pgxpool.Pool) portsrepo.ReportRepositoryFacade {
	return &PgxReportRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxReportRepository implements portsrepo.ReportRepositoryFacade
var _ portsrepo.ReportRepositoryFacade = (*PgxReportRepository)(nil)

const reportSelectColumns = `report_id, company_id, kind, template_name, dependent_kinds, skip_class_filter, year, items, columns, created_at, created_by, last_updated_at, last_updated_by`

// scanReport scans one report row. The item forest and column list are stored
// as jsonb documents: the flat item arena is already index-addressed, so
// relational decomposition would buy nothing and cost two join fan-outs per
// load.
func scanReport(row pgx.Row) (*domain.ReportDefinition, error) {
	var def domain.ReportDefinition
	var itemsJSON, columnsJSON []byte
	err := row.Scan(
		&def.ReportID,
		&def.CompanyID,
		&def.Kind,
		&def.TemplateName,
		&def.DependentKinds,
		&def.SkipClassFilter,
		&def.Year,
		&itemsJSON,
		&columnsJSON,
		&def.CreatedAt,
		&def.CreatedBy,
		&def.LastUpdatedAt,
		&def.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &def.Items); err != nil {
		return nil, fmt.Errorf("decode report items: %w", err)
	}
	if err := json.Unmarshal(columnsJSON, &def.Columns); err != nil {
		return nil, fmt.Errorf("decode report columns: %w", err)
	}
	return &def, nil
}

// FindReportByID retrieves a full definition by its ID.
func (r *PgxReportRepository) FindReportByID(ctx context.Context, reportID string) (*domain.ReportDefinition, error) {
	query := `SELECT ` + reportSelectColumns + ` FROM reports WHERE report_id = $1;`

	def, err := scanReport(r.Pool.QueryRow(ctx, query, reportID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find report %s: %w", reportID, err)
	}
	return def, nil
}

// FindReportByKind retrieves a company's report of the given template kind.
// Template kinds are the names dependent-report references use, so the lookup
// goes through the template_name column.
func (r *PgxReportRepository) FindReportByKind(ctx context.Context, companyID, kind string) (*domain.ReportDefinition, error) {
	query := `SELECT ` + reportSelectColumns + ` FROM reports WHERE company_id = $1 AND template_name = $2;`

	def, err := scanReport(r.Pool.QueryRow(ctx, query, companyID, kind))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find %s report for company %s: %w", kind, companyID, err)
	}
	return def, nil
}
