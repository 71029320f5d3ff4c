package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finboard/report_engine/internal/apperrors"
	"github.com/finboard/report_engine/internal/core/domain"
	portsrepo "github.com/finboard/report_engine/internal/core/ports/repositories"
)

type PgxReportDataRepository struct {
	BaseRepository
}

// newPgxReportDataRepository creates a new repository for computed snapshots.
func newPgxReportDataRepository(pool *pgxpool.Pool) portsrepo.ReportDataRepositoryFacade {
	return &PgxReportDataRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxReportDataRepository implements portsrepo.ReportDataRepositoryFacade
var _ portsrepo.ReportDataRepositoryFacade = (*PgxReportDataRepository)(nil)

// FindReportData retrieves the snapshot for an exact period, values included.
func (r *PgxReportDataRepository) FindReportData(ctx context.Context, reportID string, start, end time.Time, periodType domain.PeriodType) (*domain.ReportData, error) {
	query := `
		SELECT report_data_id, report_id, start_date, end_date, period_type, dependency_digests, last_modified_at
		FROM report_data
		WHERE report_id = $1 AND start_date = $2 AND end_date = $3 AND period_type = $4;
	`
	var data domain.ReportData
	var digestsJSON []byte
	err := r.Pool.QueryRow(ctx, query, reportID, start, end, periodType).Scan(
		&data.ReportDataID,
		&data.ReportID,
		&data.StartDate,
		&data.EndDate,
		&data.PeriodType,
		&digestsJSON,
		&data.LastModifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find snapshot for report %s: %w", reportID, err)
	}
	if err := json.Unmarshal(digestsJSON, &data.DependencyDigests); err != nil {
		return nil, fmt.Errorf("decode dependency digests: %w", err)
	}

	values, err := r.listItemValues(ctx, data.ReportDataID)
	if err != nil {
		return nil, err
	}
	data.Values = values
	return &data, nil
}

// ListReportDataBefore retrieves earlier same-period-type snapshots (values
// not loaded), ordered by start date ascending.
func (r *PgxReportDataRepository) ListReportDataBefore(ctx context.Context, reportID string, before time.Time, periodType domain.PeriodType) ([]domain.ReportData, error) {
	query := `
		SELECT report_data_id, report_id, start_date, end_date, period_type, dependency_digests, last_modified_at
		FROM report_data
		WHERE report_id = $1 AND start_date < $2 AND period_type = $3
		ORDER BY start_date ASC;
	`
	rows, err := r.Pool.Query(ctx, query, reportID, before, periodType)
	if err != nil {
		return nil, fmt.Errorf("failed to list earlier snapshots for report %s: %w", reportID, err)
	}
	defer rows.Close()

	var datas []domain.ReportData
	for rows.Next() {
		var data domain.ReportData
		var digestsJSON []byte
		if err := rows.Scan(
			&data.ReportDataID,
			&data.ReportID,
			&data.StartDate,
			&data.EndDate,
			&data.PeriodType,
			&digestsJSON,
			&data.LastModifiedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		if err := json.Unmarshal(digestsJSON, &data.DependencyDigests); err != nil {
			return nil, fmt.Errorf("decode dependency digests: %w", err)
		}
		datas = append(datas, data)
	}
	return datas, rows.Err()
}

// EnsureReportData returns the period's snapshot, creating an empty one on
// first request. The insert races benignly: on conflict the existing row wins
// and is re-read.
func (r *PgxReportDataRepository) EnsureReportData(ctx context.Context, reportID string, start, end time.Time, periodType domain.PeriodType) (*domain.ReportData, error) {
	data, err := r.FindReportData(ctx, reportID, start, end, periodType)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	insert := `
		INSERT INTO report_data (report_data_id, report_id, start_date, end_date, period_type, dependency_digests, last_modified_at)
		VALUES ($1, $2, $3, $4, $5, '{}'::jsonb, $6)
		ON CONFLICT (report_id, start_date, end_date, period_type) DO NOTHING;
	`
	if _, err := r.Pool.Exec(ctx, insert, uuid.NewString(), reportID, start, end, periodType, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to create snapshot for report %s: %w", reportID, err)
	}
	return r.FindReportData(ctx, reportID, start, end, periodType)
}

// ReplaceItemValues swaps the snapshot's full cell set and digest map in one
// transaction and bumps its last-modified time.
func (r *PgxReportDataRepository) ReplaceItemValues(ctx context.Context, reportDataID string, values []domain.ItemValue, digests map[string]string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM item_values WHERE report_data_id = $1;`, reportDataID); err != nil {
		return fmt.Errorf("failed to clear snapshot values: %w", err)
	}

	insert := `
		INSERT INTO item_values (report_data_id, item_id, column_id, value, column_type, accumulated_value, dependency_accumulated_value, item_account_values, budget_values)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	batch := &pgx.Batch{}
	for i := range values {
		v := &values[i]
		accountsJSON, err := json.Marshal(v.ItemAccountValues)
		if err != nil {
			return fmt.Errorf("encode account breakdown: %w", err)
		}
		budgetsJSON, err := json.Marshal(v.BudgetValues)
		if err != nil {
			return fmt.Errorf("encode budget entries: %w", err)
		}
		batch.Queue(insert,
			reportDataID,
			v.ItemID,
			v.ColumnID,
			v.Value,
			v.ColumnType,
			v.AccumulatedValue,
			v.DependencyAccumulatedValue,
			accountsJSON,
			budgetsJSON,
		)
	}
	digestsJSON, err := json.Marshal(digests)
	if err != nil {
		return fmt.Errorf("encode dependency digests: %w", err)
	}
	batch.Queue(
		`UPDATE report_data SET dependency_digests = $2, last_modified_at = $3 WHERE report_data_id = $1;`,
		reportDataID, digestsJSON, time.Now().UTC(),
	)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to write snapshot values: %w", err)
	}
	return r.Commit(ctx, tx)
}

func (r *PgxReportDataRepository) listItemValues(ctx context.Context, reportDataID string) ([]domain.ItemValue, error) {
	query := `
		SELECT item_id, column_id, value, column_type, accumulated_value, dependency_accumulated_value, item_account_values, budget_values
		FROM item_values
		WHERE report_data_id = $1
		ORDER BY item_id, column_id;
	`
	rows, err := r.Pool.Query(ctx, query, reportDataID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot values: %w", err)
	}
	defer rows.Close()

	var values []domain.ItemValue
	for rows.Next() {
		var v domain.ItemValue
		var value, depAccumulated *decimal.Decimal
		var accountsJSON, budgetsJSON []byte
		if err := rows.Scan(
			&v.ItemID,
			&v.ColumnID,
			&value,
			&v.ColumnType,
			&v.AccumulatedValue,
			&depAccumulated,
			&accountsJSON,
			&budgetsJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan value row: %w", err)
		}
		v.Value = value
		v.DependencyAccumulatedValue = depAccumulated
		if len(accountsJSON) > 0 {
			if err := json.Unmarshal(accountsJSON, &v.ItemAccountValues); err != nil {
				return nil, fmt.Errorf("decode account breakdown: %w", err)
			}
		}
		if len(budgetsJSON) > 0 {
			if err := json.Unmarshal(budgetsJSON, &v.BudgetValues); err != nil {
				return nil, fmt.Errorf("decode budget entries: %w", err)
			}
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
