package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finboard/report_engine/internal/core/domain"
	portsrepo "github.com/finboard/report_engine/internal/core/ports/repositories"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for imported ledger rows.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryFacade
var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// ListLines retrieves the rows of a company's snapshot for one ledger kind and
// date range. Ordered by external id so digest hashing sees a stable sequence.
func (r *PgxLedgerRepository) ListLines(ctx context.Context, companyID string, kind domain.LedgerKind, start, end time.Time) ([]domain.LineItemDetail, error) {
	query := `
		SELECT l.line_id, l.txn_date, l.txn_type, l.doc_number, l.memo, l.vendor, l.split_account, l.amount, l.account_external_id, l.class_external_id, l.qbo_id
		FROM ledger_lines l
		JOIN ledger_snapshots s ON s.snapshot_id = l.snapshot_id
		WHERE s.company_id = $1 AND s.kind = $2 AND s.start_date = $3 AND s.end_date = $4
		ORDER BY l.qbo_id, l.line_id;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, kind, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s ledger lines for company %s: %w", kind, companyID, err)
	}
	defer rows.Close()

	var lines []domain.LineItemDetail
	for rows.Next() {
		var l domain.LineItemDetail
		if err := rows.Scan(
			&l.LineID,
			&l.TxnDate,
			&l.TxnType,
			&l.DocNumber,
			&l.Memo,
			&l.Vendor,
			&l.SplitAccount,
			&l.Amount,
			&l.AccountExternalID,
			&l.ClassExternalID,
			&l.QboID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// ReplaceSnapshot swaps the full row set of a (kind, date range) snapshot in
// one transaction. Lines go in via COPY; an import of tens of thousands of
// rows stays a single round-trip-per-chunk write.
func (r *PgxLedgerRepository) ReplaceSnapshot(ctx context.Context, snapshot domain.LedgerSnapshot) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	deleteOld := `
		DELETE FROM ledger_snapshots
		WHERE company_id = $1 AND kind = $2 AND start_date = $3 AND end_date = $4;
	`
	if _, err := tx.Exec(ctx, deleteOld, snapshot.CompanyID, snapshot.Kind, snapshot.StartDate, snapshot.EndDate); err != nil {
		return fmt.Errorf("failed to clear previous %s snapshot: %w", snapshot.Kind, err)
	}

	insertSnapshot := `
		INSERT INTO ledger_snapshots (snapshot_id, company_id, kind, start_date, end_date, imported_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	if _, err := tx.Exec(ctx, insertSnapshot,
		snapshot.SnapshotID,
		snapshot.CompanyID,
		snapshot.Kind,
		snapshot.StartDate,
		snapshot.EndDate,
		snapshot.ImportedAt,
	); err != nil {
		return fmt.Errorf("failed to insert %s snapshot: %w", snapshot.Kind, err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"ledger_lines"},
		[]string{"line_id", "snapshot_id", "txn_date", "txn_type", "doc_number", "memo", "vendor", "split_account", "amount", "account_external_id", "class_external_id", "qbo_id"},
		pgx.CopyFromSlice(len(snapshot.Lines), func(i int) ([]any, error) {
			l := snapshot.Lines[i]
			return []any{
				l.LineID,
				snapshot.SnapshotID,
				l.TxnDate,
				l.TxnType,
				l.DocNumber,
				l.Memo,
				l.Vendor,
				l.SplitAccount,
				l.Amount,
				l.AccountExternalID,
				l.ClassExternalID,
				l.QboID,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy %s ledger lines: %w", snapshot.Kind, err)
	}

	return r.Commit(ctx, tx)
}
