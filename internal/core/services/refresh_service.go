package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/finboard/report_engine/internal/apperrors"
	"github.com/finboard/report_engine/internal/core/domain"
	"github.com/finboard/report_engine/internal/core/engine"
	portsrepo "github.com/finboard/report_engine/internal/core/ports/repositories"
	portssvc "github.com/finboard/report_engine/internal/core/ports/services"
)

type refreshService struct {
	BaseService
	reportRepo portsrepo.ReportReader
	dataRepo   portsrepo.ReportDataRepositoryFacade
	ledgerRepo portsrepo.LedgerReader
	budgetRepo portsrepo.BudgetReader
	metrics    portssvc.MetricsProvider
	digests    *DigestService
	engine     *engine.Engine
}

// NewRefreshService creates the snapshot refresh orchestrator.
func NewRefreshService(
	reportRepo portsrepo.ReportReader,
	dataRepo portsrepo.ReportDataRepositoryFacade,
	ledgerRepo portsrepo.LedgerReader,
	budgetRepo portsrepo.BudgetReader,
	metrics portssvc.MetricsProvider,
	digests *DigestService,
) portssvc.RefreshSvc {
	return &refreshService{
		reportRepo: reportRepo,
		dataRepo:   dataRepo,
		ledgerRepo: ledgerRepo,
		budgetRepo: budgetRepo,
		metrics:    metrics,
		digests:    digests,
		engine:     engine.New(),
	}
}

var _ portssvc.RefreshSvc = (*refreshService)(nil)

// RefreshSnapshot recomputes one period snapshot when any dependency category
// is stale. The whole pass is single-threaded over the cells; all shared read
// inputs are pre-fetched once before the loop. Any external failure aborts
// the refresh before values or digests are written, so the previous
// snapshot's values stay intact and stale.
func (s *refreshService) RefreshSnapshot(ctx context.Context, reportID string, start, end time.Time, periodType domain.PeriodType) error {
	def, err := s.reportRepo.FindReportByID(ctx, reportID)
	if err != nil {
		return fmt.Errorf("load report %s: %w", reportID, err)
	}
	if err := def.Validate(); err != nil {
		return err
	}

	data, err := s.dataRepo.EnsureReportData(ctx, reportID, start, end, periodType)
	if err != nil {
		return fmt.Errorf("ensure snapshot: %w", err)
	}

	// The ledger category refresh re-imports before digests are recomputed.
	if err := s.digests.RefreshLedger(ctx, def, data); err != nil {
		return err
	}

	stale, digests, err := s.digests.StaleCategories(ctx, def, data)
	if err != nil {
		return err
	}
	if len(stale) == 0 && len(data.Values) > 0 {
		s.LogInfo(ctx, "Snapshot up to date, skipping recompute",
			slog.String("report_id", reportID),
			slog.String("period", string(periodType)))
		return nil
	}

	c := engine.NewContext(def, data)
	if err := s.prefetch(ctx, c); err != nil {
		return err
	}

	values := s.engine.ComputeAll(c)

	if err := s.dataRepo.ReplaceItemValues(ctx, data.ReportDataID, values, digests); err != nil {
		return fmt.Errorf("persist snapshot values: %w", err)
	}

	s.LogInfo(ctx, "Snapshot recomputed",
		slog.String("report_id", reportID),
		slog.String("period", string(periodType)),
		slog.Int("cell_count", len(values)))
	return nil
}

// prefetch loads every shared read input for the pass: neighbouring
// snapshots, dependent reports, ledger rows per kind, budgets and metric
// readings. Fetches run concurrently but the context is complete before the
// per-cell loop starts.
func (s *refreshService) prefetch(ctx context.Context, c *engine.Context) error {
	def, data := c.Def, c.Data
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	g.Go(func() error {
		ps, pe := previousWindow(data)
		snap, err := s.findSnapshot(gctx, def.ReportID, ps, pe, data.PeriodType)
		c.Previous = snap
		return err
	})
	g.Go(func() error {
		snap, err := s.findSnapshot(gctx, def.ReportID, data.StartDate.AddDate(-1, 0, 0), data.EndDate.AddDate(-1, 0, 0), data.PeriodType)
		c.PriorYear = snap
		return err
	})
	if data.PeriodType == domain.PeriodMonthly && data.StartDate.Month() != time.January {
		g.Go(func() error {
			js, je := januaryWindow(data.StartDate.Year())
			snap, err := s.findSnapshot(gctx, def.ReportID, js, je, domain.PeriodMonthly)
			c.January = snap
			return err
		})
	}

	for _, kind := range def.DependentKinds {
		g.Go(func() error {
			dep, err := s.reportRepo.FindReportByKind(gctx, def.CompanyID, kind)
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			snap, err := s.findSnapshot(gctx, dep.ReportID, data.StartDate, data.EndDate, data.PeriodType)
			if err != nil {
				return err
			}
			mu.Lock()
			c.Dependents[kind] = &engine.DependentReport{Def: dep, Data: snap}
			mu.Unlock()
			return nil
		})
	}

	for _, kind := range importedKinds {
		g.Go(func() error {
			ws, we := LedgerKindWindow(kind, data.StartDate, data.EndDate)
			lines, err := s.ledgerRepo.ListLines(gctx, def.CompanyID, kind, ws, we)
			if err != nil {
				return err
			}
			mu.Lock()
			c.Ledger[kind] = lines
			mu.Unlock()
			return nil
		})
	}

	if def.HasBudgetColumn() {
		g.Go(func() error {
			budgets, err := s.budgetRepo.ListBudgetsByYear(gctx, def.CompanyID, data.StartDate.Year())
			c.Budgets = budgets
			return err
		})
	}

	for _, key := range metricKeys(c) {
		g.Go(func() error {
			v, err := s.metrics.GetMetricValue(gctx, def.CompanyID, key.Code, key.Start, key.End)
			if err != nil {
				return err
			}
			mu.Lock()
			c.Metrics[key] = v
			mu.Unlock()
			return nil
		})
	}

	return g.Wait()
}

// metricKeys enumerates the (code, window) lookups the pass can need: every
// metric item crossed with every column range the report declares.
func metricKeys(c *engine.Context) []engine.MetricKey {
	ranges := make(map[domain.ColumnRange]bool)
	for i := range c.Def.Columns {
		ranges[c.Def.Columns[i].Range] = true
	}
	seen := make(map[engine.MetricKey]bool)
	var keys []engine.MetricKey
	for i := range c.Def.Items {
		t := c.Def.Items[i].Type
		if t == nil || t.Kind != domain.ItemMetric {
			continue
		}
		for r := range ranges {
			start, end := c.Window(r)
			key := engine.MetricKey{Code: t.MetricCode, Start: start, End: end}
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// findSnapshot loads a neighbouring snapshot; a period never computed yet is
// simply absent, not an error.
func (s *refreshService) findSnapshot(ctx context.Context, reportID string, start, end time.Time, periodType domain.PeriodType) (*domain.ReportData, error) {
	snap, err := s.dataRepo.FindReportData(ctx, reportID, start, end, periodType)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// previousWindow is the immediately preceding same-period-type window.
func previousWindow(data *domain.ReportData) (time.Time, time.Time) {
	switch data.PeriodType {
	case domain.PeriodDaily:
		return data.StartDate.AddDate(0, 0, -1), data.EndDate.AddDate(0, 0, -1)
	case domain.PeriodAnnual:
		return data.StartDate.AddDate(-1, 0, 0), data.EndDate.AddDate(-1, 0, 0)
	default:
		start := data.StartDate.AddDate(0, -1, 0)
		return start, data.StartDate.AddDate(0, 0, -1)
	}
}

func januaryWindow(year int) (time.Time, time.Time) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.January, 31, 0, 0, 0, 0, time.UTC)
}
