package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/finboard/report_engine/internal/apperrors"
	"github.com/finboard/report_engine/internal/core/domain"
	portsrepo "github.com/finboard/report_engine/internal/core/ports/repositories"
	portssvc "github.com/finboard/report_engine/internal/core/ports/services"
)

// Dependency categories tracked per snapshot. Each digest is a deterministic
// fingerprint over one input category; a stored digest differing from the
// recomputed one marks the snapshot stale.
const (
	CategoryMapping        = "mapping"
	CategoryPreviousDatas  = "previous_datas"
	CategoryLedger         = "ledger"
	CategoryOtherReports   = "other_reports"
	CategoryReportTemplate = "report_template"
	CategoryBudgets        = "budgets"
	CategoryMetrics        = "metrics"
)

// DigestService computes and compares per-category dependency digests.
type DigestService struct {
	BaseService
	dataRepo   portsrepo.ReportDataReader
	ledgerRepo portsrepo.LedgerReader
	budgetRepo portsrepo.BudgetReader
	reportRepo portsrepo.ReportReader
	metrics    portssvc.MetricsProvider
	templates  portssvc.TemplateSource
	importer   portssvc.LedgerImportSvc
}

// NewDigestService creates a digest tracker over the given collaborators.
func NewDigestService(
	dataRepo portsrepo.ReportDataReader,
	ledgerRepo portsrepo.LedgerReader,
	budgetRepo portsrepo.BudgetReader,
	reportRepo portsrepo.ReportReader,
	metrics portssvc.MetricsProvider,
	templates portssvc.TemplateSource,
	importer portssvc.LedgerImportSvc,
) *DigestService {
	return &DigestService{
		dataRepo:   dataRepo,
		ledgerRepo: ledgerRepo,
		budgetRepo: budgetRepo,
		reportRepo: reportRepo,
		metrics:    metrics,
		templates:  templates,
		importer:   importer,
	}
}

// ApplicableCategories returns the dependency categories tracked for this
// report and period, in stable order.
func (s *DigestService) ApplicableCategories(def *domain.ReportDefinition, data *domain.ReportData) []string {
	categories := []string{CategoryMapping}
	if data.PeriodType != domain.PeriodDaily {
		categories = append(categories, CategoryPreviousDatas)
	}
	categories = append(categories, CategoryLedger)
	if len(def.DependentKinds) > 0 {
		categories = append(categories, CategoryOtherReports)
	}
	if def.TemplateDefined() {
		categories = append(categories, CategoryReportTemplate)
	}
	if def.HasBudgetColumn() {
		categories = append(categories, CategoryBudgets)
	}
	if def.HasMetricItem() {
		categories = append(categories, CategoryMetrics)
	}
	return categories
}

// RefreshLedger re-imports the relevant ledger snapshots before ledger digests
// are recomputed. The only category with a side effect.
func (s *DigestService) RefreshLedger(ctx context.Context, def *domain.ReportDefinition, data *domain.ReportData) error {
	return s.importer.ImportPeriod(ctx, def.CompanyID, data.StartDate, data.EndDate)
}

// ComputeDigests computes every applicable category digest. Digests are not
// persisted here: the caller stores them only after recomputation succeeds.
func (s *DigestService) ComputeDigests(ctx context.Context, def *domain.ReportDefinition, data *domain.ReportData) (map[string]string, error) {
	digests := make(map[string]string)
	for _, category := range s.ApplicableCategories(def, data) {
		d, err := s.digest(ctx, category, def, data)
		if err != nil {
			return nil, fmt.Errorf("digest category %s: %w", category, err)
		}
		digests[category] = d
	}
	return digests, nil
}

// StaleCategories recomputes all applicable digests and returns the categories
// whose digests differ from the snapshot's stored map, plus the fresh digests.
func (s *DigestService) StaleCategories(ctx context.Context, def *domain.ReportDefinition, data *domain.ReportData) ([]string, map[string]string, error) {
	digests, err := s.ComputeDigests(ctx, def, data)
	if err != nil {
		return nil, nil, err
	}
	var stale []string
	for _, category := range s.ApplicableCategories(def, data) {
		if data.DependencyDigests[category] != digests[category] {
			stale = append(stale, category)
		}
	}
	if len(stale) > 0 {
		s.LogDebug(ctx, "Snapshot is stale",
			slog.String("report_id", def.ReportID),
			slog.String("categories", strings.Join(stale, ",")))
	}
	return stale, digests, nil
}

func (s *DigestService) digest(ctx context.Context, category string, def *domain.ReportDefinition, data *domain.ReportData) (string, error) {
	switch category {
	case CategoryMapping:
		return s.mappingDigest(def), nil
	case CategoryPreviousDatas:
		return s.previousDatasDigest(ctx, def, data)
	case CategoryLedger:
		return s.ledgerDigest(ctx, def, data)
	case CategoryOtherReports:
		return s.otherReportsDigest(ctx, def, data)
	case CategoryReportTemplate:
		return s.templateDigest(def)
	case CategoryBudgets:
		return s.budgetsDigest(ctx, def, data)
	case CategoryMetrics:
		return s.metrics.GetDigest(ctx, def.CompanyID, data.StartDate, data.EndDate)
	}
	return "", fmt.Errorf("%w: unknown digest category %q", apperrors.ErrConfiguration, category)
}

// mappingDigest fingerprints the ordered set of (account, class) pairs over
// all item accounts. Pairs are sorted so item ordering is irrelevant.
func (s *DigestService) mappingDigest(def *domain.ReportDefinition) string {
	pairs := def.MappingPairs()
	entries := make([]string, 0, len(pairs))
	for _, p := range pairs {
		entries = append(entries, p.AccountID+"|"+p.ClassID)
	}
	sort.Strings(entries)
	return hashEntries(entries)
}

func (s *DigestService) previousDatasDigest(ctx context.Context, def *domain.ReportDefinition, data *domain.ReportData) (string, error) {
	earlier, err := s.dataRepo.ListReportDataBefore(ctx, def.ReportID, data.StartDate, data.PeriodType)
	if err != nil {
		return "", err
	}
	entries := make([]string, 0, len(earlier))
	for _, d := range earlier {
		entries = append(entries, d.StartDate.Format("2006-01-02")+"|"+d.LastModifiedAt.UTC().Format("2006-01-02T15:04:05.000Z"))
	}
	return hashEntries(entries), nil
}

// ledgerDigest fingerprints the general-ledger rows of the snapshot window
// over (date, account, class, amount), sorted by external id so storage
// ordering is irrelevant.
func (s *DigestService) ledgerDigest(ctx context.Context, def *domain.ReportDefinition, data *domain.ReportData) (string, error) {
	lines, err := s.ledgerRepo.ListLines(ctx, def.CompanyID, domain.LedgerGeneral, data.StartDate, data.EndDate)
	if err != nil {
		return "", err
	}
	sorted := make([]domain.LineItemDetail, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].QboID < sorted[j].QboID })

	entries := make([]string, 0, len(sorted))
	for _, l := range sorted {
		entries = append(entries, strings.Join([]string{
			l.TxnDate.Format("2006-01-02"),
			l.AccountExternalID,
			l.ClassExternalID,
			l.Amount.String(),
		}, "|"))
	}
	return hashEntries(entries), nil
}

func (s *DigestService) otherReportsDigest(ctx context.Context, def *domain.ReportDefinition, data *domain.ReportData) (string, error) {
	kinds := make([]string, len(def.DependentKinds))
	copy(kinds, def.DependentKinds)
	sort.Strings(kinds)

	var entries []string
	for _, kind := range kinds {
		dep, err := s.reportRepo.FindReportByKind(ctx, def.CompanyID, kind)
		if errors.Is(err, apperrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", err
		}
		snap, err := s.dataRepo.FindReportData(ctx, dep.ReportID, data.StartDate, data.EndDate, data.PeriodType)
		if errors.Is(err, apperrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", err
		}
		entries = append(entries, kind+"|"+snap.LastModifiedAt.UTC().Format("2006-01-02T15:04:05.000Z"))
	}
	return hashEntries(entries), nil
}

func (s *DigestService) templateDigest(def *domain.ReportDefinition) (string, error) {
	contents, err := s.templates.ReadTemplate(def.TemplateName)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(contents)
	return hex.EncodeToString(sum[:]), nil
}

func (s *DigestService) budgetsDigest(ctx context.Context, def *domain.ReportDefinition, data *domain.ReportData) (string, error) {
	budgets, err := s.budgetRepo.ListBudgetsByYear(ctx, def.CompanyID, data.StartDate.Year())
	if err != nil {
		return "", err
	}
	entries := make([]string, 0, len(budgets))
	for _, b := range budgets {
		entries = append(entries, b.BudgetID+"|"+b.LastModifiedAt.UTC().Format("2006-01-02T15:04:05.000Z"))
	}
	sort.Strings(entries)
	return hashEntries(entries), nil
}

func hashEntries(entries []string) string {
	sum := sha256.Sum256([]byte(strings.Join(entries, "\n")))
	return hex.EncodeToString(sum[:])
}
