package services

import (
	"context"
	"fmt"
	"time"

	"github.com/finboard/report_engine/internal/core/domain"
	portsrepo "github.com/finboard/report_engine/internal/core/ports/repositories"
	portssvc "github.com/finboard/report_engine/internal/core/ports/services"
)

type reportQueryService struct {
	BaseService
	dataRepo   portsrepo.ReportDataReader
	ledgerRepo portsrepo.LedgerReader
}

// NewReportQueryService creates the read-side service for computed snapshots.
func NewReportQueryService(dataRepo portsrepo.ReportDataReader, ledgerRepo portsrepo.LedgerReader) portssvc.ReportQuerySvc {
	return &reportQueryService{dataRepo: dataRepo, ledgerRepo: ledgerRepo}
}

var _ portssvc.ReportQuerySvc = (*reportQueryService)(nil)

func (s *reportQueryService) GetItemValues(ctx context.Context, reportID string, start, end time.Time, periodType domain.PeriodType) ([]domain.ItemValue, error) {
	data, err := s.dataRepo.FindReportData(ctx, reportID, start, end, periodType)
	if err != nil {
		return nil, fmt.Errorf("load snapshot for report %s: %w", reportID, err)
	}
	return data.Values, nil
}

func (s *reportQueryService) GetDigests(ctx context.Context, reportID string, start, end time.Time, periodType domain.PeriodType) (map[string]string, error) {
	data, err := s.dataRepo.FindReportData(ctx, reportID, start, end, periodType)
	if err != nil {
		return nil, fmt.Errorf("load snapshot for report %s: %w", reportID, err)
	}
	return data.DependencyDigests, nil
}

func (s *reportQueryService) ListLedgerLines(ctx context.Context, companyID string, kind domain.LedgerKind, start, end time.Time) ([]domain.LineItemDetail, error) {
	ws, we := LedgerKindWindow(kind, start, end)
	return s.ledgerRepo.ListLines(ctx, companyID, kind, ws, we)
}
