package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finboard/report_engine/internal/apperrors"
	"github.com/finboard/report_engine/internal/core/domain"
	portssvc "github.com/finboard/report_engine/internal/core/ports/services"
	"github.com/finboard/report_engine/internal/core/services"
)

type RefreshServiceTestSuite struct {
	suite.Suite
	mockReportRepo *MockReportRepository
	mockDataRepo   *MockReportDataRepository
	mockLedgerRepo *MockLedgerRepository
	mockBudgetRepo *MockBudgetRepository
	mockMetrics    *MockMetricsProvider
	mockTemplates  *MockTemplateSource
	mockImporter   *MockLedgerImportSvc
	digests        *services.DigestService
	service        portssvc.RefreshSvc
	ctx            context.Context
}

func (suite *RefreshServiceTestSuite) SetupTest() {
	suite.mockReportRepo = new(MockReportRepository)
	suite.mockDataRepo = new(MockReportDataRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockBudgetRepo = new(MockBudgetRepository)
	suite.mockMetrics = new(MockMetricsProvider)
	suite.mockTemplates = new(MockTemplateSource)
	suite.mockImporter = new(MockLedgerImportSvc)
	suite.digests = services.NewDigestService(
		suite.mockDataRepo,
		suite.mockLedgerRepo,
		suite.mockBudgetRepo,
		suite.mockReportRepo,
		suite.mockMetrics,
		suite.mockTemplates,
		suite.mockImporter,
	)
	suite.service = services.NewRefreshService(
		suite.mockReportRepo,
		suite.mockDataRepo,
		suite.mockLedgerRepo,
		suite.mockBudgetRepo,
		suite.mockMetrics,
		suite.digests,
	)
	suite.ctx = context.Background()
}

// expectRefreshCollaborators wires the collaborators a full recompute of the
// March snapshot touches: the definition load, the snapshot upsert, the ledger
// re-import, the digest reads and the neighbouring-snapshot lookups.
func (suite *RefreshServiceTestSuite) expectRefreshCollaborators(def *domain.ReportDefinition, data *domain.ReportData, lines []domain.LineItemDetail) {
	suite.mockReportRepo.On("FindReportByID", mock.Anything, def.ReportID).Return(def, nil)
	suite.mockDataRepo.On("EnsureReportData", mock.Anything, def.ReportID, data.StartDate, data.EndDate, data.PeriodType).
		Return(data, nil)
	suite.mockImporter.On("ImportPeriod", mock.Anything, def.CompanyID, data.StartDate, data.EndDate).Return(nil)
	suite.mockDataRepo.On("ListReportDataBefore", mock.Anything, def.ReportID, data.StartDate, data.PeriodType).
		Return([]domain.ReportData{}, nil)
	suite.mockLedgerRepo.On("ListLines", mock.Anything, def.CompanyID, mock.Anything, mock.Anything, mock.Anything).
		Return(lines, nil)
	// Previous, prior-year and January snapshots have never been computed.
	suite.mockDataRepo.On("FindReportData", mock.Anything, def.ReportID, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrNotFound)
}

func (suite *RefreshServiceTestSuite) TestRefreshSnapshotRecomputesAndPersists() {
	def := ledgerReportDef()
	data := monthlySnapshot()
	lines := []domain.LineItemDetail{{
		QboID:             "txn-1",
		TxnDate:           time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		AccountExternalID: "acc-6000",
		ClassExternalID:   "cls-1",
		Amount:            decimal.RequireFromString("150.25"),
	}}
	suite.expectRefreshCollaborators(def, data, lines)

	var persisted []domain.ItemValue
	var storedDigests map[string]string
	suite.mockDataRepo.On("ReplaceItemValues", mock.Anything, data.ReportDataID, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			persisted = args.Get(2).([]domain.ItemValue)
			storedDigests = args.Get(3).(map[string]string)
		}).
		Return(nil).Once()

	err := suite.service.RefreshSnapshot(suite.ctx, def.ReportID, data.StartDate, data.EndDate, data.PeriodType)
	suite.Require().NoError(err)

	suite.Require().Len(persisted, 1)
	cell := persisted[0]
	suite.Equal("it-1", cell.ItemID)
	suite.Equal("col-1", cell.ColumnID)
	suite.Require().NotNil(cell.Value)
	suite.True(cell.Value.Equal(decimal.RequireFromString("150.25")))
	suite.Require().Len(cell.ItemAccountValues, 1)
	suite.Equal("acc-6000", cell.ItemAccountValues[0].AccountID)

	// Digests are stored alongside the values, only on success.
	suite.NotEmpty(storedDigests[services.CategoryMapping])
	suite.NotEmpty(storedDigests[services.CategoryPreviousDatas])
	suite.NotEmpty(storedDigests[services.CategoryLedger])
	suite.mockDataRepo.AssertExpectations(suite.T())
}

func (suite *RefreshServiceTestSuite) TestRefreshSnapshotSkipsFreshSnapshot() {
	def := ledgerReportDef()
	data := monthlySnapshot()
	suite.expectRefreshCollaborators(def, data, []domain.LineItemDetail{})

	digests, err := suite.digests.ComputeDigests(suite.ctx, def, data)
	suite.Require().NoError(err)
	data.DependencyDigests = digests
	data.Values = []domain.ItemValue{{ItemID: "it-1", ColumnID: "col-1"}}

	err = suite.service.RefreshSnapshot(suite.ctx, def.ReportID, data.StartDate, data.EndDate, data.PeriodType)
	suite.Require().NoError(err)
	suite.mockDataRepo.AssertNotCalled(suite.T(), "ReplaceItemValues", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RefreshServiceTestSuite) TestRefreshSnapshotRecomputesEmptySnapshotEvenWhenDigestsMatch() {
	def := ledgerReportDef()
	data := monthlySnapshot()
	suite.expectRefreshCollaborators(def, data, []domain.LineItemDetail{})

	digests, err := suite.digests.ComputeDigests(suite.ctx, def, data)
	suite.Require().NoError(err)
	data.DependencyDigests = digests
	// No values yet: a never-computed period must compute regardless.

	suite.mockDataRepo.On("ReplaceItemValues", mock.Anything, data.ReportDataID, mock.Anything, mock.Anything).
		Return(nil).Once()

	err = suite.service.RefreshSnapshot(suite.ctx, def.ReportID, data.StartDate, data.EndDate, data.PeriodType)
	suite.Require().NoError(err)
	suite.mockDataRepo.AssertExpectations(suite.T())
}

func (suite *RefreshServiceTestSuite) TestRefreshSnapshotAbortsWhenMetricsUnavailable() {
	def := ledgerReportDef()
	def.Items = append(def.Items, domain.Item{
		ItemID:     "it-2",
		Identifier: "headcount",
		Type:       &domain.TypeConfig{Kind: domain.ItemMetric, MetricCode: "headcount"},
		ParentIdx:  -1,
	})
	data := monthlySnapshot()
	suite.expectRefreshCollaborators(def, data, []domain.LineItemDetail{})
	suite.mockMetrics.On("GetDigest", mock.Anything, def.CompanyID, data.StartDate, data.EndDate).
		Return("", errors.New("metrics backend unavailable"))

	err := suite.service.RefreshSnapshot(suite.ctx, def.ReportID, data.StartDate, data.EndDate, data.PeriodType)
	suite.Require().Error(err)
	suite.ErrorContains(err, "metrics backend unavailable")
	// The previous values and digests stay untouched on failure.
	suite.mockDataRepo.AssertNotCalled(suite.T(), "ReplaceItemValues", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RefreshServiceTestSuite) TestRefreshSnapshotRejectsInvalidDefinition() {
	def := ledgerReportDef()
	def.Items = append(def.Items, def.Items[0]) // duplicate identifier
	suite.mockReportRepo.On("FindReportByID", mock.Anything, def.ReportID).Return(def, nil)

	data := monthlySnapshot()
	err := suite.service.RefreshSnapshot(suite.ctx, def.ReportID, data.StartDate, data.EndDate, data.PeriodType)
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConfiguration)
	suite.mockImporter.AssertNotCalled(suite.T(), "ImportPeriod", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RefreshServiceTestSuite))
}
