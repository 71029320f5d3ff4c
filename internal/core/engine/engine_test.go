package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/report_engine/internal/core/domain"
	"github.com/finboard/report_engine/internal/core/engine"
)

var (
	mar1  = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	mar15 = time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	mar31 = time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
	feb10 = time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func col(id string, ct domain.ColumnType, cr domain.ColumnRange, cy domain.ColumnYear) domain.Column {
	return domain.Column{ColumnID: id, Type: ct, Range: cr, Year: cy}
}

func ledgerItem(id string, view domain.LedgerView, accounts ...domain.ItemAccount) domain.Item {
	return domain.Item{
		ItemID:     id,
		Identifier: id,
		Type:       &domain.TypeConfig{Kind: domain.ItemLedgerAccount, LedgerView: view},
		Accounts:   accounts,
		ParentIdx:  -1,
	}
}

func exprItem(id string, vc ...domain.ValueConfig) domain.Item {
	return domain.Item{
		ItemID:     id,
		Identifier: id,
		Type:       &domain.TypeConfig{Kind: domain.ItemStatsExpression},
		Values:     vc,
		ParentIdx:  -1,
	}
}

func glLine(account, class string, date time.Time, amount string) domain.LineItemDetail {
	return domain.LineItemDetail{
		TxnDate:           date,
		Amount:            dec(amount),
		AccountExternalID: account,
		ClassExternalID:   class,
	}
}

func newData() *domain.ReportData {
	return &domain.ReportData{
		ReportDataID: "rd-1",
		ReportID:     "r-1",
		StartDate:    mar1,
		EndDate:      mar31,
		PeriodType:   domain.PeriodMonthly,
	}
}

func newDef(kind domain.ReportKind, items []domain.Item, columns []domain.Column) *domain.ReportDefinition {
	return &domain.ReportDefinition{
		ReportID:  "r-1",
		CompanyID: "co-1",
		Kind:      kind,
		Year:      2025,
		Items:     items,
		Columns:   columns,
	}
}

func TestLedgerAggregationWindowAndRounding(t *testing.T) {
	def := newDef(domain.ReportStandard,
		[]domain.Item{ledgerItem("rev", domain.ViewWindow, domain.ItemAccount{AccountID: "4000", ClassID: "C1"})},
		[]domain.Column{col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent)},
	)
	c := engine.NewContext(def, newData())
	c.Ledger[domain.LedgerGeneral] = []domain.LineItemDetail{
		glLine("4000", "C1", mar15, "10.005"),
		glLine("4000", "C1", mar15, "2.001"),
		glLine("4000", "C1", feb10, "999"),  // outside window
		glLine("5000", "C1", mar15, "7.77"), // other account
	}

	v := engine.New().Compute(c, 0, &def.Columns[0])
	require.NotNil(t, v)
	require.NotNil(t, v.Value)
	assert.True(t, v.Value.Equal(dec("12.01")), "got %s", v.Value)
	require.Len(t, v.ItemAccountValues, 1)
	assert.Equal(t, "4000", v.ItemAccountValues[0].AccountID)
	assert.True(t, v.AccumulatedValue.Equal(dec("12.01")))
}

func TestLedgerAggregationCarriesAccumulated(t *testing.T) {
	def := newDef(domain.ReportStandard,
		[]domain.Item{ledgerItem("rev", domain.ViewWindow, domain.ItemAccount{AccountID: "4000"})},
		[]domain.Column{col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent)},
	)
	c := engine.NewContext(def, newData())
	c.Ledger[domain.LedgerGeneral] = []domain.LineItemDetail{glLine("4000", "", mar15, "10")}
	prev := dec("40")
	c.Previous = &domain.ReportData{Values: []domain.ItemValue{
		{ItemID: "rev", ColumnID: "c-act", Value: &prev, AccumulatedValue: dec("100")},
	}}

	v := engine.New().Compute(c, 0, &def.Columns[0])
	require.NotNil(t, v)
	assert.True(t, v.AccumulatedValue.Equal(dec("110")), "got %s", v.AccumulatedValue)
}

func TestDivisionRoundsToTwoDecimals(t *testing.T) {
	def := newDef(domain.ReportStandard,
		[]domain.Item{
			ledgerItem("a", domain.ViewWindow, domain.ItemAccount{AccountID: "1"}),
			ledgerItem("b", domain.ViewWindow, domain.ItemAccount{AccountID: "2"}),
			exprItem("ratio", domain.ValueConfig{
				ColumnType: domain.ColActual,
				Operator:   domain.OpDiv,
				Operands:   []domain.OperandRef{{Identifier: "a"}, {Identifier: "b"}},
			}),
		},
		[]domain.Column{col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent)},
	)
	c := engine.NewContext(def, newData())
	c.Ledger[domain.LedgerGeneral] = []domain.LineItemDetail{
		glLine("1", "", mar15, "10"),
		glLine("2", "", mar15, "3"),
	}

	v := engine.New().Compute(c, 2, &def.Columns[0])
	require.NotNil(t, v)
	require.NotNil(t, v.Value)
	assert.True(t, v.Value.Equal(dec("3.33")), "got %s", v.Value)
}

func TestPercentageDenominatorGuard(t *testing.T) {
	pct := func(a, b string) decimal.Decimal {
		def := newDef(domain.ReportStandard,
			[]domain.Item{
				ledgerItem("a", domain.ViewWindow, domain.ItemAccount{AccountID: "1"}),
				ledgerItem("b", domain.ViewWindow, domain.ItemAccount{AccountID: "2"}),
				exprItem("p", domain.ValueConfig{
					ColumnType: domain.ColPercentage,
					Operator:   domain.OpPercent,
					Operands:   []domain.OperandRef{{Identifier: "a"}, {Identifier: "b"}},
				}),
			},
			[]domain.Column{
				col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent),
				col("c-pct", domain.ColPercentage, domain.RangeCurrentPeriod, domain.YearCurrent),
			},
		)
		c := engine.NewContext(def, newData())
		c.Ledger[domain.LedgerGeneral] = []domain.LineItemDetail{
			glLine("1", "", mar15, a),
			glLine("2", "", mar15, b),
		}
		v := engine.New().Compute(c, 2, &def.Columns[1])
		if v == nil || v.Value == nil {
			t.Fatalf("expected a value for %s %% %s", a, b)
		}
		return *v.Value
	}

	assert.True(t, pct("25", "50").Equal(dec("50")))
	assert.True(t, pct("1", "3").Equal(dec("33.33")))
	// |denominator| <= 0.001 resolves to 0, not an explosion
	assert.True(t, pct("25", "0.001").Equal(decimal.Zero))
	assert.True(t, pct("25", "-0.001").Equal(decimal.Zero))
	assert.True(t, pct("25", "0").Equal(decimal.Zero))
}

func TestVendorBreakdownThreshold(t *testing.T) {
	def := newDef(domain.ReportVendor,
		[]domain.Item{ledgerItem("spend", domain.ViewWindow, domain.ItemAccount{AccountID: "6000"})},
		[]domain.Column{col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent)},
	)
	c := engine.NewContext(def, newData())
	acme := glLine("6000", "", mar15, "0.0005")
	acme.Vendor = "Acme"
	zeta := glLine("6000", "", mar15, "20")
	zeta.Vendor = "Zeta"
	beta := glLine("6000", "", mar15, "-5")
	beta.Vendor = "Beta"
	c.Ledger[domain.LedgerGeneral] = []domain.LineItemDetail{acme, zeta, beta}

	v := engine.New().Compute(c, 0, &def.Columns[0])
	require.NotNil(t, v)
	require.NotNil(t, v.Value)
	assert.True(t, v.Value.Equal(dec("15")), "got %s", v.Value)

	// Acme's |0.0005| is under the emission threshold
	require.Len(t, v.ItemAccountValues, 2)
	assert.Equal(t, "Beta", v.ItemAccountValues[0].Vendor)
	assert.Equal(t, "Zeta", v.ItemAccountValues[1].Vendor)
	assert.True(t, v.ItemAccountValues[0].Value.Equal(dec("-5")))
}

func TestTotalsWithNegativeForTotal(t *testing.T) {
	items := []domain.Item{
		{ItemID: "grp", Identifier: "grp", ParentIdx: -1, ChildIdx: []int{1, 2, 3}},
		ledgerItem("rev", domain.ViewWindow, domain.ItemAccount{AccountID: "4000"}),
		ledgerItem("costs", domain.ViewWindow, domain.ItemAccount{AccountID: "5000"}),
		{ItemID: "net", Identifier: "net", Totals: true},
	}
	items[1].ParentIdx = 0
	items[2].ParentIdx = 0
	items[2].NegativeForTotal = true
	items[3].ParentIdx = 0
	def := newDef(domain.ReportStandard, items,
		[]domain.Column{col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent)},
	)
	c := engine.NewContext(def, newData())
	c.Ledger[domain.LedgerGeneral] = []domain.LineItemDetail{
		glLine("4000", "", mar15, "100"),
		glLine("5000", "", mar15, "40"),
	}

	v := engine.New().Compute(c, 3, &def.Columns[0])
	require.NotNil(t, v)
	require.NotNil(t, v.Value)
	assert.True(t, v.Value.Equal(dec("60")), "got %s", v.Value)
}

func TestCarryForwardPriorYearColumn(t *testing.T) {
	def := newDef(domain.ReportStandard,
		[]domain.Item{ledgerItem("rev", domain.ViewWindow, domain.ItemAccount{AccountID: "4000"})},
		[]domain.Column{
			col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent),
			col("c-prior", domain.ColActual, domain.RangeCurrentPeriod, domain.YearPrior),
		},
	)
	c := engine.NewContext(def, newData())

	// No prior-year snapshot: the cell is absent, not zero.
	v := engine.New().Compute(c, 0, &def.Columns[1])
	assert.Nil(t, v)

	prior := dec("77.70")
	c2 := engine.NewContext(def, newData())
	c2.PriorYear = &domain.ReportData{Values: []domain.ItemValue{
		{ItemID: "rev", ColumnID: "c-act", Value: &prior, AccumulatedValue: dec("200")},
	}}
	v = engine.New().Compute(c2, 0, &def.Columns[1])
	require.NotNil(t, v)
	require.NotNil(t, v.Value)
	assert.True(t, v.Value.Equal(dec("77.70")))
	assert.True(t, v.AccumulatedValue.Equal(dec("200")))
}

func TestReferenceCopiesSourceCellExactly(t *testing.T) {
	items := []domain.Item{
		ledgerItem("src", domain.ViewWindow, domain.ItemAccount{AccountID: "4000"}),
		{
			ItemID:     "ref",
			Identifier: "ref",
			Type:       &domain.TypeConfig{Kind: domain.ItemReference, ReferenceID: "src"},
			ParentIdx:  -1,
		},
	}
	def := newDef(domain.ReportStandard, items,
		[]domain.Column{col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent)},
	)
	c := engine.NewContext(def, newData())
	c.Ledger[domain.LedgerGeneral] = []domain.LineItemDetail{glLine("4000", "", mar15, "12.34")}

	eng := engine.New()
	src := eng.Compute(c, 0, &def.Columns[0])
	ref := eng.Compute(c, 1, &def.Columns[0])
	require.NotNil(t, src)
	require.NotNil(t, ref)
	require.NotNil(t, ref.Value)
	assert.True(t, ref.Value.Equal(*src.Value))
	assert.True(t, ref.AccumulatedValue.Equal(src.AccumulatedValue))
	assert.Equal(t, src.ColumnType, ref.ColumnType)
}

func TestVarianceRequiresBothOperands(t *testing.T) {
	def := newDef(domain.ReportStandard,
		[]domain.Item{ledgerItem("rev", domain.ViewWindow, domain.ItemAccount{AccountID: "4000"})},
		[]domain.Column{
			col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent),
			col("c-var", domain.ColVariance, domain.RangeCurrentPeriod, domain.YearPrior),
		},
	)

	// Current computes but no prior-year snapshot exists: nil, not zero.
	c := engine.NewContext(def, newData())
	c.Ledger[domain.LedgerGeneral] = []domain.LineItemDetail{glLine("4000", "", mar15, "100")}
	v := engine.New().Compute(c, 0, &def.Columns[1])
	assert.Nil(t, v)

	prior := dec("80")
	c2 := engine.NewContext(def, newData())
	c2.Ledger[domain.LedgerGeneral] = []domain.LineItemDetail{glLine("4000", "", mar15, "100")}
	c2.PriorYear = &domain.ReportData{Values: []domain.ItemValue{
		{ItemID: "rev", ColumnID: "c-act", Value: &prior},
	}}
	v = engine.New().Compute(c2, 0, &def.Columns[1])
	require.NotNil(t, v)
	require.NotNil(t, v.Value)
	assert.True(t, v.Value.Equal(dec("20")), "got %s", v.Value)
}

func TestYearToDateAccumulatesPreviousSnapshot(t *testing.T) {
	items := []domain.Item{{
		ItemID:     "rev",
		Identifier: "rev",
		Type:       &domain.TypeConfig{Kind: domain.ItemMetric, MetricCode: "headcount"},
		ParentIdx:  -1,
	}}
	def := newDef(domain.ReportStandard, items,
		[]domain.Column{
			col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent),
			col("c-ytd", domain.ColActual, domain.RangeYTD, domain.YearCurrent),
		},
	)

	c := engine.NewContext(def, newData())
	prevYTD := dec("50")
	c.Previous = &domain.ReportData{Values: []domain.ItemValue{
		{ItemID: "rev", ColumnID: "c-ytd", Value: &prevYTD},
	}}
	start, end := c.Window(domain.RangeCurrentPeriod)
	ten := dec("10")
	c.Metrics[engine.MetricKey{Code: "headcount", Start: start, End: end}] = &ten

	v := engine.New().Compute(c, 0, &def.Columns[1])
	require.NotNil(t, v)
	require.NotNil(t, v.Value)
	assert.True(t, v.Value.Equal(dec("60")), "got %s", v.Value)
	assert.True(t, v.AccumulatedValue.Equal(dec("60")))
}

func TestMetricAllowBlank(t *testing.T) {
	items := []domain.Item{{
		ItemID:     "m",
		Identifier: "m",
		Type:       &domain.TypeConfig{Kind: domain.ItemMetric, MetricCode: "revpar", AllowBlank: true},
		ParentIdx:  -1,
	}}
	def := newDef(domain.ReportStandard, items,
		[]domain.Column{col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent)},
	)

	// No reading fetched: blank metric stays blank.
	c := engine.NewContext(def, newData())
	v := engine.New().Compute(c, 0, &def.Columns[0])
	require.NotNil(t, v)
	assert.Nil(t, v.Value)

	// Without allow-blank the same miss is zero.
	def.Items[0].Type.AllowBlank = false
	c2 := engine.NewContext(def, newData())
	v = engine.New().Compute(c2, 0, &def.Columns[0])
	require.NotNil(t, v)
	require.NotNil(t, v.Value)
	assert.True(t, v.Value.Equal(decimal.Zero))
}

func TestUntypedNonTotalsItemProducesNoCell(t *testing.T) {
	items := []domain.Item{{ItemID: "hdr", Identifier: "hdr", ParentIdx: -1}}
	def := newDef(domain.ReportStandard, items,
		[]domain.Column{col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent)},
	)
	c := engine.NewContext(def, newData())
	assert.Nil(t, engine.New().Compute(c, 0, &def.Columns[0]))
}

func TestNetChangeView(t *testing.T) {
	def := newDef(domain.ReportStandard,
		[]domain.Item{ledgerItem("cash", domain.ViewNetChange, domain.ItemAccount{AccountID: "1000"})},
		[]domain.Column{col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent)},
	)
	c := engine.NewContext(def, newData())
	c.Ledger[domain.LedgerBalance] = []domain.LineItemDetail{glLine("1000", "", mar31, "500")}
	c.Ledger[domain.LedgerOpeningBalance] = []domain.LineItemDetail{glLine("1000", "", mar1, "350")}

	v := engine.New().Compute(c, 0, &def.Columns[0])
	require.NotNil(t, v)
	require.NotNil(t, v.Value)
	assert.True(t, v.Value.Equal(dec("150")), "got %s", v.Value)
}

func TestTaxCollectedExcludesMatchedTransactions(t *testing.T) {
	def := newDef(domain.ReportStandard,
		[]domain.Item{ledgerItem("tax", domain.ViewTaxCollected, domain.ItemAccount{AccountID: "2200"})},
		[]domain.Column{col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent)},
	)
	c := engine.NewContext(def, newData())
	inBank := glLine("2200", "", mar15, "30")
	inBank.QboID = "txn-1"
	organic := glLine("2200", "", mar15, "12")
	organic.QboID = "txn-2"
	c.Ledger[domain.LedgerGeneral] = []domain.LineItemDetail{inBank, organic}
	bankRow := domain.LineItemDetail{QboID: "txn-1"}
	c.Ledger[domain.LedgerBank] = []domain.LineItemDetail{bankRow}

	v := engine.New().Compute(c, 0, &def.Columns[0])
	require.NotNil(t, v)
	require.NotNil(t, v.Value)
	assert.True(t, v.Value.Equal(dec("12")), "got %s", v.Value)
}

func TestDepartmentalClassDifference(t *testing.T) {
	items := []domain.Item{{
		ItemID:     "dept",
		Identifier: "dept",
		Type:       &domain.TypeConfig{Kind: domain.ItemLedgerAccount},
		Accounts:   []domain.ItemAccount{{ClassID: "C9"}},
		ParentIdx:  -1,
	}}
	def := newDef(domain.ReportDepartmental, items,
		[]domain.Column{col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent)},
	)
	c := engine.NewContext(def, newData())
	c.Ledger[domain.LedgerGeneral] = []domain.LineItemDetail{
		glLine("4000", "C9", mar15, "-120"), // credit, revenue
		glLine("5000", "C9", mar15, "45"),   // debit, expense
		glLine("5000", "C8", mar15, "999"),  // other class
	}

	v := engine.New().Compute(c, 0, &def.Columns[0])
	require.NotNil(t, v)
	require.NotNil(t, v.Value)
	assert.True(t, v.Value.Equal(dec("75")), "got %s", v.Value)
	require.Len(t, v.ItemAccountValues, 1)
	assert.Equal(t, "C9", v.ItemAccountValues[0].ClassID)
}

func TestBudgetActualPerBudgetEntries(t *testing.T) {
	def := newDef(domain.ReportStandard,
		[]domain.Item{ledgerItem("rev", domain.ViewWindow, domain.ItemAccount{AccountID: "4000", ClassID: "C1"})},
		[]domain.Column{
			col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent),
			col("c-bud", domain.ColBudgetActual, domain.RangeCurrentPeriod, domain.YearNone),
		},
	)
	c := engine.NewContext(def, newData())
	c.Budgets = []domain.Budget{
		{
			BudgetID: "b-1",
			Items: []domain.BudgetItem{{
				BudgetItemID: "bi-1",
				AccountID:    "4000",
				ClassID:      "C1",
				Values:       []domain.BudgetItemValue{{Month: 3, Value: dec("250")}},
			}},
		},
		{BudgetID: "b-2"},
	}

	v := engine.New().Compute(c, 0, &def.Columns[1])
	require.NotNil(t, v)
	require.Len(t, v.BudgetValues, 2)
	assert.Equal(t, "b-1", v.BudgetValues[0].BudgetID)
	assert.True(t, v.BudgetValues[0].Value.Equal(dec("250")))
	assert.True(t, v.BudgetValues[1].Value.Equal(decimal.Zero))
}

func TestBudgetVarianceDefaultsToActualMinusPlanned(t *testing.T) {
	def := newDef(domain.ReportStandard,
		[]domain.Item{ledgerItem("rev", domain.ViewWindow, domain.ItemAccount{AccountID: "4000", ClassID: "C1"})},
		[]domain.Column{
			col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent),
			col("c-bud", domain.ColBudgetActual, domain.RangeCurrentPeriod, domain.YearNone),
			col("c-bvar", domain.ColBudgetVariance, domain.RangeCurrentPeriod, domain.YearNone),
		},
	)
	c := engine.NewContext(def, newData())
	c.Ledger[domain.LedgerGeneral] = []domain.LineItemDetail{glLine("4000", "C1", mar15, "300")}
	c.Budgets = []domain.Budget{{
		BudgetID: "b-1",
		Items: []domain.BudgetItem{{
			BudgetItemID: "bi-1",
			AccountID:    "4000",
			ClassID:      "C1",
			Values:       []domain.BudgetItemValue{{Month: 3, Value: dec("250")}},
		}},
	}}

	v := engine.New().Compute(c, 0, &def.Columns[2])
	require.NotNil(t, v)
	require.Len(t, v.BudgetValues, 1)
	assert.True(t, v.BudgetValues[0].Value.Equal(dec("50")), "got %s", v.BudgetValues[0].Value)
}

func TestComputeAllSkipsAbsentCells(t *testing.T) {
	items := []domain.Item{
		{ItemID: "hdr", Identifier: "hdr", ParentIdx: -1},
		ledgerItem("rev", domain.ViewWindow, domain.ItemAccount{AccountID: "4000"}),
	}
	def := newDef(domain.ReportStandard, items,
		[]domain.Column{col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent)},
	)
	c := engine.NewContext(def, newData())
	c.Ledger[domain.LedgerGeneral] = []domain.LineItemDetail{glLine("4000", "", mar15, "5")}

	values := engine.New().ComputeAll(c)
	require.Len(t, values, 1)
	assert.Equal(t, "rev", values[0].ItemID)
	assert.Equal(t, domain.ColActual, values[0].ColumnType)
}

func TestPriorDayYTDCopiesJanuary(t *testing.T) {
	def := newDef(domain.ReportStandard,
		[]domain.Item{ledgerItem("cash", domain.ViewPriorDay, domain.ItemAccount{AccountID: "1000"})},
		[]domain.Column{
			col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent),
			col("c-ytd", domain.ColActual, domain.RangeYTD, domain.YearCurrent),
		},
	)
	c := engine.NewContext(def, newData())
	c.Ledger[domain.LedgerPriorDayBalance] = []domain.LineItemDetail{glLine("1000", "", mar31, "800")}

	// Without a January snapshot the cell cannot be resolved.
	v := engine.New().Compute(c, 0, &def.Columns[1])
	assert.Nil(t, v)

	jan := dec("500")
	c = engine.NewContext(def, newData())
	c.Ledger[domain.LedgerPriorDayBalance] = []domain.LineItemDetail{glLine("1000", "", mar31, "800")}
	c.January = &domain.ReportData{Values: []domain.ItemValue{
		{ItemID: "cash", ColumnID: "c-act", Value: &jan},
	}}

	v = engine.New().Compute(c, 0, &def.Columns[1])
	require.NotNil(t, v)
	require.NotNil(t, v.Value)
	// January's current-period value verbatim, not an accumulation and not
	// this month's own 800 balance.
	assert.True(t, v.Value.Equal(dec("500")), "got %s", v.Value)
}

func TestRatioExpressionInActualColumnIsPercentageClass(t *testing.T) {
	items := []domain.Item{
		ledgerItem("profit", domain.ViewWindow, domain.ItemAccount{AccountID: "5000"}),
		ledgerItem("rev", domain.ViewWindow, domain.ItemAccount{AccountID: "4000"}),
		exprItem("margin", domain.ValueConfig{
			ColumnType: domain.ColActual,
			Operator:   domain.OpPercent,
			Operands:   []domain.OperandRef{{Identifier: "profit"}, {Identifier: "rev"}},
		}),
		{
			ItemID:     "ref",
			Identifier: "ref",
			Type:       &domain.TypeConfig{Kind: domain.ItemReference, ReferenceID: "margin"},
			ParentIdx:  -1,
		},
	}
	def := newDef(domain.ReportStandard, items,
		[]domain.Column{col("c-act", domain.ColActual, domain.RangeCurrentPeriod, domain.YearCurrent)},
	)
	c := engine.NewContext(def, newData())
	c.Ledger[domain.LedgerGeneral] = []domain.LineItemDetail{
		glLine("5000", "", mar15, "25"),
		glLine("4000", "", mar15, "50"),
	}

	eng := engine.New()
	margin := eng.Compute(c, 2, &def.Columns[0])
	require.NotNil(t, margin)
	require.NotNil(t, margin.Value)
	assert.True(t, margin.Value.Equal(dec("50")), "got %s", margin.Value)
	// The cell's class follows the ratio computation, not the actual column.
	assert.Equal(t, domain.ColPercentage, margin.ColumnType)

	ref := eng.Compute(c, 3, &def.Columns[0])
	require.NotNil(t, ref)
	assert.Equal(t, domain.ColPercentage, ref.ColumnType)
}
