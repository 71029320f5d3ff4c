package domain

// ReportKind distinguishes how a report's items and values are produced.
type ReportKind string

const (
	ReportStandard     ReportKind = "STANDARD"
	ReportDepartmental ReportKind = "DEPARTMENTAL"
	ReportVendor       ReportKind = "VENDOR"
)

// ItemKind is the closed set of calculation kinds an item can carry.
type ItemKind string

const (
	ItemMetric          ItemKind = "METRIC"
	ItemLedgerAccount   ItemKind = "LEDGER_ACCOUNT"
	ItemStatsExpression ItemKind = "STATS_EXPRESSION"
	ItemReference       ItemKind = "REFERENCE"
)

// LedgerView selects which slice of the ledger a LEDGER_ACCOUNT item aggregates.
type LedgerView string

const (
	ViewWindow          LedgerView = ""
	ViewBalance         LedgerView = "BALANCE"
	ViewPriorDay        LedgerView = "PRIOR_DAY"
	ViewNetChange       LedgerView = "NET_CHANGE"
	ViewBank            LedgerView = "BANK"
	ViewAccountsPayable LedgerView = "ACCOUNTS_PAYABLE"
	ViewTaxCollected    LedgerView = "TAX_COLLECTED"
	ViewDebitsOnly      LedgerView = "DEBITS_ONLY"
	ViewCreditsOnly     LedgerView = "CREDITS_ONLY"
)

// DeptMeasure names the figure a departmental item reports for its class.
type DeptMeasure string

const (
	DeptRevenue DeptMeasure = "REVENUE"
	DeptExpense DeptMeasure = "EXPENSE"
	DeptProfit  DeptMeasure = "PROFIT"
)

// TypeConfig is the typed calculation descriptor attached to an item.
// Exactly the fields relevant to its Kind are populated; Validate enforces that
// at load time.
type TypeConfig struct {
	Kind           ItemKind    `json:"kind"`
	LedgerView     LedgerView  `json:"ledgerView,omitempty"`     // LEDGER_ACCOUNT only
	MetricCode     string      `json:"metricCode,omitempty"`     // METRIC only
	AllowBlank     bool        `json:"allowBlank,omitempty"`     // METRIC only
	ReferenceID    string      `json:"referenceID,omitempty"`    // REFERENCE only
	ReferenceRange ColumnRange `json:"referenceRange,omitempty"` // REFERENCE only, optional override
	DeptMeasure    DeptMeasure `json:"deptMeasure,omitempty"`    // departmental reports only
}

// Operator is the closed arithmetic operator set used by value expressions.
type Operator string

const (
	OpAdd     Operator = "+"
	OpSub     Operator = "-"
	OpDiv     Operator = "/"
	OpPercent Operator = "%"
	OpSum     Operator = "sum"
)

// OperandRef names one operand of a value expression. Identifier may be
// qualified as "<dependentReportKind>/<itemIdentifier>" to resolve against a
// dependent report's matching-period snapshot. Column axes default to the
// requested column's range, the ACTUAL type and the current year when empty.
type OperandRef struct {
	Identifier string      `json:"identifier"`
	ColumnType ColumnType  `json:"columnType,omitempty"`
	Range      ColumnRange `json:"range,omitempty"`
	Year       ColumnYear  `json:"year,omitempty"`
	Negative   bool        `json:"negative,omitempty"` // sign flag for sum operands
}

// ValueConfig is one per-column-type arithmetic expression owned by an item.
type ValueConfig struct {
	ColumnType ColumnType   `json:"columnType"`
	Operator   Operator     `json:"operator"`
	Operands   []OperandRef `json:"operands"`
}

// ItemAccount maps an item onto one chart-of-account/accounting-class pair.
type ItemAccount struct {
	AccountID string `json:"accountID"` // chart-of-account external id
	ClassID   string `json:"classID"`   // accounting-class external id, may be empty
}

// Item is one node of a report's item forest. Tree shape is stored as a flat
// arena: ParentIdx/ChildIdx are indices into ReportDefinition.Items, which
// keeps the structure cycle-free and trivially serialisable.
type Item struct {
	ItemID           string        `json:"itemID"`
	Identifier       string        `json:"identifier"` // unique within the report
	Order            int           `json:"order"`
	Totals           bool          `json:"totals"`
	Show             bool          `json:"show"`
	Negative         bool          `json:"negative"`
	NegativeForTotal bool          `json:"negativeForTotal"`
	Type             *TypeConfig   `json:"type,omitempty"`
	Values           []ValueConfig `json:"values,omitempty"`
	Accounts         []ItemAccount `json:"accounts,omitempty"`
	ParentIdx        int           `json:"parentIdx"` // -1 for roots
	ChildIdx         []int         `json:"childIdx,omitempty"`
}

// ValueConfigFor returns the item's expression for a column type, or nil.
func (it *Item) ValueConfigFor(ct ColumnType) *ValueConfig {
	for i := range it.Values {
		if it.Values[i].ColumnType == ct {
			return &it.Values[i]
		}
	}
	return nil
}

// ReportDefinition owns the item forest, the column list and the settings the
// computation engine reads. Read-only to this core; authored by template
// loading and mapping tooling elsewhere.
type ReportDefinition struct {
	ReportID        string     `json:"reportID"`
	CompanyID       string     `json:"companyID"`
	Kind            ReportKind `json:"kind"`
	TemplateName    string     `json:"templateName,omitempty"` // empty for the dynamic departmental kind
	DependentKinds  []string   `json:"dependentKinds,omitempty"`
	SkipClassFilter bool       `json:"skipClassFilter"`
	Year            int        `json:"year"`
	Items           []Item     `json:"items"`
	Columns         []Column   `json:"columns"`
	AuditFields
}

// ItemByIdentifier returns the arena index of the item with the given
// identifier, or -1.
func (r *ReportDefinition) ItemByIdentifier(identifier string) int {
	for i := range r.Items {
		if r.Items[i].Identifier == identifier {
			return i
		}
	}
	return -1
}

// ColumnBy returns the column matching the (type, range, year) triple, or nil.
func (r *ReportDefinition) ColumnBy(ct ColumnType, cr ColumnRange, cy ColumnYear) *Column {
	for i := range r.Columns {
		c := &r.Columns[i]
		if c.Type == ct && c.Range == cr && c.Year == cy {
			return c
		}
	}
	return nil
}

// Siblings returns the arena indices sharing the item's parent, the item
// itself included. Roots are siblings of each other.
func (r *ReportDefinition) Siblings(idx int) []int {
	parent := r.Items[idx].ParentIdx
	if parent >= 0 {
		return r.Items[parent].ChildIdx
	}
	var roots []int
	for i := range r.Items {
		if r.Items[i].ParentIdx < 0 {
			roots = append(roots, i)
		}
	}
	return roots
}

// TotalsChild returns the arena index of the item's child carrying the totals
// flag, or -1.
func (r *ReportDefinition) TotalsChild(idx int) int {
	for _, ci := range r.Items[idx].ChildIdx {
		if r.Items[ci].Totals {
			return ci
		}
	}
	return -1
}

// HasMetricItem reports whether any item in the forest is metric-typed.
func (r *ReportDefinition) HasMetricItem() bool {
	for i := range r.Items {
		if t := r.Items[i].Type; t != nil && t.Kind == ItemMetric {
			return true
		}
	}
	return false
}

// HasBudgetColumn reports whether the report declares any budget-typed column.
func (r *ReportDefinition) HasBudgetColumn() bool {
	for i := range r.Columns {
		if r.Columns[i].Type.IsBudget() {
			return true
		}
	}
	return false
}

// MappingPairs returns every (account id, class id) pair over all item
// accounts, in arena order. The digest tracker sorts these before hashing.
func (r *ReportDefinition) MappingPairs() []ItemAccount {
	var pairs []ItemAccount
	for i := range r.Items {
		pairs = append(pairs, r.Items[i].Accounts...)
	}
	return pairs
}

// TemplateDefined reports whether the report's shape comes from an on-disk
// template. The departmental kind builds its items dynamically instead.
func (r *ReportDefinition) TemplateDefined() bool {
	return r.Kind != ReportDepartmental && r.TemplateName != ""
}
