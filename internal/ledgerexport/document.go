package ledgerexport

// The raw export is a recursive document: an ordered column list whose titles
// drive positional field extraction, and a row forest mixing Section rows
// (which nest further rows) with Data rows (which carry positional values).

// Document is the root of a hierarchical ledger export.
type Document struct {
	Columns ColumnList `json:"Columns"`
	Rows    RowList    `json:"Rows"`
}

// ColumnList wraps the ordered column definitions.
type ColumnList struct {
	Column []ColumnDef `json:"Column"`
}

// ColumnDef describes one positional column by title and kind.
type ColumnDef struct {
	ColTitle string `json:"ColTitle"`
	ColType  string `json:"ColType"`
}

// RowList wraps an ordered row collection.
type RowList struct {
	Row []Row `json:"Row"`
}

// RowType discriminates Section rows from Data rows.
type RowType string

const (
	RowSection RowType = "Section"
	RowData    RowType = "Data"
)

// Row is either a Section (Header + nested Rows) or a Data row (positional
// ColData values). Section headers may themselves carry ColData; the
// balance-sheet variant reads a parent account's own balance from there.
type Row struct {
	Type    RowType   `json:"type"`
	Header  *Header   `json:"Header,omitempty"`
	Rows    *RowList  `json:"Rows,omitempty"`
	ColData []ColData `json:"ColData,omitempty"`
}

// Header is the heading of a Section row.
type Header struct {
	ColData []ColData `json:"ColData"`
}

// ColData is one positional cell: a display value plus an optional external id
// (chart-of-account or accounting-class id).
type ColData struct {
	Value string `json:"value"`
	ID    string `json:"id,omitempty"`
}

// at returns the cell at a column position, or a zero cell when the row is
// shorter than the column list.
func at(cells []ColData, idx int) ColData {
	if idx < 0 || idx >= len(cells) {
		return ColData{}
	}
	return cells[idx]
}
