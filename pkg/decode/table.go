package decode

import "strconv"

const (
	// ColumnKeyPrefix builds index-based column keys (col0, col1, ...).
	// Keys are positional so later rows with more or fewer fields than the
	// header still land in stable columns.
	ColumnKeyPrefix = "col"

	// ReservedColumnPrefix marks synthetic internal columns. Headers that
	// start with this prefix render with an empty visible title.
	ReservedColumnPrefix = "__pv_"
)

// Column is one column of a decoded table.
type Column struct {
	// Key is the positional key, col0..colN.
	Key string
	// Title is the visible header; empty for reserved internal columns.
	Title string
}

// Row is one data row. Key is a synthetic stable identity that survives
// sorting and filtering; Cells maps column keys to cell text.
type Row struct {
	Key   string
	Cells map[string]string
}

// Table is the decoded representation shared by the CSV and XLSX paths.
type Table struct {
	Columns []Column
	Rows    []Row
}

func columnKey(i int) string {
	return ColumnKeyPrefix + strconv.Itoa(i)
}
