package decode

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/arcadia-data/preview/pkg/classify"
)

// SheetScanRows bounds the number of data rows scanned when inferring a
// sheet's column set. A full scan of a huge sheet would dominate decode
// latency; columns introduced after this row are not discovered. Tests
// target the boundary explicitly.
const SheetScanRows = 30

// Workbook is the decoded representation of an XLSX artifact. The first
// sheet is selected by default.
type Workbook struct {
	Sheets []string
	Active string

	file *excelize.File
}

// XLSX opens a workbook from raw bytes.
func XLSX(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, newError(classify.FamilyXlsx, fmt.Sprintf("open workbook: %v", err))
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, newError(classify.FamilyXlsx, "workbook has no sheets")
	}

	return &Workbook{Sheets: sheets, Active: sheets[0], file: f}, nil
}

// Close releases the underlying workbook resources.
func (w *Workbook) Close() error {
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}

// Table materializes one sheet. The column set is inferred by scanning at
// most SheetScanRows data rows; the first row supplies column titles, and
// titles starting with ReservedColumnPrefix render empty.
func (w *Workbook) Table(sheet string) (*Table, error) {
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, newError(classify.FamilyXlsx, fmt.Sprintf("read sheet %q: %v", sheet, err))
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	header := rows[0]
	data := rows[1:]

	width := len(header)
	for i, row := range data {
		if i >= SheetScanRows {
			break
		}
		if len(row) > width {
			width = len(row)
		}
	}

	table := &Table{}
	for i := 0; i < width; i++ {
		title := ""
		if i < len(header) {
			title = header[i]
		}
		if len(title) >= len(ReservedColumnPrefix) && title[:len(ReservedColumnPrefix)] == ReservedColumnPrefix {
			title = ""
		}
		table.Columns = append(table.Columns, Column{Key: columnKey(i), Title: title})
	}

	for _, row := range data {
		cells := make(map[string]string, width)
		for i, cell := range row {
			if i >= width {
				break
			}
			cells[columnKey(i)] = cell
		}
		table.Rows = append(table.Rows, Row{Key: uuid.NewString(), Cells: cells})
	}

	return table, nil
}
