package viewer

import (
	"bytes"
	"context"
	"html"
	"strings"

	"github.com/arcadia-data/preview/pkg/classify"
	"github.com/arcadia-data/preview/pkg/decode"
)

// TablePageSize is the row pagination window for tabular viewers.
const TablePageSize = 50

// TableViewer renders CSV artifacts as a paginated table.
type TableViewer struct{}

func (v *TableViewer) Render(ctx context.Context, in Input) (*Fragment, error) {
	if in.Loading || in.Contents == nil {
		return skeleton(classify.FamilyCsv), nil
	}

	table, err := decode.CSV(bytes.NewReader(in.Contents))
	if err != nil {
		return nil, err
	}

	return &Fragment{
		Family: classify.FamilyCsv,
		HTML:   renderTable(table, 0),
		State: map[string]any{
			"page":      0,
			"pageSize":  TablePageSize,
			"pageCount": pageCount(len(table.Rows)),
			"rowCount":  len(table.Rows),
		},
	}, nil
}

// SheetViewer renders XLSX workbooks with sheet tabs.
type SheetViewer struct{}

func (v *SheetViewer) Render(ctx context.Context, in Input) (*Fragment, error) {
	if in.Loading || in.Contents == nil {
		return skeleton(classify.FamilyXlsx), nil
	}

	wb, err := decode.XLSX(in.Contents)
	if err != nil {
		return nil, err
	}
	defer wb.Close() //nolint:errcheck // best-effort close

	table, err := wb.Table(wb.Active)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(`<nav class="sheet-tabs">`)
	for _, sheet := range wb.Sheets {
		cls := "sheet-tab"
		if sheet == wb.Active {
			cls += " active"
		}
		sb.WriteString(`<button class="` + cls + `">` + html.EscapeString(sheet) + `</button>`)
	}
	sb.WriteString(`</nav>`)
	sb.WriteString(renderTable(table, 0))

	return &Fragment{
		Family: classify.FamilyXlsx,
		HTML:   sb.String(),
		State: map[string]any{
			"sheets":    wb.Sheets,
			"active":    wb.Active,
			"page":      0,
			"pageSize":  TablePageSize,
			"pageCount": pageCount(len(table.Rows)),
		},
	}, nil
}

func pageCount(rows int) int {
	if rows == 0 {
		return 1
	}
	return (rows + TablePageSize - 1) / TablePageSize
}

// renderTable writes one page of a decoded table. Row elements carry the
// synthetic row key so client-side sorting keeps identity.
func renderTable(table *decode.Table, page int) string {
	start := page * TablePageSize
	end := start + TablePageSize
	if start > len(table.Rows) {
		start = len(table.Rows)
	}
	if end > len(table.Rows) {
		end = len(table.Rows)
	}

	var sb strings.Builder
	sb.WriteString(`<table class="preview-table"><thead><tr>`)
	for _, col := range table.Columns {
		sb.WriteString(`<th>` + html.EscapeString(col.Title) + `</th>`)
	}
	sb.WriteString(`</tr></thead><tbody>`)
	for _, row := range table.Rows[start:end] {
		sb.WriteString(`<tr data-key="` + html.EscapeString(row.Key) + `">`)
		for _, col := range table.Columns {
			sb.WriteString(`<td>` + html.EscapeString(row.Cells[col.Key]) + `</td>`)
		}
		sb.WriteString(`</tr>`)
	}
	sb.WriteString(`</tbody></table>`)
	return sb.String()
}
