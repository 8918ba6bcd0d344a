package decode

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/arcadia-data/preview/pkg/classify"
)

// CSV parses a CSV stream into a Table. The parse is incremental and does
// not abort on a malformed row: every row-level error is collected and, if
// any occurred, they are reported jointly as a single decode failure.
//
// Column definitions come from the first row only. Later rows may carry
// more or fewer fields; cells bind to columns by index, and fields beyond
// the header width are dropped.
func CSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate variable row shapes

	table := &Table{}
	var reasons []string

	for line := 1; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				reasons = append(reasons, fmt.Sprintf("row %d: %v", pe.Line, pe.Err))
				continue
			}
			reasons = append(reasons, fmt.Sprintf("row %d: %v", line, err))
			break
		}

		if table.Columns == nil {
			for i, title := range record {
				if len(title) >= len(ReservedColumnPrefix) && title[:len(ReservedColumnPrefix)] == ReservedColumnPrefix {
					title = ""
				}
				table.Columns = append(table.Columns, Column{Key: columnKey(i), Title: title})
			}
			continue
		}

		cells := make(map[string]string, len(table.Columns))
		for i, field := range record {
			if i >= len(table.Columns) {
				break
			}
			cells[columnKey(i)] = field
		}
		table.Rows = append(table.Rows, Row{Key: uuid.NewString(), Cells: cells})
	}

	if len(reasons) > 0 {
		return nil, &Error{Format: classify.FamilyCsv, Reasons: reasons}
	}
	return table, nil
}
