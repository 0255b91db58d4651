package iotable

import (
	"strings"

	"github.com/matzehuels/prodnet/pkg/errors"
	"github.com/matzehuels/prodnet/pkg/schema"
)

// RawTable is a parsed but unsanitized use table: row labels are
// commodity/aggregate codes, column labels are industry/aggregate codes and
// final-demand categories, and every cell is the verbatim text read from
// the source file.
type RawTable struct {
	RowLabels []string   `json:"row_labels"`
	ColLabels []string   `json:"col_labels"`
	Cells     [][]string `json:"cells"`
}

// Cell returns the text at (r, c), or "" when the row is shorter than the
// header (spreadsheets drop trailing empty cells).
func (t *RawTable) Cell(r, c int) string {
	if r < 0 || r >= len(t.Cells) {
		return ""
	}
	row := t.Cells[r]
	if c < 0 || c >= len(row) {
		return ""
	}
	return row[c]
}

// FromRows builds a RawTable from spreadsheet-style rows using layout.
//
// The row at layout.HeaderRow supplies column labels; every later row not
// listed in layout.SkipRows is a data row labelled by the cell in
// layout.LabelColumn. Rows with an empty label (blank lines, footnotes)
// are ignored. The label column itself does not appear in ColLabels.
func FromRows(rows [][]string, layout schema.Layout) (*RawTable, error) {
	if layout.HeaderRow >= len(rows) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"header row %d beyond end of table (%d rows)", layout.HeaderRow, len(rows))
	}

	skip := make(map[int]bool, len(layout.SkipRows))
	for _, r := range layout.SkipRows {
		skip[r] = true
	}

	header := rows[layout.HeaderRow]
	if layout.LabelColumn >= len(header) && len(header) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"label column %d beyond header width %d", layout.LabelColumn, len(header))
	}

	colPos := make([]int, 0, len(header))
	t := &RawTable{}
	for c, label := range header {
		if c == layout.LabelColumn {
			continue
		}
		t.ColLabels = append(t.ColLabels, strings.TrimSpace(label))
		colPos = append(colPos, c)
	}

	for r := layout.HeaderRow + 1; r < len(rows); r++ {
		if skip[r] {
			continue
		}
		row := rows[r]
		if layout.LabelColumn >= len(row) {
			continue
		}
		label := strings.TrimSpace(row[layout.LabelColumn])
		if label == "" {
			continue
		}
		cells := make([]string, len(colPos))
		for i, c := range colPos {
			if c < len(row) {
				cells[i] = row[c]
			}
		}
		t.RowLabels = append(t.RowLabels, label)
		t.Cells = append(t.Cells, cells)
	}

	return t, nil
}
