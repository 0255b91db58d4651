package iotable

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/prodnet/pkg/errors"
	"github.com/matzehuels/prodnet/pkg/schema"
)

// Load reads a use table from a .csv or .xlsx file at path.
// The file extension selects the reader; layout locates the table.
func Load(path string, layout schema.Layout) (*RawTable, error) {
	if err := errors.ValidateTableFilename(path); err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSXFile(path, layout)
	default:
		return ReadCSVFile(path, layout)
	}
}

// ReadCSVFile opens path and decodes it with [ReadCSV].
func ReadCSVFile(path string, layout schema.Layout) (*RawTable, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "table %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f, layout)
}

// ReadCSV decodes a comma-separated use table. Rows may have differing
// lengths; short rows are padded with empty cells.
func ReadCSV(r io.Reader, layout schema.Layout) (*RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode csv")
	}
	return FromRows(rows, layout)
}

// ReadXLSXFile decodes a use table from an Excel workbook.
//
// When layout.Sheet is empty the first sheet in the workbook is used.
// Legacy .xls workbooks (as published by BEA) must be re-saved as .xlsx.
func ReadXLSXFile(path string, layout schema.Layout) (*RawTable, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "table %s", path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open workbook %s", path)
	}
	defer f.Close()
	return readWorkbook(f, layout)
}

// ReadXLSX decodes a use table from an Excel workbook stream.
func ReadXLSX(r io.Reader, layout schema.Layout) (*RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open workbook")
	}
	defer f.Close()
	return readWorkbook(f, layout)
}

func readWorkbook(f *excelize.File, layout schema.Layout) (*RawTable, error) {
	sheet := layout.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read sheet %q", sheet)
	}
	return FromRows(rows, layout)
}
