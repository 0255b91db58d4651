package iotable

import (
	"encoding/csv"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/prodnet/pkg/errors"
	"github.com/matzehuels/prodnet/pkg/schema"
)

func toySchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(`
name = "toy"
missing_sentinels = ["---", ""]

[layout]
header_row = 1
skip_rows = [2]
label_column = 0

[aux]
total_intermediate_row = "T005"
total_intermediate_col = "T001"
final_consumption_col = "F010"

[drop]
rows = ["V001"]
columns = ["Name", "F02E"]

[[industries]]
code = "A"
name = "Alpha"

[[industries]]
code = "B"
name = "Beta"
`))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return s
}

// Columns deliberately out of canonical order (B before A) and padded with
// dropped and unknown labels.
const toyCSV = `Use table,,,,,,,
Code,Name,B,A,T001,F02E,F010,X99
,,,,,,,
A,Alpha,"1,000",---,1000,5,40,9
B,Beta,20,10,30,5,30,9
V001,Comp,1,1,,,,
T005,Total,1050,10,,,,
Z9,Mystery,0,0,0,0,0,0
`

func TestReadCSV(t *testing.T) {
	s := toySchema(t)
	raw, err := ReadCSV(strings.NewReader(toyCSV), s.Layout)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	wantCols := []string{"Name", "B", "A", "T001", "F02E", "F010", "X99"}
	if !reflect.DeepEqual(raw.ColLabels, wantCols) {
		t.Errorf("ColLabels = %v, want %v", raw.ColLabels, wantCols)
	}
	wantRows := []string{"A", "B", "V001", "T005", "Z9"}
	if !reflect.DeepEqual(raw.RowLabels, wantRows) {
		t.Errorf("RowLabels = %v, want %v", raw.RowLabels, wantRows)
	}
	if got := raw.Cell(0, 1); got != "1,000" {
		t.Errorf("Cell(0,1) = %q, want 1,000", got)
	}
	if got := raw.Cell(2, 6); got != "" {
		t.Errorf("Cell(2,6) = %q, want empty", got)
	}
	if got := raw.Cell(99, 0); got != "" {
		t.Errorf("Cell out of range = %q, want empty", got)
	}
}

func TestFromRowsHeaderBeyondEnd(t *testing.T) {
	_, err := FromRows([][]string{{"a"}}, schema.Layout{HeaderRow: 3})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
}

func TestSanitize(t *testing.T) {
	s := toySchema(t)
	raw, err := ReadCSV(strings.NewReader(toyCSV), s.Layout)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	tbl, err := Sanitize(raw, s)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}

	if !reflect.DeepEqual(tbl.Codes, []string{"A", "B"}) {
		t.Fatalf("Codes = %v", tbl.Codes)
	}
	if !reflect.DeepEqual(tbl.Names, []string{"Alpha", "Beta"}) {
		t.Errorf("Names = %v", tbl.Names)
	}

	// Reordered into canonical order, sentinel replaced, separators stripped.
	want := [][]float64{
		{0, 1000},
		{10, 20},
	}
	for i := range want {
		for j := range want[i] {
			if got := tbl.At(i, j); got != want[i][j] {
				t.Errorf("Flow[%d][%d] = %v, want %v", i, j, got, want[i][j])
			}
		}
	}
	if !reflect.DeepEqual(tbl.IntermediateSales, []float64{1000, 30}) {
		t.Errorf("IntermediateSales = %v", tbl.IntermediateSales)
	}
	if !reflect.DeepEqual(tbl.IntermediateInputs, []float64{10, 1050}) {
		t.Errorf("IntermediateInputs = %v", tbl.IntermediateInputs)
	}
	if !reflect.DeepEqual(tbl.FinalConsumption, []float64{40, 30}) {
		t.Errorf("FinalConsumption = %v", tbl.FinalConsumption)
	}
	if got := tbl.Output(0); got != 1040 {
		t.Errorf("Output(A) = %v, want 1040", got)
	}
	if tbl.Index()["B"] != 1 {
		t.Errorf("Index()[B] = %d, want 1", tbl.Index()["B"])
	}
}

func TestSanitizeErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(string) string
		wantCode errors.Code
		wantMsg  string
	}{
		{
			name:     "missing industry column",
			mutate:   func(s string) string { return strings.Replace(s, "Code,Name,B,A", "Code,Name,B,Q", 1) },
			wantCode: errors.ErrCodeSchemaMismatch,
			wantMsg:  "missing columns [A]",
		},
		{
			name:     "missing aux row",
			mutate:   func(s string) string { return strings.Replace(s, "T005,Total", "T099,Total", 1) },
			wantCode: errors.ErrCodeSchemaMismatch,
			wantMsg:  "missing rows [T005]",
		},
		{
			name:     "missing aux columns",
			mutate:   func(s string) string { return strings.Replace(s, "T001,F02E,F010", "T00X,F02E,F01X", 1) },
			wantCode: errors.ErrCodeSchemaMismatch,
			wantMsg:  "missing columns [T001, F010]",
		},
		{
			name:     "duplicate row",
			mutate:   func(s string) string { return strings.Replace(s, "Z9,Mystery", "B,Again", 1) },
			wantCode: errors.ErrCodeSchemaMismatch,
			wantMsg:  "duplicate rows [B]",
		},
		{
			name:     "non numeric",
			mutate:   func(s string) string { return strings.Replace(s, "B,Beta,20", "B,Beta,twenty", 1) },
			wantCode: errors.ErrCodeInvalidInput,
			wantMsg:  "(B, B)",
		},
		{
			name:     "negative flow",
			mutate:   func(s string) string { return strings.Replace(s, "B,Beta,20", "B,Beta,-20", 1) },
			wantCode: errors.ErrCodeInvalidInput,
			wantMsg:  "negative flow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := toySchema(t)
			raw, err := ReadCSV(strings.NewReader(tt.mutate(toyCSV)), s.Layout)
			if err != nil {
				t.Fatalf("ReadCSV: %v", err)
			}
			_, err = Sanitize(raw, s)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("code = %v, want %v (%v)", errors.GetCode(err), tt.wantCode, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestUnrecognized(t *testing.T) {
	s := toySchema(t)
	raw, err := ReadCSV(strings.NewReader(toyCSV), s.Layout)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	rows, cols := Unrecognized(raw, s)
	if !reflect.DeepEqual(rows, []string{"Z9"}) {
		t.Errorf("rows = %v, want [Z9]", rows)
	}
	if !reflect.DeepEqual(cols, []string{"X99"}) {
		t.Errorf("cols = %v, want [X99]", cols)
	}
}

func TestNewTableValidation(t *testing.T) {
	codes := []string{"A", "B"}
	names := []string{"Alpha", "Beta"}
	vec := []float64{1, 1}

	_, err := NewTable(codes, names, [][]float64{{0, 1}}, vec, vec, vec)
	if !errors.Is(err, errors.ErrCodeInconsistentIndex) {
		t.Errorf("short flow: code = %v", errors.GetCode(err))
	}

	_, err = NewTable([]string{"A", "A"}, names, [][]float64{{0, 1}, {1, 0}}, vec, vec, vec)
	if !errors.Is(err, errors.ErrCodeInconsistentIndex) {
		t.Errorf("duplicate code: code = %v", errors.GetCode(err))
	}

	_, err = NewTable(codes, names, [][]float64{{0, -1}, {1, 0}}, vec, vec, vec)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("negative flow: code = %v", errors.GetCode(err))
	}
}

func TestReadXLSXFile(t *testing.T) {
	s := toySchema(t)
	rows, err := readCSVRows(toyCSV)
	if err != nil {
		t.Fatal(err)
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			f.SetCellValue(sheet, cell, v)
		}
	}
	path := filepath.Join(t.TempDir(), "use.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}

	raw, err := Load(path, s.Layout)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tbl, err := Sanitize(raw, s)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if got := tbl.At(0, 1); got != 1000 {
		t.Errorf("Flow[A][B] = %v, want 1000", got)
	}
}

func TestLoadErrors(t *testing.T) {
	s := toySchema(t)
	if _, err := Load("table.json", s.Layout); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("json: code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidFormat)
	}
	missing := filepath.Join(t.TempDir(), "nope.csv")
	if _, err := Load(missing, s.Layout); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing: code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
}

func readCSVRows(data string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(data))
	r.FieldsPerRecord = -1
	return r.ReadAll()
}
