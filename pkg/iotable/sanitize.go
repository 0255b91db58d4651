package iotable

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/prodnet/pkg/errors"
	"github.com/matzehuels/prodnet/pkg/schema"
)

// Sanitize reduces a raw use table to the schema's industry-by-industry
// block plus the three auxiliary vectors.
//
// Rows and columns are reordered into the schema's canonical industry
// order; every other label is discarded. Missing-data sentinels become 0.
//
// Sanitize fails with SCHEMA_MISMATCH when any expected industry or
// auxiliary label is absent (or appears twice), listing every offending
// label, and with INVALID_INPUT when a kept cell is neither numeric nor a
// sentinel, or when an industry flow is negative.
func Sanitize(raw *RawTable, s *schema.Schema) (*Table, error) {
	rowIdx, rowDups := indexLabels(raw.RowLabels)
	colIdx, colDups := indexLabels(raw.ColLabels)

	codes := s.Codes()
	wantRows := append(append([]string(nil), codes...), s.Aux.TotalIntermediateRow)
	wantCols := append(append([]string(nil), codes...), s.Aux.TotalIntermediateCol, s.Aux.FinalConsumptionCol)

	var missingRows, missingCols, dupRows, dupCols []string
	for _, l := range wantRows {
		if _, ok := rowIdx[l]; !ok {
			missingRows = append(missingRows, l)
		} else if rowDups[l] {
			dupRows = append(dupRows, l)
		}
	}
	for _, l := range wantCols {
		if _, ok := colIdx[l]; !ok {
			missingCols = append(missingCols, l)
		} else if colDups[l] {
			dupCols = append(dupCols, l)
		}
	}
	if len(missingRows)+len(missingCols)+len(dupRows)+len(dupCols) > 0 {
		return nil, schemaMismatch(s, missingRows, missingCols, dupRows, dupCols)
	}

	n := len(codes)
	parse := func(rowLabel, colLabel string) (float64, error) {
		cell := raw.Cell(rowIdx[rowLabel], colIdx[colLabel])
		v, err := parseCell(cell, s)
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "cell (%s, %s)", rowLabel, colLabel)
		}
		return v, nil
	}

	flow := make([][]float64, n)
	sales := make([]float64, n)
	inputs := make([]float64, n)
	final := make([]float64, n)
	var err error

	for i, ri := range codes {
		flow[i] = make([]float64, n)
		for j, cj := range codes {
			if flow[i][j], err = parse(ri, cj); err != nil {
				return nil, err
			}
			if flow[i][j] < 0 {
				return nil, errors.New(errors.ErrCodeInvalidInput, "negative flow %v at (%s, %s)", flow[i][j], ri, cj)
			}
		}
		if sales[i], err = parse(ri, s.Aux.TotalIntermediateCol); err != nil {
			return nil, err
		}
		if final[i], err = parse(ri, s.Aux.FinalConsumptionCol); err != nil {
			return nil, err
		}
		if inputs[i], err = parse(s.Aux.TotalIntermediateRow, ri); err != nil {
			return nil, err
		}
	}

	return NewTable(codes, s.Names(), flow, sales, inputs, final)
}

// Unrecognized lists raw labels that are neither kept by the schema nor in
// its drop lists. A non-empty result usually means a new data vintage.
func Unrecognized(raw *RawTable, s *schema.Schema) (rows, cols []string) {
	known := make(map[string]bool, s.Len()+3)
	for _, c := range s.Codes() {
		known[c] = true
	}

	keptRows := map[string]bool{s.Aux.TotalIntermediateRow: true}
	for _, l := range s.Drop.Rows {
		keptRows[l] = true
	}
	keptCols := map[string]bool{s.Aux.TotalIntermediateCol: true, s.Aux.FinalConsumptionCol: true}
	for _, l := range s.Drop.Columns {
		keptCols[l] = true
	}

	for _, l := range raw.RowLabels {
		if !known[l] && !keptRows[l] {
			rows = append(rows, l)
		}
	}
	for _, l := range raw.ColLabels {
		if l != "" && !known[l] && !keptCols[l] {
			cols = append(cols, l)
		}
	}
	return rows, cols
}

func indexLabels(labels []string) (map[string]int, map[string]bool) {
	idx := make(map[string]int, len(labels))
	dups := make(map[string]bool)
	for i, l := range labels {
		if _, ok := idx[l]; ok {
			dups[l] = true
			continue
		}
		idx[l] = i
	}
	return idx, dups
}

func parseCell(cell string, s *schema.Schema) (float64, error) {
	if s.IsMissing(cell) {
		return 0, nil
	}
	v := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrRange
	}
	return f, nil
}

func schemaMismatch(s *schema.Schema, missingRows, missingCols, dupRows, dupCols []string) error {
	var parts []string
	if len(missingRows) > 0 {
		parts = append(parts, "missing rows ["+strings.Join(missingRows, ", ")+"]")
	}
	if len(missingCols) > 0 {
		parts = append(parts, "missing columns ["+strings.Join(missingCols, ", ")+"]")
	}
	if len(dupRows) > 0 {
		parts = append(parts, "duplicate rows ["+strings.Join(dupRows, ", ")+"]")
	}
	if len(dupCols) > 0 {
		parts = append(parts, "duplicate columns ["+strings.Join(dupCols, ", ")+"]")
	}
	return errors.New(errors.ErrCodeSchemaMismatch, "table does not match schema %s: %s",
		s.Scope(), strings.Join(parts, "; "))
}
