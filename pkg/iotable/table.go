package iotable

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/prodnet/pkg/errors"
)

// Table is a sanitized, square industry-by-industry use table.
//
// Row i and column i both refer to industry Codes[i]. Flow[i][j] is the
// dollar value of commodity i used by industry j. The three auxiliary
// vectors are indexed by the same canonical order:
//
//   - IntermediateSales[i]: total intermediate use of commodity i (the
//     auxiliary column, BEA "T001")
//   - IntermediateInputs[j]: total intermediate inputs of industry j (the
//     auxiliary row, BEA "T005")
//   - FinalConsumption[i]: personal consumption of commodity i (BEA "F010")
//
// A Table is immutable once built; callers must not modify its fields.
type Table struct {
	Codes              []string
	Names              []string
	Flow               *mat.Dense
	IntermediateSales  []float64
	IntermediateInputs []float64
	FinalConsumption   []float64
}

// NewTable builds a Table from plain slices, copying all inputs.
// flow must be n×n with non-negative finite entries and every vector must
// have length n.
func NewTable(codes, names []string, flow [][]float64, sales, inputs, final []float64) (*Table, error) {
	n := len(codes)
	if len(names) != n {
		return nil, errors.New(errors.ErrCodeInconsistentIndex, "%d names for %d codes", len(names), n)
	}
	if len(flow) != n || len(sales) != n || len(inputs) != n || len(final) != n {
		return nil, errors.New(errors.ErrCodeInconsistentIndex,
			"table dimensions disagree: codes=%d flow=%d sales=%d inputs=%d final=%d",
			n, len(flow), len(sales), len(inputs), len(final))
	}

	seen := make(map[string]bool, n)
	for _, c := range codes {
		if seen[c] {
			return nil, errors.New(errors.ErrCodeInconsistentIndex, "duplicate industry code %q", c)
		}
		seen[c] = true
	}

	data := make([]float64, 0, n*n)
	for i, row := range flow {
		if len(row) != n {
			return nil, errors.New(errors.ErrCodeInconsistentIndex, "flow row %s has %d columns, want %d", codes[i], len(row), n)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return nil, errors.New(errors.ErrCodeInvalidInput, "flow %s->%s is %v, want finite and non-negative", codes[i], codes[j], v)
			}
		}
		data = append(data, row...)
	}
	for _, vec := range [][]float64{sales, inputs, final} {
		for i, v := range vec {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.New(errors.ErrCodeInvalidInput, "auxiliary value for %s is %v", codes[i], v)
			}
		}
	}

	t := &Table{
		Codes:              append([]string(nil), codes...),
		Names:              append([]string(nil), names...),
		IntermediateSales:  append([]float64(nil), sales...),
		IntermediateInputs: append([]float64(nil), inputs...),
		FinalConsumption:   append([]float64(nil), final...),
	}
	if n > 0 {
		t.Flow = mat.NewDense(n, n, data)
	}
	return t, nil
}

// Len returns the number of industries.
func (t *Table) Len() int { return len(t.Codes) }

// At returns Flow[i][j].
func (t *Table) At(i, j int) float64 {
	return t.Flow.At(i, j)
}

// Output returns total output of industry j as used by the technical
// coefficients: intermediate sales plus final consumption.
func (t *Table) Output(j int) float64 {
	return t.IntermediateSales[j] + t.FinalConsumption[j]
}

// Index maps each code to its canonical position.
func (t *Table) Index() map[string]int {
	idx := make(map[string]int, len(t.Codes))
	for i, c := range t.Codes {
		idx[c] = i
	}
	return idx
}
