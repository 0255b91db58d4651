package network

import (
	"gonum.org/v1/gonum/mat"
)

// Mask is a boolean matrix marking material flows.
type Mask struct {
	rows, cols int
	keep       []bool
}

// At reports whether flow (i, j) is material.
func (m *Mask) At(i, j int) bool { return m.keep[i*m.cols+j] }

// Dims returns the mask's shape.
func (m *Mask) Dims() (rows, cols int) { return m.rows, m.cols }

// Count returns the number of material flows.
func (m *Mask) Count() int {
	n := 0
	for _, k := range m.keep {
		if k {
			n++
		}
	}
	return n
}

// RelevanceMask marks (i, j) as material when shares[i][j] >= threshold.
// A zero share is never material, so threshold 0 keeps every flow with a
// non-zero share. Self-flows are left to the selector.
func RelevanceMask(shares mat.Matrix, threshold float64) *Mask {
	r, c := shares.Dims()
	m := &Mask{rows: r, cols: c, keep: make([]bool, r*c)}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			s := shares.At(i, j)
			m.keep[i*c+j] = s > 0 && s >= threshold
		}
	}
	return m
}

// FilterMagnitudes returns a copy of flow with every non-material entry
// zeroed.
func FilterMagnitudes(flow mat.Matrix, mask *Mask) *mat.Dense {
	r, c := flow.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		if mask.At(i, j) {
			return v
		}
		return 0
	}, flow)
	return out
}
