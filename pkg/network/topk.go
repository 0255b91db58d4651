package network

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// SelectSuppliers keeps, for every industry c, the k largest suppliers in
// column c of filtered. Each edge reports
// inputShares[s][c].
func SelectSuppliers(filtered, inputShares mat.Matrix, codes []string, k int) []EdgeList {
	out := make([]EdgeList, len(codes))
	for c, code := range codes {
		col := mat.Col(nil, c, filtered)
		share := func(s int) float64 { return inputShares.At(s, c) }
		out[c] = EdgeList{Code: code, Edges: edges(col, c, k, share, codes)}
	}
	return out
}

// SelectCustomers keeps, for every industry c, the k largest customers in
// row c of filtered. Each edge reports
// outputShares[c][j].
func SelectCustomers(filtered, outputShares mat.Matrix, codes []string, k int) []EdgeList {
	out := make([]EdgeList, len(codes))
	for c, code := range codes {
		row := mat.Row(nil, c, filtered)
		share := func(j int) float64 { return outputShares.At(c, j) }
		out[c] = EdgeList{Code: code, Edges: edges(row, c, k, share, codes)}
	}
	return out
}

type candidate struct {
	idx int
	mag float64
}

// edges picks the k partners with the largest magnitude from mags,
// excluding self and any entry with a non-positive magnitude or share.
// Ties at the cut go to the earlier industry. The kept partners are
// returned in canonical order.
func edges(mags []float64, self, k int, share func(int) float64, codes []string) []Edge {
	cands := make([]candidate, 0, len(mags))
	for i, m := range mags {
		if i == self || !(m > 0) || !(share(i) > 0) {
			continue
		}
		cands = append(cands, candidate{idx: i, mag: m})
	}

	slices.SortStableFunc(cands, func(a, b candidate) int {
		return cmp.Compare(b.mag, a.mag)
	})
	if len(cands) > k {
		cands = cands[:k]
	}
	slices.SortFunc(cands, func(a, b candidate) int {
		return cmp.Compare(a.idx, b.idx)
	})

	out := make([]Edge, len(cands))
	for i, c := range cands {
		out[i] = Edge{Code: codes[c.idx], Share: round(share(c.idx), ShareDecimals)}
	}
	return out
}
