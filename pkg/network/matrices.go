package network

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/prodnet/pkg/iotable"
)

// TechnicalCoefficients returns A with A[i][j] = flow[i][j] / output[j],
// where output[j] is intermediate sales plus final consumption of j.
// Columns whose output is not positive are zero.
func TechnicalCoefficients(t *iotable.Table) *mat.Dense {
	output := make([]float64, t.Len())
	for j := range output {
		output[j] = t.Output(j)
	}
	return divideColumns(t.Flow, output)
}

// InputShares returns flow[i][j] / IntermediateInputs[j]: the fraction of
// industry j's intermediate inputs bought from industry i.
func InputShares(t *iotable.Table) *mat.Dense {
	return divideColumns(t.Flow, t.IntermediateInputs)
}

// OutputShares returns flow[i][j] / IntermediateSales[i]: the fraction of
// industry i's intermediate sales going to industry j.
func OutputShares(t *iotable.Table) *mat.Dense {
	return divideRows(t.Flow, t.IntermediateSales)
}

// divideColumns divides column j of m by d[j].
func divideColumns(m mat.Matrix, d []float64) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, j int, v float64) float64 { return ratio(v, d[j]) }, m)
	return out
}

// divideRows divides row i of m by d[i].
func divideRows(m mat.Matrix, d []float64) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, _ int, v float64) float64 { return ratio(v, d[i]) }, m)
	return out
}

// ratio is v/d with zero substituted for a non-positive denominator or a
// non-finite quotient.
func ratio(v, d float64) float64 {
	if v == 0 || d <= 0 {
		return 0
	}
	q := v / d
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0
	}
	return q
}

func round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}
