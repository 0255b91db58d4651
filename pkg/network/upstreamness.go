package network

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/prodnet/pkg/errors"
	"github.com/matzehuels/prodnet/pkg/iotable"
)

// Upstreamness returns u = (I - A)^-1 · 1 at full precision, one value per
// industry in canonical order. Higher values mean the industry's output
// passes through more production stages before final use; an industry with
// no flows at all scores exactly 1.
//
// It fails with SINGULAR_MATRIX when I - A cannot be inverted or its
// condition number exceeds condCap.
func Upstreamness(t *iotable.Table, condCap float64) ([]float64, error) {
	n := t.Len()
	if n == 0 {
		return nil, nil
	}

	l, err := LeontiefInverse(TechnicalCoefficients(t), condCap)
	if err != nil {
		return nil, err
	}

	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	var u mat.VecDense
	u.MulVec(l, mat.NewVecDense(n, ones))

	out := make([]float64, n)
	for i := range out {
		out[i] = u.AtVec(i)
	}
	return out, nil
}

// LeontiefInverse returns (I - a)^-1.
func LeontiefInverse(a *mat.Dense, condCap float64) (*mat.Dense, error) {
	n, c := a.Dims()
	if n != c {
		return nil, errors.New(errors.ErrCodeInconsistentIndex, "technical coefficients are %dx%d, want square", n, c)
	}

	m := mat.NewDense(n, n, nil)
	m.Apply(func(i, j int, v float64) float64 {
		if i == j {
			return 1 - v
		}
		return -v
	}, a)

	cond := mat.Cond(m, 1)
	if math.IsNaN(cond) || math.IsInf(cond, 0) {
		return nil, errors.New(errors.ErrCodeSingularMatrix, "I - A is singular")
	}
	if condCap > 0 && cond > condCap {
		return nil, errors.New(errors.ErrCodeSingularMatrix,
			"I - A is ill-conditioned: cond = %.3g exceeds cap %.3g", cond, condCap)
	}

	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSingularMatrix, err, "invert I - A")
	}
	return &inv, nil
}
