package analytics

import (
	"errors"
	"math"
)

// errSingular is returned when the normal equations cannot be solved.
var errSingular = errors.New("singular design matrix")

// olsResult holds a least-squares fit: coefficients, residual sum of
// squares, and the unscaled inverse of X'X for standard errors.
type olsResult struct {
	coef   []float64
	ssr    float64
	xtxInv [][]float64
	dof    int
}

// stderr returns the standard error of coefficient j.
func (r *olsResult) stderr(j int) float64 {
	if r.dof <= 0 {
		return 0
	}
	sigma2 := r.ssr / float64(r.dof)
	return math.Sqrt(sigma2 * r.xtxInv[j][j])
}

// olsFit solves min ||y - X b|| via the normal equations. Design matrices
// here stay under ~15 columns (ADF lag terms plus level and constant).
func olsFit(y []float64, x [][]float64) (*olsResult, error) {
	m := len(x)
	if m == 0 {
		return nil, errSingular
	}
	k := len(x[0])
	if m <= k {
		return nil, errSingular
	}

	// A = X'X, b = X'y
	a := make([][]float64, k)
	b := make([]float64, k)
	for i := 0; i < k; i++ {
		a[i] = make([]float64, k)
	}
	for r := 0; r < m; r++ {
		for i := 0; i < k; i++ {
			b[i] += x[r][i] * y[r]
			for j := i; j < k; j++ {
				a[i][j] += x[r][i] * x[r][j]
			}
		}
	}
	for i := 1; i < k; i++ {
		for j := 0; j < i; j++ {
			a[i][j] = a[j][i]
		}
	}

	inv, err := invert(a)
	if err != nil {
		return nil, err
	}

	coef := make([]float64, k)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			coef[i] += inv[i][j] * b[j]
		}
	}

	ssr := 0.0
	for r := 0; r < m; r++ {
		pred := 0.0
		for i := 0; i < k; i++ {
			pred += x[r][i] * coef[i]
		}
		resid := y[r] - pred
		ssr += resid * resid
	}

	return &olsResult{coef: coef, ssr: ssr, xtxInv: inv, dof: m - k}, nil
}

// invert computes the inverse of a small square matrix by Gauss-Jordan
// elimination with partial pivoting.
func invert(a [][]float64) ([][]float64, error) {
	k := len(a)

	// Augment [A | I].
	aug := make([][]float64, k)
	for i := 0; i < k; i++ {
		aug[i] = make([]float64, 2*k)
		copy(aug[i], a[i])
		aug[i][k+i] = 1
	}

	for col := 0; col < k; col++ {
		// Partial pivot.
		pivot := col
		for r := col + 1; r < k; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(aug[pivot][col]) < 1e-12 {
			return nil, errSingular
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		p := aug[col][col]
		for j := 0; j < 2*k; j++ {
			aug[col][j] /= p
		}
		for r := 0; r < k; r++ {
			if r == col {
				continue
			}
			f := aug[r][col]
			if f == 0 {
				continue
			}
			for j := 0; j < 2*k; j++ {
				aug[r][j] -= f * aug[col][j]
			}
		}
	}

	inv := make([][]float64, k)
	for i := 0; i < k; i++ {
		inv[i] = aug[i][k:]
	}
	return inv, nil
}
