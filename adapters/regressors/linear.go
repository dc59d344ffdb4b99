package regressors

import (
	"context"
	"fmt"
	"math"

	"featrank/domain/core"
	"featrank/domain/dataset"
	"featrank/domain/importance"
	"featrank/ports"

	"gonum.org/v1/gonum/mat"
)

// LinearPort fits ordinary least squares regression via QR decomposition.
// Native importance is coefficient magnitude.
type LinearPort struct{}

// NewLinearPort creates the linear regression model family
func NewLinearPort() *LinearPort {
	return &LinearPort{}
}

// Name returns the model family name
func (p *LinearPort) Name() string {
	return "linear"
}

// LinearModel is a trained OLS model handle
type LinearModel struct {
	features     []string
	intercept    float64
	coefficients []float64
}

// Fit solves least squares with an intercept column
func (p *LinearPort) Fit(ctx context.Context, ds *dataset.Table) (ports.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n, d := ds.Rows(), ds.Cols()
	if n < d+2 {
		return nil, fmt.Errorf("%w: %d rows for %d features", core.ErrInsufficientData, n, d)
	}

	data := make([]float64, n*(d+1))
	for i, row := range ds.X {
		data[i*(d+1)] = 1.0 // intercept
		copy(data[i*(d+1)+1:], row)
	}
	x := mat.NewDense(n, d+1, data)
	y := mat.NewVecDense(n, append([]float64(nil), ds.Y...))

	var qr mat.QR
	qr.Factorize(x)

	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, y); err != nil {
		return nil, fmt.Errorf("least squares solve failed: %w", err)
	}

	coefs := make([]float64, d)
	for j := 0; j < d; j++ {
		c := beta.At(j+1, 0)
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("degenerate design matrix: coefficient %d is %v", j, c)
		}
		coefs[j] = c
	}

	return &LinearModel{
		features:     ds.Features,
		intercept:    beta.At(0, 0),
		coefficients: coefs,
	}, nil
}

// Predict returns one prediction per input row
func (m *LinearModel) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		pred := m.intercept
		for j, c := range m.coefficients {
			pred += c * row[j]
		}
		out[i] = pred
	}
	return out
}

// Importance reports coefficient magnitudes on the linear family's native scale
func (p *LinearPort) Importance(m ports.Model) (importance.Vector, error) {
	lm, ok := m.(*LinearModel)
	if !ok {
		return nil, fmt.Errorf("model was not trained by the linear family")
	}

	vec := make(importance.Vector, len(lm.features))
	for j, name := range lm.features {
		vec[name] = math.Abs(lm.coefficients[j])
	}
	return vec, nil
}
