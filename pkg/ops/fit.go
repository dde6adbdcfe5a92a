package ops

import (
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"

	"github.com/chazu/stitchwork/pkg/config"
)

// Fitter runs the operators against a set of tolerances.
type Fitter struct {
	Tolerance config.Tolerance
}

// NewFitter returns a Fitter using tol.
func NewFitter(tol config.Tolerance) *Fitter {
	return &Fitter{Tolerance: tol}
}

var defaultFitter = NewFitter(config.DefaultTolerance())

// minimum is the outcome of one optimizer run.
type minimum struct {
	x         []float64
	f         float64
	converged bool
	err       error
}

// minimize runs BFGS with a finite difference gradient from x0. A run that
// stops early is still accepted when its objective is within accept.
func minimize(fn func(x []float64) float64, x0 []float64, accept float64) minimum {
	if f0 := fn(x0); f0 <= accept*accept {
		return minimum{x: append([]float64(nil), x0...), f: f0, converged: true}
	}
	problem := optimize.Problem{
		Func: fn,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, fn, x, &fd.Settings{Formula: fd.Central})
		},
	}
	settings := &optimize.Settings{
		GradientThreshold: 1e-10,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-14,
			Iterations: 50,
		},
	}
	res, err := optimize.Minimize(problem, x0, settings, &optimize.BFGS{})
	if res == nil {
		return minimum{x: x0, f: fn(x0), err: err}
	}
	m := minimum{x: res.X, f: res.F, err: err}
	m.converged = err == nil || res.F <= accept
	return m
}
