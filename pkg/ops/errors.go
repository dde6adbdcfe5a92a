package ops

import "fmt"

// FitError reports that a corner fit did not reach the residual tolerance.
type FitError struct {
	Panel    string
	Edges    [2]int
	Stage    string // "translation" or "scale"
	Residual float64
	Cause    error // optimizer failure, if any
}

func (e *FitError) Error() string {
	msg := fmt.Sprintf("cut corner of %q at edges %d,%d: %s fit left residual %.3g",
		e.Panel, e.Edges[0], e.Edges[1], e.Stage, e.Residual)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *FitError) Unwrap() error { return e.Cause }
