// Package engine evaluates pattern scripts. It wraps zygomys in a sandboxed
// environment whose builtins drive the pattern builder API, and produces a
// Design from user source code.
package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/stitchwork/pkg/config"
	"github.com/chazu/stitchwork/pkg/ops"
	"github.com/chazu/stitchwork/pkg/pattern"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is a non-blocking finding about an evaluated design.
type EvalWarning struct {
	Where   string
	Message string
}

// EvalResult bundles the full output of a build: the evaluated design, its
// assembled Spec, and everything reported along the way.
type EvalResult struct {
	Design   *Design
	Spec     *pattern.Spec
	Errors   []EvalError
	Warnings []EvalWarning
}

// Engine wraps the zygomys interpreter for pattern evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	cfg config.Config

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an Engine with the default configuration.
func NewEngine() *Engine {
	return NewEngineWith(config.Default())
}

// NewEngineWith creates an Engine whose scripts see cfg's design parameters
// and whose operators use cfg's tolerances.
func NewEngineWith(cfg config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the configuration scripts are evaluated against.
func (e *Engine) Config() config.Config { return e.cfg }

// Evaluate runs source and returns the design it defines.
//
// Return semantics:
//   - On success: returns design + nil errors + nil error
//   - On parse/eval failure: returns nil design + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Design, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext is Evaluate bounded by ctx as well as EvalTimeout.
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*Design, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		d, evalErrs, err := e.evaluate(source)
		ch <- evalResult{design: d, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ctx, ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Design, []EvalError, error) {
	d := newDesign()
	// Empty source is a valid program that defines nothing.
	if strings.TrimSpace(source) == "" {
		return d, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, d, &builtinContext{
		params: e.cfg.Design,
		fitter: ops.NewFitter(e.cfg.Tolerance),
	})

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	pattern.Logger().Debug("evaluated design",
		"panels", len(d.Panels), "components", len(d.Components))
	return d, nil, nil
}

// Build evaluates source, validates the resulting tree and assembles it.
// Evaluation and validation problems are reported in the result; the error
// is reserved for fatal failures.
func (e *Engine) Build(ctx context.Context, source string) (EvalResult, error) {
	d, evalErrs, err := e.EvaluateContext(ctx, source)
	if err != nil {
		return EvalResult{}, err
	}
	res := EvalResult{Design: d, Errors: evalErrs}
	if len(evalErrs) > 0 || d.Root == nil {
		return res, nil
	}

	v := pattern.ValidateAll(d.Root, e.cfg.Tolerance)
	for _, f := range v.Warnings {
		res.Warnings = append(res.Warnings, EvalWarning{Where: f.Where, Message: f.Message})
	}
	for _, f := range v.Errors {
		res.Errors = append(res.Errors, EvalError{Message: f.Error()})
	}
	if !v.OK() {
		return res, nil
	}

	spec, err := d.Root.AssembleWith(e.cfg.Tolerance)
	if err != nil {
		var ae *pattern.AssemblyError
		if !errors.As(err, &ae) {
			return res, err
		}
		for _, p := range ae.Problems {
			res.Errors = append(res.Errors, EvalError{Message: p.Error()})
		}
		return res, nil
	}
	res.Spec = spec
	return res, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
