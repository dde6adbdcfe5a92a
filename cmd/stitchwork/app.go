package main

import (
	"context"

	"github.com/chazu/stitchwork/pkg/config"
	"github.com/chazu/stitchwork/pkg/engine"
	"github.com/chazu/stitchwork/pkg/pattern"
)

// App couples an engine with the reporting format the command prints.
type App struct {
	engine *engine.Engine
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalWarningData is a JSON-serializable validation warning.
type EvalWarningData struct {
	Where   string `json:"where"`
	Message string `json:"message"`
}

// EvalResult is the report for one evaluation. Spec is nil whenever Errors
// is non-empty.
type EvalResult struct {
	Root     string            `json:"root,omitempty"`
	Names    []string          `json:"names"`
	Spec     *pattern.Spec     `json:"spec,omitempty"`
	Errors   []EvalErrorData   `json:"errors"`
	Warnings []EvalWarningData `json:"warnings"`
}

// NewApp creates an App evaluating against the default configuration.
func NewApp() *App {
	return NewAppWith(config.Default())
}

// NewAppWith creates an App evaluating against cfg.
func NewAppWith(cfg config.Config) *App {
	return &App{engine: engine.NewEngineWith(cfg)}
}

// Evaluate builds source and reports the outcome.
func (a *App) Evaluate(source string) EvalResult {
	return a.EvaluateContext(context.Background(), source)
}

// EvaluateContext is Evaluate bounded by ctx.
func (a *App) EvaluateContext(ctx context.Context, source string) EvalResult {
	result := EvalResult{
		Names:    []string{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalWarningData{},
	}

	res, err := a.engine.Build(ctx, source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		pattern.Logger().Error("evaluate failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	if res.Design != nil {
		result.Names = append(result.Names, res.Design.Names()...)
		if res.Design.Root != nil {
			result.Root = res.Design.Root.Name()
		}
	}
	for _, e := range res.Errors {
		result.Errors = append(result.Errors, EvalErrorData{
			Line:    e.Line,
			Col:     e.Col,
			Message: e.Message,
		})
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalWarningData{Where: w.Where, Message: w.Message})
	}
	if len(result.Errors) == 0 {
		result.Spec = res.Spec
	}
	return result
}
