// Package driver runs the analysis pipeline: include resolution, AST
// loading, binding and the optional lint consumer.
package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"flume/internal/ast"
	"flume/internal/astio"
	"flume/internal/diag"
	"flume/internal/include"
	"flume/internal/observ"
	"flume/internal/sema"
	"flume/internal/source"
	"flume/internal/trace"
)

// Parser produces the AST document of one source file. The grammar
// lives outside this module; astio.SidecarParser reads its output.
type Parser interface {
	Parse(ctx context.Context, file *source.File) (*astio.Document, error)
}

// Linter consumes a model that bound without errors.
type Linter interface {
	Lint(m *sema.Model, r diag.Reporter)
}

// Options configure one compilation invocation.
type Options struct {
	Roots   []string
	WorkDir string // base for INCLUDE paths; "" = process working directory
	Parser  Parser // nil = astio.SidecarParser
	Linter  Linter // optional

	MaxDiagnostics   int
	WarningsAsErrors bool
	Between          sema.BetweenPolicy
	// Jobs bounds concurrent document loading (<= 0 = GOMAXPROCS).
	Jobs int

	FileSet  *source.FileSet // optional, reused when set
	Timer    *observ.Timer   // optional
	Observer PhaseObserver   // optional
}

// Result is everything one invocation produced. Fields after the phase
// that stopped the pipeline are left zero.
type Result struct {
	FileSet  *source.FileSet
	Builder  *ast.Builder
	Includes include.Result
	Scripts  []ast.ScriptID
	Model    *sema.Model
	Bag      *diag.Bag
	// Stopped is the phase that ended the run early, nil when all ran.
	Stopped Phase
	// InvocationID tags trace events and the model.
	InvocationID uuid.UUID
}

// StopOnError reports whether the pipeline stopped or the bag holds
// errors (including promoted warnings).
func (r *Result) StopOnError() bool {
	return r.Stopped != nil || r.Bag.HasErrors()
}

// ErrNoRoots is returned when there is nothing to compile.
var ErrNoRoots = errors.New("no input files")

// Compile runs the whole pipeline. User problems end up in Result.Bag;
// the returned error is reserved for cancellation and bad options.
func Compile(ctx context.Context, opts Options) (*Result, error) {
	if len(opts.Roots) == 0 {
		return nil, ErrNoRoots
	}
	if opts.Parser == nil {
		opts.Parser = astio.SidecarParser{}
	}
	res := newResult(opts)
	span, ctx := trace.StartSpan(ctx, trace.ScopeDriver, "driver.compile")
	span.WithExtra("invocation", res.InvocationID.String())
	defer func() {
		span.End(fmt.Sprintf("diagnostics=%d stopped=%s", res.Bag.Len(), phaseName(res.Stopped)))
	}()
	reporter := diag.BagReporter{Bag: res.Bag}

	// 1. include order
	began := opts.Observer.start("include")
	opts.Timer.Measure("include", func() string {
		res.Includes = include.Resolve(ctx, res.FileSet, workDir(opts), opts.Roots, reporter)
		return fmt.Sprintf("%d files", len(res.Includes.Order))
	})
	inc := IncludePhase{Result: res.Includes}
	opts.Observer.end(inc, began)
	if inc.StopOnError() {
		return res.stop(inc, opts), nil
	}

	// 2. documents
	began = opts.Observer.start("parse")
	var loadErr error
	opts.Timer.Measure("parse", func() string {
		var docs []loaded
		docs, loadErr = loadDocuments(ctx, res.FileSet, res.Includes.Order, opts.Parser, opts.Jobs)
		if loadErr != nil {
			return "cancelled"
		}
		res.Scripts = lowerDocuments(ctx, res.Builder, res.Includes.Order, docs, reporter)
		return fmt.Sprintf("%d scripts", len(res.Scripts))
	})
	if loadErr != nil {
		return nil, loadErr
	}
	load := LoadPhase{Bag: res.Bag}
	opts.Observer.end(load, began)
	if load.StopOnError() {
		return res.stop(load, opts), nil
	}

	// 3. binding
	began = opts.Observer.start("sema")
	opts.Timer.Measure("sema", func() string {
		res.Model = sema.Bind(ctx, res.Builder, res.Scripts, sema.Options{
			Bag:          res.Bag,
			Between:      opts.Between,
			InvocationID: res.InvocationID,
		})
		return fmt.Sprintf("%d symbols", res.Model.Symbols.Len())
	})
	if opts.WarningsAsErrors {
		res.Bag.PromoteWarnings()
	}
	opts.Observer.end(res.Model, began)
	if res.Model.StopOnError() {
		return res.stop(res.Model, opts), nil
	}

	// 4. lint
	if opts.Linter != nil {
		began = opts.Observer.start("lint")
		opts.Timer.Measure("lint", func() string {
			before := res.Bag.Len()
			opts.Linter.Lint(res.Model, reporter)
			return fmt.Sprintf("%d findings", res.Bag.Len()-before)
		})
		if opts.WarningsAsErrors {
			res.Bag.PromoteWarnings()
		}
		opts.Observer.end(LintPhase{Bag: res.Bag}, began)
	}
	res.Bag.Sort()
	return res, nil
}

// ResolveIncludes runs only the first phase (flume deps).
func ResolveIncludes(ctx context.Context, opts Options) (*Result, error) {
	if len(opts.Roots) == 0 {
		return nil, ErrNoRoots
	}
	res := newResult(opts)
	res.Includes = include.Resolve(ctx, res.FileSet, workDir(opts), opts.Roots, diag.BagReporter{Bag: res.Bag})
	if inc := (IncludePhase{Result: res.Includes}); inc.StopOnError() {
		res.Stopped = inc
	}
	res.Bag.Sort()
	return res, nil
}

func newResult(opts Options) *Result {
	fs := opts.FileSet
	if fs == nil {
		fs = source.NewFileSetWithBase(opts.WorkDir)
	}
	return &Result{
		FileSet:      fs,
		Builder:      ast.NewBuilder(ast.Hints{}, nil),
		Bag:          diag.NewBag(opts.MaxDiagnostics),
		InvocationID: uuid.New(),
	}
}

func (r *Result) stop(p Phase, opts Options) *Result {
	r.Stopped = p
	if opts.WarningsAsErrors {
		r.Bag.PromoteWarnings()
	}
	r.Bag.Sort()
	return r
}

func workDir(opts Options) string {
	if opts.WorkDir != "" {
		return opts.WorkDir
	}
	if opts.FileSet != nil {
		return opts.FileSet.BaseDir()
	}
	return source.NewFileSet().BaseDir()
}

func phaseName(p Phase) string {
	if p == nil {
		return "none"
	}
	return p.Name()
}
