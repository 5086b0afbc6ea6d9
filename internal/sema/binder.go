// Package sema binds parsed scripts into a semantic model: it collects
// declarations into a shared symbol table, resolves type references,
// builds the type graph, and type-checks default values and statements.
//
// Phases run strictly in order for each script and all scripts share one
// table and one binding store, so a later script sees earlier types.
package sema

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"flume/internal/ast"
	"flume/internal/diag"
	"flume/internal/name"
	"flume/internal/source"
	"flume/internal/symbols"
	"flume/internal/trace"
	"flume/internal/types"
)

// Options configure a Bind run. Zero values allocate fresh registries.
type Options struct {
	Names          *name.Registry
	Types          *types.Interner
	Bag            *diag.Bag
	// MaxDiagnostics bounds a Bag allocated by Bind (0 = unlimited).
	MaxDiagnostics int
	Between        BetweenPolicy
	InvocationID   uuid.UUID
}

// declEntry is a type or stream declaration collected from one script.
type declEntry struct {
	decl ast.DeclID
	ctx  name.Name // enclosing context
	self name.Name
	sym  symbols.SymbolID
}

type binder struct {
	model     *Model
	b         *ast.Builder
	names     *name.Registry
	table     *symbols.Table
	types     *types.Interner
	bindings  *Bindings
	reporter  diag.Reporter
	validator *Validator

	// members rejected as duplicates are left out of the built types
	skipMembers map[ast.MemberID]struct{}
	// context each declaration was written in; references resolve from it
	declCtx     map[ast.DeclID]name.Name
}

// Bind analyses scripts in the given (dependencies-first) order.
// User errors never abort the run; they are collected in the model's
// diagnostics. ctx only carries the tracer.
func Bind(ctx context.Context, b *ast.Builder, scripts []ast.ScriptID, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Names == nil {
		opts.Names = name.NewRegistry()
	}
	if opts.Types == nil {
		opts.Types = types.NewInterner()
	}
	if opts.Bag == nil {
		opts.Bag = diag.NewBag(opts.MaxDiagnostics)
	}
	if opts.InvocationID == uuid.Nil {
		opts.InvocationID = uuid.New()
	}
	if b == nil {
		b = ast.NewBuilder(ast.Hints{}, nil)
	}

	model := &Model{
		Builder:      b,
		Scripts:      scripts,
		Names:        opts.Names,
		Symbols:      symbols.NewTable(uint(b.Decls.Arena.Len()+b.Decls.Members.Len()), opts.Names),
		Types:        opts.Types,
		Bindings:     NewBindings(),
		Diagnostics:  opts.Bag,
		InvocationID: opts.InvocationID,
	}
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: opts.Bag})
	bd := &binder{
		model:       model,
		b:           b,
		names:       model.Names,
		table:       model.Symbols,
		types:       model.Types,
		bindings:    model.Bindings,
		reporter:    reporter,
		skipMembers: make(map[ast.MemberID]struct{}),
		declCtx:     make(map[ast.DeclID]name.Name),
	}
	bd.validator = NewValidator(b, model.Types, model.Bindings, reporter,
		WithBetweenPolicy(opts.Between),
		WithSymbols(model.Symbols),
	)

	span, ctx := trace.StartSpan(ctx, trace.ScopeDriver, "sema.bind")
	span.WithExtra("invocation", opts.InvocationID.String())
	for _, id := range scripts {
		bd.bindScript(ctx, id)
	}
	span.WithExtra("symbols", strconv.Itoa(model.Symbols.Len())).
		WithExtra("diagnostics", strconv.Itoa(opts.Bag.Len())).
		End("")
	return model
}

func (bd *binder) bindScript(ctx context.Context, id ast.ScriptID) {
	script := bd.b.Scripts.Get(id)
	if script == nil {
		return
	}
	span, ctx := trace.StartSpan(ctx, trace.ScopeScript, "sema.script")
	span.WithExtra("script", script.Path)
	defer span.End("")

	var entries []declEntry
	bd.phase(ctx, "sema.collect", script.Path, func() { entries = bd.collect(id, script) })
	bd.phase(ctx, "sema.resolve", script.Path, func() { bd.resolve(entries) })
	bd.phase(ctx, "sema.build", script.Path, func() { bd.build(entries) })
	bd.phase(ctx, "sema.defaults", script.Path, func() { bd.bindDefaults(entries) })
	bd.phase(ctx, "sema.statements", script.Path, func() { bd.bindStatements(script) })
}

func (bd *binder) phase(ctx context.Context, phaseName, path string, fn func()) {
	span, _ := trace.StartSpan(ctx, trace.ScopePass, phaseName)
	span.WithExtra("script", path)
	before := bd.model.Diagnostics.Len()
	fn()
	span.End(fmt.Sprintf("%d diagnostics", bd.model.Diagnostics.Len()-before))
}

func (bd *binder) report(code diag.Code, span source.Span, format string, args ...any) {
	if b := diag.ReportError(bd.reporter, code, span, fmt.Sprintf(format, args...)); b != nil {
		b.Emit()
	}
}

func (bd *binder) label(id types.TypeID) string {
	return types.Label(bd.types, id)
}
