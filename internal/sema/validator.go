package sema

import (
	"fmt"
	"strings"

	"flume/internal/ast"
	"flume/internal/diag"
	"flume/internal/source"
	"flume/internal/symbols"
	"flume/internal/types"
)

// Validator infers and checks expression types. User errors are reported
// and replaced by ANY so the caller can keep going; results are cached per
// expression and environment so re-validation is cheap and reports nothing
// new.
//
// A structural error (unknown identifier, unknown field, a target that
// cannot be accessed or indexed) stops validation of the enclosing
// expression: remaining operands are not visited.
type Validator struct {
	b        *ast.Builder
	types    *types.Interner
	bindings *Bindings
	reporter diag.Reporter
	symbols  *symbols.Table
	between  BetweenPolicy

	cache  map[ast.ExprID]inferred
	broken map[ast.ExprID]bool
}

type inferred struct {
	env    uint64
	t      types.TypeID
	broken bool
}

// ValidatorOption tunes a Validator.
type ValidatorOption func(*Validator)

// WithBetweenPolicy selects the BETWEEN typing rule.
func WithBetweenPolicy(p BetweenPolicy) ValidatorOption {
	return func(v *Validator) { v.between = p }
}

// WithSymbols enables qualified enum constants such as Color.RED.
func WithSymbols(t *symbols.Table) ValidatorOption {
	return func(v *Validator) { v.symbols = t }
}

// NewValidator wires a validator over a builder and type interner.
// Reports go through a DedupReporter unless r already is one.
func NewValidator(b *ast.Builder, in *types.Interner, bindings *Bindings, r diag.Reporter, opts ...ValidatorOption) *Validator {
	switch r.(type) {
	case nil:
		r = diag.NopReporter{}
	case *diag.DedupReporter:
	default:
		r = diag.NewDedupReporter(r)
	}
	if bindings == nil {
		bindings = NewBindings()
	}
	if in == nil {
		in = types.NewInterner()
	}
	v := &Validator{
		b:        b,
		types:    in,
		bindings: bindings,
		reporter: r,
		cache:    make(map[ast.ExprID]inferred),
		broken:   make(map[ast.ExprID]bool),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Bindings exposes the store the validator writes to.
func (v *Validator) Bindings() *Bindings { return v.bindings }

// Infer returns the type of expr in env. A result is reused only for the
// environment it was computed in.
func (v *Validator) Infer(expr ast.ExprID, env Env) types.TypeID {
	t, _ := v.inferChecked(expr, env)
	return t
}

// inferChecked is Infer that also reports whether expr's subtree is free
// of structural errors.
func (v *Validator) inferChecked(expr ast.ExprID, env Env) (types.TypeID, bool) {
	if c, ok := v.cache[expr]; ok && c.env == env.id {
		return c.t, !c.broken
	}
	delete(v.broken, expr)
	t := v.infer(expr, env)
	broken := v.broken[expr]
	v.cache[expr] = inferred{env: env.id, t: t, broken: broken}
	v.bindings.setExprType(expr, t)
	return t, !broken
}

// operands infers ids left to right and stops at the first one holding a
// structural error.
func (v *Validator) operands(env Env, ids ...ast.ExprID) ([]types.TypeID, bool) {
	out := make([]types.TypeID, 0, len(ids))
	for _, id := range ids {
		t, ok := v.inferChecked(id, env)
		if !ok {
			return nil, false
		}
		out = append(out, t)
	}
	return out, true
}

// fail marks id as structurally broken and returns the fallback type.
func (v *Validator) fail(id ast.ExprID) types.TypeID {
	v.broken[id] = true
	return v.anyType()
}

// Condition checks that expr is boolean and returns BOOL.
func (v *Validator) Condition(expr ast.ExprID, env Env) types.TypeID {
	v.condition(expr, env)
	return v.types.Builtins().Bool
}

func (v *Validator) condition(expr ast.ExprID, env Env) bool {
	t, ok := v.inferChecked(expr, env)
	if !ok {
		return false
	}
	switch v.kind(t) {
	case types.KindBool, types.KindAny, types.KindNull:
	default:
		v.report(diag.SemaNotBoolean, v.span(expr), "expected a boolean condition, got %s", v.label(t))
	}
	return true
}

// Align checks expr against target, narrowing or rescaling constants to
// it. On success the target is returned; on failure the expression's own
// type is returned so the caller can continue. Either way the returned
// type is what Bindings records for expr. NoTypeID means no target and
// Align is Infer.
func (v *Validator) Align(expr ast.ExprID, target types.TypeID, env Env) types.TypeID {
	if target == types.NoTypeID {
		return v.Infer(expr, env)
	}
	t := v.align(expr, target, env)
	v.bindings.setExprType(expr, t)
	return t
}

func (v *Validator) align(expr ast.ExprID, target types.TypeID, env Env) types.TypeID {
	e := v.b.Exprs.Get(expr)
	if e == nil {
		return v.anyType()
	}
	switch e.Kind {
	case ast.ExprParen:
		p, _ := v.b.Exprs.Paren(expr)
		t := v.Align(p.Inner, target, env)
		if val, ok := v.bindings.Value(p.Inner); ok {
			v.bindings.setValue(expr, val)
		}
		return t
	case ast.ExprLit, ast.ExprPrefix:
		if v.isConstExpr(expr) {
			natural := v.Infer(expr, env)
			if val, ok := v.bindings.Value(expr); ok {
				return v.alignConst(expr, val, natural, target)
			}
			return natural
		}
	case ast.ExprInfix:
		in, _ := v.b.Exprs.Infix(expr)
		if (in.Op.IsArithmetic() || in.Op.IsBitwise()) && v.kind(target).IsNumeric() {
			t, _ := v.alignArith(expr, in, target, env)
			return t
		}
	}
	t, ok := v.inferChecked(expr, env)
	if !ok {
		return t
	}
	if !v.types.Assignable(t, target) {
		v.report(diag.TypeMismatch, e.Span, "cannot use %s as %s", v.label(t), v.label(target))
		return t
	}
	return target
}

func (v *Validator) infer(id ast.ExprID, env Env) types.TypeID {
	expr := v.b.Exprs.Get(id)
	if expr == nil {
		return v.anyType()
	}
	switch expr.Kind {
	case ast.ExprIdent:
		return v.inferIdent(id, expr, env)
	case ast.ExprLit:
		return v.inferLiteral(id, expr)
	case ast.ExprParen:
		p, _ := v.b.Exprs.Paren(id)
		t, ok := v.inferChecked(p.Inner, env)
		if !ok {
			return v.fail(id)
		}
		if val, ok := v.bindings.Value(p.Inner); ok && v.isConstExpr(p.Inner) {
			v.bindings.setValue(id, val)
		}
		return t
	case ast.ExprPrefix:
		return v.inferPrefix(id, expr, env)
	case ast.ExprInfix:
		return v.inferInfix(id, expr, env)
	case ast.ExprTernary:
		return v.inferBetween(id, expr, env)
	case ast.ExprPostfix:
		p, _ := v.b.Exprs.Postfix(id)
		if _, ok := v.inferChecked(p.Operand, env); !ok {
			return v.fail(id)
		}
		return v.types.Builtins().Bool
	case ast.ExprMember:
		return v.inferMember(id, expr, env)
	case ast.ExprIndex:
		return v.inferIndex(id, expr, env)
	}
	v.report(diag.IntInvariant, expr.Span, "unexpected expression kind %d", expr.Kind)
	return v.fail(id)
}

// isConstExpr reports literals, optionally signed or parenthesized.
func (v *Validator) isConstExpr(id ast.ExprID) bool {
	expr := v.b.Exprs.Get(id)
	if expr == nil {
		return false
	}
	switch expr.Kind {
	case ast.ExprLit:
		return true
	case ast.ExprParen:
		p, _ := v.b.Exprs.Paren(id)
		return v.isConstExpr(p.Inner)
	case ast.ExprPrefix:
		p, _ := v.b.Exprs.Prefix(id)
		return (p.Op == ast.OpNeg || p.Op == ast.OpPlus) && v.isConstExpr(p.Operand)
	}
	return false
}

func (v *Validator) report(code diag.Code, span source.Span, format string, args ...any) {
	if b := diag.ReportError(v.reporter, code, span, fmt.Sprintf(format, args...)); b != nil {
		b.Emit()
	}
}

func (v *Validator) span(id ast.ExprID) (sp source.Span) {
	if expr := v.b.Exprs.Get(id); expr != nil {
		return expr.Span
	}
	return sp
}

func (v *Validator) kind(t types.TypeID) types.Kind {
	return v.types.KindOf(v.types.Underlying(t))
}

func (v *Validator) label(t types.TypeID) string { return types.Label(v.types, t) }

func (v *Validator) anyType() types.TypeID { return v.types.Builtins().Any }

// dottedPath renders an identifier or a member chain of identifiers as a
// qualified name.
func dottedPath(b *ast.Builder, id ast.ExprID) (string, bool) {
	expr := b.Exprs.Get(id)
	if expr == nil {
		return "", false
	}
	switch expr.Kind {
	case ast.ExprIdent:
		ident, _ := b.Exprs.Ident(id)
		s := b.Str(ident.Name)
		return s, s != ""
	case ast.ExprMember:
		m, _ := b.Exprs.Member(id)
		head, ok := dottedPath(b, m.Target)
		if !ok {
			return "", false
		}
		return head + "." + b.Str(m.Field), true
	}
	return "", false
}

func rootSegment(path string) string {
	head, _, _ := strings.Cut(path, ".")
	return head
}
