package ast

import (
	"flume/internal/source"
)

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena     *Arena[Expr]
	Idents    *Arena[ExprIdentData]
	Literals  *Arena[ExprLiteralData]
	Prefixes  *Arena[ExprPrefixData]
	Infixes   *Arena[ExprInfixData]
	Ternaries *Arena[ExprTernaryData]
	Postfixes *Arena[ExprPostfixData]
	Members   *Arena[ExprMemberData]
	Indices   *Arena[ExprIndexData]
	Parens    *Arena[ExprParenData]
}

// NewExprs creates per-kind arenas with capHint initial capacity (1<<8 when 0).
func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:     NewArena[Expr](capHint),
		Idents:    NewArena[ExprIdentData](capHint),
		Literals:  NewArena[ExprLiteralData](capHint),
		Prefixes:  NewArena[ExprPrefixData](capHint / 4),
		Infixes:   NewArena[ExprInfixData](capHint),
		Ternaries: NewArena[ExprTernaryData](capHint / 8),
		Postfixes: NewArena[ExprPostfixData](capHint / 8),
		Members:   NewArena[ExprMemberData](capHint / 4),
		Indices:   NewArena[ExprIndexData](capHint / 8),
		Parens:    NewArena[ExprParenData](capHint / 4),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload uint32) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Span:    span,
		Payload: PayloadID(payload),
	}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) payload(id ExprID, kind ExprKind) (uint32, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != kind {
		return 0, false
	}
	return uint32(expr.Payload), true
}

// NewIdent creates a new identifier expression.
func (e *Exprs) NewIdent(span source.Span, name source.StringID) ExprID {
	return e.new(ExprIdent, span, e.Idents.Allocate(ExprIdentData{Name: name}))
}

// Ident returns the identifier data for the given expression ID.
func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	p, ok := e.payload(id, ExprIdent)
	if !ok {
		return nil, false
	}
	return e.Idents.Get(p), true
}

// NewLiteral creates a new literal expression.
func (e *Exprs) NewLiteral(span source.Span, kind LitKind, value source.StringID) ExprID {
	return e.new(ExprLit, span, e.Literals.Allocate(ExprLiteralData{Kind: kind, Value: value}))
}

// Literal returns the literal data for the given expression ID.
func (e *Exprs) Literal(id ExprID) (*ExprLiteralData, bool) {
	p, ok := e.payload(id, ExprLit)
	if !ok {
		return nil, false
	}
	return e.Literals.Get(p), true
}

func (e *Exprs) NewPrefix(span source.Span, op Op, operand ExprID) ExprID {
	return e.new(ExprPrefix, span, e.Prefixes.Allocate(ExprPrefixData{Op: op, Operand: operand}))
}

func (e *Exprs) Prefix(id ExprID) (*ExprPrefixData, bool) {
	p, ok := e.payload(id, ExprPrefix)
	if !ok {
		return nil, false
	}
	return e.Prefixes.Get(p), true
}

func (e *Exprs) NewInfix(span source.Span, op Op, left, right ExprID) ExprID {
	return e.new(ExprInfix, span, e.Infixes.Allocate(ExprInfixData{Op: op, Left: left, Right: right}))
}

func (e *Exprs) Infix(id ExprID) (*ExprInfixData, bool) {
	p, ok := e.payload(id, ExprInfix)
	if !ok {
		return nil, false
	}
	return e.Infixes.Get(p), true
}

func (e *Exprs) NewTernary(span source.Span, op Op, value, low, high ExprID) ExprID {
	return e.new(ExprTernary, span, e.Ternaries.Allocate(ExprTernaryData{Op: op, Value: value, Low: low, High: high}))
}

func (e *Exprs) Ternary(id ExprID) (*ExprTernaryData, bool) {
	p, ok := e.payload(id, ExprTernary)
	if !ok {
		return nil, false
	}
	return e.Ternaries.Get(p), true
}

func (e *Exprs) NewPostfix(span source.Span, op Op, operand ExprID) ExprID {
	return e.new(ExprPostfix, span, e.Postfixes.Allocate(ExprPostfixData{Op: op, Operand: operand}))
}

func (e *Exprs) Postfix(id ExprID) (*ExprPostfixData, bool) {
	p, ok := e.payload(id, ExprPostfix)
	if !ok {
		return nil, false
	}
	return e.Postfixes.Get(p), true
}

func (e *Exprs) NewMember(span source.Span, target ExprID, field source.StringID, fieldSpan source.Span) ExprID {
	return e.new(ExprMember, span, e.Members.Allocate(ExprMemberData{Target: target, Field: field, FieldSpan: fieldSpan}))
}

func (e *Exprs) Member(id ExprID) (*ExprMemberData, bool) {
	p, ok := e.payload(id, ExprMember)
	if !ok {
		return nil, false
	}
	return e.Members.Get(p), true
}

func (e *Exprs) NewIndex(span source.Span, target, index ExprID) ExprID {
	return e.new(ExprIndex, span, e.Indices.Allocate(ExprIndexData{Target: target, Index: index}))
}

func (e *Exprs) Index(id ExprID) (*ExprIndexData, bool) {
	p, ok := e.payload(id, ExprIndex)
	if !ok {
		return nil, false
	}
	return e.Indices.Get(p), true
}

func (e *Exprs) NewParen(span source.Span, inner ExprID) ExprID {
	return e.new(ExprParen, span, e.Parens.Allocate(ExprParenData{Inner: inner}))
}

func (e *Exprs) Paren(id ExprID) (*ExprParenData, bool) {
	p, ok := e.payload(id, ExprParen)
	if !ok {
		return nil, false
	}
	return e.Parens.Get(p), true
}
