package sema

import (
	"math/big"

	"flume/internal/ast"
	"flume/internal/diag"
	"flume/internal/name"
	"flume/internal/source"
	"flume/internal/symbols"
	"flume/internal/types"
)

// evalEnum assigns member values left to right. A member without a value
// takes the previous value plus one, starting at zero.
func (bd *binder) evalEnum(e declEntry, td *ast.TypeDecl, self types.TypeID) {
	members := make([]types.EnumMember, 0, len(td.Members))
	next := int64(0)
	int64Type := bd.types.Builtins().Int64
	for _, mid := range td.Members {
		if bd.skipped(mid) {
			continue
		}
		m := bd.b.Decls.Member(mid)
		val := next
		if m.Value.IsValid() {
			if v, ok := bd.constInt(m.Value, e.self); ok {
				val = v
				bd.bindings.setValue(m.Value, Value{Kind: ValInt, Int: big.NewInt(v)})
			}
			bd.bindings.setExprType(m.Value, int64Type)
		}
		bd.bindings.setEnumValue(mid, val)
		members = append(members, types.EnumMember{Name: bd.b.Str(m.Name), Value: val, Member: mid})
		next = val + 1
	}
	bd.types.SetEnumMembers(self, members)
}

// constInt folds an enum value expression: integer literals, references to
// already valued enum members, parentheses, unary minus and + - * /.
// scope is the enum's own name, so sibling members resolve unqualified.
func (bd *binder) constInt(id ast.ExprID, scope name.Name) (int64, bool) {
	v, ok := bd.constBig(id, scope)
	if !ok {
		return 0, false
	}
	if !v.IsInt64() {
		bd.report(diag.TypeValueOutOfRange, bd.exprSpan(id), "enum value %s does not fit INT64", v)
		return 0, false
	}
	return v.Int64(), true
}

func (bd *binder) constBig(id ast.ExprID, scope name.Name) (*big.Int, bool) {
	expr := bd.b.Exprs.Get(id)
	if expr == nil {
		return nil, false
	}
	switch expr.Kind {
	case ast.ExprLit:
		lit, _ := bd.b.Exprs.Literal(id)
		if !lit.Kind.IsInteger() {
			break
		}
		text := bd.b.Str(lit.Value)
		v, ok := parseInteger(text)
		if !ok {
			bd.report(diag.TypeInvalidLiteral, expr.Span, "malformed integer literal %q", text)
			return nil, false
		}
		return v, true
	case ast.ExprParen:
		p, _ := bd.b.Exprs.Paren(id)
		return bd.constBig(p.Inner, scope)
	case ast.ExprPrefix:
		p, _ := bd.b.Exprs.Prefix(id)
		if p.Op != ast.OpNeg && p.Op != ast.OpPlus {
			break
		}
		v, ok := bd.constBig(p.Operand, scope)
		if !ok {
			return nil, false
		}
		if p.Op == ast.OpNeg {
			v = new(big.Int).Neg(v)
		}
		return v, true
	case ast.ExprInfix:
		in, _ := bd.b.Exprs.Infix(id)
		if in.Op != ast.OpAdd && in.Op != ast.OpSub && in.Op != ast.OpMul && in.Op != ast.OpDiv {
			break
		}
		l, okL := bd.constBig(in.Left, scope)
		r, okR := bd.constBig(in.Right, scope)
		if !okL || !okR {
			return nil, false
		}
		out := new(big.Int)
		switch in.Op {
		case ast.OpAdd:
			out.Add(l, r)
		case ast.OpSub:
			out.Sub(l, r)
		case ast.OpMul:
			out.Mul(l, r)
		case ast.OpDiv:
			if r.Sign() == 0 {
				bd.report(diag.TypeDivisionByZero, expr.Span, "division by zero in enum value")
				return nil, false
			}
			out.Quo(l, r)
		}
		return out, true
	case ast.ExprIdent, ast.ExprMember:
		path, ok := dottedPath(bd.b, id)
		if !ok {
			break
		}
		symID, found := bd.table.Resolve(scope, path)
		if !found {
			bd.report(diag.ResUnknownSymbol, expr.Span, "unknown symbol %q", path)
			return nil, false
		}
		sym := bd.table.Get(symID)
		if sym.Kind != symbols.SymbolEnumMember {
			bd.report(diag.TypeEnumValueNotConst, expr.Span,
				"%s is a %s, not an enum member", bd.table.Display(symID), sym.Kind)
			return nil, false
		}
		v, ok := bd.bindings.EnumValue(sym.Member)
		if !ok {
			bd.report(diag.TypeEnumValueNotConst, expr.Span,
				"enum member %s is used before its value is defined", bd.table.Display(symID))
			return nil, false
		}
		return big.NewInt(v), true
	}
	bd.report(diag.TypeEnumValueNotConst, expr.Span, "enum value must be a constant integer expression")
	return nil, false
}

func (bd *binder) exprSpan(id ast.ExprID) (sp source.Span) {
	if expr := bd.b.Exprs.Get(id); expr != nil {
		return expr.Span
	}
	return sp
}
