package sema

import (
	"math/big"
	"strings"

	"flume/internal/ast"
	"flume/internal/diag"
	"flume/internal/source"
	"flume/internal/symbols"
	"flume/internal/types"
)

func (v *Validator) inferIdent(id ast.ExprID, expr *ast.Expr, env Env) types.TypeID {
	ident, _ := v.b.Exprs.Ident(id)
	text := v.b.Str(ident.Name)
	if t, ok := env.Lookup(text); ok {
		return t
	}
	if !strings.Contains(text, ".") {
		v.report(diag.SemaUnknownIdentifier, expr.Span, "unknown identifier %q", text)
		return v.fail(id)
	}
	// dotted identifier: an enum constant or a field path
	if t, ok := v.enumConstant(id, text, env); ok {
		return t
	}
	parts := strings.Split(text, ".")
	t, ok := env.Lookup(parts[0])
	if !ok {
		v.report(diag.SemaUnknownIdentifier, expr.Span, "unknown identifier %q", parts[0])
		return v.fail(id)
	}
	for _, field := range parts[1:] {
		if t, ok = v.fieldOf(t, field, expr.Span); !ok {
			return v.fail(id)
		}
	}
	return t
}

func (v *Validator) inferMember(id ast.ExprID, expr *ast.Expr, env Env) types.TypeID {
	m, _ := v.b.Exprs.Member(id)
	if path, ok := dottedPath(v.b, id); ok {
		if t, ok := v.enumConstant(id, path, env); ok {
			return t
		}
	}
	target, ok := v.inferChecked(m.Target, env)
	if !ok {
		return v.fail(id)
	}
	t, ok := v.fieldOf(target, v.b.Str(m.Field), spanOr(m.FieldSpan, expr.Span))
	if !ok {
		return v.fail(id)
	}
	return t
}

// fieldOf selects field from a struct (or union) type. ok is false after
// an unknown field or a non-struct target was reported.
func (v *Validator) fieldOf(t types.TypeID, field string, span source.Span) (types.TypeID, bool) {
	u := v.types.Underlying(t)
	switch v.types.KindOf(u) {
	case types.KindAny:
		return v.anyType(), true
	case types.KindStruct:
		info, _ := v.types.StructInfo(u)
		if f, ok := info.Field(field); ok {
			return f.Type, true
		}
		v.report(diag.SemaUnknownField, span, "%s has no field %q", v.label(t), field)
	case types.KindUnion:
		info, _ := v.types.UnionInfo(u)
		if f, ok := info.Member(field); ok {
			return f.Type, true
		}
		v.report(diag.SemaUnknownField, span, "%s has no member %q", v.label(t), field)
	default:
		v.report(diag.SemaNotAStruct, span, "cannot access field %q on non-struct type %s", field, v.label(t))
	}
	return v.anyType(), false
}

func (v *Validator) inferIndex(id ast.ExprID, expr *ast.Expr, env Env) types.TypeID {
	ix, _ := v.b.Exprs.Index(id)
	target, ok := v.inferChecked(ix.Target, env)
	if !ok {
		return v.fail(id)
	}
	u := v.types.Underlying(target)
	switch v.types.KindOf(u) {
	case types.KindAny:
		if _, ok := v.inferChecked(ix.Index, env); !ok {
			return v.fail(id)
		}
		return v.anyType()
	case types.KindList:
		elem, _ := v.types.ListInfo(u)
		it, ok := v.inferChecked(ix.Index, env)
		if !ok {
			return v.fail(id)
		}
		if k := v.kind(it); !k.IsInteger() && k != types.KindAny {
			v.report(diag.SemaInvalidIndex, v.span(ix.Index), "list index must be an integer, got %s", v.label(it))
		}
		return elem
	case types.KindMap:
		key, value, _ := v.types.MapInfo(u)
		it, ok := v.inferChecked(ix.Index, env)
		if !ok {
			return v.fail(id)
		}
		if !v.alignable(ix.Index, it, key, env) {
			v.report(diag.SemaInvalidIndex, v.span(ix.Index),
				"index of type %s does not match map key type %s", v.label(it), v.label(key))
		}
		return value
	}
	v.report(diag.SemaNotIndexable, expr.Span, "type %s cannot be indexed", v.label(target))
	return v.fail(id)
}

// enumConstant resolves a qualified path like Color.RED to its enum type
// when the path's head is not a variable in env.
func (v *Validator) enumConstant(id ast.ExprID, path string, env Env) (types.TypeID, bool) {
	if v.symbols == nil {
		return types.NoTypeID, false
	}
	if _, shadowed := env.Lookup(rootSegment(path)); shadowed {
		return types.NoTypeID, false
	}
	symID, ok := v.symbols.LookupString(path)
	if !ok {
		return types.NoTypeID, false
	}
	sym := v.symbols.Get(symID)
	if sym.Kind != symbols.SymbolEnumMember {
		return types.NoTypeID, false
	}
	owner := v.symbols.Get(sym.Parent)
	if owner == nil {
		return types.NoTypeID, false
	}
	t, ok := v.bindings.DeclType(owner.Decl)
	if !ok {
		return types.NoTypeID, false
	}
	if val, ok := v.bindings.EnumValue(sym.Member); ok {
		v.bindings.setValue(id, Value{Kind: ValInt, Int: big.NewInt(val)})
	}
	return t, true
}
