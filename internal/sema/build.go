package sema

import (
	"flume/internal/ast"
	"flume/internal/diag"
	"flume/internal/source"
	"flume/internal/types"
)

// Bare DECIMAL without parameters.
const (
	defaultDecimalPrecision = types.MaxDecimalPrecision
	defaultDecimalScale     = 10
)

// build turns the collected declarations into types. Every nominal type
// gets its shell first so fields may refer to any of them, including
// themselves; member types are filled in afterwards.
func (bd *binder) build(entries []declEntry) {
	var derived []declEntry
	for _, e := range entries {
		td, ok := bd.b.Decls.TypeDef(e.decl)
		if !ok {
			continue
		}
		display := bd.names.String(e.self)
		switch td.Kind {
		case ast.TypeDeclStruct:
			bd.bindings.setDeclType(e.decl, bd.types.RegisterStruct(display, e.decl))
		case ast.TypeDeclUnion:
			bd.bindings.setDeclType(e.decl, bd.types.RegisterUnion(display, e.decl))
		case ast.TypeDeclEnum:
			bd.bindings.setDeclType(e.decl, bd.types.RegisterEnum(display, e.decl))
		case ast.TypeDeclScalar:
			bd.bindings.setDeclType(e.decl, bd.types.RegisterScalar(display, e.decl))
		case ast.TypeDeclDerived:
			derived = append(derived, e)
		}
	}
	for _, e := range derived {
		bd.derivedType(e.decl, nil)
	}

	var pending []declEntry
	for _, e := range entries {
		if !bd.fill(e, false) {
			pending = append(pending, e)
		}
	}
	for _, e := range pending {
		bd.fill(e, true)
	}

	// streams last: their member struct may be declared after them
	for _, e := range entries {
		if bd.b.Decls.Get(e.decl).Kind == ast.DeclStream {
			bd.buildStream(e)
		}
	}
}

// fill completes one declaration. It returns false when a member needs a
// type that does not exist yet; with final set that becomes an internal
// error and the member falls back to ANY.
func (bd *binder) fill(e declEntry, final bool) bool {
	td, ok := bd.b.Decls.TypeDef(e.decl)
	if !ok {
		return true
	}
	self, _ := bd.bindings.DeclType(e.decl)
	switch td.Kind {
	case ast.TypeDeclStruct, ast.TypeDeclUnion:
		fields := make([]types.Field, 0, len(td.Members))
		for _, mid := range td.Members {
			if bd.skipped(mid) {
				continue
			}
			m := bd.b.Decls.Member(mid)
			ft, ok := bd.nodeType(m.Type, final)
			if !ok {
				return false
			}
			bd.bindings.setMemberType(mid, ft)
			fields = append(fields, types.Field{Name: bd.b.Str(m.Name), Type: ft, Member: mid})
		}
		if td.Kind == ast.TypeDeclStruct {
			bd.types.SetStructFields(self, fields)
		} else {
			bd.types.SetUnionMembers(self, fields)
		}
	case ast.TypeDeclScalar:
		base, ok := bd.nodeType(td.Target, final)
		if !ok {
			return false
		}
		if k := bd.types.KindOf(bd.types.Underlying(base)); !k.IsPrimitive() && k != types.KindAny {
			bd.report(diag.TypeScalarNotPrimitive, bd.typeNodeSpan(td.Target),
				"scalar %s must wrap a primitive type, got %s", bd.names.String(e.self), bd.label(base))
			base = bd.types.Builtins().Any
		}
		bd.types.SetScalarBase(self, base)
	case ast.TypeDeclEnum:
		bd.evalEnum(e, td, self)
	}
	return true
}

// nodeType builds the type of a type node. ok is false only when a
// referenced nominal type has no shell yet and final is not set.
func (bd *binder) nodeType(id ast.TypeNodeID, final bool) (types.TypeID, bool) {
	t, ok := bd.typeOfNode(id, nil)
	if ok {
		return t, true
	}
	if !final {
		return types.NoTypeID, false
	}
	bd.report(diag.IntTypeGraphOpen, bd.typeNodeSpan(id),
		"type graph cannot be closed: %s has no type", bd.b.Str(bd.b.Types.Get(id).Name))
	return bd.types.Builtins().Any, true
}

func (bd *binder) typeOfNode(id ast.TypeNodeID, seen map[ast.DeclID]bool) (types.TypeID, bool) {
	if t, ok := bd.bindings.NodeType(id); ok {
		return t, true
	}
	node := bd.b.Types.Get(id)
	if node == nil {
		return bd.types.Builtins().Any, true
	}
	var t types.TypeID
	switch node.Kind {
	case ast.TypeNodePrimitive:
		t = bd.primitive(node)
	case ast.TypeNodeList:
		elem, ok := bd.typeOfNode(node.Elem, seen)
		if !ok {
			return types.NoTypeID, false
		}
		t = bd.types.List(elem)
	case ast.TypeNodeMap:
		key, okKey := bd.typeOfNode(node.Key, seen)
		value, okValue := bd.typeOfNode(node.Value, seen)
		if !okKey || !okValue {
			return types.NoTypeID, false
		}
		if k := bd.types.KindOf(bd.types.Underlying(key)); !k.IsPrimitive() && k != types.KindAny {
			bd.report(diag.TypeMismatch, bd.typeNodeSpan(node.Key),
				"map key must be a primitive type, got %s", bd.label(key))
		}
		t = bd.types.Map(key, value)
	case ast.TypeNodeComplex:
		symID, ok := bd.bindings.TypeRef(id)
		if !ok {
			// unresolved; already reported
			t = bd.types.Builtins().Any
			break
		}
		decl := bd.table.Get(symID).Decl
		dt, ok := bd.declType(decl, seen)
		if !ok {
			return types.NoTypeID, false
		}
		t = dt
	default:
		t = bd.types.Builtins().Any
	}
	bd.bindings.setNodeType(id, t)
	return t, true
}

func (bd *binder) declType(decl ast.DeclID, seen map[ast.DeclID]bool) (types.TypeID, bool) {
	if t, ok := bd.bindings.DeclType(decl); ok {
		return t, true
	}
	if td, ok := bd.b.Decls.TypeDef(decl); ok && td.Kind == ast.TypeDeclDerived {
		return bd.derivedType(decl, seen), true
	}
	return types.NoTypeID, false
}

// derivedType resolves TYPE X = Y transitively. X is an alias: it gets
// the type of its target, not a new nominal type.
func (bd *binder) derivedType(decl ast.DeclID, seen map[ast.DeclID]bool) types.TypeID {
	if t, ok := bd.bindings.DeclType(decl); ok {
		return t
	}
	if seen == nil {
		seen = make(map[ast.DeclID]bool)
	}
	anyType := bd.types.Builtins().Any
	if seen[decl] {
		d := bd.b.Decls.Get(decl)
		bd.report(diag.IntTypeGraphOpen, spanOr(d.NameSpan, d.Span),
			"type graph cannot be closed: %s is defined in terms of itself", bd.declDisplay(decl))
		bd.bindings.setDeclType(decl, anyType)
		return anyType
	}
	seen[decl] = true
	td, _ := bd.b.Decls.TypeDef(decl)
	t, ok := bd.typeOfNode(td.Target, seen)
	if !ok {
		t = anyType
	}
	if done, ok := bd.bindings.DeclType(decl); ok {
		return done
	}
	bd.bindings.setDeclType(decl, t)
	return t
}

func (bd *binder) primitive(node *ast.TypeNode) types.TypeID {
	bt := bd.types.Builtins()
	switch node.Prim {
	case ast.PrimBool:
		return bt.Bool
	case ast.PrimInt8:
		return bt.Int8
	case ast.PrimInt16:
		return bt.Int16
	case ast.PrimInt32:
		return bt.Int32
	case ast.PrimInt64:
		return bt.Int64
	case ast.PrimFloat32:
		return bt.Float32
	case ast.PrimFloat64:
		return bt.Float64
	case ast.PrimDate:
		return bt.Date
	case ast.PrimTimestamp:
		return bt.Timestamp
	case ast.PrimString, ast.PrimBytes:
		if !node.HasParams {
			if node.Prim == ast.PrimString {
				return bt.String
			}
			return bt.Bytes
		}
		if node.Length == 0 {
			bd.report(diag.TypeInvalidLength, node.Span, "%s length must be positive", node.Prim)
			if node.Prim == ast.PrimString {
				return bt.String
			}
			return bt.Bytes
		}
		if node.Prim == ast.PrimString {
			return bd.types.String(node.Length)
		}
		return bd.types.Bytes(node.Length)
	case ast.PrimDecimal:
		precision, scale := uint32(defaultDecimalPrecision), uint32(defaultDecimalScale)
		if node.HasParams {
			precision, scale = node.Precision, node.Scale
			if precision < 1 || precision > types.MaxDecimalPrecision {
				bd.report(diag.TypeInvalidPrecision, node.Span,
					"DECIMAL precision %d out of range [1, %d]", precision, types.MaxDecimalPrecision)
				precision = min(max(precision, 1), types.MaxDecimalPrecision)
			}
			if scale > precision {
				bd.report(diag.TypeInvalidPrecision, node.Span,
					"DECIMAL scale %d exceeds precision %d", scale, precision)
				scale = precision
			}
		}
		return bd.types.Decimal(uint8(precision), uint8(scale)) //nolint:gosec // both <= 38
	default:
		return bt.Any
	}
}

// buildStream binds the stream's record type and checks its key fragments.
func (bd *binder) buildStream(e declEntry) {
	st, ok := bd.b.Decls.Stream(e.decl)
	if !ok {
		return
	}
	t, _ := bd.nodeType(st.Member, true)
	bd.bindings.setDeclType(e.decl, t)
	u := bd.types.Underlying(t)
	switch bd.types.KindOf(u) {
	case types.KindAny:
		return
	case types.KindStruct:
	default:
		bd.report(diag.TypeStreamNotStruct, bd.typeNodeSpan(st.Member),
			"stream %s must carry a struct, got %s", bd.names.String(e.self), bd.label(t))
		return
	}
	info, _ := bd.types.StructInfo(u)
	decl := bd.b.Decls.Get(e.decl)
	for _, fid := range decl.Fragments {
		frag := bd.b.Fragments.Get(fid)
		if frag == nil || (frag.Kind != ast.FragTimestamp && frag.Kind != ast.FragDistribute) {
			continue
		}
		for _, ref := range frag.Fields {
			fieldName := bd.b.Str(ref.Name)
			f, ok := info.Field(fieldName)
			if !ok {
				bd.report(diag.SemaUnknownStreamKey, spanOr(ref.Span, frag.Span),
					"stream %s has no field %q", bd.names.String(e.self), fieldName)
				continue
			}
			if frag.Kind == ast.FragTimestamp {
				switch bd.types.KindOf(bd.types.Underlying(f.Type)) {
				case types.KindTimestamp, types.KindDate, types.KindInt64, types.KindAny:
				default:
					bd.report(diag.TypeMismatch, spanOr(ref.Span, frag.Span),
						"TIMESTAMP field %q must be TIMESTAMP, DATE or INT64, got %s", fieldName, bd.label(f.Type))
				}
			}
		}
	}
}

func (bd *binder) typeNodeSpan(id ast.TypeNodeID) (sp source.Span) {
	if node := bd.b.Types.Get(id); node != nil {
		return node.Span
	}
	return sp
}

func (bd *binder) declDisplay(decl ast.DeclID) string {
	if symID, ok := bd.table.SymbolOf(decl); ok {
		return bd.table.Display(symID)
	}
	return bd.b.Str(bd.b.Decls.Get(decl).Name)
}
