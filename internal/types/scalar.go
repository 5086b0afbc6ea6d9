package types

import "flume/internal/ast"

// ScalarInfo stores metadata for a named scalar (SCALAR Money = DECIMAL(18,2)).
type ScalarInfo struct {
	Name string
	Decl ast.DeclID
	Base TypeID
}

// RegisterScalar allocates a scalar shell and returns its TypeID.
func (in *Interner) RegisterScalar(displayName string, decl ast.DeclID) TypeID {
	in.scalars = append(in.scalars, ScalarInfo{Name: displayName, Decl: decl})
	return in.internRaw(Type{Kind: KindScalar, Payload: lastSlot(len(in.scalars))})
}

// SetScalarBase records the primitive the scalar wraps.
func (in *Interner) SetScalarBase(typeID, base TypeID) {
	if info := in.scalarInfo(typeID); info != nil {
		info.Base = base
	}
}

// ScalarInfo returns metadata for the provided scalar TypeID.
func (in *Interner) ScalarInfo(typeID TypeID) (*ScalarInfo, bool) {
	info := in.scalarInfo(typeID)
	return info, info != nil
}

// Underlying strips scalar wrappers. Unfilled scalars yield themselves.
func (in *Interner) Underlying(id TypeID) TypeID {
	// цепочка скаляров конечна, но защищаемся от незакрытого графа
	for range len(in.scalars) {
		info := in.scalarInfo(id)
		if info == nil || info.Base == NoTypeID {
			return id
		}
		id = info.Base
	}
	return id
}

func (in *Interner) scalarInfo(typeID TypeID) *ScalarInfo {
	t, ok := in.Lookup(typeID)
	if !ok || t.Kind != KindScalar || t.Payload == 0 || int(t.Payload) >= len(in.scalars) {
		return nil
	}
	return &in.scalars[t.Payload]
}
