package sema

import (
	"sync/atomic"

	"flume/internal/name"
	"flume/internal/types"
)

// Env maps identifiers in scope to their declared types. Lookups fold
// case the same way qualified names do.
//
// Every constructed environment carries its own id; copies of one Env
// value share it. The zero Env has id 0.
type Env struct {
	id   uint64
	vars map[string]types.TypeID
}

var envSeq atomic.Uint64

// NewEnv returns an empty environment.
func NewEnv() Env {
	return Env{id: envSeq.Add(1), vars: make(map[string]types.TypeID)}
}

// With returns a copy of e with ident bound to t.
func (e Env) With(ident string, t types.TypeID) Env {
	out := Env{id: envSeq.Add(1), vars: make(map[string]types.TypeID, len(e.vars)+1)}
	for k, v := range e.vars {
		out.vars[k] = v
	}
	out.vars[name.Fold(ident)] = t
	return out
}

// Lookup returns the type bound to ident.
func (e Env) Lookup(ident string) (types.TypeID, bool) {
	if e.vars == nil {
		return types.NoTypeID, false
	}
	t, ok := e.vars[name.Fold(ident)]
	return t, ok
}

// Len reports the number of bound identifiers.
func (e Env) Len() int { return len(e.vars) }

// StructEnv binds every field of a struct type (through scalars) by name.
// A type that is not a filled struct yields an empty environment.
func StructEnv(in *types.Interner, structType types.TypeID) Env {
	env := NewEnv()
	info, ok := in.StructInfo(in.Underlying(structType))
	if !ok {
		return env
	}
	for _, f := range info.Fields {
		env.vars[name.Fold(f.Name)] = f.Type
	}
	return env
}
