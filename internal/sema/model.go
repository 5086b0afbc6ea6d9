package sema

import (
	"github.com/google/uuid"

	"flume/internal/ast"
	"flume/internal/diag"
	"flume/internal/name"
	"flume/internal/symbols"
	"flume/internal/types"
)

// Model is the result of one analysis run. It is read-only once Bind
// returns and may be shared between concurrent readers.
type Model struct {
	Builder      *ast.Builder
	Scripts      []ast.ScriptID
	Names        *name.Registry
	Symbols      *symbols.Table
	Types        *types.Interner
	Bindings     *Bindings
	Diagnostics  *diag.Bag
	InvocationID uuid.UUID
}

// Name implements the driver phase contract.
func (m *Model) Name() string { return "sema" }

// StopOnError reports whether the pipeline must stop after analysis.
// Warnings never stop it.
func (m *Model) StopOnError() bool {
	return m.Diagnostics != nil && m.Diagnostics.HasErrors()
}

// Lookup finds a symbol by its qualified name.
func (m *Model) Lookup(qualified string) (*symbols.Symbol, bool) {
	id, ok := m.Symbols.LookupString(qualified)
	if !ok {
		return nil, false
	}
	return m.Symbols.Get(id), true
}

// TypeOf returns the built type of a declared type, or the record type of
// a stream, by qualified name.
func (m *Model) TypeOf(qualified string) (types.TypeID, bool) {
	sym, ok := m.Lookup(qualified)
	if !ok || !sym.Decl.IsValid() {
		return types.NoTypeID, false
	}
	return m.Bindings.DeclType(sym.Decl)
}

// TypeLabel renders id for messages.
func (m *Model) TypeLabel(id types.TypeID) string {
	return types.Label(m.Types, id)
}
