package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"flume/internal/ast"
	"flume/internal/diag"
	"flume/internal/name"
)

// Table maps qualified names to declarations. A name is registered at
// most once; contexts may be reopened.
type Table struct {
	Symbols  *Symbols
	Names    *name.Registry
	byName   map[name.Name]SymbolID
	byDecl   map[ast.DeclID]SymbolID
	byMember map[ast.MemberID]SymbolID
}

// NewTable builds an empty table over names; nil allocates a registry.
func NewTable(capacity uint, names *name.Registry) *Table {
	symCap, err := safecast.Conv[uint32](capacity)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if names == nil {
		names = name.NewRegistry()
	}
	return &Table{
		Symbols:  NewSymbols(symCap),
		Names:    names,
		byName:   make(map[name.Name]SymbolID, symCap),
		byDecl:   make(map[ast.DeclID]SymbolID, symCap),
		byMember: make(map[ast.MemberID]SymbolID),
	}
}

// Register adds sym. On a collision nothing is overwritten: a Resolve
// error pointing at both declarations is reported and ok is false.
// Registering a context over an existing context returns the existing one.
func (t *Table) Register(sym Symbol, r diag.Reporter) (SymbolID, bool) {
	if prev, exists := t.byName[sym.Name]; exists {
		old := t.Symbols.Get(prev)
		if old.Kind == SymbolContext && sym.Kind == SymbolContext {
			if sym.Decl.IsValid() {
				t.byDecl[sym.Decl] = prev
			}
			return prev, true
		}
		code := diag.ResDuplicateSymbol
		if sym.Kind.IsMember() {
			code = diag.ResDuplicateMember
		}
		if r != nil {
			diag.ReportError(r, code, sym.Span,
				fmt.Sprintf("duplicate %s %q", sym.Kind, t.Names.String(sym.Name))).
				WithNotef(old.Span, "previous %s %q declared here", old.Kind, t.Names.String(old.Name)).
				Emit()
		}
		return prev, false
	}
	id := t.Symbols.New(&sym)
	t.byName[sym.Name] = id
	if sym.Member.IsValid() {
		t.byMember[sym.Member] = id
	} else if sym.Decl.IsValid() {
		t.byDecl[sym.Decl] = id
	}
	return id, true
}

// Get returns the symbol for id or nil.
func (t *Table) Get(id SymbolID) *Symbol {
	return t.Symbols.Get(id)
}

// Lookup finds any symbol by qualified name.
func (t *Table) Lookup(n name.Name) (SymbolID, bool) {
	id, ok := t.byName[n]
	return id, ok
}

// LookupString interns nothing: unknown spellings simply miss.
func (t *Table) LookupString(qualified string) (SymbolID, bool) {
	n, ok := t.Names.Lookup(qualified)
	if !ok {
		return NoSymbolID, false
	}
	return t.Lookup(n)
}

func (t *Table) lookupKind(n name.Name, kind SymbolKind) (SymbolID, bool) {
	id, ok := t.byName[n]
	if !ok || t.Symbols.Get(id).Kind != kind {
		return NoSymbolID, false
	}
	return id, true
}

// LookupType finds a type declaration of any form.
func (t *Table) LookupType(n name.Name) (SymbolID, bool) {
	return t.lookupKind(n, SymbolType)
}

// LookupStruct finds a struct type declaration.
func (t *Table) LookupStruct(n name.Name) (SymbolID, bool) {
	id, ok := t.LookupType(n)
	if !ok || t.Symbols.Get(id).TypeKind != ast.TypeDeclStruct {
		return NoSymbolID, false
	}
	return id, true
}

// LookupStream finds a stream declaration.
func (t *Table) LookupStream(n name.Name) (SymbolID, bool) {
	return t.lookupKind(n, SymbolStream)
}

// LookupContext finds a context declaration.
func (t *Table) LookupContext(n name.Name) (SymbolID, bool) {
	return t.lookupKind(n, SymbolContext)
}

// Resolve looks local up from ctx outward (innermost context first).
// Names that were only interned as prefixes are skipped.
func (t *Table) Resolve(ctx name.Name, local string) (SymbolID, bool) {
	for {
		candidate := local
		if ctx.IsValid() {
			candidate = t.Names.String(ctx) + name.Separator + local
		}
		if n, ok := t.Names.Lookup(candidate); ok {
			if id, found := t.byName[n]; found {
				return id, true
			}
		}
		if !ctx.IsValid() {
			return NoSymbolID, false
		}
		ctx = t.Names.Context(ctx)
	}
}

// ReverseLookup returns the qualified name registered for decl.
func (t *Table) ReverseLookup(decl ast.DeclID) (name.Name, bool) {
	id, ok := t.byDecl[decl]
	if !ok {
		return name.NoName, false
	}
	return t.Symbols.Get(id).Name, true
}

// ReverseLookupMember returns the qualified name registered for a member.
func (t *Table) ReverseLookupMember(member ast.MemberID) (name.Name, bool) {
	id, ok := t.byMember[member]
	if !ok {
		return name.NoName, false
	}
	return t.Symbols.Get(id).Name, true
}

// SymbolOf returns the symbol registered for decl.
func (t *Table) SymbolOf(decl ast.DeclID) (SymbolID, bool) {
	id, ok := t.byDecl[decl]
	return id, ok
}

// MemberSymbol returns the symbol registered for member.
func (t *Table) MemberSymbol(member ast.MemberID) (SymbolID, bool) {
	id, ok := t.byMember[member]
	return id, ok
}

// Len reports the number of registered symbols.
func (t *Table) Len() int {
	return t.Symbols.Len()
}

// Display is the user-facing qualified name of id.
func (t *Table) Display(id SymbolID) string {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return ""
	}
	return t.Names.String(sym.Name)
}

// Each calls fn for every symbol in registration order.
func (t *Table) Each(fn func(SymbolID, *Symbol)) {
	data := t.Symbols.Data()
	for i := range data {
		fn(SymbolID(i+1), &data[i]) //nolint:gosec // bounded by the arena length
	}
}
