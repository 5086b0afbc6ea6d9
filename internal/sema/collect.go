package sema

import (
	"strings"

	"flume/internal/ast"
	"flume/internal/name"
	"flume/internal/source"
	"flume/internal/symbols"
)

// collect registers every declaration of the script. Collisions are
// reported and skipped; collection continues with the next declaration.
func (bd *binder) collect(scriptID ast.ScriptID, script *ast.Script) []declEntry {
	var entries []declEntry
	for _, stmtID := range script.Stmts {
		stmt := bd.b.Stmts.Get(stmtID)
		if stmt == nil || stmt.Kind != ast.StmtDecl {
			continue
		}
		entries = bd.collectDecl(scriptID, name.NoName, symbols.NoSymbolID, stmt.Decl, entries)
	}
	return entries
}

func (bd *binder) collectDecl(scriptID ast.ScriptID, ctx name.Name, parent symbols.SymbolID, id ast.DeclID, entries []declEntry) []declEntry {
	decl := bd.b.Decls.Get(id)
	if decl == nil {
		return entries
	}
	local := bd.b.Str(decl.Name)
	if local == "" {
		return entries
	}
	qualified := bd.qualify(ctx, local)
	sym := symbols.Symbol{
		Name:   qualified,
		Decl:   id,
		Parent: parent,
		Script: scriptID,
		Span:   spanOr(decl.NameSpan, decl.Span),
	}
	bd.declCtx[id] = ctx

	switch decl.Kind {
	case ast.DeclContext:
		sym.Kind = symbols.SymbolContext
		symID, ok := bd.table.Register(sym, bd.reporter)
		if !ok {
			return entries
		}
		body, _ := bd.b.Decls.Context(id)
		if body == nil {
			return entries
		}
		for _, child := range body.Decls {
			entries = bd.collectDecl(scriptID, qualified, symID, child, entries)
		}
	case ast.DeclStream:
		sym.Kind = symbols.SymbolStream
		symID, ok := bd.table.Register(sym, bd.reporter)
		if ok {
			entries = append(entries, declEntry{decl: id, ctx: ctx, self: qualified, sym: symID})
		}
	case ast.DeclType:
		td, _ := bd.b.Decls.TypeDef(id)
		if td == nil {
			return entries
		}
		sym.Kind = symbols.SymbolType
		sym.TypeKind = td.Kind
		symID, ok := bd.table.Register(sym, bd.reporter)
		if !ok {
			return entries
		}
		entries = append(entries, declEntry{decl: id, ctx: ctx, self: qualified, sym: symID})
		bd.collectMembers(scriptID, qualified, symID, td)
	}
	return entries
}

// collectMembers registers fields, enum members and union members as
// children of the type so they can be referenced by qualified name.
func (bd *binder) collectMembers(scriptID ast.ScriptID, owner name.Name, ownerSym symbols.SymbolID, td *ast.TypeDecl) {
	kind := symbols.SymbolField
	switch td.Kind {
	case ast.TypeDeclEnum:
		kind = symbols.SymbolEnumMember
	case ast.TypeDeclUnion:
		kind = symbols.SymbolUnionMember
	}
	for _, mid := range td.Members {
		m := bd.b.Decls.Member(mid)
		if m == nil {
			continue
		}
		local := bd.b.Str(m.Name)
		if local == "" {
			bd.skipMembers[mid] = struct{}{}
			continue
		}
		sym := symbols.Symbol{
			Name:   bd.names.Qualify(owner, local),
			Kind:   kind,
			Member: mid,
			Parent: ownerSym,
			Script: scriptID,
			Span:   spanOr(m.NameSpan, m.Span),
		}
		if _, ok := bd.table.Register(sym, bd.reporter); !ok {
			bd.skipMembers[mid] = struct{}{}
		}
	}
}

// qualify joins ctx and a local name that may itself be dotted.
func (bd *binder) qualify(ctx name.Name, local string) name.Name {
	if !strings.Contains(local, name.Separator) {
		return bd.names.Qualify(ctx, local)
	}
	if ctx.IsValid() {
		return bd.names.Intern(bd.names.String(ctx) + name.Separator + local)
	}
	return bd.names.Intern(local)
}

func (bd *binder) skipped(mid ast.MemberID) bool {
	_, ok := bd.skipMembers[mid]
	return ok
}

func spanOr(primary, fallback source.Span) source.Span {
	if primary.IsNone() {
		return fallback
	}
	return primary
}
