package ast

import (
	"flume/internal/source"
)

type Hints struct{ Scripts, Decls, Stmts, Exprs, Types uint }

// Builder owns every arena of one compilation. IDs handed out by it are
// unique across all scripts, so they can key semantic bindings directly.
type Builder struct {
	Strings   *source.Interner
	Scripts   *Scripts
	Decls     *Decls
	Stmts     *Stmts
	Exprs     *Exprs
	Types     *TypeNodes
	Fragments *Fragments
}

func NewBuilder(hints Hints, strings *source.Interner) *Builder {
	if hints.Scripts == 0 {
		hints.Scripts = 1 << 4
	}
	if hints.Decls == 0 {
		hints.Decls = 1 << 7
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 7
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if hints.Types == 0 {
		hints.Types = 1 << 7
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Builder{
		Strings:   strings,
		Scripts:   NewScripts(hints.Scripts),
		Decls:     NewDecls(hints.Decls),
		Stmts:     NewStmts(hints.Stmts),
		Exprs:     NewExprs(hints.Exprs),
		Types:     NewTypeNodes(hints.Types),
		Fragments: NewFragments(hints.Decls),
	}
}

// Intern is a shortcut for b.Strings.Intern.
func (b *Builder) Intern(s string) source.StringID {
	return b.Strings.Intern(s)
}

// Str resolves an interned string ("" for NoStringID).
func (b *Builder) Str(id source.StringID) string {
	if id == source.NoStringID {
		return ""
	}
	return b.Strings.MustLookup(id)
}

func (b *Builder) NewScript(file source.FileID, path string, sp source.Span) ScriptID {
	return b.Scripts.New(file, path, sp)
}

func (b *Builder) AddInclude(script ScriptID, path string, sp source.Span) {
	s := b.Scripts.Get(script)
	s.Includes = append(s.Includes, Include{Path: path, Span: sp})
}

func (b *Builder) PushStmt(script ScriptID, stmt StmtID) {
	s := b.Scripts.Get(script)
	s.Stmts = append(s.Stmts, stmt)
}

// PushDecl wraps decl into a declaration statement and appends it to script.
func (b *Builder) PushDecl(script ScriptID, decl DeclID) StmtID {
	stmt := b.Stmts.NewDecl(b.Decls.Get(decl).Span, decl)
	b.PushStmt(script, stmt)
	return stmt
}
