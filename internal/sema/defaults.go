package sema

import (
	"flume/internal/ast"
	"flume/internal/types"
)

// scalarValueIdent names the wrapped value inside a scalar's CHECK.
const scalarValueIdent = "value"

// bindDefaults validates DEFAULT values against their field types and
// CHECK/CONSTRAINT expressions as conditions over the record's fields.
func (bd *binder) bindDefaults(entries []declEntry) {
	for _, e := range entries {
		td, ok := bd.b.Decls.TypeDef(e.decl)
		if !ok {
			continue
		}
		self, ok := bd.bindings.DeclType(e.decl)
		if !ok {
			continue
		}
		decl := bd.b.Decls.Get(e.decl)
		switch td.Kind {
		case ast.TypeDeclStruct:
			env := StructEnv(bd.types, self)
			for _, mid := range td.Members {
				if bd.skipped(mid) {
					continue
				}
				m := bd.b.Decls.Member(mid)
				ft, _ := bd.bindings.MemberType(mid)
				for _, fid := range m.Fragments {
					bd.bindFragment(fid, ft, env)
				}
			}
			for _, fid := range decl.Fragments {
				bd.bindFragment(fid, types.NoTypeID, env)
			}
		case ast.TypeDeclScalar:
			env := NewEnv().With(scalarValueIdent, self)
			for _, fid := range decl.Fragments {
				bd.bindFragment(fid, self, env)
			}
		}
	}
}

func (bd *binder) bindFragment(id ast.FragmentID, target types.TypeID, env Env) {
	frag := bd.b.Fragments.Get(id)
	if frag == nil || !frag.Expr.IsValid() {
		return
	}
	switch frag.Kind {
	case ast.FragDefault:
		if target != types.NoTypeID {
			bd.validator.Align(frag.Expr, target, NewEnv())
		}
	case ast.FragCheck, ast.FragConstraint:
		bd.validator.Condition(frag.Expr, env)
	}
}
