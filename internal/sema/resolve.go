package sema

import (
	"fmt"

	"flume/internal/ast"
	"flume/internal/diag"
	"flume/internal/name"
	"flume/internal/symbols"
)

// resolve binds every complex type node of the collected declarations to
// the type symbol it names. Unknown names leave the binding absent.
func (bd *binder) resolve(entries []declEntry) {
	for _, e := range entries {
		decl := bd.b.Decls.Get(e.decl)
		switch decl.Kind {
		case ast.DeclStream:
			if st, ok := bd.b.Decls.Stream(e.decl); ok {
				bd.resolveNode(e.ctx, st.Member)
			}
		case ast.DeclType:
			td, ok := bd.b.Decls.TypeDef(e.decl)
			if !ok {
				continue
			}
			if td.Target.IsValid() {
				bd.resolveNode(e.ctx, td.Target)
			}
			for _, mid := range td.Members {
				if m := bd.b.Decls.Member(mid); m != nil && m.Type.IsValid() {
					bd.resolveNode(e.ctx, m.Type)
				}
			}
		}
	}
}

func (bd *binder) resolveNode(ctx name.Name, id ast.TypeNodeID) {
	node := bd.b.Types.Get(id)
	if node == nil {
		return
	}
	switch node.Kind {
	case ast.TypeNodeList:
		bd.resolveNode(ctx, node.Elem)
	case ast.TypeNodeMap:
		bd.resolveNode(ctx, node.Key)
		bd.resolveNode(ctx, node.Value)
	case ast.TypeNodeComplex:
		ref := bd.b.Str(node.Name)
		symID, ok := bd.table.Resolve(ctx, ref)
		if !ok {
			bd.report(diag.ResUnknownType, node.Span, "unknown type %q", ref)
			return
		}
		sym := bd.table.Get(symID)
		if sym.Kind != symbols.SymbolType {
			if b := diag.ReportError(bd.reporter, diag.ResNotAType, node.Span,
				fmt.Sprintf("%q is a %s, not a type", ref, sym.Kind)); b != nil {
				b.WithNotef(sym.Span, "%s declared here", bd.table.Display(symID)).Emit()
			}
			return
		}
		bd.bindings.setTypeRef(id, symID)
	}
}
