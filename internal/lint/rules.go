package lint

import (
	"flume/internal/ast"
	"flume/internal/symbols"
)

func checkUnusedTypes(p *Pass) {
	m := p.Model
	used := make(map[symbols.SymbolID]bool)
	for i := uint32(1); i <= m.Builder.Types.Arena.Len(); i++ {
		if sym, ok := m.Bindings.TypeRef(ast.TypeNodeID(i)); ok {
			used[sym] = true
		}
	}
	m.Symbols.Each(func(id symbols.SymbolID, sym *symbols.Symbol) {
		if sym.Kind != symbols.SymbolType || used[id] {
			return
		}
		// enums are mostly used through constants, which bind no type node
		if sym.TypeKind == ast.TypeDeclEnum {
			return
		}
		p.Reportf(declSpan(m.Builder, sym.Decl), "type %s is never used", m.Symbols.Display(id))
	})
}

func checkEmptyTypes(p *Pass) {
	m := p.Model
	m.Symbols.Each(func(id symbols.SymbolID, sym *symbols.Symbol) {
		if sym.Kind != symbols.SymbolType {
			return
		}
		td, ok := m.Builder.Decls.TypeDef(sym.Decl)
		if !ok || len(td.Members) > 0 {
			return
		}
		switch td.Kind {
		case ast.TypeDeclStruct, ast.TypeDeclEnum, ast.TypeDeclUnion:
			p.Reportf(declSpan(m.Builder, sym.Decl), "%s %s declares no members", td.Kind, m.Symbols.Display(id))
		}
	})
}

func checkStreamTimestamp(p *Pass) {
	m := p.Model
	m.Symbols.Each(func(id symbols.SymbolID, sym *symbols.Symbol) {
		if sym.Kind != symbols.SymbolStream {
			return
		}
		for _, fid := range m.Builder.Decls.Get(sym.Decl).Fragments {
			if f := m.Builder.Fragments.Get(fid); f != nil && f.Kind == ast.FragTimestamp {
				return
			}
		}
		p.Reportf(declSpan(m.Builder, sym.Decl), "stream %s has no TIMESTAMP field", m.Symbols.Display(id))
	})
}
