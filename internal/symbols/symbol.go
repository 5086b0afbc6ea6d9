package symbols

import (
	"flume/internal/ast"
	"flume/internal/name"
	"flume/internal/source"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolContext
	SymbolStream
	SymbolType
	SymbolField
	SymbolEnumMember
	SymbolUnionMember
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolContext:
		return "context"
	case SymbolStream:
		return "stream"
	case SymbolType:
		return "type"
	case SymbolField:
		return "field"
	case SymbolEnumMember:
		return "enum member"
	case SymbolUnionMember:
		return "union member"
	default:
		return "invalid"
	}
}

// IsMember reports kinds registered under a type declaration.
func (k SymbolKind) IsMember() bool {
	return k == SymbolField || k == SymbolEnumMember || k == SymbolUnionMember
}

// Symbol describes one registered declaration.
//
// Decl is the declaring node for contexts, streams and types; for members
// it is the owning type declaration and Member identifies the member.
type Symbol struct {
	Name     name.Name
	Kind     SymbolKind
	TypeKind ast.TypeDeclKind
	Decl     ast.DeclID
	Member   ast.MemberID
	Parent   SymbolID
	Script   ast.ScriptID
	Span     source.Span
}
