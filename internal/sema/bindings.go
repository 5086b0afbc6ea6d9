package sema

import (
	"flume/internal/ast"
	"flume/internal/symbols"
	"flume/internal/types"
)

// Bindings attaches semantic payloads to AST nodes by arena ID.
// Two structurally equal nodes have distinct IDs and bind independently.
type Bindings struct {
	exprTypes   map[ast.ExprID]types.TypeID
	values      map[ast.ExprID]Value
	typeRefs    map[ast.TypeNodeID]symbols.SymbolID
	nodeTypes   map[ast.TypeNodeID]types.TypeID
	declTypes   map[ast.DeclID]types.TypeID
	memberTypes map[ast.MemberID]types.TypeID
	enumValues  map[ast.MemberID]int64
	stmtStreams map[ast.StmtID]symbols.SymbolID
}

// NewBindings returns an empty store.
func NewBindings() *Bindings {
	return &Bindings{
		exprTypes:   make(map[ast.ExprID]types.TypeID),
		values:      make(map[ast.ExprID]Value),
		typeRefs:    make(map[ast.TypeNodeID]symbols.SymbolID),
		nodeTypes:   make(map[ast.TypeNodeID]types.TypeID),
		declTypes:   make(map[ast.DeclID]types.TypeID),
		memberTypes: make(map[ast.MemberID]types.TypeID),
		enumValues:  make(map[ast.MemberID]int64),
		stmtStreams: make(map[ast.StmtID]symbols.SymbolID),
	}
}

// ExprType returns the type recorded for expr.
func (b *Bindings) ExprType(expr ast.ExprID) (types.TypeID, bool) {
	t, ok := b.exprTypes[expr]
	return t, ok
}

func (b *Bindings) setExprType(expr ast.ExprID, t types.TypeID) {
	b.exprTypes[expr] = t
}

// Value returns the constant recorded for a literal expression after
// alignment (a rescaled decimal, a narrowed integer and so on).
func (b *Bindings) Value(expr ast.ExprID) (Value, bool) {
	v, ok := b.values[expr]
	return v, ok
}

func (b *Bindings) setValue(expr ast.ExprID, v Value) {
	b.values[expr] = v
}

// TypeRef returns the declaration symbol a complex type node refers to.
func (b *Bindings) TypeRef(node ast.TypeNodeID) (symbols.SymbolID, bool) {
	s, ok := b.typeRefs[node]
	return s, ok
}

func (b *Bindings) setTypeRef(node ast.TypeNodeID, sym symbols.SymbolID) {
	b.typeRefs[node] = sym
}

// NodeType returns the constructed type for a type node.
func (b *Bindings) NodeType(node ast.TypeNodeID) (types.TypeID, bool) {
	t, ok := b.nodeTypes[node]
	return t, ok
}

func (b *Bindings) setNodeType(node ast.TypeNodeID, t types.TypeID) {
	b.nodeTypes[node] = t
}

// DeclType returns the type built for a type declaration, or the member
// record type for a stream declaration.
func (b *Bindings) DeclType(decl ast.DeclID) (types.TypeID, bool) {
	t, ok := b.declTypes[decl]
	return t, ok
}

func (b *Bindings) setDeclType(decl ast.DeclID, t types.TypeID) {
	b.declTypes[decl] = t
}

// MemberType returns the resolved type of a struct field or union member.
func (b *Bindings) MemberType(member ast.MemberID) (types.TypeID, bool) {
	t, ok := b.memberTypes[member]
	return t, ok
}

func (b *Bindings) setMemberType(member ast.MemberID, t types.TypeID) {
	b.memberTypes[member] = t
}

// EnumValue returns the evaluated value of an enum member.
func (b *Bindings) EnumValue(member ast.MemberID) (int64, bool) {
	v, ok := b.enumValues[member]
	return v, ok
}

func (b *Bindings) setEnumValue(member ast.MemberID, v int64) {
	b.enumValues[member] = v
}

// StmtStream returns the stream a READ/WRITE statement targets.
func (b *Bindings) StmtStream(stmt ast.StmtID) (symbols.SymbolID, bool) {
	s, ok := b.stmtStreams[stmt]
	return s, ok
}

func (b *Bindings) setStmtStream(stmt ast.StmtID, sym symbols.SymbolID) {
	b.stmtStreams[stmt] = sym
}

// Len reports the number of typed expressions.
func (b *Bindings) Len() int { return len(b.exprTypes) }
