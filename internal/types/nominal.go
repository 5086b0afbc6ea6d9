package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"flume/internal/ast"
	"flume/internal/name"
)

// Field describes a struct field or a union member.
type Field struct {
	Name   string
	Type   TypeID
	Member ast.MemberID
}

// StructInfo stores metadata for a struct type.
type StructInfo struct {
	Name   string
	Decl   ast.DeclID
	Fields []Field
	filled bool
}

// UnionInfo stores metadata for a union type.
type UnionInfo struct {
	Name    string
	Decl    ast.DeclID
	Members []Field
	filled  bool
}

// RegisterStruct allocates a struct shell and returns its TypeID.
// The shell is usable as a field type before SetStructFields runs.
func (in *Interner) RegisterStruct(displayName string, decl ast.DeclID) TypeID {
	in.structs = append(in.structs, StructInfo{Name: displayName, Decl: decl})
	return in.internRaw(Type{Kind: KindStruct, Payload: lastSlot(len(in.structs))})
}

// SetStructFields stores the resolved field descriptors for the struct type.
func (in *Interner) SetStructFields(typeID TypeID, fields []Field) {
	info := in.structInfo(typeID)
	if info == nil {
		return
	}
	info.Fields = slices.Clone(fields)
	info.filled = true
}

// StructInfo returns metadata for the provided struct TypeID.
func (in *Interner) StructInfo(typeID TypeID) (*StructInfo, bool) {
	info := in.structInfo(typeID)
	return info, info != nil
}

// Filled reports whether SetStructFields has run.
func (s *StructInfo) Filled() bool { return s.filled }

// Field finds a field by case-insensitive name.
func (s *StructInfo) Field(fieldName string) (Field, bool) {
	return findField(s.Fields, fieldName)
}

// RegisterUnion allocates a union shell and returns its TypeID.
func (in *Interner) RegisterUnion(displayName string, decl ast.DeclID) TypeID {
	in.unions = append(in.unions, UnionInfo{Name: displayName, Decl: decl})
	return in.internRaw(Type{Kind: KindUnion, Payload: lastSlot(len(in.unions))})
}

// SetUnionMembers stores the resolved member descriptors for the union type.
func (in *Interner) SetUnionMembers(typeID TypeID, members []Field) {
	info := in.unionInfo(typeID)
	if info == nil {
		return
	}
	info.Members = slices.Clone(members)
	info.filled = true
}

// UnionInfo returns metadata for the provided union TypeID.
func (in *Interner) UnionInfo(typeID TypeID) (*UnionInfo, bool) {
	info := in.unionInfo(typeID)
	return info, info != nil
}

// Filled reports whether SetUnionMembers has run.
func (u *UnionInfo) Filled() bool { return u.filled }

// Member finds a union member by case-insensitive name.
func (u *UnionInfo) Member(memberName string) (Field, bool) {
	return findField(u.Members, memberName)
}

func (in *Interner) structInfo(typeID TypeID) *StructInfo {
	t, ok := in.Lookup(typeID)
	if !ok || t.Kind != KindStruct || t.Payload == 0 || int(t.Payload) >= len(in.structs) {
		return nil
	}
	return &in.structs[t.Payload]
}

func (in *Interner) unionInfo(typeID TypeID) *UnionInfo {
	t, ok := in.Lookup(typeID)
	if !ok || t.Kind != KindUnion || t.Payload == 0 || int(t.Payload) >= len(in.unions) {
		return nil
	}
	return &in.unions[t.Payload]
}

func findField(fields []Field, fieldName string) (Field, bool) {
	key := name.Fold(fieldName)
	for _, f := range fields {
		if name.Fold(f.Name) == key {
			return f, true
		}
	}
	return Field{}, false
}

func lastSlot(n int) uint32 {
	slot, err := safecast.Conv[uint32](n - 1)
	if err != nil {
		panic(fmt.Errorf("nominal slot overflow: %w", err))
	}
	return slot
}
