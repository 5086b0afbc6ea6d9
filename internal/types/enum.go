package types

import (
	"slices"

	"flume/internal/ast"
	"flume/internal/name"
)

// EnumMember is one named constant of an enum.
type EnumMember struct {
	Name   string
	Value  int64
	Member ast.MemberID
}

// EnumInfo stores metadata for an enum type.
type EnumInfo struct {
	Name    string
	Decl    ast.DeclID
	Members []EnumMember
}

// RegisterEnum allocates an enum shell and returns its TypeID.
func (in *Interner) RegisterEnum(displayName string, decl ast.DeclID) TypeID {
	in.enums = append(in.enums, EnumInfo{Name: displayName, Decl: decl})
	return in.internRaw(Type{Kind: KindEnum, Payload: lastSlot(len(in.enums))})
}

// SetEnumMembers stores the evaluated members.
func (in *Interner) SetEnumMembers(typeID TypeID, members []EnumMember) {
	info := in.enumInfo(typeID)
	if info == nil {
		return
	}
	info.Members = slices.Clone(members)
}

// EnumInfo returns metadata for the provided enum TypeID.
func (in *Interner) EnumInfo(typeID TypeID) (*EnumInfo, bool) {
	info := in.enumInfo(typeID)
	return info, info != nil
}

// Member finds an enum constant by case-insensitive name.
func (e *EnumInfo) Member(memberName string) (EnumMember, bool) {
	key := name.Fold(memberName)
	for _, m := range e.Members {
		if name.Fold(m.Name) == key {
			return m, true
		}
	}
	return EnumMember{}, false
}

func (in *Interner) enumInfo(typeID TypeID) *EnumInfo {
	t, ok := in.Lookup(typeID)
	if !ok || t.Kind != KindEnum || t.Payload == 0 || int(t.Payload) >= len(in.enums) {
		return nil
	}
	return &in.enums[t.Payload]
}
