package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for primitive types without parameters.
type Builtins struct {
	Invalid   TypeID
	Any       TypeID
	Null      TypeID
	Bool      TypeID
	Int8      TypeID
	Int16     TypeID
	Int32     TypeID
	Int64     TypeID
	Float32   TypeID
	Float64   TypeID
	String    TypeID
	Bytes     TypeID
	Date      TypeID
	Timestamp TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Nominal types are never deduplicated: each Register* call allocates
// a fresh shell whose members are filled later.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	structs  []StructInfo
	unions   []UnionInfo
	enums    []EnumInfo
	scalars  []ScalarInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 64),
	}
	// слот 0 в каждой таблице метаданных - sentinel
	in.structs = append(in.structs, StructInfo{})
	in.unions = append(in.unions, UnionInfo{})
	in.enums = append(in.enums, EnumInfo{})
	in.scalars = append(in.scalars, ScalarInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Any = in.Intern(Type{Kind: KindAny})
	in.builtins.Null = in.Intern(Type{Kind: KindNull})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Int8 = in.Intern(Type{Kind: KindInt8})
	in.builtins.Int16 = in.Intern(Type{Kind: KindInt16})
	in.builtins.Int32 = in.Intern(Type{Kind: KindInt32})
	in.builtins.Int64 = in.Intern(Type{Kind: KindInt64})
	in.builtins.Float32 = in.Intern(Type{Kind: KindFloat32})
	in.builtins.Float64 = in.Intern(Type{Kind: KindFloat64})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.Bytes = in.Intern(Type{Kind: KindBytes})
	in.builtins.Date = in.Intern(Type{Kind: KindDate})
	in.builtins.Timestamp = in.Intern(Type{Kind: KindTimestamp})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[keyOf(t)]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[keyOf(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics if the TypeID is unknown.
func (in *Interner) MustLookup(id TypeID) Type {
	t, ok := in.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("types: unknown TypeID %d", id))
	}
	return t
}

// KindOf returns the kind of id, or KindInvalid.
func (in *Interner) KindOf(id TypeID) Kind {
	t, ok := in.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return t.Kind
}

// Len counts interned descriptors including the invalid sentinel.
func (in *Interner) Len() int {
	return len(in.types)
}

// Decimal returns DECIMAL(precision, scale). Callers validate the bounds.
func (in *Interner) Decimal(precision, scale uint8) TypeID {
	return in.Intern(Type{Kind: KindDecimal, Precision: precision, Scale: scale})
}

// String returns STRING(length); 0 is the unbounded builtin.
func (in *Interner) String(length uint32) TypeID {
	return in.Intern(Type{Kind: KindString, Length: length})
}

// Bytes returns BYTES(length); 0 is the unbounded builtin.
func (in *Interner) Bytes(length uint32) TypeID {
	return in.Intern(Type{Kind: KindBytes, Length: length})
}

// List returns LIST<elem>.
func (in *Interner) List(elem TypeID) TypeID {
	return in.Intern(Type{Kind: KindList, Elem: elem})
}

// Map returns MAP<key, value>.
func (in *Interner) Map(key, value TypeID) TypeID {
	return in.Intern(Type{Kind: KindMap, Key: key, Elem: value})
}

// ListInfo returns the element type of a list.
func (in *Interner) ListInfo(id TypeID) (TypeID, bool) {
	t, ok := in.Lookup(in.Underlying(id))
	if !ok || t.Kind != KindList {
		return NoTypeID, false
	}
	return t.Elem, true
}

// MapInfo returns key and value types of a map.
func (in *Interner) MapInfo(id TypeID) (key, value TypeID, ok bool) {
	t, found := in.Lookup(in.Underlying(id))
	if !found || t.Kind != KindMap {
		return NoTypeID, NoTypeID, false
	}
	return t.Key, t.Elem, true
}
