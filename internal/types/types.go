package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindAny is the unconstrained fallback type; it is compatible with everything.
	KindAny
	KindNull
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindDecimal
	KindString
	KindBytes
	KindDate
	KindTimestamp
	KindList
	KindMap
	KindStruct
	KindEnum
	KindUnion
	KindScalar
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindAny:
		return "any"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindDate:
		return "date"
	case KindTimestamp:
		return "timestamp"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindUnion:
		return "union"
	case KindScalar:
		return "scalar"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// MaxDecimalPrecision bounds DECIMAL(p, s).
const MaxDecimalPrecision = 38

// Type is a compact descriptor for any supported type.
//
// Length is the STRING/BYTES bound (0 = unbounded); Precision and Scale
// describe DECIMAL; Elem is the list element; Key/Elem are map key/value;
// Payload indexes nominal metadata (struct, enum, union, scalar).
type Type struct {
	Kind      Kind
	Elem      TypeID
	Key       TypeID
	Length    uint32
	Precision uint8
	Scale     uint8
	Payload   uint32
}

// IsNominal reports kinds whose identity comes from a declaration.
func (k Kind) IsNominal() bool {
	return k == KindStruct || k == KindEnum || k == KindUnion || k == KindScalar
}

// IsInteger reports the fixed-width signed integer kinds.
func (k Kind) IsInteger() bool { return k >= KindInt8 && k <= KindInt64 }

// IsFloat reports binary floating point kinds.
func (k Kind) IsFloat() bool { return k == KindFloat32 || k == KindFloat64 }

// IsNumeric reports integers, floats and decimals.
func (k Kind) IsNumeric() bool { return k >= KindInt8 && k <= KindDecimal }

// IsPrimitive reports non-composite, non-nominal kinds.
func (k Kind) IsPrimitive() bool { return k >= KindBool && k <= KindTimestamp }

// IsOrderable reports kinds supporting <, <=, >, >= and BETWEEN.
func (k Kind) IsOrderable() bool {
	return k.IsNumeric() || k == KindString || k == KindDate || k == KindTimestamp
}

type typeKey struct {
	Kind      Kind
	Elem      TypeID
	Key       TypeID
	Length    uint32
	Precision uint8
	Scale     uint8
	Payload   uint32
}

func keyOf(t Type) typeKey {
	return typeKey(t)
}
