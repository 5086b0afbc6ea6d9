package ast

import "flume/internal/source"

// TypeNodeKind enumerates syntactic type references.
type TypeNodeKind uint8

const (
	TypeNodePrimitive TypeNodeKind = iota + 1
	TypeNodeList
	TypeNodeMap
	TypeNodeComplex
)

func (k TypeNodeKind) String() string {
	switch k {
	case TypeNodePrimitive:
		return "primitive"
	case TypeNodeList:
		return "list"
	case TypeNodeMap:
		return "map"
	case TypeNodeComplex:
		return "complex"
	default:
		return "invalid"
	}
}

// PrimKind is a primitive type keyword.
type PrimKind uint8

const (
	PrimBool PrimKind = iota + 1
	PrimInt8
	PrimInt16
	PrimInt32
	PrimInt64
	PrimFloat32
	PrimFloat64
	PrimDecimal
	PrimString
	PrimBytes
	PrimDate
	PrimTimestamp
)

var primNames = map[PrimKind]string{
	PrimBool:      "BOOL",
	PrimInt8:      "INT8",
	PrimInt16:     "INT16",
	PrimInt32:     "INT32",
	PrimInt64:     "INT64",
	PrimFloat32:   "FLOAT",
	PrimFloat64:   "DOUBLE",
	PrimDecimal:   "DECIMAL",
	PrimString:    "STRING",
	PrimBytes:     "BYTES",
	PrimDate:      "DATE",
	PrimTimestamp: "TIMESTAMP",
}

func (k PrimKind) String() string {
	if s, ok := primNames[k]; ok {
		return s
	}
	return "INVALID"
}

// ParsePrimKind maps a keyword (any case) to its PrimKind.
func ParsePrimKind(s string) (PrimKind, bool) {
	for k, v := range primNames {
		if equalFoldASCII(v, s) {
			return k, true
		}
	}
	switch {
	case equalFoldASCII(s, "BOOLEAN"):
		return PrimBool, true
	case equalFoldASCII(s, "FLOAT32"):
		return PrimFloat32, true
	case equalFoldASCII(s, "FLOAT64"):
		return PrimFloat64, true
	}
	return 0, false
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range len(a) {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// TypeNode is a type reference before resolution.
//
// Primitive uses Prim and the optional Length (STRING/BYTES) or
// Precision/Scale (DECIMAL); zero means "not given". List uses Elem,
// Map uses Key and Value, Complex uses Name (dotted, as written).
type TypeNode struct {
	Kind      TypeNodeKind
	Span      source.Span
	Prim      PrimKind
	Length    uint32
	Precision uint32
	Scale     uint32
	HasParams bool
	Elem      TypeNodeID
	Key       TypeNodeID
	Value     TypeNodeID
	Name      source.StringID
}

type TypeNodes struct {
	Arena *Arena[TypeNode]
}

func NewTypeNodes(capHint uint) *TypeNodes {
	return &TypeNodes{Arena: NewArena[TypeNode](capHint)}
}

func (t *TypeNodes) Get(id TypeNodeID) *TypeNode {
	return t.Arena.Get(uint32(id))
}

// NewPrimitive creates a bare primitive reference (no parameters).
func (t *TypeNodes) NewPrimitive(sp source.Span, prim PrimKind) TypeNodeID {
	return TypeNodeID(t.Arena.Allocate(TypeNode{Kind: TypeNodePrimitive, Span: sp, Prim: prim}))
}

// NewSized creates STRING(n) or BYTES(n).
func (t *TypeNodes) NewSized(sp source.Span, prim PrimKind, length uint32) TypeNodeID {
	return TypeNodeID(t.Arena.Allocate(TypeNode{Kind: TypeNodePrimitive, Span: sp, Prim: prim, Length: length, HasParams: true}))
}

// NewDecimal creates DECIMAL(precision, scale).
func (t *TypeNodes) NewDecimal(sp source.Span, precision, scale uint32) TypeNodeID {
	return TypeNodeID(t.Arena.Allocate(TypeNode{
		Kind:      TypeNodePrimitive,
		Span:      sp,
		Prim:      PrimDecimal,
		Precision: precision,
		Scale:     scale,
		HasParams: true,
	}))
}

func (t *TypeNodes) NewList(sp source.Span, elem TypeNodeID) TypeNodeID {
	return TypeNodeID(t.Arena.Allocate(TypeNode{Kind: TypeNodeList, Span: sp, Elem: elem}))
}

func (t *TypeNodes) NewMap(sp source.Span, key, value TypeNodeID) TypeNodeID {
	return TypeNodeID(t.Arena.Allocate(TypeNode{Kind: TypeNodeMap, Span: sp, Key: key, Value: value}))
}

// NewComplex creates a reference to a user type by (possibly dotted) name.
func (t *TypeNodes) NewComplex(sp source.Span, name source.StringID) TypeNodeID {
	return TypeNodeID(t.Arena.Allocate(TypeNode{Kind: TypeNodeComplex, Span: sp, Name: name}))
}
