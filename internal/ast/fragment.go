package ast

import "flume/internal/source"

// FragmentKind enumerates annotation-like clauses attached to declarations.
type FragmentKind uint8

const (
	FragDoc FragmentKind = iota + 1
	FragCheck
	FragDefault
	FragConstraint
	FragDistribute
	FragTimestamp
)

func (k FragmentKind) String() string {
	switch k {
	case FragDoc:
		return "doc"
	case FragCheck:
		return "check"
	case FragDefault:
		return "default"
	case FragConstraint:
		return "constraint"
	case FragDistribute:
		return "distribute"
	case FragTimestamp:
		return "timestamp"
	default:
		return "invalid"
	}
}

// Fragment carries Text for doc, Expr for check/default/constraint and
// Fields for distribute/timestamp.
type Fragment struct {
	Kind   FragmentKind
	Span   source.Span
	Text   string
	Expr   ExprID
	Fields []FieldRef
}

// FieldRef names a field of the enclosing record.
type FieldRef struct {
	Name source.StringID
	Span source.Span
}

type Fragments struct {
	Arena *Arena[Fragment]
}

func NewFragments(capHint uint) *Fragments {
	return &Fragments{Arena: NewArena[Fragment](capHint)}
}

func (f *Fragments) Get(id FragmentID) *Fragment {
	return f.Arena.Get(uint32(id))
}

func (f *Fragments) NewDoc(sp source.Span, text string) FragmentID {
	return FragmentID(f.Arena.Allocate(Fragment{Kind: FragDoc, Span: sp, Text: text}))
}

// NewExpr creates a check, default or constraint fragment.
func (f *Fragments) NewExpr(kind FragmentKind, sp source.Span, expr ExprID) FragmentID {
	return FragmentID(f.Arena.Allocate(Fragment{Kind: kind, Span: sp, Expr: expr}))
}

// NewFields creates a distribute or timestamp fragment.
func (f *Fragments) NewFields(kind FragmentKind, sp source.Span, fields []FieldRef) FragmentID {
	return FragmentID(f.Arena.Allocate(Fragment{Kind: kind, Span: sp, Fields: fields}))
}
