package astio

import (
	"fmt"
	"strings"

	"flume/internal/ast"
)

// Statement kinds.
const (
	KindContext = "context"
	KindStream  = "stream"
	KindType    = "type"
	KindRead    = "read"
	KindWrite   = "write"
	KindExplain = "explain"
)

var typeDeclKinds = map[string]ast.TypeDeclKind{
	"struct":  ast.TypeDeclStruct,
	"enum":    ast.TypeDeclEnum,
	"union":   ast.TypeDeclUnion,
	"scalar":  ast.TypeDeclScalar,
	"derived": ast.TypeDeclDerived,
}

var typeNodeKinds = map[string]ast.TypeNodeKind{
	"primitive": ast.TypeNodePrimitive,
	"list":      ast.TypeNodeList,
	"map":       ast.TypeNodeMap,
	"complex":   ast.TypeNodeComplex,
}

var fragmentKinds = map[string]ast.FragmentKind{
	"doc":        ast.FragDoc,
	"check":      ast.FragCheck,
	"default":    ast.FragDefault,
	"constraint": ast.FragConstraint,
	"distribute": ast.FragDistribute,
	"timestamp":  ast.FragTimestamp,
}

// exprShape is the operand count and operator family of an expression kind.
type exprShape struct {
	kind     ast.ExprKind
	operands int
	ops      func(ast.Op) bool
}

var exprShapes = map[string]exprShape{
	"ident":   {kind: ast.ExprIdent},
	"literal": {kind: ast.ExprLit},
	"prefix": {kind: ast.ExprPrefix, operands: 1, ops: func(op ast.Op) bool {
		return op == ast.OpNot || op == ast.OpNeg || op == ast.OpPlus
	}},
	"infix": {kind: ast.ExprInfix, operands: 2, ops: func(op ast.Op) bool {
		return op.IsArithmetic() || op.IsBitwise() || op.IsLogical() || op.IsComparison() ||
			op == ast.OpLike || op == ast.OpIn
	}},
	"ternary": {kind: ast.ExprTernary, operands: 3, ops: func(op ast.Op) bool { return op == ast.OpBetween }},
	"postfix": {kind: ast.ExprPostfix, operands: 1, ops: func(op ast.Op) bool {
		return op == ast.OpIsNull || op == ast.OpIsNotNull
	}},
	"member": {kind: ast.ExprMember, operands: 1},
	"index":  {kind: ast.ExprIndex, operands: 2},
	"paren":  {kind: ast.ExprParen, operands: 1},
}

func parseOp(s string) (ast.Op, bool) {
	return ast.ParseOp(strings.ToUpper(strings.TrimSpace(s)))
}

func parseLitKind(s string) (ast.LitKind, bool) {
	return ast.ParseLitKind(strings.ToLower(strings.TrimSpace(s)))
}

// Validate checks node kinds, operand counts and required fields. Lower
// relies on it and never sees a malformed tree.
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil document", ErrMalformed)
	}
	if d.Schema > SchemaVersion {
		return fmt.Errorf("%w: schema %d is newer than supported %d", ErrMalformed, d.Schema, SchemaVersion)
	}
	v := &validator{}
	for i := range d.Includes {
		if d.Includes[i].Path == "" {
			v.fail(fmt.Sprintf("includes[%d]", i), "empty include path")
		}
	}
	for i := range d.Statements {
		v.stmt(fmt.Sprintf("statements[%d]", i), &d.Statements[i], true)
	}
	return v.err
}

type validator struct {
	err error
}

func (v *validator) fail(at, format string, args ...any) {
	if v.err == nil {
		v.err = fmt.Errorf("%w: %s: %s", ErrMalformed, at, fmt.Sprintf(format, args...))
	}
}

func (v *validator) stmt(at string, s *Stmt, topLevel bool) {
	switch s.Kind {
	case KindContext:
		v.needName(at, s.Name)
		for i := range s.Body {
			b := &s.Body[i]
			sub := fmt.Sprintf("%s.body[%d]", at, i)
			if b.Kind != KindContext && b.Kind != KindStream && b.Kind != KindType {
				v.fail(sub, "only declarations may appear inside a context, got %q", b.Kind)
				continue
			}
			v.stmt(sub, b, false)
		}
	case KindStream:
		v.needName(at, s.Name)
		if s.Member == nil {
			v.fail(at, "stream without member type")
		} else {
			v.typeNode(at+".member", s.Member)
		}
		v.fragments(at, s.Fragments)
	case KindType:
		v.needName(at, s.Name)
		v.typeDecl(at, s)
		v.fragments(at, s.Fragments)
	case KindRead, KindWrite:
		if !topLevel {
			v.fail(at, "%s statement inside a context", s.Kind)
		}
		if s.Stream == "" {
			v.fail(at, "%s without stream", s.Kind)
		}
		for i := range s.Projection {
			v.expr(fmt.Sprintf("%s.projection[%d]", at, i), &s.Projection[i])
		}
		if s.Where != nil {
			v.expr(at+".where", s.Where)
		}
		for i := range s.Assignments {
			a := &s.Assignments[i]
			if a.Field == "" {
				v.fail(fmt.Sprintf("%s.assignments[%d]", at, i), "assignment without field")
			}
			v.expr(fmt.Sprintf("%s.assignments[%d].value", at, i), &a.Value)
		}
	case KindExplain:
		if s.Inner == nil || (s.Inner.Kind != KindRead && s.Inner.Kind != KindWrite) {
			v.fail(at, "explain must wrap a read or write")
			return
		}
		v.stmt(at+".inner", s.Inner, topLevel)
	default:
		v.fail(at, "unknown statement kind %q", s.Kind)
	}
}

func (v *validator) typeDecl(at string, s *Stmt) {
	kind, ok := typeDeclKinds[s.TypeKind]
	if !ok {
		v.fail(at, "unknown type kind %q", s.TypeKind)
		return
	}
	switch kind {
	case ast.TypeDeclScalar, ast.TypeDeclDerived:
		if s.Target == nil {
			v.fail(at, "%s type without target", s.TypeKind)
			return
		}
		v.typeNode(at+".target", s.Target)
	default:
		for i := range s.Members {
			m := &s.Members[i]
			sub := fmt.Sprintf("%s.members[%d]", at, i)
			v.needName(sub, m.Name)
			switch {
			case kind == ast.TypeDeclEnum && m.Type != nil:
				v.fail(sub, "enum member with a type")
			case kind != ast.TypeDeclEnum && m.Type == nil:
				v.fail(sub, "member without type")
			case kind != ast.TypeDeclEnum && m.Value != nil:
				v.fail(sub, "only enum members carry values")
			}
			if m.Type != nil {
				v.typeNode(sub+".type", m.Type)
			}
			if m.Value != nil {
				v.expr(sub+".value", m.Value)
			}
			v.fragments(sub, m.Fragments)
		}
	}
}

func (v *validator) fragments(at string, frags []Fragment) {
	for i := range frags {
		f := &frags[i]
		sub := fmt.Sprintf("%s.fragments[%d]", at, i)
		kind, ok := fragmentKinds[f.Kind]
		if !ok {
			v.fail(sub, "unknown fragment kind %q", f.Kind)
			continue
		}
		switch kind {
		case ast.FragCheck, ast.FragDefault, ast.FragConstraint:
			if f.Expr == nil {
				v.fail(sub, "%s fragment without expression", f.Kind)
				continue
			}
			v.expr(sub+".expr", f.Expr)
		case ast.FragDistribute, ast.FragTimestamp:
			if len(f.Fields) == 0 {
				v.fail(sub, "%s fragment without fields", f.Kind)
			}
		}
	}
}

func (v *validator) typeNode(at string, t *TypeNode) {
	kind, ok := typeNodeKinds[t.Kind]
	if !ok {
		v.fail(at, "unknown type node kind %q", t.Kind)
		return
	}
	switch kind {
	case ast.TypeNodePrimitive:
		if _, ok := ast.ParsePrimKind(t.Primitive); !ok {
			v.fail(at, "unknown primitive %q", t.Primitive)
		}
	case ast.TypeNodeList:
		if t.Elem == nil {
			v.fail(at, "list without elem")
			return
		}
		v.typeNode(at+".elem", t.Elem)
	case ast.TypeNodeMap:
		if t.Key == nil || t.Value == nil {
			v.fail(at, "map without key or value")
			return
		}
		v.typeNode(at+".key", t.Key)
		v.typeNode(at+".value", t.Value)
	case ast.TypeNodeComplex:
		v.needName(at, t.Name)
	}
}

func (v *validator) expr(at string, e *Expr) {
	shape, ok := exprShapes[e.Kind]
	if !ok {
		v.fail(at, "unknown expression kind %q", e.Kind)
		return
	}
	if len(e.Operands) != shape.operands {
		v.fail(at, "%s expression needs %d operands, got %d", e.Kind, shape.operands, len(e.Operands))
		return
	}
	if shape.ops != nil {
		op, ok := parseOp(e.Op)
		if !ok || !shape.ops(op) {
			v.fail(at, "invalid %s operator %q", e.Kind, e.Op)
		}
	}
	switch shape.kind {
	case ast.ExprIdent, ast.ExprMember:
		v.needName(at, e.Name)
	case ast.ExprLit:
		if _, ok := parseLitKind(e.LitKind); !ok {
			v.fail(at, "unknown literal kind %q", e.LitKind)
		}
	}
	for i := range e.Operands {
		v.expr(fmt.Sprintf("%s.operands[%d]", at, i), &e.Operands[i])
	}
}

func (v *validator) needName(at, name string) {
	if strings.TrimSpace(name) == "" {
		v.fail(at, "missing name")
	}
}
