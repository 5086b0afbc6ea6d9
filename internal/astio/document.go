// Package astio is the boundary with the external parser. The parser
// writes one finished AST document per source file; astio decodes it
// (JSON or msgpack, same field names) and lowers it into an ast.Builder.
package astio

// SchemaVersion is the document layout this package understands.
// Documents with schema 0 are treated as version 1.
const SchemaVersion = 1

// Document is the parsed form of one script.
type Document struct {
	Schema     int       `json:"schema,omitempty"`
	Path       string    `json:"path"`
	Includes   []Include `json:"includes,omitempty"`
	Statements []Stmt    `json:"statements"`
}

type Pos struct {
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

// Span is 1-based; a zero Start means "no position".
type Span struct {
	Start Pos `json:"start"`
	End   Pos `json:"end"`
}

type Include struct {
	Path string `json:"path"`
	Span Span   `json:"span"`
}

// Stmt is a statement or a declaration. Which fields are set depends on Kind:
//
//	context  name, body
//	stream   name, member, fragments
//	type     name, type_kind, members | target, fragments
//	read     stream, projection, where
//	write    stream, assignments
//	explain  inner
type Stmt struct {
	Kind     string `json:"kind"`
	Span     Span   `json:"span"`
	Name     string `json:"name,omitempty"`
	NameSpan Span   `json:"name_span"`

	TypeKind  string     `json:"type_kind,omitempty"`
	Members   []Member   `json:"members,omitempty"`
	Target    *TypeNode  `json:"target,omitempty"`
	Member    *TypeNode  `json:"member,omitempty"`
	Body      []Stmt     `json:"body,omitempty"`
	Fragments []Fragment `json:"fragments,omitempty"`

	Stream      string   `json:"stream,omitempty"`
	StreamSpan  Span     `json:"stream_span"`
	Projection  []Expr   `json:"projection,omitempty"`
	Where       *Expr    `json:"where,omitempty"`
	Assignments []Assign `json:"assignments,omitempty"`
	Inner       *Stmt    `json:"inner,omitempty"`
}

// Member is a struct field or union member (type) or an enum member (value).
type Member struct {
	Name      string     `json:"name"`
	Span      Span       `json:"span"`
	NameSpan  Span       `json:"name_span"`
	Type      *TypeNode  `json:"type,omitempty"`
	Value     *Expr      `json:"value,omitempty"`
	Fragments []Fragment `json:"fragments,omitempty"`
}

// Fragment is doc (text), check/default/constraint (expr) or
// distribute/timestamp (fields).
type Fragment struct {
	Kind   string     `json:"kind"`
	Span   Span       `json:"span"`
	Text   string     `json:"text,omitempty"`
	Expr   *Expr      `json:"expr,omitempty"`
	Fields []FieldRef `json:"fields,omitempty"`
}

type FieldRef struct {
	Name string `json:"name"`
	Span Span   `json:"span"`
}

// TypeNode is primitive (primitive + optional length or precision/scale),
// list (elem), map (key, value) or complex (name).
type TypeNode struct {
	Kind      string    `json:"kind"`
	Span      Span      `json:"span"`
	Primitive string    `json:"primitive,omitempty"`
	Length    *uint32   `json:"length,omitempty"`
	Precision *uint32   `json:"precision,omitempty"`
	Scale     *uint32   `json:"scale,omitempty"`
	Elem      *TypeNode `json:"elem,omitempty"`
	Key       *TypeNode `json:"key,omitempty"`
	Value     *TypeNode `json:"value,omitempty"`
	Name      string    `json:"name,omitempty"`
}

// Expr operands by kind: prefix/postfix/paren 1, infix 2, ternary 3,
// member 1 (target) plus name, index 2 (target, index).
type Expr struct {
	Kind     string `json:"kind"`
	Span     Span   `json:"span"`
	Op       string `json:"op,omitempty"`
	Name     string `json:"name,omitempty"`
	NameSpan Span   `json:"name_span"`
	LitKind  string `json:"lit_kind,omitempty"`
	Literal  string `json:"literal,omitempty"`
	Operands []Expr `json:"operands,omitempty"`
}

type Assign struct {
	Field     string `json:"field"`
	FieldSpan Span   `json:"field_span"`
	Value     Expr   `json:"value"`
}
