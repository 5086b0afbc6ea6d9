package ast

import "flume/internal/source"

// DeclKind enumerates declaration forms.
type DeclKind uint8

const (
	DeclContext DeclKind = iota + 1
	DeclStream
	DeclType
)

func (k DeclKind) String() string {
	switch k {
	case DeclContext:
		return "context"
	case DeclStream:
		return "stream"
	case DeclType:
		return "type"
	default:
		return "invalid"
	}
}

// TypeDeclKind is the concrete form wrapped by a DeclType.
type TypeDeclKind uint8

const (
	TypeDeclStruct TypeDeclKind = iota + 1
	TypeDeclEnum
	TypeDeclUnion
	TypeDeclScalar
	TypeDeclDerived
)

func (k TypeDeclKind) String() string {
	switch k {
	case TypeDeclStruct:
		return "struct"
	case TypeDeclEnum:
		return "enum"
	case TypeDeclUnion:
		return "union"
	case TypeDeclScalar:
		return "scalar"
	case TypeDeclDerived:
		return "derived"
	default:
		return "invalid"
	}
}

// Decl is a named declaration. Name is the local spelling; the qualified
// name is computed from the enclosing contexts during symbol collection.
type Decl struct {
	Kind      DeclKind
	Span      source.Span
	Name      source.StringID
	NameSpan  source.Span
	Fragments []FragmentID
	Payload   PayloadID
}

// ContextDecl groups nested declarations under a common prefix.
type ContextDecl struct {
	Decls []DeclID
}

// StreamDecl names a stream whose records have the Member type.
type StreamDecl struct {
	Member TypeNodeID
}

// TypeDecl covers struct/enum/union members and scalar/derived targets.
type TypeDecl struct {
	Kind    TypeDeclKind
	Members []MemberID
	Target  TypeNodeID
}

// Member is a struct field, enum member or union member.
// Type is set for fields and union members, Value for enum members.
type Member struct {
	Span      source.Span
	Name      source.StringID
	NameSpan  source.Span
	Type      TypeNodeID
	Value     ExprID
	Fragments []FragmentID
}

type Decls struct {
	Arena    *Arena[Decl]
	Contexts *Arena[ContextDecl]
	Streams  *Arena[StreamDecl]
	TypeDefs *Arena[TypeDecl]
	Members  *Arena[Member]
}

func NewDecls(capHint uint) *Decls {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Decls{
		Arena:    NewArena[Decl](capHint),
		Contexts: NewArena[ContextDecl](capHint / 4),
		Streams:  NewArena[StreamDecl](capHint / 4),
		TypeDefs: NewArena[TypeDecl](capHint),
		Members:  NewArena[Member](capHint * 4),
	}
}

func (d *Decls) new(kind DeclKind, sp source.Span, name source.StringID, nameSpan source.Span, payload PayloadID) DeclID {
	return DeclID(d.Arena.Allocate(Decl{
		Kind:     kind,
		Span:     sp,
		Name:     name,
		NameSpan: nameSpan,
		Payload:  payload,
	}))
}

// Get returns the declaration with the given ID.
func (d *Decls) Get(id DeclID) *Decl {
	return d.Arena.Get(uint32(id))
}

// NewContext creates a context declaration holding decls.
func (d *Decls) NewContext(sp source.Span, name source.StringID, nameSpan source.Span, decls []DeclID) DeclID {
	payload := d.Contexts.Allocate(ContextDecl{Decls: decls})
	return d.new(DeclContext, sp, name, nameSpan, PayloadID(payload))
}

// Context returns the context payload for id.
func (d *Decls) Context(id DeclID) (*ContextDecl, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclContext {
		return nil, false
	}
	return d.Contexts.Get(uint32(decl.Payload)), true
}

// NewStream creates a stream declaration over member.
func (d *Decls) NewStream(sp source.Span, name source.StringID, nameSpan source.Span, member TypeNodeID) DeclID {
	payload := d.Streams.Allocate(StreamDecl{Member: member})
	return d.new(DeclStream, sp, name, nameSpan, PayloadID(payload))
}

// Stream returns the stream payload for id.
func (d *Decls) Stream(id DeclID) (*StreamDecl, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclStream {
		return nil, false
	}
	return d.Streams.Get(uint32(decl.Payload)), true
}

// NewType creates a type declaration. For struct/enum/union pass members,
// for scalar/derived pass target.
func (d *Decls) NewType(sp source.Span, name source.StringID, nameSpan source.Span, kind TypeDeclKind, members []MemberID, target TypeNodeID) DeclID {
	payload := d.TypeDefs.Allocate(TypeDecl{Kind: kind, Members: members, Target: target})
	return d.new(DeclType, sp, name, nameSpan, PayloadID(payload))
}

// TypeDef returns the type payload for id.
func (d *Decls) TypeDef(id DeclID) (*TypeDecl, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclType {
		return nil, false
	}
	return d.TypeDefs.Get(uint32(decl.Payload)), true
}

// NewMember creates a struct field or union member (typ) or an enum member (value).
func (d *Decls) NewMember(sp source.Span, name source.StringID, nameSpan source.Span, typ TypeNodeID, value ExprID) MemberID {
	return MemberID(d.Members.Allocate(Member{
		Span:     sp,
		Name:     name,
		NameSpan: nameSpan,
		Type:     typ,
		Value:    value,
	}))
}

// Member returns the member with the given ID.
func (d *Decls) Member(id MemberID) *Member {
	return d.Members.Get(uint32(id))
}

// Attach appends fragments to a declaration.
func (d *Decls) Attach(id DeclID, frags ...FragmentID) {
	if decl := d.Get(id); decl != nil {
		decl.Fragments = append(decl.Fragments, frags...)
	}
}

// AttachMember appends fragments to a member.
func (d *Decls) AttachMember(id MemberID, frags ...FragmentID) {
	if m := d.Member(id); m != nil {
		m.Fragments = append(m.Fragments, frags...)
	}
}
