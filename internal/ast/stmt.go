package ast

import (
	"flume/internal/source"
)

type StmtKind uint8

const (
	StmtDecl StmtKind = iota + 1
	StmtRead
	StmtWrite
	StmtExplain
)

func (k StmtKind) String() string {
	switch k {
	case StmtDecl:
		return "decl"
	case StmtRead:
		return "read"
	case StmtWrite:
		return "write"
	case StmtExplain:
		return "explain"
	default:
		return "invalid"
	}
}

// Stmt is a top-level statement of a script.
//
// Decl is set for StmtDecl; Stream/Projection/Where for StmtRead;
// Stream/Assignments for StmtWrite; Inner for StmtExplain.
type Stmt struct {
	Kind        StmtKind
	Span        source.Span
	Decl        DeclID
	Stream      source.StringID
	StreamSpan  source.Span
	Projection  []ExprID
	Where       ExprID
	Assignments []Assignment
	Inner       StmtID
}

// Assignment is one field = value pair of a WRITE statement.
type Assignment struct {
	Field     source.StringID
	FieldSpan source.Span
	Value     ExprID
}

type Stmts struct {
	Arena *Arena[Stmt]
}

func NewStmts(capHint uint) *Stmts {
	return &Stmts{
		Arena: NewArena[Stmt](capHint),
	}
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) NewDecl(span source.Span, decl DeclID) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: StmtDecl, Span: span, Decl: decl}))
}

// NewRead creates READ stream [projection] [WHERE where]; where may be NoExprID.
func (s *Stmts) NewRead(span source.Span, stream source.StringID, streamSpan source.Span, projection []ExprID, where ExprID) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{
		Kind:       StmtRead,
		Span:       span,
		Stream:     stream,
		StreamSpan: streamSpan,
		Projection: projection,
		Where:      where,
	}))
}

func (s *Stmts) NewWrite(span source.Span, stream source.StringID, streamSpan source.Span, assignments []Assignment) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{
		Kind:        StmtWrite,
		Span:        span,
		Stream:      stream,
		StreamSpan:  streamSpan,
		Assignments: assignments,
	}))
}

func (s *Stmts) NewExplain(span source.Span, inner StmtID) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: StmtExplain, Span: span, Inner: inner}))
}
