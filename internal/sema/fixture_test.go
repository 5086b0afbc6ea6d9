package sema

import (
	"context"
	"strings"
	"testing"

	"flume/internal/ast"
	"flume/internal/diag"
	"flume/internal/source"
	"flume/internal/types"
)

// fixture assembles scripts by hand; every node gets its own line so
// diagnostics never collapse in the dedup reporter by accident.
type fixture struct {
	b      *ast.Builder
	script ast.ScriptID
	line   uint32
}

func newFixture() *fixture {
	f := &fixture{b: ast.NewBuilder(ast.Hints{}, nil)}
	f.script = f.b.NewScript(1, "main.fl", source.NoSpan)
	return f
}

func (f *fixture) sp() source.Span {
	f.line++
	return source.Span{File: 1, Start: source.Pos{Line: f.line, Col: 1}, End: source.Pos{Line: f.line, Col: 10}}
}

func (f *fixture) newScript(path string) ast.ScriptID {
	f.script = f.b.NewScript(1, path, source.NoSpan)
	return f.script
}

func (f *fixture) prim(k ast.PrimKind) ast.TypeNodeID {
	return f.b.Types.NewPrimitive(f.sp(), k)
}

func (f *fixture) decimal(p, s uint32) ast.TypeNodeID {
	return f.b.Types.NewDecimal(f.sp(), p, s)
}

func (f *fixture) ref(qualified string) ast.TypeNodeID {
	return f.b.Types.NewComplex(f.sp(), f.b.Intern(qualified))
}

func (f *fixture) list(elem ast.TypeNodeID) ast.TypeNodeID {
	return f.b.Types.NewList(f.sp(), elem)
}

func (f *fixture) mapOf(k, v ast.TypeNodeID) ast.TypeNodeID {
	return f.b.Types.NewMap(f.sp(), k, v)
}

func (f *fixture) field(fieldName string, typ ast.TypeNodeID) ast.MemberID {
	sp := f.sp()
	return f.b.Decls.NewMember(sp, f.b.Intern(fieldName), sp, typ, ast.NoExprID)
}

func (f *fixture) enumMember(memberName string, value ast.ExprID) ast.MemberID {
	sp := f.sp()
	return f.b.Decls.NewMember(sp, f.b.Intern(memberName), sp, ast.NoTypeNodeID, value)
}

func (f *fixture) typeDecl(kind ast.TypeDeclKind, typeName string, target ast.TypeNodeID, members ...ast.MemberID) ast.DeclID {
	sp := f.sp()
	return f.b.Decls.NewType(sp, f.b.Intern(typeName), sp, kind, members, target)
}

func (f *fixture) structDecl(typeName string, fields ...ast.MemberID) ast.DeclID {
	return f.typeDecl(ast.TypeDeclStruct, typeName, ast.NoTypeNodeID, fields...)
}

func (f *fixture) stream(streamName string, member ast.TypeNodeID) ast.DeclID {
	sp := f.sp()
	return f.b.Decls.NewStream(sp, f.b.Intern(streamName), sp, member)
}

func (f *fixture) ctxDecl(ctxName string, decls ...ast.DeclID) ast.DeclID {
	sp := f.sp()
	return f.b.Decls.NewContext(sp, f.b.Intern(ctxName), sp, decls)
}

// top appends declarations to the current script.
func (f *fixture) top(decls ...ast.DeclID) {
	for _, d := range decls {
		f.b.PushDecl(f.script, d)
	}
}

func (f *fixture) lit(kind ast.LitKind, text string) ast.ExprID {
	return f.b.Exprs.NewLiteral(f.sp(), kind, f.b.Intern(text))
}

func (f *fixture) ident(text string) ast.ExprID {
	return f.b.Exprs.NewIdent(f.sp(), f.b.Intern(text))
}

func (f *fixture) member(target ast.ExprID, fieldName string) ast.ExprID {
	sp := f.sp()
	return f.b.Exprs.NewMember(sp, target, f.b.Intern(fieldName), sp)
}

func (f *fixture) infix(op ast.Op, l, r ast.ExprID) ast.ExprID {
	return f.b.Exprs.NewInfix(f.sp(), op, l, r)
}

func (f *fixture) read(streamName string, where ast.ExprID, projection ...ast.ExprID) ast.StmtID {
	sp := f.sp()
	id := f.b.Stmts.NewRead(sp, f.b.Intern(streamName), sp, projection, where)
	f.b.PushStmt(f.script, id)
	return id
}

func (f *fixture) write(streamName string, assigns ...ast.Assignment) ast.StmtID {
	sp := f.sp()
	id := f.b.Stmts.NewWrite(sp, f.b.Intern(streamName), sp, assigns)
	f.b.PushStmt(f.script, id)
	return id
}

func (f *fixture) assign(fieldName string, value ast.ExprID) ast.Assignment {
	return ast.Assignment{Field: f.b.Intern(fieldName), FieldSpan: f.sp(), Value: value}
}

func (f *fixture) bind(t *testing.T, opts Options, scripts ...ast.ScriptID) *Model {
	t.Helper()
	if len(scripts) == 0 {
		scripts = []ast.ScriptID{f.script}
	}
	return Bind(context.Background(), f.b, scripts, opts)
}

// validator returns a standalone validator writing into bag.
func (f *fixture) validator(bag *diag.Bag, opts ...ValidatorOption) (*Validator, *types.Interner) {
	in := types.NewInterner()
	return NewValidator(f.b, in, NewBindings(), diag.BagReporter{Bag: bag}, opts...), in
}

func codes(bag *diag.Bag) []diag.Code {
	out := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func requireNoDiagnostics(t *testing.T, bag *diag.Bag) {
	t.Helper()
	if bag.Len() != 0 {
		var sb strings.Builder
		for _, d := range bag.Items() {
			sb.WriteString("\n  " + d.Code.ID() + " " + d.Message)
		}
		t.Fatalf("expected no diagnostics, got %d:%s", bag.Len(), sb.String())
	}
}

func requireCode(t *testing.T, bag *diag.Bag, code diag.Code) diag.Diagnostic {
	t.Helper()
	for _, d := range bag.Items() {
		if d.Code == code {
			return d
		}
	}
	t.Fatalf("expected %s among %v", code.ID(), codes(bag))
	return diag.Diagnostic{}
}
