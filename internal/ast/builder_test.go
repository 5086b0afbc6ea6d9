package ast

import (
	"testing"

	"flume/internal/source"
)

func TestIdenticalLiteralsGetDistinctIDs(t *testing.T) {
	b := NewBuilder(Hints{}, nil)
	v := b.Intern("1")
	a := b.Exprs.NewLiteral(source.NoSpan, LitInt32, v)
	c := b.Exprs.NewLiteral(source.NoSpan, LitInt32, v)
	if a == c {
		t.Fatalf("structurally equal literals must have distinct identities")
	}
	la, _ := b.Exprs.Literal(a)
	lc, _ := b.Exprs.Literal(c)
	if *la != *lc {
		t.Fatalf("payloads differ: %+v vs %+v", la, lc)
	}
}

func TestAccessorsCheckKind(t *testing.T) {
	b := NewBuilder(Hints{}, nil)
	id := b.Exprs.NewIdent(source.NoSpan, b.Intern("x"))
	if _, ok := b.Exprs.Literal(id); ok {
		t.Fatalf("Literal on ident must fail")
	}
	if data, ok := b.Exprs.Ident(id); !ok || b.Str(data.Name) != "x" {
		t.Fatalf("Ident lookup failed")
	}
	if b.Exprs.Get(NoExprID) != nil {
		t.Fatalf("sentinel must resolve to nil")
	}
	if _, ok := b.Exprs.Infix(ExprID(999)); ok {
		t.Fatalf("out of range id must fail")
	}
}

func TestScriptAssembly(t *testing.T) {
	b := NewBuilder(Hints{}, nil)
	script := b.NewScript(1, "main.fl", source.NoSpan)
	b.AddInclude(script, "types.fl", source.NoSpan)

	field := b.Decls.NewMember(source.NoSpan, b.Intern("id"), source.NoSpan, b.Types.NewPrimitive(source.NoSpan, PrimInt64), NoExprID)
	rec := b.Decls.NewType(source.NoSpan, b.Intern("Order"), source.NoSpan, TypeDeclStruct, []MemberID{field}, NoTypeNodeID)
	ctx := b.Decls.NewContext(source.NoSpan, b.Intern("Sales"), source.NoSpan, []DeclID{rec})
	b.PushDecl(script, ctx)

	s := b.Scripts.Get(script)
	if len(s.Includes) != 1 || s.Includes[0].Path != "types.fl" {
		t.Fatalf("includes = %+v", s.Includes)
	}
	if len(s.Stmts) != 1 {
		t.Fatalf("stmts = %v", s.Stmts)
	}
	stmt := b.Stmts.Get(s.Stmts[0])
	if stmt.Kind != StmtDecl || stmt.Decl != ctx {
		t.Fatalf("unexpected stmt %+v", stmt)
	}
	c, ok := b.Decls.Context(ctx)
	if !ok || len(c.Decls) != 1 {
		t.Fatalf("context payload broken")
	}
	td, ok := b.Decls.TypeDef(c.Decls[0])
	if !ok || td.Kind != TypeDeclStruct || len(td.Members) != 1 {
		t.Fatalf("type payload broken: %+v", td)
	}
	if _, ok := b.Decls.Stream(ctx); ok {
		t.Fatalf("Stream on context must fail")
	}
}

func TestParseNames(t *testing.T) {
	for _, op := range []Op{OpNot, OpAdd, OpIn, OpBetween, OpIsNotNull} {
		got, ok := ParseOp(op.String())
		if !ok || got != op {
			t.Fatalf("ParseOp(%q) = %v, %v", op.String(), got, ok)
		}
	}
	tests := []struct {
		in   string
		want PrimKind
	}{
		{"int8", PrimInt8},
		{"Decimal", PrimDecimal},
		{"BOOLEAN", PrimBool},
		{"double", PrimFloat64},
	}
	for _, tt := range tests {
		if got, ok := ParsePrimKind(tt.in); !ok || got != tt.want {
			t.Errorf("ParsePrimKind(%q) = %v, %v", tt.in, got, ok)
		}
	}
	if _, ok := ParseLitKind("decimal"); !ok {
		t.Fatalf("ParseLitKind(decimal) failed")
	}
}
