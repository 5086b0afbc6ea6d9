package sema

import (
	"testing"

	"flume/internal/ast"
	"flume/internal/diag"
	"flume/internal/symbols"
	"flume/internal/types"
)

func TestBindDuplicateSymbolFolded(t *testing.T) {
	f := newFixture()
	f.top(
		f.structDecl("Foo", f.field("a", f.prim(ast.PrimInt32))),
		f.structDecl("foo", f.field("b", f.prim(ast.PrimInt32))),
	)
	m := f.bind(t, Options{})
	d := requireCode(t, m.Diagnostics, diag.ResDuplicateSymbol)
	if d.Kind != diag.KindResolve {
		t.Fatalf("expected resolve kind, got %s", d.Kind)
	}
	if len(d.Notes) == 0 {
		t.Fatalf("duplicate should point at the first declaration")
	}
	if !m.StopOnError() {
		t.Fatalf("duplicate symbol must stop the pipeline")
	}
}

func TestBindSelfReferentialStruct(t *testing.T) {
	f := newFixture()
	f.top(f.structDecl("Node",
		f.field("value", f.prim(ast.PrimInt64)),
		f.field("children", f.list(f.ref("Node"))),
	))
	m := f.bind(t, Options{})
	requireNoDiagnostics(t, m.Diagnostics)

	node, ok := m.TypeOf("Node")
	if !ok {
		t.Fatalf("Node has no type")
	}
	info, ok := m.Types.StructInfo(node)
	if !ok || !info.Filled() {
		t.Fatalf("Node should be a filled struct")
	}
	children, ok := info.Field("children")
	if !ok {
		t.Fatalf("missing children field")
	}
	elem, ok := m.Types.ListInfo(children.Type)
	if !ok || elem != node {
		t.Fatalf("children should be LIST<Node>, got %s", m.TypeLabel(children.Type))
	}
}

func TestBindForwardAndCrossScriptReferences(t *testing.T) {
	f := newFixture()
	first := f.script
	f.top(
		f.structDecl("Order", f.field("customer", f.ref("Customer"))),
		f.structDecl("Customer", f.field("name", f.prim(ast.PrimString))),
	)
	second := f.newScript("orders.fl")
	f.top(f.ctxDecl("shop",
		f.structDecl("Line", f.field("order", f.ref("Order")), f.field("qty", f.prim(ast.PrimInt32))),
		f.stream("lines", f.ref("Line")),
	))
	m := f.bind(t, Options{}, first, second)
	requireNoDiagnostics(t, m.Diagnostics)

	line, ok := m.TypeOf("shop.Line")
	if !ok {
		t.Fatalf("shop.Line was not built")
	}
	info, _ := m.Types.StructInfo(line)
	order, _ := info.Field("order")
	want, _ := m.TypeOf("Order")
	if order.Type != want {
		t.Fatalf("shop.Line.order should resolve to the top-level Order, got %s", m.TypeLabel(order.Type))
	}
	stream, ok := m.TypeOf("shop.lines")
	if !ok || stream != line {
		t.Fatalf("stream record should be shop.Line")
	}
	if sym, ok := m.Lookup("shop.Line.qty"); !ok || sym.Kind != symbols.SymbolField {
		t.Fatalf("fields should be registered as symbols")
	}
}

func TestBindUnknownAndNonTypeReferences(t *testing.T) {
	f := newFixture()
	f.top(
		f.stream("events", f.ref("Event")),
		f.structDecl("Envelope",
			f.field("body", f.ref("Missing")),
			f.field("source", f.ref("events")),
		),
		f.structDecl("Event", f.field("id", f.prim(ast.PrimInt64))),
	)
	m := f.bind(t, Options{})
	requireCode(t, m.Diagnostics, diag.ResUnknownType)
	d := requireCode(t, m.Diagnostics, diag.ResNotAType)
	if len(d.Notes) == 0 {
		t.Fatalf("ResNotAType should point at the stream declaration")
	}
	env, _ := m.TypeOf("Envelope")
	info, _ := m.Types.StructInfo(env)
	body, _ := info.Field("body")
	if body.Type != m.Types.Builtins().Any {
		t.Fatalf("unresolved field should fall back to ANY, got %s", m.TypeLabel(body.Type))
	}
}

func TestBindEnumValues(t *testing.T) {
	f := newFixture()
	red := f.enumMember("RED", ast.NoExprID)
	green := f.enumMember("GREEN", f.lit(ast.LitInt32, "10"))
	blue := f.enumMember("BLUE", ast.NoExprID)
	mixed := f.enumMember("MIXED", f.infix(ast.OpAdd, f.ident("GREEN"), f.ident("BLUE")))
	f.top(f.typeDecl(ast.TypeDeclEnum, "Color", ast.NoTypeNodeID, red, green, blue, mixed))

	m := f.bind(t, Options{})
	requireNoDiagnostics(t, m.Diagnostics)
	want := map[ast.MemberID]int64{red: 0, green: 10, blue: 11, mixed: 21}
	for id, v := range want {
		got, ok := m.Bindings.EnumValue(id)
		if !ok || got != v {
			t.Fatalf("enum member %d: expected %d, got %d (ok=%v)", id, v, got, ok)
		}
	}
	color, _ := m.TypeOf("Color")
	if m.Types.KindOf(color) != types.KindEnum {
		t.Fatalf("Color should be an enum, got %s", m.TypeLabel(color))
	}
}

func TestBindEnumValueErrors(t *testing.T) {
	cases := []struct {
		name  string
		build func(f *fixture) []ast.MemberID
		code  diag.Code
	}{
		{
			name: "division by zero",
			build: func(f *fixture) []ast.MemberID {
				return []ast.MemberID{f.enumMember("A", f.infix(ast.OpDiv, f.lit(ast.LitInt32, "1"), f.lit(ast.LitInt32, "0")))}
			},
			code: diag.TypeDivisionByZero,
		},
		{
			name: "use before definition",
			build: func(f *fixture) []ast.MemberID {
				return []ast.MemberID{
					f.enumMember("A", f.ident("B")),
					f.enumMember("B", f.lit(ast.LitInt32, "1")),
				}
			},
			code: diag.TypeEnumValueNotConst,
		},
		{
			name: "not a constant",
			build: func(f *fixture) []ast.MemberID {
				return []ast.MemberID{f.enumMember("A", f.lit(ast.LitString, "one"))}
			},
			code: diag.TypeEnumValueNotConst,
		},
		{
			name: "unknown symbol",
			build: func(f *fixture) []ast.MemberID {
				return []ast.MemberID{f.enumMember("A", f.ident("NOPE"))}
			},
			code: diag.ResUnknownSymbol,
		},
		{
			name: "overflow",
			build: func(f *fixture) []ast.MemberID {
				return []ast.MemberID{f.enumMember("A", f.infix(ast.OpMul,
					f.lit(ast.LitInt64, "9223372036854775807"), f.lit(ast.LitInt32, "2")))}
			},
			code: diag.TypeValueOutOfRange,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.top(f.typeDecl(ast.TypeDeclEnum, "E", ast.NoTypeNodeID, tc.build(f)...))
			m := f.bind(t, Options{})
			requireCode(t, m.Diagnostics, tc.code)
		})
	}
}

func TestBindDerivedLoop(t *testing.T) {
	f := newFixture()
	f.top(
		f.typeDecl(ast.TypeDeclDerived, "A", f.ref("B")),
		f.typeDecl(ast.TypeDeclDerived, "B", f.ref("A")),
		f.typeDecl(ast.TypeDeclDerived, "Money", f.decimal(18, 2)),
	)
	m := f.bind(t, Options{})
	d := requireCode(t, m.Diagnostics, diag.IntTypeGraphOpen)
	if d.Kind != diag.KindInternal {
		t.Fatalf("expected internal kind, got %s", d.Kind)
	}
	n := 0
	for _, item := range m.Diagnostics.Items() {
		if item.Code == diag.IntTypeGraphOpen {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("a loop should be reported once, got %d", n)
	}
	money, _ := m.TypeOf("Money")
	if money != m.Types.Decimal(18, 2) {
		t.Fatalf("derived types are aliases, got %s", m.TypeLabel(money))
	}
}

func TestBindPrimitiveParameters(t *testing.T) {
	f := newFixture()
	f.top(f.structDecl("Bad",
		f.field("a", f.decimal(40, 2)),
		f.field("b", f.decimal(5, 6)),
		f.field("c", f.prim(ast.PrimDecimal)),
	))
	m := f.bind(t, Options{})
	if got := len(m.Diagnostics.ByKind(diag.KindType)); got != 2 {
		t.Fatalf("expected two precision errors, got %v", codes(m.Diagnostics))
	}
	requireCode(t, m.Diagnostics, diag.TypeInvalidPrecision)

	bad, _ := m.TypeOf("Bad")
	info, _ := m.Types.StructInfo(bad)
	c, _ := info.Field("c")
	if c.Type != m.Types.Decimal(defaultDecimalPrecision, defaultDecimalScale) {
		t.Fatalf("bare DECIMAL should be DECIMAL(38,10), got %s", m.TypeLabel(c.Type))
	}
}

func TestBindStreamOverNonStruct(t *testing.T) {
	f := newFixture()
	f.top(
		f.typeDecl(ast.TypeDeclEnum, "Level", ast.NoTypeNodeID, f.enumMember("LOW", ast.NoExprID)),
		f.stream("levels", f.ref("Level")),
	)
	m := f.bind(t, Options{})
	requireCode(t, m.Diagnostics, diag.TypeStreamNotStruct)
}

func TestBindStatements(t *testing.T) {
	f := newFixture()
	f.top(
		f.structDecl("Tick",
			f.field("symbol", f.prim(ast.PrimString)),
			f.field("price", f.decimal(12, 4)),
			f.field("volume", f.prim(ast.PrimInt64)),
		),
		f.stream("ticks", f.ref("Tick")),
	)
	where := f.infix(ast.OpGt, f.ident("price"), f.lit(ast.LitDecimal, "10.5"))
	readID := f.read("ticks", where, f.ident("symbol"), f.ident("volume"))
	price := f.lit(ast.LitDecimal, "1.5")
	writeID := f.write("ticks",
		f.assign("symbol", f.lit(ast.LitString, "ACME")),
		f.assign("price", price),
		f.assign("volume", f.lit(ast.LitInt32, "100")),
	)

	m := f.bind(t, Options{})
	requireNoDiagnostics(t, m.Diagnostics)
	for _, id := range []ast.StmtID{readID, writeID} {
		if _, ok := m.Bindings.StmtStream(id); !ok {
			t.Fatalf("statement %d has no stream binding", id)
		}
	}
	if got, _ := m.Bindings.ExprType(where); got != m.Types.Builtins().Bool {
		t.Fatalf("WHERE should be BOOL, got %s", m.TypeLabel(got))
	}
	val, _ := m.Bindings.Value(price)
	if formatDecimal(val.Dec) != "1.5000" {
		t.Fatalf("written decimal should be rescaled to the field, got %s", formatDecimal(val.Dec))
	}
}

func TestBindStatementErrors(t *testing.T) {
	f := newFixture()
	f.top(
		f.structDecl("Tick", f.field("symbol", f.prim(ast.PrimString)), f.field("qty", f.prim(ast.PrimInt8))),
		f.stream("ticks", f.ref("Tick")),
	)
	f.read("nowhere", ast.NoExprID, f.ident("symbol"))
	f.read("Tick", ast.NoExprID)
	f.read("ticks", f.ident("qty"))
	f.write("ticks",
		f.assign("symbol", f.lit(ast.LitString, "A")),
		f.assign("SYMBOL", f.lit(ast.LitString, "B")),
		f.assign("price", f.lit(ast.LitInt32, "1")),
		f.assign("qty", f.lit(ast.LitInt32, "1000")),
	)

	m := f.bind(t, Options{})
	for _, code := range []diag.Code{
		diag.ResUnknownStream,
		diag.ResNotAStream,
		diag.SemaNotBoolean,
		diag.ResDuplicateMember,
		diag.SemaUnknownField,
		diag.TypeValueOutOfRange,
	} {
		requireCode(t, m.Diagnostics, code)
	}
}

func TestBindDefaultsAndChecks(t *testing.T) {
	f := newFixture()
	qty := f.field("qty", f.prim(ast.PrimInt16))
	f.b.Decls.AttachMember(qty,
		f.b.Fragments.NewExpr(ast.FragDefault, f.sp(), f.lit(ast.LitInt32, "70000")),
		f.b.Fragments.NewExpr(ast.FragCheck, f.sp(), f.infix(ast.OpGe, f.ident("qty"), f.lit(ast.LitInt32, "0"))),
	)
	order := f.structDecl("Order", qty)
	f.b.Decls.Attach(order, f.b.Fragments.NewExpr(ast.FragConstraint, f.sp(), f.ident("qty")))

	pct := f.typeDecl(ast.TypeDeclScalar, "Percent", f.prim(ast.PrimFloat64))
	f.b.Decls.Attach(pct, f.b.Fragments.NewExpr(ast.FragCheck, f.sp(),
		f.b.Exprs.NewTernary(f.sp(), ast.OpBetween, f.ident("value"), f.lit(ast.LitInt32, "0"), f.lit(ast.LitInt32, "100"))))
	f.top(order, pct)

	m := f.bind(t, Options{})
	requireCode(t, m.Diagnostics, diag.TypeValueOutOfRange)
	requireCode(t, m.Diagnostics, diag.SemaNotBoolean)
	if m.Diagnostics.Len() != 2 {
		t.Fatalf("expected exactly two diagnostics, got %v", codes(m.Diagnostics))
	}
}

func TestBindStopOnErrorIgnoresWarnings(t *testing.T) {
	f := newFixture()
	f.top(f.structDecl("Ok", f.field("a", f.prim(ast.PrimBool))))
	bag := diag.NewBag(0)
	bag.Add(diag.Diagnostic{Severity: diag.SevWarning, Code: diag.UnknownCode, Message: "heads up"})
	m := f.bind(t, Options{Bag: bag})
	if m.Diagnostics != bag {
		t.Fatalf("Bind should write into the supplied bag")
	}
	if m.StopOnError() {
		t.Fatalf("warnings alone must not stop the pipeline")
	}
}

func TestBindEnumConstantInStatement(t *testing.T) {
	f := newFixture()
	f.top(
		f.typeDecl(ast.TypeDeclEnum, "Side", ast.NoTypeNodeID,
			f.enumMember("BUY", ast.NoExprID), f.enumMember("SELL", ast.NoExprID)),
		f.structDecl("Fill", f.field("side", f.ref("Side"))),
		f.stream("fills", f.ref("Fill")),
	)
	cond := f.infix(ast.OpEq, f.ident("side"), f.member(f.ident("Side"), "SELL"))
	f.read("fills", cond)
	m := f.bind(t, Options{})
	requireNoDiagnostics(t, m.Diagnostics)
	if got, _ := m.Bindings.ExprType(cond); got != m.Types.Builtins().Bool {
		t.Fatalf("expected BOOL, got %s", m.TypeLabel(got))
	}
}
