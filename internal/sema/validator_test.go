package sema

import (
	"testing"

	"flume/internal/ast"
	"flume/internal/diag"
	"flume/internal/types"
)

func TestAlignIntegerLiteralNarrowing(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		negate  bool
		wantErr bool
	}{
		{name: "max fits", text: "127"},
		{name: "one past max", text: "128", wantErr: true},
		{name: "min fits", text: "128", negate: true},
		{name: "one past min", text: "129", negate: true, wantErr: true},
		{name: "zero", text: "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			bag := diag.NewBag(0)
			v, in := f.validator(bag)
			expr := f.lit(ast.LitInt32, tc.text)
			if tc.negate {
				expr = f.b.Exprs.NewPrefix(f.sp(), ast.OpNeg, expr)
			}
			got := v.Align(expr, in.Builtins().Int8, NewEnv())
			if tc.wantErr {
				d := requireCode(t, bag, diag.TypeValueOutOfRange)
				if d.Kind != diag.KindType {
					t.Fatalf("out of range must be a Type diagnostic, got %s", d.Kind)
				}
				if got != in.Builtins().Int32 {
					t.Fatalf("failed alignment should keep the literal type, got %s", types.Label(in, got))
				}
				return
			}
			requireNoDiagnostics(t, bag)
			if got != in.Builtins().Int8 {
				t.Fatalf("expected INT8, got %s", types.Label(in, got))
			}
			if et, _ := v.Bindings().ExprType(expr); et != in.Builtins().Int8 {
				t.Fatalf("literal should be re-typed to INT8, got %s", types.Label(in, et))
			}
		})
	}
}

func TestAlignFloatToDecimalRescales(t *testing.T) {
	f := newFixture()
	bag := diag.NewBag(0)
	v, in := f.validator(bag)
	expr := f.lit(ast.LitFloat64, "100.0")
	target := in.Decimal(18, 2)

	if got := v.Align(expr, target, NewEnv()); got != target {
		t.Fatalf("expected DECIMAL(18,2), got %s", types.Label(in, got))
	}
	requireNoDiagnostics(t, bag)
	val, ok := v.Bindings().Value(expr)
	if !ok || val.Kind != ValDecimal {
		t.Fatalf("expected a decimal value, got %+v", val)
	}
	if decimalScale(val.Dec) != 2 {
		t.Fatalf("expected scale 2, got %d", decimalScale(val.Dec))
	}
	if formatDecimal(val.Dec) != "100.00" {
		t.Fatalf("expected 100.00, got %s", formatDecimal(val.Dec))
	}
}

func TestAlignDecimalOverflow(t *testing.T) {
	f := newFixture()
	bag := diag.NewBag(0)
	v, in := f.validator(bag)
	expr := f.lit(ast.LitDecimal, "1234.567")

	v.Align(expr, in.Decimal(5, 2), NewEnv())
	d := requireCode(t, bag, diag.TypeDecimalOverflow)
	if d.Severity != diag.SevError {
		t.Fatalf("expected error severity, got %s", d.Severity)
	}
}

func TestAlignDecimalRounding(t *testing.T) {
	cases := []struct {
		text string
		p, s uint8
		want string
	}{
		{"1.005", 5, 2, "1.01"},
		{"-1.005", 5, 2, "-1.01"},
		{"2.5", 3, 0, "3"},
		{"0.004", 3, 2, "0.00"},
		{"42", 6, 3, "42.000"},
	}
	for _, tc := range cases {
		f := newFixture()
		bag := diag.NewBag(0)
		v, in := f.validator(bag)
		expr := f.lit(ast.LitDecimal, tc.text)
		v.Align(expr, in.Decimal(tc.p, tc.s), NewEnv())
		requireNoDiagnostics(t, bag)
		val, _ := v.Bindings().Value(expr)
		if formatDecimal(val.Dec) != tc.want {
			t.Fatalf("%s as DECIMAL(%d,%d): expected %s, got %s", tc.text, tc.p, tc.s, tc.want, formatDecimal(val.Dec))
		}
	}
}

func TestAlignWithoutTargetIsInfer(t *testing.T) {
	f := newFixture()
	bag := diag.NewBag(0)
	v, in := f.validator(bag)
	expr := f.lit(ast.LitInt32, "128")
	if got := v.Align(expr, types.NoTypeID, NewEnv()); got != in.Builtins().Int32 {
		t.Fatalf("expected natural INT32, got %s", types.Label(in, got))
	}
	requireNoDiagnostics(t, bag)
}

func TestMemberAccessErrors(t *testing.T) {
	f := newFixture()
	bag := diag.NewBag(0)
	v, in := f.validator(bag)
	rec := in.RegisterStruct("Rec", ast.NoDeclID)
	in.SetStructFields(rec, []types.Field{{Name: "other", Type: in.Builtins().String}})
	env := NewEnv().With("rec", rec).With("n", in.Builtins().Int32)

	if got := v.Infer(f.member(f.ident("rec"), "other"), env); got != in.Builtins().String {
		t.Fatalf("expected STRING, got %s", types.Label(in, got))
	}
	requireNoDiagnostics(t, bag)

	if got := v.Infer(f.member(f.ident("rec"), "payload"), env); got != in.Builtins().Any {
		t.Fatalf("unknown field should fall back to ANY, got %s", types.Label(in, got))
	}
	if d := requireCode(t, bag, diag.SemaUnknownField); d.Kind != diag.KindSemantic {
		t.Fatalf("expected Semantic kind, got %s", d.Kind)
	}

	v.Infer(f.member(f.ident("n"), "payload"), env)
	if d := requireCode(t, bag, diag.SemaNotAStruct); d.Kind != diag.KindSemantic {
		t.Fatalf("expected Semantic kind, got %s", d.Kind)
	}
}

func TestMapIndex(t *testing.T) {
	f := newFixture()
	bag := diag.NewBag(0)
	v, in := f.validator(bag)
	m := in.Map(in.Builtins().String, in.Builtins().Bool)
	env := NewEnv().
		With("m", m).
		With("s", in.Builtins().String).
		With("i", in.Builtins().Int32)

	got := v.Infer(f.b.Exprs.NewIndex(f.sp(), f.ident("m"), f.ident("s")), env)
	if got != in.Builtins().Bool {
		t.Fatalf("expected BOOL, got %s", types.Label(in, got))
	}
	v.Infer(f.b.Exprs.NewIndex(f.sp(), f.ident("m"), f.lit(ast.LitString, "k")), env)
	requireNoDiagnostics(t, bag)

	v.Infer(f.b.Exprs.NewIndex(f.sp(), f.ident("m"), f.ident("i")), env)
	if !bag.HasErrors() {
		t.Fatalf("INT32 key into MAP<STRING, BOOL> must fail")
	}
	requireCode(t, bag, diag.SemaInvalidIndex)
}

func TestListIndex(t *testing.T) {
	f := newFixture()
	bag := diag.NewBag(0)
	v, in := f.validator(bag)
	env := NewEnv().With("xs", in.List(in.Builtins().Float64)).With("s", in.Builtins().String)

	if got := v.Infer(f.b.Exprs.NewIndex(f.sp(), f.ident("xs"), f.lit(ast.LitInt32, "0")), env); got != in.Builtins().Float64 {
		t.Fatalf("expected DOUBLE, got %s", types.Label(in, got))
	}
	requireNoDiagnostics(t, bag)
	v.Infer(f.b.Exprs.NewIndex(f.sp(), f.ident("xs"), f.ident("s")), env)
	requireCode(t, bag, diag.SemaInvalidIndex)
	v.Infer(f.b.Exprs.NewIndex(f.sp(), f.ident("s"), f.lit(ast.LitInt32, "0")), env)
	requireCode(t, bag, diag.SemaNotIndexable)
}

func TestInferIsIdempotent(t *testing.T) {
	f := newFixture()
	bag := diag.NewBag(0)
	v, in := f.validator(bag)
	env := NewEnv().With("a", in.Builtins().Int16)
	expr := f.infix(ast.OpAdd, f.ident("a"), f.ident("missing"))

	first := v.Infer(expr, env)
	n := bag.Len()
	if n == 0 {
		t.Fatalf("expected an unknown identifier diagnostic")
	}
	second := v.Infer(expr, env)
	if first != second {
		t.Fatalf("Infer changed its answer: %s then %s", types.Label(in, first), types.Label(in, second))
	}
	// Align re-traverses the subtree; the dedup reporter keeps one copy.
	v.Align(expr, in.Builtins().Int64, env)
	if bag.Len() != n {
		t.Fatalf("re-validation duplicated diagnostics: %d -> %d", n, bag.Len())
	}
}

func TestUnknownIdentifier(t *testing.T) {
	f := newFixture()
	bag := diag.NewBag(0)
	v, in := f.validator(bag)
	if got := v.Infer(f.ident("nope"), NewEnv()); got != in.Builtins().Any {
		t.Fatalf("expected ANY fallback, got %s", types.Label(in, got))
	}
	d := requireCode(t, bag, diag.SemaUnknownIdentifier)
	if d.Kind != diag.KindSemantic {
		t.Fatalf("expected Semantic kind, got %s", d.Kind)
	}
}

func TestArithmeticWidening(t *testing.T) {
	f := newFixture()
	bag := diag.NewBag(0)
	v, in := f.validator(bag)
	bt := in.Builtins()
	env := NewEnv().
		With("i8", bt.Int8).
		With("i32", bt.Int32).
		With("f", bt.Float32).
		With("d", in.Decimal(10, 2)).
		With("s", bt.String).
		With("b", bt.Bool)

	cases := []struct {
		op   ast.Op
		l, r string
		want types.TypeID
	}{
		{ast.OpAdd, "i8", "i32", bt.Int32},
		{ast.OpMul, "i8", "f", bt.Float32},
		{ast.OpSub, "i32", "f", bt.Float64},
		{ast.OpAdd, "i8", "d", in.Decimal(10, 2)},
		{ast.OpAdd, "s", "s", bt.String},
		{ast.OpBitAnd, "i8", "i32", bt.Int32},
	}
	for _, tc := range cases {
		got := v.Infer(f.infix(tc.op, f.ident(tc.l), f.ident(tc.r)), env)
		if got != tc.want {
			t.Fatalf("%s %s %s: expected %s, got %s", tc.l, tc.op, tc.r, types.Label(in, tc.want), types.Label(in, got))
		}
	}
	requireNoDiagnostics(t, bag)

	v.Infer(f.infix(ast.OpMul, f.ident("b"), f.ident("i8")), env)
	requireCode(t, bag, diag.SemaInvalidOperand)
	v.Infer(f.infix(ast.OpShl, f.ident("f"), f.ident("i8")), env)
	if len(bag.ByKind(diag.KindSemantic)) != 2 {
		t.Fatalf("expected two semantic errors, got %v", codes(bag))
	}
}

func TestAlignArithmeticNarrowsLiterals(t *testing.T) {
	f := newFixture()
	bag := diag.NewBag(0)
	v, in := f.validator(bag)
	expr := f.infix(ast.OpAdd, f.lit(ast.LitInt32, "1"), f.lit(ast.LitInt32, "2"))
	if got := v.Align(expr, in.Builtins().Int8, NewEnv()); got != in.Builtins().Int8 {
		t.Fatalf("expected INT8, got %s", types.Label(in, got))
	}
	requireNoDiagnostics(t, bag)

	wide := f.infix(ast.OpAdd, f.ident("x"), f.lit(ast.LitInt32, "1"))
	v.Align(wide, in.Builtins().Int8, NewEnv().With("x", in.Builtins().Int64))
	requireCode(t, bag, diag.TypeMismatch)
}

func TestLogicalAndComparison(t *testing.T) {
	f := newFixture()
	bag := diag.NewBag(0)
	v, in := f.validator(bag)
	bt := in.Builtins()
	env := NewEnv().With("n", bt.Int32).With("s", bt.String).With("ok", bt.Bool)

	cond := f.infix(ast.OpAnd,
		f.infix(ast.OpGt, f.ident("n"), f.lit(ast.LitInt32, "3")),
		f.b.Exprs.NewPrefix(f.sp(), ast.OpNot, f.ident("ok")))
	if got := v.Condition(cond, env); got != bt.Bool {
		t.Fatalf("expected BOOL, got %s", types.Label(in, got))
	}
	v.Infer(f.b.Exprs.NewPostfix(f.sp(), ast.OpIsNull, f.ident("s")), env)
	v.Infer(f.infix(ast.OpLike, f.ident("s"), f.lit(ast.LitString, "a%")), env)
	requireNoDiagnostics(t, bag)

	v.Infer(f.b.Exprs.NewPrefix(f.sp(), ast.OpNot, f.ident("n")), env)
	requireCode(t, bag, diag.SemaNotBoolean)
	v.Infer(f.infix(ast.OpLt, f.ident("n"), f.ident("s")), env)
	requireCode(t, bag, diag.TypeNotComparable)
}

func TestInOperator(t *testing.T) {
	f := newFixture()
	bag := diag.NewBag(0)
	v, in := f.validator(bag)
	bt := in.Builtins()
	env := NewEnv().
		With("n", bt.Int16).
		With("xs", in.List(bt.Int32)).
		With("tags", in.Map(bt.String, bt.Bool)).
		With("s", bt.String)

	v.Infer(f.infix(ast.OpIn, f.ident("n"), f.ident("xs")), env)
	v.Infer(f.infix(ast.OpIn, f.lit(ast.LitString, "red"), f.ident("tags")), env)
	requireNoDiagnostics(t, bag)

	v.Infer(f.infix(ast.OpIn, f.ident("s"), f.ident("xs")), env)
	requireCode(t, bag, diag.TypeMismatch)
	v.Infer(f.infix(ast.OpIn, f.ident("n"), f.ident("s")), env)
	if d := requireCode(t, bag, diag.SemaNotACollection); d.Kind != diag.KindSemantic {
		t.Fatalf("expected Semantic kind, got %s", d.Kind)
	}
}

func TestBetweenPolicies(t *testing.T) {
	build := func(f *fixture, value string) ast.ExprID {
		return f.b.Exprs.NewTernary(f.sp(), ast.OpBetween,
			f.ident(value), f.lit(ast.LitInt32, "1"), f.lit(ast.LitInt64, "10"))
	}
	for _, tc := range []struct {
		policy  BetweenPolicy
		value   string
		wantErr bool
	}{
		{BetweenStrict, "n", false},
		{BetweenStrict, "s", true},
		{BetweenBoundsOnly, "s", false},
	} {
		f := newFixture()
		bag := diag.NewBag(0)
		v, in := f.validator(bag, WithBetweenPolicy(tc.policy))
		env := NewEnv().With("n", in.Builtins().Int8).With("s", in.Builtins().String)
		v.Infer(build(f, tc.value), env)
		if bag.HasErrors() != tc.wantErr {
			t.Fatalf("%s with %s: expected error=%v, got %v", tc.value, tc.policy, tc.wantErr, codes(bag))
		}
	}

	f := newFixture()
	bag := diag.NewBag(0)
	v, in := f.validator(bag, WithBetweenPolicy(BetweenBoundsOnly))
	mixed := f.b.Exprs.NewTernary(f.sp(), ast.OpBetween,
		f.ident("n"), f.lit(ast.LitInt32, "1"), f.lit(ast.LitString, "z"))
	v.Infer(mixed, NewEnv().With("n", in.Builtins().Int32))
	requireCode(t, bag, diag.TypeNotComparable)
}

func TestAlignStringAndTemporalLiterals(t *testing.T) {
	f := newFixture()
	bag := diag.NewBag(0)
	v, in := f.validator(bag)
	env := NewEnv()

	v.Align(f.lit(ast.LitString, "abc"), in.String(3), env)
	v.Align(f.lit(ast.LitString, "2024-02-29"), in.Builtins().Date, env)
	v.Align(f.lit(ast.LitString, "2024-02-29T10:00:00Z"), in.Builtins().Timestamp, env)
	v.Align(f.lit(ast.LitNull, "NULL"), in.Builtins().Int8, env)
	requireNoDiagnostics(t, bag)

	v.Align(f.lit(ast.LitString, "abcd"), in.String(3), env)
	requireCode(t, bag, diag.TypeValueOutOfRange)
	v.Align(f.lit(ast.LitString, "yesterday"), in.Builtins().Date, env)
	requireCode(t, bag, diag.TypeInvalidLiteral)
	v.Align(f.lit(ast.LitDecimal, "1.5"), in.Builtins().Int32, env)
	requireCode(t, bag, diag.TypeMismatch)
}

func TestStructuralErrorStopsExpression(t *testing.T) {
	cases := []struct {
		name  string
		build func(f *fixture) ast.ExprID
		want  diag.Code
	}{
		{"and", func(f *fixture) ast.ExprID {
			return f.infix(ast.OpAnd, f.ident("missing1"), f.ident("missing2"))
		}, diag.SemaUnknownIdentifier},
		{"add", func(f *fixture) ast.ExprID {
			return f.infix(ast.OpAdd, f.ident("missing1"), f.ident("missing2"))
		}, diag.SemaUnknownIdentifier},
		{"nested", func(f *fixture) ast.ExprID {
			left := f.infix(ast.OpGt, f.member(f.ident("n"), "x"), f.lit(ast.LitInt32, "1"))
			return f.infix(ast.OpOr, left, f.ident("missing2"))
		}, diag.SemaNotAStruct},
		{"not", func(f *fixture) ast.ExprID {
			return f.b.Exprs.NewPrefix(f.sp(), ast.OpNot, f.member(f.ident("rec"), "nope"))
		}, diag.SemaUnknownField},
		{"between", func(f *fixture) ast.ExprID {
			return f.b.Exprs.NewTernary(f.sp(), ast.OpBetween, f.ident("missing1"), f.ident("missing2"), f.ident("missing3"))
		}, diag.SemaUnknownIdentifier},
		{"index target", func(f *fixture) ast.ExprID {
			ix := f.b.Exprs.NewIndex(f.sp(), f.ident("n"), f.ident("missing2"))
			return f.infix(ast.OpEq, ix, f.ident("missing3"))
		}, diag.SemaNotIndexable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			bag := diag.NewBag(0)
			v, in := f.validator(bag)
			rec := in.RegisterStruct("Rec", ast.NoDeclID)
			in.SetStructFields(rec, []types.Field{{Name: "x", Type: in.Builtins().Int32}})
			env := NewEnv().With("n", in.Builtins().Int32).With("rec", rec)

			v.Condition(tc.build(f), env)
			if bag.Len() != 1 {
				t.Fatalf("expected exactly one diagnostic, got %v", codes(bag))
			}
			requireCode(t, bag, tc.want)
		})
	}
}

func TestInferFollowsEnvironment(t *testing.T) {
	f := newFixture()
	bag := diag.NewBag(0)
	v, in := f.validator(bag)
	bt := in.Builtins()
	narrow := NewEnv().With("x", bt.Int8)
	text := NewEnv().With("x", bt.String)
	expr := f.ident("x")

	if got := v.Infer(expr, narrow); got != bt.Int8 {
		t.Fatalf("expected INT8, got %s", types.Label(in, got))
	}
	if got := v.Infer(expr, text); got != bt.String {
		t.Fatalf("expected STRING under the second environment, got %s", types.Label(in, got))
	}
	if got := v.Infer(expr, narrow); got != bt.Int8 {
		t.Fatalf("expected INT8 again, got %s", types.Label(in, got))
	}
	requireNoDiagnostics(t, bag)

	late := f.ident("y")
	v.Infer(late, NewEnv())
	requireCode(t, bag, diag.SemaUnknownIdentifier)
	if got := v.Infer(late, NewEnv().With("y", bt.Bool)); got != bt.Bool {
		t.Fatalf("expected BOOL once y is bound, got %s", types.Label(in, got))
	}
	if bag.Len() != 1 {
		t.Fatalf("expected the single earlier diagnostic, got %v", codes(bag))
	}
}

func TestAlignRecordsReturnedType(t *testing.T) {
	f := newFixture()
	bag := diag.NewBag(0)
	v, in := f.validator(bag)
	bt := in.Builtins()

	sum := f.infix(ast.OpAdd, f.lit(ast.LitInt32, "1"), f.lit(ast.LitInt32, "2"))
	wide := f.infix(ast.OpAdd, f.ident("x"), f.lit(ast.LitInt32, "1"))
	large := f.lit(ast.LitInt32, "300")
	env := NewEnv().With("x", bt.Int64)
	for _, expr := range []ast.ExprID{sum, wide, large} {
		got := v.Align(expr, bt.Int8, env)
		if et, ok := v.Bindings().ExprType(expr); !ok || et != got {
			t.Fatalf("Align returned %s but recorded %s", types.Label(in, got), types.Label(in, et))
		}
	}
	if et, _ := v.Bindings().ExprType(sum); et != bt.Int8 {
		t.Fatalf("expected INT8 for 1 + 2, got %s", types.Label(in, et))
	}
	if et, _ := v.Bindings().ExprType(wide); et != bt.Int64 {
		t.Fatalf("expected INT64 for x + 1, got %s", types.Label(in, et))
	}
}
