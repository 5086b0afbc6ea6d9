package sema

import (
	"math/big"

	"github.com/cockroachdb/apd/v3"

	"flume/internal/ast"
	"flume/internal/diag"
	"flume/internal/types"
)

func (v *Validator) inferPrefix(id ast.ExprID, expr *ast.Expr, env Env) types.TypeID {
	p, _ := v.b.Exprs.Prefix(id)
	switch p.Op {
	case ast.OpNot:
		if !v.condition(p.Operand, env) {
			return v.fail(id)
		}
		return v.types.Builtins().Bool
	case ast.OpNeg, ast.OpPlus:
		t, ok := v.inferChecked(p.Operand, env)
		if !ok {
			return v.fail(id)
		}
		k := v.kind(t)
		if k == types.KindAny {
			return t
		}
		if !k.IsNumeric() {
			v.report(diag.SemaInvalidOperand, expr.Span, "operator %s needs a numeric operand, got %s", p.Op, v.label(t))
			return v.anyType()
		}
		if val, ok := v.bindings.Value(p.Operand); ok && v.isConstExpr(p.Operand) {
			if p.Op == ast.OpNeg {
				val = negate(val)
			}
			v.bindings.setValue(id, val)
		}
		return t
	}
	v.report(diag.SemaInvalidOperand, expr.Span, "%s is not a prefix operator", p.Op)
	return v.fail(id)
}

func (v *Validator) inferInfix(id ast.ExprID, expr *ast.Expr, env Env) types.TypeID {
	in, _ := v.b.Exprs.Infix(id)
	boolType := v.types.Builtins().Bool
	switch {
	case in.Op.IsLogical():
		if !v.condition(in.Left, env) || !v.condition(in.Right, env) {
			return v.fail(id)
		}
		return boolType
	case in.Op.IsArithmetic(), in.Op.IsBitwise():
		ts, ok := v.operands(env, in.Left, in.Right)
		if !ok {
			return v.fail(id)
		}
		return v.arithResult(id, in, ts[0], ts[1])
	case in.Op.IsComparison():
		ts, ok := v.operands(env, in.Left, in.Right)
		if !ok {
			return v.fail(id)
		}
		lt, rt := ts[0], ts[1]
		if in.Op.IsOrdering() {
			if _, ok := v.types.CommonOrderable(lt, rt); !ok {
				v.report(diag.TypeNotComparable, expr.Span, "cannot order %s against %s", v.label(lt), v.label(rt))
			}
		} else if !v.types.Comparable(lt, rt) {
			v.report(diag.TypeNotComparable, expr.Span, "cannot compare %s with %s", v.label(lt), v.label(rt))
		}
		return boolType
	case in.Op == ast.OpLike:
		ts, ok := v.operands(env, in.Left, in.Right)
		if !ok {
			return v.fail(id)
		}
		lt, rt := ts[0], ts[1]
		if !stringish(v.kind(lt)) || !stringish(v.kind(rt)) {
			v.report(diag.SemaInvalidOperand, expr.Span, "LIKE needs string operands, got %s and %s", v.label(lt), v.label(rt))
		}
		return boolType
	case in.Op == ast.OpIn:
		if !v.checkIn(in, env) {
			return v.fail(id)
		}
		return boolType
	}
	v.report(diag.SemaInvalidOperand, expr.Span, "%s is not an infix operator", in.Op)
	return v.fail(id)
}

// arithResult types an arithmetic, bitwise or shift operation whose
// operands have already been typed.
func (v *Validator) arithResult(id ast.ExprID, in *ast.ExprInfixData, lt, rt types.TypeID) types.TypeID {
	span := v.span(id)
	lk, rk := v.kind(lt), v.kind(rt)
	switch {
	case lk == types.KindAny || rk == types.KindAny:
		return v.anyType()
	case in.Op == ast.OpAdd && (lk == types.KindString || rk == types.KindString):
		if stringish(lk) && stringish(rk) {
			return v.types.Builtins().String
		}
		v.report(diag.TypeInvalidOperands, span, "cannot concatenate %s and %s", v.label(lt), v.label(rt))
		return v.anyType()
	case in.Op.IsBitwise():
		if !integerish(lk) || !integerish(rk) {
			v.report(diag.SemaInvalidOperand, span, "operator %s needs integer operands, got %s and %s", in.Op, v.label(lt), v.label(rt))
			return v.anyType()
		}
		if in.Op == ast.OpShl || in.Op == ast.OpShr {
			return v.types.Underlying(lt)
		}
	case !numericish(lk) || !numericish(rk):
		v.report(diag.SemaInvalidOperand, span, "operator %s needs numeric operands, got %s and %s", in.Op, v.label(lt), v.label(rt))
		return v.anyType()
	}
	if (in.Op == ast.OpDiv || in.Op == ast.OpMod) && v.isZeroConst(in.Right) {
		v.report(diag.TypeDivisionByZero, span, "division by zero")
	}
	res, ok := v.types.Widen(v.types.Underlying(lt), v.types.Underlying(rt))
	if !ok {
		v.report(diag.TypeInvalidOperands, span, "incompatible operand types %s and %s", v.label(lt), v.label(rt))
		return v.anyType()
	}
	return res
}

// alignArith types an arithmetic expression against a numeric target:
// constant operands that fit the target are narrowed to it first so that
// 1 + 2 stays INT8 when an INT8 is expected. ok is false when an operand
// holds a structural error; the other operand is then not visited.
func (v *Validator) alignArith(id ast.ExprID, in *ast.ExprInfixData, target types.TypeID, env Env) (types.TypeID, bool) {
	operand := func(op ast.ExprID) (types.TypeID, bool) {
		if v.isConstExpr(op) {
			natural, ok := v.inferChecked(op, env)
			if !ok {
				return natural, false
			}
			if val, ok := v.bindings.Value(op); ok && v.constFits(val, natural, target) {
				return v.alignConst(op, val, natural, target), true
			}
			return natural, true
		}
		if o, ok := v.b.Exprs.Infix(op); ok && (o.Op.IsArithmetic() || o.Op.IsBitwise()) {
			t, ok := v.alignArith(op, o, target, env)
			v.bindings.setExprType(op, t)
			return t, ok
		}
		return v.inferChecked(op, env)
	}
	lt, ok := operand(in.Left)
	if !ok {
		return v.anyType(), false
	}
	rt, ok := operand(in.Right)
	if !ok {
		return v.anyType(), false
	}
	res := v.arithResult(id, in, lt, rt)
	if v.kind(res) == types.KindAny {
		return res, true
	}
	if !v.types.Assignable(res, target) {
		v.report(diag.TypeMismatch, v.span(id), "cannot use %s as %s", v.label(res), v.label(target))
		return res, true
	}
	return target, true
}

// checkIn requires the right side of IN to be a list or a map whose
// element (key) type accepts the left side. It returns false when an
// operand holds a structural error.
func (v *Validator) checkIn(in *ast.ExprInfixData, env Env) bool {
	ts, ok := v.operands(env, in.Left, in.Right)
	if !ok {
		return false
	}
	lt, rt := ts[0], ts[1]
	switch ru := v.types.Underlying(rt); v.types.KindOf(ru) {
	case types.KindAny:
	case types.KindList:
		elem, _ := v.types.ListInfo(ru)
		if !v.compatible(in.Left, lt, elem, env) {
			v.report(diag.TypeMismatch, v.span(in.Left), "%s is not compatible with list element type %s", v.label(lt), v.label(elem))
		}
	case types.KindMap:
		key, _, _ := v.types.MapInfo(ru)
		if !v.compatible(in.Left, lt, key, env) {
			v.report(diag.TypeMismatch, v.span(in.Left), "%s is not compatible with map key type %s", v.label(lt), v.label(key))
		}
	default:
		v.report(diag.SemaNotACollection, v.span(in.Right), "right side of IN must be a list or map, got %s", v.label(rt))
	}
	return true
}

// inferBetween types `value BETWEEN low AND high`. The bounds need a
// common orderable type; under BetweenStrict the value must also order
// against it.
func (v *Validator) inferBetween(id ast.ExprID, expr *ast.Expr, env Env) types.TypeID {
	boolType := v.types.Builtins().Bool
	tr, _ := v.b.Exprs.Ternary(id)
	if tr.Op != ast.OpBetween {
		v.report(diag.SemaInvalidOperand, expr.Span, "%s is not a ternary operator", tr.Op)
		return v.fail(id)
	}
	ts, ok := v.operands(env, tr.Value, tr.Low, tr.High)
	if !ok {
		return v.fail(id)
	}
	vt, lo, hi := ts[0], ts[1], ts[2]
	common, ok := v.types.CommonOrderable(lo, hi)
	if !ok {
		v.report(diag.TypeNotComparable, expr.Span,
			"BETWEEN bounds %s and %s have no common orderable type", v.label(lo), v.label(hi))
		return boolType
	}
	if v.between == BetweenStrict {
		if _, ok := v.types.CommonOrderable(vt, common); !ok {
			v.report(diag.TypeNotComparable, v.span(tr.Value),
				"cannot test %s BETWEEN bounds of type %s", v.label(vt), v.label(common))
		}
	}
	return boolType
}

// compatible reports whether an expression of type t can stand where
// target is expected; constants are checked by value.
func (v *Validator) compatible(expr ast.ExprID, t, target types.TypeID, env Env) bool {
	if v.kind(t) == types.KindAny || v.kind(target) == types.KindAny {
		return true
	}
	if v.isConstExpr(expr) {
		if val, ok := v.bindings.Value(expr); ok {
			if !v.constFits(val, t, target) {
				return false
			}
			v.Align(expr, target, env)
			return true
		}
	}
	return v.types.Assignable(t, target) || v.types.Assignable(target, t)
}

// alignable is the one-way form of compatible used for map keys.
func (v *Validator) alignable(expr ast.ExprID, t, target types.TypeID, env Env) bool {
	if v.kind(t) == types.KindAny || v.kind(target) == types.KindAny {
		return true
	}
	if v.isConstExpr(expr) {
		if val, ok := v.bindings.Value(expr); ok {
			if !v.constFits(val, t, target) {
				return false
			}
			v.Align(expr, target, env)
			return true
		}
	}
	return v.types.Assignable(t, target)
}

func (v *Validator) isZeroConst(id ast.ExprID) bool {
	if !v.isConstExpr(id) {
		return false
	}
	val, ok := v.bindings.Value(id)
	if !ok {
		return false
	}
	switch val.Kind {
	case ValInt:
		return val.Int.Sign() == 0
	case ValFloat:
		return val.Float == 0
	case ValDecimal:
		return val.Dec == nil || val.Dec.IsZero()
	}
	return false
}

func negate(val Value) Value {
	switch val.Kind {
	case ValInt:
		val.Int = new(big.Int).Neg(val.Int)
	case ValFloat:
		val.Float = -val.Float
		if rest, ok := cutSign(val.Str); ok {
			val.Str = rest
		} else if val.Str != "" {
			val.Str = "-" + val.Str
		}
	case ValDecimal:
		if val.Dec != nil {
			val.Dec = new(apd.Decimal).Neg(val.Dec)
		}
	}
	return val
}

func cutSign(s string) (string, bool) {
	if len(s) > 0 && s[0] == '-' {
		return s[1:], true
	}
	return s, false
}

func stringish(k types.Kind) bool {
	return k == types.KindString || k == types.KindNull || k == types.KindAny
}

func integerish(k types.Kind) bool {
	return k.IsInteger() || k == types.KindNull
}

func numericish(k types.Kind) bool {
	return k.IsNumeric() || k == types.KindNull
}
