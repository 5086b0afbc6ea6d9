package sema

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"

	"flume/internal/ast"
	"flume/internal/diag"
	"flume/internal/types"
)

// Accepted spellings for DATE and TIMESTAMP string constants.
var (
	dateLayouts      = []string{time.DateOnly}
	timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateTime, "2006-01-02 15:04:05.999999999", time.DateOnly}
)

// inferLiteral parses the literal text, records its value and returns the
// type the parser assigned it.
func (v *Validator) inferLiteral(id ast.ExprID, expr *ast.Expr) types.TypeID {
	lit, _ := v.b.Exprs.Literal(id)
	text := v.b.Str(lit.Value)
	bt := v.types.Builtins()
	switch {
	case lit.Kind == ast.LitNull:
		v.bindings.setValue(id, Value{Kind: ValNull})
		return bt.Null
	case lit.Kind == ast.LitBool:
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(text)))
		if err != nil {
			v.report(diag.TypeInvalidLiteral, expr.Span, "malformed boolean literal %q", text)
			return v.anyType()
		}
		v.bindings.setValue(id, Value{Kind: ValBool, Bool: b})
		return bt.Bool
	case lit.Kind.IsInteger():
		n, ok := parseInteger(text)
		if !ok {
			v.report(diag.TypeInvalidLiteral, expr.Span, "malformed integer literal %q", text)
			return v.anyType()
		}
		v.bindings.setValue(id, Value{Kind: ValInt, Int: n})
		t := litType(bt, lit.Kind)
		if k := v.types.KindOf(t); !fitsInt(n, k) {
			lo, hi, _ := types.IntRange(k)
			v.report(diag.TypeValueOutOfRange, expr.Span, "value %s out of range for %s [%d, %d]", n, v.label(t), lo, hi)
		}
		return t
	case lit.Kind == ast.LitFloat32, lit.Kind == ast.LitFloat64:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(text), "_", ""), 64)
		t := litType(bt, lit.Kind)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				v.report(diag.TypeValueOutOfRange, expr.Span, "value %s out of range for %s", text, v.label(t))
			} else {
				v.report(diag.TypeInvalidLiteral, expr.Span, "malformed floating point literal %q", text)
			}
			return v.anyType()
		}
		if lit.Kind == ast.LitFloat32 && math.Abs(f) > math.MaxFloat32 {
			v.report(diag.TypeValueOutOfRange, expr.Span, "value %s out of range for %s", text, v.label(t))
		}
		v.bindings.setValue(id, Value{Kind: ValFloat, Float: f, Str: strings.TrimSpace(text)})
		return t
	case lit.Kind == ast.LitDecimal:
		d, err := ParseDecimal(text)
		if err != nil {
			v.report(diag.TypeInvalidLiteral, expr.Span, "malformed decimal literal %q", text)
			return v.anyType()
		}
		v.bindings.setValue(id, Value{Kind: ValDecimal, Dec: d})
		scale := decimalScale(d)
		precision := max(d.NumDigits(), int64(scale), 1)
		if precision > types.MaxDecimalPrecision || scale > types.MaxDecimalPrecision {
			v.report(diag.TypeDecimalOverflow, expr.Span,
				"decimal literal %s needs more than %d digits", formatDecimal(d), types.MaxDecimalPrecision)
			return v.anyType()
		}
		return v.types.Decimal(uint8(precision), uint8(scale)) //nolint:gosec // both <= 38
	case lit.Kind == ast.LitString:
		v.bindings.setValue(id, Value{Kind: ValString, Str: text})
		return bt.String
	}
	v.report(diag.IntInvariant, expr.Span, "unexpected literal kind %s", lit.Kind)
	return v.anyType()
}

// alignConst converts a constant to target and records the converted
// value. On failure it reports and keeps the natural type.
func (v *Validator) alignConst(id ast.ExprID, val Value, natural, target types.TypeID) types.TypeID {
	if v.kind(target) == types.KindAny {
		return natural
	}
	out, err := v.convert(val, natural, target)
	if err != nil {
		v.report(err.code, v.span(id), "%s", err.msg)
		return natural
	}
	v.bindings.setValue(id, out)
	v.bindings.setExprType(id, target)
	return target
}

// constFits is alignConst without side effects.
func (v *Validator) constFits(val Value, natural, target types.TypeID) bool {
	if v.kind(target) == types.KindAny {
		return true
	}
	_, err := v.convert(val, natural, target)
	return err == nil
}

type convError struct {
	code diag.Code
	msg  string
}

func (v *Validator) convert(val Value, natural, target types.TypeID) (Value, *convError) {
	tt := v.types.MustLookup(v.types.Underlying(target))
	mismatch := func() (Value, *convError) {
		return Value{}, &convError{diag.TypeMismatch,
			fmt.Sprintf("cannot use %s literal %s as %s", v.label(natural), val, v.label(target))}
	}
	if val.Kind == ValNull {
		return val, nil
	}
	switch k := tt.Kind; {
	case k.IsInteger():
		if val.Kind != ValInt {
			return mismatch()
		}
		if !fitsInt(val.Int, k) {
			lo, hi, _ := types.IntRange(k)
			return Value{}, &convError{diag.TypeValueOutOfRange,
				fmt.Sprintf("value %s out of range for %s [%d, %d]", val.Int, v.label(target), lo, hi)}
		}
		return val, nil
	case k.IsFloat():
		var f float64
		switch val.Kind {
		case ValInt:
			f, _ = new(big.Float).SetInt(val.Int).Float64()
		case ValFloat:
			f = val.Float
		case ValDecimal:
			f, _ = val.Dec.Float64()
		default:
			return mismatch()
		}
		if k == types.KindFloat32 && math.Abs(f) > math.MaxFloat32 {
			return Value{}, &convError{diag.TypeValueOutOfRange,
				fmt.Sprintf("value %s out of range for %s", val, v.label(target))}
		}
		return Value{Kind: ValFloat, Float: f, Str: val.Str}, nil
	case k == types.KindDecimal:
		d, ok := toDecimal(val)
		if !ok {
			return mismatch()
		}
		scaled, err := rescale(d, int32(tt.Scale))
		if err != nil || scaled.NumDigits() > int64(tt.Precision) {
			return Value{}, &convError{diag.TypeDecimalOverflow,
				fmt.Sprintf("value %s does not fit %s", formatDecimal(d), v.label(target))}
		}
		return Value{Kind: ValDecimal, Dec: scaled}, nil
	case k == types.KindString, k == types.KindBytes:
		if val.Kind != ValString {
			return mismatch()
		}
		n := utf8.RuneCountInString(val.Str)
		if k == types.KindBytes {
			n = len(val.Str)
		}
		if tt.Length > 0 && n > int(tt.Length) {
			return Value{}, &convError{diag.TypeValueOutOfRange,
				fmt.Sprintf("literal of length %d exceeds %s", n, v.label(target))}
		}
		return val, nil
	case k == types.KindBool:
		if val.Kind != ValBool {
			return mismatch()
		}
		return val, nil
	case k == types.KindDate, k == types.KindTimestamp:
		if val.Kind != ValString {
			return mismatch()
		}
		layouts := timestampLayouts
		if k == types.KindDate {
			layouts = dateLayouts
		}
		for _, layout := range layouts {
			if _, err := time.Parse(layout, val.Str); err == nil {
				return val, nil
			}
		}
		return Value{}, &convError{diag.TypeInvalidLiteral,
			fmt.Sprintf("malformed %s literal %q", v.label(target), val.Str)}
	}
	if v.types.Assignable(natural, target) {
		return val, nil
	}
	return mismatch()
}

func toDecimal(val Value) (*apd.Decimal, bool) {
	switch val.Kind {
	case ValInt:
		return decimalFromInt(val.Int), true
	case ValDecimal:
		return val.Dec, val.Dec != nil
	case ValFloat:
		text := val.Str
		if text == "" {
			text = strconv.FormatFloat(val.Float, 'g', -1, 64)
		}
		d, err := ParseDecimal(text)
		return d, err == nil
	}
	return nil, false
}

func fitsInt(n *big.Int, k types.Kind) bool {
	lo, hi, ok := types.IntRange(k)
	if !ok || !n.IsInt64() {
		return false
	}
	x := n.Int64()
	return x >= lo && x <= hi
}

func litType(bt types.Builtins, k ast.LitKind) types.TypeID {
	switch k {
	case ast.LitInt8:
		return bt.Int8
	case ast.LitInt16:
		return bt.Int16
	case ast.LitInt32:
		return bt.Int32
	case ast.LitInt64:
		return bt.Int64
	case ast.LitFloat32:
		return bt.Float32
	case ast.LitFloat64:
		return bt.Float64
	}
	return bt.Any
}
