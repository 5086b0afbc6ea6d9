package types

import "math"

// IntRange returns the representable range of an integer kind.
func IntRange(k Kind) (lo, hi int64, ok bool) {
	switch k {
	case KindInt8:
		return math.MinInt8, math.MaxInt8, true
	case KindInt16:
		return math.MinInt16, math.MaxInt16, true
	case KindInt32:
		return math.MinInt32, math.MaxInt32, true
	case KindInt64:
		return math.MinInt64, math.MaxInt64, true
	default:
		return 0, 0, false
	}
}

// IntDigits is the number of decimal digits needed for any value of k.
func IntDigits(k Kind) uint8 {
	switch k {
	case KindInt8:
		return 3
	case KindInt16:
		return 5
	case KindInt32:
		return 10
	case KindInt64:
		return 19
	default:
		return 0
	}
}

// Widen returns the smallest numeric type holding the ranges of a and b.
// Any absorbs everything; null yields the other operand.
func (in *Interner) Widen(a, b TypeID) (TypeID, bool) {
	a, b = in.Underlying(a), in.Underlying(b)
	ta, okA := in.Lookup(a)
	tb, okB := in.Lookup(b)
	if !okA || !okB {
		return in.builtins.Any, false
	}
	switch {
	case ta.Kind == KindAny || tb.Kind == KindAny:
		return in.builtins.Any, true
	case ta.Kind == KindNull && tb.Kind.IsNumeric():
		return b, true
	case tb.Kind == KindNull && ta.Kind.IsNumeric():
		return a, true
	case !ta.Kind.IsNumeric() || !tb.Kind.IsNumeric():
		return NoTypeID, false
	}

	if ta.Kind > tb.Kind {
		ta, tb = tb, ta
		a, b = b, a
	}
	switch {
	case ta.Kind.IsInteger() && tb.Kind.IsInteger():
		return b, true
	case ta.Kind.IsFloat() && tb.Kind.IsFloat():
		return b, true
	case ta.Kind.IsInteger() && tb.Kind == KindFloat32:
		if ta.Kind <= KindInt16 {
			return b, true
		}
		return in.builtins.Float64, true
	case ta.Kind.IsInteger() && tb.Kind == KindFloat64:
		return b, true
	case ta.Kind.IsInteger() && tb.Kind == KindDecimal:
		return in.decimalCover(IntDigits(ta.Kind), 0, tb), true
	case ta.Kind.IsFloat() && tb.Kind == KindDecimal:
		return in.builtins.Float64, true
	case ta.Kind == KindDecimal && tb.Kind == KindDecimal:
		return in.decimalCover(ta.Precision-ta.Scale, ta.Scale, tb), true
	}
	return NoTypeID, false
}

// decimalCover widens d so it keeps intDigits integer and scale fractional digits.
func (in *Interner) decimalCover(intDigits, scale uint8, d Type) TypeID {
	intDigits = max(intDigits, d.Precision-d.Scale)
	scale = max(scale, d.Scale)
	precision := min(int(intDigits)+int(scale), MaxDecimalPrecision)
	if int(scale) > precision {
		scale = uint8(precision) //nolint:gosec // precision <= 38
	}
	return in.Decimal(uint8(precision), scale) //nolint:gosec // precision <= 38
}

// Assignable reports whether a value of type src can be stored in dst
// without loss of range.
func (in *Interner) Assignable(src, dst TypeID) bool {
	if src == dst {
		return true
	}
	src, dst = in.Underlying(src), in.Underlying(dst)
	if src == dst {
		return true
	}
	ts, okS := in.Lookup(src)
	td, okD := in.Lookup(dst)
	if !okS || !okD {
		return false
	}
	if ts.Kind == KindAny || td.Kind == KindAny || ts.Kind == KindNull {
		return true
	}
	switch {
	case ts.Kind.IsInteger() && td.Kind.IsInteger():
		return ts.Kind <= td.Kind
	case ts.Kind.IsInteger() && td.Kind == KindFloat32:
		return ts.Kind <= KindInt16
	case ts.Kind.IsInteger() && td.Kind == KindFloat64:
		return true
	case ts.Kind.IsInteger() && td.Kind == KindDecimal:
		return IntDigits(ts.Kind) <= td.Precision-td.Scale
	case ts.Kind.IsFloat() && td.Kind.IsFloat():
		return ts.Kind <= td.Kind
	case ts.Kind == KindDecimal && td.Kind == KindDecimal:
		return ts.Precision-ts.Scale <= td.Precision-td.Scale && ts.Scale <= td.Scale
	case ts.Kind == KindDecimal && td.Kind == KindFloat64:
		return true
	case ts.Kind == KindString && td.Kind == KindString, ts.Kind == KindBytes && td.Kind == KindBytes:
		return td.Length == 0 || (ts.Length > 0 && ts.Length <= td.Length)
	case ts.Kind == KindList && td.Kind == KindList:
		return in.Assignable(ts.Elem, td.Elem)
	case ts.Kind == KindMap && td.Kind == KindMap:
		return in.Assignable(ts.Key, td.Key) && in.Assignable(ts.Elem, td.Elem)
	case ts.Kind.IsNominal() || td.Kind.IsNominal():
		return false
	}
	return ts.Kind == td.Kind && ts.Kind.IsPrimitive()
}

// Comparable reports whether = and <> are defined between a and b.
func (in *Interner) Comparable(a, b TypeID) bool {
	a, b = in.Underlying(a), in.Underlying(b)
	if a == b {
		return true
	}
	ta, okA := in.Lookup(a)
	tb, okB := in.Lookup(b)
	if !okA || !okB {
		return false
	}
	switch {
	case ta.Kind == KindAny || tb.Kind == KindAny, ta.Kind == KindNull || tb.Kind == KindNull:
		return true
	case ta.Kind.IsNumeric() && tb.Kind.IsNumeric():
		return true
	case isTemporal(ta.Kind) && isTemporal(tb.Kind):
		return true
	case ta.Kind.IsNominal() || tb.Kind.IsNominal():
		return false
	}
	return ta.Kind == tb.Kind && ta.Kind.IsPrimitive()
}

// CommonOrderable returns the type both a and b can be ordered as.
func (in *Interner) CommonOrderable(a, b TypeID) (TypeID, bool) {
	a, b = in.Underlying(a), in.Underlying(b)
	ka, kb := in.KindOf(a), in.KindOf(b)
	switch {
	case ka == KindAny || kb == KindAny:
		return in.builtins.Any, true
	case ka == KindNull && kb.IsOrderable():
		return b, true
	case kb == KindNull && ka.IsOrderable():
		return a, true
	case ka.IsNumeric() && kb.IsNumeric():
		return in.Widen(a, b)
	case ka == KindString && kb == KindString:
		return in.builtins.String, true
	case ka == kb && isTemporal(ka):
		return a, true
	case isTemporal(ka) && isTemporal(kb):
		return in.builtins.Timestamp, true
	}
	return NoTypeID, false
}

func isTemporal(k Kind) bool { return k == KindDate || k == KindTimestamp }
