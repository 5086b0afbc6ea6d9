package sema

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// ValueKind tags the payload of a constant Value.
type ValueKind uint8

const (
	ValNone ValueKind = iota
	ValNull
	ValBool
	ValInt
	ValFloat
	ValDecimal
	ValString
)

// Value is the constant carried by a literal after alignment.
type Value struct {
	Kind  ValueKind
	Bool  bool
	Int   *big.Int
	Float float64
	Dec   *apd.Decimal
	Str   string
}

func (v Value) String() string {
	switch v.Kind {
	case ValNull:
		return "NULL"
	case ValBool:
		return strconv.FormatBool(v.Bool)
	case ValInt:
		return v.Int.String()
	case ValFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ValDecimal:
		return formatDecimal(v.Dec)
	case ValString:
		return strconv.Quote(v.Str)
	default:
		return "<none>"
	}
}

// decimalCtx does exact decimal work for DECIMAL(p, s) checks. Rounding
// is half away from zero; apd rounds magnitudes, so HalfUp is that rule.
var decimalCtx = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(maxDecimalWork)
	c.Rounding = apd.RoundHalfUp
	return c
}()

// maxDecimalWork bounds the digits of any intermediate coefficient.
const maxDecimalWork = 1000

const maxDecimalScale = 1 << 16

var errMalformedDecimal = errors.New("malformed decimal literal")

// ParseDecimal reads [+-]digits[.digits][e[+-]digits] exactly, without
// going through binary floating point. Positive exponents are expanded so
// the result never has a negative scale.
func ParseDecimal(text string) (*apd.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(text), "_", "")
	s = strings.TrimSuffix(strings.TrimSuffix(s, "m"), "M")
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg, s = true, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if s == "" || strings.ContainsAny(s[:1], "+-") {
		return nil, errMalformedDecimal
	}
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedDecimal, err)
	}
	if d.Form != apd.Finite {
		return nil, errMalformedDecimal
	}
	if d.Exponent > 0 {
		if _, err := decimalCtx.Quantize(d, d, 0); err != nil {
			return nil, fmt.Errorf("%w: %w", errMalformedDecimal, err)
		}
	}
	if -int64(d.Exponent) > maxDecimalScale {
		return nil, fmt.Errorf("%w: scale too large", errMalformedDecimal)
	}
	d.Negative = neg && !d.IsZero()
	return d, nil
}

// decimalFromInt wraps an integer with scale 0.
func decimalFromInt(v *big.Int) *apd.Decimal {
	d := new(apd.Decimal)
	d.Coeff.SetMathBigInt(new(big.Int).Abs(v))
	d.Negative = v.Sign() < 0
	return d
}

// decimalScale is the number of fractional digits of d.
func decimalScale(d *apd.Decimal) int32 {
	if d.Exponent > 0 {
		return 0
	}
	return -d.Exponent
}

// rescale returns d with exactly scale fractional digits, rounding half
// away from zero when digits are dropped.
func rescale(d *apd.Decimal, scale int32) (*apd.Decimal, error) {
	out := new(apd.Decimal)
	if _, err := decimalCtx.Quantize(out, d, -scale); err != nil {
		return nil, err
	}
	return out, nil
}

func formatDecimal(d *apd.Decimal) string {
	if d == nil {
		return "0"
	}
	return d.Text('f')
}

// parseInteger accepts decimal, 0x, 0o and 0b spellings with underscores.
// A bare leading zero stays decimal.
func parseInteger(text string) (*big.Int, bool) {
	s := strings.TrimSpace(text)
	body := strings.TrimLeft(s, "+-")
	if len(body) > 1 && body[0] == '0' && strings.ContainsRune("xXoObB", rune(body[1])) {
		return new(big.Int).SetString(s, 0)
	}
	return new(big.Int).SetString(strings.ReplaceAll(s, "_", ""), 10)
}
