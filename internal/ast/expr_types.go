package ast

import (
	"flume/internal/source"
)

// ExprKind enumerates the different kinds of expressions.
type ExprKind uint8

const (
	// ExprIdent is a (possibly dotted) identifier.
	ExprIdent ExprKind = iota + 1
	// ExprLit is a literal.
	ExprLit
	// ExprPrefix is a unary operator before its operand.
	ExprPrefix
	// ExprInfix is a binary operator.
	ExprInfix
	// ExprTernary is a three-operand operator (BETWEEN).
	ExprTernary
	// ExprPostfix is a unary operator after its operand.
	ExprPostfix
	ExprMember
	ExprIndex
	ExprParen
)

// Expr represents an expression node in the AST.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

// LitKind is the natural type the parser assigned to a literal.
type LitKind uint8

const (
	LitBool LitKind = iota + 1
	LitInt8
	LitInt16
	LitInt32
	LitInt64
	LitFloat32
	LitFloat64
	LitDecimal
	LitString
	LitNull
)

var litNames = [...]string{
	LitBool:    "bool",
	LitInt8:    "int8",
	LitInt16:   "int16",
	LitInt32:   "int32",
	LitInt64:   "int64",
	LitFloat32: "float32",
	LitFloat64: "float64",
	LitDecimal: "decimal",
	LitString:  "string",
	LitNull:    "null",
}

func (k LitKind) String() string {
	if int(k) < len(litNames) && litNames[k] != "" {
		return litNames[k]
	}
	return "invalid"
}

// ParseLitKind is the inverse of LitKind.String.
func ParseLitKind(s string) (LitKind, bool) {
	for k, v := range litNames {
		if v != "" && v == s {
			return LitKind(k), true //nolint:gosec // bounded by litNames
		}
	}
	return 0, false
}

// IsInteger reports whether k is one of the integer literal kinds.
func (k LitKind) IsInteger() bool { return k >= LitInt8 && k <= LitInt64 }

// IsFractional reports float and decimal literals.
func (k LitKind) IsFractional() bool { return k >= LitFloat32 && k <= LitDecimal }

// Op is an operator of prefix, infix, ternary or postfix expressions.
type Op uint8

const (
	// Префиксные

	OpNot Op = iota + 1
	OpNeg
	OpPlus

	// Арифметические

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod

	// Битовые

	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr

	// Логические

	OpAnd
	OpOr
	OpXor

	// Сравнения

	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpLike
	OpIn

	// Тернарные и постфиксные

	OpBetween
	OpIsNull
	OpIsNotNull
)

var opNames = [...]string{
	OpNot:       "NOT",
	OpNeg:       "NEG",
	OpPlus:      "PLUS",
	OpAdd:       "ADD",
	OpSub:       "SUB",
	OpMul:       "MUL",
	OpDiv:       "DIV",
	OpMod:       "MOD",
	OpBitAnd:    "BIT_AND",
	OpBitOr:     "BIT_OR",
	OpBitXor:    "BIT_XOR",
	OpShl:       "SHL",
	OpShr:       "SHR",
	OpAnd:       "AND",
	OpOr:        "OR",
	OpXor:       "XOR",
	OpEq:        "EQ",
	OpNe:        "NE",
	OpLt:        "LT",
	OpLe:        "LE",
	OpGt:        "GT",
	OpGe:        "GE",
	OpLike:      "LIKE",
	OpIn:        "IN",
	OpBetween:   "BETWEEN",
	OpIsNull:    "IS_NULL",
	OpIsNotNull: "IS_NOT_NULL",
}

func (op Op) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return "INVALID"
}

// ParseOp is the inverse of Op.String.
func ParseOp(s string) (Op, bool) {
	for op, v := range opNames {
		if v != "" && v == s {
			return Op(op), true //nolint:gosec // bounded by opNames
		}
	}
	return 0, false
}

func (op Op) IsArithmetic() bool { return op >= OpAdd && op <= OpMod }
func (op Op) IsBitwise() bool    { return op >= OpBitAnd && op <= OpShr }
func (op Op) IsLogical() bool    { return op >= OpAnd && op <= OpXor }
func (op Op) IsComparison() bool { return op >= OpEq && op <= OpGe }

// IsOrdering reports <, <=, >, >=.
func (op Op) IsOrdering() bool { return op >= OpLt && op <= OpGe }

type ExprIdentData struct {
	Name source.StringID
}

// ExprLiteralData keeps the literal text as written; values are parsed
// during validation.
type ExprLiteralData struct {
	Kind  LitKind
	Value source.StringID
}

type ExprPrefixData struct {
	Op      Op
	Operand ExprID
}

type ExprInfixData struct {
	Op    Op
	Left  ExprID
	Right ExprID
}

// ExprTernaryData is Value BETWEEN Low AND High.
type ExprTernaryData struct {
	Op    Op
	Value ExprID
	Low   ExprID
	High  ExprID
}

type ExprPostfixData struct {
	Op      Op
	Operand ExprID
}

type ExprMemberData struct {
	Target    ExprID
	Field     source.StringID
	FieldSpan source.Span
}

type ExprIndexData struct {
	Target ExprID
	Index  ExprID
}

type ExprParenData struct {
	Inner ExprID
}
