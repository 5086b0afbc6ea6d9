package diag

import (
	"fmt"
)

// Code is a compact numeric diagnostic identifier. The thousands digit
// selects the Kind, see Code.Kind.
type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Лексические (производятся внешним сканером)
	LexInfo  Code = 1000
	LexError Code = 1001

	// Парсерные (производятся внешним парсером)
	SynInfo            Code = 2000
	SynError           Code = 2001
	SynMalformedScript Code = 2002

	// include graph
	IncInfo          Code = 3000
	IncCycle         Code = 3001
	IncMissingFile   Code = 3002
	IncInvalidPath   Code = 3003
	IncReadError     Code = 3004
	IncDuplicateRoot Code = 3005

	// name resolution
	ResInfo            Code = 4000
	ResDuplicateSymbol Code = 4001
	ResUnknownType     Code = 4002
	ResUnknownStream   Code = 4003
	ResNotAType        Code = 4004
	ResNotAStream      Code = 4005
	ResDuplicateMember Code = 4006
	ResUnknownSymbol   Code = 4007

	// type construction and literal alignment
	TypeInfo               Code = 5000
	TypeValueOutOfRange    Code = 5001
	TypeDecimalOverflow    Code = 5002
	TypeMismatch           Code = 5003
	TypeInvalidOperands    Code = 5004
	TypeInvalidPrecision   Code = 5005
	TypeInvalidLength      Code = 5006
	TypeStreamNotStruct    Code = 5007
	TypeEnumValueNotConst  Code = 5008
	TypeDivisionByZero     Code = 5009
	TypeNotComparable      Code = 5010
	TypeInvalidLiteral     Code = 5011
	TypeScalarNotPrimitive Code = 5012

	// expression semantics
	SemaInfo              Code = 6000
	SemaUnknownIdentifier Code = 6001
	SemaNotAStruct        Code = 6002
	SemaUnknownField      Code = 6003
	SemaNotIndexable      Code = 6004
	SemaInvalidIndex      Code = 6005
	SemaInvalidOperand    Code = 6006
	SemaNotACollection    Code = 6007
	SemaUnknownStreamKey  Code = 6008
	SemaNotBoolean        Code = 6009

	// runtime (производятся движком исполнения)
	RunInfo Code = 7000

	// lint (производятся линтером)
	LintInfo              Code = 8000
	LintUnusedType        Code = 8001
	LintEmptyType         Code = 8002
	LintStreamNoTimestamp Code = 8003

	// внутренние инварианты
	IntInfo          Code = 9000
	IntTypeGraphOpen Code = 9001
	IntInvariant     Code = 9002
)

var (
	codeDescription = map[Code]string{
		UnknownCode:            "Unknown error",
		LexInfo:                "Lexical information",
		LexError:               "Lexical error",
		SynInfo:                "Syntax information",
		SynError:               "Syntax error",
		SynMalformedScript:     "Malformed script document",
		IncInfo:                "Include information",
		IncCycle:               "Include cycle detected",
		IncMissingFile:         "Included file not found",
		IncInvalidPath:         "Invalid include path",
		IncReadError:           "Included file cannot be read",
		IncDuplicateRoot:       "Root file listed twice",
		ResInfo:                "Resolve information",
		ResDuplicateSymbol:     "Duplicate symbol",
		ResUnknownType:         "Unknown type",
		ResUnknownStream:       "Unknown stream",
		ResNotAType:            "Symbol is not a type",
		ResNotAStream:          "Symbol is not a stream",
		ResDuplicateMember:     "Duplicate member name",
		ResUnknownSymbol:       "Unknown symbol",
		TypeInfo:               "Type information",
		TypeValueOutOfRange:    "Value out of range",
		TypeDecimalOverflow:    "Decimal precision overflow",
		TypeMismatch:           "Type mismatch",
		TypeInvalidOperands:    "Incompatible operand types",
		TypeInvalidPrecision:   "Invalid precision or scale",
		TypeInvalidLength:      "Invalid length",
		TypeStreamNotStruct:    "Stream member is not a struct",
		TypeEnumValueNotConst:  "Enum value is not a constant expression",
		TypeDivisionByZero:     "Division by zero in constant expression",
		TypeNotComparable:      "Operands are not comparable",
		TypeInvalidLiteral:     "Malformed literal",
		TypeScalarNotPrimitive: "Scalar must wrap a primitive type",
		SemaInfo:               "Semantic information",
		SemaUnknownIdentifier:  "Unknown identifier",
		SemaNotAStruct:         "Not a struct",
		SemaUnknownField:       "Unknown field",
		SemaNotIndexable:       "Value is not indexable",
		SemaInvalidIndex:       "Invalid index type",
		SemaInvalidOperand:     "Invalid operand",
		SemaNotACollection:     "Right side of IN is not a collection",
		SemaUnknownStreamKey:   "Stream key refers to unknown field",
		SemaNotBoolean:         "Expression is not boolean",
		RunInfo:                "Runtime information",
		LintInfo:               "Lint information",
		LintUnusedType:         "Type is never used",
		LintEmptyType:          "Type declares no members",
		LintStreamNoTimestamp:  "Stream has no TIMESTAMP field",
		IntInfo:                "Internal information",
		IntTypeGraphOpen:       "Type graph cannot be closed",
		IntInvariant:           "Internal invariant violated",
	}
)

// Kind derives the diagnostic kind from the code range.
func (c Code) Kind() Kind {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return KindLexer
	case ic >= 2000 && ic < 3000:
		return KindParser
	case ic >= 3000 && ic < 4000:
		return KindInclude
	case ic >= 4000 && ic < 5000:
		return KindResolve
	case ic >= 5000 && ic < 6000:
		return KindType
	case ic >= 6000 && ic < 7000:
		return KindSemantic
	case ic >= 7000 && ic < 8000:
		return KindRuntime
	case ic >= 8000 && ic < 9000:
		return KindLint
	}
	return KindInternal
}

func (c Code) ID() string {
	switch c.Kind() {
	case KindLexer:
		return fmt.Sprintf("LEX%04d", int(c))
	case KindParser:
		return fmt.Sprintf("SYN%04d", int(c))
	case KindInclude:
		return fmt.Sprintf("INC%04d", int(c))
	case KindResolve:
		return fmt.Sprintf("RES%04d", int(c))
	case KindType:
		return fmt.Sprintf("TYP%04d", int(c))
	case KindSemantic:
		return fmt.Sprintf("SEM%04d", int(c))
	case KindRuntime:
		return fmt.Sprintf("RUN%04d", int(c))
	case KindLint:
		return fmt.Sprintf("LNT%04d", int(c))
	}
	return fmt.Sprintf("INT%04d", int(c))
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
