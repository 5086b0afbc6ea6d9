package diag

// Kind groups diagnostics by the phase that produced them.
type Kind uint8

const (
	KindLexer Kind = iota + 1
	KindParser
	KindInclude
	KindResolve
	KindType
	KindSemantic
	KindRuntime
	KindLint
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindLexer:
		return "lexer"
	case KindParser:
		return "parser"
	case KindInclude:
		return "include"
	case KindResolve:
		return "resolve"
	case KindType:
		return "type"
	case KindSemantic:
		return "semantic"
	case KindRuntime:
		return "runtime"
	case KindLint:
		return "lint"
	case KindInternal:
		return "internal"
	}
	return "unknown"
}
