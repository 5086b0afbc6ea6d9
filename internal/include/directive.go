package include

import (
	"bytes"
	"regexp"

	"fortio.org/safecast"

	"flume/internal/source"
)

// Directive is one INCLUDE 'path' found in raw source text.
type Directive struct {
	Path string
	Span source.Span
}

var directiveRe = regexp.MustCompile(`(?i)^[ \t]*(INCLUDE[ \t]+'([^'\n]*)')[ \t]*;?`)

// Scan finds INCLUDE directives at the start of lines. The scan runs over
// raw text so include order can be computed before any script is parsed.
func Scan(f *source.File) []Directive {
	if f == nil {
		return nil
	}
	var out []Directive
	content := f.Content
	lineStart := 0
	for line := 1; lineStart <= len(content); line++ {
		end := bytes.IndexByte(content[lineStart:], '\n')
		if end < 0 {
			end = len(content) - lineStart
		}
		text := content[lineStart : lineStart+end]
		if m := directiveRe.FindSubmatchIndex(text); m != nil {
			out = append(out, Directive{
				Path: string(text[m[4]:m[5]]),
				Span: source.Span{
					File:  f.ID,
					Start: source.Pos{Line: toU32(line), Col: toU32(m[2] + 1)},
					End:   source.Pos{Line: toU32(line), Col: toU32(m[3] + 1)},
				},
			})
		}
		lineStart += end + 1
	}
	return out
}

func toU32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(err)
	}
	return v
}
