package astio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"flume/internal/source"
)

// ErrNoDocument means no sidecar exists for a source file.
var ErrNoDocument = errors.New("no AST document")

// SidecarParser reads the document the external parser left next to each
// source file: <file>.ast.json or <file>.ast.msgpack.
type SidecarParser struct {
	// Formats are tried in order; empty means JSON then msgpack.
	Formats []Format
}

// Parse loads the sidecar document of file. The document path is set to
// the file path so diagnostics point at the source, not the sidecar.
func (p SidecarParser) Parse(ctx context.Context, file *source.File) (*Document, error) {
	if file == nil {
		return nil, errors.New("nil source file")
	}
	formats := p.Formats
	if len(formats) == 0 {
		formats = []Format{FormatJSON, FormatMsgpack}
	}
	for _, format := range formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := file.Path + format.Suffix()
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read AST document: %w", err)
		}
		doc, err := Decode(data, format)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		doc.Path = file.Path
		return doc, nil
	}
	return nil, fmt.Errorf("%s: %w (looked for %s)", file.Path, ErrNoDocument, sidecarNames(formats))
}

func sidecarNames(formats []Format) string {
	out := ""
	for i, f := range formats {
		if i > 0 {
			out += ", "
		}
		out += "*" + f.Suffix()
	}
	return out
}
