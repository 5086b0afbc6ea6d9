package astio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format is the wire encoding of a document.
type Format uint8

const (
	FormatJSON Format = iota + 1
	FormatMsgpack
)

// Sidecar suffixes appended to the source path.
const (
	SuffixJSON    = ".ast.json"
	SuffixMsgpack = ".ast.msgpack"
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

// Suffix returns the sidecar suffix for f.
func (f Format) Suffix() string {
	if f == FormatMsgpack {
		return SuffixMsgpack
	}
	return SuffixJSON
}

// FormatOf guesses the format from a file name.
func FormatOf(path string) (Format, bool) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".json"):
		return FormatJSON, true
	case strings.HasSuffix(lower, ".msgpack"), strings.HasSuffix(lower, ".mp"):
		return FormatMsgpack, true
	}
	return 0, false
}

// ErrMalformed wraps every structural problem found in a document.
var ErrMalformed = errors.New("malformed AST document")

// msgpack shares the json field names
const structTag = "json"

// Decode reads and validates one document.
func Decode(data []byte, format Format) (*Document, error) {
	doc := new(Document)
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if dec.More() {
			return nil, fmt.Errorf("%w: trailing data after document", ErrMalformed)
		}
	case FormatMsgpack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag(structTag)
		dec.DisallowUnknownFields(true)
		if err := dec.Decode(doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	default:
		return nil, fmt.Errorf("unsupported document format %s", format)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// DecodeFile reads path and decodes it using the format implied by its name.
func DecodeFile(path string) (*Document, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, fmt.Errorf("%s: unknown AST document format", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read AST document: %w", err)
	}
	doc, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Encode writes doc in the given format.
func Encode(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag(structTag)
		enc.SetOmitEmpty(true)
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unsupported document format %s", format)
	}
}
