package astio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flume/internal/ast"
	"flume/internal/source"
)

const ordersJSON = `{
  "schema": 1,
  "path": "orders.fl",
  "includes": [{"path": "common.fl", "span": {"start": {"line": 1, "col": 1}, "end": {"line": 1, "col": 20}}}],
  "statements": [
    {
      "kind": "context", "name": "shop",
      "span": {"start": {"line": 2, "col": 1}, "end": {"line": 12, "col": 2}},
      "body": [
        {
          "kind": "type", "type_kind": "struct", "name": "Order",
          "span": {"start": {"line": 3, "col": 3}, "end": {"line": 7, "col": 4}},
          "members": [
            {"name": "id", "type": {"kind": "primitive", "primitive": "INT64"}},
            {"name": "total", "type": {"kind": "primitive", "primitive": "DECIMAL", "precision": 18, "scale": 2},
             "fragments": [{"kind": "default", "expr": {"kind": "literal", "lit_kind": "decimal", "literal": "0.00"}}]},
            {"name": "tags", "type": {"kind": "map", "key": {"kind": "primitive", "primitive": "STRING"}, "value": {"kind": "primitive", "primitive": "BOOL"}}},
            {"name": "code", "type": {"kind": "primitive", "primitive": "STRING", "length": 8}}
          ]
        },
        {
          "kind": "type", "type_kind": "enum", "name": "Status",
          "members": [{"name": "NEW"}, {"name": "DONE", "value": {"kind": "literal", "lit_kind": "int32", "literal": "5"}}]
        },
        {
          "kind": "stream", "name": "orders", "member": {"kind": "complex", "name": "Order"},
          "fragments": [{"kind": "distribute", "fields": [{"name": "id"}]}]
        }
      ]
    },
    {
      "kind": "read", "stream": "shop.orders",
      "projection": [{"kind": "ident", "name": "id"}],
      "where": {"kind": "infix", "op": "gt", "operands": [
        {"kind": "ident", "name": "total"},
        {"kind": "literal", "lit_kind": "int32", "literal": "100"}
      ]}
    },
    {
      "kind": "explain",
      "inner": {"kind": "write", "stream": "shop.orders", "assignments": [
        {"field": "id", "value": {"kind": "literal", "lit_kind": "int32", "literal": "1"}}
      ]}
    }
  ]
}`

func TestDecodeAndLowerJSON(t *testing.T) {
	doc, err := Decode([]byte(ordersJSON), FormatJSON)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	b := ast.NewBuilder(ast.Hints{}, nil)
	id, err := Lower(b, 1, doc)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	script := b.Scripts.Get(id)
	if script.Path != "orders.fl" || len(script.Includes) != 1 || script.Includes[0].Path != "common.fl" {
		t.Fatalf("unexpected script header: %+v", script)
	}
	if len(script.Stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(script.Stmts))
	}

	ctxStmt := b.Stmts.Get(script.Stmts[0])
	if ctxStmt.Kind != ast.StmtDecl {
		t.Fatalf("expected a declaration, got %s", ctxStmt.Kind)
	}
	ctx, ok := b.Decls.Context(ctxStmt.Decl)
	if !ok || len(ctx.Decls) != 3 {
		t.Fatalf("context should hold 3 declarations")
	}
	order, ok := b.Decls.TypeDef(ctx.Decls[0])
	if !ok || order.Kind != ast.TypeDeclStruct || len(order.Members) != 4 {
		t.Fatalf("Order should be a struct with 4 fields")
	}
	total := b.Decls.Member(order.Members[1])
	dec := b.Types.Get(total.Type)
	if dec.Prim != ast.PrimDecimal || !dec.HasParams || dec.Precision != 18 || dec.Scale != 2 {
		t.Fatalf("total should be DECIMAL(18,2), got %+v", dec)
	}
	if len(total.Fragments) != 1 || b.Fragments.Get(total.Fragments[0]).Kind != ast.FragDefault {
		t.Fatalf("total should carry a DEFAULT fragment")
	}
	code := b.Types.Get(b.Decls.Member(order.Members[3]).Type)
	if !code.HasParams || code.Length != 8 {
		t.Fatalf("code should be STRING(8), got %+v", code)
	}

	read := b.Stmts.Get(script.Stmts[1])
	if read.Kind != ast.StmtRead || b.Str(read.Stream) != "shop.orders" {
		t.Fatalf("expected READ shop.orders")
	}
	where, ok := b.Exprs.Infix(read.Where)
	if !ok || where.Op != ast.OpGt {
		t.Fatalf("where should be a > comparison")
	}

	explain := b.Stmts.Get(script.Stmts[2])
	if explain.Kind != ast.StmtExplain || b.Stmts.Get(explain.Inner).Kind != ast.StmtWrite {
		t.Fatalf("EXPLAIN should wrap the WRITE")
	}
	if sp := ctxStmt.Span; sp.File != 1 || sp.Start.Line != 2 {
		t.Fatalf("spans should carry the file id and positions, got %s", sp)
	}
}

func TestMsgpackRoundTrip(t *testing.T) {
	doc, err := Decode([]byte(ordersJSON), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, doc, FormatMsgpack); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	again, err := Decode(buf.Bytes(), FormatMsgpack)
	if err != nil {
		t.Fatalf("Decode msgpack: %v", err)
	}
	if len(again.Statements) != len(doc.Statements) || again.Statements[0].Body[0].Members[1].Type.Precision == nil {
		t.Fatalf("msgpack lost structure: %+v", again.Statements)
	}
	if *again.Statements[0].Body[0].Members[1].Type.Precision != 18 {
		t.Fatalf("msgpack lost decimal precision")
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"not json", `{"path":`, ""},
		{"unknown field", `{"path": "a", "statements": [], "bogus": 1}`, ""},
		{"unknown statement", `{"path": "a", "statements": [{"kind": "delete"}]}`, "unknown statement kind"},
		{"type without kind", `{"path": "a", "statements": [{"kind": "type", "name": "T"}]}`, "unknown type kind"},
		{"arity", `{"path": "a", "statements": [{"kind": "read", "stream": "s", "where": {"kind": "infix", "op": "ADD", "operands": [{"kind": "ident", "name": "x"}]}}]}`, "needs 2 operands"},
		{"wrong operator family", `{"path": "a", "statements": [{"kind": "read", "stream": "s", "where": {"kind": "prefix", "op": "ADD", "operands": [{"kind": "ident", "name": "x"}]}}]}`, "invalid prefix operator"},
		{"bad primitive", `{"path": "a", "statements": [{"kind": "stream", "name": "s", "member": {"kind": "primitive", "primitive": "UUID"}}]}`, "unknown primitive"},
		{"read in context", `{"path": "a", "statements": [{"kind": "context", "name": "c", "body": [{"kind": "read", "stream": "s"}]}]}`, "only declarations"},
		{"newer schema", `{"schema": 99, "path": "a", "statements": []}`, "schema 99"},
		{"enum member with type", `{"path": "a", "statements": [{"kind": "type", "type_kind": "enum", "name": "E", "members": [{"name": "A", "type": {"kind": "primitive", "primitive": "INT8"}}]}]}`, "enum member with a type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.doc), FormatJSON)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
			if tc.want != "" && !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err)
			}
		})
	}
}

func TestLowerValidatesHandBuiltDocuments(t *testing.T) {
	b := ast.NewBuilder(ast.Hints{}, nil)
	doc := &Document{Path: "x.fl", Statements: []Stmt{{Kind: KindExplain}}}
	if _, err := Lower(b, 1, doc); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if b.Scripts.Arena.Len() != 0 {
		t.Fatalf("a rejected document must not leave a script behind")
	}
}

func TestSidecarParser(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "orders.fl")
	if err := os.WriteFile(src, []byte("-- orders\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSet()
	id, err := fs.Load(src)
	if err != nil {
		t.Fatal(err)
	}
	file := fs.Get(id)

	if _, err := (SidecarParser{}).Parse(context.Background(), file); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("expected ErrNoDocument, got %v", err)
	}

	doc, err := Decode([]byte(ordersJSON), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, doc, FormatMsgpack); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src+SuffixMsgpack, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := (SidecarParser{}).Parse(context.Background(), file)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Path != file.Path {
		t.Fatalf("document path should be the source path, got %q", got.Path)
	}

	if err := os.WriteFile(src+SuffixJSON, []byte(`{"path": 1}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := (SidecarParser{}).Parse(context.Background(), file); !errors.Is(err, ErrMalformed) {
		t.Fatalf("JSON sidecar wins and is malformed, got %v", err)
	}
	if _, err := (SidecarParser{Formats: []Format{FormatMsgpack}}).Parse(context.Background(), file); err != nil {
		t.Fatalf("msgpack-only parser should ignore the JSON sidecar: %v", err)
	}
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{
		"a.fl.ast.json":    FormatJSON,
		"a.fl.AST.JSON":    FormatJSON,
		"a.fl.ast.msgpack": FormatMsgpack,
	} {
		if got, ok := FormatOf(path); !ok || got != want {
			t.Fatalf("FormatOf(%q) = %s", path, got)
		}
	}
	if _, ok := FormatOf("a.fl"); ok {
		t.Fatalf("plain source has no document format")
	}
}
