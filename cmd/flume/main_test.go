package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flume/internal/astio"
	"flume/internal/config"
	"flume/internal/driver"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func writeSidecar(t *testing.T, path string, doc *astio.Document) {
	t.Helper()
	f, err := os.Create(path + astio.SuffixJSON)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := astio.Encode(f, doc, astio.FormatJSON); err != nil {
		t.Fatal(err)
	}
}

func TestDriverOptionsNeedsRoots(t *testing.T) {
	cfg := &config.Config{}
	if _, err := driverOptions(cfg, nil); err == nil {
		t.Fatalf("expected error without roots")
	}
	cfg.Diagnostics.Max = 7
	cfg.Analysis.BetweenPolicy = "bounds-only"
	opts, err := driverOptions(cfg, []string{"a.fl"})
	if err != nil {
		t.Fatalf("driverOptions: %v", err)
	}
	if len(opts.Roots) != 1 || !filepath.IsAbs(opts.Roots[0]) {
		t.Fatalf("roots = %v, want one absolute path", opts.Roots)
	}
	if opts.MaxDiagnostics != 7 {
		t.Fatalf("MaxDiagnostics = %d", opts.MaxDiagnostics)
	}
}

func TestDepsOrderAndLayers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "base.fl"), "STRUCT A { x INT8 };\n")
	writeFile(t, filepath.Join(dir, "mid.fl"), "INCLUDE 'base.fl';\n")
	writeFile(t, filepath.Join(dir, "main.fl"), "INCLUDE 'mid.fl';\nINCLUDE 'base.fl';\n")

	res, err := driver.ResolveIncludes(context.Background(), driver.Options{
		Roots:          []string{filepath.Join(dir, "main.fl")},
		WorkDir:        dir,
		MaxDiagnostics: 10,
	})
	if err != nil {
		t.Fatalf("ResolveIncludes: %v", err)
	}
	if res.Stopped != nil {
		t.Fatalf("unexpected stop: %v", res.Bag.Items())
	}

	var order bytes.Buffer
	writeOrder(&order, res.Includes)
	if got, want := order.String(), "base.fl\nmid.fl\nmain.fl\n"; got != want {
		t.Fatalf("order = %q, want %q", got, want)
	}

	var layers bytes.Buffer
	writeLayers(&layers, res.Includes.Graph)
	if got, want := layers.String(), "0: base.fl\n1: mid.fl\n2: main.fl\n"; got != want {
		t.Fatalf("layers = %q, want %q", got, want)
	}
}

func TestRenderSymbols(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.fl")
	writeFile(t, path, "STRUCT Trade { id INT64 };\nSTREAM trades OF Trade;\n")
	writeSidecar(t, path, &astio.Document{Statements: []astio.Stmt{
		{Kind: "type", TypeKind: "struct", Name: "Trade", Members: []astio.Member{
			{Name: "id", Type: &astio.TypeNode{Kind: "primitive", Primitive: "INT64"}},
		}},
		{Kind: "stream", Name: "trades", Member: &astio.TypeNode{Kind: "complex", Name: "Trade"}},
	}})

	res, err := driver.Compile(context.Background(), driver.Options{
		Roots:          []string{path},
		WorkDir:        dir,
		MaxDiagnostics: 10,
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.StopOnError() {
		t.Fatalf("unexpected errors: %v", res.Bag.Items())
	}

	var out bytes.Buffer
	renderSymbols(&out, res.Model, res.FileSet, "")
	got := out.String()
	for _, want := range []string{"Symbol", "Trade", "trades", "stream", "field", "main.fl:1:"} {
		if !strings.Contains(got, want) {
			t.Fatalf("table misses %q:\n%s", want, got)
		}
	}

	out.Reset()
	renderSymbols(&out, res.Model, res.FileSet, "stream")
	if strings.Contains(out.String(), "field") {
		t.Fatalf("kind filter leaked fields:\n%s", out.String())
	}

	out.Reset()
	renderSymbols(&out, res.Model, res.FileSet, "context")
	if got := out.String(); got != "(no symbols)\n" {
		t.Fatalf("empty filter = %q", got)
	}
}

func TestVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := renderVersionJSON(&buf); err != nil {
		t.Fatalf("renderVersionJSON: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Tool != "flume" || payload.Version == "" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{"AUTO", uiModeAuto, false},
		{" on ", uiModeOn, false},
		{"off", uiModeOff, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("readUIMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if !shouldUseTUI(uiModeOn, false) || shouldUseTUI(uiModeOff, true) {
		t.Fatalf("explicit modes must win over detection")
	}
}
