package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"flume/internal/driver"
	"flume/internal/sema"
	"flume/internal/source"
	"flume/internal/symbols"
	"flume/internal/types"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols [files...]",
	Short: "List the declared contexts, streams, types and members",
	RunE:  runSymbols,
}

func init() {
	symbolsCmd.Flags().String("kind", "", "only list symbols of this kind (context|stream|type|field|enum member|union member)")
}

func runSymbols(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	cfg := configFrom(cmd)
	opts, err := driverOptions(cfg, args)
	if err != nil {
		return err
	}
	res, err := driver.Compile(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("symbols failed: %w", err)
	}
	if res.Bag.Len() > 0 {
		if err := renderDiagnostics(cmd, cfg, res); err != nil {
			return err
		}
	}
	if res.Model == nil {
		return errStopped
	}
	kind, _ := cmd.Flags().GetString("kind")
	renderSymbols(cmd.OutOrStdout(), res.Model, res.FileSet, kind)
	if res.StopOnError() {
		return errStopped
	}
	return nil
}

// renderSymbols prints one row per registered symbol in registration order.
func renderSymbols(w io.Writer, m *sema.Model, fs *source.FileSet, kind string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Symbol", "Kind", "Type", "Declared at"})

	rows := 0
	m.Symbols.Each(func(id symbols.SymbolID, sym *symbols.Symbol) {
		if kind != "" && sym.Kind.String() != kind {
			return
		}
		t.AppendRow(table.Row{
			m.Symbols.Display(id),
			sym.Kind.String(),
			symbolType(m, sym),
			declaredAt(fs, sym.Span),
		})
		rows++
	})
	if rows == 0 {
		fmt.Fprintln(w, "(no symbols)")
		return
	}
	t.Render()
}

func symbolType(m *sema.Model, sym *symbols.Symbol) string {
	var (
		id types.TypeID
		ok bool
	)
	switch sym.Kind {
	case symbols.SymbolStream, symbols.SymbolType:
		id, ok = m.Bindings.DeclType(sym.Decl)
	case symbols.SymbolField, symbols.SymbolUnionMember:
		id, ok = m.Bindings.MemberType(sym.Member)
	case symbols.SymbolEnumMember:
		if v, has := m.Bindings.EnumValue(sym.Member); has {
			return "= " + strconv.FormatInt(v, 10)
		}
	}
	if !ok {
		return "-"
	}
	return m.TypeLabel(id)
}

func declaredAt(fs *source.FileSet, span source.Span) string {
	if span.IsNone() {
		return "-"
	}
	f := fs.Get(span.File)
	if f == nil {
		return span.Start.String()
	}
	return f.FormatPath("relative", fs.BaseDir()) + ":" + span.Start.String()
}
