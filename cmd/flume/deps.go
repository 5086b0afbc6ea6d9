package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"flume/internal/driver"
	"flume/internal/include"
)

var depsCmd = &cobra.Command{
	Use:   "deps [files...]",
	Short: "Print the dependencies-first INCLUDE order",
	RunE:  runDeps,
}

func init() {
	depsCmd.Flags().Bool("layers", false, "group files into layers that only include earlier layers")
}

func runDeps(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	cfg := configFrom(cmd)
	opts, err := driverOptions(cfg, args)
	if err != nil {
		return err
	}
	res, err := driver.ResolveIncludes(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("deps failed: %w", err)
	}
	if res.Stopped != nil || res.Bag.Len() > 0 {
		if err := renderDiagnostics(cmd, cfg, res); err != nil {
			return err
		}
	}
	if res.Stopped != nil {
		return errStopped
	}

	layers, _ := cmd.Flags().GetBool("layers")
	if layers {
		writeLayers(cmd.OutOrStdout(), res.Includes.Graph)
		return nil
	}
	writeOrder(cmd.OutOrStdout(), res.Includes)
	return nil
}

// writeOrder prints one file per line, included files first.
func writeOrder(w io.Writer, res include.Result) {
	for _, u := range res.Order {
		id, _ := res.Graph.Lookup(u.Path)
		fmt.Fprintln(w, res.Graph.Display[id])
	}
}

func writeLayers(w io.Writer, g *include.Graph) {
	layers, cyclic := g.Layers()
	for i, layer := range layers {
		names := make([]string, len(layer))
		for j, id := range layer {
			names[j] = g.Display[id]
		}
		fmt.Fprintf(w, "%d: %s\n", i, strings.Join(names, " "))
	}
	if len(cyclic) > 0 {
		names := make([]string, len(cyclic))
		for j, id := range cyclic {
			names[j] = g.Display[id]
		}
		fmt.Fprintf(w, "cycle: %s\n", strings.Join(names, " "))
	}
}
