// Package include orders input files so that every included file comes
// before the files that include it.
package include

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"flume/internal/diag"
	"flume/internal/source"
	"flume/internal/trace"
)

// Reader loads files by path. *source.FileSet satisfies it.
type Reader interface {
	Load(path string) (source.FileID, error)
	Get(id source.FileID) *source.File
}

// Unit is one resolved file in dependency order.
type Unit struct {
	Path     string // normalized absolute path
	File     source.FileID
	Includes []Directive
}

// Result is the outcome of Resolve. On a cycle Order is empty; callers
// must not assume a complete order whenever Failed is set.
type Result struct {
	Order  []Unit
	Graph  *Graph
	Cyclic bool
	Failed bool
}

// Paths returns the ordered absolute paths.
func (r Result) Paths() []string {
	out := make([]string, len(r.Order))
	for i, u := range r.Order {
		out[i] = u.Path
	}
	return out
}

type color uint8

const (
	white color = iota // не посещён
	grey               // в стеке обхода
	black              // завершён
)

type resolver struct {
	reader   Reader
	workDir  string
	reporter diag.Reporter
	tracer   trace.Tracer
	parent   uint64

	graph  *Graph
	state  map[string]color
	stack  []string
	order  []Unit
	cyclic bool
	failed bool
}

// Resolve walks the include graph from roots (in caller order) and
// returns files dependencies-first. INCLUDE paths are resolved against
// workDir. Problems are reported as Include diagnostics.
func Resolve(ctx context.Context, reader Reader, workDir string, roots []string, reporter diag.Reporter) Result {
	span, _ := trace.StartSpan(ctx, trace.ScopeDriver, "include.resolve")
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	r := &resolver{
		reader:   reader,
		workDir:  workDir,
		reporter: reporter,
		tracer:   trace.FromContext(ctx),
		parent:   span.ID(),
		graph:    newGraph(),
		state:    make(map[string]color),
	}

	seenRoots := make(map[string]struct{}, len(roots))
	for _, root := range roots {
		path := source.NormalizePath(root, workDir)
		if _, dup := seenRoots[path]; dup {
			diag.ReportWarning(reporter, diag.IncDuplicateRoot, source.NoSpan,
				fmt.Sprintf("input %q listed more than once", r.display(path))).Emit()
			continue
		}
		seenRoots[path] = struct{}{}
		r.graph.node(path, r.display(path))
		if !r.visit(path, source.NoSpan) {
			break
		}
	}

	res := Result{Graph: r.graph, Cyclic: r.cyclic, Failed: r.failed || r.cyclic}
	if !r.cyclic {
		res.Order = r.order
	}
	span.WithExtra("files", fmt.Sprint(r.graph.Len())).End(resultDetail(res))
	return res
}

// visit returns false when a cycle aborts the walk.
func (r *resolver) visit(path string, at source.Span) bool {
	switch r.state[path] {
	case black:
		return true
	case grey:
		r.reportCycle(path, at)
		return false
	}

	id, err := r.reader.Load(path)
	if err != nil {
		r.reportLoadError(path, at, err)
		r.state[path] = black
		return true
	}

	r.state[path] = grey
	r.stack = append(r.stack, path)
	from := r.graph.node(path, r.display(path))
	trace.Point(r.tracer, trace.ScopeScript, "include.enter", r.display(path), r.parent)

	directives := Scan(r.reader.Get(id))
	for _, d := range directives {
		if strings.TrimSpace(d.Path) == "" {
			diag.ReportError(r.reporter, diag.IncInvalidPath, d.Span, "empty INCLUDE path").Emit()
			r.failed = true
			continue
		}
		target := source.NormalizePath(d.Path, r.workDir)
		to := r.graph.node(target, r.display(target))
		r.graph.addEdge(from, to)
		if !r.visit(target, d.Span) {
			return false
		}
	}

	r.stack = r.stack[:len(r.stack)-1]
	r.state[path] = black
	// post-order: файл попадает в порядок после всех своих зависимостей
	r.order = append(r.order, Unit{Path: path, File: id, Includes: directives})
	return true
}

func (r *resolver) reportCycle(path string, at source.Span) {
	r.cyclic = true
	start := 0
	for i, p := range r.stack {
		if p == path {
			start = i
			break
		}
	}
	chain := make([]string, 0, len(r.stack)-start+1)
	for _, p := range r.stack[start:] {
		chain = append(chain, r.display(p))
	}
	chain = append(chain, r.display(path))
	msg := "Include cycle detected: " + strings.Join(chain, " -> ")
	diag.ReportError(r.reporter, diag.IncCycle, at, msg).Emit()
	trace.Point(r.tracer, trace.ScopePass, "include.cycle", msg, r.parent)
}

func (r *resolver) reportLoadError(path string, at source.Span, err error) {
	r.failed = true
	if errors.Is(err, fs.ErrNotExist) {
		diag.ReportError(r.reporter, diag.IncMissingFile, at,
			fmt.Sprintf("included file %q not found", r.display(path))).Emit()
		return
	}
	diag.ReportError(r.reporter, diag.IncReadError, at,
		fmt.Sprintf("cannot read %q: %v", r.display(path), err)).Emit()
}

func (r *resolver) display(path string) string {
	if r.workDir == "" {
		return path
	}
	rel, err := source.RelativePath(path, source.NormalizePath(r.workDir, ""))
	if err != nil || strings.HasPrefix(rel, "../") {
		return path
	}
	return rel
}

func resultDetail(res Result) string {
	switch {
	case res.Cyclic:
		return "cycle"
	case res.Failed:
		return "failed"
	default:
		return fmt.Sprintf("%d files", len(res.Order))
	}
}
