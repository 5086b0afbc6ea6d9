package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"flume/internal/ast"
	"flume/internal/astio"
	"flume/internal/diag"
	"flume/internal/include"
	"flume/internal/source"
	"flume/internal/trace"
)

// loaded is the parser output of one unit; index matches the include order.
type loaded struct {
	doc *astio.Document
	err error
}

// loadDocuments asks the parser for every unit concurrently. The FileSet
// is only read here; all files were loaded by include resolution.
// Only cancellation is returned as an error; per-file failures stay in
// the result slice so they can be reported in order.
func loadDocuments(ctx context.Context, fs *source.FileSet, units []include.Unit, parser Parser, jobs int) ([]loaded, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]loaded, len(units))
	if len(units) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			file := fs.Get(u.File)
			if file == nil {
				results[i] = loaded{err: fmt.Errorf("%s: file not loaded", u.Path)}
				return nil
			}
			doc, err := parser.Parse(gctx, file)
			if err != nil && isCancel(err) {
				return err
			}
			results[i] = loaded{doc: doc, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// lowerDocuments adds every document to b in include order. Documents
// that failed to load or lower become Syntax diagnostics.
func lowerDocuments(ctx context.Context, b *ast.Builder, units []include.Unit, docs []loaded, r diag.Reporter) []ast.ScriptID {
	span, _ := trace.StartSpan(ctx, trace.ScopeDriver, "driver.lower")
	scripts := make([]ast.ScriptID, 0, len(units))
	for i, u := range units {
		err := docs[i].err
		if err == nil {
			var id ast.ScriptID
			if id, err = astio.Lower(b, u.File, docs[i].doc); err == nil {
				scripts = append(scripts, id)
				continue
			}
		}
		diag.ReportError(r, diag.SynMalformedScript, fileSpan(u.File), err.Error()).Emit()
	}
	span.End(fmt.Sprintf("%d/%d scripts", len(scripts), len(units)))
	return scripts
}

// fileSpan points at the start of a file when no node is available.
func fileSpan(id source.FileID) source.Span {
	start := source.Pos{Line: 1, Col: 1}
	return source.Span{File: id, Start: start, End: start}
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
