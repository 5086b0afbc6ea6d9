package sema

import (
	"fmt"

	"flume/internal/ast"
	"flume/internal/diag"
	"flume/internal/name"
	"flume/internal/source"
	"flume/internal/symbols"
	"flume/internal/types"
)

// bindStatements resolves the stream of every READ/WRITE/EXPLAIN and
// validates its expressions against the stream's record fields.
func (bd *binder) bindStatements(script *ast.Script) {
	for _, id := range script.Stmts {
		bd.bindStmt(id)
	}
}

func (bd *binder) bindStmt(id ast.StmtID) {
	stmt := bd.b.Stmts.Get(id)
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case ast.StmtRead:
		env, _, ok := bd.streamEnv(id, stmt)
		if !ok {
			return
		}
		for _, expr := range stmt.Projection {
			bd.validator.Infer(expr, env)
		}
		if stmt.Where.IsValid() {
			bd.validator.Condition(stmt.Where, env)
		}
	case ast.StmtWrite:
		env, record, ok := bd.streamEnv(id, stmt)
		if !ok {
			return
		}
		info, _ := bd.types.StructInfo(bd.types.Underlying(record))
		seen := make(map[string]source.Span, len(stmt.Assignments))
		for _, a := range stmt.Assignments {
			fieldName := bd.b.Str(a.Field)
			key := name.Fold(fieldName)
			if prev, dup := seen[key]; dup {
				if b := diag.ReportError(bd.reporter, diag.ResDuplicateMember, a.FieldSpan,
					fmt.Sprintf("field %q is assigned more than once", fieldName)); b != nil {
					b.WithNote(prev, "first assigned here").Emit()
				}
				continue
			}
			seen[key] = a.FieldSpan
			f, ok := info.Field(fieldName)
			if !ok {
				bd.report(diag.SemaUnknownField, a.FieldSpan, "stream %s has no field %q", bd.b.Str(stmt.Stream), fieldName)
				continue
			}
			bd.validator.Align(a.Value, f.Type, env)
		}
	case ast.StmtExplain:
		if inner := bd.b.Stmts.Get(stmt.Inner); inner != nil && (inner.Kind == ast.StmtRead || inner.Kind == ast.StmtWrite) {
			bd.bindStmt(stmt.Inner)
		}
	}
}

// streamEnv resolves the statement's stream. ok is false when the stream
// is unknown or its record type is unusable; that was reported already.
// Statements only appear at script top level, so the lookup starts at the
// root.
func (bd *binder) streamEnv(id ast.StmtID, stmt *ast.Stmt) (Env, types.TypeID, bool) {
	ref := bd.b.Str(stmt.Stream)
	span := spanOr(stmt.StreamSpan, stmt.Span)
	symID, ok := bd.table.Resolve(name.NoName, ref)
	if !ok {
		bd.report(diag.ResUnknownStream, span, "unknown stream %q", ref)
		return Env{}, types.NoTypeID, false
	}
	sym := bd.table.Get(symID)
	if sym.Kind != symbols.SymbolStream {
		if b := diag.ReportError(bd.reporter, diag.ResNotAStream, span,
			fmt.Sprintf("%q is a %s, not a stream", ref, sym.Kind)); b != nil {
			b.WithNotef(sym.Span, "%s declared here", bd.table.Display(symID)).Emit()
		}
		return Env{}, types.NoTypeID, false
	}
	bd.bindings.setStmtStream(id, symID)
	record, ok := bd.bindings.DeclType(sym.Decl)
	if !ok || bd.types.KindOf(bd.types.Underlying(record)) != types.KindStruct {
		return Env{}, types.NoTypeID, false
	}
	return StructEnv(bd.types, record), record, true
}
