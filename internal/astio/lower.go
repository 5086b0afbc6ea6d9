package astio

import (
	"flume/internal/ast"
	"flume/internal/source"
)

// Lower validates doc and appends it to b as a new script of file.
// The script path is doc.Path.
func Lower(b *ast.Builder, file source.FileID, doc *Document) (ast.ScriptID, error) {
	if err := doc.Validate(); err != nil {
		return ast.NoScriptID, err
	}
	l := lowerer{b: b, file: file}
	script := b.NewScript(file, doc.Path, l.scriptSpan(doc))
	for _, inc := range doc.Includes {
		b.AddInclude(script, inc.Path, l.span(inc.Span))
	}
	for i := range doc.Statements {
		l.stmt(script, &doc.Statements[i])
	}
	return script, nil
}

type lowerer struct {
	b    *ast.Builder
	file source.FileID
}

func (l *lowerer) span(s Span) source.Span {
	if s.Start.Line == 0 {
		return source.NoSpan
	}
	end := s.End
	if end.Line == 0 {
		end = s.Start
	}
	return source.Span{
		File:  l.file,
		Start: source.Pos{Line: s.Start.Line, Col: s.Start.Col},
		End:   source.Pos{Line: end.Line, Col: end.Col},
	}
}

func (l *lowerer) scriptSpan(doc *Document) source.Span {
	spans := make([]source.Span, 0, len(doc.Statements))
	for i := range doc.Statements {
		if sp := l.span(doc.Statements[i].Span); !sp.IsNone() {
			spans = append(spans, sp)
		}
	}
	return source.MergeAll(spans)
}

func (l *lowerer) stmt(script ast.ScriptID, s *Stmt) {
	switch s.Kind {
	case KindContext, KindStream, KindType:
		l.b.PushDecl(script, l.decl(s))
	default:
		l.b.PushStmt(script, l.query(s))
	}
}

func (l *lowerer) query(s *Stmt) ast.StmtID {
	sp := l.span(s.Span)
	switch s.Kind {
	case KindRead:
		projection := make([]ast.ExprID, 0, len(s.Projection))
		for i := range s.Projection {
			projection = append(projection, l.expr(&s.Projection[i]))
		}
		where := ast.NoExprID
		if s.Where != nil {
			where = l.expr(s.Where)
		}
		return l.b.Stmts.NewRead(sp, l.b.Intern(s.Stream), l.span(s.StreamSpan), projection, where)
	case KindWrite:
		assigns := make([]ast.Assignment, 0, len(s.Assignments))
		for i := range s.Assignments {
			a := &s.Assignments[i]
			assigns = append(assigns, ast.Assignment{
				Field:     l.b.Intern(a.Field),
				FieldSpan: l.span(a.FieldSpan),
				Value:     l.expr(&a.Value),
			})
		}
		return l.b.Stmts.NewWrite(sp, l.b.Intern(s.Stream), l.span(s.StreamSpan), assigns)
	default: // explain
		return l.b.Stmts.NewExplain(sp, l.query(s.Inner))
	}
}

func (l *lowerer) decl(s *Stmt) ast.DeclID {
	sp, nameID, nameSpan := l.span(s.Span), l.b.Intern(s.Name), l.span(s.NameSpan)
	var id ast.DeclID
	switch s.Kind {
	case KindContext:
		decls := make([]ast.DeclID, 0, len(s.Body))
		for i := range s.Body {
			decls = append(decls, l.decl(&s.Body[i]))
		}
		id = l.b.Decls.NewContext(sp, nameID, nameSpan, decls)
	case KindStream:
		id = l.b.Decls.NewStream(sp, nameID, nameSpan, l.typeNode(s.Member))
	default:
		kind := typeDeclKinds[s.TypeKind]
		members := make([]ast.MemberID, 0, len(s.Members))
		for i := range s.Members {
			members = append(members, l.member(&s.Members[i]))
		}
		target := ast.NoTypeNodeID
		if s.Target != nil {
			target = l.typeNode(s.Target)
		}
		id = l.b.Decls.NewType(sp, nameID, nameSpan, kind, members, target)
	}
	if frags := l.fragments(s.Fragments); len(frags) > 0 {
		l.b.Decls.Attach(id, frags...)
	}
	return id
}

func (l *lowerer) member(m *Member) ast.MemberID {
	typ, value := ast.NoTypeNodeID, ast.NoExprID
	if m.Type != nil {
		typ = l.typeNode(m.Type)
	}
	if m.Value != nil {
		value = l.expr(m.Value)
	}
	id := l.b.Decls.NewMember(l.span(m.Span), l.b.Intern(m.Name), l.span(m.NameSpan), typ, value)
	if frags := l.fragments(m.Fragments); len(frags) > 0 {
		l.b.Decls.AttachMember(id, frags...)
	}
	return id
}

func (l *lowerer) fragments(frags []Fragment) []ast.FragmentID {
	if len(frags) == 0 {
		return nil
	}
	out := make([]ast.FragmentID, 0, len(frags))
	for i := range frags {
		f := &frags[i]
		sp := l.span(f.Span)
		kind := fragmentKinds[f.Kind]
		switch kind {
		case ast.FragDoc:
			out = append(out, l.b.Fragments.NewDoc(sp, f.Text))
		case ast.FragCheck, ast.FragDefault, ast.FragConstraint:
			out = append(out, l.b.Fragments.NewExpr(kind, sp, l.expr(f.Expr)))
		default:
			fields := make([]ast.FieldRef, 0, len(f.Fields))
			for _, ref := range f.Fields {
				fields = append(fields, ast.FieldRef{Name: l.b.Intern(ref.Name), Span: l.span(ref.Span)})
			}
			out = append(out, l.b.Fragments.NewFields(kind, sp, fields))
		}
	}
	return out
}

func (l *lowerer) typeNode(t *TypeNode) ast.TypeNodeID {
	sp := l.span(t.Span)
	switch typeNodeKinds[t.Kind] {
	case ast.TypeNodeList:
		return l.b.Types.NewList(sp, l.typeNode(t.Elem))
	case ast.TypeNodeMap:
		return l.b.Types.NewMap(sp, l.typeNode(t.Key), l.typeNode(t.Value))
	case ast.TypeNodeComplex:
		return l.b.Types.NewComplex(sp, l.b.Intern(t.Name))
	}
	prim, _ := ast.ParsePrimKind(t.Primitive)
	switch {
	case prim == ast.PrimDecimal && (t.Precision != nil || t.Scale != nil):
		return l.b.Types.NewDecimal(sp, deref(t.Precision), deref(t.Scale))
	case (prim == ast.PrimString || prim == ast.PrimBytes) && t.Length != nil:
		return l.b.Types.NewSized(sp, prim, *t.Length)
	}
	return l.b.Types.NewPrimitive(sp, prim)
}

func (l *lowerer) expr(e *Expr) ast.ExprID {
	sp := l.span(e.Span)
	ops := e.Operands
	switch exprShapes[e.Kind].kind {
	case ast.ExprIdent:
		return l.b.Exprs.NewIdent(sp, l.b.Intern(e.Name))
	case ast.ExprLit:
		kind, _ := parseLitKind(e.LitKind)
		return l.b.Exprs.NewLiteral(sp, kind, l.b.Intern(e.Literal))
	case ast.ExprPrefix:
		op, _ := parseOp(e.Op)
		return l.b.Exprs.NewPrefix(sp, op, l.expr(&ops[0]))
	case ast.ExprInfix:
		op, _ := parseOp(e.Op)
		return l.b.Exprs.NewInfix(sp, op, l.expr(&ops[0]), l.expr(&ops[1]))
	case ast.ExprTernary:
		op, _ := parseOp(e.Op)
		return l.b.Exprs.NewTernary(sp, op, l.expr(&ops[0]), l.expr(&ops[1]), l.expr(&ops[2]))
	case ast.ExprPostfix:
		op, _ := parseOp(e.Op)
		return l.b.Exprs.NewPostfix(sp, op, l.expr(&ops[0]))
	case ast.ExprMember:
		return l.b.Exprs.NewMember(sp, l.expr(&ops[0]), l.b.Intern(e.Name), l.span(e.NameSpan))
	case ast.ExprIndex:
		return l.b.Exprs.NewIndex(sp, l.expr(&ops[0]), l.expr(&ops[1]))
	default: // paren
		return l.b.Exprs.NewParen(sp, l.expr(&ops[0]))
	}
}

func deref(p *uint32) uint32 {
	if p == nil {
		return 0
	}
	return *p
}
