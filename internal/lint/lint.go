// Package lint runs style checks over a semantic model that bound
// without errors. Findings are ordinary diagnostics in the Lint range.
package lint

import (
	"fmt"
	"slices"
	"strings"

	"flume/internal/ast"
	"flume/internal/diag"
	"flume/internal/sema"
	"flume/internal/source"
)

// Rule is one data-driven check.
type Rule struct {
	ID          string // "FL001"
	Name        string // "unused-type"
	Code        diag.Code
	Severity    diag.Severity
	Description string
	Check       func(p *Pass)
}

// Pass carries the model into a rule and reports on its behalf.
type Pass struct {
	Model    *sema.Model
	rule     *Rule
	reporter diag.Reporter
}

// Reportf emits a finding of the running rule.
func (p *Pass) Reportf(span source.Span, format string, args ...any) {
	msg := fmt.Sprintf(format, args...) + " (" + p.rule.ID + " " + p.rule.Name + ")"
	diag.NewReportBuilder(p.reporter, p.rule.Severity, p.rule.Code, span, msg).Emit()
}

var builtin = []Rule{
	{
		ID:          "FL001",
		Name:        "unused-type",
		Code:        diag.LintUnusedType,
		Severity:    diag.SevWarning,
		Description: "struct, union, scalar or derived type that no field, stream or type refers to",
		Check:       checkUnusedTypes,
	},
	{
		ID:          "FL002",
		Name:        "empty-type",
		Code:        diag.LintEmptyType,
		Severity:    diag.SevWarning,
		Description: "struct, enum or union declared without members",
		Check:       checkEmptyTypes,
	},
	{
		ID:          "FL003",
		Name:        "stream-timestamp",
		Code:        diag.LintStreamNoTimestamp,
		Severity:    diag.SevInfo,
		Description: "stream without a TIMESTAMP field",
		Check:       checkStreamTimestamp,
	},
}

// Rules lists the built-in rules.
func Rules() []Rule {
	return slices.Clone(builtin)
}

// Linter runs the enabled rules in ID order.
type Linter struct {
	rules []Rule
}

// New enables every built-in rule except those named in disabled (by ID
// or name, case-insensitive). Unknown names are returned as an error.
func New(disabled []string) (*Linter, error) {
	off := make(map[string]bool, len(disabled))
	for _, d := range disabled {
		key := strings.ToLower(strings.TrimSpace(d))
		if !slices.ContainsFunc(builtin, func(r Rule) bool {
			return strings.ToLower(r.ID) == key || r.Name == key
		}) {
			return nil, fmt.Errorf("unknown lint rule %q", d)
		}
		off[key] = true
	}
	l := &Linter{}
	for _, r := range builtin {
		if !off[strings.ToLower(r.ID)] && !off[r.Name] {
			l.rules = append(l.rules, r)
		}
	}
	return l, nil
}

// Enabled returns the active rules.
func (l *Linter) Enabled() []Rule {
	return slices.Clone(l.rules)
}

// Lint runs every enabled rule over m.
func (l *Linter) Lint(m *sema.Model, r diag.Reporter) {
	if m == nil || r == nil {
		return
	}
	for i := range l.rules {
		l.rules[i].Check(&Pass{Model: m, rule: &l.rules[i], reporter: r})
	}
}

func declSpan(b *ast.Builder, id ast.DeclID) source.Span {
	d := b.Decls.Get(id)
	if !d.NameSpan.IsNone() {
		return d.NameSpan
	}
	return d.Span
}
