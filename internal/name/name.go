// Package name implements case-insensitive qualified identifiers.
//
// A Name is a handle into a Registry. The registry is owned by one
// compilation invocation; two handles from the same registry are equal
// iff their folded canonical strings match, and the first spelling seen
// is kept for display.
package name

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Name is an interned qualified identifier.
type Name uint32

// NoName is the root (empty) name.
const NoName Name = 0

func (n Name) IsValid() bool { return n != NoName }

// Separator joins context and local parts.
const Separator = "."

type entry struct {
	key     string // folded canonical form
	display string // first spelling
	context Name
	local   string
}

// Registry interns names for one invocation.
type Registry struct {
	entries []entry
	index   map[string]Name
}

// NewRegistry creates an empty registry; index 0 is the root sentinel.
func NewRegistry() *Registry {
	return &Registry{
		entries: make([]entry, 1, 64),
		index:   make(map[string]Name, 64),
	}
}

// Fold returns the comparison key of s: NFC-normalized and case-folded.
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// Intern registers a dotted qualified identifier and returns its handle.
// Every prefix is interned as well, so Context walks back to the root.
func (r *Registry) Intern(qualified string) Name {
	qualified = strings.TrimSpace(qualified)
	if qualified == "" {
		return NoName
	}
	ctx := NoName
	for part := range strings.SplitSeq(qualified, Separator) {
		ctx = r.Qualify(ctx, part)
	}
	return ctx
}

// Qualify returns the handle for ctx + "." + local; an empty context means root.
func (r *Registry) Qualify(ctx Name, local string) Name {
	if local == "" {
		return ctx
	}
	display := local
	if ctx.IsValid() {
		display = r.entries[ctx].display + Separator + local
	}
	key := Fold(display)
	if id, ok := r.index[key]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(r.entries))
	if err != nil {
		panic(fmt.Errorf("name registry overflow: %w", err))
	}
	id := Name(n)
	r.entries = append(r.entries, entry{key: key, display: display, context: ctx, local: local})
	r.index[key] = id
	return id
}

// Lookup finds an already interned name without registering it.
func (r *Registry) Lookup(qualified string) (Name, bool) {
	id, ok := r.index[Fold(qualified)]
	return id, ok
}

// Resolve looks up local relative to ctx and then every enclosing context
// up to the root, returning the innermost match.
func (r *Registry) Resolve(ctx Name, local string) (Name, bool) {
	for {
		candidate := local
		if ctx.IsValid() {
			candidate = r.entries[ctx].display + Separator + local
		}
		if id, ok := r.Lookup(candidate); ok {
			return id, true
		}
		if !ctx.IsValid() {
			return NoName, false
		}
		ctx = r.entries[ctx].context
	}
}

// String returns the display form ("" for the root).
func (r *Registry) String(n Name) string {
	if !r.valid(n) {
		return ""
	}
	return r.entries[n].display
}

// Key returns the folded canonical form.
func (r *Registry) Key(n Name) string {
	if !r.valid(n) {
		return ""
	}
	return r.entries[n].key
}

// Context returns the enclosing name (NoName at the root).
func (r *Registry) Context(n Name) Name {
	if !r.valid(n) {
		return NoName
	}
	return r.entries[n].context
}

// Local returns the last component as first spelled.
func (r *Registry) Local(n Name) string {
	if !r.valid(n) {
		return ""
	}
	return r.entries[n].local
}

// Parts returns the display components from the root down.
func (r *Registry) Parts(n Name) []string {
	var parts []string
	for r.valid(n) && n.IsValid() {
		parts = append(parts, r.entries[n].local)
		n = r.entries[n].context
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return parts
}

// Len reports the number of interned names, excluding the root.
func (r *Registry) Len() int {
	return len(r.entries) - 1
}

func (r *Registry) valid(n Name) bool {
	return int(n) < len(r.entries)
}
