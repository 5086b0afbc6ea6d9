package diag

import (
	"fmt"
	"sort"
	"time"
)

// Bag is the append-only diagnostics collector of one compilation invocation.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
	// агрегаты учитывают и отброшенные по лимиту диагностики
	hasErr   bool
	hasFatal bool
	hasWarn  bool
	now      func() time.Time
}

// NewBag creates a bag holding at most max diagnostics; max <= 0 means no limit.
func NewBag(max int) *Bag {
	capHint := max
	if capHint <= 0 || capHint > 256 {
		capHint = 256
	}
	return &Bag{
		items: make([]Diagnostic, 0, capHint),
		max:   max,
		now:   time.Now,
	}
}

// SetClock replaces the timestamp source. Tests use it for stable output.
func (b *Bag) SetClock(now func() time.Time) {
	if now != nil {
		b.now = now
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if d.Kind == 0 {
		d.Kind = d.Code.Kind()
	}
	if d.Time.IsZero() {
		d.Time = b.now()
	}
	switch {
	case d.Severity >= SevFatal:
		b.hasFatal = true
		b.hasErr = true
	case d.Severity == SevError:
		b.hasErr = true
	case d.Severity == SevWarning:
		b.hasWarn = true
	}
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Cap returns the configured limit (0 when unlimited).
func (b *Bag) Cap() int {
	return b.max
}

// Dropped counts diagnostics rejected by the limit.
func (b *Bag) Dropped() int {
	return b.dropped
}

// HasErrors reports whether any Error or Fatal diagnostic was added.
func (b *Bag) HasErrors() bool {
	return b.hasErr
}

// HasFatal reports whether any Fatal diagnostic was added.
func (b *Bag) HasFatal() bool {
	return b.hasFatal
}

// HasWarnings reports whether any Warning diagnostic was added.
func (b *Bag) HasWarnings() bool {
	return b.hasWarn
}

// длина
func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез! (он указывает на внутренний массив Bag)
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// ByKind returns the diagnostics of kind k in insertion order.
func (b *Bag) ByKind(k Kind) []Diagnostic {
	return b.filter(func(d *Diagnostic) bool { return d.Kind == k })
}

// BySeverity returns the diagnostics with exactly severity s.
func (b *Bag) BySeverity(s Severity) []Diagnostic {
	return b.filter(func(d *Diagnostic) bool { return d.Severity == s })
}

// Errors returns Error and Fatal diagnostics.
func (b *Bag) Errors() []Diagnostic {
	return b.filter(func(d *Diagnostic) bool { return d.Severity.IsError() })
}

func (b *Bag) filter(keep func(*Diagnostic) bool) []Diagnostic {
	var out []Diagnostic
	for i := range b.items {
		if keep(&b.items[i]) {
			out = append(out, b.items[i])
		}
	}
	return out
}

// Merge appends diagnostics from other, raising the limit if needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if newTotal := len(b.items) + len(other.items); b.max > 0 && newTotal > b.max {
		b.max = newTotal
	}
	b.items = append(b.items, other.items...)
	b.dropped += other.dropped
	b.hasErr = b.hasErr || other.hasErr
	b.hasFatal = b.hasFatal || other.hasFatal
	b.hasWarn = b.hasWarn || other.hasWarn
}

// PromoteWarnings turns every warning into an error (warnings-as-errors mode).
func (b *Bag) PromoteWarnings() {
	for i := range b.items {
		if b.items[i].Severity == SevWarning {
			b.items[i].Severity = SevError
			b.hasErr = true
		}
	}
	b.hasWarn = false
}

// Sort сортирует диагностики по: file, start, end, severity (desc), code (asc)
// для стабильного и детерминированного порядка вывода.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start.Before(dj.Primary.Start)
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End.Before(dj.Primary.End)
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// простая дедупликация (по Code+Primary+Message)
func (b *Bag) Dedup() {
	seen := make(map[string]bool)
	newitems := make([]Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		key := fmt.Sprintf("%s:%s:%s", d.Code.ID(), d.Primary.String(), d.Message)
		if seen[key] {
			continue
		}
		seen[key] = true
		newitems = append(newitems, d)
	}
	b.items = newitems
}
