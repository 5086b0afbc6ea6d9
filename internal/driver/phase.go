package driver

import (
	"time"

	"flume/internal/diag"
	"flume/internal/include"
)

// Phase is the contract every pipeline step satisfies. The driver stops
// after the first phase that asks to.
type Phase interface {
	Name() string
	StopOnError() bool
}

// IncludePhase wraps the include resolution outcome.
type IncludePhase struct{ Result include.Result }

func (IncludePhase) Name() string { return "include" }

// StopOnError: a cycle or an unreadable file leaves no usable order.
func (p IncludePhase) StopOnError() bool { return p.Result.Failed }

// LoadPhase covers obtaining and lowering AST documents.
type LoadPhase struct {
	Bag *diag.Bag
}

func (LoadPhase) Name() string { return "parse" }

func (p LoadPhase) StopOnError() bool { return p.Bag != nil && p.Bag.HasErrors() }

// LintPhase is observed only; findings never stop the pipeline on their own.
type LintPhase struct {
	Bag *diag.Bag
}

func (LintPhase) Name() string { return "lint" }

func (p LintPhase) StopOnError() bool { return p.Bag != nil && p.Bag.HasErrors() }

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a phase boundary.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
	Stop    bool // only on PhaseEnd
}

// PhaseObserver receives phase events emitted during Compile.
type PhaseObserver func(PhaseEvent)

func (o PhaseObserver) start(name string) time.Time {
	if o != nil {
		o(PhaseEvent{Name: name, Status: PhaseStart})
	}
	return time.Now()
}

func (o PhaseObserver) end(p Phase, began time.Time) {
	if o != nil {
		o(PhaseEvent{Name: p.Name(), Status: PhaseEnd, Elapsed: time.Since(began), Stop: p.StopOnError()})
	}
}
