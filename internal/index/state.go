// Package index implements the lifecycle-aware workspace symbol index:
// a budgeted background scanner, an fsnotify-driven watcher, and a
// state machine whose current value is lock-free readable by handlers
// deciding whether to query the index directly or fall back to
// scanning open documents.
package index

import (
	"fmt"
	"sync/atomic"
)

// Phase is the closed set of lifecycle phases the coordinator moves
// through. The zero value is Building, matching a coordinator that has
// not yet started its initial scan.
type Phase int

const (
	PhaseBuilding Phase = iota
	PhaseReady
	PhaseDegraded
	PhaseRecovering
)

func (p Phase) String() string {
	switch p {
	case PhaseBuilding:
		return "Building"
	case PhaseReady:
		return "Ready"
	case PhaseDegraded:
		return "Degraded"
	case PhaseRecovering:
		return "Recovering"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// DegradationReason explains why the coordinator left Ready or never
// reached it.
type DegradationReason int

const (
	ReasonNone DegradationReason = iota
	ReasonFileLimitExceeded
	ReasonScanBudgetExceeded
	ReasonIndexBudgetExceeded
	ReasonParseStorm
)

func (r DegradationReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonFileLimitExceeded:
		return "file limit exceeded"
	case ReasonScanBudgetExceeded:
		return "scan time budget exceeded"
	case ReasonIndexBudgetExceeded:
		return "indexing time budget exceeded"
	case ReasonParseStorm:
		return "parse storm"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of the coordinator's lifecycle. State()
// returns a freshly loaded copy; it is never mutated in place.
type State struct {
	Phase   Phase
	Reason  DegradationReason
	Files   int
	Symbols int
	Seen    int // files_seen so far, meaningful while Building
	Total   int // total files discovered, meaningful while Building
}

// stateBox holds the current State behind an atomic.Value so State()
// never blocks on the coordinator's mutation path.
type stateBox struct {
	v atomic.Value // State
}

func newStateBox() *stateBox {
	b := &stateBox{}
	b.store(State{Phase: PhaseBuilding})
	return b
}

func (b *stateBox) store(s State) { b.v.Store(s) }

func (b *stateBox) load() State { return b.v.Load().(State) }
