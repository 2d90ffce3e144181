package index

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Budgets bounds the background scanner's cost.
type Budgets struct {
	MaxFiles            int
	InitialScanBudget   time.Duration
	IncrementalBudget   time.Duration
	SettleWindow        time.Duration
	ParseStormWindow    time.Duration
	ParseStormThreshold int
	ScanConcurrency     int64
}

// DefaultBudgets returns conservative defaults suitable for a
// medium-sized workspace.
func DefaultBudgets() Budgets {
	return Budgets{
		MaxFiles:            20000,
		InitialScanBudget:   10 * time.Second,
		IncrementalBudget:   2 * time.Second,
		SettleWindow:        1500 * time.Millisecond,
		ParseStormWindow:    500 * time.Millisecond,
		ParseStormThreshold: 20,
		ScanConcurrency:     8,
	}
}

var ignoredDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true, "node_modules": true,
	"target": true, ".cache": true, "blib": true, "_build": true,
}

func isPerlSource(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pl", ".pm", ".t", ".psgi":
		return true
	default:
		return false
	}
}

// Coordinator is the lifecycle-aware front for a SymbolIndex: it owns
// the background scanner, the file watcher wiring, and the state
// machine handlers route queries through.
type Coordinator struct {
	state   *stateBox
	idx     *SymbolIndex
	budgets Budgets
	root    string

	mu          sync.Mutex
	recentEdits []time.Time
	settleTimer *time.Timer
}

// NewCoordinator returns a coordinator over an empty index, in the
// Building phase, rooted at root (the single workspace folder for the
// initial scan).
func NewCoordinator(root string, budgets Budgets) *Coordinator {
	return &Coordinator{
		state:   newStateBox(),
		idx:     NewSymbolIndex(),
		budgets: budgets,
		root:    root,
	}
}

// State returns a lock-free snapshot of the coordinator's lifecycle.
func (c *Coordinator) State() State { return c.state.load() }

// Index returns the underlying index for mutating handlers (file
// watcher and text sync). Read handlers must not call this directly;
// they go through RouteIndexAccess.
func (c *Coordinator) Index() *SymbolIndex { return c.idx }

// NotifyChange is called before any document mutation; it feeds the
// parse-storm detector and, during Ready, may demote to Degraded if too
// many edits land within the configured window.
func (c *Coordinator) NotifyChange(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-c.budgets.ParseStormWindow)
	kept := c.recentEdits[:0]
	for _, t := range c.recentEdits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	c.recentEdits = append(kept, now)

	st := c.state.load()
	if st.Phase == PhaseReady && len(c.recentEdits) > c.budgets.ParseStormThreshold {
		c.state.store(State{Phase: PhaseDegraded, Reason: ReasonParseStorm, Files: st.Files, Symbols: st.Symbols})
		c.armSettleLocked()
	}
}

// NotifyParseComplete is called when a parse finishes; it refreshes the
// Ready-state counters from the index.
func (c *Coordinator) NotifyParseComplete(uri string) {
	st := c.state.load()
	if st.Phase == PhaseReady || st.Phase == PhaseDegraded {
		st.Files = c.idx.FileCount()
		st.Symbols = c.idx.SymbolCount()
		c.state.store(st)
	}
}

// armSettleLocked schedules the Degraded -> Recovering -> Ready
// transition once no further edits arrive within SettleWindow. Caller
// must hold c.mu.
func (c *Coordinator) armSettleLocked() {
	if c.settleTimer != nil {
		c.settleTimer.Stop()
	}
	c.settleTimer = time.AfterFunc(c.budgets.SettleWindow, c.onSettle)
}

func (c *Coordinator) onSettle() {
	c.mu.Lock()
	quiet := len(c.recentEdits) == 0 || time.Since(c.recentEdits[len(c.recentEdits)-1]) >= c.budgets.SettleWindow
	if !quiet {
		// edits are still arriving - rearm rather than leaving the
		// coordinator stuck Degraded with no further timer to check again.
		c.armSettleLocked()
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.state.store(State{Phase: PhaseRecovering, Files: c.idx.FileCount(), Symbols: c.idx.SymbolCount()})
	c.state.store(State{Phase: PhaseReady, Files: c.idx.FileCount(), Symbols: c.idx.SymbolCount()})
}

// ApplyFileChange is the three-step mutation contract the file watcher
// and text sync use: notify_change, clear+reindex (or remove), then
// notify_parse_complete. The coordinator is guaranteed to see both
// edges of the mutation.
func (c *Coordinator) ApplyFileChange(uri, content string, removed bool) {
	c.NotifyChange(uri)
	if removed {
		c.idx.RemoveFile(uri)
	} else {
		c.idx.ClearFile(uri)
		c.idx.IndexFile(uri, ExtractFileSymbols(uri, content))
	}
	c.NotifyParseComplete(uri)
}

// RunInitialScan walks root looking for Perl sources, indexing each
// with bounded concurrency, yielding cooperatively, and checking
// budgets; it transitions Building -> Ready on success or -> Degraded
// on any budget breach.
func (c *Coordinator) RunInitialScan(ctx context.Context) {
	deadline := time.Now().Add(c.budgets.InitialScanBudget)
	sem := semaphore.NewWeighted(c.budgets.ScanConcurrency)
	g, gctx := errgroup.WithContext(ctx)

	seen := 0
	degraded := false
	var reason DegradationReason

	walkErr := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() {
			if ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !isPerlSource(path) {
			return nil
		}

		seen++
		if seen&0x3f == 0 {
			c.state.store(State{Phase: PhaseBuilding, Seen: seen})
			if time.Now().After(deadline) {
				degraded = true
				reason = ReasonScanBudgetExceeded
				return filepath.SkipAll
			}
		}
		if seen > c.budgets.MaxFiles {
			degraded = true
			reason = ReasonFileLimitExceeded
			return filepath.SkipAll
		}

		uri := "file://" + path
		if err := sem.Acquire(gctx, 1); err != nil {
			return err
		}
		g.Go(func() error {
			defer sem.Release(1)
			content, err := os.ReadFile(path)
			if err != nil {
				return nil
			}
			c.idx.IndexFile(uri, ExtractFileSymbols(uri, string(content)))
			return nil
		})
		return nil
	})

	_ = g.Wait()

	if walkErr != nil && walkErr != filepath.SkipAll {
		degraded = true
		reason = ReasonScanBudgetExceeded
	}

	if degraded {
		c.state.store(State{Phase: PhaseDegraded, Reason: reason, Files: c.idx.FileCount(), Symbols: c.idx.SymbolCount()})
		c.mu.Lock()
		c.armSettleLocked()
		c.mu.Unlock()
		return
	}

	c.state.store(State{Phase: PhaseReady, Files: c.idx.FileCount(), Symbols: c.idx.SymbolCount()})
}
