package index

import (
	"sort"
	"strings"
	"sync"
)

// SymbolIndex is the mapping from SymbolKey to Symbol plus the inverted
// file -> symbol-keys index, mutated only through clear_file/index_file
// and read only through its query methods.
type SymbolIndex struct {
	mu sync.RWMutex

	symbols map[SymbolKey]*Symbol
	byFile  map[string]map[SymbolKey]bool
}

// NewSymbolIndex returns an empty index.
func NewSymbolIndex() *SymbolIndex {
	return &SymbolIndex{
		symbols: make(map[SymbolKey]*Symbol),
		byFile:  make(map[string]map[SymbolKey]bool),
	}
}

// FileSymbol is one symbol fact extracted while indexing a file: either
// a definition or a reference, contributing to the same SymbolKey.
type FileSymbol struct {
	Key       SymbolKey
	Kind      SymbolKind
	Location  Location
	IsDefSite bool
}

// ClearFile removes every symbol contribution previously recorded for
// uri, pruning symbols left with no definition and no references.
func (idx *SymbolIndex) ClearFile(uri string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.clearFileLocked(uri)
}

func (idx *SymbolIndex) clearFileLocked(uri string) {
	keys, ok := idx.byFile[uri]
	if !ok {
		return
	}
	for key := range keys {
		sym, ok := idx.symbols[key]
		if !ok {
			continue
		}
		if sym.DefinedAt.URI == uri {
			sym.DefinedAt = Location{}
		}
		filtered := sym.References[:0]
		for _, ref := range sym.References {
			if ref.URI != uri {
				filtered = append(filtered, ref)
			}
		}
		sym.References = filtered
		if sym.DefinedAt.URI == "" && len(sym.References) == 0 {
			delete(idx.symbols, key)
		}
	}
	delete(idx.byFile, uri)
}

// IndexFile adds facts as uri's contribution to the index. Callers
// are expected to call ClearFile first (the coordinator's
// notify_change/index_file pairing does this for them); IndexFile itself
// only adds.
func (idx *SymbolIndex) IndexFile(uri string, facts []FileSymbol) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	seen := make(map[SymbolKey]bool, len(facts))
	for _, f := range facts {
		seen[f.Key] = true
		sym, ok := idx.symbols[f.Key]
		if !ok {
			sym = &Symbol{Key: f.Key, Kind: f.Kind}
			idx.symbols[f.Key] = sym
		}
		if f.IsDefSite {
			sym.DefinedAt = f.Location
		} else {
			sym.References = append(sym.References, f.Location)
		}
	}
	idx.byFile[uri] = seen
}

// RemoveFile is ClearFile without adding anything back, for a file that
// no longer exists on disk.
func (idx *SymbolIndex) RemoveFile(uri string) { idx.ClearFile(uri) }

// FileCount and SymbolCount report the Ready-state summary counters.
func (idx *SymbolIndex) FileCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.byFile)
}

func (idx *SymbolIndex) SymbolCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.symbols)
}

// Lookup returns the symbol for an exact key, if present.
func (idx *SymbolIndex) Lookup(key SymbolKey) (*Symbol, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	sym, ok := idx.symbols[key]
	return sym, ok
}

// Search returns every symbol whose name contains query
// (case-insensitive), sorted by (defining URI, start offset, name) to
// give workspace/symbol a stable order. cap bounds the result count;
// yield is called every 64 candidates considered, for cooperative
// yielding on large workspaces.
func (idx *SymbolIndex) Search(query string, cap int, yield func()) []*Symbol {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	q := strings.ToLower(query)
	var out []*Symbol
	i := 0
	for _, sym := range idx.symbols {
		i++
		if yield != nil && i&0x3f == 0 {
			yield()
		}
		if q != "" && !strings.Contains(strings.ToLower(sym.Key.Name), q) {
			continue
		}
		out = append(out, sym)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DefinedAt.URI != b.DefinedAt.URI {
			return a.DefinedAt.URI < b.DefinedAt.URI
		}
		if a.DefinedAt.Range.Start.Offset != b.DefinedAt.Range.Start.Offset {
			return a.DefinedAt.Range.Start.Offset < b.DefinedAt.Range.Start.Offset
		}
		return a.Key.Name < b.Key.Name
	})

	if len(out) > cap {
		out = out[:cap]
	}
	return out
}
