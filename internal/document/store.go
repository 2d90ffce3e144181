package document

import (
	"fmt"
	"sync"
)

// ErrContentModified is returned by ensure_latest-style checks when a
// request's version trails the document's current version. Handlers
// abort and the LSP layer maps this to the -32801 ContentModified error.
type ErrContentModified struct {
	URI            string
	RequestVersion int32
	CurrentVersion int32
}

func (e *ErrContentModified) Error() string {
	return fmt.Sprintf("document %s modified: request version %d, current %d", e.URI, e.RequestVersion, e.CurrentVersion)
}

// Store is the exclusive-mutation, freely-shared-read document map. All
// mutation goes through Open/Change/Save/Close, which take the lock for
// the duration of the in-memory edit only; every read handler is
// expected to call Get or SnapshotScan, copy out what it needs, and release
// the lock before doing any parsing or I/O.
type Store struct {
	mu   sync.Mutex
	docs map[string]*Document
}

// NewStore returns an empty document store.
func NewStore() *Store {
	return &Store{docs: make(map[string]*Document)}
}

// Open creates or replaces a document at uri with the given initial text.
func (s *Store) Open(uri string, version int32, text string) {
	uri = CanonicalURI(uri)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = newDocument(uri, version, text)
}

// Change applies edits in order against an already-open document: an
// edit with a nil Range replaces the whole text, and later edits apply
// on top of it. It is a no-op if the uri was never opened.
func (s *Store) Change(uri string, version int32, edits []TextEdit) {
	uri = CanonicalURI(uri)
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return
	}
	if len(edits) == 1 && edits[0].Range == nil {
		doc.applyFullChange(version, edits[0].NewText)
		return
	}
	doc.applyIncrementalChanges(version, edits)
}

// Save marks a document saved. The store tracks no separate on-disk
// copy; save is a synchronization point for callers (e.g. to trigger a
// toolrunner lint pass) rather than a state mutation here.
func (s *Store) Save(uri string) {
	_ = CanonicalURI(uri)
}

// Close removes uri from the open-document map. If the file is also
// tracked by the workspace index (as a file on disk), index entries for
// it are left untouched - closing only affects open-document tracking.
func (s *Store) Close(uri string) {
	uri = CanonicalURI(uri)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// Get returns a read-only snapshot of uri's current state. Accepts both
// raw and canonical forms.
func (s *Store) Get(uri string) (Snapshot, bool) {
	uri = CanonicalURI(uri)
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return Snapshot{}, false
	}
	return doc.snapshot(), true
}

// SnapshotScan clones (uri, text, ast) for every currently open document.
// This is the only supported way to iterate all open documents; the
// lock is held only for the duration of the clone.
func (s *Store) SnapshotScan() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Snapshot, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc.snapshot())
	}
	return out
}

// EnsureLatest returns ErrContentModified if uri's current version is
// ahead of reqVersion. Handlers call this before committing work keyed
// to a specific request version.
func (s *Store) EnsureLatest(uri string, reqVersion int32) error {
	uri = CanonicalURI(uri)
	s.mu.Lock()
	doc, ok := s.docs[uri]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	if doc.Version > reqVersion {
		return &ErrContentModified{URI: uri, RequestVersion: reqVersion, CurrentVersion: doc.Version}
	}
	return nil
}

// Generation returns uri's current generation counter, or 0 if it is
// not open. Long-running handlers poll this at stable checkpoints to
// bail out early on concurrent edits.
func (s *Store) Generation(uri string) int64 {
	uri = CanonicalURI(uri)
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return 0
	}
	return doc.Generation()
}

// SetAST attaches a parse result to an open document, a no-op if the
// document has since closed or the generation no longer matches.
func (s *Store) SetAST(uri string, generation int64, ast *AST, errs []ParseError) {
	uri = CanonicalURI(uri)
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok || doc.Generation() != generation {
		return
	}
	doc.SetAST(ast, errs)
}
