package document

import (
	"sync/atomic"

	"golang.org/x/crypto/blake2b"

	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/position"
)

// TextEdit is one incremental edit: replace Range with NewText. A nil
// Range means a full-document replacement.
type TextEdit struct {
	Range   *position.Range
	NewText string
}

// AST is an opaque placeholder for a parsed syntax tree. The parser
// itself is out of this module's scope; documents carry whatever the
// caller last attached via SetAST, shared-immutable and swapped
// atomically on re-parse.
type AST struct {
	Root any
}

// ParseError describes one diagnostic surfaced from the last parse.
type ParseError struct {
	Range   position.Range
	Message string
}

// Document is one open buffer: its rope, a flat-text cache kept in sync
// for scan-heavy fast paths, a line-start index, and an optional AST
// that is cleared on every edit; a caller reattaches one with
// Store.SetAST. generation is bumped atomically on every mutation so callers
// can detect staleness without holding the store lock.
type Document struct {
	URI     string
	Version int32

	rope        *Rope
	text        string
	lineStarts  *position.LineStarts
	ast         *AST
	parseErrs   []ParseError
	contentHash [32]byte

	generation int64
}

// newDocument builds a Document from an initial full text at version v.
func newDocument(uri string, version int32, text string) *Document {
	d := &Document{URI: uri, Version: version}
	d.reset(text)
	return d
}

func (d *Document) reset(text string) {
	d.rope = NewRope(text)
	d.text = text
	d.lineStarts = position.BuildLineStarts(text)
	d.ast = nil
	d.parseErrs = nil
	d.contentHash = blake2b.Sum256([]byte(text))
	atomic.AddInt64(&d.generation, 1)
}

// unchanged reports whether text hashes to the same content this
// document already holds, letting no-op full-text replacements (an
// editor resending identical content on save, or a watcher rewrite
// event with no actual byte change) skip a rope rebuild and a
// generation bump.
func (d *Document) unchanged(text string) bool {
	return d.contentHash == blake2b.Sum256([]byte(text))
}

// Generation returns the current mutation counter. Any cached result
// keyed by (uri, generation) is valid as long as the generation read
// here still matches at use time.
func (d *Document) Generation() int64 { return atomic.LoadInt64(&d.generation) }

// Snapshot is the read-only (text, ast, generation) triple a handler
// clones while holding the store lock and computes against after
// releasing it.
type Snapshot struct {
	URI         string
	Version     int32
	Text        string
	LineStarts  *position.LineStarts
	AST         *AST
	ParseErrs   []ParseError
	Generation  int64
	ContentHash [32]byte
}

func (d *Document) snapshot() Snapshot {
	return Snapshot{
		URI:         d.URI,
		Version:     d.Version,
		Text:        d.text,
		LineStarts:  d.lineStarts,
		AST:         d.ast,
		ParseErrs:   append([]ParseError(nil), d.parseErrs...),
		Generation:  d.Generation(),
		ContentHash: d.contentHash,
	}
}

// SetAST attaches a freshly parsed tree and its diagnostics, replacing
// whatever was there atomically with respect to readers holding a
// snapshot from before the call (snapshots are value copies, so they
// never observe a partially updated AST).
func (d *Document) SetAST(ast *AST, errs []ParseError) {
	d.ast = ast
	d.parseErrs = errs
}

// applyFullChange replaces the document's entire text. If text hashes
// identical to the current content, only Version is bumped - the rope,
// line-start cache, and AST survive untouched.
func (d *Document) applyFullChange(version int32, text string) {
	if d.unchanged(text) {
		d.Version = version
		return
	}
	d.Version = version
	d.reset(text)
}

// applyIncrementalChanges applies edits in order against the rope, then
// rebuilds the flat text and line-start caches in one pass, and clears
// the AST (re-parse is the caller's responsibility, lazily, off this
// call path).
func (d *Document) applyIncrementalChanges(version int32, edits []TextEdit) {
	rope := d.rope
	for _, e := range edits {
		if e.Range == nil {
			rope = NewRope(e.NewText)
			continue
		}
		current := rope.String()
		ls := position.BuildLineStarts(current)
		start := ls.ToOffset(current, e.Range.Start.Line, e.Range.Start.Column, position.UTF16)
		end := ls.ToOffset(current, e.Range.End.Line, e.Range.End.Column, position.UTF16)
		rope = rope.Splice(start, end, e.NewText)
	}
	d.Version = version
	d.reset(rope.String())
}
