// Package document implements the workspace's document store: versioned
// open-document buffers, incremental edit application, and line/column
// conversion, synchronized via the snapshot-then-release lock pattern.
package document

import "strings"

// chunkTarget is the rough byte size rope splits and joins chunks around.
// Perl source files are modest (tens of KB); a larger chunk than a typical
// rope library would use keeps edit/rebuild costs low without needing a
// balanced-tree implementation.
const chunkTarget = 4096

// Rope is a chunked immutable-segment buffer. An edit flattens the text,
// splices it, and re-chunks the result; no chunks are shared between
// the old and new rope.
// It is not a balanced tree - Perl-LSP workloads are single-digit-MB
// source files, where a flat chunk list edits and reads fast enough
// without the complexity of a real rope (no third-party rope crate
// exists anywhere in the retrieved reference set).
type Rope struct {
	chunks []string
}

// NewRope builds a Rope from flat text, splitting it into chunks.
func NewRope(text string) *Rope {
	r := &Rope{}
	r.chunks = splitChunks(text)
	return r
}

func splitChunks(text string) []string {
	if text == "" {
		return nil
	}
	var chunks []string
	for len(text) > chunkTarget {
		cut := chunkTarget
		// Don't split a UTF-8 sequence or a CRLF pair across chunks.
		for cut > 0 && isUTF8Continuation(text[cut]) {
			cut--
		}
		if cut > 0 && text[cut-1] == '\r' && cut < len(text) && text[cut] == '\n' {
			cut--
		}
		if cut == 0 {
			cut = chunkTarget
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

func isUTF8Continuation(b byte) bool { return b&0xC0 == 0x80 }

// String flattens the rope back into a single string.
func (r *Rope) String() string {
	if len(r.chunks) == 1 {
		return r.chunks[0]
	}
	var b strings.Builder
	for _, c := range r.chunks {
		b.WriteString(c)
	}
	return b.String()
}

// Len returns the total byte length.
func (r *Rope) Len() int {
	n := 0
	for _, c := range r.chunks {
		n += len(c)
	}
	return n
}

// Splice returns a new Rope with [start, end) replaced by replacement.
// The receiver is left untouched (documents hand out read-only
// snapshots; a new version is always a new Rope).
func (r *Rope) Splice(start, end int, replacement string) *Rope {
	text := r.String()
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start > end {
		start = end
	}
	next := text[:start] + replacement + text[end:]
	return NewRope(next)
}
