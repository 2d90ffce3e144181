// Package position implements source position and range tracking shared by
// the document store, the lexer's consumers, and the LSP runtime.
package position

import "unicode/utf16"

// Encoding is a negotiated position encoding, per LSP 3.17's
// general/positionEncoding negotiation.
type Encoding string

const (
	UTF16 Encoding = "utf-16"
	UTF8  Encoding = "utf-8"
	UTF32 Encoding = "utf-32"
)

// Position is a (byte_offset, line, column) triple. Offset is always
// authoritative; Line/Column are derived via a LineStarts cache and are
// expressed in the negotiated Encoding.
type Position struct {
	Offset int
	Line   int // 0-based
	Column int // 0-based, in units of Encoding
}

// Range is a half-open [Start, End) span of positions. Empty ranges
// (Start == End) are permitted and denote insertion points.
type Range struct {
	Start Position
	End   Position
}

// Empty reports whether r spans no text.
func (r Range) Empty() bool { return r.Start.Offset == r.End.Offset }

// LineStarts is a sorted cache of line-start byte offsets for a document,
// rebuilt in one linear pass on every edit.
type LineStarts struct {
	starts []int // starts[i] = byte offset of the first byte of line i
	length int    // total byte length of the text the cache was built from
}

// BuildLineStarts scans text once and records the offset of the first byte
// of every line. CRLF counts as one line break; the '\r' belongs to the
// previous line for column arithmetic.
func BuildLineStarts(text string) *LineStarts {
	starts := make([]int, 1, 64)
	starts[0] = 0

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			starts = append(starts, i+1)
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				continue // the \n branch above will record the next line start
			}
			starts = append(starts, i+1)
		}
	}

	return &LineStarts{starts: starts, length: len(text)}
}

// LineCount returns the number of lines represented by the cache.
func (ls *LineStarts) LineCount() int { return len(ls.starts) }

// LineStart returns the byte offset of the first byte of line (0-based).
func (ls *LineStarts) LineStart(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(ls.starts) {
		return ls.length
	}
	return ls.starts[line]
}

// LineEnd returns the byte offset one past the last content byte of line,
// excluding its trailing line break.
func (ls *LineStarts) LineEnd(line int, text string) int {
	start := ls.LineStart(line)
	next := ls.length
	if line+1 < len(ls.starts) {
		next = ls.starts[line+1]
	}
	end := next
	if end > start && end <= len(text) && text[end-1] == '\n' {
		end--
	}
	if end > start && end <= len(text) && text[end-1] == '\r' {
		end--
	}
	return end
}

// lineForOffset returns the 0-based line containing offset via binary
// search over the line-start cache.
func (ls *LineStarts) lineForOffset(offset int) int {
	lo, hi := 0, len(ls.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if ls.starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// ToPosition converts a byte offset into a Position, computing the column
// in the given encoding by scanning only the containing line.
func (ls *LineStarts) ToPosition(text string, offset int, enc Encoding) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	line := ls.lineForOffset(offset)
	lineStart := ls.LineStart(line)
	col := columnInEncoding(text[lineStart:offset], enc)

	return Position{Offset: offset, Line: line, Column: col}
}

// ToOffset converts a (line, column) pair expressed in enc back to a byte
// offset, scanning only the target line.
func (ls *LineStarts) ToOffset(text string, line, column int, enc Encoding) int {
	if line < 0 {
		line = 0
	}
	lineStart := ls.LineStart(line)
	lineEndExclusive := ls.length
	if line+1 < len(ls.starts) {
		lineEndExclusive = ls.starts[line+1]
	}
	if lineEndExclusive > len(text) {
		lineEndExclusive = len(text)
	}

	return lineStart + byteOffsetForColumn(text[lineStart:lineEndExclusive], column, enc)
}

// columnInEncoding returns the number of code units of enc spanned by s.
func columnInEncoding(s string, enc Encoding) int {
	switch enc {
	case UTF32:
		n := 0
		for range s {
			n++
		}
		return n
	case UTF8:
		return len(s)
	default: // UTF16
		n := 0
		for _, r := range s {
			n += len(utf16.Encode([]rune{r}))
		}
		return n
	}
}

// byteOffsetForColumn returns the byte offset within line that corresponds
// to the given column count in enc, clamped to the line's length.
func byteOffsetForColumn(line string, column int, enc Encoding) int {
	if column <= 0 {
		return 0
	}

	switch enc {
	case UTF32:
		count := 0
		for idx := range line {
			if count == column {
				return idx
			}
			count++
		}
		return len(line)
	case UTF8:
		if column > len(line) {
			return len(line)
		}
		return column
	default: // UTF16
		count := 0
		for idx, r := range line {
			units := len(utf16.Encode([]rune{r}))
			if count+units > column {
				return idx
			}
			count += units
			if count == column {
				return idx + runeLen(r)
			}
		}
		return len(line)
	}
}

func runeLen(r rune) int {
	if r < 0x80 {
		return 1
	} else if r < 0x800 {
		return 2
	} else if r < 0x10000 {
		return 3
	}
	return 4
}
