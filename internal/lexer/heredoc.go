package lexer

import "strings"

// heredocFollows looks past "<<", an optional "~", and horizontal
// whitespace to confirm a real heredoc tag follows (a bareword start, or
// a quote character). Without this check "<<" would be misread as a
// heredoc in contexts where it is really the left-shift operator.
func (l *Lexer) heredocFollows() bool {
	p := l.pos + 2
	if p < len(l.src) && l.src[p] == '~' {
		p++
	}
	for p < len(l.src) && (l.src[p] == ' ' || l.src[p] == '\t') {
		p++
	}
	if p >= len(l.src) {
		return false
	}
	switch l.src[p] {
	case '"', '\'', '`':
		return true
	default:
		return isIdentStart(l.src[p])
	}
}

// lexHeredocStart parses "<<[~][quote]TAG[quote]", queues the tag for
// drainHeredocBodies, and emits a HeredocStart token.
func (l *Lexer) lexHeredocStart(start int) Token {
	l.pos += 2 // consume "<<"

	indented := false
	if l.pos < len(l.src) && l.src[l.pos] == '~' {
		indented = true
		l.pos++
	}

	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}

	var tag string
	interpolate := true

	if l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '"':
			l.pos++
			b := l.pos
			for l.pos < len(l.src) && l.src[l.pos] != '"' {
				l.pos++
			}
			tag = l.src[b:l.pos]
			if l.pos < len(l.src) {
				l.pos++
			}
			interpolate = true
		case '\'':
			l.pos++
			b := l.pos
			for l.pos < len(l.src) && l.src[l.pos] != '\'' {
				l.pos++
			}
			tag = l.src[b:l.pos]
			if l.pos < len(l.src) {
				l.pos++
			}
			interpolate = false
		case '`':
			l.pos++
			b := l.pos
			for l.pos < len(l.src) && l.src[l.pos] != '`' {
				l.pos++
			}
			tag = l.src[b:l.pos]
			if l.pos < len(l.src) {
				l.pos++
			}
			interpolate = true
		default:
			b := l.pos
			for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
				l.pos++
			}
			tag = l.src[b:l.pos]
			interpolate = true
		}
	}

	l.pendingHeredocs = append(l.pendingHeredocs, HeredocTag{
		Tag:         tag,
		Indented:    indented,
		Interpolate: interpolate,
	})

	return l.emit(KindHeredocStart, start)
}

// drainHeredocBodies is called right after a newline token whenever
// pendingHeredocs is non-empty. It consumes one body per queued tag, in
// the order the tags were opened, and queues a HeredocBody (or, on an
// unterminated heredoc, an Error) token per tag onto pendingBodies for
// NextToken to hand out one at a time.
//
// A body token's Lexeme spans from right after the opening line's
// newline through and including the terminator line and its trailing
// newline, so lexeme concatenation still reconstructs the source exactly;
// HeredocContent strips the terminator back out for callers that want
// just the interpolated text.
func (l *Lexer) drainHeredocBodies() {
	queue := l.pendingHeredocs
	l.pendingHeredocs = nil

	for _, tag := range queue {
		start := l.pos
		terminated := false

		for l.pos < len(l.src) {
			lineStart := l.pos
			lineEnd := lineStart
			for lineEnd < len(l.src) && l.src[lineEnd] != '\n' {
				lineEnd++
			}
			hasNL := lineEnd < len(l.src)
			line := l.src[lineStart:lineEnd]

			if trimForTerminator(line, tag.Indented) == tag.Tag {
				l.pos = lineEnd
				if hasNL {
					l.pos++
				}
				terminated = true
				break
			}

			l.pos = lineEnd
			if hasNL {
				l.pos++
			} else {
				break // EOF reached without finding the terminator
			}
		}

		kind := KindHeredocBody
		if !terminated {
			kind = KindError
		}
		l.pendingBodies = append(l.pendingBodies, Token{
			Kind:   kind,
			Lexeme: l.src[start:l.pos],
			Start:  start,
			End:    l.pos,
		})
	}
}

// HeredocContent strips the terminator line back out of a HeredocBody
// token's raw Lexeme, returning just the interpolatable body text.
func HeredocContent(tok Token, tag HeredocTag) string {
	body := tok.Lexeme
	lines := strings.SplitAfter(body, "\n")
	if len(lines) > 0 {
		last := lines[len(lines)-1]
		if last == "" {
			lines = lines[:len(lines)-1]
		}
	}
	if len(lines) > 0 {
		lines = lines[:len(lines)-1]
	}
	if !tag.Indented {
		return strings.Join(lines, "")
	}
	indent := commonIndent(lines)
	if indent == "" {
		return strings.Join(lines, "")
	}
	for i, ln := range lines {
		lines[i] = strings.TrimPrefix(ln, indent)
	}
	return strings.Join(lines, "")
}

func commonIndent(lines []string) string {
	var indent string
	first := true
	for _, ln := range lines {
		trimmed := strings.TrimRight(ln, "\r\n")
		if trimmed == "" {
			continue
		}
		end := 0
		for end < len(trimmed) && (trimmed[end] == ' ' || trimmed[end] == '\t') {
			end++
		}
		cand := trimmed[:end]
		if first {
			indent = cand
			first = false
			continue
		}
		indent = commonPrefix(indent, cand)
	}
	return indent
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

func trimForTerminator(line string, indented bool) string {
	line = strings.TrimSuffix(line, "\r")
	if indented {
		i := 0
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		return line[i:]
	}
	return line
}

// isPodStart reports whether src[pos] == '=' begins a POD directive
// (a line-initial '=' followed directly by a letter, as in "=head1" or
// "=cut" - "=" alone, or followed by whitespace, is an assignment).
func isPodStart(src string, pos int) bool {
	if pos+1 >= len(src) {
		return false
	}
	c := src[pos+1]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// lexPod consumes a full POD block, from its opening "=word" line
// through a line consisting of exactly "=cut" (inclusive), or through
// EOF if no "=cut" appears.
func (l *Lexer) lexPod(start int) Token {
	for l.pos < len(l.src) {
		lineStart := l.pos
		lineEnd := lineStart
		for lineEnd < len(l.src) && l.src[lineEnd] != '\n' {
			lineEnd++
		}
		hasNL := lineEnd < len(l.src)
		line := strings.TrimSuffix(l.src[lineStart:lineEnd], "\r")

		if line == "=cut" {
			l.pos = lineEnd
			if hasNL {
				l.pos++
			}
			return l.emit(KindPod, start)
		}

		l.pos = lineEnd
		if hasNL {
			l.pos++
		} else {
			break
		}
	}
	return l.emit(KindPod, start)
}

// EnterFormatBody switches the lexer into InFormatBody mode. It is meant
// to be called by a consumer (a parser) once it has recognized the
// "format NAME =" header line that precedes a picture-line body; the
// lexer itself only knows how to consume the body, not how to recognize
// the header that introduces it.
func (l *Lexer) EnterFormatBody() {
	l.mode = InFormatBody
}

// lexFormatBody consumes a format picture-line body: every line up to
// and including a line consisting of exactly ".". Mode becomes
// ExpectTerm once the body is consumed, matching the statement
// position a completed format declaration leaves the lexer in.
func (l *Lexer) lexFormatBody() Token {
	start := l.pos

	for l.pos < len(l.src) {
		lineStart := l.pos
		lineEnd := lineStart
		for lineEnd < len(l.src) && l.src[lineEnd] != '\n' {
			lineEnd++
		}
		hasNL := lineEnd < len(l.src)
		line := strings.TrimSuffix(l.src[lineStart:lineEnd], "\r")

		if line == "." {
			l.pos = lineEnd
			if hasNL {
				l.pos++
			}
			l.mode = ExpectTerm
			return Token{Kind: KindFormatBody, Lexeme: l.src[start:l.pos], Start: start, End: l.pos}
		}

		l.pos = lineEnd
		if hasNL {
			l.pos++
		} else {
			break
		}
	}

	l.mode = ExpectTerm
	return Token{Kind: KindFormatBody, Lexeme: l.src[start:l.pos], Start: start, End: l.pos}
}
