package lexer

// quoteLikeWords lists the recognized quote-operator identifiers,
// longest first so "qq" is matched before its prefix "q".
var quoteLikeWords = []string{"qw", "qq", "qr", "qx", "tr", "q", "m", "s", "y"}

var pairClose = map[byte]byte{'{': '}', '[': ']', '(': ')', '<': '>'}

// tryQuoteLike recognizes q//, qq//, qw//, qr//, qx//, m//, s///, tr///
// (and its y/// alias). It returns ok == false, consuming nothing, when
// the candidate word is not actually followed by a delimiter (it is then
// an ordinary identifier/keyword, including the `word => value` auto-quote
// case).
func (l *Lexer) tryQuoteLike(start int) (Token, bool) {
	word, wordEnd, ok := l.matchQuoteLikeWord()
	if !ok {
		return Token{}, false
	}

	scan := wordEnd
	for scan < len(l.src) && (l.src[scan] == ' ' || l.src[scan] == '\t') {
		scan++
	}

	if scan >= len(l.src) || l.src[scan] == '\n' || l.src[scan] == '\r' {
		return Token{}, false
	}
	if l.src[scan] == '=' && scan+1 < len(l.src) && l.src[scan+1] == '>' {
		return Token{}, false
	}
	if isIdentCont(l.src[scan]) {
		return Token{}, false
	}

	delim := l.src[scan]
	l.pos = scan

	switch word {
	case "q":
		return l.finishSinglePart(start, KindQuoteRaw, delim, false)
	case "qq":
		return l.finishSinglePart(start, KindQuoteInterp, delim, true)
	case "qw":
		return l.finishSinglePart(start, KindQuoteWords, delim, false)
	case "qx":
		return l.finishSinglePart(start, KindQuoteExec, delim, true)
	case "qr":
		return l.finishWithFlags(start, KindQuoteRegex, delim, true)
	case "m":
		return l.finishWithFlags(start, KindMatch, delim, true)
	case "s":
		return l.finishTwoPart(start, KindSubstitution, delim)
	case "tr", "y":
		return l.finishTwoPart(start, KindTransliteration, delim)
	}

	return Token{}, false
}

func (l *Lexer) matchQuoteLikeWord() (word string, end int, ok bool) {
	for _, w := range quoteLikeWords {
		n := len(w)
		if l.pos+n > len(l.src) {
			continue
		}
		if l.src[l.pos:l.pos+n] != w {
			continue
		}
		if l.pos+n < len(l.src) && isIdentCont(l.src[l.pos+n]) {
			continue
		}
		return w, l.pos + n, true
	}
	return "", 0, false
}

func (l *Lexer) finishSinglePart(start int, kind Kind, delim byte, _ bool) (Token, bool) {
	l.pos++ // consume opening delimiter
	if !l.scanDelimitedPart(delim) {
		return l.emit(KindError, start), true
	}
	return l.emit(kind, start), true
}

func (l *Lexer) finishWithFlags(start int, kind Kind, delim byte, _ bool) (Token, bool) {
	l.pos++
	if !l.scanDelimitedPart(delim) {
		return l.emit(KindError, start), true
	}
	l.acceptRunByteClass(isRegexFlag)
	return l.emit(kind, start), true
}

// scanDelimitedPart scans a single-part quote-like body (opening
// delimiter already consumed), honoring nested depth for bracket-style
// pairs (q{...} can contain balanced inner {}), and a plain closing-byte
// scan for non-paired delimiters like q/.../.
func (l *Lexer) scanDelimitedPart(delim byte) bool {
	if close, paired := pairClose[delim]; paired {
		return l.scanPairedPart(delim, close)
	}
	return l.scanOnePart(delim)
}

// finishTwoPart scans s/// and tr///: a pattern/search-list part, then
// (for paired delimiters) a fresh opening delimiter and a second part,
// or (for non-paired delimiters) a second part sharing the same
// delimiter, then trailing flags.
func (l *Lexer) finishTwoPart(start int, kind Kind, delim byte) (Token, bool) {
	l.pos++ // consume opening delimiter

	if closeDelim, paired := pairClose[delim]; paired {
		if !l.scanPairedPart(delim, closeDelim) {
			return l.emit(KindError, start), true
		}
		for l.pos < len(l.src) && isHSpaceOrNewline(l.src[l.pos]) {
			l.pos++
		}
		if l.pos >= len(l.src) {
			return l.emit(KindError, start), true
		}
		secondOpen := l.src[l.pos]
		l.pos++
		if secondClose, ok2 := pairClose[secondOpen]; ok2 {
			if !l.scanPairedPart(secondOpen, secondClose) {
				return l.emit(KindError, start), true
			}
		} else {
			if !l.scanOnePart(secondOpen) {
				return l.emit(KindError, start), true
			}
		}
	} else {
		if !l.scanOnePart(delim) {
			return l.emit(KindError, start), true
		}
		if !l.scanOnePart(delim) {
			return l.emit(KindError, start), true
		}
	}

	l.acceptRunByteClass(isRegexFlag)
	return l.emit(kind, start), true
}

func isHSpaceOrNewline(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// scanOnePart consumes up to and including the next unescaped delim byte.
// Returns false (leaving l.pos at EOF) if delim is never found.
func (l *Lexer) scanOnePart(delim byte) bool {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' && l.pos+1 < len(l.src) {
			l.pos += 2
			continue
		}
		if c == delim {
			l.pos++
			return true
		}
		l.pos++
	}
	return false
}

// scanPairedPart consumes a nested open/close-delimited body (the
// opening delimiter was already consumed by the caller), honoring
// backslash escapes and arbitrary nesting depth.
func (l *Lexer) scanPairedPart(open, close byte) bool {
	depth := 1
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' && l.pos+1 < len(l.src) {
			l.pos += 2
			continue
		}
		if c == open && open != close {
			depth++
			l.pos++
			continue
		}
		if c == close {
			depth--
			l.pos++
			if depth == 0 {
				return true
			}
			continue
		}
		l.pos++
	}
	return false
}
