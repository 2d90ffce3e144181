package lexer

// specialPunctVarNames are the single-punctuation variable names Perl
// recognizes after a '$' sigil (a non-exhaustive but common set).
var specialPunctVarNames = map[byte]bool{
	'_': true, '@': true, '!': true, '/': true, '\\': true, '"': true,
	',': true, ';': true, '0': true, '.': true, '$': true, '&': true,
}

// tryVariable scans a sigil-prefixed variable starting at start (where
// l.pos == start and l.src[start] is the sigil). In the postfix-dereference
// case (->@*, ->%{}, ->@[]) just the bare sigil is emitted so the following
// {/[/* tokenizes on its own. It returns ok == false, consuming nothing,
// only when a %, & or * sigil has no name after it; every other shape
// returns ok == true.
func (l *Lexer) tryVariable(start int) (Token, bool) {
	l.pos++ // consume the sigil

	if l.afterArrow(start) && l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '{', '[', '*':
			return l.emit(KindVariable, start), true
		}
	}

	// $#name / $#{...} - array length.
	if l.src[start] == '$' && l.pos < len(l.src) && l.src[l.pos] == '#' {
		l.pos++
		if l.pos < len(l.src) && l.src[l.pos] == '{' {
			return l.emit(KindVariable, start), true
		}
		l.consumeQualifiedName()
		return l.emit(KindVariable, start), true
	}

	if l.pos < len(l.src) && l.src[l.pos] == '{' {
		if l.tryBracedVariable(start) {
			return l.emit(KindVariable, start), true
		}
		// Complex expression inside {...}: emit the bare sigil and let
		// '{' open a normal block/deref, e.g. @{ $ref }.
		return l.emit(KindVariable, start), true
	}

	if l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.acceptRunByteClass(isDigit)
		return l.emit(KindVariable, start), true
	}

	if l.pos < len(l.src) && (isIdentStart(l.src[l.pos]) || (l.src[l.pos] == ':' && l.peekByte(1) == ':')) {
		l.consumeQualifiedName()
		return l.emit(KindVariable, start), true
	}

	if l.src[start] == '$' && l.pos < len(l.src) && specialPunctVarNames[l.src[l.pos]] {
		l.pos++
		return l.emit(KindVariable, start), true
	}

	// Bare sigil: either a dereference-block prefix or (for *, &, %) not
	// actually a variable at all, caller falls back to operator lexing.
	if l.src[start] == '$' || l.src[start] == '@' {
		return l.emit(KindVariable, start), true
	}

	l.pos = start
	return Token{}, false
}

func (l *Lexer) afterArrow(start int) bool {
	return start >= 2 && l.src[start-2] == '-' && l.src[start-1] == '>'
}

func (l *Lexer) consumeQualifiedName() {
	for l.pos < len(l.src) {
		if isIdentCont(l.src[l.pos]) {
			l.pos++
			continue
		}
		if l.src[l.pos] == ':' && l.peekByte(1) == ':' {
			l.pos += 2
			continue
		}
		break
	}
}

// tryBracedVariable consumes a ${...} form when its contents are simple
// enough to be a name rather than an arbitrary expression: ${name},
// ${^CARET_NAME}, ${pkg::name}. Stash forms such as ${::{name}} are not
// matched. Returns false (consuming nothing) when the contents don't
// match, leaving '{' for normal parsing.
func (l *Lexer) tryBracedVariable(start int) bool {
	save := l.pos
	l.pos++ // consume '{'

	if l.pos < len(l.src) && l.src[l.pos] == '^' {
		l.pos++
		begin := l.pos
		for l.pos < len(l.src) && (l.src[l.pos] >= 'A' && l.src[l.pos] <= 'Z') {
			l.pos++
		}
		if l.pos > begin && l.pos < len(l.src) && l.src[l.pos] == '}' {
			l.pos++
			return true
		}
		l.pos = save
		return false
	}

	begin := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isIdentCont(c) || c == ':' {
			l.pos++
			continue
		}
		break
	}
	if l.pos > begin && l.pos < len(l.src) && l.src[l.pos] == '}' {
		l.pos++
		return true
	}

	l.pos = save
	return false
}
