package lexer

// keywordsByLength classifies identifiers as keywords using a
// length-indexed table: a candidate word is only ever compared against
// the keywords of its own length, avoiding a full hash lookup against the
// entire keyword set for words that cannot possibly match.
var keywordsByLength = buildKeywordTable()

func buildKeywordTable() map[int]map[string]bool {
	words := []string{
		"if", "unless", "while", "until", "for", "foreach", "do",
		"else", "elsif", "given", "when", "default",
		"sub", "return", "last", "next", "redo", "goto",
		"my", "our", "local", "state", "use", "no", "require", "package",
		"and", "or", "not", "xor", "eq", "ne", "lt", "gt", "le", "ge", "cmp", "x",
		"print", "say", "printf", "sort", "map", "grep", "split", "join",
		"bless", "ref", "wantarray", "undef", "defined", "exists", "delete",
		"format",
	}

	table := make(map[int]map[string]bool)
	for _, w := range words {
		n := len(w)
		if table[n] == nil {
			table[n] = make(map[string]bool)
		}
		table[n][w] = true
	}

	return table
}

// isKeyword reports whether word is one of Perl's (bareword) reserved
// operator words. Perl does not reserve most keywords syntactically (they
// remain valid sub/package names), but the lexer still needs to recognize
// them for mode transitions.
func isKeyword(word string) bool {
	byLen := keywordsByLength[len(word)]
	if byLen == nil {
		return false
	}
	return byLen[word]
}
