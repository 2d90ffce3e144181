// Package lexer implements a context-sensitive tokenizer for Perl source,
// resolving the language's classic disambiguation problems (division vs.
// regex, quote-like operators with arbitrary delimiters, heredocs, POD).
package lexer

import "fmt"

// Kind is the closed set of token kinds the lexer can produce.
type Kind int

const (
	KindEOF Kind = iota
	KindError

	KindWhitespace
	KindNewline
	KindComment

	KindIdentifier
	KindKeyword
	KindNumber
	KindVariable // sigil-prefixed: $x, @arr, %hash, $#arr, ${^FOO}, $1, ...

	KindStringSingle // '...'
	KindStringDouble // "..." (interpolation-bearing)
	KindBacktick     // `...`

	KindQuoteRaw   // q//
	KindQuoteInterp // qq//
	KindQuoteWords  // qw//
	KindQuoteRegex  // qr//
	KindQuoteExec   // qx//

	KindMatch           // m// and bare /regex/
	KindSubstitution    // s///
	KindTransliteration // tr/// and y///

	KindHeredocStart
	KindHeredocBody

	KindPod
	KindFormatBody

	KindLParen
	KindRParen
	KindLBrace
	KindRBrace
	KindLBracket
	KindRBracket
	KindSemicolon
	KindComma
	KindFatComma // =>
	KindArrow    // ->

	KindDivision // / and /= and // and //=, in operator position
	KindOperator // catch-all for binary/unary/assignment/logical operators
	KindPunct    // remaining single-character symbols (&, |, \, ~, ?, :, @, ^)
)

var kindNames = map[Kind]string{
	KindEOF:             "EOF",
	KindError:           "ERROR",
	KindWhitespace:      "WHITESPACE",
	KindNewline:         "NEWLINE",
	KindComment:         "COMMENT",
	KindIdentifier:      "IDENTIFIER",
	KindKeyword:         "KEYWORD",
	KindNumber:          "NUMBER",
	KindVariable:        "VARIABLE",
	KindStringSingle:    "STRING_SINGLE",
	KindStringDouble:    "STRING_DOUBLE",
	KindBacktick:        "BACKTICK",
	KindQuoteRaw:        "QUOTE_RAW",
	KindQuoteInterp:     "QUOTE_INTERP",
	KindQuoteWords:      "QUOTE_WORDS",
	KindQuoteRegex:      "QUOTE_REGEX",
	KindQuoteExec:       "QUOTE_EXEC",
	KindMatch:           "MATCH",
	KindSubstitution:    "SUBSTITUTION",
	KindTransliteration: "TRANSLITERATION",
	KindHeredocStart:    "HEREDOC_START",
	KindHeredocBody:     "HEREDOC_BODY",
	KindPod:             "POD",
	KindFormatBody:      "FORMAT_BODY",
	KindLParen:          "LPAREN",
	KindRParen:          "RPAREN",
	KindLBrace:          "LBRACE",
	KindRBrace:          "RBRACE",
	KindLBracket:        "LBRACKET",
	KindRBracket:        "RBRACKET",
	KindSemicolon:       "SEMICOLON",
	KindComma:           "COMMA",
	KindFatComma:        "FAT_COMMA",
	KindArrow:           "ARROW",
	KindDivision:        "DIVISION",
	KindOperator:        "OPERATOR",
	KindPunct:           "PUNCT",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexical token. Lexeme is a slice of the original
// source (never copied), so Start/End are byte offsets that always
// satisfy source[Start:End] == Lexeme.
type Token struct {
	Kind  Kind
	Lexeme string
	Start  int
	End    int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@[%d,%d)", t.Kind, t.Lexeme, t.Start, t.End)
}

// HeredocTag describes the delimiter a HeredocStart token queued, exposed
// so callers can resolve a later HeredocBody token's originating start.
type HeredocTag struct {
	Tag         string
	Indented    bool // <<~TAG: strip common leading whitespace
	Interpolate bool // bare, "TAG" and `TAG` interpolate (with or without ~); only 'TAG' does not
}
