package lexer

// Mode is the lexer's current disambiguation state. Every emitted token
// deterministically transitions the mode based on its kind (and, for
// keywords, the specific keyword).
type Mode int

const (
	// ExpectTerm: the next token begins an expression (operand, regex,
	// unary prefix). A following '/' starts a regex.
	ExpectTerm Mode = iota
	// ExpectOperator: the last token was a complete term. A following
	// '/' is division.
	ExpectOperator
	// ExpectDelimiter: the lexer just consumed a quote-like operator
	// name (q, qq, qw, qr, qx, m, s, tr, y) and the next non-whitespace
	// byte is the opening delimiter, for exactly one step.
	ExpectDelimiter
	// InFormatBody: inside a `format NAME = ... \n.` block; lines are
	// consumed verbatim until a line containing only '.'.
	InFormatBody
)

func (m Mode) String() string {
	switch m {
	case ExpectTerm:
		return "ExpectTerm"
	case ExpectOperator:
		return "ExpectOperator"
	case ExpectDelimiter:
		return "ExpectDelimiter"
	case InFormatBody:
		return "InFormatBody"
	default:
		return "Mode(?)"
	}
}

// termIntroducingKeywords transition the mode back to ExpectTerm: their
// right-hand side is always the start of a new expression.
var termIntroducingKeywords = map[string]bool{
	"if": true, "unless": true, "while": true, "until": true,
	"for": true, "foreach": true, "return": true,
	"my": true, "our": true, "local": true, "state": true,
	"print": true, "say": true, "printf": true,
	"split": true, "grep": true, "map": true, "sort": true,
	"and": true, "or": true, "not": true, "xor": true,
	"elsif": true, "else": true, "do": true, "eq": true, "ne": true,
	"lt": true, "gt": true, "le": true, "ge": true, "cmp": true,
	"x": true,
}

// quoteLikeOperators are the identifiers that, when followed by a
// delimiter, switch the lexer into scanning a quote-like body.
var quoteLikeOperators = map[string]Kind{
	"q":  KindQuoteRaw,
	"qq": KindQuoteInterp,
	"qw": KindQuoteWords,
	"qr": KindQuoteRegex,
	"qx": KindQuoteExec,
	"m":  KindMatch,
	"s":  KindSubstitution,
	"tr": KindTransliteration,
	"y":  KindTransliteration,
}
