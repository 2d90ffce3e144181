package index

import (
	"strings"

	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/lexer"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/position"
)

// ExtractFileSymbols runs the lexer over content and derives a
// best-effort symbol table: package declarations, subroutine
// definitions, and my/our/local/state-declared variables. It is a
// token-level pass (no parser exists in this module's scope), which is
// enough to populate definitions, hover, and workspace symbol search for
// the common declaration shapes.
func ExtractFileSymbols(uri, content string) []FileSymbol {
	ls := position.BuildLineStarts(content)
	toTokenRange := func(start, end int) position.Range {
		return position.Range{
			Start: ls.ToPosition(content, start, position.UTF16),
			End:   ls.ToPosition(content, end, position.UTF16),
		}
	}

	l := lexer.New(content)
	var facts []FileSymbol
	var toks []lexer.Token
	for {
		tok := l.NextToken()
		if tok.Kind != lexer.KindWhitespace && tok.Kind != lexer.KindComment {
			toks = append(toks, tok)
		}
		if tok.Kind == lexer.KindEOF {
			break
		}
	}

	currentPackage := "main"
	declareNext := false // set after my/our/local/state keyword

	for i := 0; i < len(toks); i++ {
		tok := toks[i]

		switch {
		case tok.Kind == lexer.KindKeyword && tok.Lexeme == "package":
			if i+1 < len(toks) && toks[i+1].Kind == lexer.KindIdentifier {
				name := toks[i+1].Lexeme
				currentPackage = name
				facts = append(facts, FileSymbol{
					Key:       SymbolKey{Package: name},
					Kind:      KindPackage,
					Location:  Location{URI: uri, Range: toTokenRange(toks[i+1].Start, toks[i+1].End)},
					IsDefSite: true,
				})
			}

		case tok.Kind == lexer.KindKeyword && tok.Lexeme == "sub":
			if i+1 < len(toks) && toks[i+1].Kind == lexer.KindIdentifier {
				name := toks[i+1].Lexeme
				facts = append(facts, FileSymbol{
					Key:       SymbolKey{Package: currentPackage, Name: name},
					Kind:      KindSubroutine,
					Location:  Location{URI: uri, Range: toTokenRange(toks[i+1].Start, toks[i+1].End)},
					IsDefSite: true,
				})
			}

		case tok.Kind == lexer.KindKeyword && (tok.Lexeme == "my" || tok.Lexeme == "our" ||
			tok.Lexeme == "local" || tok.Lexeme == "state"):
			declareNext = true
			continue

		case declareNext && tok.Kind == lexer.KindLParen:
			continue

		case declareNext && tok.Kind == lexer.KindComma:
			continue

		case tok.Kind == lexer.KindVariable && declareNext:
			if fact, ok := variableFact(uri, currentPackage, tok, toTokenRange); ok {
				facts = append(facts, fact)
			}
			continue

		default:
			declareNext = false
		}
	}

	return facts
}

func variableFact(uri, pkg string, tok lexer.Token, toRange func(int, int) position.Range) (FileSymbol, bool) {
	if len(tok.Lexeme) == 0 {
		return FileSymbol{}, false
	}
	sigil := tok.Lexeme[0]
	name := strings.TrimLeft(tok.Lexeme[1:], "{}")
	if name == "" {
		return FileSymbol{}, false
	}

	var kind SymbolKind
	switch sigil {
	case '$':
		kind = KindScalar
	case '@':
		kind = KindArray
	case '%':
		kind = KindHash
	default:
		return FileSymbol{}, false
	}

	return FileSymbol{
		Key:       SymbolKey{Package: pkg, Name: name, Sigil: sigil},
		Kind:      kind,
		Location:  Location{URI: uri, Range: toRange(tok.Start, tok.End)},
		IsDefSite: true,
	}, true
}
