package lsp

import (
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/lexer"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/position"
)

// semanticTokenTypes/Modifiers form the legend advertised in
// initialize and indexed into by encodeSemanticTokens below.
var semanticTokenTypes = []string{
	"namespace", "function", "variable", "parameter", "keyword",
	"string", "number", "operator", "comment", "regexp",
}

var semanticTokenModifiers = []string{
	"declaration", "readonly",
}

const (
	semNamespace = iota
	semFunction
	semVariable
	semParameter
	semKeyword
	semString
	semNumber
	semOperator
	semComment
	semRegexp
)

// classifySemanticToken maps a lexer token kind to a legend index, or
// -1 if the kind carries no useful highlighting (punctuation, EOF).
func classifySemanticToken(k lexer.Kind) int {
	switch k {
	case lexer.KindKeyword:
		return semKeyword
	case lexer.KindVariable:
		return semVariable
	case lexer.KindIdentifier:
		return semFunction
	case lexer.KindNumber:
		return semNumber
	case lexer.KindStringSingle, lexer.KindStringDouble, lexer.KindBacktick,
		lexer.KindQuoteRaw, lexer.KindQuoteInterp, lexer.KindQuoteWords,
		lexer.KindQuoteExec, lexer.KindHeredocBody:
		return semString
	case lexer.KindQuoteRegex, lexer.KindMatch, lexer.KindSubstitution, lexer.KindTransliteration:
		return semRegexp
	case lexer.KindComment, lexer.KindPod:
		return semComment
	case lexer.KindOperator, lexer.KindDivision, lexer.KindFatComma, lexer.KindArrow:
		return semOperator
	default:
		return -1
	}
}

// encodeSemanticTokens runs the lexer over text and produces the LSP
// delta-encoded (deltaLine, deltaStart, length, tokenType, tokenModifiers)
// quintuples, restricted to tokens whose start offset falls within
// [lo, hi) when hi > 0.
func encodeSemanticTokens(text string, lo, hi int) []int {
	l := lexer.New(text)
	ls := position.BuildLineStarts(text)
	var data []int
	prevLine, prevCol := 0, 0

	for {
		tok := l.NextToken()
		if tok.Kind == lexer.KindEOF {
			break
		}
		if hi > 0 && (tok.Start < lo || tok.Start >= hi) {
			continue
		}
		typ := classifySemanticToken(tok.Kind)
		if typ < 0 {
			continue
		}
		pos := ls.ToPosition(text, tok.Start, position.UTF16)
		line, col := pos.Line, pos.Column
		length := tok.End - tok.Start

		deltaLine := line - prevLine
		deltaCol := col
		if deltaLine == 0 {
			deltaCol = col - prevCol
		}
		data = append(data, deltaLine, deltaCol, length, typ, 0)
		prevLine, prevCol = line, col
	}
	return data
}
