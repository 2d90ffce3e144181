package lexer

import (
	"strings"
	"testing"
)

func tokenize(src string) []Token {
	l := New(src)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == KindEOF {
			break
		}
	}
	return toks
}

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func containsKind(toks []Token, k Kind) bool {
	for _, t := range toks {
		if t.Kind == k {
			return true
		}
	}
	return false
}

// reconstruct verifies the byte-exact reconstruction invariant: the
// concatenation of every token's lexeme must equal the original source.
func reconstruct(t *testing.T, src string, toks []Token) {
	t.Helper()
	var b strings.Builder
	for _, tok := range toks {
		b.WriteString(tok.Lexeme)
	}
	if b.String() != src {
		t.Fatalf("reconstruction mismatch:\n got: %q\nwant: %q", b.String(), src)
	}
}

func TestDivisionVsRegex(t *testing.T) {
	// After an identifier (ExpectOperator), '/' is division.
	toks := tokenize("$x / $y")
	reconstruct(t, "$x / $y", toks)
	foundDiv := false
	for _, tok := range toks {
		if tok.Lexeme == "/" {
			foundDiv = true
			if tok.Kind != KindDivision {
				t.Fatalf("expected bare '/' after term to be Division, got %s", tok.Kind)
			}
		}
	}
	if !foundDiv {
		t.Fatal("expected a '/' token")
	}
}

func TestBareRegexAfterTermIntroducingKeyword(t *testing.T) {
	// After "split" (a term-introducing keyword), '/' starts a regex.
	toks := tokenize("split /,/, $line")
	reconstruct(t, "split /,/, $line", toks)
	if !containsKind(toks, KindMatch) {
		t.Fatalf("expected a bare regex (Match) token, got kinds %v", kinds(toks))
	}
}

func TestQuoteLikeOperators(t *testing.T) {
	cases := []struct {
		src  string
		kind Kind
	}{
		{"q(hello)", KindQuoteRaw},
		{"qq(hi $name)", KindQuoteInterp},
		{"qw(a b c)", KindQuoteWords},
		{"qr/foo/i", KindQuoteRegex},
		{"qx(ls -la)", KindQuoteExec},
		{"m/foo/", KindMatch},
		{"s/foo/bar/g", KindSubstitution},
		{"tr/a-z/A-Z/", KindTransliteration},
		{"y/a-z/A-Z/", KindTransliteration},
	}
	for _, c := range cases {
		toks := tokenize(c.src)
		reconstruct(t, c.src, toks)
		if !containsKind(toks, c.kind) {
			t.Fatalf("%q: expected kind %s, got %v", c.src, c.kind, kinds(toks))
		}
	}
}

func TestQuoteLikeArbitraryDelimiters(t *testing.T) {
	cases := []string{
		"q{hello}",
		"q[hello]",
		"q<hello>",
		"q!hello!",
		"s{foo}{bar}g",
		"tr{a-z}{A-Z}",
	}
	for _, src := range cases {
		toks := tokenize(src)
		reconstruct(t, src, toks)
		if containsKind(toks, KindError) {
			t.Fatalf("%q: unexpected error token: %v", src, toks)
		}
	}
}

func TestQuoteLikeNestedPairedDelimiter(t *testing.T) {
	src := "q{outer {inner} still outer}"
	toks := tokenize(src)
	reconstruct(t, src, toks)
	if toks[0].Kind != KindQuoteRaw || toks[0].Lexeme != src {
		t.Fatalf("expected whole nested q{} to be one token, got %v", toks[0])
	}
}

func TestAutoQuoteBeforeFatComma(t *testing.T) {
	// "q" before "=>" is a bareword key, not the start of q//.
	src := "(q => 1, s => 2)"
	toks := tokenize(src)
	reconstruct(t, src, toks)
	if containsKind(toks, KindQuoteRaw) || containsKind(toks, KindSubstitution) {
		t.Fatalf("q/s before => should not be quote-like: %v", kinds(toks))
	}
	if !containsKind(toks, KindFatComma) {
		t.Fatal("expected a fat comma token")
	}
}

func TestHeredocPlain(t *testing.T) {
	src := "my $x = <<END;\nhello\nworld\nEND\n"
	toks := tokenize(src)
	reconstruct(t, src, toks)
	if !containsKind(toks, KindHeredocStart) {
		t.Fatal("expected HeredocStart token")
	}
	if !containsKind(toks, KindHeredocBody) {
		t.Fatal("expected HeredocBody token")
	}
}

func TestHeredocIndented(t *testing.T) {
	src := "print <<~END;\n    indented\n    text\n    END\n"
	toks := tokenize(src)
	reconstruct(t, src, toks)

	var body Token
	for _, tok := range toks {
		if tok.Kind == KindHeredocBody {
			body = tok
		}
	}
	content := HeredocContent(body, HeredocTag{Tag: "END", Indented: true})
	if content != "indented\ntext\n" {
		t.Fatalf("expected stripped indent, got %q", content)
	}
}

func TestHeredocSingleQuotedNoInterpolate(t *testing.T) {
	src := "my $x = <<'END';\nraw $text\nEND\n"
	toks := tokenize(src)
	reconstruct(t, src, toks)
	if !containsKind(toks, KindHeredocBody) {
		t.Fatal("expected HeredocBody token")
	}
}

func TestHeredocUnterminatedIsError(t *testing.T) {
	src := "my $x = <<END;\nhello\nthere is no terminator\n"
	toks := tokenize(src)
	reconstruct(t, src, toks)
	if !containsKind(toks, KindError) {
		t.Fatal("expected an Error token for unterminated heredoc")
	}
}

func TestHeredocMultipleOnOneLine(t *testing.T) {
	src := "foo(<<A, <<B);\nfirst\nA\nsecond\nB\n"
	toks := tokenize(src)
	reconstruct(t, src, toks)
	count := 0
	for _, tok := range toks {
		if tok.Kind == KindHeredocBody {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 heredoc bodies in FIFO order, got %d", count)
	}
}

func TestPodBlock(t *testing.T) {
	src := "=head1 NAME\n\nSomething.\n\n=cut\n\nprint 1;\n"
	toks := tokenize(src)
	reconstruct(t, src, toks)
	if !containsKind(toks, KindPod) {
		t.Fatal("expected a Pod token")
	}
}

func TestSpecialVariables(t *testing.T) {
	cases := []string{"$_", "$1", "$9", "@_", "$#arr", "${^WARNING_BITS}", "$ENV{PATH}"}
	for _, src := range cases {
		toks := tokenize(src)
		reconstruct(t, src, toks)
		if !containsKind(toks, KindVariable) {
			t.Fatalf("%q: expected a Variable token, got %v", src, kinds(toks))
		}
	}
}

func TestSigilVsOperatorAmbiguity(t *testing.T) {
	// After a term, % and * are operators and & is punctuation; none of
	// them is lexed as a sigil.
	src := "$x % 2"
	toks := tokenize(src)
	reconstruct(t, src, toks)
	for _, tok := range toks {
		if tok.Lexeme == "%" && tok.Kind != KindOperator {
			t.Fatalf("expected '%%' after term to be Operator, got %s", tok.Kind)
		}
	}
}

func TestNumberForms(t *testing.T) {
	cases := []string{"42", "3.14", "0x1F", "0b1010", "1_000_000", "6.02e23", "5."}
	for _, src := range cases {
		toks := tokenize(src)
		reconstruct(t, src, toks)
		if toks[0].Kind != KindNumber {
			t.Fatalf("%q: expected Number, got %s", src, toks[0].Kind)
		}
	}
}

func TestKeywordVsIdentifier(t *testing.T) {
	toks := tokenize("if ($x) { return $x; }")
	if toks[0].Kind != KindKeyword {
		t.Fatalf("expected 'if' to be a Keyword, got %s", toks[0].Kind)
	}
}

func TestFormatBody(t *testing.T) {
	l := New("Name: @<<<<<<<<<<\n$name\n.\nafter();")
	// Consumer recognizes the "format NAME =" header externally and
	// switches the lexer into format-body mode before the body lines.
	l.EnterFormatBody()
	tok := l.NextToken()
	if tok.Kind != KindFormatBody {
		t.Fatalf("expected FormatBody, got %s", tok.Kind)
	}
	if !strings.HasSuffix(tok.Lexeme, ".\n") {
		t.Fatalf("expected format body to include terminator line, got %q", tok.Lexeme)
	}
	next := l.NextToken()
	if next.Kind == KindFormatBody {
		t.Fatal("expected mode to revert after the format body")
	}
}

func TestByteExactReconstructionProperty(t *testing.T) {
	samples := []string{
		"",
		"\n",
		"my $x = 1 + 2 * 3;\n",
		"print \"hello, $name!\\n\" if defined $name;\n",
		"my @words = qw(alpha beta gamma);\n",
		"s/foo/bar/g for @lines;\n",
		"# just a comment\n1;\n",
		"my $re = qr{^\\d+$}x;\n",
		"sub foo { my ($self, %args) = @_; return $self->{x} // 0; }\n",
	}
	for _, src := range samples {
		toks := tokenize(src)
		reconstruct(t, src, toks)
		if toks[len(toks)-1].Kind != KindEOF {
			t.Fatalf("%q: expected final token to be EOF", src)
		}
	}
}

func TestArrowPostfixDereference(t *testing.T) {
	src := "$ref->@*"
	toks := tokenize(src)
	reconstruct(t, src, toks)
	if !containsKind(toks, KindArrow) {
		t.Fatal("expected an Arrow token")
	}
}

func TestPackageQualifiedIdentifier(t *testing.T) {
	src := "Foo::Bar::baz()"
	toks := tokenize(src)
	reconstruct(t, src, toks)
	if toks[0].Kind != KindIdentifier || toks[0].Lexeme != "Foo::Bar::baz" {
		t.Fatalf("expected one qualified identifier token, got %v", toks[0])
	}
}

func TestMultiCharOperators(t *testing.T) {
	cases := []string{"<=>", "**=", "...", "<<=", "->", "=>", "==", "&&", "||", "//", "..", "||=", "&&=", "//="}
	for _, op := range cases {
		src := "1 " + op + " 2"
		toks := tokenize(src)
		reconstruct(t, src, toks)
		if containsKind(toks, KindError) {
			t.Fatalf("%q: unexpected Error token", src)
		}
	}
}

func TestUnterminatedStringIsError(t *testing.T) {
	src := "\"never closed"
	toks := tokenize(src)
	reconstruct(t, src, toks)
	if toks[0].Kind != KindError {
		t.Fatalf("expected Error for unterminated string, got %s", toks[0].Kind)
	}
}
