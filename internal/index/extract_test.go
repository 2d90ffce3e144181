package index

import "testing"

func TestExtractFileSymbolsPackageAndSub(t *testing.T) {
	src := "package Foo::Bar;\n\nsub greet {\n    my $name = shift;\n    return \"hi $name\";\n}\n1;\n"
	facts := ExtractFileSymbols("file:///a.pm", src)

	var sawPackage, sawSub, sawScalar bool
	for _, f := range facts {
		switch {
		case f.Kind == KindPackage && f.Key.Package == "Foo::Bar":
			sawPackage = true
		case f.Kind == KindSubroutine && f.Key.Name == "greet":
			sawSub = true
		case f.Kind == KindScalar && f.Key.Name == "name":
			sawScalar = true
		}
	}

	if !sawPackage {
		t.Error("expected a package fact for Foo::Bar")
	}
	if !sawSub {
		t.Error("expected a subroutine fact for greet")
	}
	if !sawScalar {
		t.Error("expected a scalar fact for $name")
	}
}

func TestExtractFileSymbolsListDeclaration(t *testing.T) {
	src := "my ($self, %args) = @_;\n"
	facts := ExtractFileSymbols("file:///a.pm", src)

	var sawSelf, sawArgs bool
	for _, f := range facts {
		if f.Kind == KindScalar && f.Key.Name == "self" {
			sawSelf = true
		}
		if f.Kind == KindHash && f.Key.Name == "args" {
			sawArgs = true
		}
	}
	if !sawSelf || !sawArgs {
		t.Fatalf("expected both $self and %%args to be extracted, got %+v", facts)
	}
}
