package index

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/position"
)

// SymbolKind is the closed set of indexable Perl symbol kinds.
type SymbolKind int

const (
	KindSubroutine SymbolKind = iota
	KindScalar
	KindArray
	KindHash
	KindPackage
	KindConstant
	KindFilehandle
	KindLabel
	KindOther
)

// SymbolKey identifies a symbol by its fully-qualified name. Package
// separators are normalized to "::"; variable sigils are part of
// identity, so $x, @x and %x are distinct keys.
type SymbolKey struct {
	Package string
	Name    string
	Sigil   byte // 0 for non-variables (subs, packages, constants, ...)
}

// String renders a SymbolKey the way a hover or workspace/symbol result
// would display it: Package::sigilName.
func (k SymbolKey) String() string {
	var b strings.Builder
	if k.Package != "" {
		b.WriteString(k.Package)
		b.WriteString("::")
	}
	if k.Sigil != 0 {
		b.WriteByte(k.Sigil)
	}
	b.WriteString(k.Name)
	return b.String()
}

// NormalizePackage rewrites legacy ' package separators to ::.
func NormalizePackage(pkg string) string {
	return strings.ReplaceAll(pkg, "'", "::")
}

// Symbol is one indexed entity: a defining location plus every
// reference site collected across the files that mention it.
type Symbol struct {
	Key        SymbolKey
	Kind       SymbolKind
	DefinedAt  Location
	References []Location
}

// Location pairs a URI with the range within it.
type Location struct {
	URI   string
	Range position.Range
}

// PackageVersion captures a `package Foo::Bar 1.23;` or `use Foo::Bar
// 1.23;` version-bearing declaration, parsed as a semantic version by
// ParsePackageVersion ("1.23" becomes 1.23.0, not Perl's v1.230.0).
type PackageVersion struct {
	Package string
	Version *semver.Version
}

// ParsePackageVersion parses a Perl version literal (e.g. "1.23",
// "v1.2.3") into a semver.Version, tolerating Perl's bare two-component
// "1.23" form by padding a missing patch component.
func ParsePackageVersion(pkg, raw string) (PackageVersion, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "v")
	if strings.Count(raw, ".") == 1 {
		raw += ".0"
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return PackageVersion{}, err
	}
	return PackageVersion{Package: pkg, Version: v}, nil
}
