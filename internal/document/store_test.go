package document

import (
	"strings"
	"testing"

	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/position"
)

func TestOpenGetSnapshot(t *testing.T) {
	s := NewStore()
	s.Open("file:///tmp/a.pl", 1, "my $x = 1;\n")

	snap, ok := s.Get("file:///tmp/a.pl")
	if !ok {
		t.Fatal("expected document to be found")
	}
	if snap.Text != "my $x = 1;\n" || snap.Version != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestURICanonicalizationLookup(t *testing.T) {
	s := NewStore()
	s.Open("FILE:///C:/Foo/bar.pl", 1, "1;\n")

	if _, ok := s.Get("file:///c:/Foo/bar.pl"); !ok {
		t.Fatal("expected canonical-case lookup to find the document")
	}
}

func TestFullTextChange(t *testing.T) {
	s := NewStore()
	s.Open("file:///a.pl", 1, "old")
	s.Change("file:///a.pl", 2, []TextEdit{{NewText: "new"}})

	snap, _ := s.Get("file:///a.pl")
	if snap.Text != "new" || snap.Version != 2 {
		t.Fatalf("unexpected snapshot after full change: %+v", snap)
	}
}

func TestIncrementalChangeAppliedInOrder(t *testing.T) {
	s := NewStore()
	s.Open("file:///a.pl", 1, "hello world\n")

	r := position.Range{
		Start: position.Position{Line: 0, Column: 6},
		End:   position.Position{Line: 0, Column: 11},
	}
	s.Change("file:///a.pl", 2, []TextEdit{{Range: &r, NewText: "perl!"}})

	snap, _ := s.Get("file:///a.pl")
	if snap.Text != "hello perl!\n" {
		t.Fatalf("expected incremental edit to apply, got %q", snap.Text)
	}
}

func TestCloseRemovesDocument(t *testing.T) {
	s := NewStore()
	s.Open("file:///a.pl", 1, "1;")
	s.Close("file:///a.pl")

	if _, ok := s.Get("file:///a.pl"); ok {
		t.Fatal("expected document to be gone after close")
	}
}

func TestEnsureLatestDetectsStaleRequest(t *testing.T) {
	s := NewStore()
	s.Open("file:///a.pl", 5, "1;")

	if err := s.EnsureLatest("file:///a.pl", 3); err == nil {
		t.Fatal("expected ErrContentModified for a stale request version")
	}
	if err := s.EnsureLatest("file:///a.pl", 5); err != nil {
		t.Fatalf("expected no error for a current request version, got %v", err)
	}
}

func TestGenerationIncreasesOnEveryMutation(t *testing.T) {
	s := NewStore()
	s.Open("file:///a.pl", 1, "1;")
	g1 := s.Generation("file:///a.pl")
	s.Change("file:///a.pl", 2, []TextEdit{{NewText: "2;"}})
	g2 := s.Generation("file:///a.pl")
	if g2 <= g1 {
		t.Fatalf("expected generation to strictly increase: %d -> %d", g1, g2)
	}
}

func TestSnapshotScanClonesAllOpenDocuments(t *testing.T) {
	s := NewStore()
	s.Open("file:///a.pl", 1, "1;")
	s.Open("file:///b.pl", 1, "2;")

	scans := s.SnapshotScan()
	if len(scans) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(scans))
	}
}

func TestRopeSpliceAndLargeChunking(t *testing.T) {
	text := strings.Repeat("a", chunkTarget*3+17)
	r := NewRope(text)
	if r.Len() != len(text) {
		t.Fatalf("expected rope length %d, got %d", len(text), r.Len())
	}
	spliced := r.Splice(0, 1, "b")
	if spliced.String()[0] != 'b' {
		t.Fatal("expected splice to replace the first byte")
	}
	if r.String()[0] != 'a' {
		t.Fatal("expected original rope to be unmodified")
	}
}
