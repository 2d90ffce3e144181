package lsp

import (
	"encoding/json"
	"testing"

	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/index"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/position"
)

func seedGreetDefinition(srv *Server) {
	srv.coord.Index().IndexFile("file:///d.pl", []index.FileSymbol{
		{
			Key:  index.SymbolKey{Package: "main", Name: "greet"},
			Kind: index.KindSubroutine,
			Location: index.Location{URI: "file:///d.pl", Range: position.Range{
				Start: position.Position{Line: 0, Column: 0},
				End:   position.Position{Line: 0, Column: 5},
			}},
			IsDefSite: true,
		},
	})
}

func TestHoverResolvesIndexedSubroutine(t *testing.T) {
	srv, _ := newTestServer(t, nil, discardWriter{})
	makeIndexReady(t, srv)
	seedGreetDefinition(srv)
	srv.docs.Open("file:///d.pl", 1, "greet();\n")

	params, _ := json.Marshal(map[string]any{
		"textDocument": map[string]any{"uri": "file:///d.pl"},
		"position":     map[string]any{"line": 0, "character": 1},
	})
	result, rpcErr := srv.handleHover(params)
	if rpcErr != nil {
		t.Fatalf("handleHover: %v", rpcErr)
	}
	m, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("expected a hover result, got %v", result)
	}
	contents := m["contents"].(map[string]any)
	if contents["value"] != "`main::greet`" {
		t.Fatalf("unexpected hover value: %v", contents["value"])
	}
}

func TestDefinitionResolvesAcrossIndex(t *testing.T) {
	srv, _ := newTestServer(t, nil, discardWriter{})
	makeIndexReady(t, srv)
	seedGreetDefinition(srv)
	srv.docs.Open("file:///d.pl", 1, "greet();\n")

	params, _ := json.Marshal(map[string]any{
		"textDocument": map[string]any{"uri": "file:///d.pl"},
		"position":     map[string]any{"line": 0, "character": 1},
	})
	result, rpcErr := srv.handleDefinition(params)
	if rpcErr != nil {
		t.Fatalf("handleDefinition: %v", rpcErr)
	}
	loc, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("expected a location result, got %v", result)
	}
	if loc["uri"] != "file:///d.pl" {
		t.Fatalf("unexpected definition uri: %v", loc["uri"])
	}
}

func TestDefinitionReturnsNilForUnknownSymbol(t *testing.T) {
	srv, _ := newTestServer(t, nil, discardWriter{})
	srv.docs.Open("file:///d.pl", 1, "mystery();\n")

	params, _ := json.Marshal(map[string]any{
		"textDocument": map[string]any{"uri": "file:///d.pl"},
		"position":     map[string]any{"line": 0, "character": 1},
	})
	result, rpcErr := srv.handleDefinition(params)
	if rpcErr != nil {
		t.Fatalf("handleDefinition: %v", rpcErr)
	}
	if result != nil {
		t.Fatalf("expected nil result for an unresolvable symbol, got %v", result)
	}
}

func TestPrepareRenameRejectsNonIdentifierPosition(t *testing.T) {
	srv, _ := newTestServer(t, nil, discardWriter{})
	srv.docs.Open("file:///d.pl", 1, "1 + 2;\n")

	params, _ := json.Marshal(map[string]any{
		"textDocument": map[string]any{"uri": "file:///d.pl"},
		"position":     map[string]any{"line": 0, "character": 2},
	})
	_, rpcErr := srv.handlePrepareRename(params)
	if rpcErr == nil {
		t.Fatal("expected an error preparing rename over an operator token")
	}
	if rpcErr.Code != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %d", rpcErr.Code)
	}
}

func TestDocumentSymbolListsPackageAndSub(t *testing.T) {
	srv, _ := newTestServer(t, nil, discardWriter{})
	srv.docs.Open("file:///d.pl", 1, "package Foo::Bar;\nsub greet { 1; }\n")

	params, _ := json.Marshal(map[string]any{
		"textDocument": map[string]any{"uri": "file:///d.pl"},
	})
	result, rpcErr := srv.handleDocumentSymbol(params)
	if rpcErr != nil {
		t.Fatalf("handleDocumentSymbol: %v", rpcErr)
	}
	syms, ok := result.([]any)
	if !ok || len(syms) != 2 {
		t.Fatalf("expected 2 symbols (package + sub), got %v", result)
	}
}
