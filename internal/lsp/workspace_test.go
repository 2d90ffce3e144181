package lsp

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/toolrunner"
)

func TestResolvePathRejectsTraversal(t *testing.T) {
	srv, _ := newTestServer(t, nil, discardWriter{})
	srv.workspaceURI = "file:///workspace/root"

	if _, ok := srv.resolvePath("file:///workspace/root/../../etc/passwd"); ok {
		t.Fatal("expected a path escaping the workspace root to be rejected")
	}
	if _, ok := srv.resolvePath("file:///workspace/root/lib/Foo.pm"); !ok {
		t.Fatal("expected a path under the workspace root to resolve")
	}
}

func TestOrganizeImportsSortsLeadingUseBlock(t *testing.T) {
	text := "use strict;\nuse Zed;\nuse Abc;\n\nprint 1;\n"
	edits := organizeUseStatements(text)
	if len(edits) != 1 {
		t.Fatalf("expected one edit, got %d", len(edits))
	}
	edit := edits[0].(map[string]any)
	if got := edit["newText"].(string); got != "use Abc;\nuse Zed;\nuse strict;" {
		t.Fatalf("unexpected sorted block: %q", got)
	}
}

func TestOrganizeImportsNoopWhenAlreadySorted(t *testing.T) {
	text := "use Abc;\nuse Zed;\nuse strict;\n\nprint 1;\n"
	if edits := organizeUseStatements(text); edits != nil {
		t.Fatalf("expected no edits for an already-sorted block, got %v", edits)
	}
}

func TestCommandIndexStatusReportsAccessMode(t *testing.T) {
	srv, _ := newTestServer(t, nil, discardWriter{})
	result := srv.commandIndexStatus()
	m, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("expected a map result, got %v", result)
	}
	if _, ok := m["accessMode"].(string); !ok {
		t.Fatalf("expected an accessMode string, got %v", m)
	}
}

func TestCommandRunTidyRunsPerltidyViaRunner(t *testing.T) {
	srv, tools := newTestServer(t, nil, discardWriter{})
	srv.docs.Open("file:///a.pl", 1, "my $x=1;\n")

	tools.EXPECT().Run(gomock.Any(), "perltidy", gomock.Any(), "my $x=1;\n").
		Return(toolrunner.Result{Stdout: "my $x = 1;\n", ExitCode: 0}, nil)

	args, _ := json.Marshal("file:///a.pl")
	result, rpcErr := srv.commandRunTidy(context.Background(), []json.RawMessage{args})
	if rpcErr != nil {
		t.Fatalf("commandRunTidy: %v", rpcErr)
	}
	m := result.(map[string]any)
	if m["formatted"] != "my $x = 1;\n" {
		t.Fatalf("unexpected formatted text: %v", m["formatted"])
	}
}
