package lsp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/dap"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/index"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/toolrunner"
)

// commandNames is the fixed set of workspace/executeCommand commands
// this runtime advertises and implements.
var commandNames = []string{
	"perl.runTidy",
	"perl.runCritic",
	"perl.runProve",
	"perl.organizeImports",
	"perl.indexStatus",
	"perl.launchDebugger",
}

type executeCommandParams struct {
	Command   string            `json:"command"`
	Arguments []json.RawMessage `json:"arguments"`
}

func (s *Server) handleExecuteCommand(ctx context.Context, params json.RawMessage) (any, *RPCError) {
	var p executeCommandParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: workspace/executeCommand")
	}

	switch p.Command {
	case "perl.runTidy":
		return s.commandRunTidy(ctx, p.Arguments)
	case "perl.runCritic":
		return s.commandRunCritic(ctx, p.Arguments)
	case "perl.runProve":
		return s.commandRunProve(ctx, p.Arguments)
	case "perl.organizeImports":
		return s.commandOrganizeImports(p.Arguments)
	case "perl.indexStatus":
		return s.commandIndexStatus(), nil
	case "perl.launchDebugger":
		return s.commandLaunchDebugger(p.Arguments)
	default:
		return nil, newError(ErrInvalidParams, "unknown command: "+p.Command)
	}
}

// commandURI extracts the uri string argument most perl.* commands take
// as their sole positional argument.
func commandURI(args []json.RawMessage) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	var uri string
	if err := json.Unmarshal(args[0], &uri); err != nil {
		return "", false
	}
	return uri, true
}

// resolvePath canonicalizes a file:// URI into a filesystem path rooted
// under the workspace, rejecting any path that escapes it via traversal.
func (s *Server) resolvePath(uri string) (string, bool) {
	path := strings.TrimPrefix(uri, "file://")
	path = filepath.Clean(path)

	root := strings.TrimPrefix(s.workspaceURI, "file://")
	root = filepath.Clean(root)
	if root == "" || root == "." {
		return path, true
	}

	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return path, true
}

func (s *Server) commandRunTidy(ctx context.Context, args []json.RawMessage) (any, *RPCError) {
	uri, ok := commandURI(args)
	if !ok {
		return nil, newError(ErrInvalidParams, "perl.runTidy requires a document uri argument")
	}
	if _, ok := s.resolvePath(uri); !ok {
		return nil, newError(ErrInvalidParams, "uri escapes workspace root")
	}
	snap, ok := s.docs.Get(uri)
	if !ok {
		return nil, newError(ErrInvalidRequest, "document not open")
	}
	if s.tools == nil {
		return nil, newError(ErrInternalError, "no tool runner configured")
	}

	toolCtx, cancel := context.WithTimeout(ctx, s.cfg.ToolTimeout())
	defer cancel()
	formatted, err := toolrunner.FormatWithTidy(toolCtx, s.tools, snap.Text, nil)
	if err != nil {
		return nil, newError(ErrInternalError, "perltidy: "+err.Error())
	}
	return map[string]any{"formatted": formatted}, nil
}

func (s *Server) commandRunCritic(ctx context.Context, args []json.RawMessage) (any, *RPCError) {
	uri, ok := commandURI(args)
	if !ok {
		return nil, newError(ErrInvalidParams, "perl.runCritic requires a document uri argument")
	}
	snap, ok := s.docs.Get(uri)
	if !ok {
		return nil, newError(ErrInvalidRequest, "document not open")
	}
	if s.tools == nil {
		return nil, newError(ErrInternalError, "no tool runner configured")
	}

	toolCtx, cancel := context.WithTimeout(ctx, s.cfg.ToolTimeout())
	defer cancel()
	violations, err := toolrunner.LintWithCritic(toolCtx, s.tools, uri, snap.Text, nil)
	if err != nil {
		return nil, newError(ErrInternalError, "perlcritic: "+err.Error())
	}

	diags := make([]any, 0, len(violations))
	for _, v := range violations {
		diags = append(diags, map[string]any{
			"range": lspRange{
				Start: lspPosition{Line: v.Line, Character: v.Column},
				End:   lspPosition{Line: v.Line, Character: v.Column},
			},
			"severity": v.Severity,
			"source":   "perlcritic",
			"message":  v.Message,
		})
	}
	s.sendNotification("textDocument/publishDiagnostics", map[string]any{
		"uri":         uri,
		"diagnostics": diags,
	})
	return map[string]any{"violations": len(violations)}, nil
}

func (s *Server) commandRunProve(ctx context.Context, args []json.RawMessage) (any, *RPCError) {
	testFiles := make([]string, 0, len(args))
	for _, a := range args {
		var f string
		if json.Unmarshal(a, &f) == nil && f != "" {
			testFiles = append(testFiles, f)
		}
	}
	if len(testFiles) == 0 {
		return nil, newError(ErrInvalidParams, "perl.runProve requires at least one test file path")
	}
	if s.tools == nil {
		return nil, newError(ErrInternalError, "no tool runner configured")
	}

	toolCtx, cancel := context.WithTimeout(ctx, s.cfg.ToolTimeout())
	defer cancel()
	result, err := toolrunner.RunProve(toolCtx, s.tools, testFiles, nil)
	if err != nil {
		return nil, newError(ErrInternalError, "prove: "+err.Error())
	}
	return map[string]any{
		"passed":   result.Passed,
		"exitCode": result.ExitCode,
		"output":   result.Output,
	}, nil
}

func (s *Server) commandOrganizeImports(args []json.RawMessage) (any, *RPCError) {
	uri, ok := commandURI(args)
	if !ok {
		return nil, newError(ErrInvalidParams, "perl.organizeImports requires a document uri argument")
	}
	snap, ok := s.docs.Get(uri)
	if !ok {
		return nil, newError(ErrInvalidRequest, "document not open")
	}

	edits := organizeUseStatements(snap.Text)
	if len(edits) == 0 {
		return map[string]any{"changed": false}, nil
	}

	changes := map[string]any{uri: edits}
	_, err := s.sendOutboundRequest(context.Background(), "workspace/applyEdit", map[string]any{
		"label": "Organize imports",
		"edit":  map[string]any{"changes": changes},
	})
	if err != nil {
		return nil, newError(ErrInternalError, "applyEdit: "+err.Error())
	}
	return map[string]any{"changed": true}, nil
}

// organizeUseStatements sorts the contiguous block of leading `use`/`no`
// statements into a single alphabetized replacement edit. Non-contiguous
// or interleaved use statements are left untouched - this is a best-
// effort tidy, not a semantic import resolver.
func organizeUseStatements(text string) []any {
	lines := strings.Split(text, "\n")
	start, end := -1, -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		isUse := strings.HasPrefix(trimmed, "use ") || strings.HasPrefix(trimmed, "no ")
		if isUse {
			if start == -1 {
				start = i
			}
			end = i
		} else if trimmed == "" && start != -1 {
			continue
		} else if start != -1 {
			break
		}
	}
	if start == -1 || end <= start {
		return nil
	}

	block := append([]string(nil), lines[start:end+1]...)
	sortLinesStable(block)
	if strings.Join(block, "\n") == strings.Join(lines[start:end+1], "\n") {
		return nil
	}

	return []any{map[string]any{
		"range": lspRange{
			Start: lspPosition{Line: start, Character: 0},
			End:   lspPosition{Line: end, Character: len(lines[end])},
		},
		"newText": strings.Join(block, "\n"),
	}}
}

func sortLinesStable(lines []string) {
	for i := 1; i < len(lines); i++ {
		for j := i; j > 0 && strings.TrimSpace(lines[j-1]) > strings.TrimSpace(lines[j]); j-- {
			lines[j-1], lines[j] = lines[j], lines[j-1]
		}
	}
}

func (s *Server) commandIndexStatus() any {
	st := index.State{}
	mode := index.AccessNone
	if s.coord != nil {
		st = s.coord.State()
		mode, _ = index.RouteIndexAccess(s.coord)
	}
	return map[string]any{
		"phase":      st.Phase.String(),
		"reason":     st.Reason.String(),
		"accessMode": mode.String(),
		"files":      st.Files,
		"symbols":    st.Symbols,
	}
}

func (s *Server) commandLaunchDebugger(args []json.RawMessage) (any, *RPCError) {
	if len(args) == 0 {
		return nil, newError(ErrInvalidParams, "perl.launchDebugger requires a script path argument")
	}
	var req dap.LaunchRequest
	if err := json.Unmarshal(args[0], &req); err != nil {
		return nil, newError(ErrInvalidParams, "invalid launch request")
	}
	result, err := s.debug.Launch(req)
	if err != nil {
		return nil, newError(ErrInternalError, err.Error())
	}
	return result, nil
}
