package lsp

import (
	"context"
	"encoding/json"

	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/document"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/toolrunner"
)

func diagnosticsFor(snap document.Snapshot) []any {
	out := make([]any, 0, len(snap.ParseErrs))
	for _, e := range snap.ParseErrs {
		out = append(out, map[string]any{
			"range":    toLSPRange(e.Range),
			"severity": 1, // Error
			"source":   "perl-lsp",
			"message":  e.Message,
		})
	}
	return out
}

// publishDiagnostics pushes the current parse errors for uri to the
// client as a textDocument/publishDiagnostics notification. Called
// after didOpen and didChange.
func (s *Server) publishDiagnostics(uri string) {
	snap, ok := s.docs.Get(uri)
	if !ok {
		return
	}
	s.sendNotification("textDocument/publishDiagnostics", map[string]any{
		"uri":         uri,
		"version":     snap.Version,
		"diagnostics": diagnosticsFor(snap),
	})
}

func (s *Server) handleDocumentDiagnostic(ctx context.Context, params json.RawMessage) (any, *RPCError) {
	var p struct {
		TextDocument textDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: textDocument/diagnostic")
	}
	snap, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return map[string]any{"kind": "full", "items": []any{}}, nil
	}
	return map[string]any{"kind": "full", "items": diagnosticsFor(snap)}, nil
}

func (s *Server) handleWorkspaceDiagnostic(ctx context.Context, reqID string, params json.RawMessage) (any, *RPCError) {
	var items []any
	for _, snap := range s.docs.SnapshotScan() {
		if s.isCanceled(reqID) {
			return nil, newError(ErrRequestCancelled, "cancelled")
		}
		items = append(items, map[string]any{
			"uri":     snap.URI,
			"version": snap.Version,
			"kind":    "full",
			"items":   diagnosticsFor(snap),
		})
	}
	return map[string]any{"items": items}, nil
}

func (s *Server) handleFormatting(ctx context.Context, params json.RawMessage) (any, *RPCError) {
	var p struct {
		TextDocument textDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: formatting")
	}
	snap, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return nil, newError(ErrInvalidRequest, "document not open")
	}
	if s.tools == nil {
		return []any{}, nil
	}

	toolCtx, cancel := context.WithTimeout(ctx, s.cfg.ToolTimeout())
	defer cancel()
	formatted, err := toolrunner.FormatWithTidy(toolCtx, s.tools, snap.Text, nil)
	if err != nil {
		return nil, newError(ErrInternalError, "perltidy: "+err.Error())
	}
	if formatted == snap.Text {
		return []any{}, nil
	}

	ls := snap.LineStarts
	endPos := ls.ToPosition(snap.Text, len(snap.Text), s.posEncoding)
	return []any{map[string]any{
		"range": lspRange{
			Start: lspPosition{Line: 0, Character: 0},
			End:   toLSPPosition(endPos),
		},
		"newText": formatted,
	}}, nil
}

func (s *Server) handleRangeFormatting(ctx context.Context, params json.RawMessage) (any, *RPCError) {
	var p struct {
		TextDocument textDocumentIdentifier `json:"textDocument"`
		Range        lspRange               `json:"range"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: rangeFormatting")
	}
	// perltidy formats whole files; there is no supported partial-range
	// invocation, so range formatting degrades to full-document
	// formatting and lets the client apply it as a replacement.
	return s.handleFormatting(ctx, mustMarshal(struct {
		TextDocument textDocumentIdentifier `json:"textDocument"`
	}{p.TextDocument}))
}

func mustMarshal(v any) json.RawMessage {
	raw, _ := json.Marshal(v)
	return raw
}
