package lsp

import (
	"context"
	"time"
)

const refreshDebounce = 250 * time.Millisecond

// refresh kinds map onto the workspace/*/refresh request methods; each
// is only sent if the client advertised refreshSupport for it during
// initialize.
const (
	refreshSemanticTokens = "workspace/semanticTokens/refresh"
	refreshCodeLens       = "workspace/codeLens/refresh"
	refreshInlayHint      = "workspace/inlayHint/refresh"
	refreshInlineValue    = "workspace/inlineValue/refresh"
	refreshDiagnostics    = "workspace/diagnostic/refresh"
	refreshFoldingRange   = "workspace/foldingRange/refresh"
)

// requestRefresh schedules a debounced workspace/*/refresh request. A
// burst of index mutations within the debounce window collapses to a
// single outbound request per kind, since most editors re-fetch from
// scratch on any refresh signal regardless of how many fired.
func (s *Server) requestRefresh(kind string) {
	if !s.clientSupportsRefresh(kind) {
		return
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	s.refreshPending[kind] = true
	if s.refreshTimer != nil {
		return
	}
	s.refreshTimer = time.AfterFunc(refreshDebounce, s.flushRefresh)
}

func (s *Server) flushRefresh() {
	s.refreshMu.Lock()
	pending := s.refreshPending
	s.refreshPending = make(map[string]bool)
	s.refreshTimer = nil
	s.refreshMu.Unlock()

	for kind := range pending {
		go func(method string) {
			_, _ = s.sendOutboundRequest(context.Background(), method, nil)
		}(kind)
	}
}

func (s *Server) clientSupportsRefresh(kind string) bool {
	switch kind {
	case refreshSemanticTokens:
		return s.clientCaps.SemanticTokensRefresh
	case refreshCodeLens:
		return s.clientCaps.CodeLensRefresh
	case refreshInlayHint:
		return s.clientCaps.InlayHintRefresh
	case refreshInlineValue:
		return s.clientCaps.InlineValueRefresh
	case refreshDiagnostics:
		return s.clientCaps.DiagnosticRefresh
	case refreshFoldingRange:
		return s.clientCaps.FoldingRangeRefresh
	default:
		return false
	}
}
