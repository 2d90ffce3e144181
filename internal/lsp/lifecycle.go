package lsp

import (
	"context"
	"encoding/json"
	"os"
	"sync/atomic"

	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/position"
)

type initializeParams struct {
	RootURI      string `json:"rootUri"`
	Capabilities struct {
		General struct {
			PositionEncodings []string `json:"positionEncodings"`
		} `json:"general"`
		Workspace struct {
			SemanticTokens struct {
				RefreshSupport bool `json:"refreshSupport"`
			} `json:"semanticTokens"`
			CodeLens struct {
				RefreshSupport bool `json:"refreshSupport"`
			} `json:"codeLens"`
			InlayHint struct {
				RefreshSupport bool `json:"refreshSupport"`
			} `json:"inlayHint"`
			InlineValue struct {
				RefreshSupport bool `json:"refreshSupport"`
			} `json:"inlineValue"`
			Diagnostics struct {
				RefreshSupport bool `json:"refreshSupport"`
			} `json:"diagnostics"`
			FoldingRange struct {
				RefreshSupport bool `json:"refreshSupport"`
			} `json:"foldingRange"`
		} `json:"workspace"`
	} `json:"capabilities"`
}

func (s *Server) handleInitialize(params json.RawMessage) (any, *RPCError) {
	var p initializeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: initialize")
	}

	s.workspaceURI = p.RootURI

	s.clientCaps = clientCapabilities{
		PositionEncodings:     p.Capabilities.General.PositionEncodings,
		SemanticTokensRefresh: p.Capabilities.Workspace.SemanticTokens.RefreshSupport,
		CodeLensRefresh:       p.Capabilities.Workspace.CodeLens.RefreshSupport,
		InlayHintRefresh:      p.Capabilities.Workspace.InlayHint.RefreshSupport,
		InlineValueRefresh:    p.Capabilities.Workspace.InlineValue.RefreshSupport,
		DiagnosticRefresh:     p.Capabilities.Workspace.Diagnostics.RefreshSupport,
		FoldingRangeRefresh:   p.Capabilities.Workspace.FoldingRange.RefreshSupport,
	}
	s.posEncoding = negotiateEncoding(p.Capabilities.General.PositionEncodings)

	atomic.StoreInt32(&s.initialized, 1)

	return map[string]any{
		"capabilities": s.capabilities(),
		"serverInfo": map[string]any{
			"name":    "perl-lsp",
			"version": "dev",
		},
	}, nil
}

func negotiateEncoding(offered []string) position.Encoding {
	for _, e := range offered {
		if position.Encoding(e) == position.UTF8 {
			return position.UTF8
		}
	}
	for _, e := range offered {
		if position.Encoding(e) == position.UTF32 {
			return position.UTF32
		}
	}
	return position.UTF16
}

func (s *Server) capabilities() map[string]any {
	return map[string]any{
		"positionEncoding": string(s.posEncoding),
		"textDocumentSync": map[string]any{
			"openClose": true,
			"change":    2, // Incremental
			"save":      map[string]any{"includeText": false},
		},
		"hoverProvider":          true,
		"definitionProvider":     true,
		"declarationProvider":    true,
		"referencesProvider":     true,
		"documentSymbolProvider": true,
		"workspaceSymbolProvider": true,
		"completionProvider": map[string]any{
			"triggerCharacters": []string{"$", "@", "%", ":", "-", ">"},
			"resolveProvider":   true,
		},
		"signatureHelpProvider": map[string]any{
			"triggerCharacters": []string{"(", ","},
		},
		"codeActionProvider": map[string]any{
			"codeActionKinds": []string{"quickfix", "refactor", "source.organizeImports"},
			"resolveProvider": true,
		},
		"codeLensProvider":    map[string]any{"resolveProvider": true},
		"documentLinkProvider": map[string]any{"resolveProvider": true},
		"foldingRangeProvider":    true,
		"selectionRangeProvider":  true,
		"documentHighlightProvider": true,
		"renameProvider":          map[string]any{"prepareProvider": true},
		"documentFormattingProvider":      true,
		"documentRangeFormattingProvider": true,
		"semanticTokensProvider": map[string]any{
			"legend": map[string]any{
				"tokenTypes":     semanticTokenTypes,
				"tokenModifiers": semanticTokenModifiers,
			},
			"full":  map[string]any{"delta": true},
			"range": true,
		},
		"inlayHintProvider":  map[string]any{"resolveProvider": true},
		"inlineValueProvider": true,
		"callHierarchyProvider": true,
		"typeHierarchyProvider": true,
		"monikerProvider":       true,
		"colorProvider":         true,
		"linkedEditingRangeProvider": true,
		"diagnosticProvider": map[string]any{
			"interFileDependencies": true,
			"workspaceDiagnostics":  true,
		},
		"notebookDocumentSync": map[string]any{
			"notebookSelector": []map[string]any{
				{"notebook": map[string]any{"notebookType": "*"}},
			},
		},
		"executeCommandProvider": map[string]any{
			"commands": commandNames,
		},
	}
}

func (s *Server) handleInitialized() {
	if s.coord != nil {
		go s.coord.RunInitialScan(context.Background())
	}
}

func (s *Server) handleShutdown() (any, *RPCError) {
	atomic.StoreInt32(&s.shutdown, 1)
	return nil, nil
}

func (s *Server) handleExit() {
	if atomic.LoadInt32(&s.shutdown) == 1 {
		return
	}
	os.Exit(1)
}

func (s *Server) handleSetTrace(params json.RawMessage) {
	var p struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	s.traceMu.Lock()
	s.traceLevel = p.Value
	s.traceMu.Unlock()
}

// logTrace emits a $/logTrace notification when tracing is enabled.
func (s *Server) logTrace(message, verbose string) {
	s.traceMu.Lock()
	level := s.traceLevel
	s.traceMu.Unlock()
	if level == "off" || level == "" {
		return
	}
	params := map[string]any{"message": message}
	if level == "verbose" && verbose != "" {
		params["verbose"] = verbose
	}
	s.sendNotification("$/logTrace", params)
}

func (s *Server) handleCancelRequest(params json.RawMessage) {
	var p struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	s.markCanceled(string(p.ID))
}

func (s *Server) handleWorkDoneProgressCancel(params json.RawMessage) {
	var p struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	s.outboundMu.Lock()
	reqID, ok := s.progressMap[p.Token]
	s.outboundMu.Unlock()
	if ok {
		s.markCanceled(reqID)
	}
}

// beginProgress registers a work-done progress token for reqID and
// (if the client supports it) asks it to create a progress UI entry.
func (s *Server) beginProgress(ctx context.Context, reqID, token, title string) {
	s.outboundMu.Lock()
	s.progressMap[token] = reqID
	s.outboundMu.Unlock()

	_, _ = s.sendOutboundRequest(ctx, "window/workDoneProgress/create", map[string]any{"token": token})
	s.sendNotification("$/progress", map[string]any{
		"token": token,
		"value": map[string]any{"kind": "begin", "title": title},
	})
}

func (s *Server) endProgress(token string) {
	s.sendNotification("$/progress", map[string]any{
		"token": token,
		"value": map[string]any{"kind": "end"},
	})
	s.outboundMu.Lock()
	delete(s.progressMap, token)
	s.outboundMu.Unlock()
}
