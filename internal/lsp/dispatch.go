package lsp

import (
	"context"
	"encoding/json"
)

// dispatchRequest routes one request method to its handler. Handlers
// return (result, *RPCError); at most one is non-nil, and (nil, nil) is a
// null result.
func (s *Server) dispatchRequest(ctx context.Context, reqID, method string, params json.RawMessage) (any, *RPCError) {
	switch method {
	// Lifecycle
	case "initialize":
		return s.handleInitialize(params)
	case "shutdown":
		return s.handleShutdown()

	// Document sync is all notifications except
	// textDocument/willSaveWaitUntil, routed below.

	// Language features
	case "textDocument/hover":
		return s.handleHover(params)
	case "textDocument/definition":
		return s.handleDefinition(params)
	case "textDocument/declaration":
		return s.handleDefinition(params)
	case "textDocument/references":
		return s.handleReferences(params)
	case "textDocument/documentSymbol":
		return s.handleDocumentSymbol(params)
	case "workspace/symbol":
		return s.handleWorkspaceSymbol(ctx, reqID, params)
	case "textDocument/completion":
		return s.handleCompletion(params)
	case "completionItem/resolve":
		return s.handleCompletionResolve(params)
	case "textDocument/signatureHelp":
		return s.handleSignatureHelp(params)
	case "textDocument/codeAction":
		return s.handleCodeAction(params)
	case "codeAction/resolve":
		return s.handleCodeActionResolve(params)
	case "textDocument/codeLens":
		return s.handleCodeLens(params)
	case "codeLens/resolve":
		return s.handleCodeLensResolve(params)
	case "textDocument/documentLink":
		return s.handleDocumentLink(params)
	case "documentLink/resolve":
		return s.handleDocumentLinkResolve(params)
	case "textDocument/foldingRange":
		return s.handleFoldingRange(params)
	case "textDocument/selectionRange":
		return s.handleSelectionRange(params)
	case "textDocument/documentHighlight":
		return s.handleDocumentHighlight(params)
	case "textDocument/rename":
		return s.handleRename(params)
	case "textDocument/prepareRename":
		return s.handlePrepareRename(params)
	case "textDocument/semanticTokens/full":
		return s.handleSemanticTokensFull(params)
	case "textDocument/semanticTokens/range":
		return s.handleSemanticTokensRange(params)
	case "textDocument/semanticTokens/full/delta":
		return s.handleSemanticTokensDelta(params)
	case "textDocument/inlayHint":
		return s.handleInlayHint(params)
	case "inlayHint/resolve":
		return s.handleInlayHintResolve(params)
	case "textDocument/inlineValue":
		return s.handleInlineValue(params)
	case "textDocument/prepareCallHierarchy":
		return s.handlePrepareCallHierarchy(params)
	case "callHierarchy/incomingCalls":
		return s.handleIncomingCalls(params)
	case "callHierarchy/outgoingCalls":
		return s.handleOutgoingCalls(params)
	case "textDocument/prepareTypeHierarchy":
		return s.handlePrepareTypeHierarchy(params)
	case "typeHierarchy/supertypes":
		return s.handleSupertypes(params)
	case "typeHierarchy/subtypes":
		return s.handleSubtypes(params)
	case "textDocument/moniker":
		return s.handleMoniker(params)
	case "textDocument/documentColor":
		return s.handleDocumentColor(params)
	case "textDocument/colorPresentation":
		return s.handleColorPresentation(params)
	case "textDocument/linkedEditingRange":
		return s.handleLinkedEditingRange(params)
	case "textDocument/diagnostic":
		return s.handleDocumentDiagnostic(ctx, params)
	case "workspace/diagnostic":
		return s.handleWorkspaceDiagnostic(ctx, reqID, params)
	case "textDocument/formatting":
		return s.handleFormatting(ctx, params)
	case "textDocument/rangeFormatting":
		return s.handleRangeFormatting(ctx, params)
	case "textDocument/willSaveWaitUntil":
		return s.handleWillSaveWaitUntil(params)

	// Workspace
	case "workspace/executeCommand":
		return s.handleExecuteCommand(ctx, params)

	// Notebook
	case "notebookDocument/didOpen", "notebookDocument/didChange",
		"notebookDocument/didSave", "notebookDocument/didClose":
		return nil, newError(ErrInvalidRequest, "notebook sync methods are notifications")

	default:
		return nil, newError(ErrMethodNotFound, "method not found: "+method)
	}
}

// dispatchNotification routes one notification method to its handler.
func (s *Server) dispatchNotification(method string, params json.RawMessage) {
	switch method {
	case "initialized":
		s.handleInitialized()
	case "exit":
		s.handleExit()
	case "$/setTrace":
		s.handleSetTrace(params)
	case "$/cancelRequest":
		s.handleCancelRequest(params)
	case "window/workDoneProgress/cancel":
		s.handleWorkDoneProgressCancel(params)

	case "textDocument/didOpen":
		s.handleDidOpen(params)
	case "textDocument/didChange":
		s.handleDidChange(params)
	case "textDocument/willSave":
		// advisory only; no document mutation required.
	case "textDocument/didSave":
		s.handleDidSave(params)
	case "textDocument/didClose":
		s.handleDidClose(params)

	case "workspace/didChangeConfiguration":
		s.handleDidChangeConfiguration(params)
	case "workspace/didChangeWatchedFiles":
		s.handleDidChangeWatchedFiles(params)
	case "workspace/didChangeWorkspaceFolders":
		// folder set changes are out of scope for the single-root
		// workspace this coordinator was constructed with.
	case "workspace/didCreateFiles", "workspace/didRenameFiles", "workspace/didDeleteFiles":
		s.handleFileOperationDidChange(method, params)

	case "notebookDocument/didOpen":
		s.handleNotebookDidOpen(params)
	case "notebookDocument/didChange":
		s.handleNotebookDidChange(params)
	case "notebookDocument/didSave":
		// no separate on-disk tracking; no-op.
	case "notebookDocument/didClose":
		s.handleNotebookDidClose(params)
	}
}
