package lsp

import (
	"encoding/json"

	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/document"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/position"
)

type textDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int32  `json:"version"`
	Text       string `json:"text"`
}

type versionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int32  `json:"version"`
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type contentChangeEvent struct {
	Range       *lspRange `json:"range,omitempty"`
	RangeLength *int      `json:"rangeLength,omitempty"`
	Text        string    `json:"text"`
}

type lspRange struct {
	Start lspPosition `json:"start"`
	End   lspPosition `json:"end"`
}

type lspPosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

func (s *Server) toDocRange(r *lspRange) *position.Range {
	if r == nil {
		return nil
	}
	return &position.Range{
		Start: position.Position{Line: r.Start.Line, Column: r.Start.Character},
		End:   position.Position{Line: r.End.Line, Column: r.End.Character},
	}
}

// toDocEdits converts wire-level content change events into the
// document package's TextEdit shape, preserving order (incremental
// edits must be applied in the sequence the client sent them).
func toDocEdits(s *Server, changes []contentChangeEvent) []document.TextEdit {
	edits := make([]document.TextEdit, 0, len(changes))
	for _, c := range changes {
		edits = append(edits, document.TextEdit{
			Range:   s.toDocRange(c.Range),
			NewText: c.Text,
		})
	}
	return edits
}

func (s *Server) handleDidOpen(params json.RawMessage) {
	var p struct {
		TextDocument textDocumentItem `json:"textDocument"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	s.docs.Open(p.TextDocument.URI, p.TextDocument.Version, p.TextDocument.Text)
	s.applyToIndex(p.TextDocument.URI, p.TextDocument.Text, false)
	s.publishDiagnostics(p.TextDocument.URI)
}

func (s *Server) handleDidChange(params json.RawMessage) {
	var p struct {
		TextDocument   versionedTextDocumentIdentifier `json:"textDocument"`
		ContentChanges []contentChangeEvent             `json:"contentChanges"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}

	edits := toDocEdits(s, p.ContentChanges)
	s.docs.Change(p.TextDocument.URI, p.TextDocument.Version, edits)

	if snap, ok := s.docs.Get(p.TextDocument.URI); ok {
		s.applyToIndex(p.TextDocument.URI, snap.Text, false)
	}
	s.publishDiagnostics(p.TextDocument.URI)
}

func (s *Server) handleDidSave(params json.RawMessage) {
	var p struct {
		TextDocument textDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	s.docs.Save(p.TextDocument.URI)
}

// handleWillSaveWaitUntil answers the request-shaped half of will-save:
// unlike textDocument/willSave (a notification, fire-and-forget), the
// client blocks the actual save on this response. No formatting-on-save
// edit is computed here, so the document is saved as-is.
func (s *Server) handleWillSaveWaitUntil(params json.RawMessage) (any, *RPCError) {
	return []any{}, nil
}

func (s *Server) handleDidClose(params json.RawMessage) {
	var p struct {
		TextDocument textDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	s.docs.Close(p.TextDocument.URI)
}

func (s *Server) handleDidChangeConfiguration(params json.RawMessage) {
	// Settings are loaded once at startup from the config file, env and
	// flags; this notification changes nothing and triggers no refresh.
}

func (s *Server) handleDidChangeWatchedFiles(params json.RawMessage) {
	var p struct {
		Changes []struct {
			URI  string `json:"uri"`
			Type int    `json:"type"` // 1=Created, 2=Changed, 3=Deleted
		} `json:"changes"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	for _, c := range p.Changes {
		if c.Type == 3 {
			s.applyToIndex(c.URI, "", true)
			continue
		}
		if snap, ok := s.docs.Get(c.URI); ok {
			s.applyToIndex(c.URI, snap.Text, false)
		}
	}
}

func (s *Server) handleFileOperationDidChange(method string, params json.RawMessage) {
	var p struct {
		Files []struct {
			OldURI string `json:"oldUri"`
			NewURI string `json:"newUri"`
			URI    string `json:"uri"`
		} `json:"files"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	for _, f := range p.Files {
		switch method {
		case "workspace/didDeleteFiles":
			s.applyToIndex(f.URI, "", true)
		case "workspace/didRenameFiles":
			s.applyToIndex(f.OldURI, "", true)
		}
	}
}

// applyToIndex runs the notify_change -> clear/reindex -> notify_parse_complete
// contract the watcher also drives, so edits from the client and edits
// observed on disk go through identical bookkeeping.
func (s *Server) applyToIndex(uri, content string, removed bool) {
	if s.coord == nil {
		return
	}
	s.coord.ApplyFileChange(uri, content, removed)
	s.requestRefresh(refreshCodeLens)
	s.requestRefresh(refreshSemanticTokens)
}
