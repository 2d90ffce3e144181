package lsp

import "encoding/json"

// Perl has no notebook ecosystem of its own; these handlers exist only
// because LSP 3.17 requires any server advertising notebookDocumentSync
// to accept the corresponding notifications. Each cell is tracked as an
// ordinary open document keyed by its own cell URI, so every other
// language feature (hover, definition, completion, ...) works inside a
// notebook cell exactly as it does in a plain file.

type notebookCell struct {
	Kind     int    `json:"kind"`
	Document string `json:"document"`
}

type notebookCellTextDocument struct {
	URI  string `json:"uri"`
	Text string `json:"text"`
}

func (s *Server) handleNotebookDidOpen(params json.RawMessage) {
	var p struct {
		CellTextDocuments []notebookCellTextDocument `json:"cellTextDocuments"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	for _, cell := range p.CellTextDocuments {
		s.docs.Open(cell.URI, 1, cell.Text)
		s.applyToIndex(cell.URI, cell.Text, false)
	}
}

func (s *Server) handleNotebookDidChange(params json.RawMessage) {
	var p struct {
		Change struct {
			Cells struct {
				Structure struct {
					DidOpen  []notebookCellTextDocument `json:"didOpen"`
					DidClose []textDocumentIdentifier   `json:"didClose"`
				} `json:"structure"`
				TextContent []struct {
					Document versionedTextDocumentIdentifier `json:"document"`
					Changes  []contentChangeEvent             `json:"changes"`
				} `json:"textContent"`
			} `json:"cells"`
		} `json:"change"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}

	for _, cell := range p.Change.Cells.Structure.DidOpen {
		s.docs.Open(cell.URI, 1, cell.Text)
		s.applyToIndex(cell.URI, cell.Text, false)
	}
	for _, cell := range p.Change.Cells.Structure.DidClose {
		s.docs.Close(cell.URI)
		s.applyToIndex(cell.URI, "", true)
	}
	for _, tc := range p.Change.Cells.TextContent {
		s.docs.Change(tc.Document.URI, tc.Document.Version, toDocEdits(s, tc.Changes))
		if snap, ok := s.docs.Get(tc.Document.URI); ok {
			s.applyToIndex(tc.Document.URI, snap.Text, false)
		}
	}
}

func (s *Server) handleNotebookDidClose(params json.RawMessage) {
	var p struct {
		CellTextDocuments []textDocumentIdentifier `json:"cellTextDocuments"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	for _, cell := range p.CellTextDocuments {
		s.docs.Close(cell.URI)
		s.applyToIndex(cell.URI, "", true)
	}
}
