package lsp

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/index"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/lexer"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/position"
)

type textDocumentPositionParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     lspPosition            `json:"position"`
}

func toLSPPosition(p position.Position) lspPosition {
	return lspPosition{Line: p.Line, Character: p.Column}
}

func toLSPRange(r position.Range) lspRange {
	return lspRange{Start: toLSPPosition(r.Start), End: toLSPPosition(r.End)}
}

// tokenAtPosition re-lexes a document's text and returns the token
// whose span contains the requested position, if any. There is no
// cached token stream per document in this module's scope, so
// position-sensitive handlers re-tokenize on demand.
func tokenAtPosition(text string, pos lspPosition) (lexer.Token, bool) {
	ls := position.BuildLineStarts(text)
	offset := ls.ToOffset(text, pos.Line, pos.Character, position.UTF16)

	l := lexer.New(text)
	for {
		tok := l.NextToken()
		if tok.Kind == lexer.KindEOF {
			break
		}
		if offset >= tok.Start && offset < tok.End {
			return tok, true
		}
	}
	return lexer.Token{}, false
}

// symbolKeyAtPosition resolves the identifier/variable token under pos
// to the SymbolKey a sub/package/variable declaration would carry.
// Package-qualification (Foo::Bar::baz) is not resolved here; the
// lookup falls back to the "main" package when no exact match exists.
func symbolKeyAtPosition(text string, pos lspPosition) (index.SymbolKey, bool) {
	tok, ok := tokenAtPosition(text, pos)
	if !ok {
		return index.SymbolKey{}, false
	}
	switch tok.Kind {
	case lexer.KindVariable:
		if len(tok.Lexeme) < 2 {
			return index.SymbolKey{}, false
		}
		return index.SymbolKey{Sigil: tok.Lexeme[0], Name: strings.TrimLeft(tok.Lexeme[1:], "{}")}, true
	case lexer.KindIdentifier:
		return index.SymbolKey{Name: tok.Lexeme}, true
	default:
		return index.SymbolKey{}, false
	}
}

// lookupAcrossPackages finds a symbol matching key's name/sigil: first
// with key's own package, then in package "main", then with no package.
// Other packages are not searched (best-effort - no `use`/import
// resolution exists in this module's scope).
func lookupAcrossPackages(idx *index.SymbolIndex, mode indexModeFunc, key index.SymbolKey) (*index.Symbol, bool) {
	if sym, ok := mode(key); ok {
		return sym, true
	}
	for _, pkg := range []string{"main", ""} {
		k := key
		k.Package = pkg
		if sym, ok := mode(k); ok {
			return sym, true
		}
	}
	return nil, false
}

type indexModeFunc func(index.SymbolKey) (*index.Symbol, bool)

// symbolIndexFor routes a read to the shared workspace index when it is
// Ready, and otherwise builds a throwaway index from open documents
// only. Partial (Building/Degraded/Recovering) and None both mean the
// shared index may be stale or absent, so reads must not touch it
// directly - scanning the open-document snapshot is the only source
// guaranteed current.
func (s *Server) symbolIndexFor() (*index.SymbolIndex, bool) {
	mode, _ := index.RouteIndexAccess(s.coord)
	if mode == index.AccessFull {
		return s.coord.Index(), true
	}
	return s.openDocsIndex(), true
}

// openDocsIndex builds a SymbolIndex from the currently open documents
// by re-running the same token-level extraction the watcher/coordinator
// path uses, so degraded-mode query results stay consistent with
// full-mode ones for whatever is actually open.
func (s *Server) openDocsIndex() *index.SymbolIndex {
	idx := index.NewSymbolIndex()
	for _, snap := range s.docs.SnapshotScan() {
		idx.IndexFile(snap.URI, index.ExtractFileSymbols(snap.URI, snap.Text))
	}
	return idx
}

func (s *Server) handleHover(params json.RawMessage) (any, *RPCError) {
	var p textDocumentPositionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: hover")
	}
	snap, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	key, ok := symbolKeyAtPosition(snap.Text, p.Position)
	if !ok {
		return nil, nil
	}
	idx, ok := s.symbolIndexFor()
	if !ok {
		return nil, nil
	}
	sym, ok := lookupAcrossPackages(idx, idx.Lookup, key)
	if !ok {
		return nil, nil
	}

	return map[string]any{
		"contents": map[string]any{
			"kind":  "markdown",
			"value": "`" + sym.Key.String() + "`",
		},
	}, nil
}

func (s *Server) handleDefinition(params json.RawMessage) (any, *RPCError) {
	var p textDocumentPositionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: definition")
	}
	snap, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	key, ok := symbolKeyAtPosition(snap.Text, p.Position)
	if !ok {
		return nil, nil
	}
	idx, ok := s.symbolIndexFor()
	if !ok {
		return nil, nil
	}
	sym, ok := lookupAcrossPackages(idx, idx.Lookup, key)
	if !ok || sym.DefinedAt.URI == "" {
		return nil, nil
	}
	return locationResult(sym.DefinedAt), nil
}

func locationResult(loc index.Location) map[string]any {
	return map[string]any{
		"uri":   loc.URI,
		"range": toLSPRange(loc.Range),
	}
}

type referenceParams struct {
	textDocumentPositionParams
	Context struct {
		IncludeDeclaration bool `json:"includeDeclaration"`
	} `json:"context"`
}

func (s *Server) handleReferences(params json.RawMessage) (any, *RPCError) {
	var p referenceParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: references")
	}
	snap, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return []any{}, nil
	}
	key, ok := symbolKeyAtPosition(snap.Text, p.Position)
	if !ok {
		return []any{}, nil
	}
	idx, ok := s.symbolIndexFor()
	if !ok {
		return []any{}, nil
	}
	sym, ok := lookupAcrossPackages(idx, idx.Lookup, key)
	if !ok {
		return []any{}, nil
	}

	var out []any
	if p.Context.IncludeDeclaration && sym.DefinedAt.URI != "" {
		out = append(out, locationResult(sym.DefinedAt))
	}
	for _, ref := range sym.References {
		out = append(out, locationResult(ref))
	}
	return out, nil
}

func (s *Server) handleDocumentSymbol(params json.RawMessage) (any, *RPCError) {
	var p struct {
		TextDocument textDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: documentSymbol")
	}
	snap, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return []any{}, nil
	}

	facts := index.ExtractFileSymbols(p.TextDocument.URI, snap.Text)
	out := make([]any, 0, len(facts))
	for _, f := range facts {
		if !f.IsDefSite {
			continue
		}
		out = append(out, map[string]any{
			"name":           f.Key.String(),
			"kind":           lspSymbolKind(f.Kind),
			"range":          toLSPRange(f.Location.Range),
			"selectionRange": toLSPRange(f.Location.Range),
		})
	}
	return out, nil
}

func lspSymbolKind(k index.SymbolKind) int {
	switch k {
	case index.KindSubroutine:
		return 12 // Function
	case index.KindPackage:
		return 3 // Namespace
	case index.KindScalar, index.KindArray, index.KindHash:
		return 13 // Variable
	case index.KindConstant:
		return 14 // Constant
	default:
		return 13
	}
}

func (s *Server) handleWorkspaceSymbol(ctx context.Context, reqID string, params json.RawMessage) (any, *RPCError) {
	var p struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: workspace/symbol")
	}
	idx, ok := s.symbolIndexFor()
	if !ok {
		return []any{}, nil
	}

	capN := s.cfg.WorkspaceSymbolCap
	if capN <= 0 {
		capN = 500
	}
	canceled := false
	syms := idx.Search(p.Query, capN, func() {
		if s.isCanceled(reqID) {
			canceled = true
		}
	})
	if canceled {
		return nil, newError(ErrRequestCancelled, "cancelled")
	}

	out := make([]any, 0, len(syms))
	for _, sym := range syms {
		if sym.DefinedAt.URI == "" {
			continue
		}
		out = append(out, map[string]any{
			"name":     sym.Key.String(),
			"kind":     lspSymbolKind(sym.Kind),
			"location": locationResult(sym.DefinedAt),
		})
	}
	return out, nil
}

var perlBuiltins = []string{
	"print", "say", "printf", "sort", "map", "grep", "split", "join",
	"push", "pop", "shift", "unshift", "keys", "values", "each",
	"bless", "ref", "wantarray", "undef", "defined", "exists", "delete",
	"die", "warn", "local", "my", "our", "state", "sub", "return",
	"if", "unless", "while", "until", "for", "foreach", "package", "use",
}

func (s *Server) handleCompletion(params json.RawMessage) (any, *RPCError) {
	var p textDocumentPositionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: completion")
	}
	snap, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return map[string]any{"isIncomplete": false, "items": []any{}}, nil
	}

	prefix := completionPrefix(snap.Text, p.Position)

	items := make([]any, 0, len(perlBuiltins))
	for _, kw := range perlBuiltins {
		if prefix == "" || strings.HasPrefix(kw, prefix) {
			items = append(items, map[string]any{"label": kw, "kind": 14})
		}
	}

	if idx, ok := s.symbolIndexFor(); ok {
		for _, sym := range idx.Search(prefix, 200, nil) {
			items = append(items, map[string]any{
				"label": sym.Key.Name,
				"kind":  lspSymbolKind(sym.Kind),
			})
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].(map[string]any)["label"].(string) < items[j].(map[string]any)["label"].(string)
	})

	return map[string]any{"isIncomplete": false, "items": items}, nil
}

// completionPrefix scans backward from pos to the start of the
// identifier/variable fragment the cursor is sitting inside of.
func completionPrefix(text string, pos lspPosition) string {
	ls := position.BuildLineStarts(text)
	offset := ls.ToOffset(text, pos.Line, pos.Character, position.UTF16)
	start := offset
	for start > 0 {
		c := text[start-1]
		if c == '_' || c == '$' || c == '@' || c == '%' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			start--
			continue
		}
		break
	}
	if start > offset || offset > len(text) {
		return ""
	}
	return text[start:offset]
}

func (s *Server) handleCompletionResolve(params json.RawMessage) (any, *RPCError) {
	var item map[string]any
	if err := json.Unmarshal(params, &item); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: completionItem/resolve")
	}
	return item, nil
}

func (s *Server) handleSignatureHelp(params json.RawMessage) (any, *RPCError) {
	return nil, nil
}

func (s *Server) handleDocumentHighlight(params json.RawMessage) (any, *RPCError) {
	var p textDocumentPositionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: documentHighlight")
	}
	snap, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return []any{}, nil
	}
	tok, ok := tokenAtPosition(snap.Text, p.Position)
	if !ok || (tok.Kind != lexer.KindIdentifier && tok.Kind != lexer.KindVariable) {
		return []any{}, nil
	}

	ls := position.BuildLineStarts(snap.Text)
	l := lexer.New(snap.Text)
	var out []any
	for {
		t := l.NextToken()
		if t.Kind == lexer.KindEOF {
			break
		}
		if t.Kind == tok.Kind && t.Lexeme == tok.Lexeme {
			out = append(out, map[string]any{
				"range": toLSPRange(position.Range{
					Start: ls.ToPosition(snap.Text, t.Start, position.UTF16),
					End:   ls.ToPosition(snap.Text, t.End, position.UTF16),
				}),
			})
		}
	}
	return out, nil
}

func (s *Server) handlePrepareRename(params json.RawMessage) (any, *RPCError) {
	var p textDocumentPositionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: prepareRename")
	}
	snap, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return nil, newError(ErrInvalidRequest, "document not open")
	}
	tok, ok := tokenAtPosition(snap.Text, p.Position)
	if !ok || (tok.Kind != lexer.KindIdentifier && tok.Kind != lexer.KindVariable) {
		return nil, newError(ErrInvalidRequest, "no renameable symbol at position")
	}
	ls := position.BuildLineStarts(snap.Text)
	return map[string]any{
		"range": toLSPRange(position.Range{
			Start: ls.ToPosition(snap.Text, tok.Start, position.UTF16),
			End:   ls.ToPosition(snap.Text, tok.End, position.UTF16),
		}),
		"placeholder": tok.Lexeme,
	}, nil
}

func (s *Server) handleRename(params json.RawMessage) (any, *RPCError) {
	var p struct {
		textDocumentPositionParams
		NewName string `json:"newName"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: rename")
	}
	snap, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return nil, newError(ErrInvalidRequest, "document not open")
	}
	key, ok := symbolKeyAtPosition(snap.Text, p.Position)
	if !ok {
		return nil, newError(ErrInvalidRequest, "no renameable symbol at position")
	}
	idx, ok := s.symbolIndexFor()
	if !ok {
		return nil, newError(ErrInvalidRequest, "workspace index unavailable")
	}
	sym, ok := lookupAcrossPackages(idx, idx.Lookup, key)
	if !ok {
		return nil, newError(ErrInvalidRequest, "symbol not found")
	}

	byURI := map[string][]any{}
	addEdit := func(loc index.Location) {
		byURI[loc.URI] = append(byURI[loc.URI], map[string]any{
			"range":   toLSPRange(loc.Range),
			"newText": p.NewName,
		})
	}
	if sym.DefinedAt.URI != "" {
		addEdit(sym.DefinedAt)
	}
	for _, ref := range sym.References {
		addEdit(ref)
	}

	changes := map[string]any{}
	for uri, edits := range byURI {
		changes[uri] = edits
	}
	return map[string]any{"changes": changes}, nil
}

func (s *Server) handleFoldingRange(params json.RawMessage) (any, *RPCError) {
	var p struct {
		TextDocument textDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: foldingRange")
	}
	snap, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return []any{}, nil
	}

	ls := position.BuildLineStarts(snap.Text)
	l := lexer.New(snap.Text)
	var out []any
	for {
		tok := l.NextToken()
		if tok.Kind == lexer.KindEOF {
			break
		}
		switch tok.Kind {
		case lexer.KindPod, lexer.KindHeredocBody, lexer.KindFormatBody:
			startLine := ls.ToPosition(snap.Text, tok.Start, position.UTF16).Line
			endLine := ls.ToPosition(snap.Text, tok.End, position.UTF16).Line
			if endLine > startLine {
				kind := "region"
				if tok.Kind == lexer.KindPod {
					kind = "comment"
				}
				out = append(out, map[string]any{
					"startLine": startLine,
					"endLine":   endLine,
					"kind":      kind,
				})
			}
		}
	}
	return out, nil
}

func (s *Server) handleSelectionRange(params json.RawMessage) (any, *RPCError) {
	var p struct {
		TextDocument textDocumentIdentifier `json:"textDocument"`
		Positions    []lspPosition          `json:"positions"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: selectionRange")
	}
	snap, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return []any{}, nil
	}

	out := make([]any, 0, len(p.Positions))
	for _, pos := range p.Positions {
		tok, ok := tokenAtPosition(snap.Text, pos)
		r := lspRange{Start: pos, End: pos}
		if ok {
			ls := position.BuildLineStarts(snap.Text)
			r = toLSPRange(position.Range{
				Start: ls.ToPosition(snap.Text, tok.Start, position.UTF16),
				End:   ls.ToPosition(snap.Text, tok.End, position.UTF16),
			})
		}
		out = append(out, map[string]any{"range": r})
	}
	return out, nil
}

func (s *Server) handleSemanticTokensFull(params json.RawMessage) (any, *RPCError) {
	var p struct {
		TextDocument textDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: semanticTokens/full")
	}
	snap, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return map[string]any{"data": []int{}}, nil
	}
	return map[string]any{"data": encodeSemanticTokens(snap.Text, 0, 0)}, nil
}

func (s *Server) handleSemanticTokensRange(params json.RawMessage) (any, *RPCError) {
	var p struct {
		TextDocument textDocumentIdentifier `json:"textDocument"`
		Range        lspRange               `json:"range"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: semanticTokens/range")
	}
	snap, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return map[string]any{"data": []int{}}, nil
	}
	ls := position.BuildLineStarts(snap.Text)
	lo := ls.ToOffset(snap.Text, p.Range.Start.Line, p.Range.Start.Character, position.UTF16)
	hi := ls.ToOffset(snap.Text, p.Range.End.Line, p.Range.End.Character, position.UTF16)
	if hi <= lo {
		hi = lo + 1
	}
	return map[string]any{"data": encodeSemanticTokens(snap.Text, lo, hi)}, nil
}

func (s *Server) handleSemanticTokensDelta(params json.RawMessage) (any, *RPCError) {
	// No previous-result cache is kept; fall back to a full re-encode
	// for every delta request.
	var p struct {
		TextDocument textDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: semanticTokens/full/delta")
	}
	snap, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return map[string]any{"data": []int{}}, nil
	}
	return map[string]any{"data": encodeSemanticTokens(snap.Text, 0, 0)}, nil
}

func (s *Server) handleInlayHint(params json.RawMessage) (any, *RPCError)  { return []any{}, nil }
func (s *Server) handleInlayHintResolve(params json.RawMessage) (any, *RPCError) {
	var item map[string]any
	if err := json.Unmarshal(params, &item); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: inlayHint/resolve")
	}
	return item, nil
}
func (s *Server) handleInlineValue(params json.RawMessage) (any, *RPCError) { return []any{}, nil }

func (s *Server) handlePrepareCallHierarchy(params json.RawMessage) (any, *RPCError) {
	var p textDocumentPositionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: prepareCallHierarchy")
	}
	snap, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	key, ok := symbolKeyAtPosition(snap.Text, p.Position)
	if !ok || key.Sigil != 0 {
		return nil, nil
	}
	idx, ok := s.symbolIndexFor()
	if !ok {
		return nil, nil
	}
	sym, ok := lookupAcrossPackages(idx, idx.Lookup, key)
	if !ok || sym.DefinedAt.URI == "" {
		return nil, nil
	}
	return []any{map[string]any{
		"name":           sym.Key.String(),
		"kind":           lspSymbolKind(sym.Kind),
		"uri":            sym.DefinedAt.URI,
		"range":          toLSPRange(sym.DefinedAt.Range),
		"selectionRange": toLSPRange(sym.DefinedAt.Range),
	}}, nil
}

// callHierarchyItem identifies the minimal fields this runtime's
// prepareCallHierarchy result carries, enough to round-trip a lookup.
type callHierarchyItem struct {
	Name  string   `json:"name"`
	URI   string   `json:"uri"`
	Range lspRange `json:"range"`
}

func (s *Server) handleIncomingCalls(params json.RawMessage) (any, *RPCError) {
	var p struct {
		Item callHierarchyItem `json:"item"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: callHierarchy/incomingCalls")
	}
	idx, ok := s.symbolIndexFor()
	if !ok {
		return []any{}, nil
	}
	key := index.SymbolKey{Name: p.Item.Name}
	if i := strings.LastIndex(p.Item.Name, "::"); i >= 0 {
		key = index.SymbolKey{Package: p.Item.Name[:i], Name: p.Item.Name[i+2:]}
	}
	sym, ok := idx.Lookup(key)
	if !ok {
		return []any{}, nil
	}
	out := make([]any, 0, len(sym.References))
	for _, ref := range sym.References {
		out = append(out, map[string]any{
			"from": map[string]any{
				"name":           p.Item.Name,
				"uri":            ref.URI,
				"range":          toLSPRange(ref.Range),
				"selectionRange": toLSPRange(ref.Range),
			},
			"fromRanges": []any{toLSPRange(ref.Range)},
		})
	}
	return out, nil
}

func (s *Server) handleOutgoingCalls(params json.RawMessage) (any, *RPCError) {
	// Determining which subs a given sub's body calls requires a parsed
	// call graph; this module's scope stops at a token-level symbol
	// index, so outgoing calls are reported empty rather than guessed.
	return []any{}, nil
}

func (s *Server) handlePrepareTypeHierarchy(params json.RawMessage) (any, *RPCError) { return nil, nil }
func (s *Server) handleSupertypes(params json.RawMessage) (any, *RPCError)           { return []any{}, nil }
func (s *Server) handleSubtypes(params json.RawMessage) (any, *RPCError)             { return []any{}, nil }

func (s *Server) handleMoniker(params json.RawMessage) (any, *RPCError) {
	var p textDocumentPositionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: moniker")
	}
	snap, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return []any{}, nil
	}
	key, ok := symbolKeyAtPosition(snap.Text, p.Position)
	if !ok {
		return []any{}, nil
	}
	return []any{map[string]any{
		"scheme":     "perl",
		"identifier": key.String(),
		"unique":     "document",
		"kind":       "export",
	}}, nil
}

func (s *Server) handleDocumentColor(params json.RawMessage) (any, *RPCError) { return []any{}, nil }
func (s *Server) handleColorPresentation(params json.RawMessage) (any, *RPCError) {
	return []any{}, nil
}
func (s *Server) handleLinkedEditingRange(params json.RawMessage) (any, *RPCError) { return nil, nil }

func (s *Server) handleCodeAction(params json.RawMessage) (any, *RPCError) { return []any{}, nil }
func (s *Server) handleCodeActionResolve(params json.RawMessage) (any, *RPCError) {
	var action map[string]any
	if err := json.Unmarshal(params, &action); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: codeAction/resolve")
	}
	return action, nil
}

func (s *Server) handleCodeLens(params json.RawMessage) (any, *RPCError) {
	var p struct {
		TextDocument textDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: codeLens")
	}
	snap, ok := s.docs.Get(p.TextDocument.URI)
	if !ok {
		return []any{}, nil
	}
	idx, hasIdx := s.symbolIndexFor()
	facts := index.ExtractFileSymbols(p.TextDocument.URI, snap.Text)

	var out []any
	for _, f := range facts {
		if f.Kind != index.KindSubroutine || !f.IsDefSite {
			continue
		}
		refCount := 0
		if hasIdx {
			if sym, ok := idx.Lookup(f.Key); ok {
				refCount = len(sym.References)
			}
		}
		out = append(out, map[string]any{
			"range": toLSPRange(f.Location.Range),
			"command": map[string]any{
				"title": refCountTitle(refCount),
			},
		})
	}
	return out, nil
}

func refCountTitle(n int) string {
	if n == 1 {
		return "1 reference"
	}
	return itoaInt(n) + " references"
}

func itoaInt(n int) string { return itoa(int64(n)) }

func (s *Server) handleCodeLensResolve(params json.RawMessage) (any, *RPCError) {
	var lens map[string]any
	if err := json.Unmarshal(params, &lens); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: codeLens/resolve")
	}
	return lens, nil
}

func (s *Server) handleDocumentLink(params json.RawMessage) (any, *RPCError) { return []any{}, nil }
func (s *Server) handleDocumentLinkResolve(params json.RawMessage) (any, *RPCError) {
	var link map[string]any
	if err := json.Unmarshal(params, &link); err != nil {
		return nil, newError(ErrInvalidParams, "invalid params: documentLink/resolve")
	}
	return link, nil
}
