package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"
)

func TestRequestsRejectedBeforeInitialize(t *testing.T) {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	defer inW.Close()
	defer outR.Close()

	srv, _ := newTestServer(t, inR, outW)
	done := make(chan struct{})
	go func() {
		_ = srv.Run()
		close(done)
	}()

	outReader := bufio.NewReader(outR)
	writeFramedJSON(t, inW, map[string]any{
		"jsonrpc": "2.0", "id": 1, "method": "textDocument/hover", "params": map[string]any{},
	})

	msg, err := readFramedJSON(t, outReader, 5*time.Second)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	errObj, ok := msg["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected an error response before initialize, got %v", msg)
	}
	if code, _ := errObj["code"].(float64); int(code) != ErrServerNotInitialized {
		t.Fatalf("expected ErrServerNotInitialized, got %v", errObj["code"])
	}

	writeFramedJSON(t, inW, map[string]any{"jsonrpc": "2.0", "method": "exit"})
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not exit")
	}
}

func TestRequestsRejectedAfterShutdown(t *testing.T) {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	defer inW.Close()
	defer outR.Close()

	srv, _ := newTestServer(t, inR, outW)
	done := make(chan struct{})
	go func() {
		_ = srv.Run()
		close(done)
	}()

	outReader := bufio.NewReader(outR)
	runInitialized(t, inW, outReader)

	writeFramedJSON(t, inW, map[string]any{"jsonrpc": "2.0", "id": 2, "method": "shutdown"})
	if _, err := readFramedJSON(t, outReader, 5*time.Second); err != nil {
		t.Fatalf("read shutdown response: %v", err)
	}

	writeFramedJSON(t, inW, map[string]any{
		"jsonrpc": "2.0", "id": 3, "method": "textDocument/hover", "params": map[string]any{},
	})
	msg, err := readFramedJSON(t, outReader, 5*time.Second)
	if err != nil {
		t.Fatalf("read post-shutdown response: %v", err)
	}
	if _, ok := msg["error"].(map[string]any); !ok {
		t.Fatalf("expected an error response after shutdown, got %v", msg)
	}

	writeFramedJSON(t, inW, map[string]any{"jsonrpc": "2.0", "method": "exit"})
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not exit after exit following shutdown")
	}
}

func TestWillSaveWaitUntilReturnsEmptyEdits(t *testing.T) {
	srv, _ := newTestServer(t, nil, discardWriter{})
	srv.docs.Open("file:///t.pl", 1, "1;\n")

	params, _ := json.Marshal(map[string]any{
		"textDocument": map[string]any{"uri": "file:///t.pl"},
		"reason":       1,
	})
	result, rpcErr := srv.dispatchRequest(context.Background(), `"1"`, "textDocument/willSaveWaitUntil", params)
	if rpcErr != nil {
		t.Fatalf("dispatchRequest willSaveWaitUntil: %v", rpcErr)
	}
	edits, ok := result.([]any)
	if !ok || len(edits) != 0 {
		t.Fatalf("expected an empty edit list, got %v", result)
	}
}

func TestUnknownMethodReturnsMethodNotFound(t *testing.T) {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	defer inW.Close()
	defer outR.Close()

	srv, _ := newTestServer(t, inR, outW)
	done := make(chan struct{})
	go func() {
		_ = srv.Run()
		close(done)
	}()

	outReader := bufio.NewReader(outR)
	runInitialized(t, inW, outReader)

	writeFramedJSON(t, inW, map[string]any{
		"jsonrpc": "2.0", "id": 2, "method": "textDocument/bogusFeature", "params": map[string]any{},
	})
	msg, err := readFramedJSON(t, outReader, 5*time.Second)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	errObj, ok := msg["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected an error response, got %v", msg)
	}
	if code, _ := errObj["code"].(float64); int(code) != ErrMethodNotFound {
		t.Fatalf("expected ErrMethodNotFound, got %v", errObj["code"])
	}

	writeFramedJSON(t, inW, map[string]any{"jsonrpc": "2.0", "method": "exit"})
	<-done
}
