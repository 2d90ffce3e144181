package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/config"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/document"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/index"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/toolrunner"
)

// writeFramedJSON writes v with Content-Length framing to w, the wire
// shape every handler under test is actually driven through.
func writeFramedJSON(t *testing.T, w io.Writer, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := io.WriteString(w, "Content-Length: "+strconv.Itoa(len(data))+"\r\n\r\n"); err != nil {
		t.Fatalf("header write: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("body write: %v", err)
	}
}

// readFramedJSON reads one framed message off r within timeout.
func readFramedJSON(t *testing.T, r *bufio.Reader, timeout time.Duration) (map[string]any, error) {
	t.Helper()
	type result struct {
		msg map[string]any
		err error
	}
	ch := make(chan result, 1)
	go func() {
		contentLength := -1
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				ch <- result{nil, err}
				return
			}
			if line == "\r\n" || line == "\n" {
				break
			}
			if idx := strings.IndexByte(line, ':'); idx >= 0 {
				name := strings.TrimSpace(strings.ToLower(line[:idx]))
				if name == "content-length" {
					if n, err := strconv.Atoi(strings.TrimSpace(line[idx+1:])); err == nil {
						contentLength = n
					}
				}
			}
		}
		if contentLength < 0 {
			ch <- result{nil, io.ErrUnexpectedEOF}
			return
		}
		body := make([]byte, contentLength)
		if _, err := io.ReadFull(r, body); err != nil {
			ch <- result{nil, err}
			return
		}
		var msg map[string]any
		if err := json.Unmarshal(body, &msg); err != nil {
			ch <- result{nil, err}
			return
		}
		ch <- result{msg, nil}
	}()

	select {
	case res := <-ch:
		return res.msg, res.err
	case <-time.After(timeout):
		return nil, io.ErrNoProgress
	}
}

// newTestServer builds a Server wired to an in-memory coordinator and a
// gomock Runner with no expectations set (tool-shelling handlers are
// exercised separately, with their own expectations).
func newTestServer(t *testing.T, r io.Reader, w io.Writer) (*Server, *toolrunner.MockRunner) {
	t.Helper()
	ctrl := gomock.NewController(t)
	tools := toolrunner.NewMockRunner(ctrl)
	coord := index.NewCoordinator(t.TempDir(), index.DefaultBudgets())
	srv := NewServer(r, w, config.Default(), document.NewStore(), coord, tools)
	return srv, tools
}

// makeIndexReady runs the coordinator's initial scan synchronously over
// its (empty) temp-dir root so State().Phase becomes Ready, routing
// symbolIndexFor to the shared index for tests that seed it directly.
func makeIndexReady(t *testing.T, srv *Server) {
	t.Helper()
	srv.coord.RunInitialScan(context.Background())
}

// runInitialized drives initialize + initialized through srv via in/out
// pipes and returns the reader for subsequent frames.
func runInitialized(t *testing.T, inW io.Writer, outReader *bufio.Reader) {
	t.Helper()
	writeFramedJSON(t, inW, map[string]any{
		"jsonrpc": "2.0", "id": 1, "method": "initialize", "params": map[string]any{},
	})
	msg, err := readFramedJSON(t, outReader, 5*time.Second)
	if err != nil {
		t.Fatalf("read initialize response: %v", err)
	}
	if _, ok := msg["result"].(map[string]any); !ok {
		t.Fatalf("initialize missing result: %v", msg)
	}
	writeFramedJSON(t, inW, map[string]any{
		"jsonrpc": "2.0", "method": "initialized", "params": map[string]any{},
	})
}
