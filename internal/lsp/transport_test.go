package lsp

import (
	"bytes"
	"strings"
	"testing"
)

func TestFrameReaderReadsOneMessage(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("Content-Length: 17\r\n\r\n")
	buf.WriteString(`{"jsonrpc":"2.0"}`)

	fr := newFrameReader(&buf)
	raw, err := fr.readMessage()
	if err != nil {
		t.Fatalf("readMessage: %v", err)
	}
	if string(raw) != `{"jsonrpc":"2.0"}` {
		t.Fatalf("unexpected body: %s", raw)
	}
}

func TestFrameReaderRejectsOversizedHeader(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("X-Pad: " + strings.Repeat("a", maxHeaderBytes+1) + "\r\n\r\n")

	fr := newFrameReader(&buf)
	if _, err := fr.readMessage(); err == nil {
		t.Fatal("expected an error for an oversized header block")
	}
}

func TestFrameReaderRejectsOversizedContentLength(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("Content-Length: 999999999999\r\n\r\n")

	fr := newFrameReader(&buf)
	if _, err := fr.readMessage(); err == nil {
		t.Fatal("expected an error for a Content-Length beyond the cap")
	}
}

func TestFrameReaderRejectsMissingContentLength(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("Foo: bar\r\n\r\n")

	fr := newFrameReader(&buf)
	if _, err := fr.readMessage(); err == nil {
		t.Fatal("expected an error when no Content-Length header is present")
	}
}

func TestFrameWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	fw := newFrameWriter(&buf)
	if err := fw.writeMessage(map[string]any{"jsonrpc": "2.0", "id": 1}); err != nil {
		t.Fatalf("writeMessage: %v", err)
	}

	fr := newFrameReader(&buf)
	raw, err := fr.readMessage()
	if err != nil {
		t.Fatalf("readMessage: %v", err)
	}
	if !bytes.Contains(raw, []byte(`"id":1`)) {
		t.Fatalf("unexpected round-tripped body: %s", raw)
	}
}
