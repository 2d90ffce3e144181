package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/config"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/dap"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/document"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/index"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/position"
	"github.com/EffortlessMetrics/perl-lsp-sub001/internal/toolrunner"
)

// Server is the LSP runtime: transport, dispatch table, document store,
// workspace index coordinator, and the bookkeeping cancellation and
// server-initiated requests need.
type Server struct {
	reader *frameReader
	writer *frameWriter
	log    *slog.Logger

	cfg     config.Config
	docs    *document.Store
	coord   *index.Coordinator
	tools   toolrunner.Runner
	debug   dap.Launcher

	initialized int32 // atomic bool
	shutdown    int32 // atomic bool

	clientCaps   clientCapabilities
	posEncoding  position.Encoding
	workspaceURI string

	cancelMu sync.Mutex
	canceled map[string]bool

	outboundMu  sync.Mutex
	nextOutID   int64
	pending     map[int64]chan Response
	progressMap map[string]string // progress token -> request id, for workDoneProgress/cancel

	traceMu    sync.Mutex
	traceLevel string

	refreshMu      sync.Mutex
	refreshPending  map[string]bool
	refreshTimer    *time.Timer
}

// clientCapabilities tracks just the flags the runtime needs to gate
// its own behavior on (refresh support, position encodings offered).
type clientCapabilities struct {
	PositionEncodings []string
	SemanticTokensRefresh bool
	CodeLensRefresh       bool
	InlayHintRefresh      bool
	InlineValueRefresh    bool
	DiagnosticRefresh     bool
	FoldingRangeRefresh   bool
}

// NewServer wires a runtime over r/w using cfg, docs, coord, and tools.
func NewServer(r io.Reader, w io.Writer, cfg config.Config, docs *document.Store, coord *index.Coordinator, tools toolrunner.Runner) *Server {
	return &Server{
		reader:         newFrameReader(r),
		writer:         newFrameWriter(w),
		log:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		cfg:            cfg,
		docs:           docs,
		coord:          coord,
		tools:          tools,
		posEncoding:    position.UTF16,
		canceled:       make(map[string]bool),
		pending:        make(map[int64]chan Response),
		progressMap:    make(map[string]string),
		refreshPending: make(map[string]bool),
		traceLevel:     "off",
	}
}

// SetLogger overrides the destination of structured server logs
// (production wiring points this at stderr, since stdout is the
// transport in --stdio mode).
func (s *Server) SetLogger(l *slog.Logger) { s.log = l }

// SetDebugLauncher wires the perl.launchDebugger gate; the default
// zero-value Launcher leaves debugging disabled.
func (s *Server) SetDebugLauncher(l dap.Launcher) { s.debug = l }

type envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Run drives the read loop until the transport closes or exit is
// received. Requests are dispatched concurrently (one goroutine per
// request) so a slow handler cannot stall cancellation or unrelated
// requests; notifications that mutate document state are processed
// inline to preserve ordering against subsequent requests.
func (s *Server) Run() error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		raw, err := s.reader.readMessage()
		if err != nil {
			return err
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.writer.writeMessage(Response{JSONRPC: "2.0", Error: newError(ErrParseError, "parse error")})
			continue
		}

		if env.ID == nil {
			if env.Method == "exit" {
				// exit without a prior shutdown ends the session with an
				// error, which the host turns into a non-zero exit code.
				if atomic.LoadInt32(&s.shutdown) == 0 {
					return errors.New("lsp: exit received before shutdown")
				}
				return nil
			}
			s.handleNotification(env.Method, env.Params)
			continue
		}

		if respCh := s.tryRouteOutboundResponse(env.ID, raw); respCh {
			continue
		}

		wg.Add(1)
		go func(env envelope) {
			defer wg.Done()
			s.handleRequest(env.ID, env.Method, env.Params)
		}(env)
	}
}

// tryRouteOutboundResponse checks whether raw is actually a Response to
// a server-initiated request (has "result" or "error" but no "method"),
// routing it to the pending channel if so.
func (s *Server) tryRouteOutboundResponse(id json.RawMessage, raw json.RawMessage) bool {
	var probe struct {
		Method *string `json:"method"`
	}
	_ = json.Unmarshal(raw, &probe)
	if probe.Method != nil {
		return false
	}

	var idNum int64
	if err := json.Unmarshal(id, &idNum); err != nil {
		return false
	}

	s.outboundMu.Lock()
	ch, ok := s.pending[idNum]
	if ok {
		delete(s.pending, idNum)
	}
	s.outboundMu.Unlock()
	if !ok {
		return false
	}

	var resp Response
	_ = json.Unmarshal(raw, &resp)
	ch <- resp
	return true
}

func (s *Server) handleRequest(id json.RawMessage, method string, params json.RawMessage) {
	if atomic.LoadInt32(&s.shutdown) == 1 && method != "exit" {
		s.reply(id, nil, newError(ErrInvalidRequest, "server is shutting down"))
		return
	}
	if atomic.LoadInt32(&s.initialized) == 0 && method != "initialize" {
		s.reply(id, nil, newError(ErrServerNotInitialized, "server not initialized"))
		return
	}

	ctx := context.Background()
	reqID := string(id)

	result, rpcErr := s.dispatchRequestRecovered(ctx, reqID, method, params)

	s.cancelMu.Lock()
	delete(s.canceled, reqID)
	s.cancelMu.Unlock()

	s.reply(id, result, rpcErr)
}

// dispatchRequestRecovered wraps dispatchRequest with a panic guard: one
// handler panicking must not take the whole server down with it. The
// client sees an InternalError response for that request and the read
// loop keeps running.
func (s *Server) dispatchRequestRecovered(ctx context.Context, reqID, method string, params json.RawMessage) (result any, rpcErr *RPCError) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("handler panic", "method", method, "id", reqID, "panic", r)
			result = nil
			rpcErr = newError(ErrInternalError, "internal error")
		}
	}()
	return s.dispatchRequest(ctx, reqID, method, params)
}

func (s *Server) handleNotification(method string, params json.RawMessage) {
	if atomic.LoadInt32(&s.initialized) == 0 && method != "exit" && method != "initialize" {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("handler panic", "method", method, "panic", r)
		}
	}()
	s.dispatchNotification(method, params)
}

func (s *Server) reply(id json.RawMessage, result any, rpcErr *RPCError) {
	resp := Response{JSONRPC: "2.0", ID: id}
	if rpcErr != nil {
		resp.Error = rpcErr
	} else {
		resp.Result = result
	}
	_ = s.writer.writeMessage(resp)
}

// isCanceled reports whether reqID has been marked cancelled via
// $/cancelRequest. Long-running handlers poll this at stable points.
func (s *Server) isCanceled(reqID string) bool {
	s.cancelMu.Lock()
	defer s.cancelMu.Unlock()
	return s.canceled[reqID]
}

func (s *Server) markCanceled(reqID string) {
	s.cancelMu.Lock()
	s.canceled[reqID] = true
	s.cancelMu.Unlock()
}

// sendOutboundRequest writes a server-initiated request and blocks
// until a matching response arrives or ctx is done.
func (s *Server) sendOutboundRequest(ctx context.Context, method string, params any) (Response, error) {
	s.outboundMu.Lock()
	s.nextOutID++
	id := s.nextOutID
	ch := make(chan Response, 1)
	s.pending[id] = ch
	s.outboundMu.Unlock()

	raw, _ := json.Marshal(params)
	req := Request{JSONRPC: "2.0", ID: json.RawMessage(itoa(id)), Method: method, Params: raw}
	if err := s.writer.writeMessage(req); err != nil {
		s.outboundMu.Lock()
		delete(s.pending, id)
		s.outboundMu.Unlock()
		return Response{}, err
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		s.outboundMu.Lock()
		delete(s.pending, id)
		s.outboundMu.Unlock()
		return Response{}, ctx.Err()
	}
}

func (s *Server) sendNotification(method string, params any) {
	raw, _ := json.Marshal(params)
	_ = s.writer.writeMessage(Notification{JSONRPC: "2.0", Method: method, Params: raw})
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
