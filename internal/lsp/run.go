package lsp

import (
	"io"
	"net"
)

// RunStdio drives s (already constructed over stdin/stdout) until the
// connection closes or exit is received. It is the --stdio entrypoint
// most editors launch the server with.
func RunStdio(s *Server) error {
	return s.Run()
}

// RunSocket listens on addr and serves exactly one client connection
// with s, for editors that attach over TCP instead of stdio.
func RunSocket(addr string, newServer func(io.Reader, io.Writer) *Server) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	conn, err := ln.Accept()
	if err != nil {
		return err
	}
	defer conn.Close()

	s := newServer(conn, conn)
	return s.Run()
}
