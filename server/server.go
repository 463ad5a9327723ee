// Package server runs the TCP front end for a CacheNode: one goroutine per
// connection, a line framer that tolerates CRLF and blank keep-alive lines,
// and delegation of every parsed line to package protocol. Grounded on
// original_source/cache/server.py's handle_client, rewritten around Go's
// net.Listener/goroutine-per-connection idiom in place of Python's blocking
// accept loop.
package server

import (
	"bufio"
	"net"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kvshard/kvshard/protocol"
)

// Server accepts TCP connections on a single address and serves the wire
// protocol against a bound protocol.Node.
type Server struct {
	node protocol.Node
	log  zerolog.Logger
}

// New returns a Server that dispatches every connection's lines to node.
func New(node protocol.Node, log zerolog.Logger) *Server {
	return &Server{node: node, log: log}
}

// ListenAndServe binds addr and serves connections until the listener
// returns an error (including from an external Close).
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	s.log.Info().Str("addr", addr).Msg("listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.serve(conn)
	}
}

// serve handles one connection end to end: read a line, dispatch it,
// write the response, repeat until QUIT, EOF, or a transport error.
func (s *Server) serve(conn net.Conn) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	s.log.Debug().Str("remote", remote).Msg("connection accepted")

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			// EOF or transport error. Any bytes already read in line are an
			// unterminated, partially framed request — discard them rather
			// than dispatching a command the peer never finished sending.
			break
		}

		trimmed := strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(trimmed) == "" {
			continue // blank keep-alive line, silently ignored
		}

		if !s.dispatch(conn, trimmed) {
			break
		}
	}

	s.log.Debug().Str("remote", remote).Msg("connection closed")
}

// dispatch runs one line through the protocol handler and writes the
// response. It returns false when the connection should close (QUIT, or a
// write failure).
func (s *Server) dispatch(conn net.Conn, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}

	resp, quit := protocol.HandleLine(s.node, line)
	if quit {
		return false
	}

	if _, err := conn.Write([]byte(resp + "\n")); err != nil {
		s.log.Debug().Err(err).Msg("write failed, closing connection")
		return false
	}
	return true
}
