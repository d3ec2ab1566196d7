// Package testutil provides in-process test doubles for exercising the
// client-side protocol stack without a real MUD server.
package testutil

import (
	"fmt"
	"net"
	"testing"
	"time"
)

// FakeServer is a single-connection in-process TCP listener standing in for
// a MUD server during tests. It accepts exactly one connection and lets the
// test script bytes at it and read back whatever the client under test
// writes.
type FakeServer struct {
	t        *testing.T
	listener net.Listener
	conn     net.Conn
}

// NewFakeServer starts listening on an ephemeral loopback port.
//
// Postcondition: Returns a FakeServer whose Addr() is ready to dial.
func NewFakeServer(t *testing.T) *FakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("testutil.NewFakeServer: listen: %v", err)
	}
	s := &FakeServer{t: t, listener: ln}
	t.Cleanup(func() {
		_ = ln.Close()
		if s.conn != nil {
			_ = s.conn.Close()
		}
	})
	return s
}

// Addr returns the "host:port" clients should dial.
func (s *FakeServer) Addr() string {
	return s.listener.Addr().String()
}

// Accept blocks until a client connects, once.
//
// Precondition: Accept has not already succeeded on this FakeServer.
func (s *FakeServer) Accept() {
	s.t.Helper()
	conn, err := s.listener.Accept()
	if err != nil {
		s.t.Fatalf("testutil.FakeServer.Accept: %v", err)
	}
	s.conn = conn
}

// Send writes raw bytes to the accepted connection.
//
// Precondition: Accept must have been called.
func (s *FakeServer) Send(b []byte) {
	s.t.Helper()
	_ = s.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := s.conn.Write(b); err != nil {
		s.t.Fatalf("testutil.FakeServer.Send: %v", err)
	}
}

// SendLine writes text + "\r\n".
func (s *FakeServer) SendLine(text string) {
	s.Send([]byte(fmt.Sprintf("%s\r\n", text)))
}

// ReadSome reads up to one buffer's worth of bytes with a short deadline,
// returning whatever arrived (possibly empty on timeout).
func (s *FakeServer) ReadSome(timeout time.Duration) []byte {
	s.t.Helper()
	_ = s.conn.SetReadDeadline(time.Now().Add(timeout))
	buf := make([]byte, 4096)
	n, err := s.conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil
		}
		return buf[:n]
	}
	return buf[:n]
}

// Close closes the accepted connection, simulating the server hanging up.
func (s *FakeServer) Close() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
}
