package server

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kvshard/kvshard/cache"
	"github.com/kvshard/kvshard/node"
)

// fakeNode implements protocol.Node with an in-memory map, single shard,
// never redirects. Enough to exercise the server's framing end to end.
type fakeNode struct {
	store map[string]string
}

func (f *fakeNode) Get(key string) (string, bool, *node.Redirect) {
	v, ok := f.store[key]
	return v, ok, nil
}

func (f *fakeNode) Put(key, value string, ttl time.Duration) *node.Redirect {
	f.store[key] = value
	return nil
}

func (f *fakeNode) Delete(key string) (bool, *node.Redirect) {
	_, ok := f.store[key]
	delete(f.store, key)
	return ok, nil
}

func (f *fakeNode) Stats() cache.Stats { return cache.Stats{} }

func startTestServer(t *testing.T) (addr string, stop func()) {
	t.Helper()

	n := &fakeNode{store: make(map[string]string)}
	s := New(n, zerolog.Nop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.serve(conn)
		}
	}()

	return ln.Addr().String(), func() { ln.Close() }
}

func TestServer_RoundTrip(t *testing.T) {
	t.Parallel()

	addr, stop := startTestServer(t)
	defer stop()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	rw := bufio.NewReader(conn)

	send := func(cmd string) string {
		if _, err := conn.Write([]byte(cmd + "\n")); err != nil {
			t.Fatalf("Write: %v", err)
		}
		resp, err := rw.ReadString('\n')
		if err != nil {
			t.Fatalf("ReadString: %v", err)
		}
		return resp[:len(resp)-1]
	}

	if got := send("PUT k v"); got != "STORED" {
		t.Fatalf("PUT: got %q", got)
	}
	if got := send("GET k"); got != "VALUE v" {
		t.Fatalf("GET: got %q", got)
	}
	if got := send("DEL k"); got != "DELETED" {
		t.Fatalf("DEL: got %q", got)
	}
	if got := send("GET k"); got != "NOT_FOUND" {
		t.Fatalf("GET after DEL: got %q", got)
	}
}

func TestServer_CRLFAndBlankLinesTolerated(t *testing.T) {
	t.Parallel()

	addr, stop := startTestServer(t)
	defer stop()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("\r\nPUT a b\r\n\r\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	rw := bufio.NewReader(conn)
	resp, err := rw.ReadString('\n')
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if got := resp[:len(resp)-1]; got != "STORED" {
		t.Fatalf("got %q", got)
	}
}

func TestServer_QuitClosesConnection(t *testing.T) {
	t.Parallel()

	addr, stop := startTestServer(t)
	defer stop()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("QUIT\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 16)
	n, err := conn.Read(buf)
	if n != 0 || err == nil {
		t.Fatalf("want EOF with no bytes after QUIT, got n=%d err=%v", n, err)
	}
}

// A peer that writes an unterminated command and then closes its side of
// the connection must get no response at all: the server discards the
// partially framed line instead of dispatching it (spec §4.5/§5).
func TestServer_PartialLineDiscardedOnDisconnect(t *testing.T) {
	t.Parallel()

	addr, stop := startTestServer(t)
	defer stop()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	if _, err := conn.Write([]byte("PUT k v")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Re-dial is not possible on a closed conn, so verify indirectly: open
	// a second connection and confirm the half-sent PUT never landed.
	check, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer check.Close()

	rw := bufio.NewReader(check)
	if _, err := check.Write([]byte("GET k\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	resp, err := rw.ReadString('\n')
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if got := resp[:len(resp)-1]; got != "NOT_FOUND" {
		t.Fatalf("partial line must not have been dispatched, got %q", got)
	}
}
