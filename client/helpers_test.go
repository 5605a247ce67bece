// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

package client

import (
	"context"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katzenpost/isc/client/config"
	"github.com/katzenpost/isc/core/wire"
)

const testWait = 5 * time.Second

type eventRecorder struct {
	sync.Mutex

	events []Event
}

func (r *eventRecorder) sink(e Event) {
	r.Lock()
	defer r.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) texts(kind Kind) []string {
	r.Lock()
	defer r.Unlock()
	var out []string
	for _, e := range r.events {
		if m, ok := e.(*MessageEvent); ok && m.Kind == kind {
			out = append(out, m.Text)
		}
	}
	return out
}

func (r *eventRecorder) hasText(kind Kind, text string) bool {
	for _, s := range r.texts(kind) {
		if s == text {
			return true
		}
	}
	return false
}

func (r *eventRecorder) statusEvents() []*ConnectionStatusEvent {
	r.Lock()
	defer r.Unlock()
	var out []*ConnectionStatusEvent
	for _, e := range r.events {
		if s, ok := e.(*ConnectionStatusEvent); ok {
			out = append(out, s)
		}
	}
	return out
}

func (r *eventRecorder) requireText(t *testing.T, kind Kind, text string) {
	t.Helper()
	require.Eventually(t, func() bool { return r.hasText(kind, text) }, testWait, 10*time.Millisecond,
		"never saw %v event %q, got %q", kind, text, r.texts(kind))
}

func (r *eventRecorder) requireState(t *testing.T, s State) *ConnectionStatusEvent {
	t.Helper()
	var found *ConnectionStatusEvent
	require.Eventually(t, func() bool {
		for _, e := range r.statusEvents() {
			if e.State == s {
				found = e
				return true
			}
		}
		return false
	}, testWait, 10*time.Millisecond, "never saw state %v", s)
	return found
}

// fakeServer stands in for the teaching server on a loopback port.
type fakeServer struct {
	ln     net.Listener
	connCh chan net.Conn
}

func newFakeServer(t *testing.T) *fakeServer {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &fakeServer{
		ln:     ln,
		connCh: make(chan net.Conn, 1),
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			s.connCh <- conn
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *fakeServer) hostPort(t *testing.T) (string, int) {
	host, port, err := net.SplitHostPort(s.ln.Addr().String())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return host, p
}

func (s *fakeServer) accept(t *testing.T) net.Conn {
	select {
	case conn := <-s.connCh:
		t.Cleanup(func() { conn.Close() })
		return conn
	case <-time.After(testWait):
		t.Fatal("client never connected")
		return nil
	}
}

func newTestConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Logging.Disable = true
	cfg.Debug.ResponseTimeout = 1
	cfg.Debug.HashResponseTimeout = 1
	return cfg
}

func newTestClient(t *testing.T) (*Client, *eventRecorder) {
	rec := new(eventRecorder)
	c, err := New(newTestConfig(t), rec.sink)
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)
	return c, rec
}

// connectedClient returns a client connected to a fresh fake server, and
// the server side of the connection.
func connectedClient(t *testing.T) (*Client, *eventRecorder, net.Conn) {
	c, rec := newTestClient(t)
	s := newFakeServer(t)
	host, port := s.hostPort(t)
	require.NoError(t, c.Open(context.Background(), host, port))
	return c, rec, s.accept(t)
}

func writeText(t *testing.T, conn net.Conn, typ wire.Type, text string) {
	t.Helper()
	b, err := wire.Encode(typ, text)
	require.NoError(t, err)
	_, err = conn.Write(b)
	require.NoError(t, err)
}

func writeValues(t *testing.T, conn net.Conn, values []uint32) {
	t.Helper()
	b, err := wire.EncodeValues(wire.TypeServer, values)
	require.NoError(t, err)
	_, err = conn.Write(b)
	require.NoError(t, err)
}

func readFrame(t *testing.T, conn net.Conn) *wire.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(testWait)))
	f, err := wire.ReadFrame(conn)
	require.NoError(t, err)
	return f
}

func textValues(t *testing.T, text string) []uint32 {
	f, err := wire.NewTextFrame(wire.TypeServer, text)
	require.NoError(t, err)
	return f.Values()
}

func requireTaskDone(t *testing.T, c *Client) {
	t.Helper()
	require.Eventually(t, func() bool { return len(c.taskSlot) == 0 }, testWait, 10*time.Millisecond)
}
