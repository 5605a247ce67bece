// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

package client

import (
	"context"
	"fmt"
	"net"
	"sync"

	"gopkg.in/op/go-logging.v1"

	"github.com/katzenpost/isc/client/instrument"
	"github.com/katzenpost/isc/core/wire"
	"github.com/katzenpost/isc/core/worker"
)

// State is the connection state.
type State int

const (
	// StateDisconnected means no connection exists.
	StateDisconnected State = iota

	// StateConnecting means a connect attempt is in progress.
	StateConnecting

	// StateConnected means the connection is live.
	StateConnected

	// StateFailed means the last connect attempt failed or the connection
	// was lost.
	StateFailed
)

// String returns a string representation of the State.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// connection is one live TCP session with the server.  It owns the socket,
// the receive worker and the Inbox that worker feeds.
type connection struct {
	worker.Worker

	// Serializes writes so frames from the front-end and a task never
	// interleave on the wire.
	sync.Mutex

	c     *Client
	log   *logging.Logger
	conn  net.Conn
	inbox *Inbox

	ctx    context.Context
	cancel context.CancelFunc
}

func newConnection(c *Client, conn net.Conn) *connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &connection{
		c:      c,
		log:    c.logBackend.GetLogger("client/conn"),
		conn:   conn,
		inbox:  NewInbox(c.cfg.Debug.InboxCapacity),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *connection) start() {
	c.log.Debugf("Connected to %v", c.conn.RemoteAddr())
	c.Go(c.receiveWorker)
}

// stop tears the connection down without waiting for the receive worker,
// so it is safe to call from the worker itself.
func (c *connection) stop() {
	c.cancel()
	c.Signal()
	c.conn.Close()
}

// halt tears the connection down and waits for the receive worker.
func (c *connection) halt() {
	c.stop()
	c.Wait()
}

func (c *connection) send(f *wire.Frame) error {
	c.Lock()
	defer c.Unlock()
	if c.IsHalted() {
		return ErrNotConnected
	}
	if _, err := c.conn.Write(f.ToBytes()); err != nil {
		c.log.Errorf("Failed to send '%v' frame: %v", f.Type, err)
		return err
	}
	instrument.FrameSent(f.Type.String())
	return nil
}

func (c *connection) sendText(t wire.Type, text string) error {
	f, err := wire.NewTextFrame(t, text)
	if err != nil {
		return newValidationError("Can not send message: %v", err)
	}
	return c.send(f)
}

func (c *connection) sendValues(t wire.Type, values []uint32) error {
	f, err := wire.NewValuesFrame(t, values)
	if err != nil {
		return newValidationError("Can not send message: %v", err)
	}
	return c.send(f)
}
