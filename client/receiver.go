// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

package client

import (
	"errors"
	"io"
	"net"

	"github.com/katzenpost/isc/client/instrument"
	"github.com/katzenpost/isc/core/wire"
)

type readResult int

const (
	readOK readResult = iota
	readClosed
	readTransient
	readFatal
)

func classifyReadError(err error) readResult {
	var netErr net.Error
	var sigErr *wire.SignatureError
	switch {
	case err == nil:
		return readOK
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		return readClosed
	case errors.As(err, &sigErr):
		return readFatal
	case errors.As(err, &netErr) && netErr.Timeout():
		return readTransient
	default:
		return readFatal
	}
}

func (c *connection) receiveWorker() {
	for {
		select {
		case <-c.HaltCh():
			return
		default:
		}

		f, err := wire.ReadFrame(c.conn)
		switch classifyReadError(err) {
		case readOK:
		case readTransient:
			continue
		case readClosed:
			if c.IsHalted() {
				return
			}
			c.log.Noticef("Server closed the connection")
			c.c.onConnectionLost(c, StateDisconnected, nil)
			return
		default:
			if c.IsHalted() {
				return
			}
			var sigErr *wire.SignatureError
			if errors.As(err, &sigErr) {
				err = &ProtocolError{Err: err}
			}
			c.log.Errorf("Failed to receive frame: %v", err)
			c.c.onConnectionLost(c, StateFailed, &ReadError{Err: err})
			return
		}

		c.onFrame(f)
	}
}

func (c *connection) onFrame(f *wire.Frame) {
	instrument.FrameReceived(f.Type.String())

	switch f.Type {
	case wire.TypeImage:
		w, h := f.ImageSize()
		c.log.Debugf("Discarding %dx%d image frame", w, h)
	case wire.TypeServer:
		c.c.archive.Append(f)
		// Empty server frames are archived but never answered.
		if f.Count == 0 {
			c.log.Debugf("Archived empty server frame")
			return
		}
		if c.inbox.Put(f) {
			c.log.Warningf("Inbox full, dropped the oldest server frame")
			instrument.InboxDropped()
		}
		c.c.emitChat(TagServer + f.Text())
	default:
		text := f.Text()
		if c.c.isOwnEcho(text) {
			c.log.Debugf("Suppressed echo of own message")
			return
		}
		c.c.emitChat(TagUser + text)
	}
}
