// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package client provides the ISC teaching server client library.
//
// A Client keeps at most one TCP connection to the server.  A receive worker
// turns incoming frames into events for the front-end and queues server
// frames in an Inbox, from which the task engine drives the multi-round
// cipher exercises.
package client

import (
	"context"
	"errors"
	mRand "math/rand"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/katzenpost/hpqc/rand"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/op/go-logging.v1"

	"github.com/katzenpost/isc/client/config"
	"github.com/katzenpost/isc/client/instrument"
	"github.com/katzenpost/isc/core/log"
	"github.com/katzenpost/isc/core/wire"
)

// Client is the ISC client.
type Client struct {
	sync.RWMutex

	cfg        *config.Config
	logBackend *log.Backend
	log        *logging.Logger
	sink       EventSink

	state State
	conn  *connection

	archive *Archive

	echoLock    sync.Mutex
	lastOwnSent string

	rng      *mRand.Rand
	taskSlot chan struct{}
	taskWg   sync.WaitGroup
	commands map[CommandKind]func(*Command) error
	tasks    map[taskKey]taskFn
}

// New creates a new Client with the provided configuration.  Every event is
// delivered to sink, which may be nil to discard them.
func New(cfg *config.Config, sink EventSink) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = func(Event) {}
	}
	c := &Client{
		cfg:      cfg,
		sink:     sink,
		archive:  new(Archive),
		rng:      rand.NewMath(),
		taskSlot: make(chan struct{}, 1),
	}
	if err := c.initLogging(); err != nil {
		return nil, err
	}
	c.initCommands()
	instrument.Register()
	return c, nil
}

func (c *Client) initLogging() error {
	f := c.cfg.Logging.File
	if !c.cfg.Logging.Disable && f != "" {
		if !filepath.IsAbs(f) {
			return errors.New("log file path must be absolute path")
		}
	}

	var err error
	c.logBackend, err = log.New(f, c.cfg.Logging.Level, c.cfg.Logging.Disable)
	if err == nil {
		c.log = c.logBackend.GetLogger("client")
	}
	return err
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *config.Config {
	return c.cfg
}

// GetLogger returns a new logger with the given name.
func (c *Client) GetLogger(name string) *logging.Logger {
	return c.logBackend.GetLogger(name)
}

// Archive returns the log of frames received from the server.
func (c *Client) Archive() *Archive {
	return c.archive
}

// State returns the current connection state.
func (c *Client) State() State {
	c.RLock()
	defer c.RUnlock()
	return c.state
}

func (c *Client) setStateLocked(s State) {
	c.state = s
	instrument.ConnectionState(s.String())
}

func (c *Client) currentConn() *connection {
	c.RLock()
	defer c.RUnlock()
	return c.conn
}

// Open connects to the server at host:port.  It fails with
// ErrAlreadyConnected while a connection is live.
func (c *Client) Open(ctx context.Context, host string, port int) error {
	c.Lock()
	if c.state == StateConnected || c.state == StateConnecting {
		c.Unlock()
		return ErrAlreadyConnected
	}
	c.setStateLocked(StateConnecting)
	c.Unlock()

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	c.log.Noticef("Connecting to %v", addr)
	c.emit(&ConnectionStatusEvent{State: StateConnecting})

	dialFn := c.cfg.UpstreamProxyConfig().ToDialContext(c.cfg.DialTimeout())
	nc, err := dialFn(ctx, "tcp", addr)
	if err != nil {
		cErr := &ConnectError{Err: err}
		c.log.Warningf("Failed to connect to %v: %v", addr, err)
		c.Lock()
		c.setStateLocked(StateFailed)
		c.Unlock()
		c.emit(&ConnectionStatusEvent{State: StateFailed, Err: cErr})
		return cErr
	}

	conn := newConnection(c, nc)
	c.Lock()
	c.conn = conn
	c.setStateLocked(StateConnected)
	c.Unlock()

	c.echoLock.Lock()
	c.lastOwnSent = ""
	c.echoLock.Unlock()

	c.emit(&ConnectionStatusEvent{State: StateConnected})
	conn.start()
	return nil
}

// Close closes the connection, cancelling any running task.  Without a
// connection it only moves a Failed client to Disconnected.
func (c *Client) Close() error {
	c.Lock()
	conn := c.conn
	if conn == nil {
		// A failed attempt or a lost connection still ends up Disconnected.
		failed := c.state == StateFailed
		if failed {
			c.setStateLocked(StateDisconnected)
		}
		c.Unlock()
		if failed {
			c.emit(&ConnectionStatusEvent{State: StateDisconnected})
		}
		return nil
	}
	c.conn = nil
	c.setStateLocked(StateDisconnected)
	c.Unlock()

	c.log.Noticef("Closing connection")
	conn.halt()
	c.taskWg.Wait()
	c.emit(&ConnectionStatusEvent{State: StateDisconnected})
	return nil
}

// Shutdown closes the connection and releases the log backend.
func (c *Client) Shutdown() {
	c.Close()
	c.logBackend.Close()
}

// onConnectionLost is called by the receive worker of conn when the server
// goes away.
func (c *Client) onConnectionLost(conn *connection, s State, err error) {
	c.Lock()
	if c.conn != conn {
		c.Unlock()
		return
	}
	c.conn = nil
	c.setStateLocked(s)
	c.Unlock()

	conn.stop()
	c.emit(&ConnectionStatusEvent{State: s, Err: err})
	if err != nil {
		c.emitError(err)
	}
}

func (c *Client) emit(e Event) {
	c.sink(e)
}

func (c *Client) emitChat(text string) {
	c.emit(&MessageEvent{Kind: KindChat, Text: text})
}

func (c *Client) emitDecoded(text string) {
	c.emit(&MessageEvent{Kind: KindDecoded, Text: text})
}

func (c *Client) emitError(err error) {
	c.emitChat(TagError + err.Error())
}

func (c *Client) isOwnEcho(text string) bool {
	c.echoLock.Lock()
	defer c.echoLock.Unlock()
	if text != "" && text != c.lastOwnSent {
		return false
	}
	c.lastOwnSent = ""
	return true
}

// SendUserText handles one line typed by the user.  Lines starting with "/"
// are commands, anything else is sent to the other users as chat text.
func (c *Client) SendUserText(text string) error {
	if strings.HasPrefix(text, commandPrefix) {
		return c.DispatchCommand(text)
	}
	if text == "" {
		return nil
	}
	text = norm.NFC.String(text)
	err := c.sendChat(text, func(conn *connection) error {
		return conn.sendText(wire.TypeText, text)
	})
	if err != nil {
		c.emitError(err)
		return err
	}
	return nil
}

// sendChatValues sends slot values verbatim as a chat line, so ciphertext
// reaches the peer exactly as computed.
func (c *Client) sendChatValues(values []uint32) error {
	return c.sendChat(wire.ValuesToText(values), func(conn *connection) error {
		return conn.sendValues(wire.TypeText, values)
	})
}

// sendChat remembers text as the line to suppress when the server echoes it
// and sends it with send.
func (c *Client) sendChat(text string, send func(*connection) error) error {
	conn := c.currentConn()
	if conn == nil {
		return ErrNotConnected
	}

	c.echoLock.Lock()
	c.lastOwnSent = text
	c.echoLock.Unlock()

	if err := send(conn); err != nil {
		return err
	}
	c.emitChat(TagYou + text)
	return nil
}
