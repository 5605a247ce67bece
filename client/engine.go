// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

package client

import (
	"context"
	"errors"
	"time"

	"gopkg.in/op/go-logging.v1"

	"github.com/katzenpost/isc/client/instrument"
	"github.com/katzenpost/isc/core/wire"
)

type taskKey struct {
	name string
	op   string
}

type taskFn func(*task) error

// task is one running exercise.  All of its traffic goes over the
// connection that was live when it started.
type task struct {
	c    *Client
	conn *connection
	ctx  context.Context
	log  *logging.Logger
	cmd  *TaskCommand
}

func (c *Client) initTasks() {
	c.tasks = map[taskKey]taskFn{
		{string(CipherShift), opEncode}:    (*task).classicCipher,
		{string(CipherShift), opDecode}:    (*task).classicCipher,
		{string(CipherVigenere), opEncode}: (*task).classicCipher,
		{string(CipherVigenere), opDecode}: (*task).classicCipher,
		{string(CipherRSA), opEncode}:      (*task).rsaEncode,
		{string(CipherRSA), opDecode}:      (*task).rsaDecode,
		{taskHash, opVerify}:               (*task).hashVerify,
		{taskHash, opHash}:                 (*task).hashCompute,
		{taskDH, ""}:                       (*task).diffieHellman,
	}
}

// startTask validates cmd and runs it in the background.  At most one task
// runs at a time.
func (c *Client) startTask(cmd *TaskCommand) error {
	fn, ok := c.tasks[taskKey{cmd.Name, cmd.Op}]
	if !ok {
		return newValidationError("Unknown task %q.", cmd.Request())
	}
	conn := c.currentConn()
	if conn == nil {
		return ErrNotConnected
	}
	select {
	case c.taskSlot <- struct{}{}:
	default:
		return ErrTaskRunning
	}

	t := &task{
		c:    c,
		conn: conn,
		ctx:  conn.ctx,
		log:  c.logBackend.GetLogger("client/task"),
		cmd:  cmd,
	}
	c.taskWg.Add(1)
	go func() {
		defer func() {
			<-c.taskSlot
			c.taskWg.Done()
		}()
		t.run(fn)
	}()
	return nil
}

func (t *task) run(fn taskFn) {
	name := t.cmd.Name
	if t.cmd.Op != "" {
		name += " " + t.cmd.Op
	}
	t.log.Debugf("Starting task %q", name)

	err := fn(t)

	var tErr *TimeoutError
	outcome := "ok"
	switch {
	case err == nil:
	case errors.As(err, &tErr):
		outcome = "timeout"
	case errors.Is(err, context.Canceled) || t.ctx.Err() != nil:
		outcome = "cancelled"
	default:
		outcome = "error"
		t.c.emitError(err)
	}
	instrument.TaskFinished(name, outcome)
	if err != nil {
		t.log.Infof("Task %q finished: %v", name, err)
		return
	}
	t.log.Debugf("Task %q finished", name)
}

func (t *task) responseTimeout() time.Duration {
	return t.c.cfg.Debug.ResponseTimeoutDuration()
}

func (t *task) hashResponseTimeout() time.Duration {
	return t.c.cfg.Debug.HashResponseTimeoutDuration()
}

func (t *task) send(text string) error {
	if err := t.conn.sendText(wire.TypeServer, text); err != nil {
		return err
	}
	t.c.emitChat(TagYouToServer + text)
	return nil
}

func (t *task) sendValues(values []uint32) error {
	if err := t.conn.sendValues(wire.TypeServer, values); err != nil {
		return err
	}
	t.c.emitChat(TagYouToServer + wire.ValuesToText(values))
	return nil
}

// waitFor waits for n server frames, telling the user when the server does
// not answer in time.
func (t *task) waitFor(n int, timeout time.Duration, clearFirst bool) ([]*wire.Frame, error) {
	frames, err := t.conn.inbox.WaitFor(t.ctx, n, timeout, clearFirst)
	var tErr *TimeoutError
	if errors.As(err, &tErr) {
		t.c.emitChat(TagInfo + noResponseNotice)
	}
	return frames, err
}

// exchange starts a fresh round: the Inbox is emptied before sending so a
// quick reply can not be lost, then n frames are awaited.
func (t *task) exchange(text string, n int, timeout time.Duration) ([]*wire.Frame, error) {
	t.conn.inbox.Clear()
	if err := t.send(text); err != nil {
		return nil, err
	}
	return t.waitFor(n, timeout, false)
}

func (t *task) exchangeValues(values []uint32, n int, timeout time.Duration) ([]*wire.Frame, error) {
	t.conn.inbox.Clear()
	if err := t.sendValues(values); err != nil {
		return nil, err
	}
	return t.waitFor(n, timeout, false)
}
