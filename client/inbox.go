// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

package client

import (
	"context"
	"sync"
	"time"

	"github.com/katzenpost/isc/core/wire"
)

// Inbox holds the server frames that no task has consumed yet, in arrival
// order.  The receive worker is the only producer and the running task the
// only consumer.  When full, the oldest frame is dropped to make room.
type Inbox struct {
	sync.Mutex

	ch      chan *wire.Frame
	pending []*wire.Frame
}

// NewInbox creates an Inbox holding at most capacity frames that have not
// been waited for.
func NewInbox(capacity int) *Inbox {
	if capacity < 1 {
		capacity = 1
	}
	return &Inbox{
		ch: make(chan *wire.Frame, capacity),
	}
}

// Put appends f, returning true if an older frame had to be dropped.  It
// never blocks.
func (i *Inbox) Put(f *wire.Frame) bool {
	dropped := false
	for {
		select {
		case i.ch <- f:
			return dropped
		default:
		}
		select {
		case <-i.ch:
			dropped = true
		default:
		}
	}
}

// Clear discards every frame currently held.
func (i *Inbox) Clear() {
	i.Lock()
	defer i.Unlock()
	i.pending = nil
	for {
		select {
		case <-i.ch:
		default:
			return
		}
	}
}

// Len returns the number of frames currently held.
func (i *Inbox) Len() int {
	i.Lock()
	defer i.Unlock()
	return len(i.pending) + len(i.ch)
}

// WaitFor blocks until at least n frames are held and returns all of them
// in arrival order, leaving them in place.  When clearFirst is set the Inbox
// is emptied before waiting.  If timeout elapses first a *TimeoutError is
// returned and the frames that did arrive stay in the Inbox.
func (i *Inbox) WaitFor(ctx context.Context, n int, timeout time.Duration, clearFirst bool) ([]*wire.Frame, error) {
	if clearFirst {
		i.Clear()
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		i.Lock()
		if len(i.pending) >= n {
			out := make([]*wire.Frame, len(i.pending))
			copy(out, i.pending)
			i.Unlock()
			return out, nil
		}
		i.Unlock()

		select {
		case f := <-i.ch:
			i.Lock()
			i.pending = append(i.pending, f)
			i.Unlock()
		case <-timer.C:
			return nil, &TimeoutError{Want: n, Got: i.Len(), After: timeout}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
