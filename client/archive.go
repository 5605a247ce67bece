// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

package client

import (
	"sync"

	"github.com/katzenpost/isc/core/wire"
)

// Archive is the append-only log of every frame received from the server.
// Offline decryption reads it by position counted from the newest entry.
type Archive struct {
	sync.RWMutex

	frames []*wire.Frame
}

// Append adds f as the newest entry.
func (a *Archive) Append(f *wire.Frame) {
	a.Lock()
	defer a.Unlock()
	a.frames = append(a.frames, f)
}

// Get returns the index-th newest frame, 1 being the most recent one.
func (a *Archive) Get(index int) (*wire.Frame, error) {
	a.RLock()
	defer a.RUnlock()
	if index < 1 || index > len(a.frames) {
		return nil, newValidationError("No archived server message #%d, %d available.", index, len(a.frames))
	}
	return a.frames[len(a.frames)-index], nil
}

// Len returns the number of archived frames.
func (a *Archive) Len() int {
	a.RLock()
	defer a.RUnlock()
	return len(a.frames)
}
