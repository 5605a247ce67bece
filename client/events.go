// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

package client

import (
	"fmt"
)

// Line tags prefixed to the text of chat events.
const (
	TagServer      = "<Server> "
	TagUser        = "<User> "
	TagYou         = "<You> "
	TagYouToServer = "<You to Server> "
	TagInfo        = "<INFO> "
	TagError       = "<Error> "

	noResponseNotice = "No info received from server, try again later."
)

// Kind distinguishes the two text streams delivered to the front-end.
type Kind int

const (
	// KindChat is the conversation with the server and other users.
	KindChat Kind = iota

	// KindDecoded is the output of offline decryption.
	KindDecoded
)

// String returns a string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindChat:
		return "chat"
	case KindDecoded:
		return "decoded"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is the generic event delivered to the EventSink.
type Event interface {
	// String returns a string representation of the Event.
	String() string
}

// EventSink receives every event the client produces.  It is called from
// the receive worker and from task go routines, so it must be safe for
// concurrent use and should not block for long.
type EventSink func(Event)

// MessageEvent is one line of text for the front-end.
type MessageEvent struct {
	Kind Kind
	Text string
}

// String returns a string representation of the MessageEvent.
func (e *MessageEvent) String() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Text)
}

// ConnectionStatusEvent is the event sent when the connection state changes.
type ConnectionStatusEvent struct {
	State State

	// Err is the reason the connection failed or was lost, if any.
	Err error
}

// String returns a string representation of the ConnectionStatusEvent.
func (e *ConnectionStatusEvent) String() string {
	if e.Err != nil {
		return fmt.Sprintf("ConnectionStatus: %v (%v)", e.State, e.Err)
	}
	return fmt.Sprintf("ConnectionStatus: %v", e.State)
}

// ClearEvent asks the front-end to clear its chat view.
type ClearEvent struct{}

// String returns a string representation of the ClearEvent.
func (e *ClearEvent) String() string {
	return "Clear"
}
