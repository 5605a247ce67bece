// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

package client

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotConnected is the error returned when an operation needs a live
	// connection and there is none.
	ErrNotConnected = errors.New("client: not connected to the server")

	// ErrAlreadyConnected is returned by Open while a connection is live.
	// Reconnecting requires an explicit Close first.
	ErrAlreadyConnected = errors.New("client: already connected, close the connection first")

	// ErrTaskRunning is returned when a task is requested while another one
	// is still in progress.
	ErrTaskRunning = &ValidationError{Msg: "A task is already running, wait for it to finish."}
)

// ConnectError is the error used to indicate that a connect attempt has failed.
type ConnectError struct {
	// Err is the original error that caused the connect attempt to fail.
	Err error
}

// Error implements the error interface.
func (e *ConnectError) Error() string {
	return fmt.Sprintf("client/conn: connect error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ConnectError) Unwrap() error {
	return e.Err
}

// ReadError is the error used to indicate that the connection was lost while
// receiving.
type ReadError struct {
	// Err is the original read error.
	Err error
}

// Error implements the error interface.
func (e *ReadError) Error() string {
	return fmt.Sprintf("client/conn: connection lost: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ReadError) Unwrap() error {
	return e.Err
}

// ProtocolError is the error used to indicate that the server sent something
// the running task can not make sense of.
type ProtocolError struct {
	// Err is the original error.
	Err error
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("client: protocol error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

func newProtocolError(f string, a ...interface{}) error {
	return &ProtocolError{Err: fmt.Errorf(f, a...)}
}

// ProtocolMismatchError is returned when the server rejects the
// Diffie-Hellman parameters offered to it.
type ProtocolMismatchError struct {
	// Reply is the server's answer to the offer.
	Reply string
}

// Error implements the error interface.
func (e *ProtocolMismatchError) Error() string {
	return fmt.Sprintf("client: parameters were not accepted: %q", e.Reply)
}

// TimeoutError is returned when the server did not deliver the awaited
// number of frames in time.
type TimeoutError struct {
	// Want is the number of frames waited for.
	Want int

	// Got is the number of frames that did arrive.
	Got int

	// After is the time waited.
	After time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("client: timeout after %v waiting for %d frames, got %d", e.After, e.Want, e.Got)
}

// ValidationError is returned for malformed commands.  No traffic is sent
// when one occurs.
type ValidationError struct {
	Msg string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Msg
}

func newValidationError(f string, a ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(f, a...)}
}
