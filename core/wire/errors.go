// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManySlots is returned when a message does not fit in the 16 bit
	// slot count of the header.
	ErrTooManySlots = errors.New("wire: too many slots for one frame")

	// ErrShortHeader is returned when fewer than HeaderLength bytes are
	// handed to ParseHeader.
	ErrShortHeader = errors.New("wire: short header")
)

// SignatureError is returned when a header does not start with the ISC
// signature.
type SignatureError struct {
	Got []byte
}

// Error implements the error interface.
func (e *SignatureError) Error() string {
	return fmt.Sprintf("wire: invalid signature: %q", e.Got)
}

// SlotOverflowError is returned when a character can not be carried by a
// single 4 byte slot.  This is a limitation of the protocol itself.
type SlotOverflowError struct {
	// Index is the character index inside the message.
	Index int

	// Rune is the offending character.
	Rune rune
}

// Error implements the error interface.
func (e *SlotOverflowError) Error() string {
	return fmt.Sprintf("wire: character %U at index %d does not fit in a slot", e.Rune, e.Index)
}
